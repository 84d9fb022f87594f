package tui

import "errors"

// ErrMissingState is returned when the app is created without a session.
var ErrMissingState = errors.New("tui: session state is required")
