package stream

import (
	"context"
	"net/http"
	"time"
)

// NewHTTPClient returns a client for providers that stream their answers.
// The timeout bounds the wait for response headers only: a streamed body
// may take longer than timeout and ends when the request context does.
// Use WithTimeout for calls that read the whole body at once.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	return &http.Client{Transport: transport}
}

// WithTimeout bounds a non-streamed call, body included. A timeout of
// zero or less leaves ctx unchanged.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
