package page

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docchat/internal/app"
	"github.com/custodia-labs/docchat/internal/app/apptest"
	"github.com/custodia-labs/docchat/internal/core/domain"
)

func newState(t *testing.T) *app.State {
	t.Helper()
	return apptest.NewState(t, apptest.WriteDocs(t, apptest.PolicyDocs()), &apptest.LLM{Response: "ok"})
}

func setupState(t *testing.T) *app.State {
	t.Helper()
	cfg := apptest.Config(t, t.TempDir(), nil)
	cfg.SetupErr = &domain.ConfigError{Field: "llm.api_key", Err: domain.ErrUnauthorized}
	s := app.New(cfg)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, newState(t), nil, app.PageStatus)

	require.NotNil(t, v)
	assert.Equal(t, app.PageStatus, v.Page())
	assert.Nil(t, v.Init())
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_RendersStatus(t *testing.T) {
	state := newState(t)
	_, err := state.EnsureReady(context.Background(), nil)
	require.NoError(t, err)

	v := NewView(nil, nil, state, nil, app.PageStatus)
	v, _ = v.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	out := v.View()
	assert.Contains(t, out, "Status")
	assert.Contains(t, out, "READY")
	assert.Contains(t, out, "Indexed")
}

func TestView_RendersHelp(t *testing.T) {
	v := NewView(nil, nil, newState(t), nil, app.PageHelp)
	v.SetDimensions(100, 30)

	assert.Contains(t, v.View(), "Help")
}

func TestView_SetupFallback(t *testing.T) {
	state := setupState(t)
	require.True(t, state.NeedsSetup())

	v := NewView(nil, nil, state, nil, app.PageStatus)
	v.SetDimensions(100, 30)

	assert.Equal(t, app.PageSetup, v.Page())
	assert.Contains(t, v.View(), "llm.api_key")

	v.SetPage(app.PageHelp)
	assert.Equal(t, app.PageHelp, v.Page())
}

func TestView_BackRequestsMenu(t *testing.T) {
	v := NewView(nil, nil, newState(t), nil, app.PageHelp)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.IsType(t, messages.MenuRequested{}, cmd())
}

func TestView_BackQuitsFromSetup(t *testing.T) {
	v := NewView(nil, nil, setupState(t), nil, app.PageSetup)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_QuitKey(t *testing.T) {
	v := NewView(nil, nil, newState(t), nil, app.PageStatus)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_UnknownPage(t *testing.T) {
	router := app.NewRouter(app.HelpPage{})
	v := NewView(nil, nil, newState(t), router, app.PageStatus)
	v.SetDimensions(80, 24)

	assert.Contains(t, v.View(), "Unknown page")
}
