// Package page renders the static pages of the router in the TUI.
package page

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docchat/internal/app"
)

// View shows one router page. The content is rendered on every frame so
// status changes appear without a refresh.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	state     *app.State
	router    *app.Router
	page      app.PageID
	statusbar *status.Bar

	width  int
	height int
	ready  bool
}

// NewView creates a page view showing the given page.
func NewView(s *styles.Styles, km *keymap.KeyMap, state *app.State, router *app.Router, id app.PageID) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if router == nil {
		router = app.DefaultRouter()
	}
	v := &View{
		styles:    s,
		keymap:    km,
		state:     state,
		router:    router,
		statusbar: status.NewBar(s, km),
		width:     80,
		height:    24,
	}
	v.SetPage(id)
	return v
}

// SetPage switches the page shown. Pages that need configuration fall
// back to setup.
func (v *View) SetPage(id app.PageID) {
	v.page = v.router.Resolve(v.state, id)
	if v.page == app.PageSetup {
		v.statusbar.SetBindings([]key.Binding{v.keymap.Quit})
	} else {
		v.statusbar.SetBindings(v.keymap.ShortHelp())
	}
}

// Page returns the page shown.
func (v *View) Page() app.PageID {
	return v.page
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the page view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch {
		case keymap.Matches(msg.String(), v.keymap.Back):
			if v.page == app.PageSetup {
				return v, tea.Quit
			}
			return v, func() tea.Msg { return messages.MenuRequested{} }
		case msg.String() == "q":
			return v, tea.Quit
		}
	}
	return v, nil
}

// View renders the page.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	p, ok := v.router.Page(v.page)
	if !ok {
		return v.styles.Error.Render("Unknown page: " + string(v.page))
	}
	body, err := v.router.Render(v.state, v.page)
	if err != nil {
		return v.styles.Error.Render(err.Error())
	}

	content := lipgloss.NewStyle().Width(max(v.width-4, 20)).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render(p.Title()),
		"",
		content,
		"",
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.statusbar.SetWidth(width)
}
