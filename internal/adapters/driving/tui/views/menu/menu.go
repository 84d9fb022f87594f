// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docchat/internal/app"
	"github.com/custodia-labs/docchat/internal/core/domain"
)

// Item is a menu entry: a router page, or Quit.
type Item struct {
	Label string
	Page  app.PageID
	Quit  bool
}

// quitKey also accepts q, which is free on the menu since it has no input.
var quitKey = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))

// View is the page menu shown on esc. It also carries a one-line
// collection status, since ingestion runs while the user is here.
type View struct {
	styles   *styles.Styles
	keys     *keymap.KeyMap
	help     help.Model
	items    []Item
	selected int
	status   string
	width    int
	height   int
	ready    bool
}

// NewView creates a menu listing the router's pages. The setup page is
// reached automatically and is not listed. A nil router uses the
// default pages.
func NewView(s *styles.Styles, router *app.Router) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if router == nil {
		router = app.DefaultRouter()
	}

	items := make([]Item, 0, len(router.Pages())+1)
	for _, p := range router.Pages() {
		if p.ID() == app.PageSetup {
			continue
		}
		items = append(items, Item{Label: p.Title(), Page: p.ID()})
	}
	items = append(items, Item{Label: "Quit", Quit: true})

	return &View{
		styles: s,
		keys:   keymap.DefaultKeyMap(),
		help:   help.New(),
		items:  items,
		width:  80,
		height: 24,
	}
}

func (v *View) Init() tea.Cmd {
	return nil
}

func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Up):
			if v.selected > 0 {
				v.selected--
			}
		case key.Matches(msg, v.keys.Down):
			if v.selected < len(v.items)-1 {
				v.selected++
			}
		case key.Matches(msg, v.keys.Select):
			return v, v.choose(v.selected)
		case key.Matches(msg, quitKey):
			return v, tea.Quit
		default:
			// 1-9 jump straight to a page.
			if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
				if i := int(s[0] - '1'); i < len(v.items) {
					v.selected = i
					return v, v.choose(i)
				}
			}
		}
	}

	return v, nil
}

func (v *View) choose(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.PageChanged{Page: item.Page}
	}
}

func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("docchat"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Subtitle.Render("Chat with your documents"))
	b.WriteString("\n")
	if v.status != "" {
		b.WriteString(v.styles.Muted.Render(v.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, item := range v.items {
		label := fmt.Sprintf("%d. %s", i+1, item.Label)
		if i == v.selected {
			b.WriteString("> " + v.styles.Selected.Render(label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.help.ShortHelpView([]key.Binding{v.keys.Up, v.keys.Down, v.keys.Select, quitKey}))

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.help.Width = width
	v.ready = true
}

// SetIngestProgress shows indexing progress in the status line.
func (v *View) SetIngestProgress(done, total int) {
	v.status = fmt.Sprintf("Indexing %d/%d documents...", done, total)
}

// SetIngestResult summarises a finished ingestion in the status line.
func (v *View) SetIngestResult(report *domain.IngestReport, err error) {
	switch {
	case err != nil:
		v.status = "Indexing failed: " + err.Error()
	case report == nil:
		v.status = ""
	case len(report.Skipped) > 0:
		v.status = fmt.Sprintf("%s indexed, %d skipped", documents(len(report.Indexed)), len(report.Skipped))
	default:
		v.status = documents(len(report.Indexed)) + " indexed"
	}
}

func documents(n int) string {
	if n == 1 {
		return "1 document"
	}
	return fmt.Sprintf("%d documents", n)
}

// Status returns the current status line.
func (v *View) Status() string {
	return v.status
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}

// Items returns the menu items.
func (v *View) Items() []Item {
	return v.items
}
