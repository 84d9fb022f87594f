package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/views/page"
	"github.com/custodia-labs/docchat/internal/app"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// state is the session shared with the views.
	state *app.State

	// router decides which page is shown.
	router *app.Router

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView *menu.View
	chatView *chat.View
	urlView  *chat.View
	pageView *page.View

	// current is the page shown when the menu is closed.
	current app.PageID

	// onMenu is true while the menu is shown.
	onMenu bool

	// ingest delivers ingestion progress while indexing runs.
	ingest <-chan tea.Msg

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application over the session. A nil router
// uses the default pages.
func NewApp(state *app.State, router *app.Router) (*App, error) {
	if state == nil {
		return nil, ErrMissingState
	}
	if router == nil {
		router = app.DefaultRouter()
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	start := router.Start(state)

	return &App{
		state:    state,
		router:   router,
		ctx:      context.Background(),
		styles:   s,
		keymap:   km,
		menuView: menu.NewView(s, router),
		chatView: chat.NewView(s, km, state, router, chat.ModeAsk),
		urlView:  chat.NewView(s, km, state, router, chat.ModeURL),
		pageView: page.NewView(s, km, state, router, start),
		current:  start,
	}, nil
}

// WithContext sets the context for the app and its requests.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.urlView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It sets the window title and starts building the collection.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("docchat"),
		a.chatView.Init(),
		a.startIngest(),
	)
}

// startIngest runs ingestion in the background. Progress and the final
// report arrive as messages through a.ingest.
func (a *App) startIngest() tea.Cmd {
	if a.state.NeedsSetup() || a.state.Ingestion.Ready() {
		return nil
	}

	events := make(chan tea.Msg, 16)
	a.ingest = events
	a.chatView.SetIndexing()

	ctx, state := a.ctx, a.state
	go func() {
		defer close(events)
		send := func(m tea.Msg) {
			select {
			case events <- m:
			case <-ctx.Done():
			}
		}
		report, err := state.EnsureReady(ctx, func(done, total int, name string) {
			send(messages.IngestProgress{Done: done, Total: total, Name: name})
		})
		send(messages.IngestCompleted{Report: report, Err: err})
	}()

	return messages.Listen(events)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.menuView.SetDimensions(msg.Width, msg.Height)
		a.chatView.SetDimensions(msg.Width, msg.Height)
		a.urlView.SetDimensions(msg.Width, msg.Height)
		a.pageView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.PageChanged:
		a.show(msg.Page)
		return a, nil

	case messages.MenuRequested:
		a.onMenu = true
		return a, nil

	case messages.IngestProgress:
		a.chatView.SetIngestProgress(msg)
		a.menuView.SetIngestProgress(msg.Done, msg.Total)
		return a, messages.Listen(a.ingest)

	case messages.IngestCompleted:
		a.ingest = nil
		a.chatView.SetIngestResult(msg)
		a.menuView.SetIngestResult(msg.Report, msg.Err)
		if msg.Err != nil {
			a.err = msg.Err
			switch {
			case a.state.NeedsSetup():
				a.show(app.PageSetup)
			case a.current == app.PageChat:
				// Chat needs the collection; the status page shows why it is missing.
				a.show(app.PageStatus)
			}
		}
		return a, nil

	case messages.AnswerDelta, messages.AnswerCompleted:
		// The request belongs to whichever view is waiting for it,
		// even when the user has moved to another page.
		if a.urlView.Busy() {
			a.urlView, cmd = a.urlView.Update(msg)
		} else {
			a.chatView, cmd = a.chatView.Update(msg)
		}
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.state.SetLastError(msg.Err)
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if keymap.Matches(key, a.keymap.Quit) {
		return a, tea.Quit
	}

	if !a.onMenu {
		switch {
		case keymap.Matches(key, a.keymap.NextPage):
			a.show(a.nextPage())
			return a, nil
		case !a.isChat() && keymap.Matches(key, a.keymap.Help):
			a.show(app.PageHelp)
			return a, nil
		}
	}

	return a, a.forward(msg)
}

// forward sends msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case a.onMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case a.current == app.PageChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case a.current == app.PageSummarise:
		a.urlView, cmd = a.urlView.Update(msg)
	default:
		a.pageView, cmd = a.pageView.Update(msg)
	}
	return cmd
}

// show closes the menu and switches to a page. Pages that need
// configuration resolve to setup.
func (a *App) show(id app.PageID) {
	a.onMenu = false
	a.current = a.router.Resolve(a.state, id)
	if !a.isChat() {
		a.pageView.SetPage(a.current)
	}
}

// nextPage returns the page after the current one, skipping setup.
func (a *App) nextPage() app.PageID {
	var ids []app.PageID
	for _, p := range a.router.Pages() {
		if p.ID() != app.PageSetup {
			ids = append(ids, p.ID())
		}
	}
	if len(ids) == 0 {
		return a.current
	}
	for i, id := range ids {
		if id == a.current {
			return ids[(i+1)%len(ids)]
		}
	}
	return ids[0]
}

func (a *App) isChat() bool {
	return a.current == app.PageChat || a.current == app.PageSummarise
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch {
	case a.onMenu:
		return a.menuView.View()
	case a.current == app.PageChat:
		return a.chatView.View()
	case a.current == app.PageSummarise:
		return a.urlView.View()
	default:
		return a.pageView.View()
	}
}

// CurrentPage returns the page shown when the menu is closed.
func (a *App) CurrentPage() app.PageID {
	return a.current
}

// OnMenu reports whether the menu is shown.
func (a *App) OnMenu() bool {
	return a.onMenu
}

// Err returns the last error.
func (a *App) Err() error {
	return a.err
}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, state *app.State) error {
	a, err := NewApp(state, nil)
	if err != nil {
		return err
	}
	a.WithContext(ctx)

	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
