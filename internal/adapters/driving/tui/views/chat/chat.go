// Package chat provides the question and URL summary views for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docchat/internal/app"
	"github.com/custodia-labs/docchat/internal/core/domain"
)

// Cursor is shown after the running text while an answer streams.
const Cursor = "▌"

// Mode selects what the input is sent to.
type Mode int

const (
	// ModeAsk sends questions about the documents.
	ModeAsk Mode = iota
	// ModeURL sends web page URLs to summarise.
	ModeURL
)

// reservedLines is the space taken by the header, input and status bar.
const reservedLines = 9

// summary is one completed URL summary. Summaries are not part of the
// chat history, so the view keeps them.
type summary struct {
	url  string
	text string
}

// View is a transcript with an input line and a status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	state     *app.State
	router    *app.Router
	mode      Mode
	input     *input.PromptInput
	viewport  viewport.Model
	statusbar *status.Bar
	ctx       context.Context

	format    domain.SummaryFormat
	busy      bool
	indexing  bool
	pending   string
	streamed  strings.Builder
	events    <-chan tea.Msg
	sources   []string
	summaries []summary
	err       error

	width  int
	height int
	ready  bool
}

// NewView creates a chat view in the given mode.
func NewView(s *styles.Styles, km *keymap.KeyMap, state *app.State, router *app.Router, mode Mode) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if router == nil {
		router = app.DefaultRouter()
	}

	label, placeholder := "Ask:", "Ask a question about your documents..."
	if mode == ModeURL {
		label, placeholder = "URL:", "https://..."
	}

	format := state.Settings.Chat.Format
	if !format.IsValid() {
		format = domain.SummaryFormatNone
	}

	v := &View{
		styles:    s,
		keymap:    km,
		state:     state,
		router:    router,
		mode:      mode,
		input:     input.NewPromptInput(s, label, placeholder),
		viewport:  viewport.New(80, 24-reservedLines),
		statusbar: status.NewBar(s, km),
		ctx:       context.Background(),
		format:    format,
		width:     80,
		height:    24,
	}
	v.statusbar.SetBindings(km.ChatHelp())
	v.updateInfo()
	v.refresh()
	return v
}

// WithContext sets the context used for requests.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerDelta:
		v.statusbar.SetState(status.StateStreaming)
		v.streamed.WriteString(msg.Delta)
		v.refresh()
		return v, messages.Listen(v.events)

	case messages.AnswerCompleted:
		v.handleCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case keymap.Matches(msg.String(), v.keymap.Back):
		return v, func() tea.Msg { return messages.MenuRequested{} }

	case v.busy:
		return v, nil

	case msg.Type == tea.KeyEnter:
		return v, v.submit()

	case keymap.Matches(msg.String(), v.keymap.CycleFormat):
		v.format = nextFormat(v.format)
		v.updateInfo()
		return v, nil

	case keymap.Matches(msg.String(), v.keymap.ClearHistory):
		if v.mode == ModeAsk {
			v.state.Chat.ClearHistory()
		} else {
			v.summaries = nil
		}
		v.sources = nil
		v.err = nil
		v.statusbar.Clear()
		v.refresh()
		return v, func() tea.Msg { return messages.HistoryCleared{} }

	case msg.Type == tea.KeyPgUp || msg.Type == tea.KeyPgDown:
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit starts a request for the input text. Deltas and the final
// answer arrive as messages through v.events.
func (v *View) submit() tea.Cmd {
	text := strings.TrimSpace(v.input.Value())
	if text == "" {
		return nil
	}
	if v.indexing {
		v.statusbar.SetMessage("wait for indexing to finish")
		return nil
	}
	if v.mode == ModeAsk && !v.state.Ingestion.Ready() {
		v.statusbar.SetMessage("documents are not indexed; see the Status page")
		return nil
	}

	v.input.Submit()
	v.busy = true
	v.pending = text
	v.streamed.Reset()
	v.sources = nil
	v.err = nil
	v.statusbar.SetState(status.StateThinking)
	v.refresh()

	events := make(chan tea.Msg, 16)
	v.events = events

	ctx, state, mode := v.ctx, v.state, v.mode
	opts := domain.AskOptions{
		Format: v.format,
		Stream: state.Settings.Chat.Stream,
	}

	go func() {
		defer close(events)
		send := func(m tea.Msg) {
			select {
			case events <- m:
			case <-ctx.Done():
			}
		}
		onDelta := func(delta string) { send(messages.AnswerDelta{Delta: delta}) }

		var (
			answer *domain.Answer
			err    error
		)
		if mode == ModeURL {
			answer, err = state.Chat.SummariseURL(ctx, text, "", opts, onDelta)
		} else {
			answer, err = state.Chat.Ask(ctx, text, opts, onDelta)
		}
		send(messages.AnswerCompleted{Answer: answer, Err: err})
	}()

	return messages.Listen(events)
}

func (v *View) handleCompleted(msg messages.AnswerCompleted) {
	v.busy = false
	v.events = nil
	question := v.pending
	v.pending = ""
	v.streamed.Reset()

	if msg.Err != nil {
		v.state.SetLastError(msg.Err)
		v.setError(msg.Err)
		v.refresh()
		return
	}

	v.statusbar.Clear()
	if msg.Answer != nil {
		v.sources = msg.Answer.Sources
		if v.mode == ModeURL {
			v.summaries = append(v.summaries, summary{url: question, text: msg.Answer.Text})
		}
		if !msg.Answer.Grounded && v.mode == ModeAsk {
			v.statusbar.SetMessage("answered without document context")
		}
	}
	v.refresh()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// SetIngestProgress shows indexing progress and blocks input until
// SetIngestResult is called.
func (v *View) SetIngestProgress(msg messages.IngestProgress) {
	v.indexing = true
	v.statusbar.SetState(status.StateIndexing)
	v.statusbar.SetMessage(fmt.Sprintf("%d/%d %s", msg.Done, msg.Total, msg.Name))
}

// SetIngestResult shows the outcome of indexing.
func (v *View) SetIngestResult(msg messages.IngestCompleted) {
	v.indexing = false
	if msg.Err != nil {
		v.setError(fmt.Errorf("documents not indexed: %w", msg.Err))
		return
	}
	v.statusbar.Clear()
	if msg.Report != nil {
		v.statusbar.SetMessage(fmt.Sprintf("%d document(s) indexed", len(msg.Report.Indexed)))
	}
}

// SetIndexing marks indexing as started.
func (v *View) SetIndexing() {
	v.indexing = true
	v.statusbar.SetState(status.StateIndexing)
}

// refresh rebuilds the transcript shown in the viewport.
func (v *View) refresh() {
	content := v.transcript()
	if v.width > 0 {
		content = lipgloss.NewStyle().Width(v.width).Render(content)
	}
	v.viewport.SetContent(content)
	v.viewport.GotoBottom()
}

func (v *View) transcript() string {
	var b strings.Builder

	if v.mode == ModeURL {
		if len(v.summaries) == 0 && v.pending == "" {
			out, _ := v.router.Render(v.state, app.PageSummarise) //nolint:errcheck // page is registered
			b.WriteString(out)
		}
		for _, s := range v.summaries {
			fmt.Fprintf(&b, "URL: %s\n\n%s\n\n", s.url, s.text)
		}
		if v.pending != "" {
			fmt.Fprintf(&b, "URL: %s\n\n%s%s\n", v.pending, v.streamed.String(), Cursor)
		}
	} else {
		out, _ := v.router.Render(v.state, app.PageChat) //nolint:errcheck // page is registered
		if v.pending != "" && len(v.state.Chat.History()) == 0 {
			out = ""
		}
		b.WriteString(out)
		if v.pending != "" {
			fmt.Fprintf(&b, "%s %s\n\n%s %s%s\n",
				v.styles.Speaker.Render("You:"), v.pending,
				v.styles.Speaker.Render("Assistant:"), v.streamed.String(), Cursor)
		}
	}

	if len(v.sources) > 0 {
		b.WriteString(v.styles.Sources.Render("Sources: "+strings.Join(v.sources, ", ")) + "\n")
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	title := "Chat"
	if v.mode == ModeURL {
		title = "Summarise URL"
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render(title), "")
	sections = append(sections, v.viewport.View(), "")
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	}
	sections = append(sections, v.input.View(), v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.viewport.Width = width
	v.viewport.Height = max(height-reservedLines, 3)
	v.refresh()
}

func (v *View) updateInfo() {
	lang := v.state.Settings.Chat.Language
	if lang == "" {
		lang = domain.DefaultLanguage
	}
	v.statusbar.SetInfo(fmt.Sprintf("[%s, %s]", v.format.Description(), lang))
}

func nextFormat(f domain.SummaryFormat) domain.SummaryFormat {
	all := domain.AllSummaryFormats()
	for i, candidate := range all {
		if candidate == f {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

// Busy reports whether a request is in flight.
func (v *View) Busy() bool {
	return v.busy
}

// Indexing reports whether input is blocked by indexing.
func (v *View) Indexing() bool {
	return v.indexing
}

// Format returns the active answer format.
func (v *View) Format() domain.SummaryFormat {
	return v.format
}

// Transcript returns the transcript text without styling.
func (v *View) Transcript() string {
	return v.transcript()
}

// Mode returns the view mode.
func (v *View) Mode() Mode {
	return v.mode
}

// Err returns the error of the last request.
func (v *View) Err() error {
	return v.err
}

// Input returns the input text.
func (v *View) Input() string {
	return v.input.Value()
}

// SetInput replaces the input text.
func (v *View) SetInput(text string) {
	v.input.SetValue(text)
}
