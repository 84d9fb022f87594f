// Package input provides the question and URL input of the chat views.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/styles"
)

// CharLimit bounds the length of a question or URL.
const CharLimit = 1024

// maxRecall is how many submitted entries up/down can step through.
const maxRecall = 50

// PromptInput is a labelled single-line input that remembers what was
// submitted. Up and down step through earlier entries like a shell.
type PromptInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int

	recall []string
	// cursor indexes recall; len(recall) means the live draft.
	cursor int
	draft  string
}

// NewPromptInput creates a focused input showing label before the text.
func NewPromptInput(s *styles.Styles, label, placeholder string) *PromptInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = CharLimit
	ti.Width = 50

	return &PromptInput{
		textinput: ti,
		styles:    s,
		label:     label,
		width:     50,
	}
}

func (s *PromptInput) Init() tea.Cmd {
	return textinput.Blink
}

func (s *PromptInput) Update(msg tea.Msg) (*PromptInput, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && s.textinput.Focused() {
		switch key.Type {
		case tea.KeyUp:
			s.step(-1)
			return s, nil
		case tea.KeyDown:
			s.step(1)
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.textinput, cmd = s.textinput.Update(msg)
	return s, cmd
}

// step moves through recalled entries, keeping the unsent draft at the end.
func (s *PromptInput) step(delta int) {
	next := s.cursor + delta
	if next < 0 || next > len(s.recall) {
		return
	}
	if s.cursor == len(s.recall) {
		s.draft = s.textinput.Value()
	}
	s.cursor = next
	if next == len(s.recall) {
		s.textinput.SetValue(s.draft)
	} else {
		s.textinput.SetValue(s.recall[next])
	}
	s.textinput.CursorEnd()
}

// Submit returns the trimmed text, remembers it for recall and clears
// the input. Blank input returns "" and is not remembered.
func (s *PromptInput) Submit() string {
	text := strings.TrimSpace(s.textinput.Value())
	if text == "" {
		return ""
	}
	if n := len(s.recall); n == 0 || s.recall[n-1] != text {
		s.recall = append(s.recall, text)
		if len(s.recall) > maxRecall {
			s.recall = s.recall[len(s.recall)-maxRecall:]
		}
	}
	s.Reset()
	return text
}

func (s *PromptInput) View() string {
	label := s.styles.Title.Render(s.label + " ")
	input := s.styles.InputField.Render(s.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, input)
}

func (s *PromptInput) Value() string {
	return s.textinput.Value()
}

func (s *PromptInput) SetValue(value string) {
	s.textinput.SetValue(value)
}

func (s *PromptInput) Focus() tea.Cmd {
	return s.textinput.Focus()
}

func (s *PromptInput) Blur() {
	s.textinput.Blur()
}

func (s *PromptInput) Focused() bool {
	return s.textinput.Focused()
}

// SetWidth fits the text field into width after the label.
func (s *PromptInput) SetWidth(width int) {
	s.width = width
	s.textinput.Width = max(width-lipgloss.Width(s.label)-6, 20)
}

func (s *PromptInput) Width() int {
	return s.width
}

// Reset clears the input and returns recall to the live draft.
func (s *PromptInput) Reset() {
	s.textinput.Reset()
	s.cursor = len(s.recall)
	s.draft = ""
}
