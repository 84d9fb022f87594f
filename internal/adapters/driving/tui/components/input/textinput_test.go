package input

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/styles"
)

func TestNewPromptInput(t *testing.T) {
	s := styles.DefaultStyles()
	input := NewPromptInput(s, "Ask:", "Type a question...")

	require.NotNil(t, input)
	assert.Equal(t, "", input.Value())
	assert.True(t, input.Focused())
}

func TestNewPromptInput_NilStyles(t *testing.T) {
	input := NewPromptInput(nil, "Ask:", "")

	require.NotNil(t, input)
	assert.NotNil(t, input.styles)
}

func TestPromptInput_Init(t *testing.T) {
	input := NewPromptInput(nil, "Ask:", "")

	assert.NotNil(t, input.Init())
}

func TestPromptInput_View(t *testing.T) {
	input := NewPromptInput(nil, "URL:", "")

	assert.Contains(t, input.View(), "URL:")
}

func TestPromptInput_SetValue(t *testing.T) {
	input := NewPromptInput(nil, "Ask:", "")

	input.SetValue("When is bedtime?")

	assert.Equal(t, "When is bedtime?", input.Value())
}

func TestPromptInput_FocusAndBlur(t *testing.T) {
	input := NewPromptInput(nil, "Ask:", "")

	input.Blur()
	assert.False(t, input.Focused())

	cmd := input.Focus()
	assert.NotNil(t, cmd)
	assert.True(t, input.Focused())
}

func TestPromptInput_Width(t *testing.T) {
	input := NewPromptInput(nil, "Ask:", "")
	assert.Equal(t, 50, input.Width())

	input.SetWidth(100)
	assert.Equal(t, 100, input.Width())

	input.SetWidth(10)
	assert.Equal(t, 10, input.Width())
	assert.Equal(t, 20, input.textinput.Width)
}

func TestPromptInput_Reset(t *testing.T) {
	input := NewPromptInput(nil, "Ask:", "")
	input.SetValue("some text")

	input.Reset()

	assert.Equal(t, "", input.Value())
}

func TestPromptInput_Update_Typing(t *testing.T) {
	input := NewPromptInput(nil, "Ask:", "")

	for _, k := range "hello" {
		input.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{k}})
	}
	input.Update(tea.KeyMsg{Type: tea.KeyBackspace})

	assert.Equal(t, "hell", input.Value())
}

func TestPromptInput_CharLimit(t *testing.T) {
	input := NewPromptInput(nil, "Ask:", "")

	input.SetValue(strings.Repeat("a", CharLimit+10))

	assert.Len(t, input.Value(), CharLimit)
}

func TestPromptInput_Submit(t *testing.T) {
	input := NewPromptInput(nil, "Ask:", "")

	input.SetValue("  ")
	assert.Empty(t, input.Submit())

	input.SetValue("  When is lunch?  ")
	assert.Equal(t, "When is lunch?", input.Submit())
	assert.Empty(t, input.Value())
}

func TestPromptInput_Recall(t *testing.T) {
	input := NewPromptInput(nil, "Ask:", "")
	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}

	for _, q := range []string{"When is lunch?", "When is bedtime?", "When is bedtime?"} {
		input.SetValue(q)
		input.Submit()
	}
	input.SetValue("draft")

	input.Update(up)
	assert.Equal(t, "When is bedtime?", input.Value())
	input.Update(up)
	assert.Equal(t, "When is lunch?", input.Value(), "repeated questions are stored once")
	input.Update(up)
	assert.Equal(t, "When is lunch?", input.Value(), "stops at the oldest entry")

	input.Update(down)
	input.Update(down)
	assert.Equal(t, "draft", input.Value(), "the unsent draft is restored")
	input.Update(down)
	assert.Equal(t, "draft", input.Value())
}

func TestPromptInput_RecallIsBounded(t *testing.T) {
	input := NewPromptInput(nil, "Ask:", "")
	for i := 0; i < maxRecall+5; i++ {
		input.SetValue(strings.Repeat("q", i+1))
		input.Submit()
	}

	assert.Len(t, input.recall, maxRecall)
	assert.Equal(t, strings.Repeat("q", 6), input.recall[0])
}
