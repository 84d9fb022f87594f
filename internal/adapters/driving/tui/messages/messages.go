// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docchat/internal/app"
	"github.com/custodia-labs/docchat/internal/core/domain"
)

// PageChanged is sent when navigating to a page.
type PageChanged struct {
	Page app.PageID
}

// MenuRequested is sent to return to the main menu.
type MenuRequested struct{}

// IngestProgress reports one processed file.
type IngestProgress struct {
	Done  int
	Total int
	Name  string
}

// IngestCompleted carries the outcome of building the collection.
type IngestCompleted struct {
	Report *domain.IngestReport
	Err    error
}

// AnswerDelta carries one streamed increment of an answer.
type AnswerDelta struct {
	Delta string
}

// AnswerCompleted carries the outcome of a question or URL summary.
type AnswerCompleted struct {
	Answer *domain.Answer
	Err    error
}

// HistoryCleared signals the chat history was cleared.
type HistoryCleared struct{}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// Listen returns a command that delivers the next message from events.
// It returns nil once events is closed.
func Listen(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}
