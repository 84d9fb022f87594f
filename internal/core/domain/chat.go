package domain

import "time"

// Role identifies the author of a chat turn.
type Role string

// Chat roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// ChatTurn is one message in the session chat history.
type ChatTurn struct {
	ID        string
	Role      Role
	Content   string
	CreatedAt time.Time
}

// SummaryFormat is the formatting directive appended to a prompt.
type SummaryFormat string

// Available summary formats.
const (
	// SummaryFormatNone adds no formatting directive.
	SummaryFormatNone SummaryFormat = "none"

	// SummaryFormatWords100 asks for roughly one hundred words.
	SummaryFormatWords100 SummaryFormat = "words100"

	// SummaryFormatParagraphs2 asks for two connecting paragraphs.
	SummaryFormatParagraphs2 SummaryFormat = "paragraphs2"

	// SummaryFormatBullets5 asks for five bullet points.
	SummaryFormatBullets5 SummaryFormat = "bullets5"
)

// IsValid returns true if the format is recognised.
func (f SummaryFormat) IsValid() bool {
	switch f {
	case SummaryFormatNone, SummaryFormatWords100, SummaryFormatParagraphs2, SummaryFormatBullets5:
		return true
	default:
		return false
	}
}

// Directive returns the phrase inserted into the prompt, or "" for none.
func (f SummaryFormat) Directive() string {
	switch f {
	case SummaryFormatWords100:
		return "in 100 words"
	case SummaryFormatParagraphs2:
		return "in 2 connecting paragraphs"
	case SummaryFormatBullets5:
		return "in 5 bullet points"
	default:
		return ""
	}
}

// Description returns a human-readable description of the format.
func (f SummaryFormat) Description() string {
	switch f {
	case SummaryFormatNone:
		return "Free form"
	case SummaryFormatWords100:
		return "100 words"
	case SummaryFormatParagraphs2:
		return "2 connecting paragraphs"
	case SummaryFormatBullets5:
		return "5 bullet points"
	default:
		return unknownDescription
	}
}

// AllSummaryFormats returns all available summary formats.
func AllSummaryFormats() []SummaryFormat {
	return []SummaryFormat{
		SummaryFormatNone,
		SummaryFormatWords100,
		SummaryFormatParagraphs2,
		SummaryFormatBullets5,
	}
}

// DefaultLanguages returns the output languages offered by default.
func DefaultLanguages() []string {
	return []string{"English", "French", "Spanish"}
}

// AskOptions controls a single question/answer exchange.
type AskOptions struct {
	// Format is the formatting directive.
	Format SummaryFormat

	// Language is the output language. Empty means the configured default.
	Language string

	// Stream requests incremental delivery.
	Stream bool
}

// Answer is the result of one completed exchange.
type Answer struct {
	// Text is the full response text.
	Text string

	// Sources are the IDs of the records used as context, in rank order.
	Sources []string

	// Grounded is false when the question was sent without context.
	Grounded bool
}
