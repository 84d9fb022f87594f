package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// SetupPage explains which configuration is missing.
type SetupPage struct{}

func (SetupPage) ID() PageID    { return PageSetup }
func (SetupPage) Title() string { return "Setup" }

func (SetupPage) Render(s *State) string {
	var b strings.Builder
	b.WriteString("docchat needs some configuration before it can answer questions.\n\n")

	err := s.SetupError()
	if err == nil {
		b.WriteString("Everything is configured.\n")
		return b.String()
	}

	var cfgErr *domain.ConfigError
	if !errors.As(err, &cfgErr) {
		fmt.Fprintf(&b, "Problem: %v\n\n", err)
		b.WriteString("Run 'docchat settings' to review the configuration.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Missing or invalid setting: %s\n", cfgErr.Field)
	fmt.Fprintf(&b, "Reason: %v\n\n", cfgErr.Err)

	switch cfgErr.Field {
	case "llm.api_key":
		b.WriteString(keyHint(s.Settings.LLM.Provider))
	case "embedding.api_key":
		b.WriteString(keyHint(s.Settings.Embedding.Provider))
	case "store.postgres_dsn":
		b.WriteString("Set store.postgres_dsn in config.toml or switch store.backend to sqlite.\n")
	default:
		b.WriteString("Run 'docchat settings' to fix.\n")
	}
	return b.String()
}

func keyHint(provider domain.AIProvider) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please provide a key for %s:\n", provider.Description())
	if env := provider.APIKeyEnv(); env != "" {
		fmt.Fprintf(&b, "  export %s=...        (or add it to .env)\n", env)
	}
	fmt.Fprintf(&b, "  docchat settings set-key %s\n", provider)
	return b.String()
}

// ChatPage shows the session transcript.
type ChatPage struct{}

func (ChatPage) ID() PageID    { return PageChat }
func (ChatPage) Title() string { return "Chat" }

func (ChatPage) Render(s *State) string {
	turns := s.Chat.History()
	if len(turns) == 0 {
		return "Ask a question about your documents.\n"
	}
	var b strings.Builder
	for _, t := range turns {
		switch t.Role {
		case domain.RoleUser:
			fmt.Fprintf(&b, "You: %s\n\n", t.Content)
		case domain.RoleAssistant:
			fmt.Fprintf(&b, "Assistant: %s\n\n", t.Content)
		}
	}
	return b.String()
}

// SummarisePage describes the URL summariser.
type SummarisePage struct{}

func (SummarisePage) ID() PageID    { return PageSummarise }
func (SummarisePage) Title() string { return "Summarise URL" }

func (SummarisePage) Render(s *State) string {
	var b strings.Builder
	b.WriteString("Enter a web page URL to summarise.\n\n")
	format := s.Settings.Chat.Format
	if !format.IsValid() {
		format = domain.SummaryFormatNone
	}
	fmt.Fprintf(&b, "Format:   %s\n", format.Description())
	fmt.Fprintf(&b, "Language: %s\n", languageOrDefault(s.Settings.Chat.Language))
	return b.String()
}

// StatusPage shows the collection and readiness.
type StatusPage struct{}

func (StatusPage) ID() PageID    { return PageStatus }
func (StatusPage) Title() string { return "Status" }

func (StatusPage) Render(s *State) string {
	var b strings.Builder
	st := s.Settings

	fmt.Fprintf(&b, "State:       %s\n", s.Ingestion.State())
	fmt.Fprintf(&b, "Collection:  %s (%s)\n", st.Store.Collection, st.Store.Backend)
	fmt.Fprintf(&b, "Source:      %s\n", st.Ingest.SourceDir)
	fmt.Fprintf(&b, "Embedding:   %s / %s\n", st.Embedding.Provider, st.Embedding.Model)
	fmt.Fprintf(&b, "LLM:         %s / %s\n", st.LLM.Provider, st.LLM.Model)
	fmt.Fprintf(&b, "Top k:       %d\n", s.Retrieval.K())

	if report := s.Ingestion.Report(); report != nil {
		fmt.Fprintf(&b, "Indexed:     %d\n", len(report.Indexed))
		fmt.Fprintf(&b, "Skipped:     %d\n", len(report.Skipped))
		for _, skipped := range report.Skipped {
			fmt.Fprintf(&b, "  - %s: %v\n", skipped.Name, skipped.Err)
		}
	}
	if err := s.LastError(); err != nil {
		fmt.Fprintf(&b, "Last error:  %v\n", err)
	}
	for _, w := range s.Warnings() {
		fmt.Fprintf(&b, "Warning:     %s\n", w)
	}
	return b.String()
}

// HelpPage lists the commands and key bindings.
type HelpPage struct{}

func (HelpPage) ID() PageID    { return PageHelp }
func (HelpPage) Title() string { return "Help" }

func (HelpPage) Render(*State) string {
	return `Commands
  docchat ingest              build the document collection
  docchat ask <question>      ask a single question
  docchat url <url>           summarise a web page
  docchat chat                interactive chat
  docchat status              collection and readiness
  docchat settings            show or change configuration
  docchat mcp serve           expose retrieval over MCP

Keys
  enter       send
  tab         next page
  esc         menu
  ctrl+f      cycle answer format
  ctrl+l      clear history
  ?           help
  ctrl+c      quit
`
}

func languageOrDefault(lang string) string {
	if lang == "" {
		return domain.DefaultLanguage
	}
	return lang
}
