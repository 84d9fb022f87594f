package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/adapters/driving/tui"
)

// chatCmd represents the interactive chat command.
var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive chat",
	Long: `Launch the interactive terminal user interface for docchat.

The collection is built in the background when the chat opens. Questions
are answered with the session history, so follow-up questions work.

Controls:
  Enter    - Send
  Tab      - Next page (chat, summarise URL, status, help)
  Ctrl+F   - Cycle answer format
  Ctrl+L   - Clear history
  Esc      - Menu
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// newProgram creates the bubbletea program. Tests replace it.
var newProgram = func(model tea.Model) interface{ Run() (tea.Model, error) } {
	return tea.NewProgram(model, tea.WithAltScreen())
}

func runChat(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	state, err := session(cmd)
	if err != nil {
		return err
	}

	app, err := tui.NewApp(state, nil)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if _, err := newProgram(app).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
