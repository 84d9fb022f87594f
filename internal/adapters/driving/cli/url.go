package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

var urlCmd = &cobra.Command{
	Use:   "url <url> [instruction]",
	Short: "Summarise a web page",
	Long: `Fetch a web page, extract its text and ask the language model to
summarise it. An optional instruction replaces the default request.

Examples:
  docchat url https://example.com/policy
  docchat url https://example.com/policy "List the key dates" -f bullets5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runURL,
}

func init() {
	addAnswerFlags(urlCmd)
	rootCmd.AddCommand(urlCmd)
}

func runURL(cmd *cobra.Command, args []string) error {
	target := args[0]
	instruction := strings.TrimSpace(strings.Join(args[1:], " "))

	state, err := session(cmd)
	if err != nil {
		return err
	}
	if state.NeedsSetup() {
		showSetup(cmd, state)
		return state.SetupError()
	}
	opts, err := answerOptions(cmd, state)
	if err != nil {
		return err
	}

	_, err = printAnswer(cmd, opts, func(onDelta driving.DeltaFunc) (*domain.Answer, error) {
		return state.Chat.SummariseURL(cmd.Context(), target, instruction, opts, onDelta)
	})
	return err
}
