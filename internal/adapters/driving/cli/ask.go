package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/app"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
)

// streamCursor is shown after the running text while an answer streams.
const streamCursor = "▌"

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about your documents",
	Long: `Ask a single question. The most relevant documents are retrieved and
passed to the language model as context. The collection is built first
if it has not been built in this process.

Formats: none, words100, paragraphs2, bullets5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	addAnswerFlags(askCmd)
	askCmd.Flags().Bool("sources", true, "list the documents used as context")
	rootCmd.AddCommand(askCmd)
}

func addAnswerFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "", "answer format (none, words100, paragraphs2, bullets5)")
	cmd.Flags().StringP("language", "l", "", "answer language")
	cmd.Flags().Bool("no-stream", false, "print the answer only when complete")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question is required: %w", domain.ErrInvalidInput)
	}

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
	showSources, err := cmd.Flags().GetBool("sources")
	if err != nil {
		return fmt.Errorf("getting sources flag: %w", err)
	}

	report, err := ingest(cmd, state, true)
	if err != nil {
		return err
	}
	logger.Debug("Collection ready with %d record(s)", len(report.Indexed))

	answer, err := printAnswer(cmd, opts, func(onDelta driving.DeltaFunc) (*domain.Answer, error) {
		return state.Chat.Ask(cmd.Context(), question, opts, onDelta)
	})
	if err != nil {
		return err
	}

	if !answer.Grounded {
		cmd.PrintErrln("Note: no document context was available for this answer.")
	}
	if showSources && len(answer.Sources) > 0 {
		cmd.Printf("\nSources: %s\n", strings.Join(answer.Sources, ", "))
	}
	return nil
}

// answerOptions reads the answer flags, falling back to the settings.
func answerOptions(cmd *cobra.Command, state *app.State) (domain.AskOptions, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return domain.AskOptions{}, fmt.Errorf("getting format flag: %w", err)
	}
	language, err := cmd.Flags().GetString("language")
	if err != nil {
		return domain.AskOptions{}, fmt.Errorf("getting language flag: %w", err)
	}
	noStream, err := cmd.Flags().GetBool("no-stream")
	if err != nil {
		return domain.AskOptions{}, fmt.Errorf("getting no-stream flag: %w", err)
	}

	opts := domain.AskOptions{
		Format:   domain.SummaryFormat(format),
		Language: language,
		Stream:   state.Settings.Chat.Stream && !noStream,
	}
	if format != "" && !opts.Format.IsValid() {
		return opts, fmt.Errorf("unknown format %q: %w", format, domain.ErrInvalidInput)
	}
	return opts, nil
}

// printAnswer runs generate and writes the answer to stdout. Streamed
// answers are written as they arrive, followed by a cursor on terminals.
func printAnswer(
	cmd *cobra.Command,
	opts domain.AskOptions,
	generate func(onDelta driving.DeltaFunc) (*domain.Answer, error),
) (*domain.Answer, error) {
	out := cmd.OutOrStdout()

	if !opts.Stream {
		stop := func() {}
		if isTerminal(cmd.ErrOrStderr()) {
			stop = startSpinner(cmd.ErrOrStderr(), "thinking")
		}
		answer, err := generate(nil)
		stop()
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(out, answer.Text)
		return answer, nil
	}

	w := newStreamWriter(out, isTerminal(out))
	answer, err := generate(w.write)
	w.finish()
	if err != nil {
		return nil, err
	}
	return answer, nil
}

// streamWriter prints deltas, keeping a cursor after the text on
// terminals.
type streamWriter struct {
	out    io.Writer
	cursor bool
	shown  bool
}

func newStreamWriter(out io.Writer, cursor bool) *streamWriter {
	return &streamWriter{out: out, cursor: cursor}
}

func (w *streamWriter) write(delta string) {
	w.erase()
	fmt.Fprint(w.out, delta)
	if w.cursor {
		fmt.Fprint(w.out, streamCursor)
		w.shown = true
	}
}

func (w *streamWriter) finish() {
	w.erase()
	fmt.Fprintln(w.out)
}

func (w *streamWriter) erase() {
	if w.shown {
		fmt.Fprint(w.out, "\b \b")
		w.shown = false
	}
}
