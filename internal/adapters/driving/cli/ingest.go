package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/app"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index the documents in the source directory",
	Long: `Extract the text of every PDF and text file in the source directory,
embed it and store it in the collection. Files that cannot be read or
embedded are skipped and listed at the end.

Running ingest again overwrites records with the same filename, so the
collection never holds duplicates.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Bool("no-progress", false, "do not draw a progress bar")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	state, err := session(cmd)
	if err != nil {
		return err
	}
	if state.NeedsSetup() {
		showSetup(cmd, state)
		return state.SetupError()
	}

	noProgress, err := cmd.Flags().GetBool("no-progress")
	if err != nil {
		return fmt.Errorf("getting no-progress flag: %w", err)
	}

	report, err := ingest(cmd, state, !noProgress)
	if err != nil {
		return err
	}

	cmd.Printf("Indexed %d document(s) into collection %q in %s\n",
		len(report.Indexed), report.Collection, report.Duration.Round(time.Millisecond))
	printSkipped(cmd, report)
	return nil
}

// ingest builds the collection, drawing a progress bar on stderr when
// it is a terminal.
func ingest(cmd *cobra.Command, state *app.State, showProgress bool) (*domain.IngestReport, error) {
	var (
		progress driving.ProgressFunc
		finish   = func() {}
	)
	if showProgress && isTerminal(cmd.ErrOrStderr()) {
		progress, finish = ingestProgress(cmd.ErrOrStderr())
	}

	report, err := state.EnsureReady(cmd.Context(), progress)
	finish()
	return report, err
}

func printSkipped(cmd *cobra.Command, report *domain.IngestReport) {
	if len(report.Skipped) == 0 {
		return
	}
	cmd.Printf("Skipped %d file(s):\n", len(report.Skipped))
	for _, s := range report.Skipped {
		cmd.Printf("  %s: %v\n", s.Name, s.Err)
	}
}

// showSetup prints the setup page to stderr.
func showSetup(cmd *cobra.Command, state *app.State) {
	out, err := app.DefaultRouter().Render(state, app.PageSetup)
	if err != nil {
		return
	}
	fmt.Fprintln(cmd.ErrOrStderr(), out)
}
