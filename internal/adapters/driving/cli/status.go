package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/app"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the collection and readiness",
	Long: `Show the configured providers and the state of the document collection.

With --ingest the collection is built first, so the report includes the
indexed and skipped files.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().Bool("ingest", false, "build the collection before reporting")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	state, err := session(cmd)
	if err != nil {
		return err
	}

	build, err := cmd.Flags().GetBool("ingest")
	if err != nil {
		return fmt.Errorf("getting ingest flag: %w", err)
	}
	if build && !state.NeedsSetup() {
		// Failures are shown on the status page.
		_, _ = ingest(cmd, state, true)
	}

	out, err := app.DefaultRouter().Render(state, app.PageStatus)
	if err != nil {
		return err
	}
	cmd.Print(out)
	return nil
}
