// Package cli implements the docchat command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/adapters/driven/config/env"
	"github.com/custodia-labs/docchat/internal/app"
	"github.com/custodia-labs/docchat/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var (
	verbose    bool
	configPath string
)

// appState is the session shared by all commands. It is set by SetState
// or loaded on first use.
var appState *app.State

// loadState builds the session for commands that need one.
var loadState = func(ctx context.Context) (*app.State, error) {
	return app.Load(ctx, app.Options{ConfigPath: configPath})
}

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your documents",
	Long: `docchat indexes the PDF and text files in a directory and answers
questions about them with a language model, citing the documents used.

Run 'docchat ingest' to build the collection, then 'docchat ask' or
'docchat chat' to ask questions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default $DOCCHAT_CONFIG or ~/.docchat/config.toml)")
}

// SetVersion sets the version reported by 'docchat version'.
func SetVersion(v string) {
	version = v
}

// SetState injects the session used by every command.
func SetState(s *app.State) {
	appState = s
}

// session returns the shared session, loading it on first use.
func session(cmd *cobra.Command) (*app.State, error) {
	if appState != nil {
		return appState, nil
	}
	s, err := loadState(cmd.Context())
	if err != nil {
		return nil, err
	}
	appState = s
	return s, nil
}

// Execute runs the root command. A .env file in the working directory is
// loaded first. Errors are printed as user-facing messages.
func Execute(ctx context.Context) error {
	if _, err := env.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	err := rootCmd.ExecuteContext(ctx)
	if appState != nil {
		if cerr := appState.Close(); cerr != nil {
			logger.Warn("closing session: %v", cerr)
		}
		appState = nil
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %s\n", userMessage(err))
	}
	return err
}
