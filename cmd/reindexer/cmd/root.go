// Package cmd implements the reindexer command line.
package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/reindexer/internal/reindex"
	"github.com/dmitrymomot/reindexer/pkg/config"
)

// Process exit codes.
const (
	ExitDone      = 0
	ExitFailed    = 1 // a run ended in FAILED or was skipped
	ExitBootstrap = 2 // configuration, connection or usage error
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	var envFiles []string

	cmd := &cobra.Command{
		Use:   "reindexer",
		Short: "Blue/green rebuild of the producers and products search indices",
		Long: `reindexer copies producers and products from the relational database into
the search engine. Each logical index has two physical slots; a run fills the
inactive one and moves the alias onto it, so searches never see a partial index.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if len(envFiles) == 0 {
				return nil
			}
			return config.LoadEnv(envFiles...)
		},
	}

	cmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Load environment from these dotenv files (later files win)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newScheduleCmd())

	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return ExitCode(NewRootCmd().Execute())
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitDone
	case errors.Is(err, reindex.ErrRunFailed), errors.Is(err, reindex.ErrRunSkipped):
		return ExitFailed
	default:
		return ExitBootstrap
	}
}
