package cmd

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/reindexer/internal/catalog"
	"github.com/dmitrymomot/reindexer/internal/reindex"
	"github.com/dmitrymomot/reindexer/pkg/logger"
)

const allEntities = "all"

func newRunCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:       "run producers|products|all",
		Short:     "Rebuild indices once and exit",
		ValidArgs: append(catalog.Names(), allEntities),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := []string{args[0]}
			if args[0] == allEntities {
				names = catalog.Names()
			}

			a, err := newApp(cmd.Context(), appOptions{limit: limit, logOutput: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.close()

			return a.runOnce(cmd.Context(), cmd.OutOrStdout(), names)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", -1, "Index at most this many rows per entity (overrides <ENTITY>_LIMIT)")

	return cmd
}

// runOnce runs the named entities concurrently and reports each outcome.
// Different logical names never share indices, so they may overlap.
func (a *app) runOnce(ctx context.Context, out io.Writer, names []string) error {
	jobs, err := a.jobs(names)
	if err != nil {
		return err
	}

	sums := make([]reindex.Summary, len(jobs))
	errs := make([]error, len(jobs))

	var g errgroup.Group
	for i, job := range jobs {
		g.Go(func() error {
			sums[i], errs[i] = job.Run(ctx)
			a.finished(job.Name(), errs[i])
			return nil
		})
	}
	_ = g.Wait()

	for i := range jobs {
		printSummary(out, sums[i], errs[i])
	}

	if url := a.settings.Metrics.PushgatewayURL; url != "" {
		if err := a.metrics.Push(ctx, url, a.settings.Metrics.Job); err != nil {
			a.log.WarnContext(ctx, "metrics push failed", logger.Error(err))
		}
	}

	return errors.Join(errs...)
}
