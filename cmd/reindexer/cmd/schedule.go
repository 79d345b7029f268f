package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/reindexer/internal/catalog"
	"github.com/dmitrymomot/reindexer/internal/reindex"
	"github.com/dmitrymomot/reindexer/pkg/httpserver"
	"github.com/dmitrymomot/reindexer/pkg/logger"
	"github.com/dmitrymomot/reindexer/pkg/schedule"
)

func newScheduleCmd() *cobra.Command {
	var runOnStart bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run reindex jobs periodically and serve health and metrics",
		Long: `schedule keeps running and rebuilds each entity on its schedule
(SCHEDULE_PRODUCERS, SCHEDULE_PRODUCTS). Accepted forms: "every 6h",
"hourly :15", "daily 03:00", "weekly sun 03:00".

/health/live, /health/ready and /metrics are served on HTTP_ADDR.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, appOptions{limit: -1, runtimeMetrics: true, logOutput: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.close()

			return a.serve(ctx, runOnStart)
		},
	}

	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "Run every job immediately instead of waiting for its first slot")

	return cmd
}

// serve runs the scheduler and the operational HTTP server until ctx ends.
func (a *app) serve(ctx context.Context, runOnStart bool, opts ...httpserver.Option) error {
	schedOpts := []schedule.Option{
		schedule.WithCheckInterval(a.settings.Schedule.CheckInterval),
		schedule.WithLogger(a.log),
	}
	if runOnStart {
		schedOpts = append(schedOpts, schedule.WithRunOnStart())
	}
	sched := schedule.New(schedOpts...)

	for _, name := range catalog.Names() {
		s, err := schedule.Parse(a.settings.Schedule.expr(name))
		if err != nil {
			return err
		}
		job, err := a.job(name)
		if err != nil {
			return err
		}
		if err := sched.AddJob(name, s, a.scheduled(job)); err != nil {
			return err
		}
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Checks:       a.checks(),
		CheckTimeout: a.settings.HTTP.CheckTimeout,
		Metrics:      a.metrics.Handler(),
		Logger:       a.log,
	})
	srv := httpserver.NewFromConfig(a.settings.HTTP, append([]httpserver.Option{httpserver.WithLogger(a.log)}, opts...)...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, router)
	})
	g.Go(func() error {
		return sched.Start(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// scheduled adapts a job to the scheduler. A skipped run is not a failure.
func (a *app) scheduled(job reindex.Job) schedule.JobFunc {
	return func(ctx context.Context) error {
		_, err := job.Run(ctx)
		a.finished(job.Name(), err)
		if errors.Is(err, reindex.ErrRunSkipped) {
			a.log.InfoContext(ctx, "scheduled run skipped", logger.Entity(job.Name()))
			return nil
		}
		return err
	}
}
