package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	osearch "github.com/opensearch-project/opensearch-go/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/reindexer/internal/alias"
	"github.com/dmitrymomot/reindexer/internal/bulk"
	"github.com/dmitrymomot/reindexer/internal/catalog"
	"github.com/dmitrymomot/reindexer/internal/extract"
	"github.com/dmitrymomot/reindexer/internal/index"
	"github.com/dmitrymomot/reindexer/internal/reindex"
	"github.com/dmitrymomot/reindexer/pkg/config"
	"github.com/dmitrymomot/reindexer/pkg/httpserver"
	"github.com/dmitrymomot/reindexer/pkg/lock"
	"github.com/dmitrymomot/reindexer/pkg/logger"
	"github.com/dmitrymomot/reindexer/pkg/metrics"
	"github.com/dmitrymomot/reindexer/pkg/opensearch"
	"github.com/dmitrymomot/reindexer/pkg/redis"
	"github.com/dmitrymomot/reindexer/pkg/sqldb"
)

type lockConfig struct {
	Disabled bool          `env:"LOCK_DISABLED" envDefault:"false"` // runs are serialized outside the process
	Dir      string        `env:"LOCK_DIR"`                         // file locks when Redis is disabled; defaults to the temp dir
	TTL      time.Duration `env:"LOCK_TTL" envDefault:"2h"`
}

type scheduleConfig struct {
	Producers     string        `env:"SCHEDULE_PRODUCERS" envDefault:"every 6h"`
	Products      string        `env:"SCHEDULE_PRODUCTS" envDefault:"daily 03:00"`
	CheckInterval time.Duration `env:"SCHEDULE_CHECK_INTERVAL" envDefault:"30s"`
}

func (c scheduleConfig) expr(entity string) string {
	switch entity {
	case catalog.Producers:
		return c.Producers
	case catalog.Products:
		return c.Products
	}
	return ""
}

type settings struct {
	Log      logger.Config
	Search   opensearch.Config
	Source   sqldb.Config
	Redis    redis.Config
	Metrics  metrics.Config
	HTTP     httpserver.Config
	Lock     lockConfig
	Schedule scheduleConfig
}

func loadSettings() (settings, error) {
	var s settings
	err := errors.Join(
		config.Load(&s.Log),
		config.Load(&s.Search),
		config.Load(&s.Source),
		config.Load(&s.Redis),
		config.Load(&s.Metrics),
		config.Load(&s.HTTP),
		config.Load(&s.Lock),
		config.Load(&s.Schedule),
	)
	return s, err
}

type appOptions struct {
	limit          int // negative keeps <ENTITY>_LIMIT
	runtimeMetrics bool
	logOutput      io.Writer
}

// app holds the connections shared by every job of one process.
type app struct {
	settings settings
	log      *slog.Logger
	search   *osearch.Client
	db       *sql.DB
	redis    *goredis.Client
	dialect  extract.Dialect
	locker   lock.Locker
	metrics  *metrics.Recorder
	limit    int
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}

	out := opts.logOutput
	if out == nil {
		out = os.Stderr
	}
	log := logger.New(
		logger.WithConfig(s.Log),
		logger.WithOutput(out),
		logger.WithContextExtractors(reindex.RunIDExtractor),
	)
	logger.SetAsDefault(log)

	dialect, err := extract.ParseDialect(s.Source.Driver)
	if err != nil {
		return nil, err
	}

	a := &app{
		settings: s,
		log:      log,
		dialect:  dialect,
		metrics:  metrics.New(opts.runtimeMetrics),
		limit:    opts.limit,
	}

	if a.search, err = opensearch.New(ctx, s.Search); err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "search engine reachable", slog.Any("addresses", s.Search.Addresses))

	if a.db, err = sqldb.Connect(ctx, s.Source); err != nil {
		return nil, err
	}

	switch {
	case s.Redis.Enabled():
		if a.redis, err = redis.Connect(ctx, s.Redis); err != nil {
			a.close()
			return nil, err
		}
		if s.Lock.Disabled {
			a.locker = lock.Noop{}
		} else {
			a.locker = lock.NewRedis(a.redis, lock.WithTTL(s.Lock.TTL))
		}
	case s.Lock.Disabled:
		a.locker = lock.Noop{}
	default:
		dir := s.Lock.Dir
		if dir == "" {
			dir = filepath.Join(os.TempDir(), "reindexer")
		}
		a.locker = lock.NewFile(dir)
	}

	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("closing source database", logger.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("closing redis", logger.Error(err))
		}
	}
}

// job assembles the locked reindex job for one entity.
func (a *app) job(name string) (reindex.Job, error) {
	cfg, err := reindex.LoadConfig(name)
	if err != nil {
		return nil, err
	}
	if a.limit >= 0 {
		cfg.Limit = a.limit
	}

	aliasOpts := []alias.Option{alias.WithLogger(a.log)}
	if !cfg.AtomicAlias {
		aliasOpts = append(aliasOpts, alias.WithSequential())
	}
	aliases := alias.NewManager(a.search, aliasOpts...)

	job, err := catalog.Job(name, a.dialect, cfg, reindex.Deps{
		Indices:   index.NewManager(a.search, aliases, a.log),
		Extractor: extract.New(a.db, a.dialect, a.log),
		Loader: bulk.New(a.search,
			bulk.WithFlushBytes(cfg.BatchBytes),
			bulk.WithWorkers(cfg.BulkWorkers),
			bulk.WithLogger(a.log)),
		Aliases: aliases,
		Metrics: a.metrics,
		Logger:  a.log,
	})
	if err != nil {
		return nil, err
	}
	return reindex.WithLock(job, a.locker, a.log), nil
}

func (a *app) jobs(names []string) ([]reindex.Job, error) {
	out := make([]reindex.Job, 0, len(names))
	for _, name := range names {
		j, err := a.job(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, j)
	}
	return out, nil
}

// finished records the outcome of a run that the reindexer itself did not
// count.
func (a *app) finished(name string, err error) {
	if errors.Is(err, reindex.ErrRunSkipped) {
		a.metrics.RunFinished(name, metrics.ResultSkipped)
	}
}

func (a *app) checks() map[string]httpserver.Check {
	checks := map[string]httpserver.Check{
		"opensearch": opensearch.Healthcheck(a.search),
		"source":     sqldb.Healthcheck(a.db),
	}
	if a.redis != nil {
		checks["redis"] = redis.Healthcheck(a.redis)
	}
	return checks
}
