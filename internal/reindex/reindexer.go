package reindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/reindexer/internal/alias"
	"github.com/dmitrymomot/reindexer/internal/bulk"
	"github.com/dmitrymomot/reindexer/internal/extract"
	"github.com/dmitrymomot/reindexer/internal/index"
	"github.com/dmitrymomot/reindexer/internal/transform"
	"github.com/dmitrymomot/reindexer/pkg/logger"
	"github.com/dmitrymomot/reindexer/pkg/metrics"
)

// Indices manages physical indices. *index.Manager satisfies it.
type Indices interface {
	ResolveTarget(ctx context.Context, logical string) (index.Target, error)
	Exists(ctx context.Context, name string) bool
	Ensure(ctx context.Context, name string, schema index.Schema) error
	Delete(ctx context.Context, name string) error
}

// Extractor reads rows from the relational source. *extract.Extractor
// satisfies it.
type Extractor interface {
	Fetch(ctx context.Context, q extract.Query, limit int) ([]extract.RawRecord, error)
}

// Loader writes encoded documents. *bulk.Loader satisfies it.
type Loader interface {
	Load(ctx context.Context, index string, docs [][]byte) (bulk.Result, error)
}

// Aliases moves the logical name between indices. *alias.Manager satisfies it.
type Aliases interface {
	Swap(ctx context.Context, alias, add string, remove ...string) error
}

// Recorder receives run metrics. *metrics.Recorder satisfies it.
type Recorder interface {
	RunFinished(entity, result string)
	Records(entity, kind string, n int)
	PhaseDuration(entity, phase string, d time.Duration)
}

// Entity is one logical index and how to build it.
type Entity[D any] struct {
	Name      string // logical name, also the alias
	Query     extract.Query
	Schema    index.Schema
	Transform transform.Func[D]
}

// Deps are the collaborators of a run.
type Deps struct {
	Indices   Indices
	Extractor Extractor
	Loader    Loader
	Aliases   Aliases
	Metrics   Recorder
	Logger    *slog.Logger
}

// Reindexer rebuilds one entity into its inactive slot and moves the alias.
type Reindexer[D any] struct {
	entity  Entity[D]
	cfg     Config
	deps    Deps
	metrics Recorder
	logger  *slog.Logger
}

// New creates a Reindexer. Metrics and Logger are optional.
func New[D any](entity Entity[D], cfg Config, deps Deps) *Reindexer[D] {
	r := &Reindexer[D]{
		entity:  entity,
		cfg:     cfg,
		deps:    deps,
		metrics: deps.Metrics,
		logger:  deps.Logger,
	}
	if r.metrics == nil {
		r.metrics = noopRecorder{}
	}
	if r.logger == nil {
		r.logger = logger.Discard()
	}
	r.logger = r.logger.With(logger.Component("reindex"), logger.Entity(entity.Name))
	return r
}

// Name returns the logical index name.
func (r *Reindexer[D]) Name() string { return r.entity.Name }

// Run executes one full reindex. The returned Summary is always populated;
// the error wraps ErrRunFailed when the run ended in FAILED.
func (r *Reindexer[D]) Run(ctx context.Context) (Summary, error) {
	sum := Summary{
		RunID:     uuid.New(),
		Entity:    r.entity.Name,
		StartedAt: time.Now(),
	}
	ctx = WithRunID(ctx, sum.RunID)
	r.logger.InfoContext(ctx, "reindex started")

	m := newMachine()
	err := r.run(ctx, m, &sum)

	sum.State = m.current
	sum.Path = m.path
	sum.FinishedAt = time.Now()
	r.report(ctx, sum, err)

	if err != nil {
		return sum, errors.Join(ErrRunFailed, err)
	}
	return sum, nil
}

func (r *Reindexer[D]) run(ctx context.Context, m *machine, sum *Summary) error {
	var target index.Target
	err := r.phase(ctx, sum, PhaseResolve, func(ctx context.Context) (err error) {
		target, err = r.deps.Indices.ResolveTarget(ctx, r.entity.Name)
		return err
	})
	if err != nil {
		return m.fail(err)
	}
	sum.Target, sum.Stale = target.Index, target.Stale
	if err := m.advance(StateTargetResolved); err != nil {
		return m.fail(err)
	}

	err = r.phase(ctx, sum, PhaseEnsure, func(ctx context.Context) error {
		return r.ensure(ctx, sum, target.Index)
	})
	if err != nil {
		return m.fail(err)
	}
	if err := m.advance(StateIndexEnsured); err != nil {
		return m.fail(err)
	}

	var records []extract.RawRecord
	err = r.phase(ctx, sum, PhaseExtract, func(ctx context.Context) (err error) {
		records, err = r.deps.Extractor.Fetch(ctx, r.entity.Query, r.cfg.Limit)
		return err
	})
	if err != nil {
		return m.fail(err)
	}
	sum.Extracted = len(records)
	r.metrics.Records(r.entity.Name, "extracted", len(records))
	if len(records) == 0 {
		if r.cfg.AbortOnEmpty {
			return m.fail(ErrEmptyExtraction)
		}
		r.logger.WarnContext(ctx, "extraction returned no records, alias will point at an empty index")
		sum.warn("extraction returned no records")
	}
	if err := m.advance(StateExtracted); err != nil {
		return m.fail(err)
	}

	var encoded [][]byte
	err = r.phase(ctx, sum, PhaseTransform, func(context.Context) error {
		docs, err := transform.All(records, r.entity.Transform)
		if err != nil {
			return err
		}
		encoded, err = transform.Encode(docs)
		return err
	})
	if err != nil {
		return m.fail(err)
	}
	records = nil
	if err := m.advance(StateTransformed); err != nil {
		return m.fail(err)
	}

	var loaded bulk.Result
	err = r.phase(ctx, sum, PhaseLoad, func(ctx context.Context) (err error) {
		loaded, err = r.deps.Loader.Load(ctx, target.Index, encoded)
		return err
	})
	sum.Indexed, sum.Failed, sum.Failures = loaded.Indexed, loaded.Failed, loaded.Failures
	r.metrics.Records(r.entity.Name, "indexed", loaded.Indexed)
	r.metrics.Records(r.entity.Name, "failed", loaded.Failed)
	if err != nil {
		return m.fail(err)
	}
	if loaded.Failed > 0 {
		sum.warn(fmt.Sprintf("%d documents rejected by %s", loaded.Failed, target.Index))
	}
	if err := m.advance(StateLoaded); err != nil {
		return m.fail(err)
	}

	detachFailed := false
	err = r.phase(ctx, sum, PhaseAlias, func(ctx context.Context) error {
		err := r.deps.Aliases.Swap(ctx, r.entity.Name, target.Index, target.Detach...)
		if err != nil && alias.IsRemoveFailure(err) {
			detachFailed = true
			r.logger.WarnContext(ctx, "old index still behind alias", logger.Alias(r.entity.Name), logger.Error(err))
			sum.warn(fmt.Sprintf("alias %s still attached to an old index: %v", r.entity.Name, err))
			return nil
		}
		return err
	})
	if err != nil {
		return m.fail(err)
	}
	if err := m.advance(StateAliased); err != nil {
		return m.fail(err)
	}

	switch {
	case !target.StaleExists:
	case detachFailed && target.StaleAliased():
		r.logger.WarnContext(ctx, "stale index kept while aliased", logger.Index(target.Stale))
		sum.warn(fmt.Sprintf("stale index %s kept: alias removal failed", target.Stale))
	default:
		deleted := false
		_ = r.phase(ctx, sum, PhaseCleanup, func(ctx context.Context) error {
			if err := r.deps.Indices.Delete(ctx, target.Stale); err != nil {
				r.logger.WarnContext(ctx, "stale index not deleted", logger.Index(target.Stale), logger.Error(err))
				sum.warn(fmt.Sprintf("stale index %s not deleted: %v", target.Stale, err))
				return nil
			}
			deleted = true
			return nil
		})
		if deleted {
			if err := m.advance(StateStaleDeleted); err != nil {
				return m.fail(err)
			}
		}
	}

	if err := m.advance(StateDone); err != nil {
		return m.fail(err)
	}
	return nil
}

// ensure creates the target slot, dropping a leftover copy first when
// ResetTarget is set.
func (r *Reindexer[D]) ensure(ctx context.Context, sum *Summary, name string) error {
	if r.cfg.ResetTarget && r.deps.Indices.Exists(ctx, name) {
		r.logger.WarnContext(ctx, "target index exists, recreating", logger.Index(name))
		sum.warn(fmt.Sprintf("target index %s existed and was recreated", name))
		if err := r.deps.Indices.Delete(ctx, name); err != nil {
			return err
		}
	}
	return r.deps.Indices.Ensure(ctx, name, r.schema())
}

func (r *Reindexer[D]) schema() index.Schema {
	s := r.entity.Schema
	if r.cfg.Shards > 0 {
		s.Shards = r.cfg.Shards
	}
	if r.cfg.Replicas >= 0 {
		s.Replicas = index.ReplicaCount(r.cfg.Replicas)
	}
	return s
}

// phase runs fn under the phase timeout and records its duration.
func (r *Reindexer[D]) phase(ctx context.Context, sum *Summary, name string, fn func(ctx context.Context) error) error {
	pctx, cancel := ctx, context.CancelFunc(func() {})
	if r.cfg.PhaseTimeout > 0 {
		pctx, cancel = context.WithTimeout(ctx, r.cfg.PhaseTimeout)
	}
	defer cancel()

	start := time.Now()
	err := fn(pctx)
	d := time.Since(start)

	sum.Timings = append(sum.Timings, Timing{Phase: name, Duration: d})
	r.metrics.PhaseDuration(r.entity.Name, name, d)

	if err != nil {
		if errors.Is(pctx.Err(), context.DeadlineExceeded) {
			err = errors.Join(fmt.Errorf("phase exceeded %s", r.cfg.PhaseTimeout), err)
		}
		r.logger.ErrorContext(ctx, "phase failed", logger.Phase(name), logger.Duration(d), logger.Error(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	r.logger.DebugContext(ctx, "phase finished", logger.Phase(name), logger.Duration(d))
	return nil
}

func (r *Reindexer[D]) report(ctx context.Context, sum Summary, err error) {
	timings := logger.Group("timings",
		slog.Duration("Query", sum.Timing(PhaseExtract)),
		slog.Duration("Json", sum.Timing(PhaseTransform)),
		slog.Duration("Elastic", sum.Timing(PhaseLoad)),
		slog.Duration("Alias", sum.Timing(PhaseAlias)),
		slog.Duration("Total", sum.Total()),
	)

	if err != nil {
		r.metrics.RunFinished(r.entity.Name, metrics.ResultFailed)
		r.logger.ErrorContext(ctx, "reindex failed",
			logger.State(sum.State), logger.Index(sum.Target), timings, logger.Error(err))
		return
	}

	r.metrics.RunFinished(r.entity.Name, metrics.ResultDone)
	r.logger.InfoContext(ctx, "Imported Records", logger.Records(sum.Indexed))
	r.logger.InfoContext(ctx, "reindex finished",
		logger.State(sum.State),
		logger.Index(sum.Target),
		slog.Int("extracted", sum.Extracted),
		slog.Int("failed", sum.Failed),
		slog.Int("warnings", len(sum.Warnings)),
		timings)
}

type noopRecorder struct{}

func (noopRecorder) RunFinished(string, string)                  {}
func (noopRecorder) Records(string, string, int)                 {}
func (noopRecorder) PhaseDuration(string, string, time.Duration) {}
