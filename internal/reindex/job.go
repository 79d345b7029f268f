package reindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/reindexer/pkg/lock"
	"github.com/dmitrymomot/reindexer/pkg/logger"
)

// Job is a runnable reindex of one logical index.
type Job interface {
	Name() string
	Run(ctx context.Context) (Summary, error)
}

// LockKey is the lock name guarding runs of entity.
func LockKey(entity string) string {
	return "reindex:" + entity
}

type lockedJob struct {
	job    Job
	locker lock.Locker
	logger *slog.Logger
}

// WithLock serializes runs of job across processes sharing locker. A run
// that finds the lock taken returns ErrRunSkipped without touching anything.
func WithLock(job Job, locker lock.Locker, log *slog.Logger) Job {
	if log == nil {
		log = logger.Discard()
	}
	return &lockedJob{job: job, locker: locker, logger: log}
}

func (j *lockedJob) Name() string { return j.job.Name() }

func (j *lockedJob) Run(ctx context.Context) (Summary, error) {
	key := LockKey(j.job.Name())
	release, err := j.locker.Lock(ctx, key)
	if err != nil {
		sum := Summary{Entity: j.job.Name(), State: StateStart}
		if errors.Is(err, lock.ErrLocked) {
			j.logger.WarnContext(ctx, "run already in progress, skipping", logger.Entity(j.job.Name()))
			return sum, errors.Join(ErrRunSkipped, err)
		}
		return sum, errors.Join(ErrRunFailed, err)
	}

	sum, runErr := j.job.Run(ctx)

	if err := release(context.WithoutCancel(ctx)); err != nil {
		j.logger.WarnContext(ctx, "lock release failed", slog.String("key", key), logger.Error(err))
		sum.warn(fmt.Sprintf("lock %s not released: %v", key, err))
	}
	return sum, runErr
}
