// Package lock serializes reindex runs of the same logical name.
//
// Two runs against one alias would race on the same target slot, so the
// command layer and the scheduler take a lock keyed by the entity name before
// starting a run. RedisLocker works across hosts; FileLocker uses gofrs/flock
// and is the default when no Redis URL is configured. Lock never blocks: a
// held key returns ErrLocked and the caller skips the run.
//
//	release, err := locker.Lock(ctx, "reindex:products")
//	if errors.Is(err, lock.ErrLocked) {
//	    return nil
//	}
//	defer release(context.WithoutCancel(ctx))
package lock
