package lock

import "context"

// Release frees a held lock.
type Release func(ctx context.Context) error

// Locker serializes runs that share a key.
type Locker interface {
	// Lock acquires key without waiting. ErrLocked means another holder owns it.
	Lock(ctx context.Context, key string) (Release, error)
}

// Noop grants every lock. Used when runs are serialized by other means.
type Noop struct{}

// Lock always succeeds.
func (Noop) Lock(context.Context, string) (Release, error) {
	return func(context.Context) error { return nil }, nil
}
