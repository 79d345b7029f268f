package lock

import "errors"

var (
	ErrLocked      = errors.New("lock is held by another run")
	ErrAcquire     = errors.New("failed to acquire lock")
	ErrRelease     = errors.New("failed to release lock")
	ErrLockExpired = errors.New("lock expired before release")
)
