package lock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// FileLocker holds locks as flock(2) locks on files in a directory.
// It only serializes runs on the same host.
type FileLocker struct {
	dir string
}

// NewFile creates a FileLocker keeping lock files in dir.
func NewFile(dir string) *FileLocker {
	return &FileLocker{dir: dir}
}

// Lock takes the flock for key without blocking. It returns ErrLocked when
// another process holds it.
func (l *FileLocker) Lock(_ context.Context, key string) (Release, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, errors.Join(ErrAcquire, err)
	}

	fl := flock.New(filepath.Join(l.dir, fileName(key)))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, errors.Join(ErrAcquire, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return func(context.Context) error {
		if err := fl.Unlock(); err != nil {
			return errors.Join(ErrRelease, err)
		}
		return nil
	}, nil
}

func fileName(key string) string {
	r := strings.NewReplacer("/", "_", ":", "_", "\\", "_")
	return r.Replace(key) + ".lock"
}
