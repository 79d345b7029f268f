package reindex

import "errors"

var (
	// ErrRunFailed wraps every error of a run that ended in FAILED.
	ErrRunFailed = errors.New("reindex run failed")

	// ErrRunSkipped means another run of the same entity holds the lock.
	ErrRunSkipped = errors.New("reindex run skipped")

	// ErrEmptyExtraction is returned when the source yields no rows and empty
	// runs are configured to abort.
	ErrEmptyExtraction = errors.New("extraction returned no records")

	// ErrInvalidTransition is an illegal state change, a programming error.
	ErrInvalidTransition = errors.New("invalid state transition")
)
