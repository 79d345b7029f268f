package schedule

import "errors"

var (
	ErrInvalidSchedule      = errors.New("invalid schedule expression")
	ErrJobAlreadyRegistered = errors.New("job already registered")
	ErrNilJob               = errors.New("job function is nil")
	ErrNoJobs               = errors.New("scheduler has no jobs")
	ErrJobPanicked          = errors.New("job panicked")
)
