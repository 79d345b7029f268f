package reindex

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/reindexer/internal/bulk"
)

// Phase names used in timings, logs and metrics.
const (
	PhaseResolve   = "resolve"
	PhaseEnsure    = "ensure"
	PhaseExtract   = "extract"
	PhaseTransform = "transform"
	PhaseLoad      = "load"
	PhaseAlias     = "alias"
	PhaseCleanup   = "cleanup"
)

// Timing is the wall time of one phase.
type Timing struct {
	Phase    string
	Duration time.Duration
}

// Summary describes a finished run.
type Summary struct {
	RunID      uuid.UUID
	Entity     string
	State      State
	Path       []State // states visited, in order
	Target     string  // physical index built by the run
	Stale      string  // physical index of the other slot
	Extracted  int
	Indexed    int
	Failed     int
	Failures   []bulk.Failure
	Warnings   []string
	Timings    []Timing
	StartedAt  time.Time
	FinishedAt time.Time
}

// Done reports whether the run completed.
func (s Summary) Done() bool { return s.State == StateDone }

// Timing returns the duration of phase, or zero if it did not run.
func (s Summary) Timing(phase string) time.Duration {
	for _, t := range s.Timings {
		if t.Phase == phase {
			return t.Duration
		}
	}
	return 0
}

// Total is the wall time of the whole run.
func (s Summary) Total() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

func (s *Summary) warn(msg string) {
	s.Warnings = append(s.Warnings, msg)
}
