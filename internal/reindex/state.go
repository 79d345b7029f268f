package reindex

import "fmt"

// State is a step of a reindex run.
type State string

const (
	StateStart          State = "START"
	StateTargetResolved State = "TARGET_RESOLVED"
	StateIndexEnsured   State = "INDEX_ENSURED"
	StateExtracted      State = "EXTRACTED"
	StateTransformed    State = "TRANSFORMED"
	StateLoaded         State = "LOADED"
	StateAliased        State = "ALIASED"
	StateStaleDeleted   State = "STALE_DELETED"
	StateDone           State = "DONE"
	StateFailed         State = "FAILED"
)

// transitions lists the forward moves out of each state. FAILED is reachable
// from every non-terminal state and is not listed.
var transitions = map[State][]State{
	StateStart:          {StateTargetResolved},
	StateTargetResolved: {StateIndexEnsured},
	StateIndexEnsured:   {StateExtracted},
	StateExtracted:      {StateTransformed},
	StateTransformed:    {StateLoaded},
	StateLoaded:         {StateAliased},
	StateAliased:        {StateStaleDeleted, StateDone},
	StateStaleDeleted:   {StateDone},
}

func (s State) String() string { return string(s) }

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// CanTransition reports whether a run may move from one state to another.
func CanTransition(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionError is an illegal state change.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("no transition from state '%s' to '%s'", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// machine tracks one run's position and the path it took.
type machine struct {
	current State
	path    []State
}

func newMachine() *machine {
	return &machine{current: StateStart, path: []State{StateStart}}
}

func (m *machine) advance(to State) error {
	if !CanTransition(m.current, to) {
		return &TransitionError{From: m.current, To: to}
	}
	m.current = to
	m.path = append(m.path, to)
	return nil
}

// fail moves to FAILED and returns err unchanged.
func (m *machine) fail(err error) error {
	if !m.current.Terminal() {
		m.current = StateFailed
		m.path = append(m.path, StateFailed)
	}
	return err
}
