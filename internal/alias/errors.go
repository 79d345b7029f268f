package alias

import (
	"errors"
	"fmt"
)

var (
	ErrAliasAdd    = errors.New("failed to add alias")
	ErrAliasRemove = errors.New("failed to remove alias")
	ErrAliasRead   = errors.New("failed to read alias")
	ErrNotAcked    = errors.New("alias update not acknowledged")
)

// Phase names the half of a swap that failed.
type Phase string

const (
	PhaseAdd    Phase = "add"
	PhaseRemove Phase = "remove"
)

// SwapError reports which phase of a swap failed. An add failure leaves the
// alias untouched; a remove failure leaves the alias on both indices.
type SwapError struct {
	Phase Phase
	Alias string
	Index string
	Err   error
}

func (e *SwapError) Error() string {
	return fmt.Sprintf("alias %s %s %s: %v", e.Alias, e.Phase, e.Index, e.Err)
}

func (e *SwapError) Unwrap() error { return e.Err }

// IsRemoveFailure reports whether err is a swap that failed only while
// detaching the old index.
func IsRemoveFailure(err error) bool {
	var se *SwapError
	return errors.As(err, &se) && se.Phase == PhaseRemove
}
