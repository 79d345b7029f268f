package catalog

import "errors"

// ErrUnknownEntity is returned for a name that has no catalog entry.
var ErrUnknownEntity = errors.New("unknown entity")
