package transform

import "errors"

// ErrMalformedRecord marks a row that does not match its entity's shape.
var ErrMalformedRecord = errors.New("malformed record")
