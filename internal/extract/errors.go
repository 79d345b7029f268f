package extract

import "errors"

var (
	ErrSourceUnavailable = errors.New("relational source unavailable")
	ErrUnknownDialect    = errors.New("unknown sql dialect")
)
