package index

import "errors"

var (
	ErrIndexCreate = errors.New("failed to create index")
	ErrIndexDelete = errors.New("failed to delete index")
	ErrAliasLookup = errors.New("failed to read alias")
)
