package bulk

import "errors"

var (
	// ErrTransport is a flush or connection failure. The load is unusable.
	ErrTransport = errors.New("bulk transport failed")

	// ErrDocumentRejected marks a single document the engine refused.
	ErrDocumentRejected = errors.New("document rejected")

	// ErrRefresh is returned when the loaded index cannot be refreshed.
	ErrRefresh = errors.New("index refresh failed")
)
