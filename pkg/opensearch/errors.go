package opensearch

import "errors"

var (
	// ErrConnectionFailed indicates the client could not be created from the config.
	ErrConnectionFailed = errors.New("opensearch connection failed")

	// ErrHealthcheckFailed indicates the cluster is unreachable or answered with an error status.
	ErrHealthcheckFailed = errors.New("opensearch healthcheck failed")

	// ErrNoAddresses is returned by New when Config.Addresses is empty.
	ErrNoAddresses = errors.New("opensearch addresses not configured")
)
