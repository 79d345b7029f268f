package metrics

import "errors"

var (
	ErrNoPushgateway = errors.New("pushgateway url not configured")
	ErrPushFailed    = errors.New("failed to push metrics")
)
