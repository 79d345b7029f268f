package opensearch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/opensearch-project/opensearch-go/v2"
)

// Healthcheck returns a check that calls the cluster info endpoint.
// Error statuses count as failures.
func Healthcheck(client *opensearch.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		res, err := client.Info(client.Info.WithContext(ctx))
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		defer res.Body.Close()
		_, _ = io.Copy(io.Discard, res.Body)

		if res.IsError() {
			return errors.Join(ErrHealthcheckFailed, fmt.Errorf("cluster responded with status %d", res.StatusCode))
		}
		return nil
	}
}
