package sqldb

import (
	"context"
	"database/sql"
	"errors"
)

// Healthcheck returns a check that pings the pool.
func Healthcheck(db *sql.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
