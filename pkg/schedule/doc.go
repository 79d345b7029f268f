// Package schedule runs reindex jobs periodically in a long-lived process.
//
// Schedules are interval, hourly, daily or weekly and can be parsed from the
// short expressions accepted by Parse ("every 6h", "daily 03:00"). The
// Scheduler checks for due jobs on a ticker and starts each due job in its own
// goroutine. A job that is still running when it comes due again is skipped,
// and its next run is computed from the moment it finished. Failures are
// logged and never stop other jobs.
package schedule
