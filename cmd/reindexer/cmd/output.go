package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/dmitrymomot/reindexer/internal/reindex"
)

// printSummary writes a short human readable report of one run.
func printSummary(w io.Writer, sum reindex.Summary, err error) {
	if sum.Target == "" {
		fmt.Fprintf(w, "%s: %s", sum.Entity, sum.State)
	} else {
		fmt.Fprintf(w, "%s: %s index=%s extracted=%d indexed=%d failed=%d total=%s",
			sum.Entity, sum.State, sum.Target, sum.Extracted, sum.Indexed, sum.Failed,
			sum.Total().Round(time.Millisecond))
	}
	if err != nil {
		fmt.Fprintf(w, " error=%q", err.Error())
	}
	fmt.Fprintln(w)
	for _, warning := range sum.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
	for _, f := range sum.Failures {
		fmt.Fprintf(w, "  rejected: %s\n", f.Error())
	}
}
