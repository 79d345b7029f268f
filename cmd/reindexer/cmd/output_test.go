package cmd

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/reindexer/internal/bulk"
	"github.com/dmitrymomot/reindexer/internal/reindex"
)

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	t.Run("done", func(t *testing.T) {
		t.Parallel()

		start := time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)
		var buf bytes.Buffer
		printSummary(&buf, reindex.Summary{
			Entity:     "products",
			State:      reindex.StateDone,
			Target:     "secondary_products",
			Extracted:  3,
			Indexed:    2,
			Failed:     1,
			Failures:   []bulk.Failure{{Position: 1, Status: 400, Type: "mapper_parsing_exception", Reason: "bad"}},
			Warnings:   []string{"1 documents rejected by secondary_products"},
			StartedAt:  start,
			FinishedAt: start.Add(1500 * time.Millisecond),
		}, nil)

		assert.Equal(t, "products: DONE index=secondary_products extracted=3 indexed=2 failed=1 total=1.5s\n"+
			"  warning: 1 documents rejected by secondary_products\n"+
			"  rejected: document 1: 400 mapper_parsing_exception: bad\n", buf.String())
	})

	t.Run("skipped", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		printSummary(&buf, reindex.Summary{Entity: "producers", State: reindex.StateStart}, errors.New("locked"))
		assert.Equal(t, "producers: START error=\"locked\"\n", buf.String())
	})
}
