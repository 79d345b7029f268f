package bulk

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"github.com/opensearch-project/opensearch-go/v2/opensearchutil"

	"github.com/dmitrymomot/reindexer/internal/searchapi"
	"github.com/dmitrymomot/reindexer/pkg/logger"
)

const (
	DefaultFlushBytes  = 5 << 20
	DefaultWorkers     = 1
	DefaultMaxFailures = 100
)

// Failure describes one rejected document.
type Failure struct {
	Position int // index into the loaded batch
	Status   int
	Type     string
	Reason   string
}

func (f Failure) Error() string {
	return fmt.Sprintf("document %d: %d %s: %s", f.Position, f.Status, f.Type, f.Reason)
}

func (f Failure) Unwrap() error { return ErrDocumentRejected }

// Result counts the outcome of a load. Failures holds at most MaxFailures
// entries; Failed is always the full count.
type Result struct {
	Indexed  int
	Failed   int
	Failures []Failure
}

// Loader writes documents into a physical index.
type Loader struct {
	client      *opensearch.Client
	flushBytes  int
	workers     int
	maxFailures int
	logger      *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithFlushBytes sets the bulk request size threshold.
func WithFlushBytes(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.flushBytes = n
		}
	}
}

// WithWorkers sets the number of concurrent bulk requests.
func WithWorkers(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithMaxFailures caps the number of failures kept in Result.
func WithMaxFailures(n int) Option {
	return func(l *Loader) {
		if n >= 0 {
			l.maxFailures = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.logger = log
		}
	}
}

// New creates a Loader.
func New(client *opensearch.Client, opts ...Option) *Loader {
	l := &Loader{
		client:      client,
		flushBytes:  DefaultFlushBytes,
		workers:     DefaultWorkers,
		maxFailures: DefaultMaxFailures,
		logger:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load indexes docs, each a JSON object, into index and refreshes it.
// Rejected documents are reported in Result; a transport failure or a failed
// refresh is returned as an error.
func (l *Loader) Load(ctx context.Context, index string, docs [][]byte) (Result, error) {
	var (
		mu       sync.Mutex
		res      Result
		fatalErr error
	)
	fatal := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if fatalErr == nil {
			fatalErr = err
		}
	}

	bi, err := opensearchutil.NewBulkIndexer(opensearchutil.BulkIndexerConfig{
		Client:     l.client,
		Index:      index,
		NumWorkers: l.workers,
		FlushBytes: l.flushBytes,
		OnError: func(_ context.Context, err error) {
			fatal(err)
		},
	})
	if err != nil {
		return Result{}, errors.Join(ErrTransport, err)
	}

	for i, doc := range docs {
		pos := i
		err := bi.Add(ctx, opensearchutil.BulkIndexerItem{
			Action: "index",
			Body:   bytes.NewReader(doc),
			OnSuccess: func(context.Context, opensearchutil.BulkIndexerItem, opensearchutil.BulkIndexerResponseItem) {
				mu.Lock()
				res.Indexed++
				mu.Unlock()
			},
			OnFailure: func(_ context.Context, _ opensearchutil.BulkIndexerItem, item opensearchutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					fatal(err)
					return
				}
				f := Failure{
					Position: pos,
					Status:   item.Status,
					Type:     item.Error.Type,
					Reason:   item.Error.Reason,
				}
				mu.Lock()
				res.Failed++
				if len(res.Failures) < l.maxFailures {
					res.Failures = append(res.Failures, f)
				}
				mu.Unlock()
			},
		})
		if err != nil {
			fatal(err)
			break
		}
	}

	if err := bi.Close(ctx); err != nil {
		fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()

	if fatalErr != nil {
		res.Failed = len(docs) - res.Indexed
		l.logger.ErrorContext(ctx, "bulk load failed",
			logger.Index(index), logger.Records(res.Indexed), logger.Error(fatalErr))
		return res, errors.Join(ErrTransport, fatalErr)
	}

	slices.SortFunc(res.Failures, func(a, b Failure) int { return cmp.Compare(a.Position, b.Position) })
	if res.Failed > 0 {
		l.logger.WarnContext(ctx, "documents rejected",
			logger.Index(index), slog.Int("failed", res.Failed), slog.Int("indexed", res.Indexed))
	}

	if err := l.refresh(ctx, index); err != nil {
		return res, err
	}
	return res, nil
}

func (l *Loader) refresh(ctx context.Context, index string) error {
	res, err := opensearchapi.IndicesRefreshRequest{Index: []string{index}}.Do(ctx, l.client)
	if err != nil {
		return errors.Join(ErrRefresh, err)
	}
	if err := searchapi.Decode(res, nil); err != nil {
		return errors.Join(ErrRefresh, err)
	}
	return nil
}
