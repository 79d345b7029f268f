package alias

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/dmitrymomot/reindexer/internal/searchapi"
	"github.com/dmitrymomot/reindexer/pkg/logger"
)

// Manager reads and repoints aliases.
type Manager struct {
	transport opensearchapi.Transport
	atomic    bool
	logger    *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithSequential sends add and remove as separate requests, the add first.
// Use it only for clusters that reject multi-action alias updates.
func WithSequential() Option {
	return func(m *Manager) { m.atomic = false }
}

// WithLogger sets the logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager returns a Manager that sends atomic alias updates through transport.
func NewManager(transport opensearchapi.Transport, opts ...Option) *Manager {
	m := &Manager{transport: transport, atomic: true, logger: logger.Discard()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Indices lists the indices behind alias, sorted. A missing alias yields an
// empty list.
func (m *Manager) Indices(ctx context.Context, alias string) ([]string, error) {
	res, err := opensearchapi.IndicesGetAliasRequest{Name: []string{alias}}.Do(ctx, m.transport)
	if err != nil {
		return nil, errors.Join(ErrAliasRead, err)
	}

	var body map[string]struct {
		Aliases map[string]json.RawMessage `json:"aliases"`
	}
	if err := searchapi.Decode(res, &body); err != nil {
		var apiErr *searchapi.Error
		if errors.As(err, &apiErr) && apiErr.Status == 404 {
			return nil, nil
		}
		return nil, errors.Join(ErrAliasRead, err)
	}

	out := make([]string, 0, len(body))
	for name, entry := range body {
		if _, ok := entry.Aliases[alias]; ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

type action map[string]actionSpec

type actionSpec struct {
	Index string `json:"index"`
	Alias string `json:"alias"`
}

// Swap points alias at add and detaches it from every index in remove.
// In atomic mode all actions go in one request, so the alias is never
// without a target. The response status and acknowledgement are checked.
func (m *Manager) Swap(ctx context.Context, alias, add string, remove ...string) error {
	remove = without(remove, add)

	if !m.atomic {
		return m.swapSequential(ctx, alias, add, remove)
	}

	actions := []action{{"add": {Index: add, Alias: alias}}}
	for _, r := range remove {
		actions = append(actions, action{"remove": {Index: r, Alias: alias}})
	}
	if err := m.update(ctx, actions); err != nil {
		return &SwapError{Phase: PhaseAdd, Alias: alias, Index: add, Err: errors.Join(ErrAliasAdd, err)}
	}

	m.logger.InfoContext(ctx, "alias swapped",
		logger.Alias(alias), logger.Index(add), slog.String("removed", strings.Join(remove, ",")))
	return nil
}

func (m *Manager) swapSequential(ctx context.Context, alias, add string, remove []string) error {
	if err := m.update(ctx, []action{{"add": {Index: add, Alias: alias}}}); err != nil {
		return &SwapError{Phase: PhaseAdd, Alias: alias, Index: add, Err: errors.Join(ErrAliasAdd, err)}
	}
	m.logger.InfoContext(ctx, "alias added", logger.Alias(alias), logger.Index(add))

	for _, r := range remove {
		if err := m.update(ctx, []action{{"remove": {Index: r, Alias: alias}}}); err != nil {
			return &SwapError{Phase: PhaseRemove, Alias: alias, Index: r, Err: errors.Join(ErrAliasRemove, err)}
		}
		m.logger.InfoContext(ctx, "alias removed", logger.Alias(alias), logger.Index(r))
	}
	return nil
}

func (m *Manager) update(ctx context.Context, actions []action) error {
	body, err := json.Marshal(map[string]any{"actions": actions})
	if err != nil {
		return err
	}

	res, err := opensearchapi.IndicesUpdateAliasesRequest{Body: bytes.NewReader(body)}.Do(ctx, m.transport)
	if err != nil {
		return err
	}

	var ack struct {
		Acknowledged bool `json:"acknowledged"`
	}
	if err := searchapi.Decode(res, &ack); err != nil {
		return err
	}
	if !ack.Acknowledged {
		return fmt.Errorf("%w: %d actions", ErrNotAcked, len(actions))
	}
	return nil
}

func without(names []string, drop string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" && n != drop {
			out = append(out, n)
		}
	}
	return out
}
