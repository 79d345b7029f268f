package index

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/dmitrymomot/reindexer/internal/searchapi"
	"github.com/dmitrymomot/reindexer/pkg/logger"
)

// AliasReader lists the indices an alias currently points at.
type AliasReader interface {
	Indices(ctx context.Context, alias string) ([]string, error)
}

// Target is the outcome of slot resolution for one run.
type Target struct {
	Logical     string
	Index       string   // physical index to build
	Stale       string   // physical index of the other slot
	Live        Slot     // slot serving traffic before the run
	StaleExists bool     // whether Stale existed at resolution time
	Detach      []string // indices currently behind the alias, except Index
}

// StaleAliased reports whether the stale slot is behind the alias.
func (t Target) StaleAliased() bool {
	for _, name := range t.Detach {
		if name == t.Stale {
			return true
		}
	}
	return false
}

// Manager creates, inspects and deletes physical indices.
type Manager struct {
	transport opensearchapi.Transport
	aliases   AliasReader
	logger    *slog.Logger
}

// NewManager builds a Manager. transport is usually an *opensearch.Client.
func NewManager(transport opensearchapi.Transport, aliases AliasReader, log *slog.Logger) *Manager {
	if log == nil {
		log = logger.Discard()
	}
	return &Manager{transport: transport, aliases: aliases, logger: log}
}

// Exists reports whether name exists. Transport errors are logged and
// reported as absent.
func (m *Manager) Exists(ctx context.Context, name string) bool {
	res, err := opensearchapi.IndicesExistsRequest{Index: []string{name}}.Do(ctx, m.transport)
	if err != nil {
		m.logger.WarnContext(ctx, "index existence check failed", logger.Index(name), logger.Error(err))
		return false
	}
	switch status := searchapi.Drain(res); status {
	case 200:
		return true
	case 404:
		return false
	default:
		m.logger.WarnContext(ctx, "index existence check failed",
			logger.Index(name), slog.Int("status", status))
		return false
	}
}

// Ensure creates name with schema unless it already exists. Losing a
// creation race to another writer counts as success.
func (m *Manager) Ensure(ctx context.Context, name string, schema Schema) error {
	if m.Exists(ctx, name) {
		m.logger.DebugContext(ctx, "index already exists", logger.Index(name))
		return nil
	}

	body, err := schema.Body()
	if err != nil {
		return errors.Join(ErrIndexCreate, err)
	}

	res, err := opensearchapi.IndicesCreateRequest{
		Index: name,
		Body:  bytes.NewReader(body),
	}.Do(ctx, m.transport)
	if err != nil {
		m.logger.ErrorContext(ctx, "index creation failed", logger.Index(name), logger.Error(err))
		return errors.Join(ErrIndexCreate, err)
	}
	if err := searchapi.Decode(res, nil); err != nil {
		if errors.Is(err, &searchapi.Error{Type: searchapi.TypeResourceAlreadyExists}) {
			return nil
		}
		m.logger.ErrorContext(ctx, "index creation failed", logger.Index(name), logger.Error(err))
		return errors.Join(ErrIndexCreate, err)
	}

	m.logger.InfoContext(ctx, "index created", logger.Index(name))
	return nil
}

// Delete removes name. A missing index counts as success.
func (m *Manager) Delete(ctx context.Context, name string) error {
	res, err := opensearchapi.IndicesDeleteRequest{Index: []string{name}}.Do(ctx, m.transport)
	if err != nil {
		return errors.Join(ErrIndexDelete, err)
	}
	if err := searchapi.Decode(res, nil); err != nil {
		var apiErr *searchapi.Error
		if errors.As(err, &apiErr) && apiErr.Status == 404 {
			return nil
		}
		return errors.Join(ErrIndexDelete, err)
	}
	m.logger.InfoContext(ctx, "index deleted", logger.Index(name))
	return nil
}

// LiveSlot reports which slot serves logical. Without an alias it falls back
// to the rule that an existing primary index is live.
func (m *Manager) LiveSlot(ctx context.Context, logical string) (Slot, []string, error) {
	aliased, err := m.aliases.Indices(ctx, logical)
	if err != nil {
		return SlotNone, nil, errors.Join(ErrAliasLookup, err)
	}

	primary := PhysicalName(logical, SlotPrimary)
	secondary := PhysicalName(logical, SlotSecondary)

	var hasPrimary, hasSecondary bool
	for _, name := range aliased {
		switch name {
		case primary:
			hasPrimary = true
		case secondary:
			hasSecondary = true
		}
	}

	switch {
	case hasPrimary && hasSecondary:
		// Left behind by a failed alias remove. The newer slot counts as
		// live so the older one is rebuilt and the swap detaches the rest.
		live := SlotPrimary
		if m.olderSlot(ctx, primary, secondary) == SlotPrimary {
			live = SlotSecondary
		}
		m.logger.WarnContext(ctx, "alias points at both slots",
			logger.Alias(logical), slog.String("live", live.String()))
		return live, aliased, nil
	case hasPrimary:
		return SlotPrimary, aliased, nil
	case hasSecondary:
		return SlotSecondary, aliased, nil
	}

	if len(aliased) > 0 {
		m.logger.WarnContext(ctx, "alias points at foreign indices",
			logger.Alias(logical), slog.Any("indices", aliased))
	}
	if m.Exists(ctx, primary) {
		return SlotPrimary, aliased, nil
	}
	return SlotNone, aliased, nil
}

// olderSlot compares the creation dates of both slots. It returns
// SlotPrimary when they cannot be read.
func (m *Manager) olderSlot(ctx context.Context, primary, secondary string) Slot {
	res, err := opensearchapi.IndicesGetSettingsRequest{
		Index: []string{primary, secondary},
		Name:  []string{"index.creation_date"},
	}.Do(ctx, m.transport)
	if err != nil {
		m.logger.WarnContext(ctx, "reading index settings failed", logger.Error(err))
		return SlotPrimary
	}

	var body map[string]struct {
		Settings struct {
			Index struct {
				CreationDate string `json:"creation_date"`
			} `json:"index"`
		} `json:"settings"`
	}
	if err := searchapi.Decode(res, &body); err != nil {
		m.logger.WarnContext(ctx, "reading index settings failed", logger.Error(err))
		return SlotPrimary
	}

	p, perr := strconv.ParseInt(body[primary].Settings.Index.CreationDate, 10, 64)
	s, serr := strconv.ParseInt(body[secondary].Settings.Index.CreationDate, 10, 64)
	if perr != nil || serr != nil {
		return SlotPrimary
	}
	if s < p {
		return SlotSecondary
	}
	return SlotPrimary
}

// ResolveTarget decides which physical index this run builds.
func (m *Manager) ResolveTarget(ctx context.Context, logical string) (Target, error) {
	live, aliased, err := m.LiveSlot(ctx, logical)
	if err != nil {
		return Target{}, err
	}

	target, stale := SelectSlots(live)
	t := Target{
		Logical: logical,
		Index:   PhysicalName(logical, target),
		Stale:   PhysicalName(logical, stale),
		Live:    live,
	}
	for _, name := range aliased {
		if name != t.Index {
			t.Detach = append(t.Detach, name)
		}
	}
	t.StaleExists = m.Exists(ctx, t.Stale)

	m.logger.InfoContext(ctx, "target resolved",
		logger.Alias(logical),
		logger.Index(t.Index),
		slog.String("stale", t.Stale),
		slog.String("live", live.String()))
	return t, nil
}
