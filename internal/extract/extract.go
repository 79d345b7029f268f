package extract

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/reindexer/pkg/logger"
)

// RawRecord holds one row's column values in select order.
type RawRecord []any

// Dialect selects placeholder syntax and query text.
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "pgx"
	DialectSQLite   Dialect = "sqlite"
)

// ParseDialect maps a DB_DRIVER value to a Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "", "mysql":
		return DialectMySQL, nil
	case "pgx", "postgres", "postgresql":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDialect, driver)
}

// Query is a named static SELECT.
type Query struct {
	Name string
	Text string
}

// Source hands out a dedicated connection. *sql.DB satisfies it.
type Source interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

// Extractor runs entity queries against the relational source.
type Extractor struct {
	source  Source
	dialect Dialect
	logger  *slog.Logger
}

func New(source Source, dialect Dialect, log *slog.Logger) *Extractor {
	if log == nil {
		log = logger.Discard()
	}
	return &Extractor{source: source, dialect: dialect, logger: log}
}

// Fetch runs q on a scoped connection and returns every row. A positive
// limit appends a parameterised LIMIT. On any failure it returns an empty
// result and an error wrapping ErrSourceUnavailable; the connection, the
// statement and the rows are released on every path.
func (e *Extractor) Fetch(ctx context.Context, q Query, limit int) ([]RawRecord, error) {
	start := time.Now()

	records, err := e.fetch(ctx, q, limit)
	if err != nil {
		e.logger.ErrorContext(ctx, "query failed",
			logger.Component("extract"),
			slog.String("query", q.Name),
			logger.Error(err))
		return []RawRecord{}, errors.Join(ErrSourceUnavailable, err)
	}

	e.logger.DebugContext(ctx, "query finished",
		logger.Component("extract"),
		slog.String("query", q.Name),
		logger.Records(len(records)),
		logger.Duration(time.Since(start)))
	return records, nil
}

func (e *Extractor) fetch(ctx context.Context, q Query, limit int) (records []RawRecord, err error) {
	text, args := e.withLimit(q.Text, limit)

	conn, err := e.source.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer func() { err = errors.Join(err, closeErr("connection", conn.Close())) }()

	stmt, err := conn.PrepareContext(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", q.Name, err)
	}
	defer func() { err = errors.Join(err, closeErr("statement", stmt.Close())) }()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", q.Name, err)
	}
	defer func() { err = errors.Join(err, closeErr("rows", rows.Close())) }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	records = make([]RawRecord, 0, 1024)
	for rows.Next() {
		rec := make(RawRecord, len(cols))
		dest := make([]any, len(cols))
		for i := range rec {
			dest[i] = &rec[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

func (e *Extractor) withLimit(text string, limit int) (string, []any) {
	text = strings.TrimRight(strings.TrimSpace(text), ";")
	if limit <= 0 {
		return text, nil
	}
	placeholder := "?"
	if e.dialect == DialectPostgres {
		placeholder = "$1"
	}
	return text + " LIMIT " + placeholder, []any{limit}
}

func closeErr(what string, err error) error {
	if err == nil || errors.Is(err, sql.ErrConnDone) {
		return nil
	}
	return fmt.Errorf("close %s: %w", what, err)
}
