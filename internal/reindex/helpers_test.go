package reindex_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/reindexer/internal/alias"
	"github.com/dmitrymomot/reindexer/internal/bulk"
	"github.com/dmitrymomot/reindexer/internal/extract"
	"github.com/dmitrymomot/reindexer/internal/index"
	"github.com/dmitrymomot/reindexer/internal/reindex"
	"github.com/dmitrymomot/reindexer/internal/searchtest"
	"github.com/dmitrymomot/reindexer/internal/transform"
)

const sourceSchema = `
	CREATE TABLE hersteller (id INTEGER PRIMARY KEY, HERSTELLERNAME TEXT, URLSTRUKTUR TEXT, anzahl INTEGER);
	CREATE TABLE produkte (id INTEGER PRIMARY KEY, name TEXT, url TEXT, tests INTEGER, score TEXT, points INTEGER, hersteller_id INTEGER, kategorie TEXT);
	CREATE TABLE bilder (produkt_id INTEGER, pfad TEXT);
`

var producersEntity = reindex.Entity[transform.ProducerDocument]{
	Name: "producers",
	Query: extract.Query{
		Name: "producers",
		Text: `SELECT HERSTELLERNAME,
			CASE WHEN URLSTRUKTUR <> '' THEN URLSTRUKTUR ELSE HERSTELLERNAME END
			FROM hersteller ORDER BY anzahl DESC, HERSTELLERNAME ASC`,
	},
	Schema: index.Schema{Fields: []index.Field{
		{Name: "title", Type: "text", Keyword: true},
		{Name: "url", Type: "text"},
	}},
	Transform: transform.Producer,
}

var productsEntity = reindex.Entity[transform.ProductDocument]{
	Name: "products",
	Query: extract.Query{
		Name: "products",
		Text: `SELECT p.id, p.name, p.url, b.pfad, p.tests, p.score, p.points, p.kategorie || ', ' || h.HERSTELLERNAME
			FROM produkte p
			JOIN hersteller h ON h.id = p.hersteller_id
			LEFT JOIN bilder b ON b.produkt_id = p.id
			ORDER BY p.id`,
	},
	Schema: index.Schema{
		Shards:   4,
		Replicas: index.ReplicaCount(1),
		Dynamic:  "strict",
		Fields: []index.Field{
			{Name: "id", Type: "long"},
			{Name: "name", Type: "text", Fielddata: true},
			{Name: "url", Type: "keyword"},
			{Name: "img", Type: "keyword"},
			{Name: "test", Type: "long"},
			{Name: "score", Type: "long"},
			{Name: "points", Type: "long"},
			{Name: "keyword", Type: "text", Fielddata: true},
		},
	},
	Transform: transform.Product,
}

type fixture struct {
	srv     *searchtest.Server
	db      *sql.DB
	indices *index.Manager
	aliases *alias.Manager
	loader  *bulk.Loader
}

func newFixture(t *testing.T, aliasOpts ...alias.Option) *fixture {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "source.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(sourceSchema)
	require.NoError(t, err)

	srv := searchtest.New(t)
	client := srv.Client(t)
	aliases := alias.NewManager(client, aliasOpts...)
	return &fixture{
		srv:     srv,
		db:      db,
		indices: index.NewManager(client, aliases, nil),
		aliases: aliases,
		loader:  bulk.New(client),
	}
}

func (f *fixture) exec(t *testing.T, query string) {
	t.Helper()
	_, err := f.db.Exec(query)
	require.NoError(t, err)
}

func (f *fixture) seedProducers(t *testing.T) {
	f.exec(t, `INSERT INTO hersteller VALUES (1, 'Acme', 'acme', 10), (2, 'Bolt', '', 30), (3, 'Crux', NULL, 20)`)
}

func (f *fixture) seedProducts(t *testing.T) {
	f.seedProducers(t)
	f.exec(t, `
		INSERT INTO produkte VALUES
			(1001, 'Phone X', 'phone-x', 12, '87.6', 3, 1, 'Phones'),
			(1002, 'Drill 9', 'drill-9', 4, '71', 1, 2, 'Tools'),
			(1003, 'Case Z', 'case-z', 0, NULL, NULL, 3, 'Cases');
		INSERT INTO bilder VALUES (1001, '/img/phone-x.jpg'), (1002, '/img/drill-9.jpg');
	`)
}

func (f *fixture) deps() reindex.Deps {
	return reindex.Deps{
		Indices:   f.indices,
		Extractor: extract.New(f.db, extract.DialectSQLite, nil),
		Loader:    f.loader,
		Aliases:   f.aliases,
	}
}

func (f *fixture) producers(cfg reindex.Config) *reindex.Reindexer[transform.ProducerDocument] {
	return reindex.New(producersEntity, cfg, f.deps())
}

func (f *fixture) products(cfg reindex.Config) *reindex.Reindexer[transform.ProductDocument] {
	return reindex.New(productsEntity, cfg, f.deps())
}

// live simulates a previous run: the slot exists, holds docs and is aliased.
func (f *fixture) live(logical, physical string, docs ...map[string]any) {
	f.srv.CreateIndex(physical)
	for _, d := range docs {
		f.srv.AddDoc(physical, d)
	}
	f.srv.SetAlias(logical, physical)
}

var expectedProducers = []map[string]any{
	{"title": "Bolt", "url": "Bolt"},
	{"title": "Crux", "url": "Crux"},
	{"title": "Acme", "url": "acme"},
}

func run(t *testing.T, job reindex.Job) reindex.Summary {
	t.Helper()
	sum, err := job.Run(context.Background())
	require.NoError(t, err)
	return sum
}
