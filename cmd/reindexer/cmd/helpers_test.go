package cmd

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/reindexer/internal/searchtest"
	"github.com/dmitrymomot/reindexer/pkg/config"
)

const sourceSQL = `
	CREATE TABLE hersteller (id INTEGER PRIMARY KEY, herstellerName TEXT, URLSTRUKTUR TEXT, anzahl INTEGER);
	CREATE TABLE kategorien (id INTEGER PRIMARY KEY, kategorieName TEXT);
	CREATE TABLE pname2pid_mapping (id INTEGER PRIMARY KEY, PNAME TEXT, PURL TEXT, TESTS INTEGER, SCORE REAL, kategorieID INTEGER, herstellerID INTEGER);
	CREATE TABLE produktbilder (produktID INTEGER, pfad TEXT, pos INTEGER, groesse TEXT);
	CREATE TABLE pname2pid_angebote (produktID INTEGER, punkte INTEGER);

	INSERT INTO hersteller VALUES (1, 'Acme', 'acme', 10), (2, 'Bolt', '', 30), (3, 'Crux', NULL, 20);
	INSERT INTO kategorien VALUES (1, 'Phones');
	INSERT INTO pname2pid_mapping VALUES
		(1001, 'Phone X', 'phone-x', 12, 87.6, 1, 1),
		(1002, 'Phone Y', 'phone-y', 3, 40, 1, 2),
		(1003, 'Phone Z', 'phone-z', NULL, NULL, 1, 3);
	INSERT INTO produktbilder VALUES (1001, '/x.jpg', 1, 'S'), (1002, NULL, 1, 'S'), (1003, '/z.jpg', 1, 'S');
	INSERT INTO pname2pid_angebote VALUES (1001, 3), (1002, 2), (1003, 1);
`

// setupEnv points the process configuration at a fresh SQLite source and
// fake search cluster.
func setupEnv(t *testing.T) *searchtest.Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "source.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(sourceSQL)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	srv := searchtest.New(t)

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DATABASE", path)
	t.Setenv("OPENSEARCH_ADDRESSES", srv.URL)
	t.Setenv("OPENSEARCH_DISABLE_RETRY", "true")
	t.Setenv("REDIS_URL", "")
	t.Setenv("LOCK_DIR", t.TempDir())
	t.Setenv("METRICS_PUSHGATEWAY_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	config.ResetCache()
	t.Cleanup(config.ResetCache)
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}
