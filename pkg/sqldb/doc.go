// Package sqldb opens the relational source behind the extractor.
//
// The source is MySQL by default (go-sql-driver/mysql). DB_DRIVER=pgx switches
// to PostgreSQL through the pgx stdlib adapter, and DB_DRIVER=sqlite opens a
// local file with modernc.org/sqlite. All three are exposed as a plain
// *sql.DB so the extractor can take a scoped connection per run.
//
//	var cfg sqldb.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
//	db, err := sqldb.Connect(ctx, cfg)
//	if err != nil {
//	    // errors.Is(err, sqldb.ErrFailedToOpenDBConnection)
//	}
//	defer db.Close()
package sqldb
