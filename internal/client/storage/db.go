// Package storage opens the local SQLite database and vends repositories
// bound to either the connection pool or a transaction.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/stockkeeper/internal/client/migrations"

	_ "modernc.org/sqlite"
)

var pragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"foreign_keys(ON)",
	"synchronous(NORMAL)",
}

// DSN builds a modernc sqlite DSN for path with the connection pragmas
// applied to every new connection.
func DSN(path string) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

// InitDatabase opens (creating if needed) the database at path and applies
// the embedded migrations. SQLite allows one writer, so the pool is limited
// to a single connection and transactions serialize in-process.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
