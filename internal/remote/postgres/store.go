// Package postgres implements remote.Store directly on the hosted Postgres
// database. The gRPC gateway serves the same store to clients that cannot
// reach the database.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/repomanager"
)

type Store struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func New(db *sql.DB, repos repomanager.RepositoryManager) *Store {
	return &Store{db: db, repos: repos}
}

// Open connects through the pgx driver, checks the connection and applies
// migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open remote db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping remote db: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate remote db: %w", err)
	}
	return New(db, repos), nil
}

func (s *Store) inTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithTx(ctx, s.db, nil, fn)
}

func (s *Store) UpsertCategories(ctx context.Context, records []models.Category) error {
	if len(records) == 0 {
		return nil
	}
	return s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Categories(tx).UpsertMany(ctx, records)
	})
}

func (s *Store) UpsertHardware(ctx context.Context, records []models.HardwareItem) error {
	if len(records) == 0 {
		return nil
	}
	return s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Hardware(tx).UpsertMany(ctx, records)
	})
}

func (s *Store) UpsertNotes(ctx context.Context, records []models.Note) error {
	if len(records) == 0 {
		return nil
	}
	return s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Notes(tx).UpsertMany(ctx, records)
	})
}

func (s *Store) UpsertAuditLogs(ctx context.Context, records []models.AuditLogEntry) error {
	if len(records) == 0 {
		return nil
	}
	return s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.AuditLogs(tx).UpsertMany(ctx, records)
	})
}

func (s *Store) InsertAuditLogs(ctx context.Context, records []models.AuditLogEntry) error {
	if len(records) == 0 {
		return nil
	}
	return s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.AuditLogs(tx).InsertMany(ctx, records)
	})
}

func (s *Store) SelectCategories(ctx context.Context) ([]models.Category, error) {
	return s.repos.Categories(s.db).SelectAll(ctx)
}

func (s *Store) SelectHardware(ctx context.Context) ([]models.HardwareItem, error) {
	return s.repos.Hardware(s.db).SelectAll(ctx)
}

func (s *Store) SelectNotes(ctx context.Context) ([]models.Note, error) {
	return s.repos.Notes(s.db).SelectAll(ctx)
}

func (s *Store) SelectAuditLogs(ctx context.Context) ([]models.AuditLogEntry, error) {
	return s.repos.AuditLogs(s.db).SelectAll(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
