package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/timex"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `SELECT id, title, body, is_deleted, created_at, updated_at FROM notes`

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Note, error) {
	n, err := scanNote(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note[%s]: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note[%s]: %w", id, err)
	}
	return n, nil
}

// Put upserts by id. created_at is kept from the first insert.
func (r *SQLiteRepository) Put(ctx context.Context, n *models.Note) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (id, title, body, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			is_deleted = excluded.is_deleted,
			updated_at = excluded.updated_at
	`, n.ID, n.Title, n.Body, n.IsDeleted,
		timex.FormatTimestamp(n.CreatedAt), timex.FormatTimestamp(n.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to put note[%s]: %w", n.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, includeDeleted bool) ([]models.Note, error) {
	query := selectColumns + ` WHERE is_deleted = 0 ORDER BY updated_at DESC`
	if includeDeleted {
		query = selectColumns + ` ORDER BY updated_at DESC`
	}
	return r.query(ctx, "list notes", query)
}

func (r *SQLiteRepository) ChangedSince(ctx context.Context, since time.Time) ([]models.Note, error) {
	return r.query(ctx, "select changed notes",
		selectColumns+` WHERE updated_at > ?`, timex.FormatTimestamp(since))
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notes`); err != nil {
		return fmt.Errorf("failed to clear notes: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, op, query string, args ...any) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	result := make([]models.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note row: %w", err)
		}
		result = append(result, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate note rows: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (*models.Note, error) {
	var (
		n                    models.Note
		createdAt, updatedAt string
	)
	if err := s.Scan(&n.ID, &n.Title, &n.Body, &n.IsDeleted, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if n.CreatedAt, err = timex.ParseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if n.UpdatedAt, err = timex.ParseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}
