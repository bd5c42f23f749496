package categories

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

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `SELECT id, name, color, is_deleted, updated_at FROM categories`

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Category, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category[%s]: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category[%s]: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, c *models.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, color, is_deleted, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			is_deleted = excluded.is_deleted,
			updated_at = excluded.updated_at
	`, c.ID, c.Name, c.Color, c.IsDeleted, timex.FormatTimestamp(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to put category[%s]: %w", c.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, includeDeleted bool) ([]models.Category, error) {
	query := selectColumns + ` WHERE is_deleted = 0 ORDER BY name`
	if includeDeleted {
		query = selectColumns + ` ORDER BY name`
	}
	return r.query(ctx, "list categories", query)
}

func (r *SQLiteRepository) ChangedSince(ctx context.Context, since time.Time) ([]models.Category, error) {
	return r.query(ctx, "select changed categories",
		selectColumns+` WHERE updated_at > ?`, timex.FormatTimestamp(since))
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("failed to clear categories: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, op, query string, args ...any) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	result := make([]models.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category rows: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(s scanner) (*models.Category, error) {
	var (
		c         models.Category
		color     sql.NullString
		updatedAt string
	)
	if err := s.Scan(&c.ID, &c.Name, &color, &c.IsDeleted, &updatedAt); err != nil {
		return nil, err
	}
	ts, err := timex.ParseTimestamp(updatedAt)
	if err != nil {
		return nil, err
	}
	c.Color = dbx.StringPtr(color)
	c.UpdatedAt = ts
	return &c, nil
}
