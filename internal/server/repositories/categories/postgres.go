package categories

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

const (
	columns   = 5
	batchSize = 500
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// UpsertMany writes records in multi-row statements keyed by id; existing
// rows are overwritten.
func (r *PostgresRepository) UpsertMany(ctx context.Context, records []models.Category) error {
	for start := 0; start < len(records); start += batchSize {
		chunk := records[start:min(start+batchSize, len(records))]

		args := make([]any, 0, len(chunk)*columns)
		for _, c := range chunk {
			args = append(args, c.ID, c.Name, c.Color, c.IsDeleted, c.UpdatedAt)
		}

		query := `INSERT INTO categories (id, name, color, is_deleted, updated_at)
			VALUES ` + dbx.ValuesPlaceholders(len(chunk), columns) + `
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				color = EXCLUDED.color,
				is_deleted = EXCLUDED.is_deleted,
				updated_at = EXCLUDED.updated_at`

		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("db error: upsert categories: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) SelectAll(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, color, is_deleted, updated_at FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: select categories: %w", err)
	}
	defer rows.Close()

	result := make([]models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.IsDeleted, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		c.UpdatedAt = c.UpdatedAt.UTC()
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}
