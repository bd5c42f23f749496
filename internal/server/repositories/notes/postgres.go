package notes

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

const (
	columns   = 6
	batchSize = 500
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// UpsertMany overwrites existing notes by id; created_at keeps its first value.
func (r *PostgresRepository) UpsertMany(ctx context.Context, records []models.Note) error {
	for start := 0; start < len(records); start += batchSize {
		chunk := records[start:min(start+batchSize, len(records))]

		args := make([]any, 0, len(chunk)*columns)
		for _, n := range chunk {
			args = append(args, n.ID, n.Title, n.Body, n.IsDeleted, n.CreatedAt, n.UpdatedAt)
		}

		query := `INSERT INTO notes (id, title, body, is_deleted, created_at, updated_at)
			VALUES ` + dbx.ValuesPlaceholders(len(chunk), columns) + `
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title,
				body = EXCLUDED.body,
				is_deleted = EXCLUDED.is_deleted,
				updated_at = EXCLUDED.updated_at`

		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("db error: upsert notes: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) SelectAll(ctx context.Context) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, body, is_deleted, created_at, updated_at FROM notes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: select notes: %w", err)
	}
	defer rows.Close()

	result := make([]models.Note, 0)
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.IsDeleted, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		n.CreatedAt, n.UpdatedAt = n.CreatedAt.UTC(), n.UpdatedAt.UTC()
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}
