package auditlogs

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	columns   = 5
	batchSize = 500

	uniqueViolation = "23505"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) UpsertMany(ctx context.Context, records []models.AuditLogEntry) error {
	return r.insert(ctx, records, " ON CONFLICT (id) DO NOTHING")
}

func (r *PostgresRepository) InsertMany(ctx context.Context, records []models.AuditLogEntry) error {
	return r.insert(ctx, records, "")
}

func (r *PostgresRepository) insert(ctx context.Context, records []models.AuditLogEntry, conflict string) error {
	for start := 0; start < len(records); start += batchSize {
		chunk := records[start:min(start+batchSize, len(records))]

		args := make([]any, 0, len(chunk)*columns)
		for _, a := range chunk {
			args = append(args, a.ID, a.ItemID, a.Username, a.ChangeDescription, a.CreatedAt)
		}

		query := `INSERT INTO audit_logs (id, item_id, username, change_description, created_at)
			VALUES ` + dbx.ValuesPlaceholders(len(chunk), columns) + conflict

		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return fmt.Errorf("audit log %s: %w", pgErr.Detail, common.ErrorAlreadyExists)
			}
			return fmt.Errorf("db error: insert audit logs: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) SelectAll(ctx context.Context) ([]models.AuditLogEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, item_id, username, change_description, created_at FROM audit_logs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("db error: select audit logs: %w", err)
	}
	defer rows.Close()

	result := make([]models.AuditLogEntry, 0)
	for rows.Next() {
		var a models.AuditLogEntry
		if err := rows.Scan(&a.ID, &a.ItemID, &a.Username, &a.ChangeDescription, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		a.CreatedAt = a.CreatedAt.UTC()
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}
