package auditlog

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/timex"
)

// markSyncedChunk keeps IN lists below SQLite's host parameter limit.
const markSyncedChunk = 500

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `SELECT id, item_id, username, change_description, created_at, is_synced FROM audit_logs`

func (r *SQLiteRepository) Insert(ctx context.Context, e *models.AuditLogEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, item_id, username, change_description, created_at, is_synced)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.ItemID, e.Username, e.ChangeDescription, timex.FormatTimestamp(e.CreatedAt), e.IsSynced)
	if err != nil {
		return fmt.Errorf("failed to insert audit log[%s]: %w", e.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Put(ctx context.Context, e *models.AuditLogEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, item_id, username, change_description, created_at, is_synced)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			item_id = excluded.item_id,
			username = excluded.username,
			change_description = excluded.change_description,
			created_at = excluded.created_at,
			is_synced = MAX(audit_logs.is_synced, excluded.is_synced)
	`, e.ID, e.ItemID, e.Username, e.ChangeDescription, timex.FormatTimestamp(e.CreatedAt), e.IsSynced)
	if err != nil {
		return fmt.Errorf("failed to put audit log[%s]: %w", e.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) ListPending(ctx context.Context) ([]models.AuditLogEntry, error) {
	return r.query(ctx, "select pending audit logs", selectColumns+` WHERE is_synced = 0 ORDER BY created_at`)
}

func (r *SQLiteRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs WHERE is_synced = 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending audit logs: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, ids []string) error {
	for start := 0; start < len(ids); start += markSyncedChunk {
		end := min(start+markSyncedChunk, len(ids))
		chunk := ids[start:end]

		query := `UPDATE audit_logs SET is_synced = 1 WHERE is_synced = 0 AND id IN (` + dbx.Placeholders(len(chunk)) + `)`
		if _, err := r.db.ExecContext(ctx, query, dbx.StringArgs(chunk)...); err != nil {
			return fmt.Errorf("failed to mark audit logs synced: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) ListByItem(ctx context.Context, itemID string) ([]models.AuditLogEntry, error) {
	return r.query(ctx, "select audit logs by item",
		selectColumns+` WHERE item_id = ? ORDER BY created_at DESC`, itemID)
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	if limit <= 0 {
		return r.query(ctx, "list audit logs", selectColumns+` ORDER BY created_at DESC`)
	}
	return r.query(ctx, "list audit logs", selectColumns+` ORDER BY created_at DESC LIMIT ?`, limit)
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs`); err != nil {
		return fmt.Errorf("failed to clear audit logs: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, op, query string, args ...any) ([]models.AuditLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	result := make([]models.AuditLogEntry, 0)
	for rows.Next() {
		var (
			e         models.AuditLogEntry
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.ItemID, &e.Username, &e.ChangeDescription, &createdAt, &e.IsSynced); err != nil {
			return nil, fmt.Errorf("failed to scan audit log row: %w", err)
		}
		if e.CreatedAt, err = timex.ParseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log row: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit log rows: %w", err)
	}
	return result, nil
}
