package systemlogs

import (
	"context"
	"database/sql"
	"fmt"

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

func (r *SQLiteRepository) Insert(ctx context.Context, e *models.SystemLogEntry) error {
	var lastSynced *string
	if e.LastSyncedAt != nil {
		s := timex.FormatTimestamp(*e.LastSyncedAt)
		lastSynced = &s
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO system_logs (id, timestamp, log_level, error_message, context,
			full_error_details, phone_info, last_synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, timex.FormatTimestamp(e.Timestamp), string(e.Level), e.ErrorMessage, e.Context,
		e.FullErrorDetails, e.PhoneInfo, lastSynced)
	if err != nil {
		return fmt.Errorf("failed to insert system log[%s]: %w", e.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]models.SystemLogEntry, error) {
	query := `
		SELECT id, timestamp, log_level, error_message, context,
			full_error_details, phone_info, last_synced_at
		FROM system_logs ORDER BY timestamp DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list system logs: %w", err)
	}
	defer rows.Close()

	result := make([]models.SystemLogEntry, 0)
	for rows.Next() {
		var (
			e          models.SystemLogEntry
			level, ts  string
			lastSynced sql.NullString
		)
		err := rows.Scan(&e.ID, &ts, &level, &e.ErrorMessage, &e.Context,
			&e.FullErrorDetails, &e.PhoneInfo, &lastSynced)
		if err != nil {
			return nil, fmt.Errorf("failed to scan system log row: %w", err)
		}
		e.Level = models.LogLevel(level)
		if e.Timestamp, err = timex.ParseTimestamp(ts); err != nil {
			return nil, fmt.Errorf("failed to scan system log row: %w", err)
		}
		if lastSynced.Valid {
			t, err := timex.ParseTimestamp(lastSynced.String)
			if err != nil {
				return nil, fmt.Errorf("failed to scan system log row: %w", err)
			}
			e.LastSyncedAt = &t
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate system log rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM system_logs`); err != nil {
		return fmt.Errorf("failed to clear system logs: %w", err)
	}
	return nil
}
