package remote

import (
	"context"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

type timeoutStore struct {
	next    Store
	timeout time.Duration
}

// WithTimeout bounds every call on s by d. A non-positive d returns s as is.
func WithTimeout(s Store, d time.Duration) Store {
	if d <= 0 {
		return s
	}
	return &timeoutStore{next: s, timeout: d}
}

func (t *timeoutStore) UpsertCategories(ctx context.Context, records []models.Category) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.UpsertCategories(ctx, records)
}

func (t *timeoutStore) UpsertHardware(ctx context.Context, records []models.HardwareItem) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.UpsertHardware(ctx, records)
}

func (t *timeoutStore) UpsertNotes(ctx context.Context, records []models.Note) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.UpsertNotes(ctx, records)
}

func (t *timeoutStore) UpsertAuditLogs(ctx context.Context, records []models.AuditLogEntry) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.UpsertAuditLogs(ctx, records)
}

func (t *timeoutStore) InsertAuditLogs(ctx context.Context, records []models.AuditLogEntry) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.InsertAuditLogs(ctx, records)
}

func (t *timeoutStore) SelectCategories(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.SelectCategories(ctx)
}

func (t *timeoutStore) SelectHardware(ctx context.Context) ([]models.HardwareItem, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.SelectHardware(ctx)
}

func (t *timeoutStore) SelectNotes(ctx context.Context) ([]models.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.SelectNotes(ctx)
}

func (t *timeoutStore) SelectAuditLogs(ctx context.Context) ([]models.AuditLogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.SelectAuditLogs(ctx)
}

func (t *timeoutStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Ping(ctx)
}

func (t *timeoutStore) Close() error {
	return t.next.Close()
}
