// Package auditlog stores the local audit trail. Entries are immutable except
// for is_synced, which only ever moves from 0 to 1.
package auditlog

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

type Repository interface {
	// Insert adds a new entry; a duplicate id is an error.
	Insert(ctx context.Context, e *models.AuditLogEntry) error
	// Put upserts an entry by id without ever clearing is_synced.
	Put(ctx context.Context, e *models.AuditLogEntry) error
	ListPending(ctx context.Context) ([]models.AuditLogEntry, error)
	CountPending(ctx context.Context) (int, error)
	// MarkSynced flips is_synced to 1 for the given ids.
	MarkSynced(ctx context.Context, ids []string) error
	ListByItem(ctx context.Context, itemID string) ([]models.AuditLogEntry, error)
	// List returns the newest entries first; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]models.AuditLogEntry, error)
	Clear(ctx context.Context) error
}
