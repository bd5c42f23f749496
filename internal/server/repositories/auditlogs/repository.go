// Package auditlogs is the Postgres side of the append-only audit trail.
package auditlogs

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

type Repository interface {
	// UpsertMany stores entries whose ids are not present yet.
	UpsertMany(ctx context.Context, records []models.AuditLogEntry) error
	// InsertMany fails with common.ErrorAlreadyExists on a duplicate id.
	InsertMany(ctx context.Context, records []models.AuditLogEntry) error
	SelectAll(ctx context.Context) ([]models.AuditLogEntry, error)
}
