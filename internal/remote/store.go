// Package remote defines the hosted store the sync engine pushes to and
// pulls from. Implementations: direct Postgres (remote/postgres), the gRPC
// gateway client (remote/grpcremote) and an in-process store
// (remote/memory).
package remote

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

// Collection names as used on the wire and in the remote schema.
const (
	CollectionCategories = "categories"
	CollectionHardware   = "hardware"
	CollectionNotes      = "notes"
	CollectionAuditLogs  = "audit_logs"
)

// Store is the remote side of the sync. Upserts are keyed by id and safe to
// retry. Select calls return the full collection, tombstones included.
type Store interface {
	UpsertCategories(ctx context.Context, records []models.Category) error
	UpsertHardware(ctx context.Context, records []models.HardwareItem) error
	UpsertNotes(ctx context.Context, records []models.Note) error
	// UpsertAuditLogs stores entries that are not present yet and leaves
	// existing ids untouched.
	UpsertAuditLogs(ctx context.Context, records []models.AuditLogEntry) error
	// InsertAuditLogs fails with common.ErrorAlreadyExists when any id is
	// already stored.
	InsertAuditLogs(ctx context.Context, records []models.AuditLogEntry) error

	SelectCategories(ctx context.Context) ([]models.Category, error)
	SelectHardware(ctx context.Context) ([]models.HardwareItem, error)
	SelectNotes(ctx context.Context) ([]models.Note, error)
	SelectAuditLogs(ctx context.Context) ([]models.AuditLogEntry, error)

	Ping(ctx context.Context) error
	Close() error
}
