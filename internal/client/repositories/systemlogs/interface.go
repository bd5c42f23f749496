// Package systemlogs keeps the local diagnostic trail of sync runs. Rows are
// write-once and never leave the device.
package systemlogs

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

type Repository interface {
	Insert(ctx context.Context, e *models.SystemLogEntry) error
	// List returns the newest entries first; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]models.SystemLogEntry, error)
	Clear(ctx context.Context) error
}
