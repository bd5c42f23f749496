// Package hardware stores stock items in the local SQLite database.
package hardware

import (
	"context"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound when no row has the id.
	Get(ctx context.Context, id string) (*models.HardwareItem, error)
	// Put inserts or overwrites the item by id.
	Put(ctx context.Context, h *models.HardwareItem) error
	List(ctx context.Context, includeDeleted bool) ([]models.HardwareItem, error)
	// ChangedSince returns items with updated_at strictly after since.
	ChangedSince(ctx context.Context, since time.Time) ([]models.HardwareItem, error)
	Clear(ctx context.Context) error
}
