// Package categories stores inventory categories in the local SQLite database.
package categories

import (
	"context"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound when no row has the id.
	Get(ctx context.Context, id string) (*models.Category, error)
	// Put inserts or overwrites the category by id.
	Put(ctx context.Context, c *models.Category) error
	List(ctx context.Context, includeDeleted bool) ([]models.Category, error)
	// ChangedSince returns categories with updated_at strictly after since.
	ChangedSince(ctx context.Context, since time.Time) ([]models.Category, error)
	Clear(ctx context.Context) error
}
