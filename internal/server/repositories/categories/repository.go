// Package categories is the Postgres side of the categories collection.
package categories

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

type Repository interface {
	UpsertMany(ctx context.Context, records []models.Category) error
	SelectAll(ctx context.Context) ([]models.Category, error)
}
