// Package hardware is the Postgres side of the hardware collection.
package hardware

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

type Repository interface {
	UpsertMany(ctx context.Context, records []models.HardwareItem) error
	SelectAll(ctx context.Context) ([]models.HardwareItem, error)
}
