// Package notes is the Postgres side of the notes collection.
package notes

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

type Repository interface {
	UpsertMany(ctx context.Context, records []models.Note) error
	SelectAll(ctx context.Context) ([]models.Note, error)
}
