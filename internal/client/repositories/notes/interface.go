// Package notes stores free-form notes in the local SQLite database.
package notes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

type Repository interface {
	Get(ctx context.Context, id string) (*models.Note, error)
	Put(ctx context.Context, n *models.Note) error
	List(ctx context.Context, includeDeleted bool) ([]models.Note, error)
	ChangedSince(ctx context.Context, since time.Time) ([]models.Note, error)
	Clear(ctx context.Context) error
}
