package syncer

import (
	"context"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/client/storage"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

// CursorKey is the metadata key holding the last successful sync time.
const CursorKey = "last_synced_at"

type CursorStore interface {
	// GetCursor returns models.Epoch before the first successful sync.
	GetCursor(ctx context.Context) (time.Time, error)
	SetCursor(ctx context.Context, t time.Time) error
}

// MetadataCursor keeps the cursor in the local metadata table.
type MetadataCursor struct {
	db    dbx.DBTX
	repos storage.RepositoryManager
}

func NewMetadataCursor(db dbx.DBTX, repos storage.RepositoryManager) *MetadataCursor {
	return &MetadataCursor{db: db, repos: repos}
}

func (c *MetadataCursor) GetCursor(ctx context.Context) (time.Time, error) {
	t, ok, err := c.repos.Metadata(c.db).GetTime(ctx, CursorKey)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return models.Epoch, nil
	}
	return t, nil
}

func (c *MetadataCursor) SetCursor(ctx context.Context, t time.Time) error {
	return c.repos.Metadata(c.db).SetTime(ctx, CursorKey, t)
}
