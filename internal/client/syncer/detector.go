package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/client/storage"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

// DetectChanges returns the dirty set: categories, hardware and notes with
// updated_at strictly after since, and every audit entry not yet synced.
// It only reads.
func DetectChanges(ctx context.Context, db dbx.DBTX, repos storage.RepositoryManager, since time.Time) (*models.ChangeSet, error) {
	var (
		cs  models.ChangeSet
		err error
	)

	if cs.Categories, err = repos.Categories(db).ChangedSince(ctx, since); err != nil {
		return nil, fmt.Errorf("detect categories: %w", err)
	}
	if cs.Hardware, err = repos.Hardware(db).ChangedSince(ctx, since); err != nil {
		return nil, fmt.Errorf("detect hardware: %w", err)
	}
	if cs.Notes, err = repos.Notes(db).ChangedSince(ctx, since); err != nil {
		return nil, fmt.Errorf("detect notes: %w", err)
	}
	if cs.AuditLogs, err = repos.AuditLogs(db).ListPending(ctx); err != nil {
		return nil, fmt.Errorf("detect audit logs: %w", err)
	}

	return &cs, nil
}
