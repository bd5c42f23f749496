package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/client/storage"
	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/remote"
)

// Pusher uploads a dirty set to the remote store.
type Pusher struct {
	db     dbx.DBTX
	repos  storage.RepositoryManager
	remote remote.Store
	logger logging.Logger

	// LegacyAuditInsert sends audit entries with a plain insert and
	// recovers from duplicate ids entry by entry.
	LegacyAuditInsert bool
}

func NewPusher(db dbx.DBTX, repos storage.RepositoryManager, store remote.Store, logger logging.Logger) *Pusher {
	return &Pusher{db: db, repos: repos, remote: store, logger: logger.With("module", "push")}
}

// Push sends each non-empty collection as one batch, stopping at the first
// failure. Batches already sent stay sent. Audit entries are marked synced
// locally only after the remote accepted them.
func (p *Pusher) Push(ctx context.Context, cs *models.ChangeSet) (models.Counts, error) {
	var pushed models.Counts
	if cs == nil {
		return pushed, nil
	}

	if len(cs.Categories) > 0 {
		if err := p.remote.UpsertCategories(ctx, cs.Categories); err != nil {
			return pushed, fmt.Errorf("%w: send category changes: %w", ErrPushFailed, err)
		}
		pushed.Categories = len(cs.Categories)
	}

	if len(cs.Hardware) > 0 {
		if err := p.remote.UpsertHardware(ctx, cs.Hardware); err != nil {
			return pushed, fmt.Errorf("%w: send inventory changes: %w", ErrPushFailed, err)
		}
		pushed.Hardware = len(cs.Hardware)
	}

	if len(cs.Notes) > 0 {
		if err := p.remote.UpsertNotes(ctx, cs.Notes); err != nil {
			return pushed, fmt.Errorf("%w: send note changes: %w", ErrPushFailed, err)
		}
		pushed.Notes = len(cs.Notes)
	}

	if len(cs.AuditLogs) > 0 {
		acked, err := p.pushAudit(ctx, cs.AuditLogs)
		if len(acked) > 0 {
			if merr := p.repos.AuditLogs(p.db).MarkSynced(ctx, acked); merr != nil {
				return pushed, fmt.Errorf("%w: mark audit logs synced: %w", ErrPushFailed, merr)
			}
			pushed.AuditLogs = len(acked)
		}
		if err != nil {
			return pushed, fmt.Errorf("%w: send audit logs: %w", ErrPushFailed, err)
		}
	}

	p.logger.Info(ctx, "push complete",
		"categories", pushed.Categories, "hardware", pushed.Hardware,
		"notes", pushed.Notes, "audit_logs", pushed.AuditLogs)

	return pushed, nil
}

// pushAudit returns the ids the remote now holds, even on partial failure.
func (p *Pusher) pushAudit(ctx context.Context, entries []models.AuditLogEntry) ([]string, error) {
	if !p.LegacyAuditInsert {
		if err := p.remote.UpsertAuditLogs(ctx, entries); err != nil {
			return nil, err
		}
		return auditIDs(entries), nil
	}

	err := p.remote.InsertAuditLogs(ctx, entries)
	if err == nil {
		return auditIDs(entries), nil
	}
	if !errors.Is(err, common.ErrorAlreadyExists) {
		return nil, err
	}

	// A retried cycle already delivered part of the batch; the failed insert
	// stored nothing, so resend one entry at a time.
	p.logger.Warn(ctx, "audit batch contains entries already on the remote, retrying one by one", "count", len(entries))

	acked := make([]string, 0, len(entries))
	for _, e := range entries {
		err := p.remote.InsertAuditLogs(ctx, []models.AuditLogEntry{e})
		switch {
		case err == nil:
		case errors.Is(err, common.ErrorAlreadyExists):
			p.logger.Warn(ctx, "audit entry already on remote", "id", e.ID)
		default:
			return acked, err
		}
		acked = append(acked, e.ID)
	}
	return acked, nil
}

func auditIDs(entries []models.AuditLogEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}
