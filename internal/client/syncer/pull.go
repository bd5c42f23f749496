package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/client/storage"
	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/remote"
)

// PullResult reports what a pull fetched and what it wrote locally.
type PullResult struct {
	Fetched models.Counts
	Applied models.Counts
	// Skipped counts records that failed validation or could not be written.
	Skipped int
}

// Puller merges the remote snapshot into the local store.
type Puller struct {
	db     dbx.Beginner
	repos  storage.RepositoryManager
	remote remote.Store
	logger logging.Logger
}

func NewPuller(db dbx.Beginner, repos storage.RepositoryManager, store remote.Store, logger logging.Logger) *Puller {
	return &Puller{db: db, repos: repos, remote: store, logger: logger.With("module", "pull")}
}

// Pull fetches all four collections before touching the local store, then
// reconciles them in one transaction. A fetch error aborts with nothing
// written; a bad record is logged and skipped.
func (p *Puller) Pull(ctx context.Context) (PullResult, error) {
	var res PullResult

	snapshot, err := p.fetch(ctx)
	if err != nil {
		return res, err
	}
	res.Fetched = snapshot.Counts()

	err = dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		p.mergeCategories(ctx, tx, snapshot.Categories, &res)
		p.mergeHardware(ctx, tx, snapshot.Hardware, &res)
		p.mergeNotes(ctx, tx, snapshot.Notes, &res)
		p.mergeAuditLogs(ctx, tx, snapshot.AuditLogs, &res)
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("%w: reconcile: %w", ErrPullFailed, err)
	}

	p.logger.Info(ctx, "pull complete", "fetched", res.Fetched.Total(), "applied", res.Applied.Total(), "skipped", res.Skipped)
	return res, nil
}

func (p *Puller) fetch(ctx context.Context) (*models.ChangeSet, error) {
	var (
		cs  models.ChangeSet
		err error
	)
	if cs.Categories, err = p.remote.SelectCategories(ctx); err != nil {
		return nil, fmt.Errorf("%w: get category updates: %w", ErrPullFailed, err)
	}
	if cs.Hardware, err = p.remote.SelectHardware(ctx); err != nil {
		return nil, fmt.Errorf("%w: get inventory updates: %w", ErrPullFailed, err)
	}
	if cs.Notes, err = p.remote.SelectNotes(ctx); err != nil {
		return nil, fmt.Errorf("%w: get note updates: %w", ErrPullFailed, err)
	}
	if cs.AuditLogs, err = p.remote.SelectAuditLogs(ctx); err != nil {
		return nil, fmt.Errorf("%w: get audit log updates: %w", ErrPullFailed, err)
	}
	return &cs, nil
}

func (p *Puller) skip(ctx context.Context, res *PullResult, collection, id string, err error) {
	res.Skipped++
	p.logger.Error(ctx, "skipping remote record", "collection", collection, "id", id, "error", err)
}

// Categories are overwritten unconditionally.
func (p *Puller) mergeCategories(ctx context.Context, tx dbx.DBTX, records []models.Category, res *PullResult) {
	repo := p.repos.Categories(tx)
	for i := range records {
		c := &records[i]
		if err := c.Validate(); err != nil {
			p.skip(ctx, res, remote.CollectionCategories, c.ID, err)
			continue
		}
		if err := repo.Put(ctx, c); err != nil {
			p.skip(ctx, res, remote.CollectionCategories, c.ID, err)
			continue
		}
		res.Applied.Categories++
	}
}

func (p *Puller) mergeHardware(ctx context.Context, tx dbx.DBTX, records []models.HardwareItem, res *PullResult) {
	repo := p.repos.Hardware(tx)
	for i := range records {
		h := &records[i]
		if err := h.Validate(); err != nil {
			p.skip(ctx, res, remote.CollectionHardware, h.ID, err)
			continue
		}
		local, err := repo.Get(ctx, h.ID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			p.skip(ctx, res, remote.CollectionHardware, h.ID, err)
			continue
		}
		if local != nil && !remoteWins(h.UpdatedAt, local.UpdatedAt) {
			continue
		}
		if err := repo.Put(ctx, h); err != nil {
			p.skip(ctx, res, remote.CollectionHardware, h.ID, err)
			continue
		}
		res.Applied.Hardware++
	}
}

func (p *Puller) mergeNotes(ctx context.Context, tx dbx.DBTX, records []models.Note, res *PullResult) {
	repo := p.repos.Notes(tx)
	for i := range records {
		n := &records[i]
		if err := n.Validate(); err != nil {
			p.skip(ctx, res, remote.CollectionNotes, n.ID, err)
			continue
		}
		local, err := repo.Get(ctx, n.ID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			p.skip(ctx, res, remote.CollectionNotes, n.ID, err)
			continue
		}
		if local != nil && !remoteWins(n.UpdatedAt, local.UpdatedAt) {
			continue
		}
		if err := repo.Put(ctx, n); err != nil {
			p.skip(ctx, res, remote.CollectionNotes, n.ID, err)
			continue
		}
		res.Applied.Notes++
	}
}

// Audit entries already exist remotely, so they land as synced.
func (p *Puller) mergeAuditLogs(ctx context.Context, tx dbx.DBTX, records []models.AuditLogEntry, res *PullResult) {
	repo := p.repos.AuditLogs(tx)
	for i := range records {
		a := &records[i]
		if err := a.Validate(); err != nil {
			p.skip(ctx, res, remote.CollectionAuditLogs, a.ID, err)
			continue
		}
		a.IsSynced = true
		if err := repo.Put(ctx, a); err != nil {
			p.skip(ctx, res, remote.CollectionAuditLogs, a.ID, err)
			continue
		}
		res.Applied.AuditLogs++
	}
}

// remoteWins is last-write-wins with ties kept local.
func remoteWins(remoteAt, localAt time.Time) bool {
	return remoteAt.After(localAt)
}
