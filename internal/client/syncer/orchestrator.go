package syncer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/client/storage"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/remote"
	"github.com/google/uuid"
)

type State int32

const (
	StateIdle State = iota
	StatePushing
	StatePulling
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePushing:
		return "pushing"
	case StatePulling:
		return "pulling"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Result summarizes one successful cycle.
type Result struct {
	Pushed   models.Counts
	Pull     PullResult
	SyncedAt time.Time
	Duration time.Duration
}

type Options struct {
	// RemoteTimeout bounds every remote call; 0 disables the bound.
	RemoteTimeout time.Duration
	// LegacyAuditInsert pushes audit entries with insert instead of upsert.
	LegacyAuditInsert bool
	// ClientInfo identifies this device in system log entries.
	ClientInfo string
}

type failure struct {
	stage string
	err   error
}

// Orchestrator runs push then pull and owns the cursor. RunSync is safe to
// call from several goroutines; overlapping calls get ErrSyncInProgress.
type Orchestrator struct {
	db         *sql.DB
	repos      storage.RepositoryManager
	cursor     CursorStore
	pusher     *Pusher
	puller     *Puller
	logger     logging.Logger
	clientInfo string
	now        func() time.Time

	running atomic.Bool
	state   atomic.Int32
	lastErr atomic.Pointer[failure]
}

func NewOrchestrator(db *sql.DB, repos storage.RepositoryManager, store remote.Store, logger logging.Logger, opts Options) *Orchestrator {
	store = remote.WithTimeout(store, opts.RemoteTimeout)

	pusher := NewPusher(db, repos, store, logger)
	pusher.LegacyAuditInsert = opts.LegacyAuditInsert

	return &Orchestrator{
		db:         db,
		repos:      repos,
		cursor:     NewMetadataCursor(db, repos),
		pusher:     pusher,
		puller:     NewPuller(db, repos, store, logger),
		logger:     logger.With("module", "sync"),
		clientInfo: opts.ClientInfo,
		now:        models.Now,
	}
}

// WithCursor replaces the cursor store.
func (o *Orchestrator) WithCursor(c CursorStore) *Orchestrator {
	o.cursor = c
	return o
}

func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// LastError is the error of the most recent cycle, nil after a success.
func (o *Orchestrator) LastError() error {
	if f := o.lastErr.Load(); f != nil {
		return f.err
	}
	return nil
}

// FailedStage names the step the most recent cycle failed in (cursor,
// detect, push or pull), "" after a success.
func (o *Orchestrator) FailedStage() string {
	if f := o.lastErr.Load(); f != nil {
		return f.stage
	}
	return ""
}

func (o *Orchestrator) LastSyncedAt(ctx context.Context) (time.Time, error) {
	return o.cursor.GetCursor(ctx)
}

// Pending returns the size of the dirty set a cycle started now would push.
func (o *Orchestrator) Pending(ctx context.Context) (models.Counts, error) {
	since, err := o.cursor.GetCursor(ctx)
	if err != nil {
		return models.Counts{}, err
	}
	cs, err := DetectChanges(ctx, o.db, o.repos, since)
	if err != nil {
		return models.Counts{}, err
	}
	return cs.Counts(), nil
}

// RunSync performs one cycle. On success the cursor moves to the time
// captured before the dirty set was read, so a local edit committed while
// the push is in flight is still selected by the next cycle. On any failure
// the cursor is left unchanged.
func (o *Orchestrator) RunSync(ctx context.Context) (*Result, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer o.running.Store(false)

	ctx = logging.WithRunID(ctx, uuid.NewString())
	started := time.Now()
	o.state.Store(int32(StatePushing))

	since, err := o.cursor.GetCursor(ctx)
	if err != nil {
		o.writeLog(ctx, models.LogLevelInfo, "Sync started", map[string]any{"stage": "start"}, nil)
		return nil, o.fail(ctx, "cursor", nil, fmt.Errorf("read cursor: %w", err))
	}
	o.writeLog(ctx, models.LogLevelInfo, "Sync started", map[string]any{"stage": "start"}, &since)

	syncedAt := o.now()
	cs, err := DetectChanges(ctx, o.db, o.repos, since)
	if err != nil {
		return nil, o.fail(ctx, "detect", &since, err)
	}

	pushed, err := o.pusher.Push(ctx, cs)
	if err != nil {
		return nil, o.fail(ctx, "push", &since, err)
	}

	o.state.Store(int32(StatePulling))

	pulled, err := o.puller.Pull(ctx)
	if err != nil {
		return nil, o.fail(ctx, "pull", &since, err)
	}

	if err := o.cursor.SetCursor(ctx, syncedAt); err != nil {
		return nil, o.fail(ctx, "cursor", &since, fmt.Errorf("write cursor: %w", err))
	}

	res := &Result{Pushed: pushed, Pull: pulled, SyncedAt: syncedAt, Duration: time.Since(started)}

	o.lastErr.Store(nil)
	o.state.Store(int32(StateIdle))

	o.writeLog(ctx, models.LogLevelInfo, "Sync completed", map[string]any{
		"stage":   "done",
		"pushed":  pushed,
		"pulled":  pulled.Fetched.Total(),
		"applied": pulled.Applied,
		"skipped": pulled.Skipped,
	}, &syncedAt)
	o.logger.Info(ctx, "sync completed",
		"pushed", pushed.Total(), "pulled", pulled.Fetched.Total(),
		"skipped", pulled.Skipped, "duration", res.Duration)

	return res, nil
}

func (o *Orchestrator) fail(ctx context.Context, stage string, cursor *time.Time, err error) error {
	o.lastErr.Store(&failure{stage: stage, err: err})
	o.state.Store(int32(StateFailed))

	o.logger.Error(ctx, "sync failed", "stage", stage, "error", err)
	entry := o.newEntry(models.LogLevelError, err.Error(), map[string]any{"stage": stage}, cursor)
	entry.FullErrorDetails = errorChain(err)
	o.insertLog(ctx, entry)

	return err
}

func (o *Orchestrator) writeLog(ctx context.Context, level models.LogLevel, msg string, details map[string]any, cursor *time.Time) {
	o.insertLog(ctx, o.newEntry(level, msg, details, cursor))
}

func (o *Orchestrator) newEntry(level models.LogLevel, msg string, details map[string]any, cursor *time.Time) *models.SystemLogEntry {
	entry := &models.SystemLogEntry{
		ID:           uuid.NewString(),
		Timestamp:    models.Now(),
		Level:        level,
		ErrorMessage: msg,
		PhoneInfo:    o.clientInfo,
	}
	if cursor != nil {
		t := *cursor
		entry.LastSyncedAt = &t
	}
	if len(details) > 0 {
		if b, err := json.Marshal(details); err == nil {
			entry.Context = string(b)
		}
	}
	return entry
}

// insertLog never fails the cycle; a broken log table is only reported to
// the process logger.
func (o *Orchestrator) insertLog(ctx context.Context, entry *models.SystemLogEntry) {
	if err := o.repos.SystemLogs(o.db).Insert(context.WithoutCancel(ctx), entry); err != nil {
		o.logger.Warn(ctx, "failed to write system log", "error", err)
	}
}

// errorChain renders err and each wrapped cause on its own line.
func errorChain(err error) string {
	var lines []string
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		lines = append(lines, e.Error())
		switch u := e.(type) {
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		case interface{ Unwrap() []error }:
			for _, c := range u.Unwrap() {
				walk(c)
			}
		}
	}
	walk(err)
	return strings.Join(lines, "\ncaused by: ")
}

// Start runs a cycle now and then once per interval until ctx is done. It
// blocks; run it in its own goroutine.
func (o *Orchestrator) Start(ctx context.Context, interval time.Duration) {
	o.trigger(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			o.trigger(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (o *Orchestrator) trigger(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := o.RunSync(ctx); err != nil && !errors.Is(err, ErrSyncInProgress) {
		o.logger.Warn(ctx, "background sync failed", "error", err)
	}
}
