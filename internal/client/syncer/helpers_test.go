package syncer

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/stockkeeper/internal/client/storage"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/remote/memory"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

var base = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return base.Add(time.Duration(minutes) * time.Minute)
}

func setupDB(t *testing.T) (*sql.DB, *storage.SQLiteRepositoryManager) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))
	return db, storage.NewSQLiteRepositoryManager()
}

// gate blocks a remote call until released and reports when it is reached.
type gate struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), release: make(chan struct{})}
}

// faultyStore is a memory store with per-method failures, gates and a call
// log.
type faultyStore struct {
	*memory.Store

	mu    sync.Mutex
	calls []string
	fail  map[string]error
	gates map[string]*gate
}

func newFaultyStore() *faultyStore {
	return &faultyStore{
		Store: memory.NewStore(),
		fail:  make(map[string]error),
		gates: make(map[string]*gate),
	}
}

func (f *faultyStore) failOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[method] = err
}

func (f *faultyStore) gateOn(method string) *gate {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := newGate()
	f.gates[method] = g
	return g
}

func (f *faultyStore) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *faultyStore) hit(ctx context.Context, method string) error {
	f.mu.Lock()
	f.calls = append(f.calls, method)
	err := f.fail[method]
	g := f.gates[method]
	f.mu.Unlock()

	if g != nil {
		g.once.Do(func() { close(g.entered) })
		select {
		case <-g.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *faultyStore) UpsertCategories(ctx context.Context, r []models.Category) error {
	if err := f.hit(ctx, "UpsertCategories"); err != nil {
		return err
	}
	return f.Store.UpsertCategories(ctx, r)
}

func (f *faultyStore) UpsertHardware(ctx context.Context, r []models.HardwareItem) error {
	if err := f.hit(ctx, "UpsertHardware"); err != nil {
		return err
	}
	return f.Store.UpsertHardware(ctx, r)
}

func (f *faultyStore) UpsertNotes(ctx context.Context, r []models.Note) error {
	if err := f.hit(ctx, "UpsertNotes"); err != nil {
		return err
	}
	return f.Store.UpsertNotes(ctx, r)
}

func (f *faultyStore) UpsertAuditLogs(ctx context.Context, r []models.AuditLogEntry) error {
	if err := f.hit(ctx, "UpsertAuditLogs"); err != nil {
		return err
	}
	return f.Store.UpsertAuditLogs(ctx, r)
}

func (f *faultyStore) InsertAuditLogs(ctx context.Context, r []models.AuditLogEntry) error {
	if err := f.hit(ctx, "InsertAuditLogs"); err != nil {
		return err
	}
	return f.Store.InsertAuditLogs(ctx, r)
}

func (f *faultyStore) SelectCategories(ctx context.Context) ([]models.Category, error) {
	if err := f.hit(ctx, "SelectCategories"); err != nil {
		return nil, err
	}
	return f.Store.SelectCategories(ctx)
}

func (f *faultyStore) SelectHardware(ctx context.Context) ([]models.HardwareItem, error) {
	if err := f.hit(ctx, "SelectHardware"); err != nil {
		return nil, err
	}
	return f.Store.SelectHardware(ctx)
}

func (f *faultyStore) SelectNotes(ctx context.Context) ([]models.Note, error) {
	if err := f.hit(ctx, "SelectNotes"); err != nil {
		return nil, err
	}
	return f.Store.SelectNotes(ctx)
}

func (f *faultyStore) SelectAuditLogs(ctx context.Context) ([]models.AuditLogEntry, error) {
	if err := f.hit(ctx, "SelectAuditLogs"); err != nil {
		return nil, err
	}
	return f.Store.SelectAuditLogs(ctx)
}

// local seeding helpers

func putCategory(t *testing.T, db *sql.DB, repos storage.RepositoryManager, id string, updated time.Time) {
	t.Helper()
	require.NoError(t, repos.Categories(db).Put(context.Background(),
		&models.Category{ID: id, Name: "cat " + id, UpdatedAt: updated}))
}

func putHardware(t *testing.T, db *sql.DB, repos storage.RepositoryManager, h models.HardwareItem) {
	t.Helper()
	require.NoError(t, repos.Hardware(db).Put(context.Background(), &h))
}

func putNote(t *testing.T, db *sql.DB, repos storage.RepositoryManager, id string, updated time.Time) {
	t.Helper()
	require.NoError(t, repos.Notes(db).Put(context.Background(),
		&models.Note{ID: id, Title: "note " + id, CreatedAt: updated, UpdatedAt: updated}))
}

func insertAudit(t *testing.T, db *sql.DB, repos storage.RepositoryManager, id string, created time.Time) {
	t.Helper()
	require.NoError(t, repos.AuditLogs(db).Insert(context.Background(),
		&models.AuditLogEntry{ID: id, ItemID: "h1", Username: "ana", ChangeDescription: "change " + id, CreatedAt: created}))
}
