package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))
	return db
}

var base = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func entry(id, item string, offset time.Duration) *models.AuditLogEntry {
	return &models.AuditLogEntry{
		ID:                id,
		ItemID:            item,
		Username:          "ana",
		ChangeDescription: "Added item: " + item,
		CreatedAt:         base.Add(offset),
	}
}

func TestInsert_DuplicateFails(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, entry("a1", "h1", 0)))
	require.ErrorContains(t, r.Insert(ctx, entry("a1", "h1", 0)), "failed to insert audit log[a1]")
}

func TestListPending_And_MarkSynced(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, entry("a1", "h1", 0)))
	require.NoError(t, r.Insert(ctx, entry("a2", "h2", time.Second)))
	synced := entry("a3", "h3", 2*time.Second)
	synced.IsSynced = true
	require.NoError(t, r.Insert(ctx, synced))

	pending, err := r.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "a1", pending[0].ID)
	assert.False(t, pending[0].IsSynced)

	n, err := r.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, r.MarkSynced(ctx, []string{"a1"}))

	pending, err = r.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "a2", pending[0].ID)
}

func TestMarkSynced_EmptyAndLargeBatches(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.MarkSynced(ctx, nil))

	ids := make([]string, 0, markSyncedChunk+7)
	for i := range markSyncedChunk + 7 {
		id := fmt.Sprintf("a%04d", i)
		ids = append(ids, id)
		require.NoError(t, r.Insert(ctx, entry(id, "h", time.Duration(i)*time.Millisecond)))
	}

	require.NoError(t, r.MarkSynced(ctx, ids))

	n, err := r.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPut_NeverRevertsSyncedFlag(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	e := entry("a1", "h1", 0)
	e.IsSynced = true
	require.NoError(t, r.Put(ctx, e))

	e.IsSynced = false
	require.NoError(t, r.Put(ctx, e))

	all, err := r.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsSynced)
}

func TestPut_MarksPendingEntrySynced(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, entry("a1", "h1", 0)))

	pulled := entry("a1", "h1", 0)
	pulled.IsSynced = true
	require.NoError(t, r.Put(ctx, pulled))

	n, err := r.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListByItem_And_ListLimit(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, entry("a1", "h1", 0)))
	require.NoError(t, r.Insert(ctx, entry("a2", "h2", time.Second)))
	require.NoError(t, r.Insert(ctx, entry("a3", "h1", 2*time.Second)))

	trail, err := r.ListByItem(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, "a3", trail[0].ID, "newest first")

	latest, err := r.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "a3", latest[0].ID)

	require.NoError(t, r.Clear(ctx))
	all, err := r.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}
