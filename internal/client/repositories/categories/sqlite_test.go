package categories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/stockkeeper/internal/common"
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

func strPtr(s string) *string { return &s }

var base = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func TestPutAndGet_RoundTrip(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	in := &models.Category{ID: "c1", Name: "Fasteners", Color: strPtr("#ff0000"), UpdatedAt: base}
	require.NoError(t, r.Put(ctx, in))

	got, err := r.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestGet_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	got, err := r.Get(context.Background(), "absent")
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.Nil(t, got)
}

func TestPut_UpsertOverwrites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, &models.Category{ID: "c1", Name: "Old", Color: strPtr("blue"), UpdatedAt: base}))
	require.NoError(t, r.Put(ctx, &models.Category{ID: "c1", Name: "New", IsDeleted: true, UpdatedAt: base.Add(time.Minute)}))

	got, err := r.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Nil(t, got.Color)
	assert.True(t, got.IsDeleted)
	assert.True(t, got.UpdatedAt.Equal(base.Add(time.Minute)))
}

func TestList_ExcludesTombstonesUnlessAsked(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, &models.Category{ID: "c1", Name: "Paint", UpdatedAt: base}))
	require.NoError(t, r.Put(ctx, &models.Category{ID: "c2", Name: "Bolts", IsDeleted: true, UpdatedAt: base}))

	live, err := r.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "c1", live[0].ID)

	all, err := r.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Bolts", all[0].Name, "ordered by name")
}

func TestChangedSince_StrictlyAfter(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, &models.Category{ID: "before", Name: "a", UpdatedAt: base.Add(-time.Second)}))
	require.NoError(t, r.Put(ctx, &models.Category{ID: "at", Name: "b", UpdatedAt: base}))
	require.NoError(t, r.Put(ctx, &models.Category{ID: "after", Name: "c", UpdatedAt: base.Add(time.Microsecond)}))

	got, err := r.ChangedSince(ctx, base)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "after", got[0].ID)

	all, err := r.ChangedSince(ctx, models.Epoch)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestClear_RemovesAll(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, &models.Category{ID: "c1", Name: "x", UpdatedAt: base}))
	require.NoError(t, r.Clear(ctx))

	all, err := r.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestErrorsWrapped_WhenDBClosed(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get category[k]")

	err = r.Put(ctx, &models.Category{ID: "k", UpdatedAt: base})
	require.ErrorContains(t, err, "failed to put category[k]")

	_, err = r.List(ctx, false)
	require.ErrorContains(t, err, "failed to list categories")

	_, err = r.ChangedSince(ctx, base)
	require.ErrorContains(t, err, "failed to select changed categories")

	require.ErrorContains(t, r.Clear(ctx), "failed to clear categories")
}
