package memory

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ remote.Store = (*Store)(nil)

var base = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func TestUpsert_IsIdempotentById(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	batch := []models.HardwareItem{{ID: "h1", Quantity: "5", UpdatedAt: base}, {ID: "h2", UpdatedAt: base}}
	require.NoError(t, s.UpsertHardware(ctx, batch))
	require.NoError(t, s.UpsertHardware(ctx, batch))

	got, err := s.SelectHardware(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, s.UpsertHardware(ctx, []models.HardwareItem{{ID: "h1", Quantity: "3", IsDeleted: true, UpdatedAt: base.Add(time.Minute)}}))
	got, err = s.SelectHardware(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[0].Quantity)
	assert.True(t, got[0].IsDeleted)
}

func TestUpsertNotes_KeepsCreatedAt(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.UpsertNotes(ctx, []models.Note{{ID: "n1", Title: "a", CreatedAt: base, UpdatedAt: base}}))
	require.NoError(t, s.UpsertNotes(ctx, []models.Note{{ID: "n1", Title: "b", CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)}}))

	got, err := s.SelectNotes(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Title)
	assert.True(t, got[0].CreatedAt.Equal(base))
}

func TestAuditLogs_UpsertSkipsExisting_InsertRejectsDuplicates(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	first := models.AuditLogEntry{ID: "a1", ItemID: "h1", ChangeDescription: "first", CreatedAt: base, IsSynced: true}
	require.NoError(t, s.UpsertAuditLogs(ctx, []models.AuditLogEntry{first}))

	changed := first
	changed.ChangeDescription = "second"
	require.NoError(t, s.UpsertAuditLogs(ctx, []models.AuditLogEntry{changed}))

	got, err := s.SelectAuditLogs(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].ChangeDescription)
	assert.False(t, got[0].IsSynced, "local flag is not stored remotely")

	err = s.InsertAuditLogs(ctx, []models.AuditLogEntry{{ID: "a2", CreatedAt: base}, first})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	got, err = s.SelectAuditLogs(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1, "failed insert is all-or-nothing")

	require.NoError(t, s.InsertAuditLogs(ctx, []models.AuditLogEntry{{ID: "a2", CreatedAt: base}}))
}

func TestCategories_And_Ping(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.UpsertCategories(ctx, []models.Category{{ID: "b", UpdatedAt: base}, {ID: "a", UpdatedAt: base}}))
	got, err := s.SelectCategories(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)

	require.NoError(t, s.Ping(ctx))
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.Error(t, s.Ping(cancelled))
	require.NoError(t, s.Close())
}
