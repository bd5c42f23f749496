package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/remote"
	"github.com/dmitrijs2005/stockkeeper/internal/remote/memory"
	"github.com/dmitrijs2005/stockkeeper/internal/syncapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var base = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// failingStore fails every call with err.
type failingStore struct {
	remote.Store
	err error
}

func (f failingStore) UpsertCategories(context.Context, []models.Category) error { return f.err }
func (f failingStore) SelectNotes(context.Context) ([]models.Note, error)        { return nil, f.err }
func (f failingStore) Ping(context.Context) error                                { return f.err }

func newHandler(store remote.Store) *GRPCServer {
	return NewGRPCServer("", logging.Nop(), store, 0)
}

func mustBatch[T any](t *testing.T, collection string, records []T) *wrapperspb.BytesValue {
	t.Helper()
	msg, err := syncapi.EncodeBatch(collection, records)
	require.NoError(t, err)
	return msg
}

func TestUpsertThenSelectAll(t *testing.T) {
	store := memory.NewStore()
	s := newHandler(store)
	ctx := context.Background()

	_, err := s.Upsert(ctx, mustBatch(t, remote.CollectionNotes, []models.Note{
		{ID: "n1", Title: "Supplier", CreatedAt: base, UpdatedAt: base},
	}))
	require.NoError(t, err)

	resp, err := s.SelectAll(ctx, wrapperspb.String(remote.CollectionNotes))
	require.NoError(t, err)

	var got []models.Note
	require.NoError(t, json.Unmarshal(resp.GetValue(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Supplier", got[0].Title)
}

func TestUpsert_EveryCollection(t *testing.T) {
	s := newHandler(memory.NewStore())
	ctx := context.Background()

	_, err := s.Upsert(ctx, mustBatch(t, remote.CollectionCategories, []models.Category{{ID: "c1", UpdatedAt: base}}))
	require.NoError(t, err)
	_, err = s.Upsert(ctx, mustBatch(t, remote.CollectionHardware, []models.HardwareItem{{ID: "h1", UpdatedAt: base}}))
	require.NoError(t, err)
	_, err = s.Upsert(ctx, mustBatch(t, remote.CollectionAuditLogs, []models.AuditLogEntry{{ID: "a1", CreatedAt: base}}))
	require.NoError(t, err)

	for _, c := range []string{remote.CollectionCategories, remote.CollectionHardware, remote.CollectionAuditLogs} {
		resp, err := s.SelectAll(ctx, wrapperspb.String(c))
		require.NoError(t, err)
		assert.NotEqual(t, "[]", string(resp.GetValue()), c)
	}
}

func TestUpsert_UnknownCollection(t *testing.T) {
	s := newHandler(memory.NewStore())

	_, err := s.Upsert(context.Background(), mustBatch(t, "widgets", []models.Note{}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.SelectAll(context.Background(), wrapperspb.String("widgets"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestUpsert_MalformedPayload(t *testing.T) {
	s := newHandler(memory.NewStore())

	_, err := s.Upsert(context.Background(), wrapperspb.Bytes([]byte("not json")))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestUpsert_InvalidRecord(t *testing.T) {
	s := newHandler(memory.NewStore())

	_, err := s.Upsert(context.Background(), mustBatch(t, remote.CollectionHardware, []models.HardwareItem{{ID: "h1"}}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestInsert_DuplicateIsAlreadyExists(t *testing.T) {
	s := newHandler(memory.NewStore())
	ctx := context.Background()
	batch := mustBatch(t, remote.CollectionAuditLogs, []models.AuditLogEntry{{ID: "a1", CreatedAt: base}})

	_, err := s.Insert(ctx, batch)
	require.NoError(t, err)

	_, err = s.Insert(ctx, batch)
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
}

func TestInsert_OnlyAuditLogs(t *testing.T) {
	s := newHandler(memory.NewStore())

	_, err := s.Insert(context.Background(), mustBatch(t, remote.CollectionNotes, []models.Note{}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestStoreErrorsAreMapped(t *testing.T) {
	ctx := context.Background()

	s := newHandler(failingStore{err: errors.New("db down")})
	_, err := s.Upsert(ctx, mustBatch(t, remote.CollectionCategories, []models.Category{{ID: "c1", UpdatedAt: base}}))
	assert.Equal(t, codes.Internal, status.Code(err))

	s = newHandler(failingStore{err: context.DeadlineExceeded})
	_, err = s.SelectAll(ctx, wrapperspb.String(remote.CollectionNotes))
	assert.Equal(t, codes.DeadlineExceeded, status.Code(err))

	s = newHandler(failingStore{err: common.ErrorNotFound})
	_, err = s.Ping(ctx, &emptypb.Empty{})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestPing_OK(t *testing.T) {
	s := newHandler(memory.NewStore())
	_, err := s.Ping(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
}
