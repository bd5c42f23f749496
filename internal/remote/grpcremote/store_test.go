package grpcremote

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/remote"
	"github.com/dmitrijs2005/stockkeeper/internal/remote/memory"
	gs "github.com/dmitrijs2005/stockkeeper/internal/server/grpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

var _ remote.Store = (*Store)(nil)

var base = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// newGateway serves a memory store over bufconn and returns a connected
// client store.
func newGateway(t *testing.T) (*Store, *memory.Store) {
	t.Helper()

	backend := memory.NewStore()
	lis := bufconn.Listen(1 << 20)
	srv := gs.NewGRPCServer("bufnet", logging.Nop(), backend, time.Second).NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }
	s, err := Dial("passthrough:///bufnet", "test-host", grpc.WithContextDialer(dialer))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, backend
}

func TestRoundTripAllCollections(t *testing.T) {
	s, backend := newGateway(t)
	ctx := context.Background()

	color := "blue"
	require.NoError(t, s.UpsertCategories(ctx, []models.Category{{ID: "c1", Name: "Tools", Color: &color, UpdatedAt: base}}))
	require.NoError(t, s.UpsertHardware(ctx, []models.HardwareItem{{ID: "h1", Description: "Hammer", CategoryID: "c1", Quantity: "3", UpdatedAt: base}}))
	require.NoError(t, s.UpsertNotes(ctx, []models.Note{{ID: "n1", Title: "Supplier", CreatedAt: base, UpdatedAt: base}}))
	require.NoError(t, s.UpsertAuditLogs(ctx, []models.AuditLogEntry{{ID: "a1", ItemID: "h1", ChangeDescription: "Added item: Hammer", CreatedAt: base}}))

	cats, err := s.SelectCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	require.NotNil(t, cats[0].Color)
	assert.Equal(t, "blue", *cats[0].Color)
	assert.True(t, cats[0].UpdatedAt.Equal(base))

	hw, err := s.SelectHardware(ctx)
	require.NoError(t, err)
	require.Len(t, hw, 1)
	assert.Equal(t, "Hammer", hw[0].Description)

	ns, err := s.SelectNotes(ctx)
	require.NoError(t, err)
	assert.Len(t, ns, 1)

	logs, err := s.SelectAuditLogs(ctx)
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	direct, err := backend.SelectHardware(ctx)
	require.NoError(t, err)
	assert.Len(t, direct, 1)
}

func TestInsertAuditLogs_DuplicateMapsToAlreadyExists(t *testing.T) {
	s, _ := newGateway(t)
	ctx := context.Background()

	entry := models.AuditLogEntry{ID: "a1", ItemID: "h1", ChangeDescription: "x", CreatedAt: base}
	require.NoError(t, s.InsertAuditLogs(ctx, []models.AuditLogEntry{entry}))

	err := s.InsertAuditLogs(ctx, []models.AuditLogEntry{entry})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	// the idempotent path accepts the same entry again
	require.NoError(t, s.UpsertAuditLogs(ctx, []models.AuditLogEntry{entry}))
}

func TestUpsert_InvalidRecordRejected(t *testing.T) {
	s, _ := newGateway(t)

	err := s.UpsertHardware(context.Background(), []models.HardwareItem{{ID: "", UpdatedAt: base}})
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestPing(t *testing.T) {
	s, _ := newGateway(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestEmptyBatchesSkipTheWire(t *testing.T) {
	s, err := Dial("passthrough:///nowhere", "x")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.UpsertCategories(ctx, nil))
	require.NoError(t, s.InsertAuditLogs(ctx, nil))
}

func TestMapError(t *testing.T) {
	cases := []struct {
		code codes.Code
		want error
	}{
		{codes.AlreadyExists, common.ErrorAlreadyExists},
		{codes.InvalidArgument, common.ErrorValidation},
		{codes.NotFound, common.ErrorNotFound},
		{codes.Unavailable, common.ErrorUnavailable},
		{codes.DeadlineExceeded, common.ErrorUnavailable},
		{codes.Internal, common.ErrorInternal},
	}
	for _, tc := range cases {
		t.Run(tc.code.String(), func(t *testing.T) {
			err := mapError(status.Error(tc.code, "boom"))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
