// Package grpcremote implements remote.Store as a client of the sync
// gateway.
package grpcremote

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/remote"
	"github.com/dmitrijs2005/stockkeeper/internal/syncapi"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type Store struct {
	conn       *grpc.ClientConn
	client     *syncapi.SyncServiceClient
	clientInfo string
}

// Dial creates a lazy connection to the gateway at addr. clientInfo is sent
// with every call so the gateway can attribute requests.
func Dial(addr, clientInfo string, opts ...grpc.DialOption) (*Store, error) {
	s := &Store{clientInfo: clientInfo}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.clientInfoInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc client: %w", err)
	}
	s.conn = conn
	s.client = syncapi.NewSyncServiceClient(conn)
	return s, nil
}

func withClientInfo(ctx context.Context, info string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.ClientInfoHeaderName, info)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *Store) clientInfoInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withClientInfo(ctx, s.clientInfo), method, req, reply, cc, opts...)
}

func upsert[T any](ctx context.Context, s *Store, collection string, records []T) error {
	if len(records) == 0 {
		return nil
	}
	msg, err := syncapi.EncodeBatch(collection, records)
	if err != nil {
		return err
	}
	if _, err := s.client.Upsert(ctx, msg); err != nil {
		return mapError(err)
	}
	return nil
}

func selectAll[T any](ctx context.Context, s *Store, collection string) ([]T, error) {
	resp, err := s.client.SelectAll(ctx, wrapperspb.String(collection))
	if err != nil {
		return nil, mapError(err)
	}
	return syncapi.DecodeRecords[T](resp.GetValue())
}

func (s *Store) UpsertCategories(ctx context.Context, records []models.Category) error {
	return upsert(ctx, s, remote.CollectionCategories, records)
}

func (s *Store) UpsertHardware(ctx context.Context, records []models.HardwareItem) error {
	return upsert(ctx, s, remote.CollectionHardware, records)
}

func (s *Store) UpsertNotes(ctx context.Context, records []models.Note) error {
	return upsert(ctx, s, remote.CollectionNotes, records)
}

func (s *Store) UpsertAuditLogs(ctx context.Context, records []models.AuditLogEntry) error {
	return upsert(ctx, s, remote.CollectionAuditLogs, records)
}

func (s *Store) InsertAuditLogs(ctx context.Context, records []models.AuditLogEntry) error {
	if len(records) == 0 {
		return nil
	}
	msg, err := syncapi.EncodeBatch(remote.CollectionAuditLogs, records)
	if err != nil {
		return err
	}
	if _, err := s.client.Insert(ctx, msg); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Store) SelectCategories(ctx context.Context) ([]models.Category, error) {
	return selectAll[models.Category](ctx, s, remote.CollectionCategories)
}

func (s *Store) SelectHardware(ctx context.Context) ([]models.HardwareItem, error) {
	return selectAll[models.HardwareItem](ctx, s, remote.CollectionHardware)
}

func (s *Store) SelectNotes(ctx context.Context) ([]models.Note, error) {
	return selectAll[models.Note](ctx, s, remote.CollectionNotes)
}

func (s *Store) SelectAuditLogs(ctx context.Context) ([]models.AuditLogEntry, error) {
	return selectAll[models.AuditLogEntry](ctx, s, remote.CollectionAuditLogs)
}

func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.Ping(ctx, &emptypb.Empty{}); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.AlreadyExists:
		return fmt.Errorf("%s: %w", st.Message(), common.ErrorAlreadyExists)
	case codes.InvalidArgument:
		return fmt.Errorf("%s: %w", st.Message(), common.ErrorValidation)
	case codes.NotFound:
		return fmt.Errorf("%s: %w", st.Message(), common.ErrorNotFound)
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%s: %w", st.Message(), common.ErrorUnavailable)
	case codes.Canceled:
		return fmt.Errorf("%s: %w", st.Message(), context.Canceled)
	default:
		return errors.Join(common.ErrorInternal, fmt.Errorf("rpc error: %w", err))
	}
}
