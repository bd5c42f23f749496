package grpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/remote"
	"github.com/dmitrijs2005/stockkeeper/internal/syncapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type validatable interface {
	Validate() error
}

func decodeValid[T any, PT interface {
	*T
	validatable
}](raw []byte) ([]T, error) {
	records, err := syncapi.DecodeRecords[T](raw)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if err := PT(&records[i]).Validate(); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *GRPCServer) Upsert(ctx context.Context, req *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	batch, err := syncapi.DecodeBatch(req)
	if err != nil {
		return nil, s.mapError(err)
	}

	switch batch.Collection {
	case remote.CollectionCategories:
		records, err := decodeValid[models.Category](batch.Records)
		if err == nil {
			err = s.store.UpsertCategories(ctx, records)
		}
		return s.empty(err)
	case remote.CollectionHardware:
		records, err := decodeValid[models.HardwareItem](batch.Records)
		if err == nil {
			err = s.store.UpsertHardware(ctx, records)
		}
		return s.empty(err)
	case remote.CollectionNotes:
		records, err := decodeValid[models.Note](batch.Records)
		if err == nil {
			err = s.store.UpsertNotes(ctx, records)
		}
		return s.empty(err)
	case remote.CollectionAuditLogs:
		records, err := decodeValid[models.AuditLogEntry](batch.Records)
		if err == nil {
			err = s.store.UpsertAuditLogs(ctx, records)
		}
		return s.empty(err)
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown collection %q", batch.Collection)
	}
}

func (s *GRPCServer) Insert(ctx context.Context, req *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	batch, err := syncapi.DecodeBatch(req)
	if err != nil {
		return nil, s.mapError(err)
	}
	if batch.Collection != remote.CollectionAuditLogs {
		return nil, status.Errorf(codes.InvalidArgument, "insert is not supported for %q", batch.Collection)
	}

	records, err := decodeValid[models.AuditLogEntry](batch.Records)
	if err == nil {
		err = s.store.InsertAuditLogs(ctx, records)
	}
	return s.empty(err)
}

func (s *GRPCServer) SelectAll(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	var (
		resp *wrapperspb.BytesValue
		err  error
	)

	switch req.GetValue() {
	case remote.CollectionCategories:
		resp, err = selectEncoded(ctx, s.store.SelectCategories)
	case remote.CollectionHardware:
		resp, err = selectEncoded(ctx, s.store.SelectHardware)
	case remote.CollectionNotes:
		resp, err = selectEncoded(ctx, s.store.SelectNotes)
	case remote.CollectionAuditLogs:
		resp, err = selectEncoded(ctx, s.store.SelectAuditLogs)
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown collection %q", req.GetValue())
	}

	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func selectEncoded[T any](ctx context.Context, sel func(context.Context) ([]T, error)) (*wrapperspb.BytesValue, error) {
	records, err := sel(ctx)
	if err != nil {
		return nil, err
	}
	return syncapi.EncodeRecords(records)
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	return s.empty(s.store.Ping(ctx))
}

func (s *GRPCServer) empty(err error) (*emptypb.Empty, error) {
	if err != nil {
		return nil, s.mapError(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) mapError(err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, fmt.Sprintf("internal error: %v", err))
	}
}
