// Package syncapi describes the gateway's gRPC service. Messages are
// protobuf well-known types; record batches travel as a JSON envelope inside
// a BytesValue, so no generated stubs are needed.
package syncapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "stockkeeper.sync.SyncService"

const (
	MethodUpsert    = "/" + ServiceName + "/Upsert"
	MethodInsert    = "/" + ServiceName + "/Insert"
	MethodSelectAll = "/" + ServiceName + "/SelectAll"
	MethodPing      = "/" + ServiceName + "/Ping"
)

// SyncServiceServer is implemented by the gateway.
type SyncServiceServer interface {
	// Upsert stores an encoded batch keyed by id.
	Upsert(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error)
	// Insert stores an encoded audit batch and fails on a duplicate id.
	Insert(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error)
	// SelectAll returns the named collection as a JSON array.
	SelectAll(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	Ping(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

func RegisterSyncServiceServer(s grpc.ServiceRegistrar, srv SyncServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SyncServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Upsert", Handler: upsertHandler},
		{MethodName: "Insert", Handler: insertHandler},
		{MethodName: "SelectAll", Handler: selectAllHandler},
		{MethodName: "Ping", Handler: pingHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stockkeeper/sync.proto",
}

func upsertHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SyncServiceServer).Upsert(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodUpsert}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SyncServiceServer).Upsert(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func insertHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SyncServiceServer).Insert(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodInsert}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SyncServiceServer).Insert(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func selectAllHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SyncServiceServer).SelectAll(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodSelectAll}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SyncServiceServer).SelectAll(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func pingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SyncServiceServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodPing}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SyncServiceServer).Ping(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// SyncServiceClient is the typed client side of ServiceDesc.
type SyncServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSyncServiceClient(cc grpc.ClientConnInterface) *SyncServiceClient {
	return &SyncServiceClient{cc: cc}
}

func (c *SyncServiceClient) Upsert(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, MethodUpsert, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SyncServiceClient) Insert(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, MethodInsert, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SyncServiceClient) SelectAll(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, MethodSelectAll, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SyncServiceClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, MethodPing, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
