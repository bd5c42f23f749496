// Package grpc serves the remote store to sync clients that cannot reach the
// database directly.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/remote"
	"github.com/dmitrijs2005/stockkeeper/internal/syncapi"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address        string
	store          remote.Store
	logger         logging.Logger
	requestTimeout time.Duration
}

func NewGRPCServer(address string, l logging.Logger, store remote.Store, requestTimeout time.Duration) *GRPCServer {
	return &GRPCServer{
		address:        address,
		store:          store,
		logger:         l.With("module", "grpc_server"),
		requestTimeout: requestTimeout,
	}
}

// NewServer builds the grpc.Server with interceptors and the sync service
// registered. Run uses it; tests serve it on a bufconn listener.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.timeoutInterceptor))
	syncapi.RegisterSyncServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on l until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, l net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", l.Addr().String())

	return srv.Serve(l)
}
