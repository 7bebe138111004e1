package health

import (
	"context"
	"errors"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name the web front-end reports under.
const ServiceName = "queryosity.web"

// GRPCServer exposes the standard gRPC health protocol for the web
// front-end.
type GRPCServer struct {
	srv    *grpc.Server
	status *grpchealth.Server
	logger *zap.Logger
}

func NewGRPCServer(logger *zap.Logger) *GRPCServer {
	status := grpchealth.NewServer()
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, status)
	return &GRPCServer{srv: srv, status: status, logger: logger}
}

// SetServing flips both the overall and the named service status.
func (g *GRPCServer) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	g.status.SetServingStatus("", st)
	g.status.SetServingStatus(ServiceName, st)
}

// Serve listens on addr until ctx is done, then drains in-flight calls.
func (g *GRPCServer) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return g.ServeListener(ctx, lis)
}

func (g *GRPCServer) ServeListener(ctx context.Context, lis net.Listener) error {
	g.SetServing(true)
	g.logger.Info("gRPC health listening", zap.String("addr", lis.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- g.srv.Serve(lis) }()

	select {
	case <-ctx.Done():
		g.status.Shutdown()
		g.srv.GracefulStop()
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}
