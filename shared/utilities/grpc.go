package utilities

import (
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer is a gRPC server that only answers the standard health protocol.
// Consul checks it to decide whether the HTTP API instance is alive.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	logger *zerolog.Logger
}

// NewHealthServer creates a gRPC server with the health service registered as SERVING.
func NewHealthServer(logger *zerolog.Logger) *HealthServer {
	grpcServer := grpc.NewServer()
	healthServer := RegisterHealthServer(grpcServer)

	return &HealthServer{server: grpcServer, health: healthServer, logger: logger}
}

// RegisterHealthServer registers the gRPC health check service.
func RegisterHealthServer(grpcServer *grpc.Server) *health.Server {
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	return healthServer
}

// Serve blocks serving on lis until Stop is called.
func (s *HealthServer) Serve(lis net.Listener) error {
	s.logger.Info().Str("addr", lis.Addr().String()).Msg("grpc health server started")
	return s.server.Serve(lis)
}

// Stop marks the service NOT_SERVING and drains the server.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
