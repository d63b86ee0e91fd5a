// Package grpc serves the standard gRPC health service so orchestrators can
// probe the hub without going through HTTP.
package grpc

import (
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported for the hub.
const ServiceName = "chirp-hub"

type HealthServer struct {
	log    *slog.Logger
	server *grpc.Server
	health *health.Server
}

// NewHealthServer starts NOT_SERVING until SetServing(true) is called.
func NewHealthServer(log *slog.Logger) *HealthServer {
	s := &HealthServer{log: log, server: grpc.NewServer(), health: health.NewServer()}
	healthpb.RegisterHealthServer(s.server, s.health)
	s.SetServing(false)
	return s
}

func (s *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	s.log.Debug("Health status changed", "status", status.String())
}

// Serve blocks until GracefulStop. A stopped server is not an error.
func (s *HealthServer) Serve(listener net.Listener) error {
	s.log.Info("Starting gRPC health server", "address", listener.Addr().String())
	if err := s.server.Serve(listener); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

// GracefulStop reports NOT_SERVING to watchers, then stops the server.
func (s *HealthServer) GracefulStop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
