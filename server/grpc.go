package server

import (
	"context"
	"fmt"
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health-check name of the simulation service
const ServiceName = "pursuit.Simulation"

// HealthServer reports through the standard gRPC health protocol whether a
// simulation is running.
type HealthServer struct {
	grpc   *grpc.Server
	health *health.Server
	logger *log.Logger
}

// NewHealthServer creates a gRPC server exposing only the health service. The
// simulation service starts out NOT_SERVING.
func NewHealthServer(logger *log.Logger) *HealthServer {
	if logger == nil {
		logger = log.Default()
	}
	h := &HealthServer{
		grpc:   grpc.NewServer(),
		health: health.NewServer(),
		logger: logger,
	}
	h.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(h.grpc, h.health)
	return h
}

// SetRunning flips the simulation service between SERVING and NOT_SERVING
func (h *HealthServer) SetRunning(running bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if running {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.logger.Printf("[Server] gRPC health of %s: %s", ServiceName, status)
	h.health.SetServingStatus(ServiceName, status)
}

// Serve accepts connections on lis until Stop is called
func (h *HealthServer) Serve(lis net.Listener) error {
	h.logger.Printf("[Server] gRPC listening on %s", lis.Addr())
	if err := h.grpc.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Stop marks every service as shutting down and stops the server
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.grpc.GracefulStop()
}

// CheckHealth asks the server behind conn for the simulation service status
func CheckHealth(ctx context.Context, conn grpc.ClientConnInterface) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("health check: %w", err)
	}
	return resp.GetStatus(), nil
}
