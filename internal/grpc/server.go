// Package grpc serves the standard gRPC health service. The serving status
// follows the reachability of the catalog store.
package grpc

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name clients can query.
const ServiceName = "whattowatch.Catalog"

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	*grpc.Server
	health *health.Server
	pinger Pinger
	logger zerolog.Logger
}

func NewServer(pinger Pinger, logger zerolog.Logger) *Server {
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return &Server{
		Server: srv,
		health: hs,
		pinger: pinger,
		logger: logger.With().Str("component", "grpc").Logger(),
	}
}

// Health exposes the health service, mainly for in-process checks.
func (s *Server) Health() healthpb.HealthServer {
	return s.health
}

// CheckNow pings the store once and publishes the result.
func (s *Server) CheckNow(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Store ping failed, reporting NOT_SERVING")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Watch re-checks the store every interval until ctx is done.
func (s *Server) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.CheckNow(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckNow(ctx)
		}
	}
}

// Stop marks the service as not serving and drains in-flight RPCs.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.Server.GracefulStop()
}
