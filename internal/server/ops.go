package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"TradeBook/internal/observability"
)

// OpsServer hosts the operational endpoints: Prometheus metrics and HTTP
// liveness/readiness probes, plus a gRPC health service for orchestrators
// that probe over gRPC.
type OpsServer struct {
	httpAddr string
	grpcAddr string
	checker  *observability.HealthChecker
	log      zerolog.Logger

	httpServer   *http.Server
	grpcServer   *grpc.Server
	healthServer *health.Server
}

func NewOpsServer(httpAddr, grpcAddr string, checker *observability.HealthChecker, log zerolog.Logger) *OpsServer {
	return &OpsServer{
		httpAddr: httpAddr,
		grpcAddr: grpcAddr,
		checker:  checker,
		log:      log,
	}
}

// StartHTTP serves /metrics, /healthz and /readyz (blocking).
func (s *OpsServer) StartHTTP(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", s.checker.LivenessHandler)
	mux.HandleFunc("/readyz", s.checker.ReadinessHandler)

	s.httpServer = &http.Server{
		Addr:    s.httpAddr,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutCtx)
	}()

	s.log.Info().Str("addr", s.httpAddr).Msg("ops HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// StartGRPC serves the standard gRPC health service (blocking).
func (s *OpsServer) StartGRPC(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.grpcAddr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	s.grpcServer = grpc.NewServer()
	s.healthServer = health.NewServer()
	healthpb.RegisterHealthServer(s.grpcServer, s.healthServer)
	s.healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Reflection for grpcurl / grpcui
	reflection.Register(s.grpcServer)

	go func() {
		<-ctx.Done()
		s.healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		s.grpcServer.GracefulStop()
	}()

	s.log.Info().Str("addr", s.grpcAddr).Msg("gRPC health server listening")
	return s.grpcServer.Serve(lis)
}
