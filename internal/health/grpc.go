package health

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCServer serves grpc.health.v1.Health. The overall status and the status
// of Service follow the probe, polled every interval.
type GRPCServer struct {
	Service string

	srv      *grpc.Server
	health   *health.Server
	probe    *Probe
	interval time.Duration
	log      *zap.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewGRPCServer(service string, probe *Probe, interval time.Duration, log *zap.Logger) *GRPCServer {
	if log == nil {
		log = zap.NewNop()
	}
	hs := health.NewServer()
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	return &GRPCServer{
		Service:  service,
		srv:      srv,
		health:   hs,
		probe:    probe,
		interval: interval,
		log:      log.Named("grpc.health"),
	}
}

// Refresh runs one probe and publishes the result.
func (s *GRPCServer) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if s.probe.Alive(ctx) {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(s.Service, status)
	return status
}

// Start publishes an initial status, then polls the probe and serves on l in
// the background until Stop is called.
func (s *GRPCServer) Start(l net.Listener) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.Refresh(ctx)
	go s.poll(ctx)

	s.log.Info("grpc health listening", zap.String("addr", l.Addr().String()))
	go func() {
		if err := s.srv.Serve(l); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			s.log.Error("grpc serve", zap.Error(err))
		}
	}()
}

func (s *GRPCServer) poll(ctx context.Context) {
	defer close(s.done)
	t := time.NewTicker(s.interval)
	defer t.Stop()

	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if st := s.Refresh(ctx); st != last {
				s.log.Info("store status changed", zap.String("status", st.String()))
				last = st
			}
		}
	}
}

// Stop marks every service NOT_SERVING and drains in-flight RPCs, giving up
// when ctx expires.
func (s *GRPCServer) Stop(ctx context.Context) {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		s.srv.Stop()
	}
}
