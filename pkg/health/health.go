// health поднимает служебные эндпоинты фоновых сервисов:
//   - HTTP: /livez, /healthz (readiness), /metrics (prometheus);
//   - gRPC: grpc_health_v1 с go-grpc-prometheus интерсепторами
//     и рефлексией в окружениях local/dev.
//
// Готовность выставляется вызовом SetReady после того, как сервис
// подписался на свои очереди.
package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server - HTTP и gRPC health-серверы процесса.
type Server struct {
	log   *slog.Logger
	ready atomic.Bool

	httpSrv  *http.Server
	grpcSrv  *grpc.Server
	hs       *grpchealth.Server
	grpcAddr string
}

// New собирает серверы; grpcAddr == "" отключает gRPC health.
func New(log *slog.Logger, env, httpAddr, grpcAddr string) *Server {
	if log == nil {
		log = slog.Default()
	}

	p := &Server{log: log, grpcAddr: grpcAddr}

	p.httpSrv = &http.Server{
		Addr:              httpAddr,
		Handler:           p.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if grpcAddr != "" {
		grpc_prometheus.EnableHandlingTimeHistogram()

		p.grpcSrv = grpc.NewServer(
			grpc.ChainUnaryInterceptor(grpc_prometheus.UnaryServerInterceptor),
			grpc.ChainStreamInterceptor(grpc_prometheus.StreamServerInterceptor),
		)

		p.hs = grpchealth.NewServer()
		p.hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		healthpb.RegisterHealthServer(p.grpcSrv, p.hs)

		// Рефлексия - только в local/dev.
		if env == "local" || env == "dev" {
			reflection.Register(p.grpcSrv)
		}

		grpc_prometheus.Register(p.grpcSrv)
	}

	return p
}

// Handler возвращает mux со служебными HTTP-эндпоинтами.
func (p *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if p.ready.Load() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// Start начинает обслуживание в фоне. Ошибка - только если не удалось занять gRPC-порт.
func (p *Server) Start() error {
	go func() {
		p.log.Info("http_listen_start", slog.String("addr", p.httpSrv.Addr))
		if err := p.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}()

	if p.grpcSrv == nil {
		return nil
	}

	lis, err := net.Listen("tcp", p.grpcAddr)
	if err != nil {
		return fmt.Errorf("grpc listen %s: %w", p.grpcAddr, err)
	}
	p.log.Info("grpc_listen_start", slog.String("addr", p.grpcAddr))

	go func() {
		if err := p.grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			p.log.Error("grpc_serve_failed", slog.String("err", err.Error()))
		}
	}()

	return nil
}

// SetReady переключает readiness и статус gRPC health.
func (p *Server) SetReady(ready bool) {
	p.ready.Store(ready)

	if p.hs == nil {
		return
	}

	if ready {
		p.hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		return
	}
	p.hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
}

// Shutdown останавливает серверы; по истечении ctx gRPC останавливается принудительно.
func (p *Server) Shutdown(ctx context.Context) {
	p.SetReady(false)

	if p.grpcSrv != nil {
		done := make(chan struct{})
		go func() {
			p.grpcSrv.GracefulStop()
			close(done)
		}()

		select {
		case <-done:
			p.log.Info("grpc_stopped")
		case <-ctx.Done():
			p.log.Warn("grpc_force_stop")
			p.grpcSrv.Stop()
		}
	}

	_ = p.httpSrv.Shutdown(ctx)
}
