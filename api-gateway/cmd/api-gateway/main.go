package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/go-food-delivery/pkg/health"
	"github.com/pribylovaa/go-food-delivery/pkg/queue/amqp"

	"github.com/pribylovaa/go-food-delivery/api-gateway/internal/clients"
	"github.com/pribylovaa/go-food-delivery/api-gateway/internal/config"
	gwhttp "github.com/pribylovaa/go-food-delivery/api-gateway/internal/http"
	"github.com/pribylovaa/go-food-delivery/api-gateway/internal/http/handlers"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting api-gateway", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	mqCtx, mqCancel := context.WithTimeout(rootCtx, 10*time.Second)
	broker, err := amqp.Dial(mqCtx, cfg.RabbitMQ.URL, log)
	mqCancel()
	if err != nil {
		log.Error("rabbitmq_connect_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if cerr := broker.Close(); cerr != nil {
			log.Warn("rabbitmq_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	log.Info("rabbitmq_connected")

	cl := clients.New(broker, cfg.Timeouts, log, prometheus.DefaultRegisterer)

	apiHandler := gwhttp.NewRouter(handlers.New(cl.Tokens, cl.Messaging, cl.Ratings), gwhttp.Options{
		Logger:  log,
		Timeout: cfg.Timeouts.Service,
		Metrics: prometheus.DefaultRegisterer,
	})

	// /livez, /healthz и /metrics - на отдельном порту.
	healthSrv := health.New(log, cfg.Env, cfg.Metrics.Addr(), "")
	_ = healthSrv.Start()

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           apiHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		healthSrv.Shutdown(context.Background())
		_ = broker.Close()
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	healthSrv.SetReady(true)
	log.Info("gateway_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	healthSrv.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped", slog.Int("pending_calls", cl.Pending()))
	}

	healthSrv.Shutdown(shutdownCtx)

	log.Info("service_stopped")
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
