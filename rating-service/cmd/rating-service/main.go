package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/go-food-delivery/pkg/health"
	"github.com/pribylovaa/go-food-delivery/pkg/interceptors"
	"github.com/pribylovaa/go-food-delivery/pkg/queue/amqp"
	"github.com/pribylovaa/go-food-delivery/pkg/rpc"

	"github.com/pribylovaa/go-food-delivery/rating-service/internal/config"
	"github.com/pribylovaa/go-food-delivery/rating-service/internal/service"
	rsmongo "github.com/pribylovaa/go-food-delivery/rating-service/internal/storage/mongo"
	rsqueue "github.com/pribylovaa/go-food-delivery/rating-service/internal/transport/queue"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting rating-service", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	store, err := rsmongo.New(dbCtx, cfg.DB.URL)
	dbCancel()
	if err != nil {
		log.Error("mongo_connect_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}
	log.Info("mongo_connected")

	mqCtx, mqCancel := context.WithTimeout(rootCtx, 10*time.Second)
	broker, err := amqp.Dial(mqCtx, cfg.RabbitMQ.URL, log)
	mqCancel()
	if err != nil {
		log.Error("rabbitmq_connect_failed", slog.String("err", err.Error()))
		rootCancel()
		_ = store.Close(context.Background())
		os.Exit(1)
	}
	log.Info("rabbitmq_connected")

	srv := rpc.NewServer(broker,
		rpc.WithServerLogger(log),
		rpc.WithPrefetch(cfg.RabbitMQ.Prefetch),
		rpc.WithInterceptors(
			interceptors.Recover(log),
			interceptors.Logging(log),
			interceptors.WithTimeout(cfg.Timeouts.Service),
			interceptors.Metrics(prometheus.DefaultRegisterer),
		),
	)
	rsqueue.NewRatingServer(service.New(store, cfg.Rating)).Register(srv)

	// Только HTTP health: gRPC-порт сервису не нужен.
	healthSrv := health.New(log, cfg.Env, cfg.HTTP.Addr(), "")
	_ = healthSrv.Start()

	if err := srv.Start(rootCtx); err != nil {
		log.Error("rpc_start_failed", slog.String("err", err.Error()))
		rootCancel()
		_ = broker.Close()
		_ = store.Close(context.Background())
		os.Exit(1)
	}
	log.Info("rpc_consuming", slog.Any("queues", srv.Queues()))
	healthSrv.SetReady(true)

	<-rootCtx.Done()
	log.Info("shutdown_requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	healthSrv.Shutdown(shutdownCtx)
	srv.Wait()
	shutdownCancel()

	rootCancel()
	_ = broker.Close()
	_ = store.Close(context.Background())

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
