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

	"github.com/pribylovaa/go-food-delivery/token-service/internal/cache"
	"github.com/pribylovaa/go-food-delivery/token-service/internal/config"
	"github.com/pribylovaa/go-food-delivery/token-service/internal/service"
	tsmongo "github.com/pribylovaa/go-food-delivery/token-service/internal/storage/mongo"
	tsqueue "github.com/pribylovaa/go-food-delivery/token-service/internal/transport/queue"
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
	log.Info("starting token-service", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	store, err := tsmongo.New(dbCtx, cfg.DB.URL)
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

	srvOpts := []rpc.ServerOption{
		rpc.WithServerLogger(log),
		rpc.WithPrefetch(cfg.RabbitMQ.Prefetch),
		rpc.WithInterceptors(
			interceptors.Recover(log),
			interceptors.Logging(log),
			interceptors.WithTimeout(cfg.Timeouts.Service),
			interceptors.Metrics(prometheus.DefaultRegisterer),
		),
	}

	// Кэш ответов опционален: без Redis повторная доставка просто выполняется заново.
	var replies *cache.ReplyCache
	if cfg.Redis.URL != "" {
		rCtx, rCancel := context.WithTimeout(rootCtx, 5*time.Second)
		replies, err = cache.NewRedisCache(rCtx, cfg.Redis.URL, "", cfg.Redis.ReplyTTL)
		rCancel()
		if err != nil {
			log.Warn("redis_connect_failed", slog.String("err", err.Error()))
		} else {
			srvOpts = append(srvOpts, rpc.WithReplyCache(replies))
			log.Info("redis_connected")
		}
	}

	svc := service.New(store, cfg.Auth)
	log.Info("service_initialized")

	srv := rpc.NewServer(broker, srvOpts...)
	tsqueue.NewTokenServer(svc).Register(srv)

	healthSrv := health.New(log, cfg.Env, cfg.HTTP.Addr(), cfg.GRPC.Addr())
	if err := healthSrv.Start(); err != nil {
		log.Error("health_start_failed", slog.String("err", err.Error()))
		rootCancel()
		_ = broker.Close()
		_ = store.Close(context.Background())
		os.Exit(1)
	}

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

	// Дожидаемся обработки уже взятых сообщений.
	srv.Wait()
	shutdownCancel()

	rootCancel()
	_ = broker.Close()
	if replies != nil {
		_ = replies.Close()
	}
	_ = store.Close(context.Background())

	log.Info("service_stopped")
	os.Exit(0)
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
