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

	"github.com/pribylovaa/go-food-delivery/messaging-service/internal/config"
	"github.com/pribylovaa/go-food-delivery/messaging-service/internal/mail"
	"github.com/pribylovaa/go-food-delivery/messaging-service/internal/service"
	msmongo "github.com/pribylovaa/go-food-delivery/messaging-service/internal/storage/mongo"
	msqueue "github.com/pribylovaa/go-food-delivery/messaging-service/internal/transport/queue"
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
	log.Info("starting messaging-service", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	if err := run(rootCtx, cfg, log); err != nil {
		log.Error("service_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}

	log.Info("service_stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	store, err := msmongo.New(dbCtx, cfg.DB.URL)
	dbCancel()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()
	log.Info("mongo_connected")

	var mailer mail.Mailer
	if cfg.SMTP.Host == "" {
		log.Warn("smtp_not_configured")
		mailer = mail.NewLogMailer(log)
	} else {
		smtp, err := mail.NewSMTP(cfg.SMTP)
		if err != nil {
			return err
		}
		mailer = smtp
	}

	mqCtx, mqCancel := context.WithTimeout(ctx, 10*time.Second)
	broker, err := amqp.Dial(mqCtx, cfg.RabbitMQ.URL, log)
	mqCancel()
	if err != nil {
		return err
	}
	defer func() { _ = broker.Close() }()
	log.Info("rabbitmq_connected")

	svc := service.New(store, mailer, cfg.OTP)

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
	msqueue.NewMessagingServer(svc).Register(srv)

	healthSrv := health.New(log, cfg.Env, cfg.HTTP.Addr(), cfg.GRPC.Addr())
	if err := healthSrv.Start(); err != nil {
		return err
	}

	if err := srv.Start(ctx); err != nil {
		healthSrv.Shutdown(context.Background())
		return err
	}
	log.Info("rpc_consuming", slog.Any("queues", srv.Queues()))
	healthSrv.SetReady(true)

	<-ctx.Done()
	log.Info("shutdown_requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	healthSrv.Shutdown(shutdownCtx)
	srv.Wait()

	return nil
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
