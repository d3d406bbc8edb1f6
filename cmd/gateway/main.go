package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/notification-gateway/internal/api/handlers/health"
	"github.com/aliskhannn/notification-gateway/internal/api/handlers/notification"
	"github.com/aliskhannn/notification-gateway/internal/api/router"
	"github.com/aliskhannn/notification-gateway/internal/api/server"
	"github.com/aliskhannn/notification-gateway/internal/config"
	"github.com/aliskhannn/notification-gateway/internal/idempotency"
	notifmsg "github.com/aliskhannn/notification-gateway/internal/rabbitmq/handlers/notification"
	"github.com/aliskhannn/notification-gateway/internal/rabbitmq/queue"
	notifrepo "github.com/aliskhannn/notification-gateway/internal/repository/notification"
	"github.com/aliskhannn/notification-gateway/internal/resilience"
	notifsvc "github.com/aliskhannn/notification-gateway/internal/service/notification"
	"github.com/aliskhannn/notification-gateway/internal/worker"
	"github.com/aliskhannn/notification-gateway/pkg/postgres"
	"github.com/aliskhannn/notification-gateway/pkg/templateservice"
	"github.com/aliskhannn/notification-gateway/pkg/userservice"
)

const (
	serviceName = "notification-gateway"
	version     = "1.0.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()

	if err := godotenv.Load(); err != nil {
		zlog.Logger.Info().Msg(".env file not found, using environment")
	}

	cfg := config.Must()
	val := validator.New()

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))
	for _, s := range cfg.Database.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	var db *dbpg.DB
	err := retry.DoContext(ctx, cfg.Retry.Startup, func() error {
		var err error
		db, err = dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
		if err != nil {
			return err
		}
		return db.Master.PingContext(ctx)
	})
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if cfg.Database.Migrations != "" {
		if err := postgres.MigrateUp(cfg.Database.Master.DSN(), cfg.Database.Migrations); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}

	repo := notifrepo.NewRepository(db)

	rdb := redis.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.Database)
	kv := idempotency.NewRedisKV(rdb)

	err = retry.DoContext(ctx, cfg.Retry.Startup, func() error {
		return kv.Ping(ctx)
	})
	if err != nil {
		// the idempotency store degrades to "treat as new", so the gateway can still serve
		zlog.Logger.Error().Err(err).Msg("redis unavailable at startup")
	}

	store := idempotency.NewStore(kv, cfg.Idempotency.TTL)

	conn := queue.NewConnection(cfg.RabbitMQ.URL(), cfg.RabbitMQ.Topology, cfg.RabbitMQ.Reconnect)

	connDone := make(chan struct{})
	go func() {
		conn.Run(ctx)
		close(connDone)
	}()

	waitCtx, cancelWait := context.WithTimeout(ctx, 30*time.Second)
	if err := conn.WaitConnected(waitCtx); err != nil {
		zlog.Logger.Warn().Err(err).Msg("rabbitmq not connected yet, publishes will fail until it is")
	}
	cancelWait()

	publisher := queue.NewPublisher(conn, cfg.RabbitMQ.Topology.Exchange, cfg.RabbitMQ.PublishTimeout)
	breakers := resilience.NewBreakers(cfg.Breaker)

	var resolverOpts []notifsvc.ResolverOption
	if url := cfg.Collaborators.UserServiceURL; url != "" {
		resolverOpts = append(resolverOpts, notifsvc.WithUsers(userservice.NewClient(url, cfg.Collaborators.Timeout)))
	}
	if url := cfg.Collaborators.TemplateServiceURL; url != "" {
		resolverOpts = append(resolverOpts, notifsvc.WithTemplates(templateservice.NewClient(url, cfg.Collaborators.Timeout)))
	}
	resolver := notifsvc.NewResolver(breakers, cfg.Retry.Lookup, resolverOpts...)

	service := notifsvc.NewService(repo, store, publisher, resolver, breakers, cfg.Retry.Publish)
	notifHandler := notification.NewHandler(service, val)
	healthHandler := health.NewHandler(serviceName, version, repo, kv, conn, breakers)

	consumer := queue.NewDeadLetterConsumer(conn, cfg.RabbitMQ.Topology.FailedQueue, cfg.RabbitMQ.Prefetch)
	messageHandler := notifmsg.NewHandler(service, cfg.Retry.DeadLetter)
	deadLetters := worker.NewWorker(consumer, messageHandler)

	workerDone := make(chan struct{})
	go func() {
		deadLetters.Run(ctx, cfg.Workers.Count)
		close(workerDone)
	}()

	r := router.New(notifHandler, healthHandler)
	s := server.New(cfg.Server.HTTPPort, r)

	go func() {
		zlog.Logger.Info().Str("addr", cfg.Server.HTTPPort).Msg("starting server")
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}

	for _, done := range []chan struct{}{workerDone, connDone} {
		select {
		case <-done:
		case <-shutdownCtx.Done():
		}
	}

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	if err := rdb.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close redis")
	}

	if err := db.Master.Close(); err != nil {
		zlog.Logger.Printf("failed to close master DB: %v", err)
	}

	for i, s := range db.Slaves {
		if err := s.Close(); err != nil {
			zlog.Logger.Printf("failed to close slave DB %d: %v", i, err)
		}
	}
}
