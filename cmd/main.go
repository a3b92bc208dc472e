package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-service/config"
	"github.com/oksasatya/go-user-service/internal/container"
	"github.com/oksasatya/go-user-service/internal/domain/repository"
	"github.com/oksasatya/go-user-service/internal/infrastructure/messaging"
	pginfra "github.com/oksasatya/go-user-service/internal/infrastructure/postgres"
	sqliteinfra "github.com/oksasatya/go-user-service/internal/infrastructure/sqlite"
	"github.com/oksasatya/go-user-service/internal/interface/middleware"
	"github.com/oksasatya/go-user-service/internal/router"
	"github.com/oksasatya/go-user-service/pkg/helpers"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer closeStore()

	sender, closeSender, err := openSender(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to connect to %s broker: %v", cfg.EventBroker, err)
	}
	defer closeSender()
	publisher := messaging.NewAsyncPublisher(sender, logger, cfg.EventBufferSize, cfg.EventWorkers, cfg.EventSendTimeout)

	// Redis is optional; without it the rate limiter lets everything through
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			helpers.LogError(logger, "redis unreachable, rate limiting fails open", err, logrus.Fields{"addr": cfg.RedisAddr})
		}
		defer func() { _ = rdb.Close() }()
	}

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetRedis(rdb)
	container.SetUserRepository(repo)
	container.SetPublisher(publisher)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  origins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
			ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}
	if cfg.Env == "development" || cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logger))
	}

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.WithFields(logrus.Fields{
			"port":   cfg.Port,
			"store":  cfg.StoreDriver,
			"broker": cfg.EventBroker,
		}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		helpers.LogError(logger, "server forced to shutdown", err, nil)
	}
	// no more requests can publish; flush what is queued
	if err := publisher.Close(ctxShutdown); err != nil {
		helpers.LogError(logger, "user events left unsent", err, logrus.Fields{"stats": publisher.Stats()})
	}
	logger.Info("server exited properly")
}

// openStore returns the configured repository and a function releasing its connections.
func openStore(ctx context.Context, cfg *config.Config) (repository.UserRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return nil, nil, err
		}
		if err := pginfra.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pginfra.NewUserRepository(pool), pool.Close, nil
	case config.StoreSQLite:
		db, err := sqliteinfra.New(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqliteinfra.NewUserRepository(db), func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// openSender connects the transport behind the async publisher.
func openSender(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (messaging.Sender, func(), error) {
	events := cfg.Events()
	switch cfg.EventBroker {
	case config.BrokerRabbitMQ:
		s, err := messaging.NewRabbitSender(events.BootstrapAddress, events.TopicName)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.BrokerPubSub:
		client, err := pubsub.NewClient(ctx, cfg.PubSubProjectID)
		if err != nil {
			return nil, nil, err
		}
		topic, err := messaging.EnsureTopic(ctx, client, events.TopicName)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		s, err := messaging.NewPubSubSender(topic)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return s, func() { s.Stop(); _ = client.Close() }, nil
	case config.BrokerLog:
		return messaging.LogSender{Logger: logger}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown EVENT_BROKER %q", cfg.EventBroker)
	}
}
