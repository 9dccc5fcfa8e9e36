package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homefix_backend/database"
	"homefix_backend/internal/auth"
	"homefix_backend/internal/cache"
	"homefix_backend/internal/config"
	"homefix_backend/internal/email"
	"homefix_backend/internal/handlers"
	"homefix_backend/internal/logger"
	"homefix_backend/internal/middleware"
	"homefix_backend/internal/mq"
	"homefix_backend/internal/routes"
	"homefix_backend/internal/services"
	"homefix_backend/internal/validator"
	"homefix_backend/internal/workers"
	"homefix_backend/ws"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	redisKeyPrefix = "homefix:"
	consumerTag    = "homefix-payments"
)

func Run() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	logger.Init(logger.Options{Env: cfg.Server.Env, Level: cfg.Server.LogLevel})
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := database.Open(cfg.Database, cfg.Server.Env)
	if err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected", "driver", cfg.Database.Driver)

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(gormDB); err != nil {
			logger.Fatal("Migration failed", "error", err)
		}
	}

	infra, err := connectInfra(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect infrastructure", "error", err)
	}
	defer infra.close()

	// 1. Realtime
	hub := ws.NewHub(cfg.Realtime.SendBuffer)
	go hub.Run(ctx)

	deps := services.Deps{Publisher: hub, Store: infra.store}
	if infra.redis != nil && cfg.Realtime.RedisRelay {
		relay := ws.NewRedisRelay(infra.redis, hub)
		go relay.Run(ctx)
		deps.Publisher = relay
		logger.Info("Realtime relay via redis enabled")
	}
	if infra.publisher != nil {
		deps.Bus = infra.publisher
	}
	if cfg.SMTP.Enabled() {
		deps.Mailer = email.NewSMTPMailer(cfg.SMTP)
	} else {
		logger.Warn("SMTP is not configured, payment emails are disabled")
	}

	// 2. Сервисы
	container := services.NewServiceContainer(cfg, deps)

	// 3. Фоновые задачи и брокер
	if cfg.Broker.Enabled() {
		if err := startPaymentConsumer(ctx, cfg, gormDB, container, infra); err != nil {
			logger.Fatal("Failed to start payment consumer", "error", err)
		}
	}

	scheduler := workers.NewScheduler(ctx)
	if err := scheduler.Add(cfg.Jobs.AvailabilitySweep, workers.NewAvailabilityWorker(gormDB, container.Repositories.Workers)); err != nil {
		logger.Fatal("Failed to schedule job", "error", err)
	}
	retention := workers.NewRetentionWorker(gormDB, container.NotificationService, cfg.Jobs.NotificationRetention)
	if err := scheduler.Add(cfg.Jobs.NotificationPurge, retention); err != nil {
		logger.Fatal("Failed to schedule job", "error", err)
	}
	scheduler.Start()

	// 4. HTTP
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	ginRouter := initializeGinRouter(cfg, gormDB)
	routes.RegisterRoutes(ginRouter,
		handlers.NewAppHandlers(container, validator.New(), infra.healthChecks(gormDB)),
		ws.NewWebSocketHandler(hub, tokens),
		middleware.AuthMiddleware(tokens),
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err.Error())
	}
	scheduler.Stop(shutdownCtx)
	// доставки после коммита должны успеть до закрытия каналов
	container.Dispatcher.Wait()
	<-hub.Done()

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server stopped")
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}

func startPaymentConsumer(ctx context.Context, cfg *config.Config, db *gorm.DB, container *services.ServiceContainer, infra *infrastructure) error {
	consumer := mq.NewConsumer(mq.ConsumerConfig{
		URL:      cfg.Broker.URL,
		Exchange: cfg.Broker.PaymentSource,
		Queue:    cfg.Broker.PaymentQueue,
		Bindings: mq.PaymentBindings(),
		Tag:      consumerTag,
	}, mq.NewPaymentHandler(db, container.PaymentService))

	if err := consumer.Connect(); err != nil {
		return err
	}
	infra.consumer = consumer

	go func() {
		if err := consumer.Run(ctx); err != nil {
			logger.Error("Payment consumer stopped", "error", err.Error())
		}
	}()
	return nil
}

// infrastructure — опциональные внешние подключения
type infrastructure struct {
	redis     *redis.Client
	store     cache.Store
	publisher *mq.Publisher
	consumer  *mq.Consumer
}

func connectInfra(ctx context.Context, cfg *config.Config) (*infrastructure, error) {
	infra := &infrastructure{}

	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		infra.redis = client
		infra.store = cache.NewRedisStore(client, redisKeyPrefix)
		logger.Info("Redis connected", "addr", cfg.Redis.Addr)
	} else {
		logger.Warn("Redis is not configured, using in-memory store (single instance only)")
	}

	if cfg.Broker.Enabled() {
		publisher, err := mq.NewPublisher(cfg.Broker.URL, cfg.Broker.Exchange)
		if err != nil {
			infra.close()
			return nil, err
		}
		infra.publisher = publisher
		logger.Info("Broker connected", "exchange", cfg.Broker.Exchange)
	}
	return infra, nil
}

func (i *infrastructure) healthChecks(db *gorm.DB) map[string]handlers.Pinger {
	checks := map[string]handlers.Pinger{
		"database": handlers.PingFunc(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
	}
	if i.redis != nil {
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return i.redis.Ping(ctx).Err()
		})
	}
	return checks
}

func (i *infrastructure) close() {
	if i.consumer != nil {
		_ = i.consumer.Close()
	}
	if i.publisher != nil {
		_ = i.publisher.Close()
	}
	if i.redis != nil {
		_ = i.redis.Close()
	}
}
