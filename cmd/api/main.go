package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/easyaudit-api/internal/config"
	"github.com/noah-isme/easyaudit-api/internal/database"
	"github.com/noah-isme/easyaudit-api/internal/events"
	"github.com/noah-isme/easyaudit-api/internal/handler"
	"github.com/noah-isme/easyaudit-api/internal/i18n"
	"github.com/noah-isme/easyaudit-api/internal/middleware"
	"github.com/noah-isme/easyaudit-api/internal/models"
	"github.com/noah-isme/easyaudit-api/internal/registry"
	"github.com/noah-isme/easyaudit-api/internal/repository"
	"github.com/noah-isme/easyaudit-api/internal/router"
	"github.com/noah-isme/easyaudit-api/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := db.AutoMigrate(&models.Activity{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	}

	natsConn, err := events.Connect(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}
	if natsConn != nil {
		defer drainNATS(natsConn, logger)
	}

	translator, err := i18n.New(cfg.DefaultLocale)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load translations")
	}

	validate, err := service.NewValidator(translator)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build validator")
	}

	bindings, err := registry.ParseTableBindings(cfg.RegistryTables)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid registry tables")
	}
	entities := registry.New()
	if err := registry.RegisterTables(entities, db, bindings); err != nil {
		logger.Fatal().Err(err).Msg("failed to register entity tables")
	}
	lookup := registry.NewCachedLookup(entities, redisClient, cfg.RegistryCacheTTL, logger)

	activityRepo := repository.NewActivityRepository(db)
	resolver := service.NewSourceNameResolver(lookup, translator, logger)
	publisher := events.NewNATSPublisher(natsConn, cfg.NATSSubject, uuid.NewString(), logger)
	activityService := service.NewActivityService(activityRepo, validate, translator, resolver, publisher, service.ActivityServiceConfig{
		MaxPropertiesBytes: cfg.PropertiesMaxBytes,
	}, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, logger)
	router.Register(app, cfg, router.Dependencies{
		ActivityHandler: handler.NewActivityHandler(activityService, logger),
		DB:              db,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	logger.Info().
		Str("address", cfg.HTTPAddress()).
		Str("database", cfg.DatabaseDriver).
		Strs("registry_types", entities.Types()).
		Msg("easyaudit api started")

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}

func drainNATS(conn *nats.Conn, logger zerolog.Logger) {
	if err := conn.Drain(); err != nil {
		logger.Warn().Err(err).Msg("failed to drain nats connection")
	}
}
