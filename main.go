package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"car-rental/cache"
	"car-rental/config"
	"car-rental/database"
	apperrors "car-rental/errors"
	"car-rental/handlers"
	"car-rental/logger"
	"car-rental/router"
	"car-rental/service"
	"car-rental/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	log := logger.NewLogger("server")

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// run wires the service together and serves until the listener stops.
// Connections opened here are closed before it returns.
func run(log *logger.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	mongoClient, db, err := database.Connect(context.Background(), cfg.Mongo.ConnString, cfg.Mongo.Database, cfg.Mongo.Timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Disconnect(mongoClient, cfg.Mongo.Timeout); err != nil {
			log.Error().Err(err).Msg("error disconnecting from database")
		}
	}()

	indexCtx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
	defer cancel()
	if err := database.EnsureIndexes(indexCtx, db); err != nil {
		return fmt.Errorf("failed to prepare database indexes: %w", err)
	}

	var views service.ViewCache = cache.Nop{}
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.Connect(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer func() {
			if err := cache.Disconnect(redisClient); err != nil {
				log.Error().Err(err).Msg("error disconnecting from Redis")
			}
		}()
		views = cache.NewRedisCache(redisClient, cfg.Redis.CacheTTL)
	} else {
		log.Info().Msg("REDIS_ADDR not set, listing views are not cached")
	}

	listingStore := database.NewListingStore(db, cfg.Mongo.Timeout)
	bookingStore := database.NewBookingStore(db, cfg.Mongo.Timeout)
	tokens := token.NewService(cfg.Token.Secret, cfg.Token.TTL)

	h := handlers.New(
		service.NewListingService(listingStore, views),
		service.NewBookingService(listingStore, bookingStore, views),
		tokens,
		cfg.IsProduction(),
	)

	app := fiber.New(fiber.Config{ErrorHandler: apperrors.Handler})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CorsOrigins,
		AllowCredentials: true,
	}))
	router.SetupRoutes(app, h, tokens, log)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("error during server shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("server is running")
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
