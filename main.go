package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storerating/internal/config"
	"storerating/internal/observability"
	"storerating/internal/services"
	"storerating/pkg/cache"
	"storerating/pkg/logger"
	"storerating/pkg/rabbitmq"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if cfg.UsesDefaultJWTSecret() {
		log.Warn().Msg("JWT_SECRET is not set, signing tokens with the development default")
	}
	if cfg.App.SeedDemoData {
		log.Warn().Msg("demo accounts with a shared password will be created")
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := Deps{Registry: prometheus.NewRegistry()}

	// --- Initialize RabbitMQ Client ---
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQ.URL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		deps.Publisher = mqClient
	} else {
		log.Info().Msg("RABBITMQ_URL not set, rating events are not published")
	}

	// --- Initialize Redis cache ---
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   "storerating:",
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rc.Close()
		deps.Cache = rc
	}

	app, err := NewApp(cfg, log, deps)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build application")
	}

	if cfg.App.SeedDemoData {
		if err := seedDemoData(ctx, app, log); err != nil {
			log.Fatal().Err(err).Msg("failed to seed demo data")
		}
	}

	// --- Start RabbitMQ Consumer ---
	if mqClient != nil {
		events := log.Named("rating_events")
		err := mqClient.ConsumeRatingEvents(ratingEventHandler(events, app.Metrics), func(tag uint64, err error) {
			events.Warn().Err(err).Uint64("tag", tag).Msg("rating event rejected")
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to start RabbitMQ consumer")
		}
	}

	// --- Start HTTP Server ---
	go func() {
		log.Info().Str("port", cfg.App.Port).Str("db_driver", cfg.DB.Driver).Msg("starting server")
		if err := app.Fiber.Listen(cfg.App.Port); err != nil {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	if err := app.Fiber.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during fiber shutdown")
	}
	if app.DB != nil {
		if sqlDB, err := app.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	log.Info().Msg("server gracefully stopped")
}

// ratingEventHandler decodes and logs rating.submitted events.
func ratingEventHandler(log *logger.Logger, metrics *observability.Metrics) func(rabbitmq.Delivery) error {
	return func(d rabbitmq.Delivery) error {
		var event services.RatingEvent
		if err := json.Unmarshal(d.Body, &event); err != nil {
			err = fmt.Errorf("failed to decode %s event: %w", d.RoutingKey, err)
			metrics.EventConsumed(err)
			return err
		}
		log.Info().
			Str("store_id", event.StoreID).
			Str("user_id", event.UserID).
			Int("rating", event.Rating).
			Bool("updated", event.Updated).
			Msg("rating event received")
		metrics.EventConsumed(nil)
		return nil
	}
}
