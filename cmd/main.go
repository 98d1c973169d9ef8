package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"dynamic-pricing-service/internal/api"
	"dynamic-pricing-service/internal/cache"
	"dynamic-pricing-service/internal/config"
	"dynamic-pricing-service/internal/consumer"
	"dynamic-pricing-service/internal/migrations"
	"dynamic-pricing-service/internal/pricing"
	"dynamic-pricing-service/internal/repository"
	"dynamic-pricing-service/internal/service"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

func main() {
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Connect(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to ledger database")
	}
	defer db.Close()

	if err := migrations.AutoMigrateLedger(ctx, cfg.Database.Driver, 3, db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate ledger tables")
	}

	rdb := cache.NewRedisClient(cfg.Redis)
	defer rdb.Close()
	recCache := cache.NewRecommendationCache(rdb, cfg.Redis.TTL)

	kafkaWriter := config.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.RecommendationTopic)
	defer kafkaWriter.Close()

	ledgerRepo := repository.NewLedgerRepository(db)
	engine := pricing.NewEngine(ledgerRepo, pricing.WithBatchConcurrency(cfg.Pricing.BatchConcurrency))
	pricingService := service.NewPricingService(engine, ledgerRepo, recCache, kafkaWriter, cfg.Pricing)
	pricingHandler := api.NewPricingHandler(pricingService)

	ledgerReader := config.NewKafkaReader(cfg.Kafka.Brokers, cfg.Kafka.LedgerTopic, cfg.Kafka.GroupID)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		consumer.NewConsumer(ledgerReader, pricingService).Start(ctx)
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	api.RegisterRoutes(e, pricingHandler, []byte(cfg.JWTKey), api.RateLimit{
		RPS:   cfg.RateLimitRPS,
		Burst: cfg.RateLimitBurst,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error shutting down HTTP server")
	}

	// Start closes the reader on return, which commits offsets and leaves the group.
	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
		logger.Warn().Msg("Ledger consumer did not stop before the shutdown deadline")
	}
}
