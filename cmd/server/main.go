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

	"github.com/rs/zerolog"

	"github.com/dealfinder/backend/config"
	httpDelivery "github.com/dealfinder/backend/internal/delivery/http"
	"github.com/dealfinder/backend/internal/domain"
	"github.com/dealfinder/backend/internal/infrastructure/aliexpress"
	"github.com/dealfinder/backend/internal/infrastructure/cache"
	"github.com/dealfinder/backend/internal/logging"
	"github.com/dealfinder/backend/internal/usecase"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "dealfinder-backend",
	})

	logger.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("cache", cfg.Cache.Type).
		Dur("cache_ttl", cfg.Cache.TTL).
		Msg("starting DealFinder backend")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
	logger.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// Initialize infrastructure dependencies
	store, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	client := aliexpress.NewClient(aliexpress.Config{
		AppKey:            cfg.AliExpress.AppKey,
		AppSecret:         cfg.AliExpress.AppSecret,
		BaseURL:           cfg.AliExpress.BaseURL,
		TrackingID:        cfg.AliExpress.TrackingID,
		Currency:          cfg.AliExpress.Currency,
		Language:          cfg.AliExpress.Language,
		ShipTo:            cfg.AliExpress.ShipTo,
		PageSize:          cfg.AliExpress.PageSize,
		Timeout:           cfg.AliExpress.Timeout,
		RequestsPerSecond: cfg.RateLimit.Upstream,
		Burst:             cfg.RateLimit.UpstreamBurst,
	}, logger)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" || cfg.Matching.Debug {
		client.SetDebug(true)
		logger.Debug().Msg("marketplace client debug mode enabled")
	}

	dealService := usecase.NewDealService(store, client, usecase.DealServiceConfig{
		CacheTTL:    cfg.Cache.TTL,
		MaxResults:  cfg.Matching.MaxResults,
		EnableDebug: cfg.Matching.Debug,
	}, logger)

	handler := httpDelivery.NewHandler(dealService, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info().Msg("shutting down")
	return server.Shutdown(shutdownCtx)
}

// newCache builds the cache selected by configuration and a func releasing it
func newCache(ctx context.Context, cfg *config.Config) (domain.CacheRepository, func(), error) {
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, "")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisCache, func() { _ = redisCache.Close() }, nil
	default:
		memoryCache := cache.NewMemoryCache()
		return memoryCache, func() { _ = memoryCache.Close() }, nil
	}
}
