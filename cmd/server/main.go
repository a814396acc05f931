package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/cache"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/clients/mfapi"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/clients/nse"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/clients/yahoo"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/config"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/modules/funds"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/modules/market"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/modules/projections"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/scheduler"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/server"
	"github.com/harshyadavv2456/wealthpulse-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting WealthPulse backend")

	// Cache, partitioned by data domain
	cacheManager := cache.New(cache.DefaultTTLs, log)

	// Upstream clients
	yahooClient := yahoo.NewClientWithBaseURL(cfg.YahooBaseURL, log)
	nativeClient := yahoo.NewNativeClient(log)
	nseClient := nse.NewClientWithBaseURL(cfg.NSEBaseURL, log)
	mfapiClient := mfapi.NewClientWithBaseURL(cfg.MFAPIBaseURL, log)

	// Price resolution and module services
	resolver := market.NewResolver(yahooClient, nativeClient, nativeClient, nseClient, log)
	marketService := market.NewService(market.ServiceConfig{
		Cache:    cacheManager,
		Resolver: resolver,
		Charts:   yahooClient,
		Batch:    nativeClient,
		Log:      log,
	})
	fundsService := funds.NewService(cacheManager, mfapiClient, mfapiClient, log)

	// Scheduler and background jobs
	sched := scheduler.New(log)
	catalogJob := scheduler.NewCatalogRefreshJob(fundsService, log)
	if err := sched.AddJob("@every 24h", catalogJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register catalog refresh job")
	}
	sched.Start()
	defer sched.Stop()

	// Seed the catalog without blocking startup.
	go func() {
		if err := sched.RunNow(catalogJob); err != nil {
			log.Warn().Err(err).Msg("Initial catalog refresh failed, will retry on schedule")
		}
	}()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:        cfg.Port,
		DevMode:     cfg.DevMode,
		Log:         log,
		Cache:       cacheManager,
		Market:      market.NewHandler(marketService, log),
		Funds:       funds.NewHandler(fundsService, log),
		Calculators: projections.NewHandler(fundsService, log),
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
