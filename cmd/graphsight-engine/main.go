package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/graphsight/graphsight/internal/api"
	"github.com/graphsight/graphsight/internal/cache"
	"github.com/graphsight/graphsight/internal/config"
	"github.com/graphsight/graphsight/internal/engine"
	"github.com/graphsight/graphsight/internal/metrics"
	"github.com/graphsight/graphsight/internal/repo"
	"github.com/graphsight/graphsight/internal/services"
	"github.com/graphsight/graphsight/internal/store"
	"github.com/graphsight/graphsight/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting graphsight", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	var cacheProvider cache.Provider = cache.NoopProvider{}
	if cfg.Cache.Enabled && cfg.Cache.Addr != "" {
		provider, err := cache.NewRedisProvider(cache.RedisConfig{
			Addr:         cfg.Cache.Addr,
			Username:     cfg.Cache.Username,
			Password:     cfg.Cache.Password,
			DB:           cfg.Cache.DB,
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,
			KeyPrefix:    cfg.Cache.KeyPrefix,
		})
		if err != nil {
			logger.Warn("redis cache unavailable", slog.Any("error", err))
		} else {
			cacheProvider = provider
			defer provider.Close()
		}
	}

	recommender, err := engine.NewRecommender(cfg.Rules.Path, logger)
	if err != nil {
		logger.Error("failed to load rule pack", slog.Any("error", err))
		os.Exit(1)
	}

	mem := store.NewMemory(logger)
	service := services.NewAnalysisService(
		logger,
		mem,
		engine.NewCorrelator(logger),
		engine.NewImpactAssessor(logger, cfg.Engine.RevenueTable, recommender),
		engine.NewPatternDetector(logger, cfg.Engine.PatternWindowDays),
		engine.NewCascadeSimulator(logger),
		cacheProvider,
		cfg.Cache.CorrelationsTTL,
		cfg.Cache.ImpactTTL,
	)

	if cfg.Inventory.BaseURL != "" {
		seedFromInventory(logger, cfg.Inventory, service)
	}

	handler := api.NewHandler(logger, service, cfg.Engine)
	server, err := api.NewServer(cfg.Server, handler.Routes(), logger)
	if err != nil {
		logger.Error("failed to create HTTP server", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("HTTP server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	server.Shutdown(shutdownCtx)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("graphsight stopped")
}

// seedFromInventory pulls the initial topology and event backlog from the
// configured inventory service. Failures are logged, not fatal; the engine
// can still be populated through the API.
func seedFromInventory(logger *slog.Logger, cfg config.InventoryConfig, service *services.AnalysisService) {
	client := repo.NewInventoryClient(cfg.BaseURL, cfg.TopologyPath, cfg.EventsPath, cfg.Timeout)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	items, rels, err := client.FetchTopology(ctx)
	if err != nil {
		logger.Warn("inventory topology fetch failed", slog.Any("error", err))
		return
	}
	service.ReplaceTopology(items, rels)
	logger.Info("topology seeded from inventory",
		slog.Int("items", len(items)),
		slog.Int("relationships", len(rels)),
	)

	events, err := client.FetchEvents(ctx)
	if err != nil {
		logger.Warn("inventory events fetch failed", slog.Any("error", err))
		return
	}
	if len(events) > 0 {
		service.AppendEvents(events...)
		logger.Info("events seeded from inventory", slog.Int("events", len(events)))
	}
}
