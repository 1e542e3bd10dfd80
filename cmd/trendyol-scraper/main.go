package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/evokelektrique/trendyol-scrapper/internal/api"
	"github.com/evokelektrique/trendyol-scrapper/internal/browser"
	"github.com/evokelektrique/trendyol-scrapper/internal/config"
	"github.com/evokelektrique/trendyol-scrapper/internal/delivery"
	"github.com/evokelektrique/trendyol-scrapper/internal/jobs"
	"github.com/evokelektrique/trendyol-scrapper/internal/observability"
	"github.com/evokelektrique/trendyol-scrapper/internal/ratelimit"
	"github.com/evokelektrique/trendyol-scrapper/internal/scrape"
	"github.com/evokelektrique/trendyol-scrapper/internal/store"
)

func main() {
	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Local overrides; absent file is fine
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Job bookkeeping store; optional, the queue works without it
	var jobStore jobs.Store = jobs.NopStore{}
	if cfg.Database.Enabled {
		db, err := store.New(ctx, store.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Name,
			MaxConns: cfg.Database.MaxConns,
		})
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		jobStore = db
	}

	// Browser setup
	b, err := browser.New(&browser.Options{
		WSEndpoint: cfg.Browser.WSEndpoint,
		Headless:   cfg.Browser.Headless,
		Timeout:    time.Duration(cfg.Browser.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	// Redis backs the job queues and the shared rate limiters
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	observability.Register(registry)

	// Extraction services
	settle := scrape.NewFixedDelay(cfg.Scraper.SettleDelay)
	traverser := scrape.NewTraverser(settle, logger)
	extractor := scrape.NewExtractor(traverser, logger)
	archiveExtractor := scrape.NewArchiveExtractor(settle, logger)

	collector := delivery.NewCollector(cfg.Collector.BaseURL, cfg.Collector.APIKey, logger)

	// Job pipeline: one queue and worker pool per job kind
	manager := jobs.NewManager(jobStore, logger)

	archiveQueue := jobs.NewRedisQueue(redisClient, jobs.KindArchive)
	archivePool := jobs.NewPool(jobs.PoolConfig{
		Kind:        jobs.KindArchive,
		Concurrency: cfg.Scraper.ArchiveWorkers,
		MaxAttempts: cfg.Scraper.MaxAttempts,
		BackoffBase: cfg.Scraper.BackoffBase,
	},
		archiveQueue,
		jobs.NewArchiveRunner(b, archiveExtractor, cfg.Scraper.ArchiveLinkLimit, logger),
		ratelimit.NewRedisSlidingWindow(redisClient, string(jobs.KindArchive), cfg.Scraper.ArchiveRateMax, cfg.Scraper.ArchiveRateWindow),
		collector, jobStore, logger)
	manager.Register(jobs.KindArchive, archiveQueue, archivePool)

	productQueue := jobs.NewRedisQueue(redisClient, jobs.KindProduct)
	productPool := jobs.NewPool(jobs.PoolConfig{
		Kind:        jobs.KindProduct,
		Concurrency: cfg.Scraper.ProductWorkers,
		MaxAttempts: cfg.Scraper.MaxAttempts,
		BackoffBase: cfg.Scraper.BackoffBase,
	},
		productQueue,
		jobs.NewProductRunner(b, extractor, logger),
		nil,
		collector, jobStore, logger)
	manager.Register(jobs.KindProduct, productQueue, productPool)

	fastSyncQueue := jobs.NewRedisQueue(redisClient, jobs.KindFastSync)
	fastSyncPool := jobs.NewPool(jobs.PoolConfig{
		Kind:        jobs.KindFastSync,
		Concurrency: cfg.Scraper.FastSyncWorkers,
		MaxAttempts: cfg.Scraper.MaxAttempts,
		BackoffBase: cfg.Scraper.BackoffBase,
	},
		fastSyncQueue,
		jobs.NewFastSyncRunner(b, extractor, logger),
		ratelimit.NewRedisSlidingWindow(redisClient, string(jobs.KindFastSync), cfg.Scraper.FastSyncRateMax, cfg.Scraper.FastSyncRateWindow),
		collector, jobStore, logger)
	manager.Register(jobs.KindFastSync, fastSyncQueue, fastSyncPool)

	manager.Start(ctx)

	// Initialize API handlers
	handlers := api.NewHandlers(manager, logger)

	// Setup Chi router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "auth-key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Intake routes
	r.Group(func(r chi.Router) {
		r.Use(api.RequireKey(cfg.Auth.APIKey))
		r.Post("/extract_archive_links", handlers.ExtractArchiveLinks)
		r.Post("/extract_product", handlers.ExtractProduct)
		r.Post("/fast_sync", handlers.FastSync)
		r.Get("/stats", handlers.GetStats)
	})

	// Start server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()
		manager.Wait()
		if err := manager.Close(); err != nil {
			logger.Error("failed to close job manager", "error", err)
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
