package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fintrackhq/fintrack-api/internal/config"
	"github.com/fintrackhq/fintrack-api/internal/handler"
	"github.com/fintrackhq/fintrack-api/internal/infra/cache"
	"github.com/fintrackhq/fintrack-api/internal/infra/exchange"
	"github.com/fintrackhq/fintrack-api/internal/infra/observability"
	"github.com/fintrackhq/fintrack-api/internal/infra/resilience"
	"github.com/fintrackhq/fintrack-api/internal/infra/supabase"
	"github.com/fintrackhq/fintrack-api/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("base_currency", cfg.BaseCurrency),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("rate_cache_ttl", cfg.RateCacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "fintrack-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	rateCache := cache.New[float64](cfg.RateCacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	storeCB := resilience.NewCircuitBreaker("supabase")
	exchangeCB := resilience.NewCircuitBreaker("exchange")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	store := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		storeCB,
		resilienceCfg,
		logger,
	)
	logger.Info("using Supabase as data backend",
		zap.String("supabase_url", cfg.SupabaseURL),
	)

	rates := exchange.NewClient(
		httpClient,
		cfg.ExchangeAPIURL,
		cfg.BaseCurrency,
		exchangeCB,
		resilienceCfg,
		logger,
	)

	// --- Services ---
	converter := service.NewConverter(rates, rateCache, cfg.BaseCurrency, metrics, logger)
	ledger := service.NewLedger(store)
	budgetEvaluator := service.NewBudgetEvaluator(store, store, nil)
	goalEngine := service.NewGoalEngine(store, store)

	svcs := &handler.Services{
		Auth:         service.NewAuthService(store, cfg.JWTSecret, cfg.JWTAccessTTL, logger),
		Posting:      service.NewPostingService(store, converter, ledger, budgetEvaluator, goalEngine, metrics, logger),
		Transactions: service.NewTransactionService(store, converter, logger),
		Budgets:      service.NewBudgetService(store, logger),
		Goals:        service.NewGoalService(store, logger),
		Recurrences:  service.NewRecurrenceService(store, nil, logger),
		Reports:      service.NewReportService(store, store, store, ledger, logger),
	}

	// --- Router ---
	router := handler.NewRouter(svcs, store, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
