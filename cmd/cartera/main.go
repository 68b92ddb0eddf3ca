package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/madecentro/cartera-bfa-go/internal/cartera"
	"github.com/madecentro/cartera-bfa-go/internal/config"
	"github.com/madecentro/cartera-bfa-go/internal/domain"
	"github.com/madecentro/cartera-bfa-go/internal/handler"
	"github.com/madecentro/cartera-bfa-go/internal/infra/cache"
	"github.com/madecentro/cartera-bfa-go/internal/infra/erp"
	"github.com/madecentro/cartera-bfa-go/internal/infra/observability"
	"github.com/madecentro/cartera-bfa-go/internal/infra/resilience"
	"github.com/madecentro/cartera-bfa-go/internal/infra/soap"
	"github.com/madecentro/cartera-bfa-go/internal/service"

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
		zap.String("erp_endpoint", cfg.ERPEndpoint()),
		zap.Duration("soap_timeout", cfg.SOAPTimeout),
		zap.Duration("retry_backoff", cfg.RetryBackoff),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Strings("document_prefixes", cfg.DocumentPrefixes),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "cartera-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	statementCache := cache.New[*domain.CarteraResponse](cfg.CacheTTL)

	// --- Resilience ---
	cb := resilience.NewCircuitBreaker("erp")

	// --- Upstream client ---
	// The transport owns the per-attempt budget, so the http.Client
	// carries no timeout of its own.
	httpClient := &http.Client{}
	transport := soap.NewTransport(httpClient, cfg.SOAPTimeout, cfg.RetryBackoff, logger, metrics.IncrUpstreamRetry)

	erpConfigErr := cfg.ValidateERP()
	if erpConfigErr != nil {
		logger.Warn("ERP not fully configured, cartera routes will fail fast",
			zap.Error(erpConfigErr),
		)
	}

	erpClient := erp.NewClient(transport, erp.Options{
		URL:        cfg.ERPEndpoint(),
		SOAPAction: cfg.SOAPAction,
		Namespace:  cfg.SOAPNamespace,
		Method:     cfg.SOAPMethod,
		Database:   cfg.ERPDatabase,
		Token:      cfg.ERPToken,
	}, cb, logger)

	// --- Services ---
	carteraSvc := service.NewCartera(
		erpClient,
		cartera.NewExtractor(cfg.SOAPMethod+"Result"),
		statementCache,
		service.Config{
			DocumentPrefixes: cfg.DocumentPrefixes,
			MaxConcurrency:   cfg.MaxConcurrency,
			ConfigErr:        erpConfigErr,
		},
		metrics,
		logger,
	)

	// --- Router ---
	router := handler.NewRouter(carteraSvc, cb, erpConfigErr == nil, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
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
