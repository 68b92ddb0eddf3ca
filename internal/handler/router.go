package handler

import (
	"net/http"
	"time"

	"github.com/madecentro/cartera-bfa-go/internal/domain"
	"github.com/madecentro/cartera-bfa-go/internal/infra/observability"
	"github.com/madecentro/cartera-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// The erpBreaker is read-only here: healthz reports its state, nothing more.
func NewRouter(svc *service.Cartera, erpBreaker *gobreaker.CircuitBreaker, erpConfigured bool, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(erpBreaker, erpConfigured))
	r.Get("/readyz", readyzHandler(erpConfigured))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. Cartera status (app contract)
		// POST /v1/cartera
		// =============================================
		r.Post("/cartera", carteraStatusHandler(svc, logger))

		// =============================================
		// 2. Cartera by customer path
		// GET /v1/customers/{customerId}/cartera
		// =============================================
		r.Get("/customers/{customerId}/cartera", customerCarteraHandler(svc, logger))

		// =============================================
		// 3. Batch statements
		// POST /v1/cartera/batch
		// =============================================
		r.Post("/cartera/batch", carteraBatchHandler(svc, logger))

		// =============================================
		// 4. Pipeline metrics snapshot
		// GET /v1/metrics/cartera
		// =============================================
		r.Get("/metrics/cartera", carteraMetricsHandler(metrics))
	})

	return r
}

func healthzHandler(erpBreaker *gobreaker.CircuitBreaker, erpConfigured bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "cartera-api", Status: "healthy", LastChecked: now},
		}

		erpStatus := "healthy"
		switch {
		case !erpConfigured:
			erpStatus = "unconfigured"
		case erpBreaker != nil && erpBreaker.State() == gobreaker.StateOpen:
			erpStatus = "unhealthy"
		case erpBreaker != nil && erpBreaker.State() == gobreaker.StateHalfOpen:
			erpStatus = "degraded"
		}
		services = append(services, domain.ServiceHealth{
			Name: "erp", Status: erpStatus, LastChecked: now,
		})

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" || s.Status == "unconfigured" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler(erpConfigured bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !erpConfigured {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ready": false, "reason": "erp not configured"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ready": true})
	}
}

func carteraMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetSnapshot())
	}
}
