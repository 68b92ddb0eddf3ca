package integration_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/madecentro/cartera-bfa-go/internal/cartera"
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

const soapEnvelope = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <ConsultarCarteraResponse xmlns="http://tempuri.org/">
      <ConsultarCarteraResult>[
        {"documento":"FV-1001","prefijo":"FV","saldo_por_vencer":"1250000","saldo_vencido":"0","dias_vencido":"0","fecha_vencimiento":"2026-10-01"},
        {"documento":"FV-0990","prefijo":"FV","saldo":"340000","dias_vencido":"12","fecha_vencimiento":"2026-08-20"},
        {"cupo":"5000000"}
      ]</ConsultarCarteraResult>
    </ConsultarCarteraResponse>
  </soap:Body>
</soap:Envelope>`

func buildRouter(t *testing.T, erpURL string, budget time.Duration) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cb := resilience.NewCircuitBreaker("erp-test")

	transport := soap.NewTransport(&http.Client{}, budget, 10*time.Millisecond, logger, metrics.IncrUpstreamRetry)
	client := erp.NewClient(transport, erp.Options{
		URL:        erpURL,
		SOAPAction: "http://tempuri.org/ConsultarCartera",
		Namespace:  "http://tempuri.org/",
		Method:     "ConsultarCartera",
		Database:   "madecentro_prod",
		Token:      "test-token",
	}, cb, logger)

	svc := service.NewCartera(
		client,
		cartera.NewExtractor("ConsultarCarteraResult"),
		cache.New[*domain.CarteraResponse](time.Minute),
		service.Config{MaxConcurrency: 4},
		metrics,
		logger,
	)
	return handler.NewRouter(svc, cb, true, metrics, logger)
}

// TestIntegration_FullFlow spins up a mock SOAP upstream and tests the full
// request flow: envelope building, extraction, reconciliation, aggregation
// and formatting.
func TestIntegration_FullFlow(t *testing.T) {
	var lastRequest atomic.Value
	erpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		lastRequest.Store(string(body))
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		w.Write([]byte(soapEnvelope))
	}))
	defer erpServer.Close()

	router := buildRouter(t, erpServer.URL, 5*time.Second)

	req := httptest.NewRequest(http.MethodPost, "/v1/cartera",
		strings.NewReader(`{"customer_id":"900.123.456-7","action":"status","fecha":"2026-09-01"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var result domain.CarteraResponse
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if !result.OK {
		t.Error("expected ok response")
	}
	if result.Summary.TotalBalance != 1590000 {
		t.Errorf("saldo_total = %d, want 1590000", result.Summary.TotalBalance)
	}
	if result.Summary.CurrentBalance != 1250000 {
		t.Errorf("saldo_por_vencer = %d, want 1250000", result.Summary.CurrentBalance)
	}
	if result.Summary.OverdueBalance != 340000 {
		t.Errorf("saldo_vencido = %d, want 340000", result.Summary.OverdueBalance)
	}
	if result.Summary.CreditLimit != 5000000 {
		t.Errorf("cupo = %d, want 5000000", result.Summary.CreditLimit)
	}
	if result.Summary.AvailableCredit != 3410000 {
		t.Errorf("cupo_disponible = %d, want 3410000", result.Summary.AvailableCredit)
	}
	if result.Result.TotalBalance != "$1.590.000 COP" {
		t.Errorf("formatted saldo_total = %q", result.Result.TotalBalance)
	}

	// The SOAP request must carry the tenant, token and digits-only NIT.
	sent, _ := lastRequest.Load().(string)
	for _, want := range []string{"madecentro_prod", "test-token", "9001234567", "2026-09-01"} {
		if !strings.Contains(sent, want) {
			t.Errorf("upstream request missing %q:\n%s", want, sent)
		}
	}
}

// TestIntegration_UpstreamTimeout verifies the end-to-end behavior when the
// ERP never answers inside the budget: one retry, then a 504.
func TestIntegration_UpstreamTimeout(t *testing.T) {
	var calls atomic.Int64
	erpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(300 * time.Millisecond)
	}))
	defer erpServer.Close()

	router := buildRouter(t, erpServer.URL, 50*time.Millisecond)

	req := httptest.NewRequest(http.MethodPost, "/v1/cartera",
		strings.NewReader(`{"customer_id":"123"}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("upstream called %d times, want 2 (one retry)", got)
	}
	if !strings.Contains(rec.Body.String(), `"ok":false`) {
		t.Errorf("error body should carry ok=false: %s", rec.Body.String())
	}
}

// TestIntegration_DegradedExtraction verifies an HTML error page from the
// ERP degrades to an empty statement instead of failing the request.
func TestIntegration_DegradedExtraction(t *testing.T) {
	erpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html><body>Proxy Error</body></html>"))
	}))
	defer erpServer.Close()

	router := buildRouter(t, erpServer.URL, time.Second)

	req := httptest.NewRequest(http.MethodPost, "/v1/cartera",
		strings.NewReader(`{"customer_id":"123"}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var result domain.CarteraResponse
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !result.OK {
		t.Error("degraded response must still be ok")
	}
	if result.Summary.DocumentCount != 0 {
		t.Errorf("documents = %d, want 0", result.Summary.DocumentCount)
	}
	if result.Warning == "" {
		t.Error("expected a warning on the degraded response")
	}
}
