package handler

import (
	"encoding/json"
	"net/http"

	"github.com/madecentro/cartera-bfa-go/internal/domain"
	"github.com/madecentro/cartera-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// carteraRequest is the inbound body for POST /v1/cartera. Older app
// versions wrap the fields in a "data" envelope, so the shape nests once.
type carteraRequest struct {
	Action     string          `json:"action,omitempty"`
	CustomerID string          `json:"customer_id,omitempty"`
	NIT        string          `json:"nit,omitempty"`
	AsOfDate   string          `json:"fecha,omitempty"`
	SalesRep   string          `json:"vendedor,omitempty"`
	Data       *carteraRequest `json:"data,omitempty"`
}

// flatten resolves the optional "data" envelope: inner fields win only
// where the outer ones are empty, so both old and new app payloads work.
func (req *carteraRequest) flatten() {
	if req.Data == nil {
		return
	}
	inner := req.Data
	inner.flatten()
	if req.Action == "" {
		req.Action = inner.Action
	}
	if req.CustomerID == "" {
		req.CustomerID = inner.CustomerID
	}
	if req.NIT == "" {
		req.NIT = inner.NIT
	}
	if req.AsOfDate == "" {
		req.AsOfDate = inner.AsOfDate
	}
	if req.SalesRep == "" {
		req.SalesRep = inner.SalesRep
	}
	req.Data = nil
}

func (req *carteraRequest) query() domain.CarteraQuery {
	customerID := req.CustomerID
	if customerID == "" {
		customerID = req.NIT
	}
	return domain.CarteraQuery{
		CustomerID: customerID,
		AsOfDate:   req.AsOfDate,
		SalesRep:   req.SalesRep,
	}
}

// ============================================================
// 1. Cartera status — POST /v1/cartera
// ============================================================

func carteraStatusHandler(svc *service.Cartera, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/cartera")
		defer span.End()

		var req carteraRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.flatten()

		if req.Action != "" && req.Action != "status" {
			handleServiceError(w, &domain.ErrUnsupportedAction{Action: req.Action}, logger)
			return
		}

		resp, err := svc.GetStatement(ctx, req.query())
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ============================================================
// 2. Cartera by path — GET /v1/customers/{customerId}/cartera
// ============================================================

func customerCarteraHandler(svc *service.Cartera, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/customers/{customerId}/cartera")
		defer span.End()

		q := domain.CarteraQuery{
			CustomerID: chi.URLParam(r, "customerId"),
			AsOfDate:   r.URL.Query().Get("fecha"),
			SalesRep:   r.URL.Query().Get("vendedor"),
		}

		resp, err := svc.GetStatement(ctx, q)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ============================================================
// 3. Batch — POST /v1/cartera/batch
// ============================================================

func carteraBatchHandler(svc *service.Cartera, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/cartera/batch")
		defer span.End()

		var req struct {
			Customers []string `json:"customers"`
			AsOfDate  string   `json:"fecha,omitempty"`
			SalesRep  string   `json:"vendedor,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		queries := make([]domain.CarteraQuery, len(req.Customers))
		for i, id := range req.Customers {
			queries[i] = domain.CarteraQuery{
				CustomerID: id,
				AsOfDate:   req.AsOfDate,
				SalesRep:   req.SalesRep,
			}
		}

		entries, err := svc.GetStatements(ctx, queries)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"results": entries,
		})
	}
}
