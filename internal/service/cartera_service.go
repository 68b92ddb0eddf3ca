package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/madecentro/cartera-bfa-go/internal/cartera"
	"github.com/madecentro/cartera-bfa-go/internal/domain"
	"github.com/madecentro/cartera-bfa-go/internal/infra/observability"
	"github.com/madecentro/cartera-bfa-go/internal/infra/resilience"
	"github.com/madecentro/cartera-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/cartera")

const maxBatchSize = 20

// Config holds the service-level knobs for the cartera pipeline.
type Config struct {
	// DocumentPrefixes, when non-empty, keeps only documents whose prefix
	// is in the list.
	DocumentPrefixes []string
	// MaxConcurrency bounds batch fan-out against the upstream.
	MaxConcurrency int
	// ConfigErr, when set, marks the upstream as unconfigured: every
	// statement request fails fast with it before any network call.
	ConfigErr error
}

// Cartera orchestrates the accounts-receivable pipeline: validate, fetch,
// extract, reconcile, aggregate, assemble.
type Cartera struct {
	fetcher   port.CarteraFetcher
	extractor port.PayloadExtractor
	cache     port.Cache[*domain.CarteraResponse]
	metrics   *observability.Metrics
	logger    *zap.Logger
	bulkhead  *resilience.Bulkhead
	prefixes  map[string]bool
	configErr error
}

// NewCartera creates the cartera service with all dependencies injected.
func NewCartera(
	fetcher port.CarteraFetcher,
	extractor port.PayloadExtractor,
	cache port.Cache[*domain.CarteraResponse],
	cfg Config,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Cartera {
	maxConc := cfg.MaxConcurrency
	if maxConc <= 0 {
		maxConc = 10
	}
	var prefixes map[string]bool
	if len(cfg.DocumentPrefixes) > 0 {
		prefixes = make(map[string]bool, len(cfg.DocumentPrefixes))
		for _, p := range cfg.DocumentPrefixes {
			prefixes[strings.ToUpper(p)] = true
		}
	}
	return &Cartera{
		fetcher:   fetcher,
		extractor: extractor,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		bulkhead:  resilience.NewBulkhead(maxConc),
		prefixes:  prefixes,
		configErr: cfg.ConfigErr,
	}
}

// GetStatement runs the full pipeline for one customer.
//
// Validation and configuration failures return an error before any network
// call. Upstream timeout/transport failures propagate as typed errors. An
// extraction failure degrades: the result is a well-formed OK response with
// a zero summary, no items, and a diagnostic warning, because an empty
// statement is a valid business state.
func (s *Cartera) GetStatement(ctx context.Context, q domain.CarteraQuery) (*domain.CarteraResponse, error) {
	ctx, span := tracer.Start(ctx, "Cartera.GetStatement")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("cartera_status", time.Since(start))
	}()

	if s.configErr != nil {
		return nil, s.configErr
	}

	digits := digitsOnly(q.CustomerID)
	if digits == "" {
		s.metrics.IncrRequest("error")
		return nil, &domain.ErrValidation{Field: "customer_id", Message: "must contain at least one digit"}
	}
	q.CustomerID = digits
	if q.AsOfDate == "" {
		q.AsOfDate = time.Now().Format("2006-01-02")
	}
	span.SetAttributes(attribute.String("customer.id", q.CustomerID))

	cacheKey := fmt.Sprintf("cartera:%s:%s:%s", q.CustomerID, q.AsOfDate, q.SalesRep)
	if cached, ok := s.cache.Get(cacheKey); ok {
		s.metrics.IncrCacheHit("cartera")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("cartera")

	raw, err := s.fetcher.FetchStatement(ctx, q)
	if err != nil {
		s.metrics.IncrRequest("error")
		s.metrics.IncrUpstreamError(errorKind(err))
		return nil, err
	}

	extracted := s.extractor.Extract(raw)
	if !extracted.OK {
		s.logger.Warn("cartera: no parseable payload, degrading to empty statement",
			zap.String("customer_id", q.CustomerID),
			zap.String("reason", extracted.Reason),
		)
		s.metrics.IncrDegraded()
		s.metrics.IncrRequest("degraded")
		return degradedResponse(extracted), nil
	}

	contribs := make([]cartera.Contribution, 0, len(extracted.Items))
	for _, item := range extracted.Items {
		c := cartera.NormalizeItem(item)
		if s.prefixes != nil && c.Item.DocumentPrefix != "" && !s.prefixes[strings.ToUpper(c.Item.DocumentPrefix)] {
			continue
		}
		contribs = append(contribs, c)
	}

	resp := assemble(contribs)
	s.cache.Set(cacheKey, resp)
	s.metrics.IncrRequest("success")
	return resp, nil
}

// GetStatements runs the pipeline for several customers concurrently.
// Entries are independent: a failure for one customer is recorded in its
// entry and does not cancel the rest.
func (s *Cartera) GetStatements(ctx context.Context, queries []domain.CarteraQuery) ([]domain.BatchEntry, error) {
	ctx, span := tracer.Start(ctx, "Cartera.GetStatements")
	defer span.End()
	span.SetAttributes(attribute.Int("cartera.batch_size", len(queries)))

	if len(queries) == 0 {
		return nil, &domain.ErrValidation{Field: "customers", Message: "must not be empty"}
	}
	if len(queries) > maxBatchSize {
		return nil, &domain.ErrValidation{Field: "customers", Message: fmt.Sprintf("at most %d per batch", maxBatchSize)}
	}

	entries := make([]domain.BatchEntry, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			if err := s.bulkhead.Acquire(gctx); err != nil {
				entries[i] = domain.BatchEntry{CustomerID: q.CustomerID, Error: err.Error()}
				return nil
			}
			defer s.bulkhead.Release()

			resp, err := s.GetStatement(gctx, q)
			if err != nil {
				entries[i] = domain.BatchEntry{CustomerID: q.CustomerID, Error: err.Error()}
				return nil
			}
			entries[i] = domain.BatchEntry{CustomerID: q.CustomerID, OK: true, Response: resp}
			return nil
		})
	}
	g.Wait()

	return entries, nil
}

// assemble builds the caller-facing payload: raw summary, formatted mirror,
// and per-document detail in both forms.
func assemble(contribs []cartera.Contribution) *domain.CarteraResponse {
	summary := cartera.Summarize(contribs)

	items := make([]domain.CarteraItem, 0, len(contribs))
	for _, c := range contribs {
		items = append(items, domain.CarteraItem{
			NormalizedLineItem: c.Item,
			BalanceFormatted:   cartera.FormatCOP(c.Item.Balance),
		})
	}

	return &domain.CarteraResponse{
		OK:        true,
		RequestID: uuid.New().String(),
		Summary:   summary,
		Result:    cartera.FormatSummary(summary),
		Items:     items,
	}
}

// degradedResponse is the zero-filled success envelope for "no data".
func degradedResponse(ext domain.ExtractResult) *domain.CarteraResponse {
	var zero domain.CarteraSummary
	return &domain.CarteraResponse{
		OK:         true,
		RequestID:  uuid.New().String(),
		Summary:    zero,
		Result:     cartera.FormatSummary(zero),
		Items:      []domain.CarteraItem{},
		Warning:    "upstream returned no document list: " + ext.Reason,
		RawSnippet: ext.Snippet,
	}
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func errorKind(err error) string {
	var te *domain.ErrTimeout
	var co *domain.ErrCircuitOpen
	switch {
	case errors.As(err, &te):
		return "timeout"
	case errors.As(err, &co):
		return "circuit_open"
	default:
		return "transport"
	}
}
