package soap

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/madecentro/cartera-bfa-go/internal/domain"
	"github.com/madecentro/cartera-bfa-go/internal/infra/resilience"

	"go.uber.org/zap"
)

// Outcome tags the result of a transport call.
type Outcome int

const (
	// OutcomeSuccess means a response body was obtained. It says nothing
	// about the business call: the upstream wraps failures in 200s and
	// sometimes returns error details with non-2xx statuses, so any body
	// is handed to the extractor.
	OutcomeSuccess Outcome = iota
	// OutcomeTimeout means every allowed attempt exceeded the budget.
	OutcomeTimeout
	// OutcomeTransport means a non-timeout network failure. Not retried.
	OutcomeTransport
)

// CallResult is the outcome of one Send, after the retry policy ran.
type CallResult struct {
	Outcome    Outcome
	HTTPStatus int
	Body       string
	Err        error
	Budget     time.Duration
}

// Transport issues SOAP POSTs with a per-attempt timeout budget and retries
// exactly once, only on timeout, after a fixed backoff.
type Transport struct {
	client  *http.Client
	budget  time.Duration
	retry   resilience.RetryPolicy
	logger  *zap.Logger
	onRetry func()
}

// NewTransport creates a Transport. onRetry (optional) is invoked before the
// single timeout-triggered retry, for metrics.
func NewTransport(client *http.Client, budget, backoff time.Duration, logger *zap.Logger, onRetry func()) *Transport {
	t := &Transport{
		client:  client,
		budget:  budget,
		logger:  logger,
		onRetry: onRetry,
	}
	t.retry = resilience.RetryPolicy{
		MaxAttempts: 2,
		Backoff:     backoff,
		ShouldRetry: isTimeout,
		OnRetry: func(attempt int, err error) {
			logger.Warn("soap call timed out, retrying once",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			if t.onRetry != nil {
				t.onRetry()
			}
		},
	}
	return t
}

// Send posts the envelope to url with the given SOAPAction. The second
// attempt's result wins: a success overrides a prior timeout, and a repeat
// timeout (or any error on the retry) is what the caller sees.
func (t *Transport) Send(ctx context.Context, url, soapAction, envelope string) CallResult {
	var status int
	var body string

	err := t.retry.Do(ctx, func() error {
		var attemptErr error
		status, body, attemptErr = t.attempt(ctx, url, soapAction, envelope)
		return attemptErr
	})

	switch {
	case err == nil:
		return CallResult{Outcome: OutcomeSuccess, HTTPStatus: status, Body: body, Budget: t.budget}
	case isTimeout(err):
		return CallResult{Outcome: OutcomeTimeout, Err: err, Budget: t.budget}
	default:
		return CallResult{Outcome: OutcomeTransport, Err: err, Budget: t.budget}
	}
}

// attempt performs one HTTP POST under the timeout budget.
func (t *Transport) attempt(ctx context.Context, url, soapAction, envelope string) (int, string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.budget)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(envelope))
	if err != nil {
		return 0, "", &domain.ErrTransport{Service: "erp", Err: err}
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", soapAction)

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, "", t.classify(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", t.classify(err)
	}

	// Non-2xx is still a transport-level success: the body may carry the
	// SOAP envelope or an ok:false marker either way.
	return resp.StatusCode, string(raw), nil
}

// classify wraps a network failure as a timeout or transport error.
func (t *Transport) classify(err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &domain.ErrTimeout{Operation: "soap call", BudgetMs: t.budget.Milliseconds()}
	}
	return &domain.ErrTransport{Service: "erp", Err: err}
}

func isTimeout(err error) bool {
	var te *domain.ErrTimeout
	return errors.As(err, &te)
}
