// Package erp provides the SOAP client for the upstream ERP's
// accounts-receivable ("cartera") web service.
package erp

import (
	"context"
	"errors"

	"github.com/madecentro/cartera-bfa-go/internal/domain"
	"github.com/madecentro/cartera-bfa-go/internal/infra/soap"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("erp")

// Options configures the upstream endpoint and tenant credentials.
type Options struct {
	URL        string
	SOAPAction string
	Namespace  string
	Method     string
	Database   string
	Token      string
}

// Client implements port.CarteraFetcher against the ERP SOAP service.
type Client struct {
	transport *soap.Transport
	opts      Options
	cb        *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

// NewClient creates an ERP cartera client.
func NewClient(transport *soap.Transport, opts Options, cb *gobreaker.CircuitBreaker, logger *zap.Logger) *Client {
	return &Client{
		transport: transport,
		opts:      opts,
		cb:        cb,
		logger:    logger,
	}
}

// FetchStatement calls the cartera method for one customer and returns the
// raw response body. Timeouts and transport failures come back as typed
// errors and count against the circuit breaker.
func (c *Client) FetchStatement(ctx context.Context, q domain.CarteraQuery) (string, error) {
	ctx, span := tracer.Start(ctx, "ERP.FetchStatement")
	defer span.End()
	span.SetAttributes(
		attribute.String("customer.id", q.CustomerID),
		attribute.String("cartera.as_of", q.AsOfDate),
	)

	envelope := soap.BuildEnvelope(c.opts.Namespace, c.opts.Method, []soap.Param{
		{Name: "basedatos", Value: c.opts.Database},
		{Name: "token", Value: c.opts.Token},
		{Name: "fecha", Value: q.AsOfDate},
		{Name: "nit", Value: q.CustomerID},
		{Name: "vendedor", Value: q.SalesRep},
	})

	body, err := c.cb.Execute(func() (any, error) {
		res := c.transport.Send(ctx, c.opts.URL, c.opts.SOAPAction, envelope)
		switch res.Outcome {
		case soap.OutcomeTimeout:
			return nil, res.Err
		case soap.OutcomeTransport:
			return nil, res.Err
		}

		c.logger.Debug("erp: cartera response received",
			zap.String("customer_id", q.CustomerID),
			zap.Int("status", res.HTTPStatus),
			zap.Int("body_bytes", len(res.Body)),
		)
		return res.Body, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", &domain.ErrCircuitOpen{Service: "erp"}
		}
		return "", err
	}

	return body.(string), nil
}
