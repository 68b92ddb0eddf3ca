// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/madecentro/cartera-bfa-go/internal/domain"
)

// CarteraFetcher retrieves the raw accounts-receivable statement for a
// customer from the upstream ERP. The returned string is the full response
// body text; interpreting it is the extractor's job.
type CarteraFetcher interface {
	FetchStatement(ctx context.Context, q domain.CarteraQuery) (string, error)
}

// PayloadExtractor locates and decodes the document list embedded in a raw
// upstream response. Implementations must never fail: a missing or
// malformed payload is reported through ExtractResult, not an error.
//
// The current implementation is a bracket-scanning heuristic matching what
// the upstream actually emits today; this port exists so it can be swapped
// for a strict parser if the upstream ever returns clean JSON.
type PayloadExtractor interface {
	Extract(raw string) domain.ExtractResult
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
