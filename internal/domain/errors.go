package domain

import "fmt"

// Error types for consistent error handling across the service.

// ErrValidation indicates a validation error (bad input). Never retried.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnsupportedAction indicates the inbound request carried an action
// discriminator this service does not implement.
type ErrUnsupportedAction struct {
	Action string
}

func (e *ErrUnsupportedAction) Error() string {
	return fmt.Sprintf("unsupported action: %q", e.Action)
}

// ErrConfiguration indicates a required endpoint or credential is not
// configured. The route cannot be served, but the process keeps running.
type ErrConfiguration struct {
	Missing string
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.Missing)
}

// ErrTimeout indicates the upstream call exceeded its budget on every
// allowed attempt.
type ErrTimeout struct {
	Operation string
	BudgetMs  int64
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out after %dms: %s", e.BudgetMs, e.Operation)
}

// ErrTransport indicates a non-timeout upstream failure (DNS, connection
// refused, broken body read). Not retried.
type ErrTransport struct {
	Service string
	Err     error
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("transport error [%s]: %v", e.Service, e.Err)
}

func (e *ErrTransport) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open for the upstream.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}
