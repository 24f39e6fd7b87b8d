package domain

import "fmt"

// Error types for consistent error handling across the API.

// ErrUnauthenticated indicates the request carries no caller identity.
type ErrUnauthenticated struct{}

func (e *ErrUnauthenticated) Error() string {
	return "user not authenticated"
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrConversion indicates the currency-rate lookup failed. It aborts
// the whole posting workflow; nothing is persisted.
type ErrConversion struct {
	Currency string
	Err      error
}

func (e *ErrConversion) Error() string {
	return fmt.Sprintf("currency conversion failed [%s]: %v", e.Currency, e.Err)
}

func (e *ErrConversion) Unwrap() error {
	return e.Err
}

// ErrInsufficientFunds indicates an expense exceeds the current ledger
// balance. The message embeds the balance so callers see it verbatim.
type ErrInsufficientFunds struct {
	Balance  float64
	Currency string
}

func (e *ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("Your balance is %g %s. Your withdrawal exceeds the available balance.", e.Balance, e.Currency)
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrForbidden indicates the user does not own the resource or lacks
// the required role.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrConflict indicates a resource already exists (duplicate email,
// budget already set for a category).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrExternalService indicates a failure in an external collaborator
// (store, rate source).
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}
