package payment

import (
	"context"
	"fmt"
)

// ErrorKind buckets provider failures into the categories the storefront
// reports differently to buyers.
type ErrorKind string

const (
	KindCardDeclined   ErrorKind = "card_declined"
	KindRateLimit      ErrorKind = "rate_limit"
	KindInvalidRequest ErrorKind = "invalid_request"
	KindAuthentication ErrorKind = "authentication"
	KindNetwork        ErrorKind = "network"
	KindGeneric        ErrorKind = "generic"
)

// GatewayError is a classified provider failure. ProviderMessage is only
// populated for kinds whose provider text is safe to show buyers.
type GatewayError struct {
	Kind            ErrorKind
	ProviderMessage string
	cause           error
}

// NewGatewayError builds a classified gateway failure.
func NewGatewayError(kind ErrorKind, providerMessage string, cause error) *GatewayError {
	return &GatewayError{Kind: kind, ProviderMessage: providerMessage, cause: cause}
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("gateway %s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("gateway %s", e.Kind)
}

// Unwrap exposes the underlying provider error.
func (e *GatewayError) Unwrap() error {
	return e.cause
}

// Customer is the provider-side customer record.
type Customer struct {
	ID            string
	DefaultSource string
}

// CardSummary is the displayable slice of a stored card.
type CardSummary struct {
	Last4 string `json:"last4"`
	Brand string `json:"brand"`
}

// ChargeRequest describes one charge attempt.
type ChargeRequest struct {
	AmountCents int64
	Currency    string
	CustomerID  string
	SourceToken string
	Description string
}

// Charge is the provider's confirmation of a successful charge.
type Charge struct {
	ID   string
	Card *CardSummary
}

// Gateway abstracts the payment provider so the service can be tested
// without network calls.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, sourceToken string) (*Customer, error)
	GetCustomer(ctx context.Context, customerID string) (*Customer, error)
	ListCards(ctx context.Context, customerID string) ([]CardSummary, error)
	Charge(ctx context.Context, req ChargeRequest) (*Charge, error)
}
