package payment

import (
	"context"
	"errors"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgstripe "github.com/angelmondragon/storefront-backend/pkg/stripe"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/charge"
	"github.com/stripe/stripe-go/v84/customer"
	"github.com/stripe/stripe-go/v84/paymentsource"
)

type stripeGateway struct {
	timeout config.PaymentConfig
}

// NewStripeGateway wraps the configured Stripe client behind the Gateway
// interface. Every call runs under the configured charge timeout.
func NewStripeGateway(api *pkgstripe.Client, cfg config.PaymentConfig) Gateway {
	if api == nil {
		return nil
	}
	return &stripeGateway{timeout: cfg}
}

func (g *stripeGateway) CreateCustomer(ctx context.Context, email, sourceToken string) (*Customer, error) {
	ctx, cancel := g.callContext(ctx)
	defer cancel()

	params := &stripe.CustomerParams{
		Email:  stripe.String(email),
		Source: stripe.String(sourceToken),
	}
	params.Context = ctx

	cust, err := customer.New(params)
	if err != nil {
		return nil, classifyStripeError(err)
	}
	return customerFromStripe(cust), nil
}

func (g *stripeGateway) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	ctx, cancel := g.callContext(ctx)
	defer cancel()

	params := &stripe.CustomerParams{}
	params.Context = ctx

	cust, err := customer.Get(customerID, params)
	if err != nil {
		return nil, classifyStripeError(err)
	}
	return customerFromStripe(cust), nil
}

func (g *stripeGateway) ListCards(ctx context.Context, customerID string) ([]CardSummary, error) {
	ctx, cancel := g.callContext(ctx)
	defer cancel()

	params := &stripe.PaymentSourceListParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx
	params.Filters.AddFilter("object", "", "card")

	var cards []CardSummary
	iter := paymentsource.List(params)
	for iter.Next() {
		source := iter.PaymentSource()
		if source.Card == nil {
			continue
		}
		cards = append(cards, CardSummary{
			Last4: source.Card.Last4,
			Brand: string(source.Card.Brand),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, classifyStripeError(err)
	}
	return cards, nil
}

func (g *stripeGateway) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	ctx, cancel := g.callContext(ctx)
	defer cancel()

	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(req.AmountCents),
		Currency:    stripe.String(req.Currency),
		Description: stripe.String(req.Description),
	}
	params.Context = ctx
	// Per-attempt idempotency key so a retried request cannot double-charge.
	params.SetIdempotencyKey(uuid.NewString())
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	}
	if req.SourceToken != "" {
		if err := params.SetSource(req.SourceToken); err != nil {
			return nil, NewGatewayError(KindInvalidRequest, "", err)
		}
	}

	ch, err := charge.New(params)
	if err != nil {
		return nil, classifyStripeError(err)
	}

	result := &Charge{ID: ch.ID}
	if ch.PaymentMethodDetails != nil && ch.PaymentMethodDetails.Card != nil {
		result.Card = &CardSummary{
			Last4: ch.PaymentMethodDetails.Card.Last4,
			Brand: string(ch.PaymentMethodDetails.Card.Brand),
		}
	}
	return result, nil
}

func (g *stripeGateway) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout.ChargeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.timeout.ChargeTimeout)
}

func customerFromStripe(cust *stripe.Customer) *Customer {
	out := &Customer{ID: cust.ID}
	if cust.DefaultSource != nil {
		out.DefaultSource = cust.DefaultSource.ID
	}
	return out
}

func classifyStripeError(err error) *GatewayError {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		// Timeouts and transport failures never reach the Stripe API.
		return NewGatewayError(KindNetwork, "", err)
	}

	// stripe-go v84 no longer exposes RateLimitError, AuthenticationError, or
	// APIConnectionError wrapper types; their Error.Type strings are stable.
	switch stripeErr.Type {
	case stripe.ErrorTypeCard:
		return NewGatewayError(KindCardDeclined, stripeErr.Msg, err)
	case stripe.ErrorType("rate_limit"):
		return NewGatewayError(KindRateLimit, "", err)
	case stripe.ErrorTypeInvalidRequest:
		return NewGatewayError(KindInvalidRequest, "", err)
	case stripe.ErrorType("authentication_error"):
		return NewGatewayError(KindAuthentication, "", err)
	case stripe.ErrorType("api_connection_error"):
		return NewGatewayError(KindNetwork, "", err)
	default:
		return NewGatewayError(KindGeneric, "", err)
	}
}
