package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/refcode"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	noActiveOrderMessage    = "You do not have an active order"
	noBillingAddressMessage = "You have not added a billing address"
	invalidDataMessage      = "Invalid data received"
	orderSuccessMessage     = "Your order was successful!"

	rateLimitMessage      = "Rate limit error"
	invalidParamsMessage  = "Invalid parameters"
	notAuthedMessage      = "Not authenticated"
	networkErrorMessage   = "Network error"
	genericChargeMessage  = "Something went wrong. You were not charged. Please try again."
	unknownProviderDetail = "unknown payment provider"

	refCodeMaxAttempts = 5
)

var centsFactor = decimal.NewFromInt(100)

// Service defines the behavior needed by the payment controller.
type Service interface {
	Page(ctx context.Context, userID uuid.UUID, provider string) (*PageView, error)
	Pay(ctx context.Context, userID uuid.UUID, provider string, req PayRequest) (*Result, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	orders   *orders.Repository
	users    *users.Repository
	lines    *cart.Repository
	payments *Repository
	gateway  Gateway
	tx       txRunner
	metrics  *metrics.PaymentMetrics
	cfg      config.PaymentConfig
}

// ServiceParams bundles the dependencies required to build a payment service.
type ServiceParams struct {
	OrderRepo   *orders.Repository
	UserRepo    *users.Repository
	LineRepo    *cart.Repository
	PaymentRepo *Repository
	Gateway     Gateway
	TxRunner    txRunner
	Metrics     *metrics.PaymentMetrics
	Config      config.PaymentConfig
}

// NewService constructs a payment service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.LineRepo == nil {
		return nil, fmt.Errorf("line repository is required")
	}
	if params.PaymentRepo == nil {
		return nil, fmt.Errorf("payment repository is required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	return &service{
		orders:   params.OrderRepo,
		users:    params.UserRepo,
		lines:    params.LineRepo,
		payments: params.PaymentRepo,
		gateway:  params.Gateway,
		tx:       params.TxRunner,
		metrics:  params.Metrics,
		cfg:      params.Config,
	}, nil
}

func (s *service) Page(ctx context.Context, userID uuid.UUID, provider string) (*PageView, error) {
	option, err := s.resolveProvider(ctx, userID, provider)
	if err != nil {
		return nil, err
	}

	order, err := s.requirePayableOrder(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &PageView{
		Provider: option.String(),
		Total:    pricing.OrderTotal(order),
	}

	profile, err := s.users.FindProfile(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	if profile != nil && profile.OneClickPurchasing && customerRef(profile) != "" {
		cards, err := s.gateway.ListCards(ctx, customerRef(profile))
		if err != nil {
			return nil, s.chargeError(option.String(), err)
		}
		view.Cards = cards
	}
	return view, nil
}

func (s *service) Pay(ctx context.Context, userID uuid.UUID, provider string, req PayRequest) (*Result, error) {
	option, err := s.resolveProvider(ctx, userID, provider)
	if err != nil {
		return nil, err
	}

	order, err := s.requirePayableOrder(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !req.UseDefault && strings.TrimSpace(req.StripeToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidDataMessage)
	}

	profile, err := s.users.FindProfile(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}

	chargeReq, err := s.resolveChargeSource(ctx, userID, profile, req)
	if err != nil {
		return nil, err
	}

	total := pricing.OrderTotal(order)
	chargeReq.AmountCents = total.Mul(centsFactor).IntPart()
	chargeReq.Currency = s.currency()
	chargeReq.Description = "Storefront order for " + userID.String()

	start := time.Now()
	ch, err := s.gateway.Charge(ctx, chargeReq)
	s.metrics.ObserveDuration(option.String(), time.Since(start))
	if err != nil {
		return nil, s.chargeError(option.String(), err)
	}

	code, err := s.freshRefCode(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	pay := &models.Payment{
		ID:        uuid.New(),
		UserID:    userID,
		OrderID:   order.ID,
		Amount:    total,
		ChargeRef: ch.ID,
	}
	if ch.Card != nil {
		pay.CardLast4 = &ch.Card.Last4
		pay.CardBrand = &ch.Card.Brand
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.payments.WithTx(tx).Create(ctx, pay); err != nil {
			return err
		}
		if err := s.orders.WithTx(tx).MarkPlaced(ctx, order.ID, code, now); err != nil {
			return err
		}
		return s.lines.WithTx(tx).MarkOrdered(ctx, order.ID)
	})
	if err != nil {
		// The provider confirmed the charge; surface the persistence failure
		// loudly instead of re-charging.
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record payment")
	}

	s.metrics.IncSuccess(option.String())
	return &Result{
		RedirectTo: "/",
		Message:    orderSuccessMessage,
		RefCode:    code,
	}, nil
}

// resolveProvider parses the path value and checks it against the option the
// buyer picked at checkout.
func (s *service) resolveProvider(ctx context.Context, userID uuid.UUID, provider string) (enums.PaymentOption, error) {
	option, err := enums.ParsePaymentOption(provider)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, unknownProviderDetail)
	}

	order, err := s.orders.FindOpenOrder(ctx, userID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find open order")
	}
	if order == nil {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, noActiveOrderMessage)
	}
	if order.PaymentOption == nil || *order.PaymentOption != option {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "Invalid payment option selected")
	}
	return option, nil
}

func (s *service) requirePayableOrder(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindOpenOrderWithItems(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load open order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, noActiveOrderMessage)
	}
	if order.BillingAddressID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, noBillingAddressMessage).
			WithDetails(map[string]string{"redirect_to": "/checkout"})
	}
	return order, nil
}

// resolveChargeSource picks the customer/source pair for the charge,
// creating or retrieving the remote customer record when asked to.
func (s *service) resolveChargeSource(ctx context.Context, userID uuid.UUID, profile *models.UserProfile, req PayRequest) (ChargeRequest, error) {
	ref := customerRef(profile)

	if req.Save {
		if ref != "" {
			cust, err := s.gateway.GetCustomer(ctx, ref)
			if err != nil {
				return ChargeRequest{}, s.chargeError("stripe", err)
			}
			return ChargeRequest{CustomerID: cust.ID}, nil
		}

		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return ChargeRequest{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
		}
		cust, err := s.gateway.CreateCustomer(ctx, user.Email, req.StripeToken)
		if err != nil {
			return ChargeRequest{}, s.chargeError("stripe", err)
		}
		if err := s.users.SetCustomerRef(ctx, userID, cust.ID); err != nil {
			return ChargeRequest{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store customer ref")
		}
		return ChargeRequest{CustomerID: cust.ID}, nil
	}

	if req.UseDefault {
		if ref == "" {
			return ChargeRequest{}, pkgerrors.New(pkgerrors.CodeValidation, invalidDataMessage)
		}
		cust, err := s.gateway.GetCustomer(ctx, ref)
		if err != nil {
			return ChargeRequest{}, s.chargeError("stripe", err)
		}
		return ChargeRequest{CustomerID: cust.ID}, nil
	}

	return ChargeRequest{SourceToken: req.StripeToken}, nil
}

func (s *service) freshRefCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < refCodeMaxAttempts; attempt++ {
		code, err := refcode.New()
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate ref code")
		}
		exists, err := s.orders.RefCodeExists(ctx, code)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check ref code")
		}
		if !exists {
			return code, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "ref code space exhausted")
}

// chargeError translates a classified gateway failure into the buyer-facing
// message table and records the failure metric.
func (s *service) chargeError(provider string, err error) error {
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		s.metrics.IncFailure(provider, string(KindGeneric))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, genericChargeMessage)
	}

	s.metrics.IncFailure(provider, string(gwErr.Kind))

	message := genericChargeMessage
	switch gwErr.Kind {
	case KindCardDeclined:
		if gwErr.ProviderMessage != "" {
			message = gwErr.ProviderMessage
		}
	case KindRateLimit:
		message = rateLimitMessage
	case KindInvalidRequest:
		message = invalidParamsMessage
	case KindAuthentication:
		message = notAuthedMessage
	case KindNetwork:
		message = networkErrorMessage
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}

func (s *service) currency() string {
	if s.cfg.Currency == "" {
		return "usd"
	}
	return s.cfg.Currency
}

func customerRef(profile *models.UserProfile) string {
	if profile == nil || profile.StripeCustomerID == nil {
		return ""
	}
	return strings.TrimSpace(*profile.StripeCustomerID)
}
