package checkout

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/internal/address"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	noActiveOrderMessage        = "You do not have an active order"
	invalidPaymentOptionMessage = "Invalid payment option selected"
	defaultAddressRaceMessage   = "Could not update your default address, please try again"
)

// Service defines the behavior needed by the checkout controller.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*PageView, error)
	Submit(ctx context.Context, userID uuid.UUID, req SubmitRequest) (*SubmitResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	orders    *orders.Repository
	addresses *address.Repository
	resolver  *address.Resolver
	tx        txRunner
}

// ServiceParams bundles the dependencies required to build a checkout service.
type ServiceParams struct {
	OrderRepo   *orders.Repository
	AddressRepo *address.Repository
	Resolver    *address.Resolver
	TxRunner    txRunner
}

// NewService constructs a checkout service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.AddressRepo == nil {
		return nil, fmt.Errorf("address repository is required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("address resolver is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	return &service{
		orders:    params.OrderRepo,
		addresses: params.AddressRepo,
		resolver:  params.Resolver,
		tx:        params.TxRunner,
	}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*PageView, error) {
	order, err := s.orders.FindOpenOrderWithItems(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load open order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, noActiveOrderMessage)
	}

	defaultShipping, err := s.addresses.FindDefault(ctx, userID, enums.AddressTypeShipping)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find default shipping")
	}
	defaultBilling, err := s.addresses.FindDefault(ctx, userID, enums.AddressTypeBilling)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find default billing")
	}

	return &PageView{
		Order:           orders.SummaryFromModel(order),
		DefaultShipping: addressViewFromModel(defaultShipping),
		DefaultBilling:  addressViewFromModel(defaultBilling),
	}, nil
}

func (s *service) Submit(ctx context.Context, userID uuid.UUID, req SubmitRequest) (*SubmitResult, error) {
	option, err := enums.ParsePaymentOptionCode(req.PaymentOption)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidPaymentOptionMessage)
	}

	order, err := s.orders.FindOpenOrder(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find open order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, noActiveOrderMessage)
	}

	run := func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			shipping, err := s.resolver.Resolve(ctx, tx, userID, enums.AddressTypeShipping, address.Form{
				UseDefault:       req.UseDefaultShipping,
				SetDefault:       req.SetDefaultShipping,
				StreetAddress:    req.ShippingAddress,
				ApartmentAddress: req.ShippingAddress2,
				Country:          req.ShippingCountry,
				Zip:              req.ShippingZip,
			})
			if err != nil {
				return err
			}

			billing, err := s.resolveBilling(ctx, tx, userID, req, shipping)
			if err != nil {
				return err
			}

			return s.orders.WithTx(tx).SetCheckoutDetails(ctx, order.ID, shipping.ID, billing.ID, option.String())
		})
	}

	// Two concurrent submissions can race on the single-default address index
	// between the clear and the insert; the retry clears the winner's row.
	// The address insert is the only unique index this transaction touches.
	err = run()
	if err != nil && db.IsUniqueViolation(err, "") {
		err = run()
		if err != nil && db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, defaultAddressRaceMessage)
		}
	}
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "submit checkout")
	}

	return &SubmitResult{RedirectTo: "/payment/" + option.String()}, nil
}

func (s *service) resolveBilling(ctx context.Context, tx *gorm.DB, userID uuid.UUID, req SubmitRequest, shipping *models.Address) (*models.Address, error) {
	if req.SameBillingAddress {
		return s.resolver.CopyAsBilling(ctx, tx, shipping)
	}
	return s.resolver.Resolve(ctx, tx, userID, enums.AddressTypeBilling, address.Form{
		UseDefault:       req.UseDefaultBilling,
		SetDefault:       req.SetDefaultBilling,
		StreetAddress:    req.BillingAddress,
		ApartmentAddress: req.BillingAddress2,
		Country:          req.BillingCountry,
		Zip:              req.BillingZip,
	})
}
