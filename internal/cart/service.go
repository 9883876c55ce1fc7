package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	orderSummaryPath = "/order-summary"
	checkoutPath     = "/checkout"

	itemAddedMessage      = "This item was added to your cart."
	quantityUpdateMessage = "This item quantity was updated."
	itemRemovedMessage    = "This item was removed from your cart."
	itemNotInCartMessage  = "This item was not in your cart"
	noActiveOrderMessage  = "You do not have an active order"
	couponAddedMessage    = "Successfully added coupon"
)

// Service defines the behavior needed by the cart controller.
type Service interface {
	AddItem(ctx context.Context, userID uuid.UUID, slug string) (*Outcome, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, slug string) (*Outcome, error)
	DecrementItem(ctx context.Context, userID uuid.UUID, slug string) (*Outcome, error)
	ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*Outcome, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	products *products.Repository
	orders   *orders.Repository
	lines    *Repository
	coupons  *coupons.Repository
	tx       txRunner
}

// ServiceParams bundles the dependencies required to build a cart service.
type ServiceParams struct {
	ProductRepo *products.Repository
	OrderRepo   *orders.Repository
	LineRepo    *Repository
	CouponRepo  *coupons.Repository
	TxRunner    txRunner
}

// NewService constructs a cart service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.LineRepo == nil {
		return nil, fmt.Errorf("line repository is required")
	}
	if params.CouponRepo == nil {
		return nil, fmt.Errorf("coupon repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	return &service{
		products: params.ProductRepo,
		orders:   params.OrderRepo,
		lines:    params.LineRepo,
		coupons:  params.CouponRepo,
		tx:       params.TxRunner,
	}, nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, slug string) (*Outcome, error) {
	item, err := s.findItem(ctx, slug)
	if err != nil {
		return nil, err
	}

	var outcome *Outcome
	run := func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			order, err := s.orders.WithTx(tx).FindOpenOrder(ctx, userID)
			if err != nil {
				return err
			}
			if order == nil {
				order = &models.Order{ID: uuid.New(), UserID: userID}
				if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
					return err
				}
			}

			line, err := s.lines.WithTx(tx).FindLine(ctx, order.ID, item.ID)
			if err != nil {
				return err
			}
			if line != nil {
				if err := s.lines.WithTx(tx).UpdateQuantity(ctx, line.ID, line.Quantity+1); err != nil {
					return err
				}
				outcome = &Outcome{RedirectTo: orderSummaryPath, Message: quantityUpdateMessage}
				return nil
			}

			newLine := &models.OrderItem{
				ID:       uuid.New(),
				UserID:   userID,
				OrderID:  order.ID,
				ItemID:   item.ID,
				Quantity: 1,
			}
			if err := s.lines.WithTx(tx).CreateLine(ctx, newLine); err != nil {
				return err
			}
			outcome = &Outcome{RedirectTo: orderSummaryPath, Message: itemAddedMessage}
			return nil
		})
	}

	// A concurrent first add can race on the single-open-order index; the
	// retry picks up the winner's order.
	if err := run(); err != nil {
		if !db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add to cart")
		}
		if err := run(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add to cart retry")
		}
	}
	return outcome, nil
}

func (s *service) RemoveItem(ctx context.Context, userID uuid.UUID, slug string) (*Outcome, error) {
	item, err := s.findItem(ctx, slug)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindOpenOrder(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find open order")
	}
	if order == nil {
		return &Outcome{RedirectTo: productPath(slug), Message: noActiveOrderMessage}, nil
	}

	line, err := s.lines.FindLine(ctx, order.ID, item.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find line")
	}
	if line == nil {
		return &Outcome{RedirectTo: productPath(slug), Message: itemNotInCartMessage}, nil
	}

	if err := s.lines.DeleteLine(ctx, line.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete line")
	}
	return &Outcome{RedirectTo: orderSummaryPath, Message: itemRemovedMessage}, nil
}

func (s *service) DecrementItem(ctx context.Context, userID uuid.UUID, slug string) (*Outcome, error) {
	item, err := s.findItem(ctx, slug)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindOpenOrder(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find open order")
	}
	if order == nil {
		return &Outcome{RedirectTo: productPath(slug), Message: noActiveOrderMessage}, nil
	}

	line, err := s.lines.FindLine(ctx, order.ID, item.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find line")
	}
	if line == nil {
		return &Outcome{RedirectTo: productPath(slug), Message: itemNotInCartMessage}, nil
	}

	if line.Quantity > 1 {
		if err := s.lines.UpdateQuantity(ctx, line.ID, line.Quantity-1); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement line")
		}
	} else {
		if err := s.lines.DeleteLine(ctx, line.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete line")
		}
	}
	return &Outcome{RedirectTo: orderSummaryPath, Message: quantityUpdateMessage}, nil
}

func (s *service) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*Outcome, error) {
	order, err := s.orders.FindOpenOrder(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find open order")
	}
	if order == nil {
		return &Outcome{RedirectTo: checkoutPath, Message: noActiveOrderMessage}, nil
	}

	coupon, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find coupon")
	}
	if coupon == nil {
		// Unknown codes are ignored; the client lands on checkout either way.
		return &Outcome{RedirectTo: checkoutPath}, nil
	}

	if err := s.orders.SetCoupon(ctx, order.ID, coupon.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "attach coupon")
	}
	return &Outcome{RedirectTo: checkoutPath, Message: couponAddedMessage}, nil
}

func (s *service) findItem(ctx context.Context, slug string) (*models.Item, error) {
	item, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find item")
	}
	return item, nil
}

func productPath(slug string) string {
	return "/products/" + slug
}
