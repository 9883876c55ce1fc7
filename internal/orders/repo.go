package orders

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes order persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindOpenOrder returns the user's open order (ordered=false), or (nil, nil)
// when the user has no cart.
func (r *Repository) FindOpenOrder(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND ordered = ?", userID, false).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// FindOpenOrderWithItems loads the open order with its lines, items, coupon
// and addresses preloaded, or (nil, nil) when none exists.
func (r *Repository) FindOpenOrderWithItems(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Item").
		Preload("Coupon").
		Preload("ShippingAddress").
		Preload("BillingAddress").
		Where("user_id = ? AND ordered = ?", userID, false).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// Create inserts a new order.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// SetCoupon attaches the coupon to the order.
func (r *Repository) SetCoupon(ctx context.Context, orderID, couponID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("coupon_id", couponID).Error
}

// SetCheckoutDetails persists the resolved addresses and payment option.
func (r *Repository) SetCheckoutDetails(ctx context.Context, orderID, shippingID, billingID uuid.UUID, paymentOption string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumns(map[string]any{
			"shipping_address_id": shippingID,
			"billing_address_id":  billingID,
			"payment_option":      paymentOption,
		}).Error
}

// MarkPlaced flips the order into its placed state with a fresh ref code.
func (r *Repository) MarkPlaced(ctx context.Context, orderID uuid.UUID, refCode string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumns(map[string]any{
			"ordered":      true,
			"ordered_date": at,
			"ref_code":     refCode,
		}).Error
}

// RefCodeExists reports whether any order already carries the code.
func (r *Repository) RefCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("ref_code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByRefCode retrieves a placed order by its reference code, or (nil, nil)
// when the code matches nothing.
func (r *Repository) FindByRefCode(ctx context.Context, code string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("ref_code = ?", code).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// SetRefundRequested flags the order for refund review.
func (r *Repository) SetRefundRequested(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("refund_requested", true).Error
}
