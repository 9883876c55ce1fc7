package models

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
)

// Order doubles as the cart (ordered=false) and the placed order
// (ordered=true). At most one open order exists per user.
type Order struct {
	ID                uuid.UUID            `gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID            `gorm:"type:uuid;column:user_id;not null;index"`
	Items             []OrderItem          `gorm:"foreignKey:OrderID"`
	Ordered           bool                 `gorm:"not null;default:false"`
	OrderedDate       *time.Time           `gorm:"column:ordered_date"`
	CouponID          *uuid.UUID           `gorm:"type:uuid;column:coupon_id"`
	Coupon            *Coupon              `gorm:"foreignKey:CouponID"`
	ShippingAddressID *uuid.UUID           `gorm:"type:uuid;column:shipping_address_id"`
	ShippingAddress   *Address             `gorm:"foreignKey:ShippingAddressID"`
	BillingAddressID  *uuid.UUID           `gorm:"type:uuid;column:billing_address_id"`
	BillingAddress    *Address             `gorm:"foreignKey:BillingAddressID"`
	PaymentOption     *enums.PaymentOption `gorm:"type:text;column:payment_option"`
	RefCode           *string              `gorm:"column:ref_code;uniqueIndex"`
	RefundRequested   bool                 `gorm:"column:refund_requested;not null;default:false"`
	RefundGranted     bool                 `gorm:"column:refund_granted;not null;default:false"`
	CreatedAt         time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
