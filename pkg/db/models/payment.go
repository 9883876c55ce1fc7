package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment records a confirmed provider charge. Rows exist only for charges
// the provider acknowledged as successful.
type Payment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"type:uuid;column:user_id;not null;index"`
	OrderID   uuid.UUID       `gorm:"type:uuid;column:order_id;not null;index"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	ChargeRef string          `gorm:"column:charge_ref;not null"`
	CardLast4 *string         `gorm:"column:card_last4"`
	CardBrand *string         `gorm:"column:card_brand"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
