package models

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile carries storefront settings tied one-to-one to a user. The row
// is created alongside the user and lives as long as the user does.
type UserProfile struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID             uuid.UUID `gorm:"type:uuid;column:user_id;not null;uniqueIndex"`
	StripeCustomerID   *string   `gorm:"column:stripe_customer_id"`
	OneClickPurchasing bool      `gorm:"column:one_click_purchasing;not null;default:false"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
