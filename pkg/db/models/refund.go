package models

import (
	"time"

	"github.com/google/uuid"
)

// Refund is an intake record filed against a placed order by ref code.
// The contact email is stored as submitted, without matching it to the
// order owner.
type Refund struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;column:order_id;not null;index"`
	Reason    string    `gorm:"type:text;not null"`
	Email     string    `gorm:"not null"`
	Granted   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
