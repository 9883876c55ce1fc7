package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is one cart line: a single item with a quantity, owned by at most
// one open order at a time. Ordered flips when the owning order is placed.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;column:user_id;not null;index"`
	OrderID   uuid.UUID `gorm:"type:uuid;column:order_id;not null;index"`
	ItemID    uuid.UUID `gorm:"type:uuid;column:item_id;not null"`
	Item      Item      `gorm:"foreignKey:ItemID"`
	Quantity  int       `gorm:"not null;default:1"`
	Ordered   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
