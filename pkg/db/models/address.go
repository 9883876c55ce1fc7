package models

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
)

// Address is a shipping or billing address. At most one default address
// exists per (user, address_type).
type Address struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID         `gorm:"type:uuid;column:user_id;not null;index"`
	StreetAddress    string            `gorm:"column:street_address;not null"`
	ApartmentAddress string            `gorm:"column:apartment_address;not null;default:''"`
	Country          string            `gorm:"not null"`
	Zip              string            `gorm:"not null"`
	AddressType      enums.AddressType `gorm:"type:text;column:address_type;not null"`
	Default          bool              `gorm:"column:is_default;not null;default:false"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
