package models

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a catalog entry. Identity is the slug, which never changes.
type Item struct {
	ID            uuid.UUID          `gorm:"type:uuid;primaryKey"`
	Title         string             `gorm:"not null"`
	Price         decimal.Decimal    `gorm:"type:numeric(10,2);not null"`
	DiscountPrice *decimal.Decimal   `gorm:"type:numeric(10,2);column:discount_price"`
	Category      enums.ItemCategory `gorm:"type:text;not null"`
	Label         enums.ItemLabel    `gorm:"type:text;not null"`
	Slug          string             `gorm:"type:text;not null;uniqueIndex"`
	Description   string             `gorm:"type:text;not null"`
	ImageURL      *string            `gorm:"column:image_url"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
