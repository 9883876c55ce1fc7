package products

import (
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// ItemView is the catalog item shape returned to clients.
type ItemView struct {
	Title         string             `json:"title"`
	Slug          string             `json:"slug"`
	Price         decimal.Decimal    `json:"price"`
	DiscountPrice *decimal.Decimal   `json:"discount_price,omitempty"`
	Category      enums.ItemCategory `json:"category"`
	Label         enums.ItemLabel    `json:"label"`
	Description   string             `json:"description"`
	ImageURL      *string            `json:"image_url,omitempty"`
	CartURL       string             `json:"cart_url"`
}

// FromModel maps a persisted item onto its API view.
func FromModel(item *models.Item) ItemView {
	return ItemView{
		Title:         item.Title,
		Slug:          item.Slug,
		Price:         item.Price,
		DiscountPrice: item.DiscountPrice,
		Category:      item.Category,
		Label:         item.Label,
		Description:   item.Description,
		ImageURL:      item.ImageURL,
		CartURL:       "/api/v1/cart/items/" + item.Slug,
	}
}
