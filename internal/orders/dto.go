package orders

import (
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// LineView is one cart line with its computed totals.
type LineView struct {
	Slug              string          `json:"slug"`
	Title             string          `json:"title"`
	Quantity          int             `json:"quantity"`
	Price             decimal.Decimal `json:"price"`
	LineTotal         decimal.Decimal `json:"line_total"`
	LineDiscountTotal decimal.Decimal `json:"line_discount_total"`
	AmountSaved       decimal.Decimal `json:"amount_saved"`
}

// SummaryView is the open order rendered for the order-summary page.
type SummaryView struct {
	Lines        []LineView       `json:"lines"`
	CouponCode   *string          `json:"coupon_code,omitempty"`
	CouponAmount *decimal.Decimal `json:"coupon_amount,omitempty"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
	Total        decimal.Decimal  `json:"total"`
}

// SummaryFromModel computes the order-summary view from a preloaded order.
func SummaryFromModel(order *models.Order) SummaryView {
	view := SummaryView{
		Lines:    make([]LineView, 0, len(order.Items)),
		Subtotal: pricing.OrderSubtotal(order),
		Total:    pricing.OrderTotal(order),
	}
	for _, line := range order.Items {
		view.Lines = append(view.Lines, LineView{
			Slug:              line.Item.Slug,
			Title:             line.Item.Title,
			Quantity:          line.Quantity,
			Price:             line.Item.Price,
			LineTotal:         pricing.LineTotal(line.Item, line.Quantity),
			LineDiscountTotal: pricing.LineDiscountTotal(line.Item, line.Quantity),
			AmountSaved:       pricing.AmountSaved(line.Item, line.Quantity),
		})
	}
	if order.Coupon != nil {
		view.CouponCode = &order.Coupon.Code
		view.CouponAmount = &order.Coupon.Amount
	}
	return view
}
