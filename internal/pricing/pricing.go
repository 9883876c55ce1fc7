package pricing

import (
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// EffectiveUnitPrice returns the discount price when one is set and positive,
// otherwise the list price.
func EffectiveUnitPrice(item models.Item) decimal.Decimal {
	if item.DiscountPrice != nil && item.DiscountPrice.IsPositive() {
		return *item.DiscountPrice
	}
	return item.Price
}

// LineTotal is quantity times the list price.
func LineTotal(item models.Item, quantity int) decimal.Decimal {
	return item.Price.Mul(decimal.NewFromInt(int64(quantity)))
}

// LineDiscountTotal is quantity times the effective unit price.
func LineDiscountTotal(item models.Item, quantity int) decimal.Decimal {
	return EffectiveUnitPrice(item).Mul(decimal.NewFromInt(int64(quantity)))
}

// AmountSaved is the list total minus the discounted total, never negative
// for well-formed catalog data.
func AmountSaved(item models.Item, quantity int) decimal.Decimal {
	return LineTotal(item, quantity).Sub(LineDiscountTotal(item, quantity))
}

// OrderSubtotal sums the discounted line totals over the order's items.
// Items must be preloaded.
func OrderSubtotal(order *models.Order) decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range order.Items {
		subtotal = subtotal.Add(LineDiscountTotal(line.Item, line.Quantity))
	}
	return subtotal
}

// OrderTotal subtracts the coupon amount from the subtotal, floored at zero.
func OrderTotal(order *models.Order) decimal.Decimal {
	total := OrderSubtotal(order)
	if order.Coupon != nil {
		total = total.Sub(order.Coupon.Amount)
	}
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}
