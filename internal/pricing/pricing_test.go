package pricing

import (
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}

func TestLineTotalsWithoutDiscount(t *testing.T) {
	item := models.Item{Price: dec(t, "15.50")}

	require.True(t, dec(t, "46.50").Equal(LineTotal(item, 3)))
	require.True(t, dec(t, "46.50").Equal(LineDiscountTotal(item, 3)))
	require.True(t, decimal.Zero.Equal(AmountSaved(item, 3)))
}

func TestLineTotalsIgnoreNonPositiveDiscount(t *testing.T) {
	zero := decimal.Zero
	item := models.Item{Price: dec(t, "20.00"), DiscountPrice: &zero}

	require.True(t, dec(t, "40.00").Equal(LineDiscountTotal(item, 2)))
	require.True(t, decimal.Zero.Equal(AmountSaved(item, 2)))
}

func TestLineTotalsWithDiscount(t *testing.T) {
	discount := dec(t, "89.99")
	item := models.Item{Price: dec(t, "99.99"), DiscountPrice: &discount}

	require.True(t, dec(t, "299.97").Equal(LineTotal(item, 3)))
	require.True(t, dec(t, "269.97").Equal(LineDiscountTotal(item, 3)))
	require.True(t, dec(t, "30.00").Equal(AmountSaved(item, 3)))
}

func TestOrderSubtotalAccumulatesExactly(t *testing.T) {
	discount := dec(t, "0.10")
	item := models.Item{Price: dec(t, "0.30"), DiscountPrice: &discount}

	order := &models.Order{}
	for i := 0; i < 100; i++ {
		order.Items = append(order.Items, models.OrderItem{Item: item, Quantity: 1})
	}

	// 100 x 0.10 must be exactly 10.00, no float drift
	require.True(t, dec(t, "10.00").Equal(OrderSubtotal(order)))
}

func TestOrderTotalAppliesCoupon(t *testing.T) {
	item := models.Item{Price: dec(t, "25.00")}
	order := &models.Order{
		Items:  []models.OrderItem{{Item: item, Quantity: 2}},
		Coupon: &models.Coupon{Amount: dec(t, "10.00")},
	}

	require.True(t, dec(t, "40.00").Equal(OrderTotal(order)))
}

func TestOrderTotalFloorsAtZero(t *testing.T) {
	item := models.Item{Price: dec(t, "10.00")}
	order := &models.Order{
		Items:  []models.OrderItem{{Item: item, Quantity: 1}},
		Coupon: &models.Coupon{Amount: dec(t, "999.00")},
	}

	total := OrderTotal(order)
	require.True(t, decimal.Zero.Equal(total))
	require.False(t, total.IsNegative())
}
