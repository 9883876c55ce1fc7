package cart

import (
	"context"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/testdb"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := testdb.Open(t)
	svc, err := NewService(ServiceParams{
		ProductRepo: products.NewRepository(conn),
		OrderRepo:   orders.NewRepository(conn),
		LineRepo:    NewRepository(conn),
		CouponRepo:  coupons.NewRepository(conn),
		TxRunner:    testdb.TxRunner{Conn: conn},
	})
	require.NoError(t, err)
	return svc, conn
}

func TestAddItemCreatesOrderAndLine(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := testdb.MustCreateUser(t, conn)
	item := testdb.MustCreateItem(t, conn, "49.99", "")

	outcome, err := svc.AddItem(ctx, user.ID, item.Slug)
	require.NoError(t, err)
	require.Equal(t, "/order-summary", outcome.RedirectTo)
	require.Equal(t, "This item was added to your cart.", outcome.Message)

	var orderCount, lineCount int64
	require.NoError(t, conn.Table("orders").Where("user_id = ? AND ordered = ?", user.ID, false).Count(&orderCount).Error)
	require.NoError(t, conn.Table("order_items").Where("user_id = ?", user.ID).Count(&lineCount).Error)
	require.EqualValues(t, 1, orderCount)
	require.EqualValues(t, 1, lineCount)
}

func TestAddItemTwiceIncrementsQuantity(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := testdb.MustCreateUser(t, conn)
	item := testdb.MustCreateItem(t, conn, "49.99", "")

	_, err := svc.AddItem(ctx, user.ID, item.Slug)
	require.NoError(t, err)
	outcome, err := svc.AddItem(ctx, user.ID, item.Slug)
	require.NoError(t, err)
	require.Equal(t, "This item quantity was updated.", outcome.Message)

	var lineCount int64
	require.NoError(t, conn.Table("order_items").Where("user_id = ?", user.ID).Count(&lineCount).Error)
	require.EqualValues(t, 1, lineCount)

	var quantity int
	require.NoError(t, conn.Table("order_items").Where("user_id = ?", user.ID).Select("quantity").Scan(&quantity).Error)
	require.Equal(t, 2, quantity)
}

func TestAddItemUnknownSlug(t *testing.T) {
	svc, conn := newTestService(t)
	user := testdb.MustCreateUser(t, conn)

	_, err := svc.AddItem(context.Background(), user.ID, "no-such-item")
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestRemoveItemDeletesLine(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := testdb.MustCreateUser(t, conn)
	item := testdb.MustCreateItem(t, conn, "10.00", "")

	_, err := svc.AddItem(ctx, user.ID, item.Slug)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, user.ID, item.Slug)
	require.NoError(t, err)

	outcome, err := svc.RemoveItem(ctx, user.ID, item.Slug)
	require.NoError(t, err)
	require.Equal(t, "/order-summary", outcome.RedirectTo)
	require.Equal(t, "This item was removed from your cart.", outcome.Message)

	var lineCount int64
	require.NoError(t, conn.Table("order_items").Where("user_id = ?", user.ID).Count(&lineCount).Error)
	require.EqualValues(t, 0, lineCount)
}

func TestRemoveItemNotInCart(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := testdb.MustCreateUser(t, conn)
	inCart := testdb.MustCreateItem(t, conn, "10.00", "")
	other := testdb.MustCreateItem(t, conn, "20.00", "")

	_, err := svc.AddItem(ctx, user.ID, inCart.Slug)
	require.NoError(t, err)

	outcome, err := svc.RemoveItem(ctx, user.ID, other.Slug)
	require.NoError(t, err)
	require.Equal(t, "/products/"+other.Slug, outcome.RedirectTo)
	require.Equal(t, "This item was not in your cart", outcome.Message)
}

func TestRemoveItemNoOpenOrder(t *testing.T) {
	svc, conn := newTestService(t)
	user := testdb.MustCreateUser(t, conn)
	item := testdb.MustCreateItem(t, conn, "10.00", "")

	outcome, err := svc.RemoveItem(context.Background(), user.ID, item.Slug)
	require.NoError(t, err)
	require.Equal(t, "/products/"+item.Slug, outcome.RedirectTo)
	require.Equal(t, "You do not have an active order", outcome.Message)
}

func TestDecrementItemReducesQuantity(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := testdb.MustCreateUser(t, conn)
	item := testdb.MustCreateItem(t, conn, "10.00", "")

	_, err := svc.AddItem(ctx, user.ID, item.Slug)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, user.ID, item.Slug)
	require.NoError(t, err)

	outcome, err := svc.DecrementItem(ctx, user.ID, item.Slug)
	require.NoError(t, err)
	require.Equal(t, "This item quantity was updated.", outcome.Message)

	var quantity int
	require.NoError(t, conn.Table("order_items").Where("user_id = ?", user.ID).Select("quantity").Scan(&quantity).Error)
	require.Equal(t, 1, quantity)
}

func TestDecrementLastUnitDeletesLine(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := testdb.MustCreateUser(t, conn)
	item := testdb.MustCreateItem(t, conn, "10.00", "")

	_, err := svc.AddItem(ctx, user.ID, item.Slug)
	require.NoError(t, err)

	outcome, err := svc.DecrementItem(ctx, user.ID, item.Slug)
	require.NoError(t, err)
	require.Equal(t, "/order-summary", outcome.RedirectTo)

	var lineCount int64
	require.NoError(t, conn.Table("order_items").Where("user_id = ?", user.ID).Count(&lineCount).Error)
	require.EqualValues(t, 0, lineCount)
}

func TestApplyCouponAttachesKnownCode(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := testdb.MustCreateUser(t, conn)
	item := testdb.MustCreateItem(t, conn, "30.00", "")
	coupon := testdb.MustCreateCoupon(t, conn, "SAVE10", "10.00")

	_, err := svc.AddItem(ctx, user.ID, item.Slug)
	require.NoError(t, err)

	outcome, err := svc.ApplyCoupon(ctx, user.ID, "SAVE10")
	require.NoError(t, err)
	require.Equal(t, "/checkout", outcome.RedirectTo)
	require.Equal(t, "Successfully added coupon", outcome.Message)

	var couponID string
	require.NoError(t, conn.Table("orders").Where("user_id = ?", user.ID).Select("coupon_id").Scan(&couponID).Error)
	require.Equal(t, coupon.ID.String(), couponID)
}

func TestApplyCouponIgnoresUnknownCode(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := testdb.MustCreateUser(t, conn)
	item := testdb.MustCreateItem(t, conn, "30.00", "")

	_, err := svc.AddItem(ctx, user.ID, item.Slug)
	require.NoError(t, err)

	outcome, err := svc.ApplyCoupon(ctx, user.ID, "NOPE")
	require.NoError(t, err)
	require.Equal(t, "/checkout", outcome.RedirectTo)
	require.Empty(t, outcome.Message)

	var couponID *string
	require.NoError(t, conn.Table("orders").Where("user_id = ?", user.ID).Select("coupon_id").Scan(&couponID).Error)
	require.Nil(t, couponID)
}
