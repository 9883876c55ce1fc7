package refund

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/testdb"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := testdb.Open(t)
	svc, err := NewService(ServiceParams{
		OrderRepo:  orders.NewRepository(conn),
		RefundRepo: NewRepository(conn),
		TxRunner:   testdb.TxRunner{Conn: conn},
	})
	require.NoError(t, err)
	return svc, conn
}

func mustCreatePlacedOrder(t *testing.T, conn *gorm.DB, refCode string) *models.Order {
	t.Helper()
	user := testdb.MustCreateUser(t, conn)
	now := time.Now().UTC()
	order := &models.Order{
		ID:          uuid.New(),
		UserID:      user.ID,
		Ordered:     true,
		OrderedDate: &now,
		RefCode:     &refCode,
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func TestRequestCreatesRefundAndFlagsOrder(t *testing.T) {
	svc, conn := newTestService(t)
	order := mustCreatePlacedOrder(t, conn, "REFCODE123456789012A")

	result, err := svc.Request(context.Background(), Request{
		RefCode: "REFCODE123456789012A",
		Message: "Item arrived damaged",
		Email:   "buyer@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "Your request was received.", result.Message)

	var record models.Refund
	require.NoError(t, conn.First(&record, "order_id = ?", order.ID).Error)
	require.Equal(t, "Item arrived damaged", record.Reason)
	require.Equal(t, "buyer@example.com", record.Email)
	require.False(t, record.Granted)

	var flagged bool
	require.NoError(t, conn.Table("orders").Where("id = ?", order.ID).Select("refund_requested").Scan(&flagged).Error)
	require.True(t, flagged)
}

func TestRequestUnknownRefCode(t *testing.T) {
	svc, conn := newTestService(t)

	_, err := svc.Request(context.Background(), Request{
		RefCode: "DOESNOTEXIST00000000",
		Message: "anything",
		Email:   "buyer@example.com",
	})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
	require.Equal(t, "This order does not exist.", appErr.Message())

	var count int64
	require.NoError(t, conn.Table("refunds").Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestRequestEmailNotMatchedToOwner(t *testing.T) {
	svc, conn := newTestService(t)
	order := mustCreatePlacedOrder(t, conn, "REFCODE123456789012B")

	_, err := svc.Request(context.Background(), Request{
		RefCode: "REFCODE123456789012B",
		Message: "Wrong size",
		Email:   "someone-else@example.com",
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, conn.Table("refunds").Where("order_id = ?", order.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
