package checkout

import (
	"context"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/address"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/testdb"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := testdb.Open(t)
	resolver, err := address.NewResolver(address.NewRepository(conn))
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		OrderRepo:   orders.NewRepository(conn),
		AddressRepo: address.NewRepository(conn),
		Resolver:    resolver,
		TxRunner:    testdb.TxRunner{Conn: conn},
	})
	require.NoError(t, err)
	return svc, conn
}

// collidingTxRunner fails the first N transactions with the provided error
// before delegating, standing in for a concurrent writer winning a unique
// index race.
type collidingTxRunner struct {
	inner testdb.TxRunner
	err   error
	fails int
	calls int
}

func (r *collidingTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	r.calls++
	if r.calls <= r.fails {
		return r.err
	}
	return r.inner.WithTx(ctx, fn)
}

// defaultAddressViolation provokes a real duplicate-default insert so tests
// exercise the driver's actual unique violation error.
func defaultAddressViolation(t *testing.T, conn *gorm.DB) error {
	t.Helper()
	userID := uuid.New()
	first := &models.Address{
		ID:            uuid.New(),
		UserID:        userID,
		StreetAddress: "1 Race St",
		Country:       "US",
		Zip:           "11111",
		AddressType:   enums.AddressTypeShipping,
		Default:       true,
	}
	require.NoError(t, conn.Create(first).Error)
	second := *first
	second.ID = uuid.New()
	err := conn.Create(&second).Error
	require.Error(t, err)
	require.NoError(t, conn.Where("user_id = ?", userID).Delete(&models.Address{}).Error)
	return err
}

func mustCreateOpenOrder(t *testing.T, conn *gorm.DB, userID uuid.UUID) *models.Order {
	t.Helper()
	order := &models.Order{ID: uuid.New(), UserID: userID}
	require.NoError(t, conn.Create(order).Error)
	item := testdb.MustCreateItem(t, conn, "25.00", "")
	line := &models.OrderItem{
		ID:       uuid.New(),
		UserID:   userID,
		OrderID:  order.ID,
		ItemID:   item.ID,
		Quantity: 1,
	}
	require.NoError(t, conn.Create(line).Error)
	return order
}

func newShippingRequest() SubmitRequest {
	return SubmitRequest{
		ShippingAddress:  "1 Main St",
		ShippingAddress2: "Apt 2",
		ShippingCountry:  "US",
		ShippingZip:      "90210",
		BillingAddress:   "9 Billing Rd",
		BillingCountry:   "US",
		BillingZip:       "10001",
		PaymentOption:    "S",
	}
}

func TestGetRequiresOpenOrder(t *testing.T) {
	svc, conn := newTestService(t)
	user := testdb.MustCreateUser(t, conn)

	_, err := svc.Get(context.Background(), user.ID)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
	require.Equal(t, "You do not have an active order", appErr.Message())
}

func TestGetIncludesDefaults(t *testing.T) {
	svc, conn := newTestService(t)
	user := testdb.MustCreateUser(t, conn)
	mustCreateOpenOrder(t, conn, user.ID)
	require.NoError(t, conn.Create(&models.Address{
		ID:            uuid.New(),
		UserID:        user.ID,
		StreetAddress: "1 Default St",
		Country:       "US",
		Zip:           "90210",
		AddressType:   enums.AddressTypeShipping,
		Default:       true,
	}).Error)

	view, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, view.DefaultShipping)
	require.Equal(t, "1 Default St", view.DefaultShipping.StreetAddress)
	require.Nil(t, view.DefaultBilling)
	require.Len(t, view.Order.Lines, 1)
}

func TestSubmitPersistsAddressesAndOption(t *testing.T) {
	svc, conn := newTestService(t)
	user := testdb.MustCreateUser(t, conn)
	order := mustCreateOpenOrder(t, conn, user.ID)

	result, err := svc.Submit(context.Background(), user.ID, newShippingRequest())
	require.NoError(t, err)
	require.Equal(t, "/payment/stripe", result.RedirectTo)

	var stored models.Order
	require.NoError(t, conn.First(&stored, "id = ?", order.ID).Error)
	require.NotNil(t, stored.ShippingAddressID)
	require.NotNil(t, stored.BillingAddressID)
	require.NotEqual(t, *stored.ShippingAddressID, *stored.BillingAddressID)
	require.NotNil(t, stored.PaymentOption)
	require.Equal(t, enums.PaymentOptionStripe, *stored.PaymentOption)
}

func TestSubmitPayPalRedirect(t *testing.T) {
	svc, conn := newTestService(t)
	user := testdb.MustCreateUser(t, conn)
	mustCreateOpenOrder(t, conn, user.ID)

	req := newShippingRequest()
	req.PaymentOption = "P"
	result, err := svc.Submit(context.Background(), user.ID, req)
	require.NoError(t, err)
	require.Equal(t, "/payment/paypal", result.RedirectTo)
}

func TestSubmitRejectsUnknownPaymentOption(t *testing.T) {
	svc, conn := newTestService(t)
	user := testdb.MustCreateUser(t, conn)
	mustCreateOpenOrder(t, conn, user.ID)

	req := newShippingRequest()
	req.PaymentOption = "X"
	_, err := svc.Submit(context.Background(), user.ID, req)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	require.Equal(t, "Invalid payment option selected", appErr.Message())
}

func TestSubmitRequiresOpenOrder(t *testing.T) {
	svc, conn := newTestService(t)
	user := testdb.MustCreateUser(t, conn)

	_, err := svc.Submit(context.Background(), user.ID, newShippingRequest())
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
}

func TestSubmitSameBillingCopiesShipping(t *testing.T) {
	svc, conn := newTestService(t)
	user := testdb.MustCreateUser(t, conn)
	order := mustCreateOpenOrder(t, conn, user.ID)

	req := newShippingRequest()
	req.SameBillingAddress = true
	req.BillingAddress = ""
	req.BillingCountry = ""
	req.BillingZip = ""
	_, err := svc.Submit(context.Background(), user.ID, req)
	require.NoError(t, err)

	var stored models.Order
	require.NoError(t, conn.First(&stored, "id = ?", order.ID).Error)
	require.NotNil(t, stored.BillingAddressID)

	var billing models.Address
	require.NoError(t, conn.First(&billing, "id = ?", *stored.BillingAddressID).Error)
	require.Equal(t, enums.AddressTypeBilling, billing.AddressType)
	require.Equal(t, "1 Main St", billing.StreetAddress)
}

func TestSubmitUseDefaultShippingWithoutOneRollsBack(t *testing.T) {
	svc, conn := newTestService(t)
	user := testdb.MustCreateUser(t, conn)
	order := mustCreateOpenOrder(t, conn, user.ID)

	req := newShippingRequest()
	req.UseDefaultShipping = true
	_, err := svc.Submit(context.Background(), user.ID, req)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	require.Equal(t, "No default shipping address available", appErr.Message())

	var addressCount int64
	require.NoError(t, conn.Table("addresses").Where("user_id = ?", user.ID).Count(&addressCount).Error)
	require.EqualValues(t, 0, addressCount)

	var stored models.Order
	require.NoError(t, conn.First(&stored, "id = ?", order.ID).Error)
	require.Nil(t, stored.ShippingAddressID)
	require.Nil(t, stored.BillingAddressID)
}

func TestSubmitRetriesDefaultAddressCollision(t *testing.T) {
	conn := testdb.Open(t)
	runner := &collidingTxRunner{
		inner: testdb.TxRunner{Conn: conn},
		err:   defaultAddressViolation(t, conn),
		fails: 1,
	}
	resolver, err := address.NewResolver(address.NewRepository(conn))
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		OrderRepo:   orders.NewRepository(conn),
		AddressRepo: address.NewRepository(conn),
		Resolver:    resolver,
		TxRunner:    runner,
	})
	require.NoError(t, err)

	user := testdb.MustCreateUser(t, conn)
	order := mustCreateOpenOrder(t, conn, user.ID)

	req := newShippingRequest()
	req.SetDefaultShipping = true
	result, err := svc.Submit(context.Background(), user.ID, req)
	require.NoError(t, err)
	require.Equal(t, "/payment/stripe", result.RedirectTo)
	require.Equal(t, 2, runner.calls)

	var stored models.Order
	require.NoError(t, conn.First(&stored, "id = ?", order.ID).Error)
	require.NotNil(t, stored.ShippingAddressID)
	require.NotNil(t, stored.BillingAddressID)
}

func TestSubmitDefaultAddressCollisionTwiceIsValidationError(t *testing.T) {
	conn := testdb.Open(t)
	runner := &collidingTxRunner{
		inner: testdb.TxRunner{Conn: conn},
		err:   defaultAddressViolation(t, conn),
		fails: 2,
	}
	resolver, err := address.NewResolver(address.NewRepository(conn))
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		OrderRepo:   orders.NewRepository(conn),
		AddressRepo: address.NewRepository(conn),
		Resolver:    resolver,
		TxRunner:    runner,
	})
	require.NoError(t, err)

	user := testdb.MustCreateUser(t, conn)
	mustCreateOpenOrder(t, conn, user.ID)

	req := newShippingRequest()
	req.SetDefaultShipping = true
	_, err = svc.Submit(context.Background(), user.ID, req)
	require.Error(t, err)
	require.Equal(t, 2, runner.calls)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	require.Equal(t, "Could not update your default address, please try again", appErr.Message())
}

func TestSubmitBillingFailureRollsBackShipping(t *testing.T) {
	svc, conn := newTestService(t)
	user := testdb.MustCreateUser(t, conn)
	mustCreateOpenOrder(t, conn, user.ID)

	req := newShippingRequest()
	req.BillingAddress = ""
	_, err := svc.Submit(context.Background(), user.ID, req)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, "Please fill in the required billing address fields", appErr.Message())

	var addressCount int64
	require.NoError(t, conn.Table("addresses").Where("user_id = ?", user.ID).Count(&addressCount).Error)
	require.EqualValues(t, 0, addressCount)
}
