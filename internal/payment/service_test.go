package payment

import (
	"context"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/testdb"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubGateway struct {
	customer    *Customer
	cards       []CardSummary
	charge      *Charge
	chargeErr   error
	getErr      error
	createErr   error
	createCalls int
	getCalls    int
	lastCharge  ChargeRequest
}

func (g *stubGateway) CreateCustomer(ctx context.Context, email, sourceToken string) (*Customer, error) {
	g.createCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	return g.customer, nil
}

func (g *stubGateway) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	g.getCalls++
	if g.getErr != nil {
		return nil, g.getErr
	}
	return g.customer, nil
}

func (g *stubGateway) ListCards(ctx context.Context, customerID string) ([]CardSummary, error) {
	return g.cards, nil
}

func (g *stubGateway) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	g.lastCharge = req
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	return g.charge, nil
}

func newTestService(t *testing.T, gateway *stubGateway) (Service, *gorm.DB) {
	t.Helper()
	conn := testdb.Open(t)
	if gateway.charge == nil {
		gateway.charge = &Charge{ID: "ch_test", Card: &CardSummary{Last4: "4242", Brand: "visa"}}
	}
	svc, err := NewService(ServiceParams{
		OrderRepo:   orders.NewRepository(conn),
		UserRepo:    users.NewRepository(conn),
		LineRepo:    cart.NewRepository(conn),
		PaymentRepo: NewRepository(conn),
		Gateway:     gateway,
		TxRunner:    testdb.TxRunner{Conn: conn},
		Config:      config.PaymentConfig{Currency: "usd"},
	})
	require.NoError(t, err)
	return svc, conn
}

func mustCreatePayableOrder(t *testing.T, conn *gorm.DB, userID uuid.UUID, withBilling bool) *models.Order {
	t.Helper()
	option := enums.PaymentOptionStripe
	order := &models.Order{ID: uuid.New(), UserID: userID, PaymentOption: &option}
	if withBilling {
		billing := &models.Address{
			ID:            uuid.New(),
			UserID:        userID,
			StreetAddress: "9 Billing Rd",
			Country:       "US",
			Zip:           "10001",
			AddressType:   enums.AddressTypeBilling,
		}
		require.NoError(t, conn.Create(billing).Error)
		order.BillingAddressID = &billing.ID
	}
	require.NoError(t, conn.Create(order).Error)

	item := testdb.MustCreateItem(t, conn, "50.00", "40.00")
	line := &models.OrderItem{
		ID:       uuid.New(),
		UserID:   userID,
		OrderID:  order.ID,
		ItemID:   item.ID,
		Quantity: 2,
	}
	require.NoError(t, conn.Create(line).Error)
	return order
}

func TestPaySuccessPlacesOrder(t *testing.T) {
	gateway := &stubGateway{}
	svc, conn := newTestService(t, gateway)
	ctx := context.Background()
	user := testdb.MustCreateUser(t, conn)
	order := mustCreatePayableOrder(t, conn, user.ID, true)

	result, err := svc.Pay(ctx, user.ID, "stripe", PayRequest{StripeToken: "tok_visa"})
	require.NoError(t, err)
	require.Equal(t, "/", result.RedirectTo)
	require.Equal(t, "Your order was successful!", result.Message)
	require.Len(t, result.RefCode, 20)

	// 2 × 40.00 discounted units = 8000 cents.
	require.EqualValues(t, 8000, gateway.lastCharge.AmountCents)
	require.Equal(t, "tok_visa", gateway.lastCharge.SourceToken)

	var pay models.Payment
	require.NoError(t, conn.First(&pay, "order_id = ?", order.ID).Error)
	require.Equal(t, "ch_test", pay.ChargeRef)
	require.NotNil(t, pay.CardLast4)
	require.Equal(t, "4242", *pay.CardLast4)

	var stored models.Order
	require.NoError(t, conn.First(&stored, "id = ?", order.ID).Error)
	require.True(t, stored.Ordered)
	require.NotNil(t, stored.OrderedDate)
	require.NotNil(t, stored.RefCode)
	require.Equal(t, result.RefCode, *stored.RefCode)

	var unorderedLines int64
	require.NoError(t, conn.Table("order_items").
		Where("order_id = ? AND ordered = ?", order.ID, false).
		Count(&unorderedLines).Error)
	require.EqualValues(t, 0, unorderedLines)
}

func TestPayProviderErrorsMapToMessages(t *testing.T) {
	cases := []struct {
		name    string
		err     *GatewayError
		message string
	}{
		{"card declined", NewGatewayError(KindCardDeclined, "Your card was declined.", nil), "Your card was declined."},
		{"card declined without provider text", NewGatewayError(KindCardDeclined, "", nil), "Something went wrong. You were not charged. Please try again."},
		{"rate limit", NewGatewayError(KindRateLimit, "", nil), "Rate limit error"},
		{"invalid request", NewGatewayError(KindInvalidRequest, "", nil), "Invalid parameters"},
		{"authentication", NewGatewayError(KindAuthentication, "", nil), "Not authenticated"},
		{"network", NewGatewayError(KindNetwork, "", nil), "Network error"},
		{"generic", NewGatewayError(KindGeneric, "", nil), "Something went wrong. You were not charged. Please try again."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gateway := &stubGateway{chargeErr: tc.err}
			svc, conn := newTestService(t, gateway)
			user := testdb.MustCreateUser(t, conn)
			order := mustCreatePayableOrder(t, conn, user.ID, true)

			_, err := svc.Pay(context.Background(), user.ID, "stripe", PayRequest{StripeToken: "tok_visa"})
			require.Error(t, err)
			appErr := pkgerrors.As(err)
			require.NotNil(t, appErr)
			require.Equal(t, pkgerrors.CodeDependency, appErr.Code())
			require.Equal(t, tc.message, appErr.Message())

			var payments int64
			require.NoError(t, conn.Table("payments").Count(&payments).Error)
			require.EqualValues(t, 0, payments)

			var stored models.Order
			require.NoError(t, conn.First(&stored, "id = ?", order.ID).Error)
			require.False(t, stored.Ordered)
			require.Nil(t, stored.RefCode)
		})
	}
}

func TestPayRequiresBillingAddress(t *testing.T) {
	svc, conn := newTestService(t, &stubGateway{})
	user := testdb.MustCreateUser(t, conn)
	mustCreatePayableOrder(t, conn, user.ID, false)

	_, err := svc.Pay(context.Background(), user.ID, "stripe", PayRequest{StripeToken: "tok_visa"})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
	require.Equal(t, "You have not added a billing address", appErr.Message())
}

func TestPayRejectsEmptyToken(t *testing.T) {
	svc, conn := newTestService(t, &stubGateway{})
	user := testdb.MustCreateUser(t, conn)
	mustCreatePayableOrder(t, conn, user.ID, true)

	_, err := svc.Pay(context.Background(), user.ID, "stripe", PayRequest{})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	require.Equal(t, "Invalid data received", appErr.Message())
}

func TestPayRejectsMismatchedProvider(t *testing.T) {
	svc, conn := newTestService(t, &stubGateway{})
	user := testdb.MustCreateUser(t, conn)
	mustCreatePayableOrder(t, conn, user.ID, true)

	_, err := svc.Pay(context.Background(), user.ID, "paypal", PayRequest{StripeToken: "tok_visa"})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
}

func TestPayRequiresOpenOrder(t *testing.T) {
	svc, conn := newTestService(t, &stubGateway{})
	user := testdb.MustCreateUser(t, conn)

	_, err := svc.Pay(context.Background(), user.ID, "stripe", PayRequest{StripeToken: "tok_visa"})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
	require.Equal(t, "You do not have an active order", appErr.Message())
}

func TestPaySaveCreatesCustomerAndStoresRef(t *testing.T) {
	gateway := &stubGateway{customer: &Customer{ID: "cus_new"}}
	svc, conn := newTestService(t, gateway)
	user := testdb.MustCreateUser(t, conn)
	mustCreatePayableOrder(t, conn, user.ID, true)

	_, err := svc.Pay(context.Background(), user.ID, "stripe", PayRequest{StripeToken: "tok_visa", Save: true})
	require.NoError(t, err)
	require.Equal(t, 1, gateway.createCalls)
	require.Equal(t, "cus_new", gateway.lastCharge.CustomerID)
	require.Empty(t, gateway.lastCharge.SourceToken)

	var profile models.UserProfile
	require.NoError(t, conn.First(&profile, "user_id = ?", user.ID).Error)
	require.NotNil(t, profile.StripeCustomerID)
	require.Equal(t, "cus_new", *profile.StripeCustomerID)
	require.True(t, profile.OneClickPurchasing)
}

func TestPayUseDefaultChargesStoredCustomer(t *testing.T) {
	gateway := &stubGateway{customer: &Customer{ID: "cus_stored"}}
	svc, conn := newTestService(t, gateway)
	user := testdb.MustCreateUser(t, conn)
	mustCreatePayableOrder(t, conn, user.ID, true)
	require.NoError(t, conn.Model(&models.UserProfile{}).
		Where("user_id = ?", user.ID).
		UpdateColumn("stripe_customer_id", "cus_stored").Error)

	_, err := svc.Pay(context.Background(), user.ID, "stripe", PayRequest{UseDefault: true})
	require.NoError(t, err)
	require.Equal(t, 1, gateway.getCalls)
	require.Equal(t, "cus_stored", gateway.lastCharge.CustomerID)
}

func TestPayCustomerRetrieveFailureAborts(t *testing.T) {
	gateway := &stubGateway{getErr: NewGatewayError(KindNetwork, "", nil)}
	svc, conn := newTestService(t, gateway)
	user := testdb.MustCreateUser(t, conn)
	mustCreatePayableOrder(t, conn, user.ID, true)
	require.NoError(t, conn.Model(&models.UserProfile{}).
		Where("user_id = ?", user.ID).
		UpdateColumn("stripe_customer_id", "cus_stored").Error)

	_, err := svc.Pay(context.Background(), user.ID, "stripe", PayRequest{UseDefault: true})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, "Network error", appErr.Message())

	var payments int64
	require.NoError(t, conn.Table("payments").Count(&payments).Error)
	require.EqualValues(t, 0, payments)
}

func TestPageListsStoredCards(t *testing.T) {
	gateway := &stubGateway{cards: []CardSummary{{Last4: "1234", Brand: "visa"}}}
	svc, conn := newTestService(t, gateway)
	user := testdb.MustCreateUser(t, conn)
	mustCreatePayableOrder(t, conn, user.ID, true)
	require.NoError(t, conn.Model(&models.UserProfile{}).
		Where("user_id = ?", user.ID).
		UpdateColumns(map[string]any{
			"stripe_customer_id":   "cus_stored",
			"one_click_purchasing": true,
		}).Error)

	view, err := svc.Page(context.Background(), user.ID, "stripe")
	require.NoError(t, err)
	require.Equal(t, "stripe", view.Provider)
	require.True(t, view.Total.Equal(decimal.RequireFromString("80.00")))
	require.Len(t, view.Cards, 1)
	require.Equal(t, "1234", view.Cards[0].Last4)
}

func TestPageWithoutOneClickHidesCards(t *testing.T) {
	gateway := &stubGateway{cards: []CardSummary{{Last4: "1234", Brand: "visa"}}}
	svc, conn := newTestService(t, gateway)
	user := testdb.MustCreateUser(t, conn)
	mustCreatePayableOrder(t, conn, user.ID, true)

	view, err := svc.Page(context.Background(), user.ID, "stripe")
	require.NoError(t, err)
	require.Empty(t, view.Cards)
}
