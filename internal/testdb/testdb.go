// Package testdb boots an isolated in-memory sqlite database carrying the
// storefront schema for repository and service tests.
package testdb

import (
	"context"
	"fmt"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS user_profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  stripe_customer_id TEXT,
  one_click_purchasing INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS items (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  price NUMERIC NOT NULL,
  discount_price NUMERIC,
  category TEXT NOT NULL,
  label TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL,
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS coupons (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  amount NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS addresses (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  street_address TEXT NOT NULL,
  apartment_address TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL,
  zip TEXT NOT NULL,
  address_type TEXT NOT NULL,
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_addresses_one_default
  ON addresses (user_id, address_type) WHERE is_default;`,
	`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  ordered INTEGER NOT NULL DEFAULT 0,
  ordered_date DATETIME,
  coupon_id TEXT,
  shipping_address_id TEXT,
  billing_address_id TEXT,
  payment_option TEXT,
  ref_code TEXT,
  refund_requested INTEGER NOT NULL DEFAULT 0,
  refund_granted INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_one_open
  ON orders (user_id) WHERE NOT ordered;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_ref_code
  ON orders (ref_code) WHERE ref_code IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  item_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  ordered INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_order_items_order_item
  ON order_items (order_id, item_id);`,
	`CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  charge_ref TEXT NOT NULL,
  card_last4 TEXT,
  card_brand TEXT,
  created_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS refunds (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  reason TEXT NOT NULL,
  email TEXT NOT NULL,
  granted INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
}

// TxRunner runs callbacks inside a transaction on the test connection,
// mirroring the runtime db client's transaction surface.
type TxRunner struct {
	Conn *gorm.DB
}

// WithTx executes fn inside a transaction, rolling back on error.
func (r TxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.Conn.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// Open creates a fresh in-memory database with the storefront schema.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}

// MustCreateUser inserts a user with a fresh profile row.
func MustCreateUser(t *testing.T, conn *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("sf_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FirstName:    "Repo",
		LastName:     "Tester",
		IsActive:     true,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	profile := &models.UserProfile{ID: uuid.New(), UserID: user.ID}
	if err := conn.Create(profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return user
}

// MustCreateItem inserts a catalog item, optionally with a discount price.
func MustCreateItem(t *testing.T, conn *gorm.DB, price string, discount string) *models.Item {
	t.Helper()
	p, err := decimal.NewFromString(price)
	if err != nil {
		t.Fatalf("parse price: %v", err)
	}
	item := &models.Item{
		ID:          uuid.New(),
		Title:       "Test Item",
		Price:       p,
		Category:    enums.ItemCategoryShirt,
		Label:       enums.ItemLabelPrimary,
		Slug:        fmt.Sprintf("test-item-%s", uuid.NewString()),
		Description: "A test item",
	}
	if discount != "" {
		d, err := decimal.NewFromString(discount)
		if err != nil {
			t.Fatalf("parse discount: %v", err)
		}
		item.DiscountPrice = &d
	}
	if err := conn.Create(item).Error; err != nil {
		t.Fatalf("create item: %v", err)
	}
	return item
}

// MustCreateCoupon inserts a coupon with the given code and amount.
func MustCreateCoupon(t *testing.T, conn *gorm.DB, code string, amount string) *models.Coupon {
	t.Helper()
	a, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("parse amount: %v", err)
	}
	coupon := &models.Coupon{ID: uuid.New(), Code: code, Amount: a}
	if err := conn.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon: %v", err)
	}
	return coupon
}
