package cart

import (
	"context"
	"errors"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes order line persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindLine returns the order line for the item, or (nil, nil) when the item
// is not in the cart.
func (r *Repository) FindLine(ctx context.Context, orderID, itemID uuid.UUID) (*models.OrderItem, error) {
	var line models.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND item_id = ?", orderID, itemID).
		First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &line, nil
}

// CreateLine inserts a new order line.
func (r *Repository) CreateLine(ctx context.Context, line *models.OrderItem) error {
	return r.db.WithContext(ctx).Create(line).Error
}

// UpdateQuantity sets the line quantity.
func (r *Repository) UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", lineID).
		UpdateColumn("quantity", quantity).Error
}

// DeleteLine removes the line from the cart.
func (r *Repository) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", lineID).
		Delete(&models.OrderItem{}).Error
}

// MarkOrdered detaches all of the order's lines from the cart.
func (r *Repository) MarkOrdered(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("order_id = ?", orderID).
		UpdateColumn("ordered", true).Error
}
