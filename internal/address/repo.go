package address

import (
	"context"
	"errors"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes address persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an address repo bound to the provided GORM DB.
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

// FindDefault returns the user's default address of the given type, or
// (nil, nil) when no default is set.
func (r *Repository) FindDefault(ctx context.Context, userID uuid.UUID, addressType enums.AddressType) (*models.Address, error) {
	var addr models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND address_type = ? AND is_default = ?", userID, addressType, true).
		First(&addr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &addr, nil
}

// ClearDefault unsets any current default of the given type for the user.
func (r *Repository) ClearDefault(ctx context.Context, userID uuid.UUID, addressType enums.AddressType) error {
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("user_id = ? AND address_type = ? AND is_default = ?", userID, addressType, true).
		UpdateColumn("is_default", false).Error
}

// Create inserts a new address.
func (r *Repository) Create(ctx context.Context, addr *models.Address) error {
	return r.db.WithContext(ctx).Create(addr).Error
}
