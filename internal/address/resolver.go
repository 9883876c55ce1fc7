package address

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Form carries one side (shipping or billing) of a checkout submission.
type Form struct {
	UseDefault       bool
	SetDefault       bool
	StreetAddress    string
	ApartmentAddress string
	Country          string
	Zip              string
}

// Resolver turns checkout form flags into concrete address rows.
type Resolver struct {
	addresses *Repository
}

// NewResolver constructs a resolver over the address repository.
func NewResolver(repo *Repository) (*Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository is required")
	}
	return &Resolver{addresses: repo}, nil
}

// Resolve picks or creates the address for the given type. When tx is
// non-nil all writes run on it, so a failed checkout leaves no rows behind.
func (r *Resolver) Resolve(ctx context.Context, tx *gorm.DB, userID uuid.UUID, addressType enums.AddressType, form Form) (*models.Address, error) {
	repo := r.addresses.WithTx(tx)

	if form.UseDefault {
		addr, err := repo.FindDefault(ctx, userID, addressType)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find default address")
		}
		if addr == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, noDefaultMessage(addressType))
		}
		return addr, nil
	}

	street := strings.TrimSpace(form.StreetAddress)
	country := strings.TrimSpace(form.Country)
	zip := strings.TrimSpace(form.Zip)
	if street == "" || country == "" || zip == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, missingFieldsMessage(addressType))
	}

	if form.SetDefault {
		if err := repo.ClearDefault(ctx, userID, addressType); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear default address")
		}
	}

	addr := &models.Address{
		ID:               uuid.New(),
		UserID:           userID,
		StreetAddress:    street,
		ApartmentAddress: strings.TrimSpace(form.ApartmentAddress),
		Country:          country,
		Zip:              zip,
		AddressType:      addressType,
		Default:          form.SetDefault,
	}
	if err := repo.Create(ctx, addr); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create address")
	}
	return addr, nil
}

// CopyAsBilling clones the resolved shipping address into a fresh billing
// row so later edits to either address never leak into the other.
func (r *Resolver) CopyAsBilling(ctx context.Context, tx *gorm.DB, shipping *models.Address) (*models.Address, error) {
	billing := &models.Address{
		ID:               uuid.New(),
		UserID:           shipping.UserID,
		StreetAddress:    shipping.StreetAddress,
		ApartmentAddress: shipping.ApartmentAddress,
		Country:          shipping.Country,
		Zip:              shipping.Zip,
		AddressType:      enums.AddressTypeBilling,
	}
	if err := r.addresses.WithTx(tx).Create(ctx, billing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "copy billing address")
	}
	return billing, nil
}

func noDefaultMessage(addressType enums.AddressType) string {
	if addressType == enums.AddressTypeBilling {
		return "No default billing address available"
	}
	return "No default shipping address available"
}

func missingFieldsMessage(addressType enums.AddressType) string {
	if addressType == enums.AddressTypeBilling {
		return "Please fill in the required billing address fields"
	}
	return "Please fill in the required shipping address fields"
}
