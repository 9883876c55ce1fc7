package checkout

import (
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// SubmitRequest is the typed checkout form.
type SubmitRequest struct {
	UseDefaultShipping bool   `json:"use_default_shipping"`
	SetDefaultShipping bool   `json:"set_default_shipping"`
	ShippingAddress    string `json:"shipping_address"`
	ShippingAddress2   string `json:"shipping_address2"`
	ShippingCountry    string `json:"shipping_country"`
	ShippingZip        string `json:"shipping_zip"`

	SameBillingAddress bool   `json:"same_billing_address"`
	UseDefaultBilling  bool   `json:"use_default_billing"`
	SetDefaultBilling  bool   `json:"set_default_billing"`
	BillingAddress     string `json:"billing_address"`
	BillingAddress2    string `json:"billing_address2"`
	BillingCountry     string `json:"billing_country"`
	BillingZip         string `json:"billing_zip"`

	PaymentOption string `json:"payment_option" validate:"required,oneof=S P"`
}

// AddressView is an address rendered for the checkout page.
type AddressView struct {
	StreetAddress    string `json:"street_address"`
	ApartmentAddress string `json:"apartment_address"`
	Country          string `json:"country"`
	Zip              string `json:"zip"`
}

// PageView is the GET checkout payload: the open order plus any stored
// defaults the form can prefill from.
type PageView struct {
	Order           orders.SummaryView `json:"order"`
	DefaultShipping *AddressView       `json:"default_shipping,omitempty"`
	DefaultBilling  *AddressView       `json:"default_billing,omitempty"`
}

// SubmitResult tells the client which payment flow to enter.
type SubmitResult struct {
	RedirectTo string `json:"redirect_to"`
}

func addressViewFromModel(addr *models.Address) *AddressView {
	if addr == nil {
		return nil
	}
	return &AddressView{
		StreetAddress:    addr.StreetAddress,
		ApartmentAddress: addr.ApartmentAddress,
		Country:          addr.Country,
		Zip:              addr.Zip,
	}
}
