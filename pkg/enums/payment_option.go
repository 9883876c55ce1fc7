package enums

import "fmt"

// PaymentOption describes which provider the buyer picked at checkout.
type PaymentOption string

const (
	PaymentOptionStripe PaymentOption = "stripe"
	PaymentOptionPayPal PaymentOption = "paypal"
)

var validPaymentOptions = []PaymentOption{
	PaymentOptionStripe,
	PaymentOptionPayPal,
}

// Checkout forms submit single-letter codes for the provider choice.
const (
	PaymentOptionCodeStripe = "S"
	PaymentOptionCodePayPal = "P"
)

// String implements fmt.Stringer.
func (p PaymentOption) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentOption.
func (p PaymentOption) IsValid() bool {
	for _, candidate := range validPaymentOptions {
		if candidate == p {
			return true
		}
	}
	return false
}

// Code returns the single-letter form code for the option.
func (p PaymentOption) Code() string {
	switch p {
	case PaymentOptionStripe:
		return PaymentOptionCodeStripe
	case PaymentOptionPayPal:
		return PaymentOptionCodePayPal
	default:
		return ""
	}
}

// ParsePaymentOption converts raw input into a PaymentOption.
func ParsePaymentOption(value string) (PaymentOption, error) {
	for _, candidate := range validPaymentOptions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment option %q", value)
}

// ParsePaymentOptionCode converts a checkout form code into a PaymentOption.
func ParsePaymentOptionCode(code string) (PaymentOption, error) {
	switch code {
	case PaymentOptionCodeStripe:
		return PaymentOptionStripe, nil
	case PaymentOptionCodePayPal:
		return PaymentOptionPayPal, nil
	default:
		return "", fmt.Errorf("invalid payment option code %q", code)
	}
}
