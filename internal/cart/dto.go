package cart

// Outcome tells the client where to go next after a cart mutation, with an
// optional flash-style message.
type Outcome struct {
	RedirectTo string `json:"redirect_to"`
	Message    string `json:"message,omitempty"`
}

// AddCouponRequest is the typed coupon payload.
type AddCouponRequest struct {
	Code string `json:"code" validate:"required"`
}
