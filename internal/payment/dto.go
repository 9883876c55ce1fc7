package payment

import "github.com/shopspring/decimal"

// PayRequest is the typed payment form. StripeToken may be empty only when
// the buyer charges their stored default card.
type PayRequest struct {
	StripeToken string `json:"stripe_token"`
	Save        bool   `json:"save"`
	UseDefault  bool   `json:"use_default"`
}

// PageView is the GET payment payload: the amount due plus any stored cards
// the buyer can charge with one click.
type PageView struct {
	Provider string          `json:"provider"`
	Total    decimal.Decimal `json:"total"`
	Cards    []CardSummary   `json:"cards,omitempty"`
}

// Result reports a confirmed charge.
type Result struct {
	RedirectTo string `json:"redirect_to"`
	Message    string `json:"message"`
	RefCode    string `json:"ref_code"`
}
