package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CartAdd puts one unit of the item into the buyer's cart.
func CartAdd(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartMutation(svc, logg, cart.Service.AddItem)
}

// CartRemove drops the whole line from the cart.
func CartRemove(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartMutation(svc, logg, cart.Service.RemoveItem)
}

// CartDecrement removes a single unit from the line.
func CartDecrement(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartMutation(svc, logg, cart.Service.DecrementItem)
}

func cartMutation(svc cart.Service, logg *logger.Logger, op func(cart.Service, context.Context, uuid.UUID, string) (*cart.Outcome, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := op(svc, r.Context(), userID, chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, outcome)
	}
}

// CartApplyCoupon attaches a coupon code to the open order.
func CartApplyCoupon(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cart.AddCouponRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.ApplyCoupon(r.Context(), userID, body.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, outcome)
	}
}
