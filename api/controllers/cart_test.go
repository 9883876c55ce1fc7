package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type stubCartService struct {
	outcome *cart.Outcome
	err     error
	slug    string
	code    string
}

func (s *stubCartService) AddItem(ctx context.Context, userID uuid.UUID, slug string) (*cart.Outcome, error) {
	s.slug = slug
	return s.outcome, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID uuid.UUID, slug string) (*cart.Outcome, error) {
	s.slug = slug
	return s.outcome, s.err
}

func (s *stubCartService) DecrementItem(ctx context.Context, userID uuid.UUID, slug string) (*cart.Outcome, error) {
	s.slug = slug
	return s.outcome, s.err
}

func (s *stubCartService) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*cart.Outcome, error) {
	s.code = code
	return s.outcome, s.err
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	return req.WithContext(ctx)
}

func TestCartAddSuccess(t *testing.T) {
	svc := &stubCartService{outcome: &cart.Outcome{
		RedirectTo: "/order-summary",
		Message:    "This item was added to your cart.",
	}}
	router := chi.NewRouter()
	router.Post("/api/v1/cart/items/{slug}", CartAdd(svc, nil))

	req := authedRequest(http.MethodPost, "/api/v1/cart/items/test-item", "")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.slug != "test-item" {
		t.Fatalf("expected slug test-item got %s", svc.slug)
	}

	var envelope struct {
		Data cart.Outcome `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.RedirectTo != "/order-summary" {
		t.Fatalf("expected order-summary redirect got %s", envelope.Data.RedirectTo)
	}
}

func TestCartAddRequiresAuth(t *testing.T) {
	svc := &stubCartService{outcome: &cart.Outcome{RedirectTo: "/order-summary"}}
	router := chi.NewRouter()
	router.Post("/api/v1/cart/items/{slug}", CartAdd(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items/test-item", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartApplyCouponDecodesBody(t *testing.T) {
	svc := &stubCartService{outcome: &cart.Outcome{RedirectTo: "/checkout"}}
	handler := CartApplyCoupon(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/cart/coupon", `{"code":"SAVE10"}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.code != "SAVE10" {
		t.Fatalf("expected code SAVE10 got %s", svc.code)
	}
}

func TestCartApplyCouponRejectsEmptyBody(t *testing.T) {
	svc := &stubCartService{outcome: &cart.Outcome{RedirectTo: "/checkout"}}
	handler := CartApplyCoupon(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/cart/coupon", `{}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
