package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/payment"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubPaymentService struct {
	view     *payment.PageView
	result   *payment.Result
	err      error
	provider string
}

func (s *stubPaymentService) Page(ctx context.Context, userID uuid.UUID, provider string) (*payment.PageView, error) {
	s.provider = provider
	return s.view, s.err
}

func (s *stubPaymentService) Pay(ctx context.Context, userID uuid.UUID, provider string, req payment.PayRequest) (*payment.Result, error) {
	s.provider = provider
	return s.result, s.err
}

func TestPaymentPageSuccess(t *testing.T) {
	svc := &stubPaymentService{view: &payment.PageView{
		Provider: "stripe",
		Total:    decimal.RequireFromString("80.00"),
		Cards:    []payment.CardSummary{{Last4: "4242", Brand: "visa"}},
	}}
	router := chi.NewRouter()
	router.Get("/api/v1/payment/{provider}", PaymentPage(svc, nil))

	req := authedRequest(http.MethodGet, "/api/v1/payment/stripe", "")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.provider != "stripe" {
		t.Fatalf("expected provider stripe got %s", svc.provider)
	}
}

func TestPaymentPaySuccess(t *testing.T) {
	svc := &stubPaymentService{result: &payment.Result{
		RedirectTo: "/",
		Message:    "Your order was successful!",
		RefCode:    "REFCODE123456789012C",
	}}
	router := chi.NewRouter()
	router.Post("/api/v1/payment/{provider}", PaymentPay(svc, nil))

	req := authedRequest(http.MethodPost, "/api/v1/payment/stripe", `{"stripe_token":"tok_visa"}`)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data payment.Result `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Message != "Your order was successful!" {
		t.Fatalf("unexpected message %q", envelope.Data.Message)
	}
}

func TestPaymentPayLogsPaymentOption(t *testing.T) {
	var logs bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "api", Output: &logs})

	svc := &stubPaymentService{err: pkgerrors.New(pkgerrors.CodeDependency, "Network error")}
	router := chi.NewRouter()
	router.Post("/api/v1/payment/{provider}", PaymentPay(svc, logg))

	req := authedRequest(http.MethodPost, "/api/v1/payment/stripe", `{"stripe_token":"tok_visa"}`)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if !strings.Contains(logs.String(), `"payment_option":"stripe"`) {
		t.Fatalf("expected payment_option field in log output, got %s", logs.String())
	}
}

func TestPaymentPayDependencyError(t *testing.T) {
	svc := &stubPaymentService{err: pkgerrors.New(pkgerrors.CodeDependency, "Network error")}
	router := chi.NewRouter()
	router.Post("/api/v1/payment/{provider}", PaymentPay(svc, nil))

	req := authedRequest(http.MethodPost, "/api/v1/payment/stripe", `{"stripe_token":"tok_visa"}`)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Message != "Network error" {
		t.Fatalf("expected provider message passthrough got %q", envelope.Error.Message)
	}
}
