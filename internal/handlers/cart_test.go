package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/services"
)

type stubCartService struct {
	lastOwner    string
	lastProduct  int
	lastQuantity int
	summary      services.CartSummary
	err          error
}

func (s *stubCartService) GetCart(ctx context.Context, ownerKey string) (services.CartSummary, error) {
	s.lastOwner = ownerKey
	return s.summary, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, ownerKey string, productID, quantity int) (services.CartSummary, error) {
	s.lastOwner = ownerKey
	s.lastProduct = productID
	s.lastQuantity = quantity
	return s.summary, s.err
}

func (s *stubCartService) SetQuantity(ctx context.Context, ownerKey string, productID, quantity int) (services.CartSummary, error) {
	s.lastOwner = ownerKey
	s.lastProduct = productID
	s.lastQuantity = quantity
	return s.summary, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, ownerKey string, productID int) (services.CartSummary, error) {
	s.lastOwner = ownerKey
	s.lastProduct = productID
	return s.summary, s.err
}

func (s *stubCartService) Clear(ctx context.Context, ownerKey string) error {
	s.lastOwner = ownerKey
	return s.err
}

func (s *stubCartService) StageProduct(ctx context.Context, ownerKey string, productID int) (services.CartSummary, error) {
	s.lastOwner = ownerKey
	s.lastProduct = productID
	return s.summary, s.err
}

func (s *stubCartService) ConfirmPending(ctx context.Context, ownerKey string, quantity int) (services.CartSummary, error) {
	s.lastOwner = ownerKey
	s.lastQuantity = quantity
	return s.summary, s.err
}

func (s *stubCartService) CancelPending(ctx context.Context, ownerKey string) (services.CartSummary, error) {
	s.lastOwner = ownerKey
	return s.summary, s.err
}

func newCartTestRouter(svc services.CartService) chi.Router {
	h := NewCartHandlers(nil, svc)
	r := chi.NewRouter()
	r.Route("/cart", h.Routes)
	return r
}

func TestGetCartResolvesOwnerFromHeader(t *testing.T) {
	stub := &stubCartService{summary: services.CartSummary{Cart: domain.Cart{OwnerKey: "cart:abc"}}}
	router := newCartTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("X-Cart-Key", "abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if stub.lastOwner != "cart:abc" {
		t.Fatalf("unexpected owner key %q", stub.lastOwner)
	}
}

func TestGetCartFallsBackToGuestOwner(t *testing.T) {
	stub := &stubCartService{}
	router := newCartTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if stub.lastOwner != "guest" {
		t.Fatalf("unexpected owner key %q", stub.lastOwner)
	}
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	stub := &stubCartService{}
	router := newCartTestRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"productId":3}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if stub.lastProduct != 3 || stub.lastQuantity != 1 {
		t.Fatalf("unexpected call: product=%d quantity=%d", stub.lastProduct, stub.lastQuantity)
	}
}

func TestAddItemRejectsUnknownFields(t *testing.T) {
	router := newCartTestRouter(&stubCartService{})

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"productId":3,"color":"red"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSetQuantityRejectsNonNumericID(t *testing.T) {
	router := newCartTestRouter(&stubCartService{})

	req := httptest.NewRequest(http.MethodPut, "/cart/items/abc", strings.NewReader(`{"quantity":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCartErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", services.ErrCartNotFound, http.StatusNotFound, "cart_item_not_found"},
		{"invalid", services.ErrCartInvalidInput, http.StatusBadRequest, "invalid_request"},
		{"no pending", services.ErrCartNoPending, http.StatusConflict, "no_pending_product"},
		{"unavailable", services.ErrCartUnavailable, http.StatusBadGateway, "cart_unavailable"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newCartTestRouter(&stubCartService{err: tc.err})

			req := httptest.NewRequest(http.MethodGet, "/cart", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var payload map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("invalid error body: %v", err)
			}
			if payload["error"] != tc.code {
				t.Fatalf("expected code %q, got %v", tc.code, payload["error"])
			}
		})
	}
}

func TestClearCartReturnsNoContent(t *testing.T) {
	stub := &stubCartService{}
	router := newCartTestRouter(stub)

	req := httptest.NewRequest(http.MethodDelete, "/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestCartResponseRoundsTotal(t *testing.T) {
	stub := &stubCartService{summary: services.CartSummary{
		Cart:      domain.Cart{OwnerKey: "guest"},
		ItemCount: 2,
		Total:     19.998,
	}}
	router := newCartTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var payload cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if payload.Total != 20 {
		t.Fatalf("expected rounded total 20, got %v", payload.Total)
	}
	if payload.Lines == nil {
		t.Fatal("expected lines to serialise as empty array")
	}
}
