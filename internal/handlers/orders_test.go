package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/services"
)

type stubOrderService struct {
	lastOwner string
	orders    []domain.Order
	err       error
}

func (s *stubOrderService) List(ctx context.Context, ownerKey string) ([]domain.Order, error) {
	s.lastOwner = ownerKey
	if s.err != nil {
		return nil, s.err
	}
	return s.orders, nil
}

func (s *stubOrderService) Get(ctx context.Context, ownerKey, orderID string) (domain.Order, error) {
	s.lastOwner = ownerKey
	if s.err != nil {
		return domain.Order{}, s.err
	}
	for _, order := range s.orders {
		if order.OrderID == orderID {
			return order, nil
		}
	}
	return domain.Order{}, services.ErrOrderNotFound
}

func newOrderTestRouter(svc services.OrderService) chi.Router {
	h := NewOrderHandlers(nil, svc)
	r := chi.NewRouter()
	r.Route("/orders", h.Routes)
	return r
}

func TestListOrdersUsesCartKeyHeader(t *testing.T) {
	stub := &stubOrderService{orders: []domain.Order{{OrderID: "ORD-1", OwnerKey: "cart:abc"}}}
	router := newOrderTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("X-Cart-Key", "abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if stub.lastOwner != "cart:abc" {
		t.Fatalf("unexpected owner key %q", stub.lastOwner)
	}

	var payload orderListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if payload.Total != 1 || payload.Orders[0].OrderID != "ORD-1" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	router := newOrderTestRouter(&stubOrderService{})

	req := httptest.NewRequest(http.MethodGet, "/orders/ORD-9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetOrderReturnsOwnOrder(t *testing.T) {
	stub := &stubOrderService{orders: []domain.Order{{OrderID: "ORD-7", OwnerKey: "guest", Total: 9.99}}}
	router := newOrderTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/orders/ORD-7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var order domain.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if order.OrderID != "ORD-7" || order.Total != 9.99 {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestOrdersUnavailableWithoutService(t *testing.T) {
	router := newOrderTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
