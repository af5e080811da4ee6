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

type stubProductAdminService struct {
	products  []domain.ManagedProduct
	stats     domain.DashboardStats
	activity  domain.DashboardActivity
	created   services.ProductDraft
	lastQuery string
	err       error
}

func (s *stubProductAdminService) List(ctx context.Context, query string) ([]domain.ManagedProduct, error) {
	s.lastQuery = query
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

func (s *stubProductAdminService) Get(ctx context.Context, productID int) (domain.ManagedProduct, error) {
	if s.err != nil {
		return domain.ManagedProduct{}, s.err
	}
	for _, p := range s.products {
		if p.ID == productID {
			return p, nil
		}
	}
	return domain.ManagedProduct{}, services.ErrProductNotFound
}

func (s *stubProductAdminService) Create(ctx context.Context, draft services.ProductDraft) (domain.ManagedProduct, error) {
	s.created = draft
	if s.err != nil {
		return domain.ManagedProduct{}, s.err
	}
	return domain.ManagedProduct{ID: 1, Title: draft.Title, UnitPrice: draft.UnitPrice, Stock: draft.Stock}, nil
}

func (s *stubProductAdminService) Update(ctx context.Context, productID int, draft services.ProductDraft) (domain.ManagedProduct, error) {
	if s.err != nil {
		return domain.ManagedProduct{}, s.err
	}
	return domain.ManagedProduct{ID: productID, Title: draft.Title}, nil
}

func (s *stubProductAdminService) Delete(ctx context.Context, productID int) error {
	return s.err
}

func (s *stubProductAdminService) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	if s.err != nil {
		return domain.DashboardStats{}, s.err
	}
	return s.stats, nil
}

func (s *stubProductAdminService) ActivityFeed(ctx context.Context) (domain.DashboardActivity, error) {
	if s.err != nil {
		return domain.DashboardActivity{}, s.err
	}
	return s.activity, nil
}

func newAdminTestRouter(svc services.ProductAdminService) chi.Router {
	h := NewAdminHandlers(svc)
	r := chi.NewRouter()
	r.Route("/admin", h.Routes)
	return r
}

func TestAdminListForwardsQuery(t *testing.T) {
	stub := &stubProductAdminService{products: []domain.ManagedProduct{
		{ID: 1, Title: "Essence Mascara", Brand: "Essence", Category: "beauty"},
	}}
	router := newAdminTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/admin/products?q=mascara", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if stub.lastQuery != "mascara" {
		t.Fatalf("expected query forwarded to service, got %q", stub.lastQuery)
	}

	var payload productListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if payload.Total != 1 || payload.Products[0].ID != 1 {
		t.Fatalf("unexpected list result: %+v", payload)
	}
}

func TestAdminCreateProduct(t *testing.T) {
	stub := &stubProductAdminService{}
	router := newAdminTestRouter(stub)

	body := `{"title":"New Gadget","unitPrice":19.99,"stock":5,"category":"electronics"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.created.Title != "New Gadget" || stub.created.Stock != 5 {
		t.Fatalf("unexpected draft: %+v", stub.created)
	}
}

func TestAdminCreateRejectsInvalidDraft(t *testing.T) {
	stub := &stubProductAdminService{err: services.ErrProductInvalidInput}
	router := newAdminTestRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(`{"title":""}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAdminGetMissingProduct(t *testing.T) {
	router := newAdminTestRouter(&stubProductAdminService{})

	req := httptest.NewRequest(http.MethodGet, "/admin/products/9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAdminDeleteProduct(t *testing.T) {
	router := newAdminTestRouter(&stubProductAdminService{})

	req := httptest.NewRequest(http.MethodDelete, "/admin/products/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestAdminDashboard(t *testing.T) {
	stub := &stubProductAdminService{stats: domain.DashboardStats{
		ProductCount:    3,
		TotalStockValue: 120.5,
		AverageRating:   4.2,
		LowStockCount:   1,
	}}
	router := newAdminTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var stats domain.DashboardStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if stats.ProductCount != 3 || stats.LowStockCount != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestAdminDashboardActivity(t *testing.T) {
	stub := &stubProductAdminService{activity: domain.DashboardActivity{
		RecentUsers: []domain.ActivityUser{{ID: 1, Username: "emilys", FullName: "Emily Johnson"}},
		RecentCarts: []domain.ActivityCart{{ID: 7, UserID: 33, UserName: "Olivia Wilson", Total: 120.5, ItemCount: 5}},
	}}
	router := newAdminTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard/activity", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var activity domain.DashboardActivity
	if err := json.Unmarshal(rec.Body.Bytes(), &activity); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(activity.RecentUsers) != 1 || activity.RecentUsers[0].Username != "emilys" {
		t.Fatalf("unexpected recent users: %+v", activity.RecentUsers)
	}
	if len(activity.RecentCarts) != 1 || activity.RecentCarts[0].ItemCount != 5 {
		t.Fatalf("unexpected recent carts: %+v", activity.RecentCarts)
	}
}

func TestAdminDashboardActivityUnavailable(t *testing.T) {
	router := newAdminTestRouter(&stubProductAdminService{err: services.ErrProductUnavailable})

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard/activity", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}
