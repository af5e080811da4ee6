package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/upstream/dummyjson"
)

type stubCatalogClient struct {
	lastCall string
	lastQ    string
	page     domain.ProductPage
	product  domain.Product
	reviews  []dummyjson.Review
	err      error
}

func (s *stubCatalogClient) Products(ctx context.Context, limit, skip int) (domain.ProductPage, error) {
	s.lastCall = "products"
	return s.page, s.err
}

func (s *stubCatalogClient) Product(ctx context.Context, id int) (domain.Product, []dummyjson.Review, error) {
	s.lastCall = "product"
	return s.product, s.reviews, s.err
}

func (s *stubCatalogClient) SearchProducts(ctx context.Context, q string, limit, skip int) (domain.ProductPage, error) {
	s.lastCall = "search"
	s.lastQ = q
	return s.page, s.err
}

func (s *stubCatalogClient) ProductsByCategory(ctx context.Context, category string, limit, skip int) (domain.ProductPage, error) {
	s.lastCall = "category"
	s.lastQ = category
	return s.page, s.err
}

func (s *stubCatalogClient) Categories(ctx context.Context) ([]dummyjson.Category, error) {
	s.lastCall = "categories"
	return []dummyjson.Category{{Slug: "beauty", Name: "Beauty"}}, s.err
}

func newTestCatalogService(t *testing.T, client *stubCatalogClient) CatalogService {
	t.Helper()
	service, err := NewCatalogService(CatalogServiceDeps{Client: client, DefaultPageSize: 10})
	if err != nil {
		t.Fatalf("NewCatalogService returned error: %v", err)
	}
	return service
}

func TestListProductsRoutesSearch(t *testing.T) {
	client := &stubCatalogClient{}
	service := newTestCatalogService(t, client)
	ctx := context.Background()

	if _, err := service.ListProducts(ctx, CatalogQuery{Search: "phone"}); err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}
	if client.lastCall != "search" || client.lastQ != "phone" {
		t.Fatalf("expected search route, got %s(%s)", client.lastCall, client.lastQ)
	}
}

func TestListProductsSearchBeatsCategory(t *testing.T) {
	client := &stubCatalogClient{}
	service := newTestCatalogService(t, client)

	if _, err := service.ListProducts(context.Background(), CatalogQuery{Search: "phone", Category: "beauty"}); err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}
	if client.lastCall != "search" {
		t.Fatalf("expected search to take precedence, got %s", client.lastCall)
	}
}

func TestListProductsRoutesCategory(t *testing.T) {
	client := &stubCatalogClient{}
	service := newTestCatalogService(t, client)

	if _, err := service.ListProducts(context.Background(), CatalogQuery{Category: "beauty"}); err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}
	if client.lastCall != "category" || client.lastQ != "beauty" {
		t.Fatalf("expected category route, got %s(%s)", client.lastCall, client.lastQ)
	}
}

func TestListProductsDefaultsToListing(t *testing.T) {
	client := &stubCatalogClient{}
	service := newTestCatalogService(t, client)

	if _, err := service.ListProducts(context.Background(), CatalogQuery{}); err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}
	if client.lastCall != "products" {
		t.Fatalf("expected plain listing, got %s", client.lastCall)
	}
}

func TestGetProductTranslatesErrors(t *testing.T) {
	client := &stubCatalogClient{err: dummyjson.ErrNotFound}
	service := newTestCatalogService(t, client)
	ctx := context.Background()

	if _, err := service.GetProduct(ctx, 99); !errors.Is(err, ErrCatalogNotFound) {
		t.Fatalf("expected ErrCatalogNotFound, got %v", err)
	}

	client.err = dummyjson.ErrUnavailable
	if _, err := service.GetProduct(ctx, 99); !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}

	if _, err := service.GetProduct(ctx, 0); !errors.Is(err, ErrCatalogInvalidInput) {
		t.Fatalf("expected ErrCatalogInvalidInput, got %v", err)
	}

	client.err = dummyjson.ErrUnauthorized
	if _, err := service.GetProduct(ctx, 99); !errors.Is(err, ErrCatalogUnauthorized) {
		t.Fatalf("expected ErrCatalogUnauthorized, got %v", err)
	}
}

func TestProductReviews(t *testing.T) {
	client := &stubCatalogClient{reviews: []dummyjson.Review{{Rating: 4, ReviewerName: "Leo"}}}
	service := newTestCatalogService(t, client)

	reviews, err := service.ProductReviews(context.Background(), 5)
	if err != nil {
		t.Fatalf("ProductReviews returned error: %v", err)
	}
	if len(reviews) != 1 || reviews[0].ReviewerName != "Leo" {
		t.Fatalf("unexpected reviews: %+v", reviews)
	}
}
