package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/upstream/dummyjson"
)

var errCatalogClientRequired = errors.New("catalog service: upstream client is required")

// ErrCatalogInvalidInput indicates the caller supplied invalid input.
var ErrCatalogInvalidInput = errors.New("catalog service: invalid input")

// ErrCatalogNotFound indicates the requested catalog resource does not exist.
var ErrCatalogNotFound = errors.New("catalog service: not found")

// ErrCatalogUnavailable indicates the upstream catalog could not serve the request.
var ErrCatalogUnavailable = errors.New("catalog service: unavailable")

// ErrCatalogUnauthorized indicates the upstream rejected the proxied call
// with 401. The caller's session is treated as invalidated.
var ErrCatalogUnauthorized = errors.New("catalog service: unauthorized upstream")

// CatalogQuery filters and pages the product listing.
type CatalogQuery struct {
	Search   string
	Category string
	Limit    int
	Skip     int
}

// CatalogClient is the subset of the upstream client used by the catalog service.
type CatalogClient interface {
	Products(ctx context.Context, limit, skip int) (domain.ProductPage, error)
	Product(ctx context.Context, id int) (domain.Product, []dummyjson.Review, error)
	SearchProducts(ctx context.Context, q string, limit, skip int) (domain.ProductPage, error)
	ProductsByCategory(ctx context.Context, category string, limit, skip int) (domain.ProductPage, error)
	Categories(ctx context.Context) ([]dummyjson.Category, error)
}

// CatalogService proxies reads against the upstream product catalog.
type CatalogService interface {
	ListProducts(ctx context.Context, query CatalogQuery) (domain.ProductPage, error)
	GetProduct(ctx context.Context, productID int) (domain.Product, error)
	ListCategories(ctx context.Context) ([]dummyjson.Category, error)
	ProductSnapshot(ctx context.Context, productID int) (domain.Product, error)
	ProductReviews(ctx context.Context, productID int) ([]dummyjson.Review, error)
}

// CatalogServiceDeps wires the upstream client for catalog reads.
type CatalogServiceDeps struct {
	Client          CatalogClient
	DefaultPageSize int
	Logger          func(context.Context, string, map[string]any)
}

type catalogService struct {
	client   CatalogClient
	pageSize int
	logger   func(context.Context, string, map[string]any)
}

// NewCatalogService constructs a CatalogService enforcing dependency validation.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Client == nil {
		return nil, errCatalogClientRequired
	}

	pageSize := deps.DefaultPageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &catalogService{
		client:   deps.Client,
		pageSize: pageSize,
		logger:   logger,
	}, nil
}

// ListProducts serves the paged listing, routing search and category filters
// to their dedicated upstream endpoints. Search takes precedence over category.
func (s *catalogService) ListProducts(ctx context.Context, query CatalogQuery) (domain.ProductPage, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = s.pageSize
	}
	skip := query.Skip
	if skip < 0 {
		skip = 0
	}

	search := strings.TrimSpace(query.Search)
	category := strings.TrimSpace(query.Category)

	var (
		page domain.ProductPage
		err  error
	)
	switch {
	case search != "":
		page, err = s.client.SearchProducts(ctx, search, limit, skip)
	case category != "":
		page, err = s.client.ProductsByCategory(ctx, category, limit, skip)
	default:
		page, err = s.client.Products(ctx, limit, skip)
	}
	if err != nil {
		return domain.ProductPage{}, s.translateClientError(ctx, "catalog.list_failed", err)
	}
	return page, nil
}

// GetProduct fetches a single product by identifier.
func (s *catalogService) GetProduct(ctx context.Context, productID int) (domain.Product, error) {
	if productID <= 0 {
		return domain.Product{}, ErrCatalogInvalidInput
	}
	product, _, err := s.client.Product(ctx, productID)
	if err != nil {
		return domain.Product{}, s.translateClientError(ctx, "catalog.get_failed", err)
	}
	return product, nil
}

// ListCategories fetches the category directory.
func (s *catalogService) ListCategories(ctx context.Context) ([]dummyjson.Category, error) {
	categories, err := s.client.Categories(ctx)
	if err != nil {
		return nil, s.translateClientError(ctx, "catalog.categories_failed", err)
	}
	return categories, nil
}

// ProductSnapshot resolves the point-in-time product state used for cart lines.
func (s *catalogService) ProductSnapshot(ctx context.Context, productID int) (domain.Product, error) {
	return s.GetProduct(ctx, productID)
}

// ProductReviews fetches the reviews embedded in the product document.
func (s *catalogService) ProductReviews(ctx context.Context, productID int) ([]dummyjson.Review, error) {
	if productID <= 0 {
		return nil, ErrCatalogInvalidInput
	}
	_, reviews, err := s.client.Product(ctx, productID)
	if err != nil {
		return nil, s.translateClientError(ctx, "catalog.reviews_failed", err)
	}
	return reviews, nil
}

func (s *catalogService) translateClientError(ctx context.Context, event string, err error) error {
	switch {
	case errors.Is(err, dummyjson.ErrNotFound):
		return ErrCatalogNotFound
	case errors.Is(err, dummyjson.ErrUnauthorized):
		s.logger(ctx, "catalog.upstream_unauthorized", map[string]any{"error": err.Error()})
		return ErrCatalogUnauthorized
	default:
		s.logger(ctx, event, map[string]any{"error": err.Error()})
		return ErrCatalogUnavailable
	}
}
