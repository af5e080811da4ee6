package services

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/repositories"
	"github.com/shopfront/api/internal/upstream/dummyjson"
)

type stubProductRepository struct {
	products map[int]domain.ManagedProduct
}

func newStubProductRepository() *stubProductRepository {
	return &stubProductRepository{products: make(map[int]domain.ManagedProduct)}
}

func (r *stubProductRepository) List(ctx context.Context) ([]domain.ManagedProduct, error) {
	var out []domain.ManagedProduct
	for _, product := range r.products {
		out = append(out, product)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubProductRepository) Get(ctx context.Context, productID int) (domain.ManagedProduct, error) {
	product, ok := r.products[productID]
	if !ok {
		return domain.ManagedProduct{}, repositories.NewNotFoundError("stub.get", "missing")
	}
	return product, nil
}

func (r *stubProductRepository) Save(ctx context.Context, product domain.ManagedProduct) error {
	r.products[product.ID] = product
	return nil
}

func (r *stubProductRepository) Delete(ctx context.Context, productID int) error {
	if _, ok := r.products[productID]; !ok {
		return repositories.NewNotFoundError("stub.delete", "missing")
	}
	delete(r.products, productID)
	return nil
}

type stubRemoteDashboard struct {
	users    dummyjson.UserPage
	userByID map[int]dummyjson.User
	carts    []dummyjson.Cart
	comments dummyjson.CommentPage
	err      error
}

func (s *stubRemoteDashboard) Users(ctx context.Context, limit, skip int) (dummyjson.UserPage, error) {
	if s.err != nil {
		return dummyjson.UserPage{}, s.err
	}
	return s.users, nil
}

func (s *stubRemoteDashboard) User(ctx context.Context, id int) (dummyjson.User, error) {
	if s.err != nil {
		return dummyjson.User{}, s.err
	}
	user, ok := s.userByID[id]
	if !ok {
		return dummyjson.User{}, dummyjson.ErrNotFound
	}
	return user, nil
}

func (s *stubRemoteDashboard) Carts(ctx context.Context, limit, skip int) ([]dummyjson.Cart, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.carts, nil
}

func (s *stubRemoteDashboard) Comments(ctx context.Context, limit, skip int) (dummyjson.CommentPage, error) {
	if s.err != nil {
		return dummyjson.CommentPage{}, s.err
	}
	return s.comments, nil
}

func newTestProductService(t *testing.T, repo *stubProductRepository) ProductAdminService {
	t.Helper()
	return newTestProductServiceWithRemote(t, repo, nil)
}

func newTestProductServiceWithRemote(t *testing.T, repo *stubProductRepository, remote RemoteDashboardSource) ProductAdminService {
	t.Helper()
	service, err := NewProductAdminService(ProductAdminServiceDeps{
		Repository:        repo,
		Remote:            remote,
		LowStockThreshold: 10,
	})
	if err != nil {
		t.Fatalf("NewProductAdminService returned error: %v", err)
	}
	return service
}

func TestCreateAssignsNextID(t *testing.T) {
	repo := newStubProductRepository()
	repo.products[3] = domain.ManagedProduct{ID: 3, Title: "Existing"}
	repo.products[7] = domain.ManagedProduct{ID: 7, Title: "Existing"}
	service := newTestProductService(t, repo)

	product, err := service.Create(context.Background(), ProductDraft{Title: "New Product", UnitPrice: 10, Stock: 5})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if product.ID != 8 {
		t.Fatalf("expected id 8 (max+1), got %d", product.ID)
	}
}

func TestCreateFirstProductGetsIDOne(t *testing.T) {
	service := newTestProductService(t, newStubProductRepository())

	product, err := service.Create(context.Background(), ProductDraft{Title: "First", UnitPrice: 1})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if product.ID != 1 {
		t.Fatalf("expected id 1, got %d", product.ID)
	}
}

func TestCreateValidation(t *testing.T) {
	service := newTestProductService(t, newStubProductRepository())
	ctx := context.Background()

	cases := []ProductDraft{
		{Title: "  ", UnitPrice: 1},
		{Title: "X", UnitPrice: -1},
		{Title: "X", Stock: -1},
		{Title: "X", DiscountPercent: 101},
		{Title: "X", Rating: 5.5},
	}
	for i, draft := range cases {
		if _, err := service.Create(ctx, draft); !errors.Is(err, ErrProductInvalidInput) {
			t.Fatalf("case %d: expected ErrProductInvalidInput, got %v", i, err)
		}
	}
}

func TestUpdateMissingProduct(t *testing.T) {
	service := newTestProductService(t, newStubProductRepository())

	_, err := service.Update(context.Background(), 42, ProductDraft{Title: "X", UnitPrice: 1})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestUpdateReplacesFields(t *testing.T) {
	repo := newStubProductRepository()
	repo.products[1] = domain.ManagedProduct{ID: 1, Title: "Old", UnitPrice: 5, Stock: 2}
	service := newTestProductService(t, repo)

	product, err := service.Update(context.Background(), 1, ProductDraft{Title: "New", UnitPrice: 6, Stock: 3})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if product.Title != "New" || product.UnitPrice != 6 || product.Stock != 3 {
		t.Fatalf("unexpected updated product: %+v", product)
	}
}

func TestDeleteMissingProduct(t *testing.T) {
	service := newTestProductService(t, newStubProductRepository())

	if err := service.Delete(context.Background(), 42); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestDashboardStats(t *testing.T) {
	repo := newStubProductRepository()
	repo.products[1] = domain.ManagedProduct{ID: 1, Title: "A", UnitPrice: 10, Stock: 5, Rating: 4}
	repo.products[2] = domain.ManagedProduct{ID: 2, Title: "B", UnitPrice: 20, Stock: 50, Rating: 3}
	service := newTestProductService(t, repo)

	stats, err := service.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats returned error: %v", err)
	}
	if stats.ProductCount != 2 {
		t.Fatalf("expected product count 2, got %d", stats.ProductCount)
	}
	if stats.TotalStockValue != 1050 {
		t.Fatalf("expected stock value 1050, got %v", stats.TotalStockValue)
	}
	if stats.AverageRating != 3.5 {
		t.Fatalf("expected average rating 3.5, got %v", stats.AverageRating)
	}
	if stats.LowStockCount != 1 {
		t.Fatalf("expected low stock count 1, got %d", stats.LowStockCount)
	}
}

func TestListFiltersByQuery(t *testing.T) {
	repo := newStubProductRepository()
	repo.products[1] = domain.ManagedProduct{ID: 1, Title: "Essence Mascara", Brand: "Essence", Category: "beauty"}
	repo.products[2] = domain.ManagedProduct{ID: 2, Title: "Red Lipstick", Description: "A bold mascara alternative", Brand: "Chic", Category: "beauty"}
	repo.products[3] = domain.ManagedProduct{ID: 3, Title: "Powder Canister", Brand: "Velvet", Category: "beauty"}
	service := newTestProductService(t, repo)
	ctx := context.Background()

	all, err := service.List(ctx, "")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 products without query, got %d", len(all))
	}

	matched, err := service.List(ctx, "MASCARA")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("expected title and description matches, got %+v", matched)
	}

	byBrand, err := service.List(ctx, "velvet")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(byBrand) != 1 || byBrand[0].ID != 3 {
		t.Fatalf("expected brand match, got %+v", byBrand)
	}
}

func TestDashboardStatsIncludesUpstreamFeeds(t *testing.T) {
	repo := newStubProductRepository()
	repo.products[1] = domain.ManagedProduct{ID: 1, Title: "A", UnitPrice: 10, Stock: 5, Rating: 4}
	remote := &stubRemoteDashboard{
		users: dummyjson.UserPage{Total: 208},
		carts: []dummyjson.Cart{
			{ID: 1, UserID: 33, Total: 2500.5},
			{ID: 2, UserID: 97, Total: 1000.125},
		},
	}
	service := newTestProductServiceWithRemote(t, repo, remote)

	stats, err := service.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats returned error: %v", err)
	}
	if stats.TotalUsers != 208 {
		t.Fatalf("expected total users 208, got %d", stats.TotalUsers)
	}
	if stats.CartRevenue != 3500.63 {
		t.Fatalf("expected rounded cart revenue 3500.63, got %v", stats.CartRevenue)
	}
	if stats.ProductCount != 1 {
		t.Fatalf("expected local aggregation preserved, got %+v", stats)
	}
}

func TestDashboardStatsDegradesWhenUpstreamFails(t *testing.T) {
	repo := newStubProductRepository()
	repo.products[1] = domain.ManagedProduct{ID: 1, Title: "A", UnitPrice: 10, Stock: 5, Rating: 4}
	remote := &stubRemoteDashboard{err: dummyjson.ErrUnavailable}
	service := newTestProductServiceWithRemote(t, repo, remote)

	stats, err := service.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("expected local stats despite upstream failure, got %v", err)
	}
	if stats.ProductCount != 1 || stats.TotalUsers != 0 || stats.CartRevenue != 0 {
		t.Fatalf("expected zeroed upstream panels, got %+v", stats)
	}
}

func TestActivityFeed(t *testing.T) {
	remote := &stubRemoteDashboard{
		users: dummyjson.UserPage{Users: []dummyjson.User{
			{ID: 1, Username: "emilys", FirstName: "Emily", LastName: "Johnson", Email: "emily@x.com"},
		}},
		userByID: map[int]dummyjson.User{
			33: {ID: 33, FirstName: "Olivia", LastName: "Wilson"},
		},
		carts: []dummyjson.Cart{
			{ID: 7, UserID: 33, Total: 120.499, Lines: []dummyjson.CartLine{
				{ProductID: 1, Quantity: 2},
				{ProductID: 2, Quantity: 3},
			}},
			{ID: 8, UserID: 99, Total: 10},
		},
		comments: dummyjson.CommentPage{Comments: []dummyjson.Comment{
			{ID: 4, Body: "Nice", AuthorName: "Leo Rivera"},
		}},
	}
	service := newTestProductServiceWithRemote(t, newStubProductRepository(), remote)

	activity, err := service.ActivityFeed(context.Background())
	if err != nil {
		t.Fatalf("ActivityFeed returned error: %v", err)
	}
	if len(activity.RecentUsers) != 1 || activity.RecentUsers[0].FullName != "Emily Johnson" {
		t.Fatalf("unexpected recent users: %+v", activity.RecentUsers)
	}
	if len(activity.RecentCarts) != 2 {
		t.Fatalf("expected 2 recent carts, got %+v", activity.RecentCarts)
	}
	first := activity.RecentCarts[0]
	if first.UserName != "Olivia Wilson" || first.ItemCount != 5 || first.Total != 120.5 {
		t.Fatalf("unexpected cart projection: %+v", first)
	}
	if activity.RecentCarts[1].UserName != "" {
		t.Fatalf("expected blank name for unresolved cart owner, got %q", activity.RecentCarts[1].UserName)
	}
	if len(activity.RecentComments) != 1 || activity.RecentComments[0].AuthorName != "Leo Rivera" {
		t.Fatalf("unexpected recent comments: %+v", activity.RecentComments)
	}
}

func TestActivityFeedWithoutRemote(t *testing.T) {
	service := newTestProductService(t, newStubProductRepository())

	if _, err := service.ActivityFeed(context.Background()); !errors.Is(err, ErrProductUnavailable) {
		t.Fatalf("expected ErrProductUnavailable, got %v", err)
	}
}

func TestDashboardStatsEmptyCollection(t *testing.T) {
	service := newTestProductService(t, newStubProductRepository())

	stats, err := service.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats returned error: %v", err)
	}
	if stats.ProductCount != 0 || stats.AverageRating != 0 {
		t.Fatalf("expected zeroed stats, got %+v", stats)
	}
}
