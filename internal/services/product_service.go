package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/repositories"
	"github.com/shopfront/api/internal/upstream/dummyjson"
)

var errProductRepositoryRequired = errors.New("product service: repository is required")

// ErrProductInvalidInput indicates the caller supplied invalid input.
var ErrProductInvalidInput = errors.New("product service: invalid input")

// ErrProductNotFound indicates the managed product does not exist.
var ErrProductNotFound = errors.New("product service: not found")

// ErrProductUnavailable indicates the product service cannot fulfil the request.
var ErrProductUnavailable = errors.New("product service: unavailable")

// ProductDraft carries the writable fields of a managed product.
type ProductDraft struct {
	Title           string
	Description     string
	UnitPrice       float64
	DiscountPercent float64
	Rating          float64
	Stock           int
	Brand           string
	Category        string
	Thumbnail       string
	Images          []string
}

// RemoteDashboardSource feeds the dashboard panels that read from the
// upstream demo data: the user directory, demo carts and the global comment
// feed.
type RemoteDashboardSource interface {
	Users(ctx context.Context, limit, skip int) (dummyjson.UserPage, error)
	User(ctx context.Context, id int) (dummyjson.User, error)
	Carts(ctx context.Context, limit, skip int) ([]dummyjson.Cart, error)
	Comments(ctx context.Context, limit, skip int) (dummyjson.CommentPage, error)
}

// ProductAdminService owns the admin-managed product collection and the
// dashboard aggregations.
type ProductAdminService interface {
	List(ctx context.Context, query string) ([]domain.ManagedProduct, error)
	Get(ctx context.Context, productID int) (domain.ManagedProduct, error)
	Create(ctx context.Context, draft ProductDraft) (domain.ManagedProduct, error)
	Update(ctx context.Context, productID int, draft ProductDraft) (domain.ManagedProduct, error)
	Delete(ctx context.Context, productID int) error
	DashboardStats(ctx context.Context) (domain.DashboardStats, error)
	ActivityFeed(ctx context.Context) (domain.DashboardActivity, error)
}

// ProductAdminServiceDeps wires persistence and the upstream dashboard feeds
// for managed products. Remote is optional: without it the dashboard serves
// the local aggregation only and the activity feed is unavailable.
type ProductAdminServiceDeps struct {
	Repository        repositories.ManagedProductRepository
	Remote            RemoteDashboardSource
	LowStockThreshold int
	Logger            func(context.Context, string, map[string]any)
}

type productAdminService struct {
	repo         repositories.ManagedProductRepository
	remote       RemoteDashboardSource
	lowStockMark int
	logger       func(context.Context, string, map[string]any)
}

const (
	activityFeedLimit = 5
	cartSampleLimit   = 20
)

// NewProductAdminService constructs a ProductAdminService enforcing dependency validation.
func NewProductAdminService(deps ProductAdminServiceDeps) (ProductAdminService, error) {
	if deps.Repository == nil {
		return nil, errProductRepositoryRequired
	}

	lowStockMark := deps.LowStockThreshold
	if lowStockMark <= 0 {
		lowStockMark = 10
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &productAdminService{
		repo:         deps.Repository,
		remote:       deps.Remote,
		lowStockMark: lowStockMark,
		logger:       logger,
	}, nil
}

// List returns managed products ordered by id. A non-empty query keeps only
// products whose title, description, brand or category contains it,
// case-insensitively.
func (s *productAdminService) List(ctx context.Context, query string) ([]domain.ManagedProduct, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.translateRepoError(err)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return products, nil
	}
	filtered := make([]domain.ManagedProduct, 0, len(products))
	for _, product := range products {
		if strings.Contains(strings.ToLower(product.Title), query) ||
			strings.Contains(strings.ToLower(product.Description), query) ||
			strings.Contains(strings.ToLower(product.Brand), query) ||
			strings.Contains(strings.ToLower(product.Category), query) {
			filtered = append(filtered, product)
		}
	}
	return filtered, nil
}

// Get returns a single managed product.
func (s *productAdminService) Get(ctx context.Context, productID int) (domain.ManagedProduct, error) {
	if productID <= 0 {
		return domain.ManagedProduct{}, ErrProductInvalidInput
	}
	product, err := s.repo.Get(ctx, productID)
	if err != nil {
		return domain.ManagedProduct{}, s.translateRepoError(err)
	}
	return product, nil
}

// Create assigns the next identifier (highest existing id plus one) and
// persists the draft.
func (s *productAdminService) Create(ctx context.Context, draft ProductDraft) (domain.ManagedProduct, error) {
	if err := validateDraft(draft); err != nil {
		return domain.ManagedProduct{}, err
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return domain.ManagedProduct{}, s.translateRepoError(err)
	}

	nextID := 1
	for _, product := range existing {
		if product.ID >= nextID {
			nextID = product.ID + 1
		}
	}

	product := draftToProduct(nextID, draft)
	if err := s.repo.Save(ctx, product); err != nil {
		return domain.ManagedProduct{}, s.translateRepoError(err)
	}

	s.logger(ctx, "products.created", map[string]any{
		"product_id": product.ID,
		"title":      product.Title,
	})
	return product, nil
}

// Update replaces the writable fields of an existing managed product.
func (s *productAdminService) Update(ctx context.Context, productID int, draft ProductDraft) (domain.ManagedProduct, error) {
	if productID <= 0 {
		return domain.ManagedProduct{}, ErrProductInvalidInput
	}
	if err := validateDraft(draft); err != nil {
		return domain.ManagedProduct{}, err
	}

	if _, err := s.repo.Get(ctx, productID); err != nil {
		return domain.ManagedProduct{}, s.translateRepoError(err)
	}

	product := draftToProduct(productID, draft)
	if err := s.repo.Save(ctx, product); err != nil {
		return domain.ManagedProduct{}, s.translateRepoError(err)
	}
	return product, nil
}

// Delete removes a managed product.
func (s *productAdminService) Delete(ctx context.Context, productID int) error {
	if productID <= 0 {
		return ErrProductInvalidInput
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return s.translateRepoError(err)
	}
	s.logger(ctx, "products.deleted", map[string]any{"product_id": productID})
	return nil
}

// DashboardStats aggregates the collection for the admin dashboard.
func (s *productAdminService) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return domain.DashboardStats{}, s.translateRepoError(err)
	}

	stats := domain.DashboardStats{ProductCount: len(products)}
	var ratingSum float64
	for _, product := range products {
		stats.TotalStockValue += product.UnitPrice * float64(product.Stock)
		ratingSum += product.Rating
		if product.Stock < s.lowStockMark {
			stats.LowStockCount++
		}
	}
	if len(products) > 0 {
		stats.AverageRating = RoundPrice(ratingSum / float64(len(products)))
	}
	stats.TotalStockValue = RoundPrice(stats.TotalStockValue)

	// The upstream panels degrade silently: a remote failure leaves the
	// local aggregation intact.
	if s.remote != nil {
		if users, err := s.remote.Users(ctx, 1, 0); err != nil {
			s.logger(ctx, "dashboard.users_fetch_failed", map[string]any{"error": err.Error()})
		} else {
			stats.TotalUsers = users.Total
		}

		if carts, err := s.remote.Carts(ctx, cartSampleLimit, 0); err != nil {
			s.logger(ctx, "dashboard.carts_fetch_failed", map[string]any{"error": err.Error()})
		} else {
			var revenue float64
			for _, cart := range carts {
				revenue += cart.Total
			}
			stats.CartRevenue = RoundPrice(revenue)
		}
	}
	return stats, nil
}

// ActivityFeed assembles the recent-activity panel from the upstream demo
// data: the latest users, demo carts and global comments.
func (s *productAdminService) ActivityFeed(ctx context.Context) (domain.DashboardActivity, error) {
	if s.remote == nil {
		return domain.DashboardActivity{}, ErrProductUnavailable
	}

	users, err := s.remote.Users(ctx, activityFeedLimit, 0)
	if err != nil {
		s.logger(ctx, "dashboard.users_fetch_failed", map[string]any{"error": err.Error()})
		return domain.DashboardActivity{}, ErrProductUnavailable
	}
	carts, err := s.remote.Carts(ctx, activityFeedLimit, 0)
	if err != nil {
		s.logger(ctx, "dashboard.carts_fetch_failed", map[string]any{"error": err.Error()})
		return domain.DashboardActivity{}, ErrProductUnavailable
	}
	comments, err := s.remote.Comments(ctx, activityFeedLimit, 0)
	if err != nil {
		s.logger(ctx, "dashboard.comments_fetch_failed", map[string]any{"error": err.Error()})
		return domain.DashboardActivity{}, ErrProductUnavailable
	}

	activity := domain.DashboardActivity{
		RecentUsers:    make([]domain.ActivityUser, 0, len(users.Users)),
		RecentCarts:    make([]domain.ActivityCart, 0, len(carts)),
		RecentComments: make([]domain.ActivityComment, 0, len(comments.Comments)),
	}
	for _, user := range users.Users {
		activity.RecentUsers = append(activity.RecentUsers, domain.ActivityUser{
			ID:       user.ID,
			Username: user.Username,
			FullName: strings.TrimSpace(user.FirstName + " " + user.LastName),
			Email:    user.Email,
		})
	}

	// Cart owner names resolve through the user detail endpoint. A failed
	// lookup leaves the name blank.
	names := make(map[int]string)
	for _, cart := range carts {
		name, seen := names[cart.UserID]
		if !seen {
			if user, err := s.remote.User(ctx, cart.UserID); err == nil {
				name = strings.TrimSpace(user.FirstName + " " + user.LastName)
			}
			names[cart.UserID] = name
		}
		itemCount := 0
		for _, line := range cart.Lines {
			itemCount += line.Quantity
		}
		activity.RecentCarts = append(activity.RecentCarts, domain.ActivityCart{
			ID:        cart.ID,
			UserID:    cart.UserID,
			UserName:  name,
			Total:     RoundPrice(cart.Total),
			ItemCount: itemCount,
		})
	}
	for _, comment := range comments.Comments {
		activity.RecentComments = append(activity.RecentComments, domain.ActivityComment{
			ID:         comment.ID,
			Body:       comment.Body,
			AuthorName: comment.AuthorName,
		})
	}
	return activity, nil
}

func validateDraft(draft ProductDraft) error {
	if strings.TrimSpace(draft.Title) == "" {
		return ErrProductInvalidInput
	}
	if draft.UnitPrice < 0 || draft.Stock < 0 {
		return ErrProductInvalidInput
	}
	if draft.DiscountPercent < 0 || draft.DiscountPercent > 100 {
		return ErrProductInvalidInput
	}
	if draft.Rating < 0 || draft.Rating > 5 {
		return ErrProductInvalidInput
	}
	return nil
}

func draftToProduct(id int, draft ProductDraft) domain.ManagedProduct {
	return domain.ManagedProduct{
		ID:              id,
		Title:           strings.TrimSpace(draft.Title),
		Description:     strings.TrimSpace(draft.Description),
		UnitPrice:       draft.UnitPrice,
		DiscountPercent: draft.DiscountPercent,
		Rating:          draft.Rating,
		Stock:           draft.Stock,
		Brand:           strings.TrimSpace(draft.Brand),
		Category:        strings.TrimSpace(draft.Category),
		Thumbnail:       strings.TrimSpace(draft.Thumbnail),
		Images:          draft.Images,
	}
}

func (s *productAdminService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrProductNotFound
		case repoErr.IsConflict():
			return ErrProductInvalidInput
		}
		return ErrProductUnavailable
	}
	return ErrProductUnavailable
}
