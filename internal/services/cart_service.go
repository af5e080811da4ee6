package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/repositories"
)

var (
	errCartRepositoryRequired = errors.New("cart service: repository is required")
	errCartClockRequired      = errors.New("cart service: clock is required")
)

// ErrCartInvalidInput indicates the caller supplied invalid input.
var ErrCartInvalidInput = errors.New("cart service: invalid input")

// ErrCartNotFound indicates the requested cart line does not exist.
var ErrCartNotFound = errors.New("cart service: not found")

// ErrCartUnavailable indicates the cart service cannot fulfil the request due to backend issues.
var ErrCartUnavailable = errors.New("cart service: unavailable")

// ErrCartNoPending indicates a pending confirmation was requested with nothing staged.
var ErrCartNoPending = errors.New("cart service: no pending product")

// CartSummary pairs the cart aggregate with its derived totals.
type CartSummary struct {
	Cart      domain.Cart
	ItemCount int
	Total     float64
}

// ProductSnapshotter resolves the product snapshot captured into cart lines.
type ProductSnapshotter interface {
	ProductSnapshot(ctx context.Context, productID int) (domain.Product, error)
}

// CartService owns the cart aggregate lifecycle.
type CartService interface {
	GetCart(ctx context.Context, ownerKey string) (CartSummary, error)
	AddItem(ctx context.Context, ownerKey string, productID, quantity int) (CartSummary, error)
	SetQuantity(ctx context.Context, ownerKey string, productID, quantity int) (CartSummary, error)
	RemoveItem(ctx context.Context, ownerKey string, productID int) (CartSummary, error)
	Clear(ctx context.Context, ownerKey string) error
	StageProduct(ctx context.Context, ownerKey string, productID int) (CartSummary, error)
	ConfirmPending(ctx context.Context, ownerKey string, quantity int) (CartSummary, error)
	CancelPending(ctx context.Context, ownerKey string) (CartSummary, error)
}

// CartServiceDeps wires the repository and catalog dependencies for cart operations.
type CartServiceDeps struct {
	Repository repositories.CartRepository
	Catalog    ProductSnapshotter
	Clock      func() time.Time
	Logger     func(context.Context, string, map[string]any)
}

type cartService struct {
	repo    repositories.CartRepository
	catalog ProductSnapshotter
	now     func() time.Time
	logger  func(context.Context, string, map[string]any)
}

// NewCartService constructs a CartService enforcing dependency validation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Repository == nil {
		return nil, errCartRepositoryRequired
	}
	if deps.Clock == nil {
		return nil, errCartClockRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &cartService{
		repo:    deps.Repository,
		catalog: deps.Catalog,
		now:     func() time.Time { return deps.Clock().UTC() },
		logger:  logger,
	}, nil
}

// GetCart loads the cart for the owner, returning an empty cart when absent.
func (s *cartService) GetCart(ctx context.Context, ownerKey string) (CartSummary, error) {
	cart, err := s.loadOrEmpty(ctx, ownerKey)
	if err != nil {
		return CartSummary{}, err
	}
	return summarise(cart), nil
}

// AddItem merges quantity into an existing line for the product, or appends a
// new line captured from the current catalog snapshot.
func (s *cartService) AddItem(ctx context.Context, ownerKey string, productID, quantity int) (CartSummary, error) {
	if productID <= 0 || quantity <= 0 {
		return CartSummary{}, ErrCartInvalidInput
	}

	cart, err := s.loadOrEmpty(ctx, ownerKey)
	if err != nil {
		return CartSummary{}, err
	}

	merged := false
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == productID {
			cart.Lines[i].Quantity += quantity
			cart.Lines[i].Quantity = clampToStock(cart.Lines[i].Quantity, cart.Lines[i].StockLimit)
			merged = true
			break
		}
	}

	if !merged {
		line, err := s.snapshotLine(ctx, productID, quantity)
		if err != nil {
			return CartSummary{}, err
		}
		cart.Lines = append(cart.Lines, line)
	}

	if err := s.save(ctx, &cart); err != nil {
		return CartSummary{}, err
	}

	s.logger(ctx, "cart.item_added", map[string]any{
		"owner_key":  ownerKey,
		"product_id": productID,
		"quantity":   quantity,
		"merged":     merged,
	})
	return summarise(cart), nil
}

// SetQuantity replaces the quantity of an existing line. A quantity of zero
// or less removes the line.
func (s *cartService) SetQuantity(ctx context.Context, ownerKey string, productID, quantity int) (CartSummary, error) {
	if productID <= 0 {
		return CartSummary{}, ErrCartInvalidInput
	}

	cart, err := s.loadOrEmpty(ctx, ownerKey)
	if err != nil {
		return CartSummary{}, err
	}

	index := lineIndex(cart.Lines, productID)
	if index < 0 {
		return CartSummary{}, ErrCartNotFound
	}

	if quantity <= 0 {
		cart.Lines = append(cart.Lines[:index], cart.Lines[index+1:]...)
	} else {
		cart.Lines[index].Quantity = clampToStock(quantity, cart.Lines[index].StockLimit)
	}

	if err := s.save(ctx, &cart); err != nil {
		return CartSummary{}, err
	}
	return summarise(cart), nil
}

// RemoveItem drops the line for the product. Removing an absent line is not an error.
func (s *cartService) RemoveItem(ctx context.Context, ownerKey string, productID int) (CartSummary, error) {
	if productID <= 0 {
		return CartSummary{}, ErrCartInvalidInput
	}

	cart, err := s.loadOrEmpty(ctx, ownerKey)
	if err != nil {
		return CartSummary{}, err
	}

	if index := lineIndex(cart.Lines, productID); index >= 0 {
		cart.Lines = append(cart.Lines[:index], cart.Lines[index+1:]...)
		if err := s.save(ctx, &cart); err != nil {
			return CartSummary{}, err
		}
	}
	return summarise(cart), nil
}

// Clear removes every line and any pending product for the owner.
func (s *cartService) Clear(ctx context.Context, ownerKey string) error {
	if strings.TrimSpace(ownerKey) == "" {
		return ErrCartInvalidInput
	}
	if err := s.repo.Delete(ctx, ownerKey); err != nil {
		return s.translateRepoError(err)
	}
	s.logger(ctx, "cart.cleared", map[string]any{"owner_key": ownerKey})
	return nil
}

// StageProduct captures a product snapshot as the pending product, replacing
// any previously staged one.
func (s *cartService) StageProduct(ctx context.Context, ownerKey string, productID int) (CartSummary, error) {
	if productID <= 0 {
		return CartSummary{}, ErrCartInvalidInput
	}

	cart, err := s.loadOrEmpty(ctx, ownerKey)
	if err != nil {
		return CartSummary{}, err
	}

	line, err := s.snapshotLine(ctx, productID, 1)
	if err != nil {
		return CartSummary{}, err
	}

	cart.Pending = &domain.PendingProduct{
		ProductID:       line.ProductID,
		Title:           line.Title,
		UnitPrice:       line.UnitPrice,
		Thumbnail:       line.Thumbnail,
		DiscountPercent: line.DiscountPercent,
		StockLimit:      line.StockLimit,
	}

	if err := s.save(ctx, &cart); err != nil {
		return CartSummary{}, err
	}
	return summarise(cart), nil
}

// ConfirmPending promotes the staged product into a cart line with the given quantity.
func (s *cartService) ConfirmPending(ctx context.Context, ownerKey string, quantity int) (CartSummary, error) {
	if quantity <= 0 {
		return CartSummary{}, ErrCartInvalidInput
	}

	cart, err := s.loadOrEmpty(ctx, ownerKey)
	if err != nil {
		return CartSummary{}, err
	}
	if cart.Pending == nil {
		return CartSummary{}, ErrCartNoPending
	}

	pending := *cart.Pending
	cart.Pending = nil

	if index := lineIndex(cart.Lines, pending.ProductID); index >= 0 {
		cart.Lines[index].Quantity = clampToStock(cart.Lines[index].Quantity+quantity, cart.Lines[index].StockLimit)
	} else {
		cart.Lines = append(cart.Lines, domain.CartLineItem{
			ProductID:       pending.ProductID,
			Title:           pending.Title,
			UnitPrice:       pending.UnitPrice,
			Thumbnail:       pending.Thumbnail,
			Quantity:        clampToStock(quantity, pending.StockLimit),
			DiscountPercent: pending.DiscountPercent,
			StockLimit:      pending.StockLimit,
		})
	}

	if err := s.save(ctx, &cart); err != nil {
		return CartSummary{}, err
	}

	s.logger(ctx, "cart.pending_confirmed", map[string]any{
		"owner_key":  ownerKey,
		"product_id": pending.ProductID,
		"quantity":   quantity,
	})
	return summarise(cart), nil
}

// CancelPending discards the staged product without touching the lines.
func (s *cartService) CancelPending(ctx context.Context, ownerKey string) (CartSummary, error) {
	cart, err := s.loadOrEmpty(ctx, ownerKey)
	if err != nil {
		return CartSummary{}, err
	}

	if cart.Pending != nil {
		cart.Pending = nil
		if err := s.save(ctx, &cart); err != nil {
			return CartSummary{}, err
		}
	}
	return summarise(cart), nil
}

func (s *cartService) loadOrEmpty(ctx context.Context, ownerKey string) (domain.Cart, error) {
	ownerKey = strings.TrimSpace(ownerKey)
	if ownerKey == "" {
		return domain.Cart{}, ErrCartInvalidInput
	}

	cart, err := s.repo.Get(ctx, ownerKey)
	if err != nil {
		if isRepoNotFound(err) {
			return domain.Cart{OwnerKey: ownerKey}, nil
		}
		return domain.Cart{}, s.translateRepoError(err)
	}
	cart.OwnerKey = ownerKey
	return cart, nil
}

func (s *cartService) snapshotLine(ctx context.Context, productID, quantity int) (domain.CartLineItem, error) {
	if s.catalog == nil {
		return domain.CartLineItem{}, ErrCartUnavailable
	}

	product, err := s.catalog.ProductSnapshot(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrCatalogNotFound) {
			return domain.CartLineItem{}, ErrCartNotFound
		}
		return domain.CartLineItem{}, ErrCartUnavailable
	}

	line := domain.CartLineItem{
		ProductID: product.ID,
		Title:     product.Title,
		UnitPrice: product.Price,
		Thumbnail: product.Thumbnail,
		Quantity:  quantity,
	}
	if product.DiscountPercent > 0 {
		discount := product.DiscountPercent
		line.DiscountPercent = &discount
	}
	if product.Stock > 0 {
		stock := product.Stock
		line.StockLimit = &stock
		line.Quantity = clampToStock(line.Quantity, line.StockLimit)
	}
	return line, nil
}

func (s *cartService) save(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, *cart); err != nil {
		return s.translateRepoError(err)
	}
	return nil
}

func (s *cartService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		if repoErr.IsNotFound() {
			return ErrCartNotFound
		}
		return ErrCartUnavailable
	}
	return ErrCartUnavailable
}

func summarise(cart domain.Cart) CartSummary {
	return CartSummary{
		Cart:      cart,
		ItemCount: CartItemCount(cart.Lines),
		Total:     CartTotal(cart.Lines),
	}
}

func lineIndex(lines []domain.CartLineItem, productID int) int {
	for i := range lines {
		if lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func clampToStock(quantity int, stockLimit *int) int {
	if stockLimit != nil && *stockLimit > 0 && quantity > *stockLimit {
		return *stockLimit
	}
	return quantity
}
