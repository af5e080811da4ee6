package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/repositories"
)

// ErrOrderInvalidInput indicates malformed caller input.
var ErrOrderInvalidInput = errors.New("order service: invalid input")

// ErrOrderNotFound indicates no order matched the requested ID for the caller.
var ErrOrderNotFound = errors.New("order service: not found")

// ErrOrderUnavailable indicates the backing store could not be reached.
var ErrOrderUnavailable = errors.New("order service: unavailable")

// OrderService exposes read access to placed orders. Orders are written by
// the checkout flow only.
type OrderService interface {
	List(ctx context.Context, ownerKey string) ([]domain.Order, error)
	Get(ctx context.Context, ownerKey, orderID string) (domain.Order, error)
}

// OrderServiceDeps carries the order service dependencies.
type OrderServiceDeps struct {
	Orders repositories.OrderRepository
	Logger func(ctx context.Context, event string, fields map[string]any)
}

type orderService struct {
	orders repositories.OrderRepository
	logger func(ctx context.Context, event string, fields map[string]any)
}

var errOrderRepositoryRequired = errors.New("order service: order repository is required")

// NewOrderService validates dependencies and returns an OrderService.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errOrderRepositoryRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &orderService{orders: deps.Orders, logger: logger}, nil
}

// List returns the caller's orders, newest first.
func (s *orderService) List(ctx context.Context, ownerKey string) ([]domain.Order, error) {
	ownerKey = strings.TrimSpace(ownerKey)
	if ownerKey == "" {
		return nil, ErrOrderInvalidInput
	}

	orders, err := s.orders.ListByOwner(ctx, ownerKey)
	if err != nil {
		return nil, s.translateRepoError(ctx, err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// Get returns one order. Orders belonging to a different owner read as
// not-found.
func (s *orderService) Get(ctx context.Context, ownerKey, orderID string) (domain.Order, error) {
	ownerKey = strings.TrimSpace(ownerKey)
	orderID = strings.TrimSpace(orderID)
	if ownerKey == "" || orderID == "" {
		return domain.Order{}, ErrOrderInvalidInput
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.translateRepoError(ctx, err)
	}
	if order.OwnerKey != ownerKey {
		return domain.Order{}, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) translateRepoError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if isRepoNotFound(err) {
		return ErrOrderNotFound
	}
	s.logger(ctx, "orders.store_error", map[string]any{
		"error": err.Error(),
	})
	return ErrOrderUnavailable
}
