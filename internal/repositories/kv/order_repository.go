package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/platform/kvstore"
	"github.com/shopfront/api/internal/repositories"
)

// OrderRepository stores placed orders keyed by order id.
type OrderRepository struct {
	store kvstore.Store
}

// Insert implements repositories.OrderRepository.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) error {
	const op = "kv.orders.insert"

	if order.OrderID == "" {
		return repositories.NewConflictError(op, "order id required")
	}
	if _, err := r.store.Get(ctx, orderCollection, order.OrderID); err == nil {
		return repositories.NewConflictError(op, fmt.Sprintf("order %q already exists", order.OrderID))
	} else if !errors.Is(err, kvstore.ErrKeyNotFound) {
		return repositories.NewUnavailableError(op, err)
	}

	data, err := json.Marshal(order)
	if err != nil {
		return repositories.NewStoreError(op, repositories.StoreErrorUnknown, "encode order document", err)
	}
	if err := r.store.Put(ctx, orderCollection, order.OrderID, data); err != nil {
		return repositories.NewUnavailableError(op, err)
	}
	return nil
}

// Get implements repositories.OrderRepository.
func (r *OrderRepository) Get(ctx context.Context, orderID string) (domain.Order, error) {
	const op = "kv.orders.get"

	data, err := r.store.Get(ctx, orderCollection, orderID)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return domain.Order{}, repositories.NewNotFoundError(op, fmt.Sprintf("order %q not found", orderID))
	}
	if err != nil {
		return domain.Order{}, repositories.NewUnavailableError(op, err)
	}

	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return domain.Order{}, repositories.NewStoreError(op, repositories.StoreErrorUnknown, "corrupt order document", err)
	}
	return order, nil
}

// ListByOwner implements repositories.OrderRepository. Results are ordered
// newest first.
func (r *OrderRepository) ListByOwner(ctx context.Context, ownerKey string) ([]domain.Order, error) {
	const op = "kv.orders.list"

	values, err := r.store.List(ctx, orderCollection)
	if err != nil {
		return nil, repositories.NewUnavailableError(op, err)
	}

	orders := make([]domain.Order, 0, len(values))
	for key, data := range values {
		var order domain.Order
		if err := json.Unmarshal(data, &order); err != nil {
			return nil, repositories.NewStoreError(op, repositories.StoreErrorUnknown, fmt.Sprintf("corrupt order document %q", key), err)
		}
		if order.OwnerKey == ownerKey {
			orders = append(orders, order)
		}
	}

	sort.Slice(orders, func(i, j int) bool { return orders[i].PlacedAt.After(orders[j].PlacedAt) })
	return orders, nil
}
