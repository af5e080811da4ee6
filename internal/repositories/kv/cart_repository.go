package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/platform/kvstore"
	"github.com/shopfront/api/internal/repositories"
)

// CartRepository stores one cart document per owner key.
type CartRepository struct {
	store kvstore.Store
}

// Get implements repositories.CartRepository.
func (r *CartRepository) Get(ctx context.Context, ownerKey string) (domain.Cart, error) {
	const op = "kv.carts.get"

	data, err := r.store.Get(ctx, cartCollection, ownerKey)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return domain.Cart{}, repositories.NewNotFoundError(op, fmt.Sprintf("cart %q not found", ownerKey))
	}
	if err != nil {
		return domain.Cart{}, repositories.NewUnavailableError(op, err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return domain.Cart{}, repositories.NewStoreError(op, repositories.StoreErrorUnknown, "corrupt cart document", err)
	}
	return cart, nil
}

// Save implements repositories.CartRepository.
func (r *CartRepository) Save(ctx context.Context, cart domain.Cart) error {
	const op = "kv.carts.save"

	if cart.OwnerKey == "" {
		return repositories.NewConflictError(op, "cart owner key required")
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return repositories.NewStoreError(op, repositories.StoreErrorUnknown, "encode cart document", err)
	}
	if err := r.store.Put(ctx, cartCollection, cart.OwnerKey, data); err != nil {
		return repositories.NewUnavailableError(op, err)
	}
	return nil
}

// Delete implements repositories.CartRepository.
func (r *CartRepository) Delete(ctx context.Context, ownerKey string) error {
	const op = "kv.carts.delete"

	if err := r.store.Delete(ctx, cartCollection, ownerKey); err != nil {
		return repositories.NewUnavailableError(op, err)
	}
	return nil
}
