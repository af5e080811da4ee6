package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/platform/kvstore"
	"github.com/shopfront/api/internal/repositories"
)

// ManagedProductRepository stores admin-managed products keyed by numeric id.
type ManagedProductRepository struct {
	store kvstore.Store
}

// List implements repositories.ManagedProductRepository. Results are ordered
// by ascending id.
func (r *ManagedProductRepository) List(ctx context.Context) ([]domain.ManagedProduct, error) {
	const op = "kv.products.list"

	values, err := r.store.List(ctx, productCollection)
	if err != nil {
		return nil, repositories.NewUnavailableError(op, err)
	}

	products := make([]domain.ManagedProduct, 0, len(values))
	for key, data := range values {
		var product domain.ManagedProduct
		if err := json.Unmarshal(data, &product); err != nil {
			return nil, repositories.NewStoreError(op, repositories.StoreErrorUnknown, fmt.Sprintf("corrupt product document %q", key), err)
		}
		products = append(products, product)
	}

	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// Get implements repositories.ManagedProductRepository.
func (r *ManagedProductRepository) Get(ctx context.Context, productID int) (domain.ManagedProduct, error) {
	const op = "kv.products.get"

	data, err := r.store.Get(ctx, productCollection, strconv.Itoa(productID))
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return domain.ManagedProduct{}, repositories.NewNotFoundError(op, fmt.Sprintf("product %d not found", productID))
	}
	if err != nil {
		return domain.ManagedProduct{}, repositories.NewUnavailableError(op, err)
	}

	var product domain.ManagedProduct
	if err := json.Unmarshal(data, &product); err != nil {
		return domain.ManagedProduct{}, repositories.NewStoreError(op, repositories.StoreErrorUnknown, "corrupt product document", err)
	}
	return product, nil
}

// Save implements repositories.ManagedProductRepository.
func (r *ManagedProductRepository) Save(ctx context.Context, product domain.ManagedProduct) error {
	const op = "kv.products.save"

	if product.ID <= 0 {
		return repositories.NewConflictError(op, "product id must be positive")
	}
	data, err := json.Marshal(product)
	if err != nil {
		return repositories.NewStoreError(op, repositories.StoreErrorUnknown, "encode product document", err)
	}
	if err := r.store.Put(ctx, productCollection, strconv.Itoa(product.ID), data); err != nil {
		return repositories.NewUnavailableError(op, err)
	}
	return nil
}

// Delete implements repositories.ManagedProductRepository.
func (r *ManagedProductRepository) Delete(ctx context.Context, productID int) error {
	const op = "kv.products.delete"

	if _, err := r.Get(ctx, productID); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, productCollection, strconv.Itoa(productID)); err != nil {
		return repositories.NewUnavailableError(op, err)
	}
	return nil
}
