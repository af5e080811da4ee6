// Package kv implements the repository interfaces on top of the embedded
// key-value store.
package kv

import (
	"context"

	"github.com/shopfront/api/internal/platform/kvstore"
	"github.com/shopfront/api/internal/repositories"
)

const (
	cartCollection     = "carts"
	commentCollection  = "comments"
	productCollection  = "managed_products"
	checkoutCollection = "checkout_sessions"
	orderCollection    = "orders"
)

// Registry wires kv-backed repositories around a shared store handle.
type Registry struct {
	store kvstore.Store

	carts    *CartRepository
	comments *CommentRepository
	products *ManagedProductRepository
	sessions *CheckoutSessionRepository
	orders   *OrderRepository
}

// NewRegistry constructs a registry over the given store.
func NewRegistry(store kvstore.Store) *Registry {
	return &Registry{
		store:    store,
		carts:    &CartRepository{store: store},
		comments: &CommentRepository{store: store},
		products: &ManagedProductRepository{store: store},
		sessions: &CheckoutSessionRepository{store: store},
		orders:   &OrderRepository{store: store},
	}
}

// Close implements repositories.Registry.
func (r *Registry) Close(ctx context.Context) error {
	return r.store.Close()
}

// Carts implements repositories.Registry.
func (r *Registry) Carts() repositories.CartRepository { return r.carts }

// Comments implements repositories.Registry.
func (r *Registry) Comments() repositories.CommentRepository { return r.comments }

// Products implements repositories.Registry.
func (r *Registry) Products() repositories.ManagedProductRepository { return r.products }

// CheckoutSessions implements repositories.Registry.
func (r *Registry) CheckoutSessions() repositories.CheckoutSessionRepository { return r.sessions }

// Orders implements repositories.Registry.
func (r *Registry) Orders() repositories.OrderRepository { return r.orders }
