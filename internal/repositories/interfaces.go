package repositories

import (
	"context"

	"github.com/shopfront/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Carts() CartRepository
	Comments() CommentRepository
	Products() ManagedProductRepository
	CheckoutSessions() CheckoutSessionRepository
	Orders() OrderRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// CartRepository persists the owner-scoped cart aggregate.
type CartRepository interface {
	// Get returns the cart for ownerKey. Should return a RepositoryError with
	// IsNotFound when no cart has been stored for the owner yet.
	Get(ctx context.Context, ownerKey string) (domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
	Delete(ctx context.Context, ownerKey string) error
}

// CommentRepository persists locally authored product comments.
type CommentRepository interface {
	ListByProduct(ctx context.Context, productID int) ([]domain.Comment, error)
	Get(ctx context.Context, commentID string) (domain.Comment, error)
	Insert(ctx context.Context, comment domain.Comment) error
	Update(ctx context.Context, comment domain.Comment) error
	Delete(ctx context.Context, commentID string) error
}

// ManagedProductRepository persists the admin-managed product collection.
type ManagedProductRepository interface {
	List(ctx context.Context) ([]domain.ManagedProduct, error)
	Get(ctx context.Context, productID int) (domain.ManagedProduct, error)
	Save(ctx context.Context, product domain.ManagedProduct) error
	Delete(ctx context.Context, productID int) error
}

// CheckoutSessionRepository persists in-flight checkout sessions.
type CheckoutSessionRepository interface {
	Get(ctx context.Context, sessionID string) (domain.CheckoutSession, error)
	Save(ctx context.Context, session domain.CheckoutSession) error
	Delete(ctx context.Context, sessionID string) error
}

// OrderRepository persists placed orders.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	Get(ctx context.Context, orderID string) (domain.Order, error)
	ListByOwner(ctx context.Context, ownerKey string) ([]domain.Order, error)
}
