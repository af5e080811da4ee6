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

// CheckoutSessionRepository stores in-flight checkout sessions keyed by session id.
type CheckoutSessionRepository struct {
	store kvstore.Store
}

// Get implements repositories.CheckoutSessionRepository.
func (r *CheckoutSessionRepository) Get(ctx context.Context, sessionID string) (domain.CheckoutSession, error) {
	const op = "kv.checkout_sessions.get"

	data, err := r.store.Get(ctx, checkoutCollection, sessionID)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return domain.CheckoutSession{}, repositories.NewNotFoundError(op, fmt.Sprintf("checkout session %q not found", sessionID))
	}
	if err != nil {
		return domain.CheckoutSession{}, repositories.NewUnavailableError(op, err)
	}

	var session domain.CheckoutSession
	if err := json.Unmarshal(data, &session); err != nil {
		return domain.CheckoutSession{}, repositories.NewStoreError(op, repositories.StoreErrorUnknown, "corrupt checkout session document", err)
	}
	return session, nil
}

// Save implements repositories.CheckoutSessionRepository.
func (r *CheckoutSessionRepository) Save(ctx context.Context, session domain.CheckoutSession) error {
	const op = "kv.checkout_sessions.save"

	if session.ID == "" {
		return repositories.NewConflictError(op, "checkout session id required")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return repositories.NewStoreError(op, repositories.StoreErrorUnknown, "encode checkout session document", err)
	}
	if err := r.store.Put(ctx, checkoutCollection, session.ID, data); err != nil {
		return repositories.NewUnavailableError(op, err)
	}
	return nil
}

// Delete implements repositories.CheckoutSessionRepository.
func (r *CheckoutSessionRepository) Delete(ctx context.Context, sessionID string) error {
	const op = "kv.checkout_sessions.delete"

	if err := r.store.Delete(ctx, checkoutCollection, sessionID); err != nil {
		return repositories.NewUnavailableError(op, err)
	}
	return nil
}
