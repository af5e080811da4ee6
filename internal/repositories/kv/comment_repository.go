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

// CommentRepository stores locally authored comments keyed by comment id.
type CommentRepository struct {
	store kvstore.Store
}

// ListByProduct implements repositories.CommentRepository. Results are
// returned in insertion order, oldest first.
func (r *CommentRepository) ListByProduct(ctx context.Context, productID int) ([]domain.Comment, error) {
	const op = "kv.comments.list"

	values, err := r.store.List(ctx, commentCollection)
	if err != nil {
		return nil, repositories.NewUnavailableError(op, err)
	}

	comments := make([]domain.Comment, 0, len(values))
	for key, data := range values {
		var comment domain.Comment
		if err := json.Unmarshal(data, &comment); err != nil {
			return nil, repositories.NewStoreError(op, repositories.StoreErrorUnknown, fmt.Sprintf("corrupt comment document %q", key), err)
		}
		if comment.ProductID == productID {
			comments = append(comments, comment)
		}
	}

	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			// ULID ids are monotonic, so id order is creation order.
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

// Get implements repositories.CommentRepository.
func (r *CommentRepository) Get(ctx context.Context, commentID string) (domain.Comment, error) {
	const op = "kv.comments.get"

	data, err := r.store.Get(ctx, commentCollection, commentID)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return domain.Comment{}, repositories.NewNotFoundError(op, fmt.Sprintf("comment %q not found", commentID))
	}
	if err != nil {
		return domain.Comment{}, repositories.NewUnavailableError(op, err)
	}

	var comment domain.Comment
	if err := json.Unmarshal(data, &comment); err != nil {
		return domain.Comment{}, repositories.NewStoreError(op, repositories.StoreErrorUnknown, "corrupt comment document", err)
	}
	return comment, nil
}

// Insert implements repositories.CommentRepository.
func (r *CommentRepository) Insert(ctx context.Context, comment domain.Comment) error {
	const op = "kv.comments.insert"

	if comment.ID == "" {
		return repositories.NewConflictError(op, "comment id required")
	}
	if _, err := r.store.Get(ctx, commentCollection, comment.ID); err == nil {
		return repositories.NewConflictError(op, fmt.Sprintf("comment %q already exists", comment.ID))
	} else if !errors.Is(err, kvstore.ErrKeyNotFound) {
		return repositories.NewUnavailableError(op, err)
	}
	return r.put(ctx, op, comment)
}

// Update implements repositories.CommentRepository.
func (r *CommentRepository) Update(ctx context.Context, comment domain.Comment) error {
	const op = "kv.comments.update"

	if _, err := r.Get(ctx, comment.ID); err != nil {
		return err
	}
	return r.put(ctx, op, comment)
}

// Delete implements repositories.CommentRepository.
func (r *CommentRepository) Delete(ctx context.Context, commentID string) error {
	const op = "kv.comments.delete"

	if _, err := r.Get(ctx, commentID); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, commentCollection, commentID); err != nil {
		return repositories.NewUnavailableError(op, err)
	}
	return nil
}

func (r *CommentRepository) put(ctx context.Context, op string, comment domain.Comment) error {
	data, err := json.Marshal(comment)
	if err != nil {
		return repositories.NewStoreError(op, repositories.StoreErrorUnknown, "encode comment document", err)
	}
	if err := r.store.Put(ctx, commentCollection, comment.ID, data); err != nil {
		return repositories.NewUnavailableError(op, err)
	}
	return nil
}
