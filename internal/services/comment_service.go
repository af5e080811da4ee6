package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/repositories"
	"github.com/shopfront/api/internal/upstream/dummyjson"
)

var (
	errCommentRepositoryRequired = errors.New("comment service: repository is required")
	errCommentClockRequired      = errors.New("comment service: clock is required")
)

// ErrCommentInvalidInput indicates the caller supplied invalid input.
var ErrCommentInvalidInput = errors.New("comment service: invalid input")

// ErrCommentNotFound indicates the comment does not exist.
var ErrCommentNotFound = errors.New("comment service: not found")

// ErrCommentReadOnly indicates a mutation was attempted on a remote-origin comment.
var ErrCommentReadOnly = errors.New("comment service: comment is read-only")

// ErrCommentUnavailable indicates the comment service cannot fulfil the request.
var ErrCommentUnavailable = errors.New("comment service: unavailable")

const (
	maxCommentBodyLength = 2000
	localCommentPrefix   = "local-"
)

// RemoteCommentSource fetches read-only comment material from the upstream catalog.
type RemoteCommentSource interface {
	CommentsForPost(ctx context.Context, postID int) ([]dummyjson.Comment, error)
}

// ReviewSource fetches the reviews embedded in an upstream product document.
type ReviewSource interface {
	ProductReviews(ctx context.Context, productID int) ([]dummyjson.Review, error)
}

// CreateCommentCommand carries the inputs for authoring a local comment.
type CreateCommentCommand struct {
	ProductID  int
	Body       string
	Rating     *float64
	AuthorName string
}

// CommentService owns local comment CRUD and the merged display feed.
type CommentService interface {
	ListForProduct(ctx context.Context, productID int) ([]domain.Comment, error)
	Create(ctx context.Context, cmd CreateCommentCommand) (domain.Comment, error)
	Update(ctx context.Context, commentID, body string, rating *float64) (domain.Comment, error)
	Delete(ctx context.Context, commentID string) error
}

// CommentServiceDeps wires persistence and the remote feed for comments.
type CommentServiceDeps struct {
	Repository  repositories.CommentRepository
	Remote      RemoteCommentSource
	Reviews     ReviewSource
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
}

type commentService struct {
	repo    repositories.CommentRepository
	remote  RemoteCommentSource
	reviews ReviewSource
	now     func() time.Time
	newID   func() string
	logger  func(context.Context, string, map[string]any)
}

// NewCommentService constructs a CommentService enforcing dependency validation.
func NewCommentService(deps CommentServiceDeps) (CommentService, error) {
	if deps.Repository == nil {
		return nil, errCommentRepositoryRequired
	}
	if deps.Clock == nil {
		return nil, errCommentClockRequired
	}

	newID := deps.IDGenerator
	if newID == nil {
		newID = func() string { return localCommentPrefix + ulid.Make().String() }
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &commentService{
		repo:    deps.Repository,
		remote:  deps.Remote,
		reviews: deps.Reviews,
		now:     func() time.Time { return deps.Clock().UTC() },
		newID:   newID,
		logger:  logger,
	}, nil
}

// ListForProduct merges product reviews, the remote comment feed and local
// comments, in that order; local comments keep insertion order. Remote
// sources degrade silently: on upstream failure the local comments still
// serve.
func (s *commentService) ListForProduct(ctx context.Context, productID int) ([]domain.Comment, error) {
	if productID <= 0 {
		return nil, ErrCommentInvalidInput
	}

	local, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, s.translateRepoError(err)
	}

	merged := make([]domain.Comment, 0, len(local))

	if s.reviews != nil {
		reviews, err := s.reviews.ProductReviews(ctx, productID)
		if err != nil {
			s.logger(ctx, "comments.reviews_fetch_failed", map[string]any{
				"product_id": productID,
				"error":      err.Error(),
			})
		} else {
			for i, review := range reviews {
				rating := review.Rating
				merged = append(merged, domain.Comment{
					ID:         fmt.Sprintf("remote-review-%d-%d", productID, i),
					ProductID:  productID,
					Body:       review.Comment,
					Rating:     &rating,
					AuthorName: review.ReviewerName,
					CreatedAt:  review.Date,
					Origin:     domain.CommentOriginReview,
				})
			}
		}
	}

	if s.remote != nil {
		remote, err := s.remote.CommentsForPost(ctx, productID)
		if err != nil {
			s.logger(ctx, "comments.remote_fetch_failed", map[string]any{
				"product_id": productID,
				"error":      err.Error(),
			})
		} else {
			for _, comment := range remote {
				merged = append(merged, domain.Comment{
					ID:         fmt.Sprintf("remote-comment-%d", comment.ID),
					ProductID:  productID,
					Body:       comment.Body,
					AuthorName: comment.AuthorName,
					Origin:     domain.CommentOriginRemote,
				})
			}
		}
	}

	merged = append(merged, local...)
	return merged, nil
}

// Create authors a new local comment.
func (s *commentService) Create(ctx context.Context, cmd CreateCommentCommand) (domain.Comment, error) {
	body := strings.TrimSpace(cmd.Body)
	author := strings.TrimSpace(cmd.AuthorName)
	if cmd.ProductID <= 0 || body == "" || author == "" {
		return domain.Comment{}, ErrCommentInvalidInput
	}
	if len(body) > maxCommentBodyLength {
		return domain.Comment{}, ErrCommentInvalidInput
	}
	if cmd.Rating != nil && (*cmd.Rating < 0 || *cmd.Rating > 5) {
		return domain.Comment{}, ErrCommentInvalidInput
	}

	comment := domain.Comment{
		ID:         s.newID(),
		ProductID:  cmd.ProductID,
		Body:       body,
		Rating:     cmd.Rating,
		AuthorName: author,
		CreatedAt:  s.now(),
		Origin:     domain.CommentOriginLocal,
	}
	if err := s.repo.Insert(ctx, comment); err != nil {
		return domain.Comment{}, s.translateRepoError(err)
	}

	s.logger(ctx, "comments.created", map[string]any{
		"comment_id": comment.ID,
		"product_id": comment.ProductID,
	})
	return comment, nil
}

// Update edits a local comment. The edit refreshes CreatedAt as an edited
// marker.
func (s *commentService) Update(ctx context.Context, commentID, body string, rating *float64) (domain.Comment, error) {
	if !strings.HasPrefix(commentID, localCommentPrefix) {
		return domain.Comment{}, ErrCommentReadOnly
	}
	body = strings.TrimSpace(body)
	if body == "" || len(body) > maxCommentBodyLength {
		return domain.Comment{}, ErrCommentInvalidInput
	}
	if rating != nil && (*rating < 0 || *rating > 5) {
		return domain.Comment{}, ErrCommentInvalidInput
	}

	comment, err := s.repo.Get(ctx, commentID)
	if err != nil {
		return domain.Comment{}, s.translateRepoError(err)
	}

	comment.Body = body
	if rating != nil {
		comment.Rating = rating
	}
	comment.CreatedAt = s.now()

	if err := s.repo.Update(ctx, comment); err != nil {
		return domain.Comment{}, s.translateRepoError(err)
	}
	return comment, nil
}

// Delete removes a local comment.
func (s *commentService) Delete(ctx context.Context, commentID string) error {
	if !strings.HasPrefix(commentID, localCommentPrefix) {
		return ErrCommentReadOnly
	}
	if err := s.repo.Delete(ctx, commentID); err != nil {
		return s.translateRepoError(err)
	}
	s.logger(ctx, "comments.deleted", map[string]any{"comment_id": commentID})
	return nil
}

func (s *commentService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrCommentNotFound
		case repoErr.IsConflict():
			return ErrCommentInvalidInput
		}
		return ErrCommentUnavailable
	}
	return ErrCommentUnavailable
}
