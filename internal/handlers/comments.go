package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shopfront/api/internal/platform/auth"
	"github.com/shopfront/api/internal/platform/httpx"
	"github.com/shopfront/api/internal/services"
)

const maxCommentBodySize = 8 * 1024

// CommentHandlers exposes the merged comment feed and local comment CRUD.
// Remote comments and product reviews are read-only; only locally authored
// comments accept mutations.
type CommentHandlers struct {
	authn    *auth.Authenticator
	comments services.CommentService
}

// NewCommentHandlers constructs the comment endpoint handlers.
func NewCommentHandlers(authn *auth.Authenticator, comments services.CommentService) *CommentHandlers {
	return &CommentHandlers{authn: authn, comments: comments}
}

// Routes wires the comment endpoints onto the API root. The listing is
// public; authoring and mutation require a session.
func (h *CommentHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}

	r.Get("/products/{productId}/comments", h.listForProduct)

	if h.authn != nil {
		r.Group(func(g chi.Router) {
			g.Use(h.authn.RequireSession())
			g.Post("/products/{productId}/comments", h.create)
			g.Put("/comments/{commentId}", h.update)
			g.Delete("/comments/{commentId}", h.delete)
		})
		return
	}
	r.Post("/products/{productId}/comments", h.create)
	r.Put("/comments/{commentId}", h.update)
	r.Delete("/comments/{commentId}", h.delete)
}

type createCommentRequest struct {
	Body   string   `json:"body"`
	Rating *float64 `json:"rating,omitempty"`
}

type updateCommentRequest struct {
	Body   string   `json:"body"`
	Rating *float64 `json:"rating,omitempty"`
}

func (h *CommentHandlers) listForProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.comments == nil {
		writeCommentsUnavailable(ctx, w)
		return
	}

	productID, err := intURLParam(r, "productId")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	comments, err := h.comments.ListForProduct(ctx, productID)
	if err != nil {
		writeCommentError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"comments": comments,
		"total":    len(comments),
	})
}

func (h *CommentHandlers) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.comments == nil {
		writeCommentsUnavailable(ctx, w)
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthorized", "session required", http.StatusUnauthorized))
		return
	}

	productID, err := intURLParam(r, "productId")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	body, err := readLimitedBody(r, maxCommentBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req createCommentRequest
	if err := decodeStrict(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed comment payload", http.StatusBadRequest))
		return
	}

	comment, err := h.comments.Create(ctx, services.CreateCommentCommand{
		ProductID:  productID,
		Body:       req.Body,
		Rating:     req.Rating,
		AuthorName: identity.Username,
	})
	if err != nil {
		writeCommentError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, comment)
}

func (h *CommentHandlers) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.comments == nil {
		writeCommentsUnavailable(ctx, w)
		return
	}

	commentID := strings.TrimSpace(chi.URLParam(r, "commentId"))
	if commentID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "comment id is required", http.StatusBadRequest))
		return
	}

	body, err := readLimitedBody(r, maxCommentBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req updateCommentRequest
	if err := decodeStrict(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed comment payload", http.StatusBadRequest))
		return
	}

	comment, err := h.comments.Update(ctx, commentID, req.Body, req.Rating)
	if err != nil {
		writeCommentError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, comment)
}

func (h *CommentHandlers) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.comments == nil {
		writeCommentsUnavailable(ctx, w)
		return
	}

	commentID := strings.TrimSpace(chi.URLParam(r, "commentId"))
	if commentID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "comment id is required", http.StatusBadRequest))
		return
	}

	if err := h.comments.Delete(ctx, commentID); err != nil {
		writeCommentError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeCommentError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCommentInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid comment payload", http.StatusBadRequest))
	case errors.Is(err, services.ErrCommentReadOnly):
		httpx.WriteError(ctx, w, httpx.NewError("comment_read_only", "remote comments cannot be modified", http.StatusForbidden))
	case errors.Is(err, services.ErrCommentNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("comment_not_found", "comment not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCommentUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("comments_unavailable", "comment backend unavailable", http.StatusBadGateway).AsRetryable())
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "unexpected error", http.StatusInternalServerError))
	}
}

func writeCommentsUnavailable(ctx context.Context, w http.ResponseWriter) {
	httpx.WriteError(ctx, w, httpx.NewError("comment_service_unavailable", "comment service is unavailable", http.StatusServiceUnavailable))
}
