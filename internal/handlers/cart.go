package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/platform/auth"
	"github.com/shopfront/api/internal/platform/httpx"
	"github.com/shopfront/api/internal/services"
)

const maxCartBodySize = 16 * 1024

// CartHandlers exposes the cart endpoints. Carts work anonymously via the
// cart key header; a valid session binds the cart to the user instead.
type CartHandlers struct {
	authn *auth.Authenticator
	carts services.CartService
}

// NewCartHandlers constructs the cart endpoint handlers.
func NewCartHandlers(authn *auth.Authenticator, carts services.CartService) *CartHandlers {
	return &CartHandlers{authn: authn, carts: carts}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.OptionalSession())
	}
	r.Get("/", h.getCart)
	r.Delete("/", h.clearCart)
	r.Post("/items", h.addItem)
	r.Put("/items/{productId}", h.setQuantity)
	r.Delete("/items/{productId}", h.removeItem)
	r.Post("/pending", h.stagePending)
	r.Post("/pending/confirm", h.confirmPending)
	r.Delete("/pending", h.cancelPending)
}

type cartResponse struct {
	OwnerKey  string                 `json:"ownerKey"`
	Lines     []domain.CartLineItem  `json:"lines"`
	Pending   *domain.PendingProduct `json:"pending,omitempty"`
	ItemCount int                    `json:"itemCount"`
	Total     float64                `json:"total"`
}

func buildCartResponse(summary services.CartSummary) cartResponse {
	lines := summary.Cart.Lines
	if lines == nil {
		lines = []domain.CartLineItem{}
	}
	return cartResponse{
		OwnerKey:  summary.Cart.OwnerKey,
		Lines:     lines,
		Pending:   summary.Cart.Pending,
		ItemCount: summary.ItemCount,
		Total:     services.RoundPrice(summary.Total),
	}
}

type addItemRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type stageRequest struct {
	ProductID int `json:"productId"`
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		writeCartUnavailable(ctx, w)
		return
	}

	summary, err := h.carts.GetCart(ctx, ownerKeyFromRequest(r))
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartResponse(summary))
}

func (h *CartHandlers) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		writeCartUnavailable(ctx, w)
		return
	}

	if err := h.carts.Clear(ctx, ownerKeyFromRequest(r)); err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		writeCartUnavailable(ctx, w)
		return
	}

	body, err := readLimitedBody(r, maxCartBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req addItemRequest
	if err := decodeStrict(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed cart payload", http.StatusBadRequest))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	summary, err := h.carts.AddItem(ctx, ownerKeyFromRequest(r), req.ProductID, req.Quantity)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartResponse(summary))
}

func (h *CartHandlers) setQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		writeCartUnavailable(ctx, w)
		return
	}

	productID, err := intURLParam(r, "productId")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	body, err := readLimitedBody(r, maxCartBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req quantityRequest
	if err := decodeStrict(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed cart payload", http.StatusBadRequest))
		return
	}

	summary, err := h.carts.SetQuantity(ctx, ownerKeyFromRequest(r), productID, req.Quantity)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartResponse(summary))
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		writeCartUnavailable(ctx, w)
		return
	}

	productID, err := intURLParam(r, "productId")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	summary, err := h.carts.RemoveItem(ctx, ownerKeyFromRequest(r), productID)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartResponse(summary))
}

func (h *CartHandlers) stagePending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		writeCartUnavailable(ctx, w)
		return
	}

	body, err := readLimitedBody(r, maxCartBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req stageRequest
	if err := decodeStrict(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed cart payload", http.StatusBadRequest))
		return
	}

	summary, err := h.carts.StageProduct(ctx, ownerKeyFromRequest(r), req.ProductID)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartResponse(summary))
}

func (h *CartHandlers) confirmPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		writeCartUnavailable(ctx, w)
		return
	}

	body, err := readLimitedBody(r, maxCartBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req quantityRequest
	if err := decodeStrict(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed cart payload", http.StatusBadRequest))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	summary, err := h.carts.ConfirmPending(ctx, ownerKeyFromRequest(r), req.Quantity)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartResponse(summary))
}

func (h *CartHandlers) cancelPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		writeCartUnavailable(ctx, w)
		return
	}

	summary, err := h.carts.CancelPending(ctx, ownerKeyFromRequest(r))
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartResponse(summary))
}

func (h *CartHandlers) writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid cart operation", http.StatusBadRequest))
	case errors.Is(err, services.ErrCartNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("cart_item_not_found", "product not in cart or catalog", http.StatusNotFound))
	case errors.Is(err, services.ErrCartNoPending):
		httpx.WriteError(ctx, w, httpx.NewError("no_pending_product", "no product staged for confirmation", http.StatusConflict))
	case errors.Is(err, services.ErrCartUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart backend unavailable", http.StatusBadGateway).AsRetryable())
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "unexpected error", http.StatusInternalServerError))
	}
}

func writeCartUnavailable(ctx context.Context, w http.ResponseWriter) {
	httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
}
