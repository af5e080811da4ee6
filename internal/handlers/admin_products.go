package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/platform/httpx"
	"github.com/shopfront/api/internal/services"
)

const maxAdminBodySize = 64 * 1024

// AdminHandlers exposes the managed product console and the dashboard
// aggregation. Role enforcement happens in the router's admin middleware
// chain, not here.
type AdminHandlers struct {
	products services.ProductAdminService
}

// NewAdminHandlers constructs the admin endpoint handlers.
func NewAdminHandlers(products services.ProductAdminService) *AdminHandlers {
	return &AdminHandlers{products: products}
}

// Routes wires the /admin endpoints onto the provided router.
func (h *AdminHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
	r.Get("/products/{productId}", h.getProduct)
	r.Put("/products/{productId}", h.updateProduct)
	r.Delete("/products/{productId}", h.deleteProduct)
	r.Get("/dashboard", h.dashboard)
	r.Get("/dashboard/activity", h.dashboardActivity)
}

type productDraftRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	UnitPrice       float64  `json:"unitPrice"`
	DiscountPercent float64  `json:"discountPercent"`
	Rating          float64  `json:"rating"`
	Stock           int      `json:"stock"`
	Brand           string   `json:"brand"`
	Category        string   `json:"category"`
	Thumbnail       string   `json:"thumbnail"`
	Images          []string `json:"images"`
}

func (req productDraftRequest) toDraft() services.ProductDraft {
	return services.ProductDraft{
		Title:           req.Title,
		Description:     req.Description,
		UnitPrice:       req.UnitPrice,
		DiscountPercent: req.DiscountPercent,
		Rating:          req.Rating,
		Stock:           req.Stock,
		Brand:           req.Brand,
		Category:        req.Category,
		Thumbnail:       req.Thumbnail,
		Images:          req.Images,
	}
}

type productListResponse struct {
	Products []domain.ManagedProduct `json:"products"`
	Total    int                     `json:"total"`
}

func (h *AdminHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.products == nil {
		writeAdminUnavailable(ctx, w)
		return
	}

	products, err := h.products.List(ctx, r.URL.Query().Get("q"))
	if err != nil {
		writeAdminError(ctx, w, err)
		return
	}
	if products == nil {
		products = []domain.ManagedProduct{}
	}
	writeJSONResponse(w, http.StatusOK, productListResponse{Products: products, Total: len(products)})
}

func (h *AdminHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.products == nil {
		writeAdminUnavailable(ctx, w)
		return
	}

	productID, err := intURLParam(r, "productId")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	product, err := h.products.Get(ctx, productID)
	if err != nil {
		writeAdminError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, product)
}

func (h *AdminHandlers) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.products == nil {
		writeAdminUnavailable(ctx, w)
		return
	}

	body, err := readLimitedBody(r, maxAdminBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req productDraftRequest
	if err := decodeStrict(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed product payload", http.StatusBadRequest))
		return
	}

	product, err := h.products.Create(ctx, req.toDraft())
	if err != nil {
		writeAdminError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, product)
}

func (h *AdminHandlers) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.products == nil {
		writeAdminUnavailable(ctx, w)
		return
	}

	productID, err := intURLParam(r, "productId")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	body, err := readLimitedBody(r, maxAdminBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req productDraftRequest
	if err := decodeStrict(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed product payload", http.StatusBadRequest))
		return
	}

	product, err := h.products.Update(ctx, productID, req.toDraft())
	if err != nil {
		writeAdminError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, product)
}

func (h *AdminHandlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.products == nil {
		writeAdminUnavailable(ctx, w)
		return
	}

	productID, err := intURLParam(r, "productId")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	if err := h.products.Delete(ctx, productID); err != nil {
		writeAdminError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandlers) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.products == nil {
		writeAdminUnavailable(ctx, w)
		return
	}

	stats, err := h.products.DashboardStats(ctx)
	if err != nil {
		writeAdminError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, stats)
}

func (h *AdminHandlers) dashboardActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.products == nil {
		writeAdminUnavailable(ctx, w)
		return
	}

	activity, err := h.products.ActivityFeed(ctx)
	if err != nil {
		writeAdminError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, activity)
}

func writeAdminError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrProductInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid product payload", http.StatusBadRequest))
	case errors.Is(err, services.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "managed product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrProductUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("products_unavailable", "product backend unavailable", http.StatusBadGateway).AsRetryable())
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "unexpected error", http.StatusInternalServerError))
	}
}

func writeAdminUnavailable(ctx context.Context, w http.ResponseWriter) {
	httpx.WriteError(ctx, w, httpx.NewError("admin_service_unavailable", "product admin service is unavailable", http.StatusServiceUnavailable))
}
