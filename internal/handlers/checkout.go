package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/platform/auth"
	"github.com/shopfront/api/internal/platform/httpx"
	"github.com/shopfront/api/internal/services"
)

const maxCheckoutBodySize = 16 * 1024

// CheckoutHandlers exposes the multi-step checkout flow. Sessions are scoped
// to the cart owner that started them; other owners see not-found.
type CheckoutHandlers struct {
	authn    *auth.Authenticator
	checkout services.CheckoutService
}

// NewCheckoutHandlers constructs the checkout endpoint handlers.
func NewCheckoutHandlers(authn *auth.Authenticator, checkout services.CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{authn: authn, checkout: checkout}
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.OptionalSession())
	}
	r.Post("/", h.start)
	r.Get("/{sessionId}", h.getSession)
	r.Post("/{sessionId}/delivery", h.selectDelivery)
	r.Post("/{sessionId}/shipping", h.submitShipping)
	r.Post("/{sessionId}/payment", h.submitPayment)
	r.Post("/{sessionId}/back", h.back)
}

type deliveryRequest struct {
	Option string `json:"option"`
}

func (h *CheckoutHandlers) start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		writeCheckoutUnavailable(ctx, w)
		return
	}

	session, err := h.checkout.Start(ctx, ownerKeyFromRequest(r))
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, session)
}

func (h *CheckoutHandlers) getSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		writeCheckoutUnavailable(ctx, w)
		return
	}

	session, ok := h.loadOwnedSession(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, session)
}

func (h *CheckoutHandlers) selectDelivery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		writeCheckoutUnavailable(ctx, w)
		return
	}

	session, ok := h.loadOwnedSession(w, r)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxCheckoutBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req deliveryRequest
	if err := decodeStrict(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed checkout payload", http.StatusBadRequest))
		return
	}

	updated, err := h.checkout.SelectDelivery(ctx, session.ID, domain.DeliveryOption(strings.ToLower(req.Option)))
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, updated)
}

func (h *CheckoutHandlers) submitShipping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		writeCheckoutUnavailable(ctx, w)
		return
	}

	session, ok := h.loadOwnedSession(w, r)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxCheckoutBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var info domain.ShippingInfo
	if err := decodeStrict(body, &info); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed checkout payload", http.StatusBadRequest))
		return
	}

	updated, err := h.checkout.SubmitShipping(ctx, session.ID, info)
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, updated)
}

func (h *CheckoutHandlers) submitPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		writeCheckoutUnavailable(ctx, w)
		return
	}

	session, ok := h.loadOwnedSession(w, r)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxCheckoutBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var payment domain.PaymentInfo
	if err := decodeStrict(body, &payment); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed checkout payload", http.StatusBadRequest))
		return
	}

	order, err := h.checkout.SubmitPayment(ctx, session.ID, payment)
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, order)
}

func (h *CheckoutHandlers) back(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		writeCheckoutUnavailable(ctx, w)
		return
	}

	session, ok := h.loadOwnedSession(w, r)
	if !ok {
		return
	}

	updated, err := h.checkout.Back(ctx, session.ID)
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, updated)
}

// loadOwnedSession resolves the path session and enforces that it belongs to
// the caller's cart owner key. Foreign sessions read as not-found.
func (h *CheckoutHandlers) loadOwnedSession(w http.ResponseWriter, r *http.Request) (domain.CheckoutSession, bool) {
	ctx := r.Context()

	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionId"))
	if sessionID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "session id is required", http.StatusBadRequest))
		return domain.CheckoutSession{}, false
	}

	session, err := h.checkout.Get(ctx, sessionID)
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return domain.CheckoutSession{}, false
	}
	if session.OwnerKey != ownerKeyFromRequest(r) {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_session_not_found", "checkout session not found", http.StatusNotFound))
		return domain.CheckoutSession{}, false
	}
	return session, true
}

func (h *CheckoutHandlers) writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCheckoutInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid checkout operation", http.StatusBadRequest))
	case errors.Is(err, services.ErrCheckoutMissingFields):
		httpx.WriteError(ctx, w, httpx.NewError("missing_fields", "all form fields are required", http.StatusBadRequest))
	case errors.Is(err, services.ErrCheckoutNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_session_not_found", "checkout session not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCheckoutEmptyCart):
		httpx.WriteError(ctx, w, httpx.NewError("cart_empty", "cart has no items", http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutWrongStep):
		httpx.WriteError(ctx, w, httpx.NewError("wrong_step", "operation not valid in the current checkout step", http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout backend unavailable", http.StatusBadGateway).AsRetryable())
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "unexpected error", http.StatusInternalServerError))
	}
}

func writeCheckoutUnavailable(ctx context.Context, w http.ResponseWriter) {
	httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
}
