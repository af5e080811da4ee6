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

const maxLoginBodySize = 4 * 1024

// AuthHandlers exposes the session endpoints.
type AuthHandlers struct {
	authn *auth.Authenticator
	svc   services.AuthService
}

// NewAuthHandlers constructs handlers for login, logout, and session introspection.
func NewAuthHandlers(authn *auth.Authenticator, svc services.AuthService) *AuthHandlers {
	return &AuthHandlers{authn: authn, svc: svc}
}

// Routes wires the /auth endpoints onto the provided router.
func (h *AuthHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/login", h.login)

	r.Group(func(protected chi.Router) {
		if h.authn != nil {
			protected.Use(h.authn.RequireSession())
		}
		protected.Post("/logout", h.logout)
		protected.Get("/me", h.me)
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User  userPayload `json:"user"`
	Token string      `json:"token"`
}

type userPayload struct {
	ID          int      `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email,omitempty"`
	FirstName   string   `json:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

func buildUserPayload(user domain.User) userPayload {
	permissions := user.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	return userPayload{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        string(user.Role),
		Permissions: permissions,
	}
}

func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.svc == nil {
		httpx.WriteError(ctx, w, httpx.NewError("auth_service_unavailable", "auth service is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxLoginBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req loginRequest
	if err := decodeStrict(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed login payload", http.StatusBadRequest))
		return
	}

	result, err := h.svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		h.writeAuthError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, loginResponse{
		User:  buildUserPayload(result.User),
		Token: result.Token,
	})
}

func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, _ := auth.IdentityFromContext(ctx)
	if h.svc != nil {
		h.svc.Logout(ctx, identity)
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *AuthHandlers) me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.svc == nil {
		httpx.WriteError(ctx, w, httpx.NewError("auth_service_unavailable", "auth service is unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	user, err := h.svc.CurrentUser(identity)
	if err != nil {
		h.writeAuthError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildUserPayload(user))
}

func (h *AuthHandlers) writeAuthError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrAuthInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "username and password are required", http.StatusBadRequest))
	case errors.Is(err, services.ErrAuthInvalidCredentials):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_credentials", "username or password incorrect", http.StatusUnauthorized))
	case errors.Is(err, services.ErrAuthUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("upstream_unavailable", "login backend unavailable", http.StatusBadGateway).AsRetryable())
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "unexpected error", http.StatusInternalServerError))
	}
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
}
