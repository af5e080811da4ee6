package auth

import (
	"context"
	"strings"

	"github.com/shopfront/api/internal/domain"
)

// Identity captures the authenticated principal details extracted from a session token.
type Identity struct {
	UserID      int
	Username    string
	Role        domain.Role
	Permissions []string
}

// HasRole reports whether the identity carries the requested role. The ADMIN
// role satisfies any role check.
func (i *Identity) HasRole(role domain.Role) bool {
	if i == nil {
		return false
	}
	if i.Role == domain.RoleAdmin {
		return true
	}
	return i.Role == role
}

// HasAnyRole reports whether the identity carries any of the provided roles.
func (i *Identity) HasAnyRole(roles ...domain.Role) bool {
	for _, role := range roles {
		if i.HasRole(role) {
			return true
		}
	}
	return false
}

// HasPermission reports whether the identity holds the named permission. The
// ADMIN role implies every permission.
func (i *Identity) HasPermission(permission string) bool {
	if i == nil {
		return false
	}
	if i.Role == domain.RoleAdmin {
		return true
	}
	permission = strings.TrimSpace(permission)
	if permission == "" {
		return false
	}
	for _, p := range i.Permissions {
		if strings.EqualFold(p, permission) {
			return true
		}
	}
	return false
}

type contextKey string

const identityContextKey contextKey = "github.com/shopfront/api/internal/platform/auth/identity"

// WithIdentity stores the identity within the context for downstream handlers.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext retrieves the identity previously stored in context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}
