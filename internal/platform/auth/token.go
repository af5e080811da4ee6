package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/shopfront/api/internal/domain"
)

// ErrTokenInvalid indicates a session token that failed verification or parsing.
var ErrTokenInvalid = errors.New("auth: session token invalid")

// ErrTokenExpired indicates a structurally valid but expired session token.
var ErrTokenExpired = errors.New("auth: session token expired")

// sessionClaims is the JWT claim set carried by session tokens.
type sessionClaims struct {
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer constructs a token issuer with the given signing secret and token lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the issuer clock. Intended for tests.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	t.now = now
	return t
}

// Issue mints a signed session token for the identity.
func (t *TokenIssuer) Issue(identity *Identity) (string, error) {
	if identity == nil {
		return "", fmt.Errorf("%w: identity required", ErrTokenInvalid)
	}

	now := t.now().UTC()
	claims := sessionClaims{
		Username:    identity.Username,
		Role:        string(identity.Role),
		Permissions: identity.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", identity.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing session token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token, returning the embedded identity.
func (t *TokenIssuer) Verify(tokenString string) (*Identity, error) {
	claims := &sessionClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	// Claims validation is done here against the issuer clock rather than
	// by the parser, which only consults the wall clock.
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing expiry", ErrTokenInvalid)
	}
	if !t.now().UTC().Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}

	userID := 0
	if claims.Subject != "" {
		if _, scanErr := fmt.Sscanf(claims.Subject, "%d", &userID); scanErr != nil {
			return nil, fmt.Errorf("%w: malformed subject", ErrTokenInvalid)
		}
	}

	role := domain.Role(claims.Role)
	switch role {
	case domain.RoleAdmin, domain.RoleManager, domain.RoleUser:
	default:
		role = domain.RoleUser
	}

	return &Identity{
		UserID:      userID,
		Username:    claims.Username,
		Role:        role,
		Permissions: claims.Permissions,
	}, nil
}
