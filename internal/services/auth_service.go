package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/platform/auth"
	"github.com/shopfront/api/internal/upstream/dummyjson"
)

var (
	errAuthClientRequired = errors.New("auth service: upstream client is required")
	errAuthIssuerRequired = errors.New("auth service: token issuer is required")
)

// ErrAuthInvalidInput indicates the caller supplied invalid input.
var ErrAuthInvalidInput = errors.New("auth service: invalid input")

// ErrAuthInvalidCredentials indicates the credentials were rejected.
var ErrAuthInvalidCredentials = errors.New("auth service: invalid credentials")

// ErrAuthUnavailable indicates the login backend could not be reached.
var ErrAuthUnavailable = errors.New("auth service: unavailable")

// Role permission grants. ADMIN needs none listed: it implies everything.
var rolePermissions = map[domain.Role][]string{
	domain.RoleManager: {"manage-products", "view-dashboard"},
	domain.RoleUser:    {"place-orders", "write-comments"},
}

// LoginResult pairs the authenticated user with the minted session token.
type LoginResult struct {
	User  domain.User
	Token string
}

// CredentialVerifier verifies credentials against the upstream directory.
type CredentialVerifier interface {
	Login(ctx context.Context, username, password string) (dummyjson.AuthenticatedUser, error)
}

// SessionMinter mints session tokens for verified identities.
type SessionMinter interface {
	Issue(identity *auth.Identity) (string, error)
}

// AuthService verifies credentials and establishes sessions.
type AuthService interface {
	Login(ctx context.Context, username, password string) (LoginResult, error)
	Logout(ctx context.Context, identity *auth.Identity)
	CurrentUser(identity *auth.Identity) (domain.User, error)
}

// AuthServiceDeps wires upstream verification, token minting, and role assignment.
type AuthServiceDeps struct {
	Client           CredentialVerifier
	Issuer           SessionMinter
	AdminUsernames   []string
	ManagerUsernames []string
	Logger           func(context.Context, string, map[string]any)
}

type authService struct {
	client   CredentialVerifier
	issuer   SessionMinter
	admins   map[string]struct{}
	managers map[string]struct{}
	logger   func(context.Context, string, map[string]any)
}

// NewAuthService constructs an AuthService enforcing dependency validation.
func NewAuthService(deps AuthServiceDeps) (AuthService, error) {
	if deps.Client == nil {
		return nil, errAuthClientRequired
	}
	if deps.Issuer == nil {
		return nil, errAuthIssuerRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &authService{
		client:   deps.Client,
		issuer:   deps.Issuer,
		admins:   usernameSet(deps.AdminUsernames),
		managers: usernameSet(deps.ManagerUsernames),
		logger:   logger,
	}, nil
}

// Login verifies credentials upstream, assigns the deployment-configured
// role, and mints a session token.
func (s *authService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, ErrAuthInvalidInput
	}

	verified, err := s.client.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, dummyjson.ErrInvalidCredentials) {
			s.logger(ctx, "auth.login_rejected", map[string]any{"username": username})
			return LoginResult{}, ErrAuthInvalidCredentials
		}
		return LoginResult{}, ErrAuthUnavailable
	}

	role := s.roleFor(verified.Username)
	identity := &auth.Identity{
		UserID:      verified.ID,
		Username:    verified.Username,
		Role:        role,
		Permissions: rolePermissions[role],
	}

	token, err := s.issuer.Issue(identity)
	if err != nil {
		return LoginResult{}, ErrAuthUnavailable
	}

	s.logger(ctx, "auth.login_succeeded", map[string]any{
		"username": verified.Username,
		"role":     string(role),
	})

	return LoginResult{
		User: domain.User{
			ID:          verified.ID,
			Username:    verified.Username,
			Email:       verified.Email,
			FirstName:   verified.FirstName,
			LastName:    verified.LastName,
			Role:        role,
			Permissions: identity.Permissions,
		},
		Token: token,
	}, nil
}

// Logout records the session end. Tokens are stateless; the client discards its copy.
func (s *authService) Logout(ctx context.Context, identity *auth.Identity) {
	if identity == nil {
		return
	}
	s.logger(ctx, "auth.logout", map[string]any{"username": identity.Username})
}

// CurrentUser projects the session identity back into the user shape.
func (s *authService) CurrentUser(identity *auth.Identity) (domain.User, error) {
	if identity == nil {
		return domain.User{}, ErrAuthInvalidInput
	}
	return domain.User{
		ID:          identity.UserID,
		Username:    identity.Username,
		Role:        identity.Role,
		Permissions: identity.Permissions,
	}, nil
}

func (s *authService) roleFor(username string) domain.Role {
	key := strings.ToLower(strings.TrimSpace(username))
	if _, ok := s.admins[key]; ok {
		return domain.RoleAdmin
	}
	if _, ok := s.managers[key]; ok {
		return domain.RoleManager
	}
	return domain.RoleUser
}

func usernameSet(usernames []string) map[string]struct{} {
	set := make(map[string]struct{}, len(usernames))
	for _, username := range usernames {
		key := strings.ToLower(strings.TrimSpace(username))
		if key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}
