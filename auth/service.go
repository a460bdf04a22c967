// Package auth orchestrates registration, password sign-in, the OAuth
// handshake and session lifecycle on top of the identity and session
// stores.
package auth

import (
	"context"
	"strings"

	"github.com/accessregistry/go-registry-auth/cookies"
	"github.com/accessregistry/go-registry-auth/credentials"
	apperrors "github.com/accessregistry/go-registry-auth/internal/errors"
	"github.com/accessregistry/go-registry-auth/oauth"
	"github.com/accessregistry/go-registry-auth/sessions"
	"github.com/accessregistry/go-registry-auth/users"
	"github.com/pkg/errors"
)

// Repos holds the repository dependencies for the Service.
type Repos struct {
	Users users.Repo
}

// Service is the application-facing auth API. Every operation that signs a
// user in ends by writing the session cookie through the supplied jar.
type Service struct {
	repos     Repos
	hasher    *credentials.Hasher
	sessions  *sessions.Manager
	providers *oauth.Registry
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithHasher replaces the password hasher (primarily for testing)
func WithHasher(hasher *credentials.Hasher) ServiceOption {
	return func(s *Service) {
		s.hasher = hasher
	}
}

// NewService initializes a Service with its required dependencies.
func NewService(repos Repos, sessionManager *sessions.Manager, providers *oauth.Registry, options ...ServiceOption) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if sessionManager == nil {
		return nil, errors.New("[NewService] session manager is required")
	}
	if providers == nil {
		return nil, errors.New("[NewService] provider registry is required")
	}

	s := &Service{
		repos:     repos,
		hasher:    credentials.NewHasher(),
		sessions:  sessionManager,
		providers: providers,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// SignUp registers a password account and signs it in. A taken email
// surfaces as ErrEmailTaken.
func (s *Service) SignUp(ctx context.Context, params SignUpParams, jar cookies.Cookies) (*users.User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	_, err := s.repos.Users.GetByEmail(ctx, params.Email)
	if err == nil {
		return nil, errors.Wrapf(apperrors.ErrEmailTaken, "[Service.SignUp] %s", params.Email)
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, errors.Wrap(err, "[Service.SignUp] lookup email")
	}

	salt, err := credentials.GenerateSalt()
	if err != nil {
		return nil, errors.Wrap(err, "[Service.SignUp] generate salt")
	}
	hash, err := s.hasher.Hash(params.Password, salt)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.SignUp] hash password")
	}

	user, err := s.repos.Users.Create(ctx, &users.User{
		Email:        params.Email,
		Name:         params.Name,
		Username:     params.Username,
		PasswordHash: hash,
		Salt:         salt,
		Role:         users.RoleUser,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Service.SignUp] create user")
	}

	if err := s.startSession(ctx, user, jar); err != nil {
		return nil, err
	}
	return user, nil
}

// SignIn authenticates a password account and establishes its session.
// An unknown email, a password-less (OAuth-only) account and a wrong
// password all surface as the same ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, params SignInParams, jar cookies.Cookies) (*users.User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repos.Users.GetByEmail(ctx, params.Email)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, errors.Wrap(apperrors.ErrInvalidCredentials, "[Service.SignIn] unknown email")
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Service.SignIn] lookup email")
	}
	if !user.HasPassword() {
		return nil, errors.Wrap(apperrors.ErrInvalidCredentials, "[Service.SignIn] account has no password")
	}
	if !s.hasher.Verify(params.Password, user.Salt, user.PasswordHash) {
		return nil, errors.Wrap(apperrors.ErrInvalidCredentials, "[Service.SignIn] password mismatch")
	}

	if err := s.startSession(ctx, user, jar); err != nil {
		return nil, err
	}
	return user, nil
}

// SignOut tears down the current session. Signing out with no active
// session is a silent no-op.
func (s *Service) SignOut(ctx context.Context, jar cookies.Cookies) error {
	if err := s.sessions.Destroy(ctx, jar); err != nil {
		return errors.Wrap(err, "[Service.SignOut] destroy session")
	}
	return nil
}

// BeginOAuth starts the handshake for the named provider: it issues the
// state and PKCE handshake cookies and returns the provider authorization
// URL to redirect the user to.
func (s *Service) BeginOAuth(ctx context.Context, provider string, jar cookies.Cookies) (string, error) {
	parsed, err := oauth.ParseProvider(provider)
	if err != nil {
		return "", err
	}
	client, err := s.providers.Get(parsed)
	if err != nil {
		return "", err
	}
	authURL, err := client.AuthCodeURL(jar)
	if err != nil {
		return "", errors.Wrap(err, "[Service.BeginOAuth] build authorization URL")
	}
	return authURL, nil
}

// CompleteOAuth finishes the handshake on the provider callback: it
// validates state, redeems the code, fetches the federated identity,
// finds or creates the matching registry user and signs them in.
func (s *Service) CompleteOAuth(ctx context.Context, provider, code, state string, jar cookies.Cookies) (*users.User, error) {
	parsed, err := oauth.ParseProvider(provider)
	if err != nil {
		return nil, err
	}
	client, err := s.providers.Get(parsed)
	if err != nil {
		return nil, err
	}

	identity, err := client.FetchUser(ctx, code, state, jar)
	if err != nil {
		return nil, err
	}

	user, err := s.connectUserToAccount(ctx, parsed, identity)
	if err != nil {
		return nil, err
	}

	if err := s.startSession(ctx, user, jar); err != nil {
		return nil, err
	}
	return user, nil
}

// CurrentUser resolves the session cookie to its full user record, or nil
// when no valid session exists.
func (s *Service) CurrentUser(ctx context.Context, jar cookies.Cookies) (*users.User, error) {
	session, err := s.sessions.Resolve(ctx, jar)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.CurrentUser] resolve session")
	}
	if session == nil {
		return nil, nil
	}
	user, err := s.repos.Users.GetByID(ctx, session.ID)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Service.CurrentUser] load user")
	}
	return user, nil
}

// Sessions exposes the session manager for components that only need
// session resolution, such as middleware.
func (s *Service) Sessions() *sessions.Manager {
	return s.sessions
}

// Repos exposes the repository dependencies for handlers that read
// records directly.
func (s *Service) Repos() Repos {
	return s.repos
}

// connectUserToAccount maps a federated identity to a registry user:
// an already-linked identity resolves directly, an identity whose email
// matches an existing account is linked to it, and anything else creates
// a fresh password-less account.
func (s *Service) connectUserToAccount(ctx context.Context, provider oauth.Provider, identity *oauth.Identity) (*users.User, error) {
	user, err := s.repos.Users.GetByOAuthAccount(ctx, string(provider), identity.ID)
	if err == nil {
		return user, nil
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, errors.Wrap(err, "[Service.connectUserToAccount] lookup linked account")
	}

	email := normalizeEmail(identity.Email)
	user, err = s.repos.Users.GetByEmail(ctx, email)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		user, err = s.repos.Users.Create(ctx, &users.User{
			Email:    email,
			Name:     identity.Name,
			Username: usernameFromEmail(email, identity.ID),
			Role:     users.RoleUser,
		})
		if err != nil {
			return nil, errors.Wrap(err, "[Service.connectUserToAccount] create user")
		}
	} else if err != nil {
		return nil, errors.Wrap(err, "[Service.connectUserToAccount] lookup email")
	}

	err = s.repos.Users.LinkOAuthAccount(ctx, &users.OAuthAccount{
		Provider:          string(provider),
		ProviderAccountID: identity.ID,
		UserID:            user.ID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Service.connectUserToAccount] link account")
	}
	return user, nil
}

func (s *Service) startSession(ctx context.Context, user *users.User, jar cookies.Cookies) error {
	err := s.sessions.CreateOrRenew(ctx, sessions.UserSession{ID: user.ID, Role: user.Role}, jar)
	if err != nil {
		return errors.Wrap(err, "[Service.startSession] create session")
	}
	return nil
}

// usernameFromEmail derives a username for accounts created through an
// OAuth sign-in, where the user never picks one.
func usernameFromEmail(email, accountID string) string {
	local, _, _ := strings.Cut(email, "@")
	username := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		default:
			return '_'
		}
	}, local)

	if users.ValidateUsername(username) != nil {
		username = "user_" + accountID
	}
	return username
}
