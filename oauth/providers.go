package oauth

import (
	"encoding/json"
	"fmt"

	"github.com/accessregistry/go-registry-auth/internal/config"
	"github.com/pkg/errors"
)

// Provider identifies one of the statically configured identity providers.
// The set is closed at compile time.
type Provider string

const (
	ProviderDiscord Provider = "discord"
	ProviderGithub  Provider = "github"
	ProviderGoogle  Provider = "google"
)

// ParseProvider maps a raw provider identifier (typically a URL path
// segment) onto the closed provider set.
func ParseProvider(raw string) (Provider, error) {
	switch Provider(raw) {
	case ProviderDiscord, ProviderGithub, ProviderGoogle:
		return Provider(raw), nil
	default:
		return "", errors.Wrapf(ErrUnknownProvider, "%q", raw)
	}
}

// Registry maps provider identifiers to their preconfigured clients.
// Construction is pure - no network I/O happens until a handshake runs.
type Registry struct {
	clients map[Provider]*Client
}

func NewRegistry(clients ...*Client) *Registry {
	r := &Registry{clients: make(map[Provider]*Client, len(clients))}
	for _, client := range clients {
		r.clients[client.Provider()] = client
	}
	return r
}

// NewDefaultRegistry builds the full discord/github/google registry from
// process configuration.
func NewDefaultRegistry(cfg config.OAuthConfig) *Registry {
	return NewRegistry(
		NewDiscordClient(cfg),
		NewGithubClient(cfg),
		NewGoogleClient(cfg),
	)
}

func (r *Registry) Get(provider Provider) (*Client, error) {
	client, ok := r.clients[provider]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownProvider, "%q not configured", provider)
	}
	return client, nil
}

func NewDiscordClient(cfg config.OAuthConfig, options ...ClientOption) *Client {
	return NewClient(Config{
		Provider:      ProviderDiscord,
		ClientID:      cfg.GetDiscordClientID(),
		ClientSecret:  cfg.GetDiscordClientSecret(),
		Scopes:        []string{"identify", "email"},
		AuthURL:       "https://discord.com/oauth2/authorize",
		TokenURL:      "https://discord.com/api/oauth2/token",
		UserInfoURL:   "https://discord.com/api/users/@me",
		RedirectBase:  cfg.GetOAuthRedirectBase(),
		ParseUserInfo: ParseDiscordUserInfo,
	}, options...)
}

func NewGithubClient(cfg config.OAuthConfig, options ...ClientOption) *Client {
	return NewClient(Config{
		Provider:      ProviderGithub,
		ClientID:      cfg.GetGithubClientID(),
		ClientSecret:  cfg.GetGithubClientSecret(),
		Scopes:        []string{"user:email", "read:user"},
		AuthURL:       "https://github.com/login/oauth/authorize",
		TokenURL:      "https://github.com/login/oauth/access_token",
		UserInfoURL:   "https://api.github.com/user",
		RedirectBase:  cfg.GetOAuthRedirectBase(),
		ParseUserInfo: ParseGithubUserInfo,
	}, options...)
}

func NewGoogleClient(cfg config.OAuthConfig, options ...ClientOption) *Client {
	return NewClient(Config{
		Provider:      ProviderGoogle,
		ClientID:      cfg.GetGoogleClientID(),
		ClientSecret:  cfg.GetGoogleClientSecret(),
		Scopes:        []string{"email", "profile"},
		AuthURL:       "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:      "https://oauth2.googleapis.com/token",
		UserInfoURL:   "https://www.googleapis.com/oauth2/v2/userinfo",
		RedirectBase:  cfg.GetOAuthRedirectBase(),
		ParseUserInfo: ParseGoogleUserInfo,
	}, options...)
}

// ParseDiscordUserInfo maps a discord /users/@me payload to an Identity.
// The display name falls back from global_name to username; a set avatar
// hash is expanded to its CDN image URL.
func ParseDiscordUserInfo(data []byte) (*Identity, error) {
	var payload struct {
		ID         string  `json:"id"`
		Username   string  `json:"username"`
		GlobalName *string `json:"global_name"`
		Email      string  `json:"email"`
		Avatar     *string `json:"avatar"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	if payload.ID == "" || payload.Username == "" || payload.Email == "" {
		return nil, fmt.Errorf("missing required discord user fields")
	}

	name := payload.Username
	if payload.GlobalName != nil && *payload.GlobalName != "" {
		name = *payload.GlobalName
	}
	var image string
	if payload.Avatar != nil && *payload.Avatar != "" {
		image = fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", payload.ID, *payload.Avatar)
	}
	return &Identity{ID: payload.ID, Email: payload.Email, Name: name, Image: image}, nil
}

// ParseGithubUserInfo maps a github /user payload to an Identity.
func ParseGithubUserInfo(data []byte) (*Identity, error) {
	var payload struct {
		ID      *int64  `json:"id"`
		Login   string  `json:"login"`
		Name    *string `json:"name"`
		Email   string  `json:"email"`
		Picture string  `json:"picture"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	if payload.ID == nil || payload.Login == "" || payload.Email == "" {
		return nil, fmt.Errorf("missing required github user fields")
	}

	// Github profile names are optional; fall back to the login
	name := payload.Login
	if payload.Name != nil && *payload.Name != "" {
		name = *payload.Name
	}
	return &Identity{
		ID:    fmt.Sprintf("%d", *payload.ID),
		Email: payload.Email,
		Name:  name,
		Image: payload.Picture,
	}, nil
}

// ParseGoogleUserInfo maps a google userinfo payload to an Identity. The
// verified_email field must be present for the payload to be accepted.
func ParseGoogleUserInfo(data []byte) (*Identity, error) {
	var payload struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Email         string `json:"email"`
		VerifiedEmail *bool  `json:"verified_email"`
		Picture       string `json:"picture"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	if payload.ID == "" || payload.Name == "" || payload.Email == "" || payload.VerifiedEmail == nil {
		return nil, fmt.Errorf("missing required google user fields")
	}
	return &Identity{ID: payload.ID, Email: payload.Email, Name: payload.Name, Image: payload.Picture}, nil
}
