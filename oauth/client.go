// Package oauth implements a generic OAuth2-with-PKCE client over a closed
// set of statically configured identity providers, normalizing their
// heterogeneous user-info payloads into one identity shape.
package oauth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/accessregistry/go-registry-auth/cookies"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const providerTimeout = 10 * time.Second

// Identity is the normalized shape every provider's user-info payload is
// parsed into.
type Identity struct {
	ID    string
	Email string
	Name  string
	Image string
}

// Config describes one provider: its credentials, endpoints, scopes and the
// parser that maps its raw user-info payload to an Identity.
type Config struct {
	Provider     Provider
	ClientID     string
	ClientSecret string
	Scopes       []string

	AuthURL     string
	TokenURL    string
	UserInfoURL string

	// RedirectBase is the configured callback base URL; the effective
	// redirect_uri is this base plus the provider identifier.
	RedirectBase string

	ParseUserInfo func(data []byte) (*Identity, error)
}

// Client drives the authorization-code handshake for a single provider.
type Client struct {
	cfg        Config
	oauthCfg   oauth2.Config
	state      *StateManager
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient replaces the outbound HTTP client (primarily for testing)
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithStateManager replaces the handshake state manager
func WithStateManager(state *StateManager) ClientOption {
	return func(c *Client) {
		c.state = state
	}
}

func NewClient(cfg Config, options ...ClientOption) *Client {
	c := &Client{
		cfg: cfg,
		oauthCfg: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  redirectURL(cfg),
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		state:      NewStateManager(),
		httpClient: &http.Client{Timeout: providerTimeout},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Provider returns the provider identifier this client is configured for.
func (c *Client) Provider() Provider {
	return c.cfg.Provider
}

// AuthCodeURL issues a fresh state/verifier pair into handshake cookies and
// builds the provider authorization URL carrying client_id, redirect_uri,
// response_type=code, the joined scopes, the state, and the S256 PKCE
// challenge parameters.
func (c *Client) AuthCodeURL(jar cookies.Cookies) (string, error) {
	state, codeVerifier, err := c.state.Issue(jar)
	if err != nil {
		return "", errors.Wrap(err, "[Client.AuthCodeURL] issue handshake state")
	}
	return c.oauthCfg.AuthCodeURL(state, oauth2.S256ChallengeOption(codeVerifier)), nil
}

// FetchUser completes the callback half of the handshake: it validates the
// echoed state, consumes the stored code verifier, exchanges the
// authorization code for an access token and fetches the normalized user.
// Every validation failure aborts the flow; the caller restarts from an
// anonymous state.
func (c *Client) FetchUser(ctx context.Context, code, state string, jar cookies.Cookies) (*Identity, error) {
	if !c.state.ValidateState(state, jar) {
		return nil, errors.Wrapf(ErrInvalidState, "[Client.FetchUser] provider %s", c.cfg.Provider)
	}

	codeVerifier, err := c.state.ConsumeCodeVerifier(jar)
	if err != nil {
		return nil, errors.Wrapf(err, "[Client.FetchUser] provider %s", c.cfg.Provider)
	}

	token, err := c.exchangeCode(ctx, code, codeVerifier)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.FetchUser] token exchange")
	}

	raw, err := c.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.FetchUser] user info")
	}

	identity, err := c.cfg.ParseUserInfo(raw)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidUser, "[Client.FetchUser] provider %s: %v", c.cfg.Provider, err)
	}
	return identity, nil
}

// tokenResponse is the minimum shape a token endpoint response must
// conform to.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (c *Client) exchangeCode(ctx context.Context, code, codeVerifier string) (*tokenResponse, error) {
	form := url.Values{
		"code":          {code},
		"redirect_uri":  {c.oauthCfg.RedirectURL},
		"grant_type":    {"authorization_code"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"code_verifier": {codeVerifier},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrapf(ErrNetwork, "[Client.exchangeCode] build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.exchangeCode] token endpoint")
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, errors.Wrapf(ErrInvalidToken, "[Client.exchangeCode] provider %s: %v", c.cfg.Provider, err)
	}
	if token.AccessToken == "" || token.TokenType == "" {
		return nil, errors.Wrapf(ErrInvalidToken, "[Client.exchangeCode] provider %s: missing access_token or token_type", c.cfg.Provider)
	}
	return &token, nil
}

func (c *Client) fetchUserInfo(ctx context.Context, token *tokenResponse) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.UserInfoURL, nil)
	if err != nil {
		return nil, errors.Wrapf(ErrNetwork, "[Client.fetchUserInfo] build request: %v", err)
	}
	req.Header.Set("Authorization", token.TokenType+" "+token.AccessToken)
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.fetchUserInfo] userinfo endpoint")
	}
	return body, nil
}

// do performs one outbound provider call, folding transport errors,
// timeouts and non-2xx statuses into ErrNetwork.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrNetwork, "provider %s: %v", c.cfg.Provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(ErrNetwork, "provider %s: unexpected status %d", c.cfg.Provider, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(ErrNetwork, "provider %s: read body: %v", c.cfg.Provider, err)
	}
	return body, nil
}

func redirectURL(cfg Config) string {
	return strings.TrimSuffix(cfg.RedirectBase, "/") + "/" + string(cfg.Provider)
}
