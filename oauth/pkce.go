package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/accessregistry/go-registry-auth/cookies"
	"github.com/pkg/errors"
)

// Handshake cookie names are a wire contract shared with any other
// component reading them - do not rename.
const (
	StateCookieName        = "oAuthState"
	CodeVerifierCookieName = "oAuthCodeVerifier"

	handshakeExpiry      = 10 * time.Minute
	handshakeTokenLength = 64
)

// StateManager issues and validates the per-attempt CSRF state token and
// PKCE code verifier. Both live only in short-lived handshake cookies; the
// values are single-use and discarded once a callback consumes them.
type StateManager struct {
	nowTime func() time.Time
}

type StateManagerOption func(*StateManager)

// WithStateNowTime sets the now time function (primarily for testing)
func WithStateNowTime(nowFunc func() time.Time) StateManagerOption {
	return func(m *StateManager) {
		m.nowTime = nowFunc
	}
}

func NewStateManager(options ...StateManagerOption) *StateManager {
	m := &StateManager{nowTime: time.Now}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Issue generates the state and code verifier for one authorization
// attempt and writes each into its own handshake cookie.
func (m *StateManager) Issue(jar cookies.Cookies) (state, codeVerifier string, err error) {
	state, err = generateHandshakeToken()
	if err != nil {
		return "", "", errors.Wrap(err, "[StateManager.Issue] generate state")
	}
	codeVerifier, err = generateHandshakeToken()
	if err != nil {
		return "", "", errors.Wrap(err, "[StateManager.Issue] generate code verifier")
	}

	opts := cookies.Options{
		Secure:   true,
		HTTPOnly: true,
		SameSite: cookies.SameSiteLax,
		Expires:  m.nowTime().Add(handshakeExpiry),
	}
	if err := jar.Set(StateCookieName, state, opts); err != nil {
		return "", "", errors.Wrap(err, "[StateManager.Issue] set state cookie")
	}
	if err := jar.Set(CodeVerifierCookieName, codeVerifier, opts); err != nil {
		return "", "", errors.Wrap(err, "[StateManager.Issue] set code verifier cookie")
	}
	return state, codeVerifier, nil
}

// ValidateState compares the state echoed back by the provider against the
// cookie-bound value.
func (m *StateManager) ValidateState(received string, jar cookies.Cookies) bool {
	stored := jar.Get(StateCookieName)
	if stored == nil {
		return false
	}
	return stored.Value == received
}

// ConsumeCodeVerifier reads the stored verifier for the callback currently
// being handled. A missing or expired cookie is a hard failure - the
// handshake must be restarted from the beginning.
func (m *StateManager) ConsumeCodeVerifier(jar cookies.Cookies) (string, error) {
	stored := jar.Get(CodeVerifierCookieName)
	if stored == nil || stored.Value == "" {
		return "", ErrInvalidCodeVerifier
	}
	return stored.Value, nil
}

// CodeChallenge derives the S256 challenge sent with the authorization
// request: BASE64URL(SHA256(code_verifier)), unpadded.
func CodeChallenge(codeVerifier string) string {
	hash := sha256.Sum256([]byte(codeVerifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

func generateHandshakeToken() (string, error) {
	bytes := make([]byte, handshakeTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
