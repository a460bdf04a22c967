// Package sessions implements server-side session lifecycle management:
// opaque bearer tokens stored in a cookie, backed by rows in the relational
// store.
package sessions

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/accessregistry/go-registry-auth/users"
	"github.com/pkg/errors"
)

const sessionTokenLength = 32 // 32 bytes = 256 bits

// Session is one row of session state. Token is the primary lookup key;
// CreatedAt is immutable after insert.
type Session struct {
	Token     string    `json:"-"` // bearer credential - never serialize
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is no longer valid at the given
// instant.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// UserSession is the public shape a resolved session normalizes to.
type UserSession struct {
	ID   string     `json:"id"`
	Role users.Role `json:"role"`
}

// NewToken returns a fresh opaque session token: 32 cryptographically
// random bytes, base64url-encoded.
func NewToken() (string, error) {
	bytes := make([]byte, sessionTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", errors.Wrap(err, "[NewToken] rand.Read")
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
