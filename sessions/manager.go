package sessions

import (
	"context"
	"time"

	"github.com/accessregistry/go-registry-auth/cookies"
	apperrors "github.com/accessregistry/go-registry-auth/internal/errors"
	"github.com/pkg/errors"
)

// SessionCookieName is a wire contract shared with any other component
// reading the session cookie - do not rename.
const SessionCookieName = "session-id"

const sessionExpiration = 7 * 24 * time.Hour

// Manager orchestrates session creation, renewal, resolution and teardown
// through the session store and the cookie transport. It keeps no
// in-process session state; every operation goes to the store.
type Manager struct {
	repo          Repo
	secureCookies bool
	nowTime       func() time.Time
}

type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithSecureCookies controls the Secure attribute on the session cookie.
// Enabled in production, disabled for plain-HTTP development.
func WithSecureCookies(secure bool) ManagerOption {
	return func(m *Manager) {
		m.secureCookies = secure
	}
}

func NewManager(repo Repo, options ...ManagerOption) (*Manager, error) {
	if repo == nil {
		return nil, errors.New("[NewManager] session repo is required")
	}
	m := &Manager{
		repo:          repo,
		secureCookies: true,
		nowTime:       time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// CreateOrRenew establishes a session for the user. An existing unexpired
// session keeps its token and has its expiry extended; otherwise a fresh
// token is minted and inserted. Either way the session cookie is written
// with an expiry matching the row.
//
// The lookup-then-write here is a check-then-act race under concurrent
// sign-ins from the same user; the store's user-keyed Upsert makes the
// final write safe, at worst leaving one of the two cookies stale.
func (m *Manager) CreateOrRenew(ctx context.Context, user UserSession, jar cookies.Cookies) error {
	now := m.nowTime()
	expiresAt := now.Add(sessionExpiration)

	var token string
	existing, err := m.repo.FindByUserID(ctx, user.ID, now)
	switch {
	case err == nil:
		token = existing.Token
		if err := m.repo.UpdateExpiry(ctx, token, expiresAt); err != nil {
			return errors.Wrap(err, "[Manager.CreateOrRenew] extend existing session")
		}
	case apperrors.Is(err, apperrors.ErrNotFound):
		token, err = NewToken()
		if err != nil {
			return errors.Wrap(err, "[Manager.CreateOrRenew] mint token")
		}
		err = m.repo.Upsert(ctx, &Session{
			Token:     token,
			UserID:    user.ID,
			ExpiresAt: expiresAt,
			CreatedAt: now,
		})
		if err != nil {
			return errors.Wrap(err, "[Manager.CreateOrRenew] insert session")
		}
	default:
		return errors.Wrap(err, "[Manager.CreateOrRenew] find session")
	}

	return m.setCookie(jar, token, expiresAt)
}

// Resolve returns the user owning the session named by the cookie, or nil
// when there is no cookie, the token is unknown, or the row has expired.
// The three cases are indistinguishable to the caller.
func (m *Manager) Resolve(ctx context.Context, jar cookies.Cookies) (*UserSession, error) {
	cookie := jar.Get(SessionCookieName)
	if cookie == nil || cookie.Value == "" {
		return nil, nil
	}

	user, err := m.repo.ResolveToken(ctx, cookie.Value, m.nowTime())
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Resolve] resolve token")
	}
	return user, nil
}

// RenewExpiration slides the current session's expiry forward by the fixed
// window and rewrites the cookie. Without a session cookie it is a silent
// no-op.
func (m *Manager) RenewExpiration(ctx context.Context, jar cookies.Cookies) error {
	cookie := jar.Get(SessionCookieName)
	if cookie == nil || cookie.Value == "" {
		return nil
	}

	expiresAt := m.nowTime().Add(sessionExpiration)
	if err := m.repo.UpdateExpiry(ctx, cookie.Value, expiresAt); err != nil {
		return errors.Wrap(err, "[Manager.RenewExpiration] update expiry")
	}
	return m.setCookie(jar, cookie.Value, expiresAt)
}

// Destroy removes the session row and deletes the cookie. Idempotent:
// destroying with no active session is a silent no-op.
func (m *Manager) Destroy(ctx context.Context, jar cookies.Cookies) error {
	cookie := jar.Get(SessionCookieName)
	if cookie == nil || cookie.Value == "" {
		return nil
	}

	if err := m.repo.DeleteByToken(ctx, cookie.Value); err != nil {
		return errors.Wrap(err, "[Manager.Destroy] delete session")
	}
	jar.Delete(SessionCookieName)
	return nil
}

// CleanupExpired removes every expired session row and returns the count.
// Meant for a periodic external trigger, not per-request use.
func (m *Manager) CleanupExpired(ctx context.Context) (int64, error) {
	count, err := m.repo.DeleteExpired(ctx, m.nowTime())
	if err != nil {
		return 0, errors.Wrap(err, "[Manager.CleanupExpired] delete expired")
	}
	return count, nil
}

func (m *Manager) setCookie(jar cookies.Cookies, token string, expiresAt time.Time) error {
	err := jar.Set(SessionCookieName, token, cookies.Options{
		Secure:   m.secureCookies,
		HTTPOnly: true,
		SameSite: cookies.SameSiteLax,
		Expires:  expiresAt,
	})
	if err != nil {
		return errors.Wrap(err, "[Manager.setCookie] set session cookie")
	}
	return nil
}
