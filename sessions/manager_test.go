package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/accessregistry/go-registry-auth/cookies"
	"github.com/accessregistry/go-registry-auth/cookies/cookiesfakes"
	"github.com/accessregistry/go-registry-auth/sessions"
	"github.com/accessregistry/go-registry-auth/sessions/repofakes"
	"github.com/accessregistry/go-registry-auth/users"
	"github.com/stretchr/testify/require"
)

type managerFixture struct {
	repo    *repofakes.FakeSessionRepo
	manager *sessions.Manager
	jar     *cookiesfakes.FakeCookies
	now     time.Time
}

func setupManagerFixture(t *testing.T) *managerFixture {
	t.Helper()

	f := &managerFixture{
		repo: repofakes.NewFakeSessionRepo(),
		jar:  cookiesfakes.NewFakeCookies(),
		now:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	manager, err := sessions.NewManager(f.repo, sessions.WithNowTime(func() time.Time { return f.now }))
	require.NoError(t, err)
	f.manager = manager
	f.jar.NowTime = func() time.Time { return f.now }
	return f
}

func (f *managerFixture) sessionToken(t *testing.T) string {
	t.Helper()
	cookie := f.jar.Get(sessions.SessionCookieName)
	require.NotNil(t, cookie)
	return cookie.Value
}

func TestCreateOrRenewCreatesSession(t *testing.T) {
	f := setupManagerFixture(t)
	ctx := context.Background()

	err := f.manager.CreateOrRenew(ctx, sessions.UserSession{ID: "user-1", Role: users.RoleUser}, f.jar)
	require.NoError(t, err)

	token := f.sessionToken(t)
	row, ok := f.repo.Session(token)
	require.True(t, ok)
	require.Equal(t, "user-1", row.UserID)
	require.Equal(t, f.now.Add(7*24*time.Hour), row.ExpiresAt)
	require.Equal(t, f.now, row.CreatedAt)

	opts, ok := f.jar.Options(sessions.SessionCookieName)
	require.True(t, ok)
	require.True(t, opts.HTTPOnly)
	require.Equal(t, cookies.SameSiteLax, opts.SameSite)
	require.Equal(t, row.ExpiresAt, opts.Expires)
}

func TestCreateOrRenewReusesLiveToken(t *testing.T) {
	f := setupManagerFixture(t)
	ctx := context.Background()
	user := sessions.UserSession{ID: "user-1", Role: users.RoleUser}

	require.NoError(t, f.manager.CreateOrRenew(ctx, user, f.jar))
	firstToken := f.sessionToken(t)

	f.now = f.now.Add(time.Hour)
	require.NoError(t, f.manager.CreateOrRenew(ctx, user, f.jar))
	secondToken := f.sessionToken(t)

	require.Equal(t, firstToken, secondToken)
	require.Equal(t, 1, f.repo.Count())

	row, ok := f.repo.Session(firstToken)
	require.True(t, ok)
	require.Equal(t, f.now.Add(7*24*time.Hour), row.ExpiresAt)
}

func TestCreateOrRenewMintsFreshTokenAfterExpiry(t *testing.T) {
	f := setupManagerFixture(t)
	ctx := context.Background()
	user := sessions.UserSession{ID: "user-1", Role: users.RoleUser}

	require.NoError(t, f.manager.CreateOrRenew(ctx, user, f.jar))
	firstToken := f.sessionToken(t)

	f.now = f.now.Add(8 * 24 * time.Hour)
	require.NoError(t, f.manager.CreateOrRenew(ctx, user, f.jar))
	secondToken := f.sessionToken(t)

	require.NotEqual(t, firstToken, secondToken)
	require.Equal(t, 1, f.repo.Count(), "expired row must be replaced, not duplicated")
}

func TestConcurrentCreateOrRenewKeepsOneLiveSession(t *testing.T) {
	f := setupManagerFixture(t)
	ctx := context.Background()
	user := sessions.UserSession{ID: "user-1", Role: users.RoleUser}

	// two browser tabs racing through sign-in with independent jars
	otherJar := cookiesfakes.NewFakeCookies()
	otherJar.NowTime = f.jar.NowTime

	require.NoError(t, f.manager.CreateOrRenew(ctx, user, f.jar))
	require.NoError(t, f.manager.CreateOrRenew(ctx, user, otherJar))

	require.Equal(t, 1, f.repo.Count())

	// at least one of the two cookies must resolve; the user never ends up
	// with zero valid sessions
	first, err := f.manager.Resolve(ctx, f.jar)
	require.NoError(t, err)
	second, err := f.manager.Resolve(ctx, otherJar)
	require.NoError(t, err)
	require.True(t, first != nil || second != nil)
}

func TestResolveReturnsUserSession(t *testing.T) {
	f := setupManagerFixture(t)
	ctx := context.Background()
	f.repo.Roles["user-1"] = users.RoleAdmin

	require.NoError(t, f.manager.CreateOrRenew(ctx, sessions.UserSession{ID: "user-1", Role: users.RoleAdmin}, f.jar))

	resolved, err := f.manager.Resolve(ctx, f.jar)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	require.Equal(t, "user-1", resolved.ID)
	require.Equal(t, users.RoleAdmin, resolved.Role)
}

func TestResolveWithoutCookie(t *testing.T) {
	f := setupManagerFixture(t)

	resolved, err := f.manager.Resolve(context.Background(), f.jar)
	require.NoError(t, err)
	require.Nil(t, resolved)
}

func TestResolveTreatsUnknownAndExpiredAlike(t *testing.T) {
	f := setupManagerFixture(t)
	ctx := context.Background()

	// unknown token
	require.NoError(t, f.jar.Set(sessions.SessionCookieName, "never-issued", cookies.Options{}))
	fromUnknown, err := f.manager.Resolve(ctx, f.jar)
	require.NoError(t, err)

	// expired token
	require.NoError(t, f.manager.CreateOrRenew(ctx, sessions.UserSession{ID: "user-1", Role: users.RoleUser}, f.jar))
	f.now = f.now.Add(8 * 24 * time.Hour)
	f.jar.NowTime = func() time.Time { return f.now.Add(-8 * 24 * time.Hour) } // keep the cookie readable
	fromExpired, err := f.manager.Resolve(ctx, f.jar)
	require.NoError(t, err)

	require.Nil(t, fromUnknown)
	require.Nil(t, fromExpired)
}

func TestRenewExpiration(t *testing.T) {
	f := setupManagerFixture(t)
	ctx := context.Background()

	require.NoError(t, f.manager.CreateOrRenew(ctx, sessions.UserSession{ID: "user-1", Role: users.RoleUser}, f.jar))
	token := f.sessionToken(t)

	f.now = f.now.Add(3 * 24 * time.Hour)
	require.NoError(t, f.manager.RenewExpiration(ctx, f.jar))

	row, ok := f.repo.Session(token)
	require.True(t, ok)
	require.Equal(t, f.now.Add(7*24*time.Hour), row.ExpiresAt)

	opts, ok := f.jar.Options(sessions.SessionCookieName)
	require.True(t, ok)
	require.Equal(t, row.ExpiresAt, opts.Expires)
}

func TestRenewExpirationWithoutCookieIsNoOp(t *testing.T) {
	f := setupManagerFixture(t)
	require.NoError(t, f.manager.RenewExpiration(context.Background(), f.jar))
	require.Equal(t, 0, f.repo.Count())
}

func TestDestroy(t *testing.T) {
	f := setupManagerFixture(t)
	ctx := context.Background()

	require.NoError(t, f.manager.CreateOrRenew(ctx, sessions.UserSession{ID: "user-1", Role: users.RoleUser}, f.jar))
	require.NoError(t, f.manager.Destroy(ctx, f.jar))

	require.Equal(t, 0, f.repo.Count())
	require.Nil(t, f.jar.Get(sessions.SessionCookieName))

	// idempotent
	require.NoError(t, f.manager.Destroy(ctx, f.jar))
}

func TestCleanupExpired(t *testing.T) {
	f := setupManagerFixture(t)
	ctx := context.Background()

	live := &sessions.Session{Token: "live", UserID: "user-1", ExpiresAt: f.now.Add(time.Hour), CreatedAt: f.now}
	stale := &sessions.Session{Token: "stale", UserID: "user-2", ExpiresAt: f.now.Add(-time.Hour), CreatedAt: f.now.Add(-2 * time.Hour)}
	require.NoError(t, f.repo.Upsert(ctx, live))
	require.NoError(t, f.repo.Upsert(ctx, stale))

	count, err := f.manager.CleanupExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	_, ok := f.repo.Session("live")
	require.True(t, ok, "unexpired rows must be left untouched")

	count, err = f.manager.CleanupExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)
}
