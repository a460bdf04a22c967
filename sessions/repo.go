package sessions

import (
	"context"
	"time"
)

// Repo is the session store contract. Implementations must make the
// concurrent sign-in race safe: Upsert is keyed on the user id, so two
// simultaneous inserts for the same user converge on a single live row
// rather than failing or duplicating.
type Repo interface {
	// Upsert inserts the session, replacing any existing row for the same
	// user id.
	Upsert(ctx context.Context, session *Session) error

	// FindByUserID returns the user's session if one exists and is
	// unexpired at now.
	FindByUserID(ctx context.Context, userID string, now time.Time) (*Session, error)

	// ResolveToken returns the owning user of an unexpired session. An
	// unknown token and an expired one are both reported as not found.
	ResolveToken(ctx context.Context, token string, now time.Time) (*UserSession, error)

	// UpdateExpiry extends the session row identified by token.
	UpdateExpiry(ctx context.Context, token string, expiresAt time.Time) error

	// DeleteByToken removes the session row; deleting an absent token is
	// not an error.
	DeleteByToken(ctx context.Context, token string) error

	// DeleteExpired removes every row expired at now and returns how many
	// were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
