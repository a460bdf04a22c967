package postgres

import (
	"context"
	"database/sql"
	"time"

	apperrors "github.com/accessregistry/go-registry-auth/internal/errors"
	"github.com/accessregistry/go-registry-auth/sessions"
	"github.com/accessregistry/go-registry-auth/users"
	"github.com/pkg/errors"
)

var _ sessions.Repo = (*SessionRepo)(nil)

type SessionRepo struct {
	db DBTX
}

func NewSessionRepo(db DBTX) *SessionRepo {
	return &SessionRepo{db: db}
}

// Upsert inserts the session, replacing any existing row for the same
// user. The user_id conflict target is what keeps concurrent sign-ins
// from accumulating rows.
func (r *SessionRepo) Upsert(ctx context.Context, session *sessions.Session) error {
	query := `INSERT INTO sessions (token, user_id, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE
		 SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at`

	_, err := r.db.ExecContext(ctx, query, session.Token, session.UserID, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "[SessionRepo.Upsert]")
	}
	return nil
}

func (r *SessionRepo) FindByUserID(ctx context.Context, userID string, now time.Time) (*sessions.Session, error) {
	query := `SELECT token, user_id, expires_at, created_at FROM sessions
		 WHERE user_id = $1 AND expires_at > $2`

	session := &sessions.Session{}
	err := r.db.QueryRowContext(ctx, query, userID, now).
		Scan(&session.Token, &session.UserID, &session.ExpiresAt, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(apperrors.ErrNotFound, "[SessionRepo.FindByUserID]")
	}
	if err != nil {
		return nil, errors.Wrap(err, "[SessionRepo.FindByUserID]")
	}
	return session, nil
}

// ResolveToken maps a live token onto its owner. Expired and unknown
// tokens are both a not-found.
func (r *SessionRepo) ResolveToken(ctx context.Context, token string, now time.Time) (*sessions.UserSession, error) {
	query := `SELECT u.id, u.role FROM sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.token = $1 AND s.expires_at > $2`

	user := &sessions.UserSession{}
	var role string
	err := r.db.QueryRowContext(ctx, query, token, now).Scan(&user.ID, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(apperrors.ErrNotFound, "[SessionRepo.ResolveToken]")
	}
	if err != nil {
		return nil, errors.Wrap(err, "[SessionRepo.ResolveToken]")
	}
	user.Role = users.Role(role)
	return user, nil
}

func (r *SessionRepo) UpdateExpiry(ctx context.Context, token string, expiresAt time.Time) error {
	query := `UPDATE sessions SET expires_at = $2 WHERE token = $1`

	result, err := r.db.ExecContext(ctx, query, token, expiresAt)
	if err != nil {
		return errors.Wrap(err, "[SessionRepo.UpdateExpiry]")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "[SessionRepo.UpdateExpiry] rows affected")
	}
	if affected == 0 {
		return errors.Wrap(apperrors.ErrNotFound, "[SessionRepo.UpdateExpiry]")
	}
	return nil
}

func (r *SessionRepo) DeleteByToken(ctx context.Context, token string) error {
	query := `DELETE FROM sessions WHERE token = $1`

	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return errors.Wrap(err, "[SessionRepo.DeleteByToken]")
	}
	return nil
}

func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at <= $1`

	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, errors.Wrap(err, "[SessionRepo.DeleteExpired]")
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "[SessionRepo.DeleteExpired] rows affected")
	}
	return count, nil
}
