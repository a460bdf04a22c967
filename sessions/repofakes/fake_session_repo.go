package repofakes

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/accessregistry/go-registry-auth/internal/errors"
	"github.com/accessregistry/go-registry-auth/sessions"
	"github.com/accessregistry/go-registry-auth/users"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory sessions.Repo. The relational store joins
// sessions to users for role resolution; the fake approximates the join
// with the Roles map (user id -> role, defaulting to "user").
type FakeSessionRepo struct {
	Roles map[string]users.Role

	byToken map[string]*sessions.Session
	byUser  map[string]string // user id -> token
	lock    sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		Roles:   make(map[string]users.Role),
		byToken: make(map[string]*sessions.Session),
		byUser:  make(map[string]string),
	}
}

func (r *FakeSessionRepo) Upsert(_ context.Context, session *sessions.Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if previous, ok := r.byUser[session.UserID]; ok {
		delete(r.byToken, previous)
	}
	stored := *session
	r.byToken[stored.Token] = &stored
	r.byUser[stored.UserID] = stored.Token
	return nil
}

func (r *FakeSessionRepo) FindByUserID(_ context.Context, userID string, now time.Time) (*sessions.Session, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	token, ok := r.byUser[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	session := r.byToken[token]
	if session == nil || session.Expired(now) {
		return nil, apperrors.ErrNotFound
	}
	out := *session
	return &out, nil
}

func (r *FakeSessionRepo) ResolveToken(_ context.Context, token string, now time.Time) (*sessions.UserSession, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	session, ok := r.byToken[token]
	if !ok || session.Expired(now) {
		return nil, apperrors.ErrNotFound
	}

	role, ok := r.Roles[session.UserID]
	if !ok {
		role = users.RoleUser
	}
	return &sessions.UserSession{ID: session.UserID, Role: role}, nil
}

func (r *FakeSessionRepo) UpdateExpiry(_ context.Context, token string, expiresAt time.Time) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	session, ok := r.byToken[token]
	if !ok {
		return apperrors.ErrNotFound
	}
	session.ExpiresAt = expiresAt
	return nil
}

func (r *FakeSessionRepo) DeleteByToken(_ context.Context, token string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	session, ok := r.byToken[token]
	if !ok {
		return nil
	}
	delete(r.byToken, token)
	if r.byUser[session.UserID] == token {
		delete(r.byUser, session.UserID)
	}
	return nil
}

func (r *FakeSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	var count int64
	for token, session := range r.byToken {
		if session.Expired(now) {
			delete(r.byToken, token)
			if r.byUser[session.UserID] == token {
				delete(r.byUser, session.UserID)
			}
			count++
		}
	}
	return count, nil
}

// Session returns a copy of the stored row for assertions.
func (r *FakeSessionRepo) Session(token string) (*sessions.Session, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	session, ok := r.byToken[token]
	if !ok {
		return nil, false
	}
	out := *session
	return &out, true
}

// Count reports how many rows the fake currently holds.
func (r *FakeSessionRepo) Count() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.byToken)
}
