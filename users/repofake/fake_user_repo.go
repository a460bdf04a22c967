package repofake

import (
	"context"
	"strings"
	"sync"

	apperrors "github.com/accessregistry/go-registry-auth/internal/errors"
	"github.com/accessregistry/go-registry-auth/users"
	"github.com/google/uuid"
)

var _ users.Repo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	byID  map[string]*users.User
	links map[string]string // provider + "\x00" + account id -> user id
	lock  sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		byID:  make(map[string]*users.User),
		links: make(map[string]string),
	}
}

func (r *FakeUserRepo) Create(_ context.Context, user *users.User) (*users.User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	email := strings.ToLower(user.Email)
	for _, existing := range r.byID {
		if existing.Email == email {
			return nil, apperrors.ErrEmailTaken
		}
	}

	stored := *user
	stored.Email = email
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.Role == "" {
		stored.Role = users.RoleUser
	}
	r.byID[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *FakeUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	email = strings.ToLower(email)
	for _, user := range r.byID {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (r *FakeUserRepo) GetByOAuthAccount(_ context.Context, provider, providerAccountID string) (*users.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	userID, ok := r.links[provider+"\x00"+providerAccountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	user, ok := r.byID[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (r *FakeUserRepo) LinkOAuthAccount(_ context.Context, account *users.OAuthAccount) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.byID[account.UserID]; !ok {
		return apperrors.ErrNotFound
	}
	r.links[account.Provider+"\x00"+account.ProviderAccountID] = account.UserID
	return nil
}
