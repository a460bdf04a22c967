package users

import "context"

// Repo is the identity store consumed by the auth core. Emails are stored
// and looked up lowercased.
type Repo interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByOAuthAccount returns the user linked to the given federated
	// identity, if any.
	GetByOAuthAccount(ctx context.Context, provider, providerAccountID string) (*User, error)

	// LinkOAuthAccount records that the federated identity belongs to the
	// user. Linking the same pair twice is a no-op.
	LinkOAuthAccount(ctx context.Context, account *OAuthAccount) error
}
