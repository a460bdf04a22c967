package postgres

import (
	"context"
	"database/sql"
	"strings"

	apperrors "github.com/accessregistry/go-registry-auth/internal/errors"
	"github.com/accessregistry/go-registry-auth/users"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

const pgUniqueViolation = "23505"

var _ users.Repo = (*UserRepo)(nil)

type UserRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	stored := *user
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.Role == "" {
		stored.Role = users.RoleUser
	}
	stored.Email = strings.ToLower(stored.Email)

	query := `INSERT INTO users (id, email, name, username, password_hash, salt, role)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		stored.ID, stored.Email, stored.Name, stored.Username,
		stored.PasswordHash, stored.Salt, stored.Role,
	).Scan(&stored.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, errors.Wrapf(apperrors.ErrEmailTaken, "[UserRepo.Create] %s", pgErr.ConstraintName)
		}
		return nil, errors.Wrap(err, "[UserRepo.Create]")
	}
	return &stored, nil
}

const userColumns = `id, email, name, username, password_hash, salt, role, created_at`

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, strings.ToLower(email)), "[UserRepo.GetByEmail]")
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id), "[UserRepo.GetByID]")
}

func (r *UserRepo) GetByOAuthAccount(ctx context.Context, provider, providerAccountID string) (*users.User, error) {
	query := `SELECT u.id, u.email, u.name, u.username, u.password_hash, u.salt, u.role, u.created_at
		 FROM users u
		 JOIN user_oauth_accounts a ON a.user_id = u.id
		 WHERE a.provider = $1 AND a.provider_account_id = $2`
	return r.scanUser(r.db.QueryRowContext(ctx, query, provider, providerAccountID), "[UserRepo.GetByOAuthAccount]")
}

func (r *UserRepo) LinkOAuthAccount(ctx context.Context, account *users.OAuthAccount) error {
	query := `INSERT INTO user_oauth_accounts (provider, provider_account_id, user_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (provider, provider_account_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, account.Provider, account.ProviderAccountID, account.UserID)
	if err != nil {
		return errors.Wrap(err, "[UserRepo.LinkOAuthAccount]")
	}
	return nil
}

func (r *UserRepo) scanUser(row *sql.Row, op string) (*users.User, error) {
	user := &users.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Username,
		&user.PasswordHash, &user.Salt, &user.Role, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(apperrors.ErrNotFound, op)
	}
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	return user, nil
}
