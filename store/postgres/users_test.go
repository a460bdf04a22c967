package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	apperrors "github.com/accessregistry/go-registry-auth/internal/errors"
	"github.com/accessregistry/go-registry-auth/users"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func newUserRepoWithMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepo(db), mock
}

const insertUserQuery = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*email,\s*name,\s*username,\s*password_hash,\s*salt,\s*role\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*RETURNING\s+created_at\s*$`

func TestUserRepoCreate(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(insertUserQuery).
		WithArgs(sqlmock.AnyArg(), "ada@example.com", "Ada Lovelace", "ada_l", "hash", "salt", "user").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	user, err := repo.Create(context.Background(), &users.User{
		Email:        "Ada@Example.com",
		Name:         "Ada Lovelace",
		Username:     "ada_l",
		PasswordHash: "hash",
		Salt:         "salt",
	})
	require.NoError(t, err)
	require.NotEmpty(t, user.ID, "an id must be generated when absent")
	require.Equal(t, "ada@example.com", user.Email, "emails are stored lowercased")
	require.Equal(t, users.RoleUser, user.Role, "role defaults to user")
	require.Equal(t, createdAt, user.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoCreateDuplicateEmail(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectQuery(insertUserQuery).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), &users.User{Email: "ada@example.com", Name: "Ada", Username: "ada_l"})
	require.ErrorIs(t, err, apperrors.ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "name", "username", "password_hash", "salt", "role", "created_at"}).
		AddRow("u-1", "ada@example.com", "Ada Lovelace", "ada_l", "hash", "salt", "admin", time.Now())
}

func TestUserRepoGetByEmail(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	q := `(?s)^SELECT\s+.+\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).WithArgs("ada@example.com").WillReturnRows(userRows())

	user, err := repo.GetByEmail(context.Background(), "Ada@Example.com")
	require.NoError(t, err)
	require.Equal(t, "u-1", user.ID)
	require.Equal(t, users.RoleAdmin, user.Role)
	require.True(t, user.HasPassword())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoGetByEmailNotFound(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	q := `(?s)^SELECT\s+.+\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoGetByOAuthAccount(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	q := `(?s)^SELECT\s+.+\s+FROM\s+users\s+u\s+JOIN\s+user_oauth_accounts\s+a\s+ON\s+a\.user_id\s*=\s*u\.id\s+WHERE\s+a\.provider\s*=\s*\$1\s+AND\s+a\.provider_account_id\s*=\s*\$2\s*$`
	mock.ExpectQuery(q).WithArgs("google", "fed-1").WillReturnRows(userRows())

	user, err := repo.GetByOAuthAccount(context.Background(), "google", "fed-1")
	require.NoError(t, err)
	require.Equal(t, "u-1", user.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoLinkOAuthAccountIdempotent(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+user_oauth_accounts\s*\(provider,\s*provider_account_id,\s*user_id\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*ON\s+CONFLICT\s*\(provider,\s*provider_account_id\)\s*DO\s+NOTHING\s*$`
	mock.ExpectExec(q).WithArgs("google", "fed-1", "u-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("google", "fed-1", "u-1").WillReturnResult(sqlmock.NewResult(0, 0))

	account := &users.OAuthAccount{Provider: "google", ProviderAccountID: "fed-1", UserID: "u-1"}
	require.NoError(t, repo.LinkOAuthAccount(context.Background(), account))
	require.NoError(t, repo.LinkOAuthAccount(context.Background(), account))
	require.NoError(t, mock.ExpectationsWereMet())
}
