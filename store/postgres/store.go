// Package postgres implements the identity and session repositories on
// PostgreSQL, with schema management through embedded goose migrations.
package postgres

import (
	"context"
	"database/sql"

	"github.com/accessregistry/go-registry-auth/sessions"
	"github.com/accessregistry/go-registry-auth/store/postgres/migrations"
	"github.com/accessregistry/go-registry-auth/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

// DBTX is the subset of database/sql used by the repositories. Both
// *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store owns the database handle and hands out typed repositories bound
// to it.
type Store struct {
	db       *sql.DB
	users    *UserRepo
	sessions *SessionRepo
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "[NewStore] open database")
	}
	return &Store{
		db:       db,
		users:    NewUserRepo(db),
		sessions: NewSessionRepo(db),
	}, nil
}

func (s *Store) Users() users.Repo {
	return s.users
}

func (s *Store) Sessions() sessions.Repo {
	return s.sessions
}

func (s *Store) Conn() *sql.DB {
	return s.db
}

// RunMigrations brings the schema up to date from the embedded migration
// files.
func (s *Store) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return errors.Wrap(err, "[Store.RunMigrations] set dialect")
	}
	if err := goose.UpContext(ctx, s.db, "."); err != nil {
		return errors.Wrap(err, "[Store.RunMigrations] apply migrations")
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
