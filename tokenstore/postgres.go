package tokenstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/lib/pq" // register postgres driver

	"github.com/oauthkit/oauthkit/errors"
)

// PostgresOption is a functional option for configuring the Postgres store.
type PostgresOption func(*postgresStore)

// WithPostgresTableName overrides the default table name of "oauth_tokens".
func WithPostgresTableName(name string) PostgresOption {
	return func(s *postgresStore) {
		s.table = name
	}
}

// WithPostgresAutoCreateTable controls whether the token table is created on
// initialization. Set to false where migrations are managed separately.
func WithPostgresAutoCreateTable(autoCreate bool) PostgresOption {
	return func(s *postgresStore) {
		s.autoCreate = autoCreate
	}
}

// NewPostgresStore returns a PostgreSQL backed store, panicking on
// connection or table creation failure. Use SafeNewPostgresStore where a
// returned error is preferable.
func NewPostgresStore(connString string, opts ...PostgresOption) Store {
	s, err := SafeNewPostgresStore(connString, opts...)
	if err != nil {
		panic(err.Error())
	}
	return s
}

// SafeNewPostgresStore is NewPostgresStore with an error return instead of
// a panic.
func SafeNewPostgresStore(connString string, opts ...PostgresOption) (Store, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to open postgres connection", 0)
	}
	s := &postgresStore{db: db, table: "oauth_tokens", autoCreate: true}
	for _, opt := range opts {
		opt(s)
	}
	if s.autoCreate {
		if err := s.ensureTable(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// newPostgresStoreFromDB wraps an existing handle, for tests.
func newPostgresStoreFromDB(db *sql.DB, table string) *postgresStore {
	return &postgresStore{db: db, table: table}
}

type postgresStore struct {
	db         *sql.DB
	table      string
	autoCreate bool
}

func (s *postgresStore) ensureTable() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS ` + s.table + ` (
		token TEXT PRIMARY KEY,
		token_type TEXT NOT NULL,
		client_role TEXT NOT NULL,
		username TEXT NOT NULL DEFAULT '',
		scopes TEXT NOT NULL DEFAULT '',
		issued_at BIGINT NOT NULL,
		expires_at BIGINT NOT NULL
	)`)
	if err != nil {
		return errors.WrapPrefix(err, "failed to create token table", 0)
	}
	return nil
}

func (s *postgresStore) Save(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+s.table+`
		(token, token_type, client_role, username, scopes, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (token) DO UPDATE SET
			token_type = EXCLUDED.token_type,
			client_role = EXCLUDED.client_role,
			username = EXCLUDED.username,
			scopes = EXCLUDED.scopes,
			issued_at = EXCLUDED.issued_at,
			expires_at = EXCLUDED.expires_at`,
		rec.Token, rec.TokenType, rec.ClientRole, rec.Username,
		strings.Join(rec.Scopes, " "), rec.IssuedAt.Unix(), rec.ExpiresAt.Unix())
	if err != nil {
		return errors.Wrap(err, 0)
	}
	return nil
}

func (s *postgresStore) Get(ctx context.Context, token string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT token, token_type, client_role, username, scopes, issued_at, expires_at
		FROM `+s.table+` WHERE token = $1`, token)
	return scanRecord(row)
}

func (s *postgresStore) Delete(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE token = $1`, token)
	if err != nil {
		return errors.Wrap(err, 0)
	}
	return nil
}

func (s *postgresStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE expires_at <= $1`, now.Unix())
	if err != nil {
		return 0, errors.Wrap(err, 0)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, 0)
	}
	return int(n), nil
}

// Close releases the underlying database handle.
func (s *postgresStore) Close() error {
	return s.db.Close()
}
