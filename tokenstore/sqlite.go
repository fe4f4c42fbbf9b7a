package tokenstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // register sqlite driver

	"github.com/oauthkit/oauthkit/errors"
)

// SQLiteOption is a functional option for configuring the SQLite store.
type SQLiteOption func(*sqliteStore)

// WithSQLiteTableName overrides the default table name of "oauth_tokens".
func WithSQLiteTableName(name string) SQLiteOption {
	return func(s *sqliteStore) {
		s.table = name
	}
}

// NewSQLiteStore returns a SQLite backed store. The table is created
// optimistically on initialization; any error there is considered
// non-recoverable and will panic.
//
//	store := tokenstore.NewSQLiteStore(":memory:")
//	store := tokenstore.NewSQLiteStore("file:tokens.db?_journal=WAL")
func NewSQLiteStore(conn string, opts ...SQLiteOption) Store {
	db, err := sql.Open("sqlite3", conn)
	if err != nil {
		panic("failed to open sqlite connection: " + err.Error())
	}
	s := &sqliteStore{db: db, table: "oauth_tokens"}
	for _, opt := range opts {
		opt(s)
	}
	s.ensureTable()
	return s
}

type sqliteStore struct {
	db    *sql.DB
	table string
}

func (s *sqliteStore) ensureTable() {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS ` + s.table + ` (
		token TEXT PRIMARY KEY,
		token_type TEXT NOT NULL,
		client_role TEXT NOT NULL,
		username TEXT NOT NULL DEFAULT '',
		scopes TEXT NOT NULL DEFAULT '',
		issued_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	)`)
	if err != nil {
		panic("failed to create token table: " + err.Error())
	}
}

func (s *sqliteStore) Save(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO `+s.table+`
		(token, token_type, client_role, username, scopes, issued_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Token, rec.TokenType, rec.ClientRole, rec.Username,
		strings.Join(rec.Scopes, " "), rec.IssuedAt.Unix(), rec.ExpiresAt.Unix())
	if err != nil {
		return errors.Wrap(err, 0)
	}
	return nil
}

func (s *sqliteStore) Get(ctx context.Context, token string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT token, token_type, client_role, username, scopes, issued_at, expires_at
		FROM `+s.table+` WHERE token = ?`, token)
	return scanRecord(row)
}

func (s *sqliteStore) Delete(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE token = ?`, token)
	if err != nil {
		return errors.Wrap(err, 0)
	}
	return nil
}

func (s *sqliteStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE expires_at <= ?`, now.Unix())
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
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var scopes string
	var issuedAt, expiresAt int64
	err := row.Scan(&rec.Token, &rec.TokenType, &rec.ClientRole, &rec.Username,
		&scopes, &issuedAt, &expiresAt)
	if err == sql.ErrNoRows {
		return Record{}, errors.Mark(ErrNotFound, 0)
	}
	if err != nil {
		return Record{}, errors.Wrap(err, 0)
	}
	if scopes != "" {
		rec.Scopes = strings.Fields(scopes)
	}
	rec.IssuedAt = time.Unix(issuedAt, 0).UTC()
	rec.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return rec, nil
}
