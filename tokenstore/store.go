// Package tokenstore persists issued access tokens. Token persistence is a
// collaborator concern: the issuance engine never stores tokens itself, but
// the bundled factories in tokenfactory can record what they mint here, and
// hosts look tokens up when authenticating resource requests.
//
// Three implementations are provided: an in-memory store for tests and
// single-process deployments, a SQLite store, and a PostgreSQL store.
package tokenstore

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"

	"github.com/oauthkit/oauthkit/errors"
)

// ErrNotFound is returned when no record exists for an access token.
var ErrNotFound = errors.NewC("token not found", codes.NotFound)

// Record is the stored form of an issued access token.
type Record struct {
	// Token is the access token string, the primary key.
	Token string

	// TokenType is the token's type, e.g. "Bearer".
	TokenType string

	// ClientRole names the role of the client the token was issued to.
	ClientRole string

	// Username identifies the resource owner for password grant tokens,
	// empty for client credentials tokens.
	Username string

	// Scopes are the granted scopes attached to the token.
	Scopes []string

	// IssuedAt and ExpiresAt bound the token's validity.
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the record is no longer valid at now.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Lifetime returns the record's validity in whole seconds.
func (r Record) Lifetime() int {
	return int(r.ExpiresAt.Sub(r.IssuedAt) / time.Second)
}

// Store persists token records. Implementations must be safe for concurrent
// use.
type Store interface {
	// Save stores a record, replacing any existing record for the same
	// token.
	Save(ctx context.Context, rec Record) error

	// Get returns the record for the access token, or ErrNotFound.
	// Expiry is not checked here; callers decide with Record.Expired.
	Get(ctx context.Context, token string) (Record, error)

	// Delete removes the record for the access token. Deleting an unknown
	// token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes every record expired at now and reports how
	// many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
