// Package token implements the decision core of an RFC 6749 token endpoint:
// the grant type authorization gate, scope resolution, token lifetime
// resolution, and the issuance engine that turns a token request into a
// token response or a protocol error.
//
// The package performs no I/O of its own. The host authenticates the client,
// parses the request body, and serializes the response; persistence and
// token minting are delegated through the Factory and UserResolver
// contracts. See the tokenfactory, tokenstore and clientstore packages for
// ready made collaborators.
package token

import (
	"context"
	"time"
)

const (
	// ScopePattern is the grammar of the raw scope request parameter per
	// rfc6749 section 3.3: scope tokens drawn from %x21 / %x23-5B / %x5D-7E,
	// separated by spaces.
	ScopePattern = `^[ !#-\[\]-~]*$`

	// TokenPattern is the grammar of access token strings per rfc6749
	// appendix A.12.
	TokenPattern = `^[a-zA-Z0-9\-._~+/]*$`

	// TokenLength is the length of access tokens minted by the bundled
	// factories.
	TokenLength = 22
)

// Client is the authenticated API client behind a token request. The host
// authenticates the client before the issuance engine runs; by the time this
// package sees a Client, its identity is settled.
type Client interface {
	// Role names the client's role in the registered policy.
	Role() string

	// TokenLifetime returns the client's lifetime override in seconds, or
	// nil to fall back to the role default.
	TokenLifetime() *int
}

// User is the resource owner resolved for a password grant request. The core
// treats it as opaque and only passes it through to the token factory.
type User any

// UserResolver looks up a resource owner by username for the password grant.
// A nil User with a nil error means no such user exists; a non-nil error
// signals an infrastructure failure, not a bad grant.
type UserResolver interface {
	ResolveUser(ctx context.Context, username string) (User, error)
}

// AccessToken is the read only view of a minted token that the issuance
// engine needs to build a response.
type AccessToken interface {
	// Token is the access token string, matching TokenPattern.
	Token() string

	// TokenType reports the token's type, e.g. "Bearer".
	TokenType() string

	// Lifetime is the token's validity in seconds.
	Lifetime() int

	// ExpirationDate is the absolute instant the token expires.
	ExpirationDate() time.Time

	// Scopes are the granted scopes attached to the token.
	Scopes() []string
}

// Factory mints access tokens. user is nil for every grant type except
// password. Implementations own persistence; the issuance engine never
// stores tokens itself.
type Factory interface {
	NewToken(ctx context.Context, client Client, lifetime int, scopes []string, user User) (AccessToken, error)
}
