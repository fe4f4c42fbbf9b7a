// Package tokenfactory provides ready made token.Factory implementations:
// HMAC-signed JWTs that carry their own claims, and opaque random tokens
// whose state lives entirely in a tokenstore. Both mint token strings that
// satisfy the rfc6749 access token grammar.
package tokenfactory

import (
	"context"
	"time"

	"github.com/oauthkit/oauthkit/token"
	"github.com/oauthkit/oauthkit/tokenstore"
)

// DefaultTokenType is reported on minted tokens unless overridden.
const DefaultTokenType = "Bearer"

// issuedToken is the AccessToken view both factories hand back.
type issuedToken struct {
	token     string
	tokenType string
	lifetime  int
	expires   time.Time
	scopes    []string
}

func (t *issuedToken) Token() string             { return t.token }
func (t *issuedToken) TokenType() string         { return t.tokenType }
func (t *issuedToken) Lifetime() int             { return t.lifetime }
func (t *issuedToken) ExpirationDate() time.Time { return t.expires }
func (t *issuedToken) Scopes() []string          { return t.scopes }

// record persists a freshly minted token when a store is configured.
func record(ctx context.Context, store tokenstore.Store, client token.Client, username string, tok *issuedToken, issuedAt time.Time) error {
	if store == nil {
		return nil
	}
	return store.Save(ctx, tokenstore.Record{
		Token:      tok.token,
		TokenType:  tok.tokenType,
		ClientRole: client.Role(),
		Username:   username,
		Scopes:     tok.scopes,
		IssuedAt:   issuedAt,
		ExpiresAt:  tok.expires,
	})
}

// usernameOf extracts a username from the opaque user when it provides one.
// Hosts whose user type implements the interface get it recorded alongside
// password grant tokens.
func usernameOf(user token.User) string {
	type named interface{ Username() string }
	if u, ok := user.(named); ok {
		return u.Username()
	}
	return ""
}
