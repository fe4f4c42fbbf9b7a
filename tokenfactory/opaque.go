package tokenfactory

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/oauthkit/oauthkit/errors"
	"github.com/oauthkit/oauthkit/token"
	"github.com/oauthkit/oauthkit/tokenstore"
)

// OpaqueFactory mints random opaque access tokens and records them in a
// tokenstore, which is the only place their meaning lives. Token strings are
// token.TokenLength characters of base64url, a subset of the rfc6749 access
// token alphabet.
type OpaqueFactory struct {
	store     tokenstore.Store
	tokenType string
	timeFunc  func() time.Time
}

// OpaqueOption configures an OpaqueFactory.
type OpaqueOption func(*OpaqueFactory)

// WithOpaqueTokenType overrides the reported token type.
func WithOpaqueTokenType(tokenType string) OpaqueOption {
	return func(f *OpaqueFactory) { f.tokenType = tokenType }
}

// WithOpaqueTimeFunc stubs the clock in tests.
func WithOpaqueTimeFunc(now func() time.Time) OpaqueOption {
	return func(f *OpaqueFactory) { f.timeFunc = now }
}

// NewOpaqueFactory builds a factory persisting to store. Unlike JWTs, opaque
// tokens are meaningless without their store record, so the store is
// mandatory.
func NewOpaqueFactory(store tokenstore.Store, opts ...OpaqueOption) *OpaqueFactory {
	f := &OpaqueFactory{
		store:     store,
		tokenType: DefaultTokenType,
		timeFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewToken implements token.Factory.
func (f *OpaqueFactory) NewToken(ctx context.Context, client token.Client, lifetime int, scopes []string, user token.User) (token.AccessToken, error) {
	raw, err := randomToken()
	if err != nil {
		return nil, err
	}

	now := f.timeFunc().UTC().Truncate(time.Second)
	tok := &issuedToken{
		token:     raw,
		tokenType: f.tokenType,
		lifetime:  lifetime,
		expires:   now.Add(time.Duration(lifetime) * time.Second),
		scopes:    scopes,
	}
	if err := record(ctx, f.store, client, usernameOf(user), tok, now); err != nil {
		return nil, err
	}
	return tok, nil
}

// Lookup returns the live record for an access token. Expired or unknown
// tokens return tokenstore.ErrNotFound.
func (f *OpaqueFactory) Lookup(ctx context.Context, tokenString string) (tokenstore.Record, error) {
	rec, err := f.store.Get(ctx, tokenString)
	if err != nil {
		return tokenstore.Record{}, err
	}
	if rec.Expired(f.timeFunc()) {
		return tokenstore.Record{}, errors.Mark(tokenstore.ErrNotFound, 0)
	}
	return rec, nil
}

// Revoke deletes the record for an access token.
func (f *OpaqueFactory) Revoke(ctx context.Context, tokenString string) error {
	return f.store.Delete(ctx, tokenString)
}

// randomToken returns token.TokenLength characters of base64url encoded
// random data: 16 bytes encode to exactly 22 characters unpadded.
func randomToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.WrapPrefix(err, "generating token", 0)
	}
	s := base64.RawURLEncoding.EncodeToString(buf)
	if len(s) != token.TokenLength {
		return "", errors.Errorf("unexpected token length %d", len(s))
	}
	return s, nil
}
