package tokenfactory

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"

	"github.com/oauthkit/oauthkit/errors"
	"github.com/oauthkit/oauthkit/token"
	"github.com/oauthkit/oauthkit/tokenstore"
)

// ErrInvalidToken is returned by Verify for tokens that fail signature or
// claims validation.
var ErrInvalidToken = errors.NewC("invalid access token", codes.Unauthenticated)

// Claims is the claim set carried by JWT access tokens.
type Claims struct {
	jwt.RegisteredClaims
	Scopes []string `json:"scopes,omitempty"`
	Role   string   `json:"role,omitempty"`
}

// JWTFactory mints HS256-signed JWT access tokens. JWT compact serialization
// uses only base64url characters and dots, so minted tokens satisfy the
// rfc6749 access token grammar. The factory is safe for concurrent use.
type JWTFactory struct {
	signingKey []byte
	issuer     string
	tokenType  string
	store      tokenstore.Store
	timeFunc   func() time.Time
}

// JWTOption configures a JWTFactory.
type JWTOption func(*JWTFactory)

// WithJWTIssuer sets the iss claim on minted tokens and requires it when
// verifying. Defaults to "oauthkit".
func WithJWTIssuer(issuer string) JWTOption {
	return func(f *JWTFactory) { f.issuer = issuer }
}

// WithJWTTokenType overrides the reported token type.
func WithJWTTokenType(tokenType string) JWTOption {
	return func(f *JWTFactory) { f.tokenType = tokenType }
}

// WithJWTStore records minted tokens in a tokenstore. JWTs are self
// contained, so a store is optional; configure one when tokens must be
// revocable or auditable.
func WithJWTStore(store tokenstore.Store) JWTOption {
	return func(f *JWTFactory) { f.store = store }
}

// WithJWTTimeFunc stubs the clock in tests.
func WithJWTTimeFunc(now func() time.Time) JWTOption {
	return func(f *JWTFactory) { f.timeFunc = now }
}

// NewJWTFactory builds a factory signing with the given key.
func NewJWTFactory(signingKey []byte, opts ...JWTOption) *JWTFactory {
	f := &JWTFactory{
		signingKey: signingKey,
		issuer:     "oauthkit",
		tokenType:  DefaultTokenType,
		timeFunc:   time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewToken implements token.Factory.
func (f *JWTFactory) NewToken(ctx context.Context, client token.Client, lifetime int, scopes []string, user token.User) (token.AccessToken, error) {
	now := f.timeFunc().UTC().Truncate(time.Second)
	expires := now.Add(time.Duration(lifetime) * time.Second)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    f.issuer,
			Subject:   usernameOf(user),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Scopes: scopes,
		Role:   client.Role(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.signingKey)
	if err != nil {
		return nil, errors.WrapPrefix(err, "signing token", 0)
	}

	tok := &issuedToken{
		token:     signed,
		tokenType: f.tokenType,
		lifetime:  lifetime,
		expires:   expires,
		scopes:    scopes,
	}
	if err := record(ctx, f.store, client, usernameOf(user), tok, now); err != nil {
		return nil, err
	}
	return tok, nil
}

// Verify validates a token string and returns its claims. Hosts use this
// when authenticating resource requests, typically to build a scope.Caller
// from the Scopes and Role claims.
func (f *JWTFactory) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(t *jwt.Token) (interface{}, error) {
			return f.signingKey, nil
		},
		jwt.WithIssuer(f.issuer),
		jwt.WithLeeway(5*time.Second),
		jwt.WithTimeFunc(f.timeFunc),
		jwt.WithIssuedAt(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, errors.Mark(ErrInvalidToken, 0).WithPublicMessage(err.Error())
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.Mark(ErrInvalidToken, 0)
	}
	return claims, nil
}
