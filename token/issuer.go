package token

import (
	"context"

	"github.com/oauthkit/oauthkit"
	"github.com/oauthkit/oauthkit/errors"
	"github.com/oauthkit/oauthkit/logging"
)

// Request carries the parameters of one token request, after the host has
// authenticated the client and parsed the form body. All fields are the raw
// wire strings; validation happens inside Issue.
type Request struct {
	// GrantType is the raw grant_type parameter.
	GrantType string

	// Scope is the raw scope parameter, possibly empty.
	Scope string

	// ExpiresIn is the raw expires_in parameter, possibly empty.
	ExpiresIn string

	// Username is the resource owner's username, password grant only.
	Username string
}

// ScopeHook runs after scope resolution and may transform the granted set,
// for example to add implicit scopes. Hooks must not grant scopes outside
// the policy's catalog; the engine does not re-check.
type ScopeHook func(ctx context.Context, scopes []string) []string

// LifetimeHook runs after lifetime resolution and returns the lifetime
// actually used.
type LifetimeHook func(ctx context.Context, lifetime int) int

// ExtrasHook supplies additional response fields, merged at the top level of
// the success payload.
type ExtrasHook func(ctx context.Context, tok AccessToken) map[string]interface{}

// Issuer orchestrates token issuance: the grant type gate, user resolution
// for the password grant, scope and lifetime resolution, token minting, and
// response packaging. It holds no per-request state and is safe for
// concurrent use.
type Issuer struct {
	registry *oauthkit.Registry
	factory  Factory
	users    UserResolver

	afterScopes   ScopeHook
	afterLifetime LifetimeHook
	extras        ExtrasHook
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithUserResolver installs the resource owner lookup used by the password
// grant. Without one, every password grant request fails with invalid_grant.
func WithUserResolver(r UserResolver) Option {
	return func(i *Issuer) { i.users = r }
}

// WithScopeHook installs a post-resolution transform on the granted scopes.
func WithScopeHook(h ScopeHook) Option {
	return func(i *Issuer) { i.afterScopes = h }
}

// WithLifetimeHook installs a post-resolution transform on the lifetime.
func WithLifetimeHook(h LifetimeHook) Option {
	return func(i *Issuer) { i.afterLifetime = h }
}

// WithResponseExtras installs a hook that adds top level fields to success
// responses.
func WithResponseExtras(h ExtrasHook) Option {
	return func(i *Issuer) { i.extras = h }
}

// NewIssuer builds an Issuer reading policy from registry and minting
// tokens with factory.
func NewIssuer(registry *oauthkit.Registry, factory Factory, opts ...Option) *Issuer {
	i := &Issuer{registry: registry, factory: factory}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue handles one token request for an authenticated client. It returns
// the success payload, or an error that ErrorResponseFor can render: every
// request-level failure carries one of the six rfc6749 codes. Failures from
// collaborators (user resolver, factory) pass through unconverted.
func (i *Issuer) Issue(ctx context.Context, client Client, req Request) (*Response, error) {
	policy, err := i.registry.Get()
	if err != nil {
		return nil, err
	}

	grant, err := CheckGrantType(policy, client, req.GrantType)
	if err != nil {
		return nil, err
	}

	var user User
	if grant == oauthkit.GrantPassword {
		user, err = i.resolveUser(ctx, req.Username)
		if err != nil {
			return nil, err
		}
	}

	// The gate verified the role exists.
	role, _ := policy.Role(client.Role())

	scopes, err := ResolveScopes(policy, role, grant, req.Scope)
	if err != nil {
		return nil, err
	}
	if i.afterScopes != nil {
		scopes = i.afterScopes(ctx, scopes)
	}

	lifetime, err := ResolveLifetime(role, client, req.ExpiresIn)
	if err != nil {
		return nil, err
	}
	if i.afterLifetime != nil {
		lifetime = i.afterLifetime(ctx, lifetime)
	}

	tok, err := i.factory.NewToken(ctx, client, lifetime, scopes, user)
	if err != nil {
		return nil, errors.WrapPrefix(err, "minting token", 0)
	}

	logging.Debugw(ctx, "issued access token",
		"grantType", grant.String(),
		"role", client.Role(),
		"scopes", scopes,
		"expiresIn", lifetime)

	resp := NewResponse(tok)
	if i.extras != nil {
		resp.Extras = i.extras(ctx, tok)
	}
	return resp, nil
}

func (i *Issuer) resolveUser(ctx context.Context, username string) (User, error) {
	if i.users == nil {
		return nil, NewError(CodeInvalidGrant, "The provided authorization grant is not valid.")
	}
	user, err := i.users.ResolveUser(ctx, username)
	if err != nil {
		return nil, errors.WrapPrefix(err, "resolving user", 0)
	}
	if user == nil {
		return nil, NewError(CodeInvalidGrant, "The provided authorization grant is not valid.")
	}
	return user, nil
}
