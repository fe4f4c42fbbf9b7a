// Package oauthkit provides the decision core of an OAuth2 (RFC 6749) token
// endpoint plus a scope based authorization engine, designed to be embedded
// into a host web framework. The host owns the HTTP surface, client
// authentication, and persistence; oauthkit owns the policy model and every
// token issuance decision: grant type gating, scope resolution, token
// lifetime resolution, and the response envelope.
//
// A deployment describes its issuance rules once, as a Policy, and registers
// it with a Registry. Request-time decisions live in the token and scope
// subpackages and consult the policy through narrow read methods, so the
// policy itself stays an inert value that is cheap to construct in tests.
package oauthkit

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/agnivade/levenshtein"

	"github.com/oauthkit/oauthkit/errors"
)

// scopeGrammar is the rfc6749 scope-token grammar: one or more characters
// drawn from %x21 / %x23-5B / %x5D-7E. Space is excluded, it is the list
// separator on the wire.
var scopeGrammar = regexp.MustCompile(`^[!#-\[\]-~]+$`)

// ValidScopeName reports whether name is a well formed scope token.
func ValidScopeName(name string) bool {
	return scopeGrammar.MatchString(name)
}

// ClientRole describes one class of API clients: which scopes the role may
// be granted, which grant types it may use, and the default lifetime of the
// tokens issued to it.
type ClientRole struct {
	// Name is the role's identifier, unique within a policy.
	Name string

	// AllowedScopes are the scopes a client holding this role may request.
	// Every entry must appear in the policy's Scopes.
	AllowedScopes []string

	// AllowedGrantTypes are the grant types this role may use. Every entry
	// must appear in the policy's GrantTypes.
	AllowedGrantTypes []GrantType

	// TokenLifetime is the default validity of issued tokens, in seconds.
	// Individual clients may override it downward or upward; the resolver
	// in the token package arbitrates.
	TokenLifetime int
}

// AllowsScope reports whether the role may be granted the named scope.
func (r ClientRole) AllowsScope(scope string) bool {
	for _, s := range r.AllowedScopes {
		if s == scope {
			return true
		}
	}
	return false
}

// AllowsGrantType reports whether the role may use the grant type.
func (r ClientRole) AllowsGrantType(grant GrantType) bool {
	for _, g := range r.AllowedGrantTypes {
		if g == grant {
			return true
		}
	}
	return false
}

// Policy is a deployment's complete issuance configuration: the scope
// catalog, the client roles, the enabled grant types, and the default
// scopes granted per grant type when a request names none.
//
// A Policy is a plain value. Build one in code or load it from configuration
// with PolicyFromConfig, call Validate, then hand it to a Registry. Policies
// are not mutated after registration.
type Policy struct {
	// Scopes is the catalog of every scope the deployment knows about.
	Scopes []string

	// Roles maps role name to role definition.
	Roles map[string]ClientRole

	// GrantTypes are the grant types the deployment enables. Must be a
	// subset of SupportedGrantTypes.
	GrantTypes []GrantType

	// GrantTypeScopes maps each enabled grant type to the subset of Scopes
	// that may be requested under it.
	GrantTypeScopes map[GrantType][]string
}

// HasScope reports whether the policy's scope catalog contains name.
func (p *Policy) HasScope(name string) bool {
	for _, s := range p.Scopes {
		if s == name {
			return true
		}
	}
	return false
}

// Role returns the named role and whether it exists.
func (p *Policy) Role(name string) (ClientRole, bool) {
	r, ok := p.Roles[name]
	return r, ok
}

// SupportsGrantType reports whether the policy enables the grant type.
func (p *Policy) SupportsGrantType(grant GrantType) bool {
	for _, g := range p.GrantTypes {
		if g == grant {
			return true
		}
	}
	return false
}

// GrantScopes returns the scopes requestable under the grant type. The
// returned slice is the policy's own, callers must not mutate it.
func (p *Policy) GrantScopes(grant GrantType) []string {
	return p.GrantTypeScopes[grant]
}

// RoleNames returns the policy's role names, sorted.
func (p *Policy) RoleNames() []string {
	names := make([]string, 0, len(p.Roles))
	for n := range p.Roles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks the policy's internal consistency and returns the first
// problem found. Every scope referenced by a role or a grant type default
// must exist in the catalog, every grant type must be implemented by this
// library, role grant types must be enabled, and token lifetimes must be
// strictly positive. Unknown scope references get a closest-match hint when
// a catalog entry is plausibly what was meant.
func (p *Policy) Validate() error {
	if len(p.Scopes) == 0 {
		return errors.New("policy declares no scopes")
	}
	seen := map[string]bool{}
	for _, s := range p.Scopes {
		if !ValidScopeName(s) {
			return errors.Errorf("scope %q is not a valid rfc6749 scope token", s)
		}
		if seen[s] {
			return errors.Errorf("scope %q declared twice", s)
		}
		seen[s] = true
	}

	if len(p.GrantTypes) == 0 {
		return errors.New("policy enables no grant types")
	}
	enabled := map[GrantType]bool{}
	for _, g := range p.GrantTypes {
		if !g.Supported() {
			return errors.Errorf("grant type %q is not supported", g)
		}
		if enabled[g] {
			return errors.Errorf("grant type %q enabled twice", g)
		}
		enabled[g] = true
	}

	for _, name := range p.RoleNames() {
		role := p.Roles[name]
		if role.Name != "" && role.Name != name {
			return errors.Errorf("role %q declares mismatched name %q", name, role.Name)
		}
		if role.TokenLifetime <= 0 {
			return errors.Errorf("role %q: token lifetime must be a positive number of seconds, got %d", name, role.TokenLifetime)
		}
		for _, s := range role.AllowedScopes {
			if !p.HasScope(s) {
				return errors.Errorf("role %q allows unknown scope %q%s", name, s, p.suggestScope(s))
			}
		}
		for _, g := range role.AllowedGrantTypes {
			if !enabled[g] {
				return errors.Errorf("role %q allows grant type %q which the policy does not enable", name, g)
			}
		}
	}

	for g, scopes := range p.GrantTypeScopes {
		if !enabled[g] {
			return errors.Errorf("scopes declared for grant type %q which the policy does not enable", g)
		}
		for _, s := range scopes {
			if !p.HasScope(s) {
				return errors.Errorf("grant type %q grants unknown scope %q%s", g, s, p.suggestScope(s))
			}
		}
	}

	return nil
}

// suggestScope returns a ", did you mean X?" hint when a catalog scope is
// within a small edit distance of the unknown name, else the empty string.
func (p *Policy) suggestScope(name string) string {
	best, bestDist := "", 4
	for _, s := range p.Scopes {
		if d := levenshtein.ComputeDistance(name, s); d < bestDist {
			best, bestDist = s, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(", did you mean %q?", best)
}
