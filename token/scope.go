package token

import (
	"regexp"
	"sort"
	"strings"

	"github.com/oauthkit/oauthkit"
)

var scopeParam = regexp.MustCompile(ScopePattern)

// ResolveScopes validates the raw scope parameter of a token request and
// returns the granted scope set, deduplicated and sorted.
//
// An empty or whitespace-only parameter resolves to the empty set; that is
// the default access path, not an error. Otherwise the raw string must match
// the rfc6749 scope grammar, and every requested scope must pass three
// checks in order: it exists in the policy's catalog, the client's role
// allows it, and the grant type in effect allows it. The first failing scope
// stops resolution; the error names only the failure category, per rfc6749
// error granularity.
func ResolveScopes(policy *oauthkit.Policy, role oauthkit.ClientRole, grant oauthkit.GrantType, requested string) ([]string, error) {
	if strings.TrimSpace(requested) == "" {
		return nil, nil
	}

	if !scopeParam.MatchString(requested) {
		return nil, NewError(CodeInvalidScope, "The requested scope is malformed.")
	}

	granted := map[string]bool{}
	for _, s := range strings.Fields(requested) {
		if !policy.HasScope(s) {
			return nil, NewError(CodeInvalidScope, "The requested scope is invalid.")
		}
		if !role.AllowsScope(s) {
			return nil, NewError(CodeInvalidScope, "The requested scope exceeds the scope granted by the resource owner.")
		}
		if !containsScope(policy.GrantScopes(grant), s) {
			return nil, NewError(CodeInvalidScope, "The requested scope requires a different grant_type.")
		}
		granted[s] = true
	}

	scopes := make([]string, 0, len(granted))
	for s := range granted {
		scopes = append(scopes, s)
	}
	sort.Strings(scopes)
	return scopes, nil
}

func containsScope(scopes []string, s string) bool {
	for _, v := range scopes {
		if v == s {
			return true
		}
	}
	return false
}
