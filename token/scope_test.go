package token

import (
	stderrors "errors"
	"testing"

	"github.com/oauthkit/oauthkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveForRole(t *testing.T, roleName, grant, requested string) ([]string, error) {
	t.Helper()
	p := fixturePolicy()
	role, ok := p.Role(roleName)
	require.True(t, ok)
	return ResolveScopes(p, role, oauthkit.GrantType(grant), requested)
}

func TestResolveScopes_EmptyRequestYieldsEmptySet(t *testing.T) {
	for _, requested := range []string{"", " ", "   "} {
		scopes, err := resolveForRole(t, "trusted", "client_credentials", requested)
		require.NoError(t, err, "requested=%q", requested)
		assert.Empty(t, scopes)
	}
}

func TestResolveScopes_ValidSet(t *testing.T) {
	scopes, err := resolveForRole(t, "trusted", "client_credentials", "trusted_client_scope basic_client_scope")
	require.NoError(t, err)
	assert.Equal(t, []string{"basic_client_scope", "trusted_client_scope"}, scopes)
}

func TestResolveScopes_DedupAndDoubleSpaces(t *testing.T) {
	scopes, err := resolveForRole(t, "trusted", "client_credentials", "trusted_client_scope  trusted_client_scope")
	require.NoError(t, err)
	assert.Equal(t, []string{"trusted_client_scope"}, scopes)
}

func TestResolveScopes_Malformed(t *testing.T) {
	for _, requested := range []string{`scope"quote`, `scope\slash`, "scope\tscope", "scopé"} {
		_, err := resolveForRole(t, "trusted", "client_credentials", requested)
		require.Error(t, err, "requested=%q", requested)
		assert.Equal(t, CodeInvalidScope, CodeOf(err))
		assert.Equal(t, "The requested scope is malformed.", errMessage(err))
	}
}

func TestResolveScopes_UnknownScope(t *testing.T) {
	_, err := resolveForRole(t, "trusted", "client_credentials", "no_such_scope")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidScope, CodeOf(err))
	assert.Equal(t, "The requested scope is invalid.", errMessage(err))
}

func TestResolveScopes_ExceedsRoleGrant(t *testing.T) {
	_, err := resolveForRole(t, "basic", "client_credentials", "trusted_client_scope")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidScope, CodeOf(err))
	assert.Equal(t, "The requested scope exceeds the scope granted by the resource owner.", errMessage(err))
}

func TestResolveScopes_WrongGrantType(t *testing.T) {
	// advanced_client_scope is only requestable under the password grant.
	_, err := resolveForRole(t, "trusted", "client_credentials", "advanced_client_scope")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidScope, CodeOf(err))
	assert.Equal(t, "The requested scope requires a different grant_type.", errMessage(err))
}

func TestResolveScopes_FailFastFirstViolationWins(t *testing.T) {
	// The unknown scope comes first, so its category is reported even
	// though the next scope would fail the role check.
	p := fixturePolicy()
	role, _ := p.Role("basic")
	_, err := ResolveScopes(p, role, oauthkit.GrantClientCredentials, "no_such_scope trusted_client_scope")
	require.Error(t, err)
	assert.Equal(t, "The requested scope is invalid.", errMessage(err))
}

func TestResolveScopes_CaseSensitive(t *testing.T) {
	_, err := resolveForRole(t, "trusted", "client_credentials", "Trusted_Client_Scope")
	require.Error(t, err)
	assert.Equal(t, "The requested scope is invalid.", errMessage(err))
}

func errMessage(err error) string {
	var te *Error
	if stderrors.As(err, &te) {
		return te.Description()
	}
	return err.Error()
}
