package oauthkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() *Policy {
	return &Policy{
		Scopes: []string{"read", "write", "admin"},
		Roles: map[string]ClientRole{
			"basic": {
				Name:              "basic",
				AllowedScopes:     []string{"read"},
				AllowedGrantTypes: []GrantType{GrantClientCredentials},
				TokenLifetime:     3600,
			},
			"trusted": {
				Name:              "trusted",
				AllowedScopes:     []string{"read", "write", "admin"},
				AllowedGrantTypes: []GrantType{GrantClientCredentials, GrantPassword},
				TokenLifetime:     7200,
			},
		},
		GrantTypes: []GrantType{GrantClientCredentials, GrantPassword},
		GrantTypeScopes: map[GrantType][]string{
			GrantClientCredentials: {"read"},
		},
	}
}

func TestGrantTypeFromValue(t *testing.T) {
	assert.Equal(t, GrantClientCredentials, GrantTypeFromValue("client_credentials"))
	assert.Equal(t, GrantPassword, GrantTypeFromValue("password"))
	assert.Equal(t, GrantType(""), GrantTypeFromValue("authorization_code"))
	assert.Equal(t, GrantType(""), GrantTypeFromValue(""))
}

func TestGrantTypeSupported(t *testing.T) {
	assert.True(t, GrantClientCredentials.Supported())
	assert.True(t, GrantPassword.Supported())
	assert.False(t, GrantType("implicit").Supported())
	assert.False(t, GrantType("").Supported())
}

func TestValidScopeName(t *testing.T) {
	assert.True(t, ValidScopeName("read"))
	assert.True(t, ValidScopeName("urn:example:scope.read"))
	assert.True(t, ValidScopeName("!#[]~"))
	assert.False(t, ValidScopeName(""))
	assert.False(t, ValidScopeName("two words"))
	assert.False(t, ValidScopeName("quote\"inside"))
	assert.False(t, ValidScopeName("back\\slash"))
}

func TestPolicyLookups(t *testing.T) {
	p := testPolicy()

	assert.True(t, p.HasScope("read"))
	assert.False(t, p.HasScope("delete"))

	role, ok := p.Role("basic")
	require.True(t, ok)
	assert.True(t, role.AllowsScope("read"))
	assert.False(t, role.AllowsScope("write"))
	assert.True(t, role.AllowsGrantType(GrantClientCredentials))
	assert.False(t, role.AllowsGrantType(GrantPassword))

	_, ok = p.Role("nope")
	assert.False(t, ok)

	assert.True(t, p.SupportsGrantType(GrantPassword))
	assert.False(t, p.SupportsGrantType(GrantType("implicit")))

	assert.Equal(t, []string{"read"}, p.GrantScopes(GrantClientCredentials))
	assert.Empty(t, p.GrantScopes(GrantPassword))

	assert.Equal(t, []string{"basic", "trusted"}, p.RoleNames())
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, testPolicy().Validate())
}

func TestPolicyValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Policy)
		wantErr string
	}{
		{
			"no scopes",
			func(p *Policy) { p.Scopes = nil },
			"policy declares no scopes",
		},
		{
			"malformed scope",
			func(p *Policy) { p.Scopes = append(p.Scopes, "bad scope") },
			"not a valid rfc6749 scope token",
		},
		{
			"duplicate scope",
			func(p *Policy) { p.Scopes = append(p.Scopes, "read") },
			"declared twice",
		},
		{
			"no grant types",
			func(p *Policy) { p.GrantTypes = nil },
			"enables no grant types",
		},
		{
			"unsupported grant type",
			func(p *Policy) { p.GrantTypes = append(p.GrantTypes, "implicit") },
			"is not supported",
		},
		{
			"role with unknown scope",
			func(p *Policy) {
				r := p.Roles["basic"]
				r.AllowedScopes = []string{"reed"}
				p.Roles["basic"] = r
			},
			`did you mean "read"?`,
		},
		{
			"role with disabled grant type",
			func(p *Policy) {
				p.GrantTypes = []GrantType{GrantClientCredentials}
				r := p.Roles["trusted"]
				r.AllowedGrantTypes = []GrantType{GrantPassword}
				p.Roles["trusted"] = r
			},
			"which the policy does not enable",
		},
		{
			"zero lifetime",
			func(p *Policy) {
				r := p.Roles["basic"]
				r.TokenLifetime = 0
				p.Roles["basic"] = r
			},
			"token lifetime must be a positive number of seconds",
		},
		{
			"negative lifetime",
			func(p *Policy) {
				r := p.Roles["basic"]
				r.TokenLifetime = -10
				p.Roles["basic"] = r
			},
			"token lifetime must be a positive number of seconds",
		},
		{
			"default scopes for disabled grant",
			func(p *Policy) {
				p.GrantTypes = []GrantType{GrantClientCredentials}
				r := p.Roles["trusted"]
				r.AllowedGrantTypes = []GrantType{GrantClientCredentials}
				p.Roles["trusted"] = r
				p.GrantTypeScopes[GrantPassword] = []string{"read"}
			},
			"which the policy does not enable",
		},
		{
			"default scope unknown",
			func(p *Policy) {
				p.GrantTypeScopes[GrantClientCredentials] = []string{"raed"}
			},
			"unknown scope",
		},
		{
			"mismatched role name",
			func(p *Policy) {
				r := p.Roles["basic"]
				r.Name = "other"
				p.Roles["basic"] = r
			},
			"mismatched name",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := testPolicy()
			tc.mutate(p)
			err := p.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
