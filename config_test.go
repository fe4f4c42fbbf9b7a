package oauthkit

import (
	"testing"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKoanf(t *testing.T, conf map[string]interface{}) *koanf.Koanf {
	t.Helper()
	k := koanf.New(".")
	require.NoError(t, k.Load(confmap.Provider(conf, "."), nil))
	return k
}

func validConfigMap() map[string]interface{} {
	return map[string]interface{}{
		"oauth.scopes":     []string{"read", "write", "admin"},
		"oauth.grantTypes": []string{"client_credentials", "password"},

		"oauth.roles.basic.scopes":        []string{"read"},
		"oauth.roles.basic.grantTypes":    []string{"client_credentials"},
		"oauth.roles.basic.tokenLifetime": 3600,

		"oauth.roles.trusted.scopes":        []string{"read", "write", "admin"},
		"oauth.roles.trusted.grantTypes":    []string{"client_credentials", "password"},
		"oauth.roles.trusted.tokenLifetime": 7200,

		"oauth.grantTypeScopes.client_credentials": []string{"read"},
	}
}

func TestPolicyFromKoanf(t *testing.T) {
	k := newTestKoanf(t, validConfigMap())

	p, err := PolicyFromKoanf(k)
	require.NoError(t, err)

	assert.Equal(t, []string{"read", "write", "admin"}, p.Scopes)
	assert.Equal(t, []GrantType{GrantClientCredentials, GrantPassword}, p.GrantTypes)
	assert.Equal(t, []string{"basic", "trusted"}, p.RoleNames())

	basic, ok := p.Role("basic")
	require.True(t, ok)
	assert.Equal(t, 3600, basic.TokenLifetime)
	assert.Equal(t, []string{"read"}, basic.AllowedScopes)
	assert.Equal(t, []GrantType{GrantClientCredentials}, basic.AllowedGrantTypes)

	assert.Equal(t, []string{"read"}, p.GrantScopes(GrantClientCredentials))
}

func TestPolicyFromKoanf_UnknownGrantType(t *testing.T) {
	conf := validConfigMap()
	conf["oauth.grantTypes"] = []string{"client_credentials", "authorization_code"}
	k := newTestKoanf(t, conf)

	_, err := PolicyFromKoanf(k)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown grant type "authorization_code"`)
}

func TestPolicyFromKoanf_RoleUnknownGrantType(t *testing.T) {
	conf := validConfigMap()
	conf["oauth.roles.basic.grantTypes"] = []string{"implicit"}
	k := newTestKoanf(t, conf)

	_, err := PolicyFromKoanf(k)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `role "basic" allows unknown grant type "implicit"`)
}

func TestPolicyFromKoanf_InvalidPolicy(t *testing.T) {
	conf := validConfigMap()
	conf["oauth.roles.basic.scopes"] = []string{"reed"}
	k := newTestKoanf(t, conf)

	_, err := PolicyFromKoanf(k)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown scope")
}

func TestPolicyFromKoanf_GrantTypeScopesUnknownGrant(t *testing.T) {
	conf := validConfigMap()
	conf["oauth.grantTypeScopes.implicit"] = []string{"read"}
	k := newTestKoanf(t, conf)

	_, err := PolicyFromKoanf(k)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown grant type "implicit"`)
}

func TestConfigAccessors(t *testing.T) {
	LoadConfigDefaults(map[string]interface{}{
		"test.str":  "value",
		"test.num":  42,
		"test.flag": true,
		"test.list": []string{"a", "b"},
	})

	assert.Equal(t, "value", ConfigString("test.str"))
	assert.Equal(t, 42, ConfigInt("test.num"))
	assert.True(t, ConfigBool("test.flag"))
	assert.Equal(t, []string{"a", "b"}, ConfigStrings("test.list"))
	assert.True(t, ConfigExists("test.str"))
	assert.False(t, ConfigExists("test.missing"))
}
