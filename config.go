package oauthkit

import (
	"sort"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/oauthkit/oauthkit/errors"
	"github.com/oauthkit/oauthkit/internal/config"
)

// Filename of the standard configuration file.
const ConfigFile = "oauthkit.yaml"

// ConfigKeyInfo contains metadata about a known configuration key.
// Re-exported from internal/config for public API use.
type ConfigKeyInfo = config.KeyInfo

// Config is a global koanf instance used to access library configuration.
//
// Config is loaded in the following order (later sources override earlier):
// 1. Registered defaults
// 2. Auto-discovered oauthkit.yaml (in init())
// 3. Environment variables with OAUTHKIT__ prefix (in init())
// 4. Additional sources loaded via LoadConfigFile() or LoadConfigDefaults()
//
// Environment variable transformation:
//   - OAUTHKIT__OAUTH__TOKEN_TYPE → oauth.tokenType
//   - OAUTHKIT__OAUTH__GRANT_TYPES → oauth.grantTypes
var Config = koanf.New(".")

func init() {
	registerCoreConfigKeys()

	// Look for an oauthkit.yaml file in the current directory or any parent.
	if cfg := config.SearchForConfig(ConfigFile, "."); cfg != "" {
		if err := Config.Load(file.Provider(cfg), yaml.Parser()); err != nil {
			panic("error loading config: " + err.Error())
		}
	}

	if err := Config.Load(env.Provider(config.EnvPrefix, ".", config.TransformEnv), nil); err != nil {
		panic("error loading env config: " + err.Error())
	}
}

// RegisterConfigKeys registers known configuration keys with metadata so
// that validation can flag typos and defaults can be applied. Hosts should
// register their own keys for anything they read through Config.
func RegisterConfigKeys(infos ...ConfigKeyInfo) {
	config.RegisterKeys(infos...)
}

// LoadConfigFile loads additional configuration from a YAML file into the
// global Config instance.
func LoadConfigFile(path string) {
	if err := Config.Load(file.Provider(path), yaml.Parser()); err != nil {
		panic("error loading config file '" + path + "': " + err.Error())
	}
}

// LoadConfigDefaults loads default configuration values into the global
// Config instance. Values already set by a file or the environment win.
func LoadConfigDefaults(defaults map[string]interface{}) {
	if err := Config.Load(confmap.Provider(defaults, "."), nil); err != nil {
		panic("error loading config defaults: " + err.Error())
	}
}

// ValidateConfig checks every loaded key against the registered key set and
// returns human readable warnings for unknown or misspelled keys.
func ValidateConfig() []string {
	config.EnsureDefaultsLoaded(Config)
	warnings := config.ValidateKeys(Config)
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.String()
	}
	return out
}

// ConfigString returns the string value for the given key.
func ConfigString(key string) string {
	return Config.String(key)
}

// ConfigInt returns the int value for the given key.
func ConfigInt(key string) int {
	return Config.Int(key)
}

// ConfigBool returns the bool value for the given key.
func ConfigBool(key string) bool {
	return Config.Bool(key)
}

// ConfigStrings returns the string slice value for the given key.
func ConfigStrings(key string) []string {
	return Config.Strings(key)
}

// ConfigExists checks if the given key exists in the configuration.
func ConfigExists(key string) bool {
	return Config.Exists(key)
}

// PolicyFromConfig builds a Policy from the global Config instance and
// validates it. The expected shape, in YAML form:
//
//	oauth:
//	  scopes: [read, write, admin]
//	  grantTypes: [client_credentials, password]
//	  roles:
//	    basic:
//	      scopes: [read]
//	      grantTypes: [client_credentials]
//	      tokenLifetime: 3600
//	  grantTypeScopes:
//	    client_credentials: [read]
func PolicyFromConfig() (*Policy, error) {
	return PolicyFromKoanf(Config)
}

// PolicyFromKoanf builds a Policy from an arbitrary koanf instance. Useful
// for tests and for hosts that manage their own config loading.
func PolicyFromKoanf(k *koanf.Koanf) (*Policy, error) {
	config.EnsureDefaultsLoaded(k)

	p := &Policy{
		Scopes: k.Strings("oauth.scopes"),
		Roles:  map[string]ClientRole{},
	}

	for _, g := range k.Strings("oauth.grantTypes") {
		grant := GrantTypeFromValue(g)
		if grant == "" {
			return nil, errors.Errorf("config enables unknown grant type %q", g)
		}
		p.GrantTypes = append(p.GrantTypes, grant)
	}

	roleNames := k.MapKeys("oauth.roles")
	sort.Strings(roleNames)
	for _, name := range roleNames {
		prefix := "oauth.roles." + name + "."
		role := ClientRole{
			Name:          name,
			AllowedScopes: k.Strings(prefix + "scopes"),
			TokenLifetime: k.Int(prefix + "tokenLifetime"),
		}
		for _, g := range k.Strings(prefix + "grantTypes") {
			grant := GrantTypeFromValue(g)
			if grant == "" {
				return nil, errors.Errorf("role %q allows unknown grant type %q", name, g)
			}
			role.AllowedGrantTypes = append(role.AllowedGrantTypes, grant)
		}
		p.Roles[name] = role
	}

	if grants := k.MapKeys("oauth.grantTypeScopes"); len(grants) > 0 {
		p.GrantTypeScopes = map[GrantType][]string{}
		for _, g := range grants {
			grant := GrantTypeFromValue(g)
			if grant == "" {
				return nil, errors.Errorf("scopes declared for unknown grant type %q", g)
			}
			p.GrantTypeScopes[grant] = k.Strings("oauth.grantTypeScopes." + g)
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func registerCoreConfigKeys() {
	config.RegisterKeys(
		ConfigKeyInfo{
			Key:         "oauth.scopes",
			Description: "Catalog of every scope the deployment knows about",
			Type:        "[]string",
		},
		ConfigKeyInfo{
			Key:         "oauth.grantTypes",
			Description: "Grant types the deployment enables",
			Type:        "[]string",
		},
		ConfigKeyInfo{
			Key:         "oauth.roles",
			Description: "Client role definitions, keyed by role name",
			Type:        "map",
		},
		ConfigKeyInfo{
			Key:         "oauth.grantTypeScopes",
			Description: "Scopes requestable per grant type, keyed by grant type",
			Type:        "map",
		},
		ConfigKeyInfo{
			Key:         "oauth.tokenType",
			Description: "Token type reported in token responses",
			Type:        "string",
			Default:     "Bearer",
		},
		ConfigKeyInfo{
			Key:         "oauth.signingKey",
			Description: "HMAC signing key for JWT access tokens",
			Type:        "string",
		},
	)
}
