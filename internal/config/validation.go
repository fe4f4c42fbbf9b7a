package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/v2"
)

// Warning flags a loaded config key that is not registered, with suggested
// corrections when similar keys exist.
type Warning struct {
	Key         string
	Suggestions []string
}

func (w Warning) String() string {
	msg := fmt.Sprintf("'%s' is not a known config key", w.Key)
	switch len(w.Suggestions) {
	case 0:
	case 1:
		msg += fmt.Sprintf(". Did you mean '%s'?", w.Suggestions[0])
	default:
		msg += ". Did you mean one of: " + strings.Join(w.Suggestions, ", ") + "?"
	}
	return msg
}

// ValidateKeys compares every loaded key against the registry and returns a
// warning for each unknown one. Keys under a registered namespace (such as
// per-role settings under "oauth.roles") are not flagged, their leaf names
// are dynamic.
func ValidateKeys(config *koanf.Koanf) []Warning {
	var warnings []Warning
	for _, key := range config.Keys() {
		if _, exists := LookupKey(key); exists {
			continue
		}
		if underRegisteredNamespace(key) {
			continue
		}
		warnings = append(warnings, Warning{
			Key:         key,
			Suggestions: FindSimilarKeys(key, 3),
		})
	}
	return warnings
}

// underRegisteredNamespace reports whether any strict prefix of key is
// itself a registered key.
func underRegisteredNamespace(key string) bool {
	parts := strings.Split(key, ".")
	for i := len(parts) - 1; i > 0; i-- {
		if _, exists := LookupKey(strings.Join(parts[:i], ".")); exists {
			return true
		}
	}
	return false
}
