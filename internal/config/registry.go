package config

import (
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
)

// KeyInfo documents a configuration key the library understands.
type KeyInfo struct {
	Key         string      // Full key path, e.g. "oauth.tokenType"
	Description string      // What the key controls
	Type        string      // Type hint: "string", "int", "[]string", "map", etc.
	Default     interface{} // Optional default value
}

var (
	registry   = make(map[string]KeyInfo)
	registryMu sync.RWMutex
)

// RegisterKeys adds known configuration keys to the registry. Core code
// registers its keys from init so that validation and defaults see the full
// set before any config is loaded.
func RegisterKeys(infos ...KeyInfo) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, info := range infos {
		registry[info.Key] = info
	}
}

// LookupKey returns metadata for a registered key.
func LookupKey(key string) (KeyInfo, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	info, exists := registry[key]
	return info, exists
}

// AllKeys returns every registered key, sorted.
func AllKeys() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Defaults returns the registered keys that carry a default value.
func Defaults() map[string]interface{} {
	registryMu.RLock()
	defer registryMu.RUnlock()

	defaults := make(map[string]interface{})
	for key, info := range registry {
		if info.Default != nil {
			defaults[key] = info.Default
		}
	}
	return defaults
}

// FindSimilarKeys returns up to maxResults registered keys within a small
// edit distance of key, most similar first. Keys sharing the same namespace
// prefix get a slight boost so typos suggest neighbors first.
func FindSimilarKeys(key string, maxResults int) []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	type scored struct {
		key   string
		score int
	}

	keyPrefix := namespaceOf(key)
	var candidates []scored
	for registered := range registry {
		d := levenshtein.ComputeDistance(key, registered)
		if keyPrefix != "" && keyPrefix == namespaceOf(registered) && d > 0 {
			d--
		}
		if d <= 3 {
			candidates = append(candidates, scored{registered, d})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score < candidates[j].score
	})

	result := make([]string, 0, maxResults)
	for i := 0; i < len(candidates) && i < maxResults; i++ {
		result = append(result, candidates[i].key)
	}
	return result
}

// namespaceOf returns everything before the last dot of a hierarchical key,
// or "" for a bare key.
func namespaceOf(key string) string {
	lastDot := strings.LastIndex(key, ".")
	if lastDot == -1 {
		return ""
	}
	return key[:lastDot]
}
