package config

import (
	"sync"

	"github.com/knadh/koanf/v2"
)

var defaultsLoaded sync.Once

// EnsureDefaultsLoaded copies registered defaults into k for keys that no
// other source has set. Call it after all init functions have registered
// their keys. Runs at most once per process.
func EnsureDefaultsLoaded(k *koanf.Koanf) {
	defaultsLoaded.Do(func() {
		for key, val := range Defaults() {
			if !k.Exists(key) {
				k.Set(key, val)
			}
		}
	})
}
