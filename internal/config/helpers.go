package config

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// EnvPrefix is stripped from environment variables before they are mapped
// onto config keys.
const EnvPrefix = "OAUTHKIT__"

// SearchForConfig looks for filename in startDir and then each parent
// directory in turn, returning the first match or "" when none is found.
func SearchForConfig(filename string, startDir string) string {
	d, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	p := filepath.Join(d, filename)
	if _, err = os.Stat(p); err == nil {
		return p
	}

	parent := filepath.Dir(d)
	if parent == d {
		return ""
	}
	return SearchForConfig(filename, parent)
}

// TransformEnv converts OAUTHKIT__OAUTH__GRANT_TYPES to oauth.grantTypes:
// the prefix is removed, the rest is lowercased, double underscores become
// dots, and single underscores within a segment become camelCase.
func TransformEnv(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	segments := strings.Split(s, "__")
	for i, segment := range segments {
		parts := strings.Split(segment, "_")
		for j := 1; j < len(parts); j++ {
			parts[j] = capitalize(parts[j])
		}
		segments[i] = strings.Join(parts, "")
	}
	return strings.Join(segments, ".")
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
