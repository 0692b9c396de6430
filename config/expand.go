package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var envRefPattern = regexp.MustCompile(`\$\{env:([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandRefs replaces ${env:VAR} references in s with the named environment
// variable's value. Every referenced variable must be present; missing ones
// are reported together in a single error.
func expandRefs(s string) (string, error) {
	if !strings.Contains(s, "${env:") {
		return s, nil
	}

	missing := make(map[string]struct{})
	out := envRefPattern.ReplaceAllStringFunc(s, func(match string) string {
		key := envRefPattern.FindStringSubmatch(match)[1]
		val, ok := os.LookupEnv(key)
		if !ok {
			missing[key] = struct{}{}
			return match
		}
		return val
	})

	if len(missing) > 0 {
		keys := make([]string, 0, len(missing))
		for k := range missing {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", fmt.Errorf("config: missing referenced environment variables: %s", strings.Join(keys, ", "))
	}

	return out, nil
}
