package matcher

import (
	"path"
	"strings"
)

// Match reports whether the tool name satisfies pattern. "*" selects every
// tool, a pattern holding glob characters is matched with path.Match and
// any other pattern selects by prefix. A leading "!" negates the result.
func Match(pattern, name string) bool {
	if strings.HasPrefix(pattern, "!") {
		rest := pattern[1:]
		return rest != "" && !Match(rest, name)
	}
	if pattern == "*" {
		return true
	}
	if pattern == "" {
		return false
	}
	if strings.ContainsAny(pattern, "*?[") {
		matched, err := path.Match(pattern, name)
		return err == nil && matched
	}
	return strings.HasPrefix(name, pattern)
}
