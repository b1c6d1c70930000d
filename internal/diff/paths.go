package diff

import (
	"path"
	"sort"
	"strings"
)

// diffPrefixes are prefixes that commonly disagree between AI-reported paths
// and the diff's own path notation.
var diffPrefixes = []string{"a/", "b/", "app/"}

// PathVariants returns candidate spellings for a file path, ordered from most
// to least specific. Variants cover added/removed diff prefixes, the path with
// one and two leading segments stripped, and the bare filename.
func PathVariants(p string) []string {
	p = strings.TrimSpace(p)
	if p == "" {
		return nil
	}

	var variants []string
	seen := make(map[string]bool)
	add := func(candidate string) {
		candidate = strings.TrimPrefix(candidate, "./")
		if candidate == "" || seen[candidate] {
			return
		}
		seen[candidate] = true
		variants = append(variants, candidate)
	}

	add(p)

	// Remove known prefixes
	for _, prefix := range diffPrefixes {
		if strings.HasPrefix(p, prefix) {
			add(strings.TrimPrefix(p, prefix))
		}
	}

	// Add known prefixes
	for _, prefix := range diffPrefixes {
		if !strings.HasPrefix(p, prefix) {
			add(prefix + p)
		}
	}

	// Strip one and two leading segments
	segments := strings.Split(p, "/")
	for strip := 1; strip <= 2 && strip < len(segments); strip++ {
		add(strings.Join(segments[strip:], "/"))
	}

	// Bare filename
	add(path.Base(p))

	return variants
}

// MatchPath returns the diff entry whose key matches any variant of the
// reported path, preferring earlier (more specific) variants. The second
// return is false when no variant matches.
func MatchPath(diffs map[string]string, reported string) (string, bool) {
	for _, variant := range PathVariants(reported) {
		if _, ok := diffs[variant]; ok {
			return variant, true
		}
	}
	// The diff side can carry its own prefixes too; compare variant sets.
	// Keys are scanned in sorted order so matches are deterministic.
	reportedVariants := make(map[string]bool)
	for _, v := range PathVariants(reported) {
		reportedVariants[v] = true
	}
	keys := make([]string, 0, len(diffs))
	for key := range diffs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		for _, v := range PathVariants(key) {
			if reportedVariants[v] {
				return key, true
			}
		}
	}
	return "", false
}
