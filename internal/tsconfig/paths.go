package tsconfig

import (
	"sort"
	"strings"

	"github.com/modresolve/modresolve/internal/patternkey"
	"github.com/modresolve/modresolve/internal/pathutil"
)

// Candidate is one absolute path to try, produced by substituting the
// matched portion of specifier into one fallback entry of a matching
// "paths" pattern.
type Candidate struct {
	AbsPath string
	// Pattern is the "paths" key that produced this candidate, kept so
	// callers can report which mapping was used on a NotFound error.
	Pattern string
}

// Match resolves specifier against the tsconfig's "paths" map, trying
// every pattern that matches in order of specificity (most specific
// first) and, within one pattern, every fallback entry in declaration
// order. Returns nil if "paths" is absent or nothing matches.
func (t *TsConfig) Match(specifier string) []Candidate {
	if t.Paths == nil {
		return nil
	}

	var matching []string
	for pattern := range t.Paths.Map {
		if patternMatches(pattern, specifier) {
			matching = append(matching, pattern)
		}
	}
	if len(matching) == 0 {
		return nil
	}
	sort.SliceStable(matching, func(i, j int) bool {
		return patternkey.Compare(matching[i], matching[j]) < 0
	})

	var out []Candidate
	for _, pattern := range matching {
		matchedPart := ""
		if star := strings.IndexByte(pattern, '*'); star != -1 {
			prefix := pattern[:star]
			suffix := pattern[star+1:]
			matchedPart = specifier[len(prefix) : len(specifier)-len(suffix)]
		}
		for _, fallback := range t.Paths.Map[pattern] {
			text := fallback.Text
			if star := strings.IndexByte(text, '*'); star != -1 {
				text = text[:star] + matchedPart + text[star+1:]
			}
			out = append(out, Candidate{
				AbsPath: pathutil.CombinePaths(t.BaseURLForPaths, text),
				Pattern: pattern,
			})
		}
	}
	return out
}

func patternMatches(pattern string, specifier string) bool {
	star := strings.IndexByte(pattern, '*')
	if star == -1 {
		return pattern == specifier
	}
	prefix := pattern[:star]
	suffix := pattern[star+1:]
	return len(specifier) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(specifier, prefix) &&
		strings.HasSuffix(specifier, suffix)
}
