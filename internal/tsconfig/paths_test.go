package tsconfig

import "testing"

func TestMatchNilWithoutPaths(t *testing.T) {
	cfg := &TsConfig{}
	if got := cfg.Match("@app/button"); got != nil {
		t.Fatalf("expected nil candidates without a paths map, got %v", got)
	}
}

func TestMatchExactPattern(t *testing.T) {
	cfg := &TsConfig{
		BaseURLForPaths: "/proj",
		Paths: &Paths{Map: map[string][]Path{
			"jquery": {{Text: "./vendor/jquery.js"}},
		}},
	}
	candidates := cfg.Match("jquery")
	if len(candidates) != 1 {
		t.Fatalf("expected one candidate, got %v", candidates)
	}
	if candidates[0].AbsPath != "/proj/./vendor/jquery.js" {
		t.Fatalf("got %q", candidates[0].AbsPath)
	}
}

func TestMatchWildcardSubstitution(t *testing.T) {
	cfg := &TsConfig{
		BaseURLForPaths: "/proj",
		Paths: &Paths{Map: map[string][]Path{
			"@app/*": {{Text: "./src/app/*"}},
		}},
	}
	candidates := cfg.Match("@app/button")
	if len(candidates) != 1 {
		t.Fatalf("expected one candidate, got %v", candidates)
	}
	if candidates[0].AbsPath != "/proj/./src/app/button" {
		t.Fatalf("got %q", candidates[0].AbsPath)
	}
	if candidates[0].Pattern != "@app/*" {
		t.Fatalf("got pattern %q", candidates[0].Pattern)
	}
}

func TestMatchMultipleFallbacksInDeclarationOrder(t *testing.T) {
	cfg := &TsConfig{
		BaseURLForPaths: "/proj",
		Paths: &Paths{Map: map[string][]Path{
			"@app/*": {{Text: "./generated/*"}, {Text: "./src/*"}},
		}},
	}
	candidates := cfg.Match("@app/button")
	if len(candidates) != 2 {
		t.Fatalf("expected two candidates, got %v", candidates)
	}
	if candidates[0].AbsPath != "/proj/./generated/button" || candidates[1].AbsPath != "/proj/./src/button" {
		t.Fatalf("expected fallback declaration order preserved, got %v", candidates)
	}
}

func TestMatchOrdersMostSpecificPatternFirst(t *testing.T) {
	cfg := &TsConfig{
		BaseURLForPaths: "/proj",
		Paths: &Paths{Map: map[string][]Path{
			"@app/*":            {{Text: "./generic/*"}},
			"@app/button":       {{Text: "./button-exact.js"}},
			"@app/components/*": {{Text: "./components/*"}},
		}},
	}
	candidates := cfg.Match("@app/button")

	var patterns []string
	for _, c := range candidates {
		patterns = append(patterns, c.Pattern)
	}
	if len(patterns) != 2 {
		t.Fatalf("expected the two matching patterns, got %v", patterns)
	}
	if patterns[0] != "@app/button" {
		t.Fatalf("expected the exact, no-wildcard pattern to be tried first, got %v", patterns)
	}
}

func TestMatchNoPatternMatches(t *testing.T) {
	cfg := &TsConfig{
		BaseURLForPaths: "/proj",
		Paths: &Paths{Map: map[string][]Path{
			"@app/*": {{Text: "./src/app/*"}},
		}},
	}
	if got := cfg.Match("@other/thing"); got != nil {
		t.Fatalf("expected no candidates for a non-matching specifier, got %v", got)
	}
}
