package tsconfig

import (
	"strings"
	"testing"
)

// fixture builds a Loader backed by an in-memory map of absolute path to
// raw tsconfig contents. resolveExtends resolves a relative ".json"
// suffixed path against fromDir, the same way the real CLI/resolver
// helpers do against the file system.
func fixture(files map[string]string) *Loader {
	readFile := func(abs string) (string, error) {
		if contents, ok := files[abs]; ok {
			return contents, nil
		}
		return "", &ErrNotFound{Specifier: abs}
	}
	resolveExtends := func(fromDir, spec string) (string, bool) {
		candidate := fromDir + "/" + strings.TrimPrefix(spec, "./")
		if _, ok := files[candidate]; ok {
			return candidate, true
		}
		if _, ok := files[candidate+".json"]; ok {
			return candidate + ".json", true
		}
		return "", false
	}
	return NewLoader(readFile, resolveExtends)
}

func TestLoadBaseUrlAndPaths(t *testing.T) {
	l := fixture(map[string]string{
		"/proj/tsconfig.json": `{
			"compilerOptions": {
				"baseUrl": ".",
				"paths": { "@app/*": ["./src/app/*"] }
			}
		}`,
	})
	cfg, err := l.Load("/proj/tsconfig.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL == nil || *cfg.BaseURL != "/proj" {
		t.Fatalf("got BaseURL %v", cfg.BaseURL)
	}
	if cfg.Paths == nil || len(cfg.Paths.Map["@app/*"]) != 1 {
		t.Fatalf("expected one fallback for @app/*, got %+v", cfg.Paths)
	}
}

func TestLoadPathsWithoutBaseUrlUsesConfigDir(t *testing.T) {
	l := fixture(map[string]string{
		"/proj/tsconfig.json": `{
			"compilerOptions": { "paths": { "@app/*": ["./src/app/*"] } }
		}`,
	})
	cfg, err := l.Load("/proj/tsconfig.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != nil {
		t.Fatalf("expected no explicit baseUrl, got %v", *cfg.BaseURL)
	}
	if cfg.BaseURLForPaths != "/proj" {
		t.Fatalf("expected paths to resolve relative to the config's directory, got %q", cfg.BaseURLForPaths)
	}
}

func TestLoadExtendsInheritsPaths(t *testing.T) {
	l := fixture(map[string]string{
		"/proj/base.json": `{
			"compilerOptions": { "baseUrl": ".", "paths": { "@app/*": ["./src/*"] } }
		}`,
		"/proj/tsconfig.json": `{ "extends": "./base.json" }`,
	})
	cfg, err := l.Load("/proj/tsconfig.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Paths == nil || len(cfg.Paths.Map["@app/*"]) != 1 {
		t.Fatalf("expected paths inherited from extends parent, got %+v", cfg.Paths)
	}
	if len(cfg.ExtendsChain) != 1 || cfg.ExtendsChain[0] != "/proj/base.json" {
		t.Fatalf("expected extends chain to record the parent, got %v", cfg.ExtendsChain)
	}
}

func TestLoadExtendsChildOverridesParent(t *testing.T) {
	l := fixture(map[string]string{
		"/proj/base.json": `{
			"compilerOptions": { "baseUrl": ".", "paths": { "@app/*": ["./src/*"] } }
		}`,
		"/proj/tsconfig.json": `{
			"extends": "./base.json",
			"compilerOptions": { "baseUrl": ".", "paths": { "@app/*": ["./lib/*"] } }
		}`,
	})
	cfg, err := l.Load("/proj/tsconfig.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Paths.Map["@app/*"][0].Text != "./lib/*" {
		t.Fatalf("expected the child's own paths to take priority, got %+v", cfg.Paths.Map["@app/*"])
	}
}

func TestLoadExtendsCircularDetected(t *testing.T) {
	l := fixture(map[string]string{
		"/proj/a.json": `{ "extends": "./b.json" }`,
		"/proj/b.json": `{ "extends": "./a.json" }`,
	})
	_, err := l.Load("/proj/a.json")
	if err == nil {
		t.Fatal("expected a circular extends error")
	}
	if _, ok := err.(*ErrCircularExtend); !ok {
		t.Fatalf("expected *ErrCircularExtend, got %T: %v", err, err)
	}
}

func TestLoadExtendsNotFound(t *testing.T) {
	l := fixture(map[string]string{
		"/proj/tsconfig.json": `{ "extends": "./missing.json" }`,
	})
	_, err := l.Load("/proj/tsconfig.json")
	if _, ok := err.(*ErrNotFound); !ok {
		t.Fatalf("expected *ErrNotFound, got %T: %v", err, err)
	}
}

func TestLoadCachesParsedResult(t *testing.T) {
	l := fixture(map[string]string{
		"/proj/tsconfig.json": `{ "compilerOptions": { "baseUrl": "." } }`,
	})
	first, err := l.Load("/proj/tsconfig.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := l.Load("/proj/tsconfig.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatal("expected the same *TsConfig pointer on a repeated Load of the same path")
	}
}

func TestLoadReferencesExplicit(t *testing.T) {
	l := fixture(map[string]string{
		"/proj/tsconfig.json": `{ "references": [{ "path": "./packages/a" }, { "path": "./packages/b" }] }`,
	})
	cfg, err := l.Load("/proj/tsconfig.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.References != ReferencesExplicit {
		t.Fatalf("expected explicit references mode, got %v", cfg.References)
	}
	if len(cfg.ReferenceDirs) != 2 {
		t.Fatalf("expected two reference directories, got %v", cfg.ReferenceDirs)
	}
}

func TestLoadReferencesDisabled(t *testing.T) {
	l := fixture(map[string]string{
		"/proj/tsconfig.json": `{ "references": false }`,
	})
	cfg, err := l.Load("/proj/tsconfig.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.References != ReferencesDisabled {
		t.Fatalf("expected disabled references mode, got %v", cfg.References)
	}
}

func TestLoadReferencesDefaultAuto(t *testing.T) {
	l := fixture(map[string]string{"/proj/tsconfig.json": `{}`})
	cfg, err := l.Load("/proj/tsconfig.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.References != ReferencesAuto {
		t.Fatalf("expected auto references mode by default, got %v", cfg.References)
	}
}

func TestLoadConfigDirSubstitution(t *testing.T) {
	l := fixture(map[string]string{
		"/proj/tsconfig.json": `{ "compilerOptions": { "baseUrl": "${configDir}/src" } }`,
	})
	cfg, err := l.Load("/proj/tsconfig.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL == nil || *cfg.BaseURL != "/proj/src" {
		t.Fatalf("got BaseURL %v", cfg.BaseURL)
	}
}

func TestLoadAcceptsJSONCComments(t *testing.T) {
	l := fixture(map[string]string{
		"/proj/tsconfig.json": "{\n  // a comment\n  \"compilerOptions\": { \"baseUrl\": \".\" }\n}",
	})
	cfg, err := l.Load("/proj/tsconfig.json")
	if err != nil {
		t.Fatalf("unexpected error parsing JSONC: %v", err)
	}
	if cfg.BaseURL == nil || *cfg.BaseURL != "/proj" {
		t.Fatalf("got BaseURL %v", cfg.BaseURL)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	l := fixture(map[string]string{"/proj/tsconfig.json": "{not json"})
	if _, err := l.Load("/proj/tsconfig.json"); err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
}
