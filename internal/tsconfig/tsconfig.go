// Package tsconfig loads and resolves TypeScript "tsconfig.json" /
// "jsconfig.json" files: baseUrl/paths path mapping, the "extends"
// inheritance chain, and project "references".
package tsconfig

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"

	"github.com/modresolve/modresolve/internal/pathutil"
)

// Path is one fallback entry in a "paths" pattern's remapping list.
type Path struct {
	Text string
}

// Paths is the parsed "compilerOptions.paths" map. It records which
// file it came from because "paths" is inherited wholesale from an
// "extends" parent rather than merged key by key.
type Paths struct {
	Map         map[string][]Path
	SourcePath  string
}

// ReferencesMode records what a tsconfig declares about its
// "references" array (absent, an explicit list, or false), matching the
// three states the original Rust implementation distinguishes. The
// resolver does not follow references into other projects.
type ReferencesMode uint8

const (
	ReferencesAuto ReferencesMode = iota
	ReferencesExplicit
	ReferencesDisabled
)

type TsConfig struct {
	AbsPath string

	BaseURL *string

	// BaseURLForPaths equals BaseURL if present, otherwise the directory
	// containing the config file: paths are resolved relative to this
	// even without an explicit baseUrl (TypeScript 4.1+ "paths without
	// baseUrl").
	BaseURLForPaths string

	Paths *Paths

	References     ReferencesMode
	ReferenceDirs  []string // absolute directories named by "references"

	ExtendsChain []string // absolute paths of every config this one extends, root-most last
}

// Loader loads and caches parsed tsconfig files by absolute path,
// resolving "extends" chains and detecting cycles in them. Project
// "references" are recorded (References, ReferenceDirs) but the
// referenced configs are not loaded, so a config that references
// itself is not detected.
type Loader struct {
	readFile func(absPath string) (string, error)
	resolveExtends func(fromDir string, specifier string) (string, bool)

	parsed map[string]*TsConfig
	stack  []string
}

// ErrCircularExtend is returned when a tsconfig's "extends" chain
// revisits a file already on the current load stack.
type ErrCircularExtend struct{ Chain []string }

func (e *ErrCircularExtend) Error() string {
	return fmt.Sprintf("circular \"extends\" chain: %s", strings.Join(e.Chain, " -> "))
}

// ErrNotFound is returned when an "extends" target cannot be resolved
// to a file.
type ErrNotFound struct{ Specifier string }

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("cannot find tsconfig %q", e.Specifier)
}

// NewLoader constructs a Loader. readFile reads a file's raw contents
// given its absolute path. resolveExtends resolves the string value of
// an "extends" field (which may be a bare specifier naming a package,
// a relative path, or a path missing its ".json" extension) relative
// to the directory containing the config that named it, and reports
// whether it found a file.
func NewLoader(
	readFile func(absPath string) (string, error),
	resolveExtends func(fromDir string, specifier string) (string, bool),
) *Loader {
	return &Loader{
		readFile:       readFile,
		resolveExtends: resolveExtends,
		parsed:         make(map[string]*TsConfig),
	}
}

// Load parses the tsconfig.json at absPath, following its "extends"
// chain. A config already loaded in a previous call is returned from
// cache without being re-parsed.
func (l *Loader) Load(absPath string) (*TsConfig, error) {
	if cached, ok := l.parsed[absPath]; ok {
		return cached, nil
	}

	for _, onStack := range l.stack {
		if onStack == absPath {
			return nil, &ErrCircularExtend{Chain: append(append([]string{}, l.stack...), absPath)}
		}
	}

	raw, err := l.readFile(absPath)
	if err != nil {
		return nil, &ErrNotFound{Specifier: absPath}
	}

	l.stack = append(l.stack, absPath)
	defer func() { l.stack = l.stack[:len(l.stack)-1] }()

	result, err := l.parseOne(absPath, raw)
	if err != nil {
		return nil, err
	}

	l.parsed[absPath] = result
	return result, nil
}

func (l *Loader) parseOne(absPath string, raw string) (*TsConfig, error) {
	normalized := jsonc.ToJSON([]byte(raw))
	if !gjson.ValidBytes(normalized) {
		return nil, fmt.Errorf("invalid JSON in %s", absPath)
	}
	root := gjson.ParseBytes(normalized)
	dir := pathutil.GetDirectoryPath(absPath)

	var result TsConfig
	result.AbsPath = absPath
	result.References = ReferencesAuto

	if extendsField := root.Get("extends"); extendsField.Exists() {
		specifiers := extendsSpecifiers(extendsField)
		for _, spec := range specifiers {
			target, ok := l.resolveExtends(dir, spec)
			if !ok {
				return nil, &ErrNotFound{Specifier: spec}
			}
			base, err := l.Load(target)
			if err != nil {
				return nil, err
			}
			mergeFrom(&result, base)
			result.ExtendsChain = append(result.ExtendsChain, target)
			result.ExtendsChain = append(result.ExtendsChain, base.ExtendsChain...)
		}
	}

	co := root.Get("compilerOptions")

	if baseURL := co.Get("baseUrl"); baseURL.Type == gjson.String {
		v := configDirSubst(baseURL.String(), dir)
		if !pathutil.IsAbsolute(v) {
			v = pathutil.CombinePaths(dir, v)
		}
		v = pathutil.NormalizePath(v)
		result.BaseURL = &v
	}

	if pathsField := co.Get("paths"); pathsField.IsObject() {
		hasBaseURL := result.BaseURL != nil
		if hasBaseURL {
			result.BaseURLForPaths = *result.BaseURL
		} else {
			result.BaseURLForPaths = dir
		}
		m := make(map[string][]Path)
		pathsField.ForEach(func(key, value gjson.Result) bool {
			k := key.String()
			if !isValidPattern(k) {
				return true
			}
			if value.IsArray() {
				value.ForEach(func(_, item gjson.Result) bool {
					if item.Type == gjson.String && isValidPattern(item.String()) {
						m[k] = append(m[k], Path{Text: item.String()})
					}
					return true
				})
			}
			return true
		})
		result.Paths = &Paths{Map: m, SourcePath: absPath}
	} else if result.BaseURL == nil && result.Paths != nil {
		result.BaseURLForPaths = dir
	}

	if refMode := root.Get("references"); refMode.IsArray() {
		result.References = ReferencesExplicit
		refMode.ForEach(func(_, item gjson.Result) bool {
			if p := item.Get("path"); p.Type == gjson.String {
				result.ReferenceDirs = append(result.ReferenceDirs, pathutil.CombinePaths(dir, p.String()))
			}
			return true
		})
	} else if disable := root.Get("references"); disable.Type == gjson.False {
		result.References = ReferencesDisabled
	}

	return &result, nil
}

// mergeFrom copies every field set by a resolved "extends" parent onto
// result before result's own fields are parsed, so that the child's
// own settings (parsed afterward, overwriting these) take priority.
func mergeFrom(result *TsConfig, base *TsConfig) {
	result.BaseURL = base.BaseURL
	result.BaseURLForPaths = base.BaseURLForPaths
	result.Paths = base.Paths
	result.References = base.References
	result.ReferenceDirs = append([]string{}, base.ReferenceDirs...)
}

func extendsSpecifiers(field gjson.Result) []string {
	if field.IsArray() {
		var out []string
		field.ForEach(func(_, item gjson.Result) bool {
			if item.Type == gjson.String {
				out = append(out, item.String())
			}
			return true
		})
		return out
	}
	if field.Type == gjson.String {
		return []string{field.String()}
	}
	return nil
}

// configDirSubst replaces the TypeScript 5.5 "${configDir}" token with
// the directory containing the tsconfig file it appears in.
func configDirSubst(value string, dir string) string {
	return strings.ReplaceAll(value, "${configDir}", dir)
}

func isValidPattern(text string) bool {
	count := strings.Count(text, "*")
	return count <= 1
}
