package resolver

import (
	"strings"

	"github.com/modresolve/modresolve/internal/specifier"
	"github.com/modresolve/modresolve/internal/tsconfig"
)

// tryTsconfigPaths finds the tsconfig applicable to dir (explicit
// ResolveOptions.Tsconfig, or the nearest tsconfig.json walking up
// from dir) and, if its "paths" map has an entry matching
// path, tries each candidate in specificity order. ok is false when no
// tsconfig applies or none of its candidates resolve, in which case
// the caller falls through to the plain node_modules walk.
func (r *Resolver) tryTsconfigPaths(dir string, path string, parsed specifier.Parsed, ctx *ResolveContext) (*Resolution, bool) {
	cfg := r.tsconfigFor(dir)
	if cfg == nil || cfg.Paths == nil {
		return nil, false
	}

	for _, candidate := range cfg.Match(path) {
		res, err := r.loadAsFileOrDirectory(candidate.AbsPath, parsed, ctx)
		if err == nil {
			return res, true
		}
	}
	return nil, false
}

// tsconfigFor returns the parsed tsconfig applicable to dir, memoized
// by the config's own absolute path. A load failure (missing file,
// invalid JSON, circular extends) is logged and treated as "no
// tsconfig", never surfaced as a resolve error.
func (r *Resolver) tsconfigFor(dir string) *tsconfig.TsConfig {
	absPath := r.locateTsconfig(dir)
	if absPath == "" {
		return nil
	}

	r.tsconfigMu.Lock()
	defer r.tsconfigMu.Unlock()

	if cfg, ok := r.tsconfigs[absPath]; ok {
		return cfg
	}

	cfg, err := r.tsconfigLdr.Load(absPath)
	if err != nil {
		r.logf("tsconfig %s: %v", absPath, err)
		return nil
	}
	r.tsconfigs[absPath] = cfg
	return cfg
}

// locateTsconfig finds the absolute path of the tsconfig.json governing
// dir: ResolveOptions.Tsconfig if the caller pinned one, otherwise the
// nearest tsconfig.json found by walking up from dir.
func (r *Resolver) locateTsconfig(dir string) string {
	if r.opts.Tsconfig != "" {
		return r.opts.Tsconfig
	}
	cur := dir
	for {
		candidate := r.fs.Join(cur, "tsconfig.json")
		if r.cache.IsFile(candidate) {
			return candidate
		}
		parent := r.fs.Dir(cur)
		if parent == cur {
			return ""
		}
		cur = parent
	}
}

// resolveTsconfigExtends resolves the value of an "extends" field to an
// absolute tsconfig file path: a relative path (with or without a
// ".json" suffix), or a bare specifier naming a package whose root
// tsconfig.json is used. A package.json "tsconfig" field is not read.
func (r *Resolver) resolveTsconfigExtends(fromDir string, spec string) (string, bool) {
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || strings.HasPrefix(spec, "/") {
		return r.resolveExtendsPath(fromDir, spec)
	}

	// Bare specifier: walk node_modules looking for the named package,
	// then use "tsconfig.json" at its root.
	for _, nodeModulesDir := range ancestorNodeModulesDirs(r, fromDir) {
		packageDir := r.fs.Join(nodeModulesDir, spec)
		if !r.cache.IsDir(packageDir) {
			continue
		}
		if found, ok := r.resolveExtendsPath(packageDir, "./tsconfig.json"); ok {
			return found, true
		}
	}
	return "", false
}

func (r *Resolver) resolveExtendsPath(fromDir string, spec string) (string, bool) {
	abs := r.fs.Join(fromDir, spec)
	if r.cache.IsFile(abs) {
		return abs, true
	}
	withExt := abs + ".json"
	if r.cache.IsFile(withExt) {
		return withExt, true
	}
	return "", false
}
