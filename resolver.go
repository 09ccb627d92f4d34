// Package resolver implements Node.js-compatible module resolution:
// CommonJS require() semantics, the ECMAScript package exports/imports
// algorithm, TypeScript tsconfig.json path mapping, and the alias/
// fallback/roots/restrictions extensions popularized by
// enhanced-resolve.
package resolver

import (
	"fmt"
	"strings"
	"sync"

	"github.com/modresolve/modresolve/internal/cache"
	"github.com/modresolve/modresolve/internal/fs"
	"github.com/modresolve/modresolve/internal/pathutil"
	"github.com/modresolve/modresolve/internal/pkgjson"
	"github.com/modresolve/modresolve/internal/specifier"
	"github.com/modresolve/modresolve/internal/tsconfig"
)

// Resolver holds everything needed to resolve specifiers against one
// project: the file system, the shared cache, and the resolution
// options. A Resolver is safe to call concurrently from many
// goroutines; each call's working state lives in its own
// ResolveContext value, never shared.
type Resolver struct {
	opts  ResolveOptions
	fs    fs.FS
	cache *cache.Cache

	pkgDocs     *cache.ParseOnce
	tsconfigMu  sync.Mutex
	tsconfigs   map[string]*tsconfig.TsConfig
	tsconfigLdr *tsconfig.Loader

	conditionsDefault map[string]bool
	conditionsImport  map[string]bool
	conditionsRequire map[string]bool
}

// NewResolver constructs a Resolver from the given options. ResolveOptions.FS
// is required; every other field has a usable default.
func NewResolver(opts ResolveOptions) *Resolver {
	opts.Normalize()
	r := &Resolver{
		opts:      opts,
		fs:        opts.FS,
		cache:     cache.New(opts.FS),
		pkgDocs:   cache.NewParseOnce(),
		tsconfigs: make(map[string]*tsconfig.TsConfig),
	}

	r.tsconfigLdr = tsconfig.NewLoader(
		func(abs string) (string, error) { return r.cache.ReadFile(abs) },
		r.resolveTsconfigExtends,
	)

	names := opts.ConditionNames
	custom := append([]string{"default"}, opts.Conditions...)

	r.conditionsDefault = condSet(custom, names)
	r.conditionsImport = condSet(append(append([]string{}, custom...), "import"), names)
	r.conditionsRequire = condSet(append(append([]string{}, custom...), "require"), names)

	return r
}

func condSet(active []string, overrideNames []string) map[string]bool {
	if len(overrideNames) > 0 {
		active = overrideNames
	}
	m := make(map[string]bool)
	for _, c := range active {
		m[c] = true
	}
	return m
}

// ModuleKind selects which ECMAScript condition ("import" or "require")
// is active for a given resolve call, mirroring the two ways a
// specifier can be consumed.
type ModuleKind uint8

const (
	KindRequire ModuleKind = iota
	KindImport
)

// Resolve resolves specifier as seen from dir (an absolute directory),
// as if imported with module kind kind. This is a convenience wrapper
// around ResolveWithContext that discards the dependency-tracking
// context.
func (r *Resolver) Resolve(dir string, spec string, kind ModuleKind) (*Resolution, error) {
	res, _, err := r.ResolveWithContext(dir, spec, kind)
	return res, err
}

// ResolveWithContext is like Resolve but additionally returns a
// ResolveContext recording every file found to exist and every path
// probed but missing during the call, for callers that want to build their own
// invalidation cache.
func (r *Resolver) ResolveWithContext(dir string, spec string, kind ModuleKind) (*Resolution, *ResolveContext, error) {
	ctx := newResolveContext()
	res, err := r.resolveImpl(dir, spec, kind, ctx)
	return res, ctx, err
}

func (r *Resolver) logf(format string, args ...interface{}) {
	if r.opts.Log == nil {
		return
	}
	r.opts.Log(fmt.Sprintf(format, args...))
}

func (r *Resolver) resolveImpl(dir string, raw string, kind ModuleKind, ctx *ResolveContext) (*Resolution, error) {
	ctx.depth++
	defer func() { ctx.depth-- }()
	if ctx.depth > maxResolveDepth {
		return nil, &ResolveError{Kind: KindRecursion, Dir: dir, Specifier: raw}
	}

	parsed := specifier.Parse(raw)
	if parsed.Path == "" {
		return nil, &ResolveError{Kind: KindSpecifier, Dir: dir, Specifier: raw}
	}

	// Fragment-as-path: a specifier containing an unescaped "#" is
	// ambiguous between a URL fragment and a literal path character.
	// Try the whole thing (path and fragment reparented back together)
	// as one path first; only on failure does the fragment after "#"
	// get treated as a fragment during normal dispatch below.
	if parsed.Fragment != "" && parsed.Query == "" {
		combined := specifier.Parsed{Path: parsed.Reparent()}
		if res, err := r.dispatch(dir, combined, kind, ctx); err == nil {
			return r.finalize(res, combined)
		}
	}

	res, err := r.dispatch(dir, parsed, kind, ctx)
	if err != nil {
		return nil, err
	}
	return r.finalize(res, parsed)
}

// dispatch runs the full alias/imports/roots/absolute/relative/bare
// resolution chain for parsed, without applying query/fragment/
// restrictions/symlink finalization — resolveImpl does that once,
// against whichever of the fragment-as-path retry or the normal parse
// actually succeeded.
func (r *Resolver) dispatch(dir string, parsed specifier.Parsed, kind ModuleKind, ctx *ResolveContext) (*Resolution, error) {
	path := parsed.Path

	// 1. Alias, checked before anything else touches the file system.
	if target, ok := r.opts.Alias[path]; ok {
		if ctx.aliasInProgress[path] {
			return nil, &ResolveError{Kind: KindRecursion, Dir: dir, Specifier: path}
		}
		if target == "" {
			return nil, &ResolveError{Kind: KindIgnored, Dir: dir, Specifier: path}
		}
		ctx.aliasInProgress[path] = true
		defer delete(ctx.aliasInProgress, path)
		return ctx.withSuppressedFullySpecified(func() (*Resolution, error) {
			return r.resolveAliasTarget(dir, target, parsed, kind, ctx)
		})
	}

	// 2. "#"-prefixed subpath import.
	if strings.HasPrefix(path, "#") {
		return r.resolveImportsField(dir, path, parsed, kind, ctx)
	}

	// 3. Roots: specifiers beginning with "/" are restricted to the
	// configured root directories instead of the file system root.
	if pathutil.IsAbsolute(path) && len(r.opts.Roots) > 0 {
		for _, root := range r.opts.Roots {
			res, err := r.loadAsFileOrDirectory(pathutil.CombinePaths(root, path), parsed, ctx)
			if err == nil {
				return res, nil
			}
		}
		return nil, newErr(KindNotFound, dir, path)
	}

	var absOrResult *Resolution
	var err error

	switch {
	case pathutil.IsAbsolute(path):
		// require_absolute: PreferAbsolute tries the package-self/
		// node_modules search (treating the leading "/" specifier as a
		// bare name) before falling back to a literal file system path.
		if !r.opts.PreferRelative && r.opts.PreferAbsolute {
			bare := strings.TrimPrefix(path, "/")
			if res, serr := ctx.withSuppressedFullySpecified(func() (*Resolution, error) {
				return r.loadPackageSelfOrNodeModules(dir, bare, parsed, kind, ctx)
			}); serr == nil {
				return res, nil
			}
		}
		absOrResult, err = r.loadAsFileOrDirectory(path, parsed, ctx)

	case pathutil.IsRelative(path):
		joined := r.fs.Join(dir, path)
		absOrResult, err = r.loadAsFileOrDirectory(joined, parsed, ctx)

	default:
		// require_bare: PreferRelative tries the specifier as a
		// sibling relative path before the node_modules/package-self
		// search.
		if r.opts.PreferRelative {
			joined := r.fs.Join(dir, "./"+path)
			if res, rerr := r.loadAsFileOrDirectory(joined, parsed, ctx); rerr == nil {
				return res, nil
			}
		}

		if pnpRes := r.opts.PnP.Resolve(path, dir); pnpRes.Handled {
			if pnpRes.Err != nil {
				return nil, pnpRes.Err
			}
			absOrResult, err = r.loadAsFileOrDirectory(pnpRes.AbsPath, parsed, ctx)
			break
		}

		if res, ok := r.tryTsconfigPaths(dir, path, parsed, ctx); ok {
			absOrResult, err = res, nil
			break
		}

		if r.opts.BuiltinModules {
			if resolved, isRuntimeModule, ok := checkBuiltinModule(path); ok {
				return nil, &ResolveError{
					Kind:            KindBuiltin,
					Dir:             dir,
					Specifier:       path,
					Resolved:        resolved,
					IsRuntimeModule: isRuntimeModule,
				}
			}
		}

		absOrResult, err = r.loadPackageSelfOrNodeModules(dir, path, parsed, kind, ctx)
	}

	if err != nil {
		if fb, ok := r.opts.Fallback[path]; ok {
			return ctx.withSuppressedFullySpecified(func() (*Resolution, error) {
				return r.resolveAliasTarget(dir, fb, parsed, kind, ctx)
			})
		}
		ctx.sawMissing(r.fs.Join(dir, path))
		return nil, err
	}

	return absOrResult, nil
}

func (r *Resolver) resolveAliasTarget(dir string, target string, parsed specifier.Parsed, kind ModuleKind, ctx *ResolveContext) (*Resolution, error) {
	res, err := r.resolveImpl(dir, target+parsed.Query+parsed.Fragment, kind, ctx)
	if err != nil {
		return nil, &ResolveError{Kind: KindMatchedAliasNotFound, Dir: dir, Specifier: target, Wrapped: err}
	}
	return res, nil
}

func (r *Resolver) finalize(res *Resolution, parsed specifier.Parsed) (*Resolution, error) {
	if res == nil {
		return nil, newErr(KindNotFound, "", parsed.Path)
	}
	for _, restriction := range r.opts.Restrictions {
		if !restriction.Allows(res.Path) {
			return nil, &ResolveError{Kind: KindNotFound, Specifier: parsed.Path}
		}
	}
	if r.opts.Symlinks {
		if real, err := r.cache.Realpath(res.Path); err == nil {
			res.Path = real
		}
	}
	res.Query = parsed.Query
	res.Fragment = parsed.Fragment
	return res, nil
}

