package resolver

import (
	"strings"

	"github.com/modresolve/modresolve/internal/pkgjson"
	"github.com/modresolve/modresolve/internal/specifier"
)

// isFullySpecified reports the effective FullySpecified state for ctx:
// the option as configured, unless an internal algorithm (alias,
// package-self, extension-alias, subpath descent) has temporarily
// suppressed it for this lookup.
func (r *Resolver) isFullySpecified(ctx *ResolveContext) bool {
	return r.opts.FullySpecified && !ctx.suppressFullySpecified
}

// loadAsFileOrDirectory implements Node's LOAD_AS_FILE followed by
// LOAD_AS_DIRECTORY, per require()'s main dispatch.
func (r *Resolver) loadAsFileOrDirectory(abs string, parsed specifier.Parsed, ctx *ResolveContext) (*Resolution, error) {
	if r.opts.ResolveToContext {
		if r.cache.IsDir(abs) {
			return &Resolution{Path: abs}, nil
		}
		return nil, newErr(KindNotFound, abs, parsed.Path)
	}

	if !strings.HasSuffix(parsed.Path, "/") {
		if res, err := r.loadAsFile(abs, ctx); err == nil {
			return res, nil
		}
	}

	if r.cache.IsDir(abs) {
		return r.loadAsDirectory(abs, ctx)
	}

	return nil, newErr(KindNotFound, abs, parsed.Path)
}

// loadAsFile tries abs exactly, then abs with each extension-alias
// substitution (if abs already has a recognized extension), then abs
// with each of ExtensionOrder appended. The ExtensionOrder step is
// skipped when EnforceExtension requires a candidate's own extension
// to already be present, or when FullySpecified is in effect; the
// extension-alias step runs in either case.
func (r *Resolver) loadAsFile(abs string, ctx *ResolveContext) (*Resolution, error) {
	if r.cache.IsFile(abs) {
		ctx.sawFile(abs)
		return r.resolutionForFile(abs)
	}

	if aliases, ok := matchExtensionAlias(abs, r.opts.ExtensionAlias); ok {
		for _, candidate := range aliases {
			if r.cache.IsFile(candidate) {
				ctx.sawFile(candidate)
				return r.resolutionForFile(candidate)
			}
		}
		return nil, newErr(KindExtensionAlias, abs, abs)
	}

	if r.opts.EnforceExtension == EnforceExtensionEnabled || r.isFullySpecified(ctx) {
		ctx.sawMissing(abs)
		return nil, newErr(KindNotFound, abs, abs)
	}

	for _, ext := range r.opts.ExtensionOrder {
		candidate := abs + ext
		if r.cache.IsFile(candidate) {
			ctx.sawFile(candidate)
			return r.resolutionForFile(candidate)
		}
	}

	ctx.sawMissing(abs)
	return nil, newErr(KindNotFound, abs, abs)
}

func matchExtensionAlias(abs string, aliasMap map[string][]string) ([]string, bool) {
	for ext, replacements := range aliasMap {
		if hasSuffix(abs, ext) {
			base := abs[:len(abs)-len(ext)]
			out := make([]string, len(replacements))
			for i, r := range replacements {
				out[i] = base + r
			}
			return out, true
		}
	}
	return nil, false
}

// loadAsDirectory implements LOAD_AS_DIRECTORY: read the directory's
// package.json main fields and, failing that, LOAD_INDEX. A
// directory's own "exports" map (subpath ".") is non-standard and
// only tried, as a final fallback ahead of the index file, when
// AllowPackageExportsInDirectoryResolve opts in.
func (r *Resolver) loadAsDirectory(dir string, ctx *ResolveContext) (*Resolution, error) {
	pkg, pkgPath := r.packageJSONFor(dir, ctx)

	if pkg != nil {
		for _, field := range r.opts.MainFields {
			if main, ok := pkg.AbsMainFields[field]; ok {
				if res, err := r.loadAsFileOrDirectoryNoIndexFallback(main, ctx); err == nil {
					res.PackageJSONPath = pkgPath
					return res, nil
				}
			}
		}
	}

	if r.opts.AllowPackageExportsInDirectoryResolve && pkg != nil && pkg.Exports != nil {
		if res, err := r.resolvePackageExportsSubpath(dir, pkg, ".", r.conditionsDefault, ctx); err == nil {
			return res, nil
		}
	}

	return r.loadIndex(dir, ctx)
}

// loadAsFileOrDirectoryNoIndexFallback resolves a main field's value,
// which may itself point at a file (with or without extension) or at
// another directory containing its own index file.
func (r *Resolver) loadAsFileOrDirectoryNoIndexFallback(abs string, ctx *ResolveContext) (*Resolution, error) {
	if res, err := r.loadAsFile(abs, ctx); err == nil {
		return res, nil
	}
	if r.cache.IsDir(abs) {
		return r.loadIndex(abs, ctx)
	}
	return nil, newErr(KindNotFound, abs, abs)
}

// loadIndex tries each of MainFiles, joined to dir, with each
// extension in ExtensionOrder. Skipped entirely when EnforceExtension
// requires an extension up front or FullySpecified is in effect, since
// every candidate here is necessarily extensionless on its own.
func (r *Resolver) loadIndex(dir string, ctx *ResolveContext) (*Resolution, error) {
	if r.opts.EnforceExtension == EnforceExtensionEnabled || r.isFullySpecified(ctx) {
		return nil, newErr(KindNotFound, dir, "index")
	}
	for _, name := range r.opts.MainFiles {
		base := r.fs.Join(dir, name)
		for _, ext := range r.opts.ExtensionOrder {
			candidate := base + ext
			if r.cache.IsFile(candidate) {
				ctx.sawFile(candidate)
				return r.resolutionForFile(candidate)
			}
		}
	}
	return nil, newErr(KindNotFound, dir, "index")
}

func (r *Resolver) resolutionForFile(abs string) (*Resolution, error) {
	pkg, pkgPath := r.packageJSONFor(r.fs.Dir(abs), nil)
	return &Resolution{
		Path:            abs,
		PackageJSONPath: pkgPath,
		ModuleType:      moduleTypeForFile(abs, pkg),
	}, nil
}

// packageJSONFor walks up from dir to find the nearest enclosing
// package.json, parsing and memoizing it by absolute path. Returns nil
// if none is found before the file system root.
func (r *Resolver) packageJSONFor(dir string, ctx *ResolveContext) (*pkgjson.PackageJSON, string) {
	for {
		candidate := r.fs.Join(dir, "package.json")
		if r.cache.IsFile(candidate) {
			if ctx != nil {
				ctx.sawFile(candidate)
			}
			pkg := r.parsePackageJSONCached(dir, candidate)
			return pkg, candidate
		}
		parent := r.fs.Dir(dir)
		if parent == dir {
			return nil, ""
		}
		dir = parent
	}
}

func (r *Resolver) parsePackageJSONCached(dir string, absPath string) *pkgjson.PackageJSON {
	v, err := r.pkgDocs.Do("p:"+absPath, func() (interface{}, error) {
		contents, rerr := r.cache.ReadFile(absPath)
		if rerr != nil {
			return (*pkgjson.PackageJSON)(nil), rerr
		}
		pkg := pkgjson.Parse(dir, contents, pkgjson.ParseOptions{
			MainFields:   r.opts.MainFields,
			BrowserField: containsString(r.opts.AliasFields, "browser"),
			JoinDir:      func(rel string) string { return r.fs.Join(dir, rel) },
			ResolveAbs: func(candidateAbs string) string {
				if r.cache.IsFile(candidateAbs) {
					return candidateAbs
				}
				for _, ext := range r.opts.ExtensionOrder {
					if r.cache.IsFile(candidateAbs + ext) {
						return candidateAbs + ext
					}
				}
				if r.cache.IsDir(candidateAbs) {
					for _, name := range r.opts.MainFiles {
						for _, ext := range r.opts.ExtensionOrder {
							idx := r.fs.Join(candidateAbs, name+ext)
							if r.cache.IsFile(idx) {
								return idx
							}
						}
					}
				}
				return ""
			},
		})
		return pkg, nil
	})
	if err != nil {
		return nil
	}
	return v.(*pkgjson.PackageJSON)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
