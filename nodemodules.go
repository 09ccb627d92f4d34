package resolver

import (
	"github.com/agext/levenshtein"

	"github.com/modresolve/modresolve/internal/pkgjson"
	"github.com/modresolve/modresolve/internal/specifier"
)

// loadNodeModules implements Node's LOAD_NODE_MODULES: walk up from
// dir through every ancestor's "node_modules" subdirectory, and for
// the first one that contains the requested package, resolve the
// subpath against it (via its exports map if present, otherwise as a
// plain file/directory load).
func (r *Resolver) loadNodeModules(dir string, importPath string, parsed specifier.Parsed, kind ModuleKind, ctx *ResolveContext) (*Resolution, error) {
	packageName, packageSubpath, ok := pkgjson.ParsePackageName(importPath)
	if !ok {
		return nil, newErr(KindInvalidModuleSpecifier, dir, importPath)
	}

	for _, nodeModulesDir := range ancestorNodeModulesDirs(r, dir) {
		packageDir := r.fs.Join(nodeModulesDir, packageName)
		if !r.cache.IsDir(packageDir) {
			continue
		}

		pkg, pkgPath := r.packageJSONFor(packageDir, ctx)

		if aliasFieldRes, ok := r.applyAliasFields(packageDir, pkg, packageSubpath, ctx); ok {
			if aliasFieldRes == nil {
				return nil, &ResolveError{Kind: KindIgnored, Dir: dir, Specifier: importPath}
			}
			return aliasFieldRes, nil
		}

		if pkg != nil && pkg.Exports != nil {
			conditions := r.conditionsRequire
			if kind == KindImport {
				conditions = r.conditionsImport
			}
			res, err := r.resolvePackageExportsSubpath(packageDir, pkg, packageSubpath, conditions, ctx)
			if err == nil {
				return res, nil
			}
			// An explicit "exports" map is exclusive: if present, a
			// subpath it doesn't list is not reachable by falling
			// through to a plain file lookup.
			return nil, err
		}

		var res *Resolution
		var err error
		if packageSubpath == "." {
			res, err = r.loadAsDirectory(packageDir, ctx)
		} else {
			res, err = ctx.withSuppressedFullySpecified(func() (*Resolution, error) {
				return r.loadAsFileOrDirectory(r.fs.Join(packageDir, packageSubpath[2:]), parsed, ctx)
			})
		}
		if err == nil {
			if pkgPath != "" {
				res.PackageJSONPath = pkgPath
			}
			return res, nil
		}
	}

	suggestion := r.suggestSibling(dir, packageName)
	return nil, &ResolveError{Kind: KindNotFound, Dir: dir, Specifier: importPath, Suggestion: suggestion}
}

// loadPackageSelfOrNodeModules implements LOAD_PACKAGE_SELF followed
// by LOAD_NODE_MODULES: a bare specifier whose package name matches
// the name declared by the nearest enclosing package.json resolves
// against that package's own "exports" map, without ever walking
// node_modules, before the normal node_modules search runs at all.
func (r *Resolver) loadPackageSelfOrNodeModules(dir string, importPath string, parsed specifier.Parsed, kind ModuleKind, ctx *ResolveContext) (*Resolution, error) {
	if isBareSpecifier(importPath) {
		packageName, packageSubpath, ok := pkgjson.ParsePackageName(importPath)
		if ok {
			pkg, pkgPath := r.packageJSONFor(dir, ctx)
			if resolvePackageSelfReference(pkg, packageName) && pkg.Exports != nil {
				conditions := r.conditionsRequire
				if kind == KindImport {
					conditions = r.conditionsImport
				}
				res, err := ctx.withSuppressedFullySpecified(func() (*Resolution, error) {
					return r.resolvePackageExportsSubpath(r.fs.Dir(pkgPath), pkg, packageSubpath, conditions, ctx)
				})
				if err == nil {
					return res, nil
				}
				return nil, err
			}
		}
	}

	return r.loadNodeModules(dir, importPath, parsed, kind, ctx)
}

func ancestorNodeModulesDirs(r *Resolver, dir string) []string {
	var dirs []string
	cur := dir
	for {
		for _, name := range r.opts.Modules {
			dirs = append(dirs, r.fs.Join(cur, name))
		}
		parent := r.fs.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	return dirs
}

// applyAliasFields implements the "browser"-field-style remapping of
// package.json AliasFields. A subpath like "./server.js" is looked up in
// the field's relative-path map (BrowserNonPackageMap, keyed by the
// joined absolute path, the same way package_json.go built it), then in
// BrowserPackageMap under the same "./"-prefixed subpath; that map is
// keyed by bare package names, so bare-name remapping does not happen
// here. A match can remap to another target or to false (disabled). Returns ok=false if no AliasFields remapping
// applies; ok=true with a nil Resolution means the subpath is disabled.
func (r *Resolver) applyAliasFields(packageDir string, pkg *pkgjson.PackageJSON, packageSubpath string, ctx *ResolveContext) (*Resolution, bool) {
	if pkg == nil || len(r.opts.AliasFields) == 0 {
		return nil, false
	}
	if packageSubpath == "." {
		// Package-level remap is keyed by the package's own name, which
		// callers of applyAliasFields don't currently have at hand for
		// the self-main case; skip, the caller falls through to plain
		// main-field resolution.
		return nil, false
	}

	if pkg.BrowserNonPackageMap != nil {
		key := r.fs.Join(packageDir, packageSubpath[len("./"):])
		if value, ok := pkg.BrowserNonPackageMap[key]; ok {
			return r.resolveAliasFieldTarget(packageDir, value, ctx)
		}
	}

	if pkg.BrowserPackageMap != nil {
		if value, ok := pkg.BrowserPackageMap[packageSubpath]; ok {
			return r.resolveAliasFieldTarget(packageDir, value, ctx)
		}
	}

	return nil, false
}

func (r *Resolver) resolveAliasFieldTarget(packageDir string, value *string, ctx *ResolveContext) (*Resolution, bool) {
	if value == nil {
		return nil, true // disabled mapping; caller treats nil+true as KindIgnored
	}
	res, err := r.loadAsFileOrDirectory(r.fs.Join(packageDir, *value), specifier.Parsed{}, ctx)
	if err != nil {
		return nil, false
	}
	return res, true
}

// suggestSibling looks for the lexically nearest package name actually
// present in dir's own module directories (dir joined with each of
// ResolveOptions.Modules; ancestors are not searched), for a NotFound
// error's "did you mean" hint. It never errors; a failure to compute a suggestion
// just yields an empty string.
func (r *Resolver) suggestSibling(dir string, wanted string) string {
	best := ""
	bestDist := -1
	for _, modulesName := range r.opts.Modules {
		entries, _, err := r.fs.ReadDirectory(r.fs.Join(dir, modulesName))
		if err != nil {
			continue
		}
		for _, name := range entries.SortedKeys() {
			dist := levenshtein.Distance(name, wanted, nil)
			if bestDist == -1 || dist < bestDist {
				bestDist = dist
				best = name
			}
		}
	}
	if bestDist >= 0 && bestDist <= 3 {
		return best
	}
	return ""
}
