package resolver

import (
	"strings"

	"github.com/modresolve/modresolve/internal/pathutil"
	"github.com/modresolve/modresolve/internal/pkgjson"
	"github.com/modresolve/modresolve/internal/specifier"
)

// resolvePackageExportsSubpath resolves subpath (either "." or
// "./foo") against pkg's "exports" map, rooted at packageDir, and maps
// the ECMAScript resolution Status onto this package's error
// taxonomy.
func (r *Resolver) resolvePackageExportsSubpath(packageDir string, pkg *pkgjson.PackageJSON, subpath string, conditions map[string]bool, ctx *ResolveContext) (*Resolution, error) {
	resolved, status := pkgjson.ResolveExports(packageDir, subpath, *pkg.Exports, conditions)

	switch status {
	case pkgjson.StatusExact:
		abs := pathutil.NormalizePath(resolved)
		if r.cache.IsFile(abs) {
			ctx.sawFile(abs)
			res, _ := r.resolutionForFile(abs)
			return res, nil
		}
		return nil, newErr(KindNotFound, packageDir, subpath)

	case pkgjson.StatusInexact:
		abs := pathutil.NormalizePath(resolved)
		if res, err := r.loadAsFile(abs, ctx); err == nil {
			return res, nil
		}
		return nil, newErr(KindNotFound, packageDir, subpath)

	case pkgjson.StatusPackagePathNotExported:
		return nil, newErr(KindPackagePathNotExported, packageDir, subpath)
	case pkgjson.StatusInvalidPackageConfiguration:
		return nil, newErr(KindInvalidPackageConfig, packageDir, subpath)
	case pkgjson.StatusInvalidPackageTarget:
		return nil, newErr(KindInvalidPackageTarget, packageDir, subpath)
	case pkgjson.StatusInvalidModuleSpecifier:
		return nil, newErr(KindInvalidModuleSpecifier, packageDir, subpath)
	case pkgjson.StatusUnsupportedDirectoryImport:
		return nil, newErr(KindPathNotSupported, packageDir, subpath)
	default:
		return nil, newErr(KindPackagePathNotExported, packageDir, subpath)
	}
}

// resolveImportsField implements the "#"-prefixed subpath import
// algorithm: find the nearest enclosing package.json, consult its
// "imports" map, and resolve through PACKAGE_IMPORTS_RESOLVE.
func (r *Resolver) resolveImportsField(dir string, importPath string, parsed specifier.Parsed, kind ModuleKind, ctx *ResolveContext) (*Resolution, error) {
	pkg, pkgPath := r.packageJSONFor(dir, ctx)
	if pkg == nil || pkg.Imports == nil {
		return nil, newErr(KindPackageImportNotDefined, dir, importPath)
	}

	conditions := r.conditionsRequire
	if kind == KindImport {
		conditions = r.conditionsImport
	}

	packageDir := r.fs.Dir(pkgPath)
	resolved, status := pkgjson.ResolveImports(packageDir, importPath, *pkg.Imports, conditions)

	switch status {
	case pkgjson.StatusExact:
		abs := pathutil.NormalizePath(resolved)
		if r.cache.IsFile(abs) {
			ctx.sawFile(abs)
			return r.resolutionForFile(abs)
		}
		return nil, newErr(KindNotFound, dir, importPath)
	case pkgjson.StatusInexact:
		abs := pathutil.NormalizePath(resolved)
		return r.loadAsFile(abs, ctx)
	case pkgjson.StatusPackagePathNotExported:
		return nil, newErr(KindPackageImportNotDefined, dir, importPath)
	default:
		return nil, newErr(KindPackageImportNotDefined, dir, importPath)
	}
}

// resolvePackageSelfReference checks whether importPath's package name
// matches pkg's own declared "name", implementing the ESM "self
// reference" case where a package imports its own exports map by name
// instead of via a relative path.
func resolvePackageSelfReference(pkg *pkgjson.PackageJSON, packageName string) bool {
	return pkg != nil && pkg.Name != "" && pkg.Name == packageName
}

func isBareSpecifier(s string) bool {
	return s != "" && !strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "./") &&
		!strings.HasPrefix(s, "../") && s != "." && s != ".." && !strings.HasPrefix(s, "#")
}
