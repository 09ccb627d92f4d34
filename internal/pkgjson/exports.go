package pkgjson

import (
	"net/url"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/modresolve/modresolve/internal/pathutil"
	"github.com/modresolve/modresolve/internal/patternkey"
)

// Entry is one node of a parsed "exports" or "imports" map: a string
// target, an array of fallback targets, a conditions object, or null.
// Adapted from esbuild's peEntry/peMap, ported onto gjson so that
// object key order — load-bearing for condition fallback and for
// expansion-key tie-breaks — survives parsing, since Go's map type
// does not preserve insertion order.
type Entry struct {
	kind    entryKind
	str     string
	arr     []Entry
	entries []mapEntry

	// expansionKeys are the subset of entries whose key ends in "/" or
	// "*", pre-sorted most specific first by patternkey.Compare (longer
	// prefix before the "*" first; at equal prefix, no "*" first).
	expansionKeys []mapEntry
}

type mapEntry struct {
	key   string
	value Entry
}

type entryKind uint8

const (
	kindInvalid entryKind = iota
	kindNull
	kindString
	kindArray
	kindObject
)

func (e Entry) valueForKey(key string) (Entry, bool) {
	for _, m := range e.entries {
		if m.key == key {
			return m.value, true
		}
	}
	return Entry{}, false
}

func (e Entry) keysStartWithDot() bool {
	return len(e.entries) > 0 && strings.HasPrefix(e.entries[0].key, ".")
}

// ParseMap builds an Entry tree from the raw JSON text of an "exports"
// or "imports" field value. A top-level JSON null maps to an ok=false
// result, matching the field being absent.
func ParseMap(raw gjson.Result) (root Entry, ok bool) {
	root = visitEntry(raw)
	if root.kind == kindNull {
		return Entry{}, false
	}
	return root, true
}

func visitEntry(v gjson.Result) Entry {
	switch v.Type {
	case gjson.Null:
		return Entry{kind: kindNull}

	case gjson.String:
		return Entry{kind: kindString, str: v.String()}

	case gjson.JSON:
		if v.IsArray() {
			var arr []Entry
			v.ForEach(func(_, item gjson.Result) bool {
				arr = append(arr, visitEntry(item))
				return true
			})
			return Entry{kind: kindArray, arr: arr}
		}
		if v.IsObject() {
			var entries []mapEntry
			isConditionalSugar := false
			firstSeen := false

			v.ForEach(func(key, value gjson.Result) bool {
				k := key.String()
				curIsSugar := !strings.HasPrefix(k, ".")
				if !firstSeen {
					isConditionalSugar = curIsSugar
					firstSeen = true
				} else if curIsSugar != isConditionalSugar {
					entries = append(entries, mapEntry{})
					return false
				}
				entries = append(entries, mapEntry{key: k, value: visitEntry(value)})
				return true
			})

			if len(entries) > 0 && entries[len(entries)-1].key == "" && entries[len(entries)-1].value.kind == kindInvalid {
				return Entry{kind: kindInvalid}
			}

			var expansion []mapEntry
			for _, m := range entries {
				if strings.HasSuffix(m.key, "/") || strings.HasSuffix(m.key, "*") {
					expansion = append(expansion, m)
				}
			}
			sort.SliceStable(expansion, func(i, j int) bool {
				return patternkey.Compare(expansion[i].key, expansion[j].key) < 0
			})

			return Entry{kind: kindObject, entries: entries, expansionKeys: expansion}
		}
	}

	return Entry{kind: kindInvalid}
}

// Status mirrors the closed set of outcomes the ECMAScript exports/
// imports resolution algorithm can reach.
type Status uint8

const (
	StatusUndefined Status = iota
	StatusNull
	StatusExact
	StatusInexact // caller must still try extension/index fallback
	StatusInvalidModuleSpecifier
	StatusInvalidPackageConfiguration
	StatusInvalidPackageTarget
	StatusPackagePathNotExported
	StatusUnsupportedDirectoryImport
)

// ResolveExports implements the PACKAGE_EXPORTS_RESOLVE algorithm.
// packageURL is the absolute directory of the enclosing package;
// subpath is "." for the package's own main entry point or "./foo" for
// a named export subpath; conditions is the active condition set
// (e.g. {"node": true, "import": true, "default": true}).
func ResolveExports(packageURL string, subpath string, exports Entry, conditions map[string]bool) (string, Status) {
	resolved, status := resolveExportsInner(packageURL, subpath, exports, conditions)
	if status != StatusExact && status != StatusInexact {
		return resolved, status
	}

	unescaped, err := url.PathUnescape(resolved)
	if err != nil {
		return resolved, StatusInvalidModuleSpecifier
	}
	if strings.Contains(resolved, "%2f") || strings.Contains(resolved, "%2F") ||
		strings.Contains(resolved, "%5c") || strings.Contains(resolved, "%5C") {
		return resolved, StatusInvalidModuleSpecifier
	}
	if strings.HasSuffix(unescaped, "/") {
		return resolved, StatusUnsupportedDirectoryImport
	}
	return unescaped, status
}

func resolveExportsInner(packageURL string, subpath string, exports Entry, conditions map[string]bool) (string, Status) {
	if exports.kind == kindInvalid {
		return "", StatusInvalidPackageConfiguration
	}

	if subpath == "." {
		mainExport := Entry{kind: kindNull}
		switch {
		case exports.kind == kindString || exports.kind == kindArray:
			mainExport = exports
		case exports.kind == kindObject && !exports.keysStartWithDot():
			mainExport = exports
		case exports.kind == kindObject:
			if dot, ok := exports.valueForKey("."); ok {
				mainExport = dot
			}
		}
		if mainExport.kind != kindNull {
			resolved, status := resolveTarget(packageURL, mainExport, "", false, conditions)
			if status != StatusNull && status != StatusUndefined {
				return resolved, status
			}
		}
	} else if exports.kind == kindObject && exports.keysStartWithDot() {
		resolved, status := resolveImportsExports(subpath, exports, packageURL, conditions)
		if status != StatusNull && status != StatusUndefined {
			return resolved, status
		}
	}

	return "", StatusPackagePathNotExported
}

// ResolveImports implements PACKAGE_IMPORTS_RESOLVE for the "#"-prefixed
// subpaths of the "imports" field. matchKey includes the leading "#".
func ResolveImports(packageURL string, matchKey string, imports Entry, conditions map[string]bool) (string, Status) {
	if matchKey == "#" || strings.HasPrefix(matchKey, "#/") {
		return "", StatusInvalidModuleSpecifier
	}
	resolved, status := resolveImportsExports(matchKey, imports, packageURL, conditions)
	if status == StatusNull || status == StatusUndefined {
		return "", StatusPackagePathNotExported
	}
	return resolved, status
}

func resolveImportsExports(matchKey string, matchObj Entry, packageURL string, conditions map[string]bool) (string, Status) {
	if !strings.HasSuffix(matchKey, "*") {
		if target, ok := matchObj.valueForKey(matchKey); ok {
			return resolveTarget(packageURL, target, "", false, conditions)
		}
	}

	for _, expansion := range matchObj.expansionKeys {
		if strings.HasSuffix(expansion.key, "*") {
			substr := expansion.key[:len(expansion.key)-1]
			if strings.HasPrefix(matchKey, substr) && matchKey != substr {
				subpath := matchKey[len(expansion.key)-1:]
				return resolveTarget(packageURL, expansion.value, subpath, true, conditions)
			}
			continue
		}
		if strings.HasPrefix(matchKey, expansion.key) {
			subpath := matchKey[len(expansion.key):]
			result, status := resolveTarget(packageURL, expansion.value, subpath, false, conditions)
			if status == StatusExact {
				status = StatusInexact
			}
			return result, status
		}
	}

	return "", StatusNull
}

// hasInvalidSegment rejects any "." / ".." / "node_modules" path segment
// after the first, per the specification's path-traversal guard.
func hasInvalidSegment(path string) bool {
	slash := strings.IndexAny(path, "/\\")
	if slash == -1 {
		return false
	}
	path = path[slash+1:]
	for path != "" {
		slash := strings.IndexAny(path, "/\\")
		segment := path
		if slash != -1 {
			segment = path[:slash]
			path = path[slash+1:]
		} else {
			path = ""
		}
		if segment == "." || segment == ".." || segment == "node_modules" {
			return true
		}
	}
	return false
}

func resolveTarget(packageURL string, target Entry, subpath string, pattern bool, conditions map[string]bool) (string, Status) {
	switch target.kind {
	case kindString:
		if !pattern && subpath != "" && !strings.HasSuffix(target.str, "/") {
			return target.str, StatusInvalidModuleSpecifier
		}
		if !strings.HasPrefix(target.str, "./") {
			return target.str, StatusInvalidPackageTarget
		}
		if hasInvalidSegment(target.str) {
			return target.str, StatusInvalidPackageTarget
		}
		resolvedTarget := pathutil.CombinePaths(packageURL, target.str)

		if hasInvalidSegment(subpath) {
			return subpath, StatusInvalidModuleSpecifier
		}

		if pattern {
			return strings.ReplaceAll(resolvedTarget, "*", subpath), StatusExact
		}
		return pathutil.CombinePaths(resolvedTarget, subpath), StatusExact

	case kindObject:
		for _, m := range target.entries {
			if m.key == "default" || conditions[m.key] {
				resolved, status := resolveTarget(packageURL, m.value, subpath, pattern, conditions)
				if status == StatusUndefined {
					continue
				}
				return resolved, status
			}
		}
		return "", StatusUndefined

	case kindArray:
		if len(target.arr) == 0 {
			return "", StatusNull
		}
		last := StatusUndefined
		for _, item := range target.arr {
			resolved, status := resolveTarget(packageURL, item, subpath, pattern, conditions)
			if status == StatusInvalidPackageTarget || status == StatusNull {
				last = status
				continue
			}
			if status == StatusUndefined {
				continue
			}
			return resolved, status
		}
		return "", last

	case kindNull:
		return "", StatusNull
	}

	return "", StatusInvalidPackageTarget
}

// ParsePackageName splits a bare specifier like "@scope/pkg/sub/path"
// into its package name ("@scope/pkg") and subpath ("./sub/path").
func ParsePackageName(specifier string) (packageName string, packageSubpath string, ok bool) {
	if specifier == "" {
		return
	}

	slash := strings.IndexByte(specifier, '/')
	if !strings.HasPrefix(specifier, "@") {
		if slash == -1 {
			slash = len(specifier)
		}
		packageName = specifier[:slash]
	} else {
		if slash == -1 {
			return
		}
		rest := specifier[slash+1:]
		slash2 := strings.IndexByte(rest, '/')
		if slash2 == -1 {
			slash2 = len(rest)
		}
		packageName = specifier[:slash+1+slash2]
	}

	if strings.HasPrefix(packageName, ".") || strings.ContainsAny(packageName, "\\%") {
		packageName = ""
		return
	}

	packageSubpath = "." + specifier[len(packageName):]
	ok = true
	return
}
