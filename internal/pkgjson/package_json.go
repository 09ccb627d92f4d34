// Package pkgjson parses the subset of package.json that module
// resolution cares about: the name, main-field entry points, the
// browser map, "type", and the ECMAScript "exports"/"imports" maps.
// "sideEffects" is not read. It reads
// through github.com/tidwall/gjson rather than encoding/json so that
// object key order is preserved — load-bearing for the exports/imports
// expansion-key algorithm in exports.go.
package pkgjson

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ModuleType records how a package.json's "type" field, if present,
// asserts its .js files should be interpreted.
type ModuleType uint8

const (
	ModuleTypeUnknown ModuleType = iota
	ModuleTypeCommonJS
	ModuleTypeModule
)

type PackageJSON struct {
	AbsPath string

	// Name is the "name" field, used to detect a bare specifier
	// referring back to the package that contains it (a "self
	// reference", which the exports map must also satisfy).
	Name string

	// AbsMainFields maps a main-field name ("main", "module", ...) in
	// the order given by ResolveOptions.MainFields to the absolute path
	// it resolves to, if that field was present and resolvable.
	AbsMainFields map[string]string

	// BrowserPackageMap and BrowserNonPackageMap implement the
	// "browser" field's package-name and relative-path remapping forms
	// respectively. A nil *string value means the target is disabled
	// (mapped to an empty module).
	BrowserPackageMap    map[string]*string
	BrowserNonPackageMap map[string]*string

	Type ModuleType

	// Exports and Imports are nil when the corresponding field is
	// absent or is JSON null.
	Exports *Entry
	Imports *Entry

	HasNativeBindings bool
}

// NativeModuleMarkers lists dependency names whose presence suggests a
// package ships native bindings, used only as a best-effort signal for
// hosts that want to treat such packages specially; the resolver
// algorithm itself never branches on it.
var NativeModuleMarkers = map[string]bool{
	"bindings":       true,
	"nan":            true,
	"node-gyp-build": true,
	"node-pre-gyp":   true,
	"prebuild":       true,
}

// ParseOptions carries the caller-supplied knobs that affect how a
// package.json is interpreted: which main fields to read and in what
// order, and whether "browser" remapping is active at all (it only
// applies when resolving for a browser-like platform).
type ParseOptions struct {
	MainFields []string
	BrowserField bool
	// ResolveAbs takes an absolute candidate path and returns the
	// actual resolved file path (after extension/index resolution), or
	// "" if nothing exists there.
	ResolveAbs func(absCandidate string) string
	JoinDir    func(rel string) string
}

// Parse reads the already-loaded JSON text of one package.json file.
// dir is the absolute directory containing it (used to make "main"
// paths absolute and to scope "browser" path keys).
func Parse(dir string, contents string, opts ParseOptions) *PackageJSON {
	if !gjson.Valid(contents) {
		return nil
	}
	root := gjson.Parse(contents)

	pkg := &PackageJSON{AbsPath: dir}

	if name := root.Get("name"); name.Exists() && name.Type == gjson.String {
		pkg.Name = name.String()
	}

	for _, field := range opts.MainFields {
		mainJSON := root.Get(gjsonEscape(field))
		if mainJSON.Type != gjson.String {
			continue
		}
		absPath := opts.ResolveAbs(opts.JoinDir(mainJSON.String()))
		if absPath != "" {
			if pkg.AbsMainFields == nil {
				pkg.AbsMainFields = make(map[string]string)
			}
			pkg.AbsMainFields[field] = absPath
		}
	}

	if opts.BrowserField {
		if browser := root.Get("browser"); browser.IsObject() {
			pkg.BrowserPackageMap = make(map[string]*string)
			pkg.BrowserNonPackageMap = make(map[string]*string)
			browser.ForEach(func(key, value gjson.Result) bool {
				k := key.String()
				isPackagePath := isBarePackagePath(k)
				target := k
				if !isPackagePath {
					target = opts.JoinDir(k)
				}
				switch value.Type {
				case gjson.String:
					v := value.String()
					if isPackagePath {
						pkg.BrowserPackageMap[target] = &v
					} else {
						pkg.BrowserNonPackageMap[target] = &v
					}
				case gjson.False:
					if isPackagePath {
						pkg.BrowserPackageMap[target] = nil
					} else {
						pkg.BrowserNonPackageMap[target] = nil
					}
				}
				return true
			})
		}
	}

	switch root.Get("type").String() {
	case "module":
		pkg.Type = ModuleTypeModule
	case "commonjs":
		pkg.Type = ModuleTypeCommonJS
	}

	if exportsJSON := root.Get("exports"); exportsJSON.Exists() {
		if entry, ok := ParseMap(exportsJSON); ok {
			pkg.Exports = &entry
		}
	}
	if importsJSON := root.Get("imports"); importsJSON.Exists() {
		if entry, ok := ParseMap(importsJSON); ok {
			pkg.Imports = &entry
		}
	}

	for _, depsField := range []string{"dependencies", "devDependencies"} {
		deps := root.Get(depsField)
		if !deps.IsObject() {
			continue
		}
		found := false
		deps.ForEach(func(key, _ gjson.Result) bool {
			if NativeModuleMarkers[key.String()] {
				found = true
				return false
			}
			return true
		})
		if found {
			pkg.HasNativeBindings = true
			break
		}
	}

	return pkg
}

func isBarePackagePath(p string) bool {
	return !strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "./") && !strings.HasPrefix(p, "../") && p != "." && p != ".."
}

// gjsonEscape escapes path-meaningful characters ('.', '*', '?') in a
// raw JSON key before using it as a gjson path expression, since field
// names like main fields are looked up by exact key rather than by
// gjson's own dotted-path syntax.
func gjsonEscape(key string) string {
	if !strings.ContainsAny(key, ".*?") {
		return key
	}
	var b strings.Builder
	for _, r := range key {
		if r == '.' || r == '*' || r == '?' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
