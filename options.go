package resolver

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/modresolve/modresolve/internal/fs"
	"github.com/modresolve/modresolve/internal/tsconfig"
)

// ResolveOptions configures a Resolver. Build one by hand, setting at
// least FS; NewResolver calls Normalize to fill in the defaults of
// unset fields.
type ResolveOptions struct {
	// FS is the file system port to resolve against. Required.
	FS fs.FS

	// ExtensionOrder is tried, in order, when a bare file path without
	// an extension fails to resolve as-is. Defaults to
	// [".tsx",".ts",".jsx",".js",".mjs",".cjs",".json",".node"].
	ExtensionOrder []string

	// ExtensionAlias maps an extension on the specifier (e.g. ".js") to
	// the list of extensions to actually try, enabling TypeScript's
	// convention of importing compiled ".js" specifiers from ".ts"
	// sources. Checked before ExtensionOrder.
	ExtensionAlias map[string][]string

	// MainFields is tried, in order, against each package.json when
	// resolving a bare specifier or directory to its entry point.
	// Defaults to ["main"].
	MainFields []string

	// MainFiles is tried, in order, as the index file name of a
	// directory that has no usable package.json main field. Defaults to
	// ["index"].
	MainFiles []string

	// Modules lists the directory names searched, ancestor by ancestor,
	// for a bare specifier's package (enhanced-resolve's `modules`
	// option, e.g. ["node_modules", "bower_components"]). Defaults to
	// ["node_modules"].
	Modules []string

	// FullySpecified, when true, disables extension and index-file
	// inference: only an exact file path resolves. Node's own ESM loader
	// runs with this always on; internal algorithms (alias, package-self,
	// extension-alias, subpath descent) temporarily clear it for the
	// duration of their own lookup, for ESM/CJS interop.
	FullySpecified bool

	// EnforceExtension controls whether a candidate's own extension is
	// required to already be present. EnforceExtensionAuto (the zero
	// value) is promoted to EnforceExtensionEnabled by Normalize when
	// ExtensionOrder contains "" (enhanced-resolve's own sanitization
	// rule for a caller that opted into extensionless resolution).
	EnforceExtension EnforceExtension

	// PreferRelative, when true, tries a bare specifier as a relative
	// path before walking node_modules (enhanced-resolve's
	// `preferRelative`).
	PreferRelative bool

	// PreferAbsolute, when true, tries an absolute specifier against the
	// package-self/node_modules search before treating it as a literal
	// file system path (enhanced-resolve's `preferAbsolute`). Has no
	// effect when PreferRelative is also set.
	PreferAbsolute bool

	// ResolveToContext, when true, short-circuits load_as_file_or_directory
	// to succeed iff the candidate is a directory, returning it unchanged
	// instead of searching for a file inside it (enhanced-resolve's
	// `resolveToContext`, used by loaders that want a directory handle).
	ResolveToContext bool

	// AllowPackageExportsInDirectoryResolve, when true, additionally
	// tries a directory's "exports" map (subpath ".") during
	// load_as_directory, ahead of falling through to the plain index
	// file. Explicitly non-standard; opt-in only.
	AllowPackageExportsInDirectoryResolve bool

	// Conditions is the active ECMAScript "exports"/"imports" condition
	// set beyond the always-active "default", plus whichever of
	// "import"/"require" the call site's module kind selects. Typical
	// values: "node", "browser", "development", "production".
	Conditions []string

	// ConditionNames, if set, completely replaces the built-in
	// condition derivation (Conditions plus "import"/"require" by module
	// kind): exactly these names are active, and "default" still always
	// matches. Used by hosts that want full control (enhanced-resolve's
	// `conditionNames` option).
	ConditionNames []string

	// Alias remaps a bare specifier (exact match only, no patterns) to
	// another specifier or absolute path before any other resolution
	// step runs. A mapped value of "" disables the module (resolves to
	// Ignored).
	Alias map[string]string

	// AliasFields lists package.json fields, tried in order, whose
	// object value remaps sub-paths the way the "browser" field does
	// (enhanced-resolve's `aliasFields`, generalizing esbuild's single
	// hard-coded "browser" field). Only "browser" is recognized: other
	// names in the list have no effect.
	AliasFields []string

	// Fallback is consulted, in the same shape as Alias, only after
	// normal resolution has already failed for a specifier.
	Fallback map[string]string

	// Roots restricts resolution of specifiers beginning with "/" to
	// the given absolute directories, tried in order, instead of the
	// file system root.
	Roots []string

	// Restrictions filters candidate resolved paths: a path is only
	// accepted if it satisfies every restriction.
	Restrictions []Restriction

	// BuiltinModules, when true, checks a bare specifier (or one prefixed
	// with "node:") against Node's built-in module list before walking
	// node_modules; a match fails resolution with KindBuiltin instead of
	// being searched for on disk.
	BuiltinModules bool

	// Symlinks, when true, resolves the real path of symlinked files and
	// directories (enhanced-resolve's `symlinks: true`, the opposite of
	// Node's `--preserve-symlinks` default). False, the zero value,
	// keeps the path as seen through the symlink.
	Symlinks bool

	// Tsconfig, if set, is the absolute path of a tsconfig.json/
	// jsconfig.json to load "paths"/"baseUrl" mapping from. If unset,
	// the resolver looks for one by walking up from each resolve call's
	// source directory.
	Tsconfig string

	// TsconfigReferences is accepted for configuration but not read by
	// the resolver: a loaded tsconfig's project "references" are
	// recorded and never consulted during resolution.
	TsconfigReferences tsconfig.ReferencesMode

	// PnP, if set, is consulted for Yarn Plug'n'Play-managed specifiers
	// before falling back to the normal node_modules walk. The default
	// NoopPnPResolver always reports "not handled".
	PnP PnPResolver

	// Log, if non-nil, receives one line for each tsconfig that fails
	// to load (which resolution then treats as no tsconfig); other
	// resolution steps are not logged. Nil by default and never required
	// for correct resolution. Kept as a plain function so this package never
	// depends on a logging framework.
	Log func(string)
}

// EnforceExtension selects how a candidate's own file extension gates
// ExtensionOrder/MainFiles inference.
type EnforceExtension uint8

const (
	// EnforceExtensionAuto behaves like EnforceExtensionDisabled unless
	// Normalize promotes it (see ResolveOptions.EnforceExtension).
	EnforceExtensionAuto EnforceExtension = iota
	// EnforceExtensionEnabled requires a candidate to already carry one
	// of the recognized extensions; ExtensionOrder/MainFiles inference
	// is skipped entirely.
	EnforceExtensionEnabled
	// EnforceExtensionDisabled always allows extension/index inference
	// in addition to an exact match.
	EnforceExtensionDisabled
)

// DefaultExtensionOrder is the extension list tried when a specifier
// names no extension of its own.
var DefaultExtensionOrder = []string{".tsx", ".ts", ".jsx", ".js", ".mjs", ".cjs", ".json", ".node"}

// DefaultMainFields is tried when ResolveOptions.MainFields is empty.
var DefaultMainFields = []string{"main"}

// DefaultMainFiles is tried when ResolveOptions.MainFiles is empty.
var DefaultMainFiles = []string{"index"}

// DefaultModules is tried when ResolveOptions.Modules is empty.
var DefaultModules = []string{"node_modules"}

// Normalize fills in defaults for any unset slice/map field. Called
// automatically by NewResolver; exposed so callers that build
// ResolveOptions piecemeal can call it themselves in tests.
func (o *ResolveOptions) Normalize() {
	if o.ExtensionOrder == nil {
		o.ExtensionOrder = DefaultExtensionOrder
	}
	if o.MainFields == nil {
		o.MainFields = DefaultMainFields
	}
	if o.MainFiles == nil {
		o.MainFiles = DefaultMainFiles
	}
	if o.Modules == nil {
		o.Modules = DefaultModules
	}
	if o.PnP == nil {
		o.PnP = NoopPnPResolver{}
	}

	// Sanitization per spec: Auto never survives construction. An
	// explicit "" in ExtensionOrder (a caller opting into extensionless
	// resolution) promotes it to Enabled; otherwise it resolves to
	// Disabled.
	if o.EnforceExtension == EnforceExtensionAuto {
		o.EnforceExtension = EnforceExtensionDisabled
		for _, ext := range o.ExtensionOrder {
			if ext == "" {
				o.EnforceExtension = EnforceExtensionEnabled
				break
			}
		}
	}
}

// Restriction accepts or rejects a candidate resolved absolute path.
// Build one with RestrictToPath, RestrictToGlob, or RestrictFunc.
type Restriction struct {
	match func(absPath string) bool
}

func (r Restriction) Allows(absPath string) bool {
	return r.match(absPath)
}

// RestrictToPath only accepts paths inside prefix.
func RestrictToPath(prefix string) Restriction {
	return Restriction{match: func(absPath string) bool {
		if len(absPath) < len(prefix) || absPath[:len(prefix)] != prefix {
			return false
		}
		return len(absPath) == len(prefix) || prefix == "" ||
			prefix[len(prefix)-1] == '/' || absPath[len(prefix)] == '/'
	}}
}

// RestrictToGlob only accepts paths matching the given doublestar glob
// pattern (e.g. "**/*.{ts,tsx}").
func RestrictToGlob(pattern string) Restriction {
	return Restriction{match: func(absPath string) bool {
		ok, _ := doublestar.Match(pattern, absPath)
		return ok
	}}
}

// RestrictFunc wraps an arbitrary predicate as a Restriction.
func RestrictFunc(f func(absPath string) bool) Restriction {
	return Restriction{match: f}
}
