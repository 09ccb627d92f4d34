package resolver

import "strings"

// builtInNodeModules is the set of module names Node.js resolves
// internally rather than from node_modules. Mirrors Node's own
// module.builtinModules list.
var builtInNodeModules = map[string]bool{
	"_http_agent":         true,
	"_http_client":        true,
	"_http_common":        true,
	"_http_incoming":      true,
	"_http_outgoing":      true,
	"_http_server":        true,
	"_stream_duplex":      true,
	"_stream_passthrough": true,
	"_stream_readable":    true,
	"_stream_transform":   true,
	"_stream_wrap":        true,
	"_stream_writable":    true,
	"_tls_common":         true,
	"_tls_wrap":           true,
	"assert":              true,
	"assert/strict":       true,
	"async_hooks":         true,
	"buffer":              true,
	"child_process":       true,
	"cluster":             true,
	"console":             true,
	"constants":           true,
	"crypto":              true,
	"dgram":               true,
	"diagnostics_channel": true,
	"dns":                 true,
	"dns/promises":        true,
	"domain":              true,
	"events":              true,
	"fs":                  true,
	"fs/promises":         true,
	"http":                true,
	"http2":               true,
	"https":               true,
	"inspector":           true,
	"inspector/promises":  true,
	"module":              true,
	"net":                 true,
	"os":                  true,
	"path":                true,
	"path/posix":          true,
	"path/win32":          true,
	"perf_hooks":          true,
	"process":             true,
	"punycode":            true,
	"querystring":         true,
	"readline":            true,
	"readline/promises":   true,
	"repl":                true,
	"stream":              true,
	"stream/consumers":    true,
	"stream/promises":     true,
	"stream/web":          true,
	"string_decoder":      true,
	"sys":                 true,
	"timers":              true,
	"timers/promises":     true,
	"tls":                 true,
	"trace_events":        true,
	"tty":                 true,
	"url":                 true,
	"util":                true,
	"util/types":          true,
	"v8":                  true,
	"vm":                  true,
	"wasi":                true,
	"worker_threads":      true,
	"zlib":                true,
}

// nodeOnlyModules lists the few builtins reachable only through the
// "node:" prefixed form; they have no un-prefixed alias.
var nodeOnlyModules = map[string]bool{
	"test":           true,
	"sea":            true,
	"sqlite":         true,
	"test/reporters": true,
}

// checkBuiltinModule implements the "otherwise" branch of require()'s
// bare-specifier dispatch: before walking node_modules, a specifier
// naming a Node built-in (bare, or "node:"-prefixed) is reported as
// Builtin rather than searched for on disk. resolved is the canonical
// "node:name" form; isRuntimeModule reports whether the caller already
// wrote the specifier with the explicit "node:" prefix.
func checkBuiltinModule(path string) (resolved string, isRuntimeModule bool, ok bool) {
	if rest, hasPrefix := strings.CutPrefix(path, "node:"); hasPrefix {
		if builtInNodeModules[rest] || nodeOnlyModules[rest] {
			return "node:" + rest, true, true
		}
		return "", false, false
	}
	if builtInNodeModules[path] {
		return "node:" + path, false, true
	}
	return "", false, false
}
