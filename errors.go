package resolver

import "fmt"

// ErrorKind is the closed set of ways a resolve can fail.
type ErrorKind uint8

const (
	KindNotFound ErrorKind = iota
	KindIgnored
	KindBuiltin
	KindRecursion
	KindSpecifier
	KindPathNotSupported
	KindInvalidPackageConfig
	KindInvalidPackageConfigDirectory
	KindPackagePathNotExported
	KindPackageImportNotDefined
	KindInvalidPackageTarget
	KindInvalidModuleSpecifier
	KindExtensionAlias
	KindMatchedAliasNotFound
	KindTsconfigNotFound
	KindTsconfigCircularExtend
	KindTsconfigSelfReference
	KindJSON
	KindIOError
)

// ResolveError is the error type returned for every resolution failure.
// Use errors.As to recover it and inspect Kind.
type ResolveError struct {
	Kind       ErrorKind
	Specifier  string
	Dir        string
	Suggestion string // populated only for KindNotFound, when available
	Wrapped    error

	// Resolved and IsRuntimeModule are populated only for KindBuiltin.
	// Resolved is the canonical "node:name" form of the builtin;
	// IsRuntimeModule reports whether the specifier already carried the
	// explicit "node:" prefix rather than the bare name.
	Resolved        string
	IsRuntimeModule bool
}

func (e *ResolveError) Error() string {
	msg := fmt.Sprintf("%s: cannot resolve %q from %q", e.Kind, e.Specifier, e.Dir)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	if e.Kind == KindBuiltin {
		msg += fmt.Sprintf(" (%s)", e.Resolved)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

func (e *ResolveError) Unwrap() error { return e.Wrapped }

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindIgnored:
		return "ignored"
	case KindBuiltin:
		return "builtin module"
	case KindRecursion:
		return "recursive resolution"
	case KindSpecifier:
		return "invalid specifier"
	case KindPathNotSupported:
		return "path not supported"
	case KindInvalidPackageConfig:
		return "invalid package configuration"
	case KindInvalidPackageConfigDirectory:
		return "invalid package configuration directory"
	case KindPackagePathNotExported:
		return "package path not exported"
	case KindPackageImportNotDefined:
		return "package import not defined"
	case KindInvalidPackageTarget:
		return "invalid package target"
	case KindInvalidModuleSpecifier:
		return "invalid module specifier"
	case KindExtensionAlias:
		return "extension alias failed"
	case KindMatchedAliasNotFound:
		return "matched alias not found"
	case KindTsconfigNotFound:
		return "tsconfig not found"
	case KindTsconfigCircularExtend:
		return "tsconfig circular extends"
	case KindTsconfigSelfReference:
		return "tsconfig self reference"
	case KindJSON:
		return "invalid JSON"
	case KindIOError:
		return "I/O error"
	default:
		return "unknown error"
	}
}

func newErr(kind ErrorKind, dir string, specifier string) *ResolveError {
	return &ResolveError{Kind: kind, Dir: dir, Specifier: specifier}
}
