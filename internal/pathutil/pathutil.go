// Package pathutil provides pure, OS-independent path string
// manipulation used by the tsconfig and package-exports algorithms,
// which operate on POSIX-style paths regardless of host platform.
package pathutil

import "strings"

// IsAbsolute reports whether p is an absolute POSIX-style path.
func IsAbsolute(p string) bool {
	return strings.HasPrefix(p, "/")
}

// IsRelative reports whether p is a relative specifier per the Node
// resolution algorithm: it begins with "./" or "../", or is exactly
// "." or "..".
func IsRelative(p string) bool {
	return p == "." || p == ".." ||
		strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../")
}

// CombinePaths joins path segments with "/", normalizing away empty
// segments and redundant separators but not resolving "." or "..".
func CombinePaths(base string, segments ...string) string {
	result := base
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if result == "" {
			result = seg
			continue
		}
		result = strings.TrimSuffix(result, "/") + "/" + strings.TrimPrefix(seg, "/")
	}
	return result
}

// NormalizeSlashes converts Windows-style backslashes to forward
// slashes, since both the resolver's internal algorithm and the
// exports/imports matching logic are specified in terms of "/".
func NormalizeSlashes(p string) string {
	if !strings.ContainsRune(p, '\\') {
		return p
	}
	return strings.ReplaceAll(p, "\\", "/")
}

// NormalizePath collapses "." and ".." segments and duplicate
// separators in a POSIX-style path, without touching the file system.
func NormalizePath(p string) string {
	p = NormalizeSlashes(p)
	abs := strings.HasPrefix(p, "/")
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 && out[len(out)-1] != ".." {
				out = out[:len(out)-1]
			} else if !abs {
				out = append(out, part)
			}
		default:
			out = append(out, part)
		}
	}
	joined := strings.Join(out, "/")
	if abs {
		return "/" + joined
	}
	if joined == "" {
		return "."
	}
	return joined
}

// GetDirectoryPath returns the parent directory of p, POSIX-style.
func GetDirectoryPath(p string) string {
	p = NormalizeSlashes(p)
	idx := strings.LastIndexByte(p, '/')
	if idx < 0 {
		return "."
	}
	if idx == 0 {
		return "/"
	}
	return p[:idx]
}

// GetBaseFileName returns the final path component of p.
func GetBaseFileName(p string) string {
	p = NormalizeSlashes(p)
	idx := strings.LastIndexByte(p, '/')
	return p[idx+1:]
}

// RemoveTrailingSlash strips one trailing "/" from p, if present and p
// isn't just "/".
func RemoveTrailingSlash(p string) string {
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		return p[:len(p)-1]
	}
	return p
}

// HasTrailingSlash reports whether p ends with "/".
func HasTrailingSlash(p string) bool {
	return strings.HasSuffix(p, "/")
}

// EnsureTrailingSlash appends "/" to p unless it already ends with one.
func EnsureTrailingSlash(p string) string {
	if HasTrailingSlash(p) {
		return p
	}
	return p + "/"
}
