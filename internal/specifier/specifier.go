// Package specifier splits a raw import/require specifier into its
// path, query string, and fragment, the way esbuild's resolver splits
// off webpack-style "?query#fragment" suffixes before doing any file
// system work.
//
// A literal "#" inside the path portion (a legal character in a file
// name, and common in package names like "@foo/bar#baz" is not a
// thing, but paths containing a real "#" do occur) is distinguished
// from a fragment delimiter using the "\0" escape convention: callers
// that already know their string contains a literal "#" which must not
// be treated as a fragment delimiter encode it as "\0#" before calling
// Parse, and Parse un-escapes it back to "#" in the returned path.
package specifier

import "strings"

type Parsed struct {
	Path     string
	Query    string
	Fragment string
}

// Parse splits raw into path, query, and fragment. The fragment begins
// at the first unescaped "#" and runs to the end; the query is taken
// from what precedes it, starting at the first unescaped "?" there. A
// "?" after the first "#" therefore stays inside the fragment.
func Parse(raw string) Parsed {
	path := raw
	query := ""
	fragment := ""

	if hash := indexUnescaped(path, '#'); hash != -1 {
		fragment = path[hash:]
		path = path[:hash]
	}
	if mark := indexUnescaped(path, '?'); mark != -1 {
		query = path[mark:]
		path = path[:mark]
	}

	return Parsed{
		Path:     unescape(path),
		Query:    query,
		Fragment: fragment,
	}
}

// indexUnescaped finds the first occurrence of c that isn't preceded by
// the "\0" escape marker.
func indexUnescaped(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			if i > 0 && s[i-1] == '\x00' {
				continue
			}
			return i
		}
	}
	return -1
}

func unescape(s string) string {
	if !strings.ContainsRune(s, 0) {
		return s
	}
	return strings.ReplaceAll(s, "\x00#", "#")
}

// Escape re-inserts the "\0" escape marker before every literal "#" in
// s, for constructing a specifier that must survive a round trip
// through Parse without its "#" being mistaken for a fragment.
func Escape(s string) string {
	if !strings.ContainsRune(s, '#') {
		return s
	}
	return strings.ReplaceAll(s, "#", "\x00#")
}

// Reparent retries fragment resolution by reinterpreting an unresolved
// fragment as part of the path, per the edge case where a specifier
// like "./foo#bar" legitimately refers to a file literally named
// "foo#bar" rather than "foo" with fragment "#bar". Callers try
// resolution with this combined path first, and fall back to the
// Path+Fragment split only if the combined path fails to resolve.
func (p Parsed) Reparent() string {
	return p.Path + p.Fragment
}
