// Package fs abstracts the small slice of file system operations the
// resolver needs behind an interface, so the same algorithm can run
// against the real OS file system or against an in-memory fixture built
// for tests.
package fs

import (
	"sort"
	"strings"
	"sync"
)

type EntryKind uint8

const (
	DirEntry EntryKind = 1 + iota
	FileEntry
)

// Entry is a lazily-stat'd directory entry. Its kind and symlink target
// are resolved on first access and cached, so listing a directory doesn't
// pay for an lstat on every entry unless the resolver actually asks.
type Entry struct {
	symlink  string
	dir      string
	base     string
	mutex    sync.Mutex
	kind     EntryKind
	needStat bool
}

func (e *Entry) Kind(fs FS) EntryKind {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.needStat {
		e.needStat = false
		e.symlink, e.kind = fs.kind(e.dir, e.base)
	}
	return e.kind
}

func (e *Entry) Symlink(fs FS) string {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.needStat {
		e.needStat = false
		e.symlink, e.kind = fs.kind(e.dir, e.base)
	}
	return e.symlink
}

// DifferentCase is reported when a lookup matches a directory entry whose
// case doesn't match the query. Case-insensitive but case-preserving
// volumes (the default on macOS and Windows) silently accept the wrong
// case, which hides bugs that only surface on Linux.
type DifferentCase struct {
	Dir    string
	Query  string
	Actual string
}

type DirEntries struct {
	dir  string
	data map[string]*Entry
}

func MakeEmptyDirEntries(dir string) DirEntries {
	return DirEntries{dir: dir, data: make(map[string]*Entry)}
}

func (entries DirEntries) Get(query string) (*Entry, *DifferentCase) {
	if entries.data == nil {
		return nil, nil
	}
	key := strings.ToLower(query)
	entry := entries.data[key]
	if entry == nil {
		return nil, nil
	}
	if entry.base != query {
		return entry, &DifferentCase{Dir: entries.dir, Query: query, Actual: entry.base}
	}
	return entry, nil
}

func (entries DirEntries) SortedKeys() []string {
	keys := make([]string, 0, len(entries.data))
	for _, entry := range entries.data {
		keys = append(keys, entry.base)
	}
	sort.Strings(keys)
	return keys
}

type OpenedFile interface {
	Len() int
	Read(start int, end int) ([]byte, error)
	Close() error
}

type InMemoryOpenedFile struct {
	Contents []byte
}

func (f *InMemoryOpenedFile) Len() int { return len(f.Contents) }

func (f *InMemoryOpenedFile) Read(start int, end int) ([]byte, error) {
	return f.Contents[start:end], nil
}

func (f *InMemoryOpenedFile) Close() error { return nil }

// FS is the port the resolver is written against. RealFS returns an
// implementation over the real file system; MemFS implements it over an
// in-memory fixture for tests.
type FS interface {
	ReadDirectory(path string) (entries DirEntries, canonicalError error, originalError error)
	ReadFile(path string) (contents string, canonicalError error, originalError error)
	OpenFile(path string) (result OpenedFile, canonicalError error, originalError error)

	// ModKey changes when the file's contents have changed and otherwise
	// stays the same; used to avoid re-reading unchanged files.
	ModKey(path string) (ModKey, error)

	IsAbs(path string) bool
	Abs(path string) (string, bool)
	Dir(path string) string
	Base(path string) string
	Ext(path string) string
	Join(parts ...string) string
	Cwd() string
	Rel(base string, target string) (string, bool)

	// EvalSymlinks resolves every symlink component in path and returns
	// the final real path.
	EvalSymlinks(path string) (string, bool)

	kind(dir string, base string) (symlink string, kind EntryKind)
}

type ModKey struct {
	inode      uint64
	size       int64
	mtime_sec  int64
	mtime_nsec int64
	mode       uint32
	uid        uint32
}

// Some file systems only have a resolution of a few seconds (FAT has two).
// A modification time too close to "now" can't be trusted to detect a
// same-second edit, so such files are never considered cacheable by mtime.
const modKeySafetyGap = 3

var modKeyUnusable = modKeyUnusableError{}

type modKeyUnusableError struct{}

func (modKeyUnusableError) Error() string { return "modification key is unusable" }

// Limit concurrently open file handles to stay well under typical ulimits.
var fileOpenLimit = make(chan bool, 32)

func BeforeFileOpen() { fileOpenLimit <- false }
func AfterFileClose() { <-fileOpenLimit }
