// Package cache memoizes the file system facts and parsed manifests the
// resolver repeatedly needs, so that resolving hundreds of specifiers
// against the same project only stats and parses each directory and
// manifest once. A Cache is safe for concurrent use by multiple
// resolvers racing on the same underlying project: duplicate concurrent
// work for the same key collapses onto a single winner via
// singleflight, and every other caller observes that winner's result
// instead of redoing the work.
package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/modresolve/modresolve/internal/fs"
)

// CachedPath is an interned, content-addressed node for one absolute
// path. Its derived facts (whether it's a file or directory, and its
// real path after following symlinks) are computed on first access and
// memoized for the lifetime of the cache.
type CachedPath struct {
	Path string

	once struct {
		stat     sync.Once
		realpath sync.Once
	}

	isFile  bool
	isDir   bool
	statErr error

	realpath    string
	realpathErr error
}

type Cache struct {
	fs fs.FS

	mu    sync.Mutex
	paths map[string]*CachedPath

	files singleflight.Group

	fileMu      sync.Mutex
	fileEntries map[string]*fileEntry
}

// fileEntry records the modification key observed the last time a
// file's contents were read, so a later ReadFile for the same path in
// the same long-lived Cache can skip rereading the file when nothing
// has changed on disk.
type fileEntry struct {
	contents       string
	modKey         fs.ModKey
	isModKeyUsable bool
}

func New(fsys fs.FS) *Cache {
	return &Cache{fs: fsys, paths: make(map[string]*CachedPath), fileEntries: make(map[string]*fileEntry)}
}

// Path interns and returns the CachedPath node for abs, creating it on
// first request. The same *CachedPath is returned for every later call
// with the same absolute path.
func (c *Cache) Path(abs string) *CachedPath {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cp, ok := c.paths[abs]; ok {
		return cp
	}
	cp := &CachedPath{Path: abs}
	c.paths[abs] = cp
	return cp
}

func (cp *CachedPath) stat(fsys fs.FS) {
	cp.once.stat.Do(func() {
		if entries, _, err := fsys.ReadDirectory(fsys.Dir(cp.Path)); err == nil {
			if entry, _ := entries.Get(fsys.Base(cp.Path)); entry != nil {
				switch entry.Kind(fsys) {
				case fs.FileEntry:
					cp.isFile = true
				case fs.DirEntry:
					cp.isDir = true
				}
				return
			}
		}
		cp.statErr = errNotFound
	})
}

var errNotFound = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string { return "no such file or directory" }

// IsFile reports whether the path names an existing regular file.
func (c *Cache) IsFile(abs string) bool {
	cp := c.Path(abs)
	cp.stat(c.fs)
	return cp.isFile
}

// IsDir reports whether the path names an existing directory.
func (c *Cache) IsDir(abs string) bool {
	cp := c.Path(abs)
	cp.stat(c.fs)
	return cp.isDir
}

// Realpath returns abs with every symlink component resolved, memoized
// per path. Concurrent callers for the same path block on one
// EvalSymlinks call via singleflight rather than each issuing their own
// lstat chain.
func (c *Cache) Realpath(abs string) (string, error) {
	cp := c.Path(abs)
	cp.once.realpath.Do(func() {
		v, err, _ := c.files.Do("r:"+abs, func() (interface{}, error) {
			real, ok := c.fs.EvalSymlinks(abs)
			if !ok {
				return abs, nil
			}
			return real, nil
		})
		cp.realpath = v.(string)
		cp.realpathErr = err
	})
	return cp.realpath, cp.realpathErr
}

// ReadFile reads path's contents, deduplicating concurrent reads of the
// same file via singleflight. Before rereading, it checks the file's
// modification key (cheaper than rereading the full contents) against
// what was observed last time; if it's unchanged, the cached contents
// are returned without touching the file's bytes again. This makes a
// long-lived Cache safe to keep across many resolve calls spanning a
// watch-mode rebuild, not just within a single call.
func (c *Cache) ReadFile(path string) (string, error) {
	c.fileMu.Lock()
	entry := c.fileEntries[path]
	c.fileMu.Unlock()

	if entry != nil && entry.isModKeyUsable {
		if modKey, err := c.fs.ModKey(path); err == nil && modKey == entry.modKey {
			return entry.contents, nil
		}
	}

	v, err, _ := c.files.Do("f:"+path, func() (interface{}, error) {
		contents, canonicalErr, _ := c.fs.ReadFile(path)
		if canonicalErr != nil {
			return "", canonicalErr
		}
		modKey, modKeyErr := c.fs.ModKey(path)
		c.fileMu.Lock()
		c.fileEntries[path] = &fileEntry{
			contents:       contents,
			modKey:         modKey,
			isModKeyUsable: modKeyErr == nil,
		}
		c.fileMu.Unlock()
		return contents, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// ParseOnce runs parse() for key at most once concurrently, and forever
// memoizes the first result: subsequent calls with the same key return
// the cached value without re-invoking parse. The resolver uses it as
// its package.json document cache, so every caller asking for the same
// key gets the same parsed value.
type ParseOnce struct {
	group singleflight.Group
	mu    sync.Mutex
	done  map[string]parseResult
}

type parseResult struct {
	value interface{}
	err   error
}

func NewParseOnce() *ParseOnce {
	return &ParseOnce{done: make(map[string]parseResult)}
}

func (p *ParseOnce) Do(key string, parse func() (interface{}, error)) (interface{}, error) {
	p.mu.Lock()
	if r, ok := p.done[key]; ok {
		p.mu.Unlock()
		return r.value, r.err
	}
	p.mu.Unlock()

	v, err, _ := p.group.Do(key, parse)

	p.mu.Lock()
	p.done[key] = parseResult{value: v, err: err}
	p.mu.Unlock()

	return v, err
}
