package fs

import (
	"errors"
	"path"
	"strings"
)

type mockFS struct {
	dirs  map[string]DirEntries
	files map[string]string
}

// MemFS builds an in-memory FileSystem from a flat map of absolute file
// paths to contents, for use in tests. Intermediate directories are
// synthesized from the file paths given.
func MemFS(input map[string]string) FS {
	dirs := make(map[string]DirEntries)
	files := make(map[string]string)

	for file, contents := range input {
		files[file] = contents

		child := file
		for {
			dir := path.Dir(child)
			entries, ok := dirs[dir]
			if !ok {
				entries = MakeEmptyDirEntries(dir)
				dirs[dir] = entries
			}
			if dir == child {
				break
			}
			base := path.Base(child)
			kind := DirEntry
			if child == file {
				kind = FileEntry
			}
			entries.data[strings.ToLower(base)] = &Entry{dir: dir, base: base, kind: kind}
			child = dir
		}
	}

	return &mockFS{dirs: dirs, files: files}
}

// MemFSWithSymlinks is like MemFS but additionally takes a map of mock
// symlink path to target path, consulted by EvalSymlinks and by the
// directory entry kind check used to detect symlinked node_modules
// directories during resolution.
func MemFSWithSymlinks(input map[string]string, symlinks map[string]string) FS {
	fs := MemFS(input).(*mockFS)
	for link, target := range symlinks {
		dir := path.Dir(link)
		base := path.Base(link)
		entries, ok := fs.dirs[dir]
		if !ok {
			entries = MakeEmptyDirEntries(dir)
			fs.dirs[dir] = entries
		}
		kind := FileEntry
		if _, isDir := fs.dirs[target]; isDir {
			kind = DirEntry
		}
		entries.data[strings.ToLower(base)] = &Entry{dir: dir, base: base, kind: kind, symlink: target}
	}
	return fs
}

var errMockNotExist = errors.New("no such file or directory")

func (fs *mockFS) ReadDirectory(p string) (DirEntries, error, error) {
	if dir, ok := fs.dirs[p]; ok {
		return dir, nil, nil
	}
	return DirEntries{}, errMockNotExist, errMockNotExist
}

func (fs *mockFS) ReadFile(p string) (string, error, error) {
	contents, ok := fs.files[p]
	if !ok {
		return "", errMockNotExist, errMockNotExist
	}
	return contents, nil, nil
}

func (fs *mockFS) OpenFile(p string) (OpenedFile, error, error) {
	contents, ok := fs.files[p]
	if !ok {
		return nil, errMockNotExist, errMockNotExist
	}
	return &InMemoryOpenedFile{Contents: []byte(contents)}, nil, nil
}

func (fs *mockFS) ModKey(p string) (ModKey, error) {
	if _, ok := fs.files[p]; !ok {
		return ModKey{}, errMockNotExist
	}
	return ModKey{}, modKeyUnusable
}

func (*mockFS) IsAbs(p string) bool { return path.IsAbs(p) }

func (*mockFS) Abs(p string) (string, bool) {
	return path.Clean(path.Join("/", p)), true
}

func (*mockFS) Dir(p string) string  { return path.Dir(p) }
func (*mockFS) Base(p string) string { return path.Base(p) }
func (*mockFS) Ext(p string) string {
	base := path.Base(p)
	if dot := strings.LastIndexByte(base, '.'); dot != -1 {
		return base[dot:]
	}
	return ""
}

func (*mockFS) Join(parts ...string) string { return path.Clean(path.Join(parts...)) }
func (*mockFS) Cwd() string                 { return "/" }

func (*mockFS) Rel(base string, target string) (string, bool) {
	if !strings.HasPrefix(target, base) {
		return "", false
	}
	rel := strings.TrimPrefix(target[len(base):], "/")
	if rel == "" {
		rel = "."
	}
	return rel, true
}

// EvalSymlinks follows the mock "symlink" field recorded on Entry objects
// set up via MemFSWithSymlinks, resolving every path component in turn
// (not just an exact match on p itself), so a symlinked ancestor
// directory is followed the same way filepath.EvalSymlinks follows one
// on the real file system. Plain MemFS fixtures have no symlink
// entries, so every path resolves to itself.
func (fs *mockFS) EvalSymlinks(p string) (string, bool) {
	if p == "/" || p == "." {
		return p, true
	}

	dir, ok := fs.EvalSymlinks(path.Dir(p))
	if !ok {
		return p, false
	}
	base := path.Base(p)

	resolved := path.Join(dir, base)
	entries, ok := fs.dirs[dir]
	if !ok {
		return resolved, true
	}
	entry, _ := entries.Get(base)
	if entry == nil || entry.symlink == "" {
		return resolved, true
	}
	return fs.EvalSymlinks(entry.symlink)
}

func (fs *mockFS) kind(dir string, base string) (symlink string, kind EntryKind) {
	entries, ok := fs.dirs[dir]
	if !ok {
		return "", FileEntry
	}
	entry, _ := entries.Get(base)
	if entry == nil {
		return "", FileEntry
	}
	return entry.symlink, entry.kind
}
