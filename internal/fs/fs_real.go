package fs

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type realFS struct {
	entriesMutex sync.Mutex
	entries      map[string]entriesOrErr
}

type entriesOrErr struct {
	entries DirEntries
	err     error
}

// RealFS returns a FileSystem backed by the operating system's real file
// system. Directory listings are cached for the lifetime of the instance,
// matching the "resolver may cache readdir/stat results" latitude the
// cache component grants.
func RealFS() FS {
	return &realFS{entries: make(map[string]entriesOrErr)}
}

func (fs *realFS) ReadDirectory(dir string) (DirEntries, error, error) {
	fs.entriesMutex.Lock()
	cached, ok := fs.entries[dir]
	fs.entriesMutex.Unlock()
	if ok {
		return cached.entries, cached.err, cached.err
	}

	BeforeFileOpen()
	infos, err := ioutil.ReadDir(dir)
	AfterFileClose()

	if err != nil {
		fs.entriesMutex.Lock()
		fs.entries[dir] = entriesOrErr{err: err}
		fs.entriesMutex.Unlock()
		return DirEntries{}, err, err
	}

	entries := MakeEmptyDirEntries(dir)
	for _, info := range infos {
		base := info.Name()
		kind := FileEntry
		if info.IsDir() {
			kind = DirEntry
		}
		needStat := info.Mode()&os.ModeSymlink != 0
		if needStat {
			kind = FileEntry
		}
		entries.data[strings.ToLower(base)] = &Entry{
			dir:      dir,
			base:     base,
			kind:     kind,
			needStat: needStat,
		}
	}

	result := entriesOrErr{entries: entries}
	fs.entriesMutex.Lock()
	fs.entries[dir] = result
	fs.entriesMutex.Unlock()
	return entries, nil, nil
}

func (fs *realFS) ReadFile(path string) (string, error, error) {
	BeforeFileOpen()
	defer AfterFileClose()
	bytes, err := ioutil.ReadFile(path)
	if err != nil {
		return "", err, err
	}
	return string(bytes), nil, nil
}

type realOpenedFile struct {
	handle *os.File
}

func (f *realOpenedFile) Len() int {
	info, err := f.handle.Stat()
	if err != nil {
		return 0
	}
	return int(info.Size())
}

func (f *realOpenedFile) Read(start int, end int) ([]byte, error) {
	buf := make([]byte, end-start)
	if _, err := f.handle.ReadAt(buf, int64(start)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (f *realOpenedFile) Close() error { return f.handle.Close() }

func (fs *realFS) OpenFile(path string) (OpenedFile, error, error) {
	BeforeFileOpen()
	handle, err := os.Open(path)
	if err != nil {
		AfterFileClose()
		return nil, err, err
	}
	return &realOpenedFile{handle: handle}, nil, nil
}

func (fs *realFS) ModKey(path string) (ModKey, error) {
	return modKey(path)
}

func (*realFS) IsAbs(p string) bool { return filepath.IsAbs(p) }

func (*realFS) Abs(p string) (string, bool) {
	abs, err := filepath.Abs(p)
	return abs, err == nil
}

func (*realFS) Dir(p string) string  { return filepath.Dir(p) }
func (*realFS) Base(p string) string { return filepath.Base(p) }
func (*realFS) Ext(p string) string  { return filepath.Ext(p) }

func (*realFS) Join(parts ...string) string {
	return filepath.Clean(filepath.Join(parts...))
}

func (*realFS) Cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "/"
	}
	return cwd
}

func (*realFS) Rel(base string, target string) (string, bool) {
	rel, err := filepath.Rel(base, target)
	return rel, err == nil
}

func (*realFS) EvalSymlinks(path string) (string, bool) {
	real, err := filepath.EvalSymlinks(path)
	return real, err == nil
}

func (fs *realFS) kind(dir string, base string) (symlink string, kind EntryKind) {
	entryPath := filepath.Join(dir, base)

	stat, err := os.Lstat(entryPath)
	if err != nil {
		return "", FileEntry
	}

	if stat.Mode()&os.ModeSymlink != 0 {
		link, err := filepath.EvalSymlinks(entryPath)
		if err != nil {
			return "", FileEntry
		}
		symlink = link
		stat, err = os.Stat(entryPath)
		if err != nil {
			return symlink, FileEntry
		}
	}

	if stat.IsDir() {
		return symlink, DirEntry
	}
	return symlink, FileEntry
}
