package cache

import (
	"sync"
	"testing"

	"github.com/modresolve/modresolve/internal/fs"
)

// countingFS wraps an fs.FS, counting ReadFile calls and letting tests
// force a specific, "usable" ModKey for chosen paths — MemFS's own
// ModKey always reports unusable, so exercising the staleness-skip path
// in Cache.ReadFile needs a fixture that can claim a usable key.
type countingFS struct {
	fs.FS
	mu      sync.Mutex
	reads   int
	modKeys map[string]fs.ModKey
}

func (c *countingFS) ReadFile(p string) (string, error, error) {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
	return c.FS.ReadFile(p)
}

func (c *countingFS) ModKey(p string) (fs.ModKey, error) {
	if k, ok := c.modKeys[p]; ok {
		return k, nil
	}
	return c.FS.ModKey(p)
}

func (c *countingFS) readCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

func TestCacheIsFileAndIsDir(t *testing.T) {
	fsys := fs.MemFS(map[string]string{"/pkg/index.js": "x"})
	c := New(fsys)

	if !c.IsFile("/pkg/index.js") {
		t.Fatal("expected /pkg/index.js to be a file")
	}
	if c.IsDir("/pkg/index.js") {
		t.Fatal("did not expect a file to report as a directory")
	}
	if !c.IsDir("/pkg") {
		t.Fatal("expected /pkg to be a directory")
	}
	if c.IsFile("/pkg/missing.js") {
		t.Fatal("did not expect a missing file to report as present")
	}
}

func TestCacheIsFileMemoizesAcrossCalls(t *testing.T) {
	// The CachedPath node returned for the same absolute path is the
	// same pointer, and its stat result is computed at most once.
	fsys := fs.MemFS(map[string]string{"/pkg/index.js": "x"})
	c := New(fsys)

	first := c.Path("/pkg/index.js")
	second := c.Path("/pkg/index.js")
	if first != second {
		t.Fatal("expected the same CachedPath for the same absolute path")
	}
	if !c.IsFile("/pkg/index.js") {
		t.Fatal("expected file to be found")
	}
}

func TestCacheRealpathFollowsSymlink(t *testing.T) {
	fsys := fs.MemFSWithSymlinks(
		map[string]string{"/real/index.js": "x"},
		map[string]string{"/link": "/real"},
	)
	c := New(fsys)

	real, err := c.Realpath("/link/index.js")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if real != "/real/index.js" {
		t.Fatalf("got %q", real)
	}
}

func TestCacheReadFileReturnsContents(t *testing.T) {
	fsys := fs.MemFS(map[string]string{"/pkg/index.js": "hello"})
	c := New(fsys)

	contents, err := c.ReadFile("/pkg/index.js")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contents != "hello" {
		t.Fatalf("got %q", contents)
	}
}

func TestCacheReadFileMissingReturnsError(t *testing.T) {
	fsys := fs.MemFS(nil)
	c := New(fsys)
	if _, err := c.ReadFile("/missing.js"); err == nil {
		t.Fatal("expected an error reading a missing file")
	}
}

func TestCacheReadFileSkipsRereadWhenModKeyUnchanged(t *testing.T) {
	base := fs.MemFS(map[string]string{"/pkg/index.js": "v1"})
	wrapped := &countingFS{FS: base, modKeys: map[string]fs.ModKey{"/pkg/index.js": {}}}
	c := New(wrapped)

	first, err := c.ReadFile("/pkg/index.js")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != "v1" {
		t.Fatalf("got %q", first)
	}
	if wrapped.readCount() != 1 {
		t.Fatalf("expected exactly one underlying read, got %d", wrapped.readCount())
	}

	second, err := c.ReadFile("/pkg/index.js")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != "v1" {
		t.Fatalf("got %q", second)
	}
	if wrapped.readCount() != 1 {
		t.Fatalf("expected the second read to be served from cache without touching the file system, got %d reads", wrapped.readCount())
	}
}

func TestCacheReadFileConcurrentCallsSucceed(t *testing.T) {
	fsys := fs.MemFS(map[string]string{"/pkg/index.js": "hello"})
	wrapped := &countingFS{FS: fsys}
	c := New(wrapped)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.ReadFile("/pkg/index.js"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestParseOnceMemoizesAndDeduplicates(t *testing.T) {
	p := NewParseOnce()

	var calls int
	var mu sync.Mutex
	parse := func() (interface{}, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return "parsed", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := p.Do("key", parse)
			if err != nil || v.(string) != "parsed" {
				t.Errorf("got %v, %v", v, err)
			}
		}()
	}
	wg.Wait()

	v, err := p.Do("key", parse)
	if err != nil || v.(string) != "parsed" {
		t.Fatalf("got %v, %v", v, err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected parse to run exactly once, ran %d times", calls)
	}
}

func TestParseOnceDistinctKeysRunIndependently(t *testing.T) {
	p := NewParseOnce()
	a, _ := p.Do("a", func() (interface{}, error) { return "A", nil })
	b, _ := p.Do("b", func() (interface{}, error) { return "B", nil })
	if a.(string) != "A" || b.(string) != "B" {
		t.Fatalf("got %v, %v", a, b)
	}
}
