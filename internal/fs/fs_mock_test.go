package fs

import "testing"

func TestMemFSBasic(t *testing.T) {
	fsys := MemFS(map[string]string{
		"/README.md":    "// readme",
		"/package.json": "{}",
		"/src/index.js": "// index",
		"/src/util.js":  "// util",
	})

	if _, err, _ := fsys.ReadFile("/missing.txt"); err == nil {
		t.Fatal("unexpectedly found /missing.txt")
	}

	readme, err, _ := fsys.ReadFile("/README.md")
	if err != nil || readme != "// readme" {
		t.Fatalf("got %q, %v", readme, err)
	}

	src, err, _ := fsys.ReadDirectory("/src")
	if err != nil {
		t.Fatalf("expected to find /src: %v", err)
	}
	index, _ := src.Get("index.js")
	if index == nil || index.Kind(fsys) != FileEntry {
		t.Fatalf("expected /src/index.js to be a file entry")
	}

	root, err, _ := fsys.ReadDirectory("/")
	if err != nil {
		t.Fatalf("expected to find /: %v", err)
	}
	srcEntry, _ := root.Get("src")
	if srcEntry == nil || srcEntry.Kind(fsys) != DirEntry {
		t.Fatalf("expected /src to be a directory entry")
	}
}

func TestMemFSCaseInsensitiveLookupReportsDifferentCase(t *testing.T) {
	fsys := MemFS(map[string]string{"/src/Index.js": "// index"})
	src, err, _ := fsys.ReadDirectory("/src")
	if err != nil {
		t.Fatalf("expected to find /src: %v", err)
	}
	entry, diff := src.Get("index.js")
	if entry == nil {
		t.Fatal("expected a case-insensitive match")
	}
	if diff == nil || diff.Actual != "Index.js" {
		t.Fatalf("expected a DifferentCase report naming the actual file name, got %+v", diff)
	}
}

func TestMemFSWithSymlinksEvalSymlinks(t *testing.T) {
	fsys := MemFSWithSymlinks(
		map[string]string{"/real/index.js": "// index"},
		map[string]string{"/link": "/real"},
	)
	real, ok := fsys.EvalSymlinks("/link/index.js")
	if !ok {
		t.Fatal("expected EvalSymlinks to succeed")
	}
	if real != "/real/index.js" {
		t.Fatalf("got %q", real)
	}
}

func TestMemFSJoinAndRel(t *testing.T) {
	fsys := MemFS(map[string]string{"/a/b/c.js": "x"})
	if got := fsys.Join("/a", "b", "c.js"); got != "/a/b/c.js" {
		t.Fatalf("got %q", got)
	}
	rel, ok := fsys.Rel("/a", "/a/b/c.js")
	if !ok || rel != "b/c.js" {
		t.Fatalf("got %q, %v", rel, ok)
	}
}
