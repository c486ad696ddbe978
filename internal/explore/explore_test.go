package explore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jarindexer/internal/domain"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return root
}

func TestHumanSize(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, c := range cases {
		if got := humanSize(c.size); got != c.want {
			t.Fatalf("humanSize(%d) = %q, want %q", c.size, got, c.want)
		}
	}
}

func TestCountLines(t *testing.T) {
	root := writeTree(t, map[string]string{
		"ten.txt":     strings.Repeat("line\n", 10),
		"no-nl.txt":   "one\ntwo\nthree",
		"empty.txt":   "",
		"binary.dat":  "abc\x00def",
		"single.java": "class A {}\n",
	})

	cases := map[string]int{
		"ten.txt":     10,
		"no-nl.txt":   3,
		"empty.txt":   0,
		"binary.dat":  0,
		"single.java": 1,
	}
	for name, want := range cases {
		got, err := countLines(filepath.Join(root, name))
		if err != nil {
			t.Fatalf("countLines(%s): %v", name, err)
		}
		if got != want {
			t.Fatalf("countLines(%s) = %d, want %d", name, got, want)
		}
	}
}

func TestListTreeDepths(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Top.java":        "class Top {}\n",
		"a/A.java":        "class A {}\n",
		"a/b/C.java":      "class C {}\n",
		"a/b/deep/D.java": "class D {}\n",
	})
	e := New()

	snap, err := e.ListTree(root, "", 0, true)
	if err != nil {
		t.Fatalf("ListTree depth 0: %v", err)
	}
	if len(snap.Files) != 1 || snap.Files[0].Name != "Top.java" {
		t.Fatalf("root files = %+v", snap.Files)
	}
	if len(snap.Folders) != 1 || snap.Folders[0].Name != "a" {
		t.Fatalf("root folders = %+v", snap.Folders)
	}
	// Depth 0: folder "a" appears shallow.
	if snap.Folders[0].Files != nil || snap.Folders[0].Folders != nil {
		t.Fatalf("depth 0 expanded folder contents: %+v", snap.Folders[0])
	}
	if snap.Folders[0].FileCount != 1 {
		t.Fatalf("file count of a = %d", snap.Folders[0].FileCount)
	}

	snap, err = e.ListTree(root, "", 1, true)
	if err != nil {
		t.Fatalf("ListTree depth 1: %v", err)
	}
	a := snap.Folders[0]
	if len(a.Files) != 1 || a.Files[0].Name != "A.java" {
		t.Fatalf("a files = %+v", a.Files)
	}
	if len(a.Folders) != 1 || a.Folders[0].Name != "b" {
		t.Fatalf("a folders = %+v", a.Folders)
	}
	if a.Folders[0].Files != nil {
		t.Fatalf("depth 1 expanded grandchild files: %+v", a.Folders[0])
	}
}

func TestListTreeStartPath(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/b/C.java": "class C {}\n",
	})
	e := New()

	snap, err := e.ListTree(root, "a/b", 1, true)
	if err != nil {
		t.Fatalf("ListTree: %v", err)
	}
	if len(snap.Files) != 1 || snap.Files[0].Name != "C.java" {
		t.Fatalf("files = %+v", snap.Files)
	}

	if _, err := e.ListTree(root, "a/missing", 1, true); !errors.Is(err, domain.ErrResourceNotFound) {
		t.Fatalf("missing start: want ErrResourceNotFound, got %v", err)
	}
	if _, err := e.ListTree(root, "../outside", 1, true); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("traversal start: want ErrInvalidInput, got %v", err)
	}
}

func TestListTreeSkipsStoreDirs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"A.java":        "class A {}\n",
		".index/marker": "{}",
		".git/config":   "[core]\n",
	})
	e := New()

	snap, err := e.ListTree(root, "", 1, true)
	if err != nil {
		t.Fatalf("ListTree: %v", err)
	}
	if len(snap.Folders) != 0 {
		t.Fatalf("store dirs leaked into listing: %+v", snap.Folders)
	}
}

func TestFindByNameGlob(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/Foo.java":     "class Foo {}\n",
		"a/b/Bar.java":   "class Bar {}\n",
		"a/b/Bar.kt":     "class Bar\n",
		"a/b/Notes.txt":  "nope\n",
		"java/Trick.txt": "name dir is java\n",
	})
	e := New()

	matches, err := e.FindByName(root, "*.java", "glob", "", -1)
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %+v", matches)
	}
	for _, m := range matches {
		if !strings.HasSuffix(m.Path, ".java") {
			t.Fatalf("non-java match: %+v", m)
		}
	}

	// ? matches exactly one character of the name.
	matches, err = e.FindByName(root, "Bar.j???", "glob", "", -1)
	if err != nil {
		t.Fatalf("FindByName ?: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("Bar.j??? matched: %+v", matches)
	}
	matches, err = e.FindByName(root, "Bar.????", "glob", "", -1)
	if err != nil {
		t.Fatalf("FindByName ????: %v", err)
	}
	if len(matches) != 1 || matches[0].Name != "Bar.java" {
		t.Fatalf("Bar.???? = %+v", matches)
	}
}

func TestFindByNameDepthAndStart(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Root.java":       "class Root {}\n",
		"a/Mid.java":      "class Mid {}\n",
		"a/b/Deep.java":   "class Deep {}\n",
		"a/b/c/Very.java": "class Very {}\n",
	})
	e := New()

	matches, err := e.FindByName(root, "*.java", "glob", "", 1)
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("depth 1 matches = %+v", matches)
	}

	matches, err = e.FindByName(root, "*.java", "glob", "a/b", -1)
	if err != nil {
		t.Fatalf("FindByName start: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("start a/b matches = %+v", matches)
	}
	if matches[0].Path != "a/b/Deep.java" {
		t.Fatalf("path = %q", matches[0].Path)
	}
}

func TestFindByNameRegex(t *testing.T) {
	root := writeTree(t, map[string]string{
		"FooTest.java": "x\n",
		"Foo.java":     "x\n",
	})
	e := New()

	matches, err := e.FindByName(root, `Test\.java$`, "regex", "", -1)
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if len(matches) != 1 || matches[0].Name != "FooTest.java" {
		t.Fatalf("matches = %+v", matches)
	}

	if _, err := e.FindByName(root, `([`, "regex", "", -1); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("bad regex: want ErrInvalidInput, got %v", err)
	}
}

func TestFindByContentWindows(t *testing.T) {
	lines := []string{
		"package demo;", // 1
		"",              // 2
		"class A {",     // 3
		"  int target;", // 4
		"}",             // 5
		"",              // 6
		"class B {",     // 7
		"  int other;",  // 8
		"}",             // 9
	}
	root := writeTree(t, map[string]string{
		"A.java": strings.Join(lines, "\n") + "\n",
	})
	e := New()

	results, err := e.FindByContent(root, domain.ContentQuery{
		Query: "target", QueryType: "string", MaxDepth: -1, CtxBefore: 2, CtxAfter: 2,
	})
	if err != nil {
		t.Fatalf("FindByContent: %v", err)
	}
	matches := results["A.java"]
	if len(matches) != 1 {
		t.Fatalf("matches = %+v", results)
	}
	if matches[0].ContentRange != "2-6" {
		t.Fatalf("range = %q", matches[0].ContentRange)
	}
	if matches[0].MatchLines != "4" {
		t.Fatalf("match lines = %q", matches[0].MatchLines)
	}
	if !strings.Contains(matches[0].Content, "   4:   int target;") {
		t.Fatalf("content = %q", matches[0].Content)
	}
}

func TestFindByContentClampsAtBounds(t *testing.T) {
	root := writeTree(t, map[string]string{
		"f.txt": "hit\nmid\nhit\n",
	})
	e := New()

	results, err := e.FindByContent(root, domain.ContentQuery{
		Query: "hit", MaxDepth: -1, CtxBefore: 5, CtxAfter: 5,
	})
	if err != nil {
		t.Fatalf("FindByContent: %v", err)
	}
	matches := results["f.txt"]
	if len(matches) != 1 {
		t.Fatalf("overlapping windows not merged: %+v", matches)
	}
	if matches[0].ContentRange != "1-3" {
		t.Fatalf("range = %q", matches[0].ContentRange)
	}
	if matches[0].MatchLines != "1,3" {
		t.Fatalf("match lines = %q", matches[0].MatchLines)
	}
}

func TestFindByContentMaxResults(t *testing.T) {
	root := writeTree(t, map[string]string{
		"many.txt": strings.Repeat("hit\n", 50),
	})
	e := New()

	results, err := e.FindByContent(root, domain.ContentQuery{
		Query: "hit", MaxDepth: -1, MaxResults: 5,
	})
	if err != nil {
		t.Fatalf("FindByContent: %v", err)
	}
	if got := results["many.txt"][0].MatchLines; got != "1,2,3,4,5" {
		t.Fatalf("match lines = %q", got)
	}
}

func TestFindByContentSkipsBinary(t *testing.T) {
	root := writeTree(t, map[string]string{
		"bin.dat": "hit\x00hit",
		"ok.txt":  "hit\n",
	})
	e := New()

	results, err := e.FindByContent(root, domain.ContentQuery{Query: "hit", MaxDepth: -1})
	if err != nil {
		t.Fatalf("FindByContent: %v", err)
	}
	if _, ok := results["bin.dat"]; ok {
		t.Fatal("binary file searched")
	}
	if _, ok := results["ok.txt"]; !ok {
		t.Fatal("text file missed")
	}
}

func TestReadFileRanges(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 10; i++ {
		sb.WriteString(strings.Repeat("x", i))
		sb.WriteByte('\n')
	}
	root := writeTree(t, map[string]string{"f.txt": sb.String()})
	e := New()

	res, err := e.ReadFile(root, "f.txt", 0, 0)
	if err != nil {
		t.Fatalf("ReadFile whole: %v", err)
	}
	if res.Content.StartLine != 1 || res.Content.EndLine != 10 {
		t.Fatalf("whole range = %d-%d", res.Content.StartLine, res.Content.EndLine)
	}
	if res.Info.LineCount != 10 {
		t.Fatalf("line count = %d", res.Info.LineCount)
	}

	res, err = e.ReadFile(root, "f.txt", 3, 5)
	if err != nil {
		t.Fatalf("ReadFile range: %v", err)
	}
	if res.Content.SourceCode != "xxx\nxxxx\nxxxxx" {
		t.Fatalf("range content = %q", res.Content.SourceCode)
	}

	// End clamps to EOF.
	res, err = e.ReadFile(root, "f.txt", 8, 99)
	if err != nil {
		t.Fatalf("ReadFile clamp: %v", err)
	}
	if res.Content.StartLine != 8 || res.Content.EndLine != 10 {
		t.Fatalf("clamped range = %d-%d", res.Content.StartLine, res.Content.EndLine)
	}

	// Start past EOF yields an empty range, not an error.
	res, err = e.ReadFile(root, "f.txt", 50, 60)
	if err != nil {
		t.Fatalf("ReadFile past EOF: %v", err)
	}
	if res.Content.SourceCode != "" {
		t.Fatalf("past-EOF content = %q", res.Content.SourceCode)
	}
	if res.Content.EndLine >= res.Content.StartLine {
		t.Fatalf("past-EOF range = %d-%d", res.Content.StartLine, res.Content.EndLine)
	}
}

func TestReadFileErrors(t *testing.T) {
	root := writeTree(t, map[string]string{"a/f.txt": "x\n"})
	e := New()

	if _, err := e.ReadFile(root, "missing.txt", 0, 0); !errors.Is(err, domain.ErrResourceNotFound) {
		t.Fatalf("missing: want ErrResourceNotFound, got %v", err)
	}
	if _, err := e.ReadFile(root, "a", 0, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("dir: want ErrInvalidInput, got %v", err)
	}
	if _, err := e.ReadFile(root, "../../etc/passwd", 0, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("traversal: want ErrInvalidInput, got %v", err)
	}
	if _, err := e.ReadFile(root, "a/f.txt", 5, 2); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("inverted range: want ErrInvalidInput, got %v", err)
	}
}
