package siq

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"

	"github.com/elsid/sigame-tools/internal/siq/siqtest"
)

func TestReadContent(t *testing.T) {
	t.Parallel()

	path := siqtest.Write(t, filepath.Join(t.TempDir(), "a.siq"), siqtest.Package, nil)
	doc, err := ReadContent(path)
	if err != nil {
		t.Fatalf("ReadContent: %v", err)
	}
	if got := doc.Root().SelectAttrValue("name", ""); got != "Sample" {
		t.Fatalf("package name = %q, want Sample", got)
	}
	if got := len(doc.FindElements("//round")); got != 2 {
		t.Fatalf("rounds = %d, want 2", got)
	}
}

func TestReadContent_Missing(t *testing.T) {
	t.Parallel()

	path := siqtest.Write(t, filepath.Join(t.TempDir(), "a.siq"), "", map[string][]byte{"x.txt": []byte("x")})
	if _, err := ReadContent(path); !errors.Is(err, ErrNoContent) {
		t.Fatalf("err = %v, want ErrNoContent", err)
	}
}

func TestReadContent_NotZip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.siq")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadContent(path); err == nil {
		t.Fatal("expected error for a non-zip file")
	}
}

func TestCache_ParsesOnce(t *testing.T) {
	t.Parallel()

	path := siqtest.Write(t, filepath.Join(t.TempDir(), "a.siq"), siqtest.Package, nil)
	c := NewCache()
	first, err := c.Get(path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	second, err := c.Get(path)
	if err != nil {
		t.Fatalf("second Get should hit the cache: %v", err)
	}
	if first != second {
		t.Fatal("cache returned a different document")
	}
}

func TestArchive_LookupPercentEncoding(t *testing.T) {
	t.Parallel()

	path := siqtest.Write(t, filepath.Join(t.TempDir(), "a.siq"), siqtest.Package, map[string][]byte{
		"Images/pic 1.png":       []byte("png"),
		"Audio/%D0%B7%D0%B2.mp3": []byte("mp3"),
	})
	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	tests := []struct {
		mediaType, name, want string
	}{
		{MediaImage, "pic 1.png", "Images/pic 1.png"},
		{MediaImage, "pic%201.png", "Images/pic 1.png"},
		{MediaVoice, "зв.mp3", "Audio/%D0%B7%D0%B2.mp3"},
		{MediaVoice, "%D0%B7%D0%B2.mp3", "Audio/%D0%B7%D0%B2.mp3"},
	}
	for _, tt := range tests {
		f, ok := a.LookupMedia(tt.mediaType, tt.name)
		if !ok {
			t.Errorf("LookupMedia(%s, %q) not found", tt.mediaType, tt.name)
			continue
		}
		if f.Name != tt.want {
			t.Errorf("LookupMedia(%s, %q) = %q, want %q", tt.mediaType, tt.name, f.Name, tt.want)
		}
	}
	if _, ok := a.LookupMedia(MediaVideo, "pic 1.png"); ok {
		t.Error("media must be looked up in its own folder")
	}
	if _, ok := a.LookupMedia("text", "pic 1.png"); ok {
		t.Error("unknown media types have no folder")
	}
}

func TestWriter_Commit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := filepath.Join(dir, "out", "pack.siq")
	w, err := Create(dest)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.WriteConstFiles(); err != nil {
		t.Fatal(err)
	}
	doc := etree.NewDocument()
	doc.CreateElement("package").CreateAttr("name", "x")
	if err := w.WriteContent(doc); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteMedia(MediaImage, "a.png", []byte("png")); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteMedia(MediaImage, "a.png", []byte("png")); !errors.Is(err, ErrDuplicateEntry) {
		t.Fatalf("second write err = %v, want ErrDuplicateEntry", err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatal("destination must not exist before Commit")
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	want := []string{"[Content_Types].xml", "Texts/authors.xml", "Texts/sources.xml", "content.xml", "Images/a.png"}
	if diff := cmp.Diff(want, siqtest.Names(t, dest)); diff != "" {
		t.Fatalf("entries (-want +got):\n%s", diff)
	}
	entries, err := os.ReadDir(filepath.Dir(dest))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestWriter_Abort(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := filepath.Join(dir, "pack.siq")
	if err := os.WriteFile(dest, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := Create(dest)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.WriteConstFiles(); err != nil {
		t.Fatal(err)
	}
	w.Abort()
	w.Abort()

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "previous" {
		t.Fatal("Abort must leave the destination untouched")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}
