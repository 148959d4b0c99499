// Package siqtest builds package archives for tests.
package siqtest

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// Write creates a zip at path holding content.xml and the given extra
// members. An empty content skips content.xml.
func Write(t testing.TB, path, content string, members map[string][]byte) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	if content != "" {
		w, err := zw.Create("content.xml")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(members[name]); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

// Members returns the contents of every member of the archive at path.
func Members(t testing.TB, path string) map[string][]byte {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		out[f.Name] = data
	}
	return out
}

// Names returns member names of the archive at path in archive order.
func Names(t testing.TB, path string) []string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	out := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		out = append(out, f.Name)
	}
	return out
}

// Package is a small two-round package: a normal round with two themes and
// a final round with one theme. The first normal theme references an image.
const Package = `<?xml version="1.0" encoding="utf-8"?>
<package name="Sample" version="4" id="1" xmlns="http://vladimirkhil.com/ygpackage3.0.xsd">
  <info><authors><author>Alice</author><author>Bob</author></authors></info>
  <rounds>
    <round name="First">
      <themes>
        <theme name="Animals">
          <questions>
            <question price="100">
              <scenario><atom>Who says meow?</atom></scenario>
              <right><answer>Cat</answer></right>
            </question>
            <question price="200">
              <scenario><atom type="image">@pic%201.png</atom></scenario>
              <right><answer>Dog</answer></right>
            </question>
          </questions>
        </theme>
        <theme name="Rivers">
          <questions>
            <question price="100">
              <scenario><atom>Longest river?</atom></scenario>
              <right><answer>Nile</answer></right>
            </question>
          </questions>
        </theme>
      </themes>
    </round>
    <round name="Last" type="final">
      <themes>
        <theme name="Space">
          <questions>
            <question price="0">
              <scenario><atom type="voice">@clip.mp3</atom></scenario>
              <right><answer>Moon</answer></right>
            </question>
          </questions>
        </theme>
      </themes>
    </round>
  </rounds>
</package>
`
