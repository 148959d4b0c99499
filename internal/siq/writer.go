package siq

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
)

const contentTypes = `<?xml version="1.0" encoding="utf-8"?>` +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="xml" ContentType="si/xml" />` +
	`</Types>`

// constFiles are written to every package in this order.
var constFiles = []struct {
	name string
	data string
}{
	{"[Content_Types].xml", contentTypes},
	{"Texts/authors.xml", `<?xml version="1.0" encoding="utf-8"?><Authors />`},
	{"Texts/sources.xml", `<?xml version="1.0" encoding="utf-8"?><Sources />`},
}

// ErrDuplicateEntry is returned when an entry name is written twice.
var ErrDuplicateEntry = errors.New("duplicate archive entry")

// Writer builds a package archive in a temporary file next to its
// destination. Commit renames it into place; Abort removes it. The
// destination is untouched until Commit succeeds.
type Writer struct {
	dest    string
	tmp     *os.File
	buf     *bufio.Writer
	zw      *zip.Writer
	written map[string]bool
	closed  bool
}

// Create starts a package archive that will be written to dest.
func Create(dest string) (*Writer, error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*.siq")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	buf := bufio.NewWriter(tmp)
	return &Writer{
		dest:    dest,
		tmp:     tmp,
		buf:     buf,
		zw:      zip.NewWriter(buf),
		written: make(map[string]bool),
	}, nil
}

// WriteFile adds an entry. Each name may be written once.
func (w *Writer) WriteFile(name string, data []byte) error {
	if w.written[name] {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, name)
	}
	f, err := w.zw.Create(name)
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	w.written[name] = true
	return nil
}

// WriteConstFiles adds the registry files every package carries.
func (w *Writer) WriteConstFiles() error {
	for _, f := range constFiles {
		if err := w.WriteFile(f.name, []byte(f.data)); err != nil {
			return err
		}
	}
	return nil
}

// WriteContent serializes doc as content.xml.
func (w *Writer) WriteContent(doc *etree.Document) error {
	data, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("serializing %s: %w", ContentPath, err)
	}
	return w.WriteFile(ContentPath, data)
}

// WriteMedia adds a media file under the folder of its type.
func (w *Writer) WriteMedia(mediaType, name string, data []byte) error {
	dir, ok := MediaDir(mediaType)
	if !ok {
		return fmt.Errorf("unknown media type %q", mediaType)
	}
	return w.WriteFile(dir+"/"+name, data)
}

// Commit finishes the archive and moves it over the destination.
func (w *Writer) Commit() error {
	if w.closed {
		return errors.New("writer already closed")
	}
	w.closed = true
	tmpPath := w.tmp.Name()
	fail := func(err error) error {
		_ = w.tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := w.zw.Close(); err != nil {
		return fail(fmt.Errorf("finishing archive: %w", err))
	}
	if err := w.buf.Flush(); err != nil {
		return fail(fmt.Errorf("flushing archive: %w", err))
	}
	if err := w.tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing archive: %w", err))
	}
	if err := w.tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing archive: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("setting archive mode: %w", err)
	}
	if err := os.Rename(tmpPath, w.dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("moving archive to %s: %w", w.dest, err)
	}
	return nil
}

// Abort discards the archive. It is a no-op after Commit.
func (w *Writer) Abort() {
	if w.closed {
		return
	}
	w.closed = true
	_ = w.tmp.Close()
	_ = os.Remove(w.tmp.Name())
}
