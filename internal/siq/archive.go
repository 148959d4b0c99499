package siq

import (
	"archive/zip"
	"fmt"
	"io"
	"net/url"
	"path"
)

// Archive is an open source package.
type Archive struct {
	path    string
	zr      *zip.ReadCloser
	files   map[string]*zip.File
	decoded map[string]*zip.File
}

// Open opens the archive at p for reading.
func Open(p string) (*Archive, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", p, err)
	}
	a := &Archive{
		path:    p,
		zr:      zr,
		files:   make(map[string]*zip.File, len(zr.File)),
		decoded: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		a.files[f.Name] = f
		a.decoded[unescape(f.Name)] = f
	}
	return a, nil
}

// Path returns the file system path the archive was opened from.
func (a *Archive) Path() string {
	return a.path
}

// Close releases the archive.
func (a *Archive) Close() error {
	return a.zr.Close()
}

// Lookup finds a member by name. Names are compared as given first and
// then with percent-encoding decoded on both sides.
func (a *Archive) Lookup(name string) (*zip.File, bool) {
	if f, ok := a.files[name]; ok {
		return f, true
	}
	f, ok := a.decoded[unescape(name)]
	return f, ok
}

// LookupMedia finds a media file of the given type by its referenced name.
func (a *Archive) LookupMedia(mediaType, name string) (*zip.File, bool) {
	dir, ok := MediaDir(mediaType)
	if !ok {
		return nil, false
	}
	return a.Lookup(path.Join(dir, name))
}

// ReadFile returns the contents of a member.
func ReadFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// unescape decodes percent-encoding, returning the input unchanged when it
// is not valid encoding.
func unescape(name string) string {
	decoded, err := url.PathUnescape(name)
	if err != nil {
		return name
	}
	return decoded
}
