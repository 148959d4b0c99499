// Package siq reads and writes SIGame package archives: a zip holding
// content.xml plus media folders.
package siq

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
)

// ContentPath is the package document inside an archive.
const ContentPath = "content.xml"

// ErrNoContent is returned for archives without content.xml.
var ErrNoContent = errors.New("no content.xml")

// Media types and the archive folders holding their files.
const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaVoice = "voice"
)

var mediaDirs = map[string]string{
	MediaImage: "Images",
	MediaVideo: "Video",
	MediaVoice: "Audio",
}

// MediaDir returns the folder for a media type.
func MediaDir(mediaType string) (string, bool) {
	dir, ok := mediaDirs[mediaType]
	return dir, ok
}

// ReadContent parses content.xml of the archive at path.
func ReadContent(path string) (*etree.Document, error) {
	a, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.Content()
}

// Content parses the archive's content.xml.
func (a *Archive) Content() (*etree.Document, error) {
	f, ok := a.files[ContentPath]
	if !ok {
		return nil, fmt.Errorf("%s: %w", a.path, ErrNoContent)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: open %s: %w", a.path, ContentPath, err)
	}
	defer rc.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(rc); err != nil {
		return nil, fmt.Errorf("%s: parse %s: %w", a.path, ContentPath, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%s: %s has no root element", a.path, ContentPath)
	}
	return doc, nil
}

// Cache keeps parsed package documents for the lifetime of one run.
type Cache struct {
	docs map[string]*etree.Document
}

// NewCache returns an empty document cache.
func NewCache() *Cache {
	return &Cache{docs: make(map[string]*etree.Document)}
}

// Get returns the parsed content.xml of the archive at path, reading it on
// first use. Callers must not modify the returned document.
func (c *Cache) Get(path string) (*etree.Document, error) {
	if doc, ok := c.docs[path]; ok {
		return doc, nil
	}
	doc, err := ReadContent(path)
	if err != nil {
		return nil, err
	}
	c.docs[path] = doc
	return doc, nil
}
