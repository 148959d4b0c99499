package theme

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/elsid/sigame-tools/internal/log"
)

// IndexVersion is the index format this program reads and writes.
//
// Version 2 added file_name, version 3 added the media counters. Older
// indexes are read with those fields left at their zero values.
const IndexVersion = 3

// Index is a versioned collection of theme metadata.
type Index struct {
	Version int        `json:"version"`
	Themes  []Metadata `json:"themes"`
}

// NewIndex wraps themes in an index of the current version.
func NewIndex(themes []Metadata) Index {
	return Index{Version: IndexVersion, Themes: themes}
}

// ReadIndex reads and validates an index file.
func ReadIndex(path string, logger *log.Logger) (Index, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Index{}, fmt.Errorf("read index: %w", err)
	}
	var index Index
	if err := json.Unmarshal(content, &index); err != nil {
		return Index{}, fmt.Errorf("parse index json %s: %w", path, err)
	}
	switch {
	case index.Version < IndexVersion:
		logger.Warn().Str("path", path).Int("version", index.Version).Int("supported", IndexVersion).
			Msg("index version is outdated, missing fields default to empty")
	case index.Version > IndexVersion:
		logger.Warn().Str("path", path).Int("version", index.Version).Int("supported", IndexVersion).
			Msg("index version is too advanced")
	}
	if err := index.validate(); err != nil {
		return Index{}, fmt.Errorf("index %s: %w", path, err)
	}
	return index, nil
}

func (index Index) validate() error {
	for _, t := range index.Themes {
		for _, encoded := range t.Base64EncodedRightAnswers {
			if _, err := DecodeAnswer(encoded); err != nil {
				return fmt.Errorf("theme %s has malformed right answer %q: %w", t.ID, encoded, err)
			}
		}
	}
	return nil
}

// WriteIndex writes themes as an index of the current version.
func WriteIndex(path string, themes []Metadata) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer func() { _ = file.Close() }()

	normalized := make([]Metadata, 0, len(themes))
	for _, t := range themes {
		if t.Authors == nil {
			t.Authors = []string{}
		}
		if t.Base64EncodedRightAnswers == nil {
			t.Base64EncodedRightAnswers = []string{}
		}
		normalized = append(normalized, t)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(NewIndex(normalized)); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush index: %w", err)
	}
	return file.Close()
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
