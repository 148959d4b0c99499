// Package indexer builds and refreshes theme indexes from package
// archives.
package indexer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/beevik/etree"

	"github.com/elsid/sigame-tools/internal/siq"
	"github.com/elsid/sigame-tools/internal/theme"
)

// metaSuffix names the sidecar carrying an archive's original file name.
const metaSuffix = ".meta.json"

type sidecar struct {
	Name string `json:"name"`
}

// fileName returns the sidecar name when a sidecar exists and the base
// name of the archive otherwise.
func fileName(path string) (string, error) {
	data, err := os.ReadFile(path + metaSuffix)
	if errors.Is(err, os.ErrNotExist) {
		return filepath.Base(path), nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path+metaSuffix, err)
	}
	var meta sidecar
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", fmt.Errorf("parse %s: %w", path+metaSuffix, err)
	}
	return meta.Name, nil
}

// extract lists every theme of a package document in position order.
// Rounds are counted across the whole document and themes within their
// round, both from 1.
func extract(path, name string, doc *etree.Document, newID func() (string, error)) ([]theme.Metadata, error) {
	root := doc.Root()
	packageName := root.SelectAttrValue("name", "")
	authors := packageAuthors(doc)

	var out []theme.Metadata
	for roundNumber, r := range doc.FindElements("//round") {
		roundType := theme.RoundNormal
		if r.SelectAttrValue("type", "") == string(theme.RoundFinal) {
			roundType = theme.RoundFinal
		}
		for themeNumber, th := range r.FindElements(".//theme") {
			id, err := newID()
			if err != nil {
				return nil, fmt.Errorf("generating theme id: %w", err)
			}
			out = append(out, theme.Metadata{
				ID:                        id,
				RoundNumber:               roundNumber + 1,
				ThemeNumber:               themeNumber + 1,
				Path:                      path,
				PackageName:               packageName,
				RoundName:                 r.SelectAttrValue("name", ""),
				ThemeName:                 th.SelectAttrValue("name", ""),
				QuestionsNum:              len(th.FindElements(".//question")),
				Authors:                   authors,
				Base64EncodedRightAnswers: rightAnswers(th),
				RoundType:                 roundType,
				FileName:                  name,
				ImagesNum:                 countAtoms(th, siq.MediaImage),
				VideosNum:                 countAtoms(th, siq.MediaVideo),
				VoicesNum:                 countAtoms(th, siq.MediaVoice),
			})
		}
	}
	return out, nil
}

func packageAuthors(doc *etree.Document) []string {
	authors := []string{}
	for _, el := range doc.FindElements("//author") {
		if text := el.Text(); text != "" {
			authors = append(authors, text)
		}
	}
	slices.Sort(authors)
	return slices.Compact(authors)
}

func rightAnswers(th *etree.Element) []string {
	answers := []string{}
	for _, right := range th.FindElements(".//right") {
		for _, answer := range right.FindElements(".//answer") {
			if text := answer.Text(); text != "" {
				answers = append(answers, theme.EncodeAnswer(text))
			}
		}
	}
	return answers
}

func countAtoms(th *etree.Element, mediaType string) int {
	n := 0
	for _, atom := range th.FindElements(".//atom") {
		if atom.SelectAttrValue("type", "") == mediaType {
			n++
		}
	}
	return n
}
