// Package theme defines indexed theme metadata and the index file format.
package theme

import (
	"cmp"
	"encoding/base64"
	"encoding/json"
	"slices"
	"strings"

	"github.com/elsid/sigame-tools/internal/filter"
)

// RoundType distinguishes final rounds from normal ones.
type RoundType string

// Round types. Normal rounds carry no marker.
const (
	RoundNormal RoundType = ""
	RoundFinal  RoundType = "final"
)

// String returns a printable name of the round type.
func (t RoundType) String() string {
	if t == RoundNormal {
		return "normal"
	}
	return string(t)
}

// MarshalJSON encodes the normal round type as null.
func (t RoundType) MarshalJSON() ([]byte, error) {
	if t == RoundNormal {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

// UnmarshalJSON decodes null as the normal round type.
func (t *RoundType) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = RoundNormal
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = RoundType(s)
	return nil
}

// Metadata describes one theme of a source package. Values are treated as
// immutable once read.
type Metadata struct {
	ID                        string    `json:"id"`
	RoundNumber               int       `json:"round_number"`
	ThemeNumber               int       `json:"theme_number"`
	Path                      string    `json:"path"`
	PackageName               string    `json:"package_name"`
	RoundName                 string    `json:"round_name"`
	ThemeName                 string    `json:"theme_name"`
	QuestionsNum              int       `json:"questions_num"`
	Authors                   []string  `json:"authors"`
	Base64EncodedRightAnswers []string  `json:"base64_encoded_right_answers"`
	RoundType                 RoundType `json:"round_type"`
	FileName                  string    `json:"file_name"`
	ImagesNum                 int       `json:"images_num"`
	VideosNum                 int       `json:"videos_num"`
	VoicesNum                 int       `json:"voices_num"`
}

// Schema lists the filterable fields in index order.
var Schema = filter.Schema{
	{Name: "id", Type: filter.TypeString},
	{Name: "round_number", Type: filter.TypeInt},
	{Name: "theme_number", Type: filter.TypeInt},
	{Name: "path", Type: filter.TypeString},
	{Name: "package_name", Type: filter.TypeString},
	{Name: "round_name", Type: filter.TypeString},
	{Name: "theme_name", Type: filter.TypeString},
	{Name: "questions_num", Type: filter.TypeInt},
	{Name: "authors", Type: filter.TypeStringList},
	{Name: "base64_encoded_right_answers", Type: filter.TypeStringList},
	{Name: "round_type", Type: filter.TypeString},
	{Name: "file_name", Type: filter.TypeString},
	{Name: "images_num", Type: filter.TypeInt},
	{Name: "videos_num", Type: filter.TypeInt},
	{Name: "voices_num", Type: filter.TypeInt},
}

// FieldValue returns the value of a schema field, or nil for unknown names.
func (m Metadata) FieldValue(name string) any {
	switch name {
	case "id":
		return m.ID
	case "round_number":
		return m.RoundNumber
	case "theme_number":
		return m.ThemeNumber
	case "path":
		return m.Path
	case "package_name":
		return m.PackageName
	case "round_name":
		return m.RoundName
	case "theme_name":
		return m.ThemeName
	case "questions_num":
		return m.QuestionsNum
	case "authors":
		return m.Authors
	case "base64_encoded_right_answers":
		return m.Base64EncodedRightAnswers
	case "round_type":
		return string(m.RoundType)
	case "file_name":
		return m.FileName
	case "images_num":
		return m.ImagesNum
	case "videos_num":
		return m.VideosNum
	case "voices_num":
		return m.VoicesNum
	}
	return nil
}

// CacheKey identifies the theme within one index.
func (m Metadata) CacheKey() string {
	return m.ID
}

// Name returns the trimmed theme name used for uniqueness checks.
func (m Metadata) Name() string {
	return strings.TrimSpace(m.ThemeName)
}

// RightAnswers returns the decoded and trimmed right answers. Entries that
// are not valid base64 are skipped; ReadIndex rejects such indexes.
func (m Metadata) RightAnswers() []string {
	out := make([]string, 0, len(m.Base64EncodedRightAnswers))
	for _, encoded := range m.Base64EncodedRightAnswers {
		answer, err := DecodeAnswer(encoded)
		if err != nil {
			continue
		}
		out = append(out, strings.TrimSpace(answer))
	}
	return out
}

// Equal reports whether two themes agree on every field.
func (m Metadata) Equal(other Metadata) bool {
	return Compare(m, other) == 0
}

// Compare orders themes by all fields in schema order.
func Compare(a, b Metadata) int {
	return cmp.Or(
		cmp.Compare(a.ID, b.ID),
		cmp.Compare(a.RoundNumber, b.RoundNumber),
		cmp.Compare(a.ThemeNumber, b.ThemeNumber),
		cmp.Compare(a.Path, b.Path),
		cmp.Compare(a.PackageName, b.PackageName),
		cmp.Compare(a.RoundName, b.RoundName),
		cmp.Compare(a.ThemeName, b.ThemeName),
		cmp.Compare(a.QuestionsNum, b.QuestionsNum),
		slices.Compare(a.Authors, b.Authors),
		slices.Compare(a.Base64EncodedRightAnswers, b.Base64EncodedRightAnswers),
		cmp.Compare(a.RoundType, b.RoundType),
		cmp.Compare(a.FileName, b.FileName),
		cmp.Compare(a.ImagesNum, b.ImagesNum),
		cmp.Compare(a.VideosNum, b.VideosNum),
		cmp.Compare(a.VoicesNum, b.VoicesNum),
	)
}

// EncodeAnswer encodes a right answer the way the index stores it.
func EncodeAnswer(answer string) string {
	return base64.StdEncoding.EncodeToString([]byte(answer))
}

// DecodeAnswer reverses EncodeAnswer.
func DecodeAnswer(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
