package output

import (
	"encoding/json"
	"io"

	"github.com/elsid/sigame-tools/internal/generate"
)

// JSONFormatter outputs rounds as a JSON object.
type JSONFormatter struct{}

type jsonReport struct {
	Rounds []jsonRound `json:"rounds"`
}

type jsonRound struct {
	Name   string      `json:"name"`
	Type   string      `json:"type"`
	Themes []jsonTheme `json:"themes"`
}

type jsonTheme struct {
	ID           string `json:"id"`
	PackageName  string `json:"package_name"`
	ThemeName    string `json:"theme_name"`
	QuestionsNum int    `json:"questions_num"`
	Path         string `json:"path"`
	FileName     string `json:"file_name,omitempty"`
}

// Format writes rounds as a pretty-printed JSON object.
// No rounds produce {"rounds": []}.
func (f *JSONFormatter) Format(w io.Writer, rounds []*generate.Round) error {
	report := jsonReport{Rounds: make([]jsonRound, 0, len(rounds))}
	for _, r := range rounds {
		jr := jsonRound{
			Name:   r.Name,
			Type:   r.Type.String(),
			Themes: make([]jsonTheme, 0, len(r.Themes)),
		}
		for _, t := range r.Themes {
			jr.Themes = append(jr.Themes, jsonTheme{
				ID:           t.ID,
				PackageName:  t.PackageName,
				ThemeName:    t.ThemeName,
				QuestionsNum: t.QuestionsNum,
				Path:         t.Path,
				FileName:     t.FileName,
			})
		}
		report.Rounds = append(report.Rounds, jr)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
