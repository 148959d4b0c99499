package output

import (
	"fmt"
	"io"

	"github.com/elsid/sigame-tools/internal/generate"
	"github.com/elsid/sigame-tools/internal/theme"
)

// TextFormatter outputs rounds in human-readable text format.
// When Color is true, round names are printed in cyan and theme ids in yellow.
type TextFormatter struct {
	Color bool
}

// Format writes a header line per round followed by one indented line per
// theme in the pattern:
// id package / theme (path)
func (f *TextFormatter) Format(w io.Writer, rounds []*generate.Round) error {
	for _, r := range rounds {
		if err := f.header(w, r); err != nil {
			return err
		}
		for _, t := range r.Themes {
			var err error
			if f.Color {
				_, err = fmt.Fprintf(w, "  \033[33m%s\033[0m %s / %s (%s)\n",
					t.ID, t.PackageName, t.ThemeName, t.Path)
			} else {
				_, err = fmt.Fprintf(w, "  %s %s / %s (%s)\n",
					t.ID, t.PackageName, t.ThemeName, t.Path)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *TextFormatter) header(w io.Writer, r *generate.Round) error {
	detail := fmt.Sprintf("%d questions", r.QuestionsNum())
	if r.Type == theme.RoundFinal {
		detail = "final"
	}
	name := r.Name
	if f.Color {
		name = "\033[36m" + name + "\033[0m"
	}
	_, err := fmt.Fprintf(w, "%s (%s)\n", name, detail)
	return err
}
