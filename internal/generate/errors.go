package generate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/elsid/sigame-tools/internal/theme"
)

// ErrNoThemes is returned when filtering leaves nothing to sample from.
var ErrNoThemes = errors.New("no themes to generate rounds: all themes are filtered out")

// ErrPoolExhausted is returned when a round cannot be filled.
var ErrPoolExhausted = errors.New("not enough themes")

// Attempt records one question-count bucket tried for a round.
type Attempt struct {
	Questions int
	Available int
	Need      int
}

// ExhaustedError describes a round that could not be filled from any
// question-count bucket.
type ExhaustedError struct {
	Round        string
	Type         theme.RoundType
	MinQuestions int
	MaxQuestions int
	Need         int
	Attempts     []Attempt
}

func (e *ExhaustedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "can't get themes for %s: %s for a %s round with [%d, %d] question(s), need %d",
		e.Round, ErrPoolExhausted, e.Type, e.MinQuestions, e.MaxQuestions, e.Need)
	if len(e.Attempts) > 0 {
		b.WriteString(" (tried")
		for i, a := range e.Attempts {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, " %d question(s): %d available", a.Questions, a.Available)
		}
		b.WriteString(")")
	}
	return b.String()
}

func (e *ExhaustedError) Unwrap() error {
	return ErrPoolExhausted
}
