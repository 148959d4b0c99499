// Package generate fills rounds with themes sampled from the partitioned
// candidate pool.
package generate

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions is returned for option values that cannot produce a
// package.
var ErrInvalidOptions = errors.New("invalid options")

// Options controls round shape and uniqueness checks.
type Options struct {
	Rounds         int
	ThemesPerRound int
	MinQuestions   int
	MaxQuestions   int
	// FinalThemes is the theme count of the final round. Zero means
	// ThemesPerRound.
	FinalThemes int

	UniqueThemeNames      bool
	UniqueRightAnswers    bool
	CheckAnswerSimilarity bool
	Shuffle               bool
}

// DefaultOptions mirrors the command line defaults.
func DefaultOptions() Options {
	return Options{
		Rounds:                3,
		ThemesPerRound:        3,
		MinQuestions:          5,
		MaxQuestions:          10,
		UniqueThemeNames:      true,
		UniqueRightAnswers:    true,
		CheckAnswerSimilarity: true,
		Shuffle:               true,
	}
}

// Validate checks option bounds.
func (o Options) Validate() error {
	if o.Rounds < 1 {
		return fmt.Errorf("%w: rounds must be >= 1, got %d", ErrInvalidOptions, o.Rounds)
	}
	if o.ThemesPerRound < 1 {
		return fmt.Errorf("%w: themes per round must be >= 1, got %d", ErrInvalidOptions, o.ThemesPerRound)
	}
	if o.MinQuestions < 1 {
		return fmt.Errorf("%w: min questions per theme must be >= 1, got %d", ErrInvalidOptions, o.MinQuestions)
	}
	if o.MinQuestions > o.MaxQuestions {
		return fmt.Errorf("%w: min questions per theme %d exceeds max %d", ErrInvalidOptions, o.MinQuestions, o.MaxQuestions)
	}
	if o.FinalThemes < 0 {
		return fmt.Errorf("%w: final themes must be >= 0, got %d", ErrInvalidOptions, o.FinalThemes)
	}
	return nil
}

func (o Options) finalThemes() int {
	if o.FinalThemes == 0 {
		return o.ThemesPerRound
	}
	return o.FinalThemes
}
