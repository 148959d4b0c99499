package assemble

import (
	"errors"
	"fmt"
)

var (
	// ErrThemeNotFound is returned when a selected theme is no longer at
	// its indexed position.
	ErrThemeNotFound = errors.New("theme not found")
	// ErrMediaNotFound is returned when a referenced media file is absent
	// from its archive.
	ErrMediaNotFound = errors.New("media file not found")
	// ErrQuestionCountMismatch is returned when a theme holds a different
	// number of questions than its index entry.
	ErrQuestionCountMismatch = errors.New("question count differs from the index")
)

// IntegrityError ties a broken reference to the theme and archive it came
// from, so the theme can be excluded by id.
type IntegrityError struct {
	Err       error
	ThemeID   string
	Archive   string
	MediaType string
	File      string
}

func (e *IntegrityError) Error() string {
	if errors.Is(e.Err, ErrMediaNotFound) {
		return fmt.Sprintf("can't find referenced %s file %q in %s: %v, fix the archive or exclude theme %s",
			e.MediaType, e.File, e.Archive, e.Err, e.ThemeID)
	}
	return fmt.Sprintf("theme %s in %s: %v, rebuild the index or exclude the theme", e.ThemeID, e.Archive, e.Err)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}
