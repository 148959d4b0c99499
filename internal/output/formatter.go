// Package output prints the themes selected for a generated package.
package output

import (
	"fmt"
	"io"

	"github.com/elsid/sigame-tools/internal/generate"
)

// Formatter defines the interface for reporting generated rounds.
type Formatter interface {
	Format(w io.Writer, rounds []*generate.Round) error
}

// New returns the formatter for the given format name.
func New(format string, color bool) (Formatter, error) {
	switch format {
	case "", "text":
		return &TextFormatter{Color: color}, nil
	case "json":
		return &JSONFormatter{}, nil
	}
	return nil, fmt.Errorf("unknown format %q (want text or json)", format)
}
