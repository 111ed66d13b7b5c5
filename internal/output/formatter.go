// Package output renders evaluation reports in the formats the command
// layer offers.
package output

import (
	"fmt"
	"io"

	"github.com/deidtools/deideval/internal/score"
)

// Formatter renders a spans-track report.
type Formatter interface {
	Format(w io.Writer, t score.Track, verbose bool) error
}

// New returns the formatter for a format name.
func New(format string) (Formatter, error) {
	switch format {
	case "", "text":
		return &TextFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}
