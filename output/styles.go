// Package output styles terminal text, degrading to plain text when the
// writer is not a terminal.
package output

import (
	"io"

	"github.com/muesli/termenv"
)

// Styles renders text fragments with terminal attributes.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates Styles writing to w.
func NewStyles(w io.Writer) *Styles {
	return &Styles{
		output: termenv.NewOutput(w),
	}
}

// Keyword renders emphasized text (bold).
func (s *Styles) Keyword(text string) string {
	return s.output.String(text).
		Bold().
		String()
}

// Dim renders de-emphasized text (faint).
func (s *Styles) Dim(text string) string {
	return s.output.String(text).
		Faint().
		String()
}

// Warning renders text that should stand out (yellow, bold).
func (s *Styles) Warning(text string) string {
	return s.output.String(text).
		Foreground(s.output.Color("3")).
		Bold().
		String()
}
