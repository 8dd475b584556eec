// Package output provides utilities for creating termenv.Output with consistent
// color profile handling across the CLI.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// ColorProfile returns the color profile for w.
// NO_COLOR forces Ascii, and so does a writer that is not a terminal.
func ColorProfile(w io.Writer) termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	f, ok := w.(*os.File)
	if !ok {
		return termenv.Ascii
	}
	return termenv.NewOutput(f).EnvColorProfile()
}

// New creates a new termenv.Output for w. A nil writer means stdout.
func New(w io.Writer, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stdout
	}

	opts = append(opts, termenv.WithProfile(ColorProfile(w)))
	return termenv.NewOutput(w, opts...)
}
