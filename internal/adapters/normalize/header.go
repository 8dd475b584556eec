// Package normalize removes version specific noise from UCD files before comparison.
package normalize

import (
	"bytes"
	"regexp"

	"go.trai.ch/ucdstore/internal/core/ports"
)

var _ ports.ContentNormalizer = (*HeaderStripper)(nil)

var (
	versionStampLine = regexp.MustCompile(`^#\s*[\w.-]+-\d+\.\d+\.\d+(?:d\d+)?\.\w+\s*$`)
	dateLine         = regexp.MustCompile(`^#\s*Date:`)
	copyrightLine    = regexp.MustCompile(`(?i)^#.*(?:©|\(c\)|copyright)`)
)

// HeaderStripper drops the lines of the leading comment block that change
// with every release: the versioned file name, the date and the copyright.
// Content after the leading comment block is never touched.
type HeaderStripper struct{}

// NewHeaderStripper creates a HeaderStripper.
func NewHeaderStripper() *HeaderStripper {
	return &HeaderStripper{}
}

// Normalize returns data without its release stamp lines.
func (h *HeaderStripper) Normalize(_ string, data []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(data))

	inHeader := true
	rest := data
	for len(rest) > 0 {
		line := rest
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line = rest[:i+1]
		}
		rest = rest[len(line):]

		if inHeader {
			trimmed := bytes.TrimRight(line, "\r\n")
			if !bytes.HasPrefix(trimmed, []byte("#")) {
				inHeader = false
			} else if isStampLine(trimmed) {
				continue
			}
		}
		out.Write(line)
	}
	return out.Bytes()
}

func isStampLine(line []byte) bool {
	return versionStampLine.Match(line) || dateLine.Match(line) || copyrightLine.Match(line)
}

// Identity leaves content unchanged.
type Identity struct{}

// Normalize returns data as is.
func (Identity) Normalize(_ string, data []byte) []byte {
	return data
}
