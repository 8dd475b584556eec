// Package filter implements glob based path filtering.
package filter

import (
	"slices"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PathFilter = (*Filter)(nil)

// Filter matches store paths against include and exclude globs.
// Patterns use '/' as separator; "**" crosses directories.
// A pattern without a slash also matches the base name of a path.
type Filter struct {
	include []string
	exclude []string

	includeGlobs []matcher
	excludeGlobs []matcher

	extra sync.Map // pattern -> matcher
}

type matcher struct {
	globs    []glob.Glob
	baseName bool
}

func (m matcher) match(p string) bool {
	for _, g := range m.globs {
		if g.Match(p) {
			return true
		}
	}
	if m.baseName {
		base := p[strings.LastIndex(p, "/")+1:]
		for _, g := range m.globs {
			if g.Match(base) {
				return true
			}
		}
	}
	return false
}

// New compiles the include and exclude patterns.
func New(include, exclude []string) (*Filter, error) {
	f := &Filter{
		include: slices.Clone(include),
		exclude: slices.Clone(exclude),
	}
	for _, p := range include {
		m, err := compile(p)
		if err != nil {
			return nil, err
		}
		f.includeGlobs = append(f.includeGlobs, m)
	}
	for _, p := range exclude {
		m, err := compile(p)
		if err != nil {
			return nil, err
		}
		f.excludeGlobs = append(f.excludeGlobs, m)
	}
	return f, nil
}

// MatchAll returns a filter that accepts every path.
func MatchAll() *Filter {
	return &Filter{}
}

// Patterns returns the configured include and exclude patterns.
func (f *Filter) Patterns() (include, exclude []string) {
	return slices.Clone(f.include), slices.Clone(f.exclude)
}

// Match reports whether p passes the filter.
// Extra patterns prefixed with "!" exclude, the others include.
// Invalid extra patterns never match.
func (f *Filter) Match(p string, extra ...string) bool {
	p = strings.TrimLeft(p, "/")

	includes := f.includeGlobs
	excludes := f.excludeGlobs
	if len(extra) > 0 {
		includes = slices.Clone(includes)
		excludes = slices.Clone(excludes)
		for _, pattern := range extra {
			neg := strings.HasPrefix(pattern, "!")
			m, ok := f.extraMatcher(strings.TrimPrefix(pattern, "!"))
			if !ok {
				continue
			}
			if neg {
				excludes = append(excludes, m)
			} else {
				includes = append(includes, m)
			}
		}
	}

	for _, m := range excludes {
		if m.match(p) {
			return false
		}
	}
	if len(includes) == 0 {
		return true
	}
	for _, m := range includes {
		if m.match(p) {
			return true
		}
	}
	return false
}

func (f *Filter) extraMatcher(pattern string) (matcher, bool) {
	if v, ok := f.extra.Load(pattern); ok {
		return v.(matcher), true
	}
	m, err := compile(pattern)
	if err != nil {
		return matcher{}, false
	}
	f.extra.Store(pattern, m)
	return m, true
}

func compile(pattern string) (matcher, error) {
	pattern = strings.TrimLeft(pattern, "/")
	patterns := []string{pattern}
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		patterns = append(patterns, rest)
	}

	m := matcher{baseName: !strings.Contains(pattern, "/")}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return matcher{}, zerr.With(zerr.Wrap(domain.ErrInvalidGlob, err.Error()), "pattern", pattern)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}
