package domain

import (
	"slices"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// SortVersions returns a sorted copy of the tags.
// Tags that parse as versions are ordered semantically and come first;
// the rest follow in lexical order.
func SortVersions(tags []string) []string {
	out := slices.Clone(tags)
	slices.SortFunc(out, CompareVersions)
	return out
}

// CompareVersions orders two version tags for display.
func CompareVersions(a, b string) int {
	va, errA := goversion.NewVersion(a)
	vb, errB := goversion.NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		if c := va.Compare(vb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// VersionSet is an unordered set of version tags.
type VersionSet map[string]struct{}

// NewVersionSet builds a set from tags.
func NewVersionSet(tags ...string) VersionSet {
	s := make(VersionSet, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s VersionSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Sorted returns the members in display order.
func (s VersionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	return SortVersions(out)
}

// Difference returns the members of s not in other, in display order.
func (s VersionSet) Difference(other VersionSet) []string {
	var out []string
	for t := range s {
		if !other.Has(t) {
			out = append(out, t)
		}
	}
	return SortVersions(out)
}

// Equal reports whether both sets have the same members.
func (s VersionSet) Equal(other VersionSet) bool {
	if len(s) != len(other) {
		return false
	}
	for t := range s {
		if !other.Has(t) {
			return false
		}
	}
	return true
}
