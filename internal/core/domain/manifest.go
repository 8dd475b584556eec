package domain

import (
	"maps"
	"slices"
	"time"
)

// LockfileVersion is the only lockfile format version understood by the store.
const LockfileVersion = 1

// Lockfile records the versions tracked by a store and a summary of each mirrored version.
type Lockfile struct {
	// Version is the lockfile format version.
	Version int `json:"lockfileVersion"`

	// Versions maps each tracked version to its entry.
	Versions map[string]LockEntry `json:"versions"`

	// Filters records the path filter active when the lockfile was last written.
	Filters *LockFilters `json:"filters,omitempty"`
}

// LockEntry summarizes one tracked version.
type LockEntry struct {
	SnapshotPath string    `json:"snapshotPath"`
	FileCount    int       `json:"fileCount"`
	TotalSize    int64     `json:"totalSize"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
	UpdatedAt    time.Time `json:"updatedAt,omitzero"`
}

// LockFilters holds the include and exclude globs of a path filter.
type LockFilters struct {
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// NewLockfile returns an empty lockfile of the current format version.
func NewLockfile() *Lockfile {
	return &Lockfile{
		Version:  LockfileVersion,
		Versions: make(map[string]LockEntry),
	}
}

// EmptyLockEntry returns the entry written for a version that has not been mirrored yet.
func EmptyLockEntry(version string) LockEntry {
	return LockEntry{SnapshotPath: SnapshotPath(version)}
}

// TrackedVersions returns the tracked versions in display order.
func (l *Lockfile) TrackedVersions() []string {
	if l == nil {
		return nil
	}
	return SortVersions(slices.Collect(maps.Keys(l.Versions)))
}

// Has reports whether the version is tracked.
func (l *Lockfile) Has(version string) bool {
	if l == nil {
		return false
	}
	_, ok := l.Versions[version]
	return ok
}

// SnapshotFile is the recorded state of one file in a snapshot.
type SnapshotFile struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// Snapshot records the hash and size of every file of one mirrored version.
type Snapshot struct {
	UnicodeVersion string                  `json:"unicodeVersion"`
	Files          map[string]SnapshotFile `json:"files"`
}

// NewSnapshot returns an empty snapshot for the version.
func NewSnapshot(version string) *Snapshot {
	return &Snapshot{
		UnicodeVersion: version,
		Files:          make(map[string]SnapshotFile),
	}
}

// TotalSize returns the sum of all file sizes.
func (s *Snapshot) TotalSize() int64 {
	var total int64
	for _, f := range s.Files {
		total += f.Size
	}
	return total
}

// Paths returns the snapshot file paths sorted lexically.
func (s *Snapshot) Paths() []string {
	return slices.Sorted(maps.Keys(s.Files))
}
