package domain

import (
	"slices"
	"strings"
)

// FileFailure records a file that could not be processed.
type FileFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// VersionMirror is the mirror outcome of one version.
type VersionMirror struct {
	Version    string        `json:"version"`
	Downloaded []string      `json:"downloaded"`
	Skipped    []string      `json:"skipped"`
	Failed     []FileFailure `json:"failed"`
}

// Total returns the number of files the mirror attempted.
func (v *VersionMirror) Total() int {
	return len(v.Downloaded) + len(v.Skipped) + len(v.Failed)
}

// SuccessRate is the share of files that ended up present in the store.
func (v *VersionMirror) SuccessRate() float64 {
	return ratio(len(v.Downloaded)+len(v.Skipped), v.Total())
}

// CacheHitRate is the share of files that were already present.
func (v *VersionMirror) CacheHitRate() float64 {
	return ratio(len(v.Skipped), v.Total())
}

// FailureRate is the share of files that failed.
func (v *VersionMirror) FailureRate() float64 {
	return ratio(len(v.Failed), v.Total())
}

// Sort orders every list by path.
func (v *VersionMirror) Sort() {
	slices.Sort(v.Downloaded)
	slices.Sort(v.Skipped)
	slices.SortFunc(v.Failed, func(a, b FileFailure) int { return strings.Compare(a.Path, b.Path) })
}

// MirrorReport is the outcome of a mirror run keyed by version.
type MirrorReport struct {
	Versions map[string]*VersionMirror `json:"versions"`
}

// NewMirrorReport returns an empty report.
func NewMirrorReport() *MirrorReport {
	return &MirrorReport{Versions: make(map[string]*VersionMirror)}
}

// Totals sums the classification counts across versions.
func (r *MirrorReport) Totals() (downloaded, skipped, failed int) {
	for _, v := range r.Versions {
		downloaded += len(v.Downloaded)
		skipped += len(v.Skipped)
		failed += len(v.Failed)
	}
	return downloaded, skipped, failed
}

// SuccessRate is the share of files present after the run across all versions.
func (r *MirrorReport) SuccessRate() float64 {
	d, s, f := r.Totals()
	return ratio(d+s, d+s+f)
}

// CacheHitRate is the share of files skipped across all versions.
func (r *MirrorReport) CacheHitRate() float64 {
	d, s, f := r.Totals()
	return ratio(s, d+s+f)
}

// FailureRate is the share of failed files across all versions.
func (r *MirrorReport) FailureRate() float64 {
	d, s, f := r.Totals()
	return ratio(f, d+s+f)
}

// SortedVersions returns the report versions in display order.
func (r *MirrorReport) SortedVersions() []string {
	out := make([]string, 0, len(r.Versions))
	for v := range r.Versions {
		out = append(out, v)
	}
	return SortVersions(out)
}

// VersionAnalysis is the integrity analysis of one version.
type VersionAnalysis struct {
	Version    string         `json:"version"`
	Present    []string       `json:"present"`
	Orphaned   []string       `json:"orphaned"`
	Missing    []string       `json:"missing"`
	FileTypes  map[string]int `json:"fileTypes"`
	IsComplete bool           `json:"isComplete"`
	Error      string         `json:"error,omitempty"`
}

// ExpectedCount is the number of files the remote API lists for the version.
func (a *VersionAnalysis) ExpectedCount() int {
	return len(a.Present) + len(a.Missing)
}

// AnalysisReport is the analysis outcome keyed by version.
type AnalysisReport struct {
	Versions map[string]*VersionAnalysis `json:"versions"`
}

// SortedVersions returns the report versions in display order.
func (r *AnalysisReport) SortedVersions() []string {
	out := make([]string, 0, len(r.Versions))
	for v := range r.Versions {
		out = append(out, v)
	}
	return SortVersions(out)
}

// FileVersionState is the hash and size of a file on one side of a comparison.
type FileVersionState struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// ModifiedFile is a common file whose content differs between two versions.
type ModifiedFile struct {
	Path         string           `json:"path"`
	From         FileVersionState `json:"from"`
	To           FileVersionState `json:"to"`
	LinesAdded   int              `json:"linesAdded,omitempty"`
	LinesRemoved int              `json:"linesRemoved,omitempty"`
}

// VersionComparison is the difference between two versions.
type VersionComparison struct {
	From      string         `json:"from"`
	To        string         `json:"to"`
	Added     []string       `json:"added"`
	Removed   []string       `json:"removed"`
	Modified  []ModifiedFile `json:"modified"`
	Unchanged int            `json:"unchanged"`
	Failed    []FileFailure  `json:"failed,omitempty"`
}

// Common returns the number of files present in both versions.
func (c *VersionComparison) Common() int {
	return len(c.Modified) + c.Unchanged + len(c.Failed)
}

// SyncResult is the outcome of a sync run.
type SyncResult struct {
	Added       []string            `json:"added"`
	Removed     []string            `json:"removed"`
	Unchanged   []string            `json:"unchanged"`
	Unavailable []string            `json:"unavailable,omitempty"`
	Mirror      *MirrorReport       `json:"mirror,omitempty"`
	Orphans     map[string][]string `json:"orphans,omitempty"`
}

// VerifyResult compares the lockfile against the versions available upstream.
type VerifyResult struct {
	Valid             bool     `json:"valid"`
	MissingVersions   []string `json:"missingVersions"`
	ExtraVersions     []string `json:"extraVersions"`
	AvailableVersions []string `json:"availableVersions"`
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
