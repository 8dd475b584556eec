// Package analyze compares the files present in a store with the files expected upstream.
package analyze

import (
	"context"
	"errors"

	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/engine/store"
	"go.trai.ch/zerr"
)

// Options configures an analysis.
type Options struct {
	// Versions to analyze. Defaults to every resolved version.
	Versions []string
}

// Run analyzes every requested version. Failures of a single version are
// recorded in its entry and do not abort the others.
func Run(ctx context.Context, sc *store.Context, opts Options) (*domain.AnalysisReport, error) {
	if err := sc.Backend.Capabilities().Assert(domain.CapListDir); err != nil {
		return nil, zerr.Wrap(err, "analysis requires a backend that can list files")
	}

	versions := opts.Versions
	if len(versions) == 0 {
		versions = sc.Resolved()
	}
	versions = domain.NewVersionSet(versions...).Sorted()
	for _, v := range versions {
		if err := sc.RequireResolved(v); err != nil {
			return nil, err
		}
	}

	report := &domain.AnalysisReport{Versions: make(map[string]*domain.VersionAnalysis, len(versions))}
	for _, v := range versions {
		a, err := analyzeVersion(ctx, sc, v)
		if err != nil {
			sc.Logger.Warn("failed to analyze version", "version", v, "error", err)
			a.Error = err.Error()
			a.IsComplete = false
		}
		report.Versions[v] = a
	}
	return report, nil
}

func analyzeVersion(ctx context.Context, sc *store.Context, version string) (*domain.VersionAnalysis, error) {
	a := &domain.VersionAnalysis{
		Version:   version,
		Present:   []string{},
		Orphaned:  []string{},
		Missing:   []string{},
		FileTypes: map[string]int{},
	}

	expectedFiles, err := sc.ExpectedFiles(ctx, version)
	if err != nil {
		return a, err
	}
	expected := make(map[string]bool, len(expectedFiles))
	for _, f := range expectedFiles {
		expected[f.StorePath] = true
	}

	local, err := sc.LocalFiles(ctx, version)
	if err != nil && !errors.Is(err, domain.ErrVersionNotMirrored) {
		return a, err
	}
	actual := make(map[string]bool, len(local))
	for _, p := range local {
		if !sc.Filter.Match(p) {
			continue
		}
		actual[p] = true
		a.FileTypes[domain.FileExtension(p)]++
		if expected[p] {
			a.Present = append(a.Present, p)
		} else {
			a.Orphaned = append(a.Orphaned, p)
		}
	}
	for _, f := range expectedFiles {
		if !actual[f.StorePath] {
			a.Missing = append(a.Missing, f.StorePath)
		}
	}

	a.IsComplete = len(a.Orphaned) == 0 && len(a.Missing) == 0
	return a, nil
}
