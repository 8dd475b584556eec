// Package syncer reconciles the tracked versions of a store with the versions available upstream.
package syncer

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/engine/mirror"
	"go.trai.ch/ucdstore/internal/engine/store"
	"go.trai.ch/zerr"
)

// Options configures a sync run.
type Options struct {
	// Versions restricts mirroring to these versions.
	Versions []string
	// Force re-mirrors every tracked version that is available upstream.
	Force bool
	// RemoveUnavailable drops lockfile entries of versions no longer offered upstream.
	RemoveUnavailable bool
	// CleanOrphaned removes local files that are not expected for their version.
	CleanOrphaned bool
	// Concurrency caps the number of in-flight downloads.
	Concurrency int
}

// Run reconciles the lockfile with upstream, mirrors the versions that need
// files and optionally removes orphaned files.
func Run(ctx context.Context, sc *store.Context, opts Options) (*domain.SyncResult, error) {
	if opts.CleanOrphaned {
		if err := sc.Backend.Capabilities().Assert(domain.CapRemove, domain.CapListDir); err != nil {
			return nil, zerr.Wrap(err, "orphan cleanup requires a backend that can list and remove files")
		}
	}

	available, err := sc.AvailableVersions(ctx)
	if err != nil {
		return nil, err
	}

	lf := sc.Manifest.ReadLockfileOrDefault(ctx)
	if lf == nil {
		lf = domain.NewLockfile()
	}

	trackedSet := domain.NewVersionSet(slices.Collect(maps.Keys(lf.Versions))...)
	availableSet := domain.NewVersionSet(available...)

	res := &domain.SyncResult{
		Added:       availableSet.Difference(trackedSet),
		Removed:     []string{},
		Unchanged:   []string{},
		Unavailable: []string{},
	}
	for _, v := range trackedSet.Sorted() {
		if availableSet.Has(v) {
			res.Unchanged = append(res.Unchanged, v)
		}
	}
	if res.Added == nil {
		res.Added = []string{}
	}

	unavailable := trackedSet.Difference(availableSet)
	if opts.RemoveUnavailable {
		res.Removed = append(res.Removed, unavailable...)
	} else {
		res.Unavailable = append(res.Unavailable, unavailable...)
	}

	now := time.Now().UTC()
	for _, v := range res.Added {
		entry := domain.EmptyLockEntry(v)
		entry.CreatedAt = now
		entry.UpdatedAt = now
		lf.Versions[v] = entry
	}
	for _, v := range res.Removed {
		delete(lf.Versions, v)
	}
	lf.Filters = sc.LockFilters()
	if err := sc.Manifest.WriteLockfile(ctx, lf); err != nil {
		return nil, err
	}
	sc.SetResolved(slices.Collect(maps.Keys(lf.Versions)))
	sc.Logger.Info("synced lockfile",
		"added", res.Added,
		"removed", res.Removed,
		"unavailable", res.Unavailable)

	toMirror := mirrorSet(lf, availableSet, res.Added, opts)
	if len(toMirror) > 0 {
		if err := sc.Backend.Capabilities().Assert(mirror.RequiredCapabilities...); err != nil {
			sc.Logger.Warn("backend is read-only, skipping mirror", "versions", toMirror)
		} else {
			report, err := mirror.Run(ctx, sc, mirror.Options{
				Versions:    toMirror,
				Concurrency: opts.Concurrency,
				Force:       opts.Force,
			})
			if err != nil {
				return nil, err
			}
			res.Mirror = report
		}
	}

	if opts.CleanOrphaned {
		orphans, err := cleanOrphaned(ctx, sc, availableSet)
		if err != nil {
			return nil, err
		}
		if len(orphans) > 0 {
			res.Orphans = orphans
		}
	}
	return res, nil
}

// mirrorSet picks the versions that need files: the explicit versions, every
// tracked and available version when forced, or the added and empty ones.
func mirrorSet(lf *domain.Lockfile, available domain.VersionSet, added []string, opts Options) []string {
	if len(opts.Versions) > 0 {
		return domain.NewVersionSet(opts.Versions...).Sorted()
	}

	set := domain.NewVersionSet(added...)
	for v, entry := range lf.Versions {
		if !available.Has(v) {
			continue
		}
		if opts.Force || entry.FileCount == 0 {
			set[v] = struct{}{}
		}
	}
	return set.Sorted()
}

// cleanOrphaned removes local files outside the expected set of every tracked
// version that is still available upstream. Removal failures are logged and skipped.
func cleanOrphaned(ctx context.Context, sc *store.Context, available domain.VersionSet) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, v := range sc.Resolved() {
		if !available.Has(v) {
			continue
		}

		expected, err := expectedSet(ctx, sc, v)
		if err != nil {
			return nil, err
		}
		local, err := sc.LocalFiles(ctx, v)
		if err != nil {
			if errors.Is(err, domain.ErrVersionNotMirrored) {
				continue
			}
			return nil, err
		}

		var removed []string
		for _, p := range local {
			if expected[p] {
				continue
			}
			if err := sc.Backend.Remove(ctx, domain.StorePath(v, p)); err != nil {
				sc.Logger.Warn("failed to remove orphaned file", "version", v, "path", p, "error", err)
				continue
			}
			removed = append(removed, p)
		}
		if len(removed) > 0 {
			sc.Logger.Info("removed orphaned files", "version", v, "count", len(removed))
			out[v] = removed
		}
	}
	return out, nil
}

// expectedSet prefers the recorded snapshot over a remote call.
func expectedSet(ctx context.Context, sc *store.Context, version string) (map[string]bool, error) {
	if snap := sc.Manifest.ReadSnapshotOrNil(ctx, version); snap != nil {
		set := make(map[string]bool, len(snap.Files))
		for p := range snap.Files {
			set[p] = true
		}
		return set, nil
	}

	files, err := sc.ExpectedFiles(ctx, version)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(files))
	for _, f := range files {
		set[f.StorePath] = true
	}
	return set, nil
}
