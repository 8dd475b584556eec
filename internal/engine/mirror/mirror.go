// Package mirror downloads the files of tracked versions into the store.
package mirror

import (
	"context"
	"fmt"
	"path"
	"slices"
	"sync"
	"time"

	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/core/ports"
	"go.trai.ch/ucdstore/internal/engine/store"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Options configures a mirror run.
type Options struct {
	// Versions to mirror. Defaults to every resolved version.
	Versions []string
	// Concurrency caps the number of in-flight downloads. Defaults to domain.DefaultConcurrency.
	Concurrency int
	// Force re-downloads files that already exist in the store.
	Force bool
}

// RequiredCapabilities are the backend operations a mirror run needs.
var RequiredCapabilities = []domain.Capability{
	domain.CapMkdir,
	domain.CapWrite,
	domain.CapExists,
	domain.CapRead,
}

type item struct {
	version string
	file    domain.ExpectedFile
}

func (it item) storePath() string {
	return domain.StorePath(it.version, it.file.StorePath)
}

// Run mirrors the requested versions and records a snapshot and lockfile entry
// for every version that ends up with at least one file in the store.
// Per-file failures are reported, never returned.
func Run(ctx context.Context, sc *store.Context, opts Options) (*domain.MirrorReport, error) {
	if err := sc.Backend.Capabilities().Assert(RequiredCapabilities...); err != nil {
		return nil, zerr.Wrap(err, "mirror requires a writable backend")
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

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = domain.DefaultConcurrency
	}

	report := domain.NewMirrorReport()
	var queue []item
	for _, v := range versions {
		files, err := sc.TreeFiles(ctx, v)
		if err != nil {
			return nil, err
		}
		report.Versions[v] = &domain.VersionMirror{
			Version:    v,
			Downloaded: []string{},
			Skipped:    []string{},
			Failed:     []domain.FileFailure{},
		}
		for _, f := range files {
			queue = append(queue, item{version: v, file: f})
		}
	}

	if err := createDirectories(ctx, sc.Backend, versions, queue); err != nil {
		return nil, err
	}

	vertices := make(map[string]ports.Vertex, len(versions))
	for _, v := range versions {
		_, vertex := sc.Telemetry.Record(ctx, "mirror "+v)
		vertices[v] = vertex
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, it := range queue {
		g.Go(func() error {
			outcome, err := fetch(gctx, sc, it, opts.Force)

			mu.Lock()
			defer mu.Unlock()
			vm := report.Versions[it.version]
			switch {
			case err != nil:
				vm.Failed = append(vm.Failed, domain.FileFailure{Path: it.file.StorePath, Reason: err.Error()})
				sc.Logger.Warn("failed to mirror file", "version", it.version, "path", it.file.StorePath, "error", err)
				vertices[it.version].Log(domain.LogLevelWarn, fmt.Sprintf("failed %s: %v", it.file.StorePath, err))
			case outcome == outcomeSkipped:
				vm.Skipped = append(vm.Skipped, it.file.StorePath)
			default:
				vm.Downloaded = append(vm.Downloaded, it.file.StorePath)
				vertices[it.version].Log(domain.LogLevelDebug, "downloaded "+it.file.StorePath)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, v := range versions {
		report.Versions[v].Sort()
	}

	if err := record(ctx, sc, report, versions); err != nil {
		for _, v := range versions {
			vertices[v].Complete(err)
		}
		return nil, err
	}

	for _, v := range versions {
		vm := report.Versions[v]
		if len(vm.Downloaded) == 0 && len(vm.Failed) == 0 && len(vm.Skipped) > 0 {
			vertices[v].Cached()
		}
		var verr error
		if len(vm.Failed) > 0 {
			verr = zerr.With(zerr.New("some files failed to mirror"), "failed", len(vm.Failed))
		}
		vertices[v].Complete(verr)
		sc.Logger.Info("mirrored version",
			"version", v,
			"downloaded", len(vm.Downloaded),
			"skipped", len(vm.Skipped),
			"failed", len(vm.Failed))
	}
	return report, nil
}

type outcome int

const (
	outcomeDownloaded outcome = iota
	outcomeSkipped
)

func fetch(ctx context.Context, sc *store.Context, it item, force bool) (outcome, error) {
	target := it.storePath()
	if !force {
		ok, err := sc.Backend.Exists(ctx, target)
		if err != nil {
			return outcomeDownloaded, err
		}
		if ok {
			return outcomeSkipped, nil
		}
	}

	remote := it.file.RemotePath
	if remote == "" {
		remote = domain.RemotePath(it.version, it.file.StorePath)
	}
	content, err := sc.API.GetFileContent(ctx, remote)
	if err != nil {
		return outcomeDownloaded, err
	}
	if err := sc.Backend.Write(ctx, target, content.Data); err != nil {
		return outcomeDownloaded, err
	}
	return outcomeDownloaded, nil
}

// createDirectories creates every distinct target directory before any download starts.
func createDirectories(ctx context.Context, b ports.StorageBackend, versions []string, queue []item) error {
	dirs := make(map[string]struct{}, len(versions))
	for _, v := range versions {
		dirs[v] = struct{}{}
	}
	for _, it := range queue {
		dirs[path.Dir(it.storePath())] = struct{}{}
	}

	var g errgroup.Group
	for dir := range dirs {
		g.Go(func() error {
			if err := b.Mkdir(ctx, dir); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", dir)
			}
			return nil
		})
	}
	return g.Wait()
}

// record writes a snapshot for every version with files in the store and
// updates their lockfile entries. Entries of other versions are left untouched.
func record(ctx context.Context, sc *store.Context, report *domain.MirrorReport, versions []string) error {
	lf, err := sc.Manifest.ReadLockfile(ctx)
	if err != nil {
		return zerr.Wrap(err, "failed to read lockfile before recording snapshots")
	}
	now := time.Now().UTC()

	changed := false
	for _, v := range versions {
		vm := report.Versions[v]
		present := slices.Concat(vm.Downloaded, vm.Skipped)
		if len(present) == 0 {
			continue
		}

		snap := domain.NewSnapshot(v)
		for _, p := range present {
			data, err := sc.Backend.Read(ctx, domain.StorePath(v, p))
			if err != nil {
				sc.Logger.Warn("failed to read mirrored file for snapshot", "version", v, "path", p, "error", err)
				continue
			}
			snap.Files[p] = domain.SnapshotFile{Hash: domain.HashContent(data), Size: int64(len(data))}
		}
		if err := sc.Manifest.WriteSnapshot(ctx, v, snap); err != nil {
			return err
		}

		entry, ok := lf.Versions[v]
		if !ok {
			entry = domain.EmptyLockEntry(v)
			entry.CreatedAt = now
		}
		entry.SnapshotPath = domain.SnapshotPath(v)
		entry.FileCount = len(snap.Files)
		entry.TotalSize = snap.TotalSize()
		entry.UpdatedAt = now
		lf.Versions[v] = entry
		changed = true
	}

	if !changed {
		return nil
	}
	lf.Filters = sc.LockFilters()
	return sc.Manifest.WriteLockfile(ctx, lf)
}
