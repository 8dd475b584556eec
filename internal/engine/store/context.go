// Package store implements the store context and version resolution.
package store

import (
	"context"
	"errors"
	"io"
	"path"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/ucdstore/internal/adapters/filter"    //nolint:depguard // Default collaborators
	"go.trai.ch/ucdstore/internal/adapters/logger"    //nolint:depguard // Default collaborators
	"go.trai.ch/ucdstore/internal/adapters/manifest"  //nolint:depguard // Lockfile persistence
	"go.trai.ch/ucdstore/internal/adapters/normalize" //nolint:depguard // Default collaborators
	"go.trai.ch/ucdstore/internal/adapters/telemetry" //nolint:depguard // Default collaborators
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/core/ports"
	"go.trai.ch/zerr"
)

// Context carries the collaborators and version lists of one store root.
// Engines receive it explicitly and only read the resolved versions.
type Context struct {
	API        ports.RemoteAPI
	Filter     ports.PathFilter
	Backend    ports.StorageBackend
	Manifest   *manifest.Store
	Logger     ports.Logger
	Telemetry  ports.Telemetry
	Normalizer ports.ContentNormalizer

	// UserProvided are the versions passed explicitly by the caller.
	UserProvided []string
	// ConfigFile are the versions listed in the configuration file.
	ConfigFile []string

	mu       sync.RWMutex
	resolved []string
}

// Resolved returns a sorted copy of the versions the store operates on.
func (c *Context) Resolved() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.resolved)
}

// IsResolved reports whether version is part of the resolved set.
func (c *Context) IsResolved(version string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Contains(c.resolved, version)
}

// RequireResolved returns ErrVersionNotFound unless version is resolved.
func (c *Context) RequireResolved(version string) error {
	if c.IsResolved(version) {
		return nil
	}
	err := zerr.Wrap(domain.ErrVersionNotFound, "version is not tracked by this store")
	return zerr.With(zerr.With(err, "version", version), "resolved", c.Resolved())
}

// SetResolved replaces the resolved set. Only bootstrap and sync call it.
func (c *Context) SetResolved(versions []string) {
	sorted := domain.NewVersionSet(versions...).Sorted()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolved = sorted
}

// LockFilters returns the active filter patterns in lockfile form.
func (c *Context) LockFilters() *domain.LockFilters {
	include, exclude := c.Filter.Patterns()
	if len(include) == 0 && len(exclude) == 0 {
		return nil
	}
	return &domain.LockFilters{Include: include, Exclude: exclude}
}

// AvailableVersions returns the versions offered upstream.
// The bulk config endpoint is preferred; the version list is the fallback.
func (c *Context) AvailableVersions(ctx context.Context) ([]string, error) {
	cfg, err := c.API.GetConfig(ctx)
	if err == nil && len(cfg.Versions) > 0 {
		return domain.SortVersions(cfg.Versions), nil
	}
	if err != nil {
		c.Logger.Debug("remote config unavailable, falling back to version list", "error", err)
	}

	infos, listErr := c.API.ListVersions(ctx)
	if listErr != nil {
		out := zerr.Wrap(domain.ErrAPIFallbackFailure, "failed to fetch available versions")
		return nil, zerr.With(out, "error", listErr.Error())
	}
	versions := make([]string, 0, len(infos))
	for _, info := range infos {
		versions = append(versions, info.Version)
	}
	return domain.SortVersions(versions), nil
}

// LocalFiles lists the files of a version present in the store, sorted.
// The snapshot file is excluded and the path filter is not applied.
// A version without a directory yields ErrVersionNotMirrored.
func (c *Context) LocalFiles(ctx context.Context, version string) ([]string, error) {
	if err := c.Backend.Capabilities().Assert(domain.CapListDir); err != nil {
		return nil, err
	}
	entries, err := c.Backend.ListDir(ctx, version, true)
	if err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			return nil, zerr.With(zerr.Wrap(domain.ErrVersionNotMirrored, "version directory does not exist"), "version", version)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to list version files"), "version", version)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		p := strings.TrimLeft(e, "/")
		if p == "" || strings.HasSuffix(p, "/") || domain.IsSnapshotPath(p) {
			continue
		}
		files = append(files, p)
	}
	slices.Sort(files)
	return files, nil
}

// ExpectedFiles returns the files the remote API lists for a version,
// normalized, filtered and without the snapshot file.
func (c *Context) ExpectedFiles(ctx context.Context, version string) ([]domain.ExpectedFile, error) {
	files, err := c.API.GetExpectedFiles(ctx, version)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to fetch expected files"), "version", version)
	}
	return c.scope(version, files), nil
}

// TreeFiles returns the flattened remote file tree of a version,
// normalized, filtered and without the snapshot file.
func (c *Context) TreeFiles(ctx context.Context, version string) ([]domain.ExpectedFile, error) {
	nodes, err := c.API.GetFileTree(ctx, version)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to fetch file tree"), "version", version)
	}
	return c.scope(version, domain.FlattenTree(version, nodes)), nil
}

func (c *Context) scope(version string, files []domain.ExpectedFile) []domain.ExpectedFile {
	out := make([]domain.ExpectedFile, 0, len(files))
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		f.StorePath = domain.NormalizePath(version, f.StorePath)
		if f.StorePath == "" || domain.IsSnapshotPath(f.StorePath) || seen[f.StorePath] {
			continue
		}
		if !domain.IsContainedPath(f.StorePath) {
			c.Logger.Warn("ignoring remote file outside the version directory", "version", version, "path", f.StorePath)
			continue
		}
		if !c.Filter.Match(f.StorePath) {
			continue
		}
		if f.Name == "" {
			f.Name = path.Base(f.StorePath)
		}
		seen[f.StorePath] = true
		out = append(out, f)
	}
	domain.SortExpectedFiles(out)
	return out
}

func (c *Context) applyDefaults() {
	if c.Filter == nil {
		c.Filter = filter.MatchAll()
	}
	if c.Logger == nil {
		l := logger.New()
		l.SetOutput(io.Discard)
		c.Logger = l
	}
	if c.Telemetry == nil {
		c.Telemetry = telemetry.NewNoOp()
	}
	if c.Normalizer == nil {
		c.Normalizer = normalize.NewHeaderStripper()
	}
	if c.Manifest == nil && c.Backend != nil {
		c.Manifest = manifest.NewStore(c.Backend)
	}
}
