package store

import (
	"context"
	"errors"
	"path"
	"strings"

	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/zerr"
)

// GetFile returns a file of a resolved version. Local content is preferred;
// otherwise the file is fetched remotely and written into the store when possible.
func (c *Context) GetFile(ctx context.Context, version, p string) ([]byte, error) {
	if err := c.RequireResolved(version); err != nil {
		return nil, err
	}
	p, err := c.checkPath(version, p)
	if err != nil {
		return nil, err
	}

	storePath := domain.StorePath(version, p)
	caps := c.Backend.Capabilities()
	if caps.Has(domain.CapRead) {
		data, err := c.Backend.Read(ctx, storePath)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, domain.ErrFileNotFound) {
			c.Logger.Debug("local read failed, fetching remotely", "path", storePath, "error", err)
		}
	}

	content, err := c.API.GetFileContent(ctx, domain.RemotePath(version, p))
	if err != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(err, "failed to fetch file"), "version", version), "path", p)
	}

	if caps.Has(domain.CapWrite, domain.CapMkdir) {
		if err := c.cacheFile(ctx, storePath, content.Data); err != nil {
			c.Logger.Warn("failed to cache file in store", "path", storePath, "error", err)
		}
	}
	return content.Data, nil
}

func (c *Context) cacheFile(ctx context.Context, storePath string, data []byte) error {
	if err := c.Backend.Mkdir(ctx, path.Dir(storePath)); err != nil {
		return err
	}
	return c.Backend.Write(ctx, storePath, data)
}

// ListFiles lists the files of a resolved version, filtered and sorted.
// Local files are listed when the version is present in the store;
// otherwise the expected files are fetched from the remote API.
func (c *Context) ListFiles(ctx context.Context, version string) ([]string, error) {
	if err := c.RequireResolved(version); err != nil {
		return nil, err
	}

	if c.Backend.Capabilities().Has(domain.CapListDir) {
		local, err := c.LocalFiles(ctx, version)
		switch {
		case err == nil && len(local) > 0:
			out := make([]string, 0, len(local))
			for _, p := range local {
				if c.Filter.Match(p) {
					out = append(out, p)
				}
			}
			return out, nil
		case err != nil && !errors.Is(err, domain.ErrVersionNotMirrored):
			return nil, err
		}
	}

	expected, err := c.ExpectedFiles(ctx, version)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(expected))
	for i, f := range expected {
		out[i] = f.StorePath
	}
	return out, nil
}

// FileTree returns the remote file tree of a resolved version with
// normalized paths. Filtered files and the snapshot file are pruned,
// as are directories left empty.
func (c *Context) FileTree(ctx context.Context, version string) ([]domain.FileNode, error) {
	if err := c.RequireResolved(version); err != nil {
		return nil, err
	}
	nodes, err := c.API.GetFileTree(ctx, version)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to fetch file tree"), "version", version)
	}
	return c.pruneTree(version, "", nodes), nil
}

func (c *Context) pruneTree(version, parent string, nodes []domain.FileNode) []domain.FileNode {
	var out []domain.FileNode
	for _, n := range nodes {
		full := n.Path
		if full == "" {
			full = path.Join(parent, n.Name)
		}
		rel := domain.NormalizePath(version, full)

		if n.Type == domain.NodeDirectory || len(n.Children) > 0 {
			children := c.pruneTree(version, strings.TrimLeft(full, "/"), n.Children)
			// The container folder only exists for remote addressing.
			if rel == "" || rel == domain.UCDDirName || rel == version {
				out = append(out, children...)
				continue
			}
			if len(children) == 0 {
				continue
			}
			n.Path = rel
			n.Children = children
			out = append(out, n)
			continue
		}

		if !domain.IsContainedPath(rel) || domain.IsSnapshotPath(rel) || !c.Filter.Match(rel) {
			continue
		}
		n.Path = rel
		out = append(out, n)
	}
	return out
}

// checkPath normalizes a requested file path and applies the filter.
func (c *Context) checkPath(version, p string) (string, error) {
	p = domain.NormalizePath(version, p)
	if !domain.IsContainedPath(p) {
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidPath, "invalid file path"), "path", p)
	}
	if !c.Filter.Match(p) {
		return "", zerr.With(zerr.Wrap(domain.ErrFilterRejected, "file is excluded by the path filter"), "path", p)
	}
	return p, nil
}
