// Package backend implements the storage backends a store can live on.
package backend

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StorageBackend = (*FS)(nil)

// FS implements ports.StorageBackend on top of an afero filesystem.
type FS struct {
	fs   afero.Fs
	caps domain.Capabilities
}

// Option configures an FS backend.
type Option func(*FS)

// WithCapabilities narrows the operations the backend allows.
func WithCapabilities(caps domain.Capabilities) Option {
	return func(b *FS) {
		b.caps = caps
	}
}

// WithFiles seeds the backend with files, keyed by store path.
// Seeding bypasses capability checks.
func WithFiles(files map[string]string) Option {
	return func(b *FS) {
		for p, content := range files {
			clean := cleanPath(p)
			_ = b.fs.MkdirAll(path.Dir(clean), domain.DirPerm)
			_ = afero.WriteFile(b.fs, clean, []byte(content), domain.FilePerm)
		}
	}
}

// NewLocal returns a backend rooted at dir on the local filesystem.
func NewLocal(dir string, opts ...Option) *FS {
	root := filepath.Clean(dir)
	return newFS(afero.NewBasePathFs(afero.NewOsFs(), root), opts...)
}

// NewMemory returns an in-memory backend.
func NewMemory(opts ...Option) *FS {
	return newFS(afero.NewMemMapFs(), opts...)
}

// NewFromFs wraps an arbitrary afero filesystem.
func NewFromFs(afs afero.Fs, opts ...Option) *FS {
	return newFS(afs, opts...)
}

func newFS(afs afero.Fs, opts ...Option) *FS {
	b := &FS{fs: afs, caps: domain.AllCapabilities}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Fs returns the underlying afero filesystem.
func (b *FS) Fs() afero.Fs {
	return b.fs
}

// Capabilities returns the operations the backend supports.
func (b *FS) Capabilities() domain.Capabilities {
	return b.caps
}

// Exists reports whether a file or directory exists at p.
func (b *FS) Exists(_ context.Context, p string) (bool, error) {
	if err := b.caps.Assert(domain.CapExists); err != nil {
		return false, err
	}
	ok, err := afero.Exists(b.fs, cleanPath(p))
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to check path"), "path", p)
	}
	return ok, nil
}

// Read returns the content of the file at p.
func (b *FS) Read(_ context.Context, p string) ([]byte, error) {
	if err := b.caps.Assert(domain.CapRead); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(b.fs, cleanPath(p))
	if err != nil {
		return nil, wrapFSError(err, "failed to read file", p)
	}
	return data, nil
}

// Write replaces the content of the file at p. The parent directory must exist.
func (b *FS) Write(_ context.Context, p string, data []byte) error {
	if err := b.caps.Assert(domain.CapWrite); err != nil {
		return err
	}
	clean := cleanPath(p)
	dir := path.Dir(clean)
	if dir != "/" {
		ok, err := afero.DirExists(b.fs, dir)
		if err != nil {
			return wrapFSError(err, "failed to check parent directory", p)
		}
		if !ok {
			return zerr.With(zerr.Wrap(domain.ErrFileNotFound, "parent directory does not exist"), "path", p)
		}
	}
	if err := atomicWriteFile(b.fs, clean, data); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write file"), "path", p)
	}
	return nil
}

// ListDir lists entries below dir.
func (b *FS) ListDir(_ context.Context, dir string, recursive bool) ([]string, error) {
	if err := b.caps.Assert(domain.CapListDir); err != nil {
		return nil, err
	}
	root := cleanPath(dir)
	info, err := b.fs.Stat(root)
	if err != nil {
		return nil, wrapFSError(err, "failed to list directory", dir)
	}
	if !info.IsDir() {
		return nil, zerr.With(zerr.Wrap(domain.ErrNotADirectory, "failed to list directory"), "path", dir)
	}

	var out []string
	if !recursive {
		entries, err := afero.ReadDir(b.fs, root)
		if err != nil {
			return nil, wrapFSError(err, "failed to list directory", dir)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() {
				name += "/"
			}
			out = append(out, name)
		}
		slices.Sort(out)
		return out, nil
	}

	err = afero.Walk(b.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel := strings.TrimPrefix(filepath.ToSlash(p), root)
		out = append(out, strings.TrimPrefix(rel, "/"))
		return nil
	})
	if err != nil {
		return nil, wrapFSError(err, "failed to walk directory", dir)
	}
	slices.Sort(out)
	return out, nil
}

// Mkdir creates dir and any missing parents.
func (b *FS) Mkdir(_ context.Context, dir string) error {
	if err := b.caps.Assert(domain.CapMkdir); err != nil {
		return err
	}
	if err := b.fs.MkdirAll(cleanPath(dir), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", dir)
	}
	return nil
}

// Remove deletes the file or directory tree at p.
func (b *FS) Remove(_ context.Context, p string) error {
	if err := b.caps.Assert(domain.CapRemove); err != nil {
		return err
	}
	clean := cleanPath(p)
	if clean == "/" {
		return zerr.With(zerr.Wrap(domain.ErrInvalidPath, "refusing to remove store root"), "path", p)
	}
	if err := b.fs.RemoveAll(clean); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove path"), "path", p)
	}
	return nil
}

// Stat returns metadata of the entry at p.
func (b *FS) Stat(_ context.Context, p string) (domain.FileStat, error) {
	if err := b.caps.Assert(domain.CapStat); err != nil {
		return domain.FileStat{}, err
	}
	info, err := b.fs.Stat(cleanPath(p))
	if err != nil {
		return domain.FileStat{}, wrapFSError(err, "failed to stat path", p)
	}
	st := domain.FileStat{Type: domain.NodeFile, Size: info.Size(), ModTime: info.ModTime()}
	if info.IsDir() {
		st.Type = domain.NodeDirectory
		st.Size = 0
	}
	return st, nil
}

// cleanPath resolves p against the store root. The result never escapes the root.
func cleanPath(p string) string {
	return path.Clean("/" + filepath.ToSlash(p))
}

func wrapFSError(err error, msg, p string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(domain.ErrFileNotFound, msg), "path", p)
	}
	return zerr.With(zerr.Wrap(err, msg), "path", p)
}

// atomicWriteFile writes data to a temp file next to p and renames it into place.
func atomicWriteFile(afs afero.Fs, p string, data []byte) error {
	tmp, err := afero.TempFile(afs, path.Dir(p), ".ucd-write-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		if ok, _ := afero.Exists(afs, tmpName); ok {
			_ = afs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := afs.Chmod(tmpName, domain.FilePerm); err != nil {
		return err
	}
	return afs.Rename(tmpName, p)
}
