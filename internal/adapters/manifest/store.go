// Package manifest persists the store lockfile and per-version snapshots.
package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"path"

	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/core/ports"
	"go.trai.ch/zerr"
)

// Store reads and writes the lockfile and snapshots of one store root.
type Store struct {
	backend ports.StorageBackend
}

// NewStore creates a Store over the given backend.
func NewStore(b ports.StorageBackend) *Store {
	return &Store{backend: b}
}

// LockfileExists reports whether the store root has a lockfile.
func (s *Store) LockfileExists(ctx context.Context) (bool, error) {
	if s.backend.Capabilities().Has(domain.CapExists) {
		return s.backend.Exists(ctx, domain.LockfileName)
	}
	_, err := s.backend.Read(ctx, domain.LockfileName)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrFileNotFound) {
		return false, nil
	}
	return false, err
}

// ReadLockfile reads and validates the lockfile.
func (s *Store) ReadLockfile(ctx context.Context) (*domain.Lockfile, error) {
	data, err := s.backend.Read(ctx, domain.LockfileName)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read lockfile")
	}
	if err := validate(lockfileSchema, domain.LockfileName, data); err != nil {
		return nil, err
	}

	var lf domain.Lockfile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, invalidManifest(domain.LockfileName, []string{err.Error()})
	}
	if lf.Versions == nil {
		lf.Versions = make(map[string]domain.LockEntry)
	}
	return &lf, nil
}

// ReadLockfileOrDefault returns the lockfile, or nil when it is absent or unreadable.
func (s *Store) ReadLockfileOrDefault(ctx context.Context) *domain.Lockfile {
	lf, err := s.ReadLockfile(ctx)
	if err != nil {
		return nil
	}
	return lf
}

// WriteLockfile persists lf. It is a no-op on backends without write support.
func (s *Store) WriteLockfile(ctx context.Context, lf *domain.Lockfile) error {
	if !s.backend.Capabilities().Has(domain.CapWrite) {
		return nil
	}
	out := *lf
	out.Version = domain.LockfileVersion
	if out.Versions == nil {
		out.Versions = make(map[string]domain.LockEntry)
	}

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal lockfile")
	}
	if err := s.backend.Write(ctx, domain.LockfileName, append(data, '\n')); err != nil {
		return zerr.Wrap(err, "failed to write lockfile")
	}
	return nil
}

// ReadSnapshot reads and validates the snapshot of a version.
func (s *Store) ReadSnapshot(ctx context.Context, version string) (*domain.Snapshot, error) {
	p := domain.SnapshotPath(version)
	data, err := s.backend.Read(ctx, p)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read snapshot"), "version", version)
	}
	if err := validate(snapshotSchema, p, data); err != nil {
		return nil, err
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, invalidManifest(p, []string{err.Error()})
	}
	if snap.Files == nil {
		snap.Files = make(map[string]domain.SnapshotFile)
	}
	return &snap, nil
}

// ReadSnapshotOrNil returns the snapshot of a version, or nil when it is absent or unreadable.
func (s *Store) ReadSnapshotOrNil(ctx context.Context, version string) *domain.Snapshot {
	snap, err := s.ReadSnapshot(ctx, version)
	if err != nil {
		return nil
	}
	return snap
}

// WriteSnapshot persists the snapshot of a version. It is a no-op on backends without write support.
// The version directory is created when the backend supports mkdir; otherwise it must already exist.
func (s *Store) WriteSnapshot(ctx context.Context, version string, snap *domain.Snapshot) error {
	caps := s.backend.Capabilities()
	if !caps.Has(domain.CapWrite) {
		return nil
	}

	p := domain.SnapshotPath(version)
	dir := path.Dir(p)
	switch {
	case caps.Has(domain.CapMkdir):
		if err := s.backend.Mkdir(ctx, dir); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to create snapshot directory"), "version", version)
		}
	case caps.Has(domain.CapExists):
		ok, err := s.backend.Exists(ctx, dir)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to check snapshot directory"), "version", version)
		}
		if !ok {
			err := caps.Assert(domain.CapMkdir)
			err = zerr.Wrap(err, "snapshot directory does not exist and cannot be created")
			return zerr.With(err, "path", dir)
		}
	}

	out := *snap
	out.UnicodeVersion = version
	if out.Files == nil {
		out.Files = make(map[string]domain.SnapshotFile)
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal snapshot")
	}
	if err := s.backend.Write(ctx, p, append(data, '\n')); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write snapshot"), "version", version)
	}
	return nil
}
