// Package storetest builds store contexts for engine tests.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/ucdstore/internal/adapters/manifest"
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/core/ports"
	"go.trai.ch/ucdstore/internal/engine/store"
)

// SeedLockfile writes a lockfile tracking versions with empty entries.
func SeedLockfile(t testing.TB, b ports.StorageBackend, versions ...string) {
	t.Helper()
	lf := domain.NewLockfile()
	for _, v := range versions {
		lf.Versions[v] = domain.EmptyLockEntry(v)
	}
	require.NoError(t, manifest.NewStore(b).WriteLockfile(context.Background(), lf))
}

// New seeds a lockfile tracking versions and opens a store context over it.
func New(t testing.TB, api ports.RemoteAPI, b ports.StorageBackend, versions ...string) *store.Context {
	t.Helper()
	SeedLockfile(t, b, versions...)
	sc, err := store.New(context.Background(), store.Options{API: api, Backend: b})
	require.NoError(t, err)
	return sc
}

// Lockfile reads the lockfile of a backend.
func Lockfile(t testing.TB, b ports.StorageBackend) *domain.Lockfile {
	t.Helper()
	lf, err := manifest.NewStore(b).ReadLockfile(context.Background())
	require.NoError(t, err)
	return lf
}
