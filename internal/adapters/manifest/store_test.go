package manifest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ucdstore/internal/adapters/backend"
	"go.trai.ch/ucdstore/internal/adapters/manifest"
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestStore_LockfileRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := backend.NewLocal(t.TempDir())
	require.NoError(t, b.Mkdir(ctx, ""))
	s := manifest.NewStore(b)

	ok, err := s.LockfileExists(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	lf := domain.NewLockfile()
	lf.Versions["16.0.0"] = domain.LockEntry{
		SnapshotPath: "16.0.0/snapshot.json",
		FileCount:    2,
		TotalSize:    42,
		UpdatedAt:    time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC),
	}
	lf.Versions["15.1.0"] = domain.EmptyLockEntry("15.1.0")
	lf.Filters = &domain.LockFilters{Exclude: []string{"*.zip"}}
	require.NoError(t, s.WriteLockfile(ctx, lf))

	ok, err = s.LockfileExists(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.ReadLockfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, lf, got)
	assert.Equal(t, []string{"15.1.0", "16.0.0"}, got.TrackedVersions())
}

func TestStore_SnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := manifest.NewStore(backend.NewMemory())

	snap := domain.NewSnapshot("16.0.0")
	snap.Files["UnicodeData.txt"] = domain.SnapshotFile{Hash: domain.HashString("a"), Size: 1}
	snap.Files["emoji/emoji-data.txt"] = domain.SnapshotFile{Hash: domain.HashString("bc"), Size: 2}
	require.NoError(t, s.WriteSnapshot(ctx, "16.0.0", snap))

	got, err := s.ReadSnapshot(ctx, "16.0.0")
	require.NoError(t, err)
	assert.Equal(t, snap, got)
	assert.Equal(t, int64(3), got.TotalSize())
	assert.Equal(t, []string{"UnicodeData.txt", "emoji/emoji-data.txt"}, got.Paths())

	assert.Nil(t, s.ReadSnapshotOrNil(ctx, "15.0.0"))
}

func TestStore_RejectsInvalidManifests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		content string
		read    func(*manifest.Store) error
	}{
		{
			name:    "wrong lockfile version",
			path:    domain.LockfileName,
			content: `{"lockfileVersion": 2, "versions": {}}`,
			read: func(s *manifest.Store) error {
				_, err := s.ReadLockfile(context.Background())
				return err
			},
		},
		{
			name:    "lockfile not json",
			path:    domain.LockfileName,
			content: `{"lockfileVersion": 1,`,
			read: func(s *manifest.Store) error {
				_, err := s.ReadLockfile(context.Background())
				return err
			},
		},
		{
			name:    "lockfile entry missing fields",
			path:    domain.LockfileName,
			content: `{"lockfileVersion": 1, "versions": {"16.0.0": {"fileCount": 1}}}`,
			read: func(s *manifest.Store) error {
				_, err := s.ReadLockfile(context.Background())
				return err
			},
		},
		{
			name:    "snapshot bad hash",
			path:    "16.0.0/snapshot.json",
			content: `{"unicodeVersion": "16.0.0", "files": {"a.txt": {"hash": "md5:00", "size": 1}}}`,
			read: func(s *manifest.Store) error {
				_, err := s.ReadSnapshot(context.Background(), "16.0.0")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := manifest.NewStore(backend.NewMemory(backend.WithFiles(map[string]string{tt.path: tt.content})))

			err := tt.read(s)
			require.ErrorIs(t, err, domain.ErrInvalidManifest)
			meta := domain.ErrorMetadata(err)
			assert.Equal(t, tt.path, meta["path"])
			assert.NotEmpty(t, meta["details"])
		})
	}
}

func TestStore_ReadLockfileOrDefault(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	s := manifest.NewStore(backend.NewMemory())
	assert.Nil(t, s.ReadLockfileOrDefault(ctx))

	s = manifest.NewStore(backend.NewMemory(backend.WithFiles(map[string]string{
		domain.LockfileName: `{"lockfileVersion": 3, "versions": {}}`,
	})))
	assert.Nil(t, s.ReadLockfileOrDefault(ctx))
}

func TestStore_WritesAreNoOpsWhenReadOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := backend.NewMemory(backend.WithCapabilities(domain.ReadOnlyCapabilities))
	s := manifest.NewStore(b)

	require.NoError(t, s.WriteLockfile(ctx, domain.NewLockfile()))
	require.NoError(t, s.WriteSnapshot(ctx, "16.0.0", domain.NewSnapshot("16.0.0")))

	ok, err := b.Exists(ctx, domain.LockfileName)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SnapshotWithoutMkdir(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	caps := domain.AllCapabilities.Without(domain.CapMkdir)

	s := manifest.NewStore(backend.NewMemory(backend.WithCapabilities(caps)))
	err := s.WriteSnapshot(ctx, "16.0.0", domain.NewSnapshot("16.0.0"))
	require.ErrorIs(t, err, domain.ErrUnsupportedOperation)

	s = manifest.NewStore(backend.NewMemory(
		backend.WithFiles(map[string]string{"16.0.0/UnicodeData.txt": "x"}),
		backend.WithCapabilities(caps),
	))
	require.NoError(t, s.WriteSnapshot(ctx, "16.0.0", domain.NewSnapshot("16.0.0")))
}

func TestStore_LockfileExistsWithoutExistsCapability(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctrl := gomock.NewController(t)
	b := mocks.NewMockStorageBackend(ctrl)
	b.EXPECT().Capabilities().Return(domain.NewCapabilities(domain.CapRead)).AnyTimes()

	b.EXPECT().Read(gomock.Any(), domain.LockfileName).Return(nil, domain.ErrFileNotFound)
	ok, err := manifest.NewStore(b).LockfileExists(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	b.EXPECT().Read(gomock.Any(), domain.LockfileName).Return(nil, errors.New("connection reset"))
	_, err = manifest.NewStore(b).LockfileExists(ctx)
	require.Error(t, err)
}

func TestStore_WriteLockfileError(t *testing.T) {
	t.Parallel()

	writeErr := errors.New("disk full")
	ctrl := gomock.NewController(t)
	b := mocks.NewMockStorageBackend(ctrl)
	b.EXPECT().Capabilities().Return(domain.AllCapabilities).AnyTimes()
	b.EXPECT().Write(gomock.Any(), domain.LockfileName, gomock.Any()).Return(writeErr)

	err := manifest.NewStore(b).WriteLockfile(context.Background(), domain.NewLockfile())
	require.ErrorIs(t, err, writeErr)
}
