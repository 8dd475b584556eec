package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ucdstore/internal/adapters/backend"
	"go.trai.ch/ucdstore/internal/adapters/filter"
	"go.trai.ch/ucdstore/internal/adapters/ucdapi/ucdapitest"
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/core/ports/mocks"
	"go.trai.ch/ucdstore/internal/engine/store"
	"go.trai.ch/ucdstore/internal/engine/store/storetest"
	"go.uber.org/mock/gomock"
)

func TestGetFile_LocalFirst(t *testing.T) {
	t.Parallel()

	fake := newFake(t)
	b := backend.NewMemory(backend.WithFiles(map[string]string{"16.0.0/B.txt": "local copy"}))
	sc := storetest.New(t, fake.Client(), b, "16.0.0")

	data, err := sc.GetFile(context.Background(), "16.0.0", "B.txt")
	require.NoError(t, err)
	assert.Equal(t, "local copy", string(data))
	assert.Zero(t, fake.Requests(ucdapitest.KindFile))
}

func TestGetFile_RemoteIsCachedInStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFake(t)
	b := backend.NewMemory()
	sc := storetest.New(t, fake.Client(), b, "16.0.0")

	data, err := sc.GetFile(ctx, "16.0.0", "/16.0.0/ucd/extracted/D.txt")
	require.NoError(t, err)
	assert.Equal(t, "d", string(data))

	cached, err := b.Read(ctx, "16.0.0/extracted/D.txt")
	require.NoError(t, err)
	assert.Equal(t, "d", string(cached))

	_, err = sc.GetFile(ctx, "16.0.0", "extracted/D.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.Requests(ucdapitest.KindFile))
}

func TestGetFile_ReadOnlyBackendStillServes(t *testing.T) {
	t.Parallel()

	fake := newFake(t)
	b := backend.NewMemory()
	storetest.SeedLockfile(t, b, "16.0.0")
	ro := backend.NewFromFs(b.Fs(), backend.WithCapabilities(domain.ReadOnlyCapabilities))
	sc, err := store.New(context.Background(), store.Options{API: fake.Client(), Backend: ro})
	require.NoError(t, err)

	data, err := sc.GetFile(context.Background(), "16.0.0", "C.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestGetFile_CacheWriteFailureIsNotReturned(t *testing.T) {
	t.Parallel()

	fake := newFake(t)
	sc := storetest.New(t, fake.Client(), backend.NewMemory(), "16.0.0")

	ctrl := gomock.NewController(t)
	b := mocks.NewMockStorageBackend(ctrl)
	b.EXPECT().Capabilities().Return(domain.AllCapabilities).AnyTimes()
	b.EXPECT().Read(gomock.Any(), "16.0.0/C.txt").Return(nil, domain.ErrFileNotFound)
	b.EXPECT().Mkdir(gomock.Any(), "16.0.0").Return(nil)
	b.EXPECT().Write(gomock.Any(), "16.0.0/C.txt", []byte("new")).Return(errors.New("disk full"))

	f := mocks.NewMockPathFilter(ctrl)
	f.EXPECT().Match("C.txt").Return(true)

	sc.Backend = b
	sc.Filter = f

	data, err := sc.GetFile(context.Background(), "16.0.0", "C.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestGetFile_FilterRejectsBeforeAnyIO(t *testing.T) {
	t.Parallel()

	fake := newFake(t)
	sc := storetest.New(t, fake.Client(), backend.NewMemory(), "16.0.0")

	ctrl := gomock.NewController(t)
	f := mocks.NewMockPathFilter(ctrl)
	f.EXPECT().Match("extracted/D.txt").Return(false)
	sc.Backend = mocks.NewMockStorageBackend(ctrl)
	sc.Filter = f

	_, err := sc.GetFile(context.Background(), "16.0.0", "extracted/D.txt")
	require.ErrorIs(t, err, domain.ErrFilterRejected)
	assert.Zero(t, fake.Requests(ucdapitest.KindFile))
}

func TestGetFile_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f, err := filter.New(nil, []string{"**/B.txt"})
	require.NoError(t, err)

	b := backend.NewMemory()
	storetest.SeedLockfile(t, b, "16.0.0")
	sc, err := store.New(ctx, store.Options{API: newFake(t).Client(), Backend: b, Filter: f})
	require.NoError(t, err)

	_, err = sc.GetFile(ctx, "15.0.0", "A.txt")
	require.ErrorIs(t, err, domain.ErrVersionNotFound)

	_, err = sc.GetFile(ctx, "16.0.0", "B.txt")
	require.ErrorIs(t, err, domain.ErrFilterRejected)
	assert.Equal(t, "B.txt", domain.ErrorMetadata(err)["path"])

	_, err = sc.GetFile(ctx, "16.0.0", "../15.0.0/A.txt")
	require.ErrorIs(t, err, domain.ErrInvalidPath)

	_, err = sc.GetFile(ctx, "16.0.0", "missing.txt")
	require.ErrorIs(t, err, domain.ErrAPIFallbackFailure)
}

func TestListFiles(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFake(t)
	b := backend.NewMemory(backend.WithFiles(map[string]string{
		"15.0.0/A.txt":         "alpha",
		"15.0.0/snapshot.json": "{}",
	}))
	sc := storetest.New(t, fake.Client(), b, "15.0.0", "16.0.0")

	local, err := sc.ListFiles(ctx, "15.0.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"A.txt"}, local)
	assert.Zero(t, fake.Requests(ucdapitest.KindTree)+fake.Requests(ucdapitest.KindManifest))

	remote, err := sc.ListFiles(ctx, "16.0.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"B.txt", "C.txt", "extracted/D.txt"}, remote)
}

func TestFileTree(t *testing.T) {
	t.Parallel()

	f, err := filter.New(nil, []string{"C.txt"})
	require.NoError(t, err)
	b := backend.NewMemory()
	storetest.SeedLockfile(t, b, "16.0.0")
	sc, err := store.New(context.Background(), store.Options{API: newFake(t).Client(), Backend: b, Filter: f})
	require.NoError(t, err)

	tree, err := sc.FileTree(context.Background(), "16.0.0")
	require.NoError(t, err)
	require.Len(t, tree, 2)

	assert.Equal(t, "B.txt", tree[0].Path)
	assert.Equal(t, domain.NodeFile, tree[0].Type)
	assert.Equal(t, "extracted", tree[1].Path)
	assert.Equal(t, domain.NodeDirectory, tree[1].Type)
	require.Len(t, tree[1].Children, 1)
	assert.Equal(t, "extracted/D.txt", tree[1].Children[0].Path)
}
