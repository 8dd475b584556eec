package backend_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ucdstore/internal/adapters/backend"
	"go.trai.ch/ucdstore/internal/adapters/proxy"
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/core/ports"
)

func TestFS_Contract(t *testing.T) {
	t.Parallel()

	backends := map[string]func(t *testing.T) ports.StorageBackend{
		"memory": func(_ *testing.T) ports.StorageBackend { return backend.NewMemory() },
		"local":  func(t *testing.T) ports.StorageBackend { return backend.NewLocal(t.TempDir()) },
	}

	for name, newBackend := range backends {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			b := newBackend(t)

			assert.Equal(t, domain.AllCapabilities, b.Capabilities())

			require.NoError(t, b.Mkdir(ctx, "16.0.0/emoji"))
			require.NoError(t, b.Write(ctx, "16.0.0/UnicodeData.txt", []byte("0041;LATIN CAPITAL LETTER A")))
			require.NoError(t, b.Write(ctx, "16.0.0/emoji/emoji-data.txt", []byte("# emoji")))

			ok, err := b.Exists(ctx, "16.0.0/UnicodeData.txt")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = b.Exists(ctx, "15.0.0")
			require.NoError(t, err)
			assert.False(t, ok)

			data, err := b.Read(ctx, "/16.0.0/UnicodeData.txt")
			require.NoError(t, err)
			assert.Equal(t, "0041;LATIN CAPITAL LETTER A", string(data))

			flat, err := b.ListDir(ctx, "16.0.0", false)
			require.NoError(t, err)
			assert.Equal(t, []string{"UnicodeData.txt", "emoji/"}, flat)

			all, err := b.ListDir(ctx, "16.0.0", true)
			require.NoError(t, err)
			assert.Equal(t, []string{"UnicodeData.txt", "emoji/emoji-data.txt"}, all)

			st, err := b.Stat(ctx, "16.0.0/emoji/emoji-data.txt")
			require.NoError(t, err)
			assert.Equal(t, domain.NodeFile, st.Type)
			assert.Equal(t, int64(7), st.Size)

			st, err = b.Stat(ctx, "16.0.0/emoji")
			require.NoError(t, err)
			assert.True(t, st.IsDir())

			require.NoError(t, b.Remove(ctx, "16.0.0/emoji"))
			all, err = b.ListDir(ctx, "16.0.0", true)
			require.NoError(t, err)
			assert.Equal(t, []string{"UnicodeData.txt"}, all)

			_, err = b.Read(ctx, "16.0.0/missing.txt")
			require.ErrorIs(t, err, domain.ErrFileNotFound)
		})
	}
}

func TestFS_WriteRequiresParent(t *testing.T) {
	t.Parallel()

	b := backend.NewMemory()
	err := b.Write(context.Background(), "16.0.0/UnicodeData.txt", []byte("x"))
	require.ErrorIs(t, err, domain.ErrFileNotFound)
}

func TestFS_PathsStayInsideRoot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	storeRoot := filepath.Join(root, "store")
	b := backend.NewLocal(storeRoot)

	require.NoError(t, b.Mkdir(ctx, "."))
	require.NoError(t, b.Write(ctx, "../escape.txt", []byte("x")))

	_, err := os.Stat(filepath.Join(root, "escape.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(storeRoot, "escape.txt"))
	require.NoError(t, err)

	err = b.Remove(ctx, "/")
	require.ErrorIs(t, err, domain.ErrInvalidPath)
}

func TestFS_CapabilityGate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := backend.NewMemory(
		backend.WithFiles(map[string]string{"16.0.0/ReadMe.txt": "hello"}),
		backend.WithCapabilities(domain.ReadOnlyCapabilities),
	)

	data, err := b.Read(ctx, "16.0.0/ReadMe.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.ErrorIs(t, b.Write(ctx, "16.0.0/ReadMe.txt", nil), domain.ErrUnsupportedOperation)
	require.ErrorIs(t, b.Mkdir(ctx, "17.0.0"), domain.ErrUnsupportedOperation)
	require.ErrorIs(t, b.Remove(ctx, "16.0.0"), domain.ErrUnsupportedOperation)
}

func TestHTTP_ReadsThroughProxy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := backend.NewMemory(backend.WithFiles(map[string]string{
		"16.0.0/UnicodeData.txt":         "data",
		"16.0.0/emoji/emoji-data.txt":    "emoji",
		"16.0.0/auxiliary/WordBreak.txt": "wb",
	}))
	srv := httptest.NewServer(proxy.NewServer(source, nil))
	t.Cleanup(srv.Close)

	b := backend.NewHTTP(srv.URL, backend.WithHTTPClient(srv.Client()))
	assert.Equal(t, domain.ReadOnlyCapabilities, b.Capabilities())

	data, err := b.Read(ctx, "16.0.0/UnicodeData.txt")
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	ok, err := b.Exists(ctx, "16.0.0/emoji")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Exists(ctx, "15.0.0")
	require.NoError(t, err)
	assert.False(t, ok)

	flat, err := b.ListDir(ctx, "16.0.0", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"UnicodeData.txt", "auxiliary/", "emoji/"}, flat)

	all, err := b.ListDir(ctx, "16.0.0", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"UnicodeData.txt", "auxiliary/WordBreak.txt", "emoji/emoji-data.txt"}, all)

	st, err := b.Stat(ctx, "16.0.0/UnicodeData.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(4), st.Size)

	_, err = b.ListDir(ctx, "16.0.0/UnicodeData.txt", false)
	require.ErrorIs(t, err, domain.ErrNotADirectory)

	require.ErrorIs(t, b.Write(ctx, "16.0.0/x.txt", nil), domain.ErrUnsupportedOperation)
	require.ErrorIs(t, b.Mkdir(ctx, "17.0.0"), domain.ErrUnsupportedOperation)
	require.ErrorIs(t, b.Remove(ctx, "16.0.0"), domain.ErrUnsupportedOperation)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	b, err := backend.Open(domain.StoreConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.Equal(t, domain.AllCapabilities, b.Capabilities())

	b, err = backend.Open(domain.StoreConfig{Backend: "http", Remote: "http://localhost:1"})
	require.NoError(t, err)
	assert.Equal(t, domain.ReadOnlyCapabilities, b.Capabilities())

	_, err = backend.Open(domain.StoreConfig{Backend: "http"})
	require.ErrorIs(t, err, domain.ErrUnknownBackend)

	_, err = backend.Open(domain.StoreConfig{Backend: "s3"})
	require.ErrorIs(t, err, domain.ErrUnknownBackend)
}
