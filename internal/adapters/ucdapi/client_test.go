package ucdapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ucdstore/internal/adapters/ucdapi"
	"go.trai.ch/ucdstore/internal/adapters/ucdapi/ucdapitest"
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newFake(t *testing.T) *ucdapitest.Server {
	t.Helper()
	fake := ucdapitest.New(t)
	fake.AddVersion("16.0.0", map[string]string{
		"UnicodeData.txt":      "0041;A",
		"emoji/emoji-data.txt": "# emoji",
	})
	fake.AddVersion("15.1.0", map[string]string{"UnicodeData.txt": "0041;A"})
	return fake
}

func TestClient_Versions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFake(t)
	c := fake.Client()

	cfg, err := c.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"15.1.0", "16.0.0"}, cfg.Versions)

	versions, err := c.ListVersions(ctx)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "15.1.0", versions[0].Version)
}

func TestClient_ExpectedFilesFallsBackToTree(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFake(t)

	files, err := fake.Client().GetExpectedFiles(ctx, "16.0.0")
	require.NoError(t, err)
	assert.Equal(t, []domain.ExpectedFile{
		{Name: "UnicodeData.txt", RemotePath: "16.0.0/ucd/UnicodeData.txt", StorePath: "UnicodeData.txt"},
		{Name: "emoji-data.txt", RemotePath: "16.0.0/ucd/emoji/emoji-data.txt", StorePath: "emoji/emoji-data.txt"},
	}, files)
	assert.Equal(t, 1, fake.Requests(ucdapitest.KindManifest))
	assert.Equal(t, 1, fake.Requests(ucdapitest.KindTree))
}

func TestClient_ExpectedFilesFromManifest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFake(t)
	fake.EnableManifest()

	files, err := fake.Client().GetExpectedFiles(ctx, "16.0.0")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "emoji/emoji-data.txt", files[1].StorePath)
	assert.Equal(t, 0, fake.Requests(ucdapitest.KindTree))
}

func TestClient_FileContent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFake(t)

	content, err := fake.Client().GetFileContent(ctx, "/16.0.0/ucd/emoji/emoji-data.txt")
	require.NoError(t, err)
	assert.Equal(t, "# emoji", string(content.Data))
	assert.Equal(t, int64(7), content.ContentLength)
	assert.Contains(t, content.ContentType, "text/plain")
}

func TestClient_StatusErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFake(t)
	fake.FailFile("16.0.0", "UnicodeData.txt")
	c := fake.Client()

	_, err := c.GetFileContent(ctx, ucdapitest.RemotePath("16.0.0", "UnicodeData.txt"))
	require.ErrorIs(t, err, domain.ErrAPIFallbackFailure)
	assert.Equal(t, http.StatusInternalServerError, domain.ErrorMetadata(err)["status"])

	_, err = c.GetFileTree(ctx, "99.0.0")
	require.ErrorIs(t, err, domain.ErrAPIFallbackFailure)
	meta := domain.ErrorMetadata(err)
	assert.Equal(t, http.StatusNotFound, meta["status"])
	assert.Equal(t, "99.0.0", meta["version"])
}

func TestClient_MalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	t.Cleanup(srv.Close)

	_, err := ucdapi.New(srv.URL).ListVersions(context.Background())
	require.ErrorIs(t, err, domain.ErrAPIFallbackFailure)
}

func TestClient_ContentCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFake(t)
	c := fake.Client(ucdapi.WithCacheDir(t.TempDir()))
	remote := ucdapitest.RemotePath("16.0.0", "UnicodeData.txt")

	first, err := c.GetFileContent(ctx, remote)
	require.NoError(t, err)
	second, err := c.GetFileContent(ctx, remote)
	require.NoError(t, err)

	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, 1, fake.Requests(ucdapitest.KindFile))
}

func TestClient_ContentCacheOnMemoryFs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFake(t)
	mem := afero.NewMemMapFs()
	c := fake.Client(ucdapi.WithCacheFs(mem))
	remote := ucdapitest.RemotePath("16.0.0", "UnicodeData.txt")

	_, err := c.GetFileContent(ctx, remote)
	require.NoError(t, err)
	_, err = c.GetFileContent(ctx, remote)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.Requests(ucdapitest.KindFile))

	entries, err := afero.ReadDir(mem, "/")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// A body that no longer matches its recorded hash is fetched again.
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".bin") {
			require.NoError(t, afero.WriteFile(mem, "/"+e.Name(), []byte("tampered"), 0o600))
		}
	}
	content, err := c.GetFileContent(ctx, remote)
	require.NoError(t, err)
	assert.Equal(t, "0041;A", string(content.Data))
	assert.Equal(t, 2, fake.Requests(ucdapitest.KindFile))
}

func TestClient_CacheWriteFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFake(t)

	blocker := t.TempDir() + "/blocker"
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0o600))

	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn("failed to cache file content", gomock.Any()).Times(1)

	c := fake.Client(ucdapi.WithCacheDir(blocker+"/cache"), ucdapi.WithLogger(logger))
	content, err := c.GetFileContent(ctx, ucdapitest.RemotePath("16.0.0", "UnicodeData.txt"))
	require.NoError(t, err)
	assert.Equal(t, "0041;A", string(content.Data))
}
