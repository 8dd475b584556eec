package analyze_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ucdstore/internal/adapters/backend"
	"go.trai.ch/ucdstore/internal/adapters/proxy"
	"go.trai.ch/ucdstore/internal/adapters/ucdapi/ucdapitest"
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/engine/analyze"
	"go.trai.ch/ucdstore/internal/engine/mirror"
	"go.trai.ch/ucdstore/internal/engine/store"
	"go.trai.ch/ucdstore/internal/engine/store/storetest"
)

func newFake(t *testing.T) *ucdapitest.Server {
	t.Helper()
	fake := ucdapitest.New(t)
	fake.AddVersion("16.0.0", map[string]string{
		"UnicodeData.txt":      "0041;A",
		"emoji/emoji-data.txt": "# emoji",
		"Unihan.zip":           "PK",
	})
	return fake
}

func TestRun_CompleteAfterMirror(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sc := storetest.New(t, newFake(t).Client(), backend.NewMemory(), "16.0.0")
	_, err := mirror.Run(ctx, sc, mirror.Options{})
	require.NoError(t, err)

	report, err := analyze.Run(ctx, sc, analyze.Options{})
	require.NoError(t, err)

	a := report.Versions["16.0.0"]
	require.NotNil(t, a)
	assert.True(t, a.IsComplete)
	assert.Equal(t, []string{"UnicodeData.txt", "Unihan.zip", "emoji/emoji-data.txt"}, a.Present)
	assert.Empty(t, a.Orphaned)
	assert.Empty(t, a.Missing)
	assert.Equal(t, map[string]int{"txt": 2, "zip": 1}, a.FileTypes)
	assert.Empty(t, a.Error)
}

func TestRun_ClassifiesFiles(t *testing.T) {
	t.Parallel()

	b := backend.NewMemory(backend.WithFiles(map[string]string{
		"16.0.0/UnicodeData.txt": "0041;A",
		"16.0.0/README":          "extra",
		"16.0.0/old/Stale.txt":   "stale",
		"16.0.0/snapshot.json":   "{}",
	}))
	sc := storetest.New(t, newFake(t).Client(), b, "16.0.0")

	report, err := analyze.Run(context.Background(), sc, analyze.Options{})
	require.NoError(t, err)

	a := report.Versions["16.0.0"]
	assert.Equal(t, []string{"UnicodeData.txt"}, a.Present)
	assert.Equal(t, []string{"README", "old/Stale.txt"}, a.Orphaned)
	assert.Equal(t, []string{"Unihan.zip", "emoji/emoji-data.txt"}, a.Missing)
	assert.False(t, a.IsComplete)
	assert.Equal(t, 3, a.ExpectedCount())
	assert.Equal(t, map[string]int{"txt": 2, domain.NoExtension: 1}, a.FileTypes)
}

func TestRun_NotMirroredVersionIsAllMissing(t *testing.T) {
	t.Parallel()

	sc := storetest.New(t, newFake(t).Client(), backend.NewMemory(), "16.0.0")

	report, err := analyze.Run(context.Background(), sc, analyze.Options{})
	require.NoError(t, err)

	a := report.Versions["16.0.0"]
	assert.Empty(t, a.Present)
	assert.Len(t, a.Missing, 3)
	assert.Empty(t, a.Error)
	assert.False(t, a.IsComplete)
}

func TestRun_VersionErrorsAreIsolated(t *testing.T) {
	t.Parallel()

	fake := newFake(t)
	sc := storetest.New(t, fake.Client(), backend.NewMemory(), "14.0.0", "16.0.0")

	report, err := analyze.Run(context.Background(), sc, analyze.Options{})
	require.NoError(t, err)
	require.Len(t, report.Versions, 2)

	broken := report.Versions["14.0.0"]
	assert.NotEmpty(t, broken.Error)
	assert.False(t, broken.IsComplete)

	ok := report.Versions["16.0.0"]
	assert.Empty(t, ok.Error)
	assert.Len(t, ok.Missing, 3)
}

func TestRun_UnknownVersion(t *testing.T) {
	t.Parallel()

	sc := storetest.New(t, newFake(t).Client(), backend.NewMemory(), "16.0.0")
	_, err := analyze.Run(context.Background(), sc, analyze.Options{Versions: []string{"15.0.0"}})
	require.ErrorIs(t, err, domain.ErrVersionNotFound)
}

func TestRun_ReadOnlyHTTPBackend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFake(t)

	// A writable store is mirrored, then served read-only through the raw file proxy.
	origin := backend.NewMemory()
	writer := storetest.New(t, fake.Client(), origin, "16.0.0")
	_, err := mirror.Run(ctx, writer, mirror.Options{})
	require.NoError(t, err)

	srv := httptest.NewServer(proxy.NewServer(origin, nil))
	t.Cleanup(srv.Close)
	remote := backend.NewHTTP(srv.URL, backend.WithHTTPClient(srv.Client()))

	sc, err := store.New(ctx, store.Options{API: fake.Client(), Backend: remote})
	require.NoError(t, err)

	report, err := analyze.Run(ctx, sc, analyze.Options{})
	require.NoError(t, err)
	assert.True(t, report.Versions["16.0.0"].IsComplete)

	_, err = mirror.Run(ctx, sc, mirror.Options{})
	require.ErrorIs(t, err, domain.ErrUnsupportedOperation)
	assert.Equal(t, []string{"write", "mkdir"}, domain.ErrorMetadata(err)["missing"])
}
