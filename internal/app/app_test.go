package app_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ucdstore/internal/adapters/backend"
	"go.trai.ch/ucdstore/internal/adapters/logger"
	"go.trai.ch/ucdstore/internal/adapters/telemetry"
	"go.trai.ch/ucdstore/internal/adapters/ucdapi/ucdapitest"
	"go.trai.ch/ucdstore/internal/app"
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/core/ports/mocks"
	"go.trai.ch/ucdstore/internal/engine/analyze"
	"go.trai.ch/ucdstore/internal/engine/compare"
	"go.trai.ch/ucdstore/internal/engine/mirror"
	"go.trai.ch/ucdstore/internal/engine/store"
	"go.trai.ch/ucdstore/internal/engine/syncer"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	app     *app.App
	fake    *ucdapitest.Server
	backend *backend.FS
	logs    *bytes.Buffer
}

func newFixture(t *testing.T, cfg *domain.Config) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(gomock.Any()).Return(cfg, nil).AnyTimes()

	fake := ucdapitest.New(t)
	fake.AddVersion("15.0.0", map[string]string{"A.txt": "alpha", "B.txt": "original"})
	fake.AddVersion("16.0.0", map[string]string{"B.txt": "modified", "C.txt": "new"})

	var logs bytes.Buffer
	log := logger.New()
	log.SetOutput(&logs)

	b := backend.NewMemory()
	a := app.New(loader, log, telemetry.NewNoOp()).
		WithRemoteAPI(fake.Client()).
		WithBackend(b)
	return &fixture{app: a, fake: fake, backend: b, logs: &logs}
}

func TestApp_InitAndMirror(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, domain.DefaultConfig())

	versions, err := f.app.Init(ctx, app.InitOptions{Versions: []string{"16.0.0"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"16.0.0"}, versions)

	report, err := f.app.Mirror(ctx, mirror.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"B.txt", "C.txt"}, report.Versions["16.0.0"].Downloaded)

	analysis, err := f.app.Analyze(ctx, analyze.Options{})
	require.NoError(t, err)
	assert.True(t, analysis.Versions["16.0.0"].IsComplete)

	data, err := f.app.GetFile(ctx, "16.0.0", "C.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	files, err := f.app.ListFiles(ctx, "16.0.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"B.txt", "C.txt"}, files)
}

func TestApp_ConfigVersionsBootstrap(t *testing.T) {
	t.Parallel()

	cfg := domain.DefaultConfig()
	cfg.Versions = []string{"15.0.0"}
	f := newFixture(t, cfg)

	versions, err := f.app.Init(context.Background(), app.InitOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"15.0.0"}, versions)
}

func TestApp_MirrorWithoutBootstrap(t *testing.T) {
	t.Parallel()

	cfg := domain.DefaultConfig()
	cfg.Bootstrap = false
	f := newFixture(t, cfg)

	_, err := f.app.Mirror(context.Background(), mirror.Options{})
	require.ErrorIs(t, err, domain.ErrLockfileMissing)
	assert.Zero(t, f.fake.TotalRequests())
}

func TestApp_SyncCompareVerify(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, domain.DefaultConfig())

	res, err := f.app.Sync(ctx, syncer.Options{})
	require.NoError(t, err)
	// The store is bootstrapped with every available version, so sync only fills them.
	assert.Empty(t, res.Added)
	assert.Equal(t, []string{"15.0.0", "16.0.0"}, res.Unchanged)
	require.NotNil(t, res.Mirror)
	assert.Equal(t, []string{"15.0.0", "16.0.0"}, res.Mirror.SortedVersions())

	cmp, err := f.app.Compare(ctx, compare.Options{From: "15.0.0", To: "16.0.0"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C.txt"}, cmp.Added)
	assert.Equal(t, []string{"A.txt"}, cmp.Removed)
	require.Len(t, cmp.Modified, 1)

	result, err := f.app.Verify(ctx, store.VerifyOptions{RequireAvailable: true})
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestApp_Configure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.DefaultConfig())
	require.NoError(t, f.app.Configure("", app.Overrides{
		StorePath:   "/srv/ucd",
		APIURL:      "https://example.test",
		Concurrency: 9,
		LogLevel:    "warn",
	}))

	cfg, err := f.app.Config()
	require.NoError(t, err)
	assert.Equal(t, "/srv/ucd", cfg.Store.Path)
	assert.Equal(t, "https://example.test", cfg.API.BaseURL)
	assert.Equal(t, 9, cfg.Concurrency)

	_, err = f.app.Init(context.Background(), app.InitOptions{Versions: []string{"16.0.0"}})
	require.NoError(t, err)
	assert.NotContains(t, f.logs.String(), "level=INFO")
}

func TestApp_ConfigureLoadError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load("missing.yaml").
		Return(nil, zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, "failed to read config file"), "path", "missing.yaml"))

	a := app.New(loader, mocks.NewMockLogger(ctrl), telemetry.NewNoOp())
	err := a.Configure("missing.yaml", app.Overrides{})
	require.ErrorIs(t, err, domain.ErrConfigReadFailed)
}

func TestApp_Handler(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, domain.DefaultConfig())
	_, err := f.app.Init(ctx, app.InitOptions{Versions: []string{"16.0.0"}})
	require.NoError(t, err)
	_, err = f.app.Mirror(ctx, mirror.Options{})
	require.NoError(t, err)

	h, err := f.app.Handler()
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	resp, err := srv.Client().Get(srv.URL + backend.RawPrefix + "/16.0.0/C.txt")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "new", string(body))
}
