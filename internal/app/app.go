// Package app implements the application layer for ucdstore.
package app

import (
	"context"
	"net/http"
	"slices"

	"go.trai.ch/ucdstore/internal/adapters/backend"   //nolint:depguard // Wired in app layer
	"go.trai.ch/ucdstore/internal/adapters/filter"    //nolint:depguard // Wired in app layer
	"go.trai.ch/ucdstore/internal/adapters/proxy"     //nolint:depguard // Wired in app layer
	"go.trai.ch/ucdstore/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/ucdstore/internal/adapters/ucdapi"    //nolint:depguard // Wired in app layer
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/core/ports"
	"go.trai.ch/ucdstore/internal/engine/analyze"
	"go.trai.ch/ucdstore/internal/engine/compare"
	"go.trai.ch/ucdstore/internal/engine/mirror"
	"go.trai.ch/ucdstore/internal/engine/store"
	"go.trai.ch/ucdstore/internal/engine/syncer"
	"go.trai.ch/zerr"
)

// logSettings is implemented by loggers whose output can be reconfigured at runtime.
type logSettings interface {
	SetLevel(level domain.LogLevel)
	SetJSON(enable bool)
	SetFile(path string)
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	recorder     ports.Telemetry
	telemetry    ports.Telemetry

	// api and backend are injected replacements; opened* are built from cfg.
	api           ports.RemoteAPI
	backend       ports.StorageBackend
	openedAPI     ports.RemoteAPI
	openedBackend ports.StorageBackend
	cfg           *domain.Config
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, logger ports.Logger, tel ports.Telemetry) *App {
	return &App{
		configLoader: loader,
		logger:       logger,
		recorder:     tel,
		telemetry:    tel,
	}
}

// WithRemoteAPI replaces the remote API client built from the configuration.
func (a *App) WithRemoteAPI(api ports.RemoteAPI) *App {
	a.api = api
	return a
}

// WithBackend replaces the storage backend built from the configuration.
func (a *App) WithBackend(b ports.StorageBackend) *App {
	a.backend = b
	return a
}

// WithTelemetry replaces the telemetry recorder.
func (a *App) WithTelemetry(t ports.Telemetry) *App {
	a.recorder = t
	a.telemetry = t
	return a
}

// Overrides are command line values that take precedence over the config file.
type Overrides struct {
	StorePath   string
	Backend     string
	Remote      string
	APIURL      string
	Concurrency int
	LogLevel    string
	LogFile     string
	JSONLogs    bool
	// Quiet disables progress recording and lowers logging to warnings.
	Quiet bool
}

// Configure loads the configuration file at path, applies the overrides and
// reconfigures the logger. An empty path selects the default file.
func (a *App) Configure(path string, o Overrides) error {
	cfg, err := a.configLoader.Load(path)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	if o.StorePath != "" {
		cfg.Store.Path = o.StorePath
	}
	if o.Backend != "" {
		cfg.Store.Backend = o.Backend
	}
	if o.Remote != "" {
		cfg.Store.Remote = o.Remote
	}
	if o.APIURL != "" {
		cfg.API.BaseURL = o.APIURL
	}
	if o.Concurrency > 0 {
		cfg.Concurrency = o.Concurrency
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.LogFile != "" {
		cfg.Log.File = o.LogFile
	}

	level := domain.ParseLogLevel(cfg.Log.Level)
	a.telemetry = a.recorder
	if o.Quiet {
		level = max(level, domain.LogLevelWarn)
		a.telemetry = telemetry.NewNoOp()
	}
	if ls, ok := a.logger.(logSettings); ok {
		ls.SetLevel(level)
		ls.SetJSON(o.JSONLogs)
		if cfg.Log.File != "" {
			ls.SetFile(cfg.Log.File)
		}
	}

	a.cfg = cfg
	a.openedAPI = nil
	a.openedBackend = nil
	return nil
}

// Config returns the active configuration, loading the default file on first use.
func (a *App) Config() (*domain.Config, error) {
	if a.cfg == nil {
		if err := a.Configure("", Overrides{}); err != nil {
			return nil, err
		}
	}
	return a.cfg, nil
}

// Close flushes telemetry.
func (a *App) Close() error {
	if a.recorder == nil {
		return nil
	}
	return a.recorder.Close()
}

type openOptions struct {
	versions  []string
	strategy  string
	bootstrap bool
}

// open builds the store context for a single operation.
func (a *App) open(ctx context.Context, opts openOptions) (*store.Context, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}

	b, err := a.storageBackend(cfg)
	if err != nil {
		return nil, err
	}
	f, err := filter.New(cfg.Filters.Include, cfg.Filters.Exclude)
	if err != nil {
		return nil, err
	}

	strategy := opts.strategy
	if strategy == "" {
		strategy = cfg.Strategy
	}

	return store.New(ctx, store.Options{
		API:            a.remoteAPI(cfg),
		Backend:        b,
		Filter:         f,
		Logger:         a.logger,
		Telemetry:      a.telemetry,
		Versions:       opts.versions,
		ConfigVersions: slices.Clone(cfg.Versions),
		Strategy:       domain.Strategy(strategy),
		Bootstrap:      opts.bootstrap,
	})
}

func (a *App) storageBackend(cfg *domain.Config) (ports.StorageBackend, error) {
	if a.backend != nil {
		return a.backend, nil
	}
	if a.openedBackend != nil {
		return a.openedBackend, nil
	}
	b, err := backend.Open(cfg.Store)
	if err != nil {
		return nil, err
	}
	a.openedBackend = b
	return b, nil
}

func (a *App) remoteAPI(cfg *domain.Config) ports.RemoteAPI {
	if a.api != nil {
		return a.api
	}
	if a.openedAPI == nil {
		a.openedAPI = ucdapi.New(cfg.API.BaseURL,
			ucdapi.WithTimeout(cfg.API.Timeout),
			ucdapi.WithCacheDir(cfg.API.CacheDir),
			ucdapi.WithLogger(a.logger),
		)
	}
	return a.openedAPI
}

// InitOptions configures store initialization.
type InitOptions struct {
	Versions []string
	Strategy string
}

// Init creates the store lockfile, or reconciles an existing one, and
// returns the resolved versions.
func (a *App) Init(ctx context.Context, opts InitOptions) ([]string, error) {
	sc, err := a.open(ctx, openOptions{versions: opts.Versions, strategy: opts.Strategy, bootstrap: true})
	if err != nil {
		return nil, err
	}
	return sc.Resolved(), nil
}

// Mirror downloads the files of tracked versions into the store.
func (a *App) Mirror(ctx context.Context, opts mirror.Options) (*domain.MirrorReport, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	sc, err := a.open(ctx, openOptions{bootstrap: cfg.Bootstrap})
	if err != nil {
		return nil, err
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = cfg.Concurrency
	}
	return mirror.Run(ctx, sc, opts)
}

// Sync reconciles the store with the versions available upstream.
func (a *App) Sync(ctx context.Context, opts syncer.Options) (*domain.SyncResult, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	sc, err := a.open(ctx, openOptions{bootstrap: cfg.Bootstrap})
	if err != nil {
		return nil, err
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = cfg.Concurrency
	}
	return syncer.Run(ctx, sc, opts)
}

// Analyze reports the integrity of tracked versions.
func (a *App) Analyze(ctx context.Context, opts analyze.Options) (*domain.AnalysisReport, error) {
	sc, err := a.open(ctx, openOptions{})
	if err != nil {
		return nil, err
	}
	return analyze.Run(ctx, sc, opts)
}

// Compare reports the file level difference between two tracked versions.
func (a *App) Compare(ctx context.Context, opts compare.Options) (*domain.VersionComparison, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	sc, err := a.open(ctx, openOptions{})
	if err != nil {
		return nil, err
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = cfg.Concurrency
	}
	return compare.Run(ctx, sc, opts)
}

// Verify checks the lockfile against the versions available upstream.
func (a *App) Verify(ctx context.Context, opts store.VerifyOptions) (*domain.VerifyResult, error) {
	sc, err := a.open(ctx, openOptions{})
	if err != nil {
		return nil, err
	}
	return sc.Verify(ctx, opts)
}

// GetFile returns the content of one file of a tracked version.
func (a *App) GetFile(ctx context.Context, version, path string) ([]byte, error) {
	sc, err := a.open(ctx, openOptions{})
	if err != nil {
		return nil, err
	}
	return sc.GetFile(ctx, version, path)
}

// ListFiles lists the files of a tracked version.
func (a *App) ListFiles(ctx context.Context, version string) ([]string, error) {
	sc, err := a.open(ctx, openOptions{})
	if err != nil {
		return nil, err
	}
	return sc.ListFiles(ctx, version)
}

// FileTree returns the remote file tree of a tracked version.
func (a *App) FileTree(ctx context.Context, version string) ([]domain.FileNode, error) {
	sc, err := a.open(ctx, openOptions{})
	if err != nil {
		return nil, err
	}
	return sc.FileTree(ctx, version)
}

// Handler returns the raw file proxy over the configured backend.
func (a *App) Handler() (http.Handler, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	b, err := a.storageBackend(cfg)
	if err != nil {
		return nil, err
	}
	return proxy.NewServer(b, a.logger), nil
}
