package store

import (
	"context"
	"maps"
	"slices"
	"time"

	"go.trai.ch/ucdstore/internal/adapters/manifest" //nolint:depguard // Lockfile persistence
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/core/ports"
	"go.trai.ch/zerr"
)

// Options configures the construction of a store Context.
type Options struct {
	API        ports.RemoteAPI
	Backend    ports.StorageBackend
	Filter     ports.PathFilter
	Logger     ports.Logger
	Telemetry  ports.Telemetry
	Normalizer ports.ContentNormalizer

	// Versions are the versions requested explicitly by the caller.
	Versions []string
	// ConfigVersions are the versions listed in the configuration file.
	ConfigVersions []string
	// Strategy reconciles Versions with an existing lockfile.
	Strategy domain.Strategy
	// Bootstrap allows creating a new store when no lockfile exists.
	Bootstrap bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// New builds a store Context and resolves its versions.
//
// With a lockfile the resolved set starts as the tracked versions and
// explicit versions are reconciled through the strategy. Without one the
// store is bootstrapped or ErrLockfileMissing is returned before any remote call.
func New(ctx context.Context, opts Options) (*Context, error) {
	if opts.Backend == nil {
		return nil, zerr.New("store backend is required")
	}
	if opts.API == nil {
		return nil, zerr.New("remote api client is required")
	}
	strategy, err := domain.ParseStrategy(string(opts.Strategy))
	if err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	c := &Context{
		API:          opts.API,
		Filter:       opts.Filter,
		Backend:      opts.Backend,
		Manifest:     manifest.NewStore(opts.Backend),
		Logger:       opts.Logger,
		Telemetry:    opts.Telemetry,
		Normalizer:   opts.Normalizer,
		UserProvided: slices.Clone(opts.Versions),
		ConfigFile:   slices.Clone(opts.ConfigVersions),
	}
	c.applyDefaults()

	exists, err := c.Manifest.LockfileExists(ctx)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to check lockfile")
	}
	if !exists {
		if !opts.Bootstrap {
			return nil, zerr.With(zerr.Wrap(domain.ErrLockfileMissing, "store is not initialized"),
				"lockfile", domain.LockfileName)
		}
		if err := c.bootstrap(ctx, now().UTC()); err != nil {
			return nil, err
		}
		return c, nil
	}

	lf, err := c.Manifest.ReadLockfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.reconcile(ctx, lf, strategy, now().UTC()); err != nil {
		return nil, err
	}
	return c, nil
}

// reconcile applies the strategy to the explicit versions and an existing lockfile.
func (c *Context) reconcile(ctx context.Context, lf *domain.Lockfile, strategy domain.Strategy, now time.Time) error {
	locked := domain.NewVersionSet(slices.Collect(maps.Keys(lf.Versions))...)
	if len(c.UserProvided) == 0 {
		c.SetResolved(locked.Sorted())
		return nil
	}
	requested := domain.NewVersionSet(c.UserProvided...)

	switch strategy {
	case domain.StrategyStrict:
		if !requested.Equal(locked) {
			err := zerr.Wrap(domain.ErrVersionConflict, "use the merge or overwrite strategy to change tracked versions")
			err = zerr.With(err, "requested", requested.Sorted())
			return zerr.With(err, "lockfile", locked.Sorted())
		}
		c.SetResolved(locked.Sorted())
		return nil

	case domain.StrategyMerge:
		added := requested.Difference(locked)
		for _, v := range added {
			lf.Versions[v] = newEntry(v, now)
		}
		if len(added) > 0 {
			if err := c.Manifest.WriteLockfile(ctx, lf); err != nil {
				return err
			}
			c.Logger.Info("added versions to lockfile", "versions", added)
		}
		c.SetResolved(slices.Collect(maps.Keys(lf.Versions)))
		return nil

	case domain.StrategyOverwrite:
		next := make(map[string]domain.LockEntry, len(requested))
		for v := range requested {
			if entry, ok := lf.Versions[v]; ok {
				next[v] = entry
				continue
			}
			next[v] = newEntry(v, now)
		}
		if !requested.Equal(locked) {
			lf.Versions = next
			if err := c.Manifest.WriteLockfile(ctx, lf); err != nil {
				return err
			}
			c.Logger.Info("overwrote lockfile versions",
				"added", requested.Difference(locked),
				"removed", locked.Difference(requested))
		}
		c.SetResolved(requested.Sorted())
		return nil

	default:
		return zerr.With(zerr.Wrap(domain.ErrInvalidStrategy, "unknown strategy"), "strategy", string(strategy))
	}
}

// bootstrap validates the requested versions against upstream and
// creates the store root with an initial lockfile.
func (c *Context) bootstrap(ctx context.Context, now time.Time) error {
	available, err := c.AvailableVersions(ctx)
	if err != nil {
		return err
	}

	requested := c.UserProvided
	if len(requested) == 0 {
		requested = c.ConfigFile
	}
	if len(requested) == 0 {
		requested = available
	}

	missing := domain.NewVersionSet(requested...).Difference(domain.NewVersionSet(available...))
	if len(missing) > 0 {
		err := zerr.Wrap(domain.ErrVersionUnavailable, "requested versions are not available upstream")
		err = zerr.With(err, "missing", missing)
		return zerr.With(err, "available", available)
	}

	if c.Backend.Capabilities().Has(domain.CapMkdir) {
		if err := c.Backend.Mkdir(ctx, "."); err != nil {
			return zerr.Wrap(err, "failed to create store root")
		}
	}

	lf := domain.NewLockfile()
	lf.Filters = c.LockFilters()
	for _, v := range requested {
		lf.Versions[v] = newEntry(v, now)
	}
	if err := c.Manifest.WriteLockfile(ctx, lf); err != nil {
		return err
	}

	c.SetResolved(requested)
	c.Logger.Info("bootstrapped store", "versions", c.Resolved())
	return nil
}

func newEntry(version string, now time.Time) domain.LockEntry {
	entry := domain.EmptyLockEntry(version)
	entry.CreatedAt = now
	entry.UpdatedAt = now
	return entry
}
