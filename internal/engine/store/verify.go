package store

import (
	"context"
	"maps"
	"slices"

	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/zerr"
)

// VerifyOptions configures Verify.
type VerifyOptions struct {
	// RequireAvailable turns tracked versions missing upstream into an error.
	RequireAvailable bool
}

// Verify compares the tracked versions against the versions available upstream.
// With RequireAvailable, missing versions yield ErrMissingVersions alongside the result.
func (c *Context) Verify(ctx context.Context, opts VerifyOptions) (*domain.VerifyResult, error) {
	available, err := c.AvailableVersions(ctx)
	if err != nil {
		return nil, err
	}

	tracked := c.Resolved()
	if lf := c.Manifest.ReadLockfileOrDefault(ctx); lf != nil {
		tracked = slices.Collect(maps.Keys(lf.Versions))
	}

	trackedSet := domain.NewVersionSet(tracked...)
	availableSet := domain.NewVersionSet(available...)
	res := &domain.VerifyResult{
		MissingVersions:   trackedSet.Difference(availableSet),
		ExtraVersions:     availableSet.Difference(trackedSet),
		AvailableVersions: available,
	}
	res.Valid = len(res.MissingVersions) == 0

	if !res.Valid {
		c.Logger.Warn("tracked versions are no longer available upstream", "versions", res.MissingVersions)
		if opts.RequireAvailable {
			err := zerr.Wrap(domain.ErrMissingVersions, "store verification failed")
			return res, zerr.With(err, "missing", res.MissingVersions)
		}
	}
	return res, nil
}
