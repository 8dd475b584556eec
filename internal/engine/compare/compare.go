// Package compare computes the file level difference between two tracked versions.
package compare

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/engine/store"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Options configures a comparison.
type Options struct {
	From string
	To   string
	// FromMode and ToMode select where each side is read from. Empty means prefer-local.
	FromMode domain.SourceMode
	ToMode   domain.SourceMode
	// SkipFileHashes compares file lists only and fetches no content.
	SkipFileHashes bool
	// IncludeLineStats counts added and removed lines of modified files.
	IncludeLineStats bool
	// Concurrency caps the number of files fetched at once. Defaults to domain.DefaultConcurrency.
	Concurrency int
}

// side is one version of a comparison bound to the source it is read from.
type side struct {
	version string
	mode    domain.SourceMode
	files   []string
	remote  map[string]string
}

// Run compares the From version against the To version.
func Run(ctx context.Context, sc *store.Context, opts Options) (*domain.VersionComparison, error) {
	fromMode, err := domain.ParseSourceMode(string(opts.FromMode))
	if err != nil {
		return nil, err
	}
	toMode, err := domain.ParseSourceMode(string(opts.ToMode))
	if err != nil {
		return nil, err
	}
	for _, v := range []string{opts.From, opts.To} {
		if err := sc.RequireResolved(v); err != nil {
			return nil, err
		}
	}

	from, err := open(ctx, sc, opts.From, fromMode)
	if err != nil {
		return nil, err
	}
	to, err := open(ctx, sc, opts.To, toMode)
	if err != nil {
		return nil, err
	}

	cmp := &domain.VersionComparison{
		From:     opts.From,
		To:       opts.To,
		Added:    []string{},
		Removed:  []string{},
		Modified: []domain.ModifiedFile{},
	}
	toSet := make(map[string]bool, len(to.files))
	for _, p := range to.files {
		toSet[p] = true
	}
	fromSet := make(map[string]bool, len(from.files))
	var common []string
	for _, p := range from.files {
		fromSet[p] = true
		if toSet[p] {
			common = append(common, p)
		} else {
			cmp.Removed = append(cmp.Removed, p)
		}
	}
	for _, p := range to.files {
		if !fromSet[p] {
			cmp.Added = append(cmp.Added, p)
		}
	}

	if opts.SkipFileHashes {
		cmp.Unchanged = len(common)
		sc.Logger.Info("compared versions", "from", opts.From, "to", opts.To,
			"added", len(cmp.Added), "removed", len(cmp.Removed), "common", len(common))
		return cmp, nil
	}

	_, vertex := sc.Telemetry.Record(ctx, "compare "+opts.From+".."+opts.To)
	hashCommon(ctx, sc, cmp, from, to, common, opts)
	var verr error
	if len(cmp.Failed) > 0 {
		verr = zerr.With(zerr.New("some files could not be compared"), "failed", len(cmp.Failed))
	}
	vertex.Complete(verr)

	sc.Logger.Info("compared versions", "from", opts.From, "to", opts.To,
		"added", len(cmp.Added),
		"removed", len(cmp.Removed),
		"modified", len(cmp.Modified),
		"unchanged", cmp.Unchanged,
		"failed", len(cmp.Failed))
	return cmp, nil
}

// open lists the files of a version from the source selected by mode.
// prefer-local reads from the store when the version has local files and
// from the remote API otherwise.
func open(ctx context.Context, sc *store.Context, version string, mode domain.SourceMode) (*side, error) {
	if mode != domain.SourceAPI {
		s, err := openLocal(ctx, sc, version)
		switch {
		case err == nil && (len(s.files) > 0 || mode == domain.SourceLocal):
			return s, nil
		case err != nil && mode == domain.SourceLocal:
			return nil, err
		case err != nil && !errors.Is(err, domain.ErrVersionNotMirrored) && !errors.Is(err, domain.ErrUnsupportedOperation):
			return nil, err
		}
		sc.Logger.Debug("version not available locally, reading from the remote API", "version", version)
	}

	expected, err := sc.ExpectedFiles(ctx, version)
	if err != nil {
		return nil, err
	}
	s := &side{
		version: version,
		mode:    domain.SourceAPI,
		files:   make([]string, 0, len(expected)),
		remote:  make(map[string]string, len(expected)),
	}
	for _, f := range expected {
		s.files = append(s.files, f.StorePath)
		s.remote[f.StorePath] = f.RemotePath
	}
	slices.Sort(s.files)
	return s, nil
}

func openLocal(ctx context.Context, sc *store.Context, version string) (*side, error) {
	if err := sc.Backend.Capabilities().Assert(domain.CapListDir, domain.CapRead); err != nil {
		return nil, zerr.Wrap(err, "local comparison requires a backend that can list and read files")
	}
	local, err := sc.LocalFiles(ctx, version)
	if err != nil {
		return nil, err
	}
	s := &side{version: version, mode: domain.SourceLocal, files: make([]string, 0, len(local))}
	for _, p := range local {
		if sc.Filter.Match(p) {
			s.files = append(s.files, p)
		}
	}
	return s, nil
}

func (s *side) read(ctx context.Context, sc *store.Context, p string) ([]byte, error) {
	if s.mode == domain.SourceLocal {
		return sc.Backend.Read(ctx, domain.StorePath(s.version, p))
	}
	remote := s.remote[p]
	if remote == "" {
		remote = domain.RemotePath(s.version, p)
	}
	content, err := sc.API.GetFileContent(ctx, remote)
	if err != nil {
		return nil, err
	}
	return content.Data, nil
}

// hashCommon fetches both sides of every common file with bounded concurrency
// and classifies it as modified or unchanged. Fetch failures land in cmp.Failed.
func hashCommon(ctx context.Context, sc *store.Context, cmp *domain.VersionComparison, from, to *side, common []string, opts Options) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = domain.DefaultConcurrency
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, p := range common {
		g.Go(func() error {
			mod, err := compareFile(gctx, sc, from, to, p, opts.IncludeLineStats)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				cmp.Failed = append(cmp.Failed, domain.FileFailure{Path: p, Reason: err.Error()})
				sc.Logger.Warn("failed to compare file", "path", p, "error", err)
			case mod != nil:
				cmp.Modified = append(cmp.Modified, *mod)
			default:
				cmp.Unchanged++
			}
			return nil
		})
	}
	_ = g.Wait()

	slices.SortFunc(cmp.Modified, func(a, b domain.ModifiedFile) int { return strings.Compare(a.Path, b.Path) })
	slices.SortFunc(cmp.Failed, func(a, b domain.FileFailure) int { return strings.Compare(a.Path, b.Path) })
}

// compareFile returns nil when the normalized contents of both sides hash the same.
func compareFile(ctx context.Context, sc *store.Context, from, to *side, p string, lineStats bool) (*domain.ModifiedFile, error) {
	a, err := from.read(ctx, sc, p)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read file"), "version", from.version)
	}
	b, err := to.read(ctx, sc, p)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read file"), "version", to.version)
	}

	na := sc.Normalizer.Normalize(p, a)
	nb := sc.Normalizer.Normalize(p, b)
	ha, hb := domain.HashContent(na), domain.HashContent(nb)
	if ha == hb {
		return nil, nil
	}

	mod := &domain.ModifiedFile{
		Path: p,
		From: domain.FileVersionState{Hash: ha, Size: int64(len(a))},
		To:   domain.FileVersionState{Hash: hb, Size: int64(len(b))},
	}
	if lineStats {
		mod.LinesAdded, mod.LinesRemoved = LineStats(string(na), string(nb))
	}
	return mod, nil
}

// LineStats counts the lines added and removed between two texts.
func LineStats(from, to string) (added, removed int) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += countLines(d.Text)
		case diffmatchpatch.DiffDelete:
			removed += countLines(d.Text)
		case diffmatchpatch.DiffEqual:
		}
	}
	return added, removed
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
