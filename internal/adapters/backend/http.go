package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"path"
	"slices"
	"strings"
	"time"

	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// RawPrefix is the URL prefix under which the raw file proxy serves store files.
	RawPrefix = "/raw"
	// StatSegment is the first path segment of stat requests below RawPrefix.
	StatSegment = "__stat"
	// EntryTypeHeader marks directory listings in raw responses.
	EntryTypeHeader = "X-Ucd-Entry-Type"

	httpClientTimeout = 30 * time.Second
)

var _ ports.StorageBackend = (*HTTP)(nil)

// HTTP is a read-only backend that talks to a raw file proxy.
type HTTP struct {
	baseURL string
	client  *http.Client
}

// HTTPOption configures an HTTP backend.
type HTTPOption func(*HTTP)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTP) {
		h.client = c
	}
}

// NewHTTP returns a read-only backend for the proxy at baseURL.
func NewHTTP(baseURL string, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: httpClientTimeout},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Capabilities returns the read-only capability set.
func (h *HTTP) Capabilities() domain.Capabilities {
	return domain.ReadOnlyCapabilities
}

// Exists reports whether the proxy knows the path.
func (h *HTTP) Exists(ctx context.Context, p string) (bool, error) {
	_, err := h.Stat(ctx, p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrFileNotFound) {
		return false, nil
	}
	return false, err
}

// Read fetches the file at p.
func (h *HTTP) Read(ctx context.Context, p string) ([]byte, error) {
	body, _, err := h.get(ctx, h.rawURL(p), p)
	return body, err
}

// Write is not supported.
func (h *HTTP) Write(_ context.Context, _ string, _ []byte) error {
	return h.Capabilities().Assert(domain.CapWrite)
}

// Mkdir is not supported.
func (h *HTTP) Mkdir(_ context.Context, _ string) error {
	return h.Capabilities().Assert(domain.CapMkdir)
}

// Remove is not supported.
func (h *HTTP) Remove(_ context.Context, _ string) error {
	return h.Capabilities().Assert(domain.CapRemove)
}

// Stat returns metadata of the entry at p.
func (h *HTTP) Stat(ctx context.Context, p string) (domain.FileStat, error) {
	body, _, err := h.get(ctx, h.statURL(p), p)
	if err != nil {
		return domain.FileStat{}, err
	}
	var st domain.FileStat
	if err := json.Unmarshal(body, &st); err != nil {
		return domain.FileStat{}, zerr.With(zerr.Wrap(err, "failed to decode stat response"), "path", p)
	}
	return st, nil
}

// ListDir lists entries below dir, walking sub directories when recursive.
func (h *HTTP) ListDir(ctx context.Context, dir string, recursive bool) ([]string, error) {
	entries, err := h.listing(ctx, dir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.Type != domain.NodeDirectory {
			out = append(out, e.Name)
			continue
		}
		if !recursive {
			out = append(out, e.Name+"/")
			continue
		}
		children, err := h.ListDir(ctx, path.Join(dir, e.Name), true)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			out = append(out, path.Join(e.Name, c))
		}
	}
	slices.Sort(out)
	return out, nil
}

func (h *HTTP) listing(ctx context.Context, dir string) ([]domain.DirEntry, error) {
	body, header, err := h.get(ctx, h.rawURL(dir), dir)
	if err != nil {
		return nil, err
	}
	if header.Get(EntryTypeHeader) != string(domain.NodeDirectory) {
		return nil, zerr.With(zerr.Wrap(domain.ErrNotADirectory, "failed to list directory"), "path", dir)
	}
	var entries []domain.DirEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to decode directory listing"), "path", dir)
	}
	return entries, nil
}

func (h *HTTP) rawURL(p string) string {
	return h.baseURL + RawPrefix + escapePath(cleanPath(p))
}

func (h *HTTP) statURL(p string) string {
	return h.baseURL + RawPrefix + "/" + StatSegment + escapePath(cleanPath(p))
}

func (h *HTTP) get(ctx context.Context, u, p string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, nil, zerr.With(zerr.Wrap(err, "failed to build request"), "path", p)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, nil, zerr.With(zerr.Wrap(err, "request to store proxy failed"), "path", p)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil, zerr.With(zerr.Wrap(domain.ErrFileNotFound, "store proxy returned not found"), "path", p)
	}
	if resp.StatusCode != http.StatusOK {
		err := zerr.Wrap(zerr.New(http.StatusText(resp.StatusCode)), "store proxy request failed")
		err = zerr.With(err, "status", resp.StatusCode)
		return nil, nil, zerr.With(err, "path", p)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, zerr.With(zerr.Wrap(err, "failed to read response body"), "path", p)
	}
	return body, resp.Header, nil
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
