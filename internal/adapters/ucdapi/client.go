// Package ucdapi implements the remote UCD API client.
package ucdapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	configPath        = "/.well-known/ucd-config.json"
	versionsPath      = "/api/v1/versions"
	filesPath         = "/api/v1/files"
	storeManifestPath = "/.well-known/ucd-store"

	defaultTimeout = 30 * time.Second
)

var _ ports.RemoteAPI = (*Client)(nil)

// Client talks to the UCD API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *contentCache
	logger     ports.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.httpClient.Timeout = d
		}
	}
}

// WithCacheDir enables the on-disk file content cache.
func WithCacheDir(dir string) Option {
	return func(cl *Client) {
		if dir != "" {
			cl.cache = newContentCache(afero.NewBasePathFs(afero.NewOsFs(), filepath.Clean(dir)))
		}
	}
}

// WithCacheFs enables the file content cache on an arbitrary filesystem.
func WithCacheFs(afs afero.Fs) Option {
	return func(cl *Client) {
		if afs != nil {
			cl.cache = newContentCache(afs)
		}
	}
}

// WithLogger sets the logger used for non-fatal cache failures.
func WithLogger(l ports.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// New creates a Client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetConfig returns the bulk store configuration.
func (c *Client) GetConfig(ctx context.Context) (*domain.RemoteConfig, error) {
	var cfg domain.RemoteConfig
	if err := c.getJSON(ctx, configPath, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ListVersions returns every version offered upstream.
func (c *Client) ListVersions(ctx context.Context) ([]domain.VersionInfo, error) {
	var versions []domain.VersionInfo
	if err := c.getJSON(ctx, versionsPath, &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// GetFileTree returns the file tree of a version.
func (c *Client) GetFileTree(ctx context.Context, version string) ([]domain.FileNode, error) {
	var tree []domain.FileNode
	p := versionsPath + "/" + url.PathEscape(version) + "/file-tree"
	if err := c.getJSON(ctx, p, &tree); err != nil {
		return nil, zerr.With(err, "version", version)
	}
	return tree, nil
}

// GetExpectedFiles returns the store manifest of a version.
// When the manifest endpoint fails the file tree is flattened instead.
func (c *Client) GetExpectedFiles(ctx context.Context, version string) ([]domain.ExpectedFile, error) {
	var manifest domain.StoreManifest
	p := storeManifestPath + "/" + url.PathEscape(version) + ".json"
	if err := c.getJSON(ctx, p, &manifest); err == nil && len(manifest.ExpectedFiles) > 0 {
		files := make([]domain.ExpectedFile, 0, len(manifest.ExpectedFiles))
		for _, f := range manifest.ExpectedFiles {
			if f.StorePath == "" {
				f.StorePath = domain.NormalizePath(version, f.RemotePath)
			} else {
				f.StorePath = domain.NormalizePath(version, f.StorePath)
			}
			if f.Name == "" {
				f.Name = f.StorePath[strings.LastIndex(f.StorePath, "/")+1:]
			}
			files = append(files, f)
		}
		domain.SortExpectedFiles(files)
		return files, nil
	}

	tree, err := c.GetFileTree(ctx, version)
	if err != nil {
		return nil, err
	}
	return domain.FlattenTree(version, tree), nil
}

// GetFileContent fetches a file by its remote path.
func (c *Client) GetFileContent(ctx context.Context, remotePath string) (*domain.FileContent, error) {
	remotePath = strings.TrimLeft(remotePath, "/")
	if c.cache != nil {
		if content, ok := c.cache.get(ctx, remotePath); ok {
			return content, nil
		}
	}

	resp, err := c.do(ctx, filesPath+"/"+escapePath(remotePath))
	if err != nil {
		return nil, zerr.With(err, "path", remotePath)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read response body"), "path", remotePath)
	}

	content := &domain.FileContent{
		Data:          data,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: int64(len(data)),
	}
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			content.ContentLength = n
		}
	}

	if c.cache != nil {
		if err := c.cache.put(ctx, remotePath, content); err != nil && c.logger != nil {
			c.logger.Warn("failed to cache file content", "path", remotePath, "error", err)
		}
	}
	return content, nil
}

func (c *Client) getJSON(ctx context.Context, p string, v any) error {
	resp, err := c.do(ctx, p)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		err = zerr.Wrap(domain.ErrAPIFallbackFailure, "failed to decode api response: "+err.Error())
		return zerr.With(err, "endpoint", p)
	}
	return nil
}

// do performs a GET request. Non-2xx responses become ErrAPIFallbackFailure.
func (c *Client) do(ctx context.Context, p string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+p, http.NoBody)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to build api request"), "endpoint", p)
	}
	req.Header.Set("Accept", "application/json, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, zerr.With(zerr.Wrap(err, "api request canceled"), "endpoint", p)
		}
		apiErr := zerr.Wrap(domain.ErrAPIFallbackFailure, "api request failed: "+err.Error())
		return nil, zerr.With(apiErr, "endpoint", p)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		apiErr := zerr.Wrap(domain.ErrAPIFallbackFailure, "api returned "+resp.Status)
		apiErr = zerr.With(apiErr, "status", resp.StatusCode)
		return nil, zerr.With(apiErr, "endpoint", p)
	}
	return resp, nil
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
