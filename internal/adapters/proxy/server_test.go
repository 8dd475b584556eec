package proxy_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ucdstore/internal/adapters/backend"
	"go.trai.ch/ucdstore/internal/adapters/proxy"
	"go.trai.ch/ucdstore/internal/core/domain"
)

func newServer() *proxy.Server {
	return proxy.NewServer(backend.NewMemory(backend.WithFiles(map[string]string{
		"16.0.0/UnicodeData.txt":      "0041;A",
		"16.0.0/Unihan.zip":           "PK",
		"16.0.0/emoji/emoji-data.txt": "# emoji",
		"16.0.0/ReadMe":               "readme",
	})), nil)
}

func serve(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "http://store.test/", http.NoBody)
	p, err := url.PathUnescape(target)
	require.NoError(t, err)
	req.URL.Path = p
	req.URL.RawPath = target
	newServer().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) proxy.ErrorBody {
	t.Helper()
	var body proxy.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestServer_File(t *testing.T) {
	t.Parallel()

	rec := serve(t, "/raw/16.0.0/UnicodeData.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0041;A", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "6", rec.Header().Get("Content-Length"))
}

func TestServer_DefaultContentType(t *testing.T) {
	t.Parallel()

	rec := serve(t, "/raw/16.0.0/ReadMe")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
}

func TestServer_DirectoryListing(t *testing.T) {
	t.Parallel()

	rec := serve(t, "/raw/16.0.0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "directory", rec.Header().Get(backend.EntryTypeHeader))

	var entries []domain.DirEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Equal(t, []domain.DirEntry{
		{Name: "ReadMe", Type: domain.NodeFile},
		{Name: "UnicodeData.txt", Type: domain.NodeFile},
		{Name: "Unihan.zip", Type: domain.NodeFile},
		{Name: "emoji", Type: domain.NodeDirectory},
	}, entries)
}

func TestServer_Stat(t *testing.T) {
	t.Parallel()

	rec := serve(t, "/raw/__stat/16.0.0/emoji/emoji-data.txt")
	require.Equal(t, http.StatusOK, rec.Code)

	var st domain.FileStat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, domain.NodeFile, st.Type)
	assert.Equal(t, int64(7), st.Size)
}

func TestServer_RejectsTraversal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
	}{
		{"dot dot", "/raw/16.0.0/../secret"},
		{"leading dot dot", "/raw/../etc/passwd"},
		{"encoded dot dot", "/raw/16.0.0/%2e%2e/secret"},
		{"double slash", "/raw/16.0.0//UnicodeData.txt"},
		{"stat traversal", "/raw/__stat/../x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := serve(t, tt.target)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, http.StatusBadRequest, body.Status)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestServer_NotFound(t *testing.T) {
	t.Parallel()

	rec := serve(t, "/raw/15.0.0/UnicodeData.txt")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, decodeError(t, rec).Status)

	rec = serve(t, "/files/16.0.0")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
