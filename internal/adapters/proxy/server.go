// Package proxy serves the files of a store over HTTP.
package proxy

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"go.trai.ch/ucdstore/internal/adapters/backend"
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/core/ports"
)

const cacheControl = "public, max-age=3600"

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Server exposes a storage backend below /raw.
type Server struct {
	backend ports.StorageBackend
	logger  ports.Logger
}

// NewServer creates a Server for the given backend.
func NewServer(b ports.StorageBackend, logger ports.Logger) *Server {
	return &Server{backend: b, logger: logger}
}

// ServeHTTP implements http.Handler.
// The raw request path is parsed directly so traversal attempts are rejected instead of cleaned.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	raw := r.URL.EscapedPath()
	if raw != backend.RawPrefix && !strings.HasPrefix(raw, backend.RawPrefix+"/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	rest := strings.TrimPrefix(raw, backend.RawPrefix)

	stat := false
	statPrefix := "/" + backend.StatSegment
	if rest == statPrefix || strings.HasPrefix(rest, statPrefix+"/") {
		stat = true
		rest = strings.TrimPrefix(rest, statPrefix)
	}

	p, ok := validatePath(rest)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid path")
		return
	}

	if stat {
		s.serveStat(w, r, p)
		return
	}
	s.serveRaw(w, r, p)
}

func (s *Server) serveStat(w http.ResponseWriter, r *http.Request, p string) {
	st, err := s.backend.Stat(r.Context(), p)
	if err != nil {
		s.writeBackendError(w, err, p)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) serveRaw(w http.ResponseWriter, r *http.Request, p string) {
	ctx := r.Context()
	st, err := s.backend.Stat(ctx, p)
	if err != nil {
		s.writeBackendError(w, err, p)
		return
	}

	if st.IsDir() {
		names, err := s.backend.ListDir(ctx, p, false)
		if err != nil {
			s.writeBackendError(w, err, p)
			return
		}
		entries := make([]domain.DirEntry, 0, len(names))
		for _, n := range names {
			if dir, ok := strings.CutSuffix(n, "/"); ok {
				entries = append(entries, domain.DirEntry{Name: dir, Type: domain.NodeDirectory})
				continue
			}
			entries = append(entries, domain.DirEntry{Name: n, Type: domain.NodeFile})
		}
		w.Header().Set(backend.EntryTypeHeader, string(domain.NodeDirectory))
		writeJSON(w, http.StatusOK, entries)
		return
	}

	data, err := s.backend.Read(ctx, p)
	if err != nil {
		s.writeBackendError(w, err, p)
		return
	}

	contentType := mime.TypeByExtension(path.Ext(p))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := w.Header()
	h.Set(backend.EntryTypeHeader, string(domain.NodeFile))
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set("Cache-Control", cacheControl)
	if !st.ModTime.IsZero() {
		h.Set("Last-Modified", st.ModTime.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(data)
}

func (s *Server) writeBackendError(w http.ResponseWriter, err error, p string) {
	switch {
	case errors.Is(err, domain.ErrFileNotFound):
		writeError(w, http.StatusNotFound, "not found: "+p)
	case errors.Is(err, domain.ErrNotADirectory):
		writeError(w, http.StatusBadRequest, "not a directory: "+p)
	default:
		if s.logger != nil {
			s.logger.Error(err, "path", p)
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// validatePath rejects empty segments and dot segments, then returns the store path.
func validatePath(escaped string) (string, bool) {
	if strings.Contains(escaped, "//") {
		return "", false
	}
	trimmed := strings.Trim(escaped, "/")
	if trimmed == "" {
		return "", true
	}
	segments := strings.Split(trimmed, "/")
	for i, seg := range segments {
		dec, err := url.PathUnescape(seg)
		if err != nil || dec == ".." || dec == "." || strings.Contains(dec, "/") || strings.Contains(dec, "\\") {
			return "", false
		}
		segments[i] = dec
	}
	return strings.Join(segments, "/"), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorBody{Message: msg, Status: status})
}
