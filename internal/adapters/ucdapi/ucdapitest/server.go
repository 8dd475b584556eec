// Package ucdapitest provides an in-process fake of the UCD API.
package ucdapitest

import (
	"encoding/json"
	"maps"
	"net/http"
	"net/http/httptest"
	"path"
	"slices"
	"strings"
	"sync"
	"testing"

	"go.trai.ch/ucdstore/internal/adapters/ucdapi"
	"go.trai.ch/ucdstore/internal/core/domain"
)

// Request kinds counted by the fake.
const (
	KindConfig   = "config"
	KindVersions = "versions"
	KindTree     = "tree"
	KindManifest = "manifest"
	KindFile     = "file"
)

// Server is a fake UCD API. Files are served below "<version>/ucd/".
type Server struct {
	srv *httptest.Server

	mu              sync.Mutex
	versions        map[string]map[string]string
	failing         map[string]bool
	configDisabled  bool
	manifestEnabled bool
	counts          map[string]int
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		versions: make(map[string]map[string]string),
		failing:  make(map[string]bool),
		counts:   make(map[string]int),
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the base URL of the fake.
func (s *Server) URL() string {
	return s.srv.URL
}

// Client returns an API client bound to the fake.
func (s *Server) Client(opts ...ucdapi.Option) *ucdapi.Client {
	opts = append([]ucdapi.Option{ucdapi.WithHTTPClient(s.srv.Client())}, opts...)
	return ucdapi.New(s.srv.URL, opts...)
}

// AddVersion publishes a version with files keyed by store path.
func (s *Server) AddVersion(version string, files map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[version] = maps.Clone(files)
	if s.versions[version] == nil {
		s.versions[version] = make(map[string]string)
	}
}

// SetFile replaces the content of a single file.
func (s *Server) SetFile(version, storePath, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versions[version] == nil {
		s.versions[version] = make(map[string]string)
	}
	s.versions[version][storePath] = content
}

// RemoveVersion withdraws a version.
func (s *Server) RemoveVersion(version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.versions, version)
}

// FailFile makes content requests for the file answer with a server error.
func (s *Server) FailFile(version, storePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[RemotePath(version, storePath)] = true
}

// DisableConfig makes the bulk config endpoint answer with not found.
func (s *Server) DisableConfig() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configDisabled = true
}

// EnableManifest serves the per-version store manifest instead of not found.
func (s *Server) EnableManifest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifestEnabled = true
}

// Requests returns how many requests of a kind were served.
func (s *Server) Requests(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[kind]
}

// TotalRequests returns the number of requests served.
func (s *Server) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.counts {
		total += n
	}
	return total
}

// RemotePath returns the remote path of a store file.
func RemotePath(version, storePath string) string {
	return domain.RemotePath(version, storePath)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := r.URL.Path
	switch {
	case p == "/.well-known/ucd-config.json":
		s.counts[KindConfig]++
		if s.configDisabled {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, domain.RemoteConfig{
			Version:  "0.1",
			Versions: s.versionList(),
		})

	case p == "/api/v1/versions":
		s.counts[KindVersions]++
		var out []domain.VersionInfo
		for _, v := range s.versionList() {
			out = append(out, domain.VersionInfo{Version: v, Type: "stable"})
		}
		writeJSON(w, out)

	case strings.HasPrefix(p, "/api/v1/versions/") && strings.HasSuffix(p, "/file-tree"):
		s.counts[KindTree]++
		v := strings.TrimSuffix(strings.TrimPrefix(p, "/api/v1/versions/"), "/file-tree")
		files, ok := s.versions[v]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, buildTree(v, files))

	case strings.HasPrefix(p, "/.well-known/ucd-store/"):
		s.counts[KindManifest]++
		v := strings.TrimSuffix(strings.TrimPrefix(p, "/.well-known/ucd-store/"), ".json")
		files, ok := s.versions[v]
		if !ok || !s.manifestEnabled {
			http.NotFound(w, r)
			return
		}
		m := domain.StoreManifest{}
		for _, sp := range slices.Sorted(maps.Keys(files)) {
			m.ExpectedFiles = append(m.ExpectedFiles, domain.ExpectedFile{
				Name:       path.Base(sp),
				RemotePath: "/" + RemotePath(v, sp),
				StorePath:  sp,
			})
		}
		writeJSON(w, m)

	case strings.HasPrefix(p, "/api/v1/files/"):
		s.counts[KindFile]++
		remote := strings.TrimPrefix(p, "/api/v1/files/")
		if s.failing[remote] {
			http.Error(w, "upstream failure", http.StatusInternalServerError)
			return
		}
		v, rest, _ := strings.Cut(remote, "/")
		sp := strings.TrimPrefix(rest, domain.UCDDirName+"/")
		content, ok := s.versions[v][sp]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(content))

	default:
		http.NotFound(w, r)
	}
}

func (s *Server) versionList() []string {
	return domain.SortVersions(slices.Collect(maps.Keys(s.versions)))
}

func buildTree(version string, files map[string]string) []domain.FileNode {
	root := &domain.FileNode{
		Name: domain.UCDDirName,
		Path: "/" + path.Join(version, domain.UCDDirName),
		Type: domain.NodeDirectory,
	}
	for _, sp := range slices.Sorted(maps.Keys(files)) {
		insert(root, strings.Split(sp, "/"))
	}
	return []domain.FileNode{*root}
}

func insert(parent *domain.FileNode, segments []string) {
	if len(segments) == 1 {
		parent.Children = append(parent.Children, domain.FileNode{
			Name: segments[0],
			Path: parent.Path + "/" + segments[0],
			Type: domain.NodeFile,
		})
		return
	}
	for i := range parent.Children {
		c := &parent.Children[i]
		if c.Type == domain.NodeDirectory && c.Name == segments[0] {
			insert(c, segments[1:])
			return
		}
	}
	parent.Children = append(parent.Children, domain.FileNode{
		Name: segments[0],
		Path: parent.Path + "/" + segments[0],
		Type: domain.NodeDirectory,
	})
	insert(&parent.Children[len(parent.Children)-1], segments[1:])
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
