package domain

import (
	"path"
	"slices"
	"strings"
	"time"
)

// NodeType distinguishes files from directories in a remote file tree.
type NodeType string

const (
	// NodeFile is a regular file.
	NodeFile NodeType = "file"
	// NodeDirectory is a directory.
	NodeDirectory NodeType = "directory"
)

// FileNode is an entry of the remote file tree.
type FileNode struct {
	Name         string     `json:"name"`
	Path         string     `json:"path"`
	Type         NodeType   `json:"type"`
	LastModified *time.Time `json:"lastModified,omitempty"`
	Children     []FileNode `json:"children,omitempty"`
}

// ExpectedFile is a file the remote API lists for a version.
type ExpectedFile struct {
	// Name is the base name of the file.
	Name string `json:"name"`
	// RemotePath is the path used to fetch the file from the remote API.
	RemotePath string `json:"path"`
	// StorePath is the normalized path of the file below the version directory.
	StorePath string `json:"storePath"`
}

// FileStat is the metadata returned by a storage backend stat call.
type FileStat struct {
	Type    NodeType  `json:"type"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mtime"`
}

// IsDir reports whether the stat describes a directory.
func (s FileStat) IsDir() bool {
	return s.Type == NodeDirectory
}

// FileContent is a file body fetched from the remote API.
type FileContent struct {
	Data          []byte
	ContentType   string
	ContentLength int64
}

// NormalizePath turns a remote or store path into a path relative to the version directory.
// It strips a leading slash, the version segment and the "ucd" container folder.
func NormalizePath(version, p string) string {
	p = strings.TrimLeft(p, "/")
	if version != "" {
		p = strings.TrimPrefix(p, version+"/")
	}
	p = strings.TrimPrefix(p, UCDDirName+"/")
	return p
}

// IsContainedPath reports whether p is a clean relative path that stays below its version directory.
func IsContainedPath(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") {
		return false
	}
	clean := path.Clean(p)
	return clean == p && clean != "." && clean != ".." && !strings.HasPrefix(clean, "../")
}

// IsSnapshotPath reports whether a normalized path names the snapshot file.
func IsSnapshotPath(p string) bool {
	return p == SnapshotFileName
}

// FlattenTree walks a remote file tree and returns its files sorted by store path.
func FlattenTree(version string, nodes []FileNode) []ExpectedFile {
	var out []ExpectedFile
	var walk func(parent string, nodes []FileNode)
	walk = func(parent string, nodes []FileNode) {
		for _, n := range nodes {
			full := n.Path
			if full == "" {
				full = path.Join(parent, n.Name)
			}
			full = strings.TrimLeft(full, "/")
			if n.Type == NodeDirectory || len(n.Children) > 0 {
				walk(full, n.Children)
				continue
			}
			out = append(out, ExpectedFile{
				Name:       n.Name,
				RemotePath: full,
				StorePath:  NormalizePath(version, full),
			})
		}
	}
	walk("", nodes)
	SortExpectedFiles(out)
	return out
}

// SortExpectedFiles sorts files by store path.
func SortExpectedFiles(files []ExpectedFile) {
	slices.SortFunc(files, func(a, b ExpectedFile) int {
		return strings.Compare(a.StorePath, b.StorePath)
	})
}

// FileExtension returns the histogram bucket of a path.
func FileExtension(p string) string {
	ext := path.Ext(path.Base(p))
	if ext == "" || ext == "." {
		return NoExtension
	}
	return strings.TrimPrefix(ext, ".")
}

// NoExtension is the histogram bucket for paths without an extension.
const NoExtension = "no_extension"

// DirEntry is one entry of a directory listing served over HTTP.
type DirEntry struct {
	Name string   `json:"name"`
	Type NodeType `json:"type"`
}
