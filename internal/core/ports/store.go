package ports

import (
	"context"

	"go.trai.ch/ucdstore/internal/core/domain"
)

// StorageBackend is a capability-gated view of a store root.
// Paths are slash separated and relative to the root.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type StorageBackend interface {
	// Capabilities returns the operations the backend supports.
	Capabilities() domain.Capabilities

	// Exists reports whether a file or directory exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Read returns the full content of the file at path.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write replaces the content of the file at path.
	Write(ctx context.Context, path string, data []byte) error

	// ListDir lists file paths below dir, relative to dir.
	// Without recursive only direct children are returned and directories end with "/".
	ListDir(ctx context.Context, dir string, recursive bool) ([]string, error)

	// Mkdir creates dir and any missing parents.
	Mkdir(ctx context.Context, dir string) error

	// Remove deletes the file or directory tree at path.
	Remove(ctx context.Context, path string) error

	// Stat returns metadata of the entry at path.
	Stat(ctx context.Context, path string) (domain.FileStat, error)
}
