package ports

import (
	"context"

	"go.trai.ch/ucdstore/internal/core/domain"
)

// RemoteAPI is the upstream source of UCD versions and files.
//
//go:generate go run go.uber.org/mock/mockgen -source=remote.go -destination=mocks/mock_remote.go -package=mocks
type RemoteAPI interface {
	// GetConfig returns the bulk store configuration.
	GetConfig(ctx context.Context) (*domain.RemoteConfig, error)

	// ListVersions returns every version offered upstream.
	ListVersions(ctx context.Context) ([]domain.VersionInfo, error)

	// GetFileTree returns the file tree of a version.
	GetFileTree(ctx context.Context, version string) ([]domain.FileNode, error)

	// GetExpectedFiles returns the files a complete mirror of a version contains.
	GetExpectedFiles(ctx context.Context, version string) ([]domain.ExpectedFile, error)

	// GetFileContent fetches a single file by its remote path.
	GetFileContent(ctx context.Context, remotePath string) (*domain.FileContent, error)
}
