package ports

import "go.trai.ch/ucdstore/internal/core/domain"

// ConfigLoader defines the interface for loading the store configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration file at path.
	// An empty path looks for the default file in the working directory.
	Load(path string) (*domain.Config, error)
}
