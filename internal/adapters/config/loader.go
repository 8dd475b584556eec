// Package config provides the configuration loader for ucdstore.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*FileConfigLoader)(nil)

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	// Dir is where the default file is looked up. Empty means the working directory.
	Dir    string
	logger ports.Logger
}

// NewLoader creates a loader that resolves the default file in the working directory.
func NewLoader(logger ports.Logger) *FileConfigLoader {
	return &FileConfigLoader{logger: logger}
}

// Load reads the configuration at path, or the default file when path is empty.
// A missing default file yields the default configuration.
func (l *FileConfigLoader) Load(path string) (*domain.Config, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(l.Dir, domain.ConfigFileName)
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			if l.logger != nil {
				l.logger.Debug("no config file found, using defaults", "path", path)
			}
			return domain.DefaultConfig(), nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return cfg, nil
}

// Parse decodes YAML over the default configuration and validates the result.
func Parse(data []byte) (*domain.Config, error) {
	cfg := domain.DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, zerr.Wrap(domain.ErrConfigParseFailed, err.Error())
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *domain.Config) error {
	if _, err := domain.ParseStrategy(cfg.Strategy); err != nil {
		return err
	}
	if cfg.Concurrency < 1 {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, "concurrency must be at least 1"),
			"concurrency", cfg.Concurrency)
	}
	return nil
}
