package backend

import (
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// KindFS selects the local filesystem backend.
	KindFS = "fs"
	// KindMemory selects the in-memory backend.
	KindMemory = "memory"
	// KindHTTP selects the read-only raw proxy backend.
	KindHTTP = "http"
)

// Open builds the backend described by cfg.
func Open(cfg domain.StoreConfig) (ports.StorageBackend, error) {
	switch cfg.Backend {
	case "", KindFS:
		root := cfg.Path
		if root == "" {
			root = "."
		}
		return NewLocal(root), nil
	case KindMemory:
		return NewMemory(), nil
	case KindHTTP:
		if cfg.Remote == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrUnknownBackend, "http backend requires a remote url"), "backend", cfg.Backend)
		}
		return NewHTTP(cfg.Remote), nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownBackend, "unsupported backend"), "backend", cfg.Backend)
	}
}
