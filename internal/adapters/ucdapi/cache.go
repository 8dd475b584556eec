package ucdapi

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
	"go.trai.ch/ucdstore/internal/adapters/backend" //nolint:depguard // Cache entries share the store's atomic writes
	"go.trai.ch/ucdstore/internal/core/domain"
)

// contentCache stores fetched file bodies keyed by the xxhash of the remote path.
type contentCache struct {
	store *backend.FS
}

type cacheMeta struct {
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Hash        string `json:"hash"`
}

func newContentCache(afs afero.Fs) *contentCache {
	return &contentCache{store: backend.NewFromFs(afs)}
}

func (c *contentCache) key(remotePath string) string {
	return strconv.FormatUint(xxhash.Sum64String(remotePath), 16)
}

func (c *contentCache) get(ctx context.Context, remotePath string) (*domain.FileContent, bool) {
	k := c.key(remotePath)

	metaData, err := c.store.Read(ctx, k+".json")
	if err != nil {
		return nil, false
	}
	var meta cacheMeta
	if err := json.Unmarshal(metaData, &meta); err != nil || meta.Path != remotePath {
		return nil, false
	}
	want, err := domain.ParseHash(meta.Hash)
	if err != nil {
		return nil, false
	}

	data, err := c.store.Read(ctx, k+".bin")
	if err != nil {
		return nil, false
	}
	v := want.Verifier()
	if _, err := v.Write(data); err != nil || !v.Verified() {
		return nil, false
	}
	return &domain.FileContent{
		Data:          data,
		ContentType:   meta.ContentType,
		ContentLength: meta.Size,
	}, true
}

func (c *contentCache) put(ctx context.Context, remotePath string, content *domain.FileContent) error {
	k := c.key(remotePath)
	meta, err := json.Marshal(cacheMeta{
		Path:        remotePath,
		ContentType: content.ContentType,
		Size:        int64(len(content.Data)),
		Hash:        domain.HashContent(content.Data),
	})
	if err != nil {
		return err
	}
	if err := c.store.Mkdir(ctx, ""); err != nil {
		return err
	}
	if err := c.store.Write(ctx, k+".bin", content.Data); err != nil {
		return err
	}
	return c.store.Write(ctx, k+".json", meta)
}
