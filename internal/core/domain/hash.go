package domain

import (
	_ "crypto/sha256"

	"github.com/opencontainers/go-digest"
	"go.trai.ch/zerr"
)

// HashContent returns the "sha256:<hex>" digest of data.
func HashContent(data []byte) string {
	return digest.SHA256.FromBytes(data).String()
}

// HashString hashes the UTF-8 encoding of s.
func HashString(s string) string {
	return digest.SHA256.FromString(s).String()
}

// ParseHash validates a stored content hash.
func ParseHash(h string) (digest.Digest, error) {
	d, err := digest.Parse(h)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "invalid content hash"), "hash", h)
	}
	if d.Algorithm() != digest.SHA256 {
		return "", zerr.With(zerr.New("unsupported hash algorithm"), "hash", h)
	}
	return d, nil
}
