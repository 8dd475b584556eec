package ports

// ContentNormalizer rewrites file content before it is hashed for comparison.
type ContentNormalizer interface {
	// Normalize returns the comparable form of data.
	Normalize(path string, data []byte) []byte
}
