package ports

// PathFilter decides which store paths take part in an operation.
//
//go:generate go run go.uber.org/mock/mockgen -source=filter.go -destination=mocks/mock_filter.go -package=mocks
type PathFilter interface {
	// Match reports whether path passes the filter.
	// Extra patterns apply on top of the configured ones; a "!" prefix excludes.
	Match(path string, extra ...string) bool

	// Patterns returns the configured include and exclude patterns.
	Patterns() (include, exclude []string)
}
