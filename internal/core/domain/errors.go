package domain

import "go.trai.ch/zerr"

var (
	// ErrVersionNotFound is returned when a version is not part of the resolved set.
	ErrVersionNotFound = zerr.New("version not found")

	// ErrInvalidManifest is returned when a lockfile or snapshot fails to parse or validate.
	ErrInvalidManifest = zerr.New("invalid manifest")

	// ErrUnsupportedOperation is returned when a backend lacks a required capability.
	ErrUnsupportedOperation = zerr.New("unsupported operation")

	// ErrFilterRejected is returned when a requested path is excluded by the path filter.
	ErrFilterRejected = zerr.New("path rejected by filter")

	// ErrAPIFallbackFailure is returned when the remote API fails to serve a request.
	ErrAPIFallbackFailure = zerr.New("remote api request failed")

	// ErrLockfileMissing is returned when no lockfile exists and bootstrapping is disabled.
	ErrLockfileMissing = zerr.New("lockfile does not exist and bootstrap is disabled")

	// ErrVersionConflict is returned when strict resolution finds differing version sets.
	ErrVersionConflict = zerr.New("requested versions do not match lockfile versions")

	// ErrVersionUnavailable is returned when a requested version is not offered upstream.
	ErrVersionUnavailable = zerr.New("version is not available upstream")

	// ErrMissingVersions is returned by verify when tracked versions are no longer available.
	ErrMissingVersions = zerr.New("tracked versions are missing upstream")

	// ErrVersionNotMirrored is returned when a version is read locally but has no files in the store.
	ErrVersionNotMirrored = zerr.New("version is not mirrored locally")

	// ErrInvalidStrategy is returned for an unknown version conflict strategy.
	ErrInvalidStrategy = zerr.New("invalid version strategy, expected 'strict', 'merge' or 'overwrite'")

	// ErrInvalidSourceMode is returned for an unknown compare source mode.
	ErrInvalidSourceMode = zerr.New("invalid source mode, expected 'local', 'api' or 'prefer-local'")

	// ErrFileNotFound is returned when a file does not exist in the store.
	ErrFileNotFound = zerr.New("file not found")

	// ErrNotADirectory is returned when a directory operation targets a file.
	ErrNotADirectory = zerr.New("not a directory")

	// ErrInvalidPath is returned for paths that escape the store root.
	ErrInvalidPath = zerr.New("invalid path")

	// ErrUnknownBackend is returned when the configured backend kind is not registered.
	ErrUnknownBackend = zerr.New("unknown storage backend")

	// ErrConfigReadFailed is returned when the configuration file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the configuration file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidGlob is returned when a filter pattern cannot be compiled.
	ErrInvalidGlob = zerr.New("invalid glob pattern")
)
