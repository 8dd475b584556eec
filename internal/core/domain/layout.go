package domain

import "path"

const (
	// LockfileName is the name of the lockfile at the store root.
	LockfileName = ".ucd-store.lock"

	// SnapshotFileName is the name of the per-version snapshot file.
	SnapshotFileName = "snapshot.json"

	// ConfigFileName is the name of the default configuration file.
	ConfigFileName = "ucd-store.yaml"

	// UCDDirName is the container folder the remote tree wraps files in.
	UCDDirName = "ucd"

	// CacheDirName is the default name of the remote content cache directory.
	CacheDirName = ".ucd-cache"

	// DefaultConcurrency is the default number of concurrent remote fetches.
	DefaultConcurrency = 5

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// SnapshotPath returns the store-relative snapshot path for a version.
func SnapshotPath(version string) string {
	return path.Join(version, SnapshotFileName)
}

// StorePath returns the store-relative location of a version file.
func StorePath(version, file string) string {
	return path.Join(version, file)
}

// RemotePath returns the remote API path of a version file.
func RemotePath(version, file string) string {
	return path.Join(version, UCDDirName, file)
}
