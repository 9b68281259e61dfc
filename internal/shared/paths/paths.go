package paths

import (
	"os"
	"path/filepath"
)

// Data subdirectories, relative to the data root.
const (
	// Definitions holds provider definition files (*.embed.json, *.embed.yaml)
	Definitions = "definitions"

	// Snapshots holds saved session snapshots
	Snapshots = "snapshots"

	// Cache holds the persistent response-cache database
	Cache = "cache"
)

// CacheDBFile is the SQLite file name inside the cache directory.
const CacheDBFile = "responses.db"

// SnapshotExt is the file extension of saved session snapshots.
const SnapshotExt = ".snap.zst"

// DataRoot returns the base data directory: $EMBEDKIT_DATA_DIR when set,
// otherwise a per-user directory under the OS config conventions.
func DataRoot() string {
	if dir := os.Getenv("EMBEDKIT_DATA_DIR"); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "embedkit")
	}
	return "./embedkit-data"
}

// DefinitionsDir returns the provider definitions directory.
func DefinitionsDir() string {
	return filepath.Join(DataRoot(), Definitions)
}

// SnapshotsDir returns the session snapshots directory.
func SnapshotsDir() string {
	return filepath.Join(DataRoot(), Snapshots)
}

// CacheDB returns the path of the persistent response-cache database.
func CacheDB() string {
	return filepath.Join(DataRoot(), Cache, CacheDBFile)
}

// Ensure creates dir (and parents) when missing.
func Ensure(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// EnsureParent creates the parent directory of path when missing.
func EnsureParent(path string) error {
	return Ensure(filepath.Dir(path))
}
