package util

import "os"

// EnsureDir creates path and any missing parents. Existing directories are
// left alone.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
