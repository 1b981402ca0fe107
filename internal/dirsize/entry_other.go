//go:build !linux && !darwin

package dirsize

// fillOwnership is a no-op where the OS does not expose owner ids.
func fillOwnership(_ *FileEntry) {}
