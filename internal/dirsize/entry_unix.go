//go:build linux || darwin

package dirsize

import (
	"time"

	"golang.org/x/sys/unix"
)

// fillOwnership sets the owner id and change time from an lstat of the entry.
func fillOwnership(entry *FileEntry) {
	var stat unix.Stat_t
	if err := unix.Lstat(entry.Path, &stat); err != nil {
		return
	}

	entry.OwnerID = stat.Uid
	entry.ChangeTime = time.Unix(stat.Ctim.Unix())
}
