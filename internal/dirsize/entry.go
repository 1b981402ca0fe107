package dirsize

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// FileEntry is a snapshot of one file taken at scan time.
type FileEntry struct {
	// Path is the file path as walked (joined with the scan root).
	Path string `json:"path"`
	// RelPath is the path relative to the scan root, slash separated.
	RelPath string `json:"rel_path"`
	// Ext is the lowercased extension including the leading dot.
	Ext string `json:"ext"`
	// Size is the size in bytes.
	Size int64 `json:"size"`
	// ModTime is the modification time.
	ModTime time.Time `json:"mod_time"`
	// ChangeTime is the inode change time where the OS exposes it, ModTime otherwise.
	ChangeTime time.Time `json:"change_time"`
	// OwnerID is the numeric owner, 0 where the OS does not expose one.
	OwnerID uint32 `json:"owner_id"`
	// Mode holds the file mode and permission bits.
	Mode fs.FileMode `json:"mode"`
}

// Permissions renders the permission bits as three octal digits.
func (e FileEntry) Permissions() string {
	return fmt.Sprintf("%03o", e.Mode.Perm())
}

// newFileEntry builds an entry from walk data.
func newFileEntry(path, root string, info fs.FileInfo) FileEntry {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}

	entry := FileEntry{
		Path:       path,
		RelPath:    filepath.ToSlash(rel),
		Ext:        normalizeExt(filepath.Ext(path)),
		Size:       info.Size(),
		ModTime:    info.ModTime(),
		ChangeTime: info.ModTime(),
		Mode:       info.Mode(),
	}

	fillOwnership(&entry)

	return entry
}

// normalizeExt lowercases ext and makes sure it starts with a dot.
// The empty extension stays empty.
func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}

	return "." + ext
}
