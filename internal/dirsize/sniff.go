package dirsize

import (
	"github.com/gabriel-vasile/mimetype"
)

// sniffExt detects the extension of the file at path from its content.
// Undetectable and unreadable files yield the empty extension.
func sniffExt(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return ""
	}

	return normalizeExt(mtype.Extension())
}
