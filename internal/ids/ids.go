// Package ids generates opaque on-disk picture names.
package ids

import (
	"strings"

	"github.com/segmentio/ksuid"
)

// NewPictureName returns a fresh unique filename with the given extension.
// KSUIDs sort by creation time, which keeps blob listings roughly
// chronological.
func NewPictureName(ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return ksuid.New().String()
	}
	return ksuid.New().String() + "." + ext
}
