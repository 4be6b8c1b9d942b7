//go:build !linux

package diskentry

import (
	"io/fs"
	"time"
)

// createdTime has no portable implementation outside linux; callers treat
// a zero time.Time as "unknown".
func createdTime(info fs.FileInfo) time.Time {
	return time.Time{}
}
