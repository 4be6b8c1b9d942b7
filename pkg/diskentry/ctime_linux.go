//go:build linux

package diskentry

import (
	"io/fs"
	"syscall"
	"time"
)

// createdTime extracts ctime (status-change time) from a fs.FileInfo backed
// by a *syscall.Stat_t. Go exposes no portable file-creation time; ctime is
// the closest analogue the platform offers.
func createdTime(info fs.FileInfo) time.Time {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}
	}
	return time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)
}
