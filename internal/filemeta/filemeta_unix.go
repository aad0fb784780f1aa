//go:build unix

package filemeta

import (
	"os"
	"syscall"
)

func modeOf(fi os.FileInfo) uint32 {
	if stat, ok := fi.Sys().(*syscall.Stat_t); ok {
		return uint32(stat.Mode) & 0o7777
	}
	return uint32(fi.Mode().Perm())
}

func ownerOf(fi os.FileInfo) (uid, gid uint32) {
	stat, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0
	}
	return stat.Uid, stat.Gid
}
