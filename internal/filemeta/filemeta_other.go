//go:build !unix

package filemeta

import "os"

// modeOf synthesizes a POSIX-style mode on platforms without one:
// directories are 0o755, read-only files are 0o444, writable files are
// 0o644.
func modeOf(fi os.FileInfo) uint32 {
	if fi.IsDir() {
		return 0o755
	}
	if fi.Mode().Perm()&0o200 == 0 {
		return 0o444
	}
	return 0o644
}

func ownerOf(_ os.FileInfo) (uid, gid uint32) {
	return 0, 0
}
