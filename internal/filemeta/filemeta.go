// Package filemeta captures the subset of file metadata an archive needs
// to preserve: permission bits, modification time, and ownership.
package filemeta

import "os"

// MemoryFileThreshold is the size boundary at or above which a file is read as
// a sequence of chunks on a dedicated channel instead of being buffered
// whole in memory.
const MemoryFileThreshold = 128 << 20 // 128 MiB

// ChunkSize is the size of each slice read from a large file while it is
// being streamed.
const ChunkSize = 4 << 20 // 4 MiB

// Metadata is the subset of a file's stat information an archive entry
// carries. Mtime is seconds since the Unix epoch.
type Metadata struct {
	Mode  uint32
	Mtime int64
	UID   uint32
	GID   uint32
}

// Capture extracts Metadata from a single os.FileInfo, avoiding a second
// stat call.
func Capture(fi os.FileInfo) Metadata {
	m := Metadata{
		Mode:  modeOf(fi),
		Mtime: fi.ModTime().Unix(),
	}
	m.UID, m.GID = ownerOf(fi)
	return m
}
