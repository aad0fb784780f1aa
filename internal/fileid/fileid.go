// Package fileid identifies files by their underlying storage identity
// rather than by path, so that multiple paths pointing at the same inode
// (hardlinks) can be recognized during a pack run.
package fileid

import "os"

// FileID is an opaque, platform-specific identity for a file's on-disk
// storage. Two paths with an equal FileID are hardlinks to the same data.
type FileID struct {
	platform platformID
}

// Get returns the identity of the file backing fi, and whether one could
// be determined. When ok is false (the platform has no stable identity
// concept, or the platform lookup failed) the caller must never treat the
// file as hardlink-eligible.
func Get(path string, fi os.FileInfo) (id FileID, ok bool) {
	pid, ok := getPlatformID(path, fi)
	return FileID{platform: pid}, ok
}
