//go:build !unix && !windows

package fileid

import "os"

// platformID is empty on platforms with no stable per-file identity
// concept; Get always reports ok=false here.
type platformID struct{}

func getPlatformID(_ string, _ os.FileInfo) (platformID, bool) {
	return platformID{}, false
}
