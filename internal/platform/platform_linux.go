//go:build linux

package platform

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

func kernelSupportsAsyncIO() bool {
	major, ok := unameMajorVersion()
	return ok && major >= 6
}

// unameMajorVersion parses the major version component out of
// unix.Uname's release string (e.g. "6.8.0-generic" -> 6).
func unameMajorVersion() (int, bool) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return 0, false
	}
	release := charsToString(uts.Release[:])
	return parseMajor(release)
}

func parseMajor(release string) (int, bool) {
	dot := strings.IndexByte(release, '.')
	if dot < 0 {
		return 0, false
	}
	major, err := strconv.Atoi(release[:dot])
	if err != nil {
		return 0, false
	}
	return major, true
}

func charsToString(in []byte) string {
	if n := bytes.IndexByte(in, 0); n >= 0 {
		return string(in[:n])
	}
	return string(in)
}
