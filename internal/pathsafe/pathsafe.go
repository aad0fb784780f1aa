// Package pathsafe guards against archive entries whose names would
// escape the directory an unpack operation is writing into.
package pathsafe

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Resolve joins root and name and verifies the result stays at or under
// root. A name such as "../../etc/passwd" that climbs out of root is
// rejected; an absolute name is joined under root like a relative one.
//
// The cleaned path is accepted when either condition holds: it equals
// root exactly, or it has root plus a separator as a prefix.
func Resolve(root, name string) (string, error) {
	cleanRoot := filepath.Clean(root)
	joined := filepath.Join(cleanRoot, name)

	if joined != cleanRoot && !strings.HasPrefix(joined, cleanRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("pathsafe: entry %q escapes output root %q", name, root)
	}
	return joined, nil
}
