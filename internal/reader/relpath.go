package reader

import "path/filepath"

// relPathUnder computes path's location relative to root's parent, so the
// root directory's own name is retained as the first path component, using
// a three-tier fallback: a clean relative path when possible, the path's
// base name when filepath.Rel fails (e.g. different volumes on Windows),
// and the literal "unknown" if even that is empty.
func relPathUnder(root, path string) string {
	if rel, err := filepath.Rel(filepath.Dir(root), path); err == nil && rel != "." && rel != "" {
		return filepath.ToSlash(rel)
	}
	if base := filepath.Base(path); base != "" && base != "." && base != string(filepath.Separator) {
		return base
	}
	return "unknown"
}
