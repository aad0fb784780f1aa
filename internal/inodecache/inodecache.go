// Package inodecache tracks which relative path was the first one seen
// for a given file identity during a single pack run, so later paths
// pointing at the same storage can be archived as hardlinks instead of
// duplicate file bodies.
//
// A Cache is scoped to exactly one pack invocation; nothing here persists
// across runs.
package inodecache

import (
	"sync"

	"github.com/nullpointer-dev/zstar/internal/fileid"
)

// Cache is a concurrent get-or-insert map from file identity to the
// relative path under which it was first archived.
type Cache struct {
	m sync.Map // fileid.FileID -> string
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{}
}

// GetOrInsert records relpath as the canonical path for id if id hasn't
// been seen before, and reports whether it was the one that won.
//
// When inserted is false, existing is the relpath of the sibling group's
// first-seen member and the caller should archive the current path as a
// hardlink to it.
func (c *Cache) GetOrInsert(id fileid.FileID, relpath string) (existing string, inserted bool) {
	actual, loaded := c.m.LoadOrStore(id, relpath)
	if !loaded {
		return "", true
	}
	return actual.(string), false
}
