// Package scanner walks a directory tree and feeds the paths found to the
// reader pool over a bounded channel.
//
// # Why a single producer
//
// Unlike a duplicate-file scan, archiving a tree has no independent unit
// of work per directory: every path still has to pass through exactly one
// tar stream in the end. All of the pipeline's parallelism therefore lives
// downstream in the reader pool, and the scanner is a single goroutine
// doing a depth-first walk — the bounded path channel is what lets it run
// ahead of a slower reader pool without unbounded buffering.
//
// # Data Flow
//
//	Run() starts
//	    │
//	    ├──► filepath.WalkDir(root)
//	    │        ├──► per-entry walk error  → errCh, continue
//	    │        └──► path != root          → pathCh (blocks if pool is behind)
//	    │
//	    └──► close(pathCh)
package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats tracks scan progress using atomic counters so a consistent-enough
// snapshot can be read concurrently while the walk runs.
type Stats struct {
	ScannedFiles atomic.Int64
	ScannedBytes atomic.Int64
	startTime    time.Time
}

func (s *Stats) String() string {
	return fmt.Sprintf("scanned %d files (%s) in %s",
		s.ScannedFiles.Load(), humanize.IBytes(uint64(s.ScannedBytes.Load())),
		time.Since(s.startTime).Truncate(time.Millisecond))
}

// Run walks root, sending every path found under it (excluding root
// itself) on pathCh, then closes pathCh. Per-entry walk errors are sent to
// errCh (if non-nil) and do not stop the walk; a nil errCh silently drops
// them, matching callers that have decided not to surface scan errors.
func Run(root string, pathCh chan<- string, errCh chan<- error, stats *Stats) {
	if stats != nil {
		stats.startTime = time.Now()
	}
	defer close(pathCh)

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			sendError(errCh, fmt.Errorf("scan %s: %w", path, err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		if stats != nil {
			stats.ScannedFiles.Add(1)
			if info, infoErr := d.Info(); infoErr == nil {
				stats.ScannedBytes.Add(info.Size())
			}
		}
		pathCh <- path
		return nil
	})
}

func sendError(errCh chan<- error, err error) {
	if errCh != nil {
		errCh <- err
	}
}
