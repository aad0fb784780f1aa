// Package reader implements the pack pipeline's worker pool: a fixed
// number of goroutines pull paths off the scanner's channel, stat and
// classify each one, and emit entry.Entry values for the writer to
// consume.
//
// # Concurrency Model
//
//	┌─────────────────┬────────────────────────────────────────────────┐
//	│ Primitive       │ Purpose                                        │
//	├─────────────────┼────────────────────────────────────────────────┤
//	│ pathCh          │ Paths from the scanner (blocking receive)      │
//	│ metaCh          │ Everything except large-file chunks             │
//	│ chunkCh         │ Large-file chunks only, serialized by largeGate │
//	│ largeGate       │ Only one large file streams at a time          │
//	│ wg              │ Tracks worker goroutines                       │
//	└─────────────────┴────────────────────────────────────────────────┘
//
// A single shared mutex gates large-file streaming because the writer
// reads chunkCh through exactly one streamreader.Reader at a time; letting
// two large files interleave their chunks would corrupt both tar bodies.
// The gate is a real blocking mutex, not a spin loop, so a worker waiting
// for its turn parks instead of burning CPU.
package reader

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/nullpointer-dev/zstar/internal/bufpool"
	"github.com/nullpointer-dev/zstar/internal/entry"
	"github.com/nullpointer-dev/zstar/internal/fileid"
	"github.com/nullpointer-dev/zstar/internal/filemeta"
	"github.com/nullpointer-dev/zstar/internal/inodecache"
)

// Options configures a worker pool.
type Options struct {
	Root         string // Directory the pack operation was invoked on
	Workers      int    // Number of reader goroutines; <1 means runtime.NumCPU()
	IgnoreErrors bool   // Per-file errors are logged instead of aborting the run
}

// Pool reads paths from pathCh and emits entry.Entry values on metaCh and
// chunkCh until pathCh is closed and every in-flight path has been
// processed, then closes both output channels.
type Pool struct {
	opts      Options
	cache     *inodecache.Cache
	pool      *bufpool.Pool
	largeGate sync.Mutex
}

// New creates a worker pool sharing cache (hardlink detection) and pool
// (buffer recycling) with the rest of the pack run.
func New(opts Options, cache *inodecache.Cache, bufPool *bufpool.Pool) *Pool {
	if opts.Workers < 1 {
		opts.Workers = max(1, runtime.NumCPU())
	}
	return &Pool{opts: opts, cache: cache, pool: bufPool}
}

// Run starts the worker pool and blocks until pathCh is exhausted and all
// in-flight entries have been emitted, then closes metaCh and chunkCh.
func (p *Pool) Run(pathCh <-chan string, metaCh, chunkCh chan<- entry.Entry) {
	var wg sync.WaitGroup
	wg.Add(p.opts.Workers)
	for i := 0; i < p.opts.Workers; i++ {
		go func() {
			defer wg.Done()
			for path := range pathCh {
				p.processPath(path, metaCh, chunkCh)
			}
		}()
	}

	wg.Wait()
	close(metaCh)
	close(chunkCh)
}

func (p *Pool) processPath(path string, metaCh, chunkCh chan<- entry.Entry) {
	relPath := p.relPath(path)

	fi, err := os.Lstat(path)
	if err != nil {
		p.fail(metaCh, relPath, fmt.Errorf("stat %s: %w", path, err))
		return
	}

	switch {
	case fi.IsDir():
		metaCh <- entry.Entry{Kind: entry.KindDir, RelPath: relPath, Meta: filemeta.Capture(fi)}

	case fi.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			p.fail(metaCh, relPath, fmt.Errorf("readlink %s: %w", path, err))
			return
		}
		metaCh <- entry.Entry{Kind: entry.KindSymlink, RelPath: relPath, Target: target, Meta: filemeta.Capture(fi)}

	case fi.Mode().IsRegular():
		p.processFile(path, relPath, fi, metaCh, chunkCh)

	default:
		// devices, sockets, fifos: not archived, silently skipped as the
		// original tree has nothing meaningful for a tar entry to hold.
	}
}

func (p *Pool) processFile(path, relPath string, fi os.FileInfo, metaCh, chunkCh chan<- entry.Entry) {
	meta := filemeta.Capture(fi)

	if id, ok := fileid.Get(path, fi); ok {
		if first, inserted := p.cache.GetOrInsert(id, relPath); !inserted {
			metaCh <- entry.Entry{Kind: entry.KindHardLink, RelPath: relPath, Target: first, Meta: meta}
			return
		}
	}

	if fi.Size() < filemeta.MemoryFileThreshold {
		p.readSmallFile(path, relPath, fi, meta, metaCh)
		return
	}
	p.streamLargeFile(path, relPath, fi, meta, metaCh, chunkCh)
}

func (p *Pool) readSmallFile(path, relPath string, fi os.FileInfo, meta filemeta.Metadata, metaCh chan<- entry.Entry) {
	f, err := os.Open(path)
	if err != nil {
		p.fail(metaCh, relPath, fmt.Errorf("open %s: %w", path, err))
		return
	}
	defer func() { _ = f.Close() }()

	buf := p.pool.Get(int(fi.Size()))
	buf = buf[:fi.Size()]
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		p.fail(metaCh, relPath, fmt.Errorf("read %s: %w", path, err))
		return
	}
	buf = buf[:n]

	metaCh <- entry.Entry{Kind: entry.KindSmallFile, RelPath: relPath, Buf: buf, Size: int64(n), Meta: meta}
}

// streamLargeFile holds the large-file gate for the entire
// LargeFileStart..LargeFileEnd span, so exactly one large file's chunks
// are ever in flight on chunkCh at a time.
func (p *Pool) streamLargeFile(path, relPath string, fi os.FileInfo, meta filemeta.Metadata, metaCh, chunkCh chan<- entry.Entry) {
	f, err := os.Open(path)
	if err != nil {
		p.fail(metaCh, relPath, fmt.Errorf("open %s: %w", path, err))
		return
	}
	defer func() { _ = f.Close() }()

	p.largeGate.Lock()
	defer p.largeGate.Unlock()

	metaCh <- entry.Entry{Kind: entry.KindLargeFileStart, RelPath: relPath, Size: fi.Size(), Meta: meta}

	var offset int64
	for offset < fi.Size() {
		buf := p.pool.Get(filemeta.ChunkSize)
		size := int64(filemeta.ChunkSize)
		if remaining := fi.Size() - offset; remaining < size {
			size = remaining
		}
		buf = buf[:size]

		n, err := io.ReadFull(io.NewSectionReader(f, offset, size), buf)
		if err != nil && err != io.ErrUnexpectedEOF {
			chunkCh <- entry.Entry{Kind: entry.KindLargeFileEnd}
			p.fail(metaCh, relPath, fmt.Errorf("read %s at %d: %w", path, offset, err))
			return
		}

		chunkCh <- entry.Entry{Kind: entry.KindLargeFileChunk, RelPath: relPath, Buf: buf[:n]}
		offset += int64(n)
	}

	chunkCh <- entry.Entry{Kind: entry.KindLargeFileEnd, RelPath: relPath}
}

func (p *Pool) relPath(path string) string {
	return relPathUnder(p.opts.Root, path)
}

func (p *Pool) fail(metaCh chan<- entry.Entry, relPath string, err error) {
	if p.opts.IgnoreErrors {
		fmt.Fprintf(os.Stderr, "\r\033[Kwarning: %v\n", err)
		return
	}
	metaCh <- entry.Entry{Kind: entry.KindError, RelPath: relPath, Err: err}
}
