// Package pack wires the scanner, reader pool, zstd encoder and tar
// writer together into a single archive operation.
//
// # Data Flow
//
//	scanner.Run (1 goroutine)
//	    │ pathCh (1000)
//	    ▼
//	reader.Pool.Run (N goroutines)
//	    │ metaCh (100)        │ chunkCh (100)
//	    ▼                     ▼
//	tarwriter.Writer (calling goroutine, reads both)
//	    ▼
//	zstd encoder ──► output file
package pack

import (
	"fmt"
	"os"
	"runtime"

	"github.com/nullpointer-dev/zstar/internal/bufpool"
	"github.com/nullpointer-dev/zstar/internal/entry"
	"github.com/nullpointer-dev/zstar/internal/inodecache"
	"github.com/nullpointer-dev/zstar/internal/platform"
	"github.com/nullpointer-dev/zstar/internal/progress"
	"github.com/nullpointer-dev/zstar/internal/reader"
	"github.com/nullpointer-dev/zstar/internal/scanner"
	"github.com/nullpointer-dev/zstar/internal/tarwriter"
	"github.com/nullpointer-dev/zstar/internal/zstdio"
)

// Options configures a pack run.
type Options struct {
	Level        int  // zstd compression level
	Threads      int  // reader/encoder worker count; <1 means runtime.NumCPU()
	LongDistance bool // enable zstd long-distance matching
	IgnoreErrors bool // skip unreadable files instead of aborting
	ShowProgress bool // render a progress spinner on stderr
}

const (
	pathChCapacity  = 1000
	metaChCapacity  = 100
	chunkChCapacity = 100
	bufPoolCapacity = 256
)

// Execute archives the tree rooted at input into a zstd-compressed tar
// stream written to output.
func Execute(input, output string, opts Options) error {
	threads := opts.Threads
	if threads < 1 {
		threads = max(1, runtime.NumCPU())
	}

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("pack: create %s: %w", output, err)
	}
	defer func() { _ = out.Close() }()

	enc, err := zstdio.NewEncoder(out, opts.Level, threads, opts.LongDistance)
	if err != nil {
		return fmt.Errorf("pack: %w", err)
	}

	asyncCapable := platform.KernelSupportsAsyncIO()
	fmt.Fprintf(os.Stderr, "zstar: packing %s with %d workers (async-capable kernel: %v)\n", input, threads, asyncCapable)

	pathCh := make(chan string, pathChCapacity)
	metaCh := make(chan entry.Entry, metaChCapacity)
	chunkCh := make(chan entry.Entry, chunkChCapacity)
	errCh := make(chan error, 16)

	cache := inodecache.New()
	buffers := bufpool.New(bufPoolCapacity)

	scanStats := &scanner.Stats{}
	go func() {
		scanner.Run(input, pathCh, errCh, scanStats)
		close(errCh)
	}()

	pool := reader.New(reader.Options{
		Root:         input,
		Workers:      threads,
		IgnoreErrors: opts.IgnoreErrors,
	}, cache, buffers)
	go pool.Run(pathCh, metaCh, chunkCh)

	go drainErrors(errCh)

	tw := tarwriter.New(enc, chunkCh, buffers)
	bar := progress.New(opts.ShowProgress, "pack")

	var aborted error
	for e := range metaCh {
		if e.Kind == entry.KindError {
			aborted = fmt.Errorf("pack: %s: %w", e.RelPath, e.Err)
			if opts.IgnoreErrors {
				aborted = nil
				continue
			}
			break
		}
		if err := tw.WriteEntry(e); err != nil {
			aborted = err
			break
		}
		bar.Advance(e.RelPath)
	}
	bar.Finish()

	if aborted != nil {
		// Drain the remaining metadata so the reader pool's goroutines
		// don't block forever trying to send after we stop reading.
		go drainEntries(metaCh)
		go drainEntries(chunkCh)
		return aborted
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("pack: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("pack: close encoder: %w", err)
	}
	return nil
}

func drainErrors(errCh <-chan error) {
	for err := range errCh {
		fmt.Fprintf(os.Stderr, "\r\033[Kwarning: %v\n", err)
	}
}

func drainEntries(ch <-chan entry.Entry) {
	for range ch {
	}
}
