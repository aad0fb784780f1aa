// Package unpack restores a zstd-compressed tar stream onto disk: a
// single goroutine reads the tar stream and dispatches file bodies to a
// bounded worker pool, while directories, symlinks, and hardlinks are
// handled with the ordering spec.md requires (directories created
// immediately but their metadata applied only once every descendant
// exists; symlinks and hardlinks deferred until every regular file is on
// disk).
package unpack

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nullpointer-dev/zstar/internal/pathsafe"
)

// Options configures an unpack run.
type Options struct {
	Threads int // worker pool size; <1 means runtime.NumCPU()
}

const largeFileThreshold = 10 << 20 // 10 MiB

type dirMeta struct {
	path    string
	mode    os.FileMode
	modTime int64
}

type deferredLink struct {
	path   string
	target string
}

type writeJob struct {
	path string
	mode os.FileMode
	body []byte
}

// Execute reads a zstd-compressed tar stream from r and materializes it
// under outputRoot.
func Execute(r io.Reader, outputRoot string, opts Options, decompress func(io.Reader) (io.ReadCloser, error)) error {
	threads := opts.Threads
	if threads < 1 {
		threads = max(1, runtime.NumCPU())
	}

	dec, err := decompress(r)
	if err != nil {
		return fmt.Errorf("unpack: %w", err)
	}
	defer func() { _ = dec.Close() }()

	tr := tar.NewReader(dec)

	jobCh := make(chan writeJob, threads*16)
	var workerWg sync.WaitGroup
	var createdDirs sync.Map // string -> struct{}
	errOnce := &firstError{}

	for i := 0; i < threads; i++ {
		workerWg.Add(1)
		go func() {
			defer workerWg.Done()
			for job := range jobCh {
				if err := writeFile(job, &createdDirs); err != nil {
					errOnce.set(err)
				}
			}
		}()
	}

	var dirs []dirMeta
	var symlinks []deferredLink
	var hardlinks []deferredLink

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			close(jobCh)
			workerWg.Wait()
			return fmt.Errorf("unpack: read tar header: %w", err)
		}

		dest, err := pathsafe.Resolve(outputRoot, hdr.Name)
		if err != nil {
			close(jobCh)
			workerWg.Wait()
			return fmt.Errorf("unpack: %w", err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0o755); err != nil {
				close(jobCh)
				workerWg.Wait()
				return fmt.Errorf("unpack: mkdir %s: %w", dest, err)
			}
			createdDirs.Store(dest, struct{}{})
			dirs = append(dirs, dirMeta{path: dest, mode: os.FileMode(hdr.Mode), modTime: hdr.ModTime.Unix()})

		case tar.TypeReg:
			if err := ensureParentDir(dest, &createdDirs); err != nil {
				close(jobCh)
				workerWg.Wait()
				return fmt.Errorf("unpack: %w", err)
			}
			if hdr.Size > largeFileThreshold {
				if err := writeFileStreaming(dest, os.FileMode(hdr.Mode), tr, hdr.Size); err != nil {
					close(jobCh)
					workerWg.Wait()
					return fmt.Errorf("unpack: write %s: %w", dest, err)
				}
				continue
			}
			body := make([]byte, hdr.Size)
			if _, err := io.ReadFull(tr, body); err != nil {
				close(jobCh)
				workerWg.Wait()
				return fmt.Errorf("unpack: read body %s: %w", hdr.Name, err)
			}
			jobCh <- writeJob{path: dest, mode: os.FileMode(hdr.Mode), body: body}

		case tar.TypeSymlink:
			symlinks = append(symlinks, deferredLink{path: dest, target: hdr.Linkname})

		case tar.TypeLink:
			linkTarget, err := pathsafe.Resolve(outputRoot, hdr.Linkname)
			if err != nil {
				close(jobCh)
				workerWg.Wait()
				return fmt.Errorf("unpack: %w", err)
			}
			hardlinks = append(hardlinks, deferredLink{path: dest, target: linkTarget})

		default:
			// unsupported entry types (devices, fifos, ...) are skipped
		}
	}

	close(jobCh)
	workerWg.Wait()
	if err := errOnce.err(); err != nil {
		return err
	}

	for _, s := range symlinks {
		if err := os.Symlink(s.target, s.path); err != nil {
			fmt.Fprintf(os.Stderr, "\r\033[Kwarning: symlink %s -> %s: %v\n", s.path, s.target, err)
		}
	}
	for _, h := range hardlinks {
		if err := os.Link(h.target, h.path); err != nil {
			fmt.Fprintf(os.Stderr, "\r\033[Kwarning: hardlink %s -> %s: %v\n", h.path, h.target, err)
		}
	}

	applyDirMetadataDeepestFirst(dirs)

	return nil
}

func writeFile(job writeJob, createdDirs *sync.Map) error {
	if err := ensureParentDir(job.path, createdDirs); err != nil {
		return err
	}
	if err := os.WriteFile(job.path, job.body, job.mode.Perm()); err != nil {
		return fmt.Errorf("write %s: %w", job.path, err)
	}
	return os.Chmod(job.path, job.mode.Perm())
}

func writeFileStreaming(path string, mode os.FileMode, r io.Reader, size int64) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := io.CopyN(f, r, size); err != nil {
		return err
	}
	return nil
}

func ensureParentDir(path string, createdDirs *sync.Map) error {
	dir := filepath.Dir(path)
	if _, ok := createdDirs.Load(dir); ok {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	createdDirs.Store(dir, struct{}{})
	return nil
}

// applyDirMetadataDeepestFirst sets mode and mtime on every directory,
// deepest first, so that writing a child's mtime can't disturb a parent's
// mtime that was already restored.
func applyDirMetadataDeepestFirst(dirs []dirMeta) {
	sort.Slice(dirs, func(i, j int) bool {
		return depth(dirs[i].path) > depth(dirs[j].path)
	})
	for _, d := range dirs {
		if err := os.Chmod(d.path, d.mode.Perm()); err != nil {
			fmt.Fprintf(os.Stderr, "\r\033[Kwarning: chmod %s: %v\n", d.path, err)
		}
		mt := time.Unix(d.modTime, 0)
		if err := os.Chtimes(d.path, mt, mt); err != nil {
			fmt.Fprintf(os.Stderr, "\r\033[Kwarning: chtimes %s: %v\n", d.path, err)
		}
	}
}

func depth(path string) int {
	return strings.Count(filepath.Clean(path), string(filepath.Separator))
}

type firstError struct {
	mu  sync.Mutex
	val error
}

func (f *firstError) set(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.val == nil {
		f.val = err
	}
}

func (f *firstError) err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.val
}
