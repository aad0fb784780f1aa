// Package streamreader adapts a large file's chunk channel into an
// io.Reader the tar writer can hand to archive/tar without ever holding
// the whole file in memory.
package streamreader

import (
	"errors"
	"fmt"
	"io"

	"github.com/nullpointer-dev/zstar/internal/bufpool"
	"github.com/nullpointer-dev/zstar/internal/entry"
)

// ErrInvalidChunk is returned when an Entry with a Kind other than
// KindLargeFileChunk/KindLargeFileEnd arrives on the chunk channel.
var ErrInvalidChunk = errors.New("streamreader: unexpected entry kind on chunk channel")

// SizeMismatchError reports that the bytes actually streamed for a large
// file didn't match the size announced in its LargeFileStart entry.
type SizeMismatchError struct {
	Expected, Got int64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("streamreader: expected %d bytes, got %d", e.Expected, e.Got)
}

// Unwrap classifies a size mismatch as io.ErrUnexpectedEOF.
func (e *SizeMismatchError) Unwrap() error {
	return io.ErrUnexpectedEOF
}

// Reader pulls chunks for a single large file off chunkCh until its
// KindLargeFileEnd arrives, presenting them as a single io.Reader.
type Reader struct {
	chunkCh   <-chan entry.Entry
	pool      *bufpool.Pool
	expected  int64
	got       int64
	cur       []byte
	exhausted bool
}

// New creates a Reader that expects exactly expected bytes of content
// before a KindLargeFileEnd, pulling chunks from chunkCh and returning
// drained buffers to pool.
func New(chunkCh <-chan entry.Entry, pool *bufpool.Pool, expected int64) *Reader {
	return &Reader{chunkCh: chunkCh, pool: pool, expected: expected}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	if r.exhausted {
		return 0, io.EOF
	}

	for len(r.cur) == 0 {
		e, ok := <-r.chunkCh
		if !ok {
			return 0, io.ErrClosedPipe
		}

		switch e.Kind {
		case entry.KindLargeFileChunk:
			r.cur = e.Buf
		case entry.KindLargeFileEnd:
			r.exhausted = true
			if r.got != r.expected {
				return 0, &SizeMismatchError{Expected: r.expected, Got: r.got}
			}
			return 0, io.EOF
		default:
			return 0, ErrInvalidChunk
		}
	}

	full := r.cur
	n := copy(p, r.cur)
	r.cur = r.cur[n:]
	r.got += int64(n)
	if len(r.cur) == 0 && r.pool != nil {
		r.pool.Put(full[:0])
	}
	return n, nil
}
