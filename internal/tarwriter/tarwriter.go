// Package tarwriter applies entry.Entry values to a GNU tar stream. It is
// the pipeline's single writer: entries arrive from the reader pool's
// metadata channel and are serialized one at a time onto the underlying
// archive/tar.Writer, which owns header checksum computation.
package tarwriter

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"

	"github.com/nullpointer-dev/zstar/internal/bufpool"
	"github.com/nullpointer-dev/zstar/internal/entry"
	"github.com/nullpointer-dev/zstar/internal/streamreader"
)

// Writer serializes entry.Entry values onto an underlying tar stream.
type Writer struct {
	tw      *tar.Writer
	pool    *bufpool.Pool
	chunkCh <-chan entry.Entry
}

// New wraps w in a GNU-format tar writer. chunkCh is drained by
// WriteEntry whenever a KindLargeFileStart arrives, so it must be the
// same channel the reader pool's workers send chunks on.
func New(w io.Writer, chunkCh <-chan entry.Entry, pool *bufpool.Pool) *Writer {
	return &Writer{tw: tar.NewWriter(w), chunkCh: chunkCh, pool: pool}
}

// WriteEntry appends one archive member for e. Chunk-only kinds
// (KindLargeFileChunk/KindLargeFileEnd) must never reach here directly —
// they're consumed internally while streaming a KindLargeFileStart — and
// doing so is reported as a protocol violation.
func (w *Writer) WriteEntry(e entry.Entry) error {
	switch e.Kind {
	case entry.KindDir:
		return w.writeHeaderOnly(e, tar.TypeDir, 0)

	case entry.KindSmallFile:
		if err := w.writeHeaderOnly(e, tar.TypeReg, int64(len(e.Buf))); err != nil {
			return err
		}
		_, err := io.Copy(w.tw, bytes.NewReader(e.Buf))
		w.pool.Put(e.Buf[:0])
		if err != nil {
			return fmt.Errorf("tarwriter: write body %s: %w", e.RelPath, err)
		}
		return nil

	case entry.KindLargeFileStart:
		if err := w.writeHeaderOnly(e, tar.TypeReg, e.Size); err != nil {
			return err
		}
		sr := streamreader.New(w.chunkCh, w.pool, e.Size)
		if _, err := io.Copy(w.tw, sr); err != nil {
			return fmt.Errorf("tarwriter: stream body %s: %w", e.RelPath, err)
		}
		return nil

	case entry.KindSymlink:
		hdr := w.header(e, tar.TypeSymlink, 0)
		hdr.Linkname = e.Target
		return w.tw.WriteHeader(hdr)

	case entry.KindHardLink:
		hdr := w.header(e, tar.TypeLink, 0)
		hdr.Linkname = e.Target
		hdr.Mode = 0o644
		return w.tw.WriteHeader(hdr)

	case entry.KindError:
		return e.Err

	case entry.KindLargeFileChunk, entry.KindLargeFileEnd:
		return fmt.Errorf("tarwriter: %s arrived on metadata channel: %w", e.Kind, entry.ErrProtocolViolation)

	default:
		return fmt.Errorf("tarwriter: unknown entry kind %v", e.Kind)
	}
}

func (w *Writer) header(e entry.Entry, typ byte, size int64) *tar.Header {
	return &tar.Header{
		Format:   tar.FormatGNU,
		Typeflag: typ,
		Name:     e.RelPath,
		Mode:     int64(e.Meta.Mode),
		Uid:      int(e.Meta.UID),
		Gid:      int(e.Meta.GID),
		ModTime:  unixTime(e.Meta.Mtime),
		Size:     size,
	}
}

func (w *Writer) writeHeaderOnly(e entry.Entry, typ byte, size int64) error {
	if err := w.tw.WriteHeader(w.header(e, typ, size)); err != nil {
		return fmt.Errorf("tarwriter: write header %s: %w", e.RelPath, err)
	}
	return nil
}

// Close finishes the underlying tar stream, writing its end-of-archive
// marker. It does not close the writer passed to New.
func (w *Writer) Close() error {
	return w.tw.Close()
}
