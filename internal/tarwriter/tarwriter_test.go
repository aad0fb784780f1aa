package tarwriter

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/nullpointer-dev/zstar/internal/bufpool"
	"github.com/nullpointer-dev/zstar/internal/entry"
	"github.com/nullpointer-dev/zstar/internal/filemeta"
)

func TestWriteSmallFileRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	chunkCh := make(chan entry.Entry)
	w := New(&buf, chunkCh, bufpool.New(4))

	err := w.WriteEntry(entry.Entry{
		Kind:    entry.KindSmallFile,
		RelPath: "a.txt",
		Buf:     []byte("hello"),
		Meta:    filemeta.Metadata{Mode: 0o644, Mtime: 1000},
	})
	if err != nil {
		t.Fatalf("WriteEntry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	tr := tar.NewReader(&buf)
	hdr, err := tr.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if hdr.Name != "a.txt" || hdr.Typeflag != tar.TypeReg || hdr.Size != 5 {
		t.Fatalf("unexpected header: %+v", hdr)
	}
	body, _ := io.ReadAll(tr)
	if string(body) != "hello" {
		t.Fatalf("got body %q", body)
	}
}

func TestWriteLargeFileStreamsFromChunkChannel(t *testing.T) {
	var buf bytes.Buffer
	chunkCh := make(chan entry.Entry, 8)
	w := New(&buf, chunkCh, bufpool.New(4))

	chunkCh <- entry.Entry{Kind: entry.KindLargeFileChunk, Buf: []byte("part1-")}
	chunkCh <- entry.Entry{Kind: entry.KindLargeFileChunk, Buf: []byte("part2")}
	chunkCh <- entry.Entry{Kind: entry.KindLargeFileEnd}

	err := w.WriteEntry(entry.Entry{
		Kind:    entry.KindLargeFileStart,
		RelPath: "big.bin",
		Size:    int64(len("part1-part2")),
		Meta:    filemeta.Metadata{Mode: 0o644},
	})
	if err != nil {
		t.Fatalf("WriteEntry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	tr := tar.NewReader(&buf)
	hdr, err := tr.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if hdr.Name != "big.bin" || hdr.Size != int64(len("part1-part2")) {
		t.Fatalf("unexpected header: %+v", hdr)
	}
	body, _ := io.ReadAll(tr)
	if string(body) != "part1-part2" {
		t.Fatalf("got body %q", body)
	}
}

func TestWriteSymlinkAndHardlink(t *testing.T) {
	var buf bytes.Buffer
	chunkCh := make(chan entry.Entry)
	w := New(&buf, chunkCh, bufpool.New(4))

	if err := w.WriteEntry(entry.Entry{Kind: entry.KindSymlink, RelPath: "link", Target: "target.txt"}); err != nil {
		t.Fatalf("WriteEntry symlink: %v", err)
	}
	if err := w.WriteEntry(entry.Entry{Kind: entry.KindHardLink, RelPath: "hlink", Target: "orig.txt"}); err != nil {
		t.Fatalf("WriteEntry hardlink: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	tr := tar.NewReader(&buf)
	hdr, err := tr.Next()
	if err != nil || hdr.Typeflag != tar.TypeSymlink || hdr.Linkname != "target.txt" {
		t.Fatalf("unexpected symlink header: %+v err=%v", hdr, err)
	}
	hdr, err = tr.Next()
	if err != nil || hdr.Typeflag != tar.TypeLink || hdr.Linkname != "orig.txt" {
		t.Fatalf("unexpected hardlink header: %+v err=%v", hdr, err)
	}
}

func TestWriteEntryRejectsChunkKindOnMetaChannel(t *testing.T) {
	var buf bytes.Buffer
	chunkCh := make(chan entry.Entry)
	w := New(&buf, chunkCh, bufpool.New(4))

	err := w.WriteEntry(entry.Entry{Kind: entry.KindLargeFileChunk})
	if !errors.Is(err, entry.ErrProtocolViolation) {
		t.Fatalf("expected ErrProtocolViolation, got %v", err)
	}
}

func TestWriteEntryPropagatesReaderErrors(t *testing.T) {
	var buf bytes.Buffer
	chunkCh := make(chan entry.Entry)
	w := New(&buf, chunkCh, bufpool.New(4))

	wantErr := errors.New("boom")
	err := w.WriteEntry(entry.Entry{Kind: entry.KindError, RelPath: "x", Err: wantErr})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
}
