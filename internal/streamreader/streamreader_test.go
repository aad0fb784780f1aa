package streamreader

import (
	"errors"
	"io"
	"testing"

	"github.com/nullpointer-dev/zstar/internal/entry"
)

func TestReadConcatenatesChunksThenEOF(t *testing.T) {
	ch := make(chan entry.Entry, 4)
	ch <- entry.Entry{Kind: entry.KindLargeFileChunk, Buf: []byte("hello ")}
	ch <- entry.Entry{Kind: entry.KindLargeFileChunk, Buf: []byte("world")}
	ch <- entry.Entry{Kind: entry.KindLargeFileEnd}

	r := New(ch, nil, int64(len("hello world")))
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestReadSizeMismatch(t *testing.T) {
	ch := make(chan entry.Entry, 2)
	ch <- entry.Entry{Kind: entry.KindLargeFileChunk, Buf: []byte("short")}
	ch <- entry.Entry{Kind: entry.KindLargeFileEnd}

	r := New(ch, nil, 100)
	_, err := io.ReadAll(r)

	var mismatch *SizeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected SizeMismatchError, got %v", err)
	}
}

func TestReadInvalidKind(t *testing.T) {
	ch := make(chan entry.Entry, 1)
	ch <- entry.Entry{Kind: entry.KindDir}

	r := New(ch, nil, 10)
	_, err := r.Read(make([]byte, 10))
	if !errors.Is(err, ErrInvalidChunk) {
		t.Fatalf("expected ErrInvalidChunk, got %v", err)
	}
}

func TestReadClosedChannel(t *testing.T) {
	ch := make(chan entry.Entry)
	close(ch)

	r := New(ch, nil, 10)
	_, err := r.Read(make([]byte, 10))
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("expected ErrClosedPipe, got %v", err)
	}
}
