package zstdio

import (
	"bytes"
	"io"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, 3, 1, false)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}

	want := []byte("the quick brown fox jumps over the lazy dog, repeatedly, repeatedly, repeatedly")
	if _, err := enc.Write(want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	dec, err := NewDecoder(&buf, 1)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	defer dec.Close()

	got, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEncoderWithLongDistanceMatching(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, 1, 1, true)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if _, err := enc.Write([]byte("data")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected non-empty output")
	}
}
