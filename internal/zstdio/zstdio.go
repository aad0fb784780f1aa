// Package zstdio configures the zstd encoder and decoder used to wrap the
// tar stream on the way to and from disk.
package zstdio

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// defaultWindowMiB is the window size used when long-distance matching is
// requested, large enough to catch repetition across whole directory
// trees without requiring the much larger windows zstd allows.
const defaultWindowMiB = 128

// NewEncoder builds a zstd.Encoder writing to w.
//
// level is a zstd-style compression level, mapped by
// zstd.EncoderLevelFromZstd onto one of klauspost/compress's four encoder
// speeds (below 3 fastest, below 6 default, below 10 better, otherwise
// best); workers controls how many
// goroutines the encoder uses internally for multi-threaded compression;
// longDistance enables a larger match window, klauspost/compress's
// equivalent of zstd's --long flag.
func NewEncoder(w io.Writer, level int, workers int, longDistance bool) (*zstd.Encoder, error) {
	opts := []zstd.EOption{
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
	}
	if workers > 0 {
		opts = append(opts, zstd.WithEncoderConcurrency(workers))
	}
	if longDistance {
		opts = append(opts, zstd.WithWindowSize(defaultWindowMiB<<20))
	}

	enc, err := zstd.NewWriter(w, opts...)
	if err != nil {
		return nil, fmt.Errorf("zstdio: new encoder: %w", err)
	}
	return enc, nil
}

// NewDecoder builds a zstd.Decoder reading from r.
func NewDecoder(r io.Reader, workers int) (*zstd.Decoder, error) {
	opts := []zstd.DOption{}
	if workers > 0 {
		opts = append(opts, zstd.WithDecoderConcurrency(workers))
	}

	dec, err := zstd.NewReader(r, opts...)
	if err != nil {
		return nil, fmt.Errorf("zstdio: new decoder: %w", err)
	}
	return dec, nil
}
