package main

import (
	"io"
	"os"
	"runtime"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"

	"github.com/nullpointer-dev/zstar/internal/unpack"
	"github.com/nullpointer-dev/zstar/internal/zstdio"
)

type unpackOptions struct {
	output  string
	threads int
}

func newUnpackCmd() *cobra.Command {
	opts := &unpackOptions{}

	cmd := &cobra.Command{
		Use:   "unpack <archive>",
		Short: "Restore a zstd-compressed tar stream to disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			return unpack.Execute(f, opts.output, unpack.Options{Threads: opts.threads}, decompress(opts.threads))
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", ".", "directory to restore the archive into")
	cmd.Flags().IntVarP(&opts.threads, "threads", "t", runtime.NumCPU(), "number of writer workers")

	return cmd
}

// decompress adapts zstdio.NewDecoder's *zstd.Decoder (whose Close method
// returns no error) to the io.ReadCloser unpack.Execute expects.
func decompress(workers int) func(io.Reader) (io.ReadCloser, error) {
	return func(r io.Reader) (io.ReadCloser, error) {
		dec, err := zstdio.NewDecoder(r, workers)
		if err != nil {
			return nil, err
		}
		return &decoderCloser{dec}, nil
	}
}

// decoderCloser adapts *zstd.Decoder to io.ReadCloser.
type decoderCloser struct {
	*zstd.Decoder
}

func (d *decoderCloser) Close() error {
	d.Decoder.Close()
	return nil
}
