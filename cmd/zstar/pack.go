package main

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/nullpointer-dev/zstar/internal/pack"
)

type packOptions struct {
	output           string
	level            int
	threads          int
	noLong           bool
	ignoreFailedRead bool
	quiet            bool
}

func newPackCmd() *cobra.Command {
	opts := &packOptions{}

	cmd := &cobra.Command{
		Use:   "pack <input>",
		Short: "Archive a directory into a zstd-compressed tar stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			output := opts.output
			if output == "" {
				output = defaultOutputPath(input)
			}
			return pack.Execute(input, output, pack.Options{
				Level:        opts.level,
				Threads:      opts.threads,
				LongDistance: !opts.noLong,
				IgnoreErrors: opts.ignoreFailedRead,
				ShowProgress: !opts.quiet,
			})
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output archive path (default: <basename of input>.tar.zst)")
	cmd.Flags().IntVarP(&opts.level, "level", "l", 3, "zstd compression level")
	cmd.Flags().IntVarP(&opts.threads, "threads", "t", runtime.NumCPU(), "number of reader/encoder workers")
	cmd.Flags().BoolVar(&opts.noLong, "no-long", false, "disable zstd long-distance matching")
	cmd.Flags().BoolVar(&opts.ignoreFailedRead, "ignore-failed-read", false, "skip files that can't be read instead of aborting")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress the progress spinner")

	return cmd
}

// defaultOutputPath names the archive "<basename>.tar.zst" after the
// input's base name, relative to the current directory.
func defaultOutputPath(input string) string {
	base := filepath.Base(filepath.Clean(input))
	return fmt.Sprintf("%s.tar.zst", base)
}
