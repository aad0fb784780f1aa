package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "\r\033[Kerror: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root := &cobra.Command{
		Use:   "zstar",
		Short: "Pack and unpack zstd-compressed tar archives",
	}
	root.AddCommand(newPackCmd())
	root.AddCommand(newUnpackCmd())
	return root.Execute()
}
