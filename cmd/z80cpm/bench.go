package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

func newBenchCmd(logger func(*cobra.Command) *slog.Logger) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "bench [flags] image.com",
		Short: "Run an image and report the effective clock speed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			stats, err := runImage(cmd.Context(), args[0], &opts, logger(cmd), io.Discard, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "cycles:       %d\n", stats.Cycles)
			fmt.Fprintf(out, "steps:        %d\n", stats.Steps)
			fmt.Fprintf(out, "instructions: %d\n", stats.Instructions)
			fmt.Fprintf(out, "elapsed:      %s\n", stats.Elapsed)
			fmt.Fprintf(out, "speed:        %.2f MHz\n", stats.MHz())
			return nil
		},
	}
	opts.addFlags(cmd)
	return cmd
}
