package main

import (
	"fmt"
	"os"

	"github.com/intuitionamiga/z80"
	"github.com/spf13/cobra"
)

func newDisasmCmd() *cobra.Command {
	var (
		origin uint16
		count  int
	)

	cmd := &cobra.Command{
		Use:   "disasm [flags] image.com",
		Short: "List the instructions in an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, in := range z80.DisassembleImage(data, origin, count) {
				fmt.Fprintln(out, in)
			}
			return nil
		},
	}
	cmd.Flags().Uint16Var(&origin, "origin", 0x0100, "Load address of the image")
	cmd.Flags().IntVar(&count, "count", 0, "Instructions to list (0 = whole image)")
	return cmd
}
