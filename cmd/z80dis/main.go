// z80dis prints a listing of a raw Z80 binary.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/intuitionamiga/z80"
	"github.com/pkg/errors"
)

type cli struct {
	File   string `arg:"" type:"existingfile" help:"binary image to disassemble"`
	Origin string `name:"origin" default:"0x100" help:"address of the first byte after --skip"`
	Count  int    `name:"count" default:"0" help:"instructions to list, 0 for the whole image"`
	Skip   int    `name:"skip" default:"0" help:"bytes to drop from the start of the file"`
}

func main() {
	var c cli
	ctx := kong.Parse(&c, kong.Name("z80dis"), kong.Description("Disassemble a Z80 binary image."))
	err := c.Run(os.Stdout)
	ctx.FatalIfErrorf(err)
}

func (c *cli) Run(out io.Writer) error {
	origin, ok := z80.ParseAddress(c.Origin)
	if !ok {
		return errors.Errorf("z80dis: bad origin %q", c.Origin)
	}
	data, err := os.ReadFile(c.File)
	if err != nil {
		return errors.Wrap(err, "z80dis")
	}
	if c.Skip < 0 || c.Skip > len(data) {
		return errors.Errorf("z80dis: skip %d outside a %d byte file", c.Skip, len(data))
	}

	for _, in := range z80.DisassembleImage(data[c.Skip:], origin, c.Count) {
		if _, err := fmt.Fprintln(out, in); err != nil {
			return err
		}
	}
	return nil
}
