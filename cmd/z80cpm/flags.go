package main

import (
	"fmt"
	"strings"

	"github.com/intuitionamiga/z80"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// chipValue selects the CPU variant on the command line.
type chipValue z80.Chip

var _ pflag.Value = (*chipValue)(nil)

func (c *chipValue) String() string { return z80.Chip(*c).String() }

func (c *chipValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "nmos":
		*c = chipValue(z80.NMOS)
	case "cmos":
		*c = chipValue(z80.CMOS)
	default:
		return errors.Errorf("unknown chip %q, want nmos or cmos", s)
	}
	return nil
}

func (c *chipValue) Type() string { return "chip" }

// addrList collects repeated address flags.
type addrList []uint16

var _ pflag.Value = (*addrList)(nil)

func (l *addrList) String() string {
	parts := make([]string, len(*l))
	for i, a := range *l {
		parts[i] = fmt.Sprintf("0x%04X", a)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (l *addrList) Set(s string) error {
	for _, part := range strings.Split(s, ",") {
		addr, ok := z80.ParseAddress(part)
		if !ok {
			return errors.Errorf("bad address %q", part)
		}
		*l = append(*l, addr)
	}
	return nil
}

func (l *addrList) Type() string { return "addr" }

func (c chipValue) chip() z80.Chip { return z80.Chip(c) }
