package cpm

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"
)

var (
	// ErrExit is returned by a handler when the program asked to terminate.
	ErrExit = errors.New("EXIT")

	// ErrUnimplemented is returned for a BDOS function we do not emulate.
	ErrUnimplemented = errors.New("UNIMPLEMENTED")

	ErrFailPhrase = errors.New("fail phrase in console output")
	ErrBreakpoint = errors.New("breakpoint")
	ErrCycleLimit = errors.New("cycle limit reached")
)

// maxString bounds C_WRITESTRING when the terminator is missing.
const maxString = addressSpace

// Syscall is one emulated BDOS function.
type Syscall struct {
	Desc    string
	Handler func(ctx context.Context, m *Machine) error
}

func bdosFunctions() map[uint8]Syscall {
	sys := make(map[uint8]Syscall)
	sys[0] = Syscall{Desc: "P_TERMCPM", Handler: bdosTerminate}
	sys[1] = Syscall{Desc: "C_READ", Handler: bdosRead}
	sys[2] = Syscall{Desc: "C_WRITE", Handler: bdosWrite}
	sys[6] = Syscall{Desc: "C_RAWIO", Handler: bdosRawIO}
	sys[9] = Syscall{Desc: "C_WRITESTRING", Handler: bdosWriteString}
	sys[11] = Syscall{Desc: "C_STAT", Handler: bdosStatus}
	sys[12] = Syscall{Desc: "S_BDOSVER", Handler: bdosVersion}
	return sys
}

func (m *Machine) callBDOS(ctx context.Context) error {
	fn := m.cpu.C
	m.stats.BDOSCalls++

	call, ok := m.bdos[fn]
	if !ok {
		m.log.Error("Unimplemented syscall",
			slog.Int("syscall", int(fn)),
			slog.String("syscallHex", fmt.Sprintf("0x%02X", fn)))
		return errors.Wrapf(ErrUnimplemented, "bdos function %d", fn)
	}
	m.log.Debug("Calling BDOS emulation",
		slog.String("name", call.Desc),
		slog.Int("syscall", int(fn)),
		slog.String("syscallHex", fmt.Sprintf("0x%02X", fn)))
	return call.Handler(ctx, m)
}

// result8 places a byte result in A and L, clearing B and H.
func (m *Machine) result8(v byte) {
	c := m.cpu
	c.A, c.L = v, v
	c.B, c.H = 0, 0
}

// result16 places a word result in HL and mirrors it into B and A.
func (m *Machine) result16(v uint16) {
	c := m.cpu
	c.SetHL(v)
	c.A, c.B = c.L, c.H
}

func bdosTerminate(_ context.Context, _ *Machine) error {
	return ErrExit
}

// bdosRead blocks for a key and echoes it. End of input reads as ^Z.
func bdosRead(ctx context.Context, m *Machine) error {
	b, err := m.console.Read(ctx)
	if err == io.EOF {
		m.result8(0x1A)
		return nil
	}
	if err != nil {
		return err
	}
	m.result8(b)
	return m.emit(b)
}

func bdosWrite(_ context.Context, m *Machine) error {
	return m.emit(m.cpu.E)
}

func bdosRawIO(ctx context.Context, m *Machine) error {
	switch e := m.cpu.E; e {
	case 0xFF:
		b, _ := m.console.Poll()
		m.result8(b)
	case 0xFE:
		m.result8(statusByte(m.console.Pending()))
	case 0xFD:
		b, err := m.console.Read(ctx)
		if err == io.EOF {
			b, err = 0x1A, nil
		}
		if err != nil {
			return err
		}
		m.result8(b)
	default:
		return m.emit(e)
	}
	return nil
}

func bdosWriteString(_ context.Context, m *Machine) error {
	addr := m.cpu.DE()
	for range maxString {
		b := m.mem[addr]
		if b == '$' {
			break
		}
		if err := m.emit(b); err != nil {
			return err
		}
		addr++
	}
	return nil
}

func bdosStatus(_ context.Context, m *Machine) error {
	m.result8(statusByte(m.console.Pending()))
	return nil
}

// bdosVersion reports CP/M 2.2 on an 8080-class machine.
func bdosVersion(_ context.Context, m *Machine) error {
	m.result16(0x0022)
	return nil
}

func statusByte(pending bool) byte {
	if pending {
		return 0xFF
	}
	return 0x00
}
