// debug_cpu_z80.go - register access, breakpoints and snapshots for
// monitors and tracers

package z80

import (
	"slices"
	"strconv"
	"strings"
	"sync"
)

type RegisterInfo struct {
	Name     string
	BitWidth int
	Value    uint64
	Group    string
}

// Peeker is implemented by buses that can be read without side effects.
// The debugger falls back to MreqRead when it is missing.
type Peeker interface {
	Peek(addr uint16) byte
}

// State is a comparable copy of everything observable about the CPU.
type State struct {
	Registers
	Prefix      byte
	Halted      bool
	IntPossible bool
	NmiPossible bool
}

func (c *CPU) Snapshot() State {
	return State{
		Registers:   c.Registers,
		Prefix:      c.prefix,
		Halted:      c.halted,
		IntPossible: c.IsIntPossible(),
		NmiPossible: c.IsNmiPossible(),
	}
}

type DisassembledLine struct {
	Instruction
	IsPC bool
}

type Debugger struct {
	cpu *CPU

	bpMu        sync.RWMutex
	breakpoints map[uint16]bool
}

func NewDebugger(cpu *CPU) *Debugger {
	return &Debugger{
		cpu:         cpu,
		breakpoints: make(map[uint16]bool),
	}
}

func (d *Debugger) CPU() *CPU { return d.cpu }

func (d *Debugger) Registers() []RegisterInfo {
	c := d.cpu
	return []RegisterInfo{
		{Name: "A", BitWidth: 8, Value: uint64(c.A), Group: "general"},
		{Name: "F", BitWidth: 8, Value: uint64(c.F), Group: "flags"},
		{Name: "B", BitWidth: 8, Value: uint64(c.B), Group: "general"},
		{Name: "C", BitWidth: 8, Value: uint64(c.C), Group: "general"},
		{Name: "D", BitWidth: 8, Value: uint64(c.D), Group: "general"},
		{Name: "E", BitWidth: 8, Value: uint64(c.E), Group: "general"},
		{Name: "H", BitWidth: 8, Value: uint64(c.H), Group: "general"},
		{Name: "L", BitWidth: 8, Value: uint64(c.L), Group: "general"},
		{Name: "AF'", BitWidth: 16, Value: uint64(c.AF2()), Group: "shadow"},
		{Name: "BC'", BitWidth: 16, Value: uint64(c.BC2()), Group: "shadow"},
		{Name: "DE'", BitWidth: 16, Value: uint64(c.DE2()), Group: "shadow"},
		{Name: "HL'", BitWidth: 16, Value: uint64(c.HL2()), Group: "shadow"},
		{Name: "IX", BitWidth: 16, Value: uint64(c.IX), Group: "index"},
		{Name: "IY", BitWidth: 16, Value: uint64(c.IY), Group: "index"},
		{Name: "SP", BitWidth: 16, Value: uint64(c.SP), Group: "general"},
		{Name: "PC", BitWidth: 16, Value: uint64(c.PC), Group: "general"},
		{Name: "WZ", BitWidth: 16, Value: uint64(c.WZ), Group: "internal"},
		{Name: "I", BitWidth: 8, Value: uint64(c.I), Group: "status"},
		{Name: "R", BitWidth: 8, Value: uint64(c.R), Group: "status"},
		{Name: "IM", BitWidth: 8, Value: uint64(c.IM), Group: "status"},
		{Name: "IFF1", BitWidth: 1, Value: boolBit(c.IFF1), Group: "status"},
		{Name: "IFF2", BitWidth: 1, Value: boolBit(c.IFF2), Group: "status"},
	}
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// Register looks a register up by name. Pairs, shadow pairs (with a
// trailing quote) and index halves are accepted; MP is an alias for WZ.
func (d *Debugger) Register(name string) (uint64, bool) {
	c := d.cpu
	switch strings.ToUpper(name) {
	case "A":
		return uint64(c.A), true
	case "F":
		return uint64(c.F), true
	case "B":
		return uint64(c.B), true
	case "C":
		return uint64(c.C), true
	case "D":
		return uint64(c.D), true
	case "E":
		return uint64(c.E), true
	case "H":
		return uint64(c.H), true
	case "L":
		return uint64(c.L), true
	case "AF":
		return uint64(c.AF()), true
	case "BC":
		return uint64(c.BC()), true
	case "DE":
		return uint64(c.DE()), true
	case "HL":
		return uint64(c.HL()), true
	case "AF'":
		return uint64(c.AF2()), true
	case "BC'":
		return uint64(c.BC2()), true
	case "DE'":
		return uint64(c.DE2()), true
	case "HL'":
		return uint64(c.HL2()), true
	case "IX":
		return uint64(c.IX), true
	case "IY":
		return uint64(c.IY), true
	case "IXH":
		return uint64(c.IXH()), true
	case "IXL":
		return uint64(c.IXL()), true
	case "IYH":
		return uint64(c.IYH()), true
	case "IYL":
		return uint64(c.IYL()), true
	case "SP":
		return uint64(c.SP), true
	case "PC":
		return uint64(c.PC), true
	case "WZ", "MP":
		return uint64(c.WZ), true
	case "I":
		return uint64(c.I), true
	case "R":
		return uint64(c.R), true
	case "IM":
		return uint64(c.IM), true
	case "IFF1":
		return boolBit(c.IFF1), true
	case "IFF2":
		return boolBit(c.IFF2), true
	}
	return 0, false
}

func (d *Debugger) SetRegister(name string, value uint64) bool {
	c := d.cpu
	switch strings.ToUpper(name) {
	case "A":
		c.A = byte(value)
	case "F":
		c.F = byte(value)
	case "B":
		c.B = byte(value)
	case "C":
		c.C = byte(value)
	case "D":
		c.D = byte(value)
	case "E":
		c.E = byte(value)
	case "H":
		c.H = byte(value)
	case "L":
		c.L = byte(value)
	case "AF":
		c.SetAF(uint16(value))
	case "BC":
		c.SetBC(uint16(value))
	case "DE":
		c.SetDE(uint16(value))
	case "HL":
		c.SetHL(uint16(value))
	case "AF'":
		c.SetAF2(uint16(value))
	case "BC'":
		c.SetBC2(uint16(value))
	case "DE'":
		c.SetDE2(uint16(value))
	case "HL'":
		c.SetHL2(uint16(value))
	case "IX":
		c.IX = uint16(value)
	case "IY":
		c.IY = uint16(value)
	case "IXH":
		c.SetIXH(byte(value))
	case "IXL":
		c.SetIXL(byte(value))
	case "IYH":
		c.SetIYH(byte(value))
	case "IYL":
		c.SetIYL(byte(value))
	case "SP":
		c.SP = uint16(value)
	case "PC":
		c.PC = uint16(value)
	case "WZ", "MP":
		c.WZ = uint16(value)
	case "I":
		c.I = byte(value)
	case "R":
		c.R = byte(value)
	case "IM":
		if value > 2 {
			return false
		}
		c.IM = byte(value)
	case "IFF1":
		c.IFF1 = value != 0
	case "IFF2":
		c.IFF2 = value != 0
	default:
		return false
	}
	return true
}

// Step runs one whole instruction, prefixes included.
func (d *Debugger) Step() uint32 {
	return d.cpu.StepInstruction()
}

func (d *Debugger) Disassemble(addr uint16, count int) []DisassembledLine {
	lines := DisassembleRange(d.Peek, addr, count)
	out := make([]DisassembledLine, len(lines))
	for i, in := range lines {
		out[i] = DisassembledLine{Instruction: in, IsPC: in.Address == d.cpu.PC}
	}
	return out
}

func (d *Debugger) Peek(addr uint16) byte {
	if p, ok := d.cpu.bus.(Peeker); ok {
		return p.Peek(addr)
	}
	return d.cpu.bus.MreqRead(addr, false)
}

func (d *Debugger) ReadMemory(addr uint16, size int) []byte {
	result := make([]byte, size)
	for i := range size {
		result[i] = d.Peek(addr + uint16(i))
	}
	return result
}

func (d *Debugger) WriteMemory(addr uint16, data []byte) {
	for i, b := range data {
		d.cpu.bus.MreqWrite(addr+uint16(i), b)
	}
}

func (d *Debugger) SetBreakpoint(addr uint16) {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	d.breakpoints[addr] = true
}

func (d *Debugger) ClearBreakpoint(addr uint16) bool {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	if _, ok := d.breakpoints[addr]; ok {
		delete(d.breakpoints, addr)
		return true
	}
	return false
}

func (d *Debugger) ClearAllBreakpoints() {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	d.breakpoints = make(map[uint16]bool)
}

func (d *Debugger) ListBreakpoints() []uint16 {
	d.bpMu.RLock()
	defer d.bpMu.RUnlock()
	result := make([]uint16, 0, len(d.breakpoints))
	for addr := range d.breakpoints {
		result = append(result, addr)
	}
	slices.Sort(result)
	return result
}

func (d *Debugger) HasBreakpoint(addr uint16) bool {
	d.bpMu.RLock()
	defer d.bpMu.RUnlock()
	return d.breakpoints[addr]
}

// AtBreakpoint reports whether the next instruction starts on a
// breakpoint. Mid-prefix positions never match.
func (d *Debugger) AtBreakpoint() bool {
	return d.cpu.prefix == 0 && d.HasBreakpoint(d.cpu.PC)
}

// ParseAddress reads a 16-bit address written as $hex, 0xhex, hexh,
// #decimal or plain decimal.
func ParseAddress(s string) (uint16, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	base := 10
	switch {
	case strings.HasPrefix(s, "#"):
		s = s[1:]
	case strings.HasPrefix(s, "$"):
		s, base = s[1:], 16
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		s, base = s[2:], 16
	case strings.HasSuffix(s, "h") || strings.HasSuffix(s, "H"):
		s, base = s[:len(s)-1], 16
	}
	v, err := strconv.ParseUint(s, base, 16)
	return uint16(v), err == nil
}
