package z80

import "fmt"

// Bus is the host side of the CPU. m1 marks opcode fetch cycles.
type Bus interface {
	MreqRead(addr uint16, m1 bool) byte
	MreqWrite(addr uint16, value byte)
	IorqRead(port uint16) byte
	IorqWrite(port uint16, value byte)
}

// InterruptAcknowledger supplies the byte placed on the data bus during an
// interrupt acknowledge cycle. Buses without it read 0xFF.
type InterruptAcknowledger interface {
	IorqM1() byte
}

// AddressWatcher is told about internal cycles that only drive the address
// bus, for hosts that model memory contention.
type AddressWatcher interface {
	PutAddressOnBus(addr uint16, cycles uint32)
}

type Chip uint8

const (
	NMOS Chip = iota
	CMOS
)

func (c Chip) String() string {
	switch c {
	case NMOS:
		return "nmos"
	case CMOS:
		return "cmos"
	}
	return fmt.Sprintf("chip(%d)", uint8(c))
}

type Option func(*CPU)

func WithChip(chip Chip) Option {
	return func(c *CPU) {
		c.chip = chip
	}
}

// decode context selected by the last prefix byte
type table uint8

const (
	tableBase table = iota
	tableCB
	tableDD
	tableED
	tableFD
)

type CPU struct {
	Registers

	chip  Chip
	bus   Bus
	ack   InterruptAcknowledger
	watch AddressWatcher

	halted        bool
	processing    bool
	table         table
	prefix        byte
	cbOffset      int8
	skipInterrupt bool
	resetPV       bool
	pcIncrement   uint16
	tstate        uint32
}

// New builds a CPU on bus. Every pair, the index registers, SP and the
// shadow bank start at 0xFFFF before the reset sequence runs.
func New(bus Bus, opts ...Option) *CPU {
	if bus == nil {
		panic("z80: New called with nil Bus")
	}
	c := &CPU{bus: bus}
	if ack, ok := bus.(InterruptAcknowledger); ok {
		c.ack = ack
	}
	if watch, ok := bus.(AddressWatcher); ok {
		c.watch = watch
	}
	for _, opt := range opts {
		opt(c)
	}
	c.SetAF(0xFFFF)
	c.SetBC(0xFFFF)
	c.SetDE(0xFFFF)
	c.SetHL(0xFFFF)
	c.SetAF2(0xFFFF)
	c.SetBC2(0xFFFF)
	c.SetDE2(0xFFFF)
	c.SetHL2(0xFFFF)
	c.IX = 0xFFFF
	c.IY = 0xFFFF
	c.SP = 0xFFFF
	c.Reset()
	return c
}

// Reset performs the /RESET sequence. Registers not named here keep their
// previous contents.
func (c *CPU) Reset() {
	c.PC = 0
	c.WZ = 0
	c.I = 0
	c.R = 0
	c.IFF1 = false
	c.IFF2 = false
	c.IM = 0
	c.table = tableBase
	c.prefix = 0
	c.halted = false
	c.processing = false
	c.skipInterrupt = false
	c.resetPV = false
	c.pcIncrement = 1
	c.tstate = 0
}

func (c *CPU) Chip() Chip        { return c.chip }
func (c *CPU) SetChip(chip Chip) { c.chip = chip }
func (c *CPU) Halted() bool      { return c.halted }
func (c *CPU) Tstate() uint32    { return c.tstate }
func (c *CPU) Prefix() byte      { return c.prefix }

// Step runs exactly one opcode table dispatch and returns the T-states it
// took. A prefix byte is a dispatch of its own: after it Prefix() is non
// zero and the next Step decodes through the prefixed table.
func (c *CPU) Step() uint32 {
	c.resetPV = false
	c.skipInterrupt = false
	c.tstate = 0
	c.processing = true

	op := c.fetchOpcode()
	t := c.table
	c.table, c.prefix = tableBase, 0
	switch t {
	case tableBase:
		c.execBase(op)
	case tableCB:
		c.execCB(op)
	case tableED:
		c.execED(op)
	case tableDD:
		c.execIndex(op, &c.IX)
	case tableFD:
		c.execIndex(op, &c.IY)
	}

	c.processing = false
	return c.tstate
}

// StepInstruction calls Step until no prefix is pending, so that one call
// covers a whole prefixed instruction.
func (c *CPU) StepInstruction() uint32 {
	total := c.Step()
	for c.prefix != 0 {
		total += c.Step()
	}
	return total
}

func (c *CPU) setPrefix(prefix byte) {
	c.prefix = prefix
	switch prefix {
	case 0xCB:
		c.table = tableCB
	case 0xDD:
		c.table = tableDD
	case 0xED:
		c.table = tableED
	case 0xFD:
		c.table = tableFD
	}
}

func (c *CPU) fetchOpcode() byte {
	op := c.bus.MreqRead(c.PC, true)
	c.PC++
	c.incR()
	c.tstate += 4
	return op
}

func (c *CPU) fetchIntVec() byte {
	vec := byte(0xFF)
	if c.ack != nil {
		vec = c.ack.IorqM1()
	}
	c.incR()
	c.tstate += 6
	return vec
}

func (c *CPU) fetchByte() byte {
	v := c.bus.MreqRead(c.PC, false)
	c.PC += c.pcIncrement
	c.tstate += 3
	return v
}

func (c *CPU) fetchWord() uint16 {
	lo := c.fetchByte()
	hi := c.fetchByte()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) read(addr uint16) byte {
	v := c.bus.MreqRead(addr, false)
	c.tstate += 3
	return v
}

func (c *CPU) write(addr uint16, value byte) {
	c.bus.MreqWrite(addr, value)
	c.tstate += 3
}

func (c *CPU) readWord(addr uint16) uint16 {
	lo := c.read(addr)
	hi := c.read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) writeWord(addr uint16, value uint16) {
	c.write(addr, byte(value))
	c.write(addr+1, byte(value>>8))
}

func (c *CPU) in(port uint16) byte {
	c.put(port, 1)
	v := c.bus.IorqRead(port)
	c.tstate += 3
	return v
}

func (c *CPU) out(port uint16, value byte) {
	c.put(port, 1)
	c.bus.IorqWrite(port, value)
	c.tstate += 3
}

// put accounts for internal cycles that only drive addr onto the bus.
func (c *CPU) put(addr uint16, cycles uint32) {
	if c.watch != nil {
		c.watch.PutAddressOnBus(addr, cycles)
	}
	c.tstate += cycles
}

func (c *CPU) push(value uint16) {
	c.SP--
	c.write(c.SP, byte(value>>8))
	c.SP--
	c.write(c.SP, byte(value))
}

func (c *CPU) pop() uint16 {
	lo := c.read(c.SP)
	c.SP++
	hi := c.read(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}
