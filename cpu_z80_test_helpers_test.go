package z80

import "testing"

type z80TestBus struct {
	mem    [0x10000]byte
	io     [0x10000]byte
	vector byte

	reads    []uint16
	m1Reads  int
	outs     []uint16
	putTotal uint32
}

func (b *z80TestBus) MreqRead(addr uint16, m1 bool) byte {
	b.reads = append(b.reads, addr)
	if m1 {
		b.m1Reads++
	}
	return b.mem[addr]
}

func (b *z80TestBus) MreqWrite(addr uint16, value byte) {
	b.mem[addr] = value
}

func (b *z80TestBus) IorqRead(port uint16) byte {
	return b.io[port]
}

func (b *z80TestBus) IorqWrite(port uint16, value byte) {
	b.outs = append(b.outs, port)
	b.io[port] = value
}

func (b *z80TestBus) IorqM1() byte {
	return b.vector
}

func (b *z80TestBus) PutAddressOnBus(addr uint16, cycles uint32) {
	b.putTotal += cycles
}

func (b *z80TestBus) Peek(addr uint16) byte {
	return b.mem[addr]
}

// plainBus implements only Bus, to exercise the optional interface
// defaults.
type plainBus struct {
	mem [0x10000]byte
}

func (b *plainBus) MreqRead(addr uint16, m1 bool) byte { return b.mem[addr] }
func (b *plainBus) MreqWrite(addr uint16, value byte)  { b.mem[addr] = value }
func (b *plainBus) IorqRead(port uint16) byte          { return 0xFF }
func (b *plainBus) IorqWrite(port uint16, value byte)  {}

type cpuZ80TestRig struct {
	bus *z80TestBus
	cpu *CPU
}

func newCPUZ80TestRig(opts ...Option) *cpuZ80TestRig {
	bus := &z80TestBus{vector: 0xFF}
	cpu := New(bus, opts...)
	return &cpuZ80TestRig{
		bus: bus,
		cpu: cpu,
	}
}

func (r *cpuZ80TestRig) resetAndLoad(start uint16, program []byte) {
	r.bus = &z80TestBus{vector: 0xFF}
	r.cpu = New(r.bus, WithChip(r.cpu.Chip()))
	for i, value := range program {
		r.bus.mem[start+uint16(i)] = value
	}
	r.cpu.PC = start
}

// run executes n whole instructions and returns the T-states they took.
func (r *cpuZ80TestRig) run(n int) uint32 {
	var total uint32
	for range n {
		total += r.cpu.StepInstruction()
	}
	return total
}

func requireZ80EqualU16(t *testing.T, name string, got, want uint16) {
	t.Helper()
	if got != want {
		t.Fatalf("%s = 0x%04X, want 0x%04X", name, got, want)
	}
}

func requireZ80EqualU8(t *testing.T, name string, got, want byte) {
	t.Helper()
	if got != want {
		t.Fatalf("%s = 0x%02X, want 0x%02X", name, got, want)
	}
}

func requireZ80Tstates(t *testing.T, name string, got, want uint32) {
	t.Helper()
	if got != want {
		t.Fatalf("%s took %d T-states, want %d", name, got, want)
	}
}
