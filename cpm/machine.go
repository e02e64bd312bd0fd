// Package cpm runs CP/M-80 .COM programs on the z80 core with just enough
// BDOS to drive the ZEXDOC/ZEXALL exercisers and similar test images.
package cpm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/intuitionamiga/z80"
	"github.com/pkg/errors"
)

const (
	warmBoot  = 0x0000
	bdosEntry = 0x0005
	cmdTail   = 0x0080
	tpaStart  = 0x0100

	// BDOS entry word, read by ZEXALL as the top of its stack
	stackTop = 0xF000

	addressSpace     = 0x10000
	ctxCheckInterval = 4096
)

// DefaultFailPhrase is what the exercisers print when a test group fails.
const DefaultFailPhrase = "ERROR"

// PortHandler serves IN and OUT for a Machine. In returns false when the
// port is not handled, in which case the bus floats to 0xFF.
type PortHandler interface {
	In(port uint16) (byte, bool)
	Out(port uint16, value byte) bool
}

type Config struct {
	Chip    z80.Chip
	Console *Console
	// Input, when set, is queued into the console as keyboard input.
	Input  io.Reader
	Logger *slog.Logger
	Ports  PortHandler

	// FailPhrase stops the run with ErrFailPhrase once it shows up in the
	// console output. Empty disables the check.
	FailPhrase string

	// InterruptPeriod raises /INT every that many T-states; zero disables it.
	InterruptPeriod uint64
	InterruptVector byte

	MaxCycles   uint64
	Breakpoints []uint16
	Trace       bool
}

// DefaultConfig writes to stdout and stops on DefaultFailPhrase.
func DefaultConfig() Config {
	return Config{
		Chip:            z80.NMOS,
		FailPhrase:      DefaultFailPhrase,
		InterruptVector: 0xFF,
	}
}

// Stats covers everything run since the last Load.
type Stats struct {
	Cycles       uint64
	Steps        uint64
	Instructions uint64
	Interrupts   uint64
	BDOSCalls    uint64
	// T-states spent in internal cycles reported through PutAddressOnBus
	BusIdle uint64
	Elapsed time.Duration
}

// MHz is the clock an actual Z80 would need to match this run.
func (s Stats) MHz() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Cycles) / s.Elapsed.Seconds() / 1e6
}

type Machine struct {
	cfg     Config
	log     *slog.Logger
	mem     [addressSpace]byte
	cpu     *z80.CPU
	dbg     *z80.Debugger
	console *Console
	bdos    map[uint8]Syscall

	stats    Stats
	sinceInt uint64
	tail     []byte
	failed   bool

	execMu     sync.Mutex
	execDone   chan struct{}
	execCancel context.CancelFunc
	execActive bool
	execStats  Stats
	execErr    error
}

func New(cfg Config) *Machine {
	m := &Machine{cfg: cfg, log: cfg.Logger, console: cfg.Console}
	if m.log == nil {
		m.log = slog.New(slog.DiscardHandler)
	}
	if m.console == nil {
		m.console = NewConsole(os.Stdout)
	}
	if cfg.Input != nil {
		m.console.FeedFrom(cfg.Input)
	}
	m.bdos = bdosFunctions()
	m.cpu = z80.New(m, z80.WithChip(cfg.Chip))
	m.dbg = z80.NewDebugger(m.cpu)
	for _, addr := range cfg.Breakpoints {
		m.dbg.SetBreakpoint(addr)
	}
	m.clear()
	return m
}

func (m *Machine) CPU() *z80.CPU           { return m.cpu }
func (m *Machine) Debugger() *z80.Debugger { return m.dbg }
func (m *Machine) Console() *Console       { return m.console }
func (m *Machine) Stats() Stats            { return m.stats }

// clear wipes memory and puts the CPU where CCP would leave it for a
// freshly loaded transient program.
func (m *Machine) clear() {
	m.mem = [addressSpace]byte{}
	m.mem[bdosEntry+1] = byte(stackTop & 0xFF)
	m.mem[bdosEntry+2] = byte(stackTop >> 8)

	c := m.cpu
	c.Reset()
	c.SetAF(0xFFFF)
	c.SetBC(0xFFFF)
	c.SetDE(0xFFFF)
	c.SetHL(0xFFFF)
	c.IX = 0xFFFF
	c.IY = 0xFFFF
	c.SP = 0xFFFF
	c.PC = tpaStart
	c.WZ = tpaStart

	m.stats = Stats{}
	m.sinceInt = 0
	m.tail = m.tail[:0]
	m.failed = false
}

// Load reads a .COM image into the transient program area.
func (m *Machine) Load(r io.Reader) error {
	m.clear()
	n, err := io.ReadFull(r, m.mem[tpaStart:])
	switch {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
	case err != nil:
		return errors.Wrap(err, "cpm: read program")
	default:
		var probe [1]byte
		if k, _ := r.Read(probe[:]); k > 0 {
			return errors.Errorf("cpm: program too large: end>0x%X, limit=0x%X", tpaStart+n, addressSpace)
		}
	}
	m.log.Debug("program loaded", slog.Int("size", n), slog.String("origin", fmt.Sprintf("0x%04X", tpaStart)))
	return nil
}

func (m *Machine) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "cpm: open program")
	}
	defer f.Close()
	return m.Load(f)
}

// SetArgs stores a command tail at 0x0080 the way CCP does: a length byte
// followed by the upper-cased text, each argument preceded by a space.
func (m *Machine) SetArgs(args []string) {
	var tail []byte
	for _, a := range args {
		tail = append(tail, ' ')
		for _, ch := range []byte(a) {
			if ch >= 'a' && ch <= 'z' {
				ch -= 'a' - 'A'
			}
			tail = append(tail, ch)
		}
	}
	if len(tail) > 0x7F {
		tail = tail[:0x7F]
	}
	m.mem[cmdTail] = byte(len(tail))
	copy(m.mem[cmdTail+1:], tail)
}

// Bus

func (m *Machine) MreqRead(addr uint16, _ bool) byte { return m.mem[addr] }

func (m *Machine) MreqWrite(addr uint16, value byte) { m.mem[addr] = value }

func (m *Machine) IorqRead(port uint16) byte {
	if m.cfg.Ports != nil {
		if v, ok := m.cfg.Ports.In(port); ok {
			return v
		}
	}
	return 0xFF
}

func (m *Machine) IorqWrite(port uint16, value byte) {
	if m.cfg.Ports != nil && m.cfg.Ports.Out(port, value) {
		return
	}
	m.log.Debug("unhandled port write", slog.String("port", fmt.Sprintf("0x%04X", port)), slog.Int("value", int(value)))
}

func (m *Machine) IorqM1() byte { return m.cfg.InterruptVector }

func (m *Machine) PutAddressOnBus(_ uint16, cycles uint32) {
	m.stats.BusIdle += uint64(cycles)
}

func (m *Machine) Peek(addr uint16) byte { return m.mem[addr] }

func (m *Machine) Poke(addr uint16, value byte) { m.mem[addr] = value }

// Cycles is the T-state count of the current run.
func (m *Machine) Cycles() uint64 { return m.stats.Cycles }

// Run executes until the program warm boots or calls P_TERMCPM, which both
// return a nil error. A second Run resumes where the previous one stopped,
// including from a breakpoint.
func (m *Machine) Run(ctx context.Context) (Stats, error) {
	start := time.Now()
	err := m.run(ctx)
	m.stats.Elapsed += time.Since(start)
	return m.stats, err
}

func (m *Machine) run(ctx context.Context) error {
	c := m.cpu
	resume := true
	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if c.Prefix() == 0 {
			switch c.PC {
			case warmBoot:
				m.log.Debug("warm boot", slog.Uint64("cycles", m.stats.Cycles))
				return nil
			case bdosEntry:
				err := m.callBDOS(ctx)
				if m.failed {
					return errors.Wrapf(ErrFailPhrase, "output contains %q", m.cfg.FailPhrase)
				}
				if errors.Cause(err) == ErrExit {
					return nil
				}
				if err != nil {
					return err
				}
				m.ret()
				continue
			}
			if !resume && m.dbg.AtBreakpoint() {
				return errors.Wrapf(ErrBreakpoint, "pc=0x%04X", c.PC)
			}
			if m.cfg.Trace {
				m.trace()
			}
		}
		resume = false

		if m.cfg.MaxCycles > 0 && m.stats.Cycles >= m.cfg.MaxCycles {
			return errors.Wrapf(ErrCycleLimit, "pc=0x%04X after %d cycles", c.PC, m.stats.Cycles)
		}

		t := uint64(c.Step())
		m.stats.Cycles += t
		m.stats.Steps++
		if c.Prefix() == 0 {
			m.stats.Instructions++
		}

		if m.cfg.InterruptPeriod > 0 {
			m.sinceInt += t
			if m.sinceInt >= m.cfg.InterruptPeriod {
				if it := c.DoInt(); it > 0 {
					m.stats.Cycles += uint64(it)
					m.stats.Interrupts++
					m.sinceInt = 0
				}
			}
		}
	}
}

// ret returns from the BDOS call to the CALL 5 site.
func (m *Machine) ret() {
	c := m.cpu
	addr := uint16(m.mem[c.SP]) | uint16(m.mem[c.SP+1])<<8
	c.PC = addr
	c.WZ = addr
	c.SP += 2
}

func (m *Machine) trace() {
	s := m.cpu.Snapshot()
	in := z80.Disassemble(m.Peek, s.PC)
	m.log.Debug("step",
		slog.String("pc", fmt.Sprintf("%04X", s.PC)),
		slog.String("op", in.Mnemonic),
		slog.String("af", fmt.Sprintf("%04X", s.AF())),
		slog.String("bc", fmt.Sprintf("%04X", s.BC())),
		slog.String("de", fmt.Sprintf("%04X", s.DE())),
		slog.String("hl", fmt.Sprintf("%04X", s.HL())),
		slog.String("sp", fmt.Sprintf("%04X", s.SP)),
		slog.Bool("halted", s.Halted),
		slog.Bool("ei", s.IntPossible),
	)
}

// emit sends one byte to the console and watches for the fail phrase.
func (m *Machine) emit(b byte) error {
	if err := m.console.WriteByte(b); err != nil {
		return errors.Wrap(err, "cpm: console write")
	}
	phrase := m.cfg.FailPhrase
	if phrase == "" {
		return nil
	}
	m.tail = append(m.tail, b)
	if len(m.tail) > len(phrase) {
		m.tail = append(m.tail[:0], m.tail[len(m.tail)-len(phrase):]...)
	}
	if string(m.tail) == phrase {
		m.failed = true
	}
	return nil
}

// Start runs the machine on its own goroutine. It does nothing when a run
// is already in progress.
func (m *Machine) Start(ctx context.Context) {
	m.execMu.Lock()
	defer m.execMu.Unlock()
	if m.execActive {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.execActive = true
	m.execDone = done
	m.execCancel = cancel

	go func() {
		stats, err := m.Run(ctx)
		m.execMu.Lock()
		m.execStats, m.execErr = stats, err
		m.execActive = false
		m.execMu.Unlock()
		cancel()
		close(done)
	}()
}

func (m *Machine) IsRunning() bool {
	m.execMu.Lock()
	defer m.execMu.Unlock()
	return m.execActive
}

// Stop cancels a run started with Start and waits for it to finish.
func (m *Machine) Stop() (Stats, error) {
	m.execMu.Lock()
	cancel := m.execCancel
	m.execMu.Unlock()
	if cancel != nil {
		cancel()
	}
	return m.Wait()
}

// Wait blocks until the run started with Start returns and reports its
// result.
func (m *Machine) Wait() (Stats, error) {
	m.execMu.Lock()
	done := m.execDone
	m.execMu.Unlock()
	if done != nil {
		<-done
	}
	m.execMu.Lock()
	defer m.execMu.Unlock()
	return m.execStats, m.execErr
}
