package z80

import "testing"

func TestZ80IncDec8(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{
		0x04, // INC B
		0x05, // DEC B
		0x34, // INC (HL)
		0x35, // DEC (HL)
	})
	rig.cpu.F = 0
	rig.cpu.B = 0x7F
	rig.cpu.SetHL(0x2000)

	rig.run(1)
	requireZ80EqualU8(t, "B", rig.cpu.B, 0x80)
	requireZ80EqualU8(t, "F", rig.cpu.F, FlagS|FlagH|FlagPV)

	rig.run(1)
	requireZ80EqualU8(t, "B", rig.cpu.B, 0x7F)
	requireZ80EqualU8(t, "F", rig.cpu.F, FlagH|FlagPV|FlagN|Flag5|Flag3)

	requireZ80Tstates(t, "INC (HL)", rig.run(1), 11)
	requireZ80EqualU8(t, "(HL)", rig.bus.mem[0x2000], 0x01)
	requireZ80EqualU8(t, "F", rig.cpu.F, 0x00)

	rig.run(1)
	requireZ80EqualU8(t, "(HL)", rig.bus.mem[0x2000], 0x00)
	requireZ80EqualU8(t, "F", rig.cpu.F, FlagZ|FlagN)
}

func TestZ80IncDecKeepCarry(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{0x3C}) // INC A
	rig.cpu.A = 0xFF
	rig.cpu.F = FlagC

	rig.run(1)
	requireZ80EqualU8(t, "A", rig.cpu.A, 0x00)
	requireZ80EqualU8(t, "F", rig.cpu.F, FlagC|FlagZ|FlagH)
}

func TestZ80ConditionalJumps(t *testing.T) {
	program := []byte{
		0xC2, 0x08, 0x00, // JP NZ,0x0008
		0xC3, 0x0B, 0x00, // JP 0x000B
	}

	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, program)
	rig.cpu.F = 0
	rig.run(1)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x0008)
	requireZ80EqualU16(t, "WZ", rig.cpu.WZ, 0x0008)

	rig.resetAndLoad(0x0000, program)
	rig.cpu.F = FlagZ
	rig.run(1)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x0003)
	// WZ takes the target even when the jump is not taken
	requireZ80EqualU16(t, "WZ", rig.cpu.WZ, 0x0008)
	rig.run(1)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x000B)
}

func TestZ80ConditionalJR(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{
		0x20, 0x02, // JR NZ,+2
		0x00, 0x00, // NOP, NOP
		0x28, 0xFE, // JR Z,-2
	})
	rig.cpu.F = 0

	requireZ80Tstates(t, "JR NZ taken", rig.run(1), 12)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x0004)
	requireZ80EqualU16(t, "WZ", rig.cpu.WZ, 0x0004)
	requireZ80Tstates(t, "JR Z not taken", rig.run(1), 7)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x0006)

	rig.resetAndLoad(0x0000, []byte{
		0x28, 0xFE, // JR Z,-2
	})
	rig.cpu.F = FlagZ
	requireZ80Tstates(t, "JR Z taken", rig.run(1), 12)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x0000)
}

func TestZ80DJNZLoop(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{
		0x06, 0x03, // LD B,3
		0x3C,       // INC A
		0x10, 0xFD, // DJNZ -3
	})
	rig.cpu.A = 0

	total := rig.run(1 + 3*2)
	requireZ80EqualU8(t, "A", rig.cpu.A, 3)
	requireZ80EqualU8(t, "B", rig.cpu.B, 0)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x0005)
	requireZ80Tstates(t, "loop", total, 7+3*4+13+13+8)
}

func TestZ80ConditionalCallRet(t *testing.T) {
	program := []byte{
		0xC4, 0x06, 0x00, // CALL NZ,0x0006
		0xC9,       // RET
		0x00, 0x00, // padding
		0xC9, // RET
	}

	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, program)
	rig.cpu.SP = 0x9000
	rig.cpu.F = 0

	requireZ80Tstates(t, "CALL NZ taken", rig.run(1), 17)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x0006)
	requireZ80EqualU16(t, "SP", rig.cpu.SP, 0x8FFE)
	requireZ80EqualU8(t, "stacked low", rig.bus.mem[0x8FFE], 0x03)
	requireZ80EqualU8(t, "stacked high", rig.bus.mem[0x8FFF], 0x00)
	rig.run(1)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x0003)
	requireZ80EqualU16(t, "WZ", rig.cpu.WZ, 0x0003)

	rig.resetAndLoad(0x0000, program)
	rig.cpu.SP = 0x9000
	rig.cpu.F = FlagZ
	requireZ80Tstates(t, "CALL NZ not taken", rig.run(1), 10)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x0003)
	requireZ80EqualU16(t, "SP", rig.cpu.SP, 0x9000)
}

func TestZ80RSTAndJPHL(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0100, []byte{
		0xEF, // RST 28h
	})
	rig.bus.mem[0x0028] = 0xE9 // JP (HL)
	rig.cpu.SP = 0x8000
	rig.cpu.SetHL(0x4321)

	rig.run(1)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x0028)
	requireZ80EqualU16(t, "WZ", rig.cpu.WZ, 0x0028)
	requireZ80EqualU8(t, "stacked low", rig.bus.mem[0x7FFE], 0x01)
	requireZ80EqualU8(t, "stacked high", rig.bus.mem[0x7FFF], 0x01)

	rig.run(1)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x4321)
	// JP (HL) does not touch WZ
	requireZ80EqualU16(t, "WZ", rig.cpu.WZ, 0x0028)
}

func TestZ80ParityConditions(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{
		0xB7,             // OR A
		0xEA, 0x00, 0x30, // JP PE,0x3000
	})
	rig.cpu.A = 0x03

	rig.run(2)
	requireZ80EqualU16(t, "PC", rig.cpu.PC, 0x3000)
}
