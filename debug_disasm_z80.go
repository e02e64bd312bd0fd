// debug_disasm_z80.go - Z80 disassembler covering the documented and
// undocumented opcode pages

package z80

import (
	"fmt"
	"strings"
)

// Instruction is one decoded instruction.
type Instruction struct {
	Address      uint16
	Bytes        []byte
	Mnemonic     string
	Size         int
	IsBranch     bool
	BranchTarget uint16
}

func (in Instruction) HexBytes() string {
	parts := make([]string, len(in.Bytes))
	for i, b := range in.Bytes {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

func (in Instruction) String() string {
	return fmt.Sprintf("%04X  %-11s  %s", in.Address, in.HexBytes(), in.Mnemonic)
}

// Disassemble decodes the instruction at addr. read must not have side
// effects on the machine being inspected.
func Disassemble(read func(addr uint16) byte, addr uint16) Instruction {
	var data [4]byte
	for i := range data {
		data[i] = read(addr + uint16(i))
	}
	size, mnemonic := decodeZ80Instruction(data, addr)
	in := Instruction{
		Address:  addr,
		Bytes:    append([]byte(nil), data[:size]...),
		Mnemonic: mnemonic,
		Size:     size,
	}
	in.IsBranch, in.BranchTarget = branchTarget(data, addr)
	return in
}

// DisassembleRange decodes count consecutive instructions from addr.
func DisassembleRange(read func(addr uint16) byte, addr uint16, count int) []Instruction {
	lines := make([]Instruction, 0, count)
	for range count {
		in := Disassemble(read, addr)
		lines = append(lines, in)
		addr += uint16(in.Size)
	}
	return lines
}

// DisassembleImage decodes a raw image loaded at origin. A count of zero
// runs to the end of the image; bytes past the end read as zero.
func DisassembleImage(data []byte, origin uint16, count int) []Instruction {
	if len(data) > 0x10000 {
		data = data[:0x10000]
	}
	read := func(addr uint16) byte {
		if off := int(addr - origin); off < len(data) {
			return data[off]
		}
		return 0
	}
	if count > 0 {
		return DisassembleRange(read, origin, count)
	}
	var lines []Instruction
	addr := origin
	for done := 0; done < len(data); {
		in := Disassemble(read, addr)
		lines = append(lines, in)
		addr += uint16(in.Size)
		done += in.Size
	}
	return lines
}

func branchTarget(data [4]byte, pc uint16) (bool, uint16) {
	op := data[0]
	nn := uint16(data[1]) | uint16(data[2])<<8
	switch {
	case op == 0xC3 || op&0xC7 == 0xC2: // JP nn / JP cc,nn
		return true, nn
	case op == 0xCD || op&0xC7 == 0xC4: // CALL nn / CALL cc,nn
		return true, nn
	case op == 0x10 || op == 0x18 || op&0xE7 == 0x20: // DJNZ / JR / JR cc
		return true, pc + 2 + uint16(int8(data[1]))
	case op&0xC7 == 0xC7: // RST
		return true, uint16(op & 0x38)
	}
	return false, 0
}

var z80Reg8 = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
var z80Reg16 = [4]string{"BC", "DE", "HL", "SP"}
var z80Reg16Push = [4]string{"BC", "DE", "HL", "AF"}
var z80Cond = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}
var z80ALU = [8]string{"ADD A,", "ADC A,", "SUB", "SBC A,", "AND", "XOR", "OR", "CP"}
var z80CBOps = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SLL", "SRL"}
var z80AccOps = [8]string{"RLCA", "RRCA", "RLA", "RRA", "DAA", "CPL", "SCF", "CCF"}
var z80BlockOps = [4][4]string{
	{"LDI", "CPI", "INI", "OUTI"},
	{"LDD", "CPD", "IND", "OUTD"},
	{"LDIR", "CPIR", "INIR", "OTIR"},
	{"LDDR", "CPDR", "INDR", "OTDR"},
}

func decodeZ80Instruction(data [4]byte, pc uint16) (int, string) {
	switch data[0] {
	case 0xCB:
		return 2, decodeZ80CB(data[1], z80Reg8[data[1]&7])
	case 0xED:
		return decodeZ80ED(data)
	case 0xDD:
		return decodeZ80Index(data, "IX")
	case 0xFD:
		return decodeZ80Index(data, "IY")
	}
	return decodeZ80Base(data, pc)
}

func decodeZ80Base(data [4]byte, pc uint16) (int, string) {
	op := data[0]
	n := data[1]
	nn := uint16(data[1]) | uint16(data[2])<<8
	rel := pc + 2 + uint16(int8(data[1]))
	y := op >> 3 & 7
	p := y >> 1

	switch {
	case op == 0x76:
		return 1, "HALT"
	case op&0xC0 == 0x40:
		return 1, fmt.Sprintf("LD %s, %s", z80Reg8[y], z80Reg8[op&7])
	case op&0xC0 == 0x80:
		return 1, fmt.Sprintf("%s %s", z80ALU[y], z80Reg8[op&7])
	}

	switch op {
	case 0x00:
		return 1, "NOP"
	case 0x08:
		return 1, "EX AF, AF'"
	case 0x10:
		return 2, fmt.Sprintf("DJNZ $%04X", rel)
	case 0x18:
		return 2, fmt.Sprintf("JR $%04X", rel)
	case 0x20, 0x28, 0x30, 0x38:
		return 2, fmt.Sprintf("JR %s, $%04X", z80Cond[y-4], rel)
	case 0x01, 0x11, 0x21, 0x31:
		return 3, fmt.Sprintf("LD %s, $%04X", z80Reg16[p], nn)
	case 0x09, 0x19, 0x29, 0x39:
		return 1, fmt.Sprintf("ADD HL, %s", z80Reg16[p])
	case 0x02:
		return 1, "LD (BC), A"
	case 0x12:
		return 1, "LD (DE), A"
	case 0x0A:
		return 1, "LD A, (BC)"
	case 0x1A:
		return 1, "LD A, (DE)"
	case 0x22:
		return 3, fmt.Sprintf("LD ($%04X), HL", nn)
	case 0x2A:
		return 3, fmt.Sprintf("LD HL, ($%04X)", nn)
	case 0x32:
		return 3, fmt.Sprintf("LD ($%04X), A", nn)
	case 0x3A:
		return 3, fmt.Sprintf("LD A, ($%04X)", nn)
	case 0x03, 0x13, 0x23, 0x33:
		return 1, fmt.Sprintf("INC %s", z80Reg16[p])
	case 0x0B, 0x1B, 0x2B, 0x3B:
		return 1, fmt.Sprintf("DEC %s", z80Reg16[p])
	case 0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x34, 0x3C:
		return 1, fmt.Sprintf("INC %s", z80Reg8[y])
	case 0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x35, 0x3D:
		return 1, fmt.Sprintf("DEC %s", z80Reg8[y])
	case 0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x36, 0x3E:
		return 2, fmt.Sprintf("LD %s, $%02X", z80Reg8[y], n)
	case 0x07, 0x0F, 0x17, 0x1F, 0x27, 0x2F, 0x37, 0x3F:
		return 1, z80AccOps[y]
	case 0xC0, 0xC8, 0xD0, 0xD8, 0xE0, 0xE8, 0xF0, 0xF8:
		return 1, fmt.Sprintf("RET %s", z80Cond[y])
	case 0xC1, 0xD1, 0xE1, 0xF1:
		return 1, fmt.Sprintf("POP %s", z80Reg16Push[p])
	case 0xC5, 0xD5, 0xE5, 0xF5:
		return 1, fmt.Sprintf("PUSH %s", z80Reg16Push[p])
	case 0xC2, 0xCA, 0xD2, 0xDA, 0xE2, 0xEA, 0xF2, 0xFA:
		return 3, fmt.Sprintf("JP %s, $%04X", z80Cond[y], nn)
	case 0xC4, 0xCC, 0xD4, 0xDC, 0xE4, 0xEC, 0xF4, 0xFC:
		return 3, fmt.Sprintf("CALL %s, $%04X", z80Cond[y], nn)
	case 0xC6, 0xCE, 0xD6, 0xDE, 0xE6, 0xEE, 0xF6, 0xFE:
		return 2, fmt.Sprintf("%s $%02X", z80ALU[y], n)
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
		return 1, fmt.Sprintf("RST $%02X", op&0x38)
	case 0xC3:
		return 3, fmt.Sprintf("JP $%04X", nn)
	case 0xC9:
		return 1, "RET"
	case 0xCD:
		return 3, fmt.Sprintf("CALL $%04X", nn)
	case 0xD3:
		return 2, fmt.Sprintf("OUT ($%02X), A", n)
	case 0xDB:
		return 2, fmt.Sprintf("IN A, ($%02X)", n)
	case 0xD9:
		return 1, "EXX"
	case 0xE3:
		return 1, "EX (SP), HL"
	case 0xE9:
		return 1, "JP (HL)"
	case 0xEB:
		return 1, "EX DE, HL"
	case 0xF3:
		return 1, "DI"
	case 0xF9:
		return 1, "LD SP, HL"
	case 0xFB:
		return 1, "EI"
	}
	return 1, fmt.Sprintf("db $%02X", op)
}

// decodeZ80CB formats a CB page opcode against operand, which is the
// register or memory reference named by the low three bits.
func decodeZ80CB(op byte, operand string) string {
	bit := op >> 3 & 7
	switch op >> 6 {
	case 1:
		return fmt.Sprintf("BIT %d, %s", bit, operand)
	case 2:
		return fmt.Sprintf("RES %d, %s", bit, operand)
	case 3:
		return fmt.Sprintf("SET %d, %s", bit, operand)
	}
	return fmt.Sprintf("%s %s", z80CBOps[bit], operand)
}

func decodeZ80ED(data [4]byte) (int, string) {
	op := data[1]
	nn := uint16(data[2]) | uint16(data[3])<<8
	y := op >> 3 & 7
	p := y >> 1

	if op&0xE4 == 0xA0 {
		return 2, z80BlockOps[y-4][op&3]
	}
	if op&0xC0 != 0x40 {
		return 2, fmt.Sprintf("db $ED, $%02X", op)
	}

	switch op & 7 {
	case 0:
		if y == 6 {
			return 2, "IN F, (C)"
		}
		return 2, fmt.Sprintf("IN %s, (C)", z80Reg8[y])
	case 1:
		if y == 6 {
			return 2, "OUT (C), 0"
		}
		return 2, fmt.Sprintf("OUT (C), %s", z80Reg8[y])
	case 2:
		if y&1 == 0 {
			return 2, fmt.Sprintf("SBC HL, %s", z80Reg16[p])
		}
		return 2, fmt.Sprintf("ADC HL, %s", z80Reg16[p])
	case 3:
		if y&1 == 0 {
			return 4, fmt.Sprintf("LD ($%04X), %s", nn, z80Reg16[p])
		}
		return 4, fmt.Sprintf("LD %s, ($%04X)", z80Reg16[p], nn)
	case 4:
		return 2, "NEG"
	case 5:
		if y == 1 {
			return 2, "RETI"
		}
		return 2, "RETN"
	case 6:
		return 2, fmt.Sprintf("IM %d", [4]int{0, 0, 1, 2}[y&3])
	}
	switch y {
	case 0:
		return 2, "LD I, A"
	case 1:
		return 2, "LD R, A"
	case 2:
		return 2, "LD A, I"
	case 3:
		return 2, "LD A, R"
	case 4:
		return 2, "RRD"
	case 5:
		return 2, "RLD"
	}
	return 2, fmt.Sprintf("db $ED, $%02X", op)
}

// decodeZ80Index decodes a DD or FD prefixed instruction. A prefix in
// front of an opcode that ignores it is shown as a lone db so the next
// line starts at the opcode the CPU actually runs.
func decodeZ80Index(data [4]byte, idx string) (int, string) {
	op := data[1]
	d := int8(data[2])
	nn := uint16(data[2]) | uint16(data[3])<<8
	mem := fmt.Sprintf("(%s%+d)", idx, d)
	half := [8]string{"B", "C", "D", "E", idx + "H", idx + "L", mem, "A"}
	y := op >> 3 & 7
	z := op & 7

	switch {
	case op == 0xCB:
		cb := data[3]
		s := decodeZ80CB(cb, fmt.Sprintf("(%s%+d)", idx, d))
		if cb&7 != 6 && cb&0xC0 != 0x40 {
			s += ", " + z80Reg8[cb&7]
		}
		return 4, s
	case op == 0x76:
	case op&0xC0 == 0x40:
		if y == 6 {
			return 3, fmt.Sprintf("LD %s, %s", mem, z80Reg8[z])
		}
		if z == 6 {
			return 3, fmt.Sprintf("LD %s, %s", z80Reg8[y], mem)
		}
		if y == 4 || y == 5 || z == 4 || z == 5 {
			return 2, fmt.Sprintf("LD %s, %s", half[y], half[z])
		}
	case op&0xC0 == 0x80:
		if z == 6 {
			return 3, fmt.Sprintf("%s %s", z80ALU[y], mem)
		}
		if z == 4 || z == 5 {
			return 2, fmt.Sprintf("%s %s", z80ALU[y], half[z])
		}
	}

	switch op {
	case 0x09, 0x19, 0x29, 0x39:
		src := z80Reg16[op>>4]
		if op == 0x29 {
			src = idx
		}
		return 2, fmt.Sprintf("ADD %s, %s", idx, src)
	case 0x21:
		return 4, fmt.Sprintf("LD %s, $%04X", idx, nn)
	case 0x22:
		return 4, fmt.Sprintf("LD ($%04X), %s", nn, idx)
	case 0x2A:
		return 4, fmt.Sprintf("LD %s, ($%04X)", idx, nn)
	case 0x23:
		return 2, fmt.Sprintf("INC %s", idx)
	case 0x2B:
		return 2, fmt.Sprintf("DEC %s", idx)
	case 0x24, 0x2C:
		return 2, fmt.Sprintf("INC %s", half[y])
	case 0x25, 0x2D:
		return 2, fmt.Sprintf("DEC %s", half[y])
	case 0x26, 0x2E:
		return 3, fmt.Sprintf("LD %s, $%02X", half[y], data[2])
	case 0x34:
		return 3, fmt.Sprintf("INC %s", mem)
	case 0x35:
		return 3, fmt.Sprintf("DEC %s", mem)
	case 0x36:
		return 4, fmt.Sprintf("LD %s, $%02X", mem, data[3])
	case 0xE1:
		return 2, fmt.Sprintf("POP %s", idx)
	case 0xE5:
		return 2, fmt.Sprintf("PUSH %s", idx)
	case 0xE3:
		return 2, fmt.Sprintf("EX (SP), %s", idx)
	case 0xE9:
		return 2, fmt.Sprintf("JP (%s)", idx)
	case 0xF9:
		return 2, fmt.Sprintf("LD SP, %s", idx)
	}
	return 1, fmt.Sprintf("db $%02X", data[0])
}
