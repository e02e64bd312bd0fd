package z80

// Registers is the architectural state of the Z80. Pairs are stored as
// their two 8-bit halves and composed on access.
type Registers struct {
	A  byte
	F  byte
	B  byte
	C  byte
	D  byte
	E  byte
	H  byte
	L  byte
	A2 byte
	F2 byte
	B2 byte
	C2 byte
	D2 byte
	E2 byte
	H2 byte
	L2 byte

	IX uint16
	IY uint16
	SP uint16
	PC uint16
	WZ uint16 // MEMPTR

	I  byte
	R  byte
	IM byte

	IFF1 bool
	IFF2 bool
}

func (r *Registers) AF() uint16 {
	return uint16(r.A)<<8 | uint16(r.F)
}

func (r *Registers) BC() uint16 {
	return uint16(r.B)<<8 | uint16(r.C)
}

func (r *Registers) DE() uint16 {
	return uint16(r.D)<<8 | uint16(r.E)
}

func (r *Registers) HL() uint16 {
	return uint16(r.H)<<8 | uint16(r.L)
}

func (r *Registers) AF2() uint16 {
	return uint16(r.A2)<<8 | uint16(r.F2)
}

func (r *Registers) BC2() uint16 {
	return uint16(r.B2)<<8 | uint16(r.C2)
}

func (r *Registers) DE2() uint16 {
	return uint16(r.D2)<<8 | uint16(r.E2)
}

func (r *Registers) HL2() uint16 {
	return uint16(r.H2)<<8 | uint16(r.L2)
}

func (r *Registers) SetAF(value uint16) {
	r.A = byte(value >> 8)
	r.F = byte(value)
}

func (r *Registers) SetBC(value uint16) {
	r.B = byte(value >> 8)
	r.C = byte(value)
}

func (r *Registers) SetDE(value uint16) {
	r.D = byte(value >> 8)
	r.E = byte(value)
}

func (r *Registers) SetHL(value uint16) {
	r.H = byte(value >> 8)
	r.L = byte(value)
}

func (r *Registers) SetAF2(value uint16) {
	r.A2 = byte(value >> 8)
	r.F2 = byte(value)
}

func (r *Registers) SetBC2(value uint16) {
	r.B2 = byte(value >> 8)
	r.C2 = byte(value)
}

func (r *Registers) SetDE2(value uint16) {
	r.D2 = byte(value >> 8)
	r.E2 = byte(value)
}

func (r *Registers) SetHL2(value uint16) {
	r.H2 = byte(value >> 8)
	r.L2 = byte(value)
}

func (r *Registers) IXH() byte { return byte(r.IX >> 8) }
func (r *Registers) IXL() byte { return byte(r.IX) }
func (r *Registers) IYH() byte { return byte(r.IY >> 8) }
func (r *Registers) IYL() byte { return byte(r.IY) }

func (r *Registers) SetIXH(v byte) { r.IX = setHigh(r.IX, v) }
func (r *Registers) SetIXL(v byte) { r.IX = setLow(r.IX, v) }
func (r *Registers) SetIYH(v byte) { r.IY = setHigh(r.IY, v) }
func (r *Registers) SetIYL(v byte) { r.IY = setLow(r.IY, v) }

// IR is the refresh address the CPU drives during internal cycles.
func (r *Registers) IR() uint16 {
	return uint16(r.I)<<8 | uint16(r.R)
}

// MP and SetMP are aliases for the WZ latch.
func (r *Registers) MP() uint16         { return r.WZ }
func (r *Registers) SetMP(value uint16) { r.WZ = value }

func (r *Registers) Flag(mask byte) bool {
	return r.F&mask != 0
}

func (r *Registers) SetFlag(mask byte, on bool) {
	if on {
		r.F |= mask
	} else {
		r.F &^= mask
	}
}

func (r *Registers) ExAF() {
	r.A, r.A2 = r.A2, r.A
	r.F, r.F2 = r.F2, r.F
}

func (r *Registers) Exx() {
	r.B, r.B2 = r.B2, r.B
	r.C, r.C2 = r.C2, r.C
	r.D, r.D2 = r.D2, r.D
	r.E, r.E2 = r.E2, r.E
	r.H, r.H2 = r.H2, r.H
	r.L, r.L2 = r.L2, r.L
}

func (r *Registers) incR() {
	r.R = r.R&0x80 | (r.R+1)&0x7F
}

func setHigh(pair uint16, v byte) uint16 {
	return pair&0x00FF | uint16(v)<<8
}

func setLow(pair uint16, v byte) uint16 {
	return pair&0xFF00 | uint16(v)
}

// reg8 reads a register by its 3-bit opcode encoding. Code 6 is the
// memory operand and is handled by the caller.
func (r *Registers) reg8(code byte) byte {
	switch code {
	case 0:
		return r.B
	case 1:
		return r.C
	case 2:
		return r.D
	case 3:
		return r.E
	case 4:
		return r.H
	case 5:
		return r.L
	case 7:
		return r.A
	}
	return 0xFF
}

func (r *Registers) setReg8(code byte, value byte) {
	switch code {
	case 0:
		r.B = value
	case 1:
		r.C = value
	case 2:
		r.D = value
	case 3:
		r.E = value
	case 4:
		r.H = value
	case 5:
		r.L = value
	case 7:
		r.A = value
	}
}

// indexReg8 is reg8 with H and L replaced by the halves of idx.
func (r *Registers) indexReg8(code byte, idx *uint16) byte {
	switch code {
	case 4:
		return byte(*idx >> 8)
	case 5:
		return byte(*idx)
	}
	return r.reg8(code)
}

func (r *Registers) setIndexReg8(code byte, idx *uint16, value byte) {
	switch code {
	case 4:
		*idx = setHigh(*idx, value)
	case 5:
		*idx = setLow(*idx, value)
	default:
		r.setReg8(code, value)
	}
}

// rp reads BC, DE, HL or SP by the 2-bit pair encoding.
func (r *Registers) rp(p byte) uint16 {
	switch p & 3 {
	case 0:
		return r.BC()
	case 1:
		return r.DE()
	case 2:
		return r.HL()
	}
	return r.SP
}

func (r *Registers) setRP(p byte, value uint16) {
	switch p & 3 {
	case 0:
		r.SetBC(value)
	case 1:
		r.SetDE(value)
	case 2:
		r.SetHL(value)
	default:
		r.SP = value
	}
}

// cond evaluates the 3-bit condition code NZ Z NC C PO PE P M.
func (r *Registers) cond(y byte) bool {
	var set bool
	switch y >> 1 {
	case 0:
		set = r.F&FlagZ != 0
	case 1:
		set = r.F&FlagC != 0
	case 2:
		set = r.F&FlagPV != 0
	default:
		set = r.F&FlagS != 0
	}
	return set == (y&1 != 0)
}
