package z80

// ALU primitives. Every function is pure: it takes the operands (and the
// incoming F where a flag is consumed or preserved) and returns the result
// together with the new F.

type aluOp byte

const (
	aluAdd aluOp = iota
	aluAdc
	aluSub
	aluSbc
	aluAnd
	aluXor
	aluOr
	aluCp
)

// performALU applies one of the eight accumulator operations encoded in
// bits 5-3 of the ALU opcodes. CP returns a unchanged.
func performALU(op aluOp, a, v, f byte) (byte, byte) {
	switch op {
	case aluAdd:
		return add8(a, v, 0)
	case aluAdc:
		return add8(a, v, f&FlagC)
	case aluSub:
		return sub8(a, v, 0)
	case aluSbc:
		return sub8(a, v, f&FlagC)
	case aluAnd:
		return and8(a, v)
	case aluXor:
		return xor8(a, v)
	case aluOr:
		return or8(a, v)
	}
	return a, cp8(a, v)
}

func add8(a, b, carry byte) (byte, byte) {
	sum := uint16(a) + uint16(b) + uint16(carry)
	half := a&0x0F + b&0x0F + carry
	signed := int16(int8(a)) + int16(int8(b)) + int16(carry)
	r := byte(sum)
	f := sz53(r) | byte(sum>>8)&FlagC | half&FlagH
	if signed < -128 || signed > 127 {
		f |= FlagPV
	}
	return r, f
}

func sub8(a, b, carry byte) (byte, byte) {
	diff := uint16(a) - uint16(b) - uint16(carry)
	half := a&0x0F - b&0x0F - carry
	signed := int16(int8(a)) - int16(int8(b)) - int16(carry)
	r := byte(diff)
	f := FlagN | sz53(r) | byte(diff>>8)&FlagC | half&FlagH
	if signed < -128 || signed > 127 {
		f |= FlagPV
	}
	return r, f
}

// cp8 is SUB without the write back; 5 and 3 come from the operand.
func cp8(a, b byte) byte {
	_, f := sub8(a, b, 0)
	return f&^flags53 | b&flags53
}

func and8(a, b byte) (byte, byte) {
	r := a & b
	return r, sz53p(r) | FlagH
}

func xor8(a, b byte) (byte, byte) {
	r := a ^ b
	return r, sz53p(r)
}

func or8(a, b byte) (byte, byte) {
	r := a | b
	return r, sz53p(r)
}

func inc8(v, f byte) (byte, byte) {
	r := v + 1
	nf := f&FlagC | sz53(r) | (v&0x0F+1)&FlagH
	if v == 0x7F {
		nf |= FlagPV
	}
	return r, nf
}

func dec8(v, f byte) (byte, byte) {
	r := v - 1
	nf := f&FlagC | FlagN | sz53(r) | (v&0x0F-1)&FlagH
	if v == 0x80 {
		nf |= FlagPV
	}
	return r, nf
}

func neg8(a byte) (byte, byte) {
	return sub8(0, a, 0)
}

// rotShift performs the CB-page rotate/shift selected by op (0-7:
// RLC RRC RL RR SLA SRA SLL SRL).
func rotShift(op, v, f byte) (byte, byte) {
	var r, carry byte
	switch op & 7 {
	case 0:
		carry = v >> 7
		r = v<<1 | carry
	case 1:
		carry = v & 1
		r = v>>1 | carry<<7
	case 2:
		carry = v >> 7
		r = v<<1 | f&FlagC
	case 3:
		carry = v & 1
		r = v>>1 | (f&FlagC)<<7
	case 4:
		carry = v >> 7
		r = v << 1
	case 5:
		carry = v & 1
		r = v>>1 | v&0x80
	case 6:
		carry = v >> 7
		r = v<<1 | 1
	case 7:
		carry = v & 1
		r = v >> 1
	}
	return r, sz53p(r) | carry
}

// rotA is the accumulator rotate group RLCA RRCA RLA RRA (op 0-3). S, Z and
// PV survive.
func rotA(op, a, f byte) (byte, byte) {
	var r, carry byte
	switch op & 3 {
	case 0:
		carry = a >> 7
		r = a<<1 | carry
	case 1:
		carry = a & 1
		r = a>>1 | carry<<7
	case 2:
		carry = a >> 7
		r = a<<1 | f&FlagC
	case 3:
		carry = a & 1
		r = a>>1 | (f&FlagC)<<7
	}
	return r, f&(FlagS|FlagZ|FlagPV) | r&flags53 | carry
}

func add16(x, y uint16, f byte) (uint16, byte) {
	sum := uint32(x) + uint32(y)
	r := uint16(sum)
	nf := f&(FlagS|FlagZ|FlagPV) | byte(r>>8)&flags53 | byte(sum>>16)&FlagC
	if x&0x0FFF+y&0x0FFF > 0x0FFF {
		nf |= FlagH
	}
	return r, nf
}

func adc16(x, y uint16, f byte) (uint16, byte) {
	carry := uint32(f & FlagC)
	sum := uint32(x) + uint32(y) + carry
	r := uint16(sum)
	nf := byte(r>>8)&(FlagS|flags53) | byte(sum>>16)&FlagC
	if r == 0 {
		nf |= FlagZ
	}
	if uint32(x&0x0FFF)+uint32(y&0x0FFF)+carry > 0x0FFF {
		nf |= FlagH
	}
	signed := int32(int16(x)) + int32(int16(y)) + int32(carry)
	if signed < -32768 || signed > 32767 {
		nf |= FlagPV
	}
	return r, nf
}

func sbc16(x, y uint16, f byte) (uint16, byte) {
	carry := uint32(f & FlagC)
	diff := uint32(x) - uint32(y) - carry
	r := uint16(diff)
	nf := FlagN | byte(r>>8)&(FlagS|flags53) | byte(diff>>16)&FlagC
	if r == 0 {
		nf |= FlagZ
	}
	if uint32(x&0x0FFF) < uint32(y&0x0FFF)+carry {
		nf |= FlagH
	}
	signed := int32(int16(x)) - int32(int16(y)) - int32(carry)
	if signed < -32768 || signed > 32767 {
		nf |= FlagPV
	}
	return r, nf
}

// bitFlags computes F for BIT n. xy supplies the 5/3 bits: the operand
// itself for registers, the high byte of WZ for memory forms.
func bitFlags(f byte, bit byte, v byte, xy byte) byte {
	m := v & (1 << (bit & 7))
	nf := f&FlagC | FlagH | m&FlagS | xy&flags53
	if m == 0 {
		nf |= FlagZ | FlagPV
	}
	return nf
}

func daa(a, f byte) (byte, byte) {
	var diff byte
	if f&FlagH != 0 || a&0x0F > 9 {
		diff = 0x06
	}
	if f&FlagC != 0 || a > 0x99 {
		diff |= 0x60
	}
	r := a + diff
	if f&FlagN != 0 {
		r = a - diff
	}
	nf := f&(FlagN|FlagC) | sz53p(r) | (r^a)&FlagH
	if a > 0x99 {
		nf |= FlagC
	}
	return r, nf
}

func cpl(a, f byte) (byte, byte) {
	r := ^a
	return r, f&(FlagC|FlagPV|FlagZ|FlagS) | r&flags53 | FlagH | FlagN
}

func scf(a, f byte) byte {
	return f&(FlagPV|FlagZ|FlagS) | a&flags53 | FlagC
}

func ccf(a, f byte) byte {
	return f&(FlagPV|FlagZ|FlagS) | (f&FlagC)<<4 | a&flags53 | ^f&FlagC
}
