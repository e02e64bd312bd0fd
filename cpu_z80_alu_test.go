package z80

import (
	"math/bits"
	"testing"
)

// oracleAdd adds a, b and carry one bit at a time and reports the flags a
// real adder would produce. Subtraction is a + ^b + !borrow with the carry
// flags inverted.
func oracleAdd(a, b, carryIn byte, subtract bool) (byte, byte) {
	if subtract {
		b = ^b
		carryIn ^= 1
	}
	var r byte
	carry := carryIn
	var carry3, carry6, carry7 byte
	for i := range 8 {
		x := a >> i & 1
		y := b >> i & 1
		r |= (x ^ y ^ carry) << i
		carry = x&y | x&carry | y&carry
		switch i {
		case 3:
			carry3 = carry
		case 6:
			carry6 = carry
		case 7:
			carry7 = carry
		}
	}
	var f byte
	if subtract {
		f |= FlagN
		carry3 ^= 1
		carry7 ^= 1
		// overflow is unaffected by the inversion
		carry6 ^= 1
	}
	if carry7 != 0 {
		f |= FlagC
	}
	if carry3 != 0 {
		f |= FlagH
	}
	if carry6 != carry7 {
		f |= FlagPV
	}
	if r == 0 {
		f |= FlagZ
	}
	f |= r & (FlagS | Flag5 | Flag3)
	return r, f
}

func oracleLogic(r byte, h bool) byte {
	f := r & (FlagS | Flag5 | Flag3)
	if r == 0 {
		f |= FlagZ
	}
	if bits.OnesCount8(r)%2 == 0 {
		f |= FlagPV
	}
	if h {
		f |= FlagH
	}
	return f
}

func TestZ80ALUAddSubExhaustive(t *testing.T) {
	for a := range 256 {
		for b := range 256 {
			for carry := range byte(2) {
				x, y := byte(a), byte(b)

				wantR, wantF := oracleAdd(x, y, carry, false)
				gotR, gotF := add8(x, y, carry)
				if gotR != wantR || gotF != wantF {
					t.Fatalf("ADC %02X,%02X c=%d = %02X/%02X, want %02X/%02X", x, y, carry, gotR, gotF, wantR, wantF)
				}

				wantR, wantF = oracleAdd(x, y, carry, true)
				gotR, gotF = sub8(x, y, carry)
				if gotR != wantR || gotF != wantF {
					t.Fatalf("SBC %02X,%02X c=%d = %02X/%02X, want %02X/%02X", x, y, carry, gotR, gotF, wantR, wantF)
				}
			}
		}
	}
}

func TestZ80ALUCompareExhaustive(t *testing.T) {
	for a := range 256 {
		for b := range 256 {
			x, y := byte(a), byte(b)
			_, subF := oracleAdd(x, y, 0, true)
			want := subF&^(Flag5|Flag3) | y&(Flag5|Flag3)

			gotA, gotF := performALU(aluCp, x, y, 0xFF)
			if gotA != x {
				t.Fatalf("CP changed A: %02X -> %02X", x, gotA)
			}
			requireZ80EqualU8(t, "CP flags", gotF, want)
		}
	}
}

func TestZ80ALULogicExhaustive(t *testing.T) {
	for a := range 256 {
		for b := range 256 {
			x, y := byte(a), byte(b)
			for _, tc := range []struct {
				op   aluOp
				want byte
				h    bool
			}{
				{aluAnd, x & y, true},
				{aluXor, x ^ y, false},
				{aluOr, x | y, false},
			} {
				r, f := performALU(tc.op, x, y, 0xFF)
				if r != tc.want || f != oracleLogic(tc.want, tc.h) {
					t.Fatalf("op %d %02X,%02X = %02X/%02X, want %02X/%02X", tc.op, x, y, r, f, tc.want, oracleLogic(tc.want, tc.h))
				}
			}
		}
	}
}

func TestZ80ALUIncDecExhaustive(t *testing.T) {
	for v := range 256 {
		for carry := range byte(2) {
			x := byte(v)
			// INC and DEC are ADD/SUB of 1 with C kept from the input
			_, addF := oracleAdd(x, 1, 0, false)
			r, f := inc8(x, carry)
			requireZ80EqualU8(t, "INC result", r, x+1)
			requireZ80EqualU8(t, "INC flags", f, addF&^FlagC|carry)

			_, subF := oracleAdd(x, 1, 0, true)
			r, f = dec8(x, carry)
			requireZ80EqualU8(t, "DEC result", r, x-1)
			requireZ80EqualU8(t, "DEC flags", f, subF&^FlagC|carry)
		}
	}
}

func TestZ80ALUIncOverflowBoundary(t *testing.T) {
	r, f := inc8(0x7F, 0)
	requireZ80EqualU8(t, "result", r, 0x80)
	if f&FlagS == 0 || f&FlagPV == 0 || f&FlagH == 0 {
		t.Fatalf("INC 0x7F flags = %02X, want S, PV and H set", f)
	}
	if f&(FlagZ|FlagN) != 0 {
		t.Fatalf("INC 0x7F flags = %02X, want Z and N clear", f)
	}
}

func TestZ80ALURotateShiftExhaustive(t *testing.T) {
	for v := range 256 {
		for carry := range byte(2) {
			x := byte(v)
			want := [8]struct{ r, c byte }{
				{bits.RotateLeft8(x, 1), x >> 7},
				{bits.RotateLeft8(x, -1), x & 1},
				{x<<1 | carry, x >> 7},
				{x>>1 | carry<<7, x & 1},
				{x << 1, x >> 7},
				{byte(int8(x) >> 1), x & 1},
				{x<<1 | 1, x >> 7},
				{x >> 1, x & 1},
			}
			for op := range byte(8) {
				r, f := rotShift(op, x, carry)
				if r != want[op].r || f != oracleLogic(r, false)|want[op].c {
					t.Fatalf("CB op %d on %02X c=%d = %02X/%02X", op, x, carry, r, f)
				}
			}
		}
	}
}

func TestZ80ALUAccumulatorRotateKeepsSZPV(t *testing.T) {
	for op := range byte(4) {
		r, f := rotA(op, 0x81, FlagS|FlagZ|FlagPV|FlagH|FlagN)
		if f&(FlagS|FlagZ|FlagPV) != FlagS|FlagZ|FlagPV {
			t.Fatalf("rotate %d dropped S/Z/PV: %02X", op, f)
		}
		if f&(FlagH|FlagN) != 0 {
			t.Fatalf("rotate %d kept H/N: %02X", op, f)
		}
		requireZ80EqualU8(t, "5/3", f&(Flag5|Flag3), r&(Flag5|Flag3))
	}
}

func TestZ80ALUAdd16(t *testing.T) {
	r, f := add16(0x0FFF, 0x0001, FlagS|FlagZ|FlagPV|FlagN)
	requireZ80EqualU16(t, "result", r, 0x1000)
	requireZ80EqualU8(t, "flags", f, FlagS|FlagZ|FlagPV|FlagH)

	r, f = add16(0xFFFF, 0x0001, 0)
	requireZ80EqualU16(t, "result", r, 0x0000)
	requireZ80EqualU8(t, "flags", f, FlagH|FlagC)

	r, f = add16(0x2800, 0x0000, 0)
	requireZ80EqualU16(t, "result", r, 0x2800)
	requireZ80EqualU8(t, "flags", f, Flag5|Flag3)
}

func TestZ80ALUAdcSbc16Sampled(t *testing.T) {
	values := []uint16{0x0000, 0x0001, 0x0FFF, 0x1000, 0x7FFF, 0x8000, 0x8001, 0xFFFF, 0x1234, 0xEDCB}
	for _, x := range values {
		for _, y := range values {
			for carry := range byte(2) {
				// the high byte flags equal an 8-bit add of the high bytes
				// with the carry out of the low bytes
				lo, loF := oracleAdd(byte(x), byte(y), carry, false)
				hi, hiF := oracleAdd(byte(x>>8), byte(y>>8), loF&FlagC, false)
				want := hiF &^ FlagZ
				if lo == 0 && hi == 0 {
					want |= FlagZ
				}
				r, f := adc16(x, y, carry)
				requireZ80EqualU16(t, "ADC HL result", r, uint16(hi)<<8|uint16(lo))
				requireZ80EqualU8(t, "ADC HL flags", f, want)

				lo, loF = oracleAdd(byte(x), byte(y), carry, true)
				hi, hiF = oracleAdd(byte(x>>8), byte(y>>8), loF&FlagC, true)
				want = hiF &^ FlagZ
				if lo == 0 && hi == 0 {
					want |= FlagZ
				}
				r, f = sbc16(x, y, carry)
				requireZ80EqualU16(t, "SBC HL result", r, uint16(hi)<<8|uint16(lo))
				requireZ80EqualU8(t, "SBC HL flags", f, want)
			}
		}
	}
}

func TestZ80ALUBitFlags(t *testing.T) {
	f := bitFlags(FlagC, 7, 0x80, 0x00)
	requireZ80EqualU8(t, "BIT 7 set", f, FlagC|FlagH|FlagS)

	f = bitFlags(0, 0, 0xFE, 0xFE)
	requireZ80EqualU8(t, "BIT 0 clear", f, FlagH|FlagZ|FlagPV|Flag5|Flag3)

	f = bitFlags(0, 3, 0x08, 0x28)
	requireZ80EqualU8(t, "BIT 3 memory", f, FlagH|Flag5|Flag3)
}

func TestZ80ALUDAAAfterAdd(t *testing.T) {
	for a := range 100 {
		for b := range 100 {
			x := byte(a/10<<4 | a%10)
			y := byte(b/10<<4 | b%10)
			sum, f := add8(x, y, 0)
			r, f := daa(sum, f)
			want := (a + b) % 100
			requireZ80EqualU8(t, "BCD sum", r, byte(want/10<<4|want%10))
			if (f&FlagC != 0) != (a+b >= 100) {
				t.Fatalf("DAA carry for %d+%d = %v", a, b, f&FlagC != 0)
			}
		}
	}
}

func TestZ80ALUDAAAfterSub(t *testing.T) {
	for a := range 100 {
		for b := range 100 {
			x := byte(a/10<<4 | a%10)
			y := byte(b/10<<4 | b%10)
			diff, f := sub8(x, y, 0)
			r, f := daa(diff, f)
			want := (a - b + 100) % 100
			requireZ80EqualU8(t, "BCD difference", r, byte(want/10<<4|want%10))
			if (f&FlagC != 0) != (a < b) {
				t.Fatalf("DAA borrow for %d-%d = %v", a, b, f&FlagC != 0)
			}
			if f&FlagN == 0 {
				t.Fatalf("DAA dropped N after subtraction")
			}
		}
	}
}

func TestZ80ALUCplScfCcf(t *testing.T) {
	r, f := cpl(0x5A, FlagC|FlagZ)
	requireZ80EqualU8(t, "CPL", r, 0xA5)
	requireZ80EqualU8(t, "CPL flags", f, FlagC|FlagZ|FlagH|FlagN|Flag5)

	requireZ80EqualU8(t, "SCF", scf(0x28, FlagN|FlagH|FlagS), FlagS|FlagC|Flag5|Flag3)
	requireZ80EqualU8(t, "CCF set", ccf(0x00, FlagC|FlagN), FlagH)
	requireZ80EqualU8(t, "CCF clear", ccf(0x00, FlagPV), FlagPV|FlagC)
}

func TestZ80ALUNeg(t *testing.T) {
	r, f := neg8(0x80)
	requireZ80EqualU8(t, "NEG 0x80", r, 0x80)
	if f&FlagPV == 0 || f&FlagC == 0 {
		t.Fatalf("NEG 0x80 flags = %02X, want PV and C", f)
	}
	r, f = neg8(0x00)
	requireZ80EqualU8(t, "NEG 0", r, 0x00)
	if f&FlagC != 0 || f&FlagZ == 0 {
		t.Fatalf("NEG 0 flags = %02X, want Z and no C", f)
	}
}
