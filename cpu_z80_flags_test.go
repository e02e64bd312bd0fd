package z80

import (
	"math/bits"
	"testing"
)

func TestZ80ParityTable(t *testing.T) {
	for v := range 256 {
		b := byte(v)
		want := byte(0)
		if bits.OnesCount8(b)%2 == 0 {
			want = FlagPV
		}
		if got := Parity(b); got != want {
			t.Fatalf("Parity(0x%02X) = 0x%02X, want 0x%02X", b, got, want)
		}
	}
}

func TestZ80FlagAccessors(t *testing.T) {
	var r Registers
	r.SetFlag(FlagZ, true)
	r.SetFlag(FlagC, true)
	if !r.Flag(FlagZ) || !r.Flag(FlagC) {
		t.Fatalf("F = 0x%02X, want Z and C", r.F)
	}
	r.SetFlag(FlagZ, false)
	requireZ80EqualU8(t, "F", r.F, FlagC)
}

func TestZ80ConditionCodes(t *testing.T) {
	var r Registers
	r.F = FlagZ | FlagPV
	want := [8]bool{false, true, true, false, false, true, true, false}
	for y, w := range want {
		if got := r.cond(byte(y)); got != w {
			t.Fatalf("cond %s with F=0x%02X = %v, want %v", z80Cond[y], r.F, got, w)
		}
	}
}

func TestZ80XYFlagsFollowResult(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{
		0x3E, 0x20, // LD A,0x20
		0xC6, 0x08, // ADD A,0x08
	})
	rig.run(2)
	requireZ80EqualU8(t, "A", rig.cpu.A, 0x28)
	requireZ80EqualU8(t, "F", rig.cpu.F, Flag5|Flag3)
}
