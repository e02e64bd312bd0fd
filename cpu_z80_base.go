package z80

// execBase decodes the unprefixed opcode page.
func (c *CPU) execBase(op byte) {
	switch {
	case op == 0x76:
		c.opHALT()
		return
	case op&0xC0 == 0x40:
		c.opLDRegReg(op>>3&7, op&7)
		return
	case op&0xC0 == 0x80:
		c.opALU(aluOp(op>>3&7), c.loadOperand(op&7))
		return
	}

	y := op >> 3 & 7
	p := y >> 1
	switch op {
	case 0x00:
	case 0x01, 0x11, 0x21, 0x31:
		c.setRP(p, c.fetchWord())
	case 0x02:
		c.opLDIndirectA(c.BC())
	case 0x12:
		c.opLDIndirectA(c.DE())
	case 0x0A:
		c.opLDAIndirect(c.BC())
	case 0x1A:
		c.opLDAIndirect(c.DE())
	case 0x22:
		addr := c.fetchWord()
		c.writeWord(addr, c.HL())
		c.WZ = addr + 1
	case 0x2A:
		addr := c.fetchWord()
		c.SetHL(c.readWord(addr))
		c.WZ = addr + 1
	case 0x32:
		c.opLDIndirectA(c.fetchWord())
	case 0x3A:
		c.opLDAIndirect(c.fetchWord())
	case 0x03, 0x13, 0x23, 0x33:
		c.put(c.IR(), 2)
		c.setRP(p, c.rp(p)+1)
	case 0x0B, 0x1B, 0x2B, 0x3B:
		c.put(c.IR(), 2)
		c.setRP(p, c.rp(p)-1)
	case 0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x3C:
		var v byte
		v, c.F = inc8(c.reg8(y), c.F)
		c.setReg8(y, v)
	case 0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x3D:
		var v byte
		v, c.F = dec8(c.reg8(y), c.F)
		c.setReg8(y, v)
	case 0x34:
		c.opIncDecMem(c.HL(), inc8)
	case 0x35:
		c.opIncDecMem(c.HL(), dec8)
	case 0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x3E:
		c.setReg8(y, c.fetchByte())
	case 0x36:
		n := c.fetchByte()
		c.write(c.HL(), n)
	case 0x07, 0x0F, 0x17, 0x1F:
		c.A, c.F = rotA(y, c.A, c.F)
	case 0x27:
		c.A, c.F = daa(c.A, c.F)
	case 0x2F:
		c.A, c.F = cpl(c.A, c.F)
	case 0x37:
		c.F = scf(c.A, c.F)
	case 0x3F:
		c.F = ccf(c.A, c.F)
	case 0x08:
		c.ExAF()
	case 0x10:
		c.opDJNZ()
	case 0x18:
		c.opJR(true)
	case 0x20, 0x28, 0x30, 0x38:
		c.opJR(c.cond(y - 4))
	case 0x09, 0x19, 0x29, 0x39:
		hl := c.HL()
		c.put(c.IR(), 7)
		var r uint16
		r, c.F = add16(hl, c.rp(p), c.F)
		c.SetHL(r)
		c.WZ = hl + 1

	case 0xC0, 0xC8, 0xD0, 0xD8, 0xE0, 0xE8, 0xF0, 0xF8:
		c.put(c.IR(), 1)
		if c.cond(y) {
			c.opRET()
		}
	case 0xC9:
		c.opRET()
	case 0xC1, 0xD1, 0xE1:
		c.setRP(p, c.pop())
	case 0xF1:
		c.SetAF(c.pop())
	case 0xC5, 0xD5, 0xE5:
		c.put(c.IR(), 1)
		c.push(c.rp(p))
	case 0xF5:
		c.put(c.IR(), 1)
		c.push(c.AF())
	case 0xC3:
		c.PC = c.fetchWord()
		c.WZ = c.PC
	case 0xC2, 0xCA, 0xD2, 0xDA, 0xE2, 0xEA, 0xF2, 0xFA:
		addr := c.fetchWord()
		c.WZ = addr
		if c.cond(y) {
			c.PC = addr
		}
	case 0xCD:
		c.opCALL(true)
	case 0xC4, 0xCC, 0xD4, 0xDC, 0xE4, 0xEC, 0xF4, 0xFC:
		c.opCALL(c.cond(y))
	case 0xC6, 0xCE, 0xD6, 0xDE, 0xE6, 0xEE, 0xF6, 0xFE:
		c.opALU(aluOp(y), c.fetchByte())
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
		c.opRST(uint16(op & 0x38))
	case 0xD3:
		n := c.fetchByte()
		c.out(uint16(c.A)<<8|uint16(n), c.A)
		c.WZ = uint16(c.A)<<8 | uint16(n+1)
	case 0xDB:
		port := uint16(c.A)<<8 | uint16(c.fetchByte())
		c.A = c.in(port)
		c.WZ = port + 1
	case 0xD9:
		c.Exx()
	case 0xE3:
		c.SetHL(c.opEXSP(c.HL()))
	case 0xE9:
		c.PC = c.HL()
	case 0xEB:
		c.D, c.E, c.H, c.L = c.H, c.L, c.D, c.E
	case 0xF9:
		c.put(c.IR(), 2)
		c.SP = c.HL()
	case 0xF3:
		c.IFF1 = false
		c.IFF2 = false
	case 0xFB:
		c.IFF1 = true
		c.IFF2 = true
		c.skipInterrupt = true
	case 0xCB, 0xDD, 0xED, 0xFD:
		c.setPrefix(op)
	}
}

// loadOperand reads an 8-bit source operand; code 6 is (HL).
func (c *CPU) loadOperand(code byte) byte {
	if code == 6 {
		return c.read(c.HL())
	}
	return c.reg8(code)
}

func (c *CPU) opHALT() {
	c.halted = true
	c.PC--
}

func (c *CPU) opLDRegReg(dst, src byte) {
	switch {
	case src == 6:
		c.setReg8(dst, c.read(c.HL()))
	case dst == 6:
		c.write(c.HL(), c.reg8(src))
	default:
		c.setReg8(dst, c.reg8(src))
	}
}

func (c *CPU) opALU(op aluOp, v byte) {
	c.A, c.F = performALU(op, c.A, v, c.F)
}

func (c *CPU) opLDAIndirect(addr uint16) {
	c.A = c.read(addr)
	c.WZ = addr + 1
}

func (c *CPU) opLDIndirectA(addr uint16) {
	c.write(addr, c.A)
	c.WZ = uint16(c.A)<<8 | (addr+1)&0x00FF
}

func (c *CPU) opIncDecMem(addr uint16, fn func(v, f byte) (byte, byte)) {
	v := c.read(addr)
	c.put(addr, 1)
	v, c.F = fn(v, c.F)
	c.write(addr, v)
}

func (c *CPU) opJR(taken bool) {
	addr := c.PC
	e := int8(c.fetchByte())
	if !taken {
		return
	}
	c.put(addr, 5)
	c.PC += uint16(e)
	c.WZ = c.PC
}

func (c *CPU) opDJNZ() {
	c.put(c.IR(), 1)
	c.B--
	c.opJR(c.B != 0)
}

func (c *CPU) opCALL(taken bool) {
	addr := c.fetchWord()
	c.WZ = addr
	if !taken {
		return
	}
	c.put(c.PC-1, 1)
	c.push(c.PC)
	c.PC = addr
}

func (c *CPU) opRET() {
	c.PC = c.pop()
	c.WZ = c.PC
}

func (c *CPU) opRST(vector uint16) {
	c.put(c.IR(), 1)
	c.push(c.PC)
	c.PC = vector
	c.WZ = vector
}

// opEXSP swaps value with the word at (SP) and returns the old stack word.
func (c *CPU) opEXSP(value uint16) uint16 {
	lo := c.read(c.SP)
	hi := c.read(c.SP + 1)
	c.put(c.SP+1, 1)
	word := uint16(hi)<<8 | uint16(lo)
	c.WZ = word
	c.write(c.SP+1, byte(value>>8))
	c.write(c.SP, byte(value))
	c.put(c.SP+1, 2)
	return word
}
