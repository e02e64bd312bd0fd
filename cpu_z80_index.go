package z80

// execIndex decodes the DD and FD pages. idx points at IX or IY. Opcodes
// that do not touch HL, H or L run exactly as on the base page.
func (c *CPU) execIndex(op byte, idx *uint16) {
	switch {
	case op == 0x76:
		c.opHALT()
		return
	case op&0xC0 == 0x40:
		c.opIndexLD(op>>3&7, op&7, idx)
		return
	case op&0xC0 == 0x80:
		var v byte
		if src := op & 7; src == 6 {
			v = c.read(c.indexAddr(*idx))
		} else {
			v = c.indexReg8(src, idx)
		}
		c.opALU(aluOp(op>>3&7), v)
		return
	}

	y := op >> 3 & 7
	switch op {
	case 0x09, 0x19, 0x29, 0x39:
		x := *idx
		c.put(c.IR(), 7)
		v := c.rp(op >> 4)
		if op == 0x29 {
			v = x
		}
		*idx, c.F = add16(x, v, c.F)
		c.WZ = x + 1
	case 0x21:
		*idx = c.fetchWord()
	case 0x22:
		addr := c.fetchWord()
		c.writeWord(addr, *idx)
		c.WZ = addr + 1
	case 0x2A:
		addr := c.fetchWord()
		*idx = c.readWord(addr)
		c.WZ = addr + 1
	case 0x23:
		c.put(c.IR(), 2)
		*idx++
	case 0x2B:
		c.put(c.IR(), 2)
		*idx--
	case 0x24, 0x2C:
		var v byte
		v, c.F = inc8(c.indexReg8(y, idx), c.F)
		c.setIndexReg8(y, idx, v)
	case 0x25, 0x2D:
		var v byte
		v, c.F = dec8(c.indexReg8(y, idx), c.F)
		c.setIndexReg8(y, idx, v)
	case 0x26, 0x2E:
		c.setIndexReg8(y, idx, c.fetchByte())
	case 0x34:
		c.opIncDecMem(c.indexAddr(*idx), inc8)
	case 0x35:
		c.opIncDecMem(c.indexAddr(*idx), dec8)
	case 0x36:
		d := int8(c.fetchByte())
		c.WZ = *idx + uint16(d)
		pc := c.PC
		n := c.fetchByte()
		c.put(pc, 2)
		c.write(c.WZ, n)
	case 0xCB:
		c.execIndexCB(*idx)
	case 0xE1:
		*idx = c.pop()
	case 0xE5:
		c.put(c.IR(), 1)
		c.push(*idx)
	case 0xE3:
		*idx = c.opEXSP(*idx)
	case 0xE9:
		c.PC = *idx
	case 0xF9:
		c.put(c.IR(), 2)
		c.SP = *idx
	default:
		c.execBase(op)
	}
}

// indexAddr fetches the displacement of an (IX+d) operand and returns the
// effective address, which is also latched into WZ.
func (c *CPU) indexAddr(idx uint16) uint16 {
	pc := c.PC
	d := int8(c.fetchByte())
	c.WZ = idx + uint16(d)
	c.put(pc, 5)
	return c.WZ
}

// opIndexLD is LD r,r' under a DD/FD prefix. H and L name the index halves
// unless the other operand is (IX+d), in which case they are the real H
// and L.
func (c *CPU) opIndexLD(dst, src byte, idx *uint16) {
	switch {
	case src == 6:
		c.setReg8(dst, c.read(c.indexAddr(*idx)))
	case dst == 6:
		addr := c.indexAddr(*idx)
		c.write(addr, c.reg8(src))
	default:
		c.setIndexReg8(dst, idx, c.indexReg8(src, idx))
	}
}
