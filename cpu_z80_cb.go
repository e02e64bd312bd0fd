package z80

// execCB decodes the CB page: rotates and shifts, BIT, RES and SET.
func (c *CPU) execCB(op byte) {
	y := op >> 3 & 7
	z := op & 7

	if z == 6 {
		addr := c.HL()
		v := c.read(addr)
		c.put(addr, 1)
		if op&0xC0 == 0x40 {
			c.F = bitFlags(c.F, y, v, byte(c.WZ>>8))
			return
		}
		c.write(addr, c.cbResult(op, v))
		return
	}

	v := c.reg8(z)
	if op&0xC0 == 0x40 {
		c.F = bitFlags(c.F, y, v, v)
		return
	}
	c.setReg8(z, c.cbResult(op, v))
}

// cbResult applies a non-BIT CB operation to v, updating F for the rotate
// and shift group.
func (c *CPU) cbResult(op, v byte) byte {
	bit := byte(1) << (op >> 3 & 7)
	switch op >> 6 {
	case 0:
		var r byte
		r, c.F = rotShift(op>>3, v, c.F)
		return r
	case 2:
		return v &^ bit
	case 3:
		return v | bit
	}
	return v
}

// execIndexCB runs a DD CB d op or FD CB d op instruction in a single
// dispatch. All encodings address (idx+d); register forms other than BIT
// also copy the result into the named register.
func (c *CPU) execIndexCB(idx uint16) {
	c.cbOffset = int8(c.fetchByte())
	pc := c.PC
	op := c.fetchByte()
	c.put(pc, 2)

	addr := idx + uint16(c.cbOffset)
	c.WZ = addr
	v := c.read(addr)
	c.put(addr, 1)

	if op&0xC0 == 0x40 {
		c.F = bitFlags(c.F, op>>3&7, v, byte(addr>>8))
		return
	}

	r := c.cbResult(op, v)
	c.write(addr, r)
	if z := op & 7; z != 6 {
		c.setReg8(z, r)
	}
}
