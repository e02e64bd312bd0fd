package z80

// execED decodes the ED page. Every opcode without a defined instruction
// is an 8 T-state NOP.
func (c *CPU) execED(op byte) {
	y := op >> 3 & 7
	z := op & 7
	p := y >> 1

	if op&0xC0 == 0x40 {
		switch z {
		case 0:
			c.opINRegC(y)
		case 1:
			c.opOUTCReg(y)
		case 2:
			hl := c.HL()
			c.put(c.IR(), 7)
			var r uint16
			if y&1 == 0 {
				r, c.F = sbc16(hl, c.rp(p), c.F)
			} else {
				r, c.F = adc16(hl, c.rp(p), c.F)
			}
			c.SetHL(r)
			c.WZ = hl + 1
		case 3:
			addr := c.fetchWord()
			if y&1 == 0 {
				c.writeWord(addr, c.rp(p))
			} else {
				c.setRP(p, c.readWord(addr))
			}
			c.WZ = addr + 1
		case 4:
			c.A, c.F = neg8(c.A)
		case 5:
			// RETI and RETN both restore IFF1 from IFF2
			c.IFF1 = c.IFF2
			c.opRET()
		case 6:
			c.IM = [4]byte{0, 0, 1, 2}[y&3]
		case 7:
			c.execEDMisc(y)
		}
		return
	}

	if op&0xE4 == 0xA0 {
		c.execBlock(y, z)
	}
}

func (c *CPU) execEDMisc(y byte) {
	switch y {
	case 0:
		c.put(c.IR(), 1)
		c.I = c.A
	case 1:
		c.put(c.IR(), 1)
		c.R = c.A
	case 2:
		c.opLDAIR(c.I)
	case 3:
		c.opLDAIR(c.R)
	case 4:
		c.opRRD()
	case 5:
		c.opRLD()
	}
}

// opLDAIR is LD A,I and LD A,R. PV reports IFF2; on NMOS parts an interrupt
// accepted straight after the instruction clears it again.
func (c *CPU) opLDAIR(v byte) {
	c.A = v
	c.F = c.F&FlagC | sz53(c.A)
	if c.IFF2 {
		c.F |= FlagPV
	}
	c.put(c.IR(), 1)
	c.resetPV = c.chip == NMOS
}

func (c *CPU) opINRegC(y byte) {
	bc := c.BC()
	v := c.in(bc)
	c.WZ = bc + 1
	c.F = c.F&FlagC | sz53p(v)
	if y != 6 {
		c.setReg8(y, v)
	}
}

func (c *CPU) opOUTCReg(y byte) {
	bc := c.BC()
	var v byte
	if y == 6 {
		if c.chip == CMOS {
			v = 0xFF
		}
	} else {
		v = c.reg8(y)
	}
	c.out(bc, v)
	c.WZ = bc + 1
}

func (c *CPU) opRRD() {
	hl := c.HL()
	v := c.read(hl)
	c.put(hl, 4)
	c.write(hl, c.A<<4|v>>4)
	c.A = c.A&0xF0 | v&0x0F
	c.F = c.F&FlagC | sz53p(c.A)
	c.WZ = hl + 1
}

func (c *CPU) opRLD() {
	hl := c.HL()
	v := c.read(hl)
	c.put(hl, 4)
	c.write(hl, v<<4|c.A&0x0F)
	c.A = c.A&0xF0 | v>>4
	c.F = c.F&FlagC | sz53p(c.A)
	c.WZ = hl + 1
}

// execBlock handles LDI/CPI/INI/OUTI and their decrementing and repeating
// forms. y is 4..7 (I, D, IR, DR); z picks the family.
func (c *CPU) execBlock(y, z byte) {
	dec := y&1 != 0
	repeat := y&2 != 0
	switch z {
	case 0:
		c.opLDBlock(dec, repeat)
	case 1:
		c.opCPBlock(dec, repeat)
	case 2:
		c.opINBlock(dec, repeat)
	case 3:
		c.opOUTBlock(dec, repeat)
	}
}

func step16(v uint16, dec bool) uint16 {
	if dec {
		return v - 1
	}
	return v + 1
}

// repeatBlock rewinds PC onto the ED prefix so the instruction runs again.
func (c *CPU) repeatBlock(addr uint16) {
	c.put(addr, 5)
	c.PC -= 2
	c.WZ = c.PC + 1
}

func (c *CPU) opLDBlock(dec, repeat bool) {
	hl, de := c.HL(), c.DE()
	v := c.read(hl)
	c.write(de, v)
	c.put(de, 2)
	c.SetHL(step16(hl, dec))
	c.SetDE(step16(de, dec))
	bc := c.BC() - 1
	c.SetBC(bc)

	n := v + c.A
	c.F = c.F&(FlagS|FlagZ|FlagC) | n&Flag3 | (n<<4)&Flag5
	if bc != 0 {
		c.F |= FlagPV
		if repeat {
			c.repeatBlock(de)
		}
	}
}

func (c *CPU) opCPBlock(dec, repeat bool) {
	hl := c.HL()
	v := c.read(hl)
	c.put(hl, 5)
	c.SetHL(step16(hl, dec))
	bc := c.BC() - 1
	c.SetBC(bc)

	half := c.A&0x0F - v&0x0F
	r := c.A - v
	f := c.F&FlagC | FlagN | half&FlagH | r&FlagS
	if r == 0 {
		f |= FlagZ
	}
	if bc != 0 {
		f |= FlagPV
	}
	n := r
	if f&FlagH != 0 {
		n--
	}
	c.F = f | n&Flag3 | (n<<4)&Flag5
	c.WZ = step16(c.WZ, dec)

	if repeat && c.F&(FlagZ|FlagPV) == FlagPV {
		c.repeatBlock(hl)
	}
}

// ioBlockFlags is shared by the INI and OUTI families. w is the byte moved
// plus the adjusted C or L register.
func (c *CPU) ioBlockFlags(v byte, w uint16) {
	f := (v>>6)&FlagN | sz53(c.B) | parityTable[byte(w&7)^c.B]
	if w > 0xFF {
		f |= FlagC | FlagH
	}
	c.F = f
}

func (c *CPU) opINBlock(dec, repeat bool) {
	c.put(c.IR(), 1)
	bc := c.BC()
	v := c.in(bc)
	hl := c.HL()
	c.write(hl, v)
	c.WZ = step16(bc, dec)
	c.B--
	c.SetHL(step16(hl, dec))
	c.ioBlockFlags(v, uint16(v)+uint16(byte(step16(uint16(c.C), dec))))

	if repeat && c.B != 0 {
		c.repeatBlock(hl)
	}
}

func (c *CPU) opOUTBlock(dec, repeat bool) {
	c.put(c.IR(), 1)
	hl := c.HL()
	v := c.read(hl)
	c.B--
	bc := c.BC()
	c.WZ = step16(bc, dec)
	c.out(bc, v)
	c.SetHL(step16(hl, dec))
	c.ioBlockFlags(v, uint16(v)+uint16(c.L))

	if repeat && c.B != 0 {
		c.repeatBlock(bc)
	}
}
