package z80

// IsIntPossible reports whether DoInt would accept a maskable interrupt
// now. It is meant for debuggers: emulation loops should call DoInt
// unconditionally so the NMOS side effects happen.
func (c *CPU) IsIntPossible() bool {
	return c.IFF1 && c.IsNmiPossible()
}

// IsNmiPossible reports whether DoNmi would be accepted now.
func (c *CPU) IsNmiPossible() bool {
	return !c.processing && c.prefix == 0 && !c.skipInterrupt
}

// DoInt samples the /INT line. It returns the T-states spent servicing
// the interrupt, or 0 when it was not accepted.
func (c *CPU) DoInt() uint32 {
	c.tstate = 0
	if !c.IFF1 || c.skipInterrupt {
		return 0
	}
	if c.processing || c.prefix != 0 {
		return 0
	}

	c.wake()
	c.IFF1 = false
	c.IFF2 = false
	if c.resetPV {
		c.F &^= FlagPV
		c.resetPV = false
	}

	c.processing = true
	vec := c.fetchIntVec()
	switch c.IM {
	case 0:
		// the acknowledged byte is executed in place; operand fetches do
		// not advance PC
		c.pcIncrement = 0
		c.execBase(vec)
		c.pcIncrement = 1
	case 1:
		c.opRST(0x0038)
	default:
		addr := uint16(c.I)<<8 | uint16(vec)
		c.push(c.PC)
		c.PC = c.readWord(addr)
		c.WZ = c.PC
		c.tstate++
	}
	c.processing = false
	return c.tstate
}

// DoNmi raises a non-maskable interrupt. IFF2 keeps the pre-NMI state of
// IFF1 so RETN can restore it.
func (c *CPU) DoNmi() uint32 {
	if c.processing || c.prefix != 0 || c.skipInterrupt {
		return 0
	}
	c.tstate = 0
	c.wake()

	c.processing = true
	c.tstate++
	c.bus.MreqRead(c.PC, true)
	c.incR()
	c.tstate += 4

	c.IFF1 = false
	c.push(c.PC)
	c.PC = 0x0066
	c.WZ = 0x0066
	c.processing = false
	return c.tstate
}

// wake leaves the HALT loop by stepping PC past the HALT opcode.
func (c *CPU) wake() {
	if c.halted {
		c.PC++
		c.halted = false
	}
}
