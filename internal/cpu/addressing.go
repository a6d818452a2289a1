package cpu

// resolveAddr reads any operand bytes the mode needs (advancing PC) and
// returns the effective address plus whether an indexed access crossed a
// page boundary. The indirect-JMP case intentionally reproduces the classic
// page-wraparound bug rather than fixing it -- see DESIGN.md.
func (c *CPU) resolveAddr(mode Mode) (addr uint16, crossed bool) {
	switch mode {
	case modeZP:
		addr = uint16(c.Read(c.PC))
		c.PC++
	case modeZPX:
		addr = uint16(c.Read(c.PC) + c.X)
		c.PC++
	case modeZPY:
		addr = uint16(c.Read(c.PC) + c.Y)
		c.PC++
	case modeAbs:
		addr = c.readWord()
	case modeAbsX:
		base := c.readWord()
		addr = base + uint16(c.X)
		crossed = base&0xFF00 != addr&0xFF00
	case modeAbsY:
		base := c.readWord()
		addr = base + uint16(c.Y)
		crossed = base&0xFF00 != addr&0xFF00
	case modeIndirect:
		ptr := c.readWord()
		loPtr := ptr
		hiPtr := (ptr & 0xFF00) | uint16(byte(ptr)+1)
		addr = uint16(c.Read(loPtr)) | uint16(c.Read(hiPtr))<<8
	case modeIndX:
		zp := c.Read(c.PC) + c.X
		c.PC++
		lo := c.Read(uint16(zp))
		hi := c.Read(uint16(zp + 1))
		addr = uint16(hi)<<8 | uint16(lo)
	case modeIndY:
		zp := c.Read(c.PC)
		c.PC++
		lo := c.Read(uint16(zp))
		hi := c.Read(uint16(zp + 1))
		base := uint16(hi)<<8 | uint16(lo)
		addr = base + uint16(c.Y)
		crossed = base&0xFF00 != addr&0xFF00
	case modeIndZP:
		zp := c.Read(c.PC)
		c.PC++
		lo := c.Read(uint16(zp))
		hi := c.Read(uint16(zp + 1))
		addr = uint16(hi)<<8 | uint16(lo)
	case modeImmediate:
		addr = c.PC
		c.PC++
	}
	return
}

func (c *CPU) readWord() uint16 {
	lo := c.Read(c.PC)
	c.PC++
	hi := c.Read(c.PC)
	c.PC++
	return uint16(hi)<<8 | uint16(lo)
}

// execAddrMode resolves the operand for mode (if any) and dispatches mnem
// against it, covering every mnemonic not already special-cased in
// runOpcode (loads, stores, ALU ops, compares, shifts, BIT/TRB/TSB,
// INC/DEC, transfers, flag ops).
func (c *CPU) execAddrMode(mnem Mnem, mode Mode) {
	c.lastCrossed = false

	switch mode {
	case modeImplied:
		c.execImplied(mnem)
		return
	case modeAccumulator:
		c.A = c.rmw(mnem, c.A)
		c.setNZ(c.A)
		return
	}

	switch mnem {
	case mnSTA, mnSTX, mnSTY, mnSTZ:
		addr, _ := c.resolveAddr(mode)
		c.execStore(mnem, addr)
		return
	case mnASL, mnLSR, mnROL, mnROR, mnINC, mnDEC, mnTRB, mnTSB:
		addr, crossed := c.resolveAddr(mode)
		c.lastCrossed = crossed
		old := c.Read(addr)
		v := c.rmw(mnem, old)
		c.Write(addr, v)
		if mnem != mnTRB && mnem != mnTSB {
			c.setNZ(v)
		}
		return
	}

	addr, crossed := c.resolveAddr(mode)
	c.lastCrossed = crossed
	c.execValue(mnem, c.Read(addr))
}

func (c *CPU) execImplied(mnem Mnem) {
	switch mnem {
	case mnTAX:
		c.X = c.A
		c.setNZ(c.X)
	case mnTAY:
		c.Y = c.A
		c.setNZ(c.Y)
	case mnTXA:
		c.A = c.X
		c.setNZ(c.A)
	case mnTYA:
		c.A = c.Y
		c.setNZ(c.A)
	case mnTSX:
		c.X = c.S
		c.setNZ(c.X)
	case mnTXS:
		c.S = c.X
	case mnINX:
		c.X++
		c.setNZ(c.X)
	case mnINY:
		c.Y++
		c.setNZ(c.Y)
	case mnDEX:
		c.X--
		c.setNZ(c.X)
	case mnDEY:
		c.Y--
		c.setNZ(c.Y)
	case mnCLC:
		c.setFlag(FlagC, false)
	case mnSEC:
		c.setFlag(FlagC, true)
	case mnCLI:
		c.setFlag(FlagI, false)
	case mnSEI:
		c.setFlag(FlagI, true)
	case mnCLD:
		c.setFlag(FlagD, false)
	case mnSED:
		c.setFlag(FlagD, true)
	case mnCLV:
		c.setFlag(FlagV, false)
	case mnNOP:
		// no effect
	}
}

func (c *CPU) execStore(mnem Mnem, addr uint16) {
	switch mnem {
	case mnSTA:
		c.Write(addr, c.A)
	case mnSTX:
		c.Write(addr, c.X)
	case mnSTY:
		c.Write(addr, c.Y)
	case mnSTZ:
		c.Write(addr, 0)
	}
}

// execValue dispatches read-only operand mnemonics (loads, ALU, compares,
// BIT) against an already-fetched operand byte.
func (c *CPU) execValue(mnem Mnem, val byte) {
	switch mnem {
	case mnLDA:
		c.A = val
		c.setNZ(c.A)
	case mnLDX:
		c.X = val
		c.setNZ(c.X)
	case mnLDY:
		c.Y = val
		c.setNZ(c.Y)
	case mnADC:
		c.adc(val)
	case mnSBC:
		c.sbc(val)
	case mnAND:
		c.A &= val
		c.setNZ(c.A)
	case mnORA:
		c.A |= val
		c.setNZ(c.A)
	case mnEOR:
		c.A ^= val
		c.setNZ(c.A)
	case mnCMP:
		c.compare(c.A, val)
	case mnCPX:
		c.compare(c.X, val)
	case mnCPY:
		c.compare(c.Y, val)
	case mnBIT:
		c.setFlag(FlagZ, c.A&val == 0)
		c.setFlag(FlagN, val&0x80 != 0)
		c.setFlag(FlagV, val&0x40 != 0)
	}
}

func (c *CPU) compare(reg, val byte) {
	diff := int(reg) - int(val)
	c.setFlag(FlagC, reg >= val)
	c.setNZ(byte(diff))
}

// rmw applies a shift/rotate/inc/dec to v, using and updating the carry
// flag for ASL/LSR/ROL/ROR. TRB/TSB set Z here from the AND test and
// leave N alone; the caller skips its usual N/Z update for them.
func (c *CPU) rmw(mnem Mnem, v byte) byte {
	switch mnem {
	case mnASL:
		c.setFlag(FlagC, v&0x80 != 0)
		return v << 1
	case mnLSR:
		c.setFlag(FlagC, v&0x01 != 0)
		return v >> 1
	case mnROL:
		carryIn := byte(0)
		if c.flag(FlagC) {
			carryIn = 1
		}
		c.setFlag(FlagC, v&0x80 != 0)
		return v<<1 | carryIn
	case mnROR:
		carryIn := byte(0)
		if c.flag(FlagC) {
			carryIn = 0x80
		}
		c.setFlag(FlagC, v&0x01 != 0)
		return v>>1 | carryIn
	case mnINC:
		return v + 1
	case mnDEC:
		return v - 1
	case mnTRB:
		c.setFlag(FlagZ, v&c.A == 0)
		return v &^ c.A
	case mnTSB:
		c.setFlag(FlagZ, v&c.A == 0)
		return v | c.A
	}
	return v
}

// adc implements ADC including the 65C02's decimal mode, where N/Z/V are
// derived from the final BCD-adjusted result and the operation costs one
// extra cycle (added by runOpcode when D is set).
func (c *CPU) adc(val byte) {
	carry := 0
	if c.flag(FlagC) {
		carry = 1
	}
	if c.flag(FlagD) {
		lo := int(c.A&0x0F) + int(val&0x0F) + carry
		hi := int(c.A&0xF0) + int(val&0xF0)
		if lo > 9 {
			hi += 0x10
			lo += 6
		}
		if hi > 0x90 {
			hi += 0x60
		}
		result := byte((hi & 0xF0) | (lo & 0x0F))
		v := (int(c.A)^int(val))&0x80 == 0 && (int(c.A)^int(result))&0x80 != 0
		c.setFlag(FlagC, hi > 0xFF)
		c.setFlag(FlagV, v)
		c.A = result
		c.setNZ(result)
		return
	}
	sum := int(c.A) + int(val) + carry
	result := byte(sum)
	v := (int(c.A)^int(val))&0x80 == 0 && (int(c.A)^int(result))&0x80 != 0
	c.setFlag(FlagV, v)
	c.setFlag(FlagC, sum > 0xFF)
	c.A = result
	c.setNZ(result)
}

// sbc mirrors adc's decimal handling for subtraction.
func (c *CPU) sbc(val byte) {
	carry := 0
	if c.flag(FlagC) {
		carry = 1
	}
	borrow := 1 - carry
	binResult := int(c.A) - int(val) - borrow

	if c.flag(FlagD) {
		lo := int(c.A&0x0F) - int(val&0x0F) - borrow
		hi := int(c.A&0xF0) - int(val&0xF0)
		if lo < 0 {
			lo -= 6
			hi -= 0x10
		}
		if hi < 0 {
			hi -= 0x60
		}
		result := byte((hi & 0xF0) | (lo & 0x0F))
		v := (int(c.A)^int(val))&0x80 != 0 && (int(c.A)^binResult)&0x80 != 0
		c.setFlag(FlagC, binResult >= 0)
		c.setFlag(FlagV, v)
		c.A = result
		c.setNZ(result)
		return
	}
	result := byte(binResult)
	v := (int(c.A)^int(val))&0x80 != 0 && (int(c.A)^binResult)&0x80 != 0
	c.setFlag(FlagV, v)
	c.setFlag(FlagC, binResult >= 0)
	c.A = result
	c.setNZ(result)
}
