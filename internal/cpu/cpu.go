// Package cpu implements the 65C02 instruction engine driving this core's
// bus: a cycle-stepped CPU whose Tick consumes and produces a Pins word,
// with actual memory movement mediated by injected Read/Write functions
// rather than literal address/data round-tripping on every sub-cycle.
// See DESIGN.md for why this simplification was chosen over a fully
// general per-sub-cycle micro-op queue.
package cpu

import "github.com/atari-lynx/lynxgo/internal/trace"

// CPU is a 65C02 core. Read and Write must be wired by the caller before
// the first Tick; they stand in for the bus-arbitrated memory access that
// a literal pins round-trip would otherwise perform every sub-cycle.
type CPU struct {
	A, X, Y, S byte
	P          byte
	PC         uint16

	Read  func(addr uint16) byte
	Write func(addr uint16, v byte)

	cyclesRemaining int
	lastCycles      int
	lastCrossed     bool

	nmiLinePrev bool
	nmiPending  bool
	irqLevel    bool
	resLine     bool

	outPins Pins
}

// New returns a CPU with the reset flag bits set (I=1, X=1) matching
// power-on state; PC is established by the first RES-driven Tick.
func New() *CPU {
	return &CPU{P: FlagI | FlagX, S: 0xFD}
}

// Tick drives the engine by one 62.5ns tick, sampling the incoming control
// lines and returning the CPU's new output state. NMI is edge-triggered and
// latched until serviced; IRQ is level-sensitive and masked by the I flag;
// both are sampled at instruction-fetch (SYNC) boundaries, matching the
// documented "sampled at SYNC time" contract.
func (c *CPU) Tick(pins Pins) Pins {
	if pins.NMI() && !c.nmiLinePrev {
		c.nmiPending = true
	}
	c.nmiLinePrev = pins.NMI()
	c.irqLevel = pins.IRQ()
	c.resLine = pins.RES()

	if !pins.RDY() {
		return c.outPins.WithSync(false)
	}

	if c.cyclesRemaining > 0 {
		c.cyclesRemaining--
		c.outPins = c.outPins.WithSync(false)
		return c.outPins
	}

	c.beginInstruction()
	return c.outPins
}

func (c *CPU) beginInstruction() {
	switch {
	case c.resLine:
		c.serviceReset()
	case c.nmiPending:
		c.nmiPending = false
		c.pushBreak(0xFFFA, false)
		c.cyclesRemaining = 6
		c.lastCycles = 7
	case c.irqLevel && !c.flag(FlagI):
		c.pushBreak(0xFFFE, false)
		c.cyclesRemaining = 6
		c.lastCycles = 7
	default:
		opcode := c.Read(c.PC)
		c.outPins = c.outPins.WithAddr(c.PC).WithData(opcode).WithRW(true).WithSync(true)
		c.PC++
		c.runOpcode(opcode)
		return
	}
	c.outPins = c.outPins.WithAddr(c.PC).WithSync(true)
}

func (c *CPU) serviceReset() {
	c.S -= 3
	c.setFlag(FlagI, true)
	lo := c.Read(0xFFFC)
	hi := c.Read(0xFFFD)
	c.PC = uint16(hi)<<8 | uint16(lo)
	c.cyclesRemaining = 6
	c.lastCycles = 7
	trace.Printf("cpu reset -> PC=%04x", c.PC)
}

func (c *CPU) push(v byte) {
	c.Write(0x0100+uint16(c.S), v)
	c.S--
}

func (c *CPU) pull() byte {
	c.S++
	return c.Read(0x0100 + uint16(c.S))
}

// pushBreak implements the shared BRK/IRQ/NMI entry sequence: push PC high,
// PC low, flags (with B set only for a software BRK), mask interrupts,
// clear decimal mode (the 65C02 fix over NMOS), and vector.
func (c *CPU) pushBreak(vector uint16, isBRK bool) {
	c.push(byte(c.PC >> 8))
	c.push(byte(c.PC))
	flags := c.P | FlagX
	if isBRK {
		flags |= FlagB
	} else {
		flags &^= FlagB
	}
	c.push(flags)
	c.setFlag(FlagI, true)
	c.setFlag(FlagD, false)
	lo := c.Read(vector)
	hi := c.Read(vector + 1)
	c.PC = uint16(hi)<<8 | uint16(lo)
}

// runOpcode executes one instruction's full register effect immediately,
// then arms cyclesRemaining so the next opcode fetch is delayed by the
// instruction's documented cycle count.
func (c *CPU) runOpcode(opcode byte) {
	e := opcodeTable[opcode]
	cycles := e.cycles

	switch e.mnem {
	case mnBRK:
		_ = c.Read(c.PC)
		c.PC++
		c.pushBreak(0xFFFE, true)
	case mnJSR:
		lo := c.Read(c.PC)
		c.PC++
		hi := c.Read(c.PC)
		c.PC++
		target := uint16(hi)<<8 | uint16(lo)
		ret := c.PC - 1
		c.push(byte(ret >> 8))
		c.push(byte(ret))
		c.PC = target
	case mnRTS:
		lo := c.pull()
		hi := c.pull()
		c.PC = (uint16(hi)<<8 | uint16(lo)) + 1
	case mnRTI:
		p := c.pull()
		c.P = (p &^ FlagB) | FlagX
		lo := c.pull()
		hi := c.pull()
		c.PC = uint16(hi)<<8 | uint16(lo)
	case mnPHA:
		c.push(c.A)
	case mnPHP:
		c.push(c.P | FlagB | FlagX)
	case mnPHX:
		c.push(c.X)
	case mnPHY:
		c.push(c.Y)
	case mnPLA:
		c.A = c.pull()
		c.setNZ(c.A)
	case mnPLP:
		c.P = (c.pull() &^ FlagB) | FlagX
	case mnPLX:
		c.X = c.pull()
		c.setNZ(c.X)
	case mnPLY:
		c.Y = c.pull()
		c.setNZ(c.Y)
	case mnJMP:
		addr, _ := c.resolveAddr(e.mode)
		c.PC = addr
	case mnBRA, mnBCC, mnBCS, mnBEQ, mnBNE, mnBMI, mnBPL, mnBVC, mnBVS:
		offset := int8(c.Read(c.PC))
		c.PC++
		cycles = 2
		if c.branchTaken(e.mnem) {
			old := c.PC
			next := uint16(int32(old) + int32(offset))
			cycles = 3
			if old&0xFF00 != next&0xFF00 {
				cycles = 4
			}
			c.PC = next
		}
	case mnRMB, mnSMB:
		addr, _ := c.resolveAddr(e.mode)
		v := c.Read(addr)
		mask := byte(1) << e.bit
		if e.mnem == mnRMB {
			v &^= mask
		} else {
			v |= mask
		}
		c.Write(addr, v)
	default:
		c.execAddrMode(e.mnem, e.mode)
		if c.lastCrossed && crossPenalizes(e.mode) {
			cycles++
		}
		if (e.mnem == mnADC || e.mnem == mnSBC) && c.flag(FlagD) {
			cycles++
		}
	}

	c.lastCycles = cycles
	c.cyclesRemaining = cycles - 1
}

func crossPenalizes(m Mode) bool {
	return m == modeAbsX || m == modeAbsY || m == modeIndY
}

func (c *CPU) branchTaken(mnem Mnem) bool {
	switch mnem {
	case mnBRA:
		return true
	case mnBCC:
		return !c.flag(FlagC)
	case mnBCS:
		return c.flag(FlagC)
	case mnBEQ:
		return c.flag(FlagZ)
	case mnBNE:
		return !c.flag(FlagZ)
	case mnBMI:
		return c.flag(FlagN)
	case mnBPL:
		return !c.flag(FlagN)
	case mnBVC:
		return !c.flag(FlagV)
	case mnBVS:
		return c.flag(FlagV)
	}
	return false
}

// LastCycles reports the cycle count of the most recently completed
// instruction, for fixture-driven cycle-count assertions.
func (c *CPU) LastCycles() int { return c.lastCycles }
