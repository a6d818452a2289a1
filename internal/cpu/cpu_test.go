package cpu

import "testing"

// newTestCPU wires a flat 64KiB backing array so instructions can be laid
// out directly in memory without a bus/RAM package dependency.
func newTestCPU() (*CPU, *[65536]byte) {
	var mem [65536]byte
	c := New()
	c.Read = func(addr uint16) byte { return mem[addr] }
	c.Write = func(addr uint16, v byte) { mem[addr] = v }
	return c, &mem
}

// step drains any sub-cycles left over from the previous instruction, then
// fetches and fully executes exactly one new instruction.
func step(c *CPU, pins Pins) {
	for c.cyclesRemaining > 0 {
		c.Tick(pins)
	}
	c.Tick(pins)
}

// runUntilFetch behaves like step but returns the cycle count of the
// instruction it just fetched, for cycle-count assertions.
func runUntilFetch(c *CPU, pins Pins) int {
	for c.cyclesRemaining > 0 {
		c.Tick(pins)
	}
	c.Tick(pins)
	return c.LastCycles()
}

func TestResetVector(t *testing.T) {
	c, mem := newTestCPU()
	mem[0xFFFC] = 0x00
	mem[0xFFFD] = 0x80
	step(c, Pins(0).WithRES(true).WithRDY(true))
	if c.PC != 0x8000 {
		t.Fatalf("PC after reset = %04x, want 8000", c.PC)
	}
}

func TestADCDecimalMode(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x8000
	c.A = 0x99
	c.P |= FlagD
	c.P &^= FlagC
	mem[0x8000] = 0x69 // ADC #imm
	mem[0x8001] = 0x01
	step(c, Pins(0).WithRDY(true))
	if c.A != 0x00 {
		t.Fatalf("A = %02x, want 00", c.A)
	}
	if !c.flag(FlagC) {
		t.Fatalf("C flag not set after decimal carry-out")
	}
	if !c.flag(FlagZ) {
		t.Fatalf("Z flag not set for zero result")
	}
}

func TestBranchCycleCounts(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x8000
	c.P |= FlagZ
	mem[0x8000] = 0xF0 // BEQ
	mem[0x8001] = 0x02 // +2, same page
	cycles := runUntilFetch(c, Pins(0).WithRDY(true))
	if cycles != 3 {
		t.Fatalf("same-page taken branch = %d cycles, want 3", cycles)
	}

	c2, mem2 := newTestCPU()
	c2.PC = 0x80FD
	c2.P |= FlagZ
	mem2[0x80FD] = 0xF0
	mem2[0x80FE] = 0x10 // from 0x80FF to 0x810F: crosses into next page
	cycles2 := runUntilFetch(c2, Pins(0).WithRDY(true))
	if cycles2 != 4 {
		t.Fatalf("page-crossing taken branch = %d cycles, want 4", cycles2)
	}

	c3, mem3 := newTestCPU()
	c3.PC = 0x8000
	c3.P &^= FlagZ
	mem3[0x8000] = 0xF0
	mem3[0x8001] = 0x02
	cycles3 := runUntilFetch(c3, Pins(0).WithRDY(true))
	if cycles3 != 2 {
		t.Fatalf("not-taken branch = %d cycles, want 2", cycles3)
	}
}

func TestBRKPushesPCPlus2AndVectorsViaFFFE(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x1234
	c.S = 0xFF
	mem[0x1234] = 0x00 // BRK
	mem[0xFFFE] = 0x00
	mem[0xFFFF] = 0x90
	step(c, Pins(0).WithRDY(true))

	if c.PC != 0x9000 {
		t.Fatalf("PC after BRK = %04x, want 9000", c.PC)
	}
	if !c.flag(FlagI) {
		t.Fatalf("I flag not set after BRK")
	}
	pushedFlags := mem[0x0100+uint16(c.S)+1]
	pushedPCLo := mem[0x0100+uint16(c.S)+2]
	pushedPCHi := mem[0x0100+uint16(c.S)+3]
	gotPC := uint16(pushedPCHi)<<8 | uint16(pushedPCLo)
	if gotPC != 0x1236 {
		t.Fatalf("pushed PC = %04x, want 1236 (PC+2)", gotPC)
	}
	if pushedFlags&FlagB == 0 {
		t.Fatalf("pushed flags missing B bit for software BRK")
	}
}

func TestIndirectJMPPageWrapBug(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x8000
	mem[0x8000] = 0x6C // JMP (abs)
	mem[0x8001] = 0xFF
	mem[0x8002] = 0x30 // pointer = $30FF
	mem[0x30FF] = 0x34
	mem[0x3000] = 0x12 // buggy high byte read wraps to $3000, not $3100
	mem[0x3100] = 0xFF // if this were used instead, target would be FF34
	step(c, Pins(0).WithRDY(true))
	if c.PC != 0x1234 {
		t.Fatalf("PC after indirect JMP = %04x, want 1234 (page-wrap bug)", c.PC)
	}
}

func TestIRQMaskedByIFlag(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x8000
	c.P |= FlagI
	mem[0x8000] = 0xEA // NOP
	step(c, Pins(0).WithRDY(true).WithIRQ(true))
	if c.PC != 0x8001 {
		t.Fatalf("PC = %04x, want 8001 (IRQ must stay masked while I is set)", c.PC)
	}
}

func TestIRQServicedWhenUnmasked(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x8000
	c.P &^= FlagI
	mem[0xFFFE] = 0x00
	mem[0xFFFF] = 0xA0
	step(c, Pins(0).WithRDY(true).WithIRQ(true))
	if c.PC != 0xA000 {
		t.Fatalf("PC after IRQ service = %04x, want a000", c.PC)
	}
	if !c.flag(FlagI) {
		t.Fatalf("I flag not set after IRQ entry")
	}
}

func TestStackOpsRoundTrip(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x8000
	c.A = 0x42
	c.S = 0xFF
	mem[0x8000] = 0x48 // PHA
	mem[0x8001] = 0x69 // ADC #imm, to clobber A
	mem[0x8002] = 0x01
	mem[0x8003] = 0x68 // PLA
	step(c, Pins(0).WithRDY(true))
	step(c, Pins(0).WithRDY(true))
	if c.A != 0x43 {
		t.Fatalf("A after ADC = %02x, want 43", c.A)
	}
	step(c, Pins(0).WithRDY(true))
	if c.A != 0x42 {
		t.Fatalf("A after PLA = %02x, want 42 (restored)", c.A)
	}
}

func TestRDYHoldsCPU(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x8000
	mem[0x8000] = 0xEA
	out := c.Tick(Pins(0)) // RDY low: CPU must not advance
	if out.Sync() {
		t.Fatalf("CPU fetched while RDY held low")
	}
	if c.PC != 0x8000 {
		t.Fatalf("PC advanced while RDY held low")
	}
}
