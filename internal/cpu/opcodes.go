package cpu

// Mode is a 65C02 addressing mode.
type Mode int

const (
	modeImplied Mode = iota
	modeAccumulator
	modeImmediate
	modeZP
	modeZPX
	modeZPY
	modeAbs
	modeAbsX
	modeAbsY
	modeIndirect // JMP (abs) -- preserves the documented page-wrap bug
	modeIndX     // (zp,X)
	modeIndY     // (zp),Y
	modeIndZP    // (zp) -- 65C02 addition
	modeRelative
)

// Mnem is an instruction mnemonic. Mnemonics are dispatched generically over
// the resolved operand rather than hand-written per addressing mode.
type Mnem int

const (
	mnNOP Mnem = iota
	mnLDA
	mnLDX
	mnLDY
	mnSTA
	mnSTX
	mnSTY
	mnSTZ
	mnTAX
	mnTAY
	mnTXA
	mnTYA
	mnTSX
	mnTXS
	mnPHA
	mnPLA
	mnPHP
	mnPLP
	mnPHX
	mnPLX
	mnPHY
	mnPLY
	mnADC
	mnSBC
	mnAND
	mnORA
	mnEOR
	mnCMP
	mnCPX
	mnCPY
	mnBIT
	mnTRB
	mnTSB
	mnINC
	mnDEC
	mnINX
	mnINY
	mnDEX
	mnDEY
	mnASL
	mnLSR
	mnROL
	mnROR
	mnJMP
	mnJSR
	mnRTS
	mnRTI
	mnBRK
	mnCLC
	mnSEC
	mnCLI
	mnSEI
	mnCLD
	mnSED
	mnCLV
	mnBRA
	mnBCC
	mnBCS
	mnBEQ
	mnBNE
	mnBMI
	mnBPL
	mnBVC
	mnBVS
	mnRMB
	mnSMB
)

type opEntry struct {
	mnem   Mnem
	mode   Mode
	cycles int
	bit    byte // operand bit index for RMB/SMB
}

// opcodeTable covers the documented 65C02 instruction set used by this
// core's fixture programs: every load/store/transfer/stack/ALU/shift/
// compare/branch/jump/flag opcode, plus STZ/TRB/TSB and RMB/SMB. BBR/BBS
// (branch-on-bit) are intentionally not populated -- see DESIGN.md.
var opcodeTable = buildOpcodeTable()

func buildOpcodeTable() [256]opEntry {
	var t [256]opEntry
	for i := range t {
		t[i] = opEntry{mnem: mnNOP, mode: modeImplied, cycles: 2}
	}

	set := func(op byte, mnem Mnem, mode Mode, cycles int) {
		t[op] = opEntry{mnem: mnem, mode: mode, cycles: cycles}
	}

	// Loads
	set(0xA9, mnLDA, modeImmediate, 2)
	set(0xA5, mnLDA, modeZP, 3)
	set(0xB5, mnLDA, modeZPX, 4)
	set(0xAD, mnLDA, modeAbs, 4)
	set(0xBD, mnLDA, modeAbsX, 4)
	set(0xB9, mnLDA, modeAbsY, 4)
	set(0xA1, mnLDA, modeIndX, 6)
	set(0xB1, mnLDA, modeIndY, 5)
	set(0xB2, mnLDA, modeIndZP, 5)

	set(0xA2, mnLDX, modeImmediate, 2)
	set(0xA6, mnLDX, modeZP, 3)
	set(0xB6, mnLDX, modeZPY, 4)
	set(0xAE, mnLDX, modeAbs, 4)
	set(0xBE, mnLDX, modeAbsY, 4)

	set(0xA0, mnLDY, modeImmediate, 2)
	set(0xA4, mnLDY, modeZP, 3)
	set(0xB4, mnLDY, modeZPX, 4)
	set(0xAC, mnLDY, modeAbs, 4)
	set(0xBC, mnLDY, modeAbsX, 4)

	// Stores
	set(0x85, mnSTA, modeZP, 3)
	set(0x95, mnSTA, modeZPX, 4)
	set(0x8D, mnSTA, modeAbs, 4)
	set(0x9D, mnSTA, modeAbsX, 5)
	set(0x99, mnSTA, modeAbsY, 5)
	set(0x81, mnSTA, modeIndX, 6)
	set(0x91, mnSTA, modeIndY, 6)
	set(0x92, mnSTA, modeIndZP, 5)

	set(0x86, mnSTX, modeZP, 3)
	set(0x96, mnSTX, modeZPY, 4)
	set(0x8E, mnSTX, modeAbs, 4)

	set(0x84, mnSTY, modeZP, 3)
	set(0x94, mnSTY, modeZPX, 4)
	set(0x8C, mnSTY, modeAbs, 4)

	set(0x64, mnSTZ, modeZP, 3)
	set(0x74, mnSTZ, modeZPX, 4)
	set(0x9C, mnSTZ, modeAbs, 4)
	set(0x9E, mnSTZ, modeAbsX, 5)

	// Transfers
	set(0xAA, mnTAX, modeImplied, 2)
	set(0xA8, mnTAY, modeImplied, 2)
	set(0x8A, mnTXA, modeImplied, 2)
	set(0x98, mnTYA, modeImplied, 2)
	set(0xBA, mnTSX, modeImplied, 2)
	set(0x9A, mnTXS, modeImplied, 2)

	// Stack
	set(0x48, mnPHA, modeImplied, 3)
	set(0x68, mnPLA, modeImplied, 4)
	set(0x08, mnPHP, modeImplied, 3)
	set(0x28, mnPLP, modeImplied, 4)
	set(0xDA, mnPHX, modeImplied, 3)
	set(0xFA, mnPLX, modeImplied, 4)
	set(0x5A, mnPHY, modeImplied, 3)
	set(0x7A, mnPLY, modeImplied, 4)

	// ALU: ADC
	set(0x69, mnADC, modeImmediate, 2)
	set(0x65, mnADC, modeZP, 3)
	set(0x75, mnADC, modeZPX, 4)
	set(0x6D, mnADC, modeAbs, 4)
	set(0x7D, mnADC, modeAbsX, 4)
	set(0x79, mnADC, modeAbsY, 4)
	set(0x61, mnADC, modeIndX, 6)
	set(0x71, mnADC, modeIndY, 5)
	set(0x72, mnADC, modeIndZP, 5)

	// ALU: SBC
	set(0xE9, mnSBC, modeImmediate, 2)
	set(0xE5, mnSBC, modeZP, 3)
	set(0xF5, mnSBC, modeZPX, 4)
	set(0xED, mnSBC, modeAbs, 4)
	set(0xFD, mnSBC, modeAbsX, 4)
	set(0xF9, mnSBC, modeAbsY, 4)
	set(0xE1, mnSBC, modeIndX, 6)
	set(0xF1, mnSBC, modeIndY, 5)
	set(0xF2, mnSBC, modeIndZP, 5)

	// ALU: AND / ORA / EOR
	for _, g := range []struct {
		mnem                                     Mnem
		imm, zp, zpx, abs, absx, absy, indx, indy, indzp byte
	}{
		{mnAND, 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31, 0x32},
		{mnORA, 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11, 0x12},
		{mnEOR, 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51, 0x52},
	} {
		set(g.imm, g.mnem, modeImmediate, 2)
		set(g.zp, g.mnem, modeZP, 3)
		set(g.zpx, g.mnem, modeZPX, 4)
		set(g.abs, g.mnem, modeAbs, 4)
		set(g.absx, g.mnem, modeAbsX, 4)
		set(g.absy, g.mnem, modeAbsY, 4)
		set(g.indx, g.mnem, modeIndX, 6)
		set(g.indy, g.mnem, modeIndY, 5)
		set(g.indzp, g.mnem, modeIndZP, 5)
	}

	// Compares
	set(0xC9, mnCMP, modeImmediate, 2)
	set(0xC5, mnCMP, modeZP, 3)
	set(0xD5, mnCMP, modeZPX, 4)
	set(0xCD, mnCMP, modeAbs, 4)
	set(0xDD, mnCMP, modeAbsX, 4)
	set(0xD9, mnCMP, modeAbsY, 4)
	set(0xC1, mnCMP, modeIndX, 6)
	set(0xD1, mnCMP, modeIndY, 5)
	set(0xD2, mnCMP, modeIndZP, 5)

	set(0xE0, mnCPX, modeImmediate, 2)
	set(0xE4, mnCPX, modeZP, 3)
	set(0xEC, mnCPX, modeAbs, 4)

	set(0xC0, mnCPY, modeImmediate, 2)
	set(0xC4, mnCPY, modeZP, 3)
	set(0xCC, mnCPY, modeAbs, 4)

	// BIT / TRB / TSB
	set(0x89, mnBIT, modeImmediate, 2)
	set(0x24, mnBIT, modeZP, 3)
	set(0x34, mnBIT, modeZPX, 4)
	set(0x2C, mnBIT, modeAbs, 4)
	set(0x3C, mnBIT, modeAbsX, 4)
	set(0x14, mnTRB, modeZP, 5)
	set(0x1C, mnTRB, modeAbs, 6)
	set(0x04, mnTSB, modeZP, 5)
	set(0x0C, mnTSB, modeAbs, 6)

	// INC / DEC
	set(0x1A, mnINC, modeAccumulator, 2)
	set(0xE6, mnINC, modeZP, 5)
	set(0xF6, mnINC, modeZPX, 6)
	set(0xEE, mnINC, modeAbs, 6)
	set(0xFE, mnINC, modeAbsX, 7)
	set(0x3A, mnDEC, modeAccumulator, 2)
	set(0xC6, mnDEC, modeZP, 5)
	set(0xD6, mnDEC, modeZPX, 6)
	set(0xCE, mnDEC, modeAbs, 6)
	set(0xDE, mnDEC, modeAbsX, 7)
	set(0xE8, mnINX, modeImplied, 2)
	set(0xC8, mnINY, modeImplied, 2)
	set(0xCA, mnDEX, modeImplied, 2)
	set(0x88, mnDEY, modeImplied, 2)

	// Shifts/rotates
	set(0x0A, mnASL, modeAccumulator, 2)
	set(0x06, mnASL, modeZP, 5)
	set(0x16, mnASL, modeZPX, 6)
	set(0x0E, mnASL, modeAbs, 6)
	set(0x1E, mnASL, modeAbsX, 7)
	set(0x4A, mnLSR, modeAccumulator, 2)
	set(0x46, mnLSR, modeZP, 5)
	set(0x56, mnLSR, modeZPX, 6)
	set(0x4E, mnLSR, modeAbs, 6)
	set(0x5E, mnLSR, modeAbsX, 7)
	set(0x2A, mnROL, modeAccumulator, 2)
	set(0x26, mnROL, modeZP, 5)
	set(0x36, mnROL, modeZPX, 6)
	set(0x2E, mnROL, modeAbs, 6)
	set(0x3E, mnROL, modeAbsX, 7)
	set(0x6A, mnROR, modeAccumulator, 2)
	set(0x66, mnROR, modeZP, 5)
	set(0x76, mnROR, modeZPX, 6)
	set(0x6E, mnROR, modeAbs, 6)
	set(0x7E, mnROR, modeAbsX, 7)

	// Jumps / calls
	set(0x4C, mnJMP, modeAbs, 3)
	set(0x6C, mnJMP, modeIndirect, 6)
	set(0x20, mnJSR, modeAbs, 6)
	set(0x60, mnRTS, modeImplied, 6)
	set(0x40, mnRTI, modeImplied, 6)
	set(0x00, mnBRK, modeImplied, 7)

	// Flags
	set(0x18, mnCLC, modeImplied, 2)
	set(0x38, mnSEC, modeImplied, 2)
	set(0x58, mnCLI, modeImplied, 2)
	set(0x78, mnSEI, modeImplied, 2)
	set(0xD8, mnCLD, modeImplied, 2)
	set(0xF8, mnSED, modeImplied, 2)
	set(0xB8, mnCLV, modeImplied, 2)

	// Branches
	set(0x80, mnBRA, modeRelative, 2)
	set(0x90, mnBCC, modeRelative, 2)
	set(0xB0, mnBCS, modeRelative, 2)
	set(0xF0, mnBEQ, modeRelative, 2)
	set(0xD0, mnBNE, modeRelative, 2)
	set(0x30, mnBMI, modeRelative, 2)
	set(0x10, mnBPL, modeRelative, 2)
	set(0x50, mnBVC, modeRelative, 2)
	set(0x70, mnBVS, modeRelative, 2)

	// RMB/SMB (zero page bit clear/set): 0x07,0x17,... step 0x10, bit = n
	for n := byte(0); n < 8; n++ {
		op := 0x07 + n<<4
		t[op] = opEntry{mnem: mnRMB, mode: modeZP, cycles: 5, bit: n}
		op = 0x87 + n<<4
		t[op] = opEntry{mnem: mnSMB, mode: modeZP, cycles: 5, bit: n}
	}

	return t
}
