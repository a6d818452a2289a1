// Package ram implements the Lynx's flat 64 KiB RAM store and its page-mode
// access timing, plus the NMI/RESET/IRQ vector store that MAPCTL can shadow
// over the top of it.
package ram

import (
	"github.com/atari-lynx/lynxgo/internal/bus"
)

const Size = 1 << 16

const (
	writeTicks     = 5
	pageReadTicks  = 4
	normalReadTicks = 5
)

// PageReadTicks is the latency of a same-page read once a page is already
// open, exported for callers that need to reason about RAM access cost
// without reaching into the package's internal timing constants.
const PageReadTicks = pageReadTicks

// pendingAccess is RAM's one-at-a-time in-flight transaction record.
type pendingAccess struct {
	addr          uint16
	data          byte
	ticksRemaining int
	isWrite       bool
	active        bool
}

// RAM is the 64 KiB linear byte store shared by CPU, Suzy and Mikey DMA.
type RAM struct {
	bytes       [Size]byte
	pending     pendingAccess
	lastHigh    byte
	lastHighSet bool
}

func New() *RAM {
	return &RAM{}
}

// Bytes exposes the raw byte span directly so Suzy's renderer and Mikey's
// video DMA can read/write without going through Peek/Poke — justified
// because those components hold bus grant while the CPU is stalled, so
// there is no concurrent access to interleave with.
func (r *RAM) Bytes() *[Size]byte { return &r.bytes }

func (r *RAM) ReadDirect(addr uint16) byte     { return r.bytes[addr] }
func (r *RAM) WriteDirect(addr uint16, v byte) { r.bytes[addr] = v }

// Peek latches a read request against the given address; Poke latches a
// write. Both complete asynchronously via Tick, which writes PeekDone /
// PokeDone back onto the bus.
func (r *RAM) Peek(b *bus.Bus) {
	addr := b.Addr()
	ticks := normalReadTicks
	if r.lastHighSet && byte(addr>>8) == r.lastHigh {
		ticks = pageReadTicks
	}
	r.pending = pendingAccess{addr: addr, ticksRemaining: ticks, isWrite: false, active: true}
}

func (r *RAM) Poke(b *bus.Bus) {
	addr := b.Addr()
	r.pending = pendingAccess{addr: addr, data: b.Data(), ticksRemaining: writeTicks, isWrite: true, active: true}
}

// Tick advances the in-flight access, if any, by one crystal tick.
func (r *RAM) Tick(b *bus.Bus) {
	if !r.pending.active {
		return
	}
	r.pending.ticksRemaining--
	if r.pending.ticksRemaining > 0 {
		return
	}
	addr := r.pending.addr
	r.lastHigh = byte(addr >> 8)
	r.lastHighSet = true
	if r.pending.isWrite {
		r.bytes[addr] = r.pending.data
		b.SetStatus(bus.PokeDone)
	} else {
		b.SetData(r.bytes[addr])
		b.SetStatus(bus.PeekDone)
	}
	r.pending.active = false
}

// Vectors holds the 6 bytes at 0xFFFA-0xFFFF (NMI, RESET, IRQ), addressable
// separately from RAM when MAPCTL's VEC bit selects them.
type Vectors struct {
	bytes [6]byte
}

// NewVectors returns vectors defaulting to the documented power-on value:
// RESET = 0xFF80.
func NewVectors() *Vectors {
	return &Vectors{bytes: [6]byte{0, 0, 0x80, 0xff, 0, 0}}
}

// addrToIndex maps 0xFFFA..0xFFFF to 0..5.
func addrToIndex(addr uint16) int { return int(addr - 0xFFFA) }

func (v *Vectors) Peek(b *bus.Bus) {
	b.SetData(v.bytes[addrToIndex(b.Addr())])
	b.SetStatus(bus.PeekDone)
}

func (v *Vectors) Poke(b *bus.Bus) {
	v.bytes[addrToIndex(b.Addr())] = b.Data()
	b.SetStatus(bus.PokeDone)
}

// Tick is a no-op: vector access is modeled as instantaneous in this core
// (the original firmware latches RESET/NMI/IRQ once at boot and the bus
// timing for the shadow region is dominated by RAM's own access cost when
// MAPCTL routes it there instead).
func (v *Vectors) Tick(*bus.Bus) {}

func (v *Vectors) NMI() uint16   { return uint16(v.bytes[0]) | uint16(v.bytes[1])<<8 }
func (v *Vectors) Reset() uint16 { return uint16(v.bytes[2]) | uint16(v.bytes[3])<<8 }
func (v *Vectors) IRQ() uint16   { return uint16(v.bytes[4]) | uint16(v.bytes[5])<<8 }

func (v *Vectors) SetNMI(addr uint16) {
	v.bytes[0] = byte(addr)
	v.bytes[1] = byte(addr >> 8)
}

func (v *Vectors) SetReset(addr uint16) {
	v.bytes[2] = byte(addr)
	v.bytes[3] = byte(addr >> 8)
}

func (v *Vectors) SetIRQ(addr uint16) {
	v.bytes[4] = byte(addr)
	v.bytes[5] = byte(addr >> 8)
}

// Raw exposes the 6 vector bytes for boot ROM loading (last 6 bytes of the
// 512-byte boot image) and save-state serialization.
func (v *Vectors) Raw() [6]byte       { return v.bytes }
func (v *Vectors) SetRaw(raw [6]byte) { v.bytes = raw }

// ReadByte/WriteByte give direct (non-bus) access to one of the 6 vector
// bytes, for callers that already know they're addressing this region and
// don't need the pending-access protocol (the chassis's injected CPU
// Read/Write closures).
func (v *Vectors) ReadByte(addr uint16) byte        { return v.bytes[addrToIndex(addr)] }
func (v *Vectors) WriteByte(addr uint16, val byte)  { v.bytes[addrToIndex(addr)] = val }
