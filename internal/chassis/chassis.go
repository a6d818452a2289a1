// Package chassis assembles the CPU, RAM, Suzy, Mikey and cartridge into
// a runnable Lynx: the MAPCTL-driven address decode, the per-tick drive
// order, joystick/switch input, save state and the top-level Config.
package chassis

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/atari-lynx/lynxgo/internal/cart"
	"github.com/atari-lynx/lynxgo/internal/cpu"
	"github.com/atari-lynx/lynxgo/internal/mikey"
	"github.com/atari-lynx/lynxgo/internal/ram"
	"github.com/atari-lynx/lynxgo/internal/suzy"
	"github.com/atari-lynx/lynxgo/internal/trace"
)

// Config carries settings that affect emulation behavior but not its
// correctness, matching the flat-struct ambient-config shape used
// throughout this core.
type Config struct {
	Trace    bool // stored only; internal/trace output is gated by LYNXGO_TRACE alone
	LimitFPS bool // stored only; Lynx has no run loop and never reads it
}

// MAPCTL bits (register at 0xFFF9): a 1 bit disables the coprocessor's
// register window and ROM/vector shadow, routing those addresses to RAM
// instead -- the documented boot sequence for relocating the kernel.
const (
	mapSuzyDis  = 1 << 0
	mapMikeyDis = 1 << 1
	mapRomDis   = 1 << 2
	mapVecDis   = 1 << 3
)

const (
	addrSuzyBase  = 0xFC00
	addrMikeyBase = 0xFD00
	addrBootBase  = 0xFE00
	addrMapCtl    = 0xFFF9
	addrVecBase   = 0xFFFA

	// RCART0/RCART1 live inside the Suzy window (offsets 0xB2/0xB3) but are
	// really the cartridge edge connector's data latch, not a Suzy
	// register -- every access pulses CE (and WE on write) on the
	// cartridge and then auto-advances Mikey's ripple counter. RCART1 has
	// no second cart slot on real hardware and always reads 0xFF.
	addrRCart0 = addrSuzyBase + 0xB2
	addrRCart1 = addrSuzyBase + 0xB3
)

// Lynx is a complete, tickable Atari Lynx core.
type Lynx struct {
	CPU   *cpu.CPU
	Suzy  *suzy.Suzy
	Mikey *mikey.Mikey
	RAM   *ram.RAM
	Vec   *ram.Vectors
	Cart  cartridge

	cfg Config

	bootROM [512]byte
	mapCtl  byte

	joystick byte // button bits, active-low on real hardware; stored active-high here
	switches byte

	screen   *suzy.Screen
	lastPins cpu.Pins // CPU's pin output from the most recent Tick, for StepInstruction
}

// cartridge is satisfied by both cart.Cartridge and cart.None.
type cartridge interface {
	SetPins(uint32)
	Pins() uint32
	Data() byte
}

// New returns a Lynx with no cartridge inserted. Lynx.Tick never asserts
// the CPU's RES line, so the CPU does not load the reset vector: it starts
// at PC 0x0000 unless l.CPU is ticked directly with RES set.
func New(cfg Config) *Lynx {
	l := &Lynx{cfg: cfg}
	l.RAM = ram.New()
	l.Vec = ram.NewVectors()
	l.screen = suzy.NewScreen(mikey.ScreenWidth, mikey.ScreenHeight)
	l.Suzy = suzy.New(l.RAM.ReadDirect, l.RAM.WriteDirect, l.screen)
	l.Mikey = mikey.New(l.RAM.ReadDirect)
	l.Cart = cart.NewNone()
	l.CPU = cpu.New()
	l.CPU.Read = l.read
	l.CPU.Write = l.write
	return l
}

// LoadCartridge parses and installs a ROM image.
func (l *Lynx) LoadCartridge(data []byte) error {
	c, err := cart.Load(data)
	if err != nil {
		return fmt.Errorf("chassis: load cartridge: %w", err)
	}
	l.Cart = c
	trace.Printf("chassis: loaded cartridge (%s)", c.Format())
	return nil
}

// LoadBootROM installs the 512-byte boot image mapped at 0xFE00-0xFFF8
// (plus the trailing 6 vector bytes, per the documented boot-ROM layout).
func (l *Lynx) LoadBootROM(data []byte) error {
	if len(data) != len(l.bootROM) {
		return fmt.Errorf("chassis: boot ROM must be exactly %d bytes, got %d", len(l.bootROM), len(data))
	}
	copy(l.bootROM[:], data)
	var raw [6]byte
	copy(raw[:], data[len(data)-6:])
	l.Vec.SetRaw(raw)
	return nil
}

func (l *Lynx) read(addr uint16) byte {
	switch {
	case addr == addrMapCtl:
		return l.mapCtl
	case addr == addrRCart0 && l.mapCtl&mapSuzyDis == 0:
		return l.cartAccess(cart.PinCE)
	case addr == addrRCart1 && l.mapCtl&mapSuzyDis == 0:
		return 0xFF
	case addr >= addrVecBase:
		if l.mapCtl&mapVecDis == 0 {
			return l.Vec.ReadByte(addr)
		}
	case addr >= addrBootBase:
		if l.mapCtl&mapRomDis == 0 {
			return l.bootROM[addr-addrBootBase]
		}
	case addr >= addrMikeyBase:
		if l.mapCtl&mapMikeyDis == 0 {
			return l.Mikey.Peek(byte(addr - addrMikeyBase))
		}
	case addr >= addrSuzyBase:
		if l.mapCtl&mapSuzyDis == 0 {
			return l.Suzy.Peek(byte(addr - addrSuzyBase))
		}
	}
	return l.RAM.ReadDirect(addr)
}

func (l *Lynx) write(addr uint16, v byte) {
	switch {
	case addr == addrMapCtl:
		l.mapCtl = v
		return
	case (addr == addrRCart0 || addr == addrRCart1) && l.mapCtl&mapSuzyDis == 0:
		if addr == addrRCart0 {
			l.cartAccess(cart.PinWE)
		}
		return
	case addr >= addrVecBase:
		if l.mapCtl&mapVecDis == 0 {
			l.Vec.WriteByte(addr, v)
			return
		}
	case addr >= addrBootBase:
		if l.mapCtl&mapRomDis == 0 {
			return // boot ROM is read-only
		}
	case addr >= addrMikeyBase:
		if l.mapCtl&mapMikeyDis == 0 {
			l.Mikey.Poke(byte(addr-addrMikeyBase), v)
			return
		}
	case addr >= addrSuzyBase:
		if l.mapCtl&mapSuzyDis == 0 {
			l.Suzy.Poke(byte(addr-addrSuzyBase), v)
			return
		}
	}
	l.RAM.WriteDirect(addr, v)
}

// Tick advances the machine by exactly one 62.5ns crystal tick, in the
// order Suzy, Cartridge, Mikey, then the CPU (RAM has no per-tick work; it
// is read and written directly) -- with the CPU's RDY line held low while
// Suzy is busy or Mikey has the CPU asleep.
func (l *Lynx) Tick() {
	l.Suzy.Tick()
	l.Cart.SetPins(l.cartPins())
	irq := l.Mikey.Tick()
	l.syncFramebuffer()

	pins := cpu.Pins(0).
		WithRDY(!l.Suzy.Busy() && !l.Mikey.CPUSleep()).
		WithIRQ(irq)
	l.lastPins = l.CPU.Tick(pins)
}

// StepInstruction ticks the machine until the CPU completes one opcode
// fetch (SYNC high), the external single-step interface, useful for
// headless trace tools and debuggers.
func (l *Lynx) StepInstruction() {
	l.Tick()
	for !l.lastPins.Sync() {
		l.Tick()
	}
}

// AudioSample returns the current signed 16-bit stereo sample, the
// external audio-pull interface host code drives its audio callback with.
func (l *Lynx) AudioSample() (int16, int16) { return l.Mikey.AudioSample() }

// cartPins builds the pin word Mikey's bank shifter and ripple counter
// present to the cartridge every tick (CE/WE are pulsed separately, only
// on an actual RCART0 access, via cartAccess).
func (l *Lynx) cartPins() uint32 {
	shift, ripple, audin := l.Mikey.CartShifter()
	pins := uint32(shift) | uint32(ripple)<<cart.ShifterBits
	if audin != 0 {
		pins |= cart.PinAUDIN
	}
	return pins
}

// cartAccess pulses strobe (PinCE or PinWE) on the cartridge for one
// RCART0 access, then advances Mikey's ripple counter the way real
// hardware auto-increments the cart address after every access.
func (l *Lynx) cartAccess(strobe uint32) byte {
	l.Cart.SetPins(l.cartPins() | strobe)
	data := l.Cart.Data()
	l.Cart.SetPins(l.cartPins())
	l.Mikey.IncCartPosition()
	return data
}

// syncFramebuffer packs Suzy's pen-indexed screen plane into the RAM
// region Mikey's video DMA reads from (two pixels per byte, matching the
// real 4bpp video buffer layout), keeping the two components' independent
// internal representations consistent without modeling Suzy's own nibble
// packing arithmetic.
func (l *Lynx) syncFramebuffer() {
	base := l.Mikey.Video.DispAddr
	px := l.screen.Pixels
	for row := 0; row < mikey.ScreenHeight; row++ {
		rowBase := base + uint16(row*mikey.ScreenWidth/2)
		for col := 0; col < mikey.ScreenWidth; col += 2 {
			hi := px[row*mikey.ScreenWidth+col] & 0x0F
			lo := px[row*mikey.ScreenWidth+col+1] & 0x0F
			l.RAM.WriteDirect(rowBase+uint16(col/2), hi<<4|lo)
		}
	}
}

// Framebuffer returns the most recently completed frame as RGBA8888.
func (l *Lynx) Framebuffer() []byte { return l.Mikey.Video.Framebuffer() }

// Button bits, matching the documented joystick byte layout (active-high
// here; SetJoystick's caller need not know the hardware's active-low
// polarity).
const (
	ButtonA       = 0x01
	ButtonB       = 0x02
	ButtonOption2 = 0x04
	ButtonOption1 = 0x08
	ButtonLeft    = 0x10
	ButtonRight   = 0x20
	ButtonUp      = 0x40
	ButtonDown    = 0x80
)

// SetJoystick latches the current button state, handling the documented
// left/right handedness swap (Option 1 held at boot swaps Up/Down and
// Left/Right so the cartridge slot can face either way).
func (l *Lynx) SetJoystick(buttons byte, leftHanded bool) {
	if !leftHanded {
		l.joystick = buttons
		return
	}
	swapped := buttons & (ButtonA | ButtonB | ButtonOption1 | ButtonOption2)
	if buttons&ButtonUp != 0 {
		swapped |= ButtonDown
	}
	if buttons&ButtonDown != 0 {
		swapped |= ButtonUp
	}
	if buttons&ButtonLeft != 0 {
		swapped |= ButtonRight
	}
	if buttons&ButtonRight != 0 {
		swapped |= ButtonLeft
	}
	l.joystick = swapped
}

func (l *Lynx) SetSwitches(v byte) { l.switches = v }

// state is the serializable snapshot used by Save/Load.
type state struct {
	CPU struct {
		A, X, Y, S, P byte
		PC            uint16
	}
	RAM     [ram.Size]byte
	Vectors [6]byte
	MapCtl  byte
}

// Save serializes the machine's volatile state (CPU registers, RAM and
// the vector shadow) via encoding/gob, matching the teacher's save-state
// approach.
func (l *Lynx) Save() ([]byte, error) {
	var s state
	s.CPU.A, s.CPU.X, s.CPU.Y = l.CPU.A, l.CPU.X, l.CPU.Y
	s.CPU.S, s.CPU.P, s.CPU.PC = l.CPU.S, l.CPU.P, l.CPU.PC
	s.RAM = *l.RAM.Bytes()
	s.Vectors = l.Vec.Raw()
	s.MapCtl = l.mapCtl

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&s); err != nil {
		return nil, fmt.Errorf("chassis: encode save state: %w", err)
	}
	return buf.Bytes(), nil
}

func (l *Lynx) Load(data []byte) error {
	var s state
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("chassis: decode save state: %w", err)
	}
	l.CPU.A, l.CPU.X, l.CPU.Y = s.CPU.A, s.CPU.X, s.CPU.Y
	l.CPU.S, l.CPU.P, l.CPU.PC = s.CPU.S, s.CPU.P, s.CPU.PC
	*l.RAM.Bytes() = s.RAM
	l.Vec.SetRaw(s.Vectors)
	l.mapCtl = s.MapCtl
	return nil
}
