// Package cart implements the Lynx's generic pin-addressed cartridge:
// ROM image access driven by a 32-bit pin word (shift/ripple address lines,
// data lines, CE/WE strobes, AUDIN), file-format auto-detection for LNX,
// BS93 and no-intro dumps, and the optional 93Cxx serial EEPROM.
package cart

import (
	"errors"

	"github.com/atari-lynx/lynxgo/internal/trace"
)

// Pin bit positions on the 32-bit cartridge pin bundle. Bits 0..7 are the
// serial "shifter" bits that select the bank (loaded one bit at a time via
// CAS strobing in Mikey's SYSCTL1), bits 8..18 are the "ripple" address
// counter bits (up to 11 bits of in-bank offset), and the top bits carry
// the CE/WE strobes and AUDIN.
const (
	ShifterBits = 8
	RippleBits  = 11

	PinCE    uint32 = 1 << 20
	PinWE    uint32 = 1 << 21
	PinAUDIN uint32 = 1 << 22

	shifterMask uint32 = (1 << ShifterBits) - 1
	rippleMask  uint32 = ((1 << RippleBits) - 1) << ShifterBits
)

const bankSize = 1 << RippleBits // 2048 bytes per bank, addressed by ripple bits

// Cartridge is a generic pin-addressed ROM bank plus an optional 93Cxx
// EEPROM, reacting to CE/WE rising edges the way real cart logic latches on
// an edge rather than a level.
type Cartridge struct {
	rom    []byte
	eeprom *Eeprom93Cxx

	pins     uint32
	prevCE   bool
	prevWE   bool
	dataOut  byte

	header Header
	format Format
}

// None is a placeholder cartridge for a Lynx with an empty slot: reads
// return 0xFF, writes are dropped, matching the "invalid memory state"
// error-handling policy for unmapped regions.
type None struct{}

func NewNone() *None { return &None{} }

func (n *None) SetPins(uint32)   {}
func (n *None) Pins() uint32     { return 0xFFFFFFFF }
func (n *None) Tick()            {}
func (n *None) Data() byte       { return 0xFF }

// Load parses a raw cartridge file, detects its format, and constructs the
// matching Cartridge. Malformed images are surfaced as an error from this
// entry point only, per the documented error-handling policy.
func Load(data []byte) (*Cartridge, error) {
	format := DetectFormat(data)
	c := &Cartridge{format: format}

	switch format {
	case FormatLNX:
		h, err := ParseLNXHeader(data)
		if err != nil {
			return nil, err
		}
		c.header = *h
		c.rom = append([]byte(nil), data[headerLen:]...)
		c.eeprom = EepromFromCode(h.EEPROM)
	case FormatBS93:
		body := append([]byte(nil), bs93Loader[:]...)
		body = append(body, data...)
		padded := make([]byte, 256*1024)
		copy(padded, body)
		c.rom = padded
	case FormatNoIntro:
		c.rom = append([]byte(nil), data...)
	default:
		return nil, errors.New("cart: unrecognized cartridge image format")
	}
	return c, nil
}

// SetPins latches a new pin word and, on CE or WE rising edges, performs
// the corresponding ROM or EEPROM access, the way real cart logic treats
// the bus between edges as a latch.
func (c *Cartridge) SetPins(pins uint32) {
	c.pins = pins
	ce := pins&PinCE != 0
	we := pins&PinWE != 0

	if !c.prevCE && ce {
		c.readEdge()
	}
	if !c.prevWE && we {
		c.writeEdge()
	}
	c.prevCE, c.prevWE = ce, we

	if c.eeprom != nil {
		c.eeprom.Tick(pins)
	}
}

func (c *Cartridge) dataAddress() int {
	bank := int(c.pins & shifterMask)
	offset := int((c.pins & rippleMask) >> ShifterBits)
	addr := bank*bankSize + offset
	if len(c.rom) == 0 {
		return 0
	}
	return addr % len(c.rom)
}

func (c *Cartridge) readEdge() {
	if len(c.rom) == 0 {
		c.dataOut = 0xFF
		return
	}
	c.dataOut = c.rom[c.dataAddress()]
	trace.Printf("cart read 0x%06x -> 0x%02x", c.dataAddress(), c.dataOut)
}

func (c *Cartridge) writeEdge() {
	// Generic cart ROM is not writable; writes only matter for the serial
	// EEPROM, which samples DI/CLK/CS directly off the pin word in Tick
	// rather than through the CE/WE data latch.
}

// Pins returns the current electrical state of the pin bundle, including
// AUDIN reflecting the EEPROM's serial data-out bit when one is fitted.
func (c *Cartridge) Pins() uint32 {
	p := c.pins
	if c.eeprom != nil && c.eeprom.Audin() {
		p |= PinAUDIN
	} else {
		p &^= PinAUDIN
	}
	return p
}

// Data returns the byte latched by the most recent CE rising edge.
func (c *Cartridge) Data() byte { return c.dataOut }

func (c *Cartridge) Format() Format   { return c.format }
func (c *Cartridge) Header() Header  { return c.header }
func (c *Cartridge) HasEeprom() bool { return c.eeprom != nil }
func (c *Cartridge) Eeprom() *Eeprom93Cxx { return c.eeprom }
