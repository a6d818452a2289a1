package cart

import (
	"errors"
	"strings"
)

// Format identifies which of the three cartridge file layouts a loaded
// image matched.
type Format int

const (
	FormatUnknown Format = iota
	FormatLNX
	FormatBS93
	FormatNoIntro
)

func (f Format) String() string {
	switch f {
	case FormatLNX:
		return "LNX"
	case FormatBS93:
		return "BS93"
	case FormatNoIntro:
		return "no-intro"
	default:
		return "unknown"
	}
}

// Header is the 64-byte LNX header fields, decoded per the documented
// layout: magic "LYNX" at 0..4, per-bank sizes, version, title,
// manufacturer, rotation and EEPROM/spare bytes.
type Header struct {
	Bank0Size    uint16
	Bank1Size    uint16
	Version      uint16
	Title        string
	Manufacturer string
	Rotation     Rotation
	EEPROM       EepromCode
}

// Rotation is the cart's screen-rotation hint, read from the LNX header.
type Rotation int

const (
	RotationNone Rotation = iota
	Rotation90
	Rotation270
)

// EepromCode packs the decoded EEPROM variant selection from the LNX
// header's spare byte 1: low 3 bits select a x8 variant 0x01..0x05, bit 7
// selects the x16 family instead of x8.
type EepromCode struct {
	Present bool
	Wide16  bool
	Variant byte // 1..5, index into the x8 or x16 capacity table
}

const headerLen = 64

var lnxMagic = [4]byte{'L', 'Y', 'N', 'X'}
var bs93Magic = [4]byte{'B', 'S', '9', '3'}

// DetectFormat classifies a raw cartridge file by magic bytes first, then
// by structural size for the no-intro (headerless) case.
func DetectFormat(data []byte) Format {
	if len(data) >= 4 && [4]byte(data[0:4]) == lnxMagic {
		return FormatLNX
	}
	if len(data) >= 10 && [4]byte(data[6:10]) == bs93Magic {
		return FormatBS93
	}
	switch len(data) {
	case 128 * 1024, 256 * 1024, 512 * 1024, 1024 * 1024:
		return FormatNoIntro
	}
	return FormatUnknown
}

// ParseLNXHeader decodes the 64-byte LNX header. The caller is expected to
// have already confirmed the magic via DetectFormat.
func ParseLNXHeader(data []byte) (*Header, error) {
	if len(data) < headerLen {
		return nil, errors.New("cart: LNX image shorter than header")
	}
	h := &Header{
		Bank0Size: uint16(data[4]) | uint16(data[5])<<8,
		Bank1Size: uint16(data[6]) | uint16(data[7])<<8,
		Version:   uint16(data[8]) | uint16(data[9])<<8,
		Title:     strings.TrimRight(string(data[10:42]), "\x00"),
		Manufacturer: strings.TrimRight(string(data[42:58]), "\x00"),
	}
	switch data[58] {
	case 1:
		h.Rotation = Rotation270
	case 2:
		h.Rotation = Rotation90
	default:
		h.Rotation = RotationNone
	}
	spare1 := data[59+1]
	if spare1&0x7F != 0 {
		h.EEPROM = EepromCode{
			Present: true,
			Wide16:  spare1&0x80 != 0,
			Variant: spare1 & 0x07,
		}
	}
	return h, nil
}

// bs93Loader is the fixed bootstrap block a BS93 image is prepended with
// before the 256 KiB padded ROM body. The real loader bytes live outside
// this retrieval pack (no_intro.rs / the loader blob were not preserved in
// the source snapshot this core was built from); this placeholder keeps the
// documented 246-byte size and offset so BS93 images still load and run
// their own body starting at the documented offset, while falling short of
// byte-exact parity with the original fixed loader program.
var bs93Loader [246]byte

const bs93LoaderSize = len(bs93Loader)
