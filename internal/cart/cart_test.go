package cart

import "testing"

func buildLNX(romBytes []byte, title string, eeprom byte) []byte {
	h := make([]byte, headerLen)
	copy(h[0:4], lnxMagic[:])
	h[4], h[5] = 0, 1 // Bank0Size = 256 (in 256-byte units per the documented field)
	h[8], h[9] = 1, 0 // Version = 1
	copy(h[10:42], title)
	h[59+1] = eeprom
	return append(h, romBytes...)
}

func TestDetectFormatLNX(t *testing.T) {
	data := buildLNX(make([]byte, 256), "TESTGAME", 0)
	if got := DetectFormat(data); got != FormatLNX {
		t.Fatalf("DetectFormat = %v, want FormatLNX", got)
	}
}

func TestDetectFormatNoIntroBySize(t *testing.T) {
	data := make([]byte, 128*1024)
	if got := DetectFormat(data); got != FormatNoIntro {
		t.Fatalf("DetectFormat = %v, want FormatNoIntro", got)
	}
}

func TestDetectFormatUnknown(t *testing.T) {
	if got := DetectFormat([]byte{1, 2, 3}); got != FormatUnknown {
		t.Fatalf("DetectFormat = %v, want FormatUnknown", got)
	}
}

func TestParseLNXHeaderFieldsAndEeprom(t *testing.T) {
	data := buildLNX(make([]byte, 256), "MY GAME", 0x83) // variant 3, x16 family
	h, err := ParseLNXHeader(data)
	if err != nil {
		t.Fatalf("ParseLNXHeader: %v", err)
	}
	if h.Title != "MY GAME" {
		t.Fatalf("Title = %q, want %q", h.Title, "MY GAME")
	}
	if !h.EEPROM.Present || !h.EEPROM.Wide16 || h.EEPROM.Variant != 3 {
		t.Fatalf("EEPROM decode = %+v, want Present=true Wide16=true Variant=3", h.EEPROM)
	}
}

func TestLoadLNXBuildsCartridgeWithEeprom(t *testing.T) {
	rom := make([]byte, 4096)
	rom[0] = 0xAA
	data := buildLNX(rom, "GAME", 0x01) // x8 variant 1, no wide bit
	c, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Format() != FormatLNX {
		t.Fatalf("Format() = %v, want FormatLNX", c.Format())
	}
	if !c.HasEeprom() {
		t.Fatalf("expected an EEPROM to be attached for a non-zero spare byte")
	}
}

func TestLoadNoIntroThenReadROMViaPins(t *testing.T) {
	rom := make([]byte, 128*1024)
	rom[0] = 0x42
	c, err := Load(rom)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// bank 0, ripple offset 0: CE rising edge should latch rom[0].
	c.SetPins(0)
	c.SetPins(PinCE)
	if got := c.Data(); got != 0x42 {
		t.Fatalf("Data() after CE edge at offset 0 = %02x, want 42", got)
	}
}

func TestLoadUnrecognizedFormatErrors(t *testing.T) {
	if _, err := Load([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected an error loading an unrecognized image")
	}
}

func TestSetPinsReadEdgeIsDetectedNotLevel(t *testing.T) {
	rom := make([]byte, 128*1024)
	rom[bankSize] = 0x77 // bank 1, offset 0
	c, err := Load(rom)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	bank1Pins := uint32(1) // shifter bits select bank 1, ripple bits 0

	c.SetPins(bank1Pins)
	c.SetPins(bank1Pins | PinCE) // rising edge
	if got := c.Data(); got != 0x77 {
		t.Fatalf("Data() = %02x, want 77", got)
	}

	c.SetPins(bank1Pins | PinCE) // CE held high, no new edge: Data unchanged
	if got := c.Data(); got != 0x77 {
		t.Fatalf("Data() changed without a CE edge: %02x", got)
	}
}
