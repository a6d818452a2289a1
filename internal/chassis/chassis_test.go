package chassis

import (
	"testing"

	"github.com/atari-lynx/lynxgo/internal/cpu"
)

func TestMapCtlRoutesSuzyToRAMWhenDisabled(t *testing.T) {
	l := New(Config{})
	l.write(addrMapCtl, mapSuzyDis|mapMikeyDis|mapRomDis|mapVecDis)
	l.write(0xFC00, 0x99)
	if got := l.read(0xFC00); got != 0x99 {
		t.Fatalf("with MAPCTL disabling Suzy, 0xFC00 should read back as plain RAM, got %02x", got)
	}
}

func TestVectorRegionReadsVectorsUnlessDisabled(t *testing.T) {
	l := New(Config{})
	l.Vec.SetReset(0x9000)
	if got := uint16(l.read(0xFFFC)) | uint16(l.read(0xFFFD))<<8; got != 0x9000 {
		t.Fatalf("reset vector via bus = %04x, want 9000", got)
	}

	l.write(addrMapCtl, mapVecDis)
	l.write(0xFFFC, 0x11)
	if got := l.read(0xFFFC); got != 0x11 {
		t.Fatalf("with VECDIS set, 0xFFFC should read back as RAM, got %02x", got)
	}
}

func TestResetBootsCPUFromVectors(t *testing.T) {
	l := New(Config{})
	l.Vec.SetReset(0x8000)
	l.write(0x8000, 0xEA) // NOP at the reset target

	l.CPU.Tick(cpu.Pins(0).WithRES(true).WithRDY(true))
	if l.CPU.PC != 0x8000 {
		t.Fatalf("PC after reset = %04x, want 8000", l.CPU.PC)
	}
}

func TestFramebufferDimensions(t *testing.T) {
	l := New(Config{})
	if len(l.Framebuffer()) != 160*102*4 {
		t.Fatalf("framebuffer length = %d, want %d", len(l.Framebuffer()), 160*102*4)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	l := New(Config{})
	l.RAM.WriteDirect(0x1234, 0xAB)
	l.CPU.A = 0x55
	blob, err := l.Save()
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	l2 := New(Config{})
	if err := l2.Load(blob); err != nil {
		t.Fatalf("load: %v", err)
	}
	if l2.RAM.ReadDirect(0x1234) != 0xAB {
		t.Fatalf("RAM not restored")
	}
	if l2.CPU.A != 0x55 {
		t.Fatalf("CPU.A not restored, got %02x", l2.CPU.A)
	}
}

func TestJoystickLeftHandedSwap(t *testing.T) {
	l := New(Config{})
	l.SetJoystick(ButtonUp|ButtonLeft, true)
	if l.joystick&ButtonDown == 0 || l.joystick&ButtonRight == 0 {
		t.Fatalf("left-handed swap did not remap Up/Left to Down/Right: %08b", l.joystick)
	}
}
