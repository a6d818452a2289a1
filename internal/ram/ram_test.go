package ram

import (
	"testing"

	"github.com/atari-lynx/lynxgo/internal/bus"
)

func TestDirectReadWrite(t *testing.T) {
	r := New()
	r.WriteDirect(0x1000, 0xAB)
	if got := r.ReadDirect(0x1000); got != 0xAB {
		t.Fatalf("ReadDirect = %02x, want ab", got)
	}
}

func TestBusMediatedPokeThenPeek(t *testing.T) {
	r := New()
	b := bus.New()
	b.SetAddr(0x2000)
	b.SetData(0x42)
	r.Poke(b)
	for i := 0; i < writeTicks; i++ {
		if b.Status() == bus.PokeDone {
			t.Fatalf("poke completed early at tick %d", i)
		}
		r.Tick(b)
	}
	if b.Status() != bus.PokeDone {
		t.Fatalf("poke did not complete after %d ticks", writeTicks)
	}

	b.SetStatus(bus.None)
	b.SetAddr(0x2000)
	r.Peek(b)
	// same high byte as the prior access, so this should take the
	// page-mode fast path rather than a full normalReadTicks access.
	for i := 0; i < pageReadTicks; i++ {
		r.Tick(b)
	}
	if b.Status() != bus.PeekDone || b.Data() != 0x42 {
		t.Fatalf("peek after same-page poke = data=%02x status=%v, want 42/PeekDone", b.Data(), b.Status())
	}
}

func TestPeekFirstAccessTakesNormalTicks(t *testing.T) {
	r := New()
	r.WriteDirect(0x3000, 0x99)
	b := bus.New()
	b.SetAddr(0x3000)
	r.Peek(b)
	for i := 0; i < normalReadTicks-1; i++ {
		r.Tick(b)
		if b.Status() == bus.PeekDone {
			t.Fatalf("first access to a page completed early at tick %d", i)
		}
	}
	r.Tick(b)
	if b.Status() != bus.PeekDone || b.Data() != 0x99 {
		t.Fatalf("peek result = data=%02x status=%v, want 99/PeekDone", b.Data(), b.Status())
	}
}

func TestVectorsDefaultResetAddress(t *testing.T) {
	v := NewVectors()
	if v.Reset() != 0xFF80 {
		t.Fatalf("default reset vector = %04x, want ff80", v.Reset())
	}
}

func TestVectorsSetAndBusMediatedAccess(t *testing.T) {
	v := NewVectors()
	v.SetNMI(0x1234)
	v.SetIRQ(0x5678)

	b := bus.New()
	b.SetAddr(0xFFFA)
	v.Peek(b)
	if b.Data() != 0x34 || b.Status() != bus.PeekDone {
		t.Fatalf("peek NMI lo = %02x status=%v, want 34/PeekDone", b.Data(), b.Status())
	}

	b.SetStatus(bus.None)
	b.SetAddr(0xFFFE)
	b.SetData(0x11)
	v.Poke(b)
	if b.Status() != bus.PokeDone || v.IRQ() != 0x5611 {
		t.Fatalf("poke IRQ lo = status=%v irq=%04x, want PokeDone/5611", b.Status(), v.IRQ())
	}
}

func TestVectorsRawRoundTrip(t *testing.T) {
	v := NewVectors()
	raw := [6]byte{1, 2, 3, 4, 5, 6}
	v.SetRaw(raw)
	if v.Raw() != raw {
		t.Fatalf("raw round trip failed")
	}
	if v.ReadByte(0xFFFA) != 1 || v.ReadByte(0xFFFF) != 6 {
		t.Fatalf("ReadByte mismatch after SetRaw")
	}
}
