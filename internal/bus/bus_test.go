package bus

import "testing"

func TestNewGrantsCPUByDefault(t *testing.T) {
	b := New()
	if !b.Grant() || b.Request() {
		t.Fatalf("new bus should grant=true request=false, got grant=%v request=%v", b.Grant(), b.Request())
	}
}

func TestAddrDataStatusRoundTrip(t *testing.T) {
	b := New()
	b.SetAddr(0x1234)
	b.SetData(0x56)
	b.SetStatus(Peek)
	if b.Addr() != 0x1234 || b.Data() != 0x56 || b.Status() != Peek {
		t.Fatalf("round trip failed: addr=%04x data=%02x status=%v", b.Addr(), b.Data(), b.Status())
	}
}

func TestResetRestoresPowerOnState(t *testing.T) {
	b := New()
	b.SetAddr(0xFFFF)
	b.SetRequest(true)
	b.SetGrant(false)
	b.SetStatus(PokeDone)

	b.Reset()
	if b.Addr() != 0 || b.Data() != 0 || b.Status() != None || b.Request() || !b.Grant() {
		t.Fatalf("reset did not restore power-on state")
	}
}

func TestStatusStringCoversKnownValues(t *testing.T) {
	if None.String() != "None" || PeekDone.String() != "PeekDone" {
		t.Fatalf("status stringer mismatch")
	}
	if Status(999).String() != "Unknown" {
		t.Fatalf("out-of-range status should stringify as Unknown")
	}
}
