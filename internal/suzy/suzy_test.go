package suzy

import "testing"

func TestMultiplyUnsignedLatencyAndResult(t *testing.T) {
	var m Math
	m.StartMultiply(1000, 1000, false, false)
	ticks := 0
	for m.Busy() {
		m.Tick()
		ticks++
	}
	if ticks != 44 {
		t.Fatalf("non-accumulating multiply took %d ticks, want 44", ticks)
	}
	if m.Accumulator != 1000*1000 {
		t.Fatalf("accumulator = %d, want %d", m.Accumulator, 1000*1000)
	}
}

func TestMultiplySignedNegativeResult(t *testing.T) {
	var m Math
	m.StartMultiply(0xFFFB, 10, true, false) // 0xFFFB is -5 in two's complement
	ticks := 0
	for m.Busy() {
		m.Tick()
		ticks++
	}
	if ticks != 54 {
		t.Fatalf("signed multiply took %d ticks, want 54", ticks)
	}
	if int32(m.Accumulator) != -50 {
		t.Fatalf("accumulator = %d, want -50", int32(m.Accumulator))
	}
}

// TestMultiplySignedBiasedEncoding pins down the hardware's biased sign
// convention: 0x8000 converts as positive, unlike a plain int16 cast which
// would read it as -32768.
func TestMultiplySignedBiasedEncoding(t *testing.T) {
	var m Math
	m.StartMultiply(0x8000, 1, true, false)
	for m.Busy() {
		m.Tick()
	}
	if m.Accumulator != 0x8000 {
		t.Fatalf("accumulator = %#x, want %#x (0x8000 treated as positive)", m.Accumulator, 0x8000)
	}
}

func TestMultiplyAccumulateWraps(t *testing.T) {
	var m Math
	m.Accumulator = 0xFFFFFFF0
	m.StartMultiply(10, 2, false, true)
	for m.Busy() {
		m.Tick()
	}
	if m.Accumulator != 0x00000004 {
		t.Fatalf("accumulator = %#x, want wrapped %#x", m.Accumulator, 0x00000004)
	}
	if !m.Overflow || !m.Carry {
		t.Fatalf("expected both overflow and carry flags set, got overflow=%v carry=%v", m.Overflow, m.Carry)
	}
}

func TestMathClearOverflowKeepsCarry(t *testing.T) {
	var m Math
	m.Accumulator = 0xFFFFFFF0
	m.StartMultiply(10, 2, false, true)
	for m.Busy() {
		m.Tick()
	}
	m.ClearOverflow()
	if m.Overflow {
		t.Fatalf("ClearOverflow left warning flag set")
	}
	if !m.Carry {
		t.Fatalf("ClearOverflow should not touch the carry flag")
	}
	if m.Accumulator != 0 {
		t.Fatalf("accumulator low byte = %#x, want cleared to 0", m.Accumulator)
	}
}

func TestDivideByZero(t *testing.T) {
	var m Math
	m.StartDivide(1234, 0)
	if m.Busy() {
		t.Fatalf("divide-by-zero should complete immediately")
	}
	if !m.DivByZero || m.Quotient != 0xFFFFFFFF {
		t.Fatalf("divide-by-zero result = %x, flag=%v", m.Quotient, m.DivByZero)
	}
	if !m.Overflow || !m.Carry {
		t.Fatalf("divide-by-zero should set both warning and carry flags")
	}
}

func TestDivideResult(t *testing.T) {
	var m Math
	m.StartDivide(100, 7)
	for m.Busy() {
		m.Tick()
	}
	if m.Quotient != 14 || m.Remainder != 2 {
		t.Fatalf("100/7 = %d r%d, want 14 r2", m.Quotient, m.Remainder)
	}
}

// TestSuzyMathAOnlyTrigger confirms the asymmetric trigger: writing MATHC's
// high byte only latches the second operand, and a multiply only starts on
// the MATHA high-byte write.
func TestSuzyMathAOnlyTrigger(t *testing.T) {
	s := New(func(uint16) byte { return 0 }, func(uint16, byte) {}, NewScreen(1, 1))

	s.Poke(regOpBLo, 10) // MATHD
	s.Poke(regOpBHi, 0)  // MATHC: latches CD=10, must not trigger
	if s.Math.Busy() {
		t.Fatalf("writing MATHC alone triggered a multiply")
	}

	s.Poke(regOpALo, 5) // MATHB
	s.Poke(regOpAHi, 0) // MATHA: latches AB=5 and triggers
	if !s.Math.Busy() {
		t.Fatalf("writing MATHA did not trigger a multiply")
	}
	for s.Math.Busy() {
		s.Math.Tick()
	}
	if s.Math.Accumulator != 50 {
		t.Fatalf("accumulator = %d, want 50", s.Math.Accumulator)
	}
}

func TestRendererDrawsLiteralSprite(t *testing.T) {
	var mem [65536]byte
	// SCB layout: Next(0-1) Control0(2) Control1(3) SPRCOLL(4) DataAddr(5-6)
	// X(7-8) Y(9-10) Width(11) Height(12) Palette(13-20) CollOff(21-22).
	scb := uint16(0x1000)
	putW := func(off uint16, v uint16) {
		mem[scb+off] = byte(v)
		mem[scb+off+1] = byte(v >> 8)
	}
	putW(0, 0)                            // no next SCB
	mem[scb+2] = byte(BlendNormal) | 1<<6 // type=Normal, bpp=2
	mem[scb+3] = 0x80                     // literal pixel mode
	mem[scb+4] = 0                        // SPRCOLL
	putW(5, 0x2000)                       // DataAddr
	putW(7, 5)                            // X
	putW(9, 5)                            // Y
	mem[scb+11] = 2                       // Width
	mem[scb+12] = 1                       // Height
	mem[scb+13] = 0x00                    // palette pair 0/1, unused
	mem[scb+14] = 0x9A                    // palette pair 2/3: idx2->9, idx3->A
	putW(21, 30)                          // CollOff
	mem[0x2000] = 0xE4                    // 2-bit pixels: 3, 2, 1, 0 (MSB first)

	screen := NewScreen(16, 16)
	r := &Renderer{
		Read:   func(a uint16) byte { return mem[a] },
		Write:  func(a uint16, v byte) { mem[a] = v },
		Screen: screen,
	}
	r.StartSpriteList(scb)
	for r.Busy() {
		r.Tick()
	}
	if screen.Pixels[5*16+5] != 0x0A {
		t.Fatalf("pixel (5,5) = %#x, want palette-mapped 0xA", screen.Pixels[5*16+5])
	}
	if screen.Pixels[5*16+6] != 0x09 {
		t.Fatalf("pixel (6,5) = %#x, want palette-mapped 0x9", screen.Pixels[5*16+6])
	}
}

// TestRendererCollisionWriteBack exercises the full collision write-back
// path: a running maximum of whatever the collision plane already held
// under this sprite gets deposited at SCBADR+COLLOFF once rendering ends.
func TestRendererCollisionWriteBack(t *testing.T) {
	var mem [65536]byte
	scb := uint16(0x1000)
	putW := func(off uint16, v uint16) {
		mem[scb+off] = byte(v)
		mem[scb+off+1] = byte(v >> 8)
	}
	putW(0, 0)
	mem[scb+2] = byte(BlendNormal) // type=Normal, bpp=1
	mem[scb+3] = 0x80              // literal pixel mode
	mem[scb+4] = 5                 // SPRCOLL number = 5
	putW(5, 0x2000)                // DataAddr
	putW(7, 0)                     // X
	putW(9, 0)                     // Y
	mem[scb+11] = 1                // Width
	mem[scb+12] = 1                // Height
	mem[scb+13] = 0x11             // palette, index1->1
	putW(21, 40)                   // CollOff
	mem[0x2000] = 0x80             // single 1-bit pixel = 1 (non-zero pen)

	screen := NewScreen(4, 4)
	screen.Collision[0] = 7 // a prior sprite already deposited 7 here

	r := &Renderer{
		Read:   func(a uint16) byte { return mem[a] },
		Write:  func(a uint16, v byte) { mem[a] = v },
		Screen: screen,
	}
	r.StartSpriteList(scb)
	for r.Busy() {
		r.Tick()
	}

	if screen.Collision[0] != 5 {
		t.Fatalf("collision plane = %d, want this sprite's own number 5", screen.Collision[0])
	}
	got := mem[scb+40]
	if got&0x7F != 7 {
		t.Fatalf("SCBADR+COLLOFF = %#x, want running max 7 in low 7 bits", got)
	}
	if got&0x80 != 0 {
		t.Fatalf("ever-on-screen bit set, want clear since the sprite was drawn on screen")
	}
}
