package mikey

import "math/bits"

// AudioTimer is the LFSR/volume shadow register set riding on one of
// Mikey's four audio-capable timers (8..11). Every borrow from the owning
// timer shifts the register by one bit: the new bit is the inverted
// XOR-parity of the selected feedback taps against the current register
// contents, and
// that same bit picks which of +volume/-volume (or, in integrate mode, an
// accumulated running total) reaches the channel's output DAC.
//
// The feedback/shift registers are modeled as 8 bits rather than the real
// chip's 12 (which splits the extra 4 bits across the owning timer's
// control bytes) -- plenty of period for the documented tone/noise output,
// simpler to drive through a single register each. See DESIGN.md.
type AudioTimer struct {
	Volume    int8
	Feedback  byte
	Shift     byte
	Output    int8
	Integrate bool
}

// Trigger runs the LFSR one step and updates Output. Called on the
// borrow of the timer this register set shadows.
func (a *AudioTimer) Trigger() {
	parity := byte(bits.OnesCount8(a.Feedback&a.Shift)&1) ^ 1
	a.Shift = (a.Shift << 1) | parity

	if a.Integrate {
		if parity == 0 {
			a.Output = satAddI8(a.Output, a.Volume)
		} else {
			a.Output = satAddI8(a.Output, -a.Volume)
		}
		return
	}
	if parity == 0 {
		a.Output = a.Volume
	} else {
		a.Output = -a.Volume
	}
}

// Disabled mirrors the documented degenerate case: a register that never
// reloads (backup==0) and only taps bit 0 (feedback==1) settles into a
// fixed all-or-nothing pattern rather than a useful tone.
func (a *AudioTimer) Disabled(backup byte) bool {
	return backup == 0 && a.Feedback == 1
}

func satAddI8(a, b int8) int8 {
	sum := int16(a) + int16(b)
	switch {
	case sum > 127:
		return 127
	case sum < -128:
		return -128
	default:
		return int8(sum)
	}
}

// Mixer holds the per-channel stereo attenuation registers (ATTEN A..D)
// and the MSTEREO/MPAN masks that gate them, combining the four audio
// timers' Output values into a signed 16-bit stereo sample.
//
// A channel's MSTEREO bit clear means "play through at full volume on
// this side"; set means "this side is gated by MPAN": if MPAN's matching
// bit is also set, the side gets the ATTEN nibble's fraction of the
// signal, otherwise it gets silence. This matches the documented
// mute/pan quirk rather than a simple volume knob.
type Mixer struct {
	Atten  [4]byte // high nibble = left weight 0..15, low nibble = right weight 0..15
	Stereo byte    // MSTEREO
	Pan    byte    // MPAN
}

func (mx *Mixer) attenLeft(ch int) int32 {
	bit := byte(0x10) << uint(ch)
	if mx.Stereo&bit == 0 {
		return 15
	}
	if mx.Pan&bit != 0 {
		return int32(mx.Atten[ch] >> 4)
	}
	return 0
}

func (mx *Mixer) attenRight(ch int) int32 {
	bit := byte(1) << uint(ch)
	if mx.Stereo&bit == 0 {
		return 15
	}
	if mx.Pan&bit != 0 {
		return int32(mx.Atten[ch] & 0x0F)
	}
	return 0
}

// Sample mixes the four channel outputs into a signed 16-bit stereo pair,
// the documented external audio_sample() interface.
func (mx *Mixer) Sample(ch [4]int8) (int16, int16) {
	var l, r int32
	for i := 0; i < 4; i++ {
		l += int32(ch[i]) * mx.attenLeft(i)
		r += int32(ch[i]) * mx.attenRight(i)
	}
	return clampI16(l << 5), clampI16(r << 5)
}

func clampI16(v int32) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}
