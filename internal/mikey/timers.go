package mikey

// numTimers is Mikey's full timer bank: 8 general-purpose interrupt timers
// (0..7) plus 4 audio timers (8..11) that double as LFSR noise generators.
const numTimers = 12

// Timer control bits, matching the documented register layout.
const (
	ctrlPeriodMask  = 0x07 // clock-select index, 7 selects linked mode
	ctrlEnableCount = 1 << 3
	ctrlEnableReset = 1 << 4 // reload Current from Backup on borrow
	ctrlEnableInt   = 1 << 5
	ctrlResetDone   = 1 << 6 // write-1 clears Done
	ctrlDone        = 1 << 7 // read-only borrow-latch
)

// timerLinks[i] is the timer whose borrow clocks timer i when i's
// clock-select is 7 ("linked" mode), derived from the fixed cascade
// 0->2->4->6->7->8->9->10->11->1->3->5->7: timer 0 has no useful
// predecessor and links to itself (a link that can never fire); the
// closing 5->7 edge completes the self-sustaining audio loop
// 7->8->9->10->11->1->3->5->7, so timer 7's source is 5, not 6 -- timer 6
// still counts down from 4 but has no consumer of its own borrow. Timer 0
// drives hsync and timer 2 drives vsync.
var timerLinks = [numTimers]int{0, 11, 0, 1, 2, 3, 4, 5, 7, 8, 9, 10}

// periodTicks[n] is the number of 62.5ns crystal ticks between counts for
// clock-select index n (n=0..6); 1 microsecond is 16 ticks at 16MHz.
var periodTicks = [7]int{16, 32, 64, 128, 256, 512, 1024}

// Timer is one of Mikey's 12 countdown timers.
type Timer struct {
	Backup  byte
	Control byte
	Current byte

	prescale int // ticks accumulated toward the next count-down step
	Borrowed bool // set for exactly the tick a borrow (Current 0 -> reload) occurs
}

func (t *Timer) linked() bool { return t.Control&ctrlPeriodMask == 7 }
func (t *Timer) counting() bool { return t.Control&ctrlEnableCount != 0 }
func (t *Timer) Done() bool     { return t.Control&ctrlDone != 0 }
func (t *Timer) intEnabled() bool { return t.Control&ctrlEnableInt != 0 }

func (t *Timer) setDone() {
	t.Control |= ctrlDone
}

// countOnce decrements Current by one step, latching Done and reloading
// from Backup on underflow (the timer's "borrow" event).
func (t *Timer) countOnce() {
	if !t.counting() {
		t.Borrowed = false
		return
	}
	if t.Current == 0 {
		t.setDone()
		t.Borrowed = true
		if t.Control&ctrlEnableReset != 0 {
			t.Current = t.Backup
		}
		return
	}
	t.Current--
	t.Borrowed = false
}

// firstAudioTimer is the lowest timer index that doubles as an audio
// channel; timers firstAudioTimer..numTimers-1 each drive an AudioTimer
// LFSR on their own borrow instead of (or alongside) latching intLatch.
const firstAudioTimer = 8

// Timers is Mikey's full timer bank, ticked in index order each crystal
// tick, so a linked timer observes its predecessor's borrow for this tick
// -- except timer 1, whose source (timer 11) is ticked after it and so is
// seen one tick late. Audio holds the four audio-channel LFSR/volume
// shadow registers riding on timers 8..11.
type Timers struct {
	T     [numTimers]Timer
	Audio [numTimers - firstAudioTimer]AudioTimer
}

// Tick advances every timer by exactly one crystal tick. Unlinked timers
// count down from an internal tick prescaler; linked timers (clock-select
// 7) instead borrow once whenever their linked predecessor borrows. A
// borrow on an audio timer also steps that channel's LFSR.
func (ts *Timers) Tick() {
	for i := range ts.T {
		t := &ts.T[i]
		if t.linked() {
			if ts.T[timerLinks[i]].Borrowed {
				t.countOnce()
			} else {
				t.Borrowed = false
			}
		} else {
			idx := t.Control & ctrlPeriodMask
			t.prescale++
			if t.prescale >= periodTicks[idx] {
				t.prescale = 0
				t.countOnce()
			} else {
				t.Borrowed = false
			}
		}

		if i >= firstAudioTimer {
			a := &ts.Audio[i-firstAudioTimer]
			// The owning timer's interrupt-enable bit is repurposed as
			// the audio integrate-mode flag -- audio timers 8..11 never
			// contribute to intLatch (see Mikey.Tick).
			a.Integrate = t.Control&ctrlEnableInt != 0
			if t.Borrowed {
				a.Trigger()
			}
		}
	}
}

// AudioOutputs returns the current DAC output of audio channels 0..3
// (backed by timers 8..11), for feeding into a Mixer.
func (ts *Timers) AudioOutputs() [4]int8 {
	var out [4]int8
	for i := range out {
		out[i] = ts.Audio[i].Output
	}
	return out
}

// HBorrow reports whether timer 0 (the horizontal line timer, hsync root)
// borrowed this tick.
func (ts *Timers) HBorrow() bool { return ts.T[0].Borrowed }

// VBorrow reports whether timer 2 (the vertical line timer, vsync root)
// borrowed this tick.
func (ts *Timers) VBorrow() bool { return ts.T[2].Borrowed }

// Peek/Poke address offsets within a timer's 4-byte register block.
const (
	regBackup  = 0
	regControl = 1
	regCurrent = 2
	// offset 3 is unused/mirrors Control on real hardware
)

func (ts *Timers) Peek(timerIndex, reg int) byte {
	t := &ts.T[timerIndex]
	switch reg {
	case regBackup:
		return t.Backup
	case regControl, 3:
		return t.Control
	case regCurrent:
		return t.Current
	}
	return 0xFF
}

func (ts *Timers) Poke(timerIndex, reg int, v byte) {
	t := &ts.T[timerIndex]
	switch reg {
	case regBackup:
		t.Backup = v
	case regControl, 3:
		t.Control = (t.Control &^ (ctrlDone | ctrlResetDone)) | (v &^ ctrlResetDone)
		if v&ctrlResetDone != 0 {
			t.Control &^= ctrlDone
		}
	case regCurrent:
		t.Current = v
	}
}
