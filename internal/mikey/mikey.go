// Package mikey implements the Lynx's Mikey coprocessor: the 12-timer
// cascade driving hsync/vsync and the audio LFSRs, the video pixel-FIFO
// DMA engine, the ComLynx UART, the interrupt latch, and Mikey's
// register-mapped I/O window.
package mikey

import "github.com/atari-lynx/lynxgo/internal/trace"

// Register offsets within Mikey's 256-byte I/O window (based at 0xFD00 on
// the system bus; the chassis is responsible for the base-address
// subtraction before calling Peek/Poke).
const (
	regIntRst  = 0x80
	regIntSet  = 0x81
	regMagRdy0 = 0x82
	regMagRdy1 = 0x83
	regAudIn   = 0x84
	regSysCtl1 = 0x87
	regIoDir   = 0x88
	regIoDat   = 0x89
	regSerCtl  = 0x8C
	regSerDat  = 0x8D
	regDispCtl = 0x92
	regPbkup   = 0x93
	regDispAdrL = 0x94
	regDispAdrH = 0x95
	regGreenBase   = 0xA0 // 0xA0..0xA7, 8 registers covering 16 pens
	regBlueRedBase = 0xB0 // 0xB0..0xBF, one per pen

	regAudVolBase   = 0x30 // 0x30..0x33, one per audio channel (timers 8..11)
	regAudFeedBase  = 0x34 // 0x34..0x37
	regAudShiftBase = 0x38 // 0x38..0x3B
	regAttenBase    = 0x3C // 0x3C..0x3F, ATTEN A..D
	regMStereo      = 0x44
	regMPan         = 0x45
	regCpuSleep     = 0x91
)

// SerCtl bits (write side; the read side, built by serCtlStatus, reports
// transmit/receive status in bits 4..7 instead).
const (
	serCtlParityEnable = 1 << 0
	serCtlParityEven   = 1 << 1
	serCtlTxOpenDrain  = 1 << 2
	serCtlTxBreak      = 1 << 3
)

// SYSCTL1/IODAT bits driving the cart bank shifter.
const (
	sysCtl1Cas   = 1 << 0 // rising edge, while powered, shifts a bit into the cart bank shifter
	sysCtl1Power = 1 << 1
	ioDatCAD     = 1 << 1 // cart address-shift data line: the bit value shifted in on a CAS edge
	ioDatAudin   = 1 << 4 // cart audio-in line
)

// Mikey bundles the coprocessor's sub-units and its own register state.
type Mikey struct {
	Timers Timers
	Video  Video
	Uart   Uart
	Mix    Mixer

	intLatch byte // one bit per timer 0..7, OR'd onto the CPU IRQ line

	ioDir byte
	ioDat byte
	sysCtl1 byte

	cpuSleep bool // CPUSLEEP register: halts the CPU until the next interrupt

	cartShift byte   // 8-bit serial bank shifter, shifted by SYSCTL1 CAS edges
	cartPos   uint16 // 11-bit ripple counter, advanced once per cart access
}

// New wires the sub-units' cross-references (Video reads RAM via the
// caller-supplied fn) and returns a reset Mikey.
func New(ramRead func(addr uint16) byte) *Mikey {
	m := &Mikey{}
	m.Video.Read = ramRead
	return m
}

// Tick advances every timer by one crystal tick, derives hsync/vsync from
// timers 0 and 2, drives the UART baud clock off timer 4's linked borrow,
// and returns the IRQ line state for the CPU's Pins.
func (m *Mikey) Tick() bool {
	m.Timers.Tick()

	for i := 0; i < 8; i++ {
		t := &m.Timers.T[i]
		if t.Borrowed && t.intEnabled() {
			m.intLatch |= 1 << uint(i)
		}
	}

	if m.Timers.HBorrow() {
		m.Video.HSync()
	}
	if m.Timers.VBorrow() {
		m.Video.VSync()
	}
	if m.Timers.T[4].Borrowed {
		m.Uart.TxBitTick()
		m.Uart.RxBitTick()
	}

	irq := m.intLatch != 0
	if irq {
		m.cpuSleep = false
	}
	return irq
}

// CPUSleep reports whether a CPUSLEEP write has parked the CPU pending the next
// interrupt (the Lynx's cooperative idle mechanism).
func (m *Mikey) CPUSleep() bool { return m.cpuSleep }

// AudioSample mixes the four audio timers' current LFSR output into a
// signed 16-bit stereo pair, the external audio_sample() interface.
func (m *Mikey) AudioSample() (int16, int16) {
	return m.Mix.Sample(m.Timers.AudioOutputs())
}

// CartShifter returns the 8-bit bank shifter, the 11-bit ripple counter
// position, and the audio-in line, for the chassis to apply to the
// cartridge pin word on every tick.
func (m *Mikey) CartShifter() (shift byte, ripple uint16, audin byte) {
	if m.ioDat&ioDatAudin != 0 {
		audin = 1
	}
	return m.cartShift, m.cartPos, audin
}

// IncCartPosition advances the ripple counter by one. The chassis calls
// this after every RCART0 access: real hardware auto-advances the
// cart address on each read/write rather than the CPU driving a full
// address each time.
func (m *Mikey) IncCartPosition() {
	if m.cartPos < 0x7FF {
		m.cartPos++
	}
}

func (m *Mikey) Peek(offset byte) byte {
	switch {
	case offset < 0x30:
		return m.Timers.Peek(int(offset/4), int(offset%4))
	case offset == regIntRst, offset == regIntSet:
		return m.intLatch
	case offset == regSysCtl1:
		return m.sysCtl1
	case offset == regIoDir:
		return m.ioDir
	case offset == regIoDat:
		return m.ioDat
	case offset == regSerCtl:
		return m.serCtlStatus()
	case offset == regSerDat:
		data, _, _, _ := m.Uart.ReadReceivedData()
		return data
	case offset == regDispAdrL:
		return byte(m.Video.DispAddr)
	case offset == regDispAdrH:
		return byte(m.Video.DispAddr >> 8)
	case offset >= regAudVolBase && offset < regAudVolBase+4:
		return byte(m.Timers.Audio[offset-regAudVolBase].Volume)
	case offset >= regAudFeedBase && offset < regAudFeedBase+4:
		return m.Timers.Audio[offset-regAudFeedBase].Feedback
	case offset >= regAudShiftBase && offset < regAudShiftBase+4:
		return m.Timers.Audio[offset-regAudShiftBase].Shift
	case offset >= regAttenBase && offset < regAttenBase+4:
		return m.Mix.Atten[offset-regAttenBase]
	case offset == regMStereo:
		return m.Mix.Stereo
	case offset == regMPan:
		return m.Mix.Pan
	}
	trace.Printf("mikey: peek unmapped offset %02x", offset)
	return 0xFF
}

func (m *Mikey) Poke(offset byte, v byte) {
	switch {
	case offset < 0x30:
		m.Timers.Poke(int(offset/4), int(offset%4), v)
	case offset == regIntRst:
		m.intLatch &^= v
		for i := 0; i < 8; i++ {
			if v&(1<<uint(i)) != 0 {
				m.Timers.T[i].Control &^= ctrlDone
			}
		}
	case offset == regIntSet:
		m.intLatch |= v
	case offset == regSysCtl1:
		prev := m.sysCtl1
		m.sysCtl1 = v
		if prev&sysCtl1Power == 0 && v&sysCtl1Power != 0 {
			m.cartPos = 0
			m.cartShift = 0
		}
		if m.ioDat&ioDatCAD != 0 {
			m.cartPos = 0
		}
		if v&sysCtl1Power != 0 && prev&sysCtl1Cas == 0 && v&sysCtl1Cas != 0 {
			var bit byte
			if m.ioDat&ioDatCAD != 0 {
				bit = 1
			}
			m.cartShift = (m.cartShift << 1) | bit
			m.cartPos = 0
		}
	case offset == regCpuSleep:
		m.cpuSleep = true
	case offset == regIoDir:
		m.ioDir = v
	case offset == regIoDat:
		m.ioDat = v
	case offset == regSerCtl:
		m.Uart.ParityEnable = v&serCtlParityEnable != 0
		m.Uart.ParityEven = v&serCtlParityEven != 0
	case offset == regSerDat:
		m.Uart.LoadTransmitData(v)
	case offset == regDispCtl:
		m.Video.Rotate = Rotation((v >> 1) & 0x03)
	case offset == regDispAdrL:
		m.Video.DispAddr = (m.Video.DispAddr &^ 0x00FF) | uint16(v)
	case offset == regDispAdrH:
		m.Video.DispAddr = (m.Video.DispAddr &^ 0xFF00) | uint16(v)<<8
	case offset >= regGreenBase && offset < regGreenBase+8:
		m.Video.PokeGreen(int(offset-regGreenBase), v)
	case offset >= regBlueRedBase && offset < regBlueRedBase+16:
		m.Video.PokeBlueRed(int(offset-regBlueRedBase), v)
	case offset >= regAudVolBase && offset < regAudVolBase+4:
		m.Timers.Audio[offset-regAudVolBase].Volume = int8(v)
	case offset >= regAudFeedBase && offset < regAudFeedBase+4:
		m.Timers.Audio[offset-regAudFeedBase].Feedback = v
	case offset >= regAudShiftBase && offset < regAudShiftBase+4:
		m.Timers.Audio[offset-regAudShiftBase].Shift = v
	case offset >= regAttenBase && offset < regAttenBase+4:
		m.Mix.Atten[offset-regAttenBase] = v
	case offset == regMStereo:
		m.Mix.Stereo = v
	case offset == regMPan:
		m.Mix.Pan = v
	default:
		trace.Printf("mikey: poke unmapped offset %02x = %02x", offset, v)
	}
}

func (m *Mikey) serCtlStatus() byte {
	var v byte
	if m.Uart.TxReady() {
		v |= 1 << 4
	}
	if m.Uart.TxDone() {
		v |= 1 << 5
	}
	if m.Uart.RxReady() {
		v |= 1 << 6
	}
	if m.Uart.BreakDetected {
		v |= 1 << 7
	}
	return v
}
