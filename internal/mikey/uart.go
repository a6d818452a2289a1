package mikey

// Uart is Mikey's ComLynx serial port: an 11-bit frame (1 start + 8 data +
// 1 parity + 1 stop), bit-banged one bit per call to TxBitTick/RxBitTick,
// which Mikey.Tick makes on every borrow of timer 4.
type Uart struct {
	// Transmit side
	TxOut func(bit bool) // serial line driver, wired to the link cable

	txHolding     byte
	txHoldingFull bool
	txShift       uint16
	txBitsLeft    int
	txBusy        bool

	// Receive side
	RxIn func() bool // serial line sampler

	rxShift       uint16
	rxBitsLeft    int
	rxData        byte
	rxDataReady   bool
	rxFramingErr  bool
	rxOverrun     bool
	rxParityErr   bool
	rxLowStreak   int
	BreakDetected bool

	ParityEnable bool
	ParityEven   bool
}

const breakLowBits = 24

// LoadTransmitData queues a byte for transmission; if the shifter is idle
// it starts immediately, otherwise it waits in the holding buffer (and any
// byte already waiting there is overrun-dropped, matching a UART with a
// single-deep holding register).
func (u *Uart) LoadTransmitData(v byte) {
	u.txHolding = v
	u.txHoldingFull = true
	if !u.txBusy {
		u.startTransmit()
	}
}

func (u *Uart) startTransmit() {
	u.txShift = u.frame(u.txHolding)
	u.txBitsLeft = 11
	u.txBusy = true
	u.txHoldingFull = false
}

func (u *Uart) frame(data byte) uint16 {
	parity := byte(0)
	if u.ParityEnable {
		parity = parityBit(data, u.ParityEven)
	}
	// bit0 = start (0), bits1-8 = data LSB first, bit9 = parity, bit10 = stop (1)
	return uint16(0)<<0 | uint16(data)<<1 | uint16(parity)<<9 | uint16(1)<<10
}

func parityBit(data byte, even bool) byte {
	ones := 0
	for i := 0; i < 8; i++ {
		if data&(1<<i) != 0 {
			ones++
		}
	}
	if even {
		return byte(ones % 2)
	}
	return byte((ones + 1) % 2)
}

// TxBitTick shifts out one bit of the current frame; called once per baud
// tick when a transmission is in progress.
func (u *Uart) TxBitTick() {
	if !u.txBusy {
		if u.TxOut != nil {
			u.TxOut(true) // idle line is marked (high)
		}
		return
	}
	bit := u.txShift&1 != 0
	u.txShift >>= 1
	u.txBitsLeft--
	if u.TxOut != nil {
		u.TxOut(bit)
	}
	if u.txBitsLeft == 0 {
		u.txBusy = false
		if u.txHoldingFull {
			u.startTransmit()
		}
	}
}

// TxReady reports whether the holding buffer can accept a new byte.
func (u *Uart) TxReady() bool { return !u.txHoldingFull }

// TxDone reports whether the whole frame (holding + shifter) is idle.
func (u *Uart) TxDone() bool { return !u.txBusy && !u.txHoldingFull }

// RxBitTick samples one incoming bit; called once per baud tick. It also
// implements break detection: 24 consecutive low samples (more than a
// full 11-bit low frame) sets BreakDetected.
func (u *Uart) RxBitTick() {
	if u.RxIn == nil {
		return
	}
	bit := u.RxIn()
	if !bit {
		u.rxLowStreak++
		if u.rxLowStreak >= breakLowBits {
			u.BreakDetected = true
		}
	} else {
		u.rxLowStreak = 0
	}

	if u.rxBitsLeft == 0 {
		if !bit {
			// start bit detected: it is frame bit 0 (a 0 in rxShift), so
			// the 10 remaining bits follow
			u.rxBitsLeft = 10
			u.rxShift = 0
		}
		return
	}

	pos := 11 - u.rxBitsLeft
	if bit {
		u.rxShift |= 1 << pos
	}
	u.rxBitsLeft--
	if u.rxBitsLeft == 0 {
		u.finishReceive()
	}
}

func (u *Uart) finishReceive() {
	data := byte(u.rxShift >> 1)
	parity := byte((u.rxShift >> 9) & 1)
	stop := u.rxShift&(1<<10) != 0

	if u.rxDataReady {
		u.rxOverrun = true
	}
	u.rxFramingErr = !stop
	if u.ParityEnable {
		u.rxParityErr = parity != parityBit(data, u.ParityEven)
	}
	u.rxData = data
	u.rxDataReady = true
}

// ReadReceivedData returns the last received byte and clears the
// data-ready/overrun/error latches, matching a read-to-clear status
// register.
func (u *Uart) ReadReceivedData() (data byte, framingErr, overrun, parityErr bool) {
	data, framingErr, overrun, parityErr = u.rxData, u.rxFramingErr, u.rxOverrun, u.rxParityErr
	u.rxDataReady = false
	u.rxOverrun = false
	u.rxFramingErr = false
	u.rxParityErr = false
	return
}

func (u *Uart) RxReady() bool { return u.rxDataReady }
