package mikey

// ScreenWidth and ScreenHeight are the Lynx's fixed display dimensions.
const (
	ScreenWidth  = 160
	ScreenHeight = 102
)

// bytesPerLine is the DMA transfer size for one scanline: 160 4-bpp pixels
// packed two to a byte.
const bytesPerLine = ScreenWidth / 2

// Video owns the pixel-FIFO DMA engine, the 16-pen palette, and the two
// RGBA framebuffers swapped at vsync. Read is wired by the chassis to pull
// packed pixel bytes directly out of system RAM, the way Mikey's video DMA
// walks memory independently of the CPU.
type Video struct {
	Read func(addr uint16) byte

	penGreen  [16]byte // 4-bit green per pen
	penBlueRed [16]byte // high nibble blue, low nibble red, per pen

	DispAddr uint16 // frame base address, latched at the start of each frame
	Rotate   Rotation

	dmaAddr uint16
	line    int

	front [ScreenWidth * ScreenHeight * 4]byte
	back  [ScreenWidth * ScreenHeight * 4]byte
}

// Rotation mirrors the cartridge header's screen-rotation hint, also
// settable by Mikey's display control register (panels can be mounted
// rotated 90 degrees either way in some ports).
type Rotation int

const (
	RotateNone Rotation = iota
	Rotate90CW
	Rotate90CCW
)

func (v *Video) PokeGreen(regIndex int, packed byte) {
	v.penGreen[regIndex*2] = packed & 0x0F
	v.penGreen[regIndex*2+1] = packed >> 4
}

func (v *Video) PokeBlueRed(pen int, packed byte) {
	v.penBlueRed[pen] = packed
}

func (v *Video) pen(nibble byte) (r, g, b byte) {
	br := v.penBlueRed[nibble]
	g4 := v.penGreen[nibble]
	r4 := br & 0x0F
	b4 := br >> 4
	return r4 * 17, g4 * 17, b4 * 17
}

// StartFrame latches DispAddr as the DMA read pointer for the frame about
// to be drawn; called once per vsync before the first hsync of a frame.
func (v *Video) StartFrame() {
	v.dmaAddr = v.DispAddr
	v.line = 0
}

// HSync pulls one scanline's worth of packed pixels via Read, unpacks them
// through the palette into the back buffer, and advances the DMA pointer.
// Lynx DMA reads each byte's nibbles high-then-low and lays out pixels
// left to right. Rotate is not applied: the 90-degree modes use the same
// unpack and row placement as RotateNone.
func (v *Video) HSync() {
	if v.line >= ScreenHeight {
		return
	}
	row := v.outputRow()
	for col := 0; col < ScreenWidth; col += 2 {
		b := v.Read(v.dmaAddr + uint16(col/2))
		hi := b >> 4
		lo := b & 0x0F
		v.setPixel(row, col, hi)
		v.setPixel(row, col+1, lo)
	}
	v.dmaAddr += bytesPerLine
	v.line++
}

func (v *Video) outputRow() int {
	switch v.Rotate {
	case Rotate90CW, Rotate90CCW:
		// Rotated panels still scan in DMA order; no row/column remap is
		// applied, and Framebuffer() returns the frame unrotated.
		return v.line
	default:
		return v.line
	}
}

func (v *Video) setPixel(row, col int, nibble byte) {
	r, g, b := v.pen(nibble)
	off := (row*ScreenWidth + col) * 4
	v.back[off+0] = r
	v.back[off+1] = g
	v.back[off+2] = b
	v.back[off+3] = 0xFF
}

// VSync swaps the completed back buffer into front, making it visible via
// Framebuffer, and arms the DMA pointer for the next frame.
func (v *Video) VSync() {
	v.front, v.back = v.back, v.front
	v.StartFrame()
}

// Framebuffer returns the most recently completed frame as tightly packed
// RGBA8888, row-major, top-to-bottom.
func (v *Video) Framebuffer() []byte { return v.front[:] }
