package ui

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atari-lynx/lynxgo/internal/chassis"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// crystalHz is the Lynx's 16 MHz master clock (62.5ns per tick).
const crystalHz = 16_000_000.0

// audioSampleRate is the host playback rate the audio timers' continuous
// output is decimated down to.
const audioSampleRate = 48000

const (
	screenWidth  = 160
	screenHeight = 102
)

// lynxAudioStream is an io.Reader feeding ebiten's audio player: Update
// pushes one stereo frame per decimated crystal tick, Read drains them on
// the player's own goroutine, padding with silence on underrun rather than
// blocking the audio callback.
type lynxAudioStream struct {
	mu  sync.Mutex
	buf []byte
}

func (s *lynxAudioStream) push(l, r int16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var frame [4]byte
	binary.LittleEndian.PutUint16(frame[0:], uint16(l))
	binary.LittleEndian.PutUint16(frame[2:], uint16(r))
	s.buf = append(s.buf, frame[:]...)
	if max := 4 * audioSampleRate / 5; len(s.buf) > max { // cap ~200ms so a stalled player can't leak memory
		s.buf = s.buf[len(s.buf)-max:]
	}
}

func (s *lynxAudioStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

// App is the ebiten host wrapper around a chassis.Lynx core: pacing,
// keyboard-to-joystick mapping, the ROM/slot/settings overlay menu and
// save-state persistence.
type App struct {
	cfg     Config
	lynx    *chassis.Lynx
	romPath string

	tex    *ebiten.Image
	paused bool
	fast   bool

	lastTime time.Time
	tickAcc  float64

	audioCtx    *audio.Context
	audioPlayer *audio.Player
	audioStream *lynxAudioStream
	sampleAcc   float64

	leftHanded bool

	showMenu bool
	menuIdx  int
	menuMode string // "main" | "rom" | "slot" | "settings"

	currentSlot int

	romList []string
	romSel  int
	romOff  int

	toastMsg   string
	toastUntil time.Time
}

// NewApp wraps an already-constructed Lynx core; the caller is responsible
// for loading a boot ROM before this call. If romPath is empty the ROM
// picker menu opens automatically.
func NewApp(cfg Config, lynx *chassis.Lynx, romPath string) *App {
	cfg = loadSettings(cfg)
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(screenWidth*cfg.Scale, screenHeight*cfg.Scale)

	a := &App{cfg: cfg, lynx: lynx, romPath: romPath}
	a.lastTime = time.Now()
	a.currentSlot = 0

	a.audioCtx = audio.NewContext(audioSampleRate)
	a.audioStream = &lynxAudioStream{}
	if p, err := a.audioCtx.NewPlayer(a.audioStream); err == nil {
		a.audioPlayer = p
		a.audioPlayer.Play()
	}

	if romPath == "" {
		a.showMenu = true
		a.menuMode = "rom"
		a.romList = a.findROMs()
	} else {
		ebiten.SetWindowTitle(cfg.Title + " - [" + filepath.Base(romPath) + "]")
	}
	return a
}

func (a *App) Run() error { return ebiten.RunGame(a) }

// SaveSettings persists current settings to disk.
func (a *App) SaveSettings() { a.saveSettings() }

func (a *App) Update() error {
	if !a.showMenu {
		var btn byte
		if ebiten.IsKeyPressed(ebiten.KeyUp) {
			btn |= chassis.ButtonUp
		}
		if ebiten.IsKeyPressed(ebiten.KeyDown) {
			btn |= chassis.ButtonDown
		}
		if ebiten.IsKeyPressed(ebiten.KeyLeft) {
			btn |= chassis.ButtonLeft
		}
		if ebiten.IsKeyPressed(ebiten.KeyRight) {
			btn |= chassis.ButtonRight
		}
		if ebiten.IsKeyPressed(ebiten.KeyZ) {
			btn |= chassis.ButtonA
		}
		if ebiten.IsKeyPressed(ebiten.KeyX) {
			btn |= chassis.ButtonB
		}
		if ebiten.IsKeyPressed(ebiten.KeyEnter) {
			btn |= chassis.ButtonOption1
		}
		if ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
			btn |= chassis.ButtonOption2
		}
		a.lynx.SetJoystick(btn, a.leftHanded)
	} else {
		a.lynx.SetJoystick(0, a.leftHanded)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}
	a.fast = ebiten.IsKeyPressed(ebiten.KeyTab)

	if !a.showMenu && a.paused && inpututil.IsKeyJustPressed(ebiten.KeyN) {
		a.lynx.Tick()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.showMenu = !a.showMenu
		if a.showMenu {
			a.menuMode = "main"
			a.menuIdx = 0
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.Key1):
		a.currentSlot = 0
		a.toast("Slot set to 1")
	case inpututil.IsKeyJustPressed(ebiten.Key2):
		a.currentSlot = 1
		a.toast("Slot set to 2")
	case inpututil.IsKeyJustPressed(ebiten.Key3):
		a.currentSlot = 2
		a.toast("Slot set to 3")
	case inpututil.IsKeyJustPressed(ebiten.Key4):
		a.currentSlot = 3
		a.toast("Slot set to 4")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		if err := a.saveSlot(a.currentSlot); err == nil {
			a.toast(fmt.Sprintf("Saved slot %d", a.currentSlot+1))
		} else {
			a.toast("Save failed: " + err.Error())
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		if err := a.loadSlot(a.currentSlot); err == nil {
			a.toast(fmt.Sprintf("Loaded slot %d", a.currentSlot+1))
		} else {
			a.toast("Load failed: " + err.Error())
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		_ = a.saveScreenshot()
	}

	if a.showMenu {
		a.updateMenu()
	}

	if !a.showMenu && !a.paused {
		now := time.Now()
		dt := now.Sub(a.lastTime).Seconds()
		if dt < 0 {
			dt = 0
		}
		a.lastTime = now
		speed := 1.0
		if a.fast {
			speed = 4.0
		}
		a.tickAcc += dt * crystalHz * speed
		steps := 0
		maxSteps := int(crystalHz / 10) // cap a single Update to ~100ms of emulated time
		const ticksPerSample = crystalHz / audioSampleRate
		for a.tickAcc >= 1.0 && steps < maxSteps {
			a.lynx.Tick()
			a.tickAcc -= 1.0
			steps++

			a.sampleAcc++
			if a.sampleAcc >= ticksPerSample {
				a.sampleAcc -= ticksPerSample
				l, r := a.lynx.AudioSample()
				a.audioStream.push(l, r)
			}
		}
	}
	return nil
}

func (a *App) updateMenu() {
	switch a.menuMode {
	case "main":
		max := 5
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
			a.menuIdx--
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < max {
			a.menuIdx++
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			switch a.menuIdx {
			case 0:
				if err := a.saveSlot(a.currentSlot); err == nil {
					a.toast(fmt.Sprintf("Saved slot %d", a.currentSlot+1))
				} else {
					a.toast("Save failed: " + err.Error())
				}
			case 1:
				if err := a.loadSlot(a.currentSlot); err == nil {
					a.toast(fmt.Sprintf("Loaded slot %d", a.currentSlot+1))
				} else {
					a.toast("Load failed: " + err.Error())
				}
			case 2:
				a.menuMode = "slot"
				a.menuIdx = a.currentSlot
			case 3:
				a.romList = a.findROMs()
				a.romSel, a.romOff = 0, 0
				a.menuMode = "rom"
			case 4:
				a.menuMode = "settings"
				a.menuIdx = 0
			case 5:
				a.showMenu = false
			}
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
			a.showMenu = false
		}
	case "slot":
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
			a.menuIdx--
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < 3 {
			a.menuIdx++
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			a.currentSlot = a.menuIdx
			a.toast(fmt.Sprintf("Slot set to %d", a.currentSlot+1))
			a.menuMode = "main"
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
			a.menuMode = "main"
		}
	case "rom":
		n := len(a.romList)
		if n == 0 {
			if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
				a.menuMode = "main"
			}
			return
		}
		maxRows := (screenHeight - 40) / 10
		if maxRows < 1 {
			maxRows = 1
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.romSel > 0 {
			a.romSel--
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.romSel < n-1 {
			a.romSel++
		}
		if a.romSel < a.romOff {
			a.romOff = a.romSel
		}
		if a.romSel >= a.romOff+maxRows {
			a.romOff = a.romSel - maxRows + 1
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			path := a.romList[a.romSel]
			if err := a.loadROM(path); err == nil {
				a.toast("Loaded: " + filepath.Base(path))
			} else {
				a.toast("Load failed: " + err.Error())
			}
			a.menuMode = "main"
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
			a.menuMode = "main"
		}
	case "settings":
		items := 2
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
			a.menuIdx--
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < items-1 {
			a.menuIdx++
		}
		if a.menuIdx == 0 { // Scale
			if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) && a.cfg.Scale > 1 {
				a.cfg.Scale--
				ebiten.SetWindowSize(screenWidth*a.cfg.Scale, screenHeight*a.cfg.Scale)
			}
			if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) && a.cfg.Scale < 10 {
				a.cfg.Scale++
				ebiten.SetWindowSize(screenWidth*a.cfg.Scale, screenHeight*a.cfg.Scale)
			}
		} else if a.menuIdx == 1 { // Left-handed cart orientation (swaps D-Pad per MAPCTL Option1-at-boot convention)
			if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) || inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
				a.leftHanded = !a.leftHanded
				a.saveSettings()
			}
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
			a.menuMode = "main"
		}
	}
}

func (a *App) loadROM(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := a.lynx.LoadCartridge(data); err != nil {
		return err
	}
	a.romPath = path
	ebiten.SetWindowTitle(a.cfg.Title + " - [" + filepath.Base(path) + "]")
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(screenWidth, screenHeight)
	}
	a.tex.WritePixels(a.lynx.Framebuffer())
	screen.DrawImage(a.tex, nil)

	if a.toastMsg != "" && time.Now().Before(a.toastUntil) {
		ebitenutil.DebugPrintAt(screen, a.truncateText(a.toastMsg, a.maxCharsForText(4)), 4, 2)
	}

	if !a.showMenu {
		return
	}
	switch a.menuMode {
	case "main":
		lines := []string{
			"Menu:",
			fmt.Sprintf("  Save state (slot %d)", a.currentSlot+1),
			fmt.Sprintf("  Load state (slot %d)", a.currentSlot+1),
			"  Select Slot",
			"  Switch Cartridge",
			"  Settings",
			"  Close",
		}
		for i, s := range lines {
			prefix := "  "
			if i == a.menuIdx+1 {
				prefix = "> "
			}
			ebitenutil.DebugPrintAt(screen, prefix+s, 6, 6+i*10)
		}
	case "slot":
		lines := []string{"Select Slot:"}
		for i := 0; i < 4; i++ {
			lines = append(lines, fmt.Sprintf("  %d", i+1))
		}
		for i, s := range lines {
			prefix := "  "
			if i == a.menuIdx+1 {
				prefix = "> "
			}
			ebitenutil.DebugPrintAt(screen, prefix+s, 6, 6+i*10)
		}
	case "rom":
		ebitenutil.DebugPrintAt(screen, "Select cartridge (Enter, Esc/Backspace back)", 6, 6)
		if len(a.romList) == 0 {
			ebitenutil.DebugPrintAt(screen, "No ROMs found in "+a.cfg.ROMsDir, 6, 18)
			return
		}
		baseY := 18
		maxRows := (screenHeight - baseY) / 10
		if maxRows < 1 {
			maxRows = 1
		}
		end := a.romOff + maxRows
		if end > len(a.romList) {
			end = len(a.romList)
		}
		for i, p := range a.romList[a.romOff:end] {
			name := a.truncateText(filepath.Base(p), a.maxCharsForText(8))
			prefix := "  "
			if a.romOff+i == a.romSel {
				prefix = "> "
			}
			ebitenutil.DebugPrintAt(screen, prefix+name, 6, baseY+i*10)
		}
	case "settings":
		items := []string{
			fmt.Sprintf("Scale: %dx", a.cfg.Scale),
			fmt.Sprintf("Left-handed: %s", map[bool]string{true: "On", false: "Off"}[a.leftHanded]),
		}
		for i, s := range items {
			prefix := "  "
			if i == a.menuIdx {
				prefix = "> "
			}
			ebitenutil.DebugPrintAt(screen, prefix+s, 6, 6+i*10)
		}
	}
}

func (a *App) toast(msg string) {
	a.toastMsg = msg
	a.toastUntil = time.Now().Add(2 * time.Second)
}

// findROMs returns a sorted list of cartridge images from cfg.ROMsDir.
func (a *App) findROMs() []string {
	var files []string
	entries, err := os.ReadDir(a.cfg.ROMsDir)
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ln := strings.ToLower(e.Name())
			if strings.HasSuffix(ln, ".lnx") || strings.HasSuffix(ln, ".o") || strings.HasSuffix(ln, ".bin") {
				files = append(files, filepath.Join(a.cfg.ROMsDir, e.Name()))
			}
		}
	}
	sort.Strings(files)
	return files
}

func settingsPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		d := filepath.Join(dir, "lynxgo")
		_ = os.MkdirAll(d, 0755)
		return filepath.Join(d, "settings.json")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "lynxgo_settings.json")
}

func loadSettings(override Config) Config {
	var cfg Config
	if b, err := os.ReadFile(settingsPath()); err == nil {
		_ = json.Unmarshal(b, &cfg)
	}
	if override.Title != "" {
		cfg.Title = override.Title
	}
	if override.Scale != 0 {
		cfg.Scale = override.Scale
	}
	if override.ROMsDir != "" {
		cfg.ROMsDir = override.ROMsDir
	}
	if cfg.Title == "" && override.Title == "" {
		cfg.Title = "lynxgo"
	}
	return cfg
}

func (a *App) saveSettings() {
	if a == nil {
		return
	}
	b, _ := json.MarshalIndent(a.cfg, "", "  ")
	_ = os.WriteFile(settingsPath(), b, 0644)
}

func (a *App) statePath(slot int) string {
	base := a.romPath
	if base == "" {
		base = "unknown.lnx"
	}
	dir := filepath.Dir(base)
	name := filepath.Base(base)
	return filepath.Join(dir, fmt.Sprintf("%s.slot%d.savestate", name, slot))
}

func (a *App) saveSlot(slot int) error {
	data, err := a.lynx.Save()
	if err != nil {
		return err
	}
	return os.WriteFile(a.statePath(slot), data, 0644)
}

func (a *App) loadSlot(slot int) error {
	data, err := os.ReadFile(a.statePath(slot))
	if err != nil {
		return err
	}
	return a.lynx.Load(data)
}

func (a *App) Layout(outW, outH int) (int, int) { return screenWidth, screenHeight }

func (a *App) maxCharsForText(left int) int {
	w := screenWidth - left - 2
	if w < 6 {
		return 1
	}
	return w / 6
}

func (a *App) truncateText(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func (a *App) saveScreenshot() error {
	fb := a.lynx.Framebuffer()
	img := &image.RGBA{
		Pix:    make([]byte, len(fb)),
		Stride: 4 * screenWidth,
		Rect:   image.Rect(0, 0, screenWidth, screenHeight),
	}
	copy(img.Pix, fb)
	ts := time.Now().Format("20060102_150405")
	name := fmt.Sprintf("screenshot_%s.png", ts)
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
