// Command coredump is a headless runner: load a cartridge (and optional
// boot ROM), tick the core a fixed number of crystal ticks, and report a
// checksum of the resulting framebuffer -- useful for regression-testing
// a cartridge's boot sequence without a window.
package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"log"
	"os"
	"strings"
	"time"

	"github.com/atari-lynx/lynxgo/internal/chassis"
)

func main() {
	var (
		romPath  = flag.String("rom", "", "path to a cartridge image")
		bootPath = flag.String("bootrom", "", "512-byte Lynx boot ROM image")
		ticks    = flag.Int64("ticks", 16_000_000, "crystal ticks to run (16,000,000 = 1 second of emulated time)")
		trace    = flag.Bool("trace", false, "set chassis.Config.Trace (trace output itself is switched by LYNXGO_TRACE)")
		pngOut   = flag.String("outpng", "", "write the final framebuffer to PNG at this path")
		expect   = flag.String("expect", "", "assert the final framebuffer's CRC32 (hex) matches")
	)
	flag.Parse()

	if *romPath == "" {
		log.Fatal("-rom is required")
	}
	rom, err := os.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("read rom: %v", err)
	}

	lynx := chassis.New(chassis.Config{Trace: *trace})
	if *bootPath != "" {
		boot, err := os.ReadFile(*bootPath)
		if err != nil {
			log.Fatalf("read bootrom: %v", err)
		}
		if err := lynx.LoadBootROM(boot); err != nil {
			log.Fatalf("load bootrom: %v", err)
		}
	}
	if err := lynx.LoadCartridge(rom); err != nil {
		log.Fatalf("load cartridge: %v", err)
	}

	start := time.Now()
	for i := int64(0); i < *ticks; i++ {
		lynx.Tick()
	}
	elapsed := time.Since(start)

	fb := lynx.Framebuffer()
	sum := crc32.ChecksumIEEE(fb)
	log.Printf("coredump: ticks=%d elapsed=%s fb_crc32=%08x", *ticks, elapsed.Truncate(time.Millisecond), sum)

	if *pngOut != "" {
		if err := writeFramePNG(fb, *pngOut); err != nil {
			log.Fatalf("write png: %v", err)
		}
		log.Printf("wrote %s", *pngOut)
	}

	if *expect != "" {
		want := strings.TrimPrefix(strings.ToLower(*expect), "0x")
		got := fmt.Sprintf("%08x", sum)
		if got != want {
			log.Fatalf("checksum mismatch: got %s, want %s", got, want)
		}
	}
}

func writeFramePNG(pix []byte, path string) error {
	img := &image.RGBA{
		Pix:    append([]byte(nil), pix...),
		Stride: 4 * 160,
		Rect:   image.Rect(0, 0, 160, 102),
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
