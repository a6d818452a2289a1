// Command lynxgo is the ebiten-backed desktop front end: load a cartridge
// image, open a window, run the core until the window closes.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/atari-lynx/lynxgo/internal/chassis"
	"github.com/atari-lynx/lynxgo/internal/ui"
)

func main() {
	var (
		romPath  = flag.String("rom", "", "path to a cartridge image (.lnx, .o, or raw no-intro dump)")
		bootPath = flag.String("bootrom", "", "512-byte Lynx boot ROM image")
		scale    = flag.Int("scale", 4, "window scale")
		title    = flag.String("title", "lynxgo", "window title")
		trace    = flag.Bool("trace", false, "set chassis.Config.Trace (trace output itself is switched by LYNXGO_TRACE)")
		romsDir  = flag.String("romsdir", "roms", "directory browsed by the in-app cartridge picker")
		autosave = flag.Duration("autosave", 30*time.Second, "interval for writing autosave.slot0.savestate in the working directory; 0 disables")
	)
	flag.Parse()

	lynx := chassis.New(chassis.Config{Trace: *trace})

	if *bootPath != "" {
		data, err := os.ReadFile(*bootPath)
		if err != nil {
			log.Fatalf("read boot rom: %v", err)
		}
		if err := lynx.LoadBootROM(data); err != nil {
			log.Fatalf("load boot rom: %v", err)
		}
	}

	if *romPath != "" {
		data, err := os.ReadFile(*romPath)
		if err != nil {
			log.Fatalf("read rom: %v", err)
		}
		if err := lynx.LoadCartridge(data); err != nil {
			log.Fatalf("load cartridge: %v", err)
		}
	}

	app := ui.NewApp(ui.Config{Title: *title, Scale: *scale, ROMsDir: *romsDir}, lynx, *romPath)

	ctx, cancel := context.WithCancel(context.Background())
	var g errgroup.Group
	if *autosave > 0 {
		g.Go(func() error { return runAutosave(ctx, lynx, *autosave) })
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		cancel()
	}()

	runErr := app.Run()
	cancel()
	if err := g.Wait(); err != nil {
		log.Printf("autosave: %v", err)
	}
	app.SaveSettings()
	if runErr != nil {
		log.Fatal(runErr)
	}
}

// runAutosave periodically snapshots the running core to
// autosave.slot0.savestate in the working directory (not the UI's per-ROM
// slot 0 file) so a crash
// or power loss loses at most one interval of progress, matching the
// teacher's periodic-persist idiom for battery RAM but driven by a ticker
// and an errgroup-owned goroutine instead of a shutdown-hook callback.
func runAutosave(ctx context.Context, lynx *chassis.Lynx, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			data, err := lynx.Save()
			if err != nil {
				return err
			}
			if err := os.WriteFile("autosave.slot0.savestate", data, 0644); err != nil {
				return err
			}
		}
	}
}
