// Package main implements the gones NES emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gones/internal/app"
	"gones/internal/version"
)

func main() {
	var (
		romFile    = flag.String("rom", "", "Path to NES ROM file (optional for GUI mode)")
		configFile = flag.String("config", "", "Path to configuration file")
		debug      = flag.Bool("debug", false, "Enable debug mode")
		nogui      = flag.Bool("nogui", false, "Run without GUI (headless mode)")
		help       = flag.Bool("help", false, "Show help message")
		showVer    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}

	if *showVer {
		version.PrintBuildInfo()
		os.Exit(0)
	}

	setupGracefulShutdown()

	log.Println("gones starting")

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	application, err := app.NewApplicationWithMode(configPath, *nogui)
	if err != nil {
		log.Fatalf("failed to create application: %v", err)
	}

	if *nogui {
		application.GetConfig().Video.Backend = "headless"
	}

	defer func() {
		if err := application.Cleanup(); err != nil {
			log.Printf("application cleanup error: %v", err)
		}
	}()

	if *debug {
		cfg := application.GetConfig()
		cfg.Debug.EnableLogging = true
		cfg.Debug.ShowDebugInfo = true
		cfg.Debug.ShowFPS = true
	}

	if *romFile != "" {
		if err := application.LoadROM(*romFile); err != nil {
			log.Fatalf("failed to load ROM: %v", err)
		}
		log.Printf("loaded ROM: %s", *romFile)
	}

	if *nogui {
		if *romFile == "" {
			log.Fatal("a ROM file is required for headless mode")
		}
		runHeadless(application)
	} else {
		if err := application.Run(); err != nil {
			log.Fatalf("application run failed: %v", err)
		}
	}

	log.Printf("gones exiting after %d frames", application.GetFrameCount())
}

// runHeadless clocks the console for a fixed number of frames and writes
// a handful of sampled frames to disk as PPM images, useful for smoke
// testing a ROM without a display.
func runHeadless(application *app.Application) {
	const targetFrames = 120
	console := application.Console()

	for frame := 0; frame < targetFrames; frame++ {
		fb, _ := console.RunFrame()

		switch frame {
		case 30, 60, 119:
			name := fmt.Sprintf("frame_%03d.ppm", frame+1)
			if err := saveFrameAsPPM(fb, name); err != nil {
				log.Printf("failed to save %s: %v", name, err)
				continue
			}
			log.Printf("wrote %s", name)
		}
	}
}

// saveFrameAsPPM writes a 256x240 RGBA framebuffer as an ASCII PPM image.
func saveFrameAsPPM(rgba []uint8, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "P3\n256 240\n255\n")
	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			o := (y*256 + x) * 4
			fmt.Fprintf(file, "%d %d %d ", rgba[o], rgba[o+1], rgba[o+2])
		}
		fmt.Fprintln(file)
	}
	return nil
}

func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("interrupt received, shutting down")
		os.Exit(0)
	}()
}

func printUsage() {
	fmt.Println("gones - Go NES Emulator")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  gones [options]                    # Start GUI mode without ROM")
	fmt.Println("  gones -rom <file> [options]        # Start with ROM loaded")
	fmt.Println("  gones -nogui -rom <file> [options] # Run headless mode")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("CONTROLS (Default):")
	fmt.Println("  Player 1:")
	fmt.Println("    Arrow Keys / WASD - D-Pad")
	fmt.Println("    J                 - A Button")
	fmt.Println("    K                 - B Button")
	fmt.Println("    Enter             - Start")
	fmt.Println("    Space             - Select")
	fmt.Println()
	fmt.Println("  Player 2 (number row):")
	fmt.Println("    1 2 3 4 - D-Pad, 5/6 - A/B, 7 - Start, 8 - Select")
	fmt.Println()
	fmt.Println("  Escape (2x) - Quit (double-tap within 3 seconds)")
	fmt.Println()
	fmt.Println("SUPPORTED FORMATS:")
	fmt.Println("  - iNES (.nes), mapper 0 (NROM), 1 (MMC1), 2 (UxROM), 3 (CNROM), 4 (MMC3)")
}
