package main

import (
	"flag"
	"os"

	"linux-lavalamp/internal/convert"
	"linux-lavalamp/internal/headless"
	"linux-lavalamp/internal/utils"
)

func main() {
	configPath := flag.String("config", "", "Path to a JSON lamp config (defaults apply to missing fields)")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	debugFlag := flag.Bool("debug", false, "Shorthand for -log-level debug")
	debugUI := flag.Bool("debug-ui", false, "Show the debug overlay (toggle with F8)")
	raylibInfo := flag.Bool("raylib-info", false, "Forward raylib info logs at the current level")
	noColor := flag.Bool("no-color", false, "Disable coloured log output")
	scale := flag.Float64("scale", 0, "Presentation scale override")
	seed := flag.Int64("seed", 0, "Random seed override")
	watchX11 := flag.Bool("x11", false, "Follow the X11 root window size (wallpaper mode)")

	headlessMode := flag.Bool("headless", false, "Render without a window using the software backend")
	frames := flag.Int("frames", 120, "Frames to render in headless mode")
	outDir := flag.String("out", "", "Directory for PNG snapshots in headless mode")
	every := flag.Int("every", 30, "Snapshot every N frames in headless mode")
	capturePath := flag.String("capture", "", "Record composed frames to an lz4 capture file in headless mode")
	resizes := flag.String("resize", "", "Headless resize schedule, e.g. 30:1280x720,90:640x480")

	packDir := flag.String("pack", "", "Pack every PNG/JPEG under this directory into .tex textures and exit")
	flag.Parse()

	utils.NoColor = *noColor
	utils.ShowDebugUI = *debugUI
	utils.ShowRaylibInfo = *raylibInfo
	level, err := utils.ParseLevel(*logLevel)
	if err != nil {
		utils.Error("%v", err)
		os.Exit(2)
	}
	utils.CurrentLevel = level
	if *debugFlag {
		utils.CurrentLevel = utils.LevelDebug
	}

	if *packDir != "" {
		if _, err := convert.ConvertDir(*packDir, ""); err != nil {
			utils.Error("Failed to pack %s: %v", *packDir, err)
			os.Exit(1)
		}
		return
	}

	utils.Info("--- Lava Lamp Start ---")

	cfg, err := loadConfig(*configPath, overrides{Scale: *scale, Seed: *seed})
	if err != nil {
		utils.Error("Failed to load config: %v", err)
		os.Exit(1)
	}
	backdrop := loadBackdrop(cfg, *configPath)

	if *headlessMode {
		schedule, err := headless.ParseSchedule(*resizes)
		if err != nil {
			utils.Error("Bad -resize: %v", err)
			os.Exit(2)
		}
		_, err = headless.Run(cfg, backdrop, headless.Options{
			Frames:  *frames,
			OutDir:  *outDir,
			Every:   *every,
			Capture: *capturePath,
			Resizes: schedule,
		})
		if err != nil {
			utils.Error("Headless run failed: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := runWindow(cfg, backdrop, *watchX11); err != nil {
		utils.Error("Window run failed: %v", err)
		os.Exit(1)
	}
}
