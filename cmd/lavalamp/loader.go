package main

import (
	"image"
	"path/filepath"

	"linux-lavalamp/internal/config"
	"linux-lavalamp/internal/convert"
	"linux-lavalamp/internal/utils"
)

type overrides struct {
	Scale float64
	Seed  int64
}

func loadConfig(path string, o overrides) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if o.Scale != 0 {
		cfg.Scale = o.Scale
	}
	if o.Seed != 0 {
		cfg.Seed = o.Seed
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	utils.Info("Config loaded: %d blobs, %d particles, seed %d", cfg.Blobs.Count, cfg.Particles.Count, cfg.Seed)
	return cfg, nil
}

// loadBackdrop resolves and decodes the optional backdrop. A missing or
// broken backdrop is logged and skipped.
func loadBackdrop(cfg config.Config, configPath string) image.Image {
	if cfg.Backdrop == "" {
		return nil
	}
	dir := ""
	if configPath != "" {
		dir = filepath.Dir(configPath)
	}
	path := utils.FindImageFile(cfg.Backdrop, dir)
	if path == "" {
		utils.Warn("Could not resolve backdrop %s", cfg.Backdrop)
		return nil
	}
	img, err := convert.LoadImage(path)
	if err != nil {
		utils.Error("Failed to load backdrop from %s: %v", path, err)
		return nil
	}
	utils.Debug("Backdrop: %s (%dx%d)", path, img.Bounds().Dx(), img.Bounds().Dy())
	return img
}
