package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// AssetsDir is searched after the working directory's assets/ folder.
var AssetsDir = os.Getenv("LAVALAMP_ASSETS")

// Packed textures win over their source images.
var imageExtensions = []string{".tex", ".png", ".jpg", ".jpeg"}

func searchDirs(configDir string) []string {
	dirs := []string{""}
	if configDir != "" {
		dirs = append(dirs, configDir)
	}
	dirs = append(dirs, "assets")
	if AssetsDir != "" {
		dirs = append(dirs, AssetsDir)
	}
	return dirs
}

// FindImageFile resolves a backdrop name. It tries the name as given and
// with each known image extension, first relative to the working
// directory, then next to the config file, then in the asset folders.
// It returns "" when nothing matches.
func FindImageFile(name, configDir string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		if exists(name) {
			return name
		}
		return ""
	}

	clean := strings.TrimSuffix(name, filepath.Ext(name))
	for _, dir := range searchDirs(configDir) {
		p := filepath.Join(dir, name)
		if exists(p) {
			return p
		}
		for _, ext := range imageExtensions {
			p := filepath.Join(dir, clean+ext)
			if exists(p) {
				return p
			}
		}
	}
	return ""
}

func exists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
