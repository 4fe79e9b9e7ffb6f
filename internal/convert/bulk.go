package convert

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"linux-lavalamp/internal/utils"
)

func isSourceImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// ConvertDir packs every PNG/JPEG under root into a .tex next to it, or
// into outDir when set. Failures are logged and skipped.
func ConvertDir(root, outDir string) (int, error) {
	utils.Info("Packing backdrop images under %s...", root)
	var converted int32
	var wg sync.WaitGroup

	// Limit concurrency to avoid RAM spikes
	const maxConcurrency = 8
	sem := make(chan struct{}, maxConcurrency)

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return 0, err
		}
	}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !isSourceImage(path) {
			return nil
		}
		dest := strings.TrimSuffix(path, filepath.Ext(path)) + ".tex"
		if outDir != "" {
			dest = filepath.Join(outDir, filepath.Base(dest))
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(src, dest string) {
			defer wg.Done()
			defer func() { <-sem }()
			img, err := LoadImage(src)
			if err == nil {
				err = SaveImage(dest, img)
			}
			if err != nil {
				utils.Error("Failed to pack %s: %v", src, err)
				return
			}
			atomic.AddInt32(&converted, 1)
		}(path, dest)
		return nil
	})

	wg.Wait()
	utils.Info("Packing finished. Wrote %d textures.", converted)
	return int(converted), err
}
