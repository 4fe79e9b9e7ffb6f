// Package headless steps a session on the software backend and writes
// composed frames as PNG snapshots or an lz4 capture.
package headless

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fogleman/gg"

	"linux-lavalamp/internal/capture"
	"linux-lavalamp/internal/config"
	"linux-lavalamp/internal/engine2D"
	"linux-lavalamp/internal/engine2D/soft"
	"linux-lavalamp/internal/geometry"
	"linux-lavalamp/internal/textlayer"
	"linux-lavalamp/internal/utils"
)

type Options struct {
	Frames  int
	OutDir  string
	Every   int
	Capture string
	Resizes []ResizeStep
}

// Run steps the session at a fixed rate and writes composed frames out.
// Frames are identical across runs with the same config.
func Run(cfg config.Config, backdrop image.Image, opts Options) (engine2D.Stats, error) {
	container := geometry.Size{W: cfg.Container.Width, H: cfg.Container.Height}
	session, err := engine2D.NewSession(cfg, soft.Backend{}, engine2D.LayoutFor(cfg, container, 1))
	if err != nil {
		return engine2D.Stats{}, err
	}
	defer session.Dispose()

	text, err := textlayer.New(cfg.Text)
	if err != nil {
		return engine2D.Stats{}, err
	}
	session.Subscribe(text)

	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
			return engine2D.Stats{}, err
		}
	}
	var rec *capture.Recorder
	if opts.Capture != "" {
		if rec, err = capture.Create(opts.Capture, cfg.FPS); err != nil {
			return engine2D.Stats{}, err
		}
		defer func() {
			if rec != nil {
				rec.Close()
			}
		}()
	}
	if opts.Every <= 0 {
		opts.Every = 1
	}

	dt := 1.0 / float64(cfg.FPS)
	next, skipped := 0, 0
	for i := 0; i < opts.Frames; i++ {
		for next < len(opts.Resizes) && opts.Resizes[next].Frame == i {
			step := opts.Resizes[next]
			if err := session.Resize(engine2D.LayoutFor(cfg, step.Container, 1)); err != nil {
				utils.Warn("Headless: resize at frame %d: %v", i, err)
			}
			next++
		}

		if err := session.Frame(dt); err != nil {
			return engine2D.Stats{}, err
		}

		snapshot := opts.OutDir != "" && (i%opts.Every == 0 || i == opts.Frames-1)
		if !snapshot && rec == nil {
			continue
		}
		// A surface whose reallocation failed has stale pixels; its draw
		// was skipped and so is this frame's output.
		if !session.BlobSurface().Ready() || !session.ParticleSurface().Ready() {
			skipped++
			utils.Debug("Headless: frame %d not composed, surfaces not ready", i)
			continue
		}
		img, err := text.Compose(session.Geometry(), backdrop,
			soft.ImageOf(session.BlobSurface()), soft.ImageOf(session.ParticleSurface()))
		if err != nil {
			return session.Stats(), fmt.Errorf("frame %d: %w", i, err)
		}
		if rec != nil {
			if err := rec.Add(img); err != nil {
				return session.Stats(), fmt.Errorf("capture frame %d: %w", i, err)
			}
		}
		if snapshot {
			path := filepath.Join(opts.OutDir, fmt.Sprintf("frame_%05d.png", i))
			if err := gg.NewContextForImage(img).SavePNG(path); err != nil {
				return engine2D.Stats{}, err
			}
			utils.Debug("Headless: wrote %s", path)
		}
	}

	if rec != nil {
		err := rec.Close()
		rec = nil
		if err != nil {
			return session.Stats(), fmt.Errorf("capture: %w", err)
		}
	}

	st := session.Stats()
	utils.Info("Headless: %d frames (%d not composed), %d resizes, %d skipped draws, %d bounces",
		st.Frames, skipped, st.Resizes, st.SkippedDraws, st.Bounces)
	return st, nil
}

// ResizeStep resizes the container before frame Frame.
type ResizeStep struct {
	Frame     int
	Container geometry.Size
}

// ParseSchedule reads "frame:WxH" steps separated by commas.
func ParseSchedule(s string) ([]ResizeStep, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var steps []ResizeStep
	for _, part := range strings.Split(s, ",") {
		at, size, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("step %q: want frame:WxH", part)
		}
		frame, err := strconv.Atoi(at)
		if err != nil || frame < 0 {
			return nil, fmt.Errorf("step %q: bad frame", part)
		}
		ws, hs, ok := strings.Cut(size, "x")
		if !ok {
			return nil, fmt.Errorf("step %q: want WxH", part)
		}
		w, errW := strconv.Atoi(ws)
		h, errH := strconv.Atoi(hs)
		if errW != nil || errH != nil || w <= 0 || h <= 0 {
			return nil, fmt.Errorf("step %q: bad size", part)
		}
		steps = append(steps, ResizeStep{Frame: frame, Container: geometry.Size{W: w, H: h}})
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Frame < steps[j].Frame })
	return steps, nil
}
