// Package rlgl backs surfaces with raylib render textures. Every call must
// happen on the thread that owns the raylib window.
package rlgl

import (
	"errors"
	"fmt"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"linux-lavalamp/internal/engine2D"
	"linux-lavalamp/internal/utils"
)

// Soft circles are drawn as this many concentric rings.
const softSteps = 12

var errNoWindow = errors.New("raylib window is not ready")

type Backend struct{}

func (Backend) Name() string { return "raylib" }

func (Backend) NewTarget(w, h int) (engine2D.Target, error) {
	if !rl.IsWindowReady() {
		return nil, errNoWindow
	}
	t := &Target{}
	if err := t.Resize(w, h); err != nil {
		return nil, err
	}
	return t, nil
}

type Target struct {
	rt     rl.RenderTexture2D
	loaded bool
}

func (t *Target) Size() (int, int) {
	if !t.loaded {
		return 0, 0
	}
	return int(t.rt.Texture.Width), int(t.rt.Texture.Height)
}

func (t *Target) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("render texture size %dx%d out of range", w, h)
	}
	if cw, ch := t.Size(); cw == w && ch == h {
		return nil
	}

	rt := rl.LoadRenderTexture(int32(w), int32(h))
	if rt.ID == 0 {
		return fmt.Errorf("render texture %dx%d could not be created", w, h)
	}
	if t.loaded {
		rl.UnloadRenderTexture(t.rt)
	}
	rl.SetTextureFilter(rt.Texture, rl.FilterBilinear)
	t.rt = rt
	t.loaded = true
	utils.Debug("rlgl: render texture %d is %dx%d", rt.ID, w, h)
	return nil
}

func (t *Target) Begin() { rl.BeginTextureMode(t.rt) }

func (t *Target) Clear() { rl.ClearBackground(rl.Blank) }

func (t *Target) FillCircle(x, y, r float64, c color.NRGBA) {
	rl.DrawCircleV(rl.NewVector2(float32(x), float32(y)), float32(r), rl.NewColor(c.R, c.G, c.B, c.A))
}

// FillSoftCircle draws an opaque core and fades the outer softness band
// to transparent with stacked rings.
func (t *Target) FillSoftCircle(x, y, r, softness float64, c color.NRGBA) {
	if softness <= 0 {
		t.FillCircle(x, y, r, c)
		return
	}
	centre := rl.NewVector2(float32(x), float32(y))
	core := r * (1 - softness)
	band := r - core
	ring := rl.NewColor(c.R, c.G, c.B, uint8(float64(c.A)/softSteps))
	for i := softSteps; i > 0; i-- {
		f := float64(i) / softSteps
		rl.DrawCircleV(centre, float32(core+band*f), ring)
	}
	rl.DrawCircleV(centre, float32(core), rl.NewColor(c.R, c.G, c.B, c.A))
}

func (t *Target) End() { rl.EndTextureMode() }

func (t *Target) Release() {
	if t.loaded {
		rl.UnloadRenderTexture(t.rt)
		t.loaded = false
	}
}

// Texture returns the colour attachment of a raylib surface.
func Texture(s *engine2D.Surface) (rl.Texture2D, bool) {
	if s == nil {
		return rl.Texture2D{}, false
	}
	t, ok := s.Target.(*Target)
	if !ok || !t.loaded {
		return rl.Texture2D{}, false
	}
	return t.rt.Texture, true
}

// DrawSurface draws s into dest. Render textures are stored upside down.
func DrawSurface(s *engine2D.Surface, dest rl.Rectangle) {
	tex, ok := Texture(s)
	if !ok {
		return
	}
	src := rl.NewRectangle(0, 0, float32(tex.Width), -float32(tex.Height))
	rl.DrawTexturePro(tex, src, dest, rl.NewVector2(0, 0), 0, rl.White)
}
