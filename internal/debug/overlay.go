package debug

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"linux-lavalamp/internal/engine2D"
	"linux-lavalamp/internal/geometry"
)

type DebugOverlay struct {
	ShowBoundingBoxes bool

	// UI State
	fontHeight   int
	lineHeight   int
	sidebarWidth int

	prevLeftMouseButton bool
	clicked             bool

	font          rl.Font
	monitorHeight int

	// Performance Monitoring
	lastUpdateTime time.Time
	frameCount     int
	fps            float64
	memStats       runtime.MemStats
}

func NewDebugOverlay() *DebugOverlay {
	monitor := rl.GetCurrentMonitor()

	d := &DebugOverlay{
		ShowBoundingBoxes: true,
		monitorHeight:     rl.GetMonitorHeight(monitor),
		lastUpdateTime:    time.Now(),
	}
	d.updateLayout()

	// Load system font
	fontPaths := []string{
		"/usr/share/fonts/TTF/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/liberation/LiberationSans-Regular.ttf",
		"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	}
	for _, path := range fontPaths {
		if _, err := os.Stat(path); err == nil {
			d.font = rl.LoadFontEx(path, 64, nil, 0)
			rl.SetTextureFilter(d.font.Texture, rl.FilterBilinear)
			break
		}
	}
	return d
}

func (d *DebugOverlay) updateLayout() {
	scale := math.Max(1.0, float64(d.monitorHeight)/1080.0)
	d.fontHeight = int(16 * scale)
	d.lineHeight = int(24 * scale)
	d.sidebarWidth = int(340 * scale)
}

func (d *DebugOverlay) Update() {
	d.frameCount++
	now := time.Now()
	if now.Sub(d.lastUpdateTime) >= time.Second {
		d.fps = float64(d.frameCount) / now.Sub(d.lastUpdateTime).Seconds()
		d.frameCount = 0
		d.lastUpdateTime = now
		runtime.ReadMemStats(&d.memStats)
	}

	mPos := rl.GetMousePosition()

	leftPressed := rl.IsMouseButtonDown(rl.MouseLeftButton)
	d.clicked = leftPressed && !d.prevLeftMouseButton
	d.prevLeftMouseButton = leftPressed

	toggle := d.getBoundingBoxToggleRect()
	if d.clicked && rl.CheckCollisionPointRec(mPos, toggle) {
		d.ShowBoundingBoxes = !d.ShowBoundingBoxes
	}
	if rl.IsKeyPressed(rl.KeyF9) {
		d.ShowBoundingBoxes = !d.ShowBoundingBoxes
	}
}

// Draw renders the side panel and, when enabled, the geometry outlines.
func (d *DebugOverlay) Draw(s *engine2D.Session, view geometry.View) {
	if d.ShowBoundingBoxes {
		d.drawBoundingBoxes(s, view)
	}

	sh := rl.GetScreenHeight()
	rl.DrawRectangle(0, 0, int32(d.sidebarWidth), int32(sh), rl.NewColor(0, 0, 0, 200))
	d.drawBoundingBoxToggle()

	y := int32(d.lineHeight * 2)
	for _, line := range d.lines(s, view) {
		d.DrawText(line, 10, y, int32(d.fontHeight), rl.White)
		y += int32(d.lineHeight)
	}
}

func (d *DebugOverlay) lines(s *engine2D.Session, view geometry.View) []string {
	g := s.Geometry()
	m := s.Mask()
	st := s.Stats()
	phys := g.Physical()
	return []string{
		fmt.Sprintf("FPS: %.1f", d.fps),
		fmt.Sprintf("Heap: %.1f MB", float64(d.memStats.HeapAlloc)/1024/1024),
		fmt.Sprintf("State: %s", s.State()),
		fmt.Sprintf("Container: %s", g.Container),
		fmt.Sprintf("Surface: %s @%.2fx -> %s", g.Surface, g.Ratio, phys),
		fmt.Sprintf("Mask: %s at (%.0f, %.0f)", m.Size, m.Position.X, m.Position.Y),
		fmt.Sprintf("Scale: %.2f, view %.2f", g.Scale, view.Scale),
		fmt.Sprintf("Frames: %d", st.Frames),
		fmt.Sprintf("Resizes: %d (%d coalesced, %d failed)", st.Resizes, s.Coalesced(), st.FailedResizes),
		fmt.Sprintf("Skipped draws: %d, heals: %d", st.SkippedDraws, st.Heals),
		fmt.Sprintf("Bounces: %d", st.Bounces),
	}
}

func (d *DebugOverlay) DrawText(text string, x, y int32, fontSize int32, color rl.Color) {
	if d.font.BaseSize > 0 {
		rl.DrawTextEx(d.font, text, rl.NewVector2(float32(x), float32(y)), float32(fontSize), 1, color)
	} else {
		rl.DrawText(text, x, y, fontSize, color)
	}
}

func (d *DebugOverlay) Unload() {
	if d.font.BaseSize > 0 {
		rl.UnloadFont(d.font)
	}
}
