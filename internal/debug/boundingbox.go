package debug

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"linux-lavalamp/internal/engine2D"
	"linux-lavalamp/internal/geometry"
)

func (d *DebugOverlay) getBoundingBoxToggleRect() rl.Rectangle {
	return rl.NewRectangle(10, float32(d.lineHeight/2), float32(d.sidebarWidth-20), float32(d.lineHeight))
}

func (d *DebugOverlay) drawBoundingBoxToggle() {
	rect := d.getBoundingBoxToggleRect()

	boxSize := float32(d.fontHeight) * 1.2
	boxX := rect.X
	boxY := rect.Y + (rect.Height-boxSize)/2

	rl.DrawRectangleLines(int32(boxX), int32(boxY), int32(boxSize), int32(boxSize), rl.White)
	if d.ShowBoundingBoxes {
		rl.DrawRectangle(int32(boxX+2), int32(boxY+2), int32(boxSize-4), int32(boxSize-4), rl.White)
	}

	d.DrawText("Show Bounding Boxes (F9)", int32(boxX+boxSize+10), int32(boxY), int32(d.fontHeight), rl.White)
}

func (d *DebugOverlay) drawBoundingBoxes(s *engine2D.Session, view geometry.View) {
	g := s.Geometry()

	// Surface as the coordinator placed it.
	x, y, w, h := view.SurfaceRect(g)
	rl.DrawRectangleLines(int32(x), int32(y), int32(w), int32(h), rl.NewColor(0, 255, 0, 255))

	// Mask as published; drawn inset so a mismatch shows as two boxes.
	m := s.Mask()
	mg := g
	mg.Surface = m.Size
	mg.Anchor = m.Position
	mx, my, mw, mh := view.SurfaceRect(mg)
	rl.DrawRectangleLines(int32(mx)+2, int32(my)+2, int32(mw)-4, int32(mh)-4, rl.NewColor(255, 255, 0, 255))

	// Blob containment bounds.
	b := s.Config().Blobs.Margin
	rl.DrawRectangleLines(
		int32(x+w*b), int32(y+h*b),
		int32(w*(1-2*b)), int32(h*(1-2*b)),
		rl.NewColor(0, 255, 255, 100),
	)

	unit := w
	if h < w {
		unit = h
	}
	for _, blob := range s.Blobs() {
		cx := float32(x + blob.Position.X*w)
		cy := float32(y + blob.Position.Y*h)
		rl.DrawCircleLines(int32(cx), int32(cy), float32(blob.Radius*unit), rl.NewColor(255, 255, 0, 150))
		// Draw origin point as a small red rectangle
		rl.DrawRectangle(int32(cx-2), int32(cy-2), 4, 4, rl.Red)
	}
}
