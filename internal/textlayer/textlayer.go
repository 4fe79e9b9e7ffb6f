// Package textlayer draws the lamp's caption twice: once in the foreground
// colour behind the blobs and once in the background colour clipped to
// the blob surface, so the text appears inverted wherever a blob passes.
package textlayer

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	"linux-lavalamp/internal/config"
	"linux-lavalamp/internal/geometry"
	"linux-lavalamp/internal/utils"
)

var (
	ErrNoMask       = errors.New("no mask received yet")
	ErrMaskMismatch = errors.New("blob image does not match mask")
)

// LineHeight is the baseline step as a multiple of the font size.
const LineHeight = 1.05

// Line is one caption line centred at X, Y in logical container space.
type Line struct {
	Text string
	X, Y float64
}

type Layer struct {
	cfg    config.TextConfig
	font   *truetype.Font
	faces  map[float64]font.Face
	mask   geometry.MaskDescriptor
	masked bool
}

func New(cfg config.TextConfig) (*Layer, error) {
	if _, err := config.ParseColor(cfg.Foreground); err != nil {
		return nil, fmt.Errorf("%w: text.foreground: %v", config.ErrInvalid, err)
	}
	if _, err := config.ParseColor(cfg.Background); err != nil {
		return nil, fmt.Errorf("%w: text.background: %v", config.ErrInvalid, err)
	}
	f, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %v", err)
	}
	return &Layer{cfg: cfg, font: f, faces: make(map[float64]font.Face)}, nil
}

// ApplyMask records where the blob surface sits.
func (l *Layer) ApplyMask(m geometry.MaskDescriptor) {
	if l.masked && m == l.mask {
		return
	}
	l.mask = m
	l.masked = true
	utils.Debug("Text layer: mask %s at (%.0f, %.0f)", m.Size, m.Position.X, m.Position.Y)
}

func (l *Layer) Mask() (geometry.MaskDescriptor, bool) { return l.mask, l.masked }

// Lines lays the caption out centred in the container.
func (l *Layer) Lines(container geometry.Size) []Line {
	n := len(l.cfg.Lines)
	step := l.cfg.FontSize * LineHeight
	top := float64(container.H)/2 - step*float64(n)/2

	lines := make([]Line, 0, n)
	for i, s := range l.cfg.Lines {
		lines = append(lines, Line{
			Text: s,
			X:    float64(container.W) / 2,
			Y:    top + step*(float64(i)+0.5),
		})
	}
	return lines
}

func (l *Layer) face(ratio float64) font.Face {
	size := l.cfg.FontSize * ratio
	if f, ok := l.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(l.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	l.faces[size] = f
	return f
}

func (l *Layer) drawText(dc *gg.Context, container geometry.Size, ratio float64, hex string) {
	dc.SetFontFace(l.face(ratio))
	dc.SetColor(config.MustColor(hex))
	for _, ln := range l.Lines(container) {
		dc.DrawStringAnchored(ln.Text, ln.X*ratio, ln.Y*ratio, 0.5, 0.35)
	}
}

// MaskAlpha places the blob image at `at` on a canvas-sized alpha mask.
func MaskAlpha(blobs image.Image, canvas geometry.Size, at image.Point) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, canvas.W, canvas.H))
	b := blobs.Bounds()
	draw.Draw(mask, image.Rectangle{Min: at, Max: at.Add(b.Size())}, blobs, b.Min, draw.Src)
	return mask
}

// Compose renders one full frame at physical resolution. backdrop and
// particles may be nil.
func (l *Layer) Compose(g geometry.Geometry, backdrop, blobs, particles image.Image) (image.Image, error) {
	if !l.masked {
		return nil, ErrNoMask
	}
	want := geometry.PhysicalSize(l.mask.Size, g.Ratio)
	got := blobs.Bounds().Size()
	if got.X != want.W || got.Y != want.H {
		return nil, fmt.Errorf("%w: image %dx%d, mask %s @%.2fx wants %s",
			ErrMaskMismatch, got.X, got.Y, l.mask.Size, g.Ratio, want)
	}

	canvas := geometry.PhysicalSize(g.Container, g.Ratio)
	dc := gg.NewContext(canvas.W, canvas.H)
	dc.SetColor(config.MustColor(l.cfg.Background))
	dc.Clear()

	if backdrop != nil {
		bb := backdrop.Bounds()
		dc.Push()
		dc.Scale(float64(canvas.W)/float64(bb.Dx()), float64(canvas.H)/float64(bb.Dy()))
		dc.DrawImage(backdrop, 0, 0)
		dc.Pop()
	}

	l.drawText(dc, g.Container, g.Ratio, l.cfg.Foreground)

	origin := l.mask.Resolve(g.Container)
	at := image.Pt(int(math.Round(origin.X*g.Ratio)), int(math.Round(origin.Y*g.Ratio)))
	dc.DrawImage(blobs, at.X, at.Y)
	if particles != nil {
		dc.DrawImage(particles, at.X, at.Y)
	}

	if err := dc.SetMask(MaskAlpha(blobs, canvas, at)); err != nil {
		return nil, err
	}
	l.drawText(dc, g.Container, g.Ratio, l.cfg.Background)
	dc.ResetClip()

	return dc.Image(), nil
}
