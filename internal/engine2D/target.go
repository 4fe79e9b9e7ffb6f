package engine2D

import (
	"errors"
	"image/color"
)

var (
	// ErrSurfaceUnavailable means the backend could not hand out a drawing
	// target. It is fatal at session construction.
	ErrSurfaceUnavailable = errors.New("render surface unavailable")
	// ErrDisposed is returned by frames requested after Dispose.
	ErrDisposed = errors.New("session disposed")
)

// Target is a pixel-addressable drawing buffer with an alpha channel.
// Coordinates are physical pixels.
type Target interface {
	Size() (w, h int)
	// Resize reallocates the buffer. On error the previous size is kept.
	Resize(w, h int) error
	Begin()
	Clear()
	FillCircle(x, y, r float64, c color.NRGBA)
	// FillSoftCircle draws a disc opaque up to r*(1-softness) fading to
	// transparent at r.
	FillSoftCircle(x, y, r, softness float64, c color.NRGBA)
	End()
	Release()
}

// Backend creates targets. The software backend lives in engine2D/soft,
// the raylib one in engine2D/rlgl.
type Backend interface {
	Name() string
	NewTarget(w, h int) (Target, error)
}
