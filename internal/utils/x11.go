package utils

import (
	"context"
	"fmt"
	"math"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Display is a connection to the X server's default screen.
type Display struct {
	conn   *xgb.Conn
	root   xproto.Window
	screen *xproto.ScreenInfo
}

func OpenX11() (*Display, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	return &Display{conn: conn, root: screen.Root, screen: screen}, nil
}

// RootSize queries the current root window geometry.
func (d *Display) RootSize() (int, int, error) {
	reply, err := xproto.GetGeometry(d.conn, xproto.Drawable(d.root)).Reply()
	if err != nil {
		return 0, 0, err
	}
	return int(reply.Width), int(reply.Height), nil
}

// PixelRatio estimates the device pixel ratio from the screen's physical
// width.
func (d *Display) PixelRatio() float64 {
	return RatioFromDPI(int(d.screen.WidthInPixels), int(d.screen.WidthInMillimeters))
}

// RatioFromDPI maps a horizontal pixel density to a ratio against 96 dpi,
// rounded to quarter steps and never below 1.
func RatioFromDPI(px, mm int) float64 {
	if px <= 0 || mm <= 0 {
		return 1
	}
	dpi := float64(px) * 25.4 / float64(mm)
	r := math.Round(dpi/96*4) / 4
	return math.Max(r, 1)
}

// WatchRoot calls fn with the new root size on every ConfigureNotify until
// ctx is done. The connection is closed on return.
func (d *Display) WatchRoot(ctx context.Context, fn func(w, h int)) error {
	err := xproto.ChangeWindowAttributesChecked(d.conn, d.root, xproto.CwEventMask,
		[]uint32{xproto.EventMaskStructureNotify}).Check()
	if err != nil {
		d.conn.Close()
		return fmt.Errorf("select root events: %w", err)
	}

	stop := context.AfterFunc(ctx, d.conn.Close)
	defer stop()

	Debug("X11: watching root window %d", d.root)
	for {
		ev, xerr := d.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return ctx.Err()
		}
		if xerr != nil {
			Warn("X11: %v", xerr)
			continue
		}
		if cn, ok := ev.(xproto.ConfigureNotifyEvent); ok && cn.Window == d.root {
			Debug("X11: root configured to %dx%d", cn.Width, cn.Height)
			fn(int(cn.Width), int(cn.Height))
		}
	}
}

func (d *Display) Close() { d.conn.Close() }
