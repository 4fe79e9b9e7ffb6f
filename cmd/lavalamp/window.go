package main

import (
	"context"
	"image"
	"image/color"
	"sync/atomic"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"golang.org/x/image/font/gofont/gobold"

	"linux-lavalamp/internal/config"
	"linux-lavalamp/internal/debug"
	"linux-lavalamp/internal/engine2D"
	"linux-lavalamp/internal/engine2D/rlgl"
	"linux-lavalamp/internal/geometry"
	"linux-lavalamp/internal/textlayer"
	"linux-lavalamp/internal/utils"
)

// Glyphs are rasterised at this multiple of the configured font size.
const fontOversample = 2

type Window struct {
	cfg     config.Config
	host    *engine2D.Host
	session *engine2D.Session
	text    *textlayer.Layer
	mask    *rlgl.MaskShader

	font        rl.Font
	backdrop    rl.Texture2D
	hasBackdrop bool
	fg, bg      rl.Color

	screen        geometry.Size
	view          geometry.View
	lastFrameTime time.Time

	// Latest X11 root size, applied to the window on the render thread.
	rootSize atomic.Pointer[geometry.Size]

	debugOverlay *debug.DebugOverlay
}

func runWindow(cfg config.Config, backdrop image.Image, watchX11 bool) error {
	rl.SetTraceLogCallback(utils.RaylibLogCallback)
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)

	width := int32(float64(cfg.Container.Width) * cfg.Scale)
	height := int32(float64(cfg.Container.Height) * cfg.Scale)
	rl.InitWindow(width, height, "Lava Lamp")
	defer rl.CloseWindow()

	window, err := NewWindow(cfg, backdrop)
	if err != nil {
		return err
	}
	defer window.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if watchX11 {
		window.watchRoot(ctx)
	}

	window.Run()
	return nil
}

func NewWindow(cfg config.Config, backdrop image.Image) (*Window, error) {
	window := &Window{
		cfg:           cfg,
		fg:            toRL(config.MustColor(cfg.Text.Foreground)),
		bg:            toRL(config.MustColor(cfg.Text.Background)),
		lastFrameTime: time.Now(),
		debugOverlay:  debug.NewDebugOverlay(),
	}
	window.screen = geometry.Size{W: rl.GetScreenWidth(), H: rl.GetScreenHeight()}
	window.host = engine2D.NewHost(cfg, float64(rl.GetWindowScaleDPI().X))

	session, err := engine2D.NewSession(cfg, rlgl.Backend{}, window.host.Layout(window.screen))
	if err != nil {
		return nil, err
	}
	window.session = session

	if window.text, err = textlayer.New(cfg.Text); err != nil {
		session.Dispose()
		return nil, err
	}
	session.Subscribe(window.text)

	if window.mask, err = rlgl.LoadMaskShader(); err != nil {
		// Without the shader the caption is drawn once, unclipped.
		utils.Warn("Mask: %v", err)
	}

	window.font = rl.LoadFontFromMemory(".ttf", gobold.TTF, int32(cfg.Text.FontSize*fontOversample), nil)
	rl.SetTextureFilter(window.font.Texture, rl.FilterBilinear)

	if backdrop != nil {
		img := rl.NewImageFromImage(backdrop)
		window.backdrop = rl.LoadTextureFromImage(img)
		rl.UnloadImage(img)
		window.hasBackdrop = window.backdrop.ID != 0
	}

	window.view = geometry.NewView(window.screen, session.Geometry(), cfg.ScalingMode)
	return window, nil
}

func toRL(c color.NRGBA) rl.Color { return rl.NewColor(c.R, c.G, c.B, c.A) }

func (window *Window) watchRoot(ctx context.Context) {
	display, err := utils.OpenX11()
	if err != nil {
		utils.Warn("X11: %v", err)
		return
	}
	// From here on the root watcher alone resizes the session, always with
	// the X11 ratio.
	window.host.FollowRoot(display.PixelRatio())
	utils.Info("X11: root pixel ratio %.2f", window.host.Ratio())

	resize := func(screen geometry.Size) {
		window.rootSize.Store(&screen)
		if err := window.session.Resize(window.host.Layout(screen)); err != nil {
			utils.Warn("X11: resize: %v", err)
		}
	}
	if w, h, err := display.RootSize(); err == nil {
		resize(geometry.Size{W: w, H: h})
	}

	go func() {
		err := display.WatchRoot(ctx, func(w, h int) {
			resize(geometry.Size{W: w, H: h})
		})
		if err != nil && ctx.Err() == nil {
			utils.Warn("X11: watcher stopped: %v", err)
		}
	}()
}

func (window *Window) Run() {
	rl.SetTargetFPS(int32(window.cfg.FPS))

	for !rl.WindowShouldClose() {
		if err := window.Update(); err != nil {
			utils.Error("Frame: %v", err)
			return
		}

		rl.BeginDrawing()
		window.Draw()
		rl.EndDrawing()
	}
}

func (window *Window) Update() error {
	currentTime := time.Now()
	deltaTime := currentTime.Sub(window.lastFrameTime).Seconds()
	window.lastFrameTime = currentTime

	if root := window.rootSize.Swap(nil); root != nil && *root != window.screen {
		rl.SetWindowSize(root.W, root.H)
	}

	if rl.IsWindowResized() {
		window.screen = geometry.Size{W: rl.GetScreenWidth(), H: rl.GetScreenHeight()}
		if layout, ok := window.host.WindowResized(window.screen); ok {
			if err := window.session.Resize(layout); err != nil {
				utils.Warn("Resize: %v", err)
			}
		}
	}

	if rl.IsKeyPressed(rl.KeyF8) {
		utils.ShowDebugUI = !utils.ShowDebugUI
	}

	if err := window.session.Frame(deltaTime); err != nil {
		return err
	}
	window.view = geometry.NewView(window.screen, window.session.Geometry(), window.cfg.ScalingMode)

	if utils.ShowDebugUI {
		window.debugOverlay.Update()
	}
	return nil
}

func (window *Window) Draw() {
	rl.ClearBackground(rl.Black)

	g := window.session.Geometry()
	view := window.view

	// Clip rendering to the wrapper so 'fill' mode does not overdraw.
	pw, ph := g.Presented()
	rl.BeginScissorMode(int32(view.OffsetX), int32(view.OffsetY), int32(pw*view.Scale), int32(ph*view.Scale))
	rl.ClearBackground(window.bg)

	if window.hasBackdrop {
		src := rl.NewRectangle(0, 0, float32(window.backdrop.Width), float32(window.backdrop.Height))
		dst := rl.NewRectangle(float32(view.OffsetX), float32(view.OffsetY), float32(pw*view.Scale), float32(ph*view.Scale))
		rl.DrawTexturePro(window.backdrop, src, dst, rl.NewVector2(0, 0), 0, rl.White)
	}

	window.drawCaption(g, window.fg)

	x, y, w, h := view.SurfaceRect(g)
	dest := rl.NewRectangle(float32(x), float32(y), float32(w), float32(h))
	rlgl.DrawSurface(window.session.BlobSurface(), dest)
	rlgl.DrawSurface(window.session.ParticleSurface(), dest)

	if window.mask != nil {
		if m, ok := window.text.Mask(); ok {
			mg := g
			mg.Surface, mg.Anchor = m.Size, m.Position
			mx, my, mw, mh := view.SurfaceRect(mg)
			rect := rl.NewRectangle(float32(mx), float32(my), float32(mw), float32(mh))
			if window.mask.Begin(window.session.BlobSurface(), rect, rl.GetWindowScaleDPI()) {
				window.drawCaption(g, window.bg)
				window.mask.End()
			}
		}
	}

	rl.EndScissorMode()

	if utils.ShowDebugUI {
		window.debugOverlay.Draw(window.session, view)
	}
}

func (window *Window) drawCaption(g geometry.Geometry, tint rl.Color) {
	size := float32(window.view.Length(g, window.cfg.Text.FontSize))
	for _, ln := range window.text.Lines(g.Container) {
		p := window.view.Point(g, geometry.Point{X: ln.X, Y: ln.Y})
		m := rl.MeasureTextEx(window.font, ln.Text, size, 0)
		pos := rl.NewVector2(float32(p.X)-m.X/2, float32(p.Y)-m.Y/2)
		rl.DrawTextEx(window.font, ln.Text, pos, size, 0, tint)
	}
}

func (window *Window) Close() {
	window.session.Dispose()
	if window.mask != nil {
		window.mask.Unload()
	}
	if window.hasBackdrop {
		rl.UnloadTexture(window.backdrop)
	}
	rl.UnloadFont(window.font)
	window.debugOverlay.Unload()
}
