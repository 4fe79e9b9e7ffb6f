package engine2D

import (
	"errors"
	"image/color"
	"sync"
	"testing"

	"linux-lavalamp/internal/config"
	"linux-lavalamp/internal/geometry"
)

type fakeTarget struct {
	w, h     int
	failNext int
	resizes  int
	circles  int
	released bool
}

func (t *fakeTarget) Size() (int, int) { return t.w, t.h }

func (t *fakeTarget) Resize(w, h int) error {
	if t.failNext > 0 {
		t.failNext--
		return errors.New("out of video memory")
	}
	t.w, t.h = w, h
	t.resizes++
	return nil
}

func (t *fakeTarget) Begin() {}
func (t *fakeTarget) Clear() {}
func (t *fakeTarget) End()   {}

func (t *fakeTarget) FillCircle(x, y, r float64, c color.NRGBA) { t.circles++ }

func (t *fakeTarget) FillSoftCircle(x, y, r, softness float64, c color.NRGBA) { t.circles++ }

func (t *fakeTarget) Release() { t.released = true }

type fakeBackend struct {
	fail    bool
	targets []*fakeTarget
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) NewTarget(w, h int) (Target, error) {
	if b.fail {
		return nil, errors.New("no context")
	}
	t := &fakeTarget{w: w, h: h}
	b.targets = append(b.targets, t)
	return t, nil
}

func wrapperLayout(w, h int, dpr float64) Layout {
	cfg := config.Default()
	return LayoutFor(cfg, geometry.Size{W: w, H: h}, dpr)
}

func newTestSession(t *testing.T, l Layout) (*Session, *fakeBackend) {
	t.Helper()
	b := &fakeBackend{}
	s, err := NewSession(config.Default(), b, l)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s, b
}

func TestInitialMaskMatchesSurface(t *testing.T) {
	s, _ := newTestSession(t, wrapperLayout(900, 600, 1))

	want := geometry.MaskDescriptor{
		Size:     geometry.Size{W: 450, H: 410},
		Position: geometry.Offset{X: -265, Y: -20},
	}
	if got := s.Mask(); got != want {
		t.Errorf("Expected mask %+v, got %+v", want, got)
	}
	if s.State() != StateRunning {
		t.Errorf("Expected running, got %s", s.State())
	}

	origin := s.Geometry().SurfaceOrigin()
	if origin.X != 185 || origin.Y != 280 {
		t.Errorf("Expected surface origin (185, 280), got (%v, %v)", origin.X, origin.Y)
	}
}

func TestHighDPIBufferIsCapped(t *testing.T) {
	s, b := newTestSession(t, wrapperLayout(900, 600, 3))

	for _, tgt := range b.targets {
		if tgt.w != 900 || tgt.h != 820 {
			t.Errorf("Expected buffer 900x820, got %dx%d", tgt.w, tgt.h)
		}
	}
	if got := s.Mask().Size; got != (geometry.Size{W: 450, H: 410}) {
		t.Errorf("Expected logical mask size 450x410, got %s", got)
	}
}

func TestLowDPIBufferShrinks(t *testing.T) {
	s, b := newTestSession(t, wrapperLayout(900, 600, 0.5))

	for _, tgt := range b.targets {
		if tgt.w != 225 || tgt.h != 205 {
			t.Errorf("Expected buffer 225x205, got %dx%d", tgt.w, tgt.h)
		}
	}
	if got := s.Geometry().Ratio; got != 0.5 {
		t.Errorf("Expected ratio 0.5, got %v", got)
	}
	if got := s.Mask().Size; got != (geometry.Size{W: 450, H: 410}) {
		t.Errorf("Expected logical mask size 450x410, got %s", got)
	}
}

func TestResizeAppliesOnNextFrame(t *testing.T) {
	cfg := config.Default()
	cfg.Surface.Fill = true
	b := &fakeBackend{}
	s, err := NewSession(cfg, b, LayoutFor(cfg, geometry.Size{W: 800, H: 600}, 1))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	var seen []geometry.MaskDescriptor
	s.Subscribe(MaskConsumerFunc(func(m geometry.MaskDescriptor) { seen = append(seen, m) }))

	if err := s.Resize(LayoutFor(cfg, geometry.Size{W: 1024, H: 768}, 1)); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if s.State() != StateResizing {
		t.Errorf("Expected resizing, got %s", s.State())
	}
	if err := s.Frame(1.0 / 60); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	if got := s.Mask().Size; got != (geometry.Size{W: 1024, H: 768}) {
		t.Errorf("Expected mask 1024x768 after one frame, got %s", got)
	}
	if !s.BlobSurface().Ready() || !s.ParticleSurface().Ready() {
		t.Error("Expected both surfaces reallocated within the frame")
	}
	if len(seen) != 2 {
		t.Fatalf("Expected 2 mask notifications, got %d", len(seen))
	}
	if seen[1] != s.Mask() {
		t.Errorf("Expected last notification %+v, got %+v", s.Mask(), seen[1])
	}
	if s.Stats().Heals != 0 {
		t.Errorf("Expected no heals, got %d", s.Stats().Heals)
	}
}

func TestIdempotentResize(t *testing.T) {
	l := wrapperLayout(900, 600, 2)
	s, b := newTestSession(t, l)
	if err := s.Frame(1.0 / 60); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	mask := s.Mask()
	blobs := append(s.Blobs()[:0:0], s.Blobs()...)

	notified := 0
	s.Subscribe(MaskConsumerFunc(func(geometry.MaskDescriptor) { notified++ }))
	notified = 0

	if err := s.Resize(l); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if err := s.Frame(0); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	if s.Mask() != mask {
		t.Errorf("Expected mask unchanged %+v, got %+v", mask, s.Mask())
	}
	if notified != 0 {
		t.Errorf("Expected no mask notification, got %d", notified)
	}
	for _, tgt := range b.targets {
		if tgt.resizes != 0 {
			t.Errorf("Expected no reallocation, got %d", tgt.resizes)
		}
	}
	for i, bl := range s.Blobs() {
		if bl.Position != blobs[i].Position {
			t.Errorf("Blob %d moved on a zero-length frame: %+v -> %+v", i, blobs[i].Position, bl.Position)
		}
	}
}

func TestConcurrentResizesCoalesce(t *testing.T) {
	cfg := config.Default()
	cfg.Surface.Fill = true
	s, err := NewSession(cfg, &fakeBackend{}, LayoutFor(cfg, geometry.Size{W: 640, H: 480}, 1))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Resize(LayoutFor(cfg, geometry.Size{W: 640 + i, H: 480}, 1))
		}(i)
	}
	wg.Wait()
	// The winner is whichever request landed last.
	final := geometry.Size{W: 1280, H: 720}
	if err := s.Resize(LayoutFor(cfg, final, 1)); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}

	if err := s.Frame(1.0 / 60); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if s.Coalesced() != 20 {
		t.Errorf("Expected 20 coalesced requests, got %d", s.Coalesced())
	}
	if s.Stats().Resizes != 1 {
		t.Errorf("Expected a single applied resize, got %d", s.Stats().Resizes)
	}
	if got := s.Mask().Size; got != final {
		t.Errorf("Expected mask %s, got %s", final, got)
	}
	if s.State() != StateRunning {
		t.Errorf("Expected running, got %s", s.State())
	}
}

func TestFailedReallocSkipsDrawThenRecovers(t *testing.T) {
	cfg := config.Default()
	cfg.Surface.Fill = true
	b := &fakeBackend{}
	s, err := NewSession(cfg, b, LayoutFor(cfg, geometry.Size{W: 300, H: 200}, 1))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	b.targets[0].failNext = 1

	if err := s.Resize(LayoutFor(cfg, geometry.Size{W: 600, H: 400}, 1)); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	circles := b.targets[0].circles
	if err := s.Frame(1.0 / 60); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	st := s.Stats()
	if st.FailedResizes != 1 {
		t.Errorf("Expected 1 failed resize, got %d", st.FailedResizes)
	}
	if st.SkippedDraws != 1 {
		t.Errorf("Expected 1 skipped draw, got %d", st.SkippedDraws)
	}
	if b.targets[0].circles != circles {
		t.Error("Expected nothing drawn into a mis-sized buffer")
	}
	// The mask follows the logical geometry even while the buffer lags.
	if got := s.Mask().Size; got != (geometry.Size{W: 600, H: 400}) {
		t.Errorf("Expected mask 600x400, got %s", got)
	}

	if err := s.Frame(1.0 / 60); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if !s.BlobSurface().Ready() {
		t.Error("Expected blob surface to recover on the next frame")
	}
	if b.targets[0].circles == circles {
		t.Error("Expected blobs drawn after recovery")
	}
}

func TestSurfaceUnavailable(t *testing.T) {
	_, err := NewSession(config.Default(), &fakeBackend{fail: true}, wrapperLayout(900, 600, 1))
	if !errors.Is(err, ErrSurfaceUnavailable) {
		t.Errorf("Expected ErrSurfaceUnavailable, got %v", err)
	}
}

func TestInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		layout Layout
	}{
		{"empty container", func(*config.Config) {}, Layout{Surface: geometry.Size{W: 10, H: 10}}},
		{"empty surface", func(*config.Config) {}, Layout{Container: geometry.Size{W: 10, H: 10}}},
		{"zero blobs", func(c *config.Config) { c.Blobs.Count = 0 }, wrapperLayout(900, 600, 1)},
		{"negative speed", func(c *config.Config) { c.Particles.MinSpeed = -1 }, wrapperLayout(900, 600, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			_, err := NewSession(cfg, &fakeBackend{}, tt.layout)
			if !errors.Is(err, config.ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestResizeRejectsEmptyLayout(t *testing.T) {
	s, _ := newTestSession(t, wrapperLayout(900, 600, 1))
	if err := s.Resize(Layout{}); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("Expected ErrInvalid for empty layout, got %v", err)
	}
	if s.State() != StateRunning {
		t.Errorf("Expected running, got %s", s.State())
	}
}

func TestDispose(t *testing.T) {
	s, b := newTestSession(t, wrapperLayout(900, 600, 1))
	s.Dispose()
	s.Dispose()

	if s.State() != StateDisposed {
		t.Errorf("Expected disposed, got %s", s.State())
	}
	for i, tgt := range b.targets {
		if !tgt.released {
			t.Errorf("Expected target %d released", i)
		}
	}
	if err := s.Frame(1.0 / 60); !errors.Is(err, ErrDisposed) {
		t.Errorf("Expected ErrDisposed from Frame, got %v", err)
	}
	if err := s.Resize(wrapperLayout(100, 100, 1)); !errors.Is(err, ErrDisposed) {
		t.Errorf("Expected ErrDisposed from Resize, got %v", err)
	}
}

func TestMaskHealsAfterDrift(t *testing.T) {
	s, _ := newTestSession(t, wrapperLayout(900, 600, 1))
	// Simulate a surface changed behind the synchronizer's back.
	s.blobSurface.anchor = geometry.Offset{X: 12, Y: 34}

	if err := s.Frame(1.0 / 60); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if s.Stats().Heals != 1 {
		t.Errorf("Expected 1 heal, got %d", s.Stats().Heals)
	}
	if got := s.Mask().Position; got != (geometry.Offset{X: 12, Y: 34}) {
		t.Errorf("Expected mask position to follow surface, got %+v", got)
	}
}
