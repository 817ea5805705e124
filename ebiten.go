package particlefield

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/gomono"
)

// PointerTarget receives the pointer and viewport notifications a Host reads
// from ebiten. Field implements it; Rain and Shapes implement the resize half
// through ResizeTarget.
type PointerTarget interface {
	PointerMove(x, y float64)
	PointerLeave()
	NotifyResize()
}

// ResizeTarget receives viewport resize notifications.
type ResizeTarget interface {
	NotifyResize()
}

// Host runs effects in an ebiten window. It is the Container the effects
// attach to, the Scheduler that delivers one frame per Update, and the
// ebiten.Game that composites every attached surface in Draw.
type Host struct {
	// Background is drawn beneath every layer.
	Background Color
	// ShowFPS draws an FPS/TPS overlay in the top-left corner.
	ShowFPS bool
	// Ratio overrides the monitor's device scale factor when positive.
	Ratio float64
	// OnUpdate runs once per tick before frames are delivered. Returning a
	// non-nil error ends the run loop.
	OnUpdate func() error

	queue   frameQueue
	layers  []*ebitenSurface // back to front
	targets []ResizeTarget
	pointer []PointerTarget

	width, height float64 // logical
	pendingW      float64
	pendingH      float64
	resized       bool
	screenScale   float64 // screen pixels per logical pixel

	cursorX, cursorY int
	cursorIn         bool

	fps        *ebiten.Image
	fpsElapsed float64
}

// NewHost returns a host whose logical size is width×height until ebiten
// reports the real layout.
func NewHost(width, height float64) *Host {
	return &Host{
		width:       width,
		height:      height,
		pendingW:    width,
		pendingH:    height,
		screenScale: 1,
		Background:  Color{R: 10.0 / 255, G: 10.0 / 255, B: 10.0 / 255, A: 1},
	}
}

// Track forwards pointer movement and resizes to t.
func (h *Host) Track(t PointerTarget) {
	if t == nil {
		return
	}
	h.pointer = append(h.pointer, t)
}

// TrackResize forwards resizes to t.
func (h *Host) TrackResize(t ResizeTarget) {
	if t == nil {
		return
	}
	h.targets = append(h.targets, t)
}

// Untrack drops every tracked target.
func (h *Host) Untrack() {
	h.pointer = h.pointer[:0]
	h.targets = h.targets[:0]
}

// Layers returns the number of attached surfaces.
func (h *Host) Layers() int { return len(h.layers) }

// Bounds implements Container.
func (h *Host) Bounds() Rect { return Rect{Width: h.width, Height: h.height} }

// PixelRatio implements Container.
func (h *Host) PixelRatio() float64 {
	if h.Ratio > 0 {
		return h.Ratio
	}
	if m := ebiten.Monitor(); m != nil {
		return m.DeviceScaleFactor()
	}
	return 1
}

// Attach implements Container. The new surface becomes the back-most layer.
func (h *Host) Attach(width, height int, scale float64) (Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrSurfaceUnavailable
	}
	s := newEbitenSurface(width, height, scale)
	h.layers = slices.Insert(h.layers, 0, s)
	return s, nil
}

// Detach implements Container.
func (h *Host) Detach(s Surface) {
	for i, l := range h.layers {
		if Surface(l) == s {
			h.layers = slices.Delete(h.layers, i, i+1)
			l.dispose()
			return
		}
	}
}

// ScheduleNextFrame implements Scheduler.
func (h *Host) ScheduleNextFrame(fn FrameFunc) FrameID {
	return h.queue.schedule(fn)
}

// Cancel implements Scheduler.
func (h *Host) Cancel(id FrameID) {
	h.queue.cancel(id)
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	if h.resized {
		h.resized = false
		h.width, h.height = h.pendingW, h.pendingH
		for _, t := range h.pointer {
			t.NotifyResize()
		}
		for _, t := range h.targets {
			t.NotifyResize()
		}
	}
	h.processCursor()

	if h.OnUpdate != nil {
		if err := h.OnUpdate(); err != nil {
			return err
		}
	}
	h.queue.run(time.Now())

	if h.ShowFPS {
		h.updateFPS(1 / float64(ebiten.TPS()))
	}
	return nil
}

// processCursor emits a move when the cursor changes position inside the
// window and a leave when it exits.
func (h *Host) processCursor() {
	cx, cy := ebiten.CursorPosition()
	x, y := h.toLogical(cx, cy)
	mx, my := int(x), int(y)
	in := ebiten.IsFocused() && h.Bounds().Contains(x, y)
	switch {
	case in && (!h.cursorIn || mx != h.cursorX || my != h.cursorY):
		for _, t := range h.pointer {
			t.PointerMove(x, y)
		}
	case !in && h.cursorIn:
		for _, t := range h.pointer {
			t.PointerLeave()
		}
	}
	h.cursorX, h.cursorY, h.cursorIn = mx, my, in
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	screen.Fill(toNRGBA(h.Background))
	sw := float64(screen.Bounds().Dx())
	for _, l := range h.layers {
		op := &ebiten.DrawImageOptions{}
		if lw := float64(l.img.Bounds().Dx()); lw > 0 {
			s := sw / lw
			op.GeoM.Scale(s, s)
		}
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(l.img, op)
	}
	if h.ShowFPS && h.fps != nil {
		screen.DrawImage(h.fps, nil)
	}
}

// Layout implements ebiten.Game. The screen is sized in device pixels so
// high-density layers keep their resolution; Bounds stays in logical pixels.
// Size changes are delivered as resize notifications on the next Update.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, hh := float64(outsideWidth), float64(outsideHeight)
	if w != h.pendingW || hh != h.pendingH {
		h.pendingW, h.pendingH = w, hh
		h.resized = true
	}
	s := h.PixelRatio()
	if !(s > 0) || math.IsInf(s, 0) {
		s = 1
	}
	h.screenScale = s
	return int(math.Ceil(w * s)), int(math.Ceil(hh * s))
}

// toLogical converts screen pixel coordinates to logical pixels.
func (h *Host) toLogical(x, y int) (float64, float64) {
	s := h.screenScale
	if s <= 0 {
		s = 1
	}
	return float64(x) / s, float64(y) / s
}

// updateFPS redraws the overlay about twice a second.
func (h *Host) updateFPS(dt float64) {
	if h.fps == nil {
		// 100x32 fits "FPS: 60.0\nTPS: 60.0".
		h.fps = ebiten.NewImage(100, 32)
		h.fpsElapsed = math.Inf(1)
	}
	h.fpsElapsed += dt
	if h.fpsElapsed < 0.5 {
		return
	}
	h.fpsElapsed = 0
	h.fps.Clear()
	h.fps.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(h.fps, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
}

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// Resizable lets the user resize the window.
	Resizable bool
}

// Run opens a window and blocks until it closes or OnUpdate fails.
func Run(h *Host, cfg RunConfig) error {
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		ebiten.SetWindowSize(cfg.Width, cfg.Height)
	}
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	if err := ebiten.RunGame(h); err != nil {
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}

// ebitenSurface is a Surface over an offscreen ebiten image sized in device
// pixels.
type ebitenSurface struct {
	img   *ebiten.Image
	scale float64
	faces map[float64]*text.GoTextFace
}

var monoSource *text.GoTextFaceSource

func glyphSource() *text.GoTextFaceSource {
	if monoSource == nil {
		src, err := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
		if err != nil {
			return nil
		}
		monoSource = src
	}
	return monoSource
}

func newEbitenSurface(width, height int, scale float64) *ebitenSurface {
	s := &ebitenSurface{faces: make(map[float64]*text.GoTextFace)}
	s.Resize(width, height, scale)
	return s
}

func (s *ebitenSurface) dispose() {
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
}

// Resize implements Surface.
func (s *ebitenSurface) Resize(width, height int, scale float64) {
	s.dispose()
	s.img = ebiten.NewImage(max(width, 1), max(height, 1))
	if scale <= 0 {
		scale = 1
	}
	s.scale = scale
}

// Clear implements Surface.
func (s *ebitenSurface) Clear() {
	s.img.Clear()
}

// Fill implements Surface. Unlike ebiten.Image.Fill it composites over the
// existing pixels.
func (s *ebitenSurface) Fill(c Color) {
	b := s.img.Bounds()
	vector.DrawFilledRect(s.img, 0, 0, float32(b.Dx()), float32(b.Dy()), toNRGBA(c), false)
}

// StrokeLine implements Surface.
func (s *ebitenSurface) StrokeLine(x0, y0, x1, y1, width float64, c Color) {
	if c.A <= 0 {
		return
	}
	k := s.scale
	vector.StrokeLine(s.img,
		float32(x0*k), float32(y0*k), float32(x1*k), float32(y1*k),
		float32(math.Max(width*k, 1)), toNRGBA(c), true)
}

// FillCircle implements Surface.
func (s *ebitenSurface) FillCircle(cx, cy, r float64, c Color) {
	if c.A <= 0 || r <= 0 {
		return
	}
	k := s.scale
	vector.DrawFilledCircle(s.img, float32(cx*k), float32(cy*k), float32(r*k), toNRGBA(c), true)
}

// StrokePolygon implements Surface.
func (s *ebitenSurface) StrokePolygon(pts []Vec2, width float64, c Color) {
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		s.StrokeLine(a.X, a.Y, b.X, b.Y, width, c)
	}
}

// DrawGlyph implements Surface.
func (s *ebitenSurface) DrawGlyph(x, y float64, ch rune, size float64, c Color) {
	if c.A <= 0 {
		return
	}
	face := s.face(size * s.scale)
	if face == nil {
		return
	}
	op := &text.DrawOptions{}
	// text.Draw positions the top of the line; shift up to the baseline.
	op.GeoM.Translate(x*s.scale, y*s.scale-face.Metrics().HAscent)
	op.ColorScale.ScaleWithColor(toNRGBA(c))
	text.Draw(s.img, string(ch), face, op)
}

func (s *ebitenSurface) face(size float64) *text.GoTextFace {
	if f, ok := s.faces[size]; ok {
		return f
	}
	src := glyphSource()
	if src == nil {
		return nil
	}
	f := &text.GoTextFace{Source: src, Size: size}
	s.faces[size] = f
	return f
}

// Snapshot implements Snapshotter. Valid only while the game loop runs.
func (s *ebitenSurface) Snapshot() image.Image {
	b := s.img.Bounds()
	rgba := image.NewRGBA(b)
	s.img.ReadPixels(rgba.Pix)
	out := image.NewNRGBA(b)
	draw.Draw(out, b, rgba, b.Min, draw.Src)
	return out
}
