package particlefield

import (
	"errors"
	"time"
)

// recordingSurface counts draw calls and remembers the last frame's ops.
type recordingSurface struct {
	width, height int
	scale         float64
	resizes       int

	clears, fills int
	lines         int
	circles       int
	polygons      int
	glyphs        int

	lastFill   Color
	lineAlphas []float64
}

func (s *recordingSurface) Resize(width, height int, scale float64) {
	s.width, s.height, s.scale = width, height, scale
	s.resizes++
}

func (s *recordingSurface) Clear() {
	s.clears++
	s.lineAlphas = s.lineAlphas[:0]
}

func (s *recordingSurface) Fill(c Color) {
	s.fills++
	s.lastFill = c
	s.lineAlphas = s.lineAlphas[:0]
}

func (s *recordingSurface) StrokeLine(x0, y0, x1, y1, width float64, c Color) {
	s.lines++
	s.lineAlphas = append(s.lineAlphas, c.A)
}

func (s *recordingSurface) FillCircle(cx, cy, r float64, c Color) { s.circles++ }

func (s *recordingSurface) StrokePolygon(pts []Vec2, width float64, c Color) { s.polygons++ }

func (s *recordingSurface) DrawGlyph(x, y float64, ch rune, size float64, c Color) { s.glyphs++ }

func (s *recordingSurface) drawCalls() int {
	return s.lines + s.circles + s.polygons + s.glyphs
}

// fakeContainer hands out recordingSurfaces and tracks attach/detach.
type fakeContainer struct {
	bounds    Rect
	ratio     float64
	attachErr error

	surface  *recordingSurface
	attaches int
	detaches int
}

func newFakeContainer(w, h float64) *fakeContainer {
	return &fakeContainer{bounds: Rect{Width: w, Height: h}, ratio: 1}
}

func (c *fakeContainer) Bounds() Rect        { return c.bounds }
func (c *fakeContainer) PixelRatio() float64 { return c.ratio }

func (c *fakeContainer) Attach(width, height int, scale float64) (Surface, error) {
	c.attaches++
	if c.attachErr != nil {
		return nil, c.attachErr
	}
	c.surface = &recordingSurface{width: width, height: height, scale: scale}
	return c.surface, nil
}

func (c *fakeContainer) Detach(s Surface) {
	c.detaches++
}

var errNoCanvas = errors.New("no 2d context")

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const frame60 = time.Second / 60

// newTestField builds a field on a fake container driven by a manual
// scheduler, with a fixed seed.
func newTestField(w, h float64, cfg Config) (*Field, *fakeContainer, *ManualScheduler) {
	c := newFakeContainer(w, h)
	sched := NewManualScheduler(testEpoch)
	f := NewField(c, cfg, Options{Scheduler: sched, Seed: 1})
	return f, c, sched
}
