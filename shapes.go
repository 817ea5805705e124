package particlefield

import (
	"log/slog"
	"math"
	"time"
)

// ShapeKind is the outline drawn for a Shape.
type ShapeKind int

const (
	ShapeTriangle ShapeKind = iota
	ShapeSquare
	ShapePentagon
	ShapeHexagon
	ShapeCircle
	shapeKinds
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeTriangle:
		return "triangle"
	case ShapeSquare:
		return "square"
	case ShapePentagon:
		return "pentagon"
	case ShapeHexagon:
		return "hexagon"
	case ShapeCircle:
		return "circle"
	}
	return "unknown"
}

const (
	circleSegments = 32 // polygon resolution of a stroked circle
	shapeLineWidth = 2
)

// ShapesConfig holds the geometric shapes parameters. Zero fields take
// defaults.
type ShapesConfig struct {
	Count   int     `yaml:"count"`
	MinSize float64 `yaml:"min_size"`
	MaxSize float64 `yaml:"max_size"`
	// Speed is the width of the random velocity range per axis.
	Speed float64 `yaml:"speed"`
	// RotationSpeed is the width of the random angular velocity range, in
	// radians per frame.
	RotationSpeed float64 `yaml:"rotation_speed"`
	// Opacity is the maximum outline alpha.
	Opacity float64 `yaml:"opacity"`
	Color   string  `yaml:"color"`

	color Color
}

// DefaultShapesConfig returns the built-in shapes parameters.
func DefaultShapesConfig() ShapesConfig {
	var c ShapesConfig
	c.normalize()
	return c
}

func (c *ShapesConfig) normalize() {
	c.Count = defaultInt(c.Count, 15, 0)
	c.MinSize = defaultFloat(c.MinSize, 30, 1)
	c.MaxSize = defaultFloat(c.MaxSize, 100, 1)
	if c.MaxSize < c.MinSize {
		c.MinSize, c.MaxSize = c.MaxSize, c.MinSize
	}
	c.Speed = defaultFloat(c.Speed, 0.3, 0)
	c.RotationSpeed = defaultFloat(c.RotationSpeed, 0.01, 0)
	c.Opacity = math.Min(defaultFloat(c.Opacity, 0.1, 0.01), 1)
	c.color = resolveColor(c.Color, builtinDefaults.Color)
}

// Shape is one drifting outline.
type Shape struct {
	Kind     ShapeKind
	X, Y     float64
	VX, VY   float64
	Size     float64
	Rotation float64
	Spin     float64
	Opacity  float64
}

// outline returns the closed vertex list of s in world space, appended to dst.
func (s *Shape) outline(dst []Vec2) []Vec2 {
	half := s.Size / 2
	var local []Vec2
	switch s.Kind {
	case ShapeTriangle:
		local = []Vec2{{0, -half}, {-half, half}, {half, half}}
	case ShapeSquare:
		local = []Vec2{{-half, -half}, {half, -half}, {half, half}, {-half, half}}
	case ShapePentagon:
		local = regularPolygon(5, half)
	case ShapeHexagon:
		local = regularPolygon(6, half)
	default:
		local = regularPolygon(circleSegments, half)
	}
	sin, cos := math.Sincos(s.Rotation)
	for _, p := range local {
		dst = append(dst, Vec2{
			X: s.X + p.X*cos - p.Y*sin,
			Y: s.Y + p.X*sin + p.Y*cos,
		})
	}
	return dst
}

func regularPolygon(sides int, radius float64) []Vec2 {
	pts := make([]Vec2, sides)
	for i := range pts {
		a := float64(i) * 2 * math.Pi / float64(sides)
		pts[i] = Vec2{X: math.Cos(a) * radius, Y: math.Sin(a) * radius}
	}
	return pts
}

// Shapes draws slowly drifting, rotating geometric outlines.
type Shapes struct {
	effect

	cfg    ShapesConfig
	shapes []Shape
	pts    []Vec2
}

// NewShapes attaches a geometric shapes effect to container. It never fails;
// without a container, scheduler or surface it returns a disabled Shapes.
func NewShapes(container Container, cfg ShapesConfig, opts Options) *Shapes {
	cfg.normalize()
	s := &Shapes{cfg: cfg}
	sched, ok := s.attach("geometric shapes", container, opts)
	if !ok {
		return s
	}
	s.debounce = builtinDefaults.ResizeDebounce
	s.seed()
	s.loop = startLoop(sched, s.frame)
	s.logger.Info("geometric shapes started", slog.Int("shapes", len(s.shapes)))
	return s
}

func (s *Shapes) live() bool {
	return s != nil && s.effect.live()
}

// Enabled reports whether the effect is running.
func (s *Shapes) Enabled() bool { return s.live() }

// Shapes returns the live shape slice. Callers MUST NOT retain it.
func (s *Shapes) Shapes() []Shape {
	if !s.live() {
		return nil
	}
	return s.shapes
}

// Resize re-measures the container. Shapes keep their positions and wrap
// into the new bounds on their own.
func (s *Shapes) Resize() {
	if !s.live() {
		return
	}
	s.remeasure()
}

// NotifyResize schedules a debounced Resize.
func (s *Shapes) NotifyResize() {
	if !s.live() {
		return
	}
	s.notifyResize()
}

// Destroy stops the effect and detaches its surface. Idempotent.
func (s *Shapes) Destroy() {
	if s == nil || !s.teardown() {
		return
	}
	s.shapes = nil
}

func (s *Shapes) seed() {
	c := &s.cfg
	s.shapes = s.shapes[:0]
	for range c.Count {
		s.shapes = append(s.shapes, Shape{
			Kind:     ShapeKind(s.rng.IntN(int(shapeKinds))),
			X:        s.rng.Float64() * s.width,
			Y:        s.rng.Float64() * s.height,
			Size:     s.rng.Float64()*(c.MaxSize-c.MinSize) + c.MinSize,
			Rotation: s.rng.Float64() * 2 * math.Pi,
			Spin:     (s.rng.Float64() - 0.5) * c.RotationSpeed,
			VX:       (s.rng.Float64() - 0.5) * c.Speed,
			VY:       (s.rng.Float64() - 0.5) * c.Speed,
			Opacity:  s.rng.Float64() * c.Opacity,
		})
	}
}

func (s *Shapes) frame(now time.Time) {
	if !s.live() {
		return
	}
	if s.resizeDue(now) {
		s.Resize()
	}
	updateShapes(s.shapes, s.width, s.height)

	s.surface.Clear()
	for i := range s.shapes {
		sh := &s.shapes[i]
		s.pts = sh.outline(s.pts[:0])
		s.surface.StrokePolygon(s.pts, shapeLineWidth, s.cfg.color.WithAlpha(sh.Opacity))
	}
}

// updateShapes advances and rotates every shape. A shape wraps to the far
// edge once it is fully outside by its own size.
func updateShapes(shapes []Shape, w, h float64) {
	for i := range shapes {
		s := &shapes[i]
		s.X += s.VX
		s.Y += s.VY
		s.Rotation += s.Spin

		switch {
		case s.X < -s.Size:
			s.X = w + s.Size
		case s.X > w+s.Size:
			s.X = -s.Size
		}
		switch {
		case s.Y < -s.Size:
			s.Y = h + s.Size
		case s.Y > h+s.Size:
			s.Y = -s.Size
		}
	}
}
