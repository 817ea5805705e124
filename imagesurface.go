package particlefield

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// ImageSurface is a headless software Surface backed by an *image.RGBA.
// It renders on the CPU with an anti-aliasing rasterizer and is used for
// screenshots, offline rendering and tests.
type ImageSurface struct {
	img    *image.RGBA
	scale  float64
	raster *vector.Rasterizer
	ring   []Vec2 // scratch polygon for discs
}

// NewImageSurface creates a transparent surface of width×height device pixels.
func NewImageSurface(width, height int, scale float64) *ImageSurface {
	s := &ImageSurface{}
	s.Resize(width, height, scale)
	return s
}

// Resize implements Surface.
func (s *ImageSurface) Resize(width, height int, scale float64) {
	width, height = max(width, 0), max(height, 0)
	if scale <= 0 {
		scale = 1
	}
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
	s.scale = scale
	if s.raster == nil {
		s.raster = vector.NewRasterizer(width, height)
	} else {
		s.raster.Reset(width, height)
	}
}

// Image returns the backing image. Pixels are premultiplied.
func (s *ImageSurface) Image() *image.RGBA {
	return s.img
}

// Snapshot implements Snapshotter.
func (s *ImageSurface) Snapshot() image.Image {
	b := s.img.Bounds()
	out := image.NewNRGBA(b)
	draw.Draw(out, b, s.img, b.Min, draw.Src)
	return out
}

// Clear implements Surface.
func (s *ImageSurface) Clear() {
	clear(s.img.Pix)
}

// Fill implements Surface.
func (s *ImageSurface) Fill(c Color) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(toNRGBA(c)), image.Point{}, draw.Over)
}

// StrokeLine implements Surface.
func (s *ImageSurface) StrokeLine(x0, y0, x1, y1, width float64, c Color) {
	if c.A <= 0 {
		return
	}
	x0, y0, x1, y1 = x0*s.scale, y0*s.scale, x1*s.scale, y1*s.scale
	half := math.Max(width*s.scale, 1) / 2
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	// Offset perpendicular to the segment by half the stroke width.
	nx, ny := -dy/l*half, dx/l*half
	s.fillPolygon([]Vec2{
		{x0 + nx, y0 + ny},
		{x1 + nx, y1 + ny},
		{x1 - nx, y1 - ny},
		{x0 - nx, y0 - ny},
	}, c)
}

// FillCircle implements Surface.
func (s *ImageSurface) FillCircle(cx, cy, r float64, c Color) {
	if c.A <= 0 || r <= 0 {
		return
	}
	cx, cy, r = cx*s.scale, cy*s.scale, r*s.scale
	n := int(math.Ceil(math.Pi * r))
	n = min(max(n, 12), 64)
	s.ring = s.ring[:0]
	for i := range n {
		a := 2 * math.Pi * float64(i) / float64(n)
		s.ring = append(s.ring, Vec2{cx + math.Cos(a)*r, cy + math.Sin(a)*r})
	}
	s.fillPolygon(s.ring, c)
}

// StrokePolygon implements Surface.
func (s *ImageSurface) StrokePolygon(pts []Vec2, width float64, c Color) {
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		s.StrokeLine(a.X, a.Y, b.X, b.Y, width, c)
	}
}

// DrawGlyph implements Surface. The built-in face has a fixed 13px height;
// size is ignored.
func (s *ImageSurface) DrawGlyph(x, y float64, ch rune, size float64, c Color) {
	if c.A <= 0 {
		return
	}
	d := font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(toNRGBA(c)),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(x*s.scale), int(y*s.scale)),
	}
	d.DrawString(string(ch))
}

// fillPolygon rasterizes a closed polygon given in device pixels.
func (s *ImageSurface) fillPolygon(pts []Vec2, c Color) {
	if len(pts) < 3 {
		return
	}
	b := s.img.Bounds()
	s.raster.Reset(b.Dx(), b.Dy())
	s.raster.DrawOp = draw.Over
	s.raster.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		s.raster.LineTo(float32(p.X), float32(p.Y))
	}
	s.raster.ClosePath()
	s.raster.Draw(s.img, b, image.NewUniform(toNRGBA(c)), image.Point{})
}

// toNRGBA converts a straight-alpha Color to 8-bit NRGBA.
func toNRGBA(c Color) color.NRGBA {
	return color.NRGBA{
		R: unit8(c.R),
		G: unit8(c.G),
		B: unit8(c.B),
		A: unit8(c.A),
	}
}

func unit8(v float64) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

// ImageContainer is a headless Container with a fixed size that hands out
// ImageSurfaces. It is used for offline rendering and tests.
type ImageContainer struct {
	Size  Rect
	Ratio float64

	surface  *ImageSurface
	attaches int
}

// NewImageContainer returns a container of width×height logical pixels.
func NewImageContainer(width, height float64) *ImageContainer {
	return &ImageContainer{Size: Rect{Width: width, Height: height}, Ratio: 1}
}

// Bounds implements Container.
func (c *ImageContainer) Bounds() Rect { return c.Size }

// PixelRatio implements Container.
func (c *ImageContainer) PixelRatio() float64 { return c.Ratio }

// Attach implements Container.
func (c *ImageContainer) Attach(width, height int, scale float64) (Surface, error) {
	c.surface = NewImageSurface(width, height, scale)
	c.attaches++
	return c.surface, nil
}

// Detach implements Container.
func (c *ImageContainer) Detach(s Surface) {
	if s == Surface(c.surface) {
		c.surface = nil
	}
}

// Surface returns the attached surface, or nil.
func (c *ImageContainer) Surface() *ImageSurface { return c.surface }

// Attached reports whether a surface is currently attached.
func (c *ImageContainer) Attached() bool { return c.surface != nil }

// Attaches returns how many surfaces have been attached over the
// container's lifetime.
func (c *ImageContainer) Attaches() int { return c.attaches }
