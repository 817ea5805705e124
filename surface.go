package particlefield

import "errors"

// ErrSurfaceUnavailable is returned by Container.Attach when the host cannot
// provide a drawing surface. Fields treat it as "disable quietly".
var ErrSurfaceUnavailable = errors.New("particlefield: drawing surface unavailable")

// Container is the host element an effect draws into.
type Container interface {
	// Bounds returns the container's bounding box in logical pixels.
	Bounds() Rect
	// PixelRatio returns the device pixel density (1 on standard displays).
	PixelRatio() float64
	// Attach creates a transparent surface sized width×height device pixels
	// and inserts it as the container's back-most layer. The surface must not
	// intercept pointer events meant for content stacked above it.
	Attach(width, height int, scale float64) (Surface, error)
	// Detach removes a surface previously returned by Attach.
	Detach(s Surface)
}

// Surface is a 2D drawing target. Coordinates are logical pixels; the
// surface applies its device scale internally. Alpha in every Color is
// straight, not premultiplied.
type Surface interface {
	// Resize reallocates the backing store to width×height device pixels
	// drawn at the given logical-to-device scale.
	Resize(width, height int, scale float64)
	// Clear makes every pixel fully transparent.
	Clear()
	// Fill composites c over the whole surface. With low alpha this fades
	// previous frames instead of erasing them.
	Fill(c Color)
	// StrokeLine draws a segment of the given logical width.
	StrokeLine(x0, y0, x1, y1, width float64, c Color)
	// FillCircle draws a filled disc.
	FillCircle(cx, cy, r float64, c Color)
	// StrokePolygon draws a closed outline through pts.
	StrokePolygon(pts []Vec2, width float64, c Color)
	// DrawGlyph draws ch with its baseline-left corner at (x, y).
	DrawGlyph(x, y float64, ch rune, size float64, c Color)
}

// pixelRatioCap bounds the surface resolution on high-density displays.
const pixelRatioCap = 2

// effectivePixelRatio caps a reported pixel ratio at pixelRatioCap. Unknown
// or non-positive ratios count as 1.
func effectivePixelRatio(r float64) float64 {
	switch {
	case !(r > 0): // also catches NaN
		return 1
	case r > pixelRatioCap:
		return pixelRatioCap
	}
	return r
}
