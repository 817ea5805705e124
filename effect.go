package particlefield

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// effect is the host plumbing shared by every animated layer: surface
// attachment, the frame loop, clock, resize debounce and teardown.
type effect struct {
	name      string
	container Container
	surface   Surface
	loop      *loop
	clock     func() time.Time
	logger    *slog.Logger
	rng       *rand.Rand

	enabled   bool
	destroyed bool

	width, height float64
	pixelRatio    float64

	resizePending bool
	resizeAt      time.Time
	debounce      time.Duration
}

// attach measures the container, attaches a surface and resolves the clock.
// It returns false, leaving the effect disabled, when any collaborator is
// missing. The frame loop is not started.
func (e *effect) attach(name string, container Container, opts Options) (Scheduler, bool) {
	e.name = name
	e.logger = opts.logger()
	e.rng = opts.rng()
	if container == nil {
		e.logger.Warn(name+" disabled", slog.String("reason", "container not found"))
		return nil, false
	}
	sched := resolveScheduler(opts.Scheduler, container)
	if sched == nil {
		e.logger.Warn(name+" disabled", slog.String("reason", "no frame scheduler"))
		return nil, false
	}
	w, h, ratio := measure(container)
	surface, err := container.Attach(devicePixels(w, ratio), devicePixels(h, ratio), ratio)
	if err != nil || surface == nil {
		e.logger.Warn(name+" disabled", slog.String("reason", "surface unavailable"), slog.Any("error", err))
		return nil, false
	}
	e.container = container
	e.surface = surface
	e.clock = resolveClock(opts.Clock, sched)
	e.width, e.height, e.pixelRatio = w, h, ratio
	e.enabled = true
	return sched, true
}

// live reports whether the effect is constructed, enabled and not torn down.
func (e *effect) live() bool {
	return e != nil && e.enabled && !e.destroyed
}

// remeasure reads the container again and resizes the surface.
func (e *effect) remeasure() {
	e.resizePending = false
	e.width, e.height, e.pixelRatio = measure(e.container)
	e.surface.Resize(devicePixels(e.width, e.pixelRatio), devicePixels(e.height, e.pixelRatio), e.pixelRatio)
}

// notifyResize arms the debounce timer.
func (e *effect) notifyResize() {
	e.resizePending = true
	e.resizeAt = e.clock().Add(e.debounce)
}

// resizeDue reports whether a debounced resize should run this frame.
func (e *effect) resizeDue(now time.Time) bool {
	return e.resizePending && !now.Before(e.resizeAt)
}

// teardown stops the loop and detaches the surface. It reports whether this
// call did the work, so callers can release their own state once.
func (e *effect) teardown() bool {
	if !e.live() {
		return false
	}
	e.destroyed = true
	if e.loop != nil {
		e.loop.stop()
	}
	e.container.Detach(e.surface)
	e.surface = nil
	return true
}

// measure reads the container size and its capped pixel ratio.
func measure(c Container) (w, h, ratio float64) {
	b := c.Bounds()
	return math.Max(b.Width, 0), math.Max(b.Height, 0), effectivePixelRatio(c.PixelRatio())
}

func devicePixels(logical, ratio float64) int {
	return int(math.Ceil(logical * ratio))
}
