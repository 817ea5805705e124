package particlefield

import (
	"log/slog"
	"time"
)

// Sample is one governor measurement, emitted at the end of every window.
type Sample struct {
	At        time.Time `csv:"-"`
	Elapsed   float64   `csv:"elapsed_s"`
	FPS       float64   `csv:"fps"`
	Particles int       `csv:"particles"`
	Reduced   bool      `csv:"reduced"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s Sample) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("fps", s.FPS),
		slog.Int("particles", s.Particles),
		slog.Bool("reduced", s.Reduced),
	)
}

// governor measures achieved FPS over fixed wall-clock windows and lowers the
// particle count when it falls below MinFPS. It never raises the count again,
// even when the frame rate recovers: a device that struggled once is assumed
// to keep struggling.
type governor struct {
	cfg GovernorConfig

	started     bool
	begin       time.Time
	windowStart time.Time
	frames      int
	lastFPS     float64
	reductions  int
}

func newGovernor(cfg GovernorConfig) *governor {
	return &governor{cfg: cfg}
}

// frame counts one rendered frame at now. When a window closes it returns the
// measured sample and the count the field should shrink to; next == current
// means no change.
func (g *governor) frame(now time.Time, current int) (s Sample, next int, closed bool) {
	next = current
	if g.cfg.Disabled {
		return s, next, false
	}
	if !g.started {
		g.started = true
		g.begin = now
		g.windowStart = now.Add(g.cfg.WarmUp)
		return s, next, false
	}
	if now.Before(g.windowStart) {
		return s, next, false
	}
	g.frames++
	elapsed := now.Sub(g.windowStart)
	if elapsed < g.cfg.Window {
		return s, next, false
	}

	fps := float64(g.frames) / elapsed.Seconds()
	g.lastFPS = fps
	g.frames = 0
	g.windowStart = now

	if fps < g.cfg.MinFPS && current > g.cfg.Floor {
		next = max(g.cfg.Floor, current-g.cfg.Step)
		g.reductions++
	}
	return Sample{
		At:        now,
		Elapsed:   now.Sub(g.begin).Seconds(),
		FPS:       fps,
		Particles: next,
		Reduced:   next < current,
	}, next, true
}
