package particlefield

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// referenceArea is the container area at which the base particle count
// applies unscaled.
const referenceArea = 1920 * 1080

// Options carries the host collaborators of an effect. Every field is optional.
type Options struct {
	// Scheduler delivers frames. When nil, the container is used if it
	// implements Scheduler; otherwise the effect is disabled.
	Scheduler Scheduler
	// Clock drives the pointer idle and resize debounce timers. Defaults to
	// the scheduler's Now method when it has one, else time.Now.
	Clock func() time.Time
	// Logger receives structured logs. Defaults to discarding.
	Logger *slog.Logger
	// Seed fixes the random source. Zero seeds randomly.
	Seed uint64
	// Debug logs per-frame timing stats at debug level.
	Debug bool
	// OnSample observes every closed governor window.
	OnSample func(Sample)
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (o *Options) rng() *rand.Rand {
	seed := o.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Stats is a read-only snapshot of a field.
type Stats struct {
	Particles     int
	Connections   int
	Frames        uint64
	FPS           float64 // last governor window; 0 before the first closes
	Reductions    int
	PointerActive bool
	Width, Height float64
	PixelRatio    float64
}

// Field is the particle-field engine: a set of drifting particles inside a
// container, proximity connections between them, pointer attraction, and a
// governor that lowers the particle count when frames run slow.
//
// A Field is not safe for concurrent use. All methods, frame callbacks and
// pointer notifications must arrive on the same goroutine, which is how both
// the ebiten host and ManualScheduler deliver them.
type Field struct {
	effect

	cfg      Config
	debug    bool
	onSample func(Sample)

	count   int
	ceiling int // governor limit on count; -1 until the first reduction

	particles   []Particle
	connections []Connection
	pointer     pointerState
	injectQueue []syntheticPointerEvent

	gov       *governor
	fade      *fadeIn
	lastFrame time.Time
	frames    uint64
	runner    *Runner
}

// NewField attaches a particle field to container and starts its frame loop.
//
// NewField never fails. When the container is nil, no scheduler is available
// or the container cannot provide a surface, it returns a disabled Field
// whose methods are all no-ops; the effect is decorative and its absence must
// not break the host.
func NewField(container Container, cfg Config, opts Options) *Field {
	cfg.normalize()
	f := &Field{
		cfg:      cfg,
		debug:    opts.Debug,
		onSample: opts.OnSample,
		ceiling:  -1,
	}
	sched, ok := f.attach("particle field", container, opts)
	if !ok {
		return f
	}
	f.debounce = cfg.ResizeDebounce
	f.gov = newGovernor(cfg.Governor)
	f.fade = newFadeIn(cfg.FadeIn)

	f.count = f.targetCount()
	f.reseed()
	f.loop = startLoop(sched, f.frame)
	f.logger.Info("particle field started",
		slog.Int("particles", len(f.particles)),
		slog.Float64("width", f.width),
		slog.Float64("height", f.height),
		slog.Float64("pixel_ratio", f.pixelRatio),
	)
	return f
}

// live reports whether the field is constructed, enabled and not torn down.
func (f *Field) live() bool {
	return f != nil && f.effect.live()
}

// Enabled reports whether the field constructed successfully and is still
// running.
func (f *Field) Enabled() bool {
	return f.live()
}

// Config returns the normalized configuration in effect.
func (f *Field) Config() Config {
	if f == nil {
		return Config{}
	}
	return f.cfg
}

// Resize re-measures the container immediately, resizes the surface and
// reseeds the particle set.
func (f *Field) Resize() {
	if !f.live() {
		return
	}
	f.resize()
}

// NotifyResize reports a viewport resize. Bursts are coalesced: the field
// resizes at the start of the first frame after ResizeDebounce has passed
// with no further notifications, so a reseed never lands mid-update.
func (f *Field) NotifyResize() {
	if !f.live() {
		return
	}
	f.notifyResize()
}

func (f *Field) resize() {
	f.remeasure()
	f.count = f.targetCount()
	f.reseed()
}

// targetCount scales the base count by the container area relative to
// 1920x1080. Larger containers do not get more than the base count.
func (f *Field) targetCount() int {
	ratio := math.Min(1, Rect{Width: f.width, Height: f.height}.Area()/referenceArea)
	n := int(math.Floor(float64(f.cfg.ParticleCount) * ratio))
	if f.ceiling >= 0 && n > f.ceiling {
		n = f.ceiling
	}
	return n
}

func (f *Field) reseed() {
	f.particles = seedParticles(f.particles, f.count, f.width, f.height, &f.cfg, f.rng)
	f.connections = f.connections[:0]
	f.fade.restart()
}

// SetParticleCount changes the base count and reseeds. The result is still
// scaled by container area and capped by any governor reduction.
func (f *Field) SetParticleCount(n int) {
	if !f.live() {
		return
	}
	f.cfg.ParticleCount = max(n, 0)
	f.count = f.targetCount()
	f.reseed()
}

// SetConnectionDistance changes the connection threshold. Values below 1 are
// clamped to 1.
func (f *Field) SetConnectionDistance(d float64) {
	if !f.live() {
		return
	}
	if !(d >= 1) {
		d = 1
	}
	f.cfg.ConnectionDistance = math.Min(d, maxConnectionDistance)
}

// SetSpeed changes the particle speed and re-rolls every velocity.
func (f *Field) SetSpeed(speed float64) {
	if !f.live() {
		return
	}
	if !(speed >= 0.01) {
		speed = 0.01
	}
	speed = math.Min(speed, maxParticleSpeed)
	f.cfg.ParticleSpeed = speed
	for i := range f.particles {
		f.particles[i].VX = randomVelocity(speed, f.rng)
		f.particles[i].VY = randomVelocity(speed, f.rng)
	}
}

// SetScript attaches a scripted runner that is stepped at the start of every
// frame.
func (f *Field) SetScript(r *Runner) {
	if f == nil {
		return
	}
	f.runner = r
}

// Particles returns the live particle slice. Callers MUST NOT retain or
// mutate it across frames.
func (f *Field) Particles() []Particle {
	if !f.live() {
		return nil
	}
	return f.particles
}

// Connections returns the connections found in the most recent frame.
// Callers MUST NOT retain it across frames.
func (f *Field) Connections() []Connection {
	if !f.live() {
		return nil
	}
	return f.connections
}

// Stats returns a snapshot of the field.
func (f *Field) Stats() Stats {
	if !f.live() {
		return Stats{}
	}
	return Stats{
		Particles:     len(f.particles),
		Connections:   len(f.connections),
		Frames:        f.frames,
		FPS:           f.gov.lastFPS,
		Reductions:    f.gov.reductions,
		PointerActive: f.pointer.active,
		Width:         f.width,
		Height:        f.height,
		PixelRatio:    f.pixelRatio,
	}
}

// Destroy stops the frame loop, detaches the surface and drops all particle
// data. Calling it again, or on a disabled field, does nothing.
func (f *Field) Destroy() {
	if f == nil || !f.teardown() {
		return
	}
	f.particles = nil
	f.connections = nil
	f.injectQueue = nil
	f.logger.Info("particle field destroyed", slog.Uint64("frames", f.frames))
}

// frame runs one animation frame: pending input and resize, simulation,
// connection discovery, drawing, then governance.
func (f *Field) frame(now time.Time) {
	if !f.live() {
		return
	}
	var dt float64
	if !f.lastFrame.IsZero() {
		dt = now.Sub(f.lastFrame).Seconds()
	}
	f.lastFrame = now
	f.frames++

	if f.runner != nil {
		f.runner.step(f)
		// A script step may destroy the field.
		if !f.live() {
			return
		}
	}
	f.processInjectedInput()
	if f.resizeDue(now) {
		f.resize()
	}
	f.pointer.expire(now)

	var stats debugStats
	var t0 time.Time
	if f.debug {
		t0 = time.Now()
	}

	updateParticles(f.particles, f.width, f.height, f.pointer.sample(), &f.cfg, f.rng)

	if f.debug {
		stats.updateTime = time.Since(t0)
		t0 = time.Now()
	}

	find := connectionFinder(f.cfg.Index, len(f.particles))
	f.connections = find(f.particles, f.cfg.ConnectionDistance, f.cfg.ConnectionOpacity, f.connections)

	if f.debug {
		stats.connectTime = time.Since(t0)
		t0 = time.Now()
	}

	alpha := f.fade.Update(float32(dt))
	renderFrame(f.surface, f.particles, f.connections, f.cfg.renderStyle(alpha))

	if f.debug {
		stats.drawTime = time.Since(t0)
		stats.particles = len(f.particles)
		stats.connections = len(f.connections)
		stats.drawCalls = countDrawCalls(stats.particles, stats.connections, !f.cfg.NoGlow)
		f.debugLog(stats)
	}

	f.govern(now)
}

// govern feeds the governor and applies any reduction it decides on.
func (f *Field) govern(now time.Time) {
	sample, next, closed := f.gov.frame(now, f.count)
	if !closed {
		return
	}
	if next < f.count {
		f.ceiling = next
		f.count = next
		f.reseed()
		f.logger.Info("reduced particles", slog.Any("sample", sample))
	}
	if f.onSample != nil {
		f.onSample(sample)
	}
}
