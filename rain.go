package particlefield

import (
	"log/slog"
	"math"
	"time"
)

// RainConfig holds the matrix rain parameters. Zero fields take defaults.
type RainConfig struct {
	// FontSize is the glyph size and column pitch in pixels.
	FontSize float64 `yaml:"font_size"`
	// Characters is the glyph alphabet drawn at random.
	Characters string `yaml:"characters"`
	// Interval is the time between steps; frames in between draw nothing.
	Interval time.Duration `yaml:"interval"`
	// Opacity is the glyph alpha.
	Opacity float64 `yaml:"opacity"`
	Color   string  `yaml:"color"`
	// TrailColor and TrailAlpha form the overlay that fades old glyphs.
	TrailColor string  `yaml:"trail_color"`
	TrailAlpha float64 `yaml:"trail_alpha"`

	color, trail Color
}

const (
	rainCharacters  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789@#$%^&*()_+-=[]{}|;:,.<>?"
	rainSpawnHeight = 100 // drops respawn up to this far above the top edge
)

// DefaultRainConfig returns the built-in rain parameters.
func DefaultRainConfig() RainConfig {
	var c RainConfig
	c.normalize()
	return c
}

func (c *RainConfig) normalize() {
	c.FontSize = defaultFloat(c.FontSize, 14, 4)
	if c.Characters == "" {
		c.Characters = rainCharacters
	}
	c.Interval = defaultDuration(c.Interval, 50*time.Millisecond, time.Millisecond)
	c.Opacity = math.Min(defaultFloat(c.Opacity, 0.05, 0.01), 1)
	c.TrailAlpha = math.Min(defaultFloat(c.TrailAlpha, 0.1, 0.01), 1)
	c.color = resolveColor(c.Color, builtinDefaults.Color)
	c.trail = resolveColor(c.TrailColor, builtinDefaults.TrailColor)
}

type drop struct {
	y     float64
	speed float64 // rows per step
}

// Rain draws falling glyph columns over a fading overlay.
type Rain struct {
	effect

	cfg      RainConfig
	alphabet []rune
	drops    []drop
	lastStep time.Time
	steps    uint64
}

// NewRain attaches a matrix rain effect to container. Like NewField it never
// fails; without a container, scheduler or surface it returns a disabled
// Rain.
func NewRain(container Container, cfg RainConfig, opts Options) *Rain {
	cfg.normalize()
	r := &Rain{cfg: cfg, alphabet: []rune(cfg.Characters)}
	sched, ok := r.attach("matrix rain", container, opts)
	if !ok {
		return r
	}
	r.debounce = builtinDefaults.ResizeDebounce
	r.seed()
	r.loop = startLoop(sched, r.frame)
	r.logger.Info("matrix rain started", slog.Int("columns", len(r.drops)))
	return r
}

func (r *Rain) live() bool {
	return r != nil && r.effect.live()
}

// Enabled reports whether the effect is running.
func (r *Rain) Enabled() bool { return r.live() }

// Columns returns the number of glyph columns.
func (r *Rain) Columns() int {
	if !r.live() {
		return 0
	}
	return len(r.drops)
}

// Steps returns how many rain steps have run.
func (r *Rain) Steps() uint64 {
	if r == nil {
		return 0
	}
	return r.steps
}

// Resize re-measures the container and rebuilds every column.
func (r *Rain) Resize() {
	if !r.live() {
		return
	}
	r.remeasure()
	r.seed()
}

// NotifyResize schedules a debounced Resize.
func (r *Rain) NotifyResize() {
	if !r.live() {
		return
	}
	r.notifyResize()
}

// Destroy stops the effect and detaches its surface. Idempotent.
func (r *Rain) Destroy() {
	if r == nil || !r.teardown() {
		return
	}
	r.drops = nil
}

func (r *Rain) seed() {
	n := int(math.Floor(r.width / r.cfg.FontSize))
	r.drops = r.drops[:0]
	for range n {
		r.drops = append(r.drops, r.spawn())
	}
}

func (r *Rain) spawn() drop {
	return drop{
		y:     -r.rng.Float64() * rainSpawnHeight,
		speed: r.rng.Float64()*0.5 + 0.5,
	}
}

func (r *Rain) frame(now time.Time) {
	if !r.live() {
		return
	}
	if r.resizeDue(now) {
		r.Resize()
	}
	if !r.lastStep.IsZero() && now.Sub(r.lastStep) < r.cfg.Interval {
		return
	}
	r.lastStep = now
	r.step()
	r.draw()
}

// step advances every drop and recycles the ones past the bottom.
func (r *Rain) step() {
	r.steps++
	for i := range r.drops {
		d := &r.drops[i]
		d.y += d.speed * r.cfg.FontSize
		if d.y > r.height {
			*d = r.spawn()
		}
	}
}

func (r *Rain) draw() {
	r.surface.Fill(r.cfg.trail.WithAlpha(r.cfg.TrailAlpha))
	if len(r.alphabet) == 0 {
		return
	}
	c := r.cfg.color.WithAlpha(r.cfg.Opacity)
	for i, d := range r.drops {
		ch := r.alphabet[r.rng.IntN(len(r.alphabet))]
		r.surface.DrawGlyph(float64(i)*r.cfg.FontSize, d.y, ch, r.cfg.FontSize, c)
	}
}
