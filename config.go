package particlefield

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Index selects how connections are discovered each frame.
type Index string

const (
	IndexAuto   Index = "auto"   // kd-tree above autoIndexThreshold particles, pairs below
	IndexPairs  Index = "pairs"  // brute-force O(n²) pair scan
	IndexKDTree Index = "kdtree" // gonum kd-tree range queries
)

// autoIndexThreshold is the particle count at which IndexAuto switches to the
// kd-tree. Below it the pair scan is faster.
const autoIndexThreshold = 128

// Upper clamps for values that feed the force and velocity terms.
const (
	maxParticleSpeed      = 100
	maxInteractionRadius  = 10000
	maxConnectionDistance = 10000
)

// Config holds all particle field parameters. A zero field means "use the
// built-in default"; a negative field is clamped to a safe minimum. Config is
// fixed at construction except for the particle count, which only the
// performance governor and SetParticleCount may lower.
type Config struct {
	// ParticleCount is the base count for a 1920x1080 container. Smaller
	// containers get proportionally fewer particles, larger ones no more.
	ParticleCount int `yaml:"particle_count"`
	// ParticleSize is the upper bound of the random radius added to 0.5px.
	ParticleSize float64 `yaml:"particle_size"`
	// ConnectionDistance is the pair distance below which a line is drawn.
	ConnectionDistance float64 `yaml:"connection_distance"`
	// ParticleSpeed is the width of the random velocity range per axis.
	ParticleSpeed float64 `yaml:"particle_speed"`
	// ConnectionOpacity is the alpha of a line between coincident particles.
	ConnectionOpacity float64 `yaml:"connection_opacity"`
	// ParticleOpacity is the maximum resting particle alpha.
	ParticleOpacity float64 `yaml:"particle_opacity"`
	// Color is the particle color as a hex string.
	Color string `yaml:"color"`
	// ConnectionColor is the line color; empty means Color.
	ConnectionColor string `yaml:"connection_color"`

	// InteractionRadius is the pointer force radius in pixels.
	InteractionRadius float64 `yaml:"interaction_radius"`
	// InteractionStrength scales the per-frame pointer velocity increment.
	InteractionStrength float64 `yaml:"interaction_strength"`
	// Damping is the per-frame velocity multiplier, in (0, 1).
	Damping float64 `yaml:"damping"`

	// NoGlow skips the faint halo drawn beneath every particle.
	NoGlow bool `yaml:"no_glow"`
	// Trails replaces the per-frame clear with a translucent overlay.
	Trails     bool    `yaml:"trails"`
	TrailColor string  `yaml:"trail_color"`
	TrailAlpha float64 `yaml:"trail_alpha"`

	// Index picks the connection discovery strategy.
	Index Index `yaml:"index"`
	// FadeIn is how long drawn alpha takes to ease in after a reseed.
	// Negative disables the fade.
	FadeIn time.Duration `yaml:"fade_in"`
	// ResizeDebounce is the quiet period NotifyResize waits for.
	ResizeDebounce time.Duration `yaml:"resize_debounce"`
	// PointerIdle is how long after the last move the pointer stays active.
	PointerIdle time.Duration `yaml:"pointer_idle"`

	Governor GovernorConfig `yaml:"governor"`

	// Resolved colors, computed by normalize.
	particleColor   Color
	connectionColor Color
	trailColor      Color
}

// GovernorConfig controls adaptive particle count reduction.
type GovernorConfig struct {
	// Window is the FPS sampling period.
	Window time.Duration `yaml:"window"`
	// MinFPS is the rate below which the particle count is reduced.
	MinFPS float64 `yaml:"min_fps"`
	// Floor is the count the governor never reduces below.
	Floor int `yaml:"floor"`
	// Step is the count removed per reduction.
	Step int `yaml:"step"`
	// WarmUp delays the first sample window after the loop starts.
	WarmUp time.Duration `yaml:"warm_up"`
	// Disabled turns governance off entirely.
	Disabled bool `yaml:"disabled"`
}

var builtinDefaults = mustParseDefaults()

func mustParseDefaults() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		panic(fmt.Sprintf("particlefield: parsing embedded defaults: %v", err))
	}
	return cfg
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	cfg := builtinDefaults
	cfg.normalize()
	return cfg
}

// LoadConfig reads a YAML file and overlays it on the built-in defaults.
// Only keys present in the file override defaults; unknown keys are ignored.
// An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := builtinDefaults
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}
	cfg.normalize()
	return cfg, nil
}

// normalize fills zero fields with defaults, clamps out-of-range values and
// resolves colors. It never fails: the effect is decorative and a bad value
// must degrade the visuals, not the page.
func (c *Config) normalize() {
	d := &builtinDefaults

	c.ParticleCount = defaultInt(c.ParticleCount, d.ParticleCount, 0)
	c.ParticleSize = defaultFloat(c.ParticleSize, d.ParticleSize, 0.5)
	c.ConnectionDistance = math.Min(defaultFloat(c.ConnectionDistance, d.ConnectionDistance, 1), maxConnectionDistance)
	c.ParticleSpeed = math.Min(defaultFloat(c.ParticleSpeed, d.ParticleSpeed, 0.01), maxParticleSpeed)
	c.ConnectionOpacity = math.Min(defaultFloat(c.ConnectionOpacity, d.ConnectionOpacity, 0.01), 1)
	c.ParticleOpacity = math.Min(defaultFloat(c.ParticleOpacity, d.ParticleOpacity, minParticleOpacity), 1)
	c.InteractionRadius = math.Min(defaultFloat(c.InteractionRadius, d.InteractionRadius, 1), maxInteractionRadius)
	c.InteractionStrength = defaultFloat(c.InteractionStrength, d.InteractionStrength, 0)
	if c.Damping <= 0 || c.Damping >= 1 || math.IsNaN(c.Damping) {
		c.Damping = d.Damping
	}
	c.TrailAlpha = math.Min(defaultFloat(c.TrailAlpha, d.TrailAlpha, 0.01), 1)

	switch c.Index {
	case IndexPairs, IndexKDTree, IndexAuto:
	default:
		c.Index = IndexAuto
	}

	if c.FadeIn == 0 {
		c.FadeIn = d.FadeIn
	}
	c.ResizeDebounce = defaultDuration(c.ResizeDebounce, d.ResizeDebounce, 0)
	c.PointerIdle = defaultDuration(c.PointerIdle, d.PointerIdle, time.Millisecond)

	g, dg := &c.Governor, &d.Governor
	g.Window = defaultDuration(g.Window, dg.Window, 100*time.Millisecond)
	if g.Window < 100*time.Millisecond {
		g.Window = 100 * time.Millisecond
	}
	g.MinFPS = defaultFloat(g.MinFPS, dg.MinFPS, 1)
	g.Floor = defaultInt(g.Floor, dg.Floor, 0)
	g.Step = defaultInt(g.Step, dg.Step, 1)
	g.WarmUp = defaultDuration(g.WarmUp, dg.WarmUp, 0)

	c.particleColor = resolveColor(c.Color, d.Color)
	c.connectionColor = c.particleColor
	if cc, err := ParseColor(c.ConnectionColor); err == nil {
		c.connectionColor = cc
	}
	c.trailColor = resolveColor(c.TrailColor, d.TrailColor)
}

func resolveColor(hex, fallback string) Color {
	if c, err := ParseColor(hex); err == nil {
		return c
	}
	c, err := ParseColor(fallback)
	if err != nil {
		return Color{1, 1, 1, 1}
	}
	return c
}

func defaultInt(v, def, min int) int {
	switch {
	case v == 0:
		return def
	case v < min:
		return min
	}
	return v
}

func defaultFloat(v, def, min float64) float64 {
	switch {
	case v == 0 || math.IsNaN(v) || math.IsInf(v, 0):
		return def
	case v < min:
		return min
	}
	return v
}

func defaultDuration(v, def, min time.Duration) time.Duration {
	switch {
	case v == 0:
		return def
	case v < min:
		return min
	}
	return v
}
