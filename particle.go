package particlefield

import (
	"math"
	"math/rand/v2"
)

const (
	// minParticleOpacity is the resting alpha floor for every particle.
	minParticleOpacity = 0.1
	// minRadius is added to every random radius so no particle is invisible.
	minRadius = 0.5
	// velocityFloor is the per-axis speed below which a component is re-rolled.
	velocityFloor = 0.05
	// pointerOpacityBoost is the extra alpha at zero distance from the pointer.
	pointerOpacityBoost = 0.5
)

// Particle is a single simulated point mass drawn as a disc. Positions are in
// container-local logical pixels.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Radius float64
	// Opacity is the alpha drawn this frame. It equals BaseOpacity except
	// while the pointer is close.
	Opacity     float64
	BaseOpacity float64
}

// pointerSample is the pointer state seen by one update step.
type pointerSample struct {
	X, Y   float64
	Active bool
}

// seedParticles fills dst with n particles spread uniformly over w×h and
// returns the resliced buffer. dst is reused when it has enough capacity.
func seedParticles(dst []Particle, n int, w, h float64, cfg *Config, rng *rand.Rand) []Particle {
	if n < 0 {
		n = 0
	}
	if cap(dst) < n {
		dst = make([]Particle, n)
	}
	dst = dst[:n]
	opacityRange := Range{Min: minParticleOpacity, Max: math.Max(cfg.ParticleOpacity, minParticleOpacity)}
	for i := range dst {
		p := &dst[i]
		p.X = rng.Float64() * w
		p.Y = rng.Float64() * h
		p.VX = randomVelocity(cfg.ParticleSpeed, rng)
		p.VY = randomVelocity(cfg.ParticleSpeed, rng)
		p.Radius = rng.Float64()*cfg.ParticleSize + minRadius
		p.BaseOpacity = opacityRange.Lerp(rng.Float64())
		p.Opacity = p.BaseOpacity
	}
	return dst
}

// randomVelocity returns a velocity component in [-speed/2, speed/2).
func randomVelocity(speed float64, rng *rand.Rand) float64 {
	return (rng.Float64() - 0.5) * speed
}

// updateParticles advances every particle by one frame: move, wrap, pointer
// force, damping, velocity floor. It never changes len(ps).
//
// The pointer force attracts: each particle inside InteractionRadius gains a
// velocity increment toward the pointer whose magnitude falls linearly from
// InteractionStrength at the pointer to zero at the radius.
func updateParticles(ps []Particle, w, h float64, ptr pointerSample, cfg *Config, rng *rand.Rand) {
	radius := cfg.InteractionRadius
	for i := range ps {
		p := &ps[i]

		p.X = wrap(p.X+p.VX, w)
		p.Y = wrap(p.Y+p.VY, h)

		p.Opacity = p.BaseOpacity
		if ptr.Active {
			dx := ptr.X - p.X
			dy := ptr.Y - p.Y
			dist := math.Hypot(dx, dy)
			if dist < radius {
				force := (radius - dist) / radius
				if dist > 0 {
					p.VX += dx / dist * force * cfg.InteractionStrength
					p.VY += dy / dist * force * cfg.InteractionStrength
				}
				p.Opacity = math.Min(1, p.BaseOpacity+force*pointerOpacityBoost)
			}
		}

		p.VX *= cfg.Damping
		p.VY *= cfg.Damping

		if math.Abs(p.VX) < velocityFloor {
			p.VX = randomVelocity(cfg.ParticleSpeed, rng)
		}
		if math.Abs(p.VY) < velocityFloor {
			p.VY = randomVelocity(cfg.ParticleSpeed, rng)
		}
	}
}

// wrap maps v into [0, dim). Leaving one edge re-enters at the opposite edge.
func wrap(v, dim float64) float64 {
	if dim <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v >= 0 && v < dim {
		return v
	}
	v = math.Mod(v, dim)
	if v < 0 {
		v += dim
	}
	// v+dim can round up to dim for tiny negative v.
	if v >= dim {
		v = 0
	}
	return v
}
