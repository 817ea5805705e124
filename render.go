package particlefield

const (
	// connectionLineWidth is the logical stroke width of every connection.
	connectionLineWidth = 1
	// glowScale and glowAlpha shape the halo drawn under each particle.
	glowScale = 3
	glowAlpha = 0.15
)

// renderStyle is the resolved per-frame drawing style.
type renderStyle struct {
	particle   Color
	connection Color
	glow       bool
	trails     bool
	trail      Color
	alpha      float64 // fade-in envelope multiplied into every draw
}

func (c *Config) renderStyle(alpha float64) renderStyle {
	return renderStyle{
		particle:   c.particleColor,
		connection: c.connectionColor,
		glow:       !c.NoGlow,
		trails:     c.Trails,
		trail:      c.trailColor.WithAlpha(c.TrailAlpha),
		alpha:      alpha,
	}
}

// renderFrame draws one frame: a full clear (or the translucent trail fill),
// every connection, then every particle on top.
func renderFrame(s Surface, ps []Particle, conns []Connection, st renderStyle) {
	if st.trails {
		s.Fill(st.trail)
	} else {
		s.Clear()
	}

	for _, c := range conns {
		a, b := &ps[c.I], &ps[c.J]
		s.StrokeLine(a.X, a.Y, b.X, b.Y, connectionLineWidth,
			st.connection.WithAlpha(c.Opacity*st.alpha))
	}

	for i := range ps {
		p := &ps[i]
		if st.glow {
			s.FillCircle(p.X, p.Y, p.Radius*glowScale,
				st.particle.WithAlpha(p.Opacity*glowAlpha*st.alpha))
		}
		s.FillCircle(p.X, p.Y, p.Radius, st.particle.WithAlpha(p.Opacity*st.alpha))
	}
}
