package particlefield

import (
	"log/slog"
	"time"
)

// debugStats holds per-frame timing and draw metrics.
// Only populated when the field runs in debug mode.
type debugStats struct {
	updateTime  time.Duration
	connectTime time.Duration
	drawTime    time.Duration
	particles   int
	connections int
	drawCalls   int
}

// debugLog writes one frame's stats at debug level.
func (f *Field) debugLog(stats debugStats) {
	if !f.debug {
		return
	}
	total := stats.updateTime + stats.connectTime + stats.drawTime
	f.logger.Debug("frame",
		slog.Uint64("frame", f.frames),
		slog.Duration("update", stats.updateTime),
		slog.Duration("connect", stats.connectTime),
		slog.Duration("draw", stats.drawTime),
		slog.Duration("total", total),
		slog.Int("particles", stats.particles),
		slog.Int("connections", stats.connections),
		slog.Int("draw_calls", stats.drawCalls),
	)
}

// countDrawCalls reports how many surface calls one frame issues: the clear
// or trail fill, one line per connection, and one or two discs per particle.
func countDrawCalls(particles, connections int, glow bool) int {
	perParticle := 1
	if glow {
		perParticle = 2
	}
	return 1 + connections + particles*perParticle
}
