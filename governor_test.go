package particlefield

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func testGovernorConfig() GovernorConfig {
	return GovernorConfig{Window: 2 * time.Second, MinFPS: 25, Floor: 10, Step: 5}
}

// runGovernor feeds frames spaced dt apart for total and returns every
// closed sample.
func runGovernor(g *governor, start time.Time, dt, total time.Duration, count *int) []Sample {
	var out []Sample
	for now := start; now.Sub(start) <= total; now = now.Add(dt) {
		s, next, closed := g.frame(now, *count)
		*count = next
		if closed {
			out = append(out, s)
		}
	}
	return out
}

func TestGovernor_Reduces(t *testing.T) {
	g := newGovernor(testGovernorConfig())
	count := 80
	samples := runGovernor(g, testEpoch, time.Second/15, 5*time.Second, &count)
	if len(samples) != 2 {
		t.Fatalf("samples = %d, want 2", len(samples))
	}
	if count != 70 {
		t.Errorf("count = %d, want 70", count)
	}
	s := samples[0]
	if !s.Reduced || s.Particles != 75 {
		t.Errorf("sample = %+v", s)
	}
	if s.FPS < 14 || s.FPS > 16 {
		t.Errorf("fps = %v, want ~15", s.FPS)
	}
}

func TestGovernor_RespectsFloor(t *testing.T) {
	g := newGovernor(testGovernorConfig())
	count := 12
	runGovernor(g, testEpoch, time.Second/10, 10*time.Second, &count)
	if count != 10 {
		t.Errorf("count = %d, want floor 10", count)
	}
	if g.reductions != 1 {
		t.Errorf("reductions = %d, want 1", g.reductions)
	}
}

func TestGovernor_FastFramesKeepCount(t *testing.T) {
	g := newGovernor(testGovernorConfig())
	count := 80
	samples := runGovernor(g, testEpoch, time.Second/60, 6*time.Second, &count)
	if count != 80 {
		t.Errorf("count = %d, want 80", count)
	}
	for _, s := range samples {
		if s.Reduced {
			t.Errorf("reduced at %v fps", s.FPS)
		}
	}
}

func TestGovernor_WarmUp(t *testing.T) {
	cfg := testGovernorConfig()
	cfg.WarmUp = 3 * time.Second
	g := newGovernor(cfg)
	count := 80
	samples := runGovernor(g, testEpoch, time.Second/15, 4*time.Second, &count)
	if len(samples) != 0 || count != 80 {
		t.Errorf("samples = %d count = %d during warm-up", len(samples), count)
	}
}

func TestGovernor_Disabled(t *testing.T) {
	cfg := testGovernorConfig()
	cfg.Disabled = true
	g := newGovernor(cfg)
	count := 80
	if samples := runGovernor(g, testEpoch, time.Second/5, 10*time.Second, &count); len(samples) != 0 {
		t.Errorf("disabled governor emitted %d samples", len(samples))
	}
}

func TestSample_LogValue(t *testing.T) {
	var b strings.Builder
	logger := slog.New(slog.NewTextHandler(&b, nil))
	logger.Info("sample", slog.Any("s", Sample{FPS: 14.5, Particles: 75, Reduced: true}))
	out := b.String()
	for _, want := range []string{"s.fps=14.5", "s.particles=75", "s.reduced=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}
