package particlefield

import (
	"math"
	"testing"
	"time"
)

func TestNewField_ScalesCountByArea(t *testing.T) {
	tests := []struct {
		w, h float64
		want int
	}{
		{1920, 1080, 80},
		{960, 540, 20},
		{3840, 2160, 80},
		{0, 0, 0},
	}
	for _, tt := range tests {
		f, _, _ := newTestField(tt.w, tt.h, Config{})
		if got := len(f.Particles()); got != tt.want {
			t.Errorf("%vx%v: particles = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestNewField_SeedsInsideBounds(t *testing.T) {
	f, _, _ := newTestField(800, 600, Config{})
	for i, p := range f.Particles() {
		if p.X < 0 || p.X >= 800 || p.Y < 0 || p.Y >= 600 {
			t.Fatalf("particle %d at (%v, %v) outside container", i, p.X, p.Y)
		}
		if p.Radius < minRadius || p.Radius > minRadius+f.Config().ParticleSize {
			t.Errorf("particle %d radius = %v", i, p.Radius)
		}
	}
}

func TestFieldFrame_ParticlesStayInBounds(t *testing.T) {
	cfg := Config{ParticleSpeed: 40}
	f, _, sched := newTestField(640, 360, cfg)
	f.PointerMove(320, 180)
	for range 300 {
		sched.Step(frame60)
		for i, p := range f.Particles() {
			if p.X < 0 || p.X >= 640 || p.Y < 0 || p.Y >= 360 {
				t.Fatalf("particle %d at (%v, %v) escaped", i, p.X, p.Y)
			}
		}
	}
}

func TestFieldFrame_CountUnchangedByUpdate(t *testing.T) {
	f, _, sched := newTestField(1920, 1080, Config{Governor: GovernorConfig{Disabled: true}})
	want := len(f.Particles())
	sched.StepN(120, frame60)
	if got := len(f.Particles()); got != want {
		t.Errorf("particles = %d after frames, want %d", got, want)
	}
}

func TestFieldFrame_DrawCalls(t *testing.T) {
	f, c, sched := newTestField(400, 300, Config{})
	sched.Step(frame60)
	s := c.surface
	n := len(f.Particles())
	conns := len(f.Connections())
	if s.clears != 1 {
		t.Errorf("clears = %d, want 1", s.clears)
	}
	if s.circles != 2*n {
		t.Errorf("circles = %d, want %d (glow + core)", s.circles, 2*n)
	}
	if s.lines != conns {
		t.Errorf("lines = %d, want %d", s.lines, conns)
	}
}

func TestFieldFrame_NoGlow(t *testing.T) {
	f, c, sched := newTestField(400, 300, Config{NoGlow: true})
	sched.Step(frame60)
	if n := len(f.Particles()); c.surface.circles != n {
		t.Errorf("circles = %d, want %d (core only)", c.surface.circles, n)
	}
}

func TestFieldFrame_InfiniteRadiusStaysFinite(t *testing.T) {
	f, _, sched := newTestField(400, 300, Config{InteractionRadius: math.Inf(1)})
	f.PointerMove(200, 150)
	for range 3 {
		sched.Step(frame60)
		f.PointerMove(200, 150)
	}
	for i, p := range f.Particles() {
		if math.IsNaN(p.VX) || math.IsNaN(p.VY) || math.IsNaN(p.X) || math.IsNaN(p.Y) {
			t.Fatalf("particle %d = %+v, want finite", i, p)
		}
	}
}

func TestFieldSetters_CapInfinity(t *testing.T) {
	f, _, _ := newTestField(400, 300, Config{})
	f.SetSpeed(math.Inf(1))
	f.SetConnectionDistance(math.Inf(1))
	if got := f.Config().ParticleSpeed; got != maxParticleSpeed {
		t.Errorf("ParticleSpeed = %v, want %v", got, maxParticleSpeed)
	}
	if got := f.Config().ConnectionDistance; got != maxConnectionDistance {
		t.Errorf("ConnectionDistance = %v, want %v", got, maxConnectionDistance)
	}
	for i, p := range f.Particles() {
		if math.IsInf(p.VX, 0) || math.IsNaN(p.VX) {
			t.Fatalf("particle %d VX = %v", i, p.VX)
		}
	}
}

func TestFieldFrame_TrailsFillInsteadOfClear(t *testing.T) {
	f, c, sched := newTestField(400, 300, Config{Trails: true})
	sched.Step(frame60)
	if c.surface.clears != 0 || c.surface.fills != 1 {
		t.Errorf("clears = %d, fills = %d; want 0, 1", c.surface.clears, c.surface.fills)
	}
	if got := c.surface.lastFill.A; got != f.Config().TrailAlpha {
		t.Errorf("trail alpha = %v, want %v", got, f.Config().TrailAlpha)
	}
}

func TestFieldGovernor_ReducesUnderLoad(t *testing.T) {
	cfg := Config{Governor: GovernorConfig{WarmUp: -1}}
	f, _, sched := newTestField(1920, 1080, cfg)

	prev := len(f.Particles())
	for range 600 { // 40s at 15fps
		sched.Step(time.Second / 15)
		n := len(f.Particles())
		if n > prev {
			t.Fatalf("count rose from %d to %d", prev, n)
		}
		prev = n
	}
	if prev != f.Config().Governor.Floor {
		t.Errorf("count = %d, want floor %d", prev, f.Config().Governor.Floor)
	}
	if f.Stats().Reductions == 0 {
		t.Error("expected reductions")
	}
}

func TestFieldGovernor_NeverRecovers(t *testing.T) {
	cfg := Config{Governor: GovernorConfig{WarmUp: -1}}
	f, _, sched := newTestField(1920, 1080, cfg)

	sched.StepN(45, time.Second/15) // one slow window
	reduced := len(f.Particles())
	if reduced >= 80 {
		t.Fatalf("count = %d, expected a reduction", reduced)
	}
	sched.StepN(600, frame60)
	if got := len(f.Particles()); got != reduced {
		t.Errorf("count = %d after recovery, want %d", got, reduced)
	}
}

func TestFieldGovernor_NoReductionDuringWarmUp(t *testing.T) {
	f, _, sched := newTestField(1920, 1080, Config{})
	sched.StepN(40, time.Second/15) // under the 3s warm-up
	if got := len(f.Particles()); got != 80 {
		t.Errorf("count = %d during warm-up, want 80", got)
	}
}

func TestFieldGovernor_CeilingCapsResizeAndSetCount(t *testing.T) {
	cfg := Config{Governor: GovernorConfig{WarmUp: -1}}
	f, _, sched := newTestField(1920, 1080, cfg)
	sched.StepN(45, time.Second/15)
	reduced := len(f.Particles())

	f.SetParticleCount(200)
	if got := len(f.Particles()); got != reduced {
		t.Errorf("SetParticleCount: count = %d, want %d", got, reduced)
	}
	f.Resize()
	if got := len(f.Particles()); got != reduced {
		t.Errorf("Resize: count = %d, want %d", got, reduced)
	}
}

func TestFieldGovernor_Observer(t *testing.T) {
	c := newFakeContainer(1920, 1080)
	sched := NewManualScheduler(testEpoch)
	var samples []Sample
	cfg := Config{Governor: GovernorConfig{WarmUp: -1}}
	NewField(c, cfg, Options{Scheduler: sched, Seed: 1, OnSample: func(s Sample) {
		samples = append(samples, s)
	}})
	sched.StepN(240, frame60) // 4s
	if len(samples) != 1 && len(samples) != 2 {
		t.Fatalf("samples = %d, want 1 or 2", len(samples))
	}
	if samples[0].Reduced {
		t.Error("60fps window should not reduce")
	}
}

func TestFieldDestroy(t *testing.T) {
	f, c, sched := newTestField(800, 600, Config{})
	sched.Step(frame60)
	before := c.surface.drawCalls()

	f.Destroy()
	if f.Enabled() {
		t.Error("Enabled after Destroy")
	}
	if sched.Pending() != 0 {
		t.Errorf("pending frames = %d after Destroy", sched.Pending())
	}
	if c.detaches != 1 {
		t.Errorf("detaches = %d, want 1", c.detaches)
	}
	sched.StepN(10, frame60)
	if got := c.surface.drawCalls(); got != before {
		t.Errorf("draw calls after Destroy: %d, want %d", got, before)
	}

	f.Destroy()
	if c.detaches != 1 {
		t.Errorf("second Destroy detached again: %d", c.detaches)
	}
	if f.Particles() != nil {
		t.Error("particles retained after Destroy")
	}
}

func TestFieldDestroy_BeforeFirstFrame(t *testing.T) {
	f, c, sched := newTestField(800, 600, Config{})
	f.Destroy()
	sched.StepN(3, frame60)
	if c.surface.drawCalls() != 0 || c.surface.clears != 0 {
		t.Error("frame ran after Destroy")
	}
}

func TestNewField_Disabled(t *testing.T) {
	sched := NewManualScheduler(testEpoch)

	nilField := NewField(nil, Config{}, Options{Scheduler: sched})
	if nilField.Enabled() {
		t.Error("nil container: Enabled")
	}

	failing := newFakeContainer(800, 600)
	failing.attachErr = errNoCanvas
	f := NewField(failing, Config{}, Options{Scheduler: sched})
	if f.Enabled() {
		t.Error("attach error: Enabled")
	}
	if sched.Pending() != 0 {
		t.Errorf("disabled field scheduled %d frames", sched.Pending())
	}

	unscheduled := newFakeContainer(800, 600)
	g := NewField(unscheduled, Config{}, Options{})
	if g.Enabled() || unscheduled.attaches != 0 {
		t.Errorf("no scheduler: enabled=%v attaches=%d", g.Enabled(), unscheduled.attaches)
	}

	// Every method is a no-op.
	for _, d := range []*Field{nilField, f, g, nil} {
		d.Resize()
		d.NotifyResize()
		d.PointerMove(1, 1)
		d.PointerLeave()
		d.InjectMove(1, 1)
		d.SetParticleCount(10)
		d.SetSpeed(1)
		d.SetConnectionDistance(10)
		d.Destroy()
		if d.PointerActive() || d.Particles() != nil || d.Stats() != (Stats{}) {
			t.Error("disabled field reported state")
		}
	}
}

func TestFieldNotifyResize_Debounced(t *testing.T) {
	f, c, sched := newTestField(1920, 1080, Config{})
	c.bounds = Rect{Width: 960, Height: 540}

	f.NotifyResize()
	sched.StepN(6, frame60) // 100ms
	f.NotifyResize()
	sched.StepN(6, frame60)
	if got := len(f.Particles()); got != 80 {
		t.Fatalf("resized before quiet period: %d particles", got)
	}
	sched.StepN(20, frame60)
	if got := len(f.Particles()); got != 20 {
		t.Errorf("particles = %d after resize, want 20", got)
	}
	if c.surface.resizes != 1 {
		t.Errorf("surface resizes = %d, want 1", c.surface.resizes)
	}
}

func TestFieldResize_PixelRatio(t *testing.T) {
	tests := []struct {
		ratio     float64
		wantScale float64
		wantW     int
	}{
		{1, 1, 300},
		{1.5, 1.5, 450},
		{3, 2, 600},
		{0, 1, 300},
	}
	for _, tt := range tests {
		c := newFakeContainer(300, 200)
		c.ratio = tt.ratio
		f := NewField(c, Config{}, Options{Scheduler: NewManualScheduler(testEpoch)})
		if c.surface.scale != tt.wantScale || c.surface.width != tt.wantW {
			t.Errorf("ratio %v: scale = %v width = %d, want %v %d",
				tt.ratio, c.surface.scale, c.surface.width, tt.wantScale, tt.wantW)
		}
		if got := f.Stats().Width; got != 300 {
			t.Errorf("logical width = %v, want 300", got)
		}
	}
}

func TestFieldPointer_IdleExpiry(t *testing.T) {
	f, _, sched := newTestField(800, 600, Config{})
	f.PointerMove(100, 100)
	if !f.PointerActive() {
		t.Fatal("not active after move")
	}
	sched.Advance(50 * time.Millisecond)
	if !f.PointerActive() {
		t.Error("expired before idle period")
	}
	sched.Advance(60 * time.Millisecond)
	if f.PointerActive() {
		t.Error("still active after idle period")
	}

	f.PointerMove(100, 100)
	f.PointerLeave()
	if f.PointerActive() {
		t.Error("active after leave")
	}
}

func TestFieldPointer_PerInstance(t *testing.T) {
	sched := NewManualScheduler(testEpoch)
	a := NewField(newFakeContainer(400, 400), Config{}, Options{Scheduler: sched})
	b := NewField(newFakeContainer(400, 400), Config{}, Options{Scheduler: sched})
	a.PointerMove(10, 10)
	if b.PointerActive() {
		t.Error("pointer state shared between fields")
	}
}

func TestFieldSetSpeed(t *testing.T) {
	f, _, _ := newTestField(800, 600, Config{})
	f.SetSpeed(4)
	for i, p := range f.Particles() {
		if p.VX < -2 || p.VX >= 2 || p.VY < -2 || p.VY >= 2 {
			t.Fatalf("particle %d velocity (%v, %v) outside speed range", i, p.VX, p.VY)
		}
	}
	if f.Config().ParticleSpeed != 4 {
		t.Errorf("speed = %v", f.Config().ParticleSpeed)
	}
}

func TestFieldSetConnectionDistance(t *testing.T) {
	f, _, sched := newTestField(800, 600, Config{})
	f.SetConnectionDistance(-5)
	sched.Step(frame60)
	if len(f.Connections()) != 0 {
		t.Errorf("connections = %d at 1px threshold", len(f.Connections()))
	}
}

func TestFieldFadeIn(t *testing.T) {
	f, _, sched := newTestField(400, 300, Config{})
	sched.Step(frame60)
	sched.Step(frame60)
	early := f.fade.Value()
	if early <= 0 || early >= 1 {
		t.Errorf("fade after two frames = %v, want in (0, 1)", early)
	}
	sched.StepN(60, frame60)
	if got := f.fade.Value(); got != 1 {
		t.Errorf("fade after 1s = %v, want 1", got)
	}
}

func TestFieldFadeIn_Disabled(t *testing.T) {
	f, _, sched := newTestField(400, 300, Config{FadeIn: -1})
	sched.Step(frame60)
	if got := f.fade.Value(); got != 1 {
		t.Errorf("fade = %v, want 1", got)
	}
}

func TestFieldStats(t *testing.T) {
	f, _, sched := newTestField(800, 600, Config{})
	sched.StepN(5, frame60)
	st := f.Stats()
	if st.Frames != 5 {
		t.Errorf("frames = %d, want 5", st.Frames)
	}
	if st.Particles != len(f.Particles()) || st.Width != 800 || st.Height != 600 {
		t.Errorf("stats = %+v", st)
	}
}
