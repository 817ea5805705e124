package particlefield

import "time"

// loop is a self-rescheduling frame callback with an explicit stop. Every
// effect runs on one.
type loop struct {
	sched   Scheduler
	id      FrameID
	stopped bool
	onFrame FrameFunc
}

func startLoop(sched Scheduler, onFrame FrameFunc) *loop {
	l := &loop{sched: sched, onFrame: onFrame}
	l.id = sched.ScheduleNextFrame(l.tick)
	return l
}

func (l *loop) tick(now time.Time) {
	if l.stopped {
		return
	}
	l.onFrame(now)
	// onFrame may have torn the effect down.
	if !l.stopped {
		l.id = l.sched.ScheduleNextFrame(l.tick)
	}
}

// stop cancels the pending frame. Safe to call more than once.
func (l *loop) stop() {
	if l.stopped {
		return
	}
	l.stopped = true
	l.sched.Cancel(l.id)
}

// resolveScheduler picks the explicit scheduler, else the container's own
// when it implements Scheduler.
func resolveScheduler(explicit Scheduler, c Container) Scheduler {
	if explicit != nil {
		return explicit
	}
	if s, ok := c.(Scheduler); ok {
		return s
	}
	return nil
}

// resolveClock prefers an explicit clock, then the scheduler's own clock so
// that simulated frames and timers agree, then wall time.
func resolveClock(explicit func() time.Time, sched Scheduler) func() time.Time {
	if explicit != nil {
		return explicit
	}
	if c, ok := sched.(interface{ Now() time.Time }); ok {
		return c.Now
	}
	return time.Now
}
