package particlefield

import "time"

// FrameFunc is an animation-frame callback. now is the frame timestamp.
type FrameFunc func(now time.Time)

// FrameID identifies a scheduled frame callback. The zero value is never
// issued.
type FrameID uint64

// Scheduler delivers animation frames. Implementations call each scheduled
// callback at most once, on the same goroutine as every other callback and
// every pointer/resize notification delivered to the engine.
type Scheduler interface {
	// ScheduleNextFrame queues fn for the next frame.
	ScheduleNextFrame(fn FrameFunc) FrameID
	// Cancel drops a queued callback. Unknown or already-run IDs are ignored.
	Cancel(id FrameID)
}

type pendingFrame struct {
	id FrameID
	fn FrameFunc
}

// frameQueue is the callback list shared by ManualScheduler and the ebiten host.
type frameQueue struct {
	nextID  FrameID
	pending []pendingFrame
	running []pendingFrame
}

func (q *frameQueue) schedule(fn FrameFunc) FrameID {
	q.nextID++
	q.pending = append(q.pending, pendingFrame{id: q.nextID, fn: fn})
	return q.nextID
}

func (q *frameQueue) cancel(id FrameID) {
	for i, p := range q.pending {
		if p.id == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// run executes the callbacks queued before the call. Callbacks scheduled while
// running wait for the next run, which is what keeps frame N+1 from starting
// inside frame N.
func (q *frameQueue) run(now time.Time) int {
	q.running, q.pending = q.pending, q.running[:0]
	n := len(q.running)
	for _, p := range q.running {
		p.fn(now)
	}
	q.running = q.running[:0]
	return n
}

// ManualScheduler is a deterministic Scheduler driven by explicit Step calls.
// It is meant for tests and headless rendering.
type ManualScheduler struct {
	queue frameQueue
	now   time.Time
}

// NewManualScheduler returns a scheduler whose clock starts at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// ScheduleNextFrame implements Scheduler.
func (s *ManualScheduler) ScheduleNextFrame(fn FrameFunc) FrameID {
	return s.queue.schedule(fn)
}

// Cancel implements Scheduler.
func (s *ManualScheduler) Cancel(id FrameID) {
	s.queue.cancel(id)
}

// Pending returns the number of queued callbacks.
func (s *ManualScheduler) Pending() int {
	return len(s.queue.pending)
}

// Now returns the scheduler clock. It can be passed as a field's clock so
// pointer and resize timers follow the simulated frames.
func (s *ManualScheduler) Now() time.Time {
	return s.now
}

// Step advances the clock by dt and runs one frame. It returns the number of
// callbacks that ran.
func (s *ManualScheduler) Step(dt time.Duration) int {
	s.now = s.now.Add(dt)
	return s.queue.run(s.now)
}

// StepN runs n frames spaced dt apart.
func (s *ManualScheduler) StepN(n int, dt time.Duration) {
	for range n {
		s.Step(dt)
	}
}

// Advance moves the clock without running a frame.
func (s *ManualScheduler) Advance(dt time.Duration) {
	s.now = s.now.Add(dt)
}
