package particlefield

import "time"

// pointerState tracks the pointer over one field's container. Each Field owns
// its own; instances never share pointer state.
type pointerState struct {
	x, y     float64
	active   bool
	deadline time.Time // active clears once the clock reaches this
}

// move records a pointer position and rearms the idle deadline.
func (p *pointerState) move(x, y float64, now time.Time, idle time.Duration) {
	p.x, p.y = x, y
	p.active = true
	p.deadline = now.Add(idle)
}

// leave clears the active flag immediately.
func (p *pointerState) leave() {
	p.active = false
}

// expire clears the active flag when no move arrived within the idle period.
func (p *pointerState) expire(now time.Time) {
	if p.active && !now.Before(p.deadline) {
		p.active = false
	}
}

func (p *pointerState) sample() pointerSample {
	return pointerSample{X: p.x, Y: p.y, Active: p.active}
}

// syntheticPointerEvent is a queued pointer event for scripted runs.
type syntheticPointerEvent struct {
	x, y  float64
	leave bool
}

// PointerMove reports a pointer position in container-local coordinates.
// The pointer stays active until PointerIdle passes without another move.
func (f *Field) PointerMove(x, y float64) {
	if !f.live() {
		return
	}
	f.pointer.move(x, y, f.clock(), f.cfg.PointerIdle)
}

// PointerLeave reports that the pointer left the container.
func (f *Field) PointerLeave() {
	if !f.live() {
		return
	}
	f.pointer.leave()
}

// PointerActive reports whether the pointer currently exerts force.
func (f *Field) PointerActive() bool {
	if !f.live() {
		return false
	}
	f.pointer.expire(f.clock())
	return f.pointer.active
}

// InjectMove queues a pointer move that is applied at the start of the next
// frame, like real input arriving between frames.
func (f *Field) InjectMove(x, y float64) {
	if !f.live() {
		return
	}
	f.injectQueue = append(f.injectQueue, syntheticPointerEvent{x: x, y: y})
}

// InjectLeave queues a pointer leave for the next frame.
func (f *Field) InjectLeave() {
	if !f.live() {
		return
	}
	f.injectQueue = append(f.injectQueue, syntheticPointerEvent{leave: true})
}

// InjectSweep queues a straight pointer path from (fromX, fromY) to
// (toX, toY), one move per frame over frames frames.
func (f *Field) InjectSweep(fromX, fromY, toX, toY float64, frames int) {
	if frames < 1 {
		frames = 1
	}
	for i := 1; i <= frames; i++ {
		t := float64(i) / float64(frames)
		f.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
}

// processInjectedInput pops one queued event. Called once per frame.
func (f *Field) processInjectedInput() {
	if len(f.injectQueue) == 0 {
		return
	}
	evt := f.injectQueue[0]
	copy(f.injectQueue, f.injectQueue[1:])
	f.injectQueue = f.injectQueue[:len(f.injectQueue)-1]

	if evt.leave {
		f.PointerLeave()
		return
	}
	f.PointerMove(evt.x, evt.y)
}
