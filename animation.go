package particlefield

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// fadeIn eases the drawn alpha of a freshly seeded particle set from 0 to 1
// so a reseed does not pop. A nil tween means the fade is disabled and Value
// is always 1.
type fadeIn struct {
	tween *gween.Tween
	value float64
	done  bool
}

// newFadeIn creates a fade lasting d. Non-positive durations disable it.
func newFadeIn(d time.Duration) *fadeIn {
	f := &fadeIn{value: 1, done: true}
	if d > 0 {
		f.tween = gween.New(0, 1, float32(d.Seconds()), ease.OutQuad)
		f.restart()
	}
	return f
}

// restart rewinds the fade to fully transparent.
func (f *fadeIn) restart() {
	if f.tween == nil {
		return
	}
	f.tween.Reset()
	f.value = 0
	f.done = false
}

// Update advances the fade by dt seconds and returns the current alpha.
func (f *fadeIn) Update(dt float32) float64 {
	if f.done {
		return f.value
	}
	val, finished := f.tween.Update(dt)
	f.value = float64(val)
	if finished {
		f.value = 1
		f.done = true
	}
	return f.value
}

// Value returns the current alpha without advancing.
func (f *fadeIn) Value() float64 {
	return f.value
}
