package particlefield

import (
	"encoding/json"
	"fmt"
)

// scriptStep represents a single action in a script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// script is the top-level JSON structure for a script.
type script struct {
	Steps []scriptStep `json:"steps"`
}

// Runner sequences pointer events, resizes and screenshots across frames
// for automated visual checks. Attach to a Field via SetScript.
//
// Supported actions: "move" (x, y), "sweep" (fromX, fromY, toX, toY, frames),
// "leave", "resize" (width, height), "wait" (frames), "screenshot" (label)
// and "destroy".
type Runner struct {
	// OnResize changes the host container size for "resize" steps. The
	// field is notified through NotifyResize afterwards. Steps are skipped
	// when nil.
	OnResize func(width, height float64)
	// ScreenshotDir is where "screenshot" steps write PNGs. Defaults to
	// "screenshots".
	ScreenshotDir string

	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	shots     []string // labels captured so far
	err       error
}

// LoadScript parses a JSON script and returns a Runner ready to be attached
// to a Field via SetScript.
func LoadScript(jsonData []byte) (*Runner, error) {
	var s script
	if err := json.Unmarshal(jsonData, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range s.Steps {
		switch st.Action {
		case "move", "sweep", "leave", "resize", "wait", "screenshot", "destroy":
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &Runner{steps: s.Steps, ScreenshotDir: defaultScreenshotDir}, nil
}

// Done reports whether all steps have been executed.
func (r *Runner) Done() bool {
	return r.done
}

// Screenshots returns the labels of screenshots written so far.
func (r *Runner) Screenshots() []string {
	return r.shots
}

// Err returns the first screenshot failure, if any.
func (r *Runner) Err() error {
	return r.err
}

// step advances the runner by one frame. Called from Field.frame.
func (r *Runner) step(f *Field) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(f.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "move":
		f.InjectMove(st.X, st.Y)
	case "sweep":
		f.InjectSweep(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "leave":
		f.InjectLeave()
	case "resize":
		if r.OnResize != nil {
			r.OnResize(st.Width, st.Height)
			f.NotifyResize()
		}
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "screenshot":
		r.screenshot(f, st.Label)
	case "destroy":
		r.done = true
		f.Destroy()
		return
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(f.injectQueue) == 0 {
		r.done = true
	}
}

// screenshot writes the field's surface when it can be snapshotted.
func (r *Runner) screenshot(f *Field, label string) {
	snap, ok := f.surface.(Snapshotter)
	if !ok {
		return
	}
	if _, err := writeScreenshot(r.ScreenshotDir, label, snap.Snapshot()); err != nil {
		if r.err == nil {
			r.err = err
		}
		f.logger.Warn("screenshot failed", "label", label, "error", err)
		return
	}
	r.shots = append(r.shots, label)
}
