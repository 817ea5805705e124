// Package particlefield is an ambient particle-field background effect for
// [Ebitengine] windows and headless renderers.
//
// A [Field] fills a container with slowly drifting particles, draws faint
// lines between particles closer than a threshold, pulls nearby particles
// toward the pointer, and lowers its own particle count when frames run
// slow. The effect is decorative: construction never fails, and a field that
// cannot attach degrades into a no-op.
//
// # Quick start
//
// The simplest way to get started is [Run] with a [Host], which is the
// container, frame scheduler and game loop in one:
//
//	host := particlefield.NewHost(1280, 720)
//	field := particlefield.NewField(host, particlefield.DefaultConfig(), particlefield.Options{})
//	host.Track(field)
//	particlefield.Run(host, particlefield.RunConfig{
//		Title: "Particles", Width: 1280, Height: 720,
//	})
//
// For headless rendering, pair an [ImageContainer] with a [ManualScheduler]
// and step frames yourself:
//
//	sched := particlefield.NewManualScheduler(time.Now())
//	box := particlefield.NewImageContainer(960, 540)
//	field := particlefield.NewField(box, cfg, particlefield.Options{Scheduler: sched})
//	sched.StepN(120, time.Second/60)
//	img := box.Surface().Snapshot()
//
// # Gating
//
// [Mount] checks an [Environment] first and returns nil, leaving the container
// untouched, when reduced motion is requested or the device looks low-end.
// Every Field method is safe on a nil Field.
//
// # Configuration
//
// [DefaultConfig] returns the embedded defaults; [LoadConfig] overlays a YAML
// file on them. Zero fields fall back to defaults and out-of-range values are
// clamped.
//
// # Variants
//
// [Rain] and [Shapes] are lighter background effects sharing the same
// attach, frame loop and teardown rules.
//
// [Ebitengine]: https://ebitengine.org
package particlefield
