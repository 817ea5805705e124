package particlefield

import (
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// Environment holds the host capability signals checked before an effect is
// constructed. Zero values mean "unknown" and never count against the device.
type Environment struct {
	PrefersReducedMotion bool
	LogicalCores         int
	DeviceMemoryGB       float64
	UserAgent            string
}

const (
	minCores    = 4
	minMemoryGB = 4
)

var mobileAgent = regexp.MustCompile(`(?i)Android|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)

// LowEnd reports whether the environment looks like a device that should
// skip decorative animation: fewer than four cores, under 4GB of memory, or
// a mobile user agent.
func (e Environment) LowEnd() bool {
	if e.LogicalCores > 0 && e.LogicalCores < minCores {
		return true
	}
	if e.DeviceMemoryGB > 0 && e.DeviceMemoryGB < minMemoryGB {
		return true
	}
	return e.UserAgent != "" && mobileAgent.MatchString(e.UserAgent)
}

// ShouldAnimate is the construction gate: false when reduced motion is
// requested or the device looks low-end.
func ShouldAnimate(env Environment) bool {
	return !env.PrefersReducedMotion && !env.LowEnd()
}

// Mount constructs a Field only when ShouldAnimate allows it. When gated it
// returns nil without touching the container; every Field method is safe to
// call on the nil result.
func Mount(container Container, env Environment, cfg Config, opts Options) *Field {
	if !ShouldAnimate(env) {
		opts.logger().Info("skipping particle field",
			"reduced_motion", env.PrefersReducedMotion,
			"low_end", env.LowEnd(),
		)
		return nil
	}
	return NewField(container, cfg, opts)
}

// DetectEnvironment builds an Environment for a native process. Cores come
// from the Go runtime; reduced motion from PREFERS_REDUCED_MOTION (any true
// value per strconv.ParseBool, or "reduce"); memory and user agent from
// PARTICLEFIELD_DEVICE_MEMORY_GB and PARTICLEFIELD_USER_AGENT when set.
func DetectEnvironment() Environment {
	env := Environment{LogicalCores: runtime.NumCPU()}
	if v := strings.TrimSpace(os.Getenv("PREFERS_REDUCED_MOTION")); v != "" {
		b, err := strconv.ParseBool(v)
		env.PrefersReducedMotion = b || (err != nil && strings.EqualFold(v, "reduce"))
	}
	if v := os.Getenv("PARTICLEFIELD_DEVICE_MEMORY_GB"); v != "" {
		if gb, err := strconv.ParseFloat(v, 64); err == nil {
			env.DeviceMemoryGB = gb
		}
	}
	env.UserAgent = os.Getenv("PARTICLEFIELD_USER_AGENT")
	return env
}
