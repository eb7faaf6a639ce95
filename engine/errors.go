package granular

import "errors"

// Error taxonomy, per spec.md §7. Config errors are fatal and returned from
// NewEngine. The others are recovered locally on the audio thread and never
// propagate as Go errors from the realtime path; Engine.Stats exposes the
// dropped-grain and dropped-telemetry counters and a flag set once the
// limiter ring has been resized.
var (
	// ErrConfig marks an invalid construction config (fatal).
	ErrConfig = errors.New("granular: invalid configuration")
	// ErrCapacity marks a grain-pool-full condition (recovered, spawn dropped).
	ErrCapacity = errors.New("granular: grain pool at capacity")
	// ErrState marks an operation valid but producing silence, e.g. no buffer.
	ErrState = errors.New("granular: no source buffer")
	// ErrRingResize marks the limiter's look-ahead ring growing mid-block.
	ErrRingResize = errors.New("granular: limiter ring resized")
)

// ConfigError wraps ErrConfig with the offending field for diagnostics.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return "granular: invalid configuration field " + e.Field + ": " + e.Msg
}

func (e *ConfigError) Unwrap() error { return ErrConfig }
