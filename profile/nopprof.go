//go:build !pprof

package profile

// Enabled reports whether profiling is compiled in.
const Enabled = false

// Modes returns the profiling modes in sorted order. It is empty unless
// built with [Tag].
func Modes() []string { return nil }

func start(Profiler) Stopper { return ignore{} }
