// Package profile starts and stops runtime profiling of the neutral command.
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//	neutral --pprof-mode cpu --pprof-dir ./prof render index.ntpl
//	go tool pprof -http=: ./prof/cpu.pprof
//
// Without the tag [Modes] is empty and [Profiler.Start] does nothing, so
// callers never need their own build constraints.
package profile
