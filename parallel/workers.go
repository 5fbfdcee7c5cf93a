package parallel

import "runtime"

import "github.com/klauspost/cpuid/v2"

// Workers clamps the requested number of workers to the available logical cores.
// A request of zero or less means one worker per logical core.
func Workers(requested int) int {
	cores := cpuid.CPU.LogicalCores
	if cores <= 0 {
		cores = runtime.NumCPU()
	}
	if requested <= 0 || requested > cores {
		return cores
	}
	return requested
}
