//go:build !noasm && amd64

package hash

import "github.com/klauspost/cpuid/v2"

func init() {
	// wider lanes pay off only when the cpu can keep them busy
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ):
		hashVectorizedParallelism = 16
	case cpuid.CPU.Supports(cpuid.AVX2):
		hashVectorizedParallelism = 8
	default:
		hashVectorizedParallelism = 1
	}
}
