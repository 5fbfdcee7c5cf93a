package hash

// HashVectorized computes many hashes sharing the same max, lane by lane
var HashVectorized func(out []uint32, n []uint32, s []uint32, max uint32) = hashNotVectorized

// HashVectorizedDistinct computes many hashes each with its own max
var HashVectorizedDistinct func(out []uint32, n []uint32, s []uint32, max []uint32) = hashNotVectorizedDistinct

var hashVectorizedParallelism int = 1

// HashVectorizedParallelism reports the recommended number of hashes to compute in one batch on this platform
// Can't return 0.
func HashVectorizedParallelism() int {
	return hashVectorizedParallelism
}

func hashNotVectorized(out []uint32, n []uint32, s []uint32, max uint32) {
	for i := range out {
		out[i] = Hash(n[i], s[i], max)
	}
}

func hashNotVectorizedDistinct(out []uint32, n []uint32, s []uint32, max []uint32) {
	for i := range out {
		out[i] = Hash(n[i], s[i], max[i])
	}
}

// StringsHashVectorized hashes every string in strs under the salt and reduces it into 0 to max-1
func StringsHashVectorized(out []uint32, strs []string, salt uint32, max uint32) {
	var lanes = HashVectorizedParallelism()
	var n = make([]uint32, lanes)
	var s = make([]uint32, lanes)
	for base := 0; base < len(strs); base += lanes {
		end := base + lanes
		if end > len(strs) {
			end = len(strs)
		}
		for i := base; i < end; i++ {
			n[i-base] = StringHash(salt, strs[i])
			s[i-base] = salt
		}
		HashVectorized(out[base:end], n[:end-base], s[:end-base], max)
	}
}
