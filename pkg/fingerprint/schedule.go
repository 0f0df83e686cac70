package fingerprint

import "math/bits"

const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB

	// SampleSize is the length of every hashed chunk.
	SampleSize = 8 * KiB

	MinSamples = 2
	MaxSamples = 4

	// MinSamplesMax and MaxSamplesMin bound the logarithmic scaling of the
	// sample count between MinSamples and MaxSamples.
	MinSamplesMax = 1 * MiB
	MaxSamplesMin = 16 * GiB
)

// SampleCount returns the number of chunks sampled from a file of the given
// size. Files no larger than MinSamples chunks are read whole instead.
func SampleCount(size uint64) uint64 {
	if size == 0 {
		return MinSamples
	}

	span := ilog2(MaxSamplesMin) - ilog2(MinSamplesMax)
	samples := MinSamples + ilog2(size)*(MaxSamples-MinSamples)/span

	return min(max(samples, MinSamples), MaxSamples)
}

// SkipLength returns how many bytes to seek forward after each chunk.
func SkipLength(size uint64) int64 {
	if size <= MinSamples*SampleSize {
		return 0
	}

	stride := size / SampleCount(size)
	if stride <= SampleSize {
		// the samples would overlap; read sequentially
		return 0
	}

	return int64(stride - SampleSize)
}

func ilog2(n uint64) uint64 {
	return uint64(bits.Len64(n) - 1)
}
