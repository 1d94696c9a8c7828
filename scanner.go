package streamcsv

import (
	"bytes"

	"golang.org/x/sys/cpu"
)

// =============================================================================
// Structural Byte Search - CPU Detection and Fallback
// =============================================================================
//
// The tokenizer asks for the index of the next structural byte (delimiter or
// terminator start outside quotes, quote or escape inside quotes) and copies
// the run in front of it in one append.
//
// On CPUs with AVX2 or ASIMD the search runs bytes.IndexByte once per needle,
// which uses the runtime's vectorized assembly. Short windows and other CPUs
// use a single scalar pass.
//
// =============================================================================

// useVectorSearch indicates whether the vectorized search path is used.
// Set once at init time.
var useVectorSearch bool

// vectorMinThreshold is the minimum window length for the vectorized path.
const vectorMinThreshold = 32

func init() {
	useVectorSearch = cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD
}

// shouldUseVector returns true if the vectorized path should be used for a
// window of dataLen bytes.
func shouldUseVector(dataLen int) bool {
	return useVectorSearch && dataLen >= vectorMinThreshold
}

// indexEither returns the index of the first byte in data equal to a or b,
// or -1 if there is none.
func indexEither(data []byte, a, b byte) int {
	if shouldUseVector(len(data)) {
		return indexEitherVector(data, a, b)
	}
	return indexEitherScalar(data, a, b)
}

// indexEitherScalar is the scalar implementation.
func indexEitherScalar(data []byte, a, b byte) int {
	for i, c := range data {
		if c == a || c == b {
			return i
		}
	}
	return -1
}

// indexEitherVector narrows the window to the first hit of a before
// searching for b, so no byte is examined twice by the second search.
func indexEitherVector(data []byte, a, b byte) int {
	i := bytes.IndexByte(data, a)
	if a == b {
		return i
	}
	window := data
	if i >= 0 {
		window = data[:i]
	}
	if j := bytes.IndexByte(window, b); j >= 0 {
		return j
	}
	return i
}
