package common

import "unsafe"

// Coalesce returns the first of values that is not the zero value of T. Configuration
// defaults are applied with it.
//
// Parameters:
//   - values: candidates in priority order
//
// Returns:
//   - T: the first non-zero candidate, or the zero value
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// SliceToBytes reinterprets a slice as raw bytes for buffer uploads. The result aliases
// data and must not outlive it.
//
// Parameters:
//   - data: source slice of any fixed-size element type
//
// Returns:
//   - []byte: a byte view of data, or nil when data is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(unsafe.Sizeof(zero))*len(data))
}
