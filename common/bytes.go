package common

import "unsafe"

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// AlignTo returns data padded with zero bytes up to the next multiple of alignment.
// The input is returned unchanged when it is already aligned.
// WebGPU requires buffer writes to be a multiple of 4 bytes.
//
// Parameters:
//   - data: the bytes to pad
//   - alignment: the required alignment, must be greater than zero
//
// Returns:
//   - []byte: the aligned bytes
func AlignTo(data []byte, alignment int) []byte {
	rem := len(data) % alignment
	if rem == 0 {
		return data
	}
	padded := make([]byte, len(data)+alignment-rem)
	copy(padded, data)
	return padded
}
