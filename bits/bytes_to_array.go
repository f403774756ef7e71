package bits

import (
	"unsafe"
)

type Numbers interface {
	uint64 | uint16 | uint8 | uint32 | int64 | int32 | int16 | int8 | float32 | float64
}

// ArrayBytes reinterprets arr as raw native-order bytes, no copy
func ArrayBytes[T Numbers](arr []T) []byte {
	if len(arr) == 0 {
		return nil
	}

	var sample T
	byteLen := len(arr) * int(unsafe.Sizeof(sample))
	return unsafe.Slice((*byte)(unsafe.Pointer(&arr[0])), byteLen)
}

// CopyBytesToArray fills out from raw bytes. Copies into the typed slice so data needs no alignment.
func CopyBytesToArray[T Numbers](data []byte, out []T) error {
	if len(out) == 0 {
		return nil
	}

	dst := ArrayBytes(out)
	if len(data) < len(dst) {
		return ErrReadMismatch
	}

	copy(dst, data)
	return nil
}
