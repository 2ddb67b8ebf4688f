package vecdb

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// Numeric is the closed set of fixed-width scalar types a vector may hold.
// Go generics have no equivalent to a zero-copy derive over arbitrary
// plain-data structs, so this module narrows the element type to the
// numeric kinds the standard library and encoding/binary already know how
// to serialize portably.
type Numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// sizeOfT returns size_of(T) for a Numeric type, mirroring the engine's
// build-time element-size constant.
func sizeOfT[T Numeric]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// encodeNative writes v's native in-memory bytes into dst (which must be
// at least sizeOfT[T]() long), for the FormatNative strategy. Together with
// decodeNative (and sizeOfT's unsafe.Sizeof) it is the only place in the
// package that reaches for unsafe, mirroring the engine's raw-pointer
// memcpy write through the mmap.
func encodeNative[T Numeric](dst []byte, v T) {
	src := unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v))
	copy(dst, src)
}

// decodeNative reinterprets src's bytes as T in native byte order.
func decodeNative[T Numeric](src []byte) T {
	var v T
	dst := unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v))
	copy(dst, src)
	return v
}

// encodeLE writes v into dst using an explicit little-endian serializer,
// portable across host byte order.
func encodeLE[T Numeric](dst []byte, v T) {
	switch x := any(v).(type) {
	case int8:
		dst[0] = byte(x)
	case uint8:
		dst[0] = byte(x)
	case int16:
		binary.LittleEndian.PutUint16(dst, uint16(x))
	case uint16:
		binary.LittleEndian.PutUint16(dst, x)
	case int32:
		binary.LittleEndian.PutUint32(dst, uint32(x))
	case uint32:
		binary.LittleEndian.PutUint32(dst, x)
	case int64:
		binary.LittleEndian.PutUint64(dst, uint64(x))
	case uint64:
		binary.LittleEndian.PutUint64(dst, x)
	case float32:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(x))
	case float64:
		binary.LittleEndian.PutUint64(dst, math.Float64bits(x))
	default:
		panic("vecdb: unreachable Numeric type in encodeLE")
	}
}

// decodeLE is the inverse of encodeLE.
func decodeLE[T Numeric](src []byte) T {
	var zero T
	switch any(zero).(type) {
	case int8:
		return any(int8(src[0])).(T)
	case uint8:
		return any(src[0]).(T)
	case int16:
		return any(int16(binary.LittleEndian.Uint16(src))).(T)
	case uint16:
		return any(binary.LittleEndian.Uint16(src)).(T)
	case int32:
		return any(int32(binary.LittleEndian.Uint32(src))).(T)
	case uint32:
		return any(binary.LittleEndian.Uint32(src)).(T)
	case int64:
		return any(int64(binary.LittleEndian.Uint64(src))).(T)
	case uint64:
		return any(binary.LittleEndian.Uint64(src)).(T)
	case float32:
		return any(math.Float32frombits(binary.LittleEndian.Uint32(src))).(T)
	case float64:
		return any(math.Float64frombits(binary.LittleEndian.Uint64(src))).(T)
	default:
		panic("vecdb: unreachable Numeric type in decodeLE")
	}
}

// bitsOf and fromBits let the compression strategies operate on a uniform
// 64-bit-lane domain for delta coding without one code path per Numeric
// type. The conversion is a lossless bit reinterpretation (zero-extended
// for narrower integer types, raw IEEE-754 bits for floats), never a
// numeric cast, so round-tripping through a codec is always exact.
func bitsOf[T Numeric](v T) uint64 {
	switch x := any(v).(type) {
	case int8:
		return uint64(uint8(x))
	case uint8:
		return uint64(x)
	case int16:
		return uint64(uint16(x))
	case uint16:
		return uint64(x)
	case int32:
		return uint64(uint32(x))
	case uint32:
		return uint64(x)
	case int64:
		return uint64(x)
	case uint64:
		return x
	case float32:
		return uint64(math.Float32bits(x))
	case float64:
		return math.Float64bits(x)
	default:
		panic("vecdb: unreachable Numeric type in bitsOf")
	}
}

func fromBits[T Numeric](bits uint64) T {
	var zero T
	switch any(zero).(type) {
	case int8:
		return any(int8(uint8(bits))).(T)
	case uint8:
		return any(uint8(bits)).(T)
	case int16:
		return any(int16(uint16(bits))).(T)
	case uint16:
		return any(uint16(bits)).(T)
	case int32:
		return any(int32(uint32(bits))).(T)
	case uint32:
		return any(uint32(bits)).(T)
	case int64:
		return any(int64(bits)).(T)
	case uint64:
		return any(bits).(T)
	case float32:
		return any(math.Float32frombits(uint32(bits))).(T)
	case float64:
		return any(math.Float64frombits(bits)).(T)
	default:
		panic("vecdb: unreachable Numeric type in fromBits")
	}
}
