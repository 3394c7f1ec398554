package bit

// Unsigned covers every register and bus width used by the chips.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Combine combines two 8 bit values into a single 16 bit value.
// The high byte will be the most significant one.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// IsSet will check if the bit at the specified index is set to 1 or not.
func IsSet[T Unsigned](index uint, v T) bool {
	return (v>>index)&1 == 1
}

// Set will return v with the bit at the specified index set to 1.
func Set[T Unsigned](index uint, v T) T {
	return v | (1 << index)
}

// Clear will return v with the bit at the specified index set to 0.
func Clear[T Unsigned](index uint, v T) T {
	return v &^ (1 << index)
}

// Toggle flips the bit at the specified index.
func Toggle[T Unsigned](index uint, v T) T {
	return v ^ (1 << index)
}

// Mask returns a value with the low width bits set.
func Mask[T Unsigned](width uint) T {
	if width >= 64 {
		return ^T(0)
	}
	return T(uint64(1)<<width - 1)
}

// Field extracts width bits starting at shift.
// Example: Field(0b11010110, 4, 3) -> 0b101 (bits 6, 5, 4)
func Field[T Unsigned](v T, shift, width uint) T {
	return (v >> shift) & Mask[T](width)
}

// WithField returns v with width bits starting at shift replaced by x.
// Bits of x beyond width are dropped.
func WithField[T Unsigned](v T, shift, width uint, x T) T {
	m := Mask[T](width) << shift
	return (v &^ m) | ((x << shift) & m)
}

// Low returns the low (LSB) part of a 16 bit number.
func Low(value uint16) uint8 {
	return uint8(value)
}

// High returns the high (MSB) part of a 16 bit number.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// FallingEdge reports whether any bit selected by mask went from 1 to 0.
func FallingEdge[T Unsigned](cur, prev, mask T) bool {
	return mask&(^cur&(cur^prev)) != 0
}

// RisingEdge reports whether any bit selected by mask went from 0 to 1.
func RisingEdge[T Unsigned](cur, prev, mask T) bool {
	return mask&(cur&(cur^prev)) != 0
}
