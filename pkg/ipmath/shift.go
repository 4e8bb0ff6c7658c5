package ipmath

import "math/bits"

// UnsignedInt is the set of native unsigned integer widths the generic
// saturating-shift helpers operate over. Uint128 is not included: it has no
// native machine width, so it gets its own methods (see uint128.go).
type UnsignedInt interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

func bitWidth[T UnsignedInt](v T) uint {
	switch any(v).(type) {
	case uint8:
		return 8
	case uint16:
		return 16
	case uint32:
		return 32
	default:
		return 64
	}
}

// SatShl shifts v left by n bits, saturating to zero when n is at least the
// type's bit width rather than relying on Go's shift-by-width-or-more
// behavior (itself well-defined as zero, but the intent here is explicit:
// CIDR math routinely needs to shift an all-ones mask by the full address
// width to build a /0 mask).
func SatShl[T UnsignedInt](v T, n uint) T {
	if n >= bitWidth(v) {
		return 0
	}
	return v << n
}

// SatShr shifts v right by n bits, saturating to zero when n is at least
// the type's bit width.
func SatShr[T UnsignedInt](v T, n uint) T {
	if n >= bitWidth(v) {
		return 0
	}
	return v >> n
}

// LeadingZeros returns the number of leading zero bits in v, relative to
// its declared width (so LeadingZeros(uint32(0)) == 32, not 64).
func LeadingZeros[T UnsignedInt](v T) int {
	w := bitWidth(v)
	return bits.LeadingZeros64(uint64(v)) - int(64-w)
}

// TrailingZeros returns the number of trailing zero bits in v, relative to
// its declared width (so TrailingZeros(uint32(0)) == 32).
func TrailingZeros[T UnsignedInt](v T) int {
	if v == 0 {
		return int(bitWidth(v))
	}
	return bits.TrailingZeros64(uint64(v))
}
