// SPDX-License-Identifier: MIT

// Package ipmath provides address arithmetic for IPv4 and IPv6 prefixes:
// parsing, fixed-width unsigned conversion, saturating shifts, and
// leading/trailing-zero counts across 32- and 128-bit widths.
package ipmath

import (
	"fmt"
	"math/bits"
)

// Uint128 is an emulated 128-bit unsigned integer, used for IPv6 address
// arithmetic on platforms without a native 128-bit type. Hi holds the upper
// 64 bits, Lo the lower 64 bits.
type Uint128 struct {
	Hi, Lo uint64
}

// Uint128Max is the all-ones 128-bit value.
var Uint128Max = Uint128{Hi: ^uint64(0), Lo: ^uint64(0)}

// NewUint128 builds a Uint128 from its high and low 64-bit halves.
func NewUint128(hi, lo uint64) Uint128 {
	return Uint128{Hi: hi, Lo: lo}
}

// Cmp returns -1, 0, or 1 as u is less than, equal to, or greater than v.
func (u Uint128) Cmp(v Uint128) int {
	if u.Hi != v.Hi {
		if u.Hi < v.Hi {
			return -1
		}
		return 1
	}
	if u.Lo != v.Lo {
		if u.Lo < v.Lo {
			return -1
		}
		return 1
	}
	return 0
}

// IsZero reports whether u is the zero value.
func (u Uint128) IsZero() bool {
	return u.Hi == 0 && u.Lo == 0
}

// Add returns u+v, wrapping modulo 2^128 on overflow.
func (u Uint128) Add(v Uint128) Uint128 {
	lo := u.Lo + v.Lo
	hi := u.Hi + v.Hi
	if lo < u.Lo {
		hi++
	}
	return Uint128{Hi: hi, Lo: lo}
}

// AddOverflow returns u+v along with whether the addition overflowed 2^128.
// This is how the one-past-end of a /0 IPv6 interval (2^128) is represented:
// as Uint128Max.AddOverflow(NewUint128(0,1)) -> (0, true).
func (u Uint128) AddOverflow(v Uint128) (Uint128, bool) {
	sum := u.Add(v)
	overflowed := sum.Cmp(u) < 0 && !v.IsZero()
	return sum, overflowed
}

// Sub returns u-v, wrapping modulo 2^128 on underflow.
func (u Uint128) Sub(v Uint128) Uint128 {
	lo := u.Lo - v.Lo
	hi := u.Hi - v.Hi
	if u.Lo < v.Lo {
		hi--
	}
	return Uint128{Hi: hi, Lo: lo}
}

// And returns the bitwise AND of u and v.
func (u Uint128) And(v Uint128) Uint128 { return Uint128{Hi: u.Hi & v.Hi, Lo: u.Lo & v.Lo} }

// Or returns the bitwise OR of u and v.
func (u Uint128) Or(v Uint128) Uint128 { return Uint128{Hi: u.Hi | v.Hi, Lo: u.Lo | v.Lo} }

// Not returns the bitwise complement of u.
func (u Uint128) Not() Uint128 { return Uint128{Hi: ^u.Hi, Lo: ^u.Lo} }

// Shl returns u shifted left by n bits, saturating to zero when n >= 128
// (a plain Go shift by >= the operand width is undefined for the emulated
// type, so this is computed explicitly rather than relying on `<<`).
func (u Uint128) Shl(n uint) Uint128 {
	switch {
	case n == 0:
		return u
	case n >= 128:
		return Uint128{}
	case n >= 64:
		return Uint128{Hi: u.Lo << (n - 64), Lo: 0}
	default:
		return Uint128{Hi: (u.Hi << n) | (u.Lo >> (64 - n)), Lo: u.Lo << n}
	}
}

// Shr returns u shifted right by n bits (logical), saturating to zero when
// n >= 128.
func (u Uint128) Shr(n uint) Uint128 {
	switch {
	case n == 0:
		return u
	case n >= 128:
		return Uint128{}
	case n >= 64:
		return Uint128{Hi: 0, Lo: u.Hi >> (n - 64)}
	default:
		return Uint128{Hi: u.Hi >> n, Lo: (u.Lo >> n) | (u.Hi << (64 - n))}
	}
}

// LeadingZeros returns the number of leading zero bits in u, treating it as
// a 128-bit word (so Uint128{}.LeadingZeros() == 128).
func (u Uint128) LeadingZeros() int {
	if u.Hi != 0 {
		return bits.LeadingZeros64(u.Hi)
	}
	return 64 + bits.LeadingZeros64(u.Lo)
}

// TrailingZeros returns the number of trailing zero bits in u, treating it
// as a 128-bit word (so Uint128{}.TrailingZeros() == 128). This is the case
// spec.md calls out explicitly: trailing_zeros(0) must read as the full
// width so that the interval-to-CIDR split yields a /0 for the whole
// address space, not a divide-by-alignment error.
func (u Uint128) TrailingZeros() int {
	if u.Lo != 0 {
		return bits.TrailingZeros64(u.Lo)
	}
	return 64 + bits.TrailingZeros64(u.Hi)
}

// BitLen returns the number of bits required to represent u (0 for the
// zero value), i.e. 128 - LeadingZeros().
func (u Uint128) BitLen() int {
	return 128 - u.LeadingZeros()
}

func (u Uint128) String() string {
	return fmt.Sprintf("0x%016x%016x", u.Hi, u.Lo)
}

// Bytes16 renders u as 16 big-endian bytes, the wire/textual form of an
// IPv6 address.
func (u Uint128) Bytes16() [16]byte {
	var b [16]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(u.Hi >> (56 - 8*i))
		b[8+i] = byte(u.Lo >> (56 - 8*i))
	}
	return b
}

// Uint128FromBytes16 parses 16 big-endian bytes into a Uint128.
func Uint128FromBytes16(b [16]byte) Uint128 {
	var hi, lo uint64
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(b[i])
	}
	for i := 8; i < 16; i++ {
		lo = lo<<8 | uint64(b[i])
	}
	return Uint128{Hi: hi, Lo: lo}
}
