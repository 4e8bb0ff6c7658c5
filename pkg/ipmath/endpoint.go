package ipmath

// U64 is a Compare-able uint64, the interval key type used for IPv4 ranges.
// A v4 address needs at most 32 bits and its one-past-end (for a /0) is
// 2^32, which fits comfortably in a uint64 with no overflow handling
// needed — unlike IPv6, where the equivalent one-past-end is 2^128 and
// requires Endpoint's explicit overflow flag below.
type U64 uint64

// Compare returns -1, 0, or 1 as u is less than, equal to, or greater than v.
func (u U64) Compare(v U64) int {
	switch {
	case u < v:
		return -1
	case u > v:
		return 1
	default:
		return 0
	}
}

// Succ returns u+1, saturating at the maximum uint64 value.
func (u U64) Succ() U64 {
	if u == ^U64(0) {
		return u
	}
	return u + 1
}

// Pred returns u-1, saturating at zero.
func (u U64) Pred() U64 {
	if u == 0 {
		return u
	}
	return u - 1
}

// Endpoint represents a position in the IPv6 address space plus one: a
// plain Uint128 address, or — when Overflow is set — the sentinel "one past
// Uint128Max", i.e. 2^128. This is the 129-bit abstraction spec.md calls
// for: the one-past-end of an IPv6 /0 interval is 2^128, which cannot be
// represented by any finite Uint128 value.
type Endpoint struct {
	Value    Uint128
	Overflow bool
}

// EndpointFromAddr builds a finite Endpoint from a Uint128 address.
func EndpointFromAddr(v Uint128) Endpoint { return Endpoint{Value: v} }

// EndpointInfinity is the one-past-Uint128Max sentinel, 2^128.
var EndpointInfinity = Endpoint{Overflow: true}

// Compare returns -1, 0, or 1 as e is less than, equal to, or greater than f.
// The overflow sentinel compares greater than every finite value.
func (e Endpoint) Compare(f Endpoint) int {
	if e.Overflow && f.Overflow {
		return 0
	}
	if e.Overflow {
		return 1
	}
	if f.Overflow {
		return -1
	}
	return e.Value.Cmp(f.Value)
}

// Succ returns e+1, saturating at EndpointInfinity.
func (e Endpoint) Succ() Endpoint {
	if e.Overflow {
		return e
	}
	sum, overflowed := e.Value.AddOverflow(NewUint128(0, 1))
	if overflowed {
		return EndpointInfinity
	}
	return Endpoint{Value: sum}
}

// Pred returns e-1, saturating at the zero address. Pred of the infinity
// sentinel is Uint128Max, its only finite predecessor.
func (e Endpoint) Pred() Endpoint {
	if e.Overflow {
		return Endpoint{Value: Uint128Max}
	}
	if e.Value.IsZero() {
		return e
	}
	return Endpoint{Value: e.Value.Sub(NewUint128(0, 1))}
}
