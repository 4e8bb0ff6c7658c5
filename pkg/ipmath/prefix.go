// SPDX-License-Identifier: MIT

package ipmath

import (
	"fmt"
	"net/netip"
)

// Family distinguishes the two address families a Prefix can belong to.
type Family int

const (
	V4 Family = iota
	V6
)

func (f Family) String() string {
	if f == V4 {
		return "v4"
	}
	return "v6"
}

// Prefix is an (address, prefix-length) pair, the CIDR prefix of spec.md
// §3. Addr may have host bits set; Canonical clears them. Width returns
// 32 for an IPv4 Addr and 128 for an IPv6 one.
type Prefix struct {
	Addr netip.Addr
	Len  int
}

// Family reports which address family p belongs to.
func (p Prefix) Family() Family {
	if p.Addr.Is4() {
		return V4
	}
	return V6
}

// Width returns the bit width of p's address family.
func (p Prefix) Width() int {
	if p.Family() == V4 {
		return 32
	}
	return 128
}

// ParsePrefix parses a textual "addr/len" CIDR — dotted-quad or colon-hex —
// into a Prefix. Host bits may be set; the result is not canonicalized.
// This is the CIDR parse layer spec.md §4.3 leaves to "an upstream caller":
// supplied here so Aggregator's own contract stays total.
func ParsePrefix(s string) (Prefix, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return Prefix{}, fmt.Errorf("ipmath: invalid CIDR %q: %w", s, err)
	}
	return Prefix{Addr: p.Addr(), Len: p.Bits()}, nil
}

// String renders p in CIDR notation.
func (p Prefix) String() string {
	return fmt.Sprintf("%s/%d", p.Addr, p.Len)
}

// Canonical returns p with all host bits cleared (address == network).
func (p Prefix) Canonical() Prefix {
	return Prefix{Addr: p.Network(), Len: p.Len}
}

// IsCanonical reports whether p's address already equals its network
// (no host bits set).
func (p Prefix) IsCanonical() bool {
	return p.Addr == p.Network()
}

// Network returns network(p) = address & ~(all-ones >> len).
func (p Prefix) Network() netip.Addr {
	if p.Family() == V4 {
		mask := SatShl(^uint32(0), uint(32-p.Len))
		return Uint32ToAddr(AddrToUint32(p.Addr) & mask)
	}
	return Uint128ToAddr(AddrToUint128(p.Addr).And(v6NetworkMask(p.Len)))
}

// Broadcast returns broadcast(p) = address | (all-ones >> len), the last
// address in p's range.
func (p Prefix) Broadcast() netip.Addr {
	if p.Family() == V4 {
		hostMask := SatShr(^uint32(0), uint(p.Len))
		return Uint32ToAddr(AddrToUint32(p.Addr) | hostMask)
	}
	return Uint128ToAddr(AddrToUint128(p.Addr).Or(v6HostMask(p.Len)))
}

// v6NetworkMask returns the /len network mask: the top `len` bits set, the
// rest zero.
func v6NetworkMask(length int) Uint128 {
	if length <= 0 {
		return Uint128{}
	}
	return Uint128Max.Shl(uint(128 - length))
}

// v6HostMask returns the complement of v6NetworkMask: the low (128-len)
// bits set.
func v6HostMask(length int) Uint128 {
	return v6NetworkMask(length).Not()
}

// AddrToUint32 converts a v4 netip.Addr to its big-endian uint32 value.
func AddrToUint32(a netip.Addr) uint32 {
	b := a.As4()
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// Uint32ToAddr converts a uint32 back into a v4 netip.Addr.
func Uint32ToAddr(v uint32) netip.Addr {
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

// AddrToUint128 converts a v6 netip.Addr to its Uint128 value.
func AddrToUint128(a netip.Addr) Uint128 {
	return Uint128FromBytes16(a.As16())
}

// Uint128ToAddr converts a Uint128 back into a v6 netip.Addr.
func Uint128ToAddr(v Uint128) netip.Addr {
	return netip.AddrFrom16(v.Bytes16())
}

// ToRangeV4 maps a v4 Prefix to its half-open interval [network, broadcast+1)
// in the U64 key space.
func ToRangeV4(p Prefix) (lo, hi U64, err error) {
	if p.Family() != V4 {
		return 0, 0, fmt.Errorf("ipmath: %v/%d is not an IPv4 prefix", p.Addr, p.Len)
	}
	lo = U64(AddrToUint32(p.Network()))
	hi = U64(AddrToUint32(p.Broadcast())) + 1
	return lo, hi, nil
}

// ToRangeV6 maps a v6 Prefix to its half-open interval [network, broadcast+1)
// in Endpoint space. A /0 prefix's broadcast is all-ones, so broadcast+1
// overflows to EndpointInfinity rather than wrapping to zero.
func ToRangeV6(p Prefix) (lo, hi Endpoint, err error) {
	if p.Family() != V6 {
		return Endpoint{}, Endpoint{}, fmt.Errorf("ipmath: %v/%d is not an IPv6 prefix", p.Addr, p.Len)
	}
	lo = EndpointFromAddr(AddrToUint128(p.Network()))
	hi = EndpointFromAddr(AddrToUint128(p.Broadcast())).Succ()
	return lo, hi, nil
}

// PrefixFromRangeV4 builds the canonical Prefix starting at lo with the
// given prefix length.
func PrefixFromRangeV4(lo U64, length int) Prefix {
	return Prefix{Addr: Uint32ToAddr(uint32(lo)), Len: length}
}

// PrefixFromRangeV6 builds the canonical Prefix starting at lo with the
// given prefix length.
func PrefixFromRangeV6(lo Endpoint, length int) Prefix {
	return Prefix{Addr: Uint128ToAddr(lo.Value), Len: length}
}
