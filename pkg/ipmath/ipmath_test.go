package ipmath

import "testing"

func TestUint128ShiftSaturates(t *testing.T) {
	allOnes := Uint128Max
	if got := allOnes.Shl(128); !got.IsZero() {
		t.Errorf("Shl(128) = %v, want zero", got)
	}
	if got := allOnes.Shr(128); !got.IsZero() {
		t.Errorf("Shr(128) = %v, want zero", got)
	}
	if got := allOnes.Shl(200); !got.IsZero() {
		t.Errorf("Shl(200) = %v, want zero", got)
	}
}

func TestUint128TrailingZerosOfZeroIsWidth(t *testing.T) {
	if got := (Uint128{}).TrailingZeros(); got != 128 {
		t.Errorf("TrailingZeros(0) = %d, want 128", got)
	}
	if got := (Uint128{}).LeadingZeros(); got != 128 {
		t.Errorf("LeadingZeros(0) = %d, want 128", got)
	}
}

func TestUint128AddSubRoundTrip(t *testing.T) {
	a := NewUint128(0, 1)
	sum, overflow := Uint128Max.AddOverflow(a)
	if !overflow {
		t.Fatalf("expected overflow adding 1 to max")
	}
	if !sum.IsZero() {
		t.Errorf("Uint128Max+1 wrapped = %v, want zero", sum)
	}
	if got := a.Sub(a); !got.IsZero() {
		t.Errorf("a-a = %v, want zero", got)
	}
}

func TestSatShlShr(t *testing.T) {
	if got := SatShl(uint32(1), 32); got != 0 {
		t.Errorf("SatShl(1,32) = %d, want 0", got)
	}
	if got := SatShr(^uint32(0), 32); got != 0 {
		t.Errorf("SatShr(^0,32) = %d, want 0", got)
	}
	if got := SatShl(uint32(1), 31); got != 1<<31 {
		t.Errorf("SatShl(1,31) = %d, want %d", got, uint32(1)<<31)
	}
}

func TestLeadingTrailingZerosWidth(t *testing.T) {
	if got := LeadingZeros(uint32(0)); got != 32 {
		t.Errorf("LeadingZeros(uint32(0)) = %d, want 32", got)
	}
	if got := TrailingZeros(uint32(0)); got != 32 {
		t.Errorf("TrailingZeros(uint32(0)) = %d, want 32", got)
	}
	if got := LeadingZeros(uint8(0)); got != 8 {
		t.Errorf("LeadingZeros(uint8(0)) = %d, want 8", got)
	}
}

func TestPrefixNetworkBroadcastV4(t *testing.T) {
	p, err := ParsePrefix("10.0.0.5/24")
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Network().String(); got != "10.0.0.0" {
		t.Errorf("Network = %s, want 10.0.0.0", got)
	}
	if got := p.Broadcast().String(); got != "10.0.0.255" {
		t.Errorf("Broadcast = %s, want 10.0.0.255", got)
	}
	if p.IsCanonical() {
		t.Errorf("10.0.0.5/24 should not be canonical")
	}
}

func TestPrefixZeroV4(t *testing.T) {
	p, err := ParsePrefix("0.0.0.0/0")
	if err != nil {
		t.Fatal(err)
	}
	lo, hi, err := ToRangeV4(p)
	if err != nil {
		t.Fatal(err)
	}
	if lo != 0 {
		t.Errorf("lo = %d, want 0", lo)
	}
	if hi != U64(1)<<32 {
		t.Errorf("hi = %d, want 2^32", hi)
	}
}

func TestPrefixZeroV6(t *testing.T) {
	p, err := ParsePrefix("::/0")
	if err != nil {
		t.Fatal(err)
	}
	lo, hi, err := ToRangeV6(p)
	if err != nil {
		t.Fatal(err)
	}
	if !lo.Value.IsZero() || lo.Overflow {
		t.Errorf("lo = %v, want zero finite", lo)
	}
	if !hi.Overflow {
		t.Errorf("hi = %v, want overflow sentinel (2^128)", hi)
	}
}

func TestPrefixNetworkBroadcastV6(t *testing.T) {
	p, err := ParsePrefix("fd00::1/32")
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Network().String(); got != "fd00::" {
		t.Errorf("Network = %s, want fd00::", got)
	}
}
