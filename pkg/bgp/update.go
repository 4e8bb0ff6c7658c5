// SPDX-License-Identifier: MIT

package bgp

import (
	"encoding/binary"
	"net/netip"
)

// Path attribute type codes (spec.md §4.4 table).
const (
	AttrOrigin           uint8 = 1
	AttrASPath           uint8 = 2
	AttrNextHop          uint8 = 3
	AttrMultiExitDisc    uint8 = 4
	AttrLocalPref        uint8 = 5
	AttrAtomicAggregate  uint8 = 6
	AttrAggregator       uint8 = 7
)

// Required flags-byte values per attribute, spec.md §4.4's table ("Flags
// (must equal)"). A sender setting the extended-length bit on, say, ORIGIN
// fails this check even though the value would still decode — the
// spec.md table requires the whole byte to equal the listed constant.
var requiredAttrFlags = map[uint8]uint8{
	AttrOrigin:          0x40, // well-known, transitive
	AttrASPath:          0x40, // well-known, transitive
	AttrNextHop:         0x40, // well-known, transitive
	AttrMultiExitDisc:   0x80, // optional, non-transitive
	AttrLocalPref:       0x40, // well-known, transitive
	AttrAtomicAggregate: 0x40, // well-known, transitive
	AttrAggregator:      0xC0, // optional, transitive
}

// requiredAttrLength gives the fixed value length for attributes whose
// length spec.md's table pins down; AttrASPath is variable and absent here.
var requiredAttrLength = map[uint8]int{
	AttrOrigin:          1,
	AttrNextHop:         4,
	AttrMultiExitDisc:   4,
	AttrLocalPref:       4,
	AttrAtomicAggregate: 0,
	AttrAggregator:      6,
}

// OriginCode is the value of an ORIGIN path attribute.
type OriginCode uint8

const (
	OriginIGP        OriginCode = 0
	OriginEGP        OriginCode = 1
	OriginIncomplete OriginCode = 2
)

// ASPathSegmentType distinguishes the two AS_PATH segment kinds.
type ASPathSegmentType uint8

const (
	ASPathSet      ASPathSegmentType = 1
	ASPathSequence ASPathSegmentType = 2
)

// ASPathSegment is one SET or SEQUENCE run within an AS_PATH attribute.
type ASPathSegment struct {
	Type ASPathSegmentType
	AS   []uint16
}

// AggregatorValue is the value of an AGGREGATOR path attribute.
type AggregatorValue struct {
	AS   uint16
	Addr netip.Addr
}

// PathAttribute is one flags-type-length-value path attribute, decoded into
// whichever of its typed fields matches TypeCode; the others are zero.
type PathAttribute struct {
	Optional       bool
	Transitive     bool
	Partial        bool
	ExtendedLength bool
	TypeCode       uint8

	Origin          OriginCode
	ASPath          []ASPathSegment
	NextHop         netip.Addr
	MED             uint32
	LocalPref       uint32
	AtomicAggregate bool
	Aggregator      AggregatorValue
}

// NLRIPrefix is a prefix as carried in UPDATE's withdrawn-routes or NLRI
// fields: a bit length and that many high-order bits, right-padded to 4
// bytes for IPv4 storage/comparison (spec.md §4.4).
type NLRIPrefix struct {
	Length int
	Addr   netip.Addr
}

// UpdateMessage is the payload of a type-2 BGP message.
type UpdateMessage struct {
	Withdrawn      []NLRIPrefix
	PathAttributes []PathAttribute
	NLRI           []NLRIPrefix
}

func parseNLRIPrefix(b []byte) ([]byte, NLRIPrefix, error) {
	rest, bitLen, err := Verify(U8(),
		func(n uint8) bool { return n <= 32 },
		func(n uint8) error { return &DecodeError{Kind: ErrInvalidNetworkField, Actual: int(n)} },
	)(b)
	if err != nil {
		return rest, NLRIPrefix{}, err
	}

	byteLen := (int(bitLen) + 7) / 8
	rest, raw, err := Take(byteLen)(rest)
	if err != nil {
		return rest, NLRIPrefix{}, err
	}

	var buf [4]byte
	copy(buf[:], raw)
	return rest, NLRIPrefix{Length: int(bitLen), Addr: netip.AddrFrom4(buf)}, nil
}

func parseASPathSegment(b []byte) ([]byte, ASPathSegment, error) {
	rest, segType, err := Verify(U8(),
		func(t uint8) bool { return t == uint8(ASPathSet) || t == uint8(ASPathSequence) },
		func(t uint8) error { return &DecodeError{Kind: ErrMalformedAsPath, Actual: int(t)} },
	)(b)
	if err != nil {
		return rest, ASPathSegment{}, err
	}

	rest, segLen, err := U8()(rest)
	if err != nil {
		return rest, ASPathSegment{}, err
	}

	asNumbers := make([]uint16, 0, segLen)
	for i := 0; i < int(segLen); i++ {
		var as uint16
		rest, as, err = U16()(rest)
		if err != nil {
			return rest, ASPathSegment{}, wrapContext("AS_PATH segment", err)
		}
		asNumbers = append(asNumbers, as)
	}

	return rest, ASPathSegment{Type: ASPathSegmentType(segType), AS: asNumbers}, nil
}

func parsePathAttribute(b []byte) ([]byte, PathAttribute, error) {
	rest, flagsByte, err := Verify(U8(),
		func(f uint8) bool { return f&0x0F == 0 },
		func(f uint8) error { return &DecodeError{Kind: ErrAttributeFlagsError, Actual: int(f)} },
	)(b)
	if err != nil {
		return rest, PathAttribute{}, err
	}

	rest, typeCode, err := U8()(rest)
	if err != nil {
		return rest, PathAttribute{}, err
	}

	extended := flagsByte&0x10 != 0
	var length int
	if extended {
		var l16 uint16
		rest, l16, err = U16()(rest)
		length = int(l16)
	} else {
		var l8 uint8
		rest, l8, err = U8()(rest)
		length = int(l8)
	}
	if err != nil {
		return rest, PathAttribute{}, err
	}

	rest, value, err := Take(length)(rest)
	if err != nil {
		return rest, PathAttribute{}, err
	}

	attr := PathAttribute{
		Optional:       flagsByte&0x80 != 0,
		Transitive:     flagsByte&0x40 != 0,
		Partial:        flagsByte&0x20 != 0,
		ExtendedLength: extended,
		TypeCode:       typeCode,
	}

	required, known := requiredAttrFlags[typeCode]
	if !known {
		if attr.Transitive && !attr.Optional {
			return rest, PathAttribute{}, &DecodeError{Kind: ErrUnrecognizedWellKnownAttribute, AttrCode: int(typeCode)}
		}
		return rest, PathAttribute{}, &DecodeError{Kind: ErrOptionalAttributeError, AttrCode: int(typeCode)}
	}
	if flagsByte != required {
		return rest, PathAttribute{}, &DecodeError{Kind: ErrAttributeFlagsError, AttrCode: int(typeCode), Actual: int(flagsByte)}
	}
	if wantLen, fixed := requiredAttrLength[typeCode]; fixed && wantLen != length {
		return rest, PathAttribute{}, &DecodeError{Kind: ErrAttributeLengthError, AttrCode: int(typeCode), Actual: length}
	}

	switch typeCode {
	case AttrOrigin:
		code := OriginCode(value[0])
		if code > OriginIncomplete {
			return rest, PathAttribute{}, &DecodeError{Kind: ErrInvalidOriginAttribute, Actual: int(value[0])}
		}
		attr.Origin = code

	case AttrASPath:
		_, segments, err := Bounded(length, Many0(parseASPathSegment))(value)
		if err != nil {
			return rest, PathAttribute{}, wrapContext("AS_PATH", err)
		}
		attr.ASPath = segments

	case AttrNextHop:
		addr := netip.AddrFrom4([4]byte{value[0], value[1], value[2], value[3]})
		if !addr.IsValid() {
			return rest, PathAttribute{}, &DecodeError{Kind: ErrInvalidNextHopAttribute}
		}
		attr.NextHop = addr

	case AttrMultiExitDisc:
		attr.MED = binary.BigEndian.Uint32(value)

	case AttrLocalPref:
		attr.LocalPref = binary.BigEndian.Uint32(value)

	case AttrAtomicAggregate:
		attr.AtomicAggregate = true

	case AttrAggregator:
		attr.Aggregator = AggregatorValue{
			AS:   binary.BigEndian.Uint16(value[0:2]),
			Addr: netip.AddrFrom4([4]byte{value[2], value[3], value[4], value[5]}),
		}
	}

	return rest, attr, nil
}

func parseUpdate(body []byte, totalLen int) (UpdateMessage, error) {
	rest, withdrawnLen, err := U16()(body)
	if err != nil {
		return UpdateMessage{}, err
	}
	rest, withdrawnBytes, err := Take(int(withdrawnLen))(rest)
	if err != nil {
		return UpdateMessage{}, err
	}
	_, withdrawn, err := Bounded(int(withdrawnLen), Many0(parseNLRIPrefix))(withdrawnBytes)
	if err != nil {
		return UpdateMessage{}, wrapContext("withdrawn routes", err)
	}

	rest, attrsLen, err := U16()(rest)
	if err != nil {
		return UpdateMessage{}, err
	}
	rest, attrsBytes, err := Take(int(attrsLen))(rest)
	if err != nil {
		return UpdateMessage{}, err
	}
	_, attrs, err := Bounded(int(attrsLen), Many0(parsePathAttribute))(attrsBytes)
	if err != nil {
		return UpdateMessage{}, wrapContext("path attribute", err)
	}

	// NLRI's length is not carried on the wire: it is whatever is left
	// over once the header, the two length fields, withdrawn routes, and
	// path attributes are all accounted for (spec.md §4.4).
	nlriLen := totalLen - HeaderLen - 2 - 2 - int(withdrawnLen) - int(attrsLen)
	if nlriLen < 0 {
		return UpdateMessage{}, &DecodeError{Kind: ErrBadMessageLength, Actual: totalLen}
	}
	rest, nlriBytes, err := Take(nlriLen)(rest)
	if err != nil {
		return UpdateMessage{}, err
	}
	_, nlri, err := Bounded(nlriLen, Many0(parseNLRIPrefix))(nlriBytes)
	if err != nil {
		return UpdateMessage{}, wrapContext("NLRI", err)
	}

	if len(rest) != 0 {
		return UpdateMessage{}, &DecodeError{Kind: ErrBadMessageLength, Actual: totalLen}
	}

	return UpdateMessage{Withdrawn: withdrawn, PathAttributes: attrs, NLRI: nlri}, nil
}
