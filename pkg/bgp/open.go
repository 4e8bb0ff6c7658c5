// SPDX-License-Identifier: MIT

package bgp

import (
	"net/netip"
)

// openFixedLen is the length of OPEN's fixed-format fields: version(1) +
// my-AS(2) + hold-time(2) + bgp-identifier(4) + opt-params-length(1).
const openFixedLen = 10

// Capability codes recognised in an OPEN's Capability optional parameter.
const (
	capMultiprotocolExtensions uint8 = 1
	capRouteRefresh            uint8 = 2
)

const optParamCapability uint8 = 2

// MultiprotocolExtension is the value of a MultiprotocolExtensions
// capability: an AFI/SAFI pair naming an address family.
type MultiprotocolExtension struct {
	AFI  uint16
	SAFI uint8
}

// Capability is one entry of an OPEN's Capability optional parameter.
type Capability struct {
	Code           uint8
	Multiprotocol  *MultiprotocolExtension // set when Code == capMultiprotocolExtensions
	HasRouteRefresh bool                   // set when Code == capRouteRefresh
}

// OptionalParameter is one entry of an OPEN's optional-parameters list.
// Only the Capability parameter type (2) is recognised; any other type is
// a decode error (ErrUnsupportedOptionalParameter), not stored here.
type OptionalParameter struct {
	Type         uint8
	Capabilities []Capability
}

// OpenMessage is the payload of a type-1 BGP message.
type OpenMessage struct {
	Version       uint8
	MyAS          uint16
	HoldTime      uint16
	BGPIdentifier netip.Addr
	OptParams     []OptionalParameter
}

// multicastFloor is the lowest IPv4 address considered multicast
// (224.0.0.0); a BGP identifier must be a unicast host address below it.
const multicastFloor = 0xE0000000

func parseOpen(body []byte, totalLen int) (OpenMessage, error) {
	rest, version, err := Verify(U8(),
		func(v uint8) bool { return v == 4 },
		func(v uint8) error { return &DecodeError{Kind: ErrUnsupportedVersionNumber, Actual: int(v)} },
	)(body)
	if err != nil {
		return OpenMessage{}, err
	}

	rest, myAS, err := U16()(rest)
	if err != nil {
		return OpenMessage{}, err
	}

	rest, holdTime, err := Verify(U16(),
		func(h uint16) bool { return h == 0 || h >= 3 },
		func(h uint16) error { return &DecodeError{Kind: ErrUnacceptableHoldTime, Actual: int(h)} },
	)(rest)
	if err != nil {
		return OpenMessage{}, err
	}

	rest, idRaw, err := Verify(U32(),
		func(v uint32) bool { return v < multicastFloor },
		func(uint32) error { return &DecodeError{Kind: ErrBadBgpIdentifier} },
	)(rest)
	if err != nil {
		return OpenMessage{}, err
	}
	bgpIdentifier := netip.AddrFrom4([4]byte{byte(idRaw >> 24), byte(idRaw >> 16), byte(idRaw >> 8), byte(idRaw)})

	rest, optParamsLen, err := U8()(rest)
	if err != nil {
		return OpenMessage{}, err
	}

	rest, optParamsBytes, err := Take(int(optParamsLen))(rest)
	if err != nil {
		return OpenMessage{}, err
	}

	if HeaderLen+openFixedLen+int(optParamsLen) != totalLen {
		return OpenMessage{}, &DecodeError{Kind: ErrBadMessageLength, Actual: totalLen}
	}
	if len(rest) != 0 {
		return OpenMessage{}, &DecodeError{Kind: ErrBadMessageLength, Actual: totalLen}
	}

	optParams, unsupported, err := parseOptionalParameters(optParamsBytes)
	if err != nil {
		return OpenMessage{}, err
	}
	if len(unsupported) > 0 {
		return OpenMessage{}, &DecodeError{Kind: ErrUnsupportedCapability, Capabilities: unsupported}
	}

	return OpenMessage{
		Version:       version,
		MyAS:          myAS,
		HoldTime:      holdTime,
		BGPIdentifier: bgpIdentifier,
		OptParams:     optParams,
	}, nil
}

// parseOptionalParameters parses a flat list of (type, length, value)
// optional parameters. Capability parameters are expanded into Capability
// entries; every unrecognised capability across the whole list is
// accumulated into unsupported rather than failing on the first one, so the
// caller can report all of them in a single NOTIFICATION (spec.md §9).
func parseOptionalParameters(b []byte) ([]OptionalParameter, []UnsupportedCapabilityInfo, error) {
	var params []OptionalParameter
	var unsupported []UnsupportedCapabilityInfo
	rest := b

	for len(rest) > 0 {
		var typ, length uint8
		var value []byte
		var err error

		rest, typ, err = U8()(rest)
		if err != nil {
			return nil, nil, wrapContext("optional parameter", err)
		}
		rest, length, err = U8()(rest)
		if err != nil {
			return nil, nil, wrapContext("optional parameter", err)
		}
		rest, value, err = Take(int(length))(rest)
		if err != nil {
			return nil, nil, wrapContext("optional parameter", err)
		}

		if typ != optParamCapability {
			return nil, nil, &DecodeError{Kind: ErrUnsupportedOptionalParameter, Actual: int(typ)}
		}

		caps, capUnsupported, err := parseCapabilities(value)
		if err != nil {
			return nil, nil, wrapContext("capability", err)
		}
		unsupported = append(unsupported, capUnsupported...)
		params = append(params, OptionalParameter{Type: typ, Capabilities: caps})
	}

	return params, unsupported, nil
}

func parseCapabilities(b []byte) ([]Capability, []UnsupportedCapabilityInfo, error) {
	var caps []Capability
	var unsupported []UnsupportedCapabilityInfo
	rest := b

	for len(rest) > 0 {
		var code, length uint8
		var value []byte
		var err error

		rest, code, err = U8()(rest)
		if err != nil {
			return nil, nil, err
		}
		rest, length, err = U8()(rest)
		if err != nil {
			return nil, nil, err
		}
		rest, value, err = Take(int(length))(rest)
		if err != nil {
			return nil, nil, err
		}

		switch code {
		case capMultiprotocolExtensions:
			if length != 4 {
				return nil, nil, &DecodeError{Kind: ErrAttributeLengthError, AttrCode: int(code), Actual: int(length)}
			}
			caps = append(caps, Capability{
				Code: code,
				Multiprotocol: &MultiprotocolExtension{
					AFI:  uint16(value[0])<<8 | uint16(value[1]),
					SAFI: value[3],
				},
			})
		case capRouteRefresh:
			if length != 0 {
				return nil, nil, &DecodeError{Kind: ErrAttributeLengthError, AttrCode: int(code), Actual: int(length)}
			}
			caps = append(caps, Capability{Code: code, HasRouteRefresh: true})
		default:
			unsupported = append(unsupported, UnsupportedCapabilityInfo{Code: code, Length: int(length)})
		}
	}

	return caps, unsupported, nil
}
