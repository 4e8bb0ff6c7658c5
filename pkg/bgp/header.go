// SPDX-License-Identifier: MIT

package bgp

// MessageType is the BGP header's type code.
type MessageType uint8

const (
	TypeOpen         MessageType = 1
	TypeUpdate       MessageType = 2
	TypeNotification MessageType = 3
	TypeKeepalive    MessageType = 4
	typeRouteRefresh MessageType = 5 // RFC 2918; header-valid but not decoded (spec.md §4.3's four-kind Message model)
)

const (
	// HeaderLen is the fixed size of a BGP message header: a 16-octet
	// marker, 2-octet length, 1-octet type.
	HeaderLen = 19
	// MinMessageLength is the smallest legal total message length
	// (a bare header, as in KEEPALIVE).
	MinMessageLength = 19
	// MaxMessageLength is the largest legal total message length.
	MaxMessageLength = 4096
)

var markerAllOnes = func() []byte {
	m := make([]byte, 16)
	for i := range m {
		m[i] = 0xFF
	}
	return m
}()

// Header is the common 19-byte BGP message header.
type Header struct {
	Length int
	Type   MessageType
}

// parseHeader validates the marker, length, and type fields and returns the
// remaining bytes (the message body) alongside the parsed Header. The
// message-specific parser receives Header.Length so it can compute
// dependent lengths (UPDATE's NLRI residual, in particular).
func parseHeader(b []byte) ([]byte, Header, error) {
	rest, _, err := Tag(markerAllOnes, func([]byte) error {
		return &DecodeError{Kind: ErrConnectionNotSynchronized}
	})(b)
	if err != nil {
		return rest, Header{}, err
	}

	rest, length, err := U16()(rest)
	if err != nil {
		return rest, Header{}, err
	}
	if length < MinMessageLength || length > MaxMessageLength {
		return rest, Header{}, &DecodeError{Kind: ErrBadMessageLength, Actual: int(length)}
	}

	rest, typ, err := Verify(U8(),
		func(t uint8) bool { return t >= 1 && t <= 5 },
		func(t uint8) error { return &DecodeError{Kind: ErrBadMessageType, Actual: int(t)} },
	)(rest)
	if err != nil {
		return rest, Header{}, err
	}

	return rest, Header{Length: int(length), Type: MessageType(typ)}, nil
}
