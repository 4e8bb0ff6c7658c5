// SPDX-License-Identifier: MIT

package bgp

// Message is the decoded form of one BGP-4 message: Header names which of
// the four payload fields is populated.
type Message struct {
	Header       Header
	Open         *OpenMessage
	Update       *UpdateMessage
	Notification *NotificationMessage
	Keepalive    *KeepaliveMessage
}

// Decode parses one BGP-4 message from the front of b, per RFC 4271. It
// returns the bytes following the message, the decoded Message, and an
// error — either nil, *IncompleteError (b holds less than a full message;
// the caller should read more and retry), or *DecodeError (b's prefix is
// not a valid BGP message).
//
// The header (marker, length, type) is parsed once; Header.Length is then
// threaded into the per-type parser so it can validate total-length
// consistency and, for UPDATE, compute the NLRI field's residual length.
func Decode(b []byte) ([]byte, Message, error) {
	rest, header, err := parseHeader(b)
	if err != nil {
		return rest, Message{}, err
	}

	bodyLen := header.Length - HeaderLen
	rest, body, err := Take(bodyLen)(rest)
	if err != nil {
		return rest, Message{}, err
	}

	msg := Message{Header: header}

	switch header.Type {
	case TypeOpen:
		open, err := parseOpen(body, header.Length)
		if err != nil {
			return rest, Message{}, wrapContext("OPEN", err)
		}
		msg.Open = &open

	case TypeUpdate:
		update, err := parseUpdate(body, header.Length)
		if err != nil {
			return rest, Message{}, wrapContext("UPDATE", err)
		}
		msg.Update = &update

	case TypeNotification:
		notif, err := parseNotification(body, header.Length)
		if err != nil {
			return rest, Message{}, err
		}
		msg.Notification = &notif

	case TypeKeepalive:
		ka, err := parseKeepalive(body, header.Length)
		if err != nil {
			return rest, Message{}, wrapContext("KEEPALIVE", err)
		}
		msg.Keepalive = &ka

	default:
		// typeRouteRefresh (5) and anything else parseHeader let through as
		// a syntactically valid type code but this decoder does not
		// implement (spec.md §4.3 names four message kinds).
		return rest, Message{}, &DecodeError{Kind: ErrBadMessageType, Actual: int(header.Type)}
	}

	return rest, msg, nil
}
