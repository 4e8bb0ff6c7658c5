// SPDX-License-Identifier: MIT

package bgp

// NOTIFICATION error codes and subcodes (RFC 4271 §4.5, spec.md §4.4).
const (
	NotifyMessageHeaderError      uint8 = 1
	NotifyOpenMessageError        uint8 = 2
	NotifyUpdateMessageError      uint8 = 3
	NotifyHoldTimerExpired        uint8 = 4
	NotifyFiniteStateMachineError uint8 = 5
	NotifyCease                   uint8 = 6
)

// notifySubcodeRange gives the valid subcode range [lo, hi] for each error
// code; a code with no entry accepts any subcode (Cease's subcodes are an
// open-ended administrative list per RFC 4271 and its extensions), and so
// does a code whose entry is {0, 0}: its subcode is not checked.
var notifySubcodeRange = map[uint8][2]uint8{
	NotifyMessageHeaderError:      {1, 3},
	NotifyOpenMessageError:        {1, 11},
	NotifyUpdateMessageError:      {1, 11},
	NotifyHoldTimerExpired:        {0, 0},
	NotifyFiniteStateMachineError: {0, 0},
}

// NotificationMessage is the payload of a type-3 BGP message.
type NotificationMessage struct {
	ErrorCode    uint8
	ErrorSubcode uint8
	Data         []byte
}

func parseNotification(body []byte, totalLen int) (NotificationMessage, error) {
	if totalLen < 21 {
		return NotificationMessage{}, &DecodeError{Kind: ErrBadMessageLength, Actual: totalLen}
	}

	rest, code, err := Verify(U8(),
		func(c uint8) bool { return c >= NotifyMessageHeaderError && c <= NotifyCease },
		func(c uint8) error { return &DecodeError{Kind: ErrBadMessageType, Actual: int(c)} },
	)(body)
	if err != nil {
		return NotificationMessage{}, wrapContext("NOTIFICATION", err)
	}

	rest, subcode, err := U8()(rest)
	if err != nil {
		return NotificationMessage{}, wrapContext("NOTIFICATION", err)
	}
	if r, bounded := notifySubcodeRange[code]; bounded && r != [2]uint8{0, 0} {
		if subcode < r[0] || subcode > r[1] {
			return NotificationMessage{}, &DecodeError{Kind: ErrBadMessageType, AttrCode: int(code), Actual: int(subcode)}
		}
	}

	dataLen := totalLen - HeaderLen - 2
	rest, data, err := Take(dataLen)(rest)
	if err != nil {
		return NotificationMessage{}, wrapContext("NOTIFICATION", err)
	}
	if len(rest) != 0 {
		return NotificationMessage{}, &DecodeError{Kind: ErrBadMessageLength, Actual: totalLen}
	}

	return NotificationMessage{ErrorCode: code, ErrorSubcode: subcode, Data: data}, nil
}
