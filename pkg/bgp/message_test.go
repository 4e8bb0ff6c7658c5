// SPDX-License-Identifier: MIT

package bgp

import (
	"encoding/binary"
	"math/rand"
	"net/netip"
	"testing"
)

func marker() []byte {
	m := make([]byte, 16)
	for i := range m {
		m[i] = 0xFF
	}
	return m
}

func header(length int, typ uint8) []byte {
	h := make([]byte, 0, 19)
	h = append(h, marker()...)
	var lb [2]byte
	binary.BigEndian.PutUint16(lb[:], uint16(length))
	h = append(h, lb[:]...)
	h = append(h, typ)
	return h
}

func u16(v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return b[:]
}

func u32(v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b[:]
}

// buildOpen constructs a well-formed OPEN message: version 4, a
// MultiprotocolExtensions(IPv4 unicast) capability, and a RouteRefresh
// capability.
func buildOpen() []byte {
	cap1 := append([]byte{capMultiprotocolExtensions, 4}, u16(1)[0], u16(1)[1], 0, 1) // AFI=1, reserved=0, SAFI=1
	cap2 := []byte{capRouteRefresh, 0}
	optParam := append([]byte{optParamCapability, byte(len(cap1) + len(cap2))}, append(cap1, cap2...)...)

	body := []byte{4}
	body = append(body, u16(65000)...)
	body = append(body, u16(180)...)
	body = append(body, u32(0xC0000201)...) // 192.0.2.1
	body = append(body, byte(len(optParam)))
	body = append(body, optParam...)

	total := 19 + len(body)
	return append(header(total, uint8(TypeOpen)), body...)
}

func attrHeader(flags, typeCode uint8, value []byte) []byte {
	return append([]byte{flags, typeCode, byte(len(value))}, value...)
}

// buildUpdate constructs a well-formed UPDATE with no withdrawn routes, an
// ORIGIN/AS_PATH/NEXT_HOP attribute set, and one NLRI prefix.
func buildUpdate() []byte {
	origin := attrHeader(0x40, AttrOrigin, []byte{byte(OriginIGP)})
	asPathSeg := append([]byte{byte(ASPathSequence), 1}, u16(65001)...)
	asPath := attrHeader(0x40, AttrASPath, asPathSeg)
	nextHop := attrHeader(0x40, AttrNextHop, []byte{192, 0, 2, 1})

	var attrs []byte
	attrs = append(attrs, origin...)
	attrs = append(attrs, asPath...)
	attrs = append(attrs, nextHop...)

	nlri := []byte{24, 203, 0, 113}

	body := append([]byte{}, u16(0)...)                // withdrawn routes length
	body = append(body, u16(uint16(len(attrs)))...)    // total path attribute length
	body = append(body, attrs...)
	body = append(body, nlri...)

	total := 19 + len(body)
	return append(header(total, uint8(TypeUpdate)), body...)
}

func buildNotification(code, subcode uint8, data []byte) []byte {
	body := append([]byte{code, subcode}, data...)
	total := 19 + len(body)
	return append(header(total, uint8(TypeNotification)), body...)
}

func buildKeepalive() []byte {
	return header(19, uint8(TypeKeepalive))
}

func TestDecodeOpen(t *testing.T) {
	rest, msg, err := Decode(buildOpen())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("unconsumed trailing bytes: %d", len(rest))
	}
	if msg.Open == nil {
		t.Fatal("Open is nil")
	}
	if msg.Open.MyAS != 65000 {
		t.Errorf("MyAS = %d, want 65000", msg.Open.MyAS)
	}
	want := netip.MustParseAddr("192.0.2.1")
	if msg.Open.BGPIdentifier != want {
		t.Errorf("BGPIdentifier = %v, want %v", msg.Open.BGPIdentifier, want)
	}
	if len(msg.Open.OptParams) != 1 || len(msg.Open.OptParams[0].Capabilities) != 2 {
		t.Fatalf("unexpected OptParams: %+v", msg.Open.OptParams)
	}
}

func TestDecodeOpenRejectsUnsupportedCapability(t *testing.T) {
	cap1 := []byte{200, 0} // unrecognised code
	optParam := append([]byte{optParamCapability, byte(len(cap1))}, cap1...)

	body := []byte{4}
	body = append(body, u16(65000)...)
	body = append(body, u16(180)...)
	body = append(body, u32(0xC0000201)...)
	body = append(body, byte(len(optParam)))
	body = append(body, optParam...)
	total := 19 + len(body)
	raw := append(header(total, uint8(TypeOpen)), body...)

	_, _, err := Decode(raw)
	de, ok := err.(*DecodeError)
	if !ok {
		t.Fatalf("err = %v, want *DecodeError", err)
	}
	if de.Kind != ErrUnsupportedCapability {
		t.Errorf("Kind = %v, want ErrUnsupportedCapability", de.Kind)
	}
	if len(de.Capabilities) != 1 || de.Capabilities[0].Code != 200 {
		t.Errorf("Capabilities = %+v", de.Capabilities)
	}
}

func TestDecodeOpenBadVersion(t *testing.T) {
	body := []byte{3}
	body = append(body, u16(65000)...)
	body = append(body, u16(180)...)
	body = append(body, u32(0xC0000201)...)
	body = append(body, 0)
	total := 19 + len(body)
	raw := append(header(total, uint8(TypeOpen)), body...)

	_, _, err := Decode(raw)
	de, ok := err.(*DecodeError)
	if !ok || de.Kind != ErrUnsupportedVersionNumber {
		t.Fatalf("err = %v, want ErrUnsupportedVersionNumber", err)
	}
}

func TestDecodeUpdate(t *testing.T) {
	rest, msg, err := Decode(buildUpdate())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("unconsumed trailing bytes: %d", len(rest))
	}
	if msg.Update == nil {
		t.Fatal("Update is nil")
	}
	if len(msg.Update.Withdrawn) != 0 {
		t.Errorf("Withdrawn = %+v, want none", msg.Update.Withdrawn)
	}
	if len(msg.Update.PathAttributes) != 3 {
		t.Fatalf("PathAttributes = %+v", msg.Update.PathAttributes)
	}
	if len(msg.Update.NLRI) != 1 || msg.Update.NLRI[0].Length != 24 {
		t.Fatalf("NLRI = %+v", msg.Update.NLRI)
	}
	aspath := msg.Update.PathAttributes[1]
	if len(aspath.ASPath) != 1 || aspath.ASPath[0].AS[0] != 65001 {
		t.Errorf("AS_PATH = %+v", aspath.ASPath)
	}
}

func TestDecodeUpdateBadAttributeFlags(t *testing.T) {
	origin := attrHeader(0x80, AttrOrigin, []byte{byte(OriginIGP)}) // wrong flags: optional instead of well-known
	body := append([]byte{}, u16(0)...)
	body = append(body, u16(uint16(len(origin)))...)
	body = append(body, origin...)
	total := 19 + len(body)
	raw := append(header(total, uint8(TypeUpdate)), body...)

	_, _, err := Decode(raw)
	de, ok := err.(*DecodeError)
	if !ok || de.Kind != ErrAttributeFlagsError {
		t.Fatalf("err = %v, want ErrAttributeFlagsError", err)
	}
}

func TestDecodeNotification(t *testing.T) {
	raw := buildNotification(NotifyCease, 0, []byte{1, 2, 3, 4})
	rest, msg, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("unconsumed trailing bytes: %d", len(rest))
	}
	if msg.Notification == nil {
		t.Fatal("Notification is nil")
	}
	if msg.Notification.ErrorCode != NotifyCease {
		t.Errorf("ErrorCode = %d, want %d", msg.Notification.ErrorCode, NotifyCease)
	}
	if len(msg.Notification.Data) != 4 {
		t.Errorf("Data = %v", msg.Notification.Data)
	}
}

func TestDecodeNotificationTooShort(t *testing.T) {
	raw := header(20, uint8(TypeNotification))
	raw = append(raw, 1) // one byte short of the 21-byte minimum
	_, _, err := Decode(raw)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestDecodeKeepalive(t *testing.T) {
	rest, msg, err := Decode(buildKeepalive())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("unconsumed trailing bytes: %d", len(rest))
	}
	if msg.Keepalive == nil {
		t.Fatal("Keepalive is nil")
	}
}

func TestDecodeKeepaliveBadLength(t *testing.T) {
	raw := header(20, uint8(TypeKeepalive))
	raw = append(raw, 0)
	_, _, err := Decode(raw)
	de, ok := err.(*DecodeError)
	if !ok || de.Kind != ErrBadMessageLength {
		t.Fatalf("err = %v, want ErrBadMessageLength", err)
	}
}

func TestDecodeBadMarker(t *testing.T) {
	raw := buildKeepalive()
	raw[0] = 0x00
	_, _, err := Decode(raw)
	de, ok := err.(*DecodeError)
	if !ok || de.Kind != ErrConnectionNotSynchronized {
		t.Fatalf("err = %v, want ErrConnectionNotSynchronized", err)
	}
}

func TestDecodeRouteRefreshTypeRejected(t *testing.T) {
	raw := header(19, 5)
	_, _, err := Decode(raw)
	de, ok := err.(*DecodeError)
	if !ok || de.Kind != ErrBadMessageType {
		t.Fatalf("err = %v, want ErrBadMessageType", err)
	}
}

func TestDecodeIncompleteReportsNeeded(t *testing.T) {
	raw := buildOpen()
	_, _, err := Decode(raw[:10])
	ie, ok := err.(*IncompleteError)
	if !ok {
		t.Fatalf("err = %v, want *IncompleteError", err)
	}
	if ie.Needed != 6 {
		t.Errorf("Needed = %d, want 6", ie.Needed)
	}
}

// TestDecodeNeverPanics feeds Decode arbitrary byte slices and only requires
// that it return rather than panic — the decoder must be total over its
// input (spec.md §7).
func TestDecodeNeverPanics(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		n := rng.Intn(64)
		buf := make([]byte, n)
		rng.Read(buf)
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Decode panicked on %x: %v", buf, r)
				}
			}()
			Decode(buf)
		}()
	}
}

func TestDecodeMultipleMessagesInSequence(t *testing.T) {
	raw := append(buildKeepalive(), buildKeepalive()...)
	rest, _, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	_, _, err = Decode(rest)
	if err != nil {
		t.Fatalf("second Decode: %v", err)
	}
}
