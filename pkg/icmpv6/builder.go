package icmpv6

import (
	"encoding/binary"
	"fmt"

	"github.com/fragprobe/fragprobe/pkg/common"
)

// PingPayloadSize mirrors pkg/icmp's fixed 40-byte filler payload so an
// ICMPv6 Echo Request's on-wire size, and its fragment-boundary split, are
// identical in shape to the IPv4 ICMP recipe.
const PingPayloadSize = 40

const pingFillByte = 0x01

// EchoRequestSize is the full wire length of the Echo Request BuildEchoRequest
// writes: an 8-byte ICMPv6 header plus the filler payload.
const EchoRequestSize = MinHeaderLength + PingPayloadSize

// BuildEchoRequest writes a fixed-shape ICMPv6 Echo Request into msg[0:len]:
// type=128 (Echo Request), code=0, the given identifier and sequence
// number, and a payload of PingPayloadSize bytes filled with a constant
// byte. The checksum is computed over the message together with
// pseudoHeader (RFC 8200 §8.1 — unlike plain ICMP, ICMPv6 always includes
// the IPv6 pseudo-header).
func BuildEchoRequest(msg []byte, id, sequence uint16, pseudoHeader common.PseudoHeaderBytes) error {
	if len(msg) < EchoRequestSize {
		return fmt.Errorf("icmpv6: message region too short: %d bytes (minimum %d)", len(msg), EchoRequestSize)
	}
	msg[0] = uint8(TypeEchoRequest)
	msg[1] = 0
	msg[2] = 0
	msg[3] = 0
	binary.BigEndian.PutUint16(msg[4:6], id)
	binary.BigEndian.PutUint16(msg[6:8], sequence)
	for i := MinHeaderLength; i < EchoRequestSize; i++ {
		msg[i] = pingFillByte
	}
	return common.WriteChecksum(common.ChecksumICMPv6, msg[:EchoRequestSize], 2, pseudoHeader)
}

// IsEchoReplyFor reports whether data is an ICMPv6 Echo Reply carrying the
// given identifier.
func IsEchoReplyFor(data []byte, id uint16) bool {
	msg, err := Parse(data)
	if err != nil {
		return false
	}
	return msg.IsEchoReply() && msg.ID == id
}
