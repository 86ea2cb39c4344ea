package icmp

import (
	"encoding/binary"
	"fmt"

	"github.com/fragprobe/fragprobe/pkg/common"
)

// PingPayloadSize is the size of the filler payload the probe appends to
// every Echo Request (RFC 792 leaves payload size and content up to the
// sender; every recipe uses a fixed 40-byte payload so the on-wire size of
// each fragment, and the point where the L4 header straddles the fragment
// boundary, stay predictable).
const PingPayloadSize = 40

// pingFillByte is the byte value used to pad the Echo Request payload.
const pingFillByte = 0x01

// EchoRequestSize is the full wire length of the Echo Request BuildEchoRequest
// writes: an 8-byte ICMP header plus the filler payload.
const EchoRequestSize = MinHeaderLength + PingPayloadSize

// BuildEchoRequest writes a fixed-shape ICMP Echo Request into msg[0:len]:
// type=8 (Echo Request), code=0, the given identifier and sequence number,
// and a payload of PingPayloadSize bytes filled with a constant byte. The
// checksum is computed over the whole message and written back into
// msg[2:4] — unlike TCP or ICMPv6, plain ICMP-over-IPv4 has no pseudo-header
// (RFC 792).
func BuildEchoRequest(msg []byte, id, sequence uint16) error {
	if len(msg) < EchoRequestSize {
		return fmt.Errorf("icmp: message region too short: %d bytes (minimum %d)", len(msg), EchoRequestSize)
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
	return common.WriteChecksum(common.ChecksumICMP, msg[:EchoRequestSize], 2, nil)
}

// IsEchoReplyFor reports whether data is an ICMP Echo Reply carrying the
// given identifier, distinguishing a genuine response to the probe from
// unrelated ICMP traffic that happened to pass the capture filter.
func IsEchoReplyFor(data []byte, id uint16) bool {
	msg, err := Parse(data)
	if err != nil {
		return false
	}
	return msg.IsEchoReply() && msg.ID == id
}
