// Package icmpv6 implements the ICMPv6 Echo Request/Reply messages defined
// in RFC 4443.
package icmpv6

import (
	"encoding/binary"
	"fmt"
)

// Type represents an ICMPv6 message type.
type Type uint8

// Echo Request/Reply types (RFC 4443 §4.1/§4.2). Neighbor Discovery's
// Neighbor Solicitation (135) and Neighbor Advertisement (136) share the
// ICMPv6 protocol number but are never built or classified here — the
// capture filter masks them out at the BPF layer instead.
const (
	TypeEchoRequest Type = 128
	TypeEchoReply   Type = 129
)

// MinHeaderLength is the minimum ICMPv6 header length (8 bytes): type,
// code, checksum, identifier, sequence number.
const MinHeaderLength = 8

// Message represents a parsed ICMPv6 Echo Request or Echo Reply.
// Construction lives in builder.go's BuildEchoRequest, which writes
// directly into a caller-owned buffer together with its IPv6
// pseudo-header; there is no corresponding Message-to-bytes path here.
type Message struct {
	Type     Type
	Code     uint8
	Checksum uint16
	ID       uint16
	Sequence uint16
	Data     []byte
}

// Parse parses an ICMPv6 message from raw bytes.
func Parse(data []byte) (*Message, error) {
	if len(data) < MinHeaderLength {
		return nil, fmt.Errorf("ICMPv6 message too short: %d bytes (minimum %d)", len(data), MinHeaderLength)
	}
	msg := &Message{
		Type:     Type(data[0]),
		Code:     data[1],
		Checksum: binary.BigEndian.Uint16(data[2:4]),
		ID:       binary.BigEndian.Uint16(data[4:6]),
		Sequence: binary.BigEndian.Uint16(data[6:8]),
	}
	if len(data) > MinHeaderLength {
		msg.Data = make([]byte, len(data)-MinHeaderLength)
		copy(msg.Data, data[MinHeaderLength:])
	}
	return msg, nil
}

// IsEchoReply returns true if this is an Echo Reply message.
func (m *Message) IsEchoReply() bool {
	return m.Type == TypeEchoReply
}

// String returns a human-readable representation of the message.
func (m *Message) String() string {
	return fmt.Sprintf("ICMPv6{Type=%s(%d), Code=%d, ID=%d, Seq=%d, DataLen=%d}",
		m.Type, uint8(m.Type), m.Code, m.ID, m.Sequence, len(m.Data))
}

// String returns a human-readable name for the ICMPv6 type.
func (t Type) String() string {
	switch t {
	case TypeEchoRequest:
		return "EchoRequest"
	case TypeEchoReply:
		return "EchoReply"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}
