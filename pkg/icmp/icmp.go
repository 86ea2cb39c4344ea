// Package icmp implements the Internet Control Message Protocol (ICMP) as defined in RFC 792.
package icmp

import (
	"encoding/binary"
	"fmt"
)

// Type represents an ICMP message type.
type Type uint8

// Common ICMP types.
const (
	TypeEchoReply              Type = 0  // Echo Reply
	TypeDestinationUnreachable Type = 3  // Destination Unreachable
	TypeSourceQuench           Type = 4  // Source Quench (deprecated)
	TypeRedirect               Type = 5  // Redirect
	TypeEchoRequest            Type = 8  // Echo Request
	TypeTimeExceeded           Type = 11 // Time Exceeded
	TypeParameterProblem       Type = 12 // Parameter Problem
	TypeTimestampRequest       Type = 13 // Timestamp Request
	TypeTimestampReply         Type = 14 // Timestamp Reply
)

// Code represents an ICMP message code.
type Code uint8

const (
	// MinHeaderLength is the minimum ICMP header length (8 bytes).
	MinHeaderLength = 8
)

// Message represents a parsed ICMP message. Construction lives in
// builder.go's BuildEchoRequest, which writes directly into a
// caller-owned buffer; there is no corresponding Message-to-bytes path
// here.
type Message struct {
	Type     Type   // ICMP type
	Code     Code   // ICMP code
	Checksum uint16 // Checksum
	ID       uint16 // Identifier (for echo request/reply)
	Sequence uint16 // Sequence number (for echo request/reply)
	Data     []byte // Message data
}

// Parse parses an ICMP message from raw bytes.
func Parse(data []byte) (*Message, error) {
	if len(data) < MinHeaderLength {
		return nil, fmt.Errorf("ICMP message too short: %d bytes (minimum %d)", len(data), MinHeaderLength)
	}

	msg := &Message{
		Type:     Type(data[0]),
		Code:     Code(data[1]),
		Checksum: binary.BigEndian.Uint16(data[2:4]),
		ID:       binary.BigEndian.Uint16(data[4:6]),
		Sequence: binary.BigEndian.Uint16(data[6:8]),
	}

	// Copy data after header
	if len(data) > MinHeaderLength {
		msg.Data = make([]byte, len(data)-MinHeaderLength)
		copy(msg.Data, data[MinHeaderLength:])
	}

	return msg, nil
}

// String returns a human-readable representation of the ICMP message.
func (m *Message) String() string {
	return fmt.Sprintf("ICMP{Type=%s(%d), Code=%d, ID=%d, Seq=%d, DataLen=%d}",
		m.Type, uint8(m.Type), m.Code, m.ID, m.Sequence, len(m.Data))
}

// String returns a human-readable name for the ICMP type.
func (t Type) String() string {
	switch t {
	case TypeEchoReply:
		return "EchoReply"
	case TypeDestinationUnreachable:
		return "DestinationUnreachable"
	case TypeSourceQuench:
		return "SourceQuench"
	case TypeRedirect:
		return "Redirect"
	case TypeEchoRequest:
		return "EchoRequest"
	case TypeTimeExceeded:
		return "TimeExceeded"
	case TypeParameterProblem:
		return "ParameterProblem"
	case TypeTimestampRequest:
		return "TimestampRequest"
	case TypeTimestampReply:
		return "TimestampReply"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// IsEchoReply returns true if this is an Echo Reply message.
func (m *Message) IsEchoReply() bool {
	return m.Type == TypeEchoReply
}
