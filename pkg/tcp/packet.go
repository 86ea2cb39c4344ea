// Package tcp implements the Transmission Control Protocol (TCP) as defined in RFC 793.
package tcp

import (
	"encoding/binary"
	"fmt"
)

const (
	// MinHeaderLength is the minimum TCP header length (20 bytes).
	MinHeaderLength = 20

	// MaxHeaderLength is the maximum TCP header length (60 bytes).
	MaxHeaderLength = 60
)

// TCP Flags
const (
	FlagFIN uint8 = 1 << 0 // Finish - no more data from sender
	FlagSYN uint8 = 1 << 1 // Synchronize - establish connection
	FlagRST uint8 = 1 << 2 // Reset - abort connection
	FlagPSH uint8 = 1 << 3 // Push - deliver data immediately
	FlagACK uint8 = 1 << 4 // Acknowledgment - ACK field is valid
	FlagURG uint8 = 1 << 5 // Urgent - urgent pointer is valid
	FlagECE uint8 = 1 << 6 // ECN Echo
	FlagCWR uint8 = 1 << 7 // Congestion Window Reduced
)

// Segment represents a parsed TCP segment. Construction lives in
// builder.go's BuildSYN, which writes directly into a caller-owned buffer;
// there is no corresponding Segment-to-bytes path here.
type Segment struct {
	// Header fields
	SourcePort      uint16 // Source port number
	DestinationPort uint16 // Destination port number
	SequenceNumber  uint32 // Sequence number
	AckNumber       uint32 // Acknowledgment number (if ACK flag is set)
	DataOffset      uint8  // Data offset (header length in 32-bit words)
	Flags           uint8  // Control flags (FIN, SYN, RST, PSH, ACK, URG, ECE, CWR)
	WindowSize      uint16 // Window size (for flow control)
	Checksum        uint16 // Checksum
	UrgentPointer   uint16 // Urgent pointer (if URG flag is set)
	Options         []byte // TCP options (if DataOffset > 5)

	// Payload
	Data []byte // Segment data
}

// Parse parses a TCP segment from raw bytes.
func Parse(data []byte) (*Segment, error) {
	if len(data) < MinHeaderLength {
		return nil, fmt.Errorf("TCP segment too short: %d bytes (minimum %d)", len(data), MinHeaderLength)
	}

	seg := &Segment{
		SourcePort:      binary.BigEndian.Uint16(data[0:2]),
		DestinationPort: binary.BigEndian.Uint16(data[2:4]),
		SequenceNumber:  binary.BigEndian.Uint32(data[4:8]),
		AckNumber:       binary.BigEndian.Uint32(data[8:12]),
	}

	// Parse data offset and flags
	dataOffsetReserved := data[12]
	seg.DataOffset = dataOffsetReserved >> 4
	seg.Flags = data[13]

	// Validate data offset
	if seg.DataOffset < 5 {
		return nil, fmt.Errorf("invalid data offset: %d (minimum 5)", seg.DataOffset)
	}

	headerLength := int(seg.DataOffset) * 4
	if headerLength > MaxHeaderLength {
		return nil, fmt.Errorf("invalid header length: %d (maximum %d)", headerLength, MaxHeaderLength)
	}

	if len(data) < headerLength {
		return nil, fmt.Errorf("segment too short for header: %d bytes (expected %d)", len(data), headerLength)
	}

	// Parse remaining fields
	seg.WindowSize = binary.BigEndian.Uint16(data[14:16])
	seg.Checksum = binary.BigEndian.Uint16(data[16:18])
	seg.UrgentPointer = binary.BigEndian.Uint16(data[18:20])

	// Parse options (if any)
	if headerLength > MinHeaderLength {
		seg.Options = make([]byte, headerLength-MinHeaderLength)
		copy(seg.Options, data[MinHeaderLength:headerLength])
	}

	// Extract data
	if len(data) > headerLength {
		seg.Data = make([]byte, len(data)-headerLength)
		copy(seg.Data, data[headerLength:])
	}

	return seg, nil
}

// HasFlag checks if the segment has the specified flag set.
func (s *Segment) HasFlag(flag uint8) bool {
	return s.Flags&flag != 0
}

// String returns a human-readable representation of the TCP segment.
func (s *Segment) String() string {
	flags := ""
	if s.HasFlag(FlagFIN) {
		flags += "F"
	}
	if s.HasFlag(FlagSYN) {
		flags += "S"
	}
	if s.HasFlag(FlagRST) {
		flags += "R"
	}
	if s.HasFlag(FlagPSH) {
		flags += "P"
	}
	if s.HasFlag(FlagACK) {
		flags += "A"
	}
	if s.HasFlag(FlagURG) {
		flags += "U"
	}
	if flags == "" {
		flags = "."
	}

	return fmt.Sprintf("TCP{SrcPort=%d, DstPort=%d, Seq=%d, Ack=%d, Flags=%s, Win=%d, DataLen=%d}",
		s.SourcePort, s.DestinationPort, s.SequenceNumber, s.AckNumber, flags, s.WindowSize, len(s.Data))
}
