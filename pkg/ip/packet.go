// Package ip implements the Internet Protocol version 4 (IPv4) as defined in RFC 791.
package ip

import (
	"encoding/binary"
	"fmt"

	"github.com/fragprobe/fragprobe/pkg/common"
)

const (
	// IPv4Version is the version number for IPv4.
	IPv4Version = 4

	// MinHeaderLength is the minimum IPv4 header length (20 bytes).
	MinHeaderLength = 20

	// DefaultTTL is the default Time To Live value.
	DefaultTTL = 64
)

// IPv4Flags represents the flags in the IPv4 header.
type IPv4Flags uint8

// FlagMoreFragments indicates that more fragments follow.
const FlagMoreFragments IPv4Flags = 1 << 0

// Packet represents a parsed IPv4 packet. Everything here is read off the
// wire by Parse; there is no corresponding construction path — the probe's
// recipes build headers directly with BuildBare and the other functions in
// builders.go, which is where on-wire semantics live.
type Packet struct {
	// Header fields
	Version        uint8              // 4 bits: IP version (should be 4)
	IHL            uint8              // 4 bits: Internet Header Length (in 32-bit words)
	DSCP           uint8              // 6 bits: Differentiated Services Code Point
	ECN            uint8              // 2 bits: Explicit Congestion Notification
	TotalLength    uint16             // Total packet length (header + data)
	Identification uint16             // Fragment identification
	Flags          IPv4Flags          // Flags (Reserved, DF, MF)
	FragmentOffset uint16             // Fragment offset (in 8-byte blocks)
	TTL            uint8              // Time To Live
	Protocol       common.Protocol    // Protocol (TCP, UDP, ICMP, etc.)
	Checksum       uint16             // Header checksum
	Source         common.IPv4Address // Source IP address
	Destination    common.IPv4Address // Destination IP address
	Options        []byte             // IP options (if IHL > 5)

	// Payload
	Payload []byte // Packet payload
}

// Parse parses an IPv4 packet from raw bytes.
func Parse(data []byte) (*Packet, error) {
	if len(data) < MinHeaderLength {
		return nil, fmt.Errorf("packet too short: %d bytes (minimum %d)", len(data), MinHeaderLength)
	}

	pkt := &Packet{}

	// Parse version and IHL (first byte)
	versionIHL := data[0]
	pkt.Version = versionIHL >> 4
	pkt.IHL = versionIHL & 0x0F

	if pkt.Version != IPv4Version {
		return nil, fmt.Errorf("invalid IP version: %d (expected %d)", pkt.Version, IPv4Version)
	}

	if pkt.IHL < 5 {
		return nil, fmt.Errorf("invalid IHL: %d (minimum 5)", pkt.IHL)
	}

	headerLength := int(pkt.IHL) * 4
	if len(data) < headerLength {
		return nil, fmt.Errorf("packet too short for header: %d bytes (expected %d)", len(data), headerLength)
	}

	// Parse DSCP and ECN (second byte)
	dscpECN := data[1]
	pkt.DSCP = dscpECN >> 2
	pkt.ECN = dscpECN & 0x03

	// Parse total length
	pkt.TotalLength = binary.BigEndian.Uint16(data[2:4])
	if int(pkt.TotalLength) > len(data) {
		return nil, fmt.Errorf("total length mismatch: header says %d, got %d bytes", pkt.TotalLength, len(data))
	}

	// Parse identification
	pkt.Identification = binary.BigEndian.Uint16(data[4:6])

	// Parse flags and fragment offset
	flagsFragOffset := binary.BigEndian.Uint16(data[6:8])
	pkt.Flags = IPv4Flags(flagsFragOffset >> 13)
	pkt.FragmentOffset = flagsFragOffset & 0x1FFF

	// Parse TTL
	pkt.TTL = data[8]

	// Parse protocol
	pkt.Protocol = common.Protocol(data[9])

	// Parse checksum
	pkt.Checksum = binary.BigEndian.Uint16(data[10:12])

	// Parse source and destination addresses
	copy(pkt.Source[:], data[12:16])
	copy(pkt.Destination[:], data[16:20])

	// Parse options if present
	if pkt.IHL > 5 {
		optionsLength := headerLength - MinHeaderLength
		pkt.Options = make([]byte, optionsLength)
		copy(pkt.Options, data[20:headerLength])
	}

	// Extract payload
	pkt.Payload = data[headerLength:pkt.TotalLength]

	return pkt, nil
}
