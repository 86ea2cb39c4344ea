// Package ipv6 implements the Internet Protocol version 6 (IPv6) as defined in RFC 2460.
package ipv6

import (
	"encoding/binary"
	"fmt"

	"github.com/fragprobe/fragprobe/pkg/common"
)

const (
	// IPv6Version is the version number for IPv6.
	IPv6Version = 6

	// HeaderLength is the fixed IPv6 header length (40 bytes).
	HeaderLength = 40

	// DefaultHopLimit is the default Hop Limit value.
	DefaultHopLimit = 64
)

// Packet represents a parsed IPv6 packet. Everything here is read off the
// wire by Parse; construction lives in builders.go, which writes directly
// into a caller-owned buffer.
type Packet struct {
	// Header fields
	Version      uint8              // 4 bits: IP version (should be 6)
	TrafficClass uint8              // 8 bits: Traffic class
	FlowLabel    uint32             // 20 bits: Flow label
	PayloadLen   uint16             // Payload length (excludes header)
	NextHeader   common.Protocol    // Next header protocol
	HopLimit     uint8              // Hop limit (like TTL in IPv4)
	Source       common.IPv6Address // Source IPv6 address
	Destination  common.IPv6Address // Destination IPv6 address

	// Payload
	Payload []byte // Packet payload
}

// Parse parses an IPv6 packet from raw bytes.
func Parse(data []byte) (*Packet, error) {
	if len(data) < HeaderLength {
		return nil, fmt.Errorf("packet too short: %d bytes (minimum %d)", len(data), HeaderLength)
	}

	pkt := &Packet{}

	// Parse version, traffic class, and flow label (first 4 bytes)
	versionTCFlow := binary.BigEndian.Uint32(data[0:4])
	pkt.Version = uint8(versionTCFlow >> 28)
	pkt.TrafficClass = uint8((versionTCFlow >> 20) & 0xFF)
	pkt.FlowLabel = versionTCFlow & 0xFFFFF

	if pkt.Version != IPv6Version {
		return nil, fmt.Errorf("invalid IP version: %d (expected %d)", pkt.Version, IPv6Version)
	}

	// Parse payload length
	pkt.PayloadLen = binary.BigEndian.Uint16(data[4:6])

	// Parse next header and hop limit
	pkt.NextHeader = common.Protocol(data[6])
	pkt.HopLimit = data[7]

	// Parse source and destination addresses
	copy(pkt.Source[:], data[8:24])
	copy(pkt.Destination[:], data[24:40])

	// Extract payload
	if len(data) > HeaderLength {
		payloadData := data[HeaderLength:]
		if int(pkt.PayloadLen) > len(payloadData) {
			return nil, fmt.Errorf("payload length mismatch: header says %d, got %d bytes", pkt.PayloadLen, len(payloadData))
		}
		pkt.Payload = payloadData[:pkt.PayloadLen]
	}

	return pkt, nil
}
