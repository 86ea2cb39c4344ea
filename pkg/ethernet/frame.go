// Package ethernet implements Ethernet frame handling for Layer 2 communication.
package ethernet

import (
	"encoding/binary"
	"fmt"

	"github.com/fragprobe/fragprobe/pkg/common"
)

// Ethernet frame format (IEEE 802.3):
// +-------------------+-------------------+----------+---------+-----+
// | Destination (6B)  | Source (6B)       | Type (2B)| Payload | FCS |
// +-------------------+-------------------+----------+---------+-----+

// HeaderSize is the size of an Ethernet header (14 bytes).
const HeaderSize = 14

// Frame represents a parsed Ethernet II frame. Construction lives in
// builder.go's BuildHeader, which writes directly into a caller-owned
// buffer; there is no corresponding Frame-to-bytes path here.
type Frame struct {
	Destination common.MACAddress
	Source      common.MACAddress
	EtherType   common.EtherType
	Payload     []byte
}

// Parse parses an Ethernet frame from raw bytes.
// Note: This does not validate or parse the FCS (Frame Check Sequence),
// as that's typically handled by the network hardware.
func Parse(data []byte) (*Frame, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("ethernet frame too short: %d bytes", len(data))
	}

	frame := &Frame{}

	// Parse destination MAC (6 bytes)
	copy(frame.Destination[:], data[0:6])

	// Parse source MAC (6 bytes)
	copy(frame.Source[:], data[6:12])

	// Parse EtherType (2 bytes, big endian)
	frame.EtherType = common.EtherType(binary.BigEndian.Uint16(data[12:14]))

	// Remaining bytes are payload (minus FCS if present)
	// In raw socket captures, the FCS is usually not included
	frame.Payload = data[HeaderSize:]

	return frame, nil
}
