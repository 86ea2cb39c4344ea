package ip

import (
	"encoding/binary"
	"fmt"

	"github.com/fragprobe/fragprobe/pkg/common"
)

// FragmentOffsetToBytes is the scale factor between the 13-bit fragment
// offset field and an actual byte position: one offset unit is 8 octets.
const FragmentOffsetToBytes = 8

// MinimumFragmentSize is the payload length of the undersized first
// fragment the tool sends: exactly one fragment-offset unit (8 octets).
const MinimumFragmentSize = FragmentOffsetToBytes

// MinimumPacketSize is the smallest IP MTU every host and router must
// support (RFC 791 §3.2); the optioned recipes pad the first fragment to
// at least this many octets so paths that drop undersized fragments still
// forward it.
const MinimumPacketSize = 68

// moreFragmentsBit is the position of the More-Fragments flag within the
// 16-bit flags+fragment-offset field.
const moreFragmentsBit = 13

// BareParams are the fields every IPv4 builder variant shares.
type BareParams struct {
	Source      common.IPv4Address
	Destination common.IPv4Address
	Protocol    common.Protocol
}

// writeBareHeader fills header[0:20] with the common bare-IPv4 fields:
// version 4, IHL 5, TOS 0, ID 0, flags/offset 0, TTL 64, the given
// protocol and addresses. Total length and checksum are left to the
// caller, which must set TotalLength via binary.BigEndian before calling
// finalizeChecksum.
func writeBareHeader(header []byte, p BareParams) error {
	if len(header) < MinHeaderLength {
		return fmt.Errorf("ip: header region too short: %d bytes (minimum %d)", len(header), MinHeaderLength)
	}
	header[0] = (IPv4Version << 4) | 5 // version=4, IHL=5 (20-byte header, no options)
	header[1] = 0                      // DSCP/ECN
	binary.BigEndian.PutUint16(header[4:6], 0)
	binary.BigEndian.PutUint16(header[6:8], 0)
	header[8] = DefaultTTL
	header[9] = uint8(p.Protocol)
	header[10] = 0
	header[11] = 0
	copy(header[12:16], p.Source[:])
	copy(header[16:20], p.Destination[:])
	return nil
}

func finalizeChecksum(header []byte, headerLen int) error {
	header[10] = 0
	header[11] = 0
	return common.WriteChecksum(common.ChecksumIPv4Header, header[:headerLen], 10, nil)
}

// BuildBare writes a 20-byte unfragmented IPv4 header into header[0:20]:
// version=4, IHL=5, TOS=0, total length = 20+l4Length, ID=0, flags=0,
// offset=0, TTL=64, the given protocol, addresses parsed by the caller.
// This is the prefix every other IPv4 variant mutates in place.
func BuildBare(header []byte, p BareParams, l4Length uint16) error {
	if err := writeBareHeader(header, p); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(header[2:4], uint16(MinHeaderLength)+l4Length)
	return finalizeChecksum(header, MinHeaderLength)
}

// BuildShortFirstFragment writes the undersized first fragment: ID set to
// fragID, More-Fragments set, offset 0, total length = 20 + 8 (the minimum
// fragment payload — the first 8 octets of the L4 header, no more).
func BuildShortFirstFragment(header []byte, p BareParams, fragID uint16) error {
	if err := writeBareHeader(header, p); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(header[2:4], uint16(MinHeaderLength+MinimumFragmentSize))
	binary.BigEndian.PutUint16(header[4:6], fragID)
	binary.BigEndian.PutUint16(header[6:8], 1<<moreFragmentsBit)
	return finalizeChecksum(header, MinHeaderLength)
}

// BuildOptionedFirstFragment writes a first fragment identical to
// BuildShortFirstFragment but with its IHL increased by optLen/4 (optLen
// must be a multiple of 4), the options area filled with NOP (0x01) bytes
// followed by a single End-of-Options byte (0x00), and total length
// increased to match. Returns the actual header length written (20 +
// optLen) so the caller knows where the L4 header starts.
func BuildOptionedFirstFragment(header []byte, p BareParams, fragID uint16, optLen int) (headerLen int, err error) {
	if optLen%4 != 0 {
		return 0, fmt.Errorf("ip: optlen must be a multiple of 4, got %d", optLen)
	}
	headerLen = MinHeaderLength + optLen
	if len(header) < headerLen {
		return 0, fmt.Errorf("ip: header region too short: %d bytes (need %d)", len(header), headerLen)
	}
	if err := writeBareHeader(header, p); err != nil {
		return 0, err
	}
	binary.BigEndian.PutUint16(header[2:4], uint16(headerLen+MinimumFragmentSize))
	binary.BigEndian.PutUint16(header[4:6], fragID)
	binary.BigEndian.PutUint16(header[6:8], 1<<moreFragmentsBit)
	header[0] = (IPv4Version << 4) | uint8(headerLen/4)

	for i := MinHeaderLength; i < headerLen-1; i++ {
		header[i] = 0x01 // NOP
	}
	header[headerLen-1] = 0x00 // End-of-Options

	if err := finalizeChecksum(header, headerLen); err != nil {
		return 0, err
	}
	return headerLen, nil
}

// BuildSecondFragment writes the continuation fragment: same ID as the
// partner, More-Fragments clear, fragment offset 1 (8 bytes into the
// reassembled payload), total length = 20 + payloadLength.
func BuildSecondFragment(header []byte, p BareParams, fragID uint16, payloadLength uint16) error {
	if err := writeBareHeader(header, p); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(header[2:4], uint16(MinHeaderLength)+payloadLength)
	binary.BigEndian.PutUint16(header[4:6], fragID)
	binary.BigEndian.PutUint16(header[6:8], 1) // offset=1, MF=0
	return finalizeChecksum(header, MinHeaderLength)
}
