package ipv6

import (
	"encoding/binary"
	"fmt"

	"github.com/fragprobe/fragprobe/pkg/common"
)

// FragmentHeaderSize is the fixed size of the IPv6 Fragment extension
// header (RFC 8200 §4.5): next-header, reserved, fragment-offset+flags,
// identification.
const FragmentHeaderSize = 8

// DestOptsFixedSize is the size of the Destination Options extension
// header's fixed fields (RFC 8200 §4.6), excluding the variable-length
// options area that follows.
const DestOptsFixedSize = 2

// MinimumFragmentSize is the payload length of the undersized first
// fragment the tool sends: one fragment-offset unit (8 octets), matching
// pkg/ip's IPv4 constant.
const MinimumFragmentSize = 8

// MinimumPacketSize is the 68-octet floor shared with pkg/ip; the optioned
// recipes pad the first fragment's Destination Options header so the
// fragment's IPv6-layer length (base header, extension headers and the
// 8-octet fragment, Ethernet excluded) still clears it.
const MinimumPacketSize = 68

const moreFragmentsBit = 1

// FixUpDestinationOptionsLength rounds optLen up to the smallest value
// satisfying optLen % 8 == 6 — the only option-area length that leaves the
// whole Destination Options header (2 fixed bytes + optLen) a multiple of
// 8 octets, as RFC 8200 requires. Only ever increases optLen.
func FixUpDestinationOptionsLength(optLen int) int {
	if optLen%8 != 6 {
		x := 6 - (optLen % 8)
		if x < 0 {
			x += 8
		}
		optLen += x
	}
	return optLen
}

// BaseParams are the fields every IPv6 builder variant shares.
type BaseParams struct {
	Source      common.IPv6Address
	Destination common.IPv6Address
}

func writeBaseHeader(header []byte, p BaseParams, nextHeader common.Protocol, payloadLen uint16) error {
	if len(header) < HeaderLength {
		return fmt.Errorf("ipv6: header region too short: %d bytes (minimum %d)", len(header), HeaderLength)
	}
	binary.BigEndian.PutUint32(header[0:4], uint32(IPv6Version)<<28)
	binary.BigEndian.PutUint16(header[4:6], payloadLen)
	header[6] = uint8(nextHeader)
	header[7] = DefaultHopLimit
	copy(header[8:24], p.Source[:])
	copy(header[24:40], p.Destination[:])
	return nil
}

// BuildBase writes a plain 40-byte IPv6 base header into header[0:40] with
// the given upper-layer protocol and payload length, and no extension
// headers.
func BuildBase(header []byte, p BaseParams, protocol common.Protocol, payloadLength uint16) error {
	return writeBaseHeader(header, p, protocol, payloadLength)
}

// BuildShortFirstFragment writes a 40-byte base header (next-header =
// Fragment) followed by an 8-byte Fragment extension header into
// header[40:48]: More-Fragments set, offset 0, the given identification,
// and protocol as the fragment header's own next-header. Total payload
// length covers the fragment header plus the minimum 8-byte fragment.
func BuildShortFirstFragment(header []byte, p BaseParams, protocol common.Protocol, fragID uint16) error {
	total := HeaderLength + FragmentHeaderSize
	if len(header) < total {
		return fmt.Errorf("ipv6: header region too short: %d bytes (need %d)", len(header), total)
	}
	if err := writeBaseHeader(header, p, common.ProtocolIPv6Frag, uint16(FragmentHeaderSize+MinimumFragmentSize)); err != nil {
		return err
	}
	writeFragmentHeader(header[HeaderLength:], protocol, fragID, 0, true)
	return nil
}

// BuildSecondFragment writes a 40-byte base header followed by an 8-byte
// Fragment extension header whose offset is 1 (8 octets into the
// reassembled payload) and More-Fragments clear.
func BuildSecondFragment(header []byte, p BaseParams, protocol common.Protocol, fragID uint16, payloadLength uint16) error {
	total := HeaderLength + FragmentHeaderSize
	if len(header) < total {
		return fmt.Errorf("ipv6: header region too short: %d bytes (need %d)", len(header), total)
	}
	if err := writeBaseHeader(header, p, common.ProtocolIPv6Frag, payloadLength+FragmentHeaderSize); err != nil {
		return err
	}
	writeFragmentHeader(header[HeaderLength:], protocol, fragID, 1, false)
	return nil
}

// BuildOptionedFirstFragment writes a 40-byte base header (next-header =
// Destination Options) followed by a Destination Options header — next-
// header = Fragment, Hdr Ext Len = optLen/8, a single Pad-N option filling
// the whole option area — followed by an 8-byte Fragment extension header
// (More-Fragments set, offset 0). optLen must satisfy optLen%8==6 (see
// FixUpDestinationOptionsLength). Returns the offset where the Fragment
// header ends and the L4 header begins.
func BuildOptionedFirstFragment(header []byte, p BaseParams, protocol common.Protocol, fragID uint16, optLen int) (l4Offset int, err error) {
	if optLen <= 0 || optLen%8 != 6 {
		return 0, fmt.Errorf("ipv6: unsupported optlen %d (must satisfy optlen %% 8 == 6)", optLen)
	}
	destOptsLen := DestOptsFixedSize + optLen
	l4Offset = HeaderLength + destOptsLen + FragmentHeaderSize
	if len(header) < l4Offset {
		return 0, fmt.Errorf("ipv6: header region too short: %d bytes (need %d)", len(header), l4Offset)
	}

	payloadLen := destOptsLen + FragmentHeaderSize + MinimumFragmentSize
	if err := writeBaseHeader(header, p, common.ProtocolIPv6DstOpt, uint16(payloadLen)); err != nil {
		return 0, err
	}

	dest := header[HeaderLength:]
	dest[0] = uint8(common.ProtocolIPv6Frag)
	dest[1] = uint8(optLen / 8)
	dest[2] = 1          // Pad-N option type
	dest[3] = uint8(optLen - 2) // Pad-N option length
	for i := 4; i < destOptsLen; i++ {
		dest[i] = 0
	}

	writeFragmentHeader(header[HeaderLength+destOptsLen:], protocol, fragID, 0, true)
	return l4Offset, nil
}

func writeFragmentHeader(region []byte, nextHeader common.Protocol, fragID uint16, offsetUnits uint16, moreFragments bool) {
	region[0] = uint8(nextHeader)
	region[1] = 0 // reserved
	offlg := offsetUnits << 3
	if moreFragments {
		offlg |= moreFragmentsBit
	}
	binary.BigEndian.PutUint16(region[2:4], offlg)
	binary.BigEndian.PutUint32(region[4:8], uint32(fragID))
}
