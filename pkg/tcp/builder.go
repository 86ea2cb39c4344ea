package tcp

import (
	"encoding/binary"
	"fmt"
	"math/rand"

	"github.com/fragprobe/fragprobe/pkg/common"
)

// SYNSize is the fixed wire length of the SYN segment BuildSYN writes: a
// 20-byte header with no options and no payload.
const SYNSize = MinHeaderLength

// BuildSYN writes a fixed-shape 20-byte TCP SYN segment into segment[0:20]:
// the given source and destination ports, a random 32-bit initial sequence
// number, ack=0, data offset=5 (no options), flags=SYN only, window=65535,
// urgent pointer=0. The checksum is computed over the segment together with
// pseudoHeader, which the caller builds from the enclosing IPv4 or IPv6
// header (common.PseudoHeader or common.IPv6PseudoHeader).
func BuildSYN(segment []byte, srcPort, dstPort uint16, pseudoHeader common.PseudoHeaderBytes) error {
	if len(segment) < SYNSize {
		return fmt.Errorf("tcp: segment region too short: %d bytes (minimum %d)", len(segment), SYNSize)
	}

	binary.BigEndian.PutUint16(segment[0:2], srcPort)
	binary.BigEndian.PutUint16(segment[2:4], dstPort)
	binary.BigEndian.PutUint32(segment[4:8], rand.Uint32())
	binary.BigEndian.PutUint32(segment[8:12], 0) // ack=0
	segment[12] = 5 << 4                         // data offset=5, reserved=0
	segment[13] = FlagSYN
	binary.BigEndian.PutUint16(segment[14:16], 65535) // window
	segment[16] = 0
	segment[17] = 0
	binary.BigEndian.PutUint16(segment[18:20], 0) // urgent pointer

	return common.WriteChecksum(common.ChecksumTCP, segment[:SYNSize], 16, pseudoHeader)
}
