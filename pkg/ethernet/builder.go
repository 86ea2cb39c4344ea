package ethernet

import (
	"encoding/binary"
	"fmt"

	"github.com/fragprobe/fragprobe/pkg/common"
)

// BuildHeader writes a bare 14-byte Ethernet II header into header[0:14]:
// destination, source, and EtherType, in that order, with no padding. This
// is the uniform builder used by the probe's recipes, which assemble a
// complete frame (header + one or two IP fragments) inside a single
// 1,500-byte buffer and transmit exact-length prefixes of it. It never
// pads short payloads up to the minimum Ethernet payload size, since the caller's total on-wire length is dictated by the
// test recipe, not by this layer.
func BuildHeader(header []byte, destination, source common.MACAddress, etherType common.EtherType) error {
	if len(header) < HeaderSize {
		return fmt.Errorf("ethernet: header region too short: %d bytes (minimum %d)", len(header), HeaderSize)
	}
	copy(header[0:6], destination[:])
	copy(header[6:12], source[:])
	binary.BigEndian.PutUint16(header[12:14], uint16(etherType))
	return nil
}
