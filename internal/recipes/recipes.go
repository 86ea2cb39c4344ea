// Package recipes builds the ten on-the-wire probes fragprobe can send, one
// per config.Test variant: a bare TCP SYN or ICMP/ICMPv6 echo request, or
// the same segment split into an undersized first fragment (optionally
// padded with IPv4 options or an IPv6 Destination Options header) and a
// continuation second fragment.
//
// Every recipe shares one model: build the complete, unfragmented Layer 4
// segment once so its checksum covers the whole reassembled payload, emit
// the first fragment (header plus the segment's first 8 octets), then
// shift the remaining segment bytes down over the old header region and
// emit a second fragment with a bare (option-free) header in its place.
// This mirrors the single packet-buffer, build-inject-overwrite-inject
// sequence used throughout this tool's packet construction.
package recipes

import (
	"fmt"
	"math/rand"

	"github.com/fragprobe/fragprobe/internal/config"
	"github.com/fragprobe/fragprobe/pkg/common"
	"github.com/fragprobe/fragprobe/pkg/ethernet"
)

// Params carries every address and port a recipe might need. Only the
// fields matching the dispatched Test's address family are read.
type Params struct {
	SourceMAC common.MACAddress
	DestMAC   common.MACAddress

	SourceIPv4 common.IPv4Address
	DestIPv4   common.IPv4Address

	SourceIPv6 common.IPv6Address
	DestIPv6   common.IPv6Address

	DestPort uint16
}

// Emit is called once per frame a recipe produces, in transmission order.
// A recipe builds each frame into the same backing buffer it was given, so
// the slice passed to Emit is only valid until the next call — callers that
// need to retain it must copy before returning.
type Emit func(frame []byte) error

// fragID returns a fresh 16-bit fragmentation identification value. The
// process-global math/rand source is expected to be seeded once at
// startup; recipes never seed it themselves.
func fragID() uint16 {
	return uint16(rand.Uint32())
}

// Dispatch builds and emits the frame or frames for test into buf, which
// must be at least config.BufferSize bytes. buf is reused and overwritten
// between emissions; it belongs to the caller only between Dispatch calls.
func Dispatch(test config.Test, buf []byte, p Params, emit Emit) error {
	if len(buf) < config.BufferSize {
		return fmt.Errorf("recipes: buffer too small: %d bytes (minimum %d)", len(buf), config.BufferSize)
	}
	switch test {
	case config.TestV4TCP:
		return v4TCP(buf, p, emit)
	case config.TestV4FragTCP:
		return v4FragTCP(buf, p, emit)
	case config.TestV4FragICMP:
		return v4FragICMP(buf, p, emit)
	case config.TestV4FragOptionedTCP:
		return v4FragOptionedTCP(buf, p, emit)
	case config.TestV4FragOptionedICMP:
		return v4FragOptionedICMP(buf, p, emit)
	case config.TestV6TCP:
		return v6TCP(buf, p, emit)
	case config.TestV6FragTCP:
		return v6FragTCP(buf, p, emit)
	case config.TestV6FragICMP6:
		return v6FragICMP6(buf, p, emit)
	case config.TestV6FragOptionedTCP:
		return v6FragOptionedTCP(buf, p, emit)
	case config.TestV6FragOptionedICMP6:
		return v6FragOptionedICMP6(buf, p, emit)
	default:
		return fmt.Errorf("recipes: unknown test %v", test)
	}
}

const ethLen = ethernet.HeaderSize
