package recipes

import (
	"github.com/fragprobe/fragprobe/internal/config"
	"github.com/fragprobe/fragprobe/pkg/common"
	"github.com/fragprobe/fragprobe/pkg/ethernet"
	"github.com/fragprobe/fragprobe/pkg/icmpv6"
	"github.com/fragprobe/fragprobe/pkg/ipv6"
	"github.com/fragprobe/fragprobe/pkg/tcp"
)

// optLenV6 is the fixed Destination Options area length the optioned IPv6
// recipes pad the first fragment with: the smallest value satisfying
// ipv6.FixUpDestinationOptionsLength that still clears the 68-octet
// minimum packet size once combined with the base header, the Fragment
// header, and the 8-octet minimum fragment.
var optLenV6 = ipv6.FixUpDestinationOptionsLength(
	ipv6.MinimumPacketSize - ipv6.HeaderLength - ipv6.DestOptsFixedSize - ipv6.FragmentHeaderSize - ipv6.MinimumFragmentSize,
)

func v6BaseParams(p Params) ipv6.BaseParams {
	return ipv6.BaseParams{Source: p.SourceIPv6, Destination: p.DestIPv6}
}

func v6PseudoHeader(p Params, protocol common.Protocol, length uint32) common.IPv6PseudoHeader {
	return common.IPv6PseudoHeader{SourceAddr: p.SourceIPv6, DestinationAddr: p.DestIPv6, UpperLayerLength: length, NextHeader: protocol}
}

func v6BuildEthernet(buf []byte, p Params) error {
	return ethernet.BuildHeader(buf[0:ethLen], p.DestMAC, p.SourceMAC, common.EtherTypeIPv6)
}

// v6TCP sends a single, unfragmented Ethernet+IPv6+TCP-SYN frame.
func v6TCP(buf []byte, p Params, emit Emit) error {
	if err := v6BuildEthernet(buf, p); err != nil {
		return err
	}
	ipOff := ethLen
	tcpOff := ipOff + ipv6.HeaderLength
	if err := tcp.BuildSYN(buf[tcpOff:], config.SourcePort, p.DestPort, v6PseudoHeader(p, common.ProtocolTCP, tcp.SYNSize)); err != nil {
		return err
	}
	if err := ipv6.BuildBase(buf[ipOff:], v6BaseParams(p), common.ProtocolTCP, tcp.SYNSize); err != nil {
		return err
	}
	return emit(buf[:tcpOff+tcp.SYNSize])
}

// v6FragTCP sends the TCP-SYN segment split across an undersized first
// IPv6 fragment (8 octets of TCP header, More-Fragments set) and a second
// fragment carrying the remaining 12 octets.
func v6FragTCP(buf []byte, p Params, emit Emit) error {
	return v6FragSegment(buf, p, common.ProtocolTCP, tcp.SYNSize, 0, func(segment []byte) error {
		return tcp.BuildSYN(segment, config.SourcePort, p.DestPort, v6PseudoHeader(p, common.ProtocolTCP, tcp.SYNSize))
	}, emit)
}

// v6FragICMP6 sends an ICMPv6 echo request split the same way: 8 octets
// (the whole ICMPv6 header) in the first fragment, the 40-octet ping
// payload in the second.
func v6FragICMP6(buf []byte, p Params, emit Emit) error {
	return v6FragSegment(buf, p, common.ProtocolICMPv6, icmpv6.EchoRequestSize, 0, func(segment []byte) error {
		return icmpv6.BuildEchoRequest(segment, config.SourcePort, 1, v6PseudoHeader(p, common.ProtocolICMPv6, icmpv6.EchoRequestSize))
	}, emit)
}

// v6FragOptionedTCP is v6FragTCP with the first fragment carrying a
// Destination Options header padded to optLenV6, pushing the first frame
// above the minimum path MTU.
func v6FragOptionedTCP(buf []byte, p Params, emit Emit) error {
	return v6FragSegment(buf, p, common.ProtocolTCP, tcp.SYNSize, optLenV6, func(segment []byte) error {
		return tcp.BuildSYN(segment, config.SourcePort, p.DestPort, v6PseudoHeader(p, common.ProtocolTCP, tcp.SYNSize))
	}, emit)
}

// v6FragOptionedICMP6 is v6FragICMP6 with the same Destination Options
// padding.
func v6FragOptionedICMP6(buf []byte, p Params, emit Emit) error {
	return v6FragSegment(buf, p, common.ProtocolICMPv6, icmpv6.EchoRequestSize, optLenV6, func(segment []byte) error {
		return icmpv6.BuildEchoRequest(segment, config.SourcePort, 1, v6PseudoHeader(p, common.ProtocolICMPv6, icmpv6.EchoRequestSize))
	}, emit)
}

// v6FragSegment implements the shared build-emit-shift-emit sequence every
// fragmented IPv6 recipe follows. buildSegment fills the complete,
// unfragmented L4 segment (segmentLen bytes) against the full reassembled
// pseudo-header length; optLen is 0 for the plain undersized-fragment
// recipes or optLenV6 for the optioned ones.
func v6FragSegment(buf []byte, p Params, protocol common.Protocol, segmentLen uint16, optLen int, buildSegment func(segment []byte) error, emit Emit) error {
	if err := v6BuildEthernet(buf, p); err != nil {
		return err
	}
	id := fragID()
	base := v6BaseParams(p)

	var headerLen1 int
	if optLen == 0 {
		headerLen1 = ipv6.HeaderLength + ipv6.FragmentHeaderSize
		if err := ipv6.BuildShortFirstFragment(buf[ethLen:], base, protocol, id); err != nil {
			return err
		}
	} else {
		n, err := ipv6.BuildOptionedFirstFragment(buf[ethLen:], base, protocol, id, optLen)
		if err != nil {
			return err
		}
		headerLen1 = n
	}

	l4Off1 := ethLen + headerLen1
	if err := buildSegment(buf[l4Off1 : l4Off1+int(segmentLen)]); err != nil {
		return err
	}
	frame1Len := l4Off1 + ipv6.MinimumFragmentSize
	if err := emit(buf[:frame1Len]); err != nil {
		return err
	}

	tailLen := int(segmentLen) - ipv6.MinimumFragmentSize
	headerLen2 := ipv6.HeaderLength + ipv6.FragmentHeaderSize
	l4Off2 := ethLen + headerLen2
	copy(buf[l4Off2:l4Off2+tailLen], buf[l4Off1+ipv6.MinimumFragmentSize:l4Off1+int(segmentLen)])
	if err := ipv6.BuildSecondFragment(buf[ethLen:], base, protocol, id, uint16(tailLen)); err != nil {
		return err
	}
	frame2Len := l4Off2 + tailLen
	return emit(buf[:frame2Len])
}
