package recipes

import (
	"github.com/fragprobe/fragprobe/internal/config"
	"github.com/fragprobe/fragprobe/pkg/common"
	"github.com/fragprobe/fragprobe/pkg/ethernet"
	"github.com/fragprobe/fragprobe/pkg/icmp"
	"github.com/fragprobe/fragprobe/pkg/ip"
	"github.com/fragprobe/fragprobe/pkg/tcp"
)

// optLenV4 is the fixed IPv4 options-area length the optioned recipes pad
// the first fragment with: a multiple of 4 that, combined with the bare
// 20-byte header and the 8-octet minimum fragment, brings the first
// fragment to exactly the 68-octet minimum IP packet size.
const optLenV4 = 40

func v4BareParams(p Params, protocol common.Protocol) ip.BareParams {
	return ip.BareParams{Source: p.SourceIPv4, Destination: p.DestIPv4, Protocol: protocol}
}

func v4PseudoHeader(p Params, protocol common.Protocol, length uint16) common.PseudoHeader {
	return common.PseudoHeader{SourceAddr: p.SourceIPv4, DestinationAddr: p.DestIPv4, Protocol: protocol, Length: length}
}

func v4BuildEthernet(buf []byte, p Params) error {
	return ethernet.BuildHeader(buf[0:ethLen], p.DestMAC, p.SourceMAC, common.EtherTypeIPv4)
}

// v4TCP sends a single, unfragmented Ethernet+IPv4+TCP-SYN frame.
func v4TCP(buf []byte, p Params, emit Emit) error {
	if err := v4BuildEthernet(buf, p); err != nil {
		return err
	}
	ipOff := ethLen
	tcpOff := ipOff + ip.MinHeaderLength
	if err := tcp.BuildSYN(buf[tcpOff:], config.SourcePort, p.DestPort, v4PseudoHeader(p, common.ProtocolTCP, tcp.SYNSize)); err != nil {
		return err
	}
	if err := ip.BuildBare(buf[ipOff:], v4BareParams(p, common.ProtocolTCP), tcp.SYNSize); err != nil {
		return err
	}
	return emit(buf[:tcpOff+tcp.SYNSize])
}

// v4FragTCP sends the TCP-SYN segment split across an undersized first
// IPv4 fragment (8 octets of TCP header, More-Fragments set) and a second
// fragment carrying the remaining 12 octets.
func v4FragTCP(buf []byte, p Params, emit Emit) error {
	return v4FragSegment(buf, p, common.ProtocolTCP, tcp.SYNSize, 0, func(segment []byte) error {
		return tcp.BuildSYN(segment, config.SourcePort, p.DestPort, v4PseudoHeader(p, common.ProtocolTCP, tcp.SYNSize))
	}, emit)
}

// v4FragICMP sends an ICMP echo request split the same way: 8 octets (the
// whole ICMP header) in the first fragment, the 40-octet ping payload in
// the second.
func v4FragICMP(buf []byte, p Params, emit Emit) error {
	return v4FragSegment(buf, p, common.ProtocolICMP, icmp.EchoRequestSize, 0, func(segment []byte) error {
		return icmp.BuildEchoRequest(segment, config.SourcePort, 1)
	}, emit)
}

// v4FragOptionedTCP is v4FragTCP with the first fragment's IPv4 header
// padded with optLenV4 octets of options, bringing the first fragment up
// to the 68-octet minimum packet size.
func v4FragOptionedTCP(buf []byte, p Params, emit Emit) error {
	return v4FragSegment(buf, p, common.ProtocolTCP, tcp.SYNSize, optLenV4, func(segment []byte) error {
		return tcp.BuildSYN(segment, config.SourcePort, p.DestPort, v4PseudoHeader(p, common.ProtocolTCP, tcp.SYNSize))
	}, emit)
}

// v4FragOptionedICMP is v4FragICMP with the same options padding.
func v4FragOptionedICMP(buf []byte, p Params, emit Emit) error {
	return v4FragSegment(buf, p, common.ProtocolICMP, icmp.EchoRequestSize, optLenV4, func(segment []byte) error {
		return icmp.BuildEchoRequest(segment, config.SourcePort, 1)
	}, emit)
}

// v4FragSegment implements the shared build-emit-shift-emit sequence every
// fragmented IPv4 recipe follows. buildSegment fills the complete,
// unfragmented L4 segment (segmentLen bytes); optLen is 0 for the plain
// undersized-fragment recipes or optLenV4 for the optioned ones.
func v4FragSegment(buf []byte, p Params, protocol common.Protocol, segmentLen uint16, optLen int, buildSegment func(segment []byte) error, emit Emit) error {
	if err := v4BuildEthernet(buf, p); err != nil {
		return err
	}
	id := fragID()
	bare := v4BareParams(p, protocol)

	var headerLen1 int
	if optLen == 0 {
		headerLen1 = ip.MinHeaderLength
		if err := ip.BuildShortFirstFragment(buf[ethLen:], bare, id); err != nil {
			return err
		}
	} else {
		n, err := ip.BuildOptionedFirstFragment(buf[ethLen:], bare, id, optLen)
		if err != nil {
			return err
		}
		headerLen1 = n
	}

	l4Off1 := ethLen + headerLen1
	if err := buildSegment(buf[l4Off1 : l4Off1+int(segmentLen)]); err != nil {
		return err
	}
	frame1Len := l4Off1 + ip.MinimumFragmentSize
	if err := emit(buf[:frame1Len]); err != nil {
		return err
	}

	tailLen := int(segmentLen) - ip.MinimumFragmentSize
	headerLen2 := ip.MinHeaderLength
	l4Off2 := ethLen + headerLen2
	copy(buf[l4Off2:l4Off2+tailLen], buf[l4Off1+ip.MinimumFragmentSize:l4Off1+int(segmentLen)])
	if err := ip.BuildSecondFragment(buf[ethLen:], bare, id, uint16(tailLen)); err != nil {
		return err
	}
	frame2Len := l4Off2 + tailLen
	return emit(buf[:frame2Len])
}
