// Package pprint narrates the frames fragprobe builds and captures, the
// Go equivalent of synfrag.c's print_ethh/print_iph/print_ip6h/print_tcph/
// print_icmph/print_icmp6h/print_a_packet family. It stays an out-of-core
// collaborator; the orchestrator reaches it only through the Printer
// interface below, so tests can stub it out entirely.
package pprint

import (
	"github.com/sirupsen/logrus"

	"github.com/fragprobe/fragprobe/pkg/common"
	"github.com/fragprobe/fragprobe/pkg/ethernet"
	"github.com/fragprobe/fragprobe/pkg/icmp"
	"github.com/fragprobe/fragprobe/pkg/icmpv6"
	"github.com/fragprobe/fragprobe/pkg/ip"
	"github.com/fragprobe/fragprobe/pkg/ipv6"
	"github.com/fragprobe/fragprobe/pkg/tcp"
)

// Printer narrates a single on-wire frame, tagged with a caller-supplied
// label ("tx fragment 1", "rx reply", ...).
type Printer interface {
	Frame(label string, frame []byte)
}

// LogrusPrinter narrates every frame as a structured logrus.Debug entry
// per header layer, so a normal run stays quiet and only -v/--verbose
// (which raises the logger's level to Debug) reveals it.
type LogrusPrinter struct {
	Log *logrus.Logger
}

// Frame parses as much of frame as it can recognize and emits one Debug
// line per layer. Parse failures below Ethernet are logged and otherwise
// ignored — this is narration, not validation.
func (p LogrusPrinter) Frame(label string, frame []byte) {
	entry := p.Log.WithField("frame", label).WithField("bytes", len(frame))

	eth, err := ethernet.Parse(frame)
	if err != nil {
		entry.Debugf("unparseable frame: %v", err)
		return
	}
	entry = entry.WithFields(logrus.Fields{
		"eth_src": eth.Source, "eth_dst": eth.Destination, "ethertype": eth.EtherType,
	})
	entry.Debug("ethernet")

	switch eth.EtherType {
	case common.EtherTypeIPv4:
		p.printIPv4(entry, eth.Payload)
	case common.EtherTypeIPv6:
		p.printIPv6(entry, eth.Payload)
	default:
		entry.Debug("non-IP payload")
	}
}

func (p LogrusPrinter) printIPv4(entry *logrus.Entry, data []byte) {
	pkt, err := ip.Parse(data)
	if err != nil {
		entry.Debugf("unparseable IPv4 packet: %v", err)
		return
	}
	entry = entry.WithFields(logrus.Fields{
		"ip_src": pkt.Source, "ip_dst": pkt.Destination,
		"ip_id": pkt.Identification, "ip_mf": pkt.Flags&ip.FlagMoreFragments != 0, "ip_frag_offset": pkt.FragmentOffset,
		"ip_total_len": pkt.TotalLength, "ip_protocol": pkt.Protocol,
	})
	entry.Debug("ipv4")
	p.printL4(entry, pkt.Protocol, pkt.Payload)
}

func (p LogrusPrinter) printIPv6(entry *logrus.Entry, data []byte) {
	pkt, err := ipv6.Parse(data)
	if err != nil {
		entry.Debugf("unparseable IPv6 packet: %v", err)
		return
	}
	entry = entry.WithFields(logrus.Fields{
		"ip_src": pkt.Source, "ip_dst": pkt.Destination,
		"ip_payload_len": pkt.PayloadLen, "ip_next_header": pkt.NextHeader,
	})
	entry.Debug("ipv6")
	p.printL4(entry, pkt.NextHeader, pkt.Payload)
}

func (p LogrusPrinter) printL4(entry *logrus.Entry, protocol common.Protocol, payload []byte) {
	switch protocol {
	case common.ProtocolTCP:
		seg, err := tcp.Parse(payload)
		if err != nil {
			entry.Debugf("unparseable TCP segment: %v", err)
			return
		}
		entry.WithFields(logrus.Fields{
			"tcp_src_port": seg.SourcePort, "tcp_dst_port": seg.DestinationPort, "tcp_flags": seg.String(),
		}).Debug("tcp")
	case common.ProtocolICMP:
		msg, err := icmp.Parse(payload)
		if err != nil {
			entry.Debugf("unparseable ICMP message: %v", err)
			return
		}
		entry.WithFields(logrus.Fields{"icmp_type": msg.Type, "icmp_code": msg.Code, "icmp_id": msg.ID}).Debug("icmp")
	case common.ProtocolICMPv6:
		msg, err := icmpv6.Parse(payload)
		if err != nil {
			entry.Debugf("unparseable ICMPv6 message: %v", err)
			return
		}
		entry.WithFields(logrus.Fields{"icmp6_type": msg.Type, "icmp6_code": msg.Code, "icmp6_id": msg.ID}).Debug("icmpv6")
	default:
		entry.Debug("unrecognized upper-layer protocol, no further narration")
	}
}

// NopPrinter discards every frame; used by tests and anywhere narration
// isn't wanted.
type NopPrinter struct{}

// Frame implements Printer by doing nothing.
func (NopPrinter) Frame(string, []byte) {}
