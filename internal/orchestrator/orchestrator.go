// Package orchestrator drives one run of the tool end to end: arm the
// listener, transmit the dispatched recipe's frame(s), await the
// harvested reply, classify it. This stays deliberately thin — every
// interesting decision (what to send, how to capture) lives in
// internal/recipes and internal/capture; this package only sequences
// them and reports a classification or an error, which cmd/fragprobe maps
// to the process's exit status.
package orchestrator

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fragprobe/fragprobe/internal/capture"
	"github.com/fragprobe/fragprobe/internal/config"
	"github.com/fragprobe/fragprobe/internal/errs"
	"github.com/fragprobe/fragprobe/internal/linklayer"
	"github.com/fragprobe/fragprobe/internal/pprint"
	"github.com/fragprobe/fragprobe/internal/recipes"
	"github.com/fragprobe/fragprobe/pkg/common"
	"github.com/fragprobe/fragprobe/pkg/ethernet"
	"github.com/fragprobe/fragprobe/pkg/icmp"
	"github.com/fragprobe/fragprobe/pkg/icmpv6"
	"github.com/fragprobe/fragprobe/pkg/ip"
	"github.com/fragprobe/fragprobe/pkg/ipv6"
	"github.com/fragprobe/fragprobe/pkg/tcp"
)

// Run carries every argument a single invocation needs, already parsed
// and validated — building a Run from argv, and resolving SourceMAC via
// linklayer.ResolveMAC, is cmd/fragprobe's job.
type Run struct {
	Test      config.Test
	Interface string

	SourceIPv4 common.IPv4Address
	DestIPv4   common.IPv4Address
	SourceIPv6 common.IPv6Address
	DestIPv6   common.IPv6Address

	SourceMAC common.MACAddress
	DestMAC   common.MACAddress
	DestPort  uint16
	Timeout   time.Duration
}

func (r Run) sourceAddrString() string {
	if r.Test.IsIPv6() {
		return r.SourceIPv6.String()
	}
	return r.SourceIPv4.String()
}

func (r Run) destAddrString() string {
	if r.Test.IsIPv6() {
		return r.DestIPv6.String()
	}
	return r.DestIPv4.String()
}

// link is the narrow set of capabilities Execute needs from the
// link layer, satisfied by *linklayer.Link in production and by a fake in
// tests.
type link interface {
	capture.Filterer
	capture.FrameSource
	Inject(frame []byte) error
}

// Execute runs one test to completion: arm, transmit, harvest, classify.
// The boolean result is the classification (true = success); a non-nil
// error means the run could not complete at all (and should be reported
// with errs.ExitCode, not classified).
func Execute(run Run, l link, log *logrus.Logger, printer pprint.Printer) (bool, error) {
	expr, err := capture.BuildFilter(run.Test, run.sourceAddrString(), run.destAddrString(), run.DestPort)
	if err != nil {
		return false, err
	}
	if err := capture.Arm(l, expr); err != nil {
		return false, err
	}
	log.WithFields(logrus.Fields{"test": run.Test, "interface": run.Interface, "filter": expr}).Info("filter armed")

	listener := capture.NewListener(l)
	go listener.Run(time.Now().Add(run.Timeout))
	<-listener.Ready()

	params := recipes.Params{
		SourceMAC: run.SourceMAC, DestMAC: run.DestMAC,
		SourceIPv4: run.SourceIPv4, DestIPv4: run.DestIPv4,
		SourceIPv6: run.SourceIPv6, DestIPv6: run.DestIPv6,
		DestPort: run.DestPort,
	}
	buf := make([]byte, config.BufferSize)
	n := 0
	err = recipes.Dispatch(run.Test, buf, params, func(frame []byte) error {
		n++
		printer.Frame(fmt.Sprintf("tx fragment %d", n), frame)
		return l.Inject(frame)
	})
	if err != nil {
		return false, err
	}
	log.WithField("test", run.Test).Info("Packet transmission successful, waiting for reply...")

	result := <-listener.Done()
	if result.Err != nil {
		return false, fmt.Errorf("%w: %v", errs.ChildCommError, result.Err)
	}
	if result.TimedOut {
		return false, fmt.Errorf("%w: no reply within %s", errs.Timeout, run.Timeout)
	}
	if len(result.Frame) < 1 || len(result.Frame) > linklayer.CaptureLength {
		return false, fmt.Errorf("%w: captured frame length %d out of range", errs.ChildCommError, len(result.Frame))
	}
	printer.Frame("rx reply", result.Frame)

	success := classify(run.Test, result.Frame)
	log.WithFields(logrus.Fields{"test": run.Test, "success": success}).Info("classified reply")
	return success, nil
}

// classify decides whether frame is a passing reply to test: TCP tests
// need SYN set and RST clear; ICMP/ICMPv6 tests need an Echo-Reply
// carrying this tool's fixed identifier. Anything else, including an
// unparseable frame, is a failure.
func classify(test config.Test, frame []byte) bool {
	eth, err := ethernet.Parse(frame)
	if err != nil {
		return false
	}

	switch {
	case eth.EtherType == common.EtherTypeIPv4 && !test.IsIPv6():
		pkt, err := ip.Parse(eth.Payload)
		if err != nil {
			return false
		}
		return classifyL4(test, pkt.Protocol, pkt.Payload)
	case eth.EtherType == common.EtherTypeIPv6 && test.IsIPv6():
		pkt, err := ipv6.Parse(eth.Payload)
		if err != nil {
			return false
		}
		return classifyL4(test, pkt.NextHeader, pkt.Payload)
	default:
		return false
	}
}

func classifyL4(test config.Test, protocol common.Protocol, payload []byte) bool {
	if test.IsTCP() {
		if protocol != common.ProtocolTCP {
			return false
		}
		seg, err := tcp.Parse(payload)
		if err != nil {
			return false
		}
		return seg.HasFlag(tcp.FlagSYN) && !seg.HasFlag(tcp.FlagRST)
	}
	if test.IsIPv6() {
		if protocol != common.ProtocolICMPv6 {
			return false
		}
		return icmpv6.IsEchoReplyFor(payload, config.SourcePort)
	}
	if protocol != common.ProtocolICMP {
		return false
	}
	return icmp.IsEchoReplyFor(payload, config.SourcePort)
}
