// Package linklayer resolves the local interface's hardware address and
// wraps the libpcap handle this tool injects and captures frames through.
// Both capabilities are interchangeable, out-of-core collaborators:
// nothing here depends on fragprobe's recipes or capture state machine,
// only on an interface name.
package linklayer

import (
	"fmt"
	"net"
	"time"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/fragprobe/fragprobe/internal/errs"
	"github.com/fragprobe/fragprobe/pkg/common"
)

// ResolveMAC returns the hardware address of the named local interface.
func ResolveMAC(name string) (common.MACAddress, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return common.MACAddress{}, fmt.Errorf("%w: interface %q: %v", errs.InterfaceError, name, err)
	}
	if len(iface.HardwareAddr) != 6 {
		return common.MACAddress{}, fmt.Errorf("%w: interface %q has no Ethernet hardware address", errs.InterfaceError, name)
	}
	var mac common.MACAddress
	copy(mac[:], iface.HardwareAddr)
	return mac, nil
}

// CaptureLength is the snapshot length every open handle requests: large
// enough to capture any frame this tool builds or expects in reply.
const CaptureLength = 1500

// Link wraps the single libpcap handle a run's capture and injection both
// use. The orchestrator passes the same Link to the listener goroutine,
// which reads from it, while its own goroutine injects through it; the
// type itself carries no synchronization.
type Link struct {
	handle *pcap.Handle
}

// Open starts a non-promiscuous, immediate-mode capture/inject handle on
// the named interface with a read timeout bounding how long a blocking
// read call can take before libpcap returns control (distinct from the
// listener's own deadline, which additionally bounds the whole wait).
func Open(iface string, readTimeout time.Duration) (*Link, error) {
	inactive, err := pcap.NewInactiveHandle(iface)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %q: %v", errs.InterfaceError, iface, err)
	}
	defer inactive.CleanUp()

	if err := inactive.SetSnapLen(CaptureLength); err != nil {
		return nil, fmt.Errorf("%w: setting snaplen on %q: %v", errs.InterfaceError, iface, err)
	}
	if err := inactive.SetPromisc(false); err != nil {
		return nil, fmt.Errorf("%w: setting promisc on %q: %v", errs.InterfaceError, iface, err)
	}
	if err := inactive.SetTimeout(readTimeout); err != nil {
		return nil, fmt.Errorf("%w: setting read timeout on %q: %v", errs.InterfaceError, iface, err)
	}
	if err := inactive.SetImmediateMode(true); err != nil {
		return nil, fmt.Errorf("%w: setting immediate mode on %q: %v", errs.InterfaceError, iface, err)
	}

	handle, err := inactive.Activate()
	if err != nil {
		return nil, fmt.Errorf("%w: activating %q: %v", errs.InterfaceError, iface, err)
	}

	if dlt := handle.LinkType(); dlt != layers.LinkTypeEthernet {
		handle.Close()
		return nil, fmt.Errorf("%w: %q has datalink %v, only Ethernet II is supported", errs.InterfaceError, iface, dlt)
	}

	return &Link{handle: handle}, nil
}

// SetBPF compiles and installs expr on the handle.
func (l *Link) SetBPF(expr string) error {
	if err := l.handle.SetBPFFilter(expr); err != nil {
		return fmt.Errorf("%w: %q: %v", errs.FilterError, expr, err)
	}
	return nil
}

// Inject writes frame to the wire in one call, returning InjectError on
// any failure. libpcap's WritePacketData has no short-write notion; it
// either transmits the whole buffer or returns an error.
func (l *Link) Inject(frame []byte) error {
	if err := l.handle.WritePacketData(frame); err != nil {
		return fmt.Errorf("%w: %v", errs.InjectError, err)
	}
	return nil
}

// NextFrame blocks for one frame or until the handle's read timeout
// elapses, whichever comes first, returning (nil, nil) on a timed-out
// read so the listener's own deadline loop can decide whether to retry or
// give up.
func (l *Link) NextFrame() ([]byte, error) {
	data, _, err := l.handle.ZeroCopyReadPacketData()
	if err == pcap.NextErrorTimeoutExpired {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.InterfaceError, err)
	}
	frame := make([]byte, len(data))
	copy(frame, data)
	return frame, nil
}

// Close releases the handle.
func (l *Link) Close() {
	l.handle.Close()
}
