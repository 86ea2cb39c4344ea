package tcp

import (
	"testing"

	"github.com/fragprobe/fragprobe/pkg/common"
)

func TestParse(t *testing.T) {
	buf := make([]byte, SYNSize)
	ph := common.PseudoHeader{
		SourceAddr:      common.IPv4Address{192, 168, 1, 1},
		DestinationAddr: common.IPv4Address{192, 168, 1, 2},
		Protocol:        common.ProtocolTCP,
		Length:          SYNSize,
	}
	if err := BuildSYN(buf, 12345, 80, ph); err != nil {
		t.Fatalf("BuildSYN() error = %v", err)
	}

	seg, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if seg.SourcePort != 12345 {
		t.Errorf("SourcePort = %d, want 12345", seg.SourcePort)
	}
	if seg.DestinationPort != 80 {
		t.Errorf("DestinationPort = %d, want 80", seg.DestinationPort)
	}
	if seg.DataOffset != 5 {
		t.Errorf("DataOffset = %d, want 5", seg.DataOffset)
	}
	if !seg.HasFlag(FlagSYN) {
		t.Error("expected SYN flag set")
	}
	if seg.WindowSize != 65535 {
		t.Errorf("WindowSize = %d, want 65535", seg.WindowSize)
	}
}

func TestParseTooShort(t *testing.T) {
	_, err := Parse(make([]byte, 10))
	if err == nil {
		t.Error("Parse() should return error for too short segment")
	}
}

func TestHasFlag(t *testing.T) {
	seg := &Segment{Flags: FlagSYN | FlagACK}
	if !seg.HasFlag(FlagSYN) {
		t.Error("HasFlag(FlagSYN) = false, want true")
	}
	if !seg.HasFlag(FlagACK) {
		t.Error("HasFlag(FlagACK) = false, want true")
	}
	if seg.HasFlag(FlagRST) {
		t.Error("HasFlag(FlagRST) = true, want false")
	}
}

func TestSegmentString(t *testing.T) {
	seg := &Segment{
		SourcePort: 12345, DestinationPort: 80,
		SequenceNumber: 1000, AckNumber: 2000,
		Flags: FlagSYN | FlagACK, WindowSize: 65535,
		Data: []byte("data"),
	}

	str := seg.String()
	if str == "" {
		t.Error("String() returned empty string")
	}
}
