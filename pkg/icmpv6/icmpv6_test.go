package icmpv6

import (
	"testing"

	"github.com/fragprobe/fragprobe/pkg/common"
)

func testPseudoHeader() common.IPv6PseudoHeader {
	src, _ := common.ParseIPv6("fe80::1")
	dst, _ := common.ParseIPv6("fe80::2")
	return common.IPv6PseudoHeader{
		SourceAddr:      src,
		DestinationAddr: dst,
		NextHeader:      common.ProtocolICMPv6,
	}
}

func TestParseAndString(t *testing.T) {
	data := []byte{0x80, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0xAA, 0xBB}
	msg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if msg.Type != TypeEchoRequest {
		t.Errorf("Type = %v, want EchoRequest", msg.Type)
	}
	if msg.ID != 1 {
		t.Errorf("ID = %d, want 1", msg.ID)
	}
	if len(msg.Data) != 2 {
		t.Errorf("Data length = %d, want 2", len(msg.Data))
	}
	if msg.String() == "" {
		t.Error("String() returned empty string")
	}
}

func TestParseTooShort(t *testing.T) {
	if _, err := Parse([]byte{0x80, 0x00}); err == nil {
		t.Error("expected error for undersized message, got nil")
	}
}

func TestIsEchoReply(t *testing.T) {
	msg := &Message{Type: TypeEchoReply}
	if !msg.IsEchoReply() {
		t.Error("IsEchoReply() = false, want true")
	}
	msg.Type = TypeEchoRequest
	if msg.IsEchoReply() {
		t.Error("IsEchoReply() = true for echo request, want false")
	}
}

func TestType_String(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeEchoRequest, "EchoRequest"},
		{TypeEchoReply, "EchoReply"},
		{Type(5), "Unknown(5)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}
