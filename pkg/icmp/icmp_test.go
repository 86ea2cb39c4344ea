package icmp

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantErr  bool
		wantType Type
		wantCode Code
	}{
		{
			name: "valid echo request",
			data: []byte{
				0x08, 0x00, 0x00, 0x00, // Type (8), Code (0), Checksum (not verified by Parse)
				0x12, 0x34, 0x00, 0x01, // ID, Sequence
				0x48, 0x65, 0x6c, 0x6c, 0x6f, // "Hello"
			},
			wantErr:  false,
			wantType: TypeEchoRequest,
			wantCode: 0,
		},
		{
			name: "valid echo reply",
			data: []byte{
				0x00, 0x00, 0x00, 0x00,
				0x12, 0x34, 0x00, 0x01,
				0x48, 0x65, 0x6c, 0x6c, 0x6f,
			},
			wantErr:  false,
			wantType: TypeEchoReply,
			wantCode: 0,
		},
		{
			name:    "too short",
			data:    []byte{0x08, 0x00, 0x00},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Parse(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if msg.Type != tt.wantType {
					t.Errorf("Type = %v, want %v", msg.Type, tt.wantType)
				}
				if msg.Code != tt.wantCode {
					t.Errorf("Code = %v, want %v", msg.Code, tt.wantCode)
				}
			}
		})
	}
}

func TestMessage_IsEchoReply(t *testing.T) {
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
		{TypeDestinationUnreachable, "DestinationUnreachable"},
		{TypeTimeExceeded, "TimeExceeded"},
		{Type(99), "Unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessage_String(t *testing.T) {
	msg := &Message{Type: TypeEchoRequest, ID: 0x1234, Sequence: 1, Data: []byte("hi")}
	if msg.String() == "" {
		t.Error("String() returned empty string")
	}
}

func BenchmarkParse(b *testing.B) {
	data := []byte{
		0x08, 0x00, 0x00, 0x00,
		0x12, 0x34, 0x00, 0x01,
		0x48, 0x65, 0x6c, 0x6c, 0x6f,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Parse(data)
	}
}
