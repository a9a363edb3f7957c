package abi

import "testing"

func TestMessagePayloadBounds(t *testing.T) {
	big := make([]byte, MaxMessageBytes+1)
	if _, ok := NewMessage(1, big); ok {
		t.Fatal("NewMessage accepted an oversized payload")
	}
	m, ok := NewMessage(1, []byte("hello"))
	if !ok {
		t.Fatal("NewMessage rejected a small payload")
	}
	if got := string(m.Payload()); got != "hello" {
		t.Fatalf("Payload() = %q, want %q", got, "hello")
	}

	// A corrupted length must not let Payload slice out of bounds.
	m.Len = MaxMessageBytes + 7
	if got := len(m.Payload()); got != MaxMessageBytes {
		t.Fatalf("Payload() len = %d, want clamped %d", got, MaxMessageBytes)
	}
}

func TestRightsString(t *testing.T) {
	cases := []struct {
		r    Rights
		want string
	}{
		{0, "-"},
		{RightSend, "send"},
		{RightSend | RightRecv, "send|recv"},
		{RightCall | RightReply, "call|reply"},
	}
	for _, tc := range cases {
		if got := tc.r.String(); got != tc.want {
			t.Errorf("Rights(%d).String() = %q, want %q", tc.r, got, tc.want)
		}
	}
}

func TestRightsHas(t *testing.T) {
	r := RightSend | RightCall
	if !r.Has(RightSend) || !r.Has(RightCall) {
		t.Fatal("Has() missed a granted right")
	}
	if r.Has(RightRecv) {
		t.Fatal("Has() reported an ungranted right")
	}
	if r.Has(RightSend | RightRecv) {
		t.Fatal("Has() must require every asked bit")
	}
}
