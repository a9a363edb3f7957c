package abi

// MaxMessageBytes is the payload capacity of one IPC message.
//
// Larger transfers should be split by a userspace protocol; the kernel
// rejects oversized payloads instead of fragmenting them.
const MaxMessageBytes = 128

// MaxLogBytes is the payload capacity of one log frame.
const MaxLogBytes = 255

// Message is the fixed-size IPC envelope.
//
// Src is filled in by the kernel on delivery and cannot be forged by the
// sender.
type Message struct {
	Src  TaskID
	Kind uint16
	Len  uint16
	Data [MaxMessageBytes]byte
}

// NewMessage builds a message from a payload, reporting false if the
// payload exceeds MaxMessageBytes.
func NewMessage(kind uint16, payload []byte) (Message, bool) {
	var m Message
	m.Kind = kind
	if !m.SetPayload(payload) {
		return Message{}, false
	}
	return m, true
}

// Payload returns the occupied portion of Data.
func (m *Message) Payload() []byte {
	n := int(m.Len)
	if n > MaxMessageBytes {
		n = MaxMessageBytes
	}
	return m.Data[:n]
}

// SetPayload copies payload into the envelope, reporting false if it does
// not fit.
func (m *Message) SetPayload(payload []byte) bool {
	if len(payload) > MaxMessageBytes {
		return false
	}
	m.Len = uint16(copy(m.Data[:], payload))
	return true
}
