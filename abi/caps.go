package abi

// CapKind tags the object a capability refers to.
type CapKind uint8

const (
	CapNone CapKind = iota
	CapEndpoint
	CapThread
	// CapReply is a single-use capability minted by the kernel when a call
	// message is delivered; it names the blocked caller and is revoked on
	// reply.
	CapReply
)

func (k CapKind) String() string {
	switch k {
	case CapNone:
		return "none"
	case CapEndpoint:
		return "endpoint"
	case CapThread:
		return "thread"
	case CapReply:
		return "reply"
	default:
		return "unknown"
	}
}

// Rights define which operations a capability permits.
type Rights uint8

const (
	RightSend Rights = 1 << iota
	RightRecv
	RightCall
	RightReply
)

// Has reports whether r includes all of want.
func (r Rights) Has(want Rights) bool { return r&want == want }

func (r Rights) String() string {
	if r == 0 {
		return "-"
	}
	var s []byte
	add := func(bit Rights, name string) {
		if r&bit == 0 {
			return
		}
		if len(s) > 0 {
			s = append(s, '|')
		}
		s = append(s, name...)
	}
	add(RightSend, "send")
	add(RightRecv, "recv")
	add(RightCall, "call")
	add(RightReply, "reply")
	return string(s)
}

// CapInfo is the introspection record returned by the caps syscall.
type CapInfo struct {
	Slot   Slot
	Kind   CapKind
	Object uint16
	Rights Rights
}
