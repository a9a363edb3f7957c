package abi

// Error is the task-facing syscall error code.
//
// Every value here is local and synchronous: the kernel returns it to the
// calling task without touching scheduler or endpoint state. Internal
// invariant violations are not represented; those are fatal.
type Error uint8

const (
	OK Error = iota
	ErrInvalidCap // slot empty, out of range, or wrong capability kind
	ErrCapRights  // capability lacks the right for the requested operation
	ErrMsgTooBig  // payload exceeds MaxMessageBytes (or MaxLogBytes for log)
	ErrBadArgs    // malformed syscall arguments (nil message, short buffer)
	ErrCapSpace     // receiver has no free slot for the reply capability
	ErrReplyPending // receiver holds a loaned context; it must reply first
	ErrBadSyscall   // unknown syscall number
)

func (e Error) String() string {
	switch e {
	case OK:
		return "ok"
	case ErrInvalidCap:
		return "invalid capability"
	case ErrCapRights:
		return "insufficient rights"
	case ErrMsgTooBig:
		return "message too big"
	case ErrBadArgs:
		return "bad arguments"
	case ErrCapSpace:
		return "capability table full"
	case ErrReplyPending:
		return "reply pending"
	case ErrBadSyscall:
		return "bad syscall"
	default:
		return "unknown"
	}
}

// CapFault reports whether e is a capability lookup failure.
func (e Error) CapFault() bool {
	return e == ErrInvalidCap || e == ErrCapRights
}
