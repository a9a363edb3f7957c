// Package abi defines the contract between the kernel and its tasks:
// syscall numbers and argument shapes, error codes, capability kinds and
// rights, and the fixed-capacity message envelope.
//
// Everything here is shared verbatim with userspace, so the package must
// stay free of kernel internals.
package abi

// TaskID indexes the static task table.
type TaskID uint8

// Slot indexes a task's capability table.
type Slot uint8

// NoSlot marks an absent capability slot.
const NoSlot Slot = 0xFF

// SyscallFn selects the kernel operation for a trap.
type SyscallFn uint8

const (
	SysSend SyscallFn = iota + 1
	SysRecv
	SysCall
	SysReply
	SysLog
	SysCaps
)

func (f SyscallFn) String() string {
	switch f {
	case SysSend:
		return "send"
	case SysRecv:
		return "recv"
	case SysCall:
		return "call"
	case SysReply:
		return "reply"
	case SysLog:
		return "log"
	case SysCaps:
		return "caps"
	default:
		return "unknown"
	}
}

// SyscallArgs carries the word-sized arguments and the short transfer
// buffer for one trap.
//
// Buf is the payload for send/call/reply/log and the receive buffer for
// recv. Caps is the output table for the caps syscall.
type SyscallArgs struct {
	Slot Slot
	Kind uint16
	Buf  []byte
	Caps []CapInfo
}

// SyscallReturn is the register-sized result of a trap.
type SyscallReturn struct {
	Err     Error
	Blocked bool     // the calling thread suspended; the result arrives on resume
	Resp    RecvResp // valid for a recv that completed immediately
	Len     int      // bytes copied into Buf, or caps entries written
}

// RecvResp describes a delivered message.
type RecvResp struct {
	Src  TaskID
	Kind uint16
	Len  uint16
	// ReplySlot names the single-use reply capability minted into the
	// receiver's table when the message arrived via call. NoSlot otherwise.
	ReplySlot Slot
}
