package kernel

import "kestrel/abi"

// Syscall is the trap entry: it maps the syscall-number-plus-arguments
// form onto the typed kernel operations. Argument shape (slot, payload
// size) is validated before any state changes; receive buffer capacity is
// the one exception, see SysRecv below. Must run with the tick handler
// excluded, exactly like Tick itself.
func (k *Kernel) Syscall(fn abi.SyscallFn, args *abi.SyscallArgs) abi.SyscallReturn {
	if args == nil {
		return abi.SyscallReturn{Err: abi.ErrBadArgs}
	}
	switch fn {
	case abi.SysSend:
		msg, ok := abi.NewMessage(args.Kind, args.Buf)
		if !ok {
			return abi.SyscallReturn{Err: abi.ErrMsgTooBig}
		}
		st, err := k.Send(args.Slot, &msg)
		return abi.SyscallReturn{Err: err, Blocked: st == IPCBlocked}

	case abi.SysRecv:
		var m abi.Message
		resp, st, err := k.Recv(args.Slot, &m)
		ret := abi.SyscallReturn{Err: err, Blocked: st == IPCBlocked}
		if err != abi.OK || st == IPCBlocked {
			return ret
		}
		ret.Resp = resp
		// A short buffer truncates rather than refuses: the required
		// capacity is unknowable until a sender is matched, so the
		// rendezvous stands. Len reports the bytes copied, Resp.Len the
		// full message length, and Err flags the loss.
		ret.Len = copy(args.Buf, m.Payload())
		if ret.Len < int(m.Len) {
			ret.Err = abi.ErrBadArgs
		}
		return ret

	case abi.SysCall:
		msg, ok := abi.NewMessage(args.Kind, args.Buf)
		if !ok {
			return abi.SyscallReturn{Err: abi.ErrMsgTooBig}
		}
		st, err := k.Call(args.Slot, &msg)
		return abi.SyscallReturn{Err: err, Blocked: st == IPCBlocked}

	case abi.SysReply:
		msg, ok := abi.NewMessage(args.Kind, args.Buf)
		if !ok {
			return abi.SyscallReturn{Err: abi.ErrMsgTooBig}
		}
		st, err := k.Reply(args.Slot, &msg)
		return abi.SyscallReturn{Err: err, Blocked: st == IPCBlocked}

	case abi.SysLog:
		return abi.SyscallReturn{Err: k.LogBytes(args.Buf)}

	case abi.SysCaps:
		return abi.SyscallReturn{Len: k.Caps(args.Caps)}

	default:
		return abi.SyscallReturn{Err: abi.ErrBadSyscall}
	}
}
