package kernel

import "kestrel/abi"

// LogSink receives kernel log frames: the emitting task plus an opaque
// payload of at most abi.MaxLogBytes. Frames are delivered synchronously
// from the log syscall; sinks must not re-enter the kernel.
type LogSink interface {
	LogFrame(task abi.TaskID, payload []byte)
}

// SetLogSink attaches the log transport. A nil sink drops frames.
func (k *Kernel) SetLogSink(s LogSink) {
	k.sink = s
}

// LogBytes emits one log frame on behalf of the current thread. The task
// id is stamped by the kernel and cannot be forged.
func (k *Kernel) LogBytes(payload []byte) abi.Error {
	if k.current == NoThread {
		return abi.ErrBadArgs
	}
	if len(payload) > abi.MaxLogBytes {
		return abi.ErrMsgTooBig
	}
	if k.sink != nil {
		k.sink.LogFrame(abi.TaskID(k.current), payload)
	}
	return abi.OK
}
