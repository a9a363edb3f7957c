package kernel

import "fmt"

// FaultCode classifies fatal kernel conditions. These are internal
// invariant violations, never user-induced errors: if one fires, an
// isolation guarantee is already broken and the kernel must halt.
type FaultCode uint8

const (
	// FaultCtxConflict: a scheduling context was charged, loaned, or
	// returned by a thread that does not hold it.
	FaultCtxConflict FaultCode = iota + 1
	// FaultBadState: a thread was found in a state the protocol forbids
	// (e.g. a reply target that is not blocked awaiting one).
	FaultBadState
)

func (c FaultCode) String() string {
	switch c {
	case FaultCtxConflict:
		return "scheduling context conflict"
	case FaultBadState:
		return "invalid thread state"
	default:
		return "unknown"
	}
}

// Fault describes a fatal kernel condition.
type Fault struct {
	Code   FaultCode
	Thread ThreadRef
	Detail string
}

func (f Fault) String() string {
	return fmt.Sprintf("kernel fault: %s (thread %d): %s", f.Code, f.Thread, f.Detail)
}

// SetFaultHandler installs a hook invoked before the kernel halts on an
// internal invariant violation. The handler must not re-enter the kernel.
func (k *Kernel) SetFaultHandler(fn func(Fault)) {
	k.onFault = fn
}

// fatal halts the kernel. There is no recovery path: task-facing errors
// are plain return values, so reaching here means kernel state itself is
// inconsistent.
func (k *Kernel) fatal(code FaultCode, t ThreadRef, detail string) {
	f := Fault{Code: code, Thread: t, Detail: detail}
	if k.onFault != nil {
		k.onFault(f)
	}
	panic(f)
}
