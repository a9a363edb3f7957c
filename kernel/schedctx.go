package kernel

// ctxRef indexes the scheduling-context arena.
type ctxRef int16

const noCtx ctxRef = -1

// schedContext is the temporal budget of one thread.
//
// Ownership is transient: during a call the caller's context is re-pointed
// to the callee (tcb.active) without copying state. holder names the thread
// the context is attached to; exactly one thread may be charged against a
// context at any instant, and Tick verifies that before every charge.
type schedContext struct {
	budget    uint32 // ticks remaining in the current quantum
	maxBudget uint32
	cooldown  uint32 // ticks to wait after exhaustion before running again
	holder    ThreadRef
}

// passive reports whether the context can never self-schedule. A passive
// server runs only while holding a loaned context from a caller.
func (c *schedContext) passive() bool { return c.maxBudget == 0 }

// period bounds the context's CPU share: one full budget per period ticks.
func (c *schedContext) period() uint32 { return c.maxBudget + c.cooldown }
