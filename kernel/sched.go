package kernel

// PriorityCount is the number of run queues; priority 7 is highest.
const PriorityCount = 8

// Tick is the timer-interrupt handler. It revives threads whose cooldown
// expired, charges one tick against the context attached to the running
// thread, and switches on exhaustion or when a higher-priority thread is
// Ready. Preemption is tick-granular: between ticks a thread loses the CPU
// only by blocking voluntarily.
//
// Returns the thread running after the tick (NoThread while idle) and
// whether a context switch occurred.
func (k *Kernel) Tick() (ThreadRef, bool) {
	k.now++
	k.sweepExhausted()

	if k.current == NoThread {
		return k.schedule()
	}

	cur := &k.tcbs[k.current]
	c := &k.ctxs[cur.active]
	if c.holder != k.current {
		k.fatal(FaultCtxConflict, k.current, "charged context held by another thread")
	}
	if c.budget == 0 {
		k.fatal(FaultCtxConflict, k.current, "running thread has no budget to charge")
	}
	c.budget--
	if c.budget == 0 {
		k.exhaust(k.current)
		return k.schedule()
	}

	if k.hasReadyAbove(cur.priority) {
		return k.schedule()
	}
	return k.current, false
}

// schedule picks the head of the highest-priority non-empty run queue.
// The previously running thread, if still Running, is appended to the tail
// of its queue first, which yields round-robin rotation within a priority.
func (k *Kernel) schedule() (ThreadRef, bool) {
	prev := k.current
	if prev != NoThread && k.tcbs[prev].state == StateRunning {
		k.tcbs[prev].state = StateReady
		k.qpush(&k.runq[k.tcbs[prev].priority], prev)
	}

	next := NoThread
	for p := PriorityCount - 1; p >= 0; p-- {
		if !k.runq[p].empty() {
			next = k.qpop(&k.runq[p])
			break
		}
	}
	k.current = next
	if next == NoThread {
		// Idle: no thread is charged until something becomes Ready.
		return NoThread, prev != NoThread
	}
	k.tcbs[next].state = StateRunning
	k.verifyCharge(next)
	return next, next != prev
}

// switchDirect hands the CPU straight to t, bypassing the priority search.
// Only the call fast path uses it, and the previous thread must already be
// blocked: budget moves with the loaned context in the same step.
func (k *Kernel) switchDirect(t ThreadRef) {
	k.tcbs[t].state = StateRunning
	k.current = t
	k.verifyCharge(t)
}

func (k *Kernel) verifyCharge(t ThreadRef) {
	c := &k.ctxs[k.tcbs[t].active]
	if c.holder != t {
		k.fatal(FaultCtxConflict, t, "scheduled thread does not hold its charged context")
	}
	if c.budget == 0 {
		k.fatal(FaultCtxConflict, t, "scheduled thread has an empty budget")
	}
}

// exhaust parks t until its charged context's cooldown expires. A zero
// cooldown refills the budget and requeues immediately, which degenerates
// to plain round-robin.
func (k *Kernel) exhaust(t ThreadRef) {
	tc := &k.tcbs[t]
	c := &k.ctxs[tc.active]
	if c.cooldown == 0 {
		c.budget = c.maxBudget
		tc.state = StateReady
		k.qpush(&k.runq[tc.priority], t)
		return
	}
	tc.state = StateExhausted
	tc.deadline = k.now + uint64(c.cooldown)
	k.qpush(&k.exhausted, t)
}

// sweepExhausted revives every thread whose cooldown deadline has passed:
// budget resets to the charged context's maximum and the thread rejoins
// the tail of its priority's run queue.
func (k *Kernel) sweepExhausted() {
	pending := newThreadQueue()
	for {
		t := k.qpop(&k.exhausted)
		if t == NoThread {
			break
		}
		tc := &k.tcbs[t]
		if k.now < tc.deadline {
			k.qpush(&pending, t)
			continue
		}
		c := &k.ctxs[tc.active]
		c.budget = c.maxBudget
		tc.state = StateReady
		k.qpush(&k.runq[tc.priority], t)
	}
	k.exhausted = pending
}

func (k *Kernel) hasReadyAbove(priority uint8) bool {
	for p := PriorityCount - 1; p > int(priority); p-- {
		if !k.runq[p].empty() {
			return true
		}
	}
	return false
}
