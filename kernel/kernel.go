// Package kernel implements the scheduler and capability-mediated IPC core:
// budget/cooldown scheduling over fixed priority run queues, synchronous
// endpoint rendezvous, and the call/reply protocol that loans the caller's
// scheduling context to the receiver.
//
// The kernel is a single-threaded state machine. Callers must serialize
// Tick and all syscalls; on hardware that discipline is interrupt masking,
// on the host it is the simulator's run loop. Arenas are allocated once in
// NewKernel and nothing allocates afterwards.
package kernel

import (
	"fmt"

	"kestrel/abi"
)

// MaxTasks bounds the static task table.
const MaxTasks = 32

// Kernel is the boot-time-fixed kernel state.
type Kernel struct {
	tcbs []tcb
	ctxs []schedContext
	eps  []endpoint

	runq      [PriorityCount]threadQueue
	exhausted threadQueue

	current ThreadRef
	now     uint64

	sink    LogSink
	onFault func(Fault)
}

// NewKernel validates the static task table and populates the TCB,
// scheduling-context and endpoint arenas from it.
func NewKernel(cfg Config) (*Kernel, error) {
	if len(cfg.Tasks) == 0 {
		return nil, fmt.Errorf("kernel: empty task table")
	}
	if len(cfg.Tasks) > MaxTasks {
		return nil, fmt.Errorf("kernel: %d tasks exceeds limit %d", len(cfg.Tasks), MaxTasks)
	}
	if cfg.Endpoints < 0 {
		return nil, fmt.Errorf("kernel: negative endpoint count")
	}

	k := &Kernel{
		tcbs:      make([]tcb, len(cfg.Tasks)),
		ctxs:      make([]schedContext, len(cfg.Tasks)),
		eps:       make([]endpoint, cfg.Endpoints),
		exhausted: newThreadQueue(),
		current:   NoThread,
	}
	for i := range k.runq {
		k.runq[i] = newThreadQueue()
	}
	for i := range k.eps {
		k.eps[i] = newEndpoint()
	}

	for i, desc := range cfg.Tasks {
		if err := k.bootTask(ThreadRef(i), desc); err != nil {
			return nil, fmt.Errorf("kernel: task %q: %w", desc.Name, err)
		}
	}
	if err := checkPassiveEndpoints(cfg); err != nil {
		return nil, err
	}
	return k, nil
}

// checkPassiveEndpoints rejects send rights on endpoints served by a
// passive task. A passive server can only process a request while
// holding the caller's loaned context, so plain sends to it would either
// queue forever or wake a thread that cannot be charged; requiring call
// makes the mistake a boot error instead of a runtime stall.
func checkPassiveEndpoints(cfg Config) error {
	passive := make(map[uint16]string)
	for _, desc := range cfg.Tasks {
		if desc.Budget != 0 {
			continue
		}
		for _, c := range desc.Caps {
			if c.Slot == desc.RecvSlot && c.Kind == abi.CapEndpoint {
				passive[c.Object] = desc.Name
			}
		}
	}
	for _, desc := range cfg.Tasks {
		for _, c := range desc.Caps {
			if c.Kind != abi.CapEndpoint || !c.Rights.Has(abi.RightSend) {
				continue
			}
			if server, ok := passive[c.Object]; ok {
				return fmt.Errorf("kernel: task %q: cap slot %d: endpoint %d is served by passive task %q and accepts call only",
					desc.Name, c.Slot, c.Object, server)
			}
		}
	}
	return nil
}

func (k *Kernel) bootTask(ref ThreadRef, desc TaskDesc) error {
	if desc.Priority >= PriorityCount {
		return fmt.Errorf("priority %d out of range", desc.Priority)
	}
	if desc.Budget == 0 && !desc.StartRecv {
		return fmt.Errorf("passive server must boot blocked on a recv slot")
	}

	t := &k.tcbs[ref]
	t.id = ref
	t.name = desc.Name
	t.priority = desc.Priority
	t.ctx = ctxRef(ref)
	t.active = t.ctx
	t.next = NoThread
	t.replySlot = abi.NoSlot
	t.waitEP = -1
	t.serveEP = -1

	k.ctxs[ref] = schedContext{
		budget:    desc.Budget,
		maxBudget: desc.Budget,
		cooldown:  desc.Cooldown,
		holder:    ref,
	}

	for _, c := range desc.Caps {
		if int(c.Slot) >= CapSlots {
			return fmt.Errorf("cap slot %d out of range", c.Slot)
		}
		if c.Kind == abi.CapNone || c.Kind == abi.CapReply {
			return fmt.Errorf("cap slot %d: kind %s cannot be granted at boot", c.Slot, c.Kind)
		}
		if c.Rights == 0 {
			return fmt.Errorf("cap slot %d: no rights", c.Slot)
		}
		switch c.Kind {
		case abi.CapEndpoint:
			if int(c.Object) >= len(k.eps) {
				return fmt.Errorf("cap slot %d: endpoint %d out of range", c.Slot, c.Object)
			}
		case abi.CapThread:
			if int(c.Object) >= len(k.tcbs) {
				return fmt.Errorf("cap slot %d: thread %d out of range", c.Slot, c.Object)
			}
		}
		if t.caps.slots[c.Slot].valid() {
			return fmt.Errorf("cap slot %d granted twice", c.Slot)
		}
		t.caps.slots[c.Slot] = capability{kind: c.Kind, object: c.Object, rights: c.Rights}
	}

	if desc.StartRecv {
		ep, err := t.caps.endpoint(desc.RecvSlot, abi.RightRecv)
		if err != abi.OK {
			return fmt.Errorf("recv slot %d: %s", desc.RecvSlot, err)
		}
		t.state = StateBlockedRecv
		t.waitEP = ep
		t.serveEP = ep
		k.qpush(&k.eps[ep].recvq, ref)
		return nil
	}

	t.state = StateReady
	k.qpush(&k.runq[t.priority], ref)
	return nil
}

// Now returns the tick counter.
func (k *Kernel) Now() uint64 { return k.now }

// Current returns the running thread, or NoThread while the core idles.
func (k *Kernel) Current() ThreadRef { return k.current }

// TaskCount returns the size of the static task table.
func (k *Kernel) TaskCount() int { return len(k.tcbs) }

// TaskName returns the boot-time name of a thread.
func (k *Kernel) TaskName(t ThreadRef) string {
	if int(t) >= len(k.tcbs) || t < 0 {
		return ""
	}
	return k.tcbs[t].name
}

// ThreadState returns the scheduling state of a thread.
func (k *Kernel) ThreadState(t ThreadRef) ThreadState {
	return k.tcbs[t].state
}

// OwnedBudget returns the remaining budget of the thread's own scheduling
// context, which may currently be loaned out.
func (k *Kernel) OwnedBudget(t ThreadRef) uint32 {
	return k.ctxs[k.tcbs[t].ctx].budget
}

// ChargedTo returns the thread currently attached to t's owned context:
// t itself normally, the callee while the context is loaned.
func (k *Kernel) ChargedTo(t ThreadRef) ThreadRef {
	return k.ctxs[k.tcbs[t].ctx].holder
}

// Caps copies the current thread's occupied capability slots into out,
// returning the count written. This is the introspection syscall backend.
func (k *Kernel) Caps(out []abi.CapInfo) int {
	if k.current == NoThread {
		return 0
	}
	return k.tcbs[k.current].caps.info(out)
}
