package kernel

import "kestrel/abi"

// IPCStatus reports whether an IPC operation left the calling thread
// running. IPCBlocked means the thread suspended (or lost the CPU to the
// schedule that followed) and its result, if any, arrives via
// TakeDelivered when it next runs.
type IPCStatus uint8

const (
	IPCDone IPCStatus = iota
	IPCBlocked
)

func (s IPCStatus) String() string {
	if s == IPCBlocked {
		return "blocked"
	}
	return "done"
}

// Send delivers msg through the endpoint capability at slot. If a receiver
// is waiting it is woken into Ready at its own priority; otherwise the
// calling thread blocks FIFO on the endpoint's sender queue.
func (k *Kernel) Send(slot abi.Slot, msg *abi.Message) (IPCStatus, abi.Error) {
	cur := k.current
	if cur == NoThread {
		return IPCDone, abi.ErrBadArgs
	}
	if err := checkMsg(msg); err != abi.OK {
		return IPCDone, err
	}
	ep, err := k.tcbs[cur].caps.endpoint(slot, abi.RightSend)
	if err != abi.OK {
		return IPCDone, err
	}

	e := &k.eps[ep]
	if r := k.qpop(&e.recvq); r != NoThread {
		k.deliver(r, cur, msg, abi.NoSlot)
		rt := &k.tcbs[r]
		rt.waitEP = -1
		rt.state = StateReady
		k.qpush(&k.runq[rt.priority], r)
		return IPCDone, abi.OK
	}

	t := &k.tcbs[cur]
	t.msg = *msg
	t.msg.Src = abi.TaskID(cur)
	t.calling = false
	t.state = StateBlockedSend
	t.waitEP = ep
	k.qpush(&e.sendq, cur)
	k.schedule()
	return IPCBlocked, abi.OK
}

// Recv completes immediately against the longest-waiting sender, or blocks
// the calling thread FIFO on the endpoint's receiver queue. When the
// matched sender was mid-call, its scheduling context is loaned to the
// receiver as part of the rendezvous and a single-use reply capability is
// minted into the receiver's table.
//
// A receiver still holding a loaned context from an unanswered call must
// reply before receiving again; Recv fails with ErrReplyPending. A thread
// can therefore hold at most one loan, and every blocked receiver runs on
// its own context.
func (k *Kernel) Recv(slot abi.Slot, out *abi.Message) (abi.RecvResp, IPCStatus, abi.Error) {
	cur := k.current
	if cur == NoThread || out == nil {
		return abi.RecvResp{}, IPCDone, abi.ErrBadArgs
	}
	ep, err := k.tcbs[cur].caps.endpoint(slot, abi.RightRecv)
	if err != abi.OK {
		return abi.RecvResp{}, IPCDone, err
	}
	if t := &k.tcbs[cur]; t.active != t.ctx {
		// A second loan would overwrite the attachment and orphan the
		// first caller's context.
		return abi.RecvResp{}, IPCDone, abi.ErrReplyPending
	}

	e := &k.eps[ep]
	if s := k.qpop(&e.sendq); s != NoThread {
		resp, rerr := k.rendezvous(cur, s)
		if rerr != abi.OK {
			return abi.RecvResp{}, IPCDone, rerr
		}
		*out = k.tcbs[s].msg
		k.tcbs[cur].serveEP = ep
		return resp, IPCDone, abi.OK
	}

	t := &k.tcbs[cur]
	t.state = StateBlockedRecv
	t.calling = false
	t.waitEP = ep
	t.serveEP = ep
	k.qpush(&e.recvq, cur)
	k.schedule()
	return abi.RecvResp{}, IPCBlocked, abi.OK
}

// Call sends msg and blocks for the reply as one operation. On rendezvous
// the caller's scheduling context is loaned to the receiver, which is
// switched to Running directly, bypassing the priority search. The loan
// (and the CPU) come back via Reply.
func (k *Kernel) Call(slot abi.Slot, msg *abi.Message) (IPCStatus, abi.Error) {
	cur := k.current
	if cur == NoThread {
		return IPCDone, abi.ErrBadArgs
	}
	if err := checkMsg(msg); err != abi.OK {
		return IPCDone, err
	}
	ep, err := k.tcbs[cur].caps.endpoint(slot, abi.RightCall)
	if err != abi.OK {
		return IPCDone, err
	}

	e := &k.eps[ep]
	if r := k.qpop(&e.recvq); r != NoThread {
		rt := &k.tcbs[r]
		replySlot, ok := rt.caps.insert(capability{
			kind:   abi.CapReply,
			object: uint16(cur),
			rights: abi.RightReply,
		})
		if !ok {
			k.qpushFront(&e.recvq, r)
			return IPCDone, abi.ErrCapSpace
		}
		k.deliver(r, cur, msg, replySlot)
		rt.waitEP = -1
		rt.serveEP = ep

		t := &k.tcbs[cur]
		t.calling = true
		t.state = StateBlockedRecv
		t.waitEP = ep
		k.loan(cur, r)
		k.switchDirect(r)
		return IPCBlocked, abi.OK
	}

	t := &k.tcbs[cur]
	t.msg = *msg
	t.msg.Src = abi.TaskID(cur)
	t.calling = true
	t.state = StateBlockedSend
	t.waitEP = ep
	k.qpush(&e.sendq, cur)
	k.schedule()
	return IPCBlocked, abi.OK
}

// Reply answers the caller named by the reply capability at slot: the
// loaned context returns to the caller atomically with the wakeup, the
// reply capability is revoked, and a normal schedule picks the next
// thread. A passive server re-arms as a blocked receiver on the endpoint
// it serves, since it cannot sit on a run queue.
func (k *Kernel) Reply(slot abi.Slot, msg *abi.Message) (IPCStatus, abi.Error) {
	cur := k.current
	if cur == NoThread {
		return IPCDone, abi.ErrBadArgs
	}
	if err := checkMsg(msg); err != abi.OK {
		return IPCDone, err
	}
	t := &k.tcbs[cur]
	c, lerr := t.caps.lookup(slot)
	if lerr != abi.OK {
		return IPCDone, lerr
	}
	if c.kind != abi.CapReply {
		return IPCDone, abi.ErrInvalidCap
	}
	if !c.rights.Has(abi.RightReply) {
		return IPCDone, abi.ErrCapRights
	}

	caller := ThreadRef(c.object)
	ct := &k.tcbs[caller]
	if ct.state != StateBlockedRecv || !ct.calling {
		k.fatal(FaultBadState, caller, "reply target is not awaiting a reply")
	}
	if t.active != ct.ctx {
		k.fatal(FaultCtxConflict, cur, "replying thread does not hold the caller's context")
	}

	k.ctxs[ct.ctx].holder = caller
	t.active = t.ctx

	k.deliver(caller, cur, msg, abi.NoSlot)
	ct.calling = false
	ct.waitEP = -1
	ct.state = StateReady
	k.qpush(&k.runq[ct.priority], caller)

	t.caps.clear(slot)

	if k.ctxs[t.ctx].passive() {
		k.rearmPassive(cur)
	}
	k.schedule()
	if k.current == cur {
		return IPCDone, abi.OK
	}
	return IPCBlocked, abi.OK
}

// rearmPassive returns a passive server to its serve endpoint after a
// reply. A queued caller is taken on the spot, so the endpoint never
// holds waiters on both sides; without one the server blocks as a
// receiver again. Boot validation keeps plain senders off passively
// served endpoints, so a queued sender here is always mid-call.
func (k *Kernel) rearmPassive(cur ThreadRef) {
	t := &k.tcbs[cur]
	ep := t.serveEP
	if s := k.qpop(&k.eps[ep].sendq); s != NoThread {
		if !k.tcbs[s].calling {
			k.fatal(FaultBadState, s, "plain send queued on a passively served endpoint")
		}
		resp, err := k.rendezvous(cur, s)
		if err == abi.OK {
			k.deliver(cur, s, &k.tcbs[s].msg, resp.ReplySlot)
			t.state = StateReady
			t.waitEP = -1
			k.qpush(&k.runq[t.priority], cur)
			return
		}
		// Out of reply slots. The caller is back at the queue head and
		// the server waits as a receiver until a slot frees.
	}
	t.state = StateBlockedRecv
	t.waitEP = ep
	k.qpush(&k.eps[ep].recvq, cur)
}

// TakeDelivered collects the message delivered to t while it was blocked.
// The run loop calls it when t resumes; it is the Go rendition of the
// kernel writing the result into the caller's saved registers.
func (k *Kernel) TakeDelivered(t ThreadRef, out *abi.Message) (abi.RecvResp, bool) {
	tt := &k.tcbs[t]
	if !tt.delivered {
		return abi.RecvResp{}, false
	}
	tt.delivered = false
	if out != nil {
		*out = tt.msg
	}
	resp := abi.RecvResp{
		Src:       tt.msg.Src,
		Kind:      tt.msg.Kind,
		Len:       tt.msg.Len,
		ReplySlot: tt.replySlot,
	}
	tt.replySlot = abi.NoSlot
	return resp, true
}

// rendezvous matches an active receiver with a popped blocked sender.
// On ErrCapSpace the sender is restored to the queue head and no state
// has changed.
func (k *Kernel) rendezvous(recv, send ThreadRef) (abi.RecvResp, abi.Error) {
	st := &k.tcbs[send]
	resp := abi.RecvResp{
		Src:       st.msg.Src,
		Kind:      st.msg.Kind,
		Len:       st.msg.Len,
		ReplySlot: abi.NoSlot,
	}
	if st.calling {
		rt := &k.tcbs[recv]
		replySlot, ok := rt.caps.insert(capability{
			kind:   abi.CapReply,
			object: uint16(send),
			rights: abi.RightReply,
		})
		if !ok {
			k.qpushFront(&k.eps[st.waitEP].sendq, send)
			return abi.RecvResp{}, abi.ErrCapSpace
		}
		resp.ReplySlot = replySlot
		// The caller's context follows the message to the receiver; the
		// caller now waits for the reply off any endpoint queue, reachable
		// only through the reply capability.
		k.loan(send, recv)
		st.state = StateBlockedRecv
	} else {
		st.state = StateReady
		st.waitEP = -1
		k.qpush(&k.runq[st.priority], send)
	}
	return resp, abi.OK
}

// loan re-points ownership of from's context to to. No budget state is
// copied; only the attachment moves.
func (k *Kernel) loan(from, to ThreadRef) {
	ft := &k.tcbs[from]
	c := &k.ctxs[ft.ctx]
	if c.holder != from {
		k.fatal(FaultCtxConflict, from, "caller's context is already loaned out")
	}
	c.holder = to
	k.tcbs[to].active = ft.ctx
}

func (k *Kernel) deliver(to, from ThreadRef, msg *abi.Message, replySlot abi.Slot) {
	tt := &k.tcbs[to]
	tt.msg = *msg
	tt.msg.Src = abi.TaskID(from)
	tt.delivered = true
	tt.replySlot = replySlot
}

func checkMsg(msg *abi.Message) abi.Error {
	if msg == nil {
		return abi.ErrBadArgs
	}
	if int(msg.Len) > abi.MaxMessageBytes {
		return abi.ErrMsgTooBig
	}
	return abi.OK
}
