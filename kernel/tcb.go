package kernel

import "kestrel/abi"

// ThreadRef indexes the TCB arena.
type ThreadRef int16

// NoThread marks an absent thread (the idle condition for Kernel.current).
const NoThread ThreadRef = -1

// ThreadState is the scheduling state of one thread.
type ThreadState uint8

const (
	StateReady ThreadState = iota
	StateRunning
	StateBlockedSend
	StateBlockedRecv
	StateExhausted
)

func (s ThreadState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateBlockedSend:
		return "blocked-send"
	case StateBlockedRecv:
		return "blocked-recv"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// tcb is one thread's control block. All TCBs live in the arena allocated
// at boot; they are never created or destroyed afterwards.
type tcb struct {
	id       ThreadRef
	name     string
	priority uint8
	state    ThreadState

	ctx    ctxRef // owned scheduling context
	active ctxRef // context currently charged while this thread runs

	caps capTable

	// next links this TCB into whichever queue it occupies. A thread sits
	// on at most one of: a run queue, the exhausted set, or an endpoint
	// wait queue.
	next ThreadRef

	// deadline is the cooldown expiry tick while Exhausted.
	deadline uint64

	// msg is the in-flight envelope: the outgoing message while
	// BlockedSend, or the delivered message while waking from BlockedRecv.
	msg       abi.Message
	delivered bool
	replySlot abi.Slot // reply capability slot attached to the delivered msg

	// calling marks a send that is the first half of a call: the thread
	// expects a budget loan at rendezvous and a reply afterwards.
	calling bool

	waitEP  endpointRef // endpoint blocked on, for queue bookkeeping
	serveEP endpointRef // endpoint last received from; reply re-arms here
}

// threadQueue is an intrusive FIFO of TCBs linked through tcb.next.
// Queue membership costs no allocation; the links live in the arena.
type threadQueue struct {
	head, tail ThreadRef
}

func (q *threadQueue) empty() bool { return q.head == NoThread }

func newThreadQueue() threadQueue {
	return threadQueue{head: NoThread, tail: NoThread}
}

func (k *Kernel) qpush(q *threadQueue, t ThreadRef) {
	k.tcbs[t].next = NoThread
	if q.tail == NoThread {
		q.head = t
		q.tail = t
		return
	}
	k.tcbs[q.tail].next = t
	q.tail = t
}

func (k *Kernel) qpushFront(q *threadQueue, t ThreadRef) {
	k.tcbs[t].next = q.head
	q.head = t
	if q.tail == NoThread {
		q.tail = t
	}
}

func (k *Kernel) qpop(q *threadQueue) ThreadRef {
	t := q.head
	if t == NoThread {
		return NoThread
	}
	q.head = k.tcbs[t].next
	if q.head == NoThread {
		q.tail = NoThread
	}
	k.tcbs[t].next = NoThread
	return t
}
