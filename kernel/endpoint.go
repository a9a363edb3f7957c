package kernel

// endpointRef indexes the endpoint arena.
type endpointRef int16

// endpoint is an IPC rendezvous point pairing blocked senders with blocked
// receivers. Waiters queue in strict arrival order; priority governs who
// runs, never who is matched first. Immediately after a rendezvous at most
// one of the two queues is non-empty.
type endpoint struct {
	sendq threadQueue
	recvq threadQueue
}

func newEndpoint() endpoint {
	return endpoint{sendq: newThreadQueue(), recvq: newThreadQueue()}
}
