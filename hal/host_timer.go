package hal

import "time"

// HostTimer drives scheduler ticks from the wall clock. Elapsed time is
// accumulated and converted to whole ticks, so a coarse host timer still
// produces the right long-run rate; ticks the consumer cannot absorb are
// dropped, not queued.
type HostTimer struct {
	ch   chan uint64
	done chan struct{}

	seq  uint64
	last time.Time
	acc  time.Duration
	tick time.Duration
}

// NewHostTimer starts a timer producing hz ticks per second.
func NewHostTimer(hz int) *HostTimer {
	if hz <= 0 {
		hz = 1000
	}
	t := &HostTimer{
		ch:   make(chan uint64, 1024),
		done: make(chan struct{}),
		tick: time.Second / time.Duration(hz),
	}
	go t.run()
	return t
}

func (t *HostTimer) Ticks() <-chan uint64 { return t.ch }

// Stop ends tick production. It does not close Ticks; a final in-flight
// tick may still be readable.
func (t *HostTimer) Stop() {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
}

func (t *HostTimer) run() {
	tk := time.NewTicker(t.tick)
	defer tk.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-tk.C:
			t.step()
		}
	}
}

func (t *HostTimer) step() {
	now := time.Now()
	if t.last.IsZero() {
		t.last = now
		t.emit(1)
		return
	}
	t.acc += now.Sub(t.last)
	t.last = now

	n := uint64(t.acc / t.tick)
	if n == 0 {
		return
	}
	t.acc = t.acc % t.tick
	t.emit(n)
}

func (t *HostTimer) emit(n uint64) {
	for i := uint64(0); i < n; i++ {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
		}
	}
}
