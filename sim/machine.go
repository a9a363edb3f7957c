package sim

import (
	"fmt"

	"github.com/rs/zerolog"

	"kestrel/abi"
	"kestrel/hal"
	"kestrel/kernel"
)

// Machine binds a booted kernel to one program per task and advances
// them in lockstep: each tick the kernel picks a thread, then that
// thread's program performs exactly one action. Blocked operations
// complete through the kernel's delivery path and surface to the program
// as the Event of its next scheduled tick.
type Machine struct {
	k     *kernel.Kernel
	progs []Program

	blocked []bool
	pend    []*Event

	log    zerolog.Logger
	tracer *Tracer
}

// NewMachine wires progs onto k; progs must name one program per task in
// boot order.
func NewMachine(k *kernel.Kernel, progs []Program, log zerolog.Logger) (*Machine, error) {
	if len(progs) != k.TaskCount() {
		return nil, fmt.Errorf("sim: %d programs for %d tasks", len(progs), k.TaskCount())
	}
	m := &Machine{
		k:       k,
		progs:   progs,
		blocked: make([]bool, len(progs)),
		pend:    make([]*Event, len(progs)),
		log:     log,
	}
	k.SetFaultHandler(func(f kernel.Fault) {
		m.log.Error().
			Uint64("tick", k.Now()).
			Str("fault", f.Code.String()).
			Str("task", k.TaskName(f.Thread)).
			Str("detail", f.Detail).
			Msg("kernel fault")
	})
	return m, nil
}

// Kernel exposes the underlying kernel for inspection.
func (m *Machine) Kernel() *kernel.Kernel { return m.k }

// SetTracer attaches a per-tick trace writer. A nil tracer disables
// tracing.
func (m *Machine) SetTracer(tr *Tracer) { m.tracer = tr }

// Tick advances the machine by one scheduler tick. Whatever thread holds
// the CPU after the tick steps its program, whether or not a switch
// happened; an idle tick steps nothing.
func (m *Machine) Tick() {
	t, _ := m.k.Tick()
	running := t != kernel.NoThread
	var op Op
	if running {
		op = m.step(t)
	}
	if m.tracer != nil {
		m.tracer.Line(m.k, t, running, op)
	}
}

// Run advances n ticks back to back.
func (m *Machine) Run(n int) {
	for i := 0; i < n; i++ {
		m.Tick()
	}
}

// RunTimer advances one tick per timer tick until n ticks have elapsed
// or the timer stops delivering.
func (m *Machine) RunTimer(timer hal.Timer, n int) {
	for i := 0; i < n; i++ {
		if _, ok := <-timer.Ticks(); !ok {
			return
		}
		m.Tick()
	}
}

func (m *Machine) step(t kernel.ThreadRef) Op {
	ev := m.takeEvent(t)
	op := m.progs[t].Step(ev)
	m.exec(t, op)
	return op
}

func (m *Machine) takeEvent(t kernel.ThreadRef) Event {
	if p := m.pend[t]; p != nil {
		m.pend[t] = nil
		return *p
	}
	ev := Event{Resumed: m.blocked[t]}
	m.blocked[t] = false
	var msg abi.Message
	if resp, ok := m.k.TakeDelivered(t, &msg); ok {
		ev.HasMsg = true
		ev.Resp = resp
		ev.Msg = msg
	}
	return ev
}

func (m *Machine) exec(t kernel.ThreadRef, op Op) {
	fail := func(err abi.Error) {
		m.pend[t] = &Event{Err: err}
		m.log.Warn().
			Uint64("tick", m.k.Now()).
			Str("task", m.k.TaskName(t)).
			Str("op", op.Code.String()).
			Str("err", err.String()).
			Msg("operation rejected")
	}

	switch op.Code {
	case OpCompute:

	case OpLog:
		if err := m.k.LogBytes(op.Payload); err != abi.OK {
			fail(err)
		}

	case OpSend:
		msg, ok := abi.NewMessage(op.Kind, op.Payload)
		if !ok {
			fail(abi.ErrMsgTooBig)
			return
		}
		st, err := m.k.Send(op.Slot, &msg)
		if err != abi.OK {
			fail(err)
			return
		}
		if st == kernel.IPCBlocked {
			m.blocked[t] = true
		}

	case OpCall:
		msg, ok := abi.NewMessage(op.Kind, op.Payload)
		if !ok {
			fail(abi.ErrMsgTooBig)
			return
		}
		st, err := m.k.Call(op.Slot, &msg)
		if err != abi.OK {
			fail(err)
			return
		}
		if st == kernel.IPCBlocked {
			m.blocked[t] = true
		}

	case OpRecv:
		var out abi.Message
		resp, st, err := m.k.Recv(op.Slot, &out)
		switch {
		case err != abi.OK:
			fail(err)
		case st == kernel.IPCBlocked:
			m.blocked[t] = true
		default:
			m.pend[t] = &Event{Resumed: true, HasMsg: true, Resp: resp, Msg: out}
		}

	case OpReply:
		msg, ok := abi.NewMessage(op.Kind, op.Payload)
		if !ok {
			fail(abi.ErrMsgTooBig)
			return
		}
		if _, err := m.k.Reply(op.Slot, &msg); err != abi.OK {
			fail(err)
		}

	default:
		fail(abi.ErrBadSyscall)
	}
}
