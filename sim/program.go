// Package sim runs a task table under the kernel on a host machine:
// scripted programs stand in for userspace, one program action per
// scheduled tick, so every run is deterministic and traceable.
package sim

import (
	"fmt"

	"kestrel/abi"
)

// OpCode selects the action a program takes with its tick.
type OpCode uint8

const (
	// OpCompute burns the tick without entering the kernel.
	OpCompute OpCode = iota
	OpSend
	OpRecv
	OpCall
	OpReply
	OpLog
)

func (c OpCode) String() string {
	switch c {
	case OpCompute:
		return "compute"
	case OpSend:
		return "send"
	case OpRecv:
		return "recv"
	case OpCall:
		return "call"
	case OpReply:
		return "reply"
	case OpLog:
		return "log"
	default:
		return fmt.Sprintf("op(%d)", uint8(c))
	}
}

// Op is one program action.
type Op struct {
	Code    OpCode
	Slot    abi.Slot
	Kind    uint16
	Payload []byte
}

// Event tells a program why it holds the CPU. Resumed is set when a
// previously issued operation completed, Msg/Resp carry a delivered
// message when one arrived, and Err reports a rejected operation.
type Event struct {
	Resumed bool
	HasMsg  bool
	Resp    abi.RecvResp
	Msg     abi.Message
	Err     abi.Error
}

// Program scripts one task. Step is called each time the task is
// scheduled and must return the action for that tick.
type Program interface {
	Step(ev Event) Op
}

// Pinger calls an endpoint in a loop: call, log the reply, pause, call
// again. Sequence numbers in the payload make traces easy to follow.
type Pinger struct {
	Slot abi.Slot
	seq  int
	idle int
}

func (p *Pinger) Step(ev Event) Op {
	if ev.Err != abi.OK {
		return Op{Code: OpLog, Payload: []byte("ping error: " + ev.Err.String())}
	}
	if ev.Resumed && ev.HasMsg {
		return Op{Code: OpLog, Payload: append([]byte("pong "), ev.Msg.Payload()...)}
	}
	if p.idle > 0 {
		p.idle--
		return Op{Code: OpCompute}
	}
	p.seq++
	p.idle = 2
	return Op{Code: OpCall, Slot: p.Slot, Kind: 1, Payload: []byte(fmt.Sprintf("seq=%d", p.seq))}
}

// Echo answers every request with its own payload. Paired with a passive
// task it never issues an explicit recv: the reply re-arms it.
type Echo struct {
	Slot abi.Slot // recv capability, used only when a recv must be issued
}

func (e *Echo) Step(ev Event) Op {
	if ev.HasMsg && ev.Resp.ReplySlot != abi.NoSlot {
		return Op{Code: OpReply, Slot: ev.Resp.ReplySlot, Kind: ev.Msg.Kind, Payload: ev.Msg.Payload()}
	}
	return Op{Code: OpRecv, Slot: e.Slot}
}

// Spinner occupies its whole budget with compute, logging every logEvery
// scheduled ticks. It exists to exercise exhaustion and preemption.
type Spinner struct {
	LogEvery int
	n        int
}

func (s *Spinner) Step(ev Event) Op {
	s.n++
	if s.LogEvery > 0 && s.n%s.LogEvery == 0 {
		return Op{Code: OpLog, Payload: []byte(fmt.Sprintf("spin n=%d", s.n))}
	}
	return Op{Code: OpCompute}
}
