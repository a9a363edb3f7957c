package sim

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"kestrel/kernel"
)

// Tracer renders one line per tick: the tick counter, the scheduled task
// and its action, and a compact per-task state column.
type Tracer struct {
	w io.Writer

	tick  lipgloss.Style
	run   lipgloss.Style
	idle  lipgloss.Style
	op    lipgloss.Style
	state lipgloss.Style
}

func NewTracer(w io.Writer) *Tracer {
	return &Tracer{
		w:     w,
		tick:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		run:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		idle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
		op:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		state: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	}
}

// Line writes the trace line for one completed tick.
func (tr *Tracer) Line(k *kernel.Kernel, t kernel.ThreadRef, running bool, op Op) {
	tick := tr.tick.Render(fmt.Sprintf("%6d", k.Now()))
	who := tr.idle.Render("idle")
	action := ""
	if running {
		who = tr.run.Render(k.TaskName(t))
		action = tr.op.Render(op.Code.String())
	}
	fmt.Fprintf(tr.w, "%s  %-24s %-10s %s\n",
		tick, who, action, tr.state.Render(stateColumn(k)))
}

// stateColumn encodes every task's state as one rune: * running,
// R ready, s blocked sending, r blocked receiving, X exhausted.
func stateColumn(k *kernel.Kernel) string {
	var b strings.Builder
	for i := 0; i < k.TaskCount(); i++ {
		t := kernel.ThreadRef(i)
		switch {
		case k.Current() == t:
			b.WriteByte('*')
		case k.ThreadState(t) == kernel.StateReady:
			b.WriteByte('R')
		case k.ThreadState(t) == kernel.StateBlockedSend:
			b.WriteByte('s')
		case k.ThreadState(t) == kernel.StateBlockedRecv:
			b.WriteByte('r')
		case k.ThreadState(t) == kernel.StateExhausted:
			b.WriteByte('X')
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}
