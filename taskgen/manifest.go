// Package taskgen turns a TOML system manifest into the static boot
// table: a checked kernel.Config plus generated Go source with named
// constants for every task and endpoint.
package taskgen

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"kestrel/abi"
	"kestrel/kernel"
)

// Manifest is the on-disk system description.
type Manifest struct {
	Name      string         `toml:"name"`
	Endpoints []EndpointDecl `toml:"endpoints"`
	Tasks     []TaskDecl     `toml:"tasks"`
}

type EndpointDecl struct {
	Name string `toml:"name"`
}

type TaskDecl struct {
	Name     string    `toml:"name"`
	Priority uint8     `toml:"priority"`
	Budget   uint32    `toml:"budget"`
	Cooldown uint32    `toml:"cooldown"`
	Recv     string    `toml:"recv"` // endpoint the task boots receiving on
	Caps     []CapDecl `toml:"caps"`
}

type CapDecl struct {
	Slot   uint8    `toml:"slot"`
	Kind   string   `toml:"kind"` // "endpoint" or "thread"
	Ref    string   `toml:"ref"`  // named endpoint or task
	Rights []string `toml:"rights"`
}

// Load reads and checks a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and checks a manifest. The kernel's own boot validation
// runs as the final step, so anything Parse accepts will boot.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("taskgen: %w", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("taskgen: unknown manifest key %q", undec[0].String())
	}
	if m.Name == "" {
		return nil, fmt.Errorf("taskgen: manifest has no name")
	}
	if _, err := m.Config(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Config resolves the manifest's names into the kernel's boot table and
// validates it by booting a throwaway kernel.
func (m *Manifest) Config() (kernel.Config, error) {
	eps := make(map[string]uint16, len(m.Endpoints))
	for i, e := range m.Endpoints {
		if e.Name == "" {
			return kernel.Config{}, fmt.Errorf("taskgen: endpoint %d has no name", i)
		}
		if _, dup := eps[e.Name]; dup {
			return kernel.Config{}, fmt.Errorf("taskgen: duplicate endpoint %q", e.Name)
		}
		eps[e.Name] = uint16(i)
	}
	tasks := make(map[string]uint16, len(m.Tasks))
	for i, t := range m.Tasks {
		if t.Name == "" {
			return kernel.Config{}, fmt.Errorf("taskgen: task %d has no name", i)
		}
		if _, dup := tasks[t.Name]; dup {
			return kernel.Config{}, fmt.Errorf("taskgen: duplicate task %q", t.Name)
		}
		tasks[t.Name] = uint16(i)
	}

	cfg := kernel.Config{Endpoints: len(m.Endpoints)}
	for _, t := range m.Tasks {
		desc := kernel.TaskDesc{
			Name:     t.Name,
			Priority: t.Priority,
			Budget:   t.Budget,
			Cooldown: t.Cooldown,
			RecvSlot: abi.NoSlot,
		}
		for _, c := range t.Caps {
			cd := kernel.CapDesc{Slot: abi.Slot(c.Slot)}
			switch c.Kind {
			case "endpoint":
				ref, ok := eps[c.Ref]
				if !ok {
					return kernel.Config{}, fmt.Errorf("taskgen: task %q: unknown endpoint %q", t.Name, c.Ref)
				}
				cd.Kind = abi.CapEndpoint
				cd.Object = ref
			case "thread":
				ref, ok := tasks[c.Ref]
				if !ok {
					return kernel.Config{}, fmt.Errorf("taskgen: task %q: unknown task %q", t.Name, c.Ref)
				}
				cd.Kind = abi.CapThread
				cd.Object = ref
			default:
				return kernel.Config{}, fmt.Errorf("taskgen: task %q: unknown cap kind %q", t.Name, c.Kind)
			}
			rights, err := parseRights(c.Rights)
			if err != nil {
				return kernel.Config{}, fmt.Errorf("taskgen: task %q slot %d: %w", t.Name, c.Slot, err)
			}
			cd.Rights = rights
			desc.Caps = append(desc.Caps, cd)
		}
		if t.Recv != "" {
			ref, ok := eps[t.Recv]
			if !ok {
				return kernel.Config{}, fmt.Errorf("taskgen: task %q: unknown recv endpoint %q", t.Name, t.Recv)
			}
			slot, found := recvSlotFor(desc.Caps, ref)
			if !found {
				return kernel.Config{}, fmt.Errorf("taskgen: task %q: no recv-capable cap on endpoint %q", t.Name, t.Recv)
			}
			desc.StartRecv = true
			desc.RecvSlot = slot
		}
		cfg.Tasks = append(cfg.Tasks, desc)
	}

	if _, err := kernel.NewKernel(cfg); err != nil {
		return kernel.Config{}, fmt.Errorf("taskgen: %w", err)
	}
	return cfg, nil
}

func parseRights(names []string) (abi.Rights, error) {
	if len(names) == 0 {
		return 0, fmt.Errorf("no rights")
	}
	var r abi.Rights
	for _, n := range names {
		switch n {
		case "send":
			r |= abi.RightSend
		case "recv":
			r |= abi.RightRecv
		case "call":
			r |= abi.RightCall
		default:
			return 0, fmt.Errorf("unknown right %q", n)
		}
	}
	return r, nil
}

func recvSlotFor(caps []kernel.CapDesc, ep uint16) (abi.Slot, bool) {
	for _, c := range caps {
		if c.Kind == abi.CapEndpoint && c.Object == ep && c.Rights.Has(abi.RightRecv) {
			return c.Slot, true
		}
	}
	return abi.NoSlot, false
}
