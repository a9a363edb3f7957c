package sim

import (
	"kestrel/abi"
	"kestrel/kernel"
)

// Demo returns the built-in example system: a pinger calling a passive
// echo server, with a low-priority spinner soaking up the remaining
// CPU. It exercises loaning, exhaustion, preemption and logging in a
// dozen ticks.
func Demo() (kernel.Config, []Program) {
	cfg := kernel.Config{
		Endpoints: 1,
		Tasks: []kernel.TaskDesc{
			{
				Name:     "pinger",
				Priority: 4,
				Budget:   3,
				Cooldown: 3,
				Caps: []kernel.CapDesc{
					{Slot: 0, Kind: abi.CapEndpoint, Object: 0, Rights: abi.RightCall},
				},
			},
			{
				Name:      "echo",
				Priority:  6,
				Budget:    0,
				StartRecv: true,
				RecvSlot:  0,
				Caps: []kernel.CapDesc{
					{Slot: 0, Kind: abi.CapEndpoint, Object: 0, Rights: abi.RightRecv},
				},
			},
			{
				Name:     "spinner",
				Priority: 1,
				Budget:   4,
				Cooldown: 4,
			},
		},
	}
	progs := []Program{
		&Pinger{Slot: 0},
		&Echo{Slot: 0},
		&Spinner{LogEvery: 3},
	}
	return cfg, progs
}
