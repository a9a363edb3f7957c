package kernel

import "kestrel/abi"

// TaskDesc is one entry of the static task table. The table is produced by
// the build-time generator and consumed once at boot; the kernel performs
// no runtime task registration.
type TaskDesc struct {
	Name     string
	Priority uint8  // 0-7, 7 highest
	Budget   uint32 // ticks per quantum; 0 declares a passive server
	Cooldown uint32 // ticks between quanta

	// Caps are the task's initial capability grants, loaded verbatim.
	Caps []CapDesc

	// StartRecv boots the task blocked receiving on RecvSlot instead of
	// Ready. Mandatory for passive servers, which cannot self-schedule.
	StartRecv bool
	RecvSlot  abi.Slot
}

// CapDesc is one boot-time capability grant.
type CapDesc struct {
	Slot   abi.Slot
	Kind   abi.CapKind
	Object uint16
	Rights abi.Rights
}

// Config is the static kernel configuration: the task table plus the
// number of endpoint objects referenced by its capability grants.
type Config struct {
	Tasks     []TaskDesc
	Endpoints int
}
