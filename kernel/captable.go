package kernel

import "kestrel/abi"

// CapSlots is the fixed size of every task's capability table.
const CapSlots = 16

// capability is a typed, rights-bearing handle stored at a slot index.
// Tasks never name kernel objects directly, only slots they were granted.
type capability struct {
	kind   abi.CapKind
	object uint16
	rights abi.Rights
}

func (c capability) valid() bool { return c.kind != abi.CapNone }

// derive narrows a capability to a subset of its rights. Rights only ever
// narrow: bits the source does not hold cannot be granted.
func derive(c capability, rights abi.Rights) capability {
	r := c.rights & rights
	if !c.valid() || r == 0 {
		return capability{}
	}
	return capability{kind: c.kind, object: c.object, rights: r}
}

type capTable struct {
	slots [CapSlots]capability
}

// lookup resolves a slot, failing without side effects on empty or
// out-of-range slots.
func (t *capTable) lookup(slot abi.Slot) (capability, abi.Error) {
	if int(slot) >= CapSlots {
		return capability{}, abi.ErrInvalidCap
	}
	c := t.slots[slot]
	if !c.valid() {
		return capability{}, abi.ErrInvalidCap
	}
	return c, abi.OK
}

// endpoint resolves a slot to an endpoint reference, requiring want rights.
func (t *capTable) endpoint(slot abi.Slot, want abi.Rights) (endpointRef, abi.Error) {
	c, err := t.lookup(slot)
	if err != abi.OK {
		return 0, err
	}
	if c.kind != abi.CapEndpoint {
		return 0, abi.ErrInvalidCap
	}
	if !c.rights.Has(want) {
		return 0, abi.ErrCapRights
	}
	return endpointRef(c.object), abi.OK
}

// insert places c in the first free slot.
func (t *capTable) insert(c capability) (abi.Slot, bool) {
	for i := range t.slots {
		if !t.slots[i].valid() {
			t.slots[i] = c
			return abi.Slot(i), true
		}
	}
	return abi.NoSlot, false
}

func (t *capTable) clear(slot abi.Slot) {
	if int(slot) < CapSlots {
		t.slots[slot] = capability{}
	}
}

// info copies occupied slots into out, returning the count written.
func (t *capTable) info(out []abi.CapInfo) int {
	n := 0
	for i := range t.slots {
		if n >= len(out) {
			break
		}
		c := t.slots[i]
		if !c.valid() {
			continue
		}
		out[n] = abi.CapInfo{
			Slot:   abi.Slot(i),
			Kind:   c.kind,
			Object: c.object,
			Rights: c.rights,
		}
		n++
	}
	return n
}
