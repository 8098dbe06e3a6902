package typeclass

import "reflect"

// Table is the dispatch table every adapter exposes: one slot per contract
// operation followed by three lifecycle slots (destroy, copy-clone,
// move-clone). The interface is sealed; adapters are created by New and Of.
type Table interface {
	// Contract returns the contract the value was erased behind. Bindings
	// are shared between equal contracts, so this is the caller's contract,
	// not necessarily the one the slots were first built for.
	Contract() *Contract
	// Type returns the concrete (dynamic) type of the held value.
	Type() reflect.Type
	// Call invokes operation slot index with args and returns the method's
	// results unchanged.
	Call(index int, args []reflect.Value) []reflect.Value
	// Destroy runs the destroy slot.
	Destroy() error
	// Clone runs the copy-clone slot and returns a newly owned table.
	Clone() Table
	// MoveClone runs the move-clone slot and returns a newly owned table,
	// leaving this one vacated.
	MoveClone() Table

	receiver() any
}

// SlotCount is the table length for a contract with n operations.
func SlotCount(n int) int { return n + 3 }

// DestroySlot, CloneSlot and MoveCloneSlot locate the lifecycle slots that
// follow the n operation slots.
func DestroySlot(n int) int   { return n }
func CloneSlot(n int) int     { return n + 1 }
func MoveCloneSlot(n int) int { return n + 2 }

// Slot signatures. Every slot is stored as an opaque value and asserted back
// to exactly one of these when resolved.
type (
	opThunk      func(self Table, args []reflect.Value) []reflect.Value
	destroyThunk func(self Table) error
	cloneThunk   func(self Table) Table
)

// slots is the opaque dispatch array; one instance is shared by every
// adapter of a binding.
type slots []any

func (s slots) op(index, n int) opThunk {
	if index < 0 || index >= n {
		invariantf("operation slot %d out of range [0,%d)", index, n)
	}
	fn, ok := s[index].(opThunk)
	if !ok {
		invariantf("slot %d holds %T, want operation thunk", index, s[index])
	}
	return fn
}

func (s slots) destroy(n int) destroyThunk {
	fn, ok := s[DestroySlot(n)].(destroyThunk)
	if !ok {
		invariantf("destroy slot holds %T", s[DestroySlot(n)])
	}
	return fn
}

func (s slots) clone(slot int) cloneThunk {
	fn, ok := s[slot].(cloneThunk)
	if !ok {
		invariantf("clone slot %d holds %T", slot, s[slot])
	}
	return fn
}
