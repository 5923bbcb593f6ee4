// Package wire implements the host↔guest scratch-region conventions of
// spec.md §6, generalized from core/vm/common.go's getData (bounds-checked,
// zero-padded offset/length slicing used to hand calldata to the EVM) to
// the fixed two-region layout the engine writes into a fresh instance's
// linear memory before invoking its entry point.
package wire

import (
	"github.com/dusk-network/rusk-vm/vmerrors"
	"github.com/dusk-network/rusk-vm/wasm"
)

// ScratchOffset is the guest memory offset at which the engine always
// begins writing, for both the inbound invocation layout and the guest's
// own return layout (spec.md §6: "starting at the guest's declared scratch
// offset" on the way in, "at offset 0" on the way out).
const ScratchOffset = 0

// WriteInvocation writes `[archived_state][archived_argument]` into mem
// starting at ScratchOffset, growing mem as needed, and returns the byte
// offsets of each region (spec.md §4.F step 4).
func WriteInvocation(mem *wasm.Memory, state, arg []byte) (stateOffset, argOffset uint32, err error) {
	total := uint32(len(state)) + uint32(len(arg))
	if err := ensureCapacity(mem, ScratchOffset+total); err != nil {
		return 0, 0, err
	}
	if err := mem.Write(ScratchOffset, state); err != nil {
		return 0, 0, err
	}
	argOffset = ScratchOffset + uint32(len(state))
	if err := mem.Write(argOffset, arg); err != nil {
		return 0, 0, err
	}
	return ScratchOffset, argOffset, nil
}

// ReadQueryResult reads the archived return value a query entry point
// wrote at offset 0, given the byte length it returned (spec.md §6: "Guest
// writes the archived return at offset 0 and returns its length as u32").
func ReadQueryResult(mem *wasm.Memory, retLen uint32) ([]byte, error) {
	return mem.Read(ScratchOffset, retLen)
}

// ReadTransactResult reads the `[archived_new_state][archived_return]`
// layout a transaction entry point wrote at offset 0, given the two
// lengths it returned (spec.md §6).
func ReadTransactResult(mem *wasm.Memory, newStateLen, retLen uint32) (newState, ret []byte, err error) {
	newState, err = mem.Read(ScratchOffset, newStateLen)
	if err != nil {
		return nil, nil, err
	}
	ret, err = mem.Read(ScratchOffset+newStateLen, retLen)
	if err != nil {
		return nil, nil, err
	}
	return newState, ret, nil
}

// ensureCapacity grows mem by whole pages until it is at least size bytes,
// matching spec.md §4.F's "auto-grow the linear memory (by whole pages) up
// to max_memory_pages".
func ensureCapacity(mem *wasm.Memory, size uint32) error {
	for mem.Size() < size {
		if _, err := mem.Grow(1); err != nil {
			return vmerrors.Wrap(vmerrors.EngineTrap, "growing scratch region", err)
		}
	}
	return nil
}
