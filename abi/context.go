// Package abi implements spec.md §4.G: the host function surface a guest
// module imports. Grounded on core/vm/contracts.go's precompile-dispatch
// idiom (a name-keyed table of host-implemented functions behind a fixed
// calling convention), cross-checked against the non-teacher reference file
// other_examples' Ethereum WASM/EEI host-import surface for the shape of a
// pointer+length ABI (used only as a cross-check, never copied).
//
// abi deliberately knows nothing about vm.CallContext or network.State: it
// depends only on the Context interface below, which vm.CallContext
// implements. This keeps the import graph acyclic (vm imports abi and
// wasm; abi imports neither vm nor network).
package abi

import (
	"github.com/dusk-network/rusk-vm/common"
	"github.com/dusk-network/rusk-vm/store"
)

// Context is the seam between the host ABI surface and the call-context
// engine that actually performs nested calls, tracks gas, and owns the
// frame stack. Every method corresponds to one row (or one concern) of
// spec.md §4.G's table.
type Context interface {
	// Query performs a nested read-only call (spec.md §4.G `query`).
	Query(target common.ContractID, name string, arg []byte, gasLimit uint64) ([]byte, error)
	// Transact performs a nested mutating call (spec.md §4.G `transact`).
	Transact(target common.ContractID, name string, arg []byte, gasLimit uint64) ([]byte, error)

	// Callee is the identifier of the currently executing contract.
	Callee() common.ContractID
	// Caller is the identifier of the calling frame (zero id at top level).
	Caller() common.ContractID
	// BlockHeight is the height supplied at top-level invocation.
	BlockHeight() uint64
	// SelfHash is the bytecode hash of the currently executing contract
	// (supplemented feature, original_source/src/ops/self_hash.rs).
	SelfHash() common.ContractID
	// CallStackDepth is the number of frames currently pushed (supplemented
	// feature, original_source/src/ops/call_stack.rs).
	CallStackDepth() uint32

	// ChargeExplicit charges n gas directly (spec.md §4.G `gas(n)`, "used
	// by the instrumenter" — also exposed to the guest directly).
	ChargeExplicit(n uint64) error
	// ChargeHostCall charges the configured cost of crossing into host
	// function name, plus nBytes times the schedule's per-byte price
	// (spec.md §4.G: "must charge at minimum the configured per-call cost,
	// plus the byte-read/write cost for their buffers").
	ChargeHostCall(name string, nBytes uint64) error
	// GasConsumed/GasLeft are introspection host imports.
	GasConsumed() uint64
	GasLeft() uint64

	// Debug records a diagnostic trace line; must never affect state.
	Debug(msg []byte)
	// Emit appends an event to the current call's event buffer. A no-op
	// during queries (spec.md §4.G `emit`).
	Emit(name string, data []byte)

	// StorePut/StoreGet are pass-throughs to the store for guest-side
	// persistent data structures (spec.md §4.G `store_put`/`store_get`).
	StorePut(value []byte) (store.Identifier, error)
	StoreGet(id store.Identifier) ([]byte, error)
	// Hash computes the store/network's content hash of data (spec.md
	// §4.G `hash`).
	Hash(data []byte) [32]byte
}
