// Package vm implements spec.md §4.F/§4.H: the recursive call-context
// engine that instantiates a compiled module, wires the host ABI, and
// carries gas/event/call-stack bookkeeping through nested query/transact
// calls. Grounded on core/vm/vm.go's Run (the teacher's single recursive
// interpreter entry point used for both top-level and CALL-opcode-driven
// nested execution).
//
// vm declares NetworkView and HostModule itself rather than importing
// network, so the import direction is the one-way network → vm → abi the
// three-package split requires (see DESIGN.md's network/vm/abi entry).
package vm

import (
	"github.com/dusk-network/rusk-vm/common"
	"github.com/dusk-network/rusk-vm/contract"
	"github.com/dusk-network/rusk-vm/gas"
)

// CallKind distinguishes a read-only query from a state-mutating
// transaction (spec.md §4.F: "Two call kinds, Query and Transact").
type CallKind int

const (
	Query CallKind = iota
	Transact
)

func (k CallKind) String() string {
	if k == Transact {
		return "Transact"
	}
	return "Query"
}

// Event is one entry of the event buffer nested calls accumulate through a
// call tree (spec.md §4.F step 8, §4.H, and abi.Context.Emit).
type Event struct {
	Source common.ContractID
	Name   string
	Data   []byte
}

// NetworkView is the narrow slice of network.State's working copy that the
// call engine needs: looking up a contract's current record, replacing it
// in place on a successful nested transact, and resolving a reserved id to
// a native host module. network's internal working-copy type implements
// this structurally; vm never imports network.
type NetworkView interface {
	Lookup(id common.ContractID) (contract.Record, bool)
	Replace(id common.ContractID, rec contract.Record)
	HostModuleFor(id common.ContractID) (HostModule, bool)
}

// HostModule is a reserved-id native callback handler (spec.md §4.I's
// host-module registry). Host modules bypass the Record/store
// machinery entirely: they manage whatever internal Go state they need and
// simply return result bytes and any events they choose to emit. Grounded
// on core/vm/contracts.go's PrecompiledContracts map, generalized from "act
// like a fixed, deterministic Go function and share a RequiredGas()" to a
// dynamic native module addressed by reserved id.
type HostModule interface {
	Query(entryName string, arg []byte, caller common.ContractID, meter *gas.Meter) ([]byte, error)
	Transact(entryName string, arg []byte, caller common.ContractID, meter *gas.Meter) ([]byte, []Event, error)
}
