package network

import (
	"github.com/dusk-network/rusk-vm/common"
	"github.com/dusk-network/rusk-vm/contract"
	"github.com/dusk-network/rusk-vm/vm"
)

// workingView is the mutable clone vm.Execute threads through one call
// tree. It implements vm.NetworkView structurally; vm never imports this
// package, so there is no cycle.
type workingView struct {
	records map[common.ContractID]contract.Record
	hosts   map[common.ContractID]vm.HostModule
}

func (w *workingView) Lookup(id common.ContractID) (contract.Record, bool) {
	rec, ok := w.records[id]
	return rec, ok
}

func (w *workingView) Replace(id common.ContractID, rec contract.Record) {
	w.records[id] = rec
}

func (w *workingView) HostModuleFor(id common.ContractID) (vm.HostModule, bool) {
	hm, ok := w.hosts[id]
	return hm, ok
}
