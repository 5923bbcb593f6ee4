package network

import (
	"github.com/dusk-network/rusk-vm/common"
	"github.com/dusk-network/rusk-vm/log"
	"github.com/dusk-network/rusk-vm/vm"
)

// ReservedID maps a one-byte host-module selector onto the 32-byte
// contract-id space as 0x00 || selector || 0x00^30 (selector at byte index
// 1), the layout frozen in SPEC_FULL.md's resolved question 1. Byte 0 is
// always zero and the selector occupies byte 1, so bytes 1..31 are not all
// zero for a non-zero selector. This is deliberately not common.BytesToID, which right-aligns a
// short slice and would put selector in the wrong position.
func ReservedID(selector byte) common.ContractID {
	var id common.ContractID
	id[1] = selector
	return id
}

// RegisterHostModule makes hm reachable as a normal query/transact target
// at ReservedID(selector), provided the schedule enables that selector
// (spec.md §4.I). Host modules never occupy a slot in the records map: a
// lookup against a registered selector is resolved entirely by
// workingView.HostModuleFor before the records map is ever consulted.
func (s *State) RegisterHostModule(selector byte, hm vm.HostModule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sched.HostModuleEnabled(selector) {
		log.Warnf("host module selector %d registered but disabled by schedule, ignoring", selector)
		return
	}
	s.hosts[ReservedID(selector)] = hm
}
