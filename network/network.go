// Package network implements spec.md §4.E: the network state — the
// contract-id → Record map a node holds, plus the reserved-id host-module
// registry, deploy/query/transact operations, and the commutative root
// hash. Grounded on the teacher's core/state package (an address → Account
// map with copy-on-write StateDB snapshots for the EVM's CALL/nested-call
// semantics), generalized from accounts with balance/nonce/storage-trie to
// contract records with bytecode/archived-state.
//
// network is the top of the network → vm → abi import chain: it is the
// only one of the three packages that knows about contract.Record, deploy,
// and persistence; vm knows only the narrow NetworkView/HostModule
// interfaces this package's internal workingView type satisfies.
package network

import (
	"sync"

	"github.com/dusk-network/rusk-vm/common"
	"github.com/dusk-network/rusk-vm/config"
	"github.com/dusk-network/rusk-vm/contract"
	"github.com/dusk-network/rusk-vm/gas"
	"github.com/dusk-network/rusk-vm/log"
	"github.com/dusk-network/rusk-vm/store"
	"github.com/dusk-network/rusk-vm/vm"
	"github.com/dusk-network/rusk-vm/vmerrors"
	"github.com/dusk-network/rusk-vm/wasm"
)

// State is a node's live view of every deployed contract (spec.md §4.E:
// "State: id → Record map"). The zero value is not usable; build one with
// New.
type State struct {
	mu      sync.RWMutex
	records map[common.ContractID]contract.Record
	hosts   map[common.ContractID]vm.HostModule

	st    *store.Store
	cache *wasm.Cache
	sched *config.Schedule
}

// New builds an empty network state backed by st, caching compiled modules
// in cache and instrumenting them under sched.
func New(st *store.Store, cache *wasm.Cache, sched *config.Schedule) *State {
	return &State{
		records: make(map[common.ContractID]contract.Record),
		hosts:   make(map[common.ContractID]vm.HostModule),
		st:      st,
		cache:   cache,
		sched:   sched,
	}
}

// Deploy compiles bytecode to fail fast, archives initialState, and adds
// the resulting record under id = blake2b-256(bytecode) (spec.md §4.C/§4.E:
// "Deploy(bytecode, initial_state) → id, or a given id").
func (s *State) Deploy(bytecode, initialState []byte) (common.ContractID, error) {
	id := common.ContractID(common.Blake2b256(bytecode))
	if err := s.DeployWithID(id, bytecode, initialState); err != nil {
		return common.ContractID{}, err
	}
	return id, nil
}

// DeployWithID is Deploy with an explicitly chosen id (spec.md §4.E "or a
// given id"), used for reserved host-module ids and for re-deploying a
// known contract deterministically across nodes.
func (s *State) DeployWithID(id common.ContractID, bytecode, initialState []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; exists {
		return vmerrors.WithID(vmerrors.InvalidData, id, "contract id already deployed", nil)
	}
	if _, err := wasm.Compile(s.cache, bytecode, s.sched); err != nil {
		return vmerrors.WithID(vmerrors.InvalidWASMModule, id, "compiling contract bytecode at deploy", err)
	}
	rec, err := contract.New(bytecode, initialState, s.st)
	if err != nil {
		return vmerrors.WithID(vmerrors.PersistenceError, id, "archiving initial contract state", err)
	}
	s.records[id] = rec
	log.Infof("deployed contract %s: %d bytes bytecode, %d bytes state", id.Hex(), len(bytecode), len(initialState))
	return nil
}

// Query runs a read-only call against a cloned working view and always
// discards it afterward, regardless of outcome (spec.md §4.F: "Query never
// commits").
func (s *State) Query(id common.ContractID, blockHeight uint64, entryName string, arg []byte, meter *gas.Meter) ([]byte, error) {
	view := s.clone()
	ret, _, err := vm.Execute(view, s.st, s.cache, s.sched, vm.Query, id, blockHeight, entryName, arg, meter, common.ZeroID)
	return ret, err
}

// Transact runs a state-mutating call against a cloned working view,
// adopting the clone as the new live state only if it succeeds (spec.md
// §4.F: "Transact commits the working view as the new live state on
// success; any trap discards it entirely, the live state is untouched").
func (s *State) Transact(id common.ContractID, blockHeight uint64, entryName string, arg []byte, meter *gas.Meter) ([]byte, []vm.Event, error) {
	view := s.clone()
	ret, events, err := vm.Execute(view, s.st, s.cache, s.sched, vm.Transact, id, blockHeight, entryName, arg, meter, common.ZeroID)
	if err != nil {
		return nil, nil, err
	}
	s.mu.Lock()
	s.records = view.records
	s.mu.Unlock()
	return ret, events, nil
}

// clone takes a snapshot of the current record map, the single shared
// mutable working view a whole call tree threads by reference (spec.md
// §4.F/§4.H): nested query/transact host calls mutate this same map in
// place rather than re-cloning per frame. Records are immutable values, so
// copying the map's entries is cheap regardless of how large a contract's
// archived state is.
func (s *State) clone() *workingView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make(map[common.ContractID]contract.Record, len(s.records))
	for id, rec := range s.records {
		records[id] = rec
	}
	return &workingView{records: records, hosts: s.hosts}
}

// Root computes spec.md §4.E's commutative network root: the byte-wise
// wrapping sum of blake2b-256(id ‖ state_bytes) over every deployed
// contract, order-independent by construction (common.Root.Add).
func (s *State) Root() (common.Root, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var root common.Root
	for id, rec := range s.records {
		state, err := rec.State(s.st)
		if err != nil {
			return common.Root{}, vmerrors.WithID(vmerrors.PersistenceError, id, "loading state for root computation", err)
		}
		leaf := common.Blake2b256(append(id.Bytes(), state...))
		root = root.Add(common.Root(leaf))
	}
	return root, nil
}
