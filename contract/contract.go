// Package contract implements spec.md §4.D: a contract record pairing
// inline bytecode with archived state held in the store. Grounded on
// core/vm/contracts.go's PrecompiledAccount — a small immutable struct with
// accessor methods — generalized from a native Go callback to a WASM
// bytecode blob plus an archived-state pointer.
package contract

import (
	"github.com/dusk-network/rusk-vm/store"
)

// Record is one contract's bytecode plus a pointer to its current archived
// state (spec.md §4.D: "retains the bytecode inline" while state is
// serialized through the store). Records are immutable values; a
// transaction's state change is expressed by producing a new Record via
// WithState rather than mutating one in place, matching spec.md §4.F step 7
// ("the working state's record for this id" is replaced, not edited).
type Record struct {
	Bytecode []byte
	StateID  store.Identifier
}

// New serializes state through st and pairs the resulting identifier with
// bytecode, producing a fresh Record (spec.md §4.D: "Contract::new(state,
// bytecode, store) → record").
func New(bytecode, state []byte, st *store.Store) (Record, error) {
	id, err := st.Put(state)
	if err != nil {
		return Record{}, err
	}
	return Record{Bytecode: bytecode, StateID: id}, nil
}

// State dereferences the record's current archived state through st.
func (r Record) State(st *store.Store) ([]byte, error) {
	return st.Get(r.StateID)
}

// WithState returns a new Record sharing this one's bytecode but pointing
// at newly-archived state, without mutating r. Used on transaction commit
// (spec.md §4.F step 7) to atomically swap a network-state entry.
func (r Record) WithState(newState []byte, st *store.Store) (Record, error) {
	id, err := st.Put(newState)
	if err != nil {
		return Record{}, err
	}
	return Record{Bytecode: r.Bytecode, StateID: id}, nil
}
