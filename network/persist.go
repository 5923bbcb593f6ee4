package network

import (
	"bytes"
	"encoding/gob"

	"github.com/dusk-network/rusk-vm/common"
	"github.com/dusk-network/rusk-vm/contract"
	"github.com/dusk-network/rusk-vm/log"
	"github.com/dusk-network/rusk-vm/vmerrors"
)

// Persist serializes the whole record map through the store and archives
// the resulting identifier as the store's root (spec.md §6: "a single file
// holding the archived identifier of the network-state map"). No
// third-party wire-format library in the pack fits a one-off internal
// map[ContractID]Record snapshot (goleveldb and naoina/toml both serve
// other concerns); encoding/gob is the standard-library choice for a
// process-internal, non-consensus, non-wire format, so DESIGN.md records
// this as a justified stdlib use rather than an omission.
func (s *State) Persist() error {
	s.mu.RLock()
	snapshot := make(map[common.ContractID]contract.Record, len(s.records))
	for id, rec := range s.records {
		snapshot[id] = rec
	}
	s.mu.RUnlock()

	data, err := encodeRecords(snapshot)
	if err != nil {
		return vmerrors.Wrap(vmerrors.PersistenceError, "encoding network state for persist", err)
	}
	if _, err := s.st.Persist(data); err != nil {
		return vmerrors.Wrap(vmerrors.PersistenceError, "persisting network state", err)
	}
	log.Infof("persisted network state: %d contracts", len(snapshot))
	return nil
}

// Restore replaces the live record map with whatever was last archived by
// Persist, loaded back through the store's root identifier.
func (s *State) Restore() error {
	data, err := s.st.Load()
	if err != nil {
		return vmerrors.Wrap(vmerrors.PersistenceError, "loading network state", err)
	}
	records, err := decodeRecords(data)
	if err != nil {
		return vmerrors.Wrap(vmerrors.PersistenceError, "decoding network state", err)
	}
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	log.Infof("restored network state: %d contracts", len(records))
	return nil
}

func encodeRecords(records map[common.ContractID]contract.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeRecords(data []byte) (map[common.ContractID]contract.Record, error) {
	records := make(map[common.ContractID]contract.Record)
	if len(data) == 0 {
		return records, nil
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}
