package common

import "golang.org/x/crypto/blake2b"

// Blake2b256 is the one hash function spec.md's consensus-relevant data
// ever uses: deriving a contract id from its bytecode (spec.md §4.C,
// "Deploy... id = blake2b-256(bytecode) unless given explicitly"), the
// network root's per-entry leaf annotation (spec.md §4.E:
// "blake2b-256(id ‖ state_bytes)"), and the abi `hash` host import exposed
// to guest code so a contract can derive ids the same way the engine does.
func Blake2b256(data []byte) [32]byte {
	return blake2b.Sum256(data)
}
