// Package common carries the small fixed-size value types shared across the
// VM: contract ids and the network-state root hash. It follows the teacher's
// common.Hash/common.Address convention of a plain fixed-length byte array
// with Hex/Bytes/IsZero accessors rather than a boxed struct.
package common

import (
	"encoding/hex"
	"fmt"
)

// IDLength is the size in bytes of a contract id (spec.md §3, §6).
const IDLength = 32

// ContractID is the 32-byte address of a contract record in the network
// state map. It is opaque: callers must not assume any internal structure
// beyond the reserved range carved out by the host-module registry.
type ContractID [IDLength]byte

// ZeroID is the id reported as the caller of a top-level invocation
// (spec.md §4.G: "caller... zero id at top level").
var ZeroID ContractID

// BytesToID right-aligns b into a ContractID, truncating on the left if b is
// longer than IDLength, matching the teacher's BytesToHash convention.
func BytesToID(b []byte) ContractID {
	var id ContractID
	if len(b) > IDLength {
		b = b[len(b)-IDLength:]
	}
	copy(id[IDLength-len(b):], b)
	return id
}

// Bytes returns a fresh copy of the id's bytes.
func (id ContractID) Bytes() []byte {
	out := make([]byte, IDLength)
	copy(out, id[:])
	return out
}

// IsZero reports whether id is the all-zero id.
func (id ContractID) IsZero() bool {
	return id == ContractID{}
}

// Hex renders the id as a 0x-prefixed hex string.
func (id ContractID) Hex() string {
	return "0x" + hex.EncodeToString(id[:])
}

func (id ContractID) String() string {
	return id.Hex()
}

// IDFromHex parses a 0x-prefixed or bare hex string into a ContractID.
func IDFromHex(s string) (ContractID, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return ContractID{}, fmt.Errorf("common: invalid contract id %q: %w", s, err)
	}
	if len(b) != IDLength {
		return ContractID{}, fmt.Errorf("common: contract id %q must be %d bytes, got %d", s, IDLength, len(b))
	}
	return BytesToID(b), nil
}

// RootLength is the size in bytes of a network-state root hash.
const RootLength = 32

// Root is the 32-byte commutative commitment over the contract map
// (spec.md §4.E, §6).
type Root [RootLength]byte

func (r Root) Bytes() []byte {
	out := make([]byte, RootLength)
	copy(out, r[:])
	return out
}

func (r Root) Hex() string {
	return "0x" + hex.EncodeToString(r[:])
}

func (r Root) String() string {
	return r.Hex()
}

// Add performs the byte-wise wrapping addition spec.md §4.E/§6 requires for
// combining two leaf/partial annotations: each byte position wraps
// independently, with no carry between positions. This (not a multi-byte
// big-integer add) is what the spec means by "byte-wise" — it keeps the
// combine commutative and associative per byte, so the fold over leaves is
// order-independent regardless of the tree shape used to reach it.
func (r Root) Add(other Root) Root {
	var out Root
	for i := 0; i < RootLength; i++ {
		out[i] = r[i] + other[i]
	}
	return out
}
