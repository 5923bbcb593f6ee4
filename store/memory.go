package store

import "fmt"

// MemoryBackend is the ephemeral, in-process backend: a single growable
// byte arena, Put appends, Get slices. Grounded on the shape of
// ethdb/database.go's LDBDatabase but backed by a slice instead of leveldb.
type MemoryBackend struct {
	arena []byte
	root  Identifier
	hasRoot bool
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Put(value []byte) (Identifier, error) {
	id := Identifier{Offset: uint64(len(b.arena)), Length: uint64(len(value))}
	b.arena = append(b.arena, value...)
	return id, nil
}

func (b *MemoryBackend) Get(id Identifier) ([]byte, error) {
	end := id.Offset + id.Length
	if end > uint64(len(b.arena)) || end < id.Offset {
		return nil, fmt.Errorf("store: identifier [%d:%d] out of range (arena size %d)", id.Offset, end, len(b.arena))
	}
	out := make([]byte, id.Length)
	copy(out, b.arena[id.Offset:end])
	return out, nil
}

func (b *MemoryBackend) PersistRoot(id Identifier) error {
	b.root = id
	b.hasRoot = true
	return nil
}

func (b *MemoryBackend) LoadRoot() (Identifier, error) {
	if !b.hasRoot {
		return Identifier{}, fmt.Errorf("store: no root identifier has been persisted")
	}
	return b.root, nil
}

func (b *MemoryBackend) Kind() Kind { return Ephemeral }

func (b *MemoryBackend) Close() error { return nil }
