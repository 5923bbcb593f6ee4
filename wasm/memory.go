package wasm

import (
	"fmt"

	"github.com/dusk-network/rusk-vm/vmerrors"
)

// PageSize is the WASM linear memory page size in bytes.
const PageSize = 65536

// Memory is a bounds-checked, page-growable linear memory, grounded on the
// teacher's core/vm/memory.go (a flat growable byte slice consulted by
// MLOAD/MSTORE), generalized with an explicit page cap since spec.md's
// engine must auto-grow "up to max_memory_pages" and then trap rather than
// grow unboundedly.
type Memory struct {
	data     []byte
	maxPages uint32
}

// NewMemory allocates a linear memory with the given initial page count,
// capped at maxPages.
func NewMemory(initialPages, maxPages uint32) *Memory {
	return &Memory{
		data:     make([]byte, uint64(initialPages)*PageSize),
		maxPages: maxPages,
	}
}

// Pages reports the current size in pages.
func (m *Memory) Pages() uint32 {
	return uint32(len(m.data) / PageSize)
}

// Size reports the current size in bytes.
func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

// Grow adds delta pages, returning the previous page count on success, or
// an error if doing so would exceed maxPages (spec.md §4.F: "auto-grow the
// linear memory (by whole pages) up to max_memory_pages; exceeding that cap
// traps the call").
func (m *Memory) Grow(delta uint32) (uint32, error) {
	prev := m.Pages()
	next := prev + delta
	if next < prev || next > m.maxPages {
		return 0, vmerrors.New(vmerrors.EngineTrap, fmt.Sprintf("memory.grow by %d pages would exceed max %d pages", delta, m.maxPages))
	}
	m.data = append(m.data, make([]byte, uint64(delta)*PageSize)...)
	return prev, nil
}

func (m *Memory) bounds(offset, length uint32) error {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(m.data)) {
		return vmerrors.New(vmerrors.EngineTrap, fmt.Sprintf("memory access [%d:%d] out of bounds (size %d)", offset, end, len(m.data)))
	}
	return nil
}

// Read copies length bytes starting at offset out of the memory.
func (m *Memory) Read(offset, length uint32) ([]byte, error) {
	if err := m.bounds(offset, length); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, m.data[offset:offset+length])
	return out, nil
}

// Write copies src into the memory starting at offset.
func (m *Memory) Write(offset uint32, src []byte) error {
	if err := m.bounds(offset, uint32(len(src))); err != nil {
		return err
	}
	copy(m.data[offset:], src)
	return nil
}

// LoadI32 reads a little-endian i32 at offset.
func (m *Memory) LoadI32(offset uint32) (int32, error) {
	b, err := m.Read(offset, 4)
	if err != nil {
		return 0, err
	}
	return int32(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24), nil
}

// LoadI64 reads a little-endian i64 at offset.
func (m *Memory) LoadI64(offset uint32) (int64, error) {
	b, err := m.Read(offset, 8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return int64(v), nil
}

// StoreI32 writes a little-endian i32 at offset.
func (m *Memory) StoreI32(offset uint32, v int32) error {
	b := []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	return m.Write(offset, b)
}

// StoreI64 writes a little-endian i64 at offset.
func (m *Memory) StoreI64(offset uint32, v int64) error {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return m.Write(offset, b)
}
