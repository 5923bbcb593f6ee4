package wasm

import "testing"

func TestMemoryReadWriteRoundtrip(t *testing.T) {
	m := NewMemory(1, 4)
	if err := m.StoreI32(0, 42); err != nil {
		t.Fatal(err)
	}
	v, err := m.LoadI32(0)
	if err != nil {
		t.Fatal(err)
	}
	if v != 42 {
		t.Errorf("LoadI32 = %d, want 42", v)
	}
}

func TestMemoryOutOfBoundsTraps(t *testing.T) {
	m := NewMemory(1, 4)
	if _, err := m.LoadI32(PageSize - 2); err == nil {
		t.Fatal("expected out-of-bounds error")
	}
}

func TestMemoryGrowRespectsMax(t *testing.T) {
	m := NewMemory(1, 2)
	if _, err := m.Grow(1); err != nil {
		t.Fatalf("unexpected error growing within cap: %v", err)
	}
	if m.Pages() != 2 {
		t.Errorf("Pages() = %d, want 2", m.Pages())
	}
	if _, err := m.Grow(1); err == nil {
		t.Fatal("expected error growing past cap")
	}
}

func TestMemoryI64Roundtrip(t *testing.T) {
	m := NewMemory(1, 1)
	if err := m.StoreI64(8, -123456789); err != nil {
		t.Fatal(err)
	}
	v, err := m.LoadI64(8)
	if err != nil {
		t.Fatal(err)
	}
	if v != -123456789 {
		t.Errorf("LoadI64 = %d, want -123456789", v)
	}
}
