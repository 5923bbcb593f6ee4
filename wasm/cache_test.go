package wasm

import (
	"testing"

	"github.com/dusk-network/rusk-vm/config"
)

func TestCompileCachesByDigestAndVersion(t *testing.T) {
	cache, err := NewCache(8)
	if err != nil {
		t.Fatal(err)
	}
	sched := config.Default()

	m1, err := Compile(cache, incWasm, sched)
	if err != nil {
		t.Fatal(err)
	}
	if cache.Len() != 1 {
		t.Fatalf("cache.Len() = %d, want 1", cache.Len())
	}
	m2, err := Compile(cache, incWasm, sched)
	if err != nil {
		t.Fatal(err)
	}
	if m1 != m2 {
		t.Error("expected Compile to return the cached pointer on the second call")
	}

	other := *sched
	other.Version = sched.Version + 1
	m3, err := Compile(cache, incWasm, &other)
	if err != nil {
		t.Fatal(err)
	}
	if m3 == m1 {
		t.Error("expected a distinct compiled module for a different schedule version")
	}
	if cache.Len() != 2 {
		t.Fatalf("cache.Len() = %d, want 2 after compiling under a new version", cache.Len())
	}
}

func TestCompileRejectsMalformedBytecode(t *testing.T) {
	cache, err := NewCache(4)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Compile(cache, []byte{0x01, 0x02}, config.Default()); err == nil {
		t.Fatal("expected error compiling malformed bytecode")
	}
}
