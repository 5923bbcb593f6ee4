package wire

import (
	"bytes"
	"testing"

	"github.com/dusk-network/rusk-vm/wasm"
)

func TestWriteAndReadQueryResult(t *testing.T) {
	mem := wasm.NewMemory(1, 4)
	stateOff, argOff, err := WriteInvocation(mem, []byte("state-bytes"), []byte("argument-bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if stateOff != 0 {
		t.Errorf("stateOffset = %d, want 0", stateOff)
	}
	if argOff != uint32(len("state-bytes")) {
		t.Errorf("argOffset = %d, want %d", argOff, len("state-bytes"))
	}

	// simulate a guest writing its return value at offset 0
	ret := []byte("return-value")
	if err := mem.Write(0, ret); err != nil {
		t.Fatal(err)
	}
	got, err := ReadQueryResult(mem, uint32(len(ret)))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, ret) {
		t.Errorf("ReadQueryResult = %q, want %q", got, ret)
	}
}

func TestReadTransactResult(t *testing.T) {
	mem := wasm.NewMemory(1, 4)
	newState := []byte("new-state")
	ret := []byte("ret")
	if err := mem.Write(0, append(append([]byte{}, newState...), ret...)); err != nil {
		t.Fatal(err)
	}
	gotState, gotRet, err := ReadTransactResult(mem, uint32(len(newState)), uint32(len(ret)))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(gotState, newState) || !bytes.Equal(gotRet, ret) {
		t.Fatalf("got (%q, %q), want (%q, %q)", gotState, gotRet, newState, ret)
	}
}

func TestWriteInvocationGrowsMemoryAsNeeded(t *testing.T) {
	mem := wasm.NewMemory(1, 4)
	big := make([]byte, wasm.PageSize*2)
	if _, _, err := WriteInvocation(mem, big, []byte("x")); err != nil {
		t.Fatal(err)
	}
	if mem.Pages() < 3 {
		t.Errorf("Pages() = %d, want at least 3 after writing %d bytes", mem.Pages(), len(big)+1)
	}
}
