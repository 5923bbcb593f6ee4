package contract

import (
	"bytes"
	"testing"

	"github.com/dusk-network/rusk-vm/store"
)

func TestNewAndStateRoundtrip(t *testing.T) {
	st := store.New(store.NewMemoryBackend())
	rec, err := New([]byte{0x00, 0x61, 0x73, 0x6D}, []byte("initial state"), st)
	if err != nil {
		t.Fatal(err)
	}
	got, err := rec.State(st)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("initial state")) {
		t.Errorf("State() = %q, want %q", got, "initial state")
	}
}

func TestWithStateReplacesAtomically(t *testing.T) {
	st := store.New(store.NewMemoryBackend())
	rec, err := New([]byte("code"), []byte("v1"), st)
	if err != nil {
		t.Fatal(err)
	}
	next, err := rec.WithState([]byte("v2"), st)
	if err != nil {
		t.Fatal(err)
	}

	oldState, err := rec.State(st)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(oldState, []byte("v1")) {
		t.Error("original record's state must remain v1 (records are immutable)")
	}
	newState, err := next.State(st)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(newState, []byte("v2")) {
		t.Error("new record's state must be v2")
	}
	if !bytes.Equal(next.Bytecode, rec.Bytecode) {
		t.Error("WithState must preserve bytecode")
	}
}
