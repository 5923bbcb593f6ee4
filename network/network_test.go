package network

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/dusk-network/rusk-vm/common"
	"github.com/dusk-network/rusk-vm/config"
	"github.com/dusk-network/rusk-vm/gas"
	"github.com/dusk-network/rusk-vm/store"
	"github.com/dusk-network/rusk-vm/vm"
	"github.com/dusk-network/rusk-vm/vmerrors"
	"github.com/dusk-network/rusk-vm/wasm"
)

// counterModule mirrors vm package's fixture: "get" echoes the 4-byte
// state back, "inc" increments it by one and reports an empty return
// value. Building it through wasm.Builder instead of hand-encoding real
// .wasm bytes, and priming the shared cache with its digest, lets Deploy's
// fail-fast compile (and every subsequent Query/Transact) hit the cache
// without this test needing a real WASM toolchain.
func counterModule() *wasm.Module {
	b := wasm.NewBuilder()
	b.Memory(1, 4, true)

	queryType := b.Type([]wasm.ValType{wasm.ValI32, wasm.ValI32, wasm.ValI32, wasm.ValI32}, []wasm.ValType{wasm.ValI32})
	get := b.Func(queryType, nil, []wasm.Instr{wasm.LocalGet(1)})
	b.Export("get", get)

	transactType := b.Type([]wasm.ValType{wasm.ValI32, wasm.ValI32, wasm.ValI32, wasm.ValI32}, []wasm.ValType{wasm.ValI32, wasm.ValI32})
	inc := b.Func(transactType, nil, []wasm.Instr{
		wasm.I32Const(0),
		wasm.I32Const(0),
		wasm.I32Load(0),
		wasm.I32Const(1),
		wasm.Simple(wasm.OpI32Add),
		wasm.I32Store(0),
		wasm.I32Const(4),
		wasm.I32Const(0),
	})
	b.Export("inc", inc)

	return b.Build()
}

func newTestState(t *testing.T) (*State, []byte) {
	t.Helper()
	st := store.New(store.NewMemoryBackend())
	sched := config.Default()
	cache, err := wasm.NewCache(8)
	if err != nil {
		t.Fatal(err)
	}

	m := counterModule()
	if err := wasm.Validate(m, sched); err != nil {
		t.Fatalf("validating fixture module: %v", err)
	}
	wasm.Instrument(m, sched)

	bytecode := []byte{0xC0, 0xFF, 0xEE, 0x01}
	cache.Put(wasm.DigestOf(bytecode), sched.Version, m)

	return New(st, cache, sched), bytecode
}

// TestDeployQueryTransact exercises the whole network -> vm -> abi -> wasm
// chain end to end, so it uses testify's require for setup assertions
// rather than the plain-testing style the unit-level tests below use.
func TestDeployQueryTransact(t *testing.T) {
	s, bytecode := newTestState(t)

	id, err := s.Deploy(bytecode, []byte{3, 0, 0, 0})
	require.NoError(t, err)

	ret, err := s.Query(id, 1, "get", nil, gas.WithLimit(100_000))
	require.NoError(t, err)
	require.Equal(t, byte(3), ret[0], "initial state")

	_, _, err = s.Transact(id, 1, "inc", nil, gas.WithLimit(100_000))
	require.NoError(t, err)

	ret, err = s.Query(id, 2, "get", nil, gas.WithLimit(100_000))
	require.NoError(t, err)
	require.Equal(t, byte(4), ret[0], "state after inc")
}

func TestQueryNeverCommits(t *testing.T) {
	s, bytecode := newTestState(t)
	id, err := s.Deploy(bytecode, []byte{9, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}

	// "inc" is a state-mutating entry point: its WASM type declares two
	// results (newStateLen, retLen). Query requires exactly one result, so
	// invoking a transact entry through Query must fail fast rather than
	// silently run it read-only.
	if _, err := s.Query(id, 1, "inc", nil, gas.WithLimit(100_000)); !vmerrors.Is(err, vmerrors.EngineTrap) {
		t.Fatalf("Query(inc) err = %v, want EngineTrap", err)
	}

	ret, err := s.Query(id, 2, "get", nil, gas.WithLimit(100_000))
	if err != nil {
		t.Fatal(err)
	}
	if ret[0] != 9 {
		t.Errorf("state after failed Query(inc) = %d, want unchanged 9", ret[0])
	}
}

func TestDeployDuplicateIDFails(t *testing.T) {
	s, bytecode := newTestState(t)
	if _, err := s.Deploy(bytecode, []byte{0, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Deploy(bytecode, []byte{0, 0, 0, 0}); !vmerrors.Is(err, vmerrors.InvalidData) {
		t.Fatalf("second deploy err = %v, want InvalidData", err)
	}
}

func TestRootChangesAfterTransactNotAfterQuery(t *testing.T) {
	s, bytecode := newTestState(t)
	id, err := s.Deploy(bytecode, []byte{1, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	r0, err := s.Root()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Query(id, 1, "get", nil, gas.WithLimit(100_000)); err != nil {
		t.Fatal(err)
	}
	r1, err := s.Root()
	if err != nil {
		t.Fatal(err)
	}
	if r0 != r1 {
		t.Error("root changed after a pure Query")
	}

	if _, _, err := s.Transact(id, 1, "inc", nil, gas.WithLimit(100_000)); err != nil {
		t.Fatal(err)
	}
	r2, err := s.Root()
	if err != nil {
		t.Fatal(err)
	}
	if r0 == r2 {
		t.Error("root did not change after a committed Transact")
	}
}

func TestRootIsOrderIndependent(t *testing.T) {
	s, bytecode := newTestState(t)
	if _, err := s.Deploy(bytecode, []byte{1, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	otherBytecode := []byte{0xC0, 0xFF, 0xEE, 0x02}
	s.cache.Put(wasm.DigestOf(otherBytecode), s.sched.Version, counterModule())
	if _, err := s.Deploy(otherBytecode, []byte{2, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}

	r1, err := s.Root()
	if err != nil {
		t.Fatal(err)
	}

	s2, bytecode2 := newTestState(t)
	// deploy B before A this time; Root must not depend on insertion order.
	otherBytecode2 := []byte{0xC0, 0xFF, 0xEE, 0x02}
	s2.cache.Put(wasm.DigestOf(otherBytecode2), s2.sched.Version, counterModule())
	if _, err := s2.Deploy(otherBytecode2, []byte{2, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if _, err := s2.Deploy(bytecode2, []byte{1, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	r2, err := s2.Root()
	if err != nil {
		t.Fatal(err)
	}
	if r1 != r2 {
		t.Errorf("root depends on deploy order: got %s, want %s", spew.Sdump(r1), spew.Sdump(r2))
	}
}

func TestPersistAndRestoreRoundtrip(t *testing.T) {
	s, bytecode := newTestState(t)
	id, err := s.Deploy(bytecode, []byte{5, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	s2, _ := newTestState(t)
	s2.st = s.st
	if err := s2.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	ret, err := s2.Query(id, 1, "get", nil, gas.WithLimit(100_000))
	if err != nil {
		t.Fatalf("Query after restore: %v", err)
	}
	if ret[0] != 5 {
		t.Errorf("restored state = %d, want 5", ret[0])
	}
}

func TestReservedHostModuleBypassesRecords(t *testing.T) {
	s, _ := newTestState(t)
	s.RegisterHostModule(1, echoModule{})
	id := ReservedID(1)

	ret, err := s.Query(id, 1, "ping", []byte("hello"), gas.WithLimit(1000))
	if err != nil {
		t.Fatalf("Query(host): %v", err)
	}
	if string(ret) != "hello" {
		t.Errorf("ret = %q, want %q", ret, "hello")
	}

	if _, exists := s.records[id]; exists {
		t.Error("host module must not occupy a records map slot")
	}
}

type echoModule struct{}

func (echoModule) Query(entryName string, arg []byte, caller common.ContractID, meter *gas.Meter) ([]byte, error) {
	return arg, nil
}

func (echoModule) Transact(entryName string, arg []byte, caller common.ContractID, meter *gas.Meter) ([]byte, []vm.Event, error) {
	return arg, nil, nil
}
