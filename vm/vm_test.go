package vm

import (
	"testing"

	"github.com/dusk-network/rusk-vm/common"
	"github.com/dusk-network/rusk-vm/config"
	"github.com/dusk-network/rusk-vm/contract"
	"github.com/dusk-network/rusk-vm/gas"
	"github.com/dusk-network/rusk-vm/store"
	"github.com/dusk-network/rusk-vm/vmerrors"
	"github.com/dusk-network/rusk-vm/wasm"
)

// fakeView is a minimal in-memory NetworkView for exercising Execute
// without pulling in the network package (which itself depends on vm).
type fakeView struct {
	records map[common.ContractID]contract.Record
	hosts   map[common.ContractID]HostModule
}

func newFakeView() *fakeView {
	return &fakeView{records: map[common.ContractID]contract.Record{}, hosts: map[common.ContractID]HostModule{}}
}

func (v *fakeView) Lookup(id common.ContractID) (contract.Record, bool) {
	r, ok := v.records[id]
	return r, ok
}

func (v *fakeView) Replace(id common.ContractID, rec contract.Record) {
	v.records[id] = rec
}

func (v *fakeView) HostModuleFor(id common.ContractID) (HostModule, bool) {
	hm, ok := v.hosts[id]
	return hm, ok
}

// counterModule builds a tiny contract with a 4-byte i32 counter as its
// state: "get" echoes the state back unchanged (it is already sitting at
// scratch offset 0 by the time the entry point runs), "inc" loads it,
// adds one, stores it back, and reports a 4-byte new state with an empty
// return value.
func counterModule() *wasm.Module {
	b := wasm.NewBuilder()
	b.Memory(1, 4, true)

	queryType := b.Type([]wasm.ValType{wasm.ValI32, wasm.ValI32, wasm.ValI32, wasm.ValI32}, []wasm.ValType{wasm.ValI32})
	get := b.Func(queryType, nil, []wasm.Instr{
		wasm.LocalGet(1), // stateLen
	})
	b.Export("get", get)

	transactType := b.Type([]wasm.ValType{wasm.ValI32, wasm.ValI32, wasm.ValI32, wasm.ValI32}, []wasm.ValType{wasm.ValI32, wasm.ValI32})
	inc := b.Func(transactType, nil, []wasm.Instr{
		wasm.I32Const(0), // store address, kept under the loaded+incremented value
		wasm.I32Const(0), // load address
		wasm.I32Load(0),
		wasm.I32Const(1),
		wasm.Simple(wasm.OpI32Add),
		wasm.I32Store(0),
		wasm.I32Const(4), // newStateLen
		wasm.I32Const(0), // retLen
	})
	b.Export("inc", inc)

	return b.Build()
}

func deployCounter(t *testing.T, view *fakeView, st *store.Store, initial int32) common.ContractID {
	t.Helper()
	m := counterModule()
	sched := config.Default()
	if err := wasm.Validate(m, sched); err != nil {
		t.Fatalf("validating counter module: %v", err)
	}
	wasm.Instrument(m, sched)

	var bytecode [4]byte
	bytecode[0], bytecode[1], bytecode[2], bytecode[3] = 0xC0, 0xFF, 0xEE, byte(initial)
	var state [4]byte
	state[0] = byte(initial)
	rec, err := contract.New(bytecode[:], state[:], st)
	if err != nil {
		t.Fatalf("creating record: %v", err)
	}
	id := common.BytesToID([]byte("counter"))
	view.Replace(id, rec)
	return id
}

// This test fakes out wasm.Compile's decode step by directly constructing
// and validating the module, then swapping Execute's compile path with a
// pre-populated cache entry keyed on the fixture's own "bytecode" digest,
// matching the real pipeline's cache-hit path.
func primeCache(cache *wasm.Cache, bytecode []byte, sched *config.Schedule, m *wasm.Module) {
	cache.Put(wasm.DigestOf(bytecode), sched.Version, m)
}

func TestExecuteQueryEchoesState(t *testing.T) {
	view := newFakeView()
	st := store.New(store.NewMemoryBackend())
	sched := config.Default()
	cache, err := wasm.NewCache(8)
	if err != nil {
		t.Fatal(err)
	}

	id := deployCounter(t, view, st, 7)
	rec, _ := view.Lookup(id)
	m := counterModule()
	wasm.Instrument(m, sched)
	primeCache(cache, rec.Bytecode, sched, m)

	meter := gas.WithLimit(1_000_000)
	ret, _, err := Execute(view, st, cache, sched, Query, id, 1, "get", nil, meter, common.ZeroID)
	if err != nil {
		t.Fatalf("Execute(get) = %v", err)
	}
	if len(ret) != 4 || ret[0] != 7 {
		t.Errorf("get returned %v, want state starting with 7", ret)
	}
}

func TestExecuteTransactIncrementsAndPersists(t *testing.T) {
	view := newFakeView()
	st := store.New(store.NewMemoryBackend())
	sched := config.Default()
	cache, err := wasm.NewCache(8)
	if err != nil {
		t.Fatal(err)
	}

	id := deployCounter(t, view, st, 7)
	rec, _ := view.Lookup(id)
	m := counterModule()
	wasm.Instrument(m, sched)
	primeCache(cache, rec.Bytecode, sched, m)

	meter := gas.WithLimit(1_000_000)
	_, _, err = Execute(view, st, cache, sched, Transact, id, 1, "inc", nil, meter, common.ZeroID)
	if err != nil {
		t.Fatalf("Execute(inc) = %v", err)
	}

	meter2 := gas.WithLimit(1_000_000)
	ret, _, err := Execute(view, st, cache, sched, Query, id, 2, "get", nil, meter2, common.ZeroID)
	if err != nil {
		t.Fatalf("Execute(get) after inc = %v", err)
	}
	if ret[0] != 8 {
		t.Errorf("state after inc = %d, want 8", ret[0])
	}
}

func TestExecuteUnknownContractFails(t *testing.T) {
	view := newFakeView()
	st := store.New(store.NewMemoryBackend())
	sched := config.Default()
	cache, err := wasm.NewCache(8)
	if err != nil {
		t.Fatal(err)
	}
	meter := gas.WithLimit(1000)
	_, _, err = Execute(view, st, cache, sched, Query, common.BytesToID([]byte("nope")), 1, "get", nil, meter, common.ZeroID)
	if !vmerrors.Is(err, vmerrors.UnknownContract) {
		t.Fatalf("err = %v, want UnknownContract", err)
	}
}

func TestExecuteHostModuleBypassesStore(t *testing.T) {
	view := newFakeView()
	st := store.New(store.NewMemoryBackend())
	sched := config.Default()
	cache, err := wasm.NewCache(8)
	if err != nil {
		t.Fatal(err)
	}
	id := common.BytesToID([]byte("host-echo"))
	view.hosts[id] = &echoHostModule{}

	meter := gas.WithLimit(1000)
	ret, _, err := Execute(view, st, cache, sched, Query, id, 1, "ping", []byte("hi"), meter, common.ZeroID)
	if err != nil {
		t.Fatalf("Execute(host) = %v", err)
	}
	if string(ret) != "hi" {
		t.Errorf("ret = %q, want %q", ret, "hi")
	}
}

type echoHostModule struct{}

func (echoHostModule) Query(entryName string, arg []byte, caller common.ContractID, meter *gas.Meter) ([]byte, error) {
	return arg, nil
}

func (echoHostModule) Transact(entryName string, arg []byte, caller common.ContractID, meter *gas.Meter) ([]byte, []Event, error) {
	return arg, nil, nil
}
