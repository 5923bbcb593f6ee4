package abi

import (
	"bytes"
	"testing"

	"github.com/dusk-network/rusk-vm/common"
	"github.com/dusk-network/rusk-vm/store"
	"github.com/dusk-network/rusk-vm/vmerrors"
	"github.com/dusk-network/rusk-vm/wasm"
)

// fakeContext is a minimal in-memory stand-in for vm.CallContext, enough to
// exercise Dispatcher's marshaling without pulling in the vm package.
type fakeContext struct {
	callee, caller common.ContractID
	blockHeight    uint64
	stackDepth     uint32
	charged        uint64
	events         []string
	debugMsgs      [][]byte
	st             *store.Store

	queryArg, queryName string
	queryResult         []byte
}

func newFakeContext() *fakeContext {
	return &fakeContext{st: store.New(store.NewMemoryBackend())}
}

func (f *fakeContext) Query(target common.ContractID, name string, arg []byte, gasLimit uint64) ([]byte, error) {
	f.queryName = name
	f.queryArg = string(arg)
	return f.queryResult, nil
}
func (f *fakeContext) Transact(target common.ContractID, name string, arg []byte, gasLimit uint64) ([]byte, error) {
	return f.queryResult, nil
}
func (f *fakeContext) Callee() common.ContractID       { return f.callee }
func (f *fakeContext) Caller() common.ContractID       { return f.caller }
func (f *fakeContext) BlockHeight() uint64              { return f.blockHeight }
func (f *fakeContext) SelfHash() common.ContractID      { return f.callee }
func (f *fakeContext) CallStackDepth() uint32           { return f.stackDepth }
func (f *fakeContext) ChargeExplicit(n uint64) error    { f.charged += n; return nil }
func (f *fakeContext) ChargeHostCall(name string, n uint64) error {
	f.charged += n
	return nil
}
func (f *fakeContext) GasConsumed() uint64 { return f.charged }
func (f *fakeContext) GasLeft() uint64     { return 1_000_000 - f.charged }
func (f *fakeContext) Debug(msg []byte)    { f.debugMsgs = append(f.debugMsgs, msg) }
func (f *fakeContext) Emit(name string, data []byte) {
	f.events = append(f.events, name+":"+string(data))
}
func (f *fakeContext) StorePut(value []byte) (store.Identifier, error) { return f.st.Put(value) }
func (f *fakeContext) StoreGet(id store.Identifier) ([]byte, error)    { return f.st.Get(id) }
func (f *fakeContext) Hash(data []byte) [32]byte {
	var out [32]byte
	copy(out[:], data)
	return out
}

func TestDispatcherCalleeWritesID(t *testing.T) {
	ctx := newFakeContext()
	ctx.callee = common.BytesToID([]byte("contract-one"))
	d := Dispatcher{Ctx: ctx}
	mem := wasm.NewMemory(1, 1)

	if _, err := d.InvokeHost("env", "callee", []int64{100}, mem); err != nil {
		t.Fatal(err)
	}
	got, err := mem.Read(100, common.IDLength)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, ctx.callee.Bytes()) {
		t.Errorf("callee bytes = %x, want %x", got, ctx.callee.Bytes())
	}
}

func TestDispatcherQueryRoundtrip(t *testing.T) {
	ctx := newFakeContext()
	ctx.queryResult = []byte("query-reply")
	d := Dispatcher{Ctx: ctx}
	mem := wasm.NewMemory(1, 1)

	target := common.BytesToID([]byte("target-contract"))
	if err := mem.Write(0, target.Bytes()); err != nil {
		t.Fatal(err)
	}
	arg := []byte("hello")
	if err := mem.Write(100, arg); err != nil {
		t.Fatal(err)
	}
	name := []byte("balance")
	if err := mem.Write(200, name); err != nil {
		t.Fatal(err)
	}

	res, err := d.InvokeHost("env", "query", []int64{0, 100, int64(len(arg)), 200, int64(len(name)), 5000}, mem)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0] != int64(len(ctx.queryResult)) {
		t.Fatalf("result = %v, want [%d]", res, len(ctx.queryResult))
	}
	if ctx.queryArg != "hello" || ctx.queryName != "balance" {
		t.Errorf("query dispatched with arg=%q name=%q", ctx.queryArg, ctx.queryName)
	}
	got, err := mem.Read(0, uint32(len(ctx.queryResult)))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, ctx.queryResult) {
		t.Errorf("result bytes = %q, want %q", got, ctx.queryResult)
	}
}

func TestDispatcherStorePutGetRoundtrip(t *testing.T) {
	ctx := newFakeContext()
	d := Dispatcher{Ctx: ctx}
	mem := wasm.NewMemory(1, 1)

	value := []byte("persist-me")
	if err := mem.Write(0, value); err != nil {
		t.Fatal(err)
	}
	if _, err := d.InvokeHost("env", "store_put", []int64{0, int64(len(value)), 100}, mem); err != nil {
		t.Fatal(err)
	}
	idRaw, err := mem.Read(100, 16)
	if err != nil {
		t.Fatal(err)
	}
	if err := mem.Write(200, idRaw); err != nil {
		t.Fatal(err)
	}

	res, err := d.InvokeHost("env", "store_get", []int64{200, 300, int64(len(value))}, mem)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0] != int64(len(value)) {
		t.Fatalf("store_get result = %v, want [%d]", res, len(value))
	}
	got, err := mem.Read(300, uint32(len(value)))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("store_get bytes = %q, want %q", got, value)
	}
}

func TestDispatcherStoreGetTooSmallDestinationTraps(t *testing.T) {
	ctx := newFakeContext()
	d := Dispatcher{Ctx: ctx}
	mem := wasm.NewMemory(1, 1)

	value := []byte("a-rather-long-value")
	id, err := ctx.st.Put(value)
	if err != nil {
		t.Fatal(err)
	}
	if err := mem.Write(0, id.Bytes()); err != nil {
		t.Fatal(err)
	}
	_, err = d.InvokeHost("env", "store_get", []int64{0, 100, 2}, mem)
	if !vmerrors.Is(err, vmerrors.InvalidData) {
		t.Fatalf("err = %v, want InvalidData", err)
	}
}

func TestDispatcherEmitAndDebug(t *testing.T) {
	ctx := newFakeContext()
	d := Dispatcher{Ctx: ctx}
	mem := wasm.NewMemory(1, 1)

	data := []byte("payload")
	name := []byte("transfer")
	if err := mem.Write(0, data); err != nil {
		t.Fatal(err)
	}
	if err := mem.Write(100, name); err != nil {
		t.Fatal(err)
	}
	if _, err := d.InvokeHost("env", "emit", []int64{0, int64(len(data)), 100, int64(len(name))}, mem); err != nil {
		t.Fatal(err)
	}
	if len(ctx.events) != 1 || ctx.events[0] != "transfer:payload" {
		t.Errorf("events = %v", ctx.events)
	}

	if _, err := d.InvokeHost("env", "debug", []int64{0, int64(len(data))}, mem); err != nil {
		t.Fatal(err)
	}
	if len(ctx.debugMsgs) != 1 || string(ctx.debugMsgs[0]) != "payload" {
		t.Errorf("debugMsgs = %v", ctx.debugMsgs)
	}
}

func TestDispatcherUnknownImportTraps(t *testing.T) {
	ctx := newFakeContext()
	d := Dispatcher{Ctx: ctx}
	mem := wasm.NewMemory(1, 1)
	_, err := d.InvokeHost("env", "nonexistent", nil, mem)
	if !vmerrors.Is(err, vmerrors.EngineTrap) {
		t.Fatalf("err = %v, want EngineTrap", err)
	}
}
