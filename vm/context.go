package vm

import (
	"github.com/dusk-network/rusk-vm/common"
	"github.com/dusk-network/rusk-vm/config"
	"github.com/dusk-network/rusk-vm/gas"
	"github.com/dusk-network/rusk-vm/log"
	"github.com/dusk-network/rusk-vm/store"
)

// CallContext implements abi.Context for one frame of a call tree. It is
// deliberately a thin bag of references into the shared state the whole
// tree operates on (view, store, meter, event buffer) rather than owning
// copies of any of it, mirroring the teacher's core/vm/environment.go
// Context value threaded by value into every opcode handler.
type CallContext struct {
	st    *store.Store
	sched *config.Schedule
	kind  CallKind

	callee      common.ContractID
	caller      common.ContractID
	selfHash    common.ContractID
	blockHeight uint64

	meter  *gas.Meter
	depth  *uint32
	events *[]Event

	// runChild invokes a nested Query/Transact call by id. It is a plain
	// function value, set by Execute, rather than a method calling back
	// into vm's own Execute directly, so CallContext's shape doesn't need
	// to change if the recursive entry point's signature ever does.
	runChild func(kind CallKind, id common.ContractID, entryName string, arg []byte, gasLimit uint64) ([]byte, error)
}

func (c *CallContext) Query(target common.ContractID, name string, arg []byte, gasLimit uint64) ([]byte, error) {
	return c.runChild(Query, target, name, arg, gasLimit)
}

func (c *CallContext) Transact(target common.ContractID, name string, arg []byte, gasLimit uint64) ([]byte, error) {
	return c.runChild(Transact, target, name, arg, gasLimit)
}

func (c *CallContext) Callee() common.ContractID   { return c.callee }
func (c *CallContext) Caller() common.ContractID   { return c.caller }
func (c *CallContext) SelfHash() common.ContractID { return c.selfHash }
func (c *CallContext) BlockHeight() uint64         { return c.blockHeight }
func (c *CallContext) CallStackDepth() uint32      { return *c.depth }

func (c *CallContext) ChargeExplicit(n uint64) error { return c.meter.Charge(n) }

// ChargeHostCall charges the schedule's configured cost for crossing into
// host function name, plus its per-byte surcharge for nBytes (spec.md
// §4.G).
func (c *CallContext) ChargeHostCall(name string, nBytes uint64) error {
	return c.meter.Charge(c.sched.HostCostOf(name) + c.sched.HostCallBytePrice*nBytes)
}

func (c *CallContext) GasConsumed() uint64 { return c.meter.Spent() }
func (c *CallContext) GasLeft() uint64     { return c.meter.Left() }

// Debug routes a guest's debug message through the VM's own structured
// logger rather than recording it anywhere state-visible (spec.md §4.G:
// "debug: ... must never affect consensus-relevant state").
func (c *CallContext) Debug(msg []byte) {
	log.Debugf("contract debug: %s", log.Fields{"contract": c.callee.Hex(), "msg": string(msg)})
}

// Emit appends an event to the call tree's shared buffer, or drops it
// silently during a query (spec.md §4.G: "emit... no-op during queries").
func (c *CallContext) Emit(name string, data []byte) {
	if c.kind == Query {
		return
	}
	*c.events = append(*c.events, Event{Source: c.callee, Name: name, Data: data})
}

func (c *CallContext) StorePut(value []byte) (store.Identifier, error) {
	return c.st.Put(value)
}

func (c *CallContext) StoreGet(id store.Identifier) ([]byte, error) {
	return c.st.Get(id)
}

func (c *CallContext) Hash(data []byte) [32]byte {
	return common.Blake2b256(data)
}
