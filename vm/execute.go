package vm

import (
	"errors"
	"fmt"

	"github.com/dusk-network/rusk-vm/abi"
	"github.com/dusk-network/rusk-vm/common"
	"github.com/dusk-network/rusk-vm/config"
	"github.com/dusk-network/rusk-vm/gas"
	"github.com/dusk-network/rusk-vm/log"
	"github.com/dusk-network/rusk-vm/store"
	"github.com/dusk-network/rusk-vm/vmerrors"
	"github.com/dusk-network/rusk-vm/wasm"
	"github.com/dusk-network/rusk-vm/wire"
)

// queryResultCount/transactResultCount are the number of i32 results
// spec.md §6's wire convention requires of each kind of entry point: a
// query returns the byte length of its archived return value; a transact
// additionally returns the byte length of its archived new state, written
// first into the scratch region (see wire.ReadTransactResult).
const (
	queryResultCount    = 1
	transactResultCount = 2
)

// Execute is the single recursive entry point of spec.md §4.F: compiling
// (or fetching from cache) id's module, instantiating a fresh instance,
// wiring the host ABI, invoking its exported entry point, and reconciling
// the result back into view on a successful Transact. Top-level callers
// (network.State's Query/Transact) and nested abi.Context.Query/Transact
// calls both go through this same function — the only difference is who
// derives meter's limit and who reconciles it afterward, grounded on the
// teacher's core/vm/vm.go Run being the single loop both external
// transaction execution and internal CALL opcodes share.
func Execute(
	view NetworkView,
	st *store.Store,
	cache *wasm.Cache,
	sched *config.Schedule,
	kind CallKind,
	id common.ContractID,
	blockHeight uint64,
	entryName string,
	arg []byte,
	meter *gas.Meter,
	callerID common.ContractID,
) ([]byte, []Event, error) {
	depth := new(uint32)
	return execute(view, st, cache, sched, kind, id, blockHeight, entryName, arg, meter, callerID, depth)
}

func execute(
	view NetworkView,
	st *store.Store,
	cache *wasm.Cache,
	sched *config.Schedule,
	kind CallKind,
	id common.ContractID,
	blockHeight uint64,
	entryName string,
	arg []byte,
	meter *gas.Meter,
	callerID common.ContractID,
	depth *uint32,
) ([]byte, []Event, error) {
	*depth++
	defer func() { *depth-- }()
	if sched.MaxStackHeight != 0 && *depth > sched.MaxStackHeight {
		return nil, nil, vmerrors.WithID(vmerrors.EngineTrap, id, "call stack depth exceeds configured maximum", nil)
	}

	if hm, ok := view.HostModuleFor(id); ok {
		return executeHostModule(hm, kind, id, entryName, arg, meter, callerID)
	}

	rec, ok := view.Lookup(id)
	if !ok {
		return nil, nil, vmerrors.WithID(vmerrors.UnknownContract, id, "no such contract", nil)
	}

	module, err := wasm.Compile(cache, rec.Bytecode, sched)
	if err != nil {
		return nil, nil, vmerrors.WithID(vmerrors.InvalidWASMModule, id, "compiling contract bytecode", err)
	}

	state, err := rec.State(st)
	if err != nil {
		return nil, nil, vmerrors.WithID(vmerrors.PersistenceError, id, "loading contract state", err)
	}

	mem := newInstanceMemory(module, sched)
	stateOffset, argOffset, err := wire.WriteInvocation(mem, state, arg)
	if err != nil {
		return nil, nil, vmerrors.WithID(vmerrors.EngineTrap, id, "writing invocation scratch region", err)
	}

	var events []Event
	ctx := &CallContext{
		st:          st,
		sched:       sched,
		kind:        kind,
		callee:      id,
		caller:      callerID,
		selfHash:    common.Blake2b256(rec.Bytecode),
		blockHeight: blockHeight,
		meter:       meter,
		depth:       depth,
		events:      &events,
	}
	ctx.runChild = func(childKind CallKind, target common.ContractID, name string, childArg []byte, gasLimit uint64) ([]byte, error) {
		child := meter.Child(gasLimit)
		result, childEvents, err := execute(view, st, cache, sched, childKind, target, blockHeight, name, childArg, child, id, depth)
		meter.Reconcile(child)
		events = append(events, childEvents...)
		return result, err
	}

	dispatcher := abi.Dispatcher{Ctx: ctx}
	interp, err := wasm.NewInterpreter(module, mem, dispatcher, meter)
	if err != nil {
		return nil, nil, vmerrors.WithID(vmerrors.InstrumentationError, id, "initializing module instance", err)
	}

	log.Debugf("executing %s %s.%s depth=%d gas_left=%d", kind, id.Hex(), entryName, *depth, meter.Left())

	args := []int64{int64(stateOffset), int64(len(state)), int64(argOffset), int64(len(arg))}
	results, err := interp.CallExported(entryName, args)
	if err != nil {
		return nil, nil, wrapTrap(id, err)
	}

	switch kind {
	case Query:
		if len(results) != queryResultCount {
			return nil, nil, vmerrors.WithID(vmerrors.EngineTrap, id, fmt.Sprintf("query entry point %q returned %d results, want %d", entryName, len(results), queryResultCount), nil)
		}
		ret, err := wire.ReadQueryResult(mem, uint32(results[0]))
		if err != nil {
			return nil, nil, vmerrors.WithID(vmerrors.EngineTrap, id, "reading query result", err)
		}
		return ret, events, nil

	case Transact:
		if len(results) != transactResultCount {
			return nil, nil, vmerrors.WithID(vmerrors.EngineTrap, id, fmt.Sprintf("transact entry point %q returned %d results, want %d", entryName, len(results), transactResultCount), nil)
		}
		newState, ret, err := wire.ReadTransactResult(mem, uint32(results[0]), uint32(results[1]))
		if err != nil {
			return nil, nil, vmerrors.WithID(vmerrors.EngineTrap, id, "reading transact result", err)
		}
		newRec, err := rec.WithState(newState, st)
		if err != nil {
			return nil, nil, vmerrors.WithID(vmerrors.PersistenceError, id, "archiving new contract state", err)
		}
		view.Replace(id, newRec)
		return ret, events, nil

	default:
		return nil, nil, vmerrors.New(vmerrors.EngineTrap, fmt.Sprintf("unknown call kind %d", kind))
	}
}

func executeHostModule(hm HostModule, kind CallKind, id common.ContractID, entryName string, arg []byte, meter *gas.Meter, callerID common.ContractID) ([]byte, []Event, error) {
	switch kind {
	case Query:
		ret, err := hm.Query(entryName, arg, callerID, meter)
		if err != nil {
			return nil, nil, wrapTrap(id, err)
		}
		return ret, nil, nil
	case Transact:
		ret, events, err := hm.Transact(entryName, arg, callerID, meter)
		if err != nil {
			return nil, nil, wrapTrap(id, err)
		}
		return ret, events, nil
	default:
		return nil, nil, vmerrors.New(vmerrors.EngineTrap, fmt.Sprintf("unknown call kind %d", kind))
	}
}

// wrapTrap attributes id to err if it isn't already attributed, matching
// spec.md §7's "the top-level caller sees one typed error with enough
// context... to attribute blame" at every frame, not just the outermost
// one: a deeply nested trap keeps the id of the frame that actually failed.
func wrapTrap(id common.ContractID, err error) error {
	var e *vmerrors.Error
	if errors.As(err, &e) {
		if e.HasID {
			return err
		}
		e.ContractID = id
		e.HasID = true
		return e
	}
	return vmerrors.WithID(vmerrors.EngineTrap, id, "contract execution trapped", err)
}

// newInstanceMemory builds the linear memory a fresh instance starts with,
// from the module's declared memory section if present, or a single page
// growing up to the schedule's configured ceiling otherwise.
func newInstanceMemory(m *wasm.Module, sched *config.Schedule) *wasm.Memory {
	if len(m.Memories) == 0 {
		return wasm.NewMemory(1, sched.MaxMemoryPages)
	}
	mt := m.Memories[0]
	max := sched.MaxMemoryPages
	if mt.HasMax && mt.MaxPages < max {
		max = mt.MaxPages
	}
	return wasm.NewMemory(mt.InitialPages, max)
}
