package abi

import (
	"github.com/dusk-network/rusk-vm/common"
	"github.com/dusk-network/rusk-vm/store"
	"github.com/dusk-network/rusk-vm/vmerrors"
	"github.com/dusk-network/rusk-vm/wasm"
)

// Dispatcher marshals wasm.HostInvoker calls (a flat (modName, name,
// args []int64, mem) tuple) into Context method calls, decoding and
// encoding the pointer/length conventions of spec.md §4.G. It is the only
// part of the ABI that touches guest linear memory directly; Context
// implementations work exclusively in terms of Go byte slices.
type Dispatcher struct {
	Ctx Context
}

// hostResultOffset is where query/transact write their returned bytes so
// the guest can read them back by the length the import call returns. It
// shares wire.ScratchOffset's value (0) but is declared independently since
// this is the host-to-guest direction rather than wire's engine-to-guest
// invocation layout.
const hostResultOffset = 0

// InvokeHost implements wasm.HostInvoker.
func (d Dispatcher) InvokeHost(modName, name string, args []int64, mem *wasm.Memory) ([]int64, error) {
	if modName != "env" {
		return nil, vmerrors.New(vmerrors.EngineTrap, "unknown import module "+modName)
	}
	switch name {
	case "query":
		return d.query(name, args, mem)
	case "transact":
		return d.transact(name, args, mem)
	case "callee":
		return d.writeID(name, args, mem, d.Ctx.Callee())
	case "caller":
		return d.writeID(name, args, mem, d.Ctx.Caller())
	case "self_hash":
		return d.writeID(name, args, mem, d.Ctx.SelfHash())
	case "block_height":
		return d.writeU64(name, args, mem, d.Ctx.BlockHeight())
	case "call_stack_depth":
		if err := d.Ctx.ChargeHostCall(name, 0); err != nil {
			return nil, err
		}
		return []int64{int64(d.Ctx.CallStackDepth())}, nil
	case "gas":
		if len(args) != 1 {
			return nil, vmerrors.New(vmerrors.EngineTrap, "gas: expected 1 argument")
		}
		if err := d.Ctx.ChargeExplicit(uint64(args[0])); err != nil {
			return nil, err
		}
		return nil, nil
	case "gas_consumed":
		if err := d.Ctx.ChargeHostCall(name, 0); err != nil {
			return nil, err
		}
		return []int64{int64(d.Ctx.GasConsumed())}, nil
	case "gas_left":
		if err := d.Ctx.ChargeHostCall(name, 0); err != nil {
			return nil, err
		}
		return []int64{int64(d.Ctx.GasLeft())}, nil
	case "debug":
		return d.debug(name, args, mem)
	case "emit":
		return d.emit(name, args, mem)
	case "store_put":
		return d.storePut(name, args, mem)
	case "store_get":
		return d.storeGet(name, args, mem)
	case "hash":
		return d.hash(name, args, mem)
	default:
		return nil, vmerrors.New(vmerrors.EngineTrap, "unknown host import "+name)
	}
}

// query(targetPtr, bufPtr, bufLen, namePtr, nameLen, gasLimit) -> retLen
func (d Dispatcher) query(name string, args []int64, mem *wasm.Memory) ([]int64, error) {
	if len(args) != 6 {
		return nil, vmerrors.New(vmerrors.EngineTrap, "query: expected 6 arguments")
	}
	targetPtr, bufPtr, bufLen, namePtr, nameLen, gasLimit := u32s(args[0]), u32s(args[1]), u32s(args[2]), u32s(args[3]), u32s(args[4]), uint64(args[5])
	if err := d.Ctx.ChargeHostCall(name, uint64(bufLen)+uint64(nameLen)); err != nil {
		return nil, err
	}
	targetRaw, err := mem.Read(targetPtr, common.IDLength)
	if err != nil {
		return nil, err
	}
	arg, err := mem.Read(bufPtr, bufLen)
	if err != nil {
		return nil, err
	}
	entryName, err := mem.Read(namePtr, nameLen)
	if err != nil {
		return nil, err
	}
	ret, err := d.Ctx.Query(common.BytesToID(targetRaw), string(entryName), arg, gasLimit)
	if err != nil {
		return nil, err
	}
	if err := mem.Write(hostResultOffset, ret); err != nil {
		return nil, err
	}
	return []int64{int64(len(ret))}, nil
}

// transact(targetPtr, bufPtr, bufLen, namePtr, nameLen, gasLimit) -> retLen
func (d Dispatcher) transact(name string, args []int64, mem *wasm.Memory) ([]int64, error) {
	if len(args) != 6 {
		return nil, vmerrors.New(vmerrors.EngineTrap, "transact: expected 6 arguments")
	}
	targetPtr, bufPtr, bufLen, namePtr, nameLen, gasLimit := u32s(args[0]), u32s(args[1]), u32s(args[2]), u32s(args[3]), u32s(args[4]), uint64(args[5])
	if err := d.Ctx.ChargeHostCall(name, uint64(bufLen)+uint64(nameLen)); err != nil {
		return nil, err
	}
	targetRaw, err := mem.Read(targetPtr, common.IDLength)
	if err != nil {
		return nil, err
	}
	arg, err := mem.Read(bufPtr, bufLen)
	if err != nil {
		return nil, err
	}
	entryName, err := mem.Read(namePtr, nameLen)
	if err != nil {
		return nil, err
	}
	ret, err := d.Ctx.Transact(common.BytesToID(targetRaw), string(entryName), arg, gasLimit)
	if err != nil {
		return nil, err
	}
	if err := mem.Write(hostResultOffset, ret); err != nil {
		return nil, err
	}
	return []int64{int64(len(ret))}, nil
}

// callee/caller/self_hash(outPtr): writes a 32-byte id at outPtr.
func (d Dispatcher) writeID(name string, args []int64, mem *wasm.Memory, id common.ContractID) ([]int64, error) {
	if len(args) != 1 {
		return nil, vmerrors.New(vmerrors.EngineTrap, name+": expected 1 argument")
	}
	if err := d.Ctx.ChargeHostCall(name, common.IDLength); err != nil {
		return nil, err
	}
	if err := mem.Write(u32s(args[0]), id.Bytes()); err != nil {
		return nil, err
	}
	return nil, nil
}

// block_height(outPtr): writes a little-endian u64 at outPtr.
func (d Dispatcher) writeU64(name string, args []int64, mem *wasm.Memory, v uint64) ([]int64, error) {
	if len(args) != 1 {
		return nil, vmerrors.New(vmerrors.EngineTrap, name+": expected 1 argument")
	}
	if err := d.Ctx.ChargeHostCall(name, 8); err != nil {
		return nil, err
	}
	if err := mem.StoreI64(u32s(args[0]), int64(v)); err != nil {
		return nil, err
	}
	return nil, nil
}

// debug(bufPtr, bufLen)
func (d Dispatcher) debug(name string, args []int64, mem *wasm.Memory) ([]int64, error) {
	if len(args) != 2 {
		return nil, vmerrors.New(vmerrors.EngineTrap, "debug: expected 2 arguments")
	}
	bufPtr, bufLen := u32s(args[0]), u32s(args[1])
	if err := d.Ctx.ChargeHostCall(name, uint64(bufLen)); err != nil {
		return nil, err
	}
	msg, err := mem.Read(bufPtr, bufLen)
	if err != nil {
		return nil, err
	}
	d.Ctx.Debug(msg)
	return nil, nil
}

// emit(dataPtr, dataLen, namePtr, nameLen)
func (d Dispatcher) emit(name string, args []int64, mem *wasm.Memory) ([]int64, error) {
	if len(args) != 4 {
		return nil, vmerrors.New(vmerrors.EngineTrap, "emit: expected 4 arguments")
	}
	dataPtr, dataLen, namePtr, nameLen := u32s(args[0]), u32s(args[1]), u32s(args[2]), u32s(args[3])
	if err := d.Ctx.ChargeHostCall(name, uint64(dataLen)+uint64(nameLen)); err != nil {
		return nil, err
	}
	data, err := mem.Read(dataPtr, dataLen)
	if err != nil {
		return nil, err
	}
	eventName, err := mem.Read(namePtr, nameLen)
	if err != nil {
		return nil, err
	}
	d.Ctx.Emit(string(eventName), data)
	return nil, nil
}

// store_put(bufPtr, bufLen, idOutPtr) -> writes the 16-byte identifier at
// idOutPtr.
func (d Dispatcher) storePut(name string, args []int64, mem *wasm.Memory) ([]int64, error) {
	if len(args) != 3 {
		return nil, vmerrors.New(vmerrors.EngineTrap, "store_put: expected 3 arguments")
	}
	bufPtr, bufLen, idOutPtr := u32s(args[0]), u32s(args[1]), u32s(args[2])
	if err := d.Ctx.ChargeHostCall(name, uint64(bufLen)); err != nil {
		return nil, err
	}
	value, err := mem.Read(bufPtr, bufLen)
	if err != nil {
		return nil, err
	}
	id, err := d.Ctx.StorePut(value)
	if err != nil {
		return nil, err
	}
	if err := mem.Write(idOutPtr, id.Bytes()); err != nil {
		return nil, err
	}
	return nil, nil
}

// store_get(idInPtr, destPtr, destMaxLen) -> writtenLen
func (d Dispatcher) storeGet(name string, args []int64, mem *wasm.Memory) ([]int64, error) {
	if len(args) != 3 {
		return nil, vmerrors.New(vmerrors.EngineTrap, "store_get: expected 3 arguments")
	}
	idInPtr, destPtr, destMaxLen := u32s(args[0]), u32s(args[1]), u32s(args[2])
	if err := d.Ctx.ChargeHostCall(name, 0); err != nil {
		return nil, err
	}
	idRaw, err := mem.Read(idInPtr, 16)
	if err != nil {
		return nil, err
	}
	id, err := store.IdentifierFromBytes(idRaw)
	if err != nil {
		return nil, err
	}
	value, err := d.Ctx.StoreGet(id)
	if err != nil {
		return nil, err
	}
	if uint32(len(value)) > destMaxLen {
		return nil, vmerrors.New(vmerrors.InvalidData, "store_get: destination buffer too small")
	}
	if err := d.Ctx.ChargeHostCall(name, uint64(len(value))); err != nil {
		return nil, err
	}
	if err := mem.Write(destPtr, value); err != nil {
		return nil, err
	}
	return []int64{int64(len(value))}, nil
}

// hash(bufPtr, bufLen, outPtr) writes a 32-byte hash at outPtr.
func (d Dispatcher) hash(name string, args []int64, mem *wasm.Memory) ([]int64, error) {
	if len(args) != 3 {
		return nil, vmerrors.New(vmerrors.EngineTrap, "hash: expected 3 arguments")
	}
	bufPtr, bufLen, outPtr := u32s(args[0]), u32s(args[1]), u32s(args[2])
	if err := d.Ctx.ChargeHostCall(name, uint64(bufLen)); err != nil {
		return nil, err
	}
	data, err := mem.Read(bufPtr, bufLen)
	if err != nil {
		return nil, err
	}
	out := d.Ctx.Hash(data)
	if err := mem.Write(outPtr, out[:]); err != nil {
		return nil, err
	}
	return nil, nil
}

func u32s(v int64) uint32 { return uint32(v) }
