package wasm

import (
	"fmt"

	"github.com/dusk-network/rusk-vm/gas"
	"github.com/dusk-network/rusk-vm/vmerrors"
)

// HostInvoker is implemented by the caller (vm.CallContext, via the abi
// package) to satisfy imported functions. It is the seam between this
// package's pure AST interpreter and spec.md §4.G's host ABI, keeping wasm
// free of any dependency on vm/abi/network so the import graph stays
// acyclic (abi and vm both import wasm, not the reverse).
type HostInvoker interface {
	InvokeHost(modName, name string, args []int64, mem *Memory) ([]int64, error)
}

// Interpreter walks a compiled Module's AST, grounded on the teacher's
// core/vm/vm.go Run loop, generalized from a flat program-counter dispatch
// over a byte slice to a recursive walk over nested Instr bodies (see the
// package doc comment). Gas is charged per instruction via Meter, exactly
// as core/vm/gas.go's calculateGasAndSize charges before executing each
// opcode.
type Interpreter struct {
	Module *Module
	Memory *Memory
	Host   HostInvoker
	Meter  *gas.Meter

	globals   []int64
	callDepth uint32
}

// NewInterpreter constructs an interpreter ready to run exported functions
// of m. Globals are initialized by evaluating each Global.Init expression
// against an interpreter instance with no locals, matching WASM's
// restriction that global initializers are themselves constant expressions.
func NewInterpreter(m *Module, mem *Memory, host HostInvoker, meter *gas.Meter) (*Interpreter, error) {
	it := &Interpreter{Module: m, Memory: mem, Host: host, Meter: meter}
	it.globals = make([]int64, len(m.Globals))
	for i, g := range m.Globals {
		f := &frame{locals: nil, stack: make([]int64, 0, 8)}
		if _, err := it.execList(g.Init, f); err != nil {
			return nil, fmt.Errorf("wasm: evaluating global %d initializer: %w", i, err)
		}
		if len(f.stack) != 1 {
			return nil, fmt.Errorf("wasm: global %d initializer left %d values on stack, want 1", i, len(f.stack))
		}
		it.globals[i] = f.stack[0]
	}
	return it, nil
}

// CallExported runs the function exported under name with the given
// argument values (spec.md §4.F step 4: "invoke the entry-point export").
func (it *Interpreter) CallExported(name string, args []int64) ([]int64, error) {
	idx, ok := it.Module.ExportedFunc(name)
	if !ok {
		return nil, vmerrors.New(vmerrors.EngineTrap, fmt.Sprintf("no exported function %q", name))
	}
	return it.callFunc(idx, args)
}

type ctrlKind int

const (
	ctrlNone ctrlKind = iota
	ctrlBranch
	ctrlReturn
)

type ctrlSignal struct {
	kind  ctrlKind
	depth uint32
}

type frame struct {
	locals []int64
	stack  []int64
}

func (f *frame) push(v int64, maxHeight uint32) error {
	if maxHeight != 0 && uint32(len(f.stack)) >= maxHeight {
		return vmerrors.New(vmerrors.EngineTrap, "operand stack height exceeds configured maximum")
	}
	f.stack = append(f.stack, v)
	return nil
}

func (f *frame) pop() (int64, error) {
	n := len(f.stack)
	if n == 0 {
		return 0, vmerrors.New(vmerrors.EngineTrap, "operand stack underflow")
	}
	v := f.stack[n-1]
	f.stack = f.stack[:n-1]
	return v, nil
}

func (it *Interpreter) callFunc(funcIdx uint32, args []int64) ([]int64, error) {
	ft, ok := it.Module.FuncTypeOf(funcIdx)
	if !ok {
		return nil, vmerrors.New(vmerrors.EngineTrap, fmt.Sprintf("unknown function index %d", funcIdx))
	}

	if funcIdx < it.Module.ImportedFuncCount {
		modName, name, _ := it.Module.ImportNameOf(funcIdx)
		return it.Host.InvokeHost(modName, name, args, it.Memory)
	}

	it.callDepth++
	defer func() { it.callDepth-- }()
	if it.Module.MaxStackHeight != 0 && it.callDepth > it.Module.MaxStackHeight {
		return nil, vmerrors.New(vmerrors.EngineTrap, "call frame recursion exceeds configured maximum")
	}

	fn := it.Module.Functions[funcIdx-it.Module.ImportedFuncCount]
	if len(args) != len(ft.Params) {
		return nil, vmerrors.New(vmerrors.EngineTrap, fmt.Sprintf("function %d expects %d args, got %d", funcIdx, len(ft.Params), len(args)))
	}
	locals := make([]int64, len(ft.Params)+len(fn.Locals))
	copy(locals, args)

	f := &frame{locals: locals, stack: make([]int64, 0, 8)}
	sig, err := it.execList(fn.Body, f)
	if err != nil {
		return nil, err
	}
	if sig.kind == ctrlBranch {
		return nil, vmerrors.New(vmerrors.EngineTrap, "branch escaped function body")
	}

	want := len(ft.Results)
	if len(f.stack) < want {
		return nil, vmerrors.New(vmerrors.EngineTrap, fmt.Sprintf("function %d returned %d values, want %d", funcIdx, len(f.stack), want))
	}
	return f.stack[len(f.stack)-want:], nil
}

// execList executes instrs in order against f, returning the control signal
// that terminated execution (ctrlNone if the list ran to completion).
func (it *Interpreter) execList(instrs []Instr, f *frame) (ctrlSignal, error) {
	for i := range instrs {
		ins := &instrs[i]
		if ins.GasCost != 0 {
			if err := it.Meter.Charge(ins.GasCost); err != nil {
				return ctrlSignal{}, err
			}
		}
		sig, err := it.execOne(ins, f)
		if err != nil {
			return ctrlSignal{}, err
		}
		if sig.kind != ctrlNone {
			return sig, nil
		}
	}
	return ctrlSignal{}, nil
}

func (it *Interpreter) execOne(ins *Instr, f *frame) (ctrlSignal, error) {
	maxH := it.Module.MaxStackHeight
	switch ins.Op {
	case OpUnreachable:
		return ctrlSignal{}, vmerrors.New(vmerrors.EngineTrap, "unreachable instruction executed")
	case OpNop:
		// no-op

	case OpBlock:
		sig, err := it.execList(ins.Body, f)
		if err != nil {
			return ctrlSignal{}, err
		}
		return resolveBlockSignal(sig), nil

	case OpLoop:
		for {
			sig, err := it.execList(ins.Body, f)
			if err != nil {
				return ctrlSignal{}, err
			}
			if sig.kind == ctrlBranch && sig.depth == 0 {
				continue
			}
			return resolveBlockSignal(sig), nil
		}

	case OpIf:
		cond, err := f.pop()
		if err != nil {
			return ctrlSignal{}, err
		}
		body := ins.Else
		if cond != 0 {
			body = ins.Body
		}
		sig, err := it.execList(body, f)
		if err != nil {
			return ctrlSignal{}, err
		}
		return resolveBlockSignal(sig), nil

	case OpBr:
		return ctrlSignal{kind: ctrlBranch, depth: ins.Index}, nil
	case OpBrIf:
		cond, err := f.pop()
		if err != nil {
			return ctrlSignal{}, err
		}
		if cond != 0 {
			return ctrlSignal{kind: ctrlBranch, depth: ins.Index}, nil
		}
	case OpBrTable:
		idx, err := f.pop()
		if err != nil {
			return ctrlSignal{}, err
		}
		label := ins.Default
		if idx >= 0 && int(idx) < len(ins.Labels) {
			label = ins.Labels[idx]
		}
		return ctrlSignal{kind: ctrlBranch, depth: label}, nil
	case OpReturn:
		return ctrlSignal{kind: ctrlReturn}, nil

	case OpCall:
		ft, ok := it.Module.FuncTypeOf(ins.Index)
		if !ok {
			return ctrlSignal{}, vmerrors.New(vmerrors.EngineTrap, fmt.Sprintf("unknown call target %d", ins.Index))
		}
		args, err := popN(f, len(ft.Params))
		if err != nil {
			return ctrlSignal{}, err
		}
		results, err := it.callFunc(ins.Index, args)
		if err != nil {
			return ctrlSignal{}, err
		}
		for _, r := range results {
			if err := f.push(r, maxH); err != nil {
				return ctrlSignal{}, err
			}
		}
	case OpCallIndirect:
		return ctrlSignal{}, vmerrors.New(vmerrors.EngineTrap, "call_indirect is not supported")

	case OpDrop:
		if _, err := f.pop(); err != nil {
			return ctrlSignal{}, err
		}
	case OpSelect:
		cond, err := f.pop()
		if err != nil {
			return ctrlSignal{}, err
		}
		b, err := f.pop()
		if err != nil {
			return ctrlSignal{}, err
		}
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, err
		}
		v := b
		if cond != 0 {
			v = a
		}
		if err := f.push(v, maxH); err != nil {
			return ctrlSignal{}, err
		}

	case OpLocalGet:
		if int(ins.Index) >= len(f.locals) {
			return ctrlSignal{}, vmerrors.New(vmerrors.EngineTrap, "local index out of range")
		}
		if err := f.push(f.locals[ins.Index], maxH); err != nil {
			return ctrlSignal{}, err
		}
	case OpLocalSet, OpLocalTee:
		v, err := f.pop()
		if err != nil {
			return ctrlSignal{}, err
		}
		if int(ins.Index) >= len(f.locals) {
			return ctrlSignal{}, vmerrors.New(vmerrors.EngineTrap, "local index out of range")
		}
		f.locals[ins.Index] = v
		if ins.Op == OpLocalTee {
			if err := f.push(v, maxH); err != nil {
				return ctrlSignal{}, err
			}
		}
	case OpGlobalGet:
		if int(ins.Index) >= len(it.globals) {
			return ctrlSignal{}, vmerrors.New(vmerrors.EngineTrap, "global index out of range")
		}
		if err := f.push(it.globals[ins.Index], maxH); err != nil {
			return ctrlSignal{}, err
		}
	case OpGlobalSet:
		v, err := f.pop()
		if err != nil {
			return ctrlSignal{}, err
		}
		if int(ins.Index) >= len(it.globals) {
			return ctrlSignal{}, vmerrors.New(vmerrors.EngineTrap, "global index out of range")
		}
		it.globals[ins.Index] = v

	case OpI32Load:
		addr, err := f.pop()
		if err != nil {
			return ctrlSignal{}, err
		}
		v, err := it.Memory.LoadI32(uint32(addr) + ins.Offset)
		if err != nil {
			return ctrlSignal{}, err
		}
		if err := f.push(int64(v), maxH); err != nil {
			return ctrlSignal{}, err
		}
	case OpI64Load:
		addr, err := f.pop()
		if err != nil {
			return ctrlSignal{}, err
		}
		v, err := it.Memory.LoadI64(uint32(addr) + ins.Offset)
		if err != nil {
			return ctrlSignal{}, err
		}
		if err := f.push(v, maxH); err != nil {
			return ctrlSignal{}, err
		}
	case OpI32Store:
		v, err := f.pop()
		if err != nil {
			return ctrlSignal{}, err
		}
		addr, err := f.pop()
		if err != nil {
			return ctrlSignal{}, err
		}
		if err := it.Memory.StoreI32(uint32(addr)+ins.Offset, int32(v)); err != nil {
			return ctrlSignal{}, err
		}
	case OpI64Store:
		v, err := f.pop()
		if err != nil {
			return ctrlSignal{}, err
		}
		addr, err := f.pop()
		if err != nil {
			return ctrlSignal{}, err
		}
		if err := it.Memory.StoreI64(uint32(addr)+ins.Offset, v); err != nil {
			return ctrlSignal{}, err
		}
	case OpMemSize:
		if err := f.push(int64(it.Memory.Pages()), maxH); err != nil {
			return ctrlSignal{}, err
		}
	case OpMemGrow:
		delta, err := f.pop()
		if err != nil {
			return ctrlSignal{}, err
		}
		if it.Module.MemoryGrowCost != 0 {
			if err := it.Meter.Charge(it.Module.MemoryGrowCost * uint64(delta)); err != nil {
				return ctrlSignal{}, err
			}
		}
		prev, err := it.Memory.Grow(uint32(delta))
		if err != nil {
			if err := f.push(-1, maxH); err != nil {
				return ctrlSignal{}, err
			}
		} else if err := f.push(int64(prev), maxH); err != nil {
			return ctrlSignal{}, err
		}

	case OpI32Const:
		if err := f.push(int64(ins.I32Val), maxH); err != nil {
			return ctrlSignal{}, err
		}
	case OpI64Const:
		if err := f.push(ins.I64Val, maxH); err != nil {
			return ctrlSignal{}, err
		}

	default:
		if err := it.execNumeric(ins, f); err != nil {
			return ctrlSignal{}, err
		}
	}
	return ctrlSignal{}, nil
}

// resolveBlockSignal adjusts a branch signal returned by a nested body for
// the block/if semantics: depth 0 means "exit this construct", anything
// deeper propagates up one level. Loop handles depth 0 itself (restart) and
// calls this only for signals it passes through.
func resolveBlockSignal(sig ctrlSignal) ctrlSignal {
	if sig.kind != ctrlBranch {
		return sig
	}
	if sig.depth == 0 {
		return ctrlSignal{}
	}
	return ctrlSignal{kind: ctrlBranch, depth: sig.depth - 1}
}

func popN(f *frame, n int) ([]int64, error) {
	if len(f.stack) < n {
		return nil, vmerrors.New(vmerrors.EngineTrap, "operand stack underflow")
	}
	out := make([]int64, n)
	copy(out, f.stack[len(f.stack)-n:])
	f.stack = f.stack[:len(f.stack)-n]
	return out, nil
}
