package wasm

import (
	"testing"

	"github.com/dusk-network/rusk-vm/config"
	"github.com/dusk-network/rusk-vm/gas"
	"github.com/dusk-network/rusk-vm/vmerrors"
)

func compileBuilt(t *testing.T, b *Builder, sched *config.Schedule) *Module {
	t.Helper()
	m := b.Build()
	if err := Validate(m, sched); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	Instrument(m, sched)
	return m
}

// TestInterpreterAdd exercises a minimal exported function: add(a, b) -> a+b.
func TestInterpreterAdd(t *testing.T) {
	b := NewBuilder()
	ft := b.Type([]ValType{ValI32, ValI32}, []ValType{ValI32})
	fn := b.Func(ft, nil, []Instr{
		LocalGet(0),
		LocalGet(1),
		Simple(OpI32Add),
	})
	b.Export("add", fn)

	sched := config.Default()
	m := compileBuilt(t, b, sched)

	mem := NewMemory(1, 1)
	meter := gas.WithLimit(100000)
	it, err := NewInterpreter(m, mem, nil, meter)
	if err != nil {
		t.Fatal(err)
	}
	results, err := it.CallExported("add", []int64{2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0] != 5 {
		t.Fatalf("add(2,3) = %v, want [5]", results)
	}
	if meter.Spent() == 0 {
		t.Error("expected some gas to be spent")
	}
}

// TestInterpreterFibonacciRecursion exercises recursive guest-to-guest
// calls through OpCall, matching spec.md §8's Fibonacci recursion scenario.
func TestInterpreterFibonacciRecursion(t *testing.T) {
	b := NewBuilder()
	ft := b.Type([]ValType{ValI32}, []ValType{ValI32})

	// fib(n): if n < 2 { n } else { fib(n-1) + fib(n-2) }
	const fibIdx = 0
	body := []Instr{
		Block(OpIf, BlockType{HasResult: true, Result: ValI32},
			[]Instr{LocalGet(0)},
			[]Instr{
				LocalGet(0), I32Const(1), Simple(OpI32Sub), Call(fibIdx),
				LocalGet(0), I32Const(2), Simple(OpI32Sub), Call(fibIdx),
				Simple(OpI32Add),
			},
		),
	}
	// prepend the condition for the if: n < 2
	cond := []Instr{LocalGet(0), I32Const(2), Simple(OpI32LtS)}
	fullBody := append(cond, body...)

	fn := b.Func(ft, nil, fullBody)
	if fn != fibIdx {
		t.Fatalf("fib registered at index %d, want %d", fn, fibIdx)
	}
	b.Export("fib", fn)

	sched := config.Default()
	m := compileBuilt(t, b, sched)

	mem := NewMemory(1, 1)
	meter := gas.WithLimit(10_000_000)
	it, err := NewInterpreter(m, mem, nil, meter)
	if err != nil {
		t.Fatal(err)
	}
	results, err := it.CallExported("fib", []int64{10})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0] != 55 {
		t.Fatalf("fib(10) = %v, want [55]", results)
	}
}

// TestInterpreterOutOfGasTraps exercises spec.md §8's out-of-gas scenario:
// an insufficient limit must surface an OutOfGas error, not a panic or a
// silently wrong result.
func TestInterpreterOutOfGasTraps(t *testing.T) {
	b := NewBuilder()
	ft := b.Type(nil, []ValType{ValI32})
	// An unbounded loop: loop { br 0 }. Never reaches `end` on its own, so it
	// must be stopped by gas exhaustion.
	fn := b.Func(ft, nil, []Instr{
		Block(OpLoop, BlockType{}, []Instr{Br(0)}, nil),
		I32Const(0),
	})
	b.Export("spin", fn)

	sched := config.Default()
	m := compileBuilt(t, b, sched)

	mem := NewMemory(1, 1)
	meter := gas.WithLimit(1000)
	it, err := NewInterpreter(m, mem, nil, meter)
	if err != nil {
		t.Fatal(err)
	}
	_, err = it.CallExported("spin", nil)
	if !vmerrors.Is(err, vmerrors.OutOfGas) {
		t.Fatalf("expected out-of-gas error, got %v", err)
	}
}

func TestInterpreterLocalTeeKeepsValueOnStack(t *testing.T) {
	b := NewBuilder()
	ft := b.Type([]ValType{ValI32}, []ValType{ValI32})
	fn := b.Func(ft, []ValType{ValI32}, []Instr{
		LocalGet(0),
		LocalTee(1),
		Simple(OpDrop),
		LocalGet(1),
	})
	b.Export("tee", fn)

	sched := config.Default()
	m := compileBuilt(t, b, sched)
	mem := NewMemory(1, 1)
	meter := gas.WithLimit(10000)
	it, err := NewInterpreter(m, mem, nil, meter)
	if err != nil {
		t.Fatal(err)
	}
	results, err := it.CallExported("tee", []int64{7})
	if err != nil {
		t.Fatal(err)
	}
	if results[0] != 7 {
		t.Fatalf("tee result = %v, want [7]", results)
	}
}
