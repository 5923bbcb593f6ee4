package wasm

import (
	"fmt"

	"github.com/dusk-network/rusk-vm/config"
	"github.com/dusk-network/rusk-vm/vmerrors"
)

// Validate enforces spec.md §4.B steps 2-3 against a decoded module: reject
// floats anywhere in the module's declared types (step 2), and reject more
// than one table or a table whose initial size exceeds the schedule's cap
// (step 3). Called once before instrumentation and once after (step 6), the
// second pass catching anything the instrumenter itself might have
// introduced (it does not, but the re-check is cheap and matches the
// teacher's belt-and-braces validation in core/vm's opcode dispatch, which
// re-checks stack depth on every CALL rather than trusting a single
// up-front pass).
func Validate(m *Module, sched *config.Schedule) error {
	if sched.ForbidFloats {
		if err := rejectFloats(m); err != nil {
			return err
		}
	}
	if len(m.Tables) > 1 {
		return vmerrors.New(vmerrors.InvalidWASMModule, fmt.Sprintf("module declares %d tables, at most 1 allowed", len(m.Tables)))
	}
	for _, t := range m.Tables {
		if t.InitialSize > sched.MaxTableSize {
			return vmerrors.New(vmerrors.InvalidWASMModule, fmt.Sprintf("table initial size %d exceeds schedule max %d", t.InitialSize, sched.MaxTableSize))
		}
	}
	for _, mem := range m.Memories {
		if mem.InitialPages > sched.MaxMemoryPages {
			return vmerrors.New(vmerrors.InvalidWASMModule, fmt.Sprintf("memory initial pages %d exceeds schedule max %d", mem.InitialPages, sched.MaxMemoryPages))
		}
	}
	return nil
}

func rejectFloats(m *Module) error {
	for i, ft := range m.Types {
		for _, p := range ft.Params {
			if p.IsFloat() {
				return vmerrors.New(vmerrors.InvalidWASMModule, fmt.Sprintf("type %d has float param", i))
			}
		}
		for _, r := range ft.Results {
			if r.IsFloat() {
				return vmerrors.New(vmerrors.InvalidWASMModule, fmt.Sprintf("type %d has float result", i))
			}
		}
	}
	for i, g := range m.Globals {
		if g.Type.IsFloat() {
			return vmerrors.New(vmerrors.InvalidWASMModule, fmt.Sprintf("global %d has float type", i))
		}
	}
	for i, f := range m.Functions {
		for _, l := range f.Locals {
			if l.IsFloat() {
				return vmerrors.New(vmerrors.InvalidWASMModule, fmt.Sprintf("function %d declares float local", i))
			}
		}
		if err := rejectFloatInstrs(f.Body); err != nil {
			return fmt.Errorf("function %d: %w", i, err)
		}
	}
	return nil
}

func rejectFloatInstrs(instrs []Instr) error {
	for _, ins := range instrs {
		if isFloatOpcode(ins.Op) {
			return vmerrors.New(vmerrors.InvalidWASMModule, fmt.Sprintf("float opcode 0x%x", byte(ins.Op)))
		}
		if err := rejectFloatInstrs(ins.Body); err != nil {
			return err
		}
		if err := rejectFloatInstrs(ins.Else); err != nil {
			return err
		}
	}
	return nil
}
