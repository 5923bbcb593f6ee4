package wasm

import (
	"testing"

	"github.com/dusk-network/rusk-vm/config"
)

func TestValidateRejectsFloatGlobal(t *testing.T) {
	b := NewBuilder()
	b.Global(ValF32, false, []Instr{{Op: OpF32Const}})
	m := b.Build()
	if err := Validate(m, config.Default()); err == nil {
		t.Fatal("expected float global to be rejected")
	}
}

func TestValidateRejectsFloatParam(t *testing.T) {
	b := NewBuilder()
	b.Type([]ValType{ValF64}, nil)
	m := b.Build()
	if err := Validate(m, config.Default()); err == nil {
		t.Fatal("expected float param type to be rejected")
	}
}

func TestValidateAllowsFloatsWhenScheduleAllowsThem(t *testing.T) {
	b := NewBuilder()
	b.Global(ValF32, false, []Instr{{Op: OpF32Const}})
	m := b.Build()
	sched := config.Default()
	sched.ForbidFloats = false
	if err := Validate(m, sched); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsSecondTable(t *testing.T) {
	b := NewBuilder()
	b.Table(1, 1, true)
	b.Table(1, 1, true)
	m := b.Build()
	if err := Validate(m, config.Default()); err == nil {
		t.Fatal("expected second table to be rejected")
	}
}

func TestValidateRejectsOversizedTable(t *testing.T) {
	b := NewBuilder()
	sched := config.Default()
	b.Table(sched.MaxTableSize+1, sched.MaxTableSize+1, true)
	m := b.Build()
	if err := Validate(m, sched); err == nil {
		t.Fatal("expected oversized table to be rejected")
	}
}
