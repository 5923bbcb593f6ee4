package wasm

import (
	"testing"

	"github.com/dusk-network/rusk-vm/config"
)

func TestInstrumentAnnotatesGasCost(t *testing.T) {
	b := NewBuilder()
	ft := b.Type([]ValType{ValI32, ValI32}, []ValType{ValI32})
	fn := b.Func(ft, nil, []Instr{
		LocalGet(0),
		LocalGet(1),
		Simple(OpI32Add),
		Call(0),
	})
	m := b.Build()
	sched := config.Default()
	Instrument(m, sched)

	body := m.Functions[fn].Body
	if body[0].GasCost != sched.RegularOpCost {
		t.Errorf("local.get GasCost = %d, want %d", body[0].GasCost, sched.RegularOpCost)
	}
	if body[3].GasCost != sched.PerOpCost["call"] {
		t.Errorf("call GasCost = %d, want %d", body[3].GasCost, sched.PerOpCost["call"])
	}
	if m.MaxStackHeight != sched.MaxStackHeight {
		t.Errorf("MaxStackHeight = %d, want %d", m.MaxStackHeight, sched.MaxStackHeight)
	}
}

func TestInstrumentRecursesIntoNestedBlocks(t *testing.T) {
	b := NewBuilder()
	ft := b.Type(nil, nil)
	fn := b.Func(ft, nil, []Instr{
		Block(OpBlock, BlockType{}, []Instr{Simple(OpI32Add)}, nil),
	})
	m := b.Build()
	sched := config.Default()
	Instrument(m, sched)

	nested := m.Functions[fn].Body[0].Body[0]
	if nested.GasCost != sched.RegularOpCost {
		t.Errorf("nested instruction GasCost = %d, want %d", nested.GasCost, sched.RegularOpCost)
	}
}
