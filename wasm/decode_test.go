package wasm

import (
	"testing"

	"github.com/dusk-network/rusk-vm/config"
	"github.com/dusk-network/rusk-vm/gas"
)

// incWasm is a hand-encoded minimal module exporting a single function
// `inc(x) -> x + 1`, used to exercise the real binary decoder end to end
// without needing an external WASM toolchain.
var incWasm = []byte{
	0x00, 0x61, 0x73, 0x6D, // magic "\0asm"
	0x01, 0x00, 0x00, 0x00, // version 1

	// type section: 1 functype (i32) -> (i32)
	0x01, 0x06,
	0x01, 0x60, 0x01, 0x7F, 0x01, 0x7F,

	// function section: 1 function, type 0
	0x03, 0x02,
	0x01, 0x00,

	// export section: export func 0 as "inc"
	0x07, 0x07,
	0x01, 0x03, 'i', 'n', 'c', 0x00, 0x00,

	// code section: 1 body, no locals, local.get 0; i32.const 1; i32.add; end
	0x0A, 0x09,
	0x01, 0x07,
	0x00, 0x20, 0x00, 0x41, 0x01, 0x6A, 0x0B,
}

func TestDecodeMinimalModule(t *testing.T) {
	m, err := Decode(incWasm)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(m.Types) != 1 {
		t.Fatalf("len(Types) = %d, want 1", len(m.Types))
	}
	if len(m.Functions) != 1 {
		t.Fatalf("len(Functions) = %d, want 1", len(m.Functions))
	}
	if len(m.Functions[0].Body) != 3 {
		t.Fatalf("len(Body) = %d, want 3 (local.get, i32.const, i32.add)", len(m.Functions[0].Body))
	}
	idx, ok := m.ExportedFunc("inc")
	if !ok || idx != 0 {
		t.Fatalf("ExportedFunc(inc) = (%d, %v), want (0, true)", idx, ok)
	}
}

func TestDecodeAndRunMinimalModule(t *testing.T) {
	m, err := Decode(incWasm)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	sched := config.Default()
	if err := Validate(m, sched); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	Instrument(m, sched)

	mem := NewMemory(1, 1)
	meter := gas.WithLimit(10000)
	it, err := NewInterpreter(m, mem, nil, meter)
	if err != nil {
		t.Fatal(err)
	}
	results, err := it.CallExported("inc", []int64{41})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0] != 42 {
		t.Fatalf("inc(41) = %v, want [42]", results)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	bad := append([]byte{}, incWasm...)
	bad[0] = 0xFF
	if _, err := Decode(bad); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	if _, err := Decode(incWasm[:10]); err == nil {
		t.Fatal("expected error for truncated module")
	}
}
