package wasm

// Builder constructs a Module programmatically, for use by tests and by
// other packages' fixtures that need a Module without encoding and decoding
// real .wasm bytes. Grounded on the teacher's core/vm tests, which build
// core.Program/Contract values directly in Go rather than loading compiled
// artifacts from disk.
type Builder struct {
	m *Module
}

// NewBuilder starts an empty module.
func NewBuilder() *Builder {
	return &Builder{m: &Module{}}
}

// Type registers a function signature, returning its index.
func (b *Builder) Type(params, results []ValType) uint32 {
	b.m.Types = append(b.m.Types, FuncType{Params: params, Results: results})
	return uint32(len(b.m.Types) - 1)
}

// ImportFunc registers an imported function of the given type, returning
// its function index (imports are always numbered before local functions).
func (b *Builder) ImportFunc(modName, name string, typeIdx uint32) uint32 {
	b.m.Imports = append(b.m.Imports, Import{Module: modName, Name: name, Kind: ImportFunc, TypeIndex: typeIdx})
	b.m.ImportedFuncCount++
	return b.m.ImportedFuncCount - 1
}

// Func defines a local function body, returning its function index.
func (b *Builder) Func(typeIdx uint32, locals []ValType, body []Instr) uint32 {
	b.m.Functions = append(b.m.Functions, Function{TypeIndex: typeIdx, Locals: locals, Body: body})
	return b.m.ImportedFuncCount + uint32(len(b.m.Functions)-1)
}

// Export exposes funcIdx under name (spec.md §6's entry-point convention).
func (b *Builder) Export(name string, funcIdx uint32) {
	b.m.Exports = append(b.m.Exports, Export{Name: name, Kind: ExportFunc, Index: funcIdx})
}

// Memory declares the module's single linear memory.
func (b *Builder) Memory(initialPages, maxPages uint32, hasMax bool) {
	b.m.Memories = append(b.m.Memories, MemoryType{InitialPages: initialPages, MaxPages: maxPages, HasMax: hasMax})
}

// Table declares the module's single table.
func (b *Builder) Table(initial, max uint32, hasMax bool) {
	b.m.Tables = append(b.m.Tables, TableType{InitialSize: initial, MaxSize: max, HasMax: hasMax})
}

// Global defines a module-level global with a constant initializer.
func (b *Builder) Global(t ValType, mutable bool, init []Instr) uint32 {
	b.m.Globals = append(b.m.Globals, Global{Type: t, Mutable: mutable, Init: init})
	return uint32(len(b.m.Globals) - 1)
}

// Build returns the constructed module. Callers still need to run it
// through Validate and Instrument (or Compile, if going through a Cache)
// before executing it, exactly as a decoded module would be.
func (b *Builder) Build() *Module {
	return b.m
}

// Convenience constructors for single instructions with no nested body,
// used heavily by test fixtures.

func I32Const(v int32) Instr { return Instr{Op: OpI32Const, I32Val: v} }
func I64Const(v int64) Instr { return Instr{Op: OpI64Const, I64Val: v} }
func LocalGet(idx uint32) Instr { return Instr{Op: OpLocalGet, Index: idx} }
func LocalSet(idx uint32) Instr { return Instr{Op: OpLocalSet, Index: idx} }
func LocalTee(idx uint32) Instr { return Instr{Op: OpLocalTee, Index: idx} }
func GlobalGet(idx uint32) Instr { return Instr{Op: OpGlobalGet, Index: idx} }
func GlobalSet(idx uint32) Instr { return Instr{Op: OpGlobalSet, Index: idx} }
func Call(idx uint32) Instr { return Instr{Op: OpCall, Index: idx} }
func Simple(op Opcode) Instr { return Instr{Op: op} }
func Br(depth uint32) Instr { return Instr{Op: OpBr, Index: depth} }
func BrIf(depth uint32) Instr { return Instr{Op: OpBrIf, Index: depth} }

// Block builds a structured block/loop/if instruction.
func Block(op Opcode, bt BlockType, body, elseBody []Instr) Instr {
	return Instr{Op: op, BlockT: bt, Body: body, Else: elseBody}
}

// I32Load/I32Store build memory instructions with the given byte offset.
func I32Load(offset uint32) Instr  { return Instr{Op: OpI32Load, Offset: offset} }
func I32Store(offset uint32) Instr { return Instr{Op: OpI32Store, Offset: offset} }
