package wasm

// FuncType is a WASM function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// ImportKind distinguishes the four WASM import kinds; the core only ever
// imports functions (the host ABI of spec.md §4.G), but the decoder parses
// the others so it can validate real-world modules that declare them.
type ImportKind byte

const (
	ImportFunc ImportKind = iota
	ImportTable
	ImportMemory
	ImportGlobal
)

// Import is one entry of the WASM import section.
type Import struct {
	Module string
	Name   string
	Kind   ImportKind
	// TypeIndex is valid when Kind == ImportFunc.
	TypeIndex uint32
}

// TableType describes the module's table section. spec.md §4.B step 3
// rejects a module with more than one table, so Module.Tables has at most
// one entry post-validation.
type TableType struct {
	InitialSize uint32
	MaxSize     uint32
	HasMax      bool
}

// MemoryType describes the module's memory section.
type MemoryType struct {
	InitialPages uint32
	MaxPages     uint32
	HasMax       bool
}

// Global is one module-defined global.
type Global struct {
	Type    ValType
	Mutable bool
	Init    []Instr // constant initializer expression
}

// ExportKind mirrors ImportKind for the export section.
type ExportKind byte

const (
	ExportFunc ExportKind = iota
	ExportTable
	ExportMemory
	ExportGlobal
)

// Export is one entry of the WASM export section. Entry-point naming
// (spec.md §6: "Each entry point is a separately exported function whose
// name matches the declared NAME of the argument type") is resolved through
// this table.
type Export struct {
	Name  string
	Kind  ExportKind
	Index uint32
}

// Function is one function defined in the module's function+code sections:
// a type index, its declared locals (beyond its params), and its body.
type Function struct {
	TypeIndex uint32
	Locals    []ValType // one entry per local slot, params not included
	Body      []Instr
}

// Module is the fully decoded representation of spec.md §4.B's "raw
// bytecode" after parsing (step 1), before validation/instrumentation.
type Module struct {
	Types     []FuncType
	Imports   []Import
	Functions []Function
	Tables    []TableType
	Memories  []MemoryType
	Globals   []Global
	Exports   []Export
	StartFunc uint32
	HasStart  bool

	// ImportedFuncCount caches len of Imports with Kind==ImportFunc; WASM
	// numbers imported functions first, so a "function index" of i refers
	// to an import when i < ImportedFuncCount and to
	// Functions[i-ImportedFuncCount] otherwise.
	ImportedFuncCount uint32

	// MaxStackHeight and MemoryGrowCost are filled in by Instrument, copied
	// from the schedule used to compile this module, so the interpreter
	// never needs to thread a *config.Schedule through call frames.
	MaxStackHeight uint32
	MemoryGrowCost uint64
}

// FuncTypeOf resolves the effective FuncType for a function index across
// both the import and locally-defined function spaces.
func (m *Module) FuncTypeOf(funcIdx uint32) (FuncType, bool) {
	if funcIdx < m.ImportedFuncCount {
		var seen uint32
		for _, imp := range m.Imports {
			if imp.Kind != ImportFunc {
				continue
			}
			if seen == funcIdx {
				if int(imp.TypeIndex) >= len(m.Types) {
					return FuncType{}, false
				}
				return m.Types[imp.TypeIndex], true
			}
			seen++
		}
		return FuncType{}, false
	}
	local := funcIdx - m.ImportedFuncCount
	if int(local) >= len(m.Functions) {
		return FuncType{}, false
	}
	ti := m.Functions[local].TypeIndex
	if int(ti) >= len(m.Types) {
		return FuncType{}, false
	}
	return m.Types[ti], true
}

// ImportNameOf returns the (module, name) of an imported function index, or
// ok=false if funcIdx is not an import.
func (m *Module) ImportNameOf(funcIdx uint32) (modName, name string, ok bool) {
	if funcIdx >= m.ImportedFuncCount {
		return "", "", false
	}
	var seen uint32
	for _, imp := range m.Imports {
		if imp.Kind != ImportFunc {
			continue
		}
		if seen == funcIdx {
			return imp.Module, imp.Name, true
		}
		seen++
	}
	return "", "", false
}

// ExportedFunc resolves an export name to a function index (spec.md §6:
// entry points are separately exported functions).
func (m *Module) ExportedFunc(name string) (uint32, bool) {
	for _, e := range m.Exports {
		if e.Kind == ExportFunc && e.Name == name {
			return e.Index, true
		}
	}
	return 0, false
}

// Instr is one AST node of a function body. Control instructions
// (block/loop/if) carry their nested bodies directly rather than flat
// branch targets computed over a byte offset — see the package doc comment
// for why an AST interpreter was chosen over literal bytecode rewriting.
type Instr struct {
	Op Opcode

	// Immediates; which ones are meaningful depends on Op.
	I32Val   int32
	I64Val   int64
	Index    uint32 // local/global/func/type index
	Table    uint32 // call_indirect's table index
	Offset   uint32 // memory instruction offset
	Labels   []uint32
	Default  uint32
	BlockT   BlockType
	Body     []Instr // block/loop/if-then body
	Else     []Instr // if-else body

	// GasCost is the precomputed charge for executing this single
	// instruction, filled in by Instrument (spec.md §4.B step 4).
	GasCost uint64
}
