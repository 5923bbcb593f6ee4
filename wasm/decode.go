package wasm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dusk-network/rusk-vm/vmerrors"
)

var magic = [4]byte{0x00, 0x61, 0x73, 0x6D} // "\0asm"

const (
	secType     = 1
	secImport   = 2
	secFunction = 3
	secTable    = 4
	secMemory   = 5
	secGlobal   = 6
	secExport   = 7
	secStart    = 8
	secElement  = 9
	secCode     = 10
	secData     = 11
)

type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) eof() bool { return d.pos >= len(d.buf) }

func (d *decoder) byte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, errors.New("wasm: unexpected end of input")
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) bytesN(n int) ([]byte, error) {
	if d.pos+n > len(d.buf) {
		return nil, errors.New("wasm: unexpected end of input")
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// u32 reads an unsigned LEB128 varint.
func (d *decoder) u32() (uint32, error) {
	var result uint64
	var shift uint
	for {
		b, err := d.byte()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift > 35 {
			return 0, errors.New("wasm: varint too long")
		}
	}
	return uint32(result), nil
}

func (d *decoder) i32() (int32, error) {
	var result int64
	var shift uint
	var b byte
	var err error
	for {
		b, err = d.byte()
		if err != nil {
			return 0, err
		}
		result |= int64(b&0x7F) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && b&0x40 != 0 {
		result |= -1 << shift
	}
	return int32(result), nil
}

func (d *decoder) i64() (int64, error) {
	var result int64
	var shift uint
	var b byte
	var err error
	for {
		b, err = d.byte()
		if err != nil {
			return 0, err
		}
		result |= int64(b&0x7F) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && b&0x40 != 0 {
		result |= -1 << shift
	}
	return result, nil
}

func (d *decoder) name() (string, error) {
	n, err := d.u32()
	if err != nil {
		return "", err
	}
	b, err := d.bytesN(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *decoder) valType() (ValType, error) {
	b, err := d.byte()
	if err != nil {
		return 0, err
	}
	switch ValType(b) {
	case ValI32, ValI64, ValF32, ValF64:
		return ValType(b), nil
	default:
		return 0, fmt.Errorf("wasm: unknown value type 0x%x", b)
	}
}

// Decode parses raw WASM bytecode into a Module (spec.md §4.B step 1:
// "Parse and validate the module; reject malformed modules."). Validation
// against the schedule (float/table/memory rules) happens separately in
// Validate, matching the teacher's split between core/vm's opcode dispatch
// and params' separate rule tables.
func Decode(raw []byte) (*Module, error) {
	d := &decoder{buf: raw}
	if len(raw) < 8 {
		return nil, vmerrors.New(vmerrors.InvalidWASMModule, "module too short")
	}
	var gotMagic [4]byte
	copy(gotMagic[:], raw[0:4])
	if gotMagic != magic {
		return nil, vmerrors.New(vmerrors.InvalidWASMModule, "bad magic number")
	}
	version := binary.LittleEndian.Uint32(raw[4:8])
	if version != 1 {
		return nil, vmerrors.New(vmerrors.InvalidWASMModule, fmt.Sprintf("unsupported wasm version %d", version))
	}
	d.pos = 8

	m := &Module{}
	for !d.eof() {
		id, err := d.byte()
		if err != nil {
			return nil, vmerrors.Wrap(vmerrors.InvalidWASMModule, "reading section id", err)
		}
		size, err := d.u32()
		if err != nil {
			return nil, vmerrors.Wrap(vmerrors.InvalidWASMModule, "reading section size", err)
		}
		body, err := d.bytesN(int(size))
		if err != nil {
			return nil, vmerrors.Wrap(vmerrors.InvalidWASMModule, "reading section body", err)
		}
		sd := &decoder{buf: body}
		if err := decodeSection(m, id, sd); err != nil {
			return nil, vmerrors.Wrap(vmerrors.InvalidWASMModule, fmt.Sprintf("section %d", id), err)
		}
	}

	for _, imp := range m.Imports {
		if imp.Kind == ImportFunc {
			m.ImportedFuncCount++
		}
	}
	return m, nil
}

func decodeSection(m *Module, id byte, d *decoder) error {
	switch id {
	case secType:
		n, err := d.u32()
		if err != nil {
			return err
		}
		for i := uint32(0); i < n; i++ {
			form, err := d.byte()
			if err != nil {
				return err
			}
			if form != 0x60 {
				return fmt.Errorf("unexpected func type form 0x%x", form)
			}
			paramCount, err := d.u32()
			if err != nil {
				return err
			}
			params := make([]ValType, paramCount)
			for j := range params {
				if params[j], err = d.valType(); err != nil {
					return err
				}
			}
			resultCount, err := d.u32()
			if err != nil {
				return err
			}
			results := make([]ValType, resultCount)
			for j := range results {
				if results[j], err = d.valType(); err != nil {
					return err
				}
			}
			m.Types = append(m.Types, FuncType{Params: params, Results: results})
		}
	case secImport:
		n, err := d.u32()
		if err != nil {
			return err
		}
		for i := uint32(0); i < n; i++ {
			modName, err := d.name()
			if err != nil {
				return err
			}
			fieldName, err := d.name()
			if err != nil {
				return err
			}
			kind, err := d.byte()
			if err != nil {
				return err
			}
			imp := Import{Module: modName, Name: fieldName, Kind: ImportKind(kind)}
			switch ImportKind(kind) {
			case ImportFunc:
				if imp.TypeIndex, err = d.u32(); err != nil {
					return err
				}
			case ImportTable:
				if _, err := decodeTableType(d); err != nil {
					return err
				}
			case ImportMemory:
				if _, err := decodeMemoryType(d); err != nil {
					return err
				}
			case ImportGlobal:
				if _, err := d.valType(); err != nil {
					return err
				}
				if _, err := d.byte(); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown import kind %d", kind)
			}
			m.Imports = append(m.Imports, imp)
		}
	case secFunction:
		n, err := d.u32()
		if err != nil {
			return err
		}
		m.Functions = make([]Function, n)
		for i := uint32(0); i < n; i++ {
			ti, err := d.u32()
			if err != nil {
				return err
			}
			m.Functions[i].TypeIndex = ti
		}
	case secTable:
		n, err := d.u32()
		if err != nil {
			return err
		}
		for i := uint32(0); i < n; i++ {
			tt, err := decodeTableType(d)
			if err != nil {
				return err
			}
			m.Tables = append(m.Tables, tt)
		}
	case secMemory:
		n, err := d.u32()
		if err != nil {
			return err
		}
		for i := uint32(0); i < n; i++ {
			mt, err := decodeMemoryType(d)
			if err != nil {
				return err
			}
			m.Memories = append(m.Memories, mt)
		}
	case secGlobal:
		n, err := d.u32()
		if err != nil {
			return err
		}
		for i := uint32(0); i < n; i++ {
			vt, err := d.valType()
			if err != nil {
				return err
			}
			mutByte, err := d.byte()
			if err != nil {
				return err
			}
			init, err := decodeExpr(d)
			if err != nil {
				return err
			}
			m.Globals = append(m.Globals, Global{Type: vt, Mutable: mutByte == 1, Init: init})
		}
	case secExport:
		n, err := d.u32()
		if err != nil {
			return err
		}
		for i := uint32(0); i < n; i++ {
			name, err := d.name()
			if err != nil {
				return err
			}
			kind, err := d.byte()
			if err != nil {
				return err
			}
			idx, err := d.u32()
			if err != nil {
				return err
			}
			m.Exports = append(m.Exports, Export{Name: name, Kind: ExportKind(kind), Index: idx})
		}
	case secStart:
		idx, err := d.u32()
		if err != nil {
			return err
		}
		m.StartFunc = idx
		m.HasStart = true
	case secElement:
		// Element segments populate table entries for call_indirect. Parsed
		// and discarded: the VM's host-function table wiring is static
		// (spec.md §4.G's fixed ABI), and the interpreter traps on
		// call_indirect, so no table contents are ever consulted.
	case secCode:
		n, err := d.u32()
		if err != nil {
			return err
		}
		if int(n) != len(m.Functions) {
			return fmt.Errorf("code section has %d bodies, function section declared %d", n, len(m.Functions))
		}
		for i := uint32(0); i < n; i++ {
			bodySize, err := d.u32()
			if err != nil {
				return err
			}
			raw, err := d.bytesN(int(bodySize))
			if err != nil {
				return err
			}
			fd := &decoder{buf: raw}
			locals, err := decodeLocals(fd)
			if err != nil {
				return err
			}
			body, err := decodeExpr(fd)
			if err != nil {
				return err
			}
			m.Functions[i].Locals = locals
			m.Functions[i].Body = body
		}
	case secData:
		// Data segments (static memory initializers) are skipped: the core
		// loader does not need their contents to validate or instrument a
		// module, and nothing loads them into linear memory.
	default:
		// Unknown/custom sections (id 0 or future ids) are skipped, matching
		// the WASM spec's own forward-compatibility rule.
	}
	return nil
}

func decodeTableType(d *decoder) (TableType, error) {
	elemType, err := d.byte()
	if err != nil {
		return TableType{}, err
	}
	if elemType != 0x70 { // funcref
		return TableType{}, fmt.Errorf("unsupported table element type 0x%x", elemType)
	}
	limFlag, err := d.byte()
	if err != nil {
		return TableType{}, err
	}
	initial, err := d.u32()
	if err != nil {
		return TableType{}, err
	}
	tt := TableType{InitialSize: initial}
	if limFlag == 1 {
		max, err := d.u32()
		if err != nil {
			return TableType{}, err
		}
		tt.MaxSize = max
		tt.HasMax = true
	}
	return tt, nil
}

func decodeMemoryType(d *decoder) (MemoryType, error) {
	limFlag, err := d.byte()
	if err != nil {
		return MemoryType{}, err
	}
	initial, err := d.u32()
	if err != nil {
		return MemoryType{}, err
	}
	mt := MemoryType{InitialPages: initial}
	if limFlag == 1 {
		max, err := d.u32()
		if err != nil {
			return MemoryType{}, err
		}
		mt.MaxPages = max
		mt.HasMax = true
	}
	return mt, nil
}

func decodeLocals(d *decoder) ([]ValType, error) {
	groups, err := d.u32()
	if err != nil {
		return nil, err
	}
	var locals []ValType
	for i := uint32(0); i < groups; i++ {
		count, err := d.u32()
		if err != nil {
			return nil, err
		}
		vt, err := d.valType()
		if err != nil {
			return nil, err
		}
		for j := uint32(0); j < count; j++ {
			locals = append(locals, vt)
		}
	}
	return locals, nil
}

// decodeExpr decodes instructions until a matching `end` (0x0B) is
// consumed, handling nested block/loop/if per spec.md's structured control
// flow. Returns the list of top-level instructions of this expression.
func decodeExpr(d *decoder) ([]Instr, error) {
	instrs, _, err := decodeInstrList(d)
	return instrs, err
}

// decodeInstrList decodes instructions until `end` or `else`, returning
// which terminator was seen (true => else, false => end).
func decodeInstrList(d *decoder) ([]Instr, bool, error) {
	var out []Instr
	for {
		opb, err := d.byte()
		if err != nil {
			return nil, false, err
		}
		op := Opcode(opb)
		if op == OpEnd {
			return out, false, nil
		}
		if op == OpElse {
			return out, true, nil
		}
		instr, err := decodeInstr(d, op)
		if err != nil {
			return nil, false, err
		}
		out = append(out, instr)
	}
}

func decodeInstr(d *decoder, op Opcode) (Instr, error) {
	ins := Instr{Op: op}
	switch op {
	case OpBlock, OpLoop, OpIf:
		bt, err := decodeBlockType(d)
		if err != nil {
			return ins, err
		}
		ins.BlockT = bt
		body, sawElse, err := decodeInstrList(d)
		if err != nil {
			return ins, err
		}
		ins.Body = body
		if op == OpIf && sawElse {
			elseBody, _, err := decodeInstrList(d)
			if err != nil {
				return ins, err
			}
			ins.Else = elseBody
		}
	case OpBr, OpBrIf:
		idx, err := d.u32()
		if err != nil {
			return ins, err
		}
		ins.Index = idx
	case OpBrTable:
		n, err := d.u32()
		if err != nil {
			return ins, err
		}
		labels := make([]uint32, n)
		for i := range labels {
			if labels[i], err = d.u32(); err != nil {
				return ins, err
			}
		}
		def, err := d.u32()
		if err != nil {
			return ins, err
		}
		ins.Labels = labels
		ins.Default = def
	case OpCall:
		idx, err := d.u32()
		if err != nil {
			return ins, err
		}
		ins.Index = idx
	case OpCallIndirect:
		typeIdx, err := d.u32()
		if err != nil {
			return ins, err
		}
		tableIdx, err := d.u32()
		if err != nil {
			return ins, err
		}
		ins.Index = typeIdx
		ins.Table = tableIdx
	case OpLocalGet, OpLocalSet, OpLocalTee, OpGlobalGet, OpGlobalSet:
		idx, err := d.u32()
		if err != nil {
			return ins, err
		}
		ins.Index = idx
	case OpI32Load, OpI64Load, OpI32Store, OpI64Store:
		_, err := d.u32() // align, unused by this interpreter
		if err != nil {
			return ins, err
		}
		off, err := d.u32()
		if err != nil {
			return ins, err
		}
		ins.Offset = off
	case OpMemSize, OpMemGrow:
		if _, err := d.byte(); err != nil { // reserved memory index, must be 0
			return ins, err
		}
	case OpI32Const:
		v, err := d.i32()
		if err != nil {
			return ins, err
		}
		ins.I32Val = v
	case OpI64Const:
		v, err := d.i64()
		if err != nil {
			return ins, err
		}
		ins.I64Val = v
	case OpF32Const:
		if _, err := d.bytesN(4); err != nil {
			return ins, err
		}
	case OpF64Const:
		if _, err := d.bytesN(8); err != nil {
			return ins, err
		}
	case OpUnreachable, OpNop, OpReturn, OpDrop, OpSelect,
		OpI32Eqz, OpI32Eq, OpI32Ne, OpI32LtS, OpI32LtU, OpI32GtS, OpI32GtU, OpI32LeS, OpI32LeU, OpI32GeS, OpI32GeU,
		OpI64Eqz, OpI64Eq, OpI64Ne, OpI64LtS, OpI64LtU, OpI64GtS, OpI64GtU, OpI64LeS, OpI64LeU, OpI64GeS, OpI64GeU,
		OpI32Add, OpI32Sub, OpI32Mul, OpI32DivS, OpI32DivU, OpI32RemS, OpI32RemU, OpI32And, OpI32Or, OpI32Xor, OpI32Shl, OpI32ShrS, OpI32ShrU, OpI32Rotl, OpI32Rotr,
		OpI64Add, OpI64Sub, OpI64Mul, OpI64DivS, OpI64DivU, OpI64RemS, OpI64RemU, OpI64And, OpI64Or, OpI64Xor, OpI64Shl, OpI64ShrS, OpI64ShrU, OpI64Rotl, OpI64Rotr,
		OpI32WrapI64, OpI64ExtendI32S, OpI64ExtendI32U:
		// no immediates
	default:
		if isFloatOpcode(op) {
			return ins, fmt.Errorf("floating point opcode 0x%x", byte(op))
		}
		return ins, fmt.Errorf("unsupported opcode 0x%x", byte(op))
	}
	return ins, nil
}

func decodeBlockType(d *decoder) (BlockType, error) {
	b, err := d.byte()
	if err != nil {
		return BlockType{}, err
	}
	if b == 0x40 {
		return BlockType{}, nil
	}
	switch ValType(b) {
	case ValI32, ValI64, ValF32, ValF64:
		return BlockType{HasResult: true, Result: ValType(b)}, nil
	}
	return BlockType{}, fmt.Errorf("unsupported block type 0x%x (multi-value not supported)", b)
}
