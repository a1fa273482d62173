package wasm

// Module represents a WebAssembly core module ready for encoding.
// Only the sections needed for native bridge libraries are modeled.
type Module struct {
	Types    []FuncType
	Imports  []Import
	Funcs    []uint32 // Type indices for declared functions
	Tables   []TableType
	Memories []MemoryType
	Globals  []Global
	Exports  []Export
	Elements []Element
	Code     []FuncBody
	Data     []DataSegment
}

// FuncType represents a WebAssembly function signature with parameter and result types.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Equal reports whether both signatures have identical parameter and result types.
func (f FuncType) Equal(o FuncType) bool {
	return equalValTypes(f.Params, o.Params) && equalValTypes(f.Results, o.Results)
}

func equalValTypes(a, b []ValType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ValType represents a WebAssembly value type.
// See constants.go for ValI32, ValI64, ValF32, ValF64, etc.
type ValType byte

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	case ValFuncRef:
		return "funcref"
	default:
		return "unknown"
	}
}

// Import represents an imported function.
type Import struct {
	Module  string
	Name    string
	TypeIdx uint32
}

// TableType describes a funcref table with size limits.
type TableType struct {
	Limits Limits
}

// MemoryType describes a linear memory with size limits.
type MemoryType struct {
	Limits Limits
}

// Limits describes size constraints for tables and memories.
type Limits struct {
	Max *uint32
	Min uint32
}

// GlobalType describes a global variable's type and mutability.
type GlobalType struct {
	ValType ValType
	Mutable bool
}

// Global represents a global variable with type and initialization.
type Global struct {
	Type GlobalType
	Init []byte // Raw init expression bytes, including the end opcode
}

// Export represents an exported definition.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// Element represents an active element segment for table 0.
type Element struct {
	Offset   []byte
	FuncIdxs []uint32
}

// FuncBody represents a function body.
type FuncBody struct {
	Locals []LocalEntry
	Code   []byte // Raw code bytes including end opcode
}

// LocalEntry represents a group of local variables with the same type.
type LocalEntry struct {
	Count   uint32
	ValType ValType
}

// DataSegment represents an active data segment for memory 0.
type DataSegment struct {
	Offset []byte
	Init   []byte
}

// ConstExpr returns an i32.const constant expression terminated by end,
// suitable for global initializers and segment offsets.
func ConstExpr(v int32) []byte {
	return NewCode().I32Const(v).End().Bytes()
}

// FuncIndex returns the function index space position of the named export,
// or false when the module does not export a function under that name.
func (m *Module) FuncIndex(name string) (uint32, bool) {
	for _, exp := range m.Exports {
		if exp.Kind == KindFunc && exp.Name == name {
			return exp.Idx, true
		}
	}
	return 0, false
}

// RemoveExport drops an export by name and reports whether it existed.
func (m *Module) RemoveExport(name string) bool {
	for i, exp := range m.Exports {
		if exp.Name == name {
			m.Exports = append(m.Exports[:i], m.Exports[i+1:]...)
			return true
		}
	}
	return false
}
