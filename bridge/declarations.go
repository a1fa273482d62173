package bridge

import (
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-bridge/native"
)

// Ownership describes who owns text crossing the boundary in a call.
type Ownership uint8

const (
	// OwnNone: only scalars cross.
	OwnNone Ownership = iota
	// OwnBorrowed: native borrows caller text for the duration of the call.
	OwnBorrowed
	// OwnTransferred: the result buffer belongs to the caller, who must free it.
	OwnTransferred
	// OwnReleased: the call releases a buffer the caller owned.
	OwnReleased
)

func (o Ownership) String() string {
	switch o {
	case OwnBorrowed:
		return "borrowed"
	case OwnTransferred:
		return "transferred"
	case OwnReleased:
		return "released"
	default:
		return "none"
	}
}

// Declaration describes one native entry point as the managed side expects it.
// String parameters are borrowed and flatten to (ptr, len); string results
// are owned NUL-terminated buffers and flatten to a single pointer.
type Declaration struct {
	Name      string
	Params    []wit.Type
	Results   []wit.Type
	Ownership Ownership
}

// Declarations is the full table of native entry points used by Surface.
var Declarations = []Declaration{
	{Name: native.ExportGreet},
	{Name: native.ExportRunDemo},
	{Name: native.ExportAcceptString, Params: []wit.Type{wit.String{}}, Ownership: OwnBorrowed},
	{Name: native.ExportProduceString, Results: []wit.Type{wit.String{}}, Ownership: OwnTransferred},
	{Name: native.ExportFreeString, Params: []wit.Type{wit.U32{}}, Ownership: OwnReleased},
	{Name: native.ExportAlloc, Params: []wit.Type{wit.U32{}}, Results: []wit.Type{wit.U32{}}},
	{Name: native.ExportDealloc, Params: []wit.Type{wit.U32{}}, Ownership: OwnReleased},
	{Name: native.ExportEchoString, Results: []wit.Type{wit.String{}}, Ownership: OwnTransferred},
	{Name: native.ExportInvokeCallback, Params: []wit.Type{wit.U32{}, wit.U32{}}},
	{Name: native.ExportRegisterCallback, Params: []wit.Type{wit.U32{}}, Results: []wit.Type{wit.S32{}}},
	{Name: native.ExportLiveAllocations, Results: []wit.Type{wit.U32{}}},
	{Name: native.ExportFaultCount, Results: []wit.Type{wit.U32{}}},
}

// HostImports is the table of functions the managed host module provides to
// native code. Load checks native imports against it and the runtime
// exports exactly these.
var HostImports = []Declaration{
	{Name: native.ManagedCallback, Params: []wit.Type{wit.U32{}, wit.U32{}}},
	{Name: native.ManagedNotify},
}

func hostImport(name string) (Declaration, bool) {
	for _, d := range HostImports {
		if d.Name == name {
			return d, true
		}
	}
	return Declaration{}, false
}

// FlatParams returns the core value types the declaration's parameters
// lower to.
func (d Declaration) FlatParams() ([]api.ValueType, error) {
	var out []api.ValueType
	for _, t := range d.Params {
		switch t.(type) {
		case wit.String:
			out = append(out, api.ValueTypeI32, api.ValueTypeI32)
		default:
			vt, err := flatScalar(d.Name, t)
			if err != nil {
				return nil, err
			}
			out = append(out, vt)
		}
	}
	return out, nil
}

// FlatResults returns the core value types the declaration's results lower to.
func (d Declaration) FlatResults() ([]api.ValueType, error) {
	var out []api.ValueType
	for _, t := range d.Results {
		switch t.(type) {
		case wit.String:
			out = append(out, api.ValueTypeI32)
		default:
			vt, err := flatScalar(d.Name, t)
			if err != nil {
				return nil, err
			}
			out = append(out, vt)
		}
	}
	return out, nil
}

// Signature renders the declaration in WIT-like syntax.
func (d Declaration) Signature() string {
	var b strings.Builder
	b.WriteString("func(")
	for i, t := range d.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(typeName(t))
	}
	b.WriteByte(')')
	if len(d.Results) > 0 {
		b.WriteString(" -> ")
		b.WriteString(typeName(d.Results[0]))
	}
	return b.String()
}

func flatScalar(export string, t wit.Type) (api.ValueType, error) {
	switch t.(type) {
	case wit.U32, wit.S32, wit.U16, wit.S16, wit.U8, wit.S8, wit.Bool, wit.Char:
		return api.ValueTypeI32, nil
	case wit.U64, wit.S64:
		return api.ValueTypeI64, nil
	case wit.F32:
		return api.ValueTypeF32, nil
	case wit.F64:
		return api.ValueTypeF64, nil
	default:
		return 0, unsupportedType(export, t)
	}
}

func typeName(t wit.Type) string {
	switch t.(type) {
	case wit.String:
		return "string"
	case wit.Bool:
		return "bool"
	case wit.Char:
		return "char"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case nil:
		return "nil"
	default:
		return "unsupported"
	}
}

func valueTypes(vts []api.ValueType) string {
	names := make([]string, len(vts))
	for i, vt := range vts {
		names[i] = api.ValueTypeName(vt)
	}
	return "(" + strings.Join(names, ", ") + ")"
}

func flatSignature(params, results []api.ValueType) string {
	return valueTypes(params) + " -> " + valueTypes(results)
}
