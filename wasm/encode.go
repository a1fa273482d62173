package wasm

import (
	"github.com/wippyai/wasm-bridge/wasm/internal/binary"
)

// section encodes one module section body. count is the number of entries;
// sections with no entries are skipped.
type section struct {
	write func(m *Module, w *binary.Writer)
	count func(m *Module) int
	id    byte
}

// sections lists encoders in binary section order.
var sections = []section{
	{encodeTypes, func(m *Module) int { return len(m.Types) }, SectionType},
	{encodeImports, func(m *Module) int { return len(m.Imports) }, SectionImport},
	{encodeFuncs, func(m *Module) int { return len(m.Funcs) }, SectionFunction},
	{encodeTables, func(m *Module) int { return len(m.Tables) }, SectionTable},
	{encodeMemories, func(m *Module) int { return len(m.Memories) }, SectionMemory},
	{encodeGlobals, func(m *Module) int { return len(m.Globals) }, SectionGlobal},
	{encodeExports, func(m *Module) int { return len(m.Exports) }, SectionExport},
	{encodeElements, func(m *Module) int { return len(m.Elements) }, SectionElement},
	{encodeCode, func(m *Module) int { return len(m.Code) }, SectionCode},
	{encodeData, func(m *Module) int { return len(m.Data) }, SectionData},
}

// Encode encodes the module to WebAssembly binary format
func (m *Module) Encode() []byte {
	w := binary.NewWriter()
	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)

	for _, sec := range sections {
		n := sec.count(m)
		if n == 0 {
			continue
		}
		body := binary.NewWriter()
		body.WriteU32(uint32(n))
		sec.write(m, body)
		w.Byte(sec.id)
		w.WriteVec(body.Bytes())
	}

	return w.Bytes()
}

func encodeTypes(m *Module, w *binary.Writer) {
	for _, ft := range m.Types {
		w.Byte(FuncTypeByte)
		writeValTypes(w, ft.Params)
		writeValTypes(w, ft.Results)
	}
}

// Only function imports are modeled.
func encodeImports(m *Module, w *binary.Writer) {
	for _, imp := range m.Imports {
		w.WriteName(imp.Module)
		w.WriteName(imp.Name)
		w.Byte(KindFunc)
		w.WriteU32(imp.TypeIdx)
	}
}

func encodeFuncs(m *Module, w *binary.Writer) {
	for _, typeIdx := range m.Funcs {
		w.WriteU32(typeIdx)
	}
}

func encodeTables(m *Module, w *binary.Writer) {
	for _, t := range m.Tables {
		w.Byte(byte(ValFuncRef))
		writeLimits(w, t.Limits)
	}
}

func encodeMemories(m *Module, w *binary.Writer) {
	for _, mem := range m.Memories {
		writeLimits(w, mem.Limits)
	}
}

func encodeGlobals(m *Module, w *binary.Writer) {
	for _, g := range m.Globals {
		w.Byte(byte(g.Type.ValType))
		if g.Type.Mutable {
			w.Byte(1)
		} else {
			w.Byte(0)
		}
		w.WriteBytes(g.Init)
	}
}

func encodeExports(m *Module, w *binary.Writer) {
	for _, exp := range m.Exports {
		w.WriteName(exp.Name)
		w.Byte(exp.Kind)
		w.WriteU32(exp.Idx)
	}
}

// Element segments use flags 0: active on table 0 with a funcidx vector.
func encodeElements(m *Module, w *binary.Writer) {
	for _, elem := range m.Elements {
		w.WriteU32(0)
		w.WriteBytes(elem.Offset)
		w.WriteU32(uint32(len(elem.FuncIdxs)))
		for _, idx := range elem.FuncIdxs {
			w.WriteU32(idx)
		}
	}
}

func encodeCode(m *Module, w *binary.Writer) {
	for _, body := range m.Code {
		fn := binary.NewWriter()
		fn.WriteU32(uint32(len(body.Locals)))
		for _, local := range body.Locals {
			fn.WriteU32(local.Count)
			fn.Byte(byte(local.ValType))
		}
		fn.WriteBytes(body.Code)
		w.WriteVec(fn.Bytes())
	}
}

// Data segments use flags 0: active on memory 0.
func encodeData(m *Module, w *binary.Writer) {
	for _, d := range m.Data {
		w.WriteU32(0)
		w.WriteBytes(d.Offset)
		w.WriteVec(d.Init)
	}
}

func writeValTypes(w *binary.Writer, types []ValType) {
	w.WriteU32(uint32(len(types)))
	for _, t := range types {
		w.Byte(byte(t))
	}
}

func writeLimits(w *binary.Writer, l Limits) {
	if l.Max == nil {
		w.Byte(LimitsNoMax)
		w.WriteU32(l.Min)
		return
	}
	w.Byte(LimitsHasMax)
	w.WriteU32(l.Min)
	w.WriteU32(*l.Max)
}
