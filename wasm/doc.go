// Package wasm provides a minimal WebAssembly module model and binary encoder.
//
// It covers what a native bridge library needs: function types, function
// imports, one funcref table with active element segments, linear memory,
// i32 globals, exports, code and active data segments. Function bodies are
// assembled with Code:
//
//	add := wasm.NewCode().
//		LocalGet(0).
//		LocalGet(1).
//		I32Add().
//		End()
//
//	m := &wasm.Module{
//		Types:   []wasm.FuncType{{Params: []wasm.ValType{wasm.ValI32, wasm.ValI32}, Results: []wasm.ValType{wasm.ValI32}}},
//		Funcs:   []uint32{0},
//		Exports: []wasm.Export{{Name: "add", Kind: wasm.KindFunc, Idx: 0}},
//		Code:    []wasm.FuncBody{{Code: add.Bytes()}},
//	}
//	bin := m.Encode()
//
// Sections are emitted in the order the binary format requires. Encode does
// not validate; call Validate first to catch bad indices and limits. Function
// bodies are not type checked, the runtime compiling the output does that.
package wasm
