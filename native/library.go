package native

import (
	"github.com/wippyai/wasm-bridge/errors"
	"github.com/wippyai/wasm-bridge/wasm"
)

// Name identifies the library in diagnostics.
const Name = "libbridge"

// Export names.
const (
	ExportGreet            = "greet"
	ExportRunDemo          = "run_demo"
	ExportAcceptString     = "accept_string"
	ExportProduceString    = "produce_string"
	ExportFreeString       = "free_string"
	ExportAlloc            = "alloc"
	ExportDealloc          = "dealloc"
	ExportEchoString       = "echo_string"
	ExportInvokeCallback   = "invoke_callback"
	ExportRegisterCallback = "register_callback"
	ExportLiveAllocations  = "live_allocations"
	ExportFaultCount       = "fault_count"
	ExportMemory           = "memory"
)

// Import names.
const (
	WASIModule      = "wasi_snapshot_preview1"
	WASIFdWrite     = "fd_write"
	ManagedModule   = "managed"
	ManagedCallback = "callback"
	ManagedNotify   = "notify"
)

// CallbackSlot is the table slot holding managed.callback.
const CallbackSlot = 0

// Type indices.
const (
	typeFdWrite = iota // (i32, i32, i32, i32) -> i32
	typePair           // (i32, i32) -> ()
	typeVoid           // () -> ()
	typeOut            // () -> i32
	typeIn             // (i32) -> ()
	typeInOut          // (i32) -> i32
)

// Function indices: imports first, then definitions in code order.
const (
	fnFdWrite uint32 = iota
	fnCallback
	fnNotify
	fnAlloc
	fnRelease
	fnFree
	fnGreet
	fnAcceptString
	fnProduceString
	fnEchoString
	fnInvokeCallback
	fnRunDemo
	fnRegisterCallback
	fnLiveAllocations
	fnFaultCount
)

const importCount = 3

// Global indices.
const (
	globalHeap uint32 = iota
	globalCallback
	globalLive
	globalFaults
	globalEchoLen
)

type funcDef struct {
	idx     uint32
	typeIdx uint32
	locals  uint32
	exports []string
	body    func(sd *staticData) *wasm.Code
}

var funcDefs = []funcDef{
	{fnAlloc, typeInOut, 5, []string{ExportAlloc}, allocBody},
	{fnRelease, typeInOut, 1, nil, releaseBody},
	{fnFree, typeIn, 0, []string{ExportFreeString, ExportDealloc}, freeBody},
	{fnGreet, typeVoid, 0, []string{ExportGreet}, greetBody},
	{fnAcceptString, typePair, 1, []string{ExportAcceptString}, acceptStringBody},
	{fnProduceString, typeOut, 1, []string{ExportProduceString}, produceStringBody},
	{fnEchoString, typeOut, 1, []string{ExportEchoString}, echoStringBody},
	{fnInvokeCallback, typePair, 0, []string{ExportInvokeCallback}, invokeCallbackBody},
	{fnRunDemo, typeVoid, 1, []string{ExportRunDemo}, runDemoBody},
	{fnRegisterCallback, typeInOut, 0, []string{ExportRegisterCallback}, registerCallbackBody},
	{fnLiveAllocations, typeOut, 0, []string{ExportLiveAllocations}, globalReader(globalLive)},
	{fnFaultCount, typeOut, 0, []string{ExportFaultCount}, globalReader(globalFaults)},
}

// Module assembles a fresh copy of the library. Callers may modify the
// result (for example to drop an export) before encoding it.
func Module() *wasm.Module {
	i32 := wasm.ValI32
	sd := newStaticData()
	tableMax := uint32(tableSize)

	m := &wasm.Module{
		Types: []wasm.FuncType{
			typeFdWrite: {Params: []wasm.ValType{i32, i32, i32, i32}, Results: []wasm.ValType{i32}},
			typePair:    {Params: []wasm.ValType{i32, i32}},
			typeVoid:    {},
			typeOut:     {Results: []wasm.ValType{i32}},
			typeIn:      {Params: []wasm.ValType{i32}},
			typeInOut:   {Params: []wasm.ValType{i32}, Results: []wasm.ValType{i32}},
		},
		Imports: []wasm.Import{
			{Module: WASIModule, Name: WASIFdWrite, TypeIdx: typeFdWrite},
			{Module: ManagedModule, Name: ManagedCallback, TypeIdx: typePair},
			{Module: ManagedModule, Name: ManagedNotify, TypeIdx: typeVoid},
		},
		Tables:   []wasm.TableType{{Limits: wasm.Limits{Min: tableSize, Max: &tableMax}}},
		Memories: []wasm.MemoryType{{Limits: wasm.Limits{Min: 1}}},
		Globals: []wasm.Global{
			globalHeap:     mutableI32(heapBase),
			globalCallback: mutableI32(-1),
			globalLive:     mutableI32(0),
			globalFaults:   mutableI32(0),
			globalEchoLen:  mutableI32(0),
		},
		Elements: []wasm.Element{
			{Offset: wasm.ConstExpr(CallbackSlot), FuncIdxs: []uint32{fnCallback}},
		},
		Data: []wasm.DataSegment{
			{Offset: wasm.ConstExpr(dataBase), Init: sd.bytes},
		},
	}

	for i, def := range funcDefs {
		if def.idx != uint32(importCount+i) {
			panic("native: function table out of order")
		}
		m.Funcs = append(m.Funcs, def.typeIdx)
		body := wasm.FuncBody{Code: def.body(sd).Bytes()}
		if def.locals > 0 {
			body.Locals = []wasm.LocalEntry{{Count: def.locals, ValType: i32}}
		}
		m.Code = append(m.Code, body)
		for _, name := range def.exports {
			m.Exports = append(m.Exports, wasm.Export{Name: name, Kind: wasm.KindFunc, Idx: def.idx})
		}
	}
	m.Exports = append(m.Exports, wasm.Export{Name: ExportMemory, Kind: wasm.KindMemory, Idx: 0})

	return m
}

// Build returns the encoded library binary. It panics if the generated
// module is structurally invalid.
func Build() []byte {
	m := Module()
	if err := m.Validate(); err != nil {
		panic(errors.Wrap(errors.PhaseBuild, errors.KindInvalidInput, err, "generated library is invalid"))
	}
	return m.Encode()
}

func mutableI32(v int32) wasm.Global {
	return wasm.Global{
		Type: wasm.GlobalType{ValType: wasm.ValI32, Mutable: true},
		Init: wasm.ConstExpr(v),
	}
}
