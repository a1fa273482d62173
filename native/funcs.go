package native

import (
	"github.com/wippyai/wasm-bridge/wasm"
)

// span is one iovec for fd_write: how to push its pointer and its length.
type span struct {
	ptr func(c *wasm.Code)
	len func(c *wasm.Code)
}

func constSpan(s segment) span {
	return span{
		ptr: func(c *wasm.Code) { c.I32Const(int32(s.off)) },
		len: func(c *wasm.Code) { c.I32Const(int32(s.len)) },
	}
}

func localSpan(ptrLocal, lenLocal uint32) span {
	return span{
		ptr: func(c *wasm.Code) { c.LocalGet(ptrLocal) },
		len: func(c *wasm.Code) { c.LocalGet(lenLocal) },
	}
}

// emitWritev writes up to three spans to stdout with a single fd_write.
// The errno is dropped: output is diagnostic only.
func emitWritev(c *wasm.Code, spans ...span) {
	if len(spans) > 3 {
		panic("native: at most three iovecs")
	}
	for i, s := range spans {
		c.I32Const(iovBase)
		s.ptr(c)
		c.I32Store(uint32(i * 8))
		c.I32Const(iovBase)
		s.len(c)
		c.I32Store(uint32(i*8 + 4))
	}
	c.I32Const(stdoutFD).
		I32Const(iovBase).
		I32Const(int32(len(spans))).
		I32Const(nWritten).
		Call(fnFdWrite).
		Drop()
}

func incGlobal(c *wasm.Code, idx uint32, delta int32) {
	c.GlobalGet(idx).I32Const(delta).I32Add().GlobalSet(idx)
}

// allocBody: (size) -> ptr, 0 when memory cannot grow.
// Locals: 1 capacity, 2 link cell, 3 cursor, 4 block, 5 block size.
func allocBody(_ *staticData) *wasm.Code {
	const (
		size, capacity, prev, cur, p, need = 0, 1, 2, 3, 4, 5
	)
	c := wasm.NewCode()

	c.LocalGet(size).I32Const(maxAlloc).I32GtU().
		If(wasm.BlockVoid).I32Const(0).Return().End()

	// capacity = align8(size), at least 8 so a freed block can hold its link
	c.LocalGet(size).I32Const(7).I32Add().I32Const(-8).I32And().LocalTee(capacity).
		I32Eqz().
		If(wasm.BlockVoid).I32Const(8).LocalSet(capacity).End()

	// first fit over the free list
	c.I32Const(freeHead).LocalSet(prev)
	c.I32Const(freeHead).I32Load(0).LocalSet(cur)
	c.Block(wasm.BlockVoid).Loop(wasm.BlockVoid)
	c.LocalGet(cur).I32Eqz().BrIf(1)
	c.LocalGet(cur).I32Load(0).LocalGet(capacity).I32GeU().
		If(wasm.BlockVoid)
	c.LocalGet(prev).LocalGet(cur).I32Load(8).I32Store(0)
	c.LocalGet(cur).I32Const(stateLive).I32Store(4)
	incGlobal(c, globalLive, 1)
	c.LocalGet(cur).I32Const(headerSize).I32Add().Return()
	c.End()
	c.LocalGet(cur).I32Const(headerSize).I32Add().LocalSet(prev)
	c.LocalGet(cur).I32Load(8).LocalSet(cur)
	c.Br(0)
	c.End().End()

	// bump allocate, growing memory when the block does not fit
	c.GlobalGet(globalHeap).LocalSet(p)
	c.LocalGet(capacity).I32Const(headerSize).I32Add().LocalSet(need)
	c.LocalGet(p).LocalGet(need).I32Add().
		MemorySize().I32Const(16).I32Shl().
		I32GtU().
		If(wasm.BlockVoid)
	c.LocalGet(p).LocalGet(need).I32Add().
		MemorySize().I32Const(16).I32Shl().
		I32Sub().
		I32Const(wasm.PageSize - 1).I32Add().
		I32Const(16).I32ShrU().
		MemoryGrow().
		I32Const(-1).I32Eq().
		If(wasm.BlockVoid).I32Const(0).Return().End()
	c.End()

	c.LocalGet(p).LocalGet(capacity).I32Store(0)
	c.LocalGet(p).I32Const(stateLive).I32Store(4)
	c.GlobalGet(globalHeap).LocalGet(need).I32Add().GlobalSet(globalHeap)
	incGlobal(c, globalLive, 1)
	c.LocalGet(p).I32Const(headerSize).I32Add()
	return c.End()
}

// releaseBody: (ptr) -> 0 on success, -1 when ptr is not a live block.
// Local 1 holds the header address.
func releaseBody(_ *staticData) *wasm.Code {
	const ptr, hdr = 0, 1
	c := wasm.NewCode()

	c.Block(wasm.BlockVoid)
	c.LocalGet(ptr).I32Const(heapBase + headerSize).I32LtU().BrIf(0)
	c.LocalGet(ptr).GlobalGet(globalHeap).I32GeU().BrIf(0)
	c.LocalGet(ptr).I32Const(headerSize - 1).I32And().BrIf(0)
	c.LocalGet(ptr).I32Const(headerSize).I32Sub().LocalTee(hdr).
		I32Load(4).I32Const(stateLive).I32Ne().BrIf(0)

	c.LocalGet(hdr).I32Const(stateFreed).I32Store(4)
	c.LocalGet(hdr).I32Const(freeHead).I32Load(0).I32Store(8)
	c.I32Const(freeHead).LocalGet(hdr).I32Store(0)
	incGlobal(c, globalLive, -1)
	c.I32Const(0).Return()
	c.End()

	incGlobal(c, globalFaults, 1)
	c.I32Const(-1)
	return c.End()
}

func freeBody(_ *staticData) *wasm.Code {
	return wasm.NewCode().LocalGet(0).Call(fnRelease).Drop().End()
}

func greetBody(sd *staticData) *wasm.Code {
	c := wasm.NewCode()
	emitWritev(c, constSpan(sd.greeting))
	return c.End()
}

// acceptStringBody: (ptr, len). Copies at most EchoCapacity bytes into the
// echo area and prints the full text; ptr is not kept. A cut never splits a
// UTF-8 sequence.
func acceptStringBody(sd *staticData) *wasm.Code {
	const ptr, length, n = 0, 1, 2
	c := wasm.NewCode()

	c.LocalGet(length).
		I32Const(EchoCapacity).
		LocalGet(length).I32Const(EchoCapacity).I32LtU().
		Select().
		LocalSet(n)

	// back up while the first dropped byte is a continuation byte
	c.LocalGet(n).LocalGet(length).I32LtU().
		If(wasm.BlockVoid)
	c.Block(wasm.BlockVoid).Loop(wasm.BlockVoid)
	c.LocalGet(n).I32Eqz().BrIf(1)
	c.LocalGet(ptr).LocalGet(n).I32Add().I32Load8U(0).
		I32Const(0xC0).I32And().
		I32Const(0x80).I32Ne().BrIf(1)
	c.LocalGet(n).I32Const(1).I32Sub().LocalSet(n)
	c.Br(0)
	c.End().End()
	c.End()
	c.I32Const(echoBase).LocalGet(ptr).LocalGet(n).MemoryCopy()
	c.LocalGet(n).GlobalSet(globalEchoLen)

	emitWritev(c, constSpan(sd.printPrefix), localSpan(ptr, length), constSpan(sd.newline))
	return c.End()
}

// produceStringBody: () -> ptr to a fresh NUL-terminated copy of ProducedText.
func produceStringBody(sd *staticData) *wasm.Code {
	const p = 0
	c := wasm.NewCode()

	c.I32Const(int32(sd.produced.len)).Call(fnAlloc).LocalTee(p).
		I32Eqz().
		If(wasm.BlockVoid).I32Const(0).Return().End()
	c.LocalGet(p).I32Const(int32(sd.produced.off)).I32Const(int32(sd.produced.len)).MemoryCopy()
	c.LocalGet(p)
	return c.End()
}

// echoStringBody: () -> ptr to a NUL-terminated copy of the echo area.
func echoStringBody(_ *staticData) *wasm.Code {
	const p = 0
	c := wasm.NewCode()

	c.GlobalGet(globalEchoLen).I32Const(1).I32Add().Call(fnAlloc).LocalTee(p).
		I32Eqz().
		If(wasm.BlockVoid).I32Const(0).Return().End()
	c.LocalGet(p).I32Const(echoBase).GlobalGet(globalEchoLen).MemoryCopy()
	c.LocalGet(p).GlobalGet(globalEchoLen).I32Add().I32Const(0).I32Store8(0)
	c.LocalGet(p)
	return c.End()
}

// invokeCallbackBody: (a, b). No-op plus a fault when nothing is registered.
func invokeCallbackBody(_ *staticData) *wasm.Code {
	c := wasm.NewCode()

	c.GlobalGet(globalCallback).I32Const(0).I32LtS().
		If(wasm.BlockVoid)
	incGlobal(c, globalFaults, 1)
	c.Return()
	c.End()

	c.LocalGet(0).LocalGet(1).GlobalGet(globalCallback).CallIndirect(typePair, 0)
	return c.End()
}

func runDemoBody(sd *staticData) *wasm.Code {
	const p = 0
	c := wasm.NewCode()

	c.Call(fnNotify)
	emitWritev(c, constSpan(sd.demoLine))
	c.I32Const(36).I32Const(42).Call(fnInvokeCallback)
	c.I32Const(int32(sd.demoAccept.off)).I32Const(int32(sd.demoAccept.len)).Call(fnAcceptString)

	c.Call(fnProduceString).LocalTee(p).
		If(wasm.BlockVoid)
	text := span{
		ptr: func(c *wasm.Code) { c.LocalGet(p) },
		len: func(c *wasm.Code) { c.I32Const(int32(sd.produced.len - 1)) },
	}
	emitWritev(c, constSpan(sd.producedPrefix), text, constSpan(sd.newline))
	c.LocalGet(p).Call(fnRelease).Drop()
	c.End()

	return c.End()
}

// registerCallbackBody: (slot) -> 0, or -1 when slot is outside the table.
func registerCallbackBody(_ *staticData) *wasm.Code {
	c := wasm.NewCode()

	c.LocalGet(0).I32Const(tableSize).I32GeU().
		If(wasm.BlockVoid).I32Const(-1).Return().End()
	c.LocalGet(0).GlobalSet(globalCallback)
	c.I32Const(0)
	return c.End()
}

func globalReader(idx uint32) func(*staticData) *wasm.Code {
	return func(_ *staticData) *wasm.Code {
		return wasm.NewCode().GlobalGet(idx).End()
	}
}
