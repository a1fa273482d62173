package wasm

import (
	"github.com/wippyai/wasm-bridge/wasm/internal/binary"
)

// Code assembles a function body or constant expression one instruction at a time.
// Methods return the receiver so short sequences can be chained.
//
// Memory instructions take only a static offset; alignment is fixed to the
// natural alignment of the access.
type Code struct {
	w *binary.Writer
}

// NewCode creates an empty instruction sequence.
func NewCode() *Code {
	return &Code{w: binary.NewWriter()}
}

// Bytes returns the encoded instructions.
func (c *Code) Bytes() []byte {
	return c.w.Bytes()
}

func (c *Code) op(b byte) *Code {
	c.w.Byte(b)
	return c
}

func (c *Code) opU32(b byte, v uint32) *Code {
	c.w.Byte(b)
	c.w.WriteU32(v)
	return c
}

func (c *Code) memarg(b byte, align, offset uint32) *Code {
	c.w.Byte(b)
	c.w.WriteU32(align)
	c.w.WriteU32(offset)
	return c
}

func (c *Code) Unreachable() *Code { return c.op(OpUnreachable) }
func (c *Code) End() *Code         { return c.op(OpEnd) }
func (c *Code) Return() *Code      { return c.op(OpReturn) }
func (c *Code) Drop() *Code        { return c.op(OpDrop) }
func (c *Code) Select() *Code      { return c.op(OpSelect) }

// Block opens a block with the given block type (BlockVoid or BlockI32).
func (c *Code) Block(bt byte) *Code {
	c.w.Byte(OpBlock)
	c.w.Byte(bt)
	return c
}

// Loop opens a loop with the given block type.
func (c *Code) Loop(bt byte) *Code {
	c.w.Byte(OpLoop)
	c.w.Byte(bt)
	return c
}

// If opens an if with the given block type.
func (c *Code) If(bt byte) *Code {
	c.w.Byte(OpIf)
	c.w.Byte(bt)
	return c
}

// Br branches to the label at the given relative depth.
func (c *Code) Br(depth uint32) *Code   { return c.opU32(OpBr, depth) }
func (c *Code) BrIf(depth uint32) *Code { return c.opU32(OpBrIf, depth) }

func (c *Code) Call(funcIdx uint32) *Code { return c.opU32(OpCall, funcIdx) }

// CallIndirect calls through table tableIdx, checking the callee against typeIdx.
func (c *Code) CallIndirect(typeIdx, tableIdx uint32) *Code {
	c.w.Byte(OpCallIndirect)
	c.w.WriteU32(typeIdx)
	c.w.WriteU32(tableIdx)
	return c
}

func (c *Code) LocalGet(idx uint32) *Code  { return c.opU32(OpLocalGet, idx) }
func (c *Code) LocalSet(idx uint32) *Code  { return c.opU32(OpLocalSet, idx) }
func (c *Code) LocalTee(idx uint32) *Code  { return c.opU32(OpLocalTee, idx) }
func (c *Code) GlobalGet(idx uint32) *Code { return c.opU32(OpGlobalGet, idx) }
func (c *Code) GlobalSet(idx uint32) *Code { return c.opU32(OpGlobalSet, idx) }

func (c *Code) I32Load(offset uint32) *Code   { return c.memarg(OpI32Load, 2, offset) }
func (c *Code) I32Load8U(offset uint32) *Code { return c.memarg(OpI32Load8U, 0, offset) }
func (c *Code) I32Store(offset uint32) *Code  { return c.memarg(OpI32Store, 2, offset) }
func (c *Code) I32Store8(offset uint32) *Code { return c.memarg(OpI32Store8, 0, offset) }

// MemorySize pushes the current size of memory 0 in pages.
func (c *Code) MemorySize() *Code {
	c.w.Byte(OpMemorySize)
	c.w.Byte(0x00)
	return c
}

// MemoryGrow grows memory 0 and pushes the previous size in pages, or -1.
func (c *Code) MemoryGrow() *Code {
	c.w.Byte(OpMemoryGrow)
	c.w.Byte(0x00)
	return c
}

// MemoryCopy copies within memory 0: (dst, src, len) -> ().
func (c *Code) MemoryCopy() *Code {
	c.w.Byte(OpPrefixMisc)
	c.w.WriteU32(MiscMemoryCopy)
	c.w.Byte(0x00)
	c.w.Byte(0x00)
	return c
}

func (c *Code) I32Const(v int32) *Code {
	c.w.Byte(OpI32Const)
	c.w.WriteS32(v)
	return c
}

func (c *Code) I32Eqz() *Code  { return c.op(OpI32Eqz) }
func (c *Code) I32Eq() *Code   { return c.op(OpI32Eq) }
func (c *Code) I32Ne() *Code   { return c.op(OpI32Ne) }
func (c *Code) I32LtS() *Code  { return c.op(OpI32LtS) }
func (c *Code) I32LtU() *Code  { return c.op(OpI32LtU) }
func (c *Code) I32GtU() *Code  { return c.op(OpI32GtU) }
func (c *Code) I32GeU() *Code  { return c.op(OpI32GeU) }
func (c *Code) I32Add() *Code  { return c.op(OpI32Add) }
func (c *Code) I32Sub() *Code  { return c.op(OpI32Sub) }
func (c *Code) I32And() *Code  { return c.op(OpI32And) }
func (c *Code) I32Shl() *Code  { return c.op(OpI32Shl) }
func (c *Code) I32ShrU() *Code { return c.op(OpI32ShrU) }
