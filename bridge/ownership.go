package bridge

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-bridge/errors"
	"github.com/wippyai/wasm-bridge/native"
)

// OwnedText is a NUL-terminated native buffer owned by the managed side.
// It must be freed exactly once.
type OwnedText struct {
	s      *Surface
	export string
	ptr    uint32
	freed  atomic.Bool
}

// Ptr returns the native address of the buffer.
func (o *OwnedText) Ptr() uint32 {
	return o.ptr
}

// Freed reports whether the buffer has been released.
func (o *OwnedText) Freed() bool {
	return o.freed.Load()
}

// Decode copies the text out of native memory.
func (o *OwnedText) Decode() (string, error) {
	if o.s.state != stateBound {
		return "", errors.Unbound(o.export)
	}
	if o.freed.Load() {
		return "", o.s.violation(errors.UseAfterFree(o.ptr))
	}
	return o.s.decodeText(o.export, o.ptr)
}

// Free hands the buffer back to native. A second call is an ownership
// violation and never reaches native code.
func (o *OwnedText) Free(ctx context.Context) error {
	if o.s.state == stateClosed {
		return errors.Unbound(native.ExportFreeString)
	}
	if !o.freed.CompareAndSwap(false, true) {
		return o.s.violation(errors.DoubleFree(o.ptr))
	}

	o.s.ledger.release(o.ptr)
	o.s.metrics.OutstandingBuffers.Dec()

	_, err := o.s.call(ctx, native.ExportFreeString, api.EncodeU32(o.ptr))
	return err
}

// ledger tracks native buffers owned by the managed side, plus buffers
// already released so a repeated release can be told from a foreign pointer.
type ledger struct {
	owned    map[uint32]*OwnedText
	released map[uint32]struct{}
	mu       sync.Mutex
}

func newLedger() *ledger {
	return &ledger{
		owned:    make(map[uint32]*OwnedText),
		released: make(map[uint32]struct{}),
	}
}

func (l *ledger) take(o *OwnedText) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.released, o.ptr)
	l.owned[o.ptr] = o
}

func (l *ledger) release(ptr uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.owned, ptr)
	l.released[ptr] = struct{}{}
}

func (l *ledger) lookup(ptr uint32) (*OwnedText, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	o, ok := l.owned[ptr]
	return o, ok
}

func (l *ledger) wasReleased(ptr uint32) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.released[ptr]
	return ok
}

func (l *ledger) outstanding() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.owned)
}

// drain forgets every buffer and returns how many were still owned.
func (l *ledger) drain() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.owned)
	l.owned = make(map[uint32]*OwnedText)
	l.released = make(map[uint32]struct{})
	return n
}

// Outstanding returns the number of produced buffers not yet freed.
func (s *Surface) Outstanding() int {
	return s.ledger.outstanding()
}

// FreeString releases a buffer previously returned by ProduceBuffer or
// EchoBuffer. Pointers the ledger does not own are rejected without
// calling native.
func (s *Surface) FreeString(ctx context.Context, ptr uint32) error {
	if s.state != stateBound {
		return errors.Unbound(native.ExportFreeString)
	}
	if o, ok := s.ledger.lookup(ptr); ok {
		return o.Free(ctx)
	}
	if s.ledger.wasReleased(ptr) {
		return s.violation(errors.DoubleFree(ptr))
	}
	return s.violation(errors.ForeignPointer(ptr))
}

// violation reports an ownership error. In checked mode it panics.
func (s *Surface) violation(err *errors.Error) error {
	s.metrics.Violations.WithLabelValues(string(err.Kind)).Inc()
	s.log.Warn("ownership violation", zap.Error(err))
	if s.cfg.Checked {
		panic(err)
	}
	return err
}

func (s *Surface) produceOwned(ctx context.Context, export string) (*OwnedText, error) {
	ptr, err := s.callU32(ctx, export)
	if err != nil {
		return nil, err
	}
	if ptr == 0 {
		return nil, errors.New(errors.PhaseMarshal, errors.KindAllocation).
			Export(export).
			Detail("native returned a null buffer").
			Build()
	}

	o := &OwnedText{s: s, export: export, ptr: ptr}
	s.ledger.take(o)
	s.metrics.OutstandingBuffers.Inc()
	return o, nil
}
