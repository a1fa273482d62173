package bridge

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-bridge/errors"
	"github.com/wippyai/wasm-bridge/native"
)

// Record is one callback observed by the managed side.
type Record struct {
	A, B uint32
}

// Records returns the callbacks received so far, in order.
func (s *Surface) Records() []Record {
	return append([]Record(nil), s.records...)
}

// Notifies returns how many times native code called managed.notify.
func (s *Surface) Notifies() int {
	return s.notifies
}

// handleCallback runs on the native call stack.
func (s *Surface) handleCallback(a, b uint32) {
	s.records = append(s.records, Record{A: a, B: b})
	s.metrics.Callbacks.Inc()

	defer s.contain(native.ManagedCallback, zap.Uint32("a", a), zap.Uint32("b", b))

	if s.cfg.Callback != nil {
		s.cfg.Callback(a, b)
		return
	}
	fmt.Fprintf(s.cfg.Stdout, "managed num: %d, %d\n", a, b)
}

// handleNotify runs on the native call stack.
func (s *Surface) handleNotify() {
	s.notifies++
	s.metrics.Callbacks.Inc()

	defer s.contain(native.ManagedNotify)

	if s.cfg.Notify != nil {
		s.cfg.Notify()
		return
	}
	io.WriteString(s.cfg.Stdout, "managed called from native\n")
}

// contain recovers a panicking host handler so it never unwinds through
// native frames. It must be deferred directly.
func (s *Surface) contain(name string, fields ...zap.Field) {
	r := recover()
	if r == nil {
		return
	}
	s.metrics.CallbackPanics.Inc()
	err := errors.New(errors.PhaseHost, errors.KindBoundaryFault).
		Export(native.ManagedModule + "." + name).
		Value(r).
		Detail("host handler panicked").
		Build()
	s.log.Error("host handler panicked", append(fields, zap.Error(err))...)
}
