package bridge

import (
	"context"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-bridge/errors"
	"github.com/wippyai/wasm-bridge/native"
)

type state uint8

const (
	stateUnbound state = iota
	stateBound
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateBound:
		return "bound"
	case stateClosed:
		return "closed"
	default:
		return "unbound"
	}
}

// Binding is a declaration resolved against a native export.
type Binding struct {
	Declaration
	// Native is the flattened core signature the export was checked against.
	Native string
}

// Surface is the managed call surface of one native library. It starts
// unbound; Bind instantiates the library and registers the callback.
// Surface is not safe for concurrent use.
type Surface struct {
	rt       *Runtime
	compiled wazero.CompiledModule
	mod      api.Module
	mem      *Memory
	log      *zap.Logger
	metrics  *Metrics
	fns      map[string]api.Function
	ledger   *ledger
	name     string
	bindings []Binding
	records  []Record
	notifies int
	cfg      Config
	state    state
}

func newSurface(rt *Runtime, name string, compiled wazero.CompiledModule, bindings []Binding) *Surface {
	return &Surface{
		rt:       rt,
		compiled: compiled,
		log:      rt.log.With(zap.String("library", name)),
		metrics:  rt.metrics,
		fns:      make(map[string]api.Function, len(bindings)),
		ledger:   newLedger(),
		name:     name,
		bindings: bindings,
		cfg:      rt.cfg,
	}
}

// Name returns the library name.
func (s *Surface) Name() string {
	return s.name
}

// Bound reports whether the surface accepts calls.
func (s *Surface) Bound() bool {
	return s.state == stateBound
}

// Bindings returns the resolved declaration table.
func (s *Surface) Bindings() []Binding {
	return append([]Binding(nil), s.bindings...)
}

// Memory returns native linear memory, or nil while unbound.
func (s *Surface) Memory() *Memory {
	return s.mem
}

// Bind instantiates the library and registers the managed callback. It
// succeeds once per surface.
func (s *Surface) Bind(ctx context.Context) error {
	if s.state != stateUnbound {
		return errors.New(errors.PhaseBind, errors.KindAlreadyBound).
			Export(s.name).
			Detail("surface is %s", s.state).
			Build()
	}

	if err := s.rt.ensureHost(ctx); err != nil {
		return err
	}
	if err := s.rt.attach(s); err != nil {
		return err
	}

	modCfg := wazero.NewModuleConfig().
		WithName(s.name).
		WithStdout(s.cfg.Stdout).
		WithStartFunctions()

	mod, err := s.rt.runtime.InstantiateModule(ctx, s.compiled, modCfg)
	if err != nil {
		s.rt.detach(s)
		return errors.Instantiation(err)
	}

	s.mod = mod
	s.mem = newMemory(mod.ExportedMemory(native.ExportMemory))
	for _, b := range s.bindings {
		s.fns[b.Name] = mod.ExportedFunction(b.Name)
	}
	s.state = stateBound

	if _, ok := s.fns[native.ExportRegisterCallback]; ok {
		if err := s.registerCallback(ctx); err != nil {
			_ = s.Close(ctx)
			return err
		}
	} else {
		s.log.Debug("library has no callback registration export")
	}

	s.log.Debug("native library bound", zap.Int("exports", len(s.fns)))
	return nil
}

func (s *Surface) registerCallback(ctx context.Context) error {
	rc, err := s.callU32(ctx, native.ExportRegisterCallback, native.CallbackSlot)
	if err != nil {
		return err
	}
	if status := int32(rc); status != 0 {
		return errors.New(errors.PhaseBind, errors.KindInvalidInput).
			Export(native.ExportRegisterCallback).
			Detail("slot %d rejected with status %d", native.CallbackSlot, status).
			Build()
	}
	return nil
}

// Close releases the library instance. Further calls fail as unbound.
func (s *Surface) Close(ctx context.Context) error {
	if s.state == stateClosed {
		return nil
	}
	s.state = stateClosed
	s.rt.detach(s)

	if n := s.ledger.drain(); n > 0 {
		s.log.Warn("closing with outstanding native buffers", zap.Int("buffers", n))
		s.metrics.OutstandingBuffers.Sub(float64(n))
	}

	var err error
	if s.mod != nil {
		err = s.mod.Close(ctx)
	}
	if cerr := s.compiled.Close(ctx); err == nil {
		err = cerr
	}
	return err
}

// call invokes a resolved export. A trap becomes a boundary fault and the
// surface stays usable.
func (s *Surface) call(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	if s.state != stateBound {
		return nil, errors.Unbound(name)
	}
	fn := s.fns[name]
	if fn == nil {
		return nil, errors.New(errors.PhaseCall, errors.KindMissingExport).
			Export(name).
			Detail("not in the declaration table").
			Build()
	}

	s.log.Debug("native call", zap.String("export", name), zap.Uint64s("args", args))

	start := time.Now()
	res, err := fn.Call(ctx, args...)
	s.metrics.CallLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	s.metrics.Calls.WithLabelValues(name).Inc()

	if err != nil {
		s.metrics.Faults.WithLabelValues(name).Inc()
		s.log.Warn("native call faulted", zap.String("export", name), zap.Error(err))
		return nil, errors.BoundaryFault(name, err)
	}
	return res, nil
}

func (s *Surface) callU32(ctx context.Context, name string, args ...uint64) (uint32, error) {
	res, err := s.call(ctx, name, args...)
	if err != nil {
		return 0, err
	}
	return api.DecodeU32(res[0]), nil
}

// Call invokes a declared export with scalar arguments. Text exports have
// dedicated methods.
func (s *Surface) Call(ctx context.Context, name string, args ...uint32) ([]uint32, error) {
	for _, b := range s.bindings {
		if b.Name != name {
			continue
		}
		if b.Ownership != OwnNone || hasString(b.Params) || hasString(b.Results) {
			return nil, errors.New(errors.PhaseCall, errors.KindInvalidInput).
				Export(name).
				Detail("export carries text or ownership; use its typed method").
				Build()
		}
		if len(args) != len(b.Params) {
			return nil, errors.New(errors.PhaseCall, errors.KindInvalidInput).
				Export(name).
				Detail("expected %d arguments, got %d", len(b.Params), len(args)).
				Build()
		}

		raw := make([]uint64, len(args))
		for i, a := range args {
			raw[i] = api.EncodeU32(a)
		}
		res, err := s.call(ctx, name, raw...)
		if err != nil {
			return nil, err
		}
		out := make([]uint32, len(res))
		for i, v := range res {
			out[i] = api.DecodeU32(v)
		}
		return out, nil
	}
	return s.callUndeclared(name)
}

func (s *Surface) callUndeclared(name string) ([]uint32, error) {
	if s.state != stateBound {
		return nil, errors.Unbound(name)
	}
	return nil, errors.New(errors.PhaseCall, errors.KindMissingExport).
		Export(name).
		Detail("not in the declaration table").
		Build()
}

func hasString(ts []wit.Type) bool {
	for _, t := range ts {
		if _, ok := t.(wit.String); ok {
			return true
		}
	}
	return false
}

// Greet writes the native greeting.
func (s *Surface) Greet(ctx context.Context) error {
	_, err := s.call(ctx, native.ExportGreet)
	return err
}

// RunDemo runs the native demo sequence, which calls back into Go.
func (s *Surface) RunDemo(ctx context.Context) error {
	_, err := s.call(ctx, native.ExportRunDemo)
	return err
}

// InvokeCallback asks native code to call the registered callback with a
// and b.
func (s *Surface) InvokeCallback(ctx context.Context, a, b uint32) error {
	_, err := s.call(ctx, native.ExportInvokeCallback, api.EncodeU32(a), api.EncodeU32(b))
	return err
}

// LiveAllocations returns the number of live native heap blocks.
func (s *Surface) LiveAllocations(ctx context.Context) (uint32, error) {
	return s.callU32(ctx, native.ExportLiveAllocations)
}

// FaultCount returns the number of faults the library absorbed: rejected
// frees and callbacks invoked before registration.
func (s *Surface) FaultCount(ctx context.Context) (uint32, error) {
	return s.callU32(ctx, native.ExportFaultCount)
}

func unsupportedType(export string, t wit.Type) error {
	return errors.New(errors.PhaseLoad, errors.KindSignatureMismatch).
		Export(export).
		Detail("type %s has no core representation", typeName(t)).
		Build()
}
