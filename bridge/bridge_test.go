package bridge

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"testing/quick"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-bridge/errors"
	"github.com/wippyai/wasm-bridge/native"
	"github.com/wippyai/wasm-bridge/wasm"
)

type fixture struct {
	rt     *Runtime
	s      *Surface
	stdout *bytes.Buffer
}

func newRuntime(t *testing.T, cfg *Config) (*Runtime, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()

	var stdout bytes.Buffer
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.Stdout = &stdout
	cfg.Registerer = prometheus.NewRegistry()

	rt, err := New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close(ctx) })
	return rt, &stdout
}

func bound(t *testing.T, cfg *Config) *fixture {
	t.Helper()
	ctx := context.Background()

	rt, stdout := newRuntime(t, cfg)
	s, err := rt.Load(ctx, native.Name, native.Build(), Declarations)
	require.NoError(t, err)
	require.NoError(t, s.Bind(ctx))

	return &fixture{rt: rt, s: s, stdout: stdout}
}

func withoutExports(names ...string) []byte {
	m := native.Module()
	for _, name := range names {
		m.RemoveExport(name)
	}
	return m.Encode()
}

// trapModule exports "boom", which always traps, and "seven".
func trapModule() []byte {
	m := &wasm.Module{
		Types:    []wasm.FuncType{{}, {Results: []wasm.ValType{wasm.ValI32}}},
		Funcs:    []uint32{0, 1},
		Memories: []wasm.MemoryType{{Limits: wasm.Limits{Min: 1}}},
		Exports: []wasm.Export{
			{Name: "boom", Kind: wasm.KindFunc, Idx: 0},
			{Name: "seven", Kind: wasm.KindFunc, Idx: 1},
			{Name: native.ExportMemory, Kind: wasm.KindMemory, Idx: 0},
		},
		Code: []wasm.FuncBody{
			{Code: wasm.NewCode().Unreachable().End().Bytes()},
			{Code: wasm.NewCode().I32Const(7).End().Bytes()},
		},
	}
	return m.Encode()
}

var trapDeclarations = []Declaration{
	{Name: "boom"},
	{Name: "seven", Results: []wit.Type{wit.U32{}}},
}

func TestLoad_MissingExports(t *testing.T) {
	ctx := context.Background()
	rt, _ := newRuntime(t, nil)

	_, err := rt.Load(ctx, native.Name, withoutExports(native.ExportGreet, native.ExportEchoString), Declarations)
	require.Error(t, err)

	var missing *errors.MissingExportsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, native.Name, missing.Library)
	assert.ElementsMatch(t, []string{native.ExportGreet, native.ExportEchoString}, missing.Exports)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindMissingExport})
}

func TestLoad_MissingMemory(t *testing.T) {
	ctx := context.Background()
	rt, _ := newRuntime(t, nil)

	_, err := rt.Load(ctx, native.Name, withoutExports(native.ExportMemory), Declarations)

	var missing *errors.MissingExportsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{native.ExportMemory}, missing.Exports)
}

func TestLoad_SignatureMismatch(t *testing.T) {
	ctx := context.Background()
	rt, _ := newRuntime(t, nil)

	decls := []Declaration{
		{Name: native.ExportAcceptString, Params: []wit.Type{wit.U32{}}},
	}
	_, err := rt.Load(ctx, native.Name, native.Build(), decls)
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindSignatureMismatch})
	assert.Contains(t, err.Error(), native.ExportAcceptString)
	assert.Contains(t, err.Error(), "(i32, i32) -> ()")
}

func TestLoad_UnsupportedType(t *testing.T) {
	ctx := context.Background()
	rt, _ := newRuntime(t, nil)

	decls := []Declaration{{Name: native.ExportGreet, Params: []wit.Type{nil}}}
	_, err := rt.Load(ctx, native.Name, native.Build(), decls)
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindSignatureMismatch})
}

func TestLoad_MissingImport(t *testing.T) {
	ctx := context.Background()
	rt, _ := newRuntime(t, nil)

	m := &wasm.Module{
		Types:    []wasm.FuncType{{}},
		Imports:  []wasm.Import{{Module: "env", Name: "abort", TypeIdx: 0}},
		Memories: []wasm.MemoryType{{Limits: wasm.Limits{Min: 1}}},
		Exports:  []wasm.Export{{Name: native.ExportMemory, Kind: wasm.KindMemory, Idx: 0}},
	}
	_, err := rt.Load(ctx, "needs-env", m.Encode(), nil)
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseBind, Kind: errors.KindMissingImport})
	assert.Contains(t, err.Error(), "env.abort")
}

func TestLoad_HostImportSignature(t *testing.T) {
	tests := []struct {
		name   string
		want   errors.Kind
		params []wasm.ValType
	}{
		{native.ManagedCallback, errors.KindSignatureMismatch, []wasm.ValType{wasm.ValI32}},
		{native.ManagedNotify, errors.KindSignatureMismatch, []wasm.ValType{wasm.ValI32}},
		{"print", errors.KindMissingImport, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			rt, _ := newRuntime(t, nil)

			m := &wasm.Module{
				Types:    []wasm.FuncType{{Params: tt.params}},
				Imports:  []wasm.Import{{Module: native.ManagedModule, Name: tt.name, TypeIdx: 0}},
				Memories: []wasm.MemoryType{{Limits: wasm.Limits{Min: 1}}},
				Exports:  []wasm.Export{{Name: native.ExportMemory, Kind: wasm.KindMemory, Idx: 0}},
			}
			_, err := rt.Load(ctx, "odd-host", m.Encode(), nil)
			require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseBind, Kind: tt.want})
			assert.Contains(t, err.Error(), native.ManagedModule+"."+tt.name)
		})
	}
}

func TestLoad_InvalidBinary(t *testing.T) {
	ctx := context.Background()
	rt, _ := newRuntime(t, nil)

	_, err := rt.Load(ctx, native.Name, []byte("not wasm"), Declarations)
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidInput})

	_, err = rt.Load(ctx, "", native.Build(), Declarations)
	require.Error(t, err)
}

func TestSurface_Phases(t *testing.T) {
	ctx := context.Background()
	rt, _ := newRuntime(t, nil)

	s, err := rt.Load(ctx, native.Name, native.Build(), Declarations)
	require.NoError(t, err)
	assert.False(t, s.Bound())

	require.ErrorIs(t, s.Greet(ctx), errors.ErrUnbound)
	_, err = s.ProduceString(ctx)
	require.ErrorIs(t, err, errors.ErrUnbound)
	require.ErrorIs(t, s.AcceptString(ctx, "x"), errors.ErrUnbound)
	require.ErrorIs(t, s.FreeString(ctx, 4104), errors.ErrUnbound)
	_, err = s.Call(ctx, "nope")
	require.ErrorIs(t, err, errors.ErrUnbound)

	require.NoError(t, s.Bind(ctx))
	assert.True(t, s.Bound())
	require.NoError(t, s.Greet(ctx))

	err = s.Bind(ctx)
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseBind, Kind: errors.KindAlreadyBound})

	require.NoError(t, s.Close(ctx))
	require.ErrorIs(t, s.Greet(ctx), errors.ErrUnbound)
	require.ErrorIs(t, s.Bind(ctx), &errors.Error{Phase: errors.PhaseBind, Kind: errors.KindAlreadyBound})
	require.NoError(t, s.Close(ctx))
}

func TestSurface_DuplicateName(t *testing.T) {
	ctx := context.Background()
	rt, _ := newRuntime(t, nil)

	a, err := rt.Load(ctx, native.Name, native.Build(), Declarations)
	require.NoError(t, err)
	b, err := rt.Load(ctx, native.Name, native.Build(), Declarations)
	require.NoError(t, err)

	require.NoError(t, a.Bind(ctx))
	require.ErrorIs(t, b.Bind(ctx), &errors.Error{Phase: errors.PhaseBind, Kind: errors.KindAlreadyBound})
}

func TestSurface_Bindings(t *testing.T) {
	f := bound(t, nil)

	bindings := f.s.Bindings()
	require.Len(t, bindings, len(Declarations))

	byName := make(map[string]Binding)
	for _, b := range bindings {
		byName[b.Name] = b
	}
	assert.Equal(t, "(i32, i32) -> ()", byName[native.ExportAcceptString].Native)
	assert.Equal(t, "() -> (i32)", byName[native.ExportProduceString].Native)
	assert.Equal(t, "func(string)", byName[native.ExportAcceptString].Signature())
	assert.Equal(t, "func() -> string", byName[native.ExportProduceString].Signature())
}

func TestSurface_Greet(t *testing.T) {
	f := bound(t, nil)

	require.NoError(t, f.s.Greet(context.Background()))
	assert.Equal(t, native.GreetingText+"\n", f.stdout.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.rt.Metrics().Calls.WithLabelValues(native.ExportGreet)))
}

func TestSurface_RunDemo(t *testing.T) {
	f := bound(t, nil)

	require.NoError(t, f.s.RunDemo(context.Background()))

	want := "managed called from native\n" +
		native.DemoText + "\n" +
		"managed num: 36, 42\n" +
		native.PrintPrefix + native.DemoAcceptText + "\n" +
		native.DemoProducedPrefix + native.ProducedText + "\n"
	assert.Equal(t, want, f.stdout.String())
	assert.Equal(t, []Record{{A: 36, B: 42}}, f.s.Records())
	assert.Equal(t, 1, f.s.Notifies())
}

func TestNotify_RunsBeforeCallback(t *testing.T) {
	var order []string
	f := bound(t, &Config{
		Notify:   func() { order = append(order, "notify") },
		Callback: func(a, b uint32) { order = append(order, "callback") },
	})

	require.NoError(t, f.s.RunDemo(context.Background()))
	assert.Equal(t, []string{"notify", "callback"}, order)
	assert.NotContains(t, f.stdout.String(), "managed called from native")
	assert.Equal(t, 2.0, testutil.ToFloat64(f.rt.Metrics().Callbacks))
}

func TestNotify_PanicIsContained(t *testing.T) {
	ctx := context.Background()
	f := bound(t, &Config{Notify: func() { panic("notify failed") }})

	require.NoError(t, f.s.RunDemo(ctx))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.rt.Metrics().CallbackPanics))
	assert.Equal(t, []Record{{A: 36, B: 42}}, f.s.Records())
	assert.Contains(t, f.stdout.String(), native.DemoProducedPrefix+native.ProducedText)
}

func TestCallback_DeliversArguments(t *testing.T) {
	ctx := context.Background()

	var got []Record
	f := bound(t, &Config{Callback: func(a, b uint32) {
		got = append(got, Record{A: a, B: b})
	}})

	prop := func(a, b uint32) bool {
		got = got[:0]
		if err := f.s.InvokeCallback(ctx, a, b); err != nil {
			return false
		}
		return len(got) == 1 && got[0] == Record{A: a, B: b}
	}
	require.NoError(t, quick.Check(prop, nil))

	for _, edge := range []Record{{0, 0}, {0xFFFFFFFF, 0xFFFFFFFF}, {1 << 31, 1}} {
		require.True(t, prop(edge.A, edge.B), "edge %v", edge)
	}

	faults, err := f.s.FaultCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, faults)
}

func TestCallback_PanicIsContained(t *testing.T) {
	ctx := context.Background()
	f := bound(t, &Config{Callback: func(a, b uint32) {
		panic("handler failed")
	}})

	require.NoError(t, f.s.InvokeCallback(ctx, 1, 2))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.rt.Metrics().CallbackPanics))
	assert.Equal(t, []Record{{A: 1, B: 2}}, f.s.Records())

	text, err := f.s.ProduceString(ctx)
	require.NoError(t, err)
	assert.Equal(t, native.ProducedText, text)
}

func TestProduceString_NoLeak(t *testing.T) {
	ctx := context.Background()
	f := bound(t, nil)

	size := f.s.Memory().Size()
	for i := 0; i < 1000; i++ {
		text, err := f.s.ProduceString(ctx)
		require.NoError(t, err)
		require.Equal(t, native.ProducedText, text)
	}

	live, err := f.s.LiveAllocations(ctx)
	require.NoError(t, err)
	assert.Zero(t, live)
	assert.Zero(t, f.s.Outstanding())
	assert.Equal(t, size, f.s.Memory().Size())
	assert.Equal(t, 0.0, testutil.ToFloat64(f.rt.Metrics().OutstandingBuffers))
}

func TestAcceptString_Echo(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"ascii", "this is mono string"},
		{"empty", ""},
		{"multibyte", "żółć ☃ 日本語 🙂"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := bound(t, nil)

			require.NoError(t, f.s.AcceptString(ctx, tt.text))
			assert.Equal(t, native.PrintPrefix+tt.text+"\n", f.stdout.String())

			echo, err := f.s.EchoString(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.text, echo)

			live, err := f.s.LiveAllocations(ctx)
			require.NoError(t, err)
			assert.Zero(t, live)
		})
	}
}

func TestAcceptString_Rejects(t *testing.T) {
	ctx := context.Background()
	f := bound(t, &Config{MaxTextLen: 8})

	err := f.s.AcceptString(ctx, strings.Repeat("x", 9))
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseMarshal, Kind: errors.KindTooLarge})

	err = f.s.AcceptString(ctx, "\xff\xfe")
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseMarshal, Kind: errors.KindInvalidUTF8})

	err = f.s.AcceptString(ctx, "ab\x00cd")
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseMarshal, Kind: errors.KindInvalidInput})
	assert.Contains(t, err.Error(), "NUL at byte 2")

	assert.Empty(t, f.stdout.String())

	live, err := f.s.LiveAllocations(ctx)
	require.NoError(t, err)
	assert.Zero(t, live)
}

func TestAcceptString_EchoCutKeepsRunes(t *testing.T) {
	ctx := context.Background()
	f := bound(t, nil)

	prefix := strings.Repeat("a", native.EchoCapacity-1)
	require.NoError(t, f.s.AcceptString(ctx, prefix+"é"))

	echo, err := f.s.EchoString(ctx)
	require.NoError(t, err)
	assert.Equal(t, prefix, echo)
}

func TestRuntime_CloseDrainsBuffers(t *testing.T) {
	ctx := context.Background()
	f := bound(t, nil)

	for i := 0; i < 3; i++ {
		_, err := f.s.ProduceBuffer(ctx)
		require.NoError(t, err)
	}
	require.Equal(t, 3.0, testutil.ToFloat64(f.rt.Metrics().OutstandingBuffers))

	require.NoError(t, f.rt.Close(ctx))

	assert.Equal(t, 0.0, testutil.ToFloat64(f.rt.Metrics().OutstandingBuffers))
	assert.Zero(t, f.s.Outstanding())
	assert.False(t, f.s.Bound())
	require.ErrorIs(t, f.s.Greet(ctx), errors.ErrUnbound)
}

func TestProduceString_TooLong(t *testing.T) {
	ctx := context.Background()
	f := bound(t, &Config{MaxTextLen: 4})

	_, err := f.s.ProduceString(ctx)
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseMarshal, Kind: errors.KindTooLarge})

	live, err := f.s.LiveAllocations(ctx)
	require.NoError(t, err)
	assert.Zero(t, live, "buffer must be freed even when decoding fails")
}

func TestOwnedText_InvalidUTF8(t *testing.T) {
	ctx := context.Background()
	f := bound(t, nil)

	o, err := f.s.ProduceBuffer(ctx)
	require.NoError(t, err)
	require.NoError(t, f.s.Memory().Write(o.Ptr(), []byte{0xC3, 0x28}))

	_, err = o.Decode()
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseMarshal, Kind: errors.KindInvalidUTF8})
	require.NoError(t, o.Free(ctx))
}

func TestOwnedText_DoubleFree(t *testing.T) {
	ctx := context.Background()
	f := bound(t, nil)

	o, err := f.s.ProduceBuffer(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.s.Outstanding())

	text, err := o.Decode()
	require.NoError(t, err)
	assert.Equal(t, native.ProducedText, text)

	require.NoError(t, o.Free(ctx))
	assert.True(t, o.Freed())

	require.ErrorIs(t, o.Free(ctx), errors.ErrDoubleFree)
	_, err = o.Decode()
	require.ErrorIs(t, err, errors.ErrUseAfterFree)

	faults, err := f.s.FaultCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, faults, "violations must not reach native")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.rt.Metrics().Violations.WithLabelValues(string(errors.KindDoubleFree))))
}

func TestOwnedText_DoubleFreeChecked(t *testing.T) {
	ctx := context.Background()
	f := bound(t, &Config{Checked: true})

	o, err := f.s.ProduceBuffer(ctx)
	require.NoError(t, err)
	require.NoError(t, o.Free(ctx))

	require.Panics(t, func() { _ = o.Free(ctx) })
	require.Panics(t, func() { _, _ = o.Decode() })
}

func TestFreeString(t *testing.T) {
	ctx := context.Background()
	f := bound(t, nil)

	o, err := f.s.ProduceBuffer(ctx)
	require.NoError(t, err)

	require.NoError(t, f.s.FreeString(ctx, o.Ptr()))
	require.ErrorIs(t, f.s.FreeString(ctx, o.Ptr()), errors.ErrDoubleFree)
	require.ErrorIs(t, f.s.FreeString(ctx, 0x10), errors.ErrForeignPointer)

	faults, err := f.s.FaultCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, faults)

	// A reissued pointer is owned again.
	again, err := f.s.ProduceBuffer(ctx)
	require.NoError(t, err)
	require.Equal(t, o.Ptr(), again.Ptr())
	require.NoError(t, f.s.FreeString(ctx, again.Ptr()))

	echo, err := f.s.EchoBuffer(ctx)
	require.NoError(t, err)
	require.NoError(t, f.s.FreeString(ctx, echo.Ptr()))
	assert.Zero(t, f.s.Outstanding())
}

func TestSurface_Call(t *testing.T) {
	ctx := context.Background()
	f := bound(t, nil)

	res, err := f.s.Call(ctx, native.ExportAlloc, 16)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.NotZero(t, res[0])

	_, err = f.s.Call(ctx, native.ExportDealloc, res[0])
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseCall, Kind: errors.KindInvalidInput})

	_, err = f.s.Call(ctx, native.ExportAlloc)
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseCall, Kind: errors.KindInvalidInput})

	_, err = f.s.Call(ctx, native.ExportAcceptString, 1, 2)
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseCall, Kind: errors.KindInvalidInput})

	_, err = f.s.Call(ctx, "nope")
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseCall, Kind: errors.KindMissingExport})

	require.NoError(t, f.s.Allocator().Free(ctx, res[0]))
}

func TestBoundaryFault_SurfaceStaysUsable(t *testing.T) {
	ctx := context.Background()
	rt, _ := newRuntime(t, nil)

	s, err := rt.Load(ctx, "trapper", trapModule(), trapDeclarations)
	require.NoError(t, err)
	require.NoError(t, s.Bind(ctx))

	for i := 0; i < 3; i++ {
		_, err = s.Call(ctx, "boom")
		require.ErrorIs(t, err, errors.ErrBoundaryFault)

		var be *errors.Error
		require.ErrorAs(t, err, &be)
		assert.Equal(t, "boom", be.Export)
		assert.NotNil(t, be.Unwrap())

		res, err := s.Call(ctx, "seven")
		require.NoError(t, err)
		assert.Equal(t, []uint32{7}, res)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(rt.Metrics().Faults.WithLabelValues("boom")))
}

func TestMemory_CString(t *testing.T) {
	f := bound(t, nil)
	mem := f.s.Memory()

	require.NoError(t, mem.Write(8192, []byte("abc\x00")))
	got, err := mem.CString(8192, 16)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	_, err = mem.CString(8192, 2)
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseMarshal, Kind: errors.KindTooLarge})

	end := mem.Size() - 2
	require.NoError(t, mem.Write(end, []byte("zz")))
	_, err = mem.CString(end, 16)
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseMarshal, Kind: errors.KindOutOfBounds})

	_, err = mem.CString(mem.Size(), 16)
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseMarshal, Kind: errors.KindOutOfBounds})

	_, err = mem.ReadU32(mem.Size() - 2)
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseMarshal, Kind: errors.KindOutOfBounds})

	require.NoError(t, mem.WriteU32(8192, 0xDEADBEEF))
	v, err := mem.ReadU32(8192)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), v)

	require.NoError(t, mem.WriteU8(8192, 0x41))
	b, err := mem.ReadU8(8192)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x41), b)
}

func TestConfig_Defaults(t *testing.T) {
	var nilCfg *Config
	c := nilCfg.withDefaults()

	assert.NotNil(t, c.Stdout)
	assert.NotNil(t, c.Logger)
	assert.NotNil(t, c.Registerer)
	assert.Equal(t, uint32(DefaultMemoryLimitPages), c.MemoryLimitPages)
	assert.Equal(t, uint32(DefaultMaxTextLen), c.MaxTextLen)
	assert.False(t, c.Checked)

	c = (&Config{MaxTextLen: 5, Checked: true}).withDefaults()
	assert.Equal(t, uint32(5), c.MaxTextLen)
	assert.True(t, c.Checked)
}

func TestDeclaration_Flatten(t *testing.T) {
	tests := []struct {
		decl    Declaration
		params  string
		results string
	}{
		{Declarations[0], "()", "()"},
		{Declaration{Params: []wit.Type{wit.String{}}}, "(i32, i32)", "()"},
		{Declaration{Results: []wit.Type{wit.String{}}}, "()", "(i32)"},
		{Declaration{Params: []wit.Type{wit.U64{}, wit.F32{}, wit.F64{}, wit.Bool{}}}, "(i64, f32, f64, i32)", "()"},
	}

	for _, tt := range tests {
		t.Run(tt.decl.Signature(), func(t *testing.T) {
			params, err := tt.decl.FlatParams()
			require.NoError(t, err)
			results, err := tt.decl.FlatResults()
			require.NoError(t, err)
			assert.Equal(t, tt.params, valueTypes(params))
			assert.Equal(t, tt.results, valueTypes(results))
		})
	}
}
